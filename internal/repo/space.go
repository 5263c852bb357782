package repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/parqueo/backend/internal/domain"
)

// SpaceRepo defines the persistence operations for parking spaces.
// The service layer depends on this interface, not the concrete Postgres
// implementation, which allows the registry to be unit-tested with a mock.
type SpaceRepo interface {
	// GetByID retrieves a single space by its primary key.
	// Returns domain.ErrNotFound if no space with that ID exists.
	GetByID(ctx context.Context, id int64) (domain.Space, error)

	// List returns spaces matching the filter, ordered by id ascending.
	List(ctx context.Context, filter domain.SpaceFilter) ([]domain.Space, error)

	// FindAvailableByCategory returns up to limit available spaces for the
	// category, ordered by id ascending. The stable order makes the registry's
	// candidate scan deterministic.
	FindAvailableByCategory(ctx context.Context, categoryID int64, limit int) ([]domain.Space, error)

	// ConditionalClaim atomically flips a space from available to unavailable.
	// The check and the write are one UPDATE statement, so two concurrent
	// callers racing on the same id can never both succeed.
	// Returns domain.ErrNotFound if the id does not exist and
	// domain.ErrSpaceUnavailable if another caller won the race.
	ConditionalClaim(ctx context.Context, id int64) (domain.Space, error)

	// InsertClaimed creates a new space already marked unavailable in the same
	// insert. A space provisioned for a pending entry must never be observably
	// available between creation and claim.
	InsertClaimed(ctx context.Context, categoryID int64, code string) (domain.Space, error)

	// SetAvailable sets the availability flag. Idempotent: setting a flag to
	// its current value is a no-op, not an error.
	SetAvailable(ctx context.Context, id int64, available bool) error
}

// pgSpaceRepo is the Postgres implementation of SpaceRepo.
type pgSpaceRepo struct {
	db db
}

// NewSpaceRepo constructs a SpaceRepo backed by the provided db connection.
// In production pass *pgxpool.Pool; in tests pass a pgx.Tx for rollback isolation.
func NewSpaceRepo(db db) SpaceRepo {
	return &pgSpaceRepo{db: db}
}

func (r *pgSpaceRepo) GetByID(ctx context.Context, id int64) (domain.Space, error) {
	const q = `
		SELECT id, code, category_id, available, created_at
		FROM spaces
		WHERE id = @id`

	row := r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": id})
	result, err := scanSpace(row)
	if err != nil {
		return domain.Space{}, fmt.Errorf("repo.SpaceRepo.GetByID: %w", err)
	}
	return result, nil
}

func (r *pgSpaceRepo) List(ctx context.Context, filter domain.SpaceFilter) ([]domain.Space, error) {
	const q = `
		SELECT id, code, category_id, available, created_at
		FROM spaces
		WHERE (@category_id::bigint IS NULL OR category_id = @category_id)
		  AND (@available::boolean IS NULL OR available = @available)
		ORDER BY id ASC`

	args := pgx.NamedArgs{
		"category_id": filter.CategoryID, // nil becomes NULL (no filter)
		"available":   filter.Available,
	}

	rows, err := r.db.Query(ctx, q, args)
	if err != nil {
		return nil, fmt.Errorf("repo.SpaceRepo.List: %w", err)
	}
	defer rows.Close()

	return collectSpaces(rows, "repo.SpaceRepo.List")
}

func (r *pgSpaceRepo) FindAvailableByCategory(ctx context.Context, categoryID int64, limit int) ([]domain.Space, error) {
	const q = `
		SELECT id, code, category_id, available, created_at
		FROM spaces
		WHERE category_id = @category_id AND available
		ORDER BY id ASC
		LIMIT @limit`

	rows, err := r.db.Query(ctx, q, pgx.NamedArgs{"category_id": categoryID, "limit": limit})
	if err != nil {
		return nil, fmt.Errorf("repo.SpaceRepo.FindAvailableByCategory: %w", err)
	}
	defer rows.Close()

	return collectSpaces(rows, "repo.SpaceRepo.FindAvailableByCategory")
}

// ConditionalClaim performs the compare-and-swap on the availability flag.
// The WHERE clause carries the "still available" condition, so the returned
// row (or its absence) is the race outcome — no separate read is trusted.
func (r *pgSpaceRepo) ConditionalClaim(ctx context.Context, id int64) (domain.Space, error) {
	const q = `
		UPDATE spaces
		SET available = false
		WHERE id = @id AND available
		RETURNING id, code, category_id, available, created_at`

	row := r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": id})
	result, err := scanSpace(row)
	if err == nil {
		return result, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return domain.Space{}, fmt.Errorf("repo.SpaceRepo.ConditionalClaim: %w", err)
	}

	// The CAS matched no row: either the id is unknown or the space is taken.
	// Disambiguate with a plain read so callers can report the right kind.
	if _, err := r.GetByID(ctx, id); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.Space{}, fmt.Errorf("repo.SpaceRepo.ConditionalClaim: %w", domain.ErrNotFound)
		}
		return domain.Space{}, fmt.Errorf("repo.SpaceRepo.ConditionalClaim: %w", err)
	}
	return domain.Space{}, fmt.Errorf("repo.SpaceRepo.ConditionalClaim: %w", domain.ErrSpaceUnavailable)
}

func (r *pgSpaceRepo) InsertClaimed(ctx context.Context, categoryID int64, code string) (domain.Space, error) {
	const q = `
		INSERT INTO spaces (code, category_id, available)
		VALUES (@code, @category_id, false)
		RETURNING id, code, category_id, available, created_at`

	row := r.db.QueryRow(ctx, q, pgx.NamedArgs{"code": code, "category_id": categoryID})
	result, err := scanSpace(row)
	if err != nil {
		return domain.Space{}, fmt.Errorf("repo.SpaceRepo.InsertClaimed: %w", err)
	}
	return result, nil
}

func (r *pgSpaceRepo) SetAvailable(ctx context.Context, id int64, available bool) error {
	const q = `UPDATE spaces SET available = @available WHERE id = @id`

	tag, err := r.db.Exec(ctx, q, pgx.NamedArgs{"id": id, "available": available})
	if err != nil {
		return fmt.Errorf("repo.SpaceRepo.SetAvailable: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("repo.SpaceRepo.SetAvailable: %w", domain.ErrNotFound)
	}
	return nil
}

// collectSpaces drains rows into a slice, wrapping errors with op.
func collectSpaces(rows pgx.Rows, op string) ([]domain.Space, error) {
	var spaces []domain.Space
	for rows.Next() {
		s, err := scanSpace(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: scan: %w", op, err)
		}
		spaces = append(spaces, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: rows: %w", op, err)
	}
	return spaces, nil
}

// scanSpace maps a single database row into a domain.Space.
func scanSpace(s scanner) (domain.Space, error) {
	var sp domain.Space
	err := s.Scan(&sp.ID, &sp.Code, &sp.CategoryID, &sp.Available, &sp.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Space{}, domain.ErrNotFound
		}
		return domain.Space{}, err
	}
	return sp, nil
}
