package repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/parqueo/backend/internal/domain"
)

// TariffRepo defines the persistence operations for tariffs.
//
// Tariffs are never deleted: closed trips reference them by id as historical
// billing evidence, so the only way to retire one is SetActive(id, false).
type TariffRepo interface {
	// FindActiveLatest returns the newest active tariff for a category.
	// "Latest wins" among simultaneously active tariffs: highest id.
	// Returns domain.ErrNotFound when the category has no active tariff.
	FindActiveLatest(ctx context.Context, categoryID int64) (domain.Tariff, error)

	// GetByID retrieves a tariff regardless of its active flag — used to
	// resolve entry-time snapshots on trips.
	GetByID(ctx context.Context, id int64) (domain.Tariff, error)

	// List returns all tariffs ordered by id ascending.
	List(ctx context.Context) ([]domain.Tariff, error)

	// Insert persists a new tariff and returns the stored record.
	Insert(ctx context.Context, t domain.Tariff) (domain.Tariff, error)

	// Update overwrites the mutable fields of a tariff.
	// Returns domain.ErrNotFound if no tariff with that ID exists.
	Update(ctx context.Context, t domain.Tariff) (domain.Tariff, error)

	// SetActive toggles a tariff's eligibility for new trips.
	// Returns domain.ErrNotFound if no tariff with that ID exists.
	SetActive(ctx context.Context, id int64, active bool) (domain.Tariff, error)
}

// pgTariffRepo is the Postgres implementation of TariffRepo.
type pgTariffRepo struct {
	db db
}

// NewTariffRepo constructs a TariffRepo backed by the provided db connection.
func NewTariffRepo(db db) TariffRepo {
	return &pgTariffRepo{db: db}
}

const tariffColumns = `id, category_id, name, billing_mode, fraction_minutes,
	rate, active, valid_from, valid_to, created_at`

func (r *pgTariffRepo) FindActiveLatest(ctx context.Context, categoryID int64) (domain.Tariff, error) {
	const q = `
		SELECT ` + tariffColumns + `
		FROM tariffs
		WHERE category_id = @category_id AND active
		ORDER BY id DESC
		LIMIT 1`

	row := r.db.QueryRow(ctx, q, pgx.NamedArgs{"category_id": categoryID})
	result, err := scanTariff(row)
	if err != nil {
		return domain.Tariff{}, fmt.Errorf("repo.TariffRepo.FindActiveLatest: %w", err)
	}
	return result, nil
}

func (r *pgTariffRepo) GetByID(ctx context.Context, id int64) (domain.Tariff, error) {
	const q = `
		SELECT ` + tariffColumns + `
		FROM tariffs
		WHERE id = @id`

	row := r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": id})
	result, err := scanTariff(row)
	if err != nil {
		return domain.Tariff{}, fmt.Errorf("repo.TariffRepo.GetByID: %w", err)
	}
	return result, nil
}

func (r *pgTariffRepo) List(ctx context.Context) ([]domain.Tariff, error) {
	const q = `
		SELECT ` + tariffColumns + `
		FROM tariffs
		ORDER BY id ASC`

	rows, err := r.db.Query(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("repo.TariffRepo.List: %w", err)
	}
	defer rows.Close()

	var tariffs []domain.Tariff
	for rows.Next() {
		t, err := scanTariff(rows)
		if err != nil {
			return nil, fmt.Errorf("repo.TariffRepo.List: scan: %w", err)
		}
		tariffs = append(tariffs, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repo.TariffRepo.List: rows: %w", err)
	}

	return tariffs, nil
}

func (r *pgTariffRepo) Insert(ctx context.Context, t domain.Tariff) (domain.Tariff, error) {
	const q = `
		INSERT INTO tariffs (category_id, name, billing_mode, fraction_minutes, rate, active, valid_from, valid_to)
		VALUES (@category_id, @name, @billing_mode, @fraction_minutes, @rate, @active, @valid_from, @valid_to)
		RETURNING ` + tariffColumns

	args := pgx.NamedArgs{
		"category_id":      t.CategoryID,
		"name":             t.Name,
		"billing_mode":     string(t.Mode),
		"fraction_minutes": t.FractionMinutes,
		"rate":             t.Rate,
		"active":           t.Active,
		"valid_from":       t.ValidFrom,
		"valid_to":         t.ValidTo, // nil becomes NULL
	}

	row := r.db.QueryRow(ctx, q, args)
	result, err := scanTariff(row)
	if err != nil {
		return domain.Tariff{}, fmt.Errorf("repo.TariffRepo.Insert: %w", err)
	}
	return result, nil
}

func (r *pgTariffRepo) Update(ctx context.Context, t domain.Tariff) (domain.Tariff, error) {
	const q = `
		UPDATE tariffs
		SET category_id      = @category_id,
		    name             = @name,
		    billing_mode     = @billing_mode,
		    fraction_minutes = @fraction_minutes,
		    rate             = @rate,
		    valid_from       = @valid_from,
		    valid_to         = @valid_to
		WHERE id = @id
		RETURNING ` + tariffColumns

	args := pgx.NamedArgs{
		"id":               t.ID,
		"category_id":      t.CategoryID,
		"name":             t.Name,
		"billing_mode":     string(t.Mode),
		"fraction_minutes": t.FractionMinutes,
		"rate":             t.Rate,
		"valid_from":       t.ValidFrom,
		"valid_to":         t.ValidTo,
	}

	row := r.db.QueryRow(ctx, q, args)
	result, err := scanTariff(row)
	if err != nil {
		return domain.Tariff{}, fmt.Errorf("repo.TariffRepo.Update: %w", err)
	}
	return result, nil
}

func (r *pgTariffRepo) SetActive(ctx context.Context, id int64, active bool) (domain.Tariff, error) {
	const q = `
		UPDATE tariffs
		SET active = @active
		WHERE id = @id
		RETURNING ` + tariffColumns

	row := r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": id, "active": active})
	result, err := scanTariff(row)
	if err != nil {
		return domain.Tariff{}, fmt.Errorf("repo.TariffRepo.SetActive: %w", err)
	}
	return result, nil
}

// scanTariff maps a single database row into a domain.Tariff.
func scanTariff(s scanner) (domain.Tariff, error) {
	var (
		t       domain.Tariff
		mode    string
		validTo pgtype.Timestamptz
	)

	err := s.Scan(&t.ID, &t.CategoryID, &t.Name, &mode, &t.FractionMinutes,
		&t.Rate, &t.Active, &t.ValidFrom, &validTo, &t.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Tariff{}, domain.ErrNotFound
		}
		return domain.Tariff{}, err
	}

	t.Mode = domain.BillingMode(mode)
	if validTo.Valid {
		v := validTo.Time
		t.ValidTo = &v
	}

	return t, nil
}
