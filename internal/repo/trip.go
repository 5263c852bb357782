package repo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/parqueo/backend/internal/domain"
)

// TripRepo defines the persistence operations for parking trips.
type TripRepo interface {
	// FindOpenByPlate retrieves the single OPEN trip for a plate.
	// Returns domain.ErrNotFound if the plate has no open trip.
	FindOpenByPlate(ctx context.Context, plate string) (domain.Trip, error)

	// CountOpenByCategories counts OPEN trips whose category is in categoryIDs.
	// Occupancy is always recomputed from this count, never cached, so it can
	// not drift from actual trip state.
	CountOpenByCategories(ctx context.Context, categoryIDs []int64) (int64, error)

	// Insert persists a new trip with status OPEN and returns the stored record.
	// Returns domain.ErrDuplicateOpenTrip if the plate already has an open trip
	// (enforced by a partial unique index, closing the check-then-act window).
	Insert(ctx context.Context, draft domain.TripDraft) (domain.Trip, error)

	// CloseByID transitions an OPEN trip to CLOSED, stamping the closure fields
	// in the same conditional UPDATE. Returns domain.ErrNotFound if the trip
	// does not exist or is already closed — a second concurrent exit loses.
	CloseByID(ctx context.Context, id int64, closure domain.TripClosure) (domain.Trip, error)

	// ListOpen returns all OPEN trips, most recent entry first.
	ListOpen(ctx context.Context) ([]domain.Trip, error)

	// ListPage returns one page of all trips (any status), newest entry first,
	// along with the total row count for pagination metadata.
	ListPage(ctx context.Context, params domain.PaginationParams) ([]domain.Trip, int64, error)

	// SumAmountClosedSince totals the amounts of trips closed at or after the
	// given instant. Trips without an amount contribute zero.
	SumAmountClosedSince(ctx context.Context, since time.Time) (float64, error)
}

// pgTripRepo is the Postgres implementation of TripRepo.
type pgTripRepo struct {
	db db
}

// NewTripRepo constructs a TripRepo backed by the provided db connection.
// In production pass *pgxpool.Pool; in tests pass a pgx.Tx for rollback isolation.
func NewTripRepo(db db) TripRepo {
	return &pgTripRepo{db: db}
}

const tripColumns = `id, plate, category_id, space_id, tariff_id, entered_at,
	exited_at, status, duration_minutes, amount, opened_by, closed_by, created_at`

func (r *pgTripRepo) FindOpenByPlate(ctx context.Context, plate string) (domain.Trip, error) {
	const q = `
		SELECT ` + tripColumns + `
		FROM trips
		WHERE plate = @plate AND status = 'OPEN'`

	row := r.db.QueryRow(ctx, q, pgx.NamedArgs{"plate": plate})
	result, err := scanTrip(row)
	if err != nil {
		return domain.Trip{}, fmt.Errorf("repo.TripRepo.FindOpenByPlate: %w", err)
	}
	return result, nil
}

func (r *pgTripRepo) CountOpenByCategories(ctx context.Context, categoryIDs []int64) (int64, error) {
	const q = `
		SELECT count(*)
		FROM trips
		WHERE status = 'OPEN' AND category_id = ANY(@category_ids)`

	var count int64
	err := r.db.QueryRow(ctx, q, pgx.NamedArgs{"category_ids": categoryIDs}).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("repo.TripRepo.CountOpenByCategories: %w", err)
	}
	return count, nil
}

func (r *pgTripRepo) Insert(ctx context.Context, draft domain.TripDraft) (domain.Trip, error) {
	const q = `
		INSERT INTO trips (plate, category_id, space_id, tariff_id, entered_at, status, opened_by)
		VALUES (@plate, @category_id, @space_id, @tariff_id, @entered_at, 'OPEN', @opened_by)
		RETURNING ` + tripColumns

	args := pgx.NamedArgs{
		"plate":       draft.Plate,
		"category_id": draft.CategoryID,
		"space_id":    draft.SpaceID,
		"tariff_id":   draft.TariffID, // nil becomes NULL
		"entered_at":  draft.EnteredAt,
		"opened_by":   draft.OpenedBy,
	}

	row := r.db.QueryRow(ctx, q, args)
	result, err := scanTrip(row)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return domain.Trip{}, fmt.Errorf("repo.TripRepo.Insert: %w", domain.ErrDuplicateOpenTrip)
		}
		return domain.Trip{}, fmt.Errorf("repo.TripRepo.Insert: %w", err)
	}
	return result, nil
}

// CloseByID guards the terminal transition with "AND status = 'OPEN'" so the
// close is atomic: of two racing exits for the same trip, exactly one sees
// the row and the other gets ErrNotFound.
func (r *pgTripRepo) CloseByID(ctx context.Context, id int64, closure domain.TripClosure) (domain.Trip, error) {
	const q = `
		UPDATE trips
		SET status           = 'CLOSED',
		    exited_at        = @exited_at,
		    duration_minutes = @duration_minutes,
		    amount           = @amount,
		    tariff_id        = @tariff_id,
		    closed_by        = @closed_by
		WHERE id = @id AND status = 'OPEN'
		RETURNING ` + tripColumns

	args := pgx.NamedArgs{
		"id":               id,
		"exited_at":        closure.ExitedAt,
		"duration_minutes": closure.DurationMinutes,
		"amount":           closure.Amount,
		"tariff_id":        closure.AppliedTariffID,
		"closed_by":        closure.ClosedBy,
	}

	row := r.db.QueryRow(ctx, q, args)
	result, err := scanTrip(row)
	if err != nil {
		return domain.Trip{}, fmt.Errorf("repo.TripRepo.CloseByID: %w", err)
	}
	return result, nil
}

func (r *pgTripRepo) ListOpen(ctx context.Context) ([]domain.Trip, error) {
	const q = `
		SELECT ` + tripColumns + `
		FROM trips
		WHERE status = 'OPEN'
		ORDER BY entered_at DESC`

	rows, err := r.db.Query(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("repo.TripRepo.ListOpen: %w", err)
	}
	defer rows.Close()

	return collectTrips(rows, "repo.TripRepo.ListOpen")
}

func (r *pgTripRepo) ListPage(ctx context.Context, params domain.PaginationParams) ([]domain.Trip, int64, error) {
	const countQ = `SELECT count(*) FROM trips`

	var total int64
	if err := r.db.QueryRow(ctx, countQ).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("repo.TripRepo.ListPage: count: %w", err)
	}

	const q = `
		SELECT ` + tripColumns + `
		FROM trips
		ORDER BY entered_at DESC
		LIMIT @limit OFFSET @offset`

	rows, err := r.db.Query(ctx, q, pgx.NamedArgs{"limit": params.Limit, "offset": params.Offset()})
	if err != nil {
		return nil, 0, fmt.Errorf("repo.TripRepo.ListPage: %w", err)
	}
	defer rows.Close()

	trips, err := collectTrips(rows, "repo.TripRepo.ListPage")
	if err != nil {
		return nil, 0, err
	}
	return trips, total, nil
}

func (r *pgTripRepo) SumAmountClosedSince(ctx context.Context, since time.Time) (float64, error) {
	const q = `
		SELECT COALESCE(sum(amount), 0)
		FROM trips
		WHERE status = 'CLOSED' AND exited_at >= @since`

	var sum float64
	if err := r.db.QueryRow(ctx, q, pgx.NamedArgs{"since": since}).Scan(&sum); err != nil {
		return 0, fmt.Errorf("repo.TripRepo.SumAmountClosedSince: %w", err)
	}
	return sum, nil
}

// collectTrips drains rows into a slice, wrapping errors with op.
func collectTrips(rows pgx.Rows, op string) ([]domain.Trip, error) {
	var trips []domain.Trip
	for rows.Next() {
		t, err := scanTrip(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: scan: %w", op, err)
		}
		trips = append(trips, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: rows: %w", op, err)
	}
	return trips, nil
}

// scanTrip maps a single database row into a domain.Trip.
// It handles the nullable tariff/exit/closure columns and the actor UUIDs.
func scanTrip(s scanner) (domain.Trip, error) {
	var (
		t        domain.Trip
		tariffID pgtype.Int8
		exitedAt pgtype.Timestamptz
		duration pgtype.Int8
		amount   pgtype.Float8
		openedBy pgtype.UUID
		closedBy pgtype.UUID
	)

	err := s.Scan(&t.ID, &t.Plate, &t.CategoryID, &t.SpaceID, &tariffID, &t.EnteredAt,
		&exitedAt, &t.Status, &duration, &amount, &openedBy, &closedBy, &t.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Trip{}, domain.ErrNotFound
		}
		return domain.Trip{}, err
	}

	if tariffID.Valid {
		v := tariffID.Int64
		t.TariffID = &v
	}
	if exitedAt.Valid {
		v := exitedAt.Time
		t.ExitedAt = &v
	}
	if duration.Valid {
		v := duration.Int64
		t.DurationMinutes = &v
	}
	if amount.Valid {
		v := amount.Float64
		t.Amount = &v
	}
	t.OpenedBy = uuid.UUID(openedBy.Bytes)
	if closedBy.Valid {
		v := uuid.UUID(closedBy.Bytes)
		t.ClosedBy = &v
	}

	return t, nil
}
