package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/sethvargo/go-retry"

	"github.com/parqueo/backend/internal/billing"
	"github.com/parqueo/backend/internal/domain"
	"github.com/parqueo/backend/internal/repo"
)

// Registrar is the space-allocation surface the lifecycle manager depends on.
// Defining the interface here (in the consumer) lets tests inject a double
// without a database. *SpaceRegistry satisfies it.
type Registrar interface {
	Claim(ctx context.Context, spaceID int64) (domain.Space, error)
	ClaimFirstAvailable(ctx context.Context, categoryID int64) (domain.Space, error)
	Provision(ctx context.Context, categoryID int64) (domain.Space, error)
	Release(ctx context.Context, spaceID int64) error
}

// CapacityChecker is the admission surface. *CapacityPolicy satisfies it.
type CapacityChecker interface {
	CheckCapacity(ctx context.Context, categoryID int64) error
}

// TariffSource resolves fee schedules. *TariffService satisfies it.
type TariffSource interface {
	ResolveForEntry(ctx context.Context, categoryID int64) (*domain.Tariff, error)
	ResolveSnapshot(ctx context.Context, tariffID int64) (domain.Tariff, error)
}

// releaseRetries bounds how many times a compensating space release is
// retried before the failure is surfaced. A stranded space has no owning
// trip, so nothing would ever release it again.
const releaseRetries = 2

// releaseBackoff is the pause between compensation release attempts.
const releaseBackoff = 200 * time.Millisecond

// ParkingService is the trip lifecycle manager. It orchestrates entry
// (capacity check, tariff snapshot, space claim, trip insert, compensating
// release) and exit (fee computation, terminal close, space release).
//
// State machine per trip: OPEN --(exit)--> CLOSED. Nothing else.
type ParkingService struct {
	trips      repo.TripRepo
	categories repo.CategoryRepo
	registry   Registrar
	capacity   CapacityChecker
	tariffs    TariffSource

	emergencyPerMinuteRate float64
	now                    func() time.Time
	log                    *slog.Logger
}

// NewParkingService constructs the lifecycle manager.
// now is injected so duration math is deterministic under test; pass time.Now
// in production. emergencyPerMinuteRate comes from config.
func NewParkingService(
	trips repo.TripRepo,
	categories repo.CategoryRepo,
	registry Registrar,
	capacity CapacityChecker,
	tariffs TariffSource,
	emergencyPerMinuteRate float64,
	now func() time.Time,
	log *slog.Logger,
) *ParkingService {
	return &ParkingService{
		trips:                  trips,
		categories:             categories,
		registry:               registry,
		capacity:               capacity,
		tariffs:                tariffs,
		emergencyPerMinuteRate: emergencyPerMinuteRate,
		now:                    now,
		log:                    log,
	}
}

// RegisterEntry admits a vehicle: validates the plate, rejects duplicates and
// full pools, snapshots the current tariff, claims (or provisions) a space,
// and persists the OPEN trip. If the insert fails after a space was claimed,
// the claim is compensated with a release before the error propagates — the
// space state and the trip row live in separate aggregates, and this is the
// one sequence that needs two-phase discipline.
func (s *ParkingService) RegisterEntry(ctx context.Context, rawPlate string, categoryID int64, requestedSpaceID *int64, actorID uuid.UUID) (domain.Trip, error) {
	plate := domain.NormalizePlate(rawPlate)
	if !domain.ValidPlate(plate) {
		return domain.Trip{}, domain.Reject(domain.KindInvalidPlateFormat,
			fmt.Sprintf("plate %q does not match the required format", rawPlate))
	}

	if _, err := s.categories.GetByID(ctx, categoryID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.Trip{}, fmt.Errorf("%w: unknown vehicle category %d", domain.ErrValidation, categoryID)
		}
		return domain.Trip{}, fmt.Errorf("service.ParkingService.RegisterEntry: %w", err)
	}

	// Advisory duplicate check. The partial unique index on open plates is
	// the real guard; this just rejects the obvious case without burning a
	// space claim.
	if _, err := s.trips.FindOpenByPlate(ctx, plate); err == nil {
		return domain.Trip{}, domain.Reject(domain.KindDuplicateEntry,
			fmt.Sprintf("plate %s already has an open trip", plate))
	} else if !errors.Is(err, domain.ErrNotFound) {
		return domain.Trip{}, fmt.Errorf("service.ParkingService.RegisterEntry: %w", err)
	}

	if err := s.capacity.CheckCapacity(ctx, categoryID); err != nil {
		return domain.Trip{}, err
	}

	// Snapshot the tariff in effect now. No active tariff is fine — the exit
	// flow falls back to whatever is active then, or the emergency rate.
	tariff, err := s.tariffs.ResolveForEntry(ctx, categoryID)
	if err != nil {
		return domain.Trip{}, fmt.Errorf("service.ParkingService.RegisterEntry: %w", err)
	}
	var tariffID *int64
	if tariff != nil {
		tariffID = &tariff.ID
	}

	space, err := s.resolveSpace(ctx, categoryID, requestedSpaceID)
	if err != nil {
		return domain.Trip{}, err
	}

	draft := domain.TripDraft{
		Plate:      plate,
		CategoryID: categoryID,
		SpaceID:    space.ID,
		TariffID:   tariffID,
		EnteredAt:  s.now().UTC(),
		OpenedBy:   actorID,
	}

	trip, err := s.trips.Insert(ctx, draft)
	if err != nil {
		// Compensation: the space is claimed but the trip row never landed.
		// Give it back before surfacing the error, or it stays occupied with
		// no owning trip.
		s.compensateRelease(ctx, space.ID)

		if errors.Is(err, domain.ErrDuplicateOpenTrip) {
			return domain.Trip{}, domain.Reject(domain.KindDuplicateEntry,
				fmt.Sprintf("plate %s already has an open trip", plate))
		}
		return domain.Trip{}, fmt.Errorf("service.ParkingService.RegisterEntry: %w", err)
	}

	return trip, nil
}

// RegisterExit closes the plate's open trip: computes duration and fee,
// transitions the trip to CLOSED (terminal, atomic), then releases the space.
// A release failure after the close is logged and swallowed — the billed,
// closed trip is the correctness priority; a stuck space is a recoverable
// inconsistency, not a billing error.
func (s *ParkingService) RegisterExit(ctx context.Context, rawPlate string, actorID uuid.UUID) (domain.ExitResult, error) {
	trip, err := s.findOpen(ctx, rawPlate)
	if err != nil {
		return domain.ExitResult{}, err
	}

	q, err := s.quote(ctx, trip)
	if err != nil {
		return domain.ExitResult{}, fmt.Errorf("service.ParkingService.RegisterExit: %w", err)
	}

	closure := domain.TripClosure{
		ExitedAt:        q.exitedAt,
		DurationMinutes: q.durationMinutes,
		Amount:          q.amount,
		AppliedTariffID: q.appliedTariffID,
		ClosedBy:        actorID,
	}

	closed, err := s.trips.CloseByID(ctx, trip.ID, closure)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			// A concurrent exit won the conditional close.
			return domain.ExitResult{}, domain.Reject(domain.KindNotFound,
				fmt.Sprintf("no open trip for plate %s", trip.Plate))
		}
		return domain.ExitResult{}, fmt.Errorf("service.ParkingService.RegisterExit: %w", err)
	}

	if err := s.registry.Release(ctx, trip.SpaceID); err != nil {
		s.log.WarnContext(ctx, "space release failed after close; space remains marked unavailable",
			"space_id", trip.SpaceID, "trip_id", trip.ID, "error", err)
	}

	return domain.ExitResult{
		Trip:            closed,
		DurationMinutes: q.durationMinutes,
		Amount:          q.amount,
	}, nil
}

// PreviewExit quotes what an exit would cost right now without mutating
// anything. Given no intervening state change, the amount matches what
// RegisterExit would charge immediately after.
func (s *ParkingService) PreviewExit(ctx context.Context, rawPlate string) (domain.ExitPreview, error) {
	trip, err := s.findOpen(ctx, rawPlate)
	if err != nil {
		return domain.ExitPreview{}, err
	}

	q, err := s.quote(ctx, trip)
	if err != nil {
		return domain.ExitPreview{}, fmt.Errorf("service.ParkingService.PreviewExit: %w", err)
	}

	return domain.ExitPreview{
		Plate:           trip.Plate,
		DurationMinutes: q.durationMinutes,
		Amount:          q.amount,
		TariffName:      q.tariffName,
	}, nil
}

// ActiveTrips lists all OPEN trips, most recent entry first.
// Always returns a non-nil slice so callers can safely range over it.
func (s *ParkingService) ActiveTrips(ctx context.Context) ([]domain.Trip, error) {
	trips, err := s.trips.ListOpen(ctx)
	if err != nil {
		return nil, fmt.Errorf("service.ParkingService.ActiveTrips: %w", err)
	}
	if trips == nil {
		return []domain.Trip{}, nil
	}
	return trips, nil
}

// --- internals --------------------------------------------------------------

// resolveSpace claims the requested space, or the first available one for the
// category, falling back to provisioning a fresh space when the category has
// no free inventory (capacity was already checked, so topping up is allowed).
func (s *ParkingService) resolveSpace(ctx context.Context, categoryID int64, requestedSpaceID *int64) (domain.Space, error) {
	if requestedSpaceID != nil {
		space, err := s.registry.Claim(ctx, *requestedSpaceID)
		if err != nil {
			switch {
			case errors.Is(err, domain.ErrNotFound):
				return domain.Space{}, domain.Reject(domain.KindInvalidSpace,
					fmt.Sprintf("space %d does not exist", *requestedSpaceID))
			case errors.Is(err, domain.ErrSpaceUnavailable):
				return domain.Space{}, domain.Reject(domain.KindSpaceOccupied,
					fmt.Sprintf("space %d is already occupied", *requestedSpaceID))
			}
			return domain.Space{}, fmt.Errorf("service.ParkingService.resolveSpace: %w", err)
		}
		return space, nil
	}

	space, err := s.registry.ClaimFirstAvailable(ctx, categoryID)
	if err == nil {
		return space, nil
	}
	if !domain.IsKind(err, domain.KindNoSpaceAvailable) {
		return domain.Space{}, fmt.Errorf("service.ParkingService.resolveSpace: %w", err)
	}

	space, err = s.registry.Provision(ctx, categoryID)
	if err != nil {
		return domain.Space{}, fmt.Errorf("service.ParkingService.resolveSpace: %w", err)
	}
	return space, nil
}

// compensateRelease retries the post-failure space release a bounded number
// of times. If it still fails the inconsistency is logged — an operator can
// reconcile a space that is unavailable with no owning trip.
func (s *ParkingService) compensateRelease(ctx context.Context, spaceID int64) {
	backoff := retry.WithMaxRetries(releaseRetries, retry.NewConstant(releaseBackoff))
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		if err := s.registry.Release(ctx, spaceID); err != nil {
			return retry.RetryableError(err)
		}
		return nil
	})
	if err != nil {
		s.log.ErrorContext(ctx, "compensating space release failed; space is stranded as unavailable",
			"space_id", spaceID, "error", err)
	}
}

// findOpen normalizes the plate and fetches its OPEN trip, translating a
// missing row into the NOT_FOUND rejection the API contract names.
func (s *ParkingService) findOpen(ctx context.Context, rawPlate string) (domain.Trip, error) {
	plate := domain.NormalizePlate(rawPlate)

	trip, err := s.trips.FindOpenByPlate(ctx, plate)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.Trip{}, domain.Reject(domain.KindNotFound,
				fmt.Sprintf("no open trip for plate %s", plate))
		}
		return domain.Trip{}, fmt.Errorf("service.ParkingService.findOpen: %w", err)
	}
	return trip, nil
}

// exitQuote is the result of the read-only fee computation shared by
// RegisterExit and PreviewExit.
type exitQuote struct {
	exitedAt        time.Time
	durationMinutes int64
	amount          float64
	appliedTariffID *int64
	tariffName      string
}

// quote computes duration and fee for the trip as of now.
//
// Duration is ceil(elapsed / 1m), clamped at zero: an entry timestamp in the
// future (clock skew) yields zero minutes, never a negative bill.
//
// Tariff resolution order: the trip's entry-time snapshot (even if since
// deactivated — historical fidelity), else the currently active tariff for
// the category, else the configured emergency per-minute rate. The emergency
// path carries a nil applied id, so the closed trip records that no stored
// tariff produced its amount.
func (s *ParkingService) quote(ctx context.Context, trip domain.Trip) (exitQuote, error) {
	exitedAt := s.now().UTC()

	durationMinutes := int64(0)
	if elapsed := exitedAt.Sub(trip.EnteredAt); elapsed > 0 {
		durationMinutes = int64((elapsed.Milliseconds() + 59_999) / 60_000)
	}

	tariff, appliedID, err := s.effectiveTariff(ctx, trip)
	if err != nil {
		return exitQuote{}, err
	}

	return exitQuote{
		exitedAt:        exitedAt,
		durationMinutes: durationMinutes,
		amount:          billing.ComputeAmount(durationMinutes, tariff),
		appliedTariffID: appliedID,
		tariffName:      tariff.Name,
	}, nil
}

// effectiveTariff resolves the tariff to charge a trip at exit.
func (s *ParkingService) effectiveTariff(ctx context.Context, trip domain.Trip) (domain.Tariff, *int64, error) {
	if trip.TariffID != nil {
		t, err := s.tariffs.ResolveSnapshot(ctx, *trip.TariffID)
		if err == nil {
			return t, &t.ID, nil
		}
		if !errors.Is(err, domain.ErrNotFound) {
			return domain.Tariff{}, nil, err
		}
		// Snapshot no longer resolvable; fall through to the active tariff.
	}

	active, err := s.tariffs.ResolveForEntry(ctx, trip.CategoryID)
	if err != nil {
		return domain.Tariff{}, nil, err
	}
	if active != nil {
		return *active, &active.ID, nil
	}

	return domain.Tariff{
		Name: "emergency per-minute rate",
		Mode: domain.PerMinute,
		Rate: s.emergencyPerMinuteRate,
	}, nil, nil
}
