package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/parqueo/backend/internal/domain"
	"github.com/parqueo/backend/internal/repo"
)

// TariffService resolves fee schedules for the parking core and carries the
// administrative tariff operations. It holds the category repo because
// creating a tariff requires the referenced category to exist.
type TariffService struct {
	tariffs    repo.TariffRepo
	categories repo.CategoryRepo
}

// NewTariffService constructs a TariffService backed by the provided repos.
func NewTariffService(tariffs repo.TariffRepo, categories repo.CategoryRepo) *TariffService {
	return &TariffService{tariffs: tariffs, categories: categories}
}

// ResolveForEntry picks the tariff to snapshot onto a new trip: the
// most-recently-created active tariff for the category (highest id wins among
// simultaneously active ones). The absence of an active tariff is not an
// error — the trip opens without a snapshot and the exit flow falls back.
func (s *TariffService) ResolveForEntry(ctx context.Context, categoryID int64) (*domain.Tariff, error) {
	t, err := s.tariffs.FindActiveLatest(ctx, categoryID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("service.TariffService.ResolveForEntry: %w", err)
	}
	return &t, nil
}

// ResolveSnapshot fetches the exact tariff a trip references, regardless of
// its current active flag. Deactivating a tariff must not change what an
// already-open trip is charged.
// Returns domain.ErrNotFound if the tariff row no longer resolves.
func (s *TariffService) ResolveSnapshot(ctx context.Context, tariffID int64) (domain.Tariff, error) {
	t, err := s.tariffs.GetByID(ctx, tariffID)
	if err != nil {
		return domain.Tariff{}, fmt.Errorf("service.TariffService.ResolveSnapshot: %w", err)
	}
	return t, nil
}

// List returns all tariffs for administrative display.
// Always returns a non-nil slice so callers can safely range over it.
func (s *TariffService) List(ctx context.Context) ([]domain.Tariff, error) {
	tariffs, err := s.tariffs.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("service.TariffService.List: %w", err)
	}
	if tariffs == nil {
		return []domain.Tariff{}, nil
	}
	return tariffs, nil
}

// Create validates and persists a new tariff. New tariffs are created active,
// immediately becoming the "latest wins" candidate for their category.
// Returns domain.ErrValidation for invalid input, domain.ErrNotFound if the
// category does not exist.
func (s *TariffService) Create(ctx context.Context, t domain.Tariff) (domain.Tariff, error) {
	if err := validateTariff(t); err != nil {
		return domain.Tariff{}, err
	}
	if _, err := s.categories.GetByID(ctx, t.CategoryID); err != nil {
		return domain.Tariff{}, fmt.Errorf("service.TariffService.Create: %w", err)
	}

	t.Active = true
	result, err := s.tariffs.Insert(ctx, t)
	if err != nil {
		return domain.Tariff{}, fmt.Errorf("service.TariffService.Create: %w", err)
	}
	return result, nil
}

// Update validates and persists changes to an existing tariff. The active
// flag is not touched here — use SetActive so activation changes stay an
// explicit, auditable operation.
func (s *TariffService) Update(ctx context.Context, t domain.Tariff) (domain.Tariff, error) {
	if err := validateTariff(t); err != nil {
		return domain.Tariff{}, err
	}
	result, err := s.tariffs.Update(ctx, t)
	if err != nil {
		return domain.Tariff{}, fmt.Errorf("service.TariffService.Update: %w", err)
	}
	return result, nil
}

// SetActive toggles a tariff's eligibility for new trips. Trips already
// holding the tariff as their snapshot are unaffected.
func (s *TariffService) SetActive(ctx context.Context, id int64, active bool) (domain.Tariff, error) {
	result, err := s.tariffs.SetActive(ctx, id, active)
	if err != nil {
		return domain.Tariff{}, fmt.Errorf("service.TariffService.SetActive: %w", err)
	}
	return result, nil
}

// validateTariff enforces business rules common to Create and Update.
//   - Name must be non-empty (whitespace-only names are rejected).
//   - Billing mode must be one of the known modes.
//   - Rate must be positive.
//   - PerFraction tariffs need a positive block size.
//   - ValidTo, if set, must not be before ValidFrom.
func validateTariff(t domain.Tariff) error {
	if strings.TrimSpace(t.Name) == "" {
		return fmt.Errorf("%w: name is required", domain.ErrValidation)
	}
	if !domain.ValidBillingMode(t.Mode) {
		return fmt.Errorf("%w: unknown billing mode %q", domain.ErrValidation, t.Mode)
	}
	if t.Rate <= 0 {
		return fmt.Errorf("%w: rate must be positive", domain.ErrValidation)
	}
	if t.Mode == domain.PerFraction && t.FractionMinutes <= 0 {
		return fmt.Errorf("%w: fraction_minutes must be positive for %s", domain.ErrValidation, domain.PerFraction)
	}
	if t.ValidFrom.IsZero() {
		return fmt.Errorf("%w: valid_from is required", domain.ErrValidation)
	}
	if t.ValidTo != nil && t.ValidTo.Before(t.ValidFrom) {
		return fmt.Errorf("%w: valid_to must not be before valid_from", domain.ErrValidation)
	}
	return nil
}
