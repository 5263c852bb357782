// Package service contains the business logic for the Parqueo API.
// Services validate inputs, enforce business rules, and orchestrate repo calls.
// No SQL lives here — services depend on repo interfaces, not implementations.
package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/parqueo/backend/internal/domain"
	"github.com/parqueo/backend/internal/repo"
)

// claimScanLimit bounds the candidate list ClaimFirstAvailable works through.
// The scan is the only "retry" in the claim path and it is bounded: each
// candidate gets exactly one CAS attempt.
const claimScanLimit = 25

// SpaceRegistry owns the occupancy state of physical parking spaces.
// All mutual exclusion between concurrent entries rests on the repo's
// conditional-claim primitive being a single atomic UPDATE — the registry
// itself holds no locks, so it is safe across multiple server instances.
type SpaceRegistry struct {
	spaces repo.SpaceRepo
	now    func() time.Time
}

// NewSpaceRegistry constructs a SpaceRegistry backed by the provided SpaceRepo.
// now is injected for deterministic provisioning codes in tests; pass
// time.Now in production.
func NewSpaceRegistry(spaces repo.SpaceRepo, now func() time.Time) *SpaceRegistry {
	return &SpaceRegistry{spaces: spaces, now: now}
}

// Claim atomically transitions a specific space from available to unavailable.
// Two concurrent callers racing on the same space id can never both succeed.
// Returns domain.ErrNotFound if the id does not exist and
// domain.ErrSpaceUnavailable if another caller won the race; callers translate
// these into their own rejection kinds.
func (s *SpaceRegistry) Claim(ctx context.Context, spaceID int64) (domain.Space, error) {
	space, err := s.spaces.ConditionalClaim(ctx, spaceID)
	if err != nil {
		return domain.Space{}, fmt.Errorf("service.SpaceRegistry.Claim: %w", err)
	}
	return space, nil
}

// ClaimFirstAvailable scans the category's free spaces in ascending id order
// and claims the first one it wins. A candidate lost to a concurrent claimer
// between the read and the CAS is simply skipped — no unbounded retrying.
// Returns a KindNoSpaceAvailable rejection when every candidate is exhausted.
func (s *SpaceRegistry) ClaimFirstAvailable(ctx context.Context, categoryID int64) (domain.Space, error) {
	candidates, err := s.spaces.FindAvailableByCategory(ctx, categoryID, claimScanLimit)
	if err != nil {
		return domain.Space{}, fmt.Errorf("service.SpaceRegistry.ClaimFirstAvailable: %w", err)
	}

	for _, candidate := range candidates {
		space, err := s.spaces.ConditionalClaim(ctx, candidate.ID)
		if err == nil {
			return space, nil
		}
		if errors.Is(err, domain.ErrSpaceUnavailable) || errors.Is(err, domain.ErrNotFound) {
			continue // lost the race on this one, try the next
		}
		return domain.Space{}, fmt.Errorf("service.SpaceRegistry.ClaimFirstAvailable: %w", err)
	}

	return domain.Space{}, domain.Reject(domain.KindNoSpaceAvailable,
		"no space available for the requested category")
}

// Provision creates a new space for the category, pre-marked unavailable in
// the same insert. A space created to satisfy a pending entry must never be
// observably available for an instant, or a concurrent claimer could steal it.
func (s *SpaceRegistry) Provision(ctx context.Context, categoryID int64) (domain.Space, error) {
	code := fmt.Sprintf("GEN-%d-%04d", categoryID, s.now().UnixMilli()%10000)

	space, err := s.spaces.InsertClaimed(ctx, categoryID, code)
	if err != nil {
		return domain.Space{}, fmt.Errorf("service.SpaceRegistry.Provision: %w", err)
	}
	return space, nil
}

// Release marks a space available again. Idempotent: releasing an
// already-available space is a no-op, and a space that vanished (should not
// happen — spaces are never deleted) is not worth failing a request over.
func (s *SpaceRegistry) Release(ctx context.Context, spaceID int64) error {
	err := s.spaces.SetAvailable(ctx, spaceID, true)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return fmt.Errorf("service.SpaceRegistry.Release: %w", err)
	}
	return nil
}

// ListSpaces returns spaces matching the filter, for operator display.
// Always returns a non-nil slice so callers can safely range over it.
func (s *SpaceRegistry) ListSpaces(ctx context.Context, filter domain.SpaceFilter) ([]domain.Space, error) {
	spaces, err := s.spaces.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("service.SpaceRegistry.ListSpaces: %w", err)
	}
	if spaces == nil {
		return []domain.Space{}, nil
	}
	return spaces, nil
}
