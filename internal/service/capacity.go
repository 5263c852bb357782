package service

import (
	"context"
	"fmt"

	"github.com/parqueo/backend/internal/domain"
	"github.com/parqueo/backend/internal/repo"
)

// CapacityPolicy enforces per-pool admission ceilings. The check is advisory
// fast-reject: it is not what prevents double-allocation (the registry's
// atomic claim is), but it gives a friendly refusal before any allocation is
// attempted, and it bounds auto-provisioning — without it a full pool would
// silently grow its inventory and the ceiling would mean nothing.
//
// Occupancy is recomputed from the OPEN-trip count on every call. A stored
// counter would be a second source of truth that can drift from trip state.
type CapacityPolicy struct {
	trips  repo.TripRepo
	groups []domain.CapacityGroup
}

// NewCapacityPolicy constructs a CapacityPolicy from the configured pools.
func NewCapacityPolicy(trips repo.TripRepo, groups []domain.CapacityGroup) *CapacityPolicy {
	return &CapacityPolicy{trips: trips, groups: groups}
}

// CheckCapacity returns nil when the category's pool has room for one more
// OPEN trip, and a KindFullCapacity rejection when it is at its ceiling.
// Categories outside every configured pool are not capacity-limited.
func (p *CapacityPolicy) CheckCapacity(ctx context.Context, categoryID int64) error {
	group, ok := p.groupFor(categoryID)
	if !ok {
		return nil
	}

	count, err := p.trips.CountOpenByCategories(ctx, group.CategoryIDs)
	if err != nil {
		return fmt.Errorf("service.CapacityPolicy.CheckCapacity: %w", err)
	}

	if count >= int64(group.Ceiling) {
		return domain.Reject(domain.KindFullCapacity,
			fmt.Sprintf("no capacity left for %s (%d/%d in use)", group.Name, count, group.Ceiling))
	}
	return nil
}

// TotalCeiling is the sum of all pool ceilings, used for occupancy reporting.
func (p *CapacityPolicy) TotalCeiling() int {
	total := 0
	for _, g := range p.groups {
		total += g.Ceiling
	}
	return total
}

// groupFor finds the pool containing categoryID.
func (p *CapacityPolicy) groupFor(categoryID int64) (domain.CapacityGroup, bool) {
	for _, g := range p.groups {
		for _, id := range g.CategoryIDs {
			if id == categoryID {
				return g, true
			}
		}
	}
	return domain.CapacityGroup{}, false
}
