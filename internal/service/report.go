package service

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/parqueo/backend/internal/domain"
	"github.com/parqueo/backend/internal/repo"
)

// DashboardStats is the administrative overview of the lot right now.
type DashboardStats struct {
	// IncomeToday sums the amounts of trips closed since UTC midnight.
	IncomeToday float64 `json:"income_today"`
	// ActiveTrips is the number of currently OPEN trips.
	ActiveTrips int64 `json:"active_trips"`
	// TotalCapacity is the sum of all configured pool ceilings.
	TotalCapacity int `json:"total_capacity"`
	// OccupancyPercent is ActiveTrips over TotalCapacity, rounded.
	OccupancyPercent int `json:"occupancy_percent"`
	// Date is the UTC day the stats cover, formatted "2006-01-02".
	Date string `json:"date"`
}

// ReportService produces administrative read models. Everything is computed
// live from the trip table — there are no counters to drift.
type ReportService struct {
	trips    repo.TripRepo
	capacity *CapacityPolicy
	now      func() time.Time
}

// NewReportService constructs a ReportService.
func NewReportService(trips repo.TripRepo, capacity *CapacityPolicy, now func() time.Time) *ReportService {
	return &ReportService{trips: trips, capacity: capacity, now: now}
}

// DashboardStats returns today's income, live occupancy, and capacity usage.
func (s *ReportService) DashboardStats(ctx context.Context) (DashboardStats, error) {
	today := s.now().UTC().Truncate(24 * time.Hour)

	income, err := s.trips.SumAmountClosedSince(ctx, today)
	if err != nil {
		return DashboardStats{}, fmt.Errorf("service.ReportService.DashboardStats: %w", err)
	}

	active, err := s.trips.CountOpenByCategories(ctx, allCategoryIDs(s.capacity.groups))
	if err != nil {
		return DashboardStats{}, fmt.Errorf("service.ReportService.DashboardStats: %w", err)
	}

	total := s.capacity.TotalCeiling()
	occupancy := 0
	if total > 0 {
		occupancy = int(math.Round(float64(active) / float64(total) * 100))
	}

	return DashboardStats{
		IncomeToday:      income,
		ActiveTrips:      active,
		TotalCapacity:    total,
		OccupancyPercent: occupancy,
		Date:             today.Format("2006-01-02"),
	}, nil
}

// History returns one page of all trips, newest entry first, with the total
// count for pagination metadata. Always returns a non-nil slice.
func (s *ReportService) History(ctx context.Context, params domain.PaginationParams) ([]domain.Trip, int64, error) {
	trips, total, err := s.trips.ListPage(ctx, params)
	if err != nil {
		return nil, 0, fmt.Errorf("service.ReportService.History: %w", err)
	}
	if trips == nil {
		trips = []domain.Trip{}
	}
	return trips, total, nil
}

// allCategoryIDs flattens the configured pools into one id list.
func allCategoryIDs(groups []domain.CapacityGroup) []int64 {
	var ids []int64
	for _, g := range groups {
		ids = append(ids, g.CategoryIDs...)
	}
	return ids
}
