package service_test

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/parqueo/backend/internal/domain"
	"github.com/parqueo/backend/internal/repo"
	"github.com/parqueo/backend/internal/service"
)

// The doubles below are hand-written test doubles with one function field per
// method — set only the ones your test needs. No mock generation library
// required for interfaces this size.

// mockTripRepo is a test double for repo.TripRepo.
type mockTripRepo struct {
	findOpenByPlate      func(ctx context.Context, plate string) (domain.Trip, error)
	countOpenByCategories func(ctx context.Context, categoryIDs []int64) (int64, error)
	insert               func(ctx context.Context, draft domain.TripDraft) (domain.Trip, error)
	closeByID            func(ctx context.Context, id int64, closure domain.TripClosure) (domain.Trip, error)
	listOpen             func(ctx context.Context) ([]domain.Trip, error)
	listPage             func(ctx context.Context, params domain.PaginationParams) ([]domain.Trip, int64, error)
	sumAmountClosedSince func(ctx context.Context, since time.Time) (float64, error)
}

func (m *mockTripRepo) FindOpenByPlate(ctx context.Context, plate string) (domain.Trip, error) {
	return m.findOpenByPlate(ctx, plate)
}
func (m *mockTripRepo) CountOpenByCategories(ctx context.Context, categoryIDs []int64) (int64, error) {
	return m.countOpenByCategories(ctx, categoryIDs)
}
func (m *mockTripRepo) Insert(ctx context.Context, draft domain.TripDraft) (domain.Trip, error) {
	return m.insert(ctx, draft)
}
func (m *mockTripRepo) CloseByID(ctx context.Context, id int64, closure domain.TripClosure) (domain.Trip, error) {
	return m.closeByID(ctx, id, closure)
}
func (m *mockTripRepo) ListOpen(ctx context.Context) ([]domain.Trip, error) {
	return m.listOpen(ctx)
}
func (m *mockTripRepo) ListPage(ctx context.Context, params domain.PaginationParams) ([]domain.Trip, int64, error) {
	return m.listPage(ctx, params)
}
func (m *mockTripRepo) SumAmountClosedSince(ctx context.Context, since time.Time) (float64, error) {
	return m.sumAmountClosedSince(ctx, since)
}

var _ repo.TripRepo = (*mockTripRepo)(nil)

// mockCategoryRepo is a test double for repo.CategoryRepo.
type mockCategoryRepo struct {
	getByID func(ctx context.Context, id int64) (domain.Category, error)
	list    func(ctx context.Context) ([]domain.Category, error)
}

func (m *mockCategoryRepo) GetByID(ctx context.Context, id int64) (domain.Category, error) {
	return m.getByID(ctx, id)
}
func (m *mockCategoryRepo) List(ctx context.Context) ([]domain.Category, error) {
	return m.list(ctx)
}

var _ repo.CategoryRepo = (*mockCategoryRepo)(nil)

// mockSpaceRepo is a test double for repo.SpaceRepo.
type mockSpaceRepo struct {
	getByID                 func(ctx context.Context, id int64) (domain.Space, error)
	list                    func(ctx context.Context, filter domain.SpaceFilter) ([]domain.Space, error)
	findAvailableByCategory func(ctx context.Context, categoryID int64, limit int) ([]domain.Space, error)
	conditionalClaim        func(ctx context.Context, id int64) (domain.Space, error)
	insertClaimed           func(ctx context.Context, categoryID int64, code string) (domain.Space, error)
	setAvailable            func(ctx context.Context, id int64, available bool) error
}

func (m *mockSpaceRepo) GetByID(ctx context.Context, id int64) (domain.Space, error) {
	return m.getByID(ctx, id)
}
func (m *mockSpaceRepo) List(ctx context.Context, filter domain.SpaceFilter) ([]domain.Space, error) {
	return m.list(ctx, filter)
}
func (m *mockSpaceRepo) FindAvailableByCategory(ctx context.Context, categoryID int64, limit int) ([]domain.Space, error) {
	return m.findAvailableByCategory(ctx, categoryID, limit)
}
func (m *mockSpaceRepo) ConditionalClaim(ctx context.Context, id int64) (domain.Space, error) {
	return m.conditionalClaim(ctx, id)
}
func (m *mockSpaceRepo) InsertClaimed(ctx context.Context, categoryID int64, code string) (domain.Space, error) {
	return m.insertClaimed(ctx, categoryID, code)
}
func (m *mockSpaceRepo) SetAvailable(ctx context.Context, id int64, available bool) error {
	return m.setAvailable(ctx, id, available)
}

var _ repo.SpaceRepo = (*mockSpaceRepo)(nil)

// mockTariffRepo is a test double for repo.TariffRepo.
type mockTariffRepo struct {
	findActiveLatest func(ctx context.Context, categoryID int64) (domain.Tariff, error)
	getByID          func(ctx context.Context, id int64) (domain.Tariff, error)
	list             func(ctx context.Context) ([]domain.Tariff, error)
	insert           func(ctx context.Context, t domain.Tariff) (domain.Tariff, error)
	update           func(ctx context.Context, t domain.Tariff) (domain.Tariff, error)
	setActive        func(ctx context.Context, id int64, active bool) (domain.Tariff, error)
}

func (m *mockTariffRepo) FindActiveLatest(ctx context.Context, categoryID int64) (domain.Tariff, error) {
	return m.findActiveLatest(ctx, categoryID)
}
func (m *mockTariffRepo) GetByID(ctx context.Context, id int64) (domain.Tariff, error) {
	return m.getByID(ctx, id)
}
func (m *mockTariffRepo) List(ctx context.Context) ([]domain.Tariff, error) {
	return m.list(ctx)
}
func (m *mockTariffRepo) Insert(ctx context.Context, t domain.Tariff) (domain.Tariff, error) {
	return m.insert(ctx, t)
}
func (m *mockTariffRepo) Update(ctx context.Context, t domain.Tariff) (domain.Tariff, error) {
	return m.update(ctx, t)
}
func (m *mockTariffRepo) SetActive(ctx context.Context, id int64, active bool) (domain.Tariff, error) {
	return m.setActive(ctx, id, active)
}

var _ repo.TariffRepo = (*mockTariffRepo)(nil)

// mockRegistrar is a test double for the service.Registrar consumer interface.
type mockRegistrar struct {
	claim               func(ctx context.Context, spaceID int64) (domain.Space, error)
	claimFirstAvailable func(ctx context.Context, categoryID int64) (domain.Space, error)
	provision           func(ctx context.Context, categoryID int64) (domain.Space, error)
	release             func(ctx context.Context, spaceID int64) error
}

func (m *mockRegistrar) Claim(ctx context.Context, spaceID int64) (domain.Space, error) {
	return m.claim(ctx, spaceID)
}
func (m *mockRegistrar) ClaimFirstAvailable(ctx context.Context, categoryID int64) (domain.Space, error) {
	return m.claimFirstAvailable(ctx, categoryID)
}
func (m *mockRegistrar) Provision(ctx context.Context, categoryID int64) (domain.Space, error) {
	return m.provision(ctx, categoryID)
}
func (m *mockRegistrar) Release(ctx context.Context, spaceID int64) error {
	return m.release(ctx, spaceID)
}

var _ service.Registrar = (*mockRegistrar)(nil)

// mockCapacity is a test double for the service.CapacityChecker consumer interface.
type mockCapacity struct {
	checkCapacity func(ctx context.Context, categoryID int64) error
}

func (m *mockCapacity) CheckCapacity(ctx context.Context, categoryID int64) error {
	return m.checkCapacity(ctx, categoryID)
}

var _ service.CapacityChecker = (*mockCapacity)(nil)

// mockTariffSource is a test double for the service.TariffSource consumer interface.
type mockTariffSource struct {
	resolveForEntry func(ctx context.Context, categoryID int64) (*domain.Tariff, error)
	resolveSnapshot func(ctx context.Context, tariffID int64) (domain.Tariff, error)
}

func (m *mockTariffSource) ResolveForEntry(ctx context.Context, categoryID int64) (*domain.Tariff, error) {
	return m.resolveForEntry(ctx, categoryID)
}
func (m *mockTariffSource) ResolveSnapshot(ctx context.Context, tariffID int64) (domain.Tariff, error) {
	return m.resolveSnapshot(ctx, tariffID)
}

var _ service.TariffSource = (*mockTariffSource)(nil)

// discardLogger returns a logger whose output goes nowhere, for constructing
// services whose log calls are not under test.
func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
