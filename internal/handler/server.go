// Package handler implements the HTTP handlers for the Parqueo API.
// All handlers are methods on Server. Methods are split into domain-specific
// files (parking.go, tariff.go, etc.) but all share the same Server struct so
// they can access its dependencies. Handlers only decode, delegate, and map
// errors to statuses — business rules live in the service layer.
package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/parqueo/backend/internal/domain"
	"github.com/parqueo/backend/internal/service"
)

// ParkingServicer defines the lifecycle operations the parking handlers
// depend on. Defining the interface here (in the consumer package) follows
// the Go convention: "accept interfaces, return concrete types". It lets
// handler tests inject a mock without touching the database or service layer.
type ParkingServicer interface {
	RegisterEntry(ctx context.Context, plate string, categoryID int64, requestedSpaceID *int64, actorID uuid.UUID) (domain.Trip, error)
	RegisterExit(ctx context.Context, plate string, actorID uuid.UUID) (domain.ExitResult, error)
	PreviewExit(ctx context.Context, plate string) (domain.ExitPreview, error)
	ActiveTrips(ctx context.Context) ([]domain.Trip, error)
}

// TariffServicer defines the tariff operations the tariff handlers depend on.
type TariffServicer interface {
	List(ctx context.Context) ([]domain.Tariff, error)
	Create(ctx context.Context, t domain.Tariff) (domain.Tariff, error)
	Update(ctx context.Context, t domain.Tariff) (domain.Tariff, error)
	SetActive(ctx context.Context, id int64, active bool) (domain.Tariff, error)
}

// ReportServicer defines the reporting operations the admin handlers depend on.
type ReportServicer interface {
	DashboardStats(ctx context.Context) (service.DashboardStats, error)
	History(ctx context.Context, params domain.PaginationParams) ([]domain.Trip, int64, error)
}

// SpaceLister lists spaces for operator display.
type SpaceLister interface {
	ListSpaces(ctx context.Context, filter domain.SpaceFilter) ([]domain.Space, error)
}

// CategoryLister lists the vehicle category reference data.
type CategoryLister interface {
	List(ctx context.Context) ([]domain.Category, error)
}

// Server holds every handler dependency. Methods are in domain-specific files
// but all operate on this struct. Wire it in main.go via Routes.
type Server struct {
	parking    ParkingServicer
	tariffs    TariffServicer
	reports    ReportServicer
	spaces     SpaceLister
	categories CategoryLister
	openapi    []byte
}

// NewServer constructs the Server with all its dependencies.
// openapi is the raw OpenAPI document served at /openapi.yaml; nil disables
// the route.
func NewServer(parking ParkingServicer, tariffs TariffServicer, reports ReportServicer, spaces SpaceLister, categories CategoryLister, openapi []byte) *Server {
	return &Server{
		parking:    parking,
		tariffs:    tariffs,
		reports:    reports,
		spaces:     spaces,
		categories: categories,
		openapi:    openapi,
	}
}

// Routes registers every endpoint on the given router.
func (s *Server) Routes(r chi.Router) {
	r.Get("/healthz", s.GetHealth)
	if s.openapi != nil {
		r.Get("/openapi.yaml", s.GetOpenAPI)
	}

	r.Route("/api", func(r chi.Router) {
		r.Post("/entries", s.RegisterEntry)
		r.Post("/exits", s.RegisterExit)
		r.Get("/exits/preview", s.PreviewExit)

		r.Get("/trips/active", s.ListActiveTrips)
		r.Get("/trips", s.ListTripHistory)

		r.Get("/dashboard/stats", s.GetDashboardStats)

		r.Get("/spaces", s.ListSpaces)
		r.Get("/categories", s.ListCategories)

		r.Get("/tariffs", s.ListTariffs)
		r.Post("/tariffs", s.CreateTariff)
		r.Put("/tariffs/{id}", s.UpdateTariff)
		r.Patch("/tariffs/{id}/status", s.ToggleTariffStatus)
	})
}

// actorID extracts the acting operator's id from the X-Actor-ID header.
// Authentication is out of scope; upstream middleware is expected to have
// validated the caller and stamped this header.
func actorID(r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(r.Header.Get("X-Actor-ID"))
	if err != nil {
		return uuid.UUID{}, false
	}
	return id, true
}
