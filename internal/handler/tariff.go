package handler

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/parqueo/backend/internal/domain"
)

// tariffRequest is the body for POST /api/tariffs and PUT /api/tariffs/{id}.
type tariffRequest struct {
	CategoryID      int64      `json:"category_id"`
	Name            string     `json:"name"`
	BillingMode     string     `json:"billing_mode"`
	FractionMinutes int        `json:"fraction_minutes,omitempty"`
	Rate            float64    `json:"rate"`
	ValidFrom       time.Time  `json:"valid_from"`
	ValidTo         *time.Time `json:"valid_to,omitempty"`
}

// tariffStatusRequest is the body for PATCH /api/tariffs/{id}/status.
// Active is a pointer so a missing field is distinguishable from false.
type tariffStatusRequest struct {
	Active *bool `json:"active"`
}

// ListTariffs handles GET /api/tariffs.
func (s *Server) ListTariffs(w http.ResponseWriter, r *http.Request) {
	tariffs, err := s.tariffs.List(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, tariffs)
}

// CreateTariff handles POST /api/tariffs.
func (s *Server) CreateTariff(w http.ResponseWriter, r *http.Request) {
	var req tariffRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		requestError(w, "invalid request body")
		return
	}

	created, err := s.tariffs.Create(r.Context(), requestToTariff(0, req))
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, created)
}

// UpdateTariff handles PUT /api/tariffs/{id}.
func (s *Server) UpdateTariff(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		requestError(w, "invalid tariff id")
		return
	}

	var req tariffRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		requestError(w, "invalid request body")
		return
	}

	updated, err := s.tariffs.Update(r.Context(), requestToTariff(id, req))
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, updated)
}

// ToggleTariffStatus handles PATCH /api/tariffs/{id}/status.
func (s *Server) ToggleTariffStatus(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		requestError(w, "invalid tariff id")
		return
	}

	var req tariffStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Active == nil {
		requestError(w, "active is required")
		return
	}

	updated, err := s.tariffs.SetActive(r.Context(), id, *req.Active)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, updated)
}

// pathID parses the {id} URL parameter as an int64.
func pathID(r *http.Request) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
}

// requestToTariff converts a tariffRequest into a domain.Tariff.
func requestToTariff(id int64, req tariffRequest) domain.Tariff {
	return domain.Tariff{
		ID:              id,
		CategoryID:      req.CategoryID,
		Name:            req.Name,
		Mode:            domain.BillingMode(req.BillingMode),
		FractionMinutes: req.FractionMinutes,
		Rate:            req.Rate,
		ValidFrom:       req.ValidFrom,
		ValidTo:         req.ValidTo,
	}
}
