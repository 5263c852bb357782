package handler

import (
	"encoding/json"
	"net/http"
)

// entryRequest is the body for POST /api/entries.
type entryRequest struct {
	Plate      string `json:"plate"`
	CategoryID int64  `json:"category_id"`
	SpaceID    *int64 `json:"space_id,omitempty"` // omit for auto-assignment
}

// exitRequest is the body for POST /api/exits.
type exitRequest struct {
	Plate string `json:"plate"`
}

// RegisterEntry handles POST /api/entries.
func (s *Server) RegisterEntry(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorID(r)
	if !ok {
		requestError(w, "X-Actor-ID header is required and must be a UUID")
		return
	}

	var req entryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		requestError(w, "invalid request body")
		return
	}
	if req.Plate == "" || req.CategoryID == 0 {
		requestError(w, "plate and category_id are required")
		return
	}

	trip, err := s.parking.RegisterEntry(r.Context(), req.Plate, req.CategoryID, req.SpaceID, actor)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, trip)
}

// RegisterExit handles POST /api/exits.
func (s *Server) RegisterExit(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorID(r)
	if !ok {
		requestError(w, "X-Actor-ID header is required and must be a UUID")
		return
	}

	var req exitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		requestError(w, "invalid request body")
		return
	}
	if req.Plate == "" {
		requestError(w, "plate is required")
		return
	}

	result, err := s.parking.RegisterExit(r.Context(), req.Plate, actor)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// PreviewExit handles GET /api/exits/preview?plate=.
// Read-only: quotes the current cost without closing the trip.
func (s *Server) PreviewExit(w http.ResponseWriter, r *http.Request) {
	plate := r.URL.Query().Get("plate")
	if plate == "" {
		requestError(w, "plate query parameter is required")
		return
	}

	preview, err := s.parking.PreviewExit(r.Context(), plate)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, preview)
}

// ListActiveTrips handles GET /api/trips/active.
func (s *Server) ListActiveTrips(w http.ResponseWriter, r *http.Request) {
	trips, err := s.parking.ActiveTrips(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, trips)
}
