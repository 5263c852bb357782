package handler

import (
	"net/http"
	"strconv"

	"github.com/parqueo/backend/internal/domain"
)

// ListSpaces handles GET /api/spaces?category_id=&available=.
// Operators use this to pick a specific space for an entry.
func (s *Server) ListSpaces(w http.ResponseWriter, r *http.Request) {
	var filter domain.SpaceFilter

	if v := r.URL.Query().Get("category_id"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			requestError(w, "category_id must be an integer")
			return
		}
		filter.CategoryID = &id
	}
	if v := r.URL.Query().Get("available"); v != "" {
		avail, err := strconv.ParseBool(v)
		if err != nil {
			requestError(w, "available must be a boolean")
			return
		}
		filter.Available = &avail
	}

	spaces, err := s.spaces.ListSpaces(r.Context(), filter)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, spaces)
}

// ListCategories handles GET /api/categories.
func (s *Server) ListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := s.categories.List(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, categories)
}
