package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/parqueo/backend/internal/domain"
)

// errorResponse is the JSON error envelope for every non-2xx response.
// Code is machine-readable (a domain.Kind or "validation_error"); Message is
// for humans.
type errorResponse struct {
	Error errorDetail `json:"error"`
}

type errorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// writeJSON writes v as a JSON response with the given status.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("encode response", "error", err)
	}
}

// writeError maps a service error to an HTTP response.
//
// Rejections carry their kind verbatim as the error code; each kind has a
// fixed status so clients can rely on both. Validation sentinels become 422,
// repo ErrNotFound 404, and anything else — genuine store or programming
// faults — becomes a 500 with the STORE_UNAVAILABLE code, never leaking
// internals.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	if rej, ok := domain.AsRejection(err); ok {
		writeJSON(w, rejectionStatus(rej.Kind), errorResponse{
			Error: errorDetail{Code: string(rej.Kind), Message: rej.Message},
		})
		return
	}

	switch {
	case errors.Is(err, domain.ErrValidation):
		writeJSON(w, http.StatusUnprocessableEntity, errorResponse{
			Error: errorDetail{Code: "validation_error", Message: unwrapMessage(err)},
		})
	case errors.Is(err, domain.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorResponse{
			Error: errorDetail{Code: string(domain.KindNotFound), Message: "resource not found"},
		})
	default:
		slog.ErrorContext(r.Context(), "request failed", "method", r.Method, "path", r.URL.Path, "error", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{
			Error: errorDetail{Code: string(domain.KindStoreUnavailable), Message: "internal error"},
		})
	}
}

// rejectionStatus fixes the HTTP status for each rejection kind.
func rejectionStatus(kind domain.Kind) int {
	switch kind {
	case domain.KindInvalidPlateFormat, domain.KindInvalidSpace:
		return http.StatusUnprocessableEntity
	case domain.KindDuplicateEntry, domain.KindFullCapacity,
		domain.KindSpaceOccupied, domain.KindNoSpaceAvailable:
		return http.StatusConflict
	case domain.KindNotFound:
		return http.StatusNotFound
	case domain.KindStoreUnavailable:
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

// requestError writes a 400 for a request rejected before reaching the
// service layer (missing body, malformed JSON, bad header).
func requestError(w http.ResponseWriter, message string) {
	writeJSON(w, http.StatusBadRequest, errorResponse{
		Error: errorDetail{Code: "bad_request", Message: message},
	})
}

// unwrapMessage extracts the human-readable part from a wrapped sentinel error.
// e.g. "service.TariffService.Create: validation error: name is required" → "name is required"
func unwrapMessage(err error) string {
	if err == nil {
		return ""
	}
	msg := err.Error()
	if i := strings.LastIndex(msg, "validation error: "); i >= 0 {
		return msg[i+len("validation error: "):]
	}
	return msg
}
