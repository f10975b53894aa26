package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/campusmedia/gallery/internal/service"
	"github.com/campusmedia/gallery/internal/validation"
)

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	err := json.NewEncoder(w).Encode(v)
	if err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

// writeServiceError maps service errors to status codes. Unknown errors
// are logged and hidden behind a generic 500.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, service.ErrResourceNotFound):
		writeError(w, http.StatusNotFound, "resource not found")
	case errors.Is(err, validation.ErrInvalidResource),
		errors.Is(err, validation.ErrInvalidFile),
		errors.Is(err, service.ErrNoContent):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrNoVisitor):
		writeError(w, http.StatusBadRequest, "visitor cookie required")
	case errors.Is(err, service.ErrInvalidCredentials):
		writeError(w, http.StatusUnauthorized, "invalid username or password")
	case errors.Is(err, service.ErrStorageUnavailable):
		writeError(w, http.StatusServiceUnavailable, "file storage is not configured")
	default:
		slog.Error("request failed", "error", err, "method", r.Method, "path", r.URL.Path)
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}
