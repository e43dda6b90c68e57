package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/zabecode/dac/internal/api/middleware"
	"github.com/zabecode/dac/internal/api/response"
	"github.com/zabecode/dac/internal/service"
	"github.com/zabecode/dac/internal/store"
)

// identifier pulls the authenticated tenant identifier from the request
// context. Handlers behind the auth middleware always have one; a missing
// identifier fails closed.
func identifier(w http.ResponseWriter, r *http.Request) (string, bool) {
	id, ok := middleware.GetIdentifier(r)
	if !ok {
		response.Error(w, http.StatusUnauthorized,
			"INVALID_KEY", "Missing, invalid, or expired API key", nil)
		return "", false
	}
	return id, true
}

// pathID parses a numeric URL parameter. A non-numeric id behaves like a
// nonexistent one.
func pathID(w http.ResponseWriter, r *http.Request, param string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, param), 10, 64)
	if err != nil || id <= 0 {
		response.Error(w, http.StatusNotFound, "NOT_FOUND", "Resource not found", nil)
		return 0, false
	}
	return id, true
}

// decodeJSON decodes the request body into dst, rejecting undecodable bodies.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "Invalid JSON body", nil)
		return false
	}
	return true
}

// writeServiceError maps service and store errors onto the uniform status
// codes. Storage-engine detail never reaches the caller.
func writeServiceError(w http.ResponseWriter, err error) {
	var vErr *service.ValidationError
	switch {
	case errors.As(err, &vErr):
		response.Error(w, http.StatusUnprocessableEntity,
			"VALIDATION_ERROR", "Invalid payload", vErr.Fields)
	case errors.Is(err, store.ErrNotFound):
		response.Error(w, http.StatusNotFound, "NOT_FOUND", "Resource not found", nil)
	case errors.Is(err, store.ErrDuplicateKey):
		response.Error(w, http.StatusConflict, "CONFLICT", "Resource already exists", nil)
	default:
		slog.Error("request failed", "error", err)
		response.Error(w, http.StatusInternalServerError,
			"INTERNAL_ERROR", "An unexpected error occurred", nil)
	}
}

// queryInt64 parses an optional numeric query parameter.
func queryInt64(r *http.Request, name string) *int64 {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return nil
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return nil
	}
	return &v
}

// queryInt parses an optional numeric query parameter with a zero default.
func queryInt(r *http.Request, name string) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0
	}
	return v
}
