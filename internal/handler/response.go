// Package handler is the HTTP layer: it parses requests, calls the
// services, and renders JSON (or, for certificate printing, HTML).
package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/tahsin/project-nourish/internal/apperror"
)

// ErrorResponse is the standard error shape returned by every endpoint.
type ErrorResponse struct {
	Error   string `json:"error"`           // machine-readable category
	Message string `json:"message"`         // human-readable description
	Field   string `json:"field,omitempty"` // offending field for validation errors
}

// writeJSON sends data with the given status. Headers must be set before
// the first body write.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			slog.Error("encoding JSON response", slog.String("error", err.Error()))
		}
	}
}

// writeError maps a domain error chain to HTTP. The service layer knows
// nothing about status codes; this is the single translation point.
//
// DataIntegrity and Unavailable deliberately collapse into a generic 500:
// their details belong in the log, not in the response body.
func writeError(w http.ResponseWriter, err error) {
	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		status := http.StatusInternalServerError
		errorType := "internal_error"
		message := appErr.Message

		switch {
		case errors.Is(err, apperror.ErrValidation):
			status = http.StatusBadRequest
			errorType = "validation_error"
		case errors.Is(err, apperror.ErrUnauthenticated):
			status = http.StatusUnauthorized
			errorType = "unauthenticated"
		case errors.Is(err, apperror.ErrForbidden):
			status = http.StatusForbidden
			errorType = "forbidden"
		case errors.Is(err, apperror.ErrNotFound):
			status = http.StatusNotFound
			errorType = "not_found"
		case errors.Is(err, apperror.ErrConflict):
			status = http.StatusConflict
			errorType = "conflict"
		case errors.Is(err, apperror.ErrNotEligible):
			status = http.StatusUnprocessableEntity
			errorType = "not_eligible"
		case errors.Is(err, apperror.ErrDataIntegrity), errors.Is(err, apperror.ErrUnavailable):
			message = "internal error"
		}

		writeJSON(w, status, ErrorResponse{
			Error:   errorType,
			Message: message,
			Field:   appErr.Field,
		})
		return
	}

	// Unknown error: never leak internals to the client.
	slog.Error("unhandled error", slog.String("error", err.Error()))
	writeJSON(w, http.StatusInternalServerError, ErrorResponse{
		Error:   "internal_error",
		Message: "internal error",
	})
}

// parseLimit reads the optional ?limit query parameter; 0 means the
// service default.
func parseLimit(r *http.Request) int {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	return limit
}

// parseOffset reads the optional ?offset query parameter.
func parseOffset(r *http.Request) int {
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))
	return offset
}

// decodeJSON parses a request body into dst, rejecting unknown fields.
func decodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return apperror.ValidationFailed("body", "invalid JSON request body")
	}
	return nil
}
