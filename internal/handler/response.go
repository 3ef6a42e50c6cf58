package handler

// RESPONSE HELPERS:
// The JSON endpoints (chat, health) share one response shape:
//
//	success: whatever the endpoint returns, e.g. {"response": "..."}
//	failure: {"error": "human readable message"}
//
// The browser widget only has to look for an "error" key.

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/burakyalinat/portfolio/internal/apperror"
)

// ErrorResponse is the error body of every JSON endpoint.
type ErrorResponse struct {
	Error string `json:"error"`
}

// writeJSON sends a JSON response with the given status code.
//
// HEADER ORDER MATTERS:
// Headers and status must be set before the body; once Encode writes, the
// headers are on the wire and later changes are ignored.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			// Headers are already sent; logging is all that is left.
			slog.Error("failed to encode JSON response", slog.String("error", err.Error()))
		}
	}
}

// writeError maps a domain error to an HTTP status and sends it.
//
// The service layer returns apperror sentinels wrapped in *AppError; the
// AppError message is written for end users. Anything else is an internal
// error and only a generic message leaves the server.
func writeError(w http.ResponseWriter, err error) {
	var appErr *apperror.AppError
	if !errors.As(err, &appErr) {
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: "An internal error occurred"})
		return
	}

	writeJSON(w, statusFor(err), ErrorResponse{Error: appErr.Message})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, apperror.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, apperror.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, apperror.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, apperror.ErrConflict):
		return http.StatusConflict
	default:
		// ErrUpstream included: the widget shows the message either way.
		return http.StatusInternalServerError
	}
}
