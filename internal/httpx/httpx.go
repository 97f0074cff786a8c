// Package httpx holds the JSON request/response helpers shared by handlers.
package httpx

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/ayush/syncdraft/internal/models"
	"github.com/ayush/syncdraft/internal/store"
)

// maxBodyBytes bounds request bodies; post content is the largest payload.
const maxBodyBytes = 5 << 20

// WriteJSON writes a JSON response with the given status code.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Warn("encode response", "error", err)
	}
}

// Decode reads a JSON body into v. Any failure is a validation error.
func Decode(r *http.Request, v any) error {
	if r.Body == nil {
		return models.NewValidationError("invalid request body")
	}
	if err := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes)).Decode(v); err != nil {
		return models.NewValidationError("invalid request body")
	}
	return nil
}

// SoftNotFound answers 200 with {"error": message}, the not-found shape some
// older routes use.
func SoftNotFound(w http.ResponseWriter, message string) {
	WriteJSON(w, http.StatusOK, models.SoftError{Error: message})
}

// Error maps err to a status code and writes {"detail", "code"}.
// Unclassified errors are logged and reported as a generic 500.
func Error(w http.ResponseWriter, r *http.Request, err error) {
	var appErr *models.AppError
	if !errors.As(err, &appErr) {
		if errors.Is(err, store.ErrNotFound) {
			appErr = models.NewNotFoundError("Resource")
		} else {
			appErr = models.NewInternalError(err)
		}
	}

	status := StatusOf(appErr.Code)
	if status == http.StatusInternalServerError {
		slog.ErrorContext(r.Context(), "request failed",
			"method", r.Method, "path", r.URL.Path, "error", err)
	}
	WriteJSON(w, status, models.ErrorResponse{Detail: appErr.Message, Code: appErr.Code})
}

// StatusOf returns the HTTP status for an AppError code.
func StatusOf(code string) int {
	switch code {
	case models.CodeUnauthenticated:
		return http.StatusUnauthorized
	case models.CodeForbidden:
		return http.StatusForbidden
	case models.CodeNotFound:
		return http.StatusNotFound
	case models.CodeConflict, models.CodeValidation:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
