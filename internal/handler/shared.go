package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/ifti136/android-demo/internal/auth"
	"github.com/ifti136/android-demo/internal/models"
	"github.com/ifti136/android-demo/internal/profile"
)

// Default storage names, used when the matching Dependencies field is empty.
const (
	DefaultExportsContainer = "coin-tracker-data"
	DefaultImportQueue      = "import-queue"
)

// Dependencies holds the services required by the handlers.
type Dependencies struct {
	Profiles ProfileService
	Auth     AuthService
	Blob     BlobClient
	Queue    QueueClient
	Email    EmailClient

	ExportsContainer string
	ImportQueue      string
	AdminEmails      []string
}

func (d *Dependencies) exportsContainer() string {
	if d.ExportsContainer == "" {
		return DefaultExportsContainer
	}
	return d.ExportsContainer
}

func (d *Dependencies) importQueue() string {
	if d.ImportQueue == "" {
		return DefaultImportQueue
	}
	return d.ImportQueue
}

// WriteJSON writes a JSON response with the given status code.
func WriteJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			slog.Error("failed to encode JSON response", "error", err)
		}
	}
}

// WriteError writes an error response.
func WriteError(w http.ResponseWriter, status int, message string) {
	WriteJSON(w, status, map[string]string{"error": message})
}

var badRequestErrors = []error{
	profile.ErrInvalidIndex,
	profile.ErrInvalidProfileName,
	profile.ErrInvalidAmount,
	profile.ErrInvalidDate,
	profile.ErrMissingSource,
	profile.ErrInvalidQuickAction,
	profile.ErrEmptyImport,
	auth.ErrInvalidCredentials,
}

var conflictErrors = []error{
	profile.ErrProfileExists,
	auth.ErrUsernameTaken,
	models.ErrConcurrentUpdate,
}

// statusFor maps a service error to its HTTP status.
func statusFor(err error) int {
	for _, e := range badRequestErrors {
		if errors.Is(err, e) {
			return http.StatusBadRequest
		}
	}
	for _, e := range conflictErrors {
		if errors.Is(err, e) {
			return http.StatusConflict
		}
	}
	switch {
	case errors.Is(err, profile.ErrTransactionNotFound), errors.Is(err, models.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, auth.ErrUnauthenticated), errors.Is(err, profile.ErrAccountNotFound):
		return http.StatusUnauthorized
	case errors.Is(err, auth.ErrForbidden):
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

// writeServiceError logs err and writes it with the mapped status. Server
// errors get a generic message.
func writeServiceError(w http.ResponseWriter, r *http.Request, op string, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		slog.Error("request failed", "op", op, "path", r.URL.Path, "error", err)
		WriteError(w, status, fmt.Sprintf("Failed to %s", op))
		return
	}
	slog.Warn("request rejected", "op", op, "path", r.URL.Path, "status", status, "error", err)
	WriteError(w, status, err.Error())
}

// decodeJSON reads the request body into v, writing a 400 on failure.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		slog.Warn("invalid request body", "path", r.URL.Path, "error", err)
		WriteError(w, http.StatusBadRequest, "Invalid request body")
		return false
	}
	return true
}
