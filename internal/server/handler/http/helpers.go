// Package http provides the HTTP handlers for the console API:
// login/session management, account CRUD, instance operations and
// audit log access.
package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gcp-panel/backend/internal/gcp"
	"github.com/gcp-panel/backend/internal/repository"
	"github.com/gcp-panel/backend/internal/service"
)

// Auditor appends one audit record; implementations never fail the
// request on behalf of the log.
type Auditor interface {
	Append(ip, action string, detail any)
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]any{"success": false, "error": message})
}

// statusFor maps the error taxonomy onto HTTP status codes. Remote API
// failures fall through to 500 with the message passed through verbatim.
func statusFor(err error) int {
	switch {
	case errors.Is(err, repository.ErrInvalidCredential),
		errors.Is(err, service.ErrMissingName),
		errors.Is(err, service.ErrMissingLocation),
		errors.Is(err, service.ErrInvalidLocation),
		errors.Is(err, service.ErrNoAvailableZone):
		return http.StatusBadRequest
	case errors.Is(err, repository.ErrNotFound),
		errors.Is(err, service.ErrUnknownAction):
		return http.StatusNotFound
	case errors.Is(err, gcp.ErrNotAvailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
