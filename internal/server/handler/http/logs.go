package http

import (
	"net/http"

	"github.com/gcp-panel/backend/internal/models"
)

// AuditReader returns recent audit entries, newest first.
type AuditReader interface {
	Recent() []models.AuditEntry
}

// LogsHandler serves the audit history.
type LogsHandler struct {
	Audit AuditReader
}

// List handles GET /api/logs, returning at most the last 100 entries.
func (h *LogsHandler) List(w http.ResponseWriter, r *http.Request) {
	logs := h.Audit.Recent()
	if logs == nil {
		logs = []models.AuditEntry{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"logs": logs})
}
