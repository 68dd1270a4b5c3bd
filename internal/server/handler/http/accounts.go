package http

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/gcp-panel/backend/internal/middleware"
	"github.com/gcp-panel/backend/internal/models"
)

// AccountStore defines the account persistence operations required by
// the account handlers.
type AccountStore interface {
	// List returns all accounts without key material.
	List() []models.Account
	// Add validates and stores a new service-account key, returning
	// the fresh account id.
	Add(name, rawKey string) (string, error)
	// Rename updates an account's display name.
	Rename(id, newName string) error
	// Remove deletes the account and its key file, returning the
	// removed record.
	Remove(id string) (models.Account, error)
}

// ClientCache evicts cached clients when an account disappears.
type ClientCache interface {
	Remove(accountID string)
}

// AccountHandler handles account CRUD and the readiness endpoint.
type AccountHandler struct {
	Accounts AccountStore
	Clients  ClientCache
	Audit    Auditor
}

// List handles GET /api/accounts.
func (h *AccountHandler) List(w http.ResponseWriter, r *http.Request) {
	accounts := h.Accounts.List()
	if accounts == nil {
		accounts = []models.Account{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "accounts": accounts})
}

// Status handles GET /api/status; ready means at least one account exists.
func (h *AccountHandler) Status(w http.ResponseWriter, r *http.Request) {
	accounts := h.Accounts.List()
	if accounts == nil {
		accounts = []models.Account{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"ready": len(accounts) > 0, "accounts": accounts})
}

// Add handles POST /api/accounts, registering a new service-account key.
func (h *AccountHandler) Add(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name string `json:"name"`
		Key  string `json:"key"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}
	id, err := h.Accounts.Add(req.Name, req.Key)
	if err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}
	h.Audit.Append(middleware.ClientIP(r), "add_account", map[string]string{"id": id, "name": req.Name})
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "id": id})
}

// Rename handles PUT /api/accounts/{id}.
func (h *AccountHandler) Rename(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var req struct {
		Name string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}
	if err := h.Accounts.Rename(id, req.Name); err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}

// Remove handles DELETE /api/accounts/{id}, evicting any cached client
// bundle for the account.
func (h *AccountHandler) Remove(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	removed, err := h.Accounts.Remove(id)
	if err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}
	h.Clients.Remove(id)
	h.Audit.Append(middleware.ClientIP(r), "delete_account", map[string]string{"id": id, "name": removed.Name})
	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}
