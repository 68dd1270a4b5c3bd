package http

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/gcp-panel/backend/internal/gcp"
	"github.com/gcp-panel/backend/internal/middleware"
	"github.com/gcp-panel/backend/internal/models"
)

// defaultListZone is listed when the UI supplies no zone parameter.
const defaultListZone = "us-central1-a"

// ClientProvider resolves the client bundle for an account.
type ClientProvider interface {
	Clients(ctx context.Context, accountID string) (*gcp.Bundle, error)
}

// InstanceService defines the orchestration operations required by the
// instance handlers.
type InstanceService interface {
	// List returns the projection of instances in one zone, or across
	// all zones when zone is "all".
	List(ctx context.Context, b *gcp.Bundle, zone string) ([]models.Instance, error)
	// Create submits an instance creation and returns the operation name.
	Create(ctx context.Context, b *gcp.Bundle, req models.CreateRequest) (string, error)
	// Action forwards start/stop/delete and returns the operation name.
	Action(ctx context.Context, b *gcp.Bundle, action, name, zone string) (string, error)
	// ChangeIP rotates the instance's public IPv4 or IPv6 address.
	ChangeIP(ctx context.Context, b *gcp.Bundle, name, zone, ipType string) (string, error)
}

// InstanceHandler handles instance listing and lifecycle endpoints.
type InstanceHandler struct {
	Clients   ClientProvider
	Instances InstanceService
	Audit     Auditor
}

// bundle resolves the account from the request and returns its client
// bundle, writing the error response itself on failure.
func (h *InstanceHandler) bundle(w http.ResponseWriter, r *http.Request, accountID string) (*gcp.Bundle, bool) {
	if accountID == "" {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": "No account specified"})
		return nil, false
	}
	b, err := h.Clients.Clients(r.Context(), accountID)
	if err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]any{"error": "Account key not configured"})
		return nil, false
	}
	return b, true
}

// List handles GET /api/instances?zone=<zone|all>&account=<id>.
func (h *InstanceHandler) List(w http.ResponseWriter, r *http.Request) {
	b, ok := h.bundle(w, r, r.URL.Query().Get("account"))
	if !ok {
		return
	}
	zone := r.URL.Query().Get("zone")
	if zone == "" {
		zone = defaultListZone
	}
	instances, err := h.Instances.List(r.Context(), b, zone)
	if err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "instances": instances})
}

// Create handles POST /api/instances/create.
func (h *InstanceHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req struct {
		models.CreateRequest
		Account string `json:"account"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}
	b, ok := h.bundle(w, r, req.Account)
	if !ok {
		return
	}
	op, err := h.Instances.Create(r.Context(), b, req.CreateRequest)
	if err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}
	h.Audit.Append(middleware.ClientIP(r), "create_instance", map[string]string{
		"name": req.Name, "zone": req.Zone, "machineType": req.MachineType, "account": b.AccountName,
	})
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "operation": op})
}

// ChangeIP handles POST /api/instances/changeip.
func (h *InstanceHandler) ChangeIP(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name    string `json:"name"`
		Zone    string `json:"zone"`
		IPType  string `json:"ipType"`
		Account string `json:"account"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}
	b, ok := h.bundle(w, r, req.Account)
	if !ok {
		return
	}
	op, err := h.Instances.ChangeIP(r.Context(), b, req.Name, req.Zone, req.IPType)
	if err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}
	h.Audit.Append(middleware.ClientIP(r), "change_ip", map[string]string{
		"name": req.Name, "zone": req.Zone, "type": req.IPType, "account": b.AccountName,
	})
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "operation": op})
}

// IPv6 handles POST /api/instances/ipv6, superseded by the changeip flow.
func (h *InstanceHandler) IPv6(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusNotImplemented, map[string]any{"error": "Implemented via Change IP logic"})
}

// Action handles POST /api/instances/{action} for start, stop and delete.
func (h *InstanceHandler) Action(w http.ResponseWriter, r *http.Request) {
	action := chi.URLParam(r, "action")
	var req struct {
		Name    string `json:"name"`
		Zone    string `json:"zone"`
		Account string `json:"account"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}
	b, ok := h.bundle(w, r, req.Account)
	if !ok {
		return
	}
	op, err := h.Instances.Action(r.Context(), b, action, req.Name, req.Zone)
	if err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}
	h.Audit.Append(middleware.ClientIP(r), "instance_"+action, map[string]string{
		"name": req.Name, "zone": req.Zone, "account": b.AccountName,
	})
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true, "message": action + " sent", "operation": op,
	})
}
