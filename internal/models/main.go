// Package models defines the core data structures for accounts, instances
// and audit entries.
package models

// Account represents one configured GCP service-account identity.
type Account struct {
	// ID is the unique identifier for the account.
	ID string `json:"id"`
	// Name is the display name chosen by the operator.
	Name string `json:"name"`
	// ProjectID is the GCP project the credentials belong to.
	ProjectID string `json:"projectId"`
}

// Instance is the read-through projection of a remote VM resource.
// The server holds no authoritative copy; every listing re-fetches
// from the Compute API.
type Instance struct {
	Name         string   `json:"name"`
	Status       string   `json:"status"`
	MachineType  string   `json:"machineType"`
	InternalIP   string   `json:"internalIp"`
	ExternalIP   string   `json:"externalIp"`
	IPv6         string   `json:"ipv6"`
	Zone         string   `json:"zone"`
	DiskSizeGb   string   `json:"diskSizeGb"`
	CreationTime string   `json:"creationTime"`
	Tags         []string `json:"tags"`
}

// CreateRequest carries the parameters for a new instance.
type CreateRequest struct {
	// Name is the instance name; required.
	Name string `json:"name"`
	// Zone is a zone or region name; a region picks an available zone.
	Zone string `json:"zone"`
	// MachineType defaults to e2-micro when empty.
	MachineType string `json:"machineType"`
	// Image is a logical image key (debian-11, ubuntu-2204, ...).
	Image string `json:"image"`
	// DiskSizeGb defaults to 10 when zero.
	DiskSizeGb int64 `json:"diskSize"`
	// Password, when set, enables root password login via startup script.
	Password string `json:"password"`
	// EnableIPv6 requests a dual-stack interface with an external IPv6.
	EnableIPv6 bool `json:"enableIPv6"`
}

// AuditEntry is one append-only audit log record.
type AuditEntry struct {
	// Time is the RFC3339 timestamp of the event.
	Time string `json:"time"`
	// IP is the source address of the request.
	IP string `json:"ip"`
	// Action names the event ("login", "create_instance", ...).
	Action string `json:"action"`
	// Detail holds free-form context, JSON-encoded for structured values.
	Detail string `json:"detail"`
}
