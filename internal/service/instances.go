package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	compute "google.golang.org/api/compute/v1"

	"github.com/gcp-panel/backend/internal/gcp"
	"github.com/gcp-panel/backend/internal/models"
)

// ErrMissingName is returned when an instance operation lacks a name.
var ErrMissingName = errors.New("missing instance name")

// ErrUnknownAction is returned for actions outside start/stop/delete.
var ErrUnknownAction = errors.New("unknown action")

// imageMap resolves logical image keys to image family resource paths.
var imageMap = map[string]string{
	"debian-11":   "projects/debian-cloud/global/images/family/debian-11",
	"debian-12":   "projects/debian-cloud/global/images/family/debian-12",
	"ubuntu-2004": "projects/ubuntu-os-cloud/global/images/family/ubuntu-2004-lts",
	"ubuntu-2204": "projects/ubuntu-os-cloud/global/images/family/ubuntu-2204-lts",
	"centos-7":    "projects/centos-cloud/global/images/family/centos-7",
}

const defaultImage = "debian-11"

const (
	defaultMachineType = "e2-micro"
	defaultDiskSizeGb  = 10

	// retryAttempts bounds the linear-backoff retry around mutating
	// remote calls: 3 attempts, sleeping 1s then 2s between them.
	retryAttempts = 3
	retryBaseWait = time.Second

	// ipv4SettleDelay gives the control plane time to release a NAT
	// address between delete and re-add. A heuristic, not a guarantee.
	ipv4SettleDelay = 3 * time.Second
)

// Orchestrator issues instance lifecycle operations against the Compute
// API. It keeps no state of its own; every action is a single
// idempotent-intent request to the remote API.
type Orchestrator struct {
	provisioner *Provisioner
	log         *zap.Logger

	// sleep is swapped out in tests to avoid real delays.
	sleep func(time.Duration)
}

// NewOrchestrator returns an Orchestrator using the given provisioner.
func NewOrchestrator(provisioner *Provisioner, log *zap.Logger) *Orchestrator {
	return &Orchestrator{provisioner: provisioner, log: log, sleep: time.Sleep}
}

// List returns the instance projection for one zone, or for every zone
// when zone is "all".
func (o *Orchestrator) List(ctx context.Context, b *gcp.Bundle, zone string) ([]models.Instance, error) {
	if zone == "all" {
		scopes, err := b.API.AggregatedInstances(ctx)
		if err != nil {
			return nil, err
		}
		out := []models.Instance{}
		for scope, instances := range scopes {
			zoneName := NormalizeLocation(scope)
			for _, inst := range instances {
				out = append(out, formatInstance(inst, zoneName))
			}
		}
		return out, nil
	}

	instances, err := b.API.ListInstances(ctx, zone)
	if err != nil {
		return nil, err
	}
	out := []models.Instance{}
	for _, inst := range instances {
		out = append(out, formatInstance(inst, zone))
	}
	return out, nil
}

// formatInstance projects a remote instance resource onto the wire model.
func formatInstance(inst *compute.Instance, zone string) models.Instance {
	m := models.Instance{
		Name:         inst.Name,
		Status:       inst.Status,
		MachineType:  NormalizeLocation(inst.MachineType),
		InternalIP:   "N/A",
		ExternalIP:   "None",
		IPv6:         "None",
		Zone:         zone,
		DiskSizeGb:   "-",
		CreationTime: "-",
		Tags:         []string{},
	}
	if len(inst.NetworkInterfaces) > 0 {
		nic := inst.NetworkInterfaces[0]
		if nic.NetworkIP != "" {
			m.InternalIP = nic.NetworkIP
		}
		if len(nic.AccessConfigs) > 0 && nic.AccessConfigs[0].NatIP != "" {
			m.ExternalIP = nic.AccessConfigs[0].NatIP
		}
		if len(nic.Ipv6AccessConfigs) > 0 && nic.Ipv6AccessConfigs[0].ExternalIpv6 != "" {
			m.IPv6 = nic.Ipv6AccessConfigs[0].ExternalIpv6
		}
	}
	if len(inst.Disks) > 0 && inst.Disks[0].DiskSizeGb > 0 {
		m.DiskSizeGb = fmt.Sprintf("%d", inst.Disks[0].DiskSizeGb)
	}
	if inst.CreationTimestamp != "" {
		m.CreationTime = inst.CreationTimestamp
	}
	if inst.Tags != nil && len(inst.Tags.Items) > 0 {
		m.Tags = inst.Tags.Items
	}
	return m
}

// Create resolves the requested location, ensures network prerequisites
// and submits the instance creation. It returns the remote operation
// name without waiting for the instance to reach RUNNING.
func (o *Orchestrator) Create(ctx context.Context, b *gcp.Bundle, req models.CreateRequest) (string, error) {
	if req.Name == "" {
		return "", ErrMissingName
	}
	zone, err := ResolveLocation(ctx, b.API, req.Zone)
	if err != nil {
		return "", err
	}
	region, err := ZoneToRegion(zone)
	if err != nil {
		return "", err
	}

	// Best-effort, detached from the request: creation never waits on
	// firewall provisioning.
	go o.provisioner.EnsureFirewallRules(context.Background(), b.API)

	sourceImage, ok := imageMap[req.Image]
	if !ok {
		sourceImage = imageMap[defaultImage]
	}
	machineType := req.MachineType
	if machineType == "" {
		machineType = defaultMachineType
	}
	diskSize := req.DiskSizeGb
	if diskSize <= 0 {
		diskSize = defaultDiskSizeGb
	}

	inst := &compute.Instance{
		Name:        req.Name,
		MachineType: fmt.Sprintf("zones/%s/machineTypes/%s", zone, machineType),
		Disks: []*compute.AttachedDisk{{
			Boot: true,
			InitializeParams: &compute.AttachedDiskInitializeParams{
				SourceImage: sourceImage,
				DiskSizeGb:  diskSize,
			},
		}},
	}

	nic := &compute.NetworkInterface{
		Network:    "global/networks/default",
		Subnetwork: fmt.Sprintf("projects/%s/regions/%s/subnetworks/default", b.ProjectID, region),
		AccessConfigs: []*compute.AccessConfig{
			{Type: "ONE_TO_ONE_NAT", Name: "External NAT"},
		},
	}
	if req.EnableIPv6 {
		if err := o.provisioner.EnsureIPv6Subnet(ctx, b.API, zone); err != nil {
			return "", fmt.Errorf("subnet v6 failed: %w", err)
		}
		nic.StackType = "IPV4_IPV6"
		nic.Ipv6AccessConfigs = []*compute.AccessConfig{
			{Type: "DIRECT_IPV6", Name: "External IPv6", NetworkTier: "PREMIUM"},
		}
	}
	inst.NetworkInterfaces = []*compute.NetworkInterface{nic}

	if req.Password != "" {
		script := rootPasswordScript(req.Password)
		inst.Metadata = &compute.Metadata{
			Items: []*compute.MetadataItems{{Key: "startup-script", Value: &script}},
		}
	}

	return o.withRetry(func() (string, error) {
		return b.API.InsertInstance(ctx, zone, inst)
	})
}

// rootPasswordScript builds the startup script that enables root
// password login over SSH. A deliberate convenience with a real
// security trade-off; the operator opted in by supplying a password.
func rootPasswordScript(password string) string {
	return `#! /bin/bash
echo "root:` + password + `" | chpasswd
sed -i 's/PermitRootLogin no/PermitRootLogin yes/g' /etc/ssh/sshd_config
sed -i 's/PasswordAuthentication no/PasswordAuthentication yes/g' /etc/ssh/sshd_config
sed -i 's/#PermitRootLogin/PermitRootLogin/g' /etc/ssh/sshd_config
sed -i 's/#PasswordAuthentication/PasswordAuthentication/g' /etc/ssh/sshd_config
service sshd restart
systemctl restart ssh`
}

// Action forwards start, stop or delete to the remote API under retry.
// Any other action name fails with ErrUnknownAction.
func (o *Orchestrator) Action(ctx context.Context, b *gcp.Bundle, action, name, zone string) (string, error) {
	var call func(context.Context, string, string) (string, error)
	switch action {
	case "start":
		call = b.API.StartInstance
	case "stop":
		call = b.API.StopInstance
	case "delete":
		call = b.API.DeleteInstance
	default:
		return "", ErrUnknownAction
	}
	return o.withRetry(func() (string, error) {
		return call(ctx, zone, name)
	})
}

// ChangeIP rotates the public address of the instance's first network
// interface. ipType "ipv6" swaps the external IPv6 by toggling the
// interface stack type; anything else rotates the IPv4 NAT address.
func (o *Orchestrator) ChangeIP(ctx context.Context, b *gcp.Bundle, name, zone, ipType string) (string, error) {
	inst, err := b.API.GetInstance(ctx, zone, name)
	if err != nil {
		return "", err
	}
	if len(inst.NetworkInterfaces) == 0 {
		return "", fmt.Errorf("instance %s has no network interface", name)
	}
	nic := inst.NetworkInterfaces[0]

	if ipType == "ipv6" {
		return o.rotateIPv6(ctx, b, name, zone, nic)
	}
	return o.rotateIPv4(ctx, b, name, zone, nic)
}

// rotateIPv4 deletes the current NAT access config (if any), waits out a
// fixed settling delay so the control plane releases the address, then
// attaches a fresh one.
func (o *Orchestrator) rotateIPv4(ctx context.Context, b *gcp.Bundle, name, zone string, nic *compute.NetworkInterface) (string, error) {
	if len(nic.AccessConfigs) > 0 {
		op, err := b.API.DeleteAccessConfig(ctx, zone, name, nic.Name, nic.AccessConfigs[0].Name)
		if err != nil {
			return "", err
		}
		if err := b.API.WaitZoneOperation(ctx, zone, op); err != nil {
			return "", err
		}
	}
	o.sleep(ipv4SettleDelay)
	return b.API.AddAccessConfig(ctx, zone, name, nic.Name, &compute.AccessConfig{
		Name: "External NAT",
		Type: "ONE_TO_ONE_NAT",
	})
}

// rotateIPv6 flips the interface down to IPv4-only to force release of
// the old address, re-fetches the instance for a fresh fingerprint (the
// old one is stale after any mutation), then flips back to dual-stack
// with a new external IPv6 access config.
func (o *Orchestrator) rotateIPv6(ctx context.Context, b *gcp.Bundle, name, zone string, nic *compute.NetworkInterface) (string, error) {
	op, err := b.API.UpdateNetworkInterface(ctx, zone, name, nic.Name, &compute.NetworkInterface{
		StackType:   "IPV4_ONLY",
		Fingerprint: nic.Fingerprint,
	})
	if err != nil {
		return "", err
	}
	if err := b.API.WaitZoneOperation(ctx, zone, op); err != nil {
		return "", err
	}

	fresh, err := b.API.GetInstance(ctx, zone, name)
	if err != nil {
		return "", err
	}
	if len(fresh.NetworkInterfaces) == 0 {
		return "", fmt.Errorf("instance %s has no network interface", name)
	}

	return b.API.UpdateNetworkInterface(ctx, zone, name, nic.Name, &compute.NetworkInterface{
		StackType:      "IPV4_IPV6",
		Ipv6AccessType: "EXTERNAL",
		Fingerprint:    fresh.NetworkInterfaces[0].Fingerprint,
		Ipv6AccessConfigs: []*compute.AccessConfig{
			{Type: "DIRECT_IPV6", Name: "External IPv6", NetworkTier: "PREMIUM"},
		},
	})
}

// withRetry runs fn up to retryAttempts times, sleeping 1s after the
// first failure and 2s after the second. Linear, unjittered backoff is
// fine at console request volume. The last error is returned verbatim.
func (o *Orchestrator) withRetry(fn func() (string, error)) (string, error) {
	var lastErr error
	for attempt := 1; attempt <= retryAttempts; attempt++ {
		result, err := fn()
		if err == nil {
			return result, nil
		}
		lastErr = err
		if attempt < retryAttempts {
			o.sleep(time.Duration(attempt) * retryBaseWait)
		}
	}
	return "", lastErr
}
