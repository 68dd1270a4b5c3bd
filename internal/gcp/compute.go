// Package gcp manages per-account Compute API clients and their cache.
package gcp

import (
	"context"
	"fmt"

	compute "google.golang.org/api/compute/v1"
	"google.golang.org/api/option"
)

// API is the slice of the Compute surface the console uses. Operations
// that mutate remote state return the name of the long-running operation
// they started; callers needing completion poll or wait on it.
type API interface {
	// ListInstances returns all instances in a single zone.
	ListInstances(ctx context.Context, zone string) ([]*compute.Instance, error)
	// AggregatedInstances returns instances across every zone, keyed by
	// the scope path (e.g. "zones/us-central1-a").
	AggregatedInstances(ctx context.Context) (map[string][]*compute.Instance, error)
	// GetInstance fetches a single instance.
	GetInstance(ctx context.Context, zone, name string) (*compute.Instance, error)
	// InsertInstance submits an instance creation.
	InsertInstance(ctx context.Context, zone string, inst *compute.Instance) (string, error)
	// StartInstance, StopInstance and DeleteInstance forward directly to
	// the matching remote calls.
	StartInstance(ctx context.Context, zone, name string) (string, error)
	StopInstance(ctx context.Context, zone, name string) (string, error)
	DeleteInstance(ctx context.Context, zone, name string) (string, error)

	// UpdateNetworkInterface patches an instance network interface. The
	// resource must carry a fingerprint fetched after the previous
	// mutation or the remote API rejects the call.
	UpdateNetworkInterface(ctx context.Context, zone, instance, nic string, res *compute.NetworkInterface) (string, error)
	// AddAccessConfig attaches a public-IP access config to an interface.
	AddAccessConfig(ctx context.Context, zone, instance, nic string, ac *compute.AccessConfig) (string, error)
	// DeleteAccessConfig detaches an access config from an interface.
	DeleteAccessConfig(ctx context.Context, zone, instance, nic, acName string) (string, error)
	// WaitZoneOperation blocks until a zonal operation finishes.
	WaitZoneOperation(ctx context.Context, zone, operation string) error

	// ListZones returns all zones visible to the project.
	ListZones(ctx context.Context) ([]*compute.Zone, error)

	// GetSubnetwork and PatchSubnetwork manage regional subnets;
	// WaitRegionOperation blocks until a regional operation finishes.
	GetSubnetwork(ctx context.Context, region, name string) (*compute.Subnetwork, error)
	PatchSubnetwork(ctx context.Context, region, name string, res *compute.Subnetwork) (string, error)
	WaitRegionOperation(ctx context.Context, region, operation string) error

	// GetFirewall and InsertFirewall manage global firewall rules.
	GetFirewall(ctx context.Context, name string) (*compute.Firewall, error)
	InsertFirewall(ctx context.Context, fw *compute.Firewall) error
}

// computeAPI implements API against the real Compute service for one project.
type computeAPI struct {
	svc     *compute.Service
	project string
}

// newComputeAPI builds an API bound to the given credential file.
func newComputeAPI(ctx context.Context, keyPath, projectID string) (API, error) {
	svc, err := compute.NewService(ctx, option.WithCredentialsFile(keyPath))
	if err != nil {
		return nil, err
	}
	return &computeAPI{svc: svc, project: projectID}, nil
}

func (c *computeAPI) ListInstances(ctx context.Context, zone string) ([]*compute.Instance, error) {
	var out []*compute.Instance
	err := c.svc.Instances.List(c.project, zone).Pages(ctx, func(page *compute.InstanceList) error {
		out = append(out, page.Items...)
		return nil
	})
	return out, err
}

func (c *computeAPI) AggregatedInstances(ctx context.Context) (map[string][]*compute.Instance, error) {
	out := make(map[string][]*compute.Instance)
	err := c.svc.Instances.AggregatedList(c.project).Pages(ctx, func(page *compute.InstanceAggregatedList) error {
		for scope, list := range page.Items {
			if len(list.Instances) > 0 {
				out[scope] = append(out[scope], list.Instances...)
			}
		}
		return nil
	})
	return out, err
}

func (c *computeAPI) GetInstance(ctx context.Context, zone, name string) (*compute.Instance, error) {
	return c.svc.Instances.Get(c.project, zone, name).Context(ctx).Do()
}

func (c *computeAPI) InsertInstance(ctx context.Context, zone string, inst *compute.Instance) (string, error) {
	op, err := c.svc.Instances.Insert(c.project, zone, inst).Context(ctx).Do()
	if err != nil {
		return "", err
	}
	return op.Name, nil
}

func (c *computeAPI) StartInstance(ctx context.Context, zone, name string) (string, error) {
	op, err := c.svc.Instances.Start(c.project, zone, name).Context(ctx).Do()
	if err != nil {
		return "", err
	}
	return op.Name, nil
}

func (c *computeAPI) StopInstance(ctx context.Context, zone, name string) (string, error) {
	op, err := c.svc.Instances.Stop(c.project, zone, name).Context(ctx).Do()
	if err != nil {
		return "", err
	}
	return op.Name, nil
}

func (c *computeAPI) DeleteInstance(ctx context.Context, zone, name string) (string, error) {
	op, err := c.svc.Instances.Delete(c.project, zone, name).Context(ctx).Do()
	if err != nil {
		return "", err
	}
	return op.Name, nil
}

func (c *computeAPI) UpdateNetworkInterface(ctx context.Context, zone, instance, nic string, res *compute.NetworkInterface) (string, error) {
	op, err := c.svc.Instances.UpdateNetworkInterface(c.project, zone, instance, nic, res).Context(ctx).Do()
	if err != nil {
		return "", err
	}
	return op.Name, nil
}

func (c *computeAPI) AddAccessConfig(ctx context.Context, zone, instance, nic string, ac *compute.AccessConfig) (string, error) {
	op, err := c.svc.Instances.AddAccessConfig(c.project, zone, instance, nic, ac).Context(ctx).Do()
	if err != nil {
		return "", err
	}
	return op.Name, nil
}

func (c *computeAPI) DeleteAccessConfig(ctx context.Context, zone, instance, nic, acName string) (string, error) {
	op, err := c.svc.Instances.DeleteAccessConfig(c.project, zone, instance, acName, nic).Context(ctx).Do()
	if err != nil {
		return "", err
	}
	return op.Name, nil
}

func (c *computeAPI) WaitZoneOperation(ctx context.Context, zone, operation string) error {
	op, err := c.svc.ZoneOperations.Wait(c.project, zone, operation).Context(ctx).Do()
	if err != nil {
		return err
	}
	return operationError(op)
}

func (c *computeAPI) ListZones(ctx context.Context) ([]*compute.Zone, error) {
	var out []*compute.Zone
	err := c.svc.Zones.List(c.project).Pages(ctx, func(page *compute.ZoneList) error {
		out = append(out, page.Items...)
		return nil
	})
	return out, err
}

func (c *computeAPI) GetSubnetwork(ctx context.Context, region, name string) (*compute.Subnetwork, error) {
	return c.svc.Subnetworks.Get(c.project, region, name).Context(ctx).Do()
}

func (c *computeAPI) PatchSubnetwork(ctx context.Context, region, name string, res *compute.Subnetwork) (string, error) {
	op, err := c.svc.Subnetworks.Patch(c.project, region, name, res).Context(ctx).Do()
	if err != nil {
		return "", err
	}
	return op.Name, nil
}

func (c *computeAPI) WaitRegionOperation(ctx context.Context, region, operation string) error {
	op, err := c.svc.RegionOperations.Wait(c.project, region, operation).Context(ctx).Do()
	if err != nil {
		return err
	}
	return operationError(op)
}

func (c *computeAPI) GetFirewall(ctx context.Context, name string) (*compute.Firewall, error) {
	return c.svc.Firewalls.Get(c.project, name).Context(ctx).Do()
}

func (c *computeAPI) InsertFirewall(ctx context.Context, fw *compute.Firewall) error {
	_, err := c.svc.Firewalls.Insert(c.project, fw).Context(ctx).Do()
	return err
}

// operationError surfaces a finished operation's error payload, if any.
func operationError(op *compute.Operation) error {
	if op == nil || op.Error == nil || len(op.Error.Errors) == 0 {
		return nil
	}
	e := op.Error.Errors[0]
	return fmt.Errorf("operation %s failed: %s: %s", op.Name, e.Code, e.Message)
}
