package service

import (
	"context"
	"sync"

	compute "google.golang.org/api/compute/v1"
)

// fakeAPI implements gcp.API with overridable func fields, recording
// every call in order. Recording is mutex-guarded because firewall
// provisioning runs on a detached goroutine.
type fakeAPI struct {
	mu    sync.Mutex
	calls []string

	listInstancesFunc       func(zone string) ([]*compute.Instance, error)
	aggregatedInstancesFunc func() (map[string][]*compute.Instance, error)
	getInstanceFunc         func(zone, name string) (*compute.Instance, error)
	insertInstanceFunc      func(zone string, inst *compute.Instance) (string, error)
	actionFunc              func(action, zone, name string) (string, error)
	updateNICFunc           func(zone, instance, nic string, res *compute.NetworkInterface) (string, error)
	addAccessConfigFunc     func(zone, instance, nic string, ac *compute.AccessConfig) (string, error)
	deleteAccessConfigFunc  func(zone, instance, nic, acName string) (string, error)
	waitZoneOpFunc          func(zone, op string) error
	listZonesFunc           func() ([]*compute.Zone, error)
	getSubnetworkFunc       func(region, name string) (*compute.Subnetwork, error)
	patchSubnetworkFunc     func(region, name string, res *compute.Subnetwork) (string, error)
	waitRegionOpFunc        func(region, op string) error
	getFirewallFunc         func(name string) (*compute.Firewall, error)
	insertFirewallFunc      func(fw *compute.Firewall) error
}

func (f *fakeAPI) record(call string) {
	f.mu.Lock()
	f.calls = append(f.calls, call)
	f.mu.Unlock()
}

func (f *fakeAPI) recorded() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func (f *fakeAPI) ListInstances(ctx context.Context, zone string) ([]*compute.Instance, error) {
	f.record("ListInstances")
	if f.listInstancesFunc != nil {
		return f.listInstancesFunc(zone)
	}
	return nil, nil
}

func (f *fakeAPI) AggregatedInstances(ctx context.Context) (map[string][]*compute.Instance, error) {
	f.record("AggregatedInstances")
	if f.aggregatedInstancesFunc != nil {
		return f.aggregatedInstancesFunc()
	}
	return nil, nil
}

func (f *fakeAPI) GetInstance(ctx context.Context, zone, name string) (*compute.Instance, error) {
	f.record("GetInstance")
	if f.getInstanceFunc != nil {
		return f.getInstanceFunc(zone, name)
	}
	return &compute.Instance{}, nil
}

func (f *fakeAPI) InsertInstance(ctx context.Context, zone string, inst *compute.Instance) (string, error) {
	f.record("InsertInstance")
	if f.insertInstanceFunc != nil {
		return f.insertInstanceFunc(zone, inst)
	}
	return "op-insert", nil
}

func (f *fakeAPI) StartInstance(ctx context.Context, zone, name string) (string, error) {
	f.record("StartInstance")
	if f.actionFunc != nil {
		return f.actionFunc("start", zone, name)
	}
	return "op-start", nil
}

func (f *fakeAPI) StopInstance(ctx context.Context, zone, name string) (string, error) {
	f.record("StopInstance")
	if f.actionFunc != nil {
		return f.actionFunc("stop", zone, name)
	}
	return "op-stop", nil
}

func (f *fakeAPI) DeleteInstance(ctx context.Context, zone, name string) (string, error) {
	f.record("DeleteInstance")
	if f.actionFunc != nil {
		return f.actionFunc("delete", zone, name)
	}
	return "op-delete", nil
}

func (f *fakeAPI) UpdateNetworkInterface(ctx context.Context, zone, instance, nic string, res *compute.NetworkInterface) (string, error) {
	f.record("UpdateNetworkInterface")
	if f.updateNICFunc != nil {
		return f.updateNICFunc(zone, instance, nic, res)
	}
	return "op-update", nil
}

func (f *fakeAPI) AddAccessConfig(ctx context.Context, zone, instance, nic string, ac *compute.AccessConfig) (string, error) {
	f.record("AddAccessConfig")
	if f.addAccessConfigFunc != nil {
		return f.addAccessConfigFunc(zone, instance, nic, ac)
	}
	return "op-add", nil
}

func (f *fakeAPI) DeleteAccessConfig(ctx context.Context, zone, instance, nic, acName string) (string, error) {
	f.record("DeleteAccessConfig")
	if f.deleteAccessConfigFunc != nil {
		return f.deleteAccessConfigFunc(zone, instance, nic, acName)
	}
	return "op-del", nil
}

func (f *fakeAPI) WaitZoneOperation(ctx context.Context, zone, op string) error {
	f.record("WaitZoneOperation")
	if f.waitZoneOpFunc != nil {
		return f.waitZoneOpFunc(zone, op)
	}
	return nil
}

func (f *fakeAPI) ListZones(ctx context.Context) ([]*compute.Zone, error) {
	f.record("ListZones")
	if f.listZonesFunc != nil {
		return f.listZonesFunc()
	}
	return nil, nil
}

func (f *fakeAPI) GetSubnetwork(ctx context.Context, region, name string) (*compute.Subnetwork, error) {
	f.record("GetSubnetwork")
	if f.getSubnetworkFunc != nil {
		return f.getSubnetworkFunc(region, name)
	}
	return &compute.Subnetwork{StackType: "IPV4_IPV6"}, nil
}

func (f *fakeAPI) PatchSubnetwork(ctx context.Context, region, name string, res *compute.Subnetwork) (string, error) {
	f.record("PatchSubnetwork")
	if f.patchSubnetworkFunc != nil {
		return f.patchSubnetworkFunc(region, name, res)
	}
	return "op-patch", nil
}

func (f *fakeAPI) WaitRegionOperation(ctx context.Context, region, op string) error {
	f.record("WaitRegionOperation")
	if f.waitRegionOpFunc != nil {
		return f.waitRegionOpFunc(region, op)
	}
	return nil
}

func (f *fakeAPI) GetFirewall(ctx context.Context, name string) (*compute.Firewall, error) {
	f.record("GetFirewall")
	if f.getFirewallFunc != nil {
		return f.getFirewallFunc(name)
	}
	return &compute.Firewall{Name: name}, nil
}

func (f *fakeAPI) InsertFirewall(ctx context.Context, fw *compute.Firewall) error {
	f.record("InsertFirewall")
	if f.insertFirewallFunc != nil {
		return f.insertFirewallFunc(fw)
	}
	return nil
}
