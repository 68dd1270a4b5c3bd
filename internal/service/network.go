package service

import (
	"context"

	"go.uber.org/zap"
	compute "google.golang.org/api/compute/v1"

	"github.com/gcp-panel/backend/internal/gcp"
)

// defaultFirewallRules are the two ingress allow-all rules the console
// provisions so freshly created instances are reachable.
var defaultFirewallRules = []struct {
	name        string
	sourceRange string
}{
	{"default-allow-all-ipv4", "0.0.0.0/0"},
	{"default-allow-all-ipv6", "::/0"},
}

// Provisioner ensures the default network prerequisites for instance
// creation: ingress firewall rules and dual-stack subnets.
type Provisioner struct {
	log *zap.Logger
}

// NewProvisioner returns a Provisioner logging through log.
func NewProvisioner(log *zap.Logger) *Provisioner {
	return &Provisioner{log: log}
}

// EnsureFirewallRules checks each default rule and inserts it when the
// fetch fails. Every failure is swallowed: firewall provisioning is a
// best-effort side-channel and must never block instance creation.
func (p *Provisioner) EnsureFirewallRules(ctx context.Context, api gcp.API) {
	for _, rule := range defaultFirewallRules {
		if _, err := api.GetFirewall(ctx, rule.name); err == nil {
			continue
		}
		fw := &compute.Firewall{
			Name:         rule.name,
			Network:      "global/networks/default",
			Direction:    "INGRESS",
			Priority:     1000,
			SourceRanges: []string{rule.sourceRange},
			Allowed:      []*compute.FirewallAllowed{{IPProtocol: "all"}},
		}
		if err := api.InsertFirewall(ctx, fw); err != nil {
			p.log.Warn("failed to insert firewall rule",
				zap.String("rule", rule.name), zap.Error(err))
		}
	}
}

// EnsureIPv6Subnet makes the zone's default subnet dual-stack, waiting
// for the patch to finish. Unlike firewall provisioning this error
// propagates: an instance cannot attach IPv6 access configs to an
// IPv4-only subnet.
func (p *Provisioner) EnsureIPv6Subnet(ctx context.Context, api gcp.API, zone string) error {
	region, err := ZoneToRegion(zone)
	if err != nil {
		return err
	}
	subnet, err := api.GetSubnetwork(ctx, region, "default")
	if err != nil {
		return err
	}
	if subnet.StackType == "IPV4_IPV6" {
		return nil
	}
	op, err := api.PatchSubnetwork(ctx, region, "default", &compute.Subnetwork{
		StackType:      "IPV4_IPV6",
		Ipv6AccessType: "EXTERNAL",
		Fingerprint:    subnet.Fingerprint,
	})
	if err != nil {
		return err
	}
	return api.WaitRegionOperation(ctx, region, op)
}
