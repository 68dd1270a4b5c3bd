// Package service provides the console's business logic: location
// resolution, network provisioning and instance orchestration.
package service

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strings"

	compute "google.golang.org/api/compute/v1"
)

// ErrMissingLocation is returned when no zone or region was supplied.
var ErrMissingLocation = errors.New("missing zone/region")

// ErrInvalidLocation is returned when the supplied location is neither
// a zone nor a region name.
var ErrInvalidLocation = errors.New("invalid zone/region")

// ErrNoAvailableZone is returned when a region has no zone with status UP.
var ErrNoAvailableZone = errors.New("no available zones found in region")

var (
	zoneRe   = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*-[a-z]$`)
	regionRe = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*[0-9]$`)
)

// ZoneLister lists all zones visible to a project.
type ZoneLister interface {
	ListZones(ctx context.Context) ([]*compute.Zone, error)
}

// NormalizeLocation trims the input and reduces it to its final path
// segment, accepting bare names, resource paths and full URLs alike.
func NormalizeLocation(v string) string {
	parts := strings.Split(strings.TrimSpace(v), "/")
	for i := len(parts) - 1; i >= 0; i-- {
		if parts[i] != "" {
			return parts[i]
		}
	}
	return ""
}

// IsZoneName reports whether v has zone shape, e.g. "us-central1-a".
func IsZoneName(v string) bool { return zoneRe.MatchString(v) }

// IsRegionName reports whether v has region shape, e.g. "us-central1".
func IsRegionName(v string) bool { return regionRe.MatchString(v) }

// ZoneToRegion derives the region from a zone name by dropping the
// trailing zone letter.
func ZoneToRegion(zone string) (string, error) {
	idx := strings.LastIndex(zone, "-")
	if idx <= 0 {
		return "", fmt.Errorf("%w: %s", ErrInvalidLocation, zone)
	}
	return zone[:idx], nil
}

// ResolveLocation normalizes raw and returns a concrete zone. A zone
// name passes through unchanged without touching the lister. A region
// name is resolved to the lexicographically smallest UP zone within it,
// which keeps the pick deterministic across calls.
func ResolveLocation(ctx context.Context, lister ZoneLister, raw string) (string, error) {
	loc := NormalizeLocation(raw)
	if loc == "" {
		return "", ErrMissingLocation
	}
	if loc == "all" {
		return "", ErrInvalidLocation
	}
	if IsRegionName(loc) {
		return pickZoneForRegion(ctx, lister, loc)
	}
	if !IsZoneName(loc) {
		return "", fmt.Errorf("%w: %s", ErrInvalidLocation, loc)
	}
	return loc, nil
}

func pickZoneForRegion(ctx context.Context, lister ZoneLister, region string) (string, error) {
	zones, err := lister.ListZones(ctx)
	if err != nil {
		return "", err
	}
	var found []string
	for _, z := range zones {
		if NormalizeLocation(z.Region) != region {
			continue
		}
		if z.Status != "" && !strings.EqualFold(z.Status, "UP") {
			continue
		}
		if z.Name != "" {
			found = append(found, z.Name)
		}
	}
	if len(found) == 0 {
		return "", fmt.Errorf("%w: %s", ErrNoAvailableZone, region)
	}
	sort.Strings(found)
	return found[0], nil
}
