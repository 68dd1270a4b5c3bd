package service_test

import (
	"context"
	"errors"
	"testing"

	compute "google.golang.org/api/compute/v1"

	"github.com/gcp-panel/backend/internal/service"
)

type mockZoneLister struct {
	zones  []*compute.Zone
	err    error
	called bool
}

func (m *mockZoneLister) ListZones(ctx context.Context) ([]*compute.Zone, error) {
	m.called = true
	return m.zones, m.err
}

func TestNormalizeLocation(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"us-central1-a", "us-central1-a"},
		{"  us-central1-a  ", "us-central1-a"},
		{"projects/p/zones/us-central1-a", "us-central1-a"},
		{"https://www.googleapis.com/compute/v1/projects/p/regions/us-central1", "us-central1"},
		{"us-central1-a/", "us-central1-a"},
		{"", ""},
		{"   ", ""},
		{"///", ""},
	}
	for _, tt := range tests {
		if got := service.NormalizeLocation(tt.in); got != tt.want {
			t.Errorf("NormalizeLocation(%q) = %q; want %q", tt.in, got, tt.want)
		}
	}
}

func TestNormalizeLocation_Idempotent(t *testing.T) {
	inputs := []string{
		"us-central1-a",
		"projects/p/zones/us-central1-a",
		" europe-west4 ",
		"",
		"a/b/c",
	}
	for _, in := range inputs {
		once := service.NormalizeLocation(in)
		if twice := service.NormalizeLocation(once); twice != once {
			t.Errorf("NormalizeLocation not idempotent for %q: %q != %q", in, once, twice)
		}
	}
}

func TestZoneAndRegionShapes(t *testing.T) {
	tests := []struct {
		in       string
		isZone   bool
		isRegion bool
	}{
		{"us-central1-a", true, false},
		{"europe-west4-b", true, false},
		{"asia-southeast2-c", true, false},
		{"us-central1", false, true},
		{"europe-west4", false, true},
		{"us-central1-a1", false, true},
		{"all", false, false},
		{"US-CENTRAL1-A", false, false},
		{"", false, false},
	}
	for _, tt := range tests {
		if got := service.IsZoneName(tt.in); got != tt.isZone {
			t.Errorf("IsZoneName(%q) = %v; want %v", tt.in, got, tt.isZone)
		}
		if got := service.IsRegionName(tt.in); got != tt.isRegion {
			t.Errorf("IsRegionName(%q) = %v; want %v", tt.in, got, tt.isRegion)
		}
	}
}

func TestResolveLocation_ZonePassesThrough(t *testing.T) {
	lister := &mockZoneLister{}
	zone, err := service.ResolveLocation(context.Background(), lister, "us-central1-a")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if zone != "us-central1-a" {
		t.Errorf("zone = %q; want us-central1-a", zone)
	}
	if lister.called {
		t.Error("zone lister queried for an explicit zone")
	}
}

func TestResolveLocation_RegionPicksSmallestUpZone(t *testing.T) {
	lister := &mockZoneLister{zones: []*compute.Zone{
		{Name: "us-central1-b", Region: "projects/p/regions/us-central1", Status: "DOWN"},
		{Name: "us-central1-c", Region: "projects/p/regions/us-central1", Status: "UP"},
		{Name: "us-central1-a", Region: "projects/p/regions/us-central1", Status: "UP"},
		{Name: "europe-west4-a", Region: "projects/p/regions/europe-west4", Status: "UP"},
	}}
	zone, err := service.ResolveLocation(context.Background(), lister, "us-central1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if zone != "us-central1-a" {
		t.Errorf("zone = %q; want us-central1-a", zone)
	}
}

func TestResolveLocation_Errors(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		lister  *mockZoneLister
		wantErr error
	}{
		{"empty", "", &mockZoneLister{}, service.ErrMissingLocation},
		{"whitespace", "   ", &mockZoneLister{}, service.ErrMissingLocation},
		{"all", "all", &mockZoneLister{}, service.ErrInvalidLocation},
		{"bad shape", "Not-A-Zone!", &mockZoneLister{}, service.ErrInvalidLocation},
		{"no zones up", "us-central1", &mockZoneLister{zones: []*compute.Zone{
			{Name: "us-central1-a", Region: "us-central1", Status: "DOWN"},
		}}, service.ErrNoAvailableZone},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := service.ResolveLocation(context.Background(), tt.lister, tt.in)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("error = %v; want %v", err, tt.wantErr)
			}
		})
	}
}

func TestResolveLocation_ListerError(t *testing.T) {
	wantErr := errors.New("remote down")
	_, err := service.ResolveLocation(context.Background(), &mockZoneLister{err: wantErr}, "us-central1")
	if !errors.Is(err, wantErr) {
		t.Errorf("error = %v; want %v", err, wantErr)
	}
}

func TestZoneToRegion(t *testing.T) {
	region, err := service.ZoneToRegion("us-central1-a")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if region != "us-central1" {
		t.Errorf("region = %q; want us-central1", region)
	}
	if _, err := service.ZoneToRegion("nozone"); err == nil {
		t.Error("expected error for zone without separator")
	}
}
