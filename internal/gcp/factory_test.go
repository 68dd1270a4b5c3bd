package gcp

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/gcp-panel/backend/internal/models"
)

// stubAPI satisfies API without implementing anything; the factory
// never calls through it.
type stubAPI struct{ API }

type fakeLookup struct {
	accounts map[string]models.Account
	dir      string
}

func (f *fakeLookup) Get(id string) (models.Account, error) {
	if a, ok := f.accounts[id]; ok {
		return a, nil
	}
	return models.Account{}, errors.New("account not found")
}

func (f *fakeLookup) KeyPath(id string) string {
	return filepath.Join(f.dir, "key-"+id+".json")
}

func newTestFactory(t *testing.T) (*Factory, *fakeLookup, *int) {
	t.Helper()
	lookup := &fakeLookup{
		accounts: map[string]models.Account{
			"a1": {ID: "a1", Name: "prod", ProjectID: "proj-1"},
		},
		dir: t.TempDir(),
	}
	f := NewFactory(lookup, zap.NewNop())
	builds := 0
	f.newAPI = func(ctx context.Context, keyPath, projectID string) (API, error) {
		builds++
		return stubAPI{}, nil
	}
	return f, lookup, &builds
}

func writeKey(t *testing.T, lookup *fakeLookup, id, content string) {
	t.Helper()
	if err := os.WriteFile(lookup.KeyPath(id), []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
}

func TestFactory_UnknownAccount(t *testing.T) {
	f, _, _ := newTestFactory(t)
	if _, err := f.Clients(context.Background(), "nope"); !errors.Is(err, ErrNotAvailable) {
		t.Errorf("error = %v; want ErrNotAvailable", err)
	}
}

func TestFactory_MissingKeyFile(t *testing.T) {
	f, _, _ := newTestFactory(t)
	if _, err := f.Clients(context.Background(), "a1"); !errors.Is(err, ErrNotAvailable) {
		t.Errorf("error = %v; want ErrNotAvailable", err)
	}
}

func TestFactory_BuildsAndCaches(t *testing.T) {
	f, lookup, builds := newTestFactory(t)
	writeKey(t, lookup, "a1", `{"project_id":"proj-1"}`)

	b1, err := f.Clients(context.Background(), "a1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if b1.ProjectID != "proj-1" || b1.AccountName != "prod" {
		t.Errorf("bundle = %+v", b1)
	}

	b2, err := f.Clients(context.Background(), "a1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if b1 != b2 {
		t.Error("expected cached bundle on unchanged key file")
	}
	if *builds != 1 {
		t.Errorf("builds = %d; want 1", *builds)
	}
}

func TestFactory_RebuildsWhenKeyChanges(t *testing.T) {
	f, lookup, builds := newTestFactory(t)
	writeKey(t, lookup, "a1", `{"project_id":"proj-1"}`)

	if _, err := f.Clients(context.Background(), "a1"); err != nil {
		t.Fatal(err)
	}

	// Rewrite the key with a distinct mtime.
	writeKey(t, lookup, "a1", `{"project_id":"proj-1","rotated":true}`)
	later := time.Now().Add(2 * time.Second)
	if err := os.Chtimes(lookup.KeyPath("a1"), later, later); err != nil {
		t.Fatal(err)
	}

	if _, err := f.Clients(context.Background(), "a1"); err != nil {
		t.Fatal(err)
	}
	if *builds != 2 {
		t.Errorf("builds = %d; want 2 after key change", *builds)
	}
}

func TestFactory_BuildFailureReportsNotAvailable(t *testing.T) {
	f, lookup, _ := newTestFactory(t)
	writeKey(t, lookup, "a1", `not json`)
	f.newAPI = func(ctx context.Context, keyPath, projectID string) (API, error) {
		return nil, errors.New("invalid key material")
	}

	if _, err := f.Clients(context.Background(), "a1"); !errors.Is(err, ErrNotAvailable) {
		t.Errorf("error = %v; want ErrNotAvailable", err)
	}
}

func TestFactory_RemoveEvictsAndDeletedAccountStaysGone(t *testing.T) {
	f, lookup, _ := newTestFactory(t)
	writeKey(t, lookup, "a1", `{"project_id":"proj-1"}`)

	if _, err := f.Clients(context.Background(), "a1"); err != nil {
		t.Fatal(err)
	}

	// Account deletion: record gone, cache evicted. A later lookup must
	// not resurrect the stale cached bundle.
	delete(lookup.accounts, "a1")
	f.Remove("a1")

	if _, err := f.Clients(context.Background(), "a1"); !errors.Is(err, ErrNotAvailable) {
		t.Errorf("error = %v; want ErrNotAvailable after account deletion", err)
	}
}
