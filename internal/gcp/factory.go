package gcp

import (
	"context"
	"errors"
	"os"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/gcp-panel/backend/internal/models"
)

// ErrNotAvailable is returned when no usable client bundle exists for an
// account: unknown id, missing key file, or unparseable credentials.
var ErrNotAvailable = errors.New("account key not configured")

// Bundle binds one account's identity to its Compute API handle.
type Bundle struct {
	AccountID   string
	AccountName string
	ProjectID   string
	API         API
}

// AccountLookup resolves account records for the factory.
type AccountLookup interface {
	Get(id string) (models.Account, error)
	KeyPath(id string) string
}

// Factory lazily builds Compute API clients per account and caches them
// keyed by the credential file's modification time. An external edit to
// the key file invalidates the cached bundle on next access. The cache
// has no eviction beyond overwrite-on-change and explicit removal;
// acceptable at operator scale (tens of accounts, not thousands).
type Factory struct {
	accounts AccountLookup
	log      *zap.Logger

	// newAPI builds the concrete client; replaced in tests.
	newAPI func(ctx context.Context, keyPath, projectID string) (API, error)

	mu    sync.Mutex
	cache map[string]*cachedBundle
}

type cachedBundle struct {
	bundle *Bundle
	mtime  time.Time
}

// NewFactory creates a Factory backed by the given account lookup.
func NewFactory(accounts AccountLookup, log *zap.Logger) *Factory {
	return &Factory{
		accounts: accounts,
		log:      log,
		newAPI:   newComputeAPI,
		cache:    make(map[string]*cachedBundle),
	}
}

// Clients returns the client bundle for the account, building and
// caching it if the credential file changed since the last call.
// A malformed key is logged and reported as ErrNotAvailable rather
// than surfaced verbatim.
func (f *Factory) Clients(ctx context.Context, accountID string) (*Bundle, error) {
	account, err := f.accounts.Get(accountID)
	if err != nil {
		return nil, ErrNotAvailable
	}

	keyPath := f.accounts.KeyPath(accountID)
	info, err := os.Stat(keyPath)
	if err != nil {
		return nil, ErrNotAvailable
	}
	mtime := info.ModTime()

	f.mu.Lock()
	defer f.mu.Unlock()

	if cached, ok := f.cache[accountID]; ok && cached.mtime.Equal(mtime) {
		return cached.bundle, nil
	}

	api, err := f.newAPI(ctx, keyPath, account.ProjectID)
	if err != nil {
		f.log.Error("failed to build compute client",
			zap.String("account", accountID), zap.Error(err))
		return nil, ErrNotAvailable
	}

	bundle := &Bundle{
		AccountID:   accountID,
		AccountName: account.Name,
		ProjectID:   account.ProjectID,
		API:         api,
	}
	f.cache[accountID] = &cachedBundle{bundle: bundle, mtime: mtime}
	return bundle, nil
}

// Remove evicts any cached bundle for the account.
func (f *Factory) Remove(accountID string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.cache, accountID)
}
