// Package repository provides file-backed persistence for accounts,
// console configuration and the audit log.
package repository

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/gcp-panel/backend/internal/models"
)

// ErrNotFound is returned when the referenced account does not exist.
var ErrNotFound = errors.New("account not found")

// ErrInvalidCredential is returned when an uploaded key is not a usable
// service-account key (not JSON, or missing project_id / private_key).
var ErrInvalidCredential = errors.New("invalid service account key")

// serviceAccountKey holds the two fields a key must carry to be accepted.
// The full key JSON is persisted verbatim; everything else is opaque.
type serviceAccountKey struct {
	ProjectID  string `json:"project_id"`
	PrivateKey string `json:"private_key"`
}

// AccountStore persists the account list in accounts.json and one
// credential file per account under the data directory.
type AccountStore struct {
	dir string
	log *zap.Logger

	mu sync.Mutex
}

// NewAccountStore creates an AccountStore rooted at dir and runs the
// one-time migration of a legacy single-key setup if applicable.
func NewAccountStore(dir string, log *zap.Logger) *AccountStore {
	s := &AccountStore{dir: dir, log: log}
	s.migrateLegacyKey()
	return s
}

func (s *AccountStore) listPath() string { return filepath.Join(s.dir, "accounts.json") }

// KeyPath returns the credential file path for the given account id.
func (s *AccountStore) KeyPath(id string) string {
	return filepath.Join(s.dir, fmt.Sprintf("key-%s.json", id))
}

// load reads the account list from disk. A missing or unreadable file
// yields an empty list; listing never fails.
func (s *AccountStore) load() []models.Account {
	data, err := os.ReadFile(s.listPath())
	if err != nil {
		return nil
	}
	var accounts []models.Account
	if err := json.Unmarshal(data, &accounts); err != nil {
		return nil
	}
	return accounts
}

func (s *AccountStore) save(accounts []models.Account) error {
	data, err := json.MarshalIndent(accounts, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(s.listPath(), data, 0o600)
}

// List returns all accounts in stored order, without any key material.
func (s *AccountStore) List() []models.Account {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load()
}

// Get returns the account with the given id, or ErrNotFound.
func (s *AccountStore) Get(id string) (models.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, a := range s.load() {
		if a.ID == id {
			return a, nil
		}
	}
	return models.Account{}, ErrNotFound
}

// Add validates rawKey as a service-account key, writes it to a fresh
// key file with owner-only permissions and appends the account record.
// Returns the new account id.
func (s *AccountStore) Add(name, rawKey string) (string, error) {
	var key serviceAccountKey
	if err := json.Unmarshal([]byte(rawKey), &key); err != nil {
		return "", ErrInvalidCredential
	}
	if key.ProjectID == "" || key.PrivateKey == "" {
		return "", ErrInvalidCredential
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	id := uuid.NewString()
	if err := os.WriteFile(s.KeyPath(id), []byte(rawKey), 0o600); err != nil {
		return "", err
	}

	if name == "" {
		name = key.ProjectID
	}
	accounts := append(s.load(), models.Account{ID: id, Name: name, ProjectID: key.ProjectID})
	if err := s.save(accounts); err != nil {
		return "", err
	}
	return id, nil
}

// Rename updates the display name of the account with the given id.
func (s *AccountStore) Rename(id, newName string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	accounts := s.load()
	for i, a := range accounts {
		if a.ID == id {
			if newName != "" {
				accounts[i].Name = newName
			}
			return s.save(accounts)
		}
	}
	return ErrNotFound
}

// Remove deletes the account record and best-effort deletes its key file.
// A failed key-file delete is swallowed: the account is already gone.
func (s *AccountStore) Remove(id string) (models.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	accounts := s.load()
	for i, a := range accounts {
		if a.ID != id {
			continue
		}
		accounts = append(accounts[:i], accounts[i+1:]...)
		if err := s.save(accounts); err != nil {
			return models.Account{}, err
		}
		if err := os.Remove(s.KeyPath(id)); err != nil && !os.IsNotExist(err) {
			s.log.Warn("failed to delete key file", zap.String("account", id), zap.Error(err))
		}
		return a, nil
	}
	return models.Account{}, ErrNotFound
}

// migrateLegacyKey converts a pre-multi-account gcp-key.json into a
// regular account. Runs only when the account list is empty, so it
// takes effect at most once.
func (s *AccountStore) migrateLegacyKey() {
	legacy := filepath.Join(s.dir, "gcp-key.json")
	data, err := os.ReadFile(legacy)
	if err != nil || len(s.load()) > 0 {
		return
	}
	var key serviceAccountKey
	if err := json.Unmarshal(data, &key); err != nil {
		s.log.Error("legacy key migration failed", zap.Error(err))
		return
	}

	id := uuid.NewString()
	if err := os.WriteFile(s.KeyPath(id), data, 0o600); err != nil {
		s.log.Error("legacy key migration failed", zap.Error(err))
		return
	}
	name := key.ProjectID
	if name == "" {
		name = "Default"
	}
	if err := s.save([]models.Account{{ID: id, Name: name, ProjectID: key.ProjectID}}); err != nil {
		s.log.Error("legacy key migration failed", zap.Error(err))
		return
	}
	s.log.Info("migrated legacy key to multi-account format", zap.String("account", id))
}
