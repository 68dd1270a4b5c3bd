package repository

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
)

// defaultPassword is the initial console password written on first read.
const defaultPassword = "password"

// consoleConfig is the persisted shape of config.json. The password is
// stored in plain text; a known weakness carried over deliberately
// rather than changed without an explicit decision.
type consoleConfig struct {
	Password string `json:"password"`
}

// ConfigStore persists the console configuration in config.json.
type ConfigStore struct {
	path string
	mu   sync.Mutex
}

// NewConfigStore creates a ConfigStore rooted at dir.
func NewConfigStore(dir string) *ConfigStore {
	return &ConfigStore{path: filepath.Join(dir, "config.json")}
}

func (s *ConfigStore) read() consoleConfig {
	data, err := os.ReadFile(s.path)
	if err != nil {
		cfg := consoleConfig{Password: defaultPassword}
		if data, err := json.Marshal(cfg); err == nil {
			_ = os.WriteFile(s.path, data, 0o600)
		}
		return cfg
	}
	var cfg consoleConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return consoleConfig{Password: defaultPassword}
	}
	return cfg
}

// Password returns the current console password.
func (s *ConfigStore) Password() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.read().Password
}

// SetPassword persists a new console password.
func (s *ConfigStore) SetPassword(password string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cfg := s.read()
	cfg.Password = password
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(s.path, data, 0o600)
}
