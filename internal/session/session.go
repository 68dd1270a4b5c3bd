// Package session tracks valid login tokens in process memory.
// Restarting the server invalidates every session; an accepted
// trade-off for simplicity over persistence.
package session

import (
	"crypto/rand"
	"encoding/hex"
	"sync"
)

// Store holds the set of currently valid session tokens.
type Store struct {
	mu     sync.RWMutex
	tokens map[string]struct{}
}

// NewStore returns an empty session store.
func NewStore() *Store {
	return &Store{tokens: make(map[string]struct{})}
}

// Create mints a fresh cryptographically random token and marks it valid.
func (s *Store) Create() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	token := hex.EncodeToString(buf)

	s.mu.Lock()
	s.tokens[token] = struct{}{}
	s.mu.Unlock()
	return token, nil
}

// Valid reports whether the token belongs to an active session.
func (s *Store) Valid(token string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.tokens[token]
	return ok
}

// Destroy invalidates the token. Destroying an unknown token is a no-op.
func (s *Store) Destroy(token string) {
	s.mu.Lock()
	delete(s.tokens, token)
	s.mu.Unlock()
}
