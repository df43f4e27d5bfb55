// Package auth holds the token store guarding the scrape endpoint.
//
// The seeded digit tokens are a placeholder mechanism, not production-grade
// auth; the store exists so the check is an explicit set membership rather
// than ambient global state.
package auth

import (
	"fmt"
	"sync"
)

// Store maps tokens to user labels.
type Store struct {
	mu     sync.RWMutex
	tokens map[string]string
}

// NewStore returns an empty Store.
func NewStore() *Store {
	return &Store{tokens: make(map[string]string)}
}

// NewSeededStore returns a Store pre-seeded with the digit tokens "0".."9",
// each mapped to a synthetic user label.
func NewSeededStore() *Store {
	s := NewStore()
	for i := 0; i < 10; i++ {
		token := fmt.Sprintf("%d", i)
		s.Add(token, "user-"+token)
	}
	return s
}

// Add registers a token for a user label.
func (s *Store) Add(token, user string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokens[token] = user
}

// Lookup returns the user label for token and whether it is known.
func (s *Store) Lookup(token string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	user, ok := s.tokens[token]
	return user, ok
}
