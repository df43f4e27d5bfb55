// Package cache provides the in-memory change-detection store used to skip
// products whose price has not moved since they were last accepted.
package cache

import (
	"sync"

	"github.com/dpkgyl/catalog-scraper/internal/scrape"
)

// Store is a mutex-guarded key/value map. Entries live for the life of the
// process; there is no eviction, no size bound, no TTL.
type Store struct {
	mu      sync.RWMutex
	entries map[string]float64
}

// NewStore returns an empty Store.
func NewStore() *Store {
	return &Store{entries: make(map[string]float64)}
}

// Put inserts or overwrites the value for key.
func (s *Store) Put(key string, value float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[key] = value
}

// Contains reports whether key is present.
func (s *Store) Contains(key string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.entries[key]
	return ok
}

// Get returns the value for key, or scrape.ErrNotFound if absent.
func (s *Store) Get(key string) (float64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.entries[key]
	if !ok {
		return 0, scrape.ErrNotFound
	}
	return v, nil
}

// Len returns the number of entries.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// PriceCache layers change-detection semantics over a Store. A key is present
// iff its product has been accepted at least once since process start, and the
// stored value is the most recently accepted price.
type PriceCache struct {
	store *Store
}

// NewPriceCache builds a PriceCache over a fresh Store.
func NewPriceCache() *PriceCache {
	return &PriceCache{store: NewStore()}
}

// IsDifferent reports whether price differs from the last accepted value for
// key. Unknown keys are always different.
func (c *PriceCache) IsDifferent(key string, price float64) bool {
	last, err := c.store.Get(key)
	if err != nil {
		return true
	}
	return last != price
}

// Put records price as the last accepted value for key.
func (c *PriceCache) Put(key string, price float64) {
	c.store.Put(key, price)
}
