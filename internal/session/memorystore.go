package session

import (
	"context"
	"sync"
	"time"
)

type memoryStoreEntry struct {
	state     *State
	expiresAt time.Time
}

// MemoryStore is a mutex-guarded in-memory Store implementation.
// It backs development setups and tests.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]memoryStoreEntry
	ttl     time.Duration
}

// NewMemoryStore creates an empty MemoryStore whose entries expire after ttl.
func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{
		entries: map[string]memoryStoreEntry{},
		ttl:     ttl,
	}
}

// Get returns the state stored under the given token, if present and not expired.
func (s *MemoryStore) Get(ctx context.Context, token string) (*State, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entry, found := s.entries[token]
	if !found || time.Now().After(entry.expiresAt) {
		return nil, false, nil
	}

	return entry.state, true, nil
}

// Set stores the state under the given token.
func (s *MemoryStore) Set(ctx context.Context, token string, state *State) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries[token] = memoryStoreEntry{
		state:     state,
		expiresAt: time.Now().Add(s.ttl),
	}

	return nil
}

// Clear removes the state stored under the given token. Clearing an unknown
// token is not an error.
func (s *MemoryStore) Clear(ctx context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.entries, token)

	return nil
}
