package postedstore

import (
	"context"
	"sync"
	"time"
)

// MemoryStore implements Store using an in-memory map. Suitable for
// single-instance deployments and testing; posted status recorded here does
// not survive a process restart.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]time.Time
}

// NewMemoryStore creates a new in-memory posted-status store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		entries: make(map[string]time.Time),
	}
}

// MarkPosted records the posting time for a document.
// Returns false when the document was already marked.
func (s *MemoryStore) MarkPosted(ctx context.Context, docNo string, postedAt time.Time) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.entries[docNo]; exists {
		return false, nil
	}
	s.entries[docNo] = postedAt
	return true, nil
}

// PostedAt returns the posting time, or nil when not recorded
func (s *MemoryStore) PostedAt(ctx context.Context, docNo string) (*time.Time, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	at, exists := s.entries[docNo]
	if !exists {
		return nil, nil
	}
	return &at, nil
}

// Close releases resources; a no-op for the in-memory store
func (s *MemoryStore) Close() error {
	return nil
}

// Size returns the number of recorded documents (for testing/monitoring)
func (s *MemoryStore) Size() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// Ensure MemoryStore implements Store
var _ Store = (*MemoryStore)(nil)
