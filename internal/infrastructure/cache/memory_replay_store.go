package cache

import (
	"context"
	"sync"
	"time"

	"github.com/kasso/backend/internal/domain/shared"
)

// MemoryReplayStore is an in-process IdempotencyStore for tests and
// single-node deployments without Redis.
type MemoryReplayStore struct {
	mu      sync.Mutex
	entries map[string]time.Time
}

var _ shared.IdempotencyStore = (*MemoryReplayStore)(nil)

// NewMemoryReplayStore creates an empty in-memory store
func NewMemoryReplayStore() *MemoryReplayStore {
	return &MemoryReplayStore{entries: make(map[string]time.Time)}
}

// MarkProcessed records a key, returning true when it was not yet present
func (s *MemoryReplayStore) MarkProcessed(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if expiry, ok := s.entries[key]; ok && time.Now().Before(expiry) {
		return false, nil
	}
	s.entries[key] = time.Now().Add(ttl)
	return true, nil
}

// IsProcessed reports whether a live entry exists for the key
func (s *MemoryReplayStore) IsProcessed(ctx context.Context, key string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	expiry, ok := s.entries[key]
	if !ok {
		return false, nil
	}
	if time.Now().After(expiry) {
		delete(s.entries, key)
		return false, nil
	}
	return true, nil
}

// Close is a no-op for the in-memory store
func (s *MemoryReplayStore) Close() error {
	return nil
}
