package localstorage

import (
	"context"
	"sync"
)

// MemoryStorage is a process-only Storage backed by a map guarded by an
// RWMutex, adapted from internal/infrastructure/objectstore.ObjectStore's
// read/write lock split (generalized here from int64 ids to string keys,
// and dropping the ordered-iteration bookkeeping ObjectStore needs but
// Storage's contract does not).
type MemoryStorage struct {
	mu sync.RWMutex
	m  map[string]any
}

// NewMemoryStorage constructs a ready-to-use MemoryStorage.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{m: make(map[string]any)}
}

// Load is a no-op: MemoryStorage has no durable backing.
func (s *MemoryStorage) Load(ctx context.Context) error { return nil }

// Get returns the value stored under key, or def if absent.
func (s *MemoryStorage) Get(ctx context.Context, key string, def any) (any, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if v, ok := s.m[key]; ok {
		return v, nil
	}
	return def, nil
}

// Set stores value under key.
func (s *MemoryStorage) Set(ctx context.Context, key string, value any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.m[key] = value
	return nil
}
