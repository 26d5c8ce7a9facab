package ledger

import (
	"context"
	"sync"
)

// MemoryStore keeps records in process memory. It is used by tests and by
// servers started with the memory backend.
type MemoryStore struct {
	// records holds the stored values by key.
	records map[string][]byte
	// mu protects records.
	mu sync.RWMutex
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		records: make(map[string][]byte),
	}
}

// Get returns a copy of the value stored under key.
func (m *MemoryStore) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	value, ok := m.records[key]
	if !ok {
		return nil, ErrNotFound
	}

	return cloneBytes(value), nil
}

// Set stores a copy of value under key.
func (m *MemoryStore) Set(_ context.Context, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.records[key] = cloneBytes(value)

	return nil
}

// Has reports whether key is present.
func (m *MemoryStore) Has(_ context.Context, key string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	_, ok := m.records[key]

	return ok, nil
}

// SetBatch applies all writes under one lock.
func (m *MemoryStore) SetBatch(_ context.Context, writes []Write) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, w := range writes {
		m.records[w.Key] = cloneBytes(w.Value)
	}

	return nil
}

// Len returns the number of stored keys.
func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return len(m.records)
}
