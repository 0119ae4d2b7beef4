// internal/store/memory.go
//
// In-memory implementation of the per-player key/value slots
// (stats.Repository).
//
// Characteristics:
//   - Concurrency-safe via RWMutex (concurrent reads allowed, writes exclusive).
//   - Values are copied in and out so callers cannot alias stored bytes.
//   - State is lost when the process restarts.

package store

import (
	"context"
	"sync"
)

type kvKey struct {
	owner string
	key   string
}

// MemoryKV is a map-backed key/value store.
type MemoryKV struct {
	mu     sync.RWMutex     // guards values
	values map[kvKey][]byte // keyed by owner and slot name
}

// NewMemoryKV constructs an empty MemoryKV.
func NewMemoryKV() *MemoryKV {
	return &MemoryKV{values: make(map[kvKey][]byte)}
}

// Get returns a copy of the stored value.
func (m *MemoryKV) Get(_ context.Context, owner, key string) ([]byte, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.values[kvKey{owner, key}]
	if !ok {
		return nil, false, nil
	}
	return append([]byte(nil), v...), true, nil
}

// Put stores a copy of value, replacing any previous one.
func (m *MemoryKV) Put(_ context.Context, owner, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[kvKey{owner, key}] = append([]byte(nil), value...)
	return nil
}

// Delete removes the slot. Deleting a missing slot is not an error.
func (m *MemoryKV) Delete(_ context.Context, owner, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.values, kvKey{owner, key})
	return nil
}
