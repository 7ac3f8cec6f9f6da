package storage

import (
	"context"

	cmap "github.com/orcaman/concurrent-map/v2"
)

// Memory is a process-lifetime in-memory adapter. It backs the built-in
// session store: values survive for the life of the process and are shared
// by every entity resolving the same key.
type Memory struct {
	items cmap.ConcurrentMap[string, string]
}

// NewMemory creates an empty in-memory adapter.
func NewMemory() *Memory {
	return &Memory{items: cmap.New[string]()}
}

// GetItem returns the value stored under key, or ErrMiss.
func (m *Memory) GetItem(_ context.Context, key string) (string, error) {
	v, ok := m.items.Get(key)
	if !ok {
		return "", ErrMiss
	}
	return v, nil
}

// SetItem stores value under key.
func (m *Memory) SetItem(_ context.Context, key, value string) error {
	m.items.Set(key, value)
	return nil
}

// Remove deletes key. Used by tests and by callers that want a clean slate.
func (m *Memory) Remove(key string) {
	m.items.Remove(key)
}

// Len reports the number of stored keys.
func (m *Memory) Len() int {
	return m.items.Count()
}
