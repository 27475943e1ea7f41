package store

import (
	"context"
	"maps"
	"sync"
)

// Memory keeps values in process memory. It does not survive restarts.
type Memory struct {
	mu     sync.RWMutex
	values map[string]int64
}

// NewMemory creates an empty in-memory store
func NewMemory() *Memory {
	return &Memory{values: make(map[string]int64)}
}

func (m *Memory) Get(_ context.Context, key string) (int64, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.values[key]
	return v, ok, nil
}

func (m *Memory) PutAll(_ context.Context, values map[string]int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	maps.Copy(m.values, values)
	return nil
}

func (m *Memory) Close() error { return nil }
