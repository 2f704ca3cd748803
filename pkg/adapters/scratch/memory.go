// Package scratch implements ports.ScratchStorage.
package scratch

import (
	"context"
	"sync"

	"github.com/wadjakorntonsri/go-devlinks/pkg/ports"
)

// MemoryStorage keeps scratch values in process memory. Values are lost on
// restart, which the draft store tolerates.
type MemoryStorage struct {
	mu     sync.RWMutex
	values map[string]string
}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{values: make(map[string]string)}
}

func (m *MemoryStorage) Get(_ context.Context, key string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.values[key]
	return v, ok, nil
}

func (m *MemoryStorage) Set(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = value
	return nil
}

func (m *MemoryStorage) Remove(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.values, key)
	return nil
}

var _ ports.ScratchStorage = (*MemoryStorage)(nil)
