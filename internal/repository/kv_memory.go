package repository

import (
	"context"
	"sync"
)

// KVMemory is a process-local KVStore. State is lost on exit.
type KVMemory struct {
	mu   sync.RWMutex
	data map[string]string
}

func NewKVMemory() *KVMemory {
	return &KVMemory{data: make(map[string]string)}
}

var _ KVStore = (*KVMemory)(nil)

func (m *KVMemory) Get(ctx context.Context, key string) (string, bool, error) {
	if err := ctx.Err(); err != nil {
		return "", false, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.data[key]
	return v, ok, nil
}

func (m *KVMemory) Set(ctx context.Context, key, value string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	m.data[key] = value
	m.mu.Unlock()
	return nil
}

func (m *KVMemory) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	delete(m.data, key)
	m.mu.Unlock()
	return nil
}
