package settings

import (
	"context"
	"sync"

	"codeberg.org/mutker/wattwatch/internal/errors"
)

type memoryRepository struct {
	mu     sync.RWMutex
	values map[string]string
}

// NewMemory returns a Settings kept only in process memory.
func NewMemory(initial map[string]string) Settings {
	values := make(map[string]string, len(initial))
	for k, v := range initial {
		values[k] = v
	}

	return &memoryRepository{values: values}
}

func (m *memoryRepository) Get(_ context.Context, key string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	v, ok := m.values[key]
	return v, ok, nil
}

func (m *memoryRepository) SetMany(_ context.Context, values map[string]string) error {
	for k := range values {
		if k == "" {
			return errors.New().New(ErrInvalidKey)
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	for k, v := range values {
		m.values[k] = v
	}
	return nil
}

func (m *memoryRepository) Delete(_ context.Context, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, k := range keys {
		delete(m.values, k)
	}
	return nil
}

func (m *memoryRepository) All(_ context.Context) (map[string]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	values := make(map[string]string, len(m.values))
	for k, v := range m.values {
		values[k] = v
	}
	return values, nil
}

func (*memoryRepository) Close() error {
	return nil
}
