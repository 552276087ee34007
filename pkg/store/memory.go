package store

import (
	"context"
	"sort"
	"sync"

	"github.com/oakwood-commons/mccw/pkg/widget"
)

// Memory keeps settings in process memory.
type Memory struct {
	mu        sync.RWMutex
	instances map[string]widget.Settings
}

// NewMemory returns an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{instances: make(map[string]widget.Settings)}
}

// Get implements Store.
func (m *Memory) Get(_ context.Context, instanceID string) (widget.Settings, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.instances[instanceID]
	if !ok {
		return widget.Settings{}, ErrNotFound
	}
	return s, nil
}

// Set implements Store.
func (m *Memory) Set(_ context.Context, instanceID string, s widget.Settings) error {
	if err := validateID(instanceID); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.instances[instanceID] = s
	return nil
}

// Delete implements Store. Deleting a missing instance is not an error.
func (m *Memory) Delete(_ context.Context, instanceID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.instances, instanceID)
	return nil
}

// List implements Store. IDs are sorted.
func (m *Memory) List(_ context.Context) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ids := make([]string, 0, len(m.instances))
	for id := range m.instances {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}
