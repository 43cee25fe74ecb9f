package cachestorage

import (
	"context"
	"sync"

	"github.com/guttosm/hr-portal-edge/internal/domain/model"
)

type memoryPartition struct {
	keys    []string
	entries map[string]*model.CachedResponse
}

// MemoryBackend keeps partitions in process memory.
type MemoryBackend struct {
	mu         sync.RWMutex
	order      []string
	partitions map[string]*memoryPartition
}

// NewMemoryBackend creates an empty in-memory backend.
func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{partitions: make(map[string]*memoryPartition)}
}

// NewMemory creates a Storage held entirely in memory.
func NewMemory() *PartitionStorage {
	return New(NewMemoryBackend())
}

func (m *MemoryBackend) CreatePartition(ctx context.Context, name string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.partitions[name]; ok {
		return nil
	}
	m.partitions[name] = &memoryPartition{entries: make(map[string]*model.CachedResponse)}
	m.order = append(m.order, name)
	return nil
}

func (m *MemoryBackend) HasPartition(ctx context.Context, name string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.partitions[name]
	return ok, nil
}

func (m *MemoryBackend) DeletePartition(ctx context.Context, name string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.partitions[name]; !ok {
		return false, nil
	}
	delete(m.partitions, name)
	m.order = removeString(m.order, name)
	return true, nil
}

func (m *MemoryBackend) Partitions(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]string{}, m.order...), nil
}

func (m *MemoryBackend) Get(ctx context.Context, partition, key string) (*model.CachedResponse, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.partitions[partition]
	if !ok {
		return nil, ErrNotFound
	}
	resp, ok := p.entries[key]
	if !ok {
		return nil, ErrNotFound
	}
	return resp.Clone(), nil
}

func (m *MemoryBackend) Set(ctx context.Context, partition, key string, resp *model.CachedResponse) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.partitions[partition]
	if !ok {
		return ErrPartitionDeleted
	}
	// overwrite moves the key to the end, matching Cache.put
	if _, exists := p.entries[key]; exists {
		p.keys = removeString(p.keys, key)
	}
	p.keys = append(p.keys, key)
	p.entries[key] = resp.Clone()
	return nil
}

func (m *MemoryBackend) Remove(ctx context.Context, partition, key string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.partitions[partition]
	if !ok {
		return false, nil
	}
	if _, exists := p.entries[key]; !exists {
		return false, nil
	}
	delete(p.entries, key)
	p.keys = removeString(p.keys, key)
	return true, nil
}

func (m *MemoryBackend) EntryKeys(ctx context.Context, partition string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.partitions[partition]
	if !ok {
		return []string{}, nil
	}
	return append([]string{}, p.keys...), nil
}

func removeString(s []string, v string) []string {
	for i, x := range s {
		if x == v {
			return append(s[:i], s[i+1:]...)
		}
	}
	return s
}
