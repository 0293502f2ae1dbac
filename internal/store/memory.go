package store

import (
	"context"
	"sync"
)

// MemoryStore keeps collections in process memory. It is the fallback when
// the data directory is not writable and the default in tests.
type MemoryStore struct {
	mu          sync.RWMutex
	collections map[string][]Record
}

// NewMemoryStore creates an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{collections: make(map[string][]Record)}
}

func (m *MemoryStore) ReadCollection(ctx context.Context, name string) ([]Record, error) {
	if err := check(ctx, name); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return normalize(m.collections[name])
}

func (m *MemoryStore) WriteCollection(ctx context.Context, name string, records []Record) error {
	if err := check(ctx, name); err != nil {
		return err
	}
	copied, err := normalize(records)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.collections[name] = copied
	return nil
}

func (m *MemoryStore) Append(ctx context.Context, name string, record Record) error {
	if err := check(ctx, name); err != nil {
		return err
	}
	copied, err := normalizeRecord(record)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.collections[name] = append(m.collections[name], copied)
	return nil
}

func (m *MemoryStore) FindByField(ctx context.Context, name, field string, value any) ([]Record, error) {
	records, err := m.ReadCollection(ctx, name)
	if err != nil {
		return nil, err
	}
	return filterRecords(records, field, value), nil
}

func (m *MemoryStore) UpdateByField(ctx context.Context, name, field string, value any, patch Record) (int, error) {
	if err := check(ctx, name); err != nil {
		return 0, err
	}
	normalizedPatch, err := normalizeRecord(patch)
	if err != nil {
		return 0, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return applyPatch(m.collections[name], field, value, normalizedPatch), nil
}

func check(ctx context.Context, name string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return ValidateName(name)
}
