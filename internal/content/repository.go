package content

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"
)

// Repository persists entries.
type Repository interface {
	// Upsert inserts entry or replaces the stored entry with the same kind
	// and slug.
	Upsert(ctx context.Context, entry *Entry) (*Entry, error)
	GetByID(ctx context.Context, id uuid.UUID) (*Entry, error)
	GetBySlug(ctx context.Context, kind Kind, slug string) (*Entry, error)
	// List returns the entries of kind, or every entry when kind is empty.
	List(ctx context.Context, kind Kind) ([]*Entry, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// NotFoundError represents missing records from repository lookups.
type NotFoundError struct {
	Resource string
	Key      string
}

func (e *NotFoundError) Error() string {
	if e.Key == "" {
		return fmt.Sprintf("%s not found", e.Resource)
	}
	return fmt.Sprintf("%s %q not found", e.Resource, e.Key)
}

// MemoryRepository is an in-memory implementation for development and tests.
type MemoryRepository struct {
	mu       sync.RWMutex
	entries  map[uuid.UUID]*Entry
	keyIndex map[string]uuid.UUID
}

// NewMemoryRepository creates an empty in-memory repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		entries:  make(map[uuid.UUID]*Entry),
		keyIndex: make(map[string]uuid.UUID),
	}
}

func (m *MemoryRepository) Upsert(_ context.Context, entry *Entry) (*Entry, error) {
	if entry == nil {
		return nil, fmt.Errorf("content: upsert nil entry")
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	copied := cloneEntry(entry)
	copied.Key = EntryKey(copied.Kind, copied.Slug)
	if existing, ok := m.keyIndex[copied.Key]; ok {
		copied.ID = existing
	} else if copied.ID == uuid.Nil {
		copied.ID = uuid.New()
	}
	m.entries[copied.ID] = copied
	m.keyIndex[copied.Key] = copied.ID
	return cloneEntry(copied), nil
}

func (m *MemoryRepository) GetByID(_ context.Context, id uuid.UUID) (*Entry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	rec, ok := m.entries[id]
	if !ok {
		return nil, &NotFoundError{Resource: "entry", Key: id.String()}
	}
	return cloneEntry(rec), nil
}

func (m *MemoryRepository) GetBySlug(_ context.Context, kind Kind, slug string) (*Entry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	key := EntryKey(kind, slug)
	id, ok := m.keyIndex[key]
	if !ok {
		return nil, &NotFoundError{Resource: "entry", Key: key}
	}
	return cloneEntry(m.entries[id]), nil
}

func (m *MemoryRepository) List(_ context.Context, kind Kind) ([]*Entry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]*Entry, 0, len(m.entries))
	for _, rec := range m.entries {
		if kind != "" && rec.Kind != kind {
			continue
		}
		out = append(out, cloneEntry(rec))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out, nil
}

func (m *MemoryRepository) Delete(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	rec, ok := m.entries[id]
	if !ok {
		return &NotFoundError{Resource: "entry", Key: id.String()}
	}
	delete(m.keyIndex, rec.Key)
	delete(m.entries, id)
	return nil
}
