package store

import (
	"context"
	"encoding/json"
	"fmt"
)

// Collection is a typed view over one named collection. Items are converted
// to and from records through their JSON encoding.
type Collection[T any] struct {
	store Store
	name  string
}

// NewCollection binds a typed collection to store.
func NewCollection[T any](s Store, name string) *Collection[T] {
	return &Collection[T]{store: s, name: name}
}

// Name returns the collection name.
func (c *Collection[T]) Name() string {
	return c.name
}

// All returns every item in stored order.
func (c *Collection[T]) All(ctx context.Context) ([]T, error) {
	records, err := c.store.ReadCollection(ctx, c.name)
	if err != nil {
		return nil, err
	}
	return fromRecords[T](records)
}

// Find returns the items whose field equals value.
func (c *Collection[T]) Find(ctx context.Context, field string, value any) ([]T, error) {
	records, err := c.store.FindByField(ctx, c.name, field, value)
	if err != nil {
		return nil, err
	}
	return fromRecords[T](records)
}

// First returns the first item whose field equals value.
func (c *Collection[T]) First(ctx context.Context, field string, value any) (T, bool, error) {
	var zero T
	items, err := c.Find(ctx, field, value)
	if err != nil || len(items) == 0 {
		return zero, false, err
	}
	return items[0], true, nil
}

// Append adds item to the end of the collection.
func (c *Collection[T]) Append(ctx context.Context, item T) error {
	record, err := toRecord(item)
	if err != nil {
		return err
	}
	return c.store.Append(ctx, c.name, record)
}

// Replace overwrites the collection with items.
func (c *Collection[T]) Replace(ctx context.Context, items []T) error {
	records := make([]Record, 0, len(items))
	for _, item := range items {
		record, err := toRecord(item)
		if err != nil {
			return err
		}
		records = append(records, record)
	}
	return c.store.WriteCollection(ctx, c.name, records)
}

// Update merges patch into the items whose field equals value.
func (c *Collection[T]) Update(ctx context.Context, field string, value any, patch Record) (int, error) {
	return c.store.UpdateByField(ctx, c.name, field, value, patch)
}

func toRecord(item any) (Record, error) {
	data, err := json.Marshal(item)
	if err != nil {
		return nil, fmt.Errorf("store: encode item: %w", err)
	}
	var record Record
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, fmt.Errorf("store: item is not an object: %w", err)
	}
	return record, nil
}

func fromRecords[T any](records []Record) ([]T, error) {
	data, err := json.Marshal(records)
	if err != nil {
		return nil, fmt.Errorf("store: encode records: %w", err)
	}
	out := []T{}
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("store: decode records: %w", err)
	}
	return out, nil
}
