// Package store persists named collections of JSON records.
//
// Every collection is an ordered array of objects. Writes replace the whole
// collection, so concurrent writers resolve as last write wins.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// Record is one JSON object in a collection.
type Record = map[string]any

// Store is the collection persistence contract shared by the file, memory,
// and database backends.
type Store interface {
	// ReadCollection returns every record of name. A collection that was never
	// written is empty, not an error.
	ReadCollection(ctx context.Context, name string) ([]Record, error)
	// WriteCollection replaces the records of name.
	WriteCollection(ctx context.Context, name string, records []Record) error
	// Append adds record to the end of name.
	Append(ctx context.Context, name string, record Record) error
	// FindByField returns the records whose field equals value.
	FindByField(ctx context.Context, name, field string, value any) ([]Record, error)
	// UpdateByField merges patch into every record whose field equals value and
	// reports how many records changed.
	UpdateByField(ctx context.Context, name, field string, value any, patch Record) (int, error)
}

var (
	// ErrInvalidCollection is returned for names outside [a-z0-9_-].
	ErrInvalidCollection = errors.New("store: invalid collection name")
	// ErrCorruptCollection is returned when stored data is not a JSON array of objects.
	ErrCorruptCollection = errors.New("store: corrupt collection")
	// ErrUnknownProvider is returned by Open for unsupported providers.
	ErrUnknownProvider = errors.New("store: unknown provider")
)

var collectionNamePattern = regexp.MustCompile(`^[a-z0-9][a-z0-9_-]*$`)

// ValidateName checks a collection name.
func ValidateName(name string) error {
	if !collectionNamePattern.MatchString(name) {
		return fmt.Errorf("%w: %q", ErrInvalidCollection, name)
	}
	return nil
}

// normalize round-trips records through JSON so every backend hands out the
// same shapes (float64 numbers, []any arrays) and callers never share maps
// with the store.
func normalize(records []Record) ([]Record, error) {
	if records == nil {
		return []Record{}, nil
	}
	data, err := json.Marshal(records)
	if err != nil {
		return nil, fmt.Errorf("store: encode records: %w", err)
	}
	return decodeRecords(data)
}

func normalizeRecord(record Record) (Record, error) {
	if record == nil {
		record = Record{}
	}
	out, err := normalize([]Record{record})
	if err != nil {
		return nil, err
	}
	return out[0], nil
}

func decodeRecords(data []byte) ([]Record, error) {
	if len(strings.TrimSpace(string(data))) == 0 {
		return []Record{}, nil
	}
	var out []Record
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptCollection, err)
	}
	if out == nil {
		out = []Record{}
	}
	for i, rec := range out {
		if rec == nil {
			return nil, fmt.Errorf("%w: element %d is not an object", ErrCorruptCollection, i)
		}
	}
	return out, nil
}

// valuesEqual compares values by their JSON encoding, so 3 and 3.0 match.
func valuesEqual(a, b any) bool {
	left, err := json.Marshal(a)
	if err != nil {
		return false
	}
	right, err := json.Marshal(b)
	if err != nil {
		return false
	}
	return string(left) == string(right)
}

func filterRecords(records []Record, field string, value any) []Record {
	out := []Record{}
	for _, rec := range records {
		got, ok := rec[field]
		if !ok {
			continue
		}
		if valuesEqual(got, value) {
			out = append(out, rec)
		}
	}
	return out
}

// applyPatch merges patch into matching records in place.
func applyPatch(records []Record, field string, value any, patch Record) int {
	updated := 0
	for _, rec := range records {
		got, ok := rec[field]
		if !ok || !valuesEqual(got, value) {
			continue
		}
		for key, val := range patch {
			rec[key] = val
		}
		updated++
	}
	return updated
}
