package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/goliatone/go-site/internal/logging"
	"github.com/goliatone/go-site/pkg/interfaces"
)

// FileStore keeps one <name>.json file per collection under a directory.
// Writes go to a temporary file that is renamed into place.
type FileStore struct {
	dir    string
	mu     sync.Mutex
	logger interfaces.Logger
}

// NewFileStore prepares dir and verifies it is writable.
func NewFileStore(dir string, logger interfaces.Logger) (*FileStore, error) {
	if dir == "" {
		dir = "data"
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("store: create data dir %s: %w", dir, err)
	}
	probe, err := os.CreateTemp(dir, ".probe-*")
	if err != nil {
		return nil, fmt.Errorf("store: data dir %s is not writable: %w", dir, err)
	}
	name := probe.Name()
	_ = probe.Close()
	_ = os.Remove(name)

	return &FileStore{dir: dir, logger: logging.Or(logger)}, nil
}

// Dir returns the data directory.
func (s *FileStore) Dir() string {
	return s.dir
}

func (s *FileStore) ReadCollection(ctx context.Context, name string) ([]Record, error) {
	if err := check(ctx, name); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.read(name)
}

func (s *FileStore) WriteCollection(ctx context.Context, name string, records []Record) error {
	if err := check(ctx, name); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.write(name, records)
}

func (s *FileStore) Append(ctx context.Context, name string, record Record) error {
	if err := check(ctx, name); err != nil {
		return err
	}
	if record == nil {
		record = Record{}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	records, err := s.read(name)
	if err != nil {
		return err
	}
	return s.write(name, append(records, record))
}

func (s *FileStore) FindByField(ctx context.Context, name, field string, value any) ([]Record, error) {
	records, err := s.ReadCollection(ctx, name)
	if err != nil {
		return nil, err
	}
	return filterRecords(records, field, value), nil
}

func (s *FileStore) UpdateByField(ctx context.Context, name, field string, value any, patch Record) (int, error) {
	if err := check(ctx, name); err != nil {
		return 0, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	records, err := s.read(name)
	if err != nil {
		return 0, err
	}
	updated := applyPatch(records, field, value, patch)
	if updated == 0 {
		return 0, nil
	}
	return updated, s.write(name, records)
}

func (s *FileStore) path(name string) string {
	return filepath.Join(s.dir, name+".json")
}

func (s *FileStore) read(name string) ([]Record, error) {
	data, err := os.ReadFile(s.path(name))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return []Record{}, nil
		}
		return nil, fmt.Errorf("store: read %s: %w", name, err)
	}
	records, err := decodeRecords(data)
	if err != nil {
		s.logger.Error("store.file.corrupt", "collection", name, "error", err)
		return nil, fmt.Errorf("store: read %s: %w", name, err)
	}
	return records, nil
}

func (s *FileStore) write(name string, records []Record) error {
	if records == nil {
		records = []Record{}
	}
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("store: encode %s: %w", name, err)
	}

	tmp, err := os.CreateTemp(s.dir, "."+name+"-*.json")
	if err != nil {
		return fmt.Errorf("store: write %s: %w", name, err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(append(data, '\n')); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("store: write %s: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("store: write %s: %w", name, err)
	}
	if err := os.Rename(tmpName, s.path(name)); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("store: write %s: %w", name, err)
	}
	s.logger.Debug("store.file.written", "collection", name, "records", len(records))
	return nil
}
