package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect"

	"github.com/goliatone/go-site/internal/logging"
	"github.com/goliatone/go-site/pkg/interfaces"
)

// BunStore keeps each collection as one JSON document row in
// site_collections. Mutations run read-modify-write inside a transaction,
// serialized in process and, on postgres, under a row lock.
type BunStore struct {
	db     *bun.DB
	mu     sync.RWMutex
	logger interfaces.Logger
	now    func() time.Time
}

type collectionModel struct {
	bun.BaseModel `bun:"table:site_collections"`

	Name      string    `bun:"name,pk"`
	Records   []Record  `bun:"records,type:jsonb"`
	UpdatedAt time.Time `bun:"updated_at"`
}

// NewBunStore wraps db. Call EnsureSchema before first use.
func NewBunStore(db *bun.DB, logger interfaces.Logger) *BunStore {
	return &BunStore{
		db:     db,
		logger: logging.Or(logger),
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// EnsureSchema creates the collections table when missing.
func (s *BunStore) EnsureSchema(ctx context.Context) error {
	if s.db == nil {
		return errors.New("store: bun store requires a database")
	}
	_, err := s.db.NewCreateTable().Model((*collectionModel)(nil)).IfNotExists().Exec(ctx)
	if err != nil {
		return fmt.Errorf("store: create site_collections: %w", err)
	}
	return nil
}

func (s *BunStore) ReadCollection(ctx context.Context, name string) ([]Record, error) {
	if err := check(ctx, name); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.read(ctx, s.db, name, false)
}

func (s *BunStore) WriteCollection(ctx context.Context, name string, records []Record) error {
	if err := check(ctx, name); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.write(ctx, s.db, name, records)
}

func (s *BunStore) Append(ctx context.Context, name string, record Record) error {
	if err := check(ctx, name); err != nil {
		return err
	}
	if record == nil {
		record = Record{}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		records, err := s.lockedRead(ctx, tx, name)
		if err != nil {
			return err
		}
		return s.write(ctx, tx, name, append(records, record))
	})
}

func (s *BunStore) FindByField(ctx context.Context, name, field string, value any) ([]Record, error) {
	records, err := s.ReadCollection(ctx, name)
	if err != nil {
		return nil, err
	}
	return filterRecords(records, field, value), nil
}

func (s *BunStore) UpdateByField(ctx context.Context, name, field string, value any, patch Record) (int, error) {
	if err := check(ctx, name); err != nil {
		return 0, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	updated := 0
	err := s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		records, err := s.lockedRead(ctx, tx, name)
		if err != nil {
			return err
		}
		updated = applyPatch(records, field, value, patch)
		if updated == 0 {
			return nil
		}
		return s.write(ctx, tx, name, records)
	})
	if err != nil {
		return 0, err
	}
	return updated, nil
}

// lockedRead reads name inside tx. On postgres the row is created when
// missing and selected FOR UPDATE so concurrent writers queue on it.
func (s *BunStore) lockedRead(ctx context.Context, tx bun.Tx, name string) ([]Record, error) {
	if s.db.Dialect().Name() != dialect.PG {
		return s.read(ctx, tx, name, false)
	}
	seed := &collectionModel{Name: name, Records: []Record{}, UpdatedAt: s.now()}
	if _, err := tx.NewInsert().Model(seed).On("CONFLICT (name) DO NOTHING").Exec(ctx); err != nil {
		return nil, fmt.Errorf("store: seed %s: %w", name, err)
	}
	return s.read(ctx, tx, name, true)
}

func (s *BunStore) read(ctx context.Context, db bun.IDB, name string, forUpdate bool) ([]Record, error) {
	var model collectionModel
	q := db.NewSelect().Model(&model).Where("name = ?", name)
	if forUpdate {
		q = q.For("UPDATE")
	}
	err := q.Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return []Record{}, nil
		}
		return nil, fmt.Errorf("store: read %s: %w", name, err)
	}
	return normalize(model.Records)
}

func (s *BunStore) write(ctx context.Context, db bun.IDB, name string, records []Record) error {
	normalized, err := normalize(records)
	if err != nil {
		return err
	}
	model := &collectionModel{Name: name, Records: normalized, UpdatedAt: s.now()}
	_, err = db.NewInsert().
		Model(model).
		On("CONFLICT (name) DO UPDATE").
		Set("records = EXCLUDED.records").
		Set("updated_at = EXCLUDED.updated_at").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("store: write %s: %w", name, err)
	}
	s.logger.Debug("store.bun.written", "collection", name, "records", len(normalized))
	return nil
}
