package content

import (
	"context"
	"errors"
	"fmt"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-repository-bun"
	"github.com/goliatone/go-repository-cache/cache"
	repositorycache "github.com/goliatone/go-repository-cache/repositorycache"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// BunRepository persists entries through go-repository-bun, optionally
// behind a go-repository-cache read-through cache.
type BunRepository struct {
	db   *bun.DB
	repo repository.Repository[*Entry]
}

// NewEntryRepository builds the generic repository for entries keyed by the
// kind/slug identifier column.
func NewEntryRepository(db *bun.DB) repository.Repository[*Entry] {
	return repository.MustNewRepository(db, repository.ModelHandlers[*Entry]{
		NewRecord: func() *Entry { return &Entry{} },
		GetID: func(e *Entry) uuid.UUID {
			return e.ID
		},
		SetID: func(e *Entry, id uuid.UUID) {
			e.ID = id
		},
		GetIdentifier: func() string {
			return "entry_key"
		},
		GetIdentifierValue: func(e *Entry) string {
			return e.Key
		},
	})
}

func NewBunRepository(db *bun.DB) *BunRepository {
	return NewBunRepositoryWithCache(db, nil, nil)
}

func NewBunRepositoryWithCache(db *bun.DB, cacheService cache.CacheService, keySerializer cache.KeySerializer) *BunRepository {
	base := NewEntryRepository(db)
	return &BunRepository{db: db, repo: wrapWithCache(base, cacheService, keySerializer)}
}

// EnsureSchema creates the entries table when missing.
func (r *BunRepository) EnsureSchema(ctx context.Context) error {
	_, err := r.db.NewCreateTable().Model((*Entry)(nil)).IfNotExists().Exec(ctx)
	if err != nil {
		return fmt.Errorf("content: create site_entries: %w", err)
	}
	return nil
}

func (r *BunRepository) Upsert(ctx context.Context, entry *Entry) (*Entry, error) {
	if entry == nil {
		return nil, errors.New("content: upsert nil entry")
	}
	record := cloneEntry(entry)
	record.Key = EntryKey(record.Kind, record.Slug)

	existing, err := r.repo.GetByIdentifier(ctx, record.Key)
	if err != nil {
		if !goerrors.IsCategory(err, repository.CategoryDatabaseNotFound) {
			return nil, mapRepositoryError(err, "entry", record.Key)
		}
		if record.ID == uuid.Nil {
			record.ID = uuid.New()
		}
		created, err := r.repo.Create(ctx, record)
		if err != nil {
			return nil, fmt.Errorf("entry repository error: %w", err)
		}
		return created, nil
	}

	record.ID = existing.ID
	updated, err := r.repo.Update(ctx, record)
	if err != nil {
		return nil, fmt.Errorf("entry repository error: %w", err)
	}
	return updated, nil
}

func (r *BunRepository) GetByID(ctx context.Context, id uuid.UUID) (*Entry, error) {
	result, err := r.repo.GetByID(ctx, id.String())
	if err != nil {
		return nil, mapRepositoryError(err, "entry", id.String())
	}
	return result, nil
}

func (r *BunRepository) GetBySlug(ctx context.Context, kind Kind, slug string) (*Entry, error) {
	key := EntryKey(kind, slug)
	result, err := r.repo.GetByIdentifier(ctx, key)
	if err != nil {
		return nil, mapRepositoryError(err, "entry", key)
	}
	return result, nil
}

func (r *BunRepository) List(ctx context.Context, kind Kind) ([]*Entry, error) {
	records, _, err := r.repo.List(ctx,
		repository.SelectRawProcessor(func(q *bun.SelectQuery) *bun.SelectQuery {
			if kind != "" {
				q = q.Where("?TableAlias.kind = ?", kind)
			}
			return q.OrderExpr("?TableAlias.entry_key ASC")
		}),
	)
	return records, err
}

func (r *BunRepository) Delete(ctx context.Context, id uuid.UUID) error {
	existing, err := r.GetByID(ctx, id)
	if err != nil {
		return err
	}
	return r.repo.Delete(ctx, existing)
}

func mapRepositoryError(err error, resource, key string) error {
	if err == nil {
		return nil
	}
	if goerrors.IsCategory(err, repository.CategoryDatabaseNotFound) {
		return &NotFoundError{
			Resource: resource,
			Key:      key,
		}
	}
	return fmt.Errorf("%s repository error: %w", resource, err)
}

func wrapWithCache[T any](base repository.Repository[T], cacheService cache.CacheService, keySerializer cache.KeySerializer) repository.Repository[T] {
	if cacheService == nil || keySerializer == nil {
		return base
	}
	return repositorycache.New(base, cacheService, keySerializer)
}
