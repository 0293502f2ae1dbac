package content

import (
	"context"
	"errors"
	"testing"
	"time"

	repocache "github.com/goliatone/go-repository-cache/cache"
	"github.com/google/uuid"

	"github.com/goliatone/go-site/pkg/testsupport"
)

type repoFactory struct {
	name  string
	build func(t *testing.T) Repository
}

func repositories() []repoFactory {
	return []repoFactory{
		{name: "memory", build: func(t *testing.T) Repository { return NewMemoryRepository() }},
		{name: "bun", build: func(t *testing.T) Repository {
			repo := NewBunRepository(testsupport.NewBunDB(t))
			if err := repo.EnsureSchema(context.Background()); err != nil {
				t.Fatalf("EnsureSchema: %v", err)
			}
			return repo
		}},
	}
}

func sampleEntry(kind Kind, slug string) *Entry {
	return &Entry{
		Kind:        kind,
		Slug:        slug,
		Title:       "Title " + slug,
		Body:        "# " + slug,
		Tags:        []string{"a", "b"},
		PublishedAt: time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC),
	}
}

func TestRepositoryContract(t *testing.T) {
	for _, f := range repositories() {
		t.Run(f.name, func(t *testing.T) {
			ctx := context.Background()
			repo := f.build(t)

			created, err := repo.Upsert(ctx, sampleEntry(KindBlog, "hello"))
			if err != nil {
				t.Fatalf("Upsert create: %v", err)
			}
			if created.ID == uuid.Nil || created.Key != "blog/hello" {
				t.Fatalf("unexpected created entry: %+v", created)
			}

			update := sampleEntry(KindBlog, "hello")
			update.Title = "Updated"
			updated, err := repo.Upsert(ctx, update)
			if err != nil {
				t.Fatalf("Upsert update: %v", err)
			}
			if updated.ID != created.ID {
				t.Fatalf("expected upsert to keep id %s, got %s", created.ID, updated.ID)
			}

			bySlug, err := repo.GetBySlug(ctx, KindBlog, "hello")
			if err != nil {
				t.Fatalf("GetBySlug: %v", err)
			}
			if bySlug.Title != "Updated" || len(bySlug.Tags) != 2 {
				t.Fatalf("unexpected entry: %+v", bySlug)
			}

			byID, err := repo.GetByID(ctx, created.ID)
			if err != nil || byID.Slug != "hello" {
				t.Fatalf("GetByID: %+v %v", byID, err)
			}

			if _, err := repo.Upsert(ctx, sampleEntry(KindEvent, "hello")); err != nil {
				t.Fatalf("Upsert event: %v", err)
			}
			blogs, err := repo.List(ctx, KindBlog)
			if err != nil || len(blogs) != 1 {
				t.Fatalf("List blog: %d %v", len(blogs), err)
			}
			all, err := repo.List(ctx, "")
			if err != nil || len(all) != 2 {
				t.Fatalf("List all: %d %v", len(all), err)
			}

			var notFound *NotFoundError
			if _, err := repo.GetBySlug(ctx, KindBlog, "missing"); !errors.As(err, &notFound) {
				t.Fatalf("expected NotFoundError, got %v", err)
			}

			if err := repo.Delete(ctx, created.ID); err != nil {
				t.Fatalf("Delete: %v", err)
			}
			if _, err := repo.GetByID(ctx, created.ID); !errors.As(err, &notFound) {
				t.Fatalf("expected NotFoundError after delete, got %v", err)
			}
		})
	}
}

func TestMemoryRepositoryReturnsCopies(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepository()
	entry := sampleEntry(KindBlog, "copy")
	stored, _ := repo.Upsert(ctx, entry)
	entry.Tags[0] = "mutated"
	stored.Tags[1] = "mutated"

	got, _ := repo.GetBySlug(ctx, KindBlog, "copy")
	if got.Tags[0] != "a" || got.Tags[1] != "b" {
		t.Fatalf("expected repository to be isolated, got %#v", got.Tags)
	}
}

func TestBunRepositoryWithCache(t *testing.T) {
	ctx := context.Background()
	cacheCfg := repocache.DefaultConfig()
	cacheCfg.TTL = time.Minute
	cacheSvc, err := repocache.NewCacheService(cacheCfg)
	if err != nil {
		t.Fatalf("cache service: %v", err)
	}

	repo := NewBunRepositoryWithCache(testsupport.NewBunDB(t), cacheSvc, repocache.NewDefaultKeySerializer())
	if err := repo.EnsureSchema(ctx); err != nil {
		t.Fatalf("EnsureSchema: %v", err)
	}
	created, err := repo.Upsert(ctx, sampleEntry(KindWhitepaper, "guide"))
	if err != nil {
		t.Fatalf("Upsert: %v", err)
	}
	for i := 0; i < 2; i++ {
		got, err := repo.GetByID(ctx, created.ID)
		if err != nil || got.Slug != "guide" {
			t.Fatalf("GetByID pass %d: %+v %v", i, got, err)
		}
	}
}

func TestServiceListKeepsCachedListingIntact(t *testing.T) {
	ctx := context.Background()
	cacheCfg := repocache.DefaultConfig()
	cacheCfg.TTL = time.Minute
	cacheSvc, err := repocache.NewCacheService(cacheCfg)
	if err != nil {
		t.Fatalf("cache service: %v", err)
	}

	repo := NewBunRepositoryWithCache(testsupport.NewBunDB(t), cacheSvc, repocache.NewDefaultKeySerializer())
	if err := repo.EnsureSchema(ctx); err != nil {
		t.Fatalf("EnsureSchema: %v", err)
	}
	draft := sampleEntry(KindBlog, "a-draft")
	draft.Draft = true
	for _, entry := range []*Entry{draft, sampleEntry(KindBlog, "b-live"), sampleEntry(KindBlog, "c-live")} {
		if _, err := repo.Upsert(ctx, entry); err != nil {
			t.Fatalf("Upsert %s: %v", entry.Slug, err)
		}
	}

	svc := NewService(repo, nil, nil)
	for i := 0; i < 3; i++ {
		entries, err := svc.List(ctx, KindBlog)
		if err != nil {
			t.Fatalf("List pass %d: %v", i, err)
		}
		if got := slugs(entries); len(got) != 2 || got[0] != "b-live" || got[1] != "c-live" {
			t.Fatalf("List pass %d: got %v", i, got)
		}
	}

	all, err := repo.List(ctx, KindBlog)
	if err != nil {
		t.Fatalf("repo.List: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("expected repository to still hold 3 entries, got %v", slugs(all))
	}
}
