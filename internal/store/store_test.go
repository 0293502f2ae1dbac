package store

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/goliatone/go-site/pkg/testsupport"
)

type backend struct {
	name  string
	build func(t *testing.T) Store
}

func backends() []backend {
	return []backend{
		{name: "memory", build: func(t *testing.T) Store { return NewMemoryStore() }},
		{name: "file", build: func(t *testing.T) Store {
			s, err := NewFileStore(t.TempDir(), nil)
			if err != nil {
				t.Fatalf("NewFileStore: %v", err)
			}
			return s
		}},
		{name: "bun", build: func(t *testing.T) Store {
			s := NewBunStore(testsupport.NewBunDB(t), nil)
			if err := s.EnsureSchema(context.Background()); err != nil {
				t.Fatalf("EnsureSchema: %v", err)
			}
			return s
		}},
	}
}

func TestStoreContract(t *testing.T) {
	for _, b := range backends() {
		t.Run(b.name, func(t *testing.T) {
			ctx := context.Background()
			s := b.build(t)

			empty, err := s.ReadCollection(ctx, "leads")
			if err != nil {
				t.Fatalf("ReadCollection on missing collection: %v", err)
			}
			if empty == nil || len(empty) != 0 {
				t.Fatalf("expected empty collection, got %#v", empty)
			}

			if err := s.Append(ctx, "leads", Record{"id": "a", "email": "a@example.com", "score": 3}); err != nil {
				t.Fatalf("Append: %v", err)
			}
			if err := s.Append(ctx, "leads", Record{"id": "b", "email": "b@example.com", "score": 5}); err != nil {
				t.Fatalf("Append: %v", err)
			}

			all, err := s.ReadCollection(ctx, "leads")
			if err != nil {
				t.Fatalf("ReadCollection: %v", err)
			}
			if len(all) != 2 || all[0]["id"] != "a" || all[1]["id"] != "b" {
				t.Fatalf("unexpected records: %#v", all)
			}
			if all[0]["score"] != float64(3) {
				t.Fatalf("expected JSON number shape, got %#v", all[0]["score"])
			}

			found, err := s.FindByField(ctx, "leads", "score", 5)
			if err != nil {
				t.Fatalf("FindByField: %v", err)
			}
			if len(found) != 1 || found[0]["id"] != "b" {
				t.Fatalf("unexpected matches: %#v", found)
			}

			n, err := s.UpdateByField(ctx, "leads", "id", "a", Record{"status": "contacted"})
			if err != nil {
				t.Fatalf("UpdateByField: %v", err)
			}
			if n != 1 {
				t.Fatalf("expected 1 update, got %d", n)
			}
			updated, _ := s.FindByField(ctx, "leads", "id", "a")
			if len(updated) != 1 || updated[0]["status"] != "contacted" || updated[0]["email"] != "a@example.com" {
				t.Fatalf("expected merged patch, got %#v", updated)
			}

			if n, err := s.UpdateByField(ctx, "leads", "id", "missing", Record{"status": "x"}); err != nil || n != 0 {
				t.Fatalf("expected no updates, got %d %v", n, err)
			}

			if err := s.WriteCollection(ctx, "leads", []Record{{"id": "c"}}); err != nil {
				t.Fatalf("WriteCollection: %v", err)
			}
			replaced, _ := s.ReadCollection(ctx, "leads")
			if len(replaced) != 1 || replaced[0]["id"] != "c" {
				t.Fatalf("expected replaced collection, got %#v", replaced)
			}

			other, _ := s.ReadCollection(ctx, "contacts")
			if len(other) != 0 {
				t.Fatalf("expected collections to be independent, got %#v", other)
			}
		})
	}
}

func TestStoreReturnsCopies(t *testing.T) {
	for _, b := range backends() {
		t.Run(b.name, func(t *testing.T) {
			ctx := context.Background()
			s := b.build(t)
			record := Record{"id": "a"}
			if err := s.Append(ctx, "flags", record); err != nil {
				t.Fatalf("Append: %v", err)
			}
			record["id"] = "mutated"

			got, _ := s.ReadCollection(ctx, "flags")
			got[0]["id"] = "also-mutated"

			again, _ := s.ReadCollection(ctx, "flags")
			if again[0]["id"] != "a" {
				t.Fatalf("expected store to be isolated from callers, got %#v", again)
			}
		})
	}
}

func TestStoreRejectsInvalidNames(t *testing.T) {
	for _, b := range backends() {
		t.Run(b.name, func(t *testing.T) {
			s := b.build(t)
			for _, name := range []string{"", "../etc", "Leads", "a/b", "-x"} {
				if _, err := s.ReadCollection(context.Background(), name); !errors.Is(err, ErrInvalidCollection) {
					t.Fatalf("%q: expected ErrInvalidCollection, got %v", name, err)
				}
			}
		})
	}
}

func TestStoreHonoursCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := NewMemoryStore().Append(ctx, "leads", Record{}); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestFileStoreLayout(t *testing.T) {
	dir := t.TempDir()
	s, err := NewFileStore(dir, nil)
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}
	if err := s.Append(context.Background(), "email_logs", Record{"status": "sent"}); err != nil {
		t.Fatalf("Append: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(dir, "email_logs.json"))
	if err != nil {
		t.Fatalf("expected collection file: %v", err)
	}
	if len(data) == 0 || data[0] != '[' {
		t.Fatalf("expected JSON array, got %q", string(data))
	}

	entries, _ := os.ReadDir(dir)
	if len(entries) != 1 {
		t.Fatalf("expected only the collection file, got %d entries", len(entries))
	}
}

func TestFileStoreCorruptFile(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "leads.json"), []byte("{not json"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	s, err := NewFileStore(dir, nil)
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}
	if _, err := s.ReadCollection(context.Background(), "leads"); !errors.Is(err, ErrCorruptCollection) {
		t.Fatalf("expected ErrCorruptCollection, got %v", err)
	}
}

func TestFileStoreConcurrentAppends(t *testing.T) {
	s, err := NewFileStore(t.TempDir(), nil)
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_ = s.Append(context.Background(), "contacts", Record{"n": i})
		}(i)
	}
	wg.Wait()

	records, err := s.ReadCollection(context.Background(), "contacts")
	if err != nil {
		t.Fatalf("ReadCollection: %v", err)
	}
	if len(records) != 20 {
		t.Fatalf("expected 20 records, got %d", len(records))
	}
}

func TestBunStoreConcurrentAppendsOnSQLiteFile(t *testing.T) {
	ctx := context.Background()
	dsn := "file:" + filepath.Join(t.TempDir(), "site.db") + "?cache=shared&_fk=1"
	opened, err := Open(ctx, Config{Provider: ProviderSQLite, DSN: dsn}, nil)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = opened.DB.Close() })

	const writers = 20
	errs := make(chan error, writers)
	var wg sync.WaitGroup
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs <- opened.Store.Append(ctx, "leads", Record{"n": i})
		}(i)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		if err != nil {
			t.Fatalf("Append: %v", err)
		}
	}

	records, err := opened.Store.ReadCollection(ctx, "leads")
	if err != nil {
		t.Fatalf("ReadCollection: %v", err)
	}
	if len(records) != writers {
		t.Fatalf("expected %d records, got %d", writers, len(records))
	}

	updated, err := opened.Store.UpdateByField(ctx, "leads", "n", 3, Record{"status": "read"})
	if err != nil || updated != 1 {
		t.Fatalf("UpdateByField: updated=%d err=%v", updated, err)
	}
}

func TestOpenProviders(t *testing.T) {
	ctx := context.Background()

	opened, err := Open(ctx, Config{Provider: "memory"}, nil)
	if err != nil || opened.Provider != ProviderMemory {
		t.Fatalf("memory: %+v %v", opened, err)
	}

	opened, err = Open(ctx, Config{Dir: t.TempDir()}, nil)
	if err != nil || opened.Provider != ProviderFile {
		t.Fatalf("file default: %+v %v", opened, err)
	}

	opened, err = Open(ctx, Config{Provider: "sqlite", DSN: "file:open_providers?mode=memory&cache=shared"}, nil)
	if err != nil {
		t.Fatalf("sqlite: %v", err)
	}
	t.Cleanup(func() { _ = opened.DB.Close() })
	if opened.DB == nil || opened.Provider != ProviderSQLite {
		t.Fatalf("expected sqlite db handle, got %+v", opened)
	}
	if err := opened.Store.Append(ctx, "leads", Record{"id": "x"}); err != nil {
		t.Fatalf("sqlite append: %v", err)
	}

	if _, err := Open(ctx, Config{Provider: "redis"}, nil); !errors.Is(err, ErrUnknownProvider) {
		t.Fatalf("expected ErrUnknownProvider, got %v", err)
	}
	if _, err := Open(ctx, Config{Provider: "postgres"}, nil); err == nil {
		t.Fatalf("expected postgres without dsn to fail")
	}
}

func TestOpenFallsBackToMemoryOnReadOnlyDir(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("permission checks do not apply to root")
	}
	dir := t.TempDir()
	if err := os.Chmod(dir, 0o555); err != nil {
		t.Fatalf("chmod: %v", err)
	}
	t.Cleanup(func() { _ = os.Chmod(dir, 0o755) })

	opened, err := Open(context.Background(), Config{Provider: "file", Dir: dir}, nil)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if opened.Provider != ProviderMemory {
		t.Fatalf("expected memory fallback, got %s", opened.Provider)
	}
}

type lead struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

func TestCollectionTyped(t *testing.T) {
	ctx := context.Background()
	c := NewCollection[lead](NewMemoryStore(), "leads")

	if err := c.Append(ctx, lead{ID: "1", Email: "a@example.com"}); err != nil {
		t.Fatalf("Append: %v", err)
	}
	if err := c.Append(ctx, lead{ID: "2", Email: "b@example.com"}); err != nil {
		t.Fatalf("Append: %v", err)
	}

	got, ok, err := c.First(ctx, "id", "2")
	if err != nil || !ok || got.Email != "b@example.com" {
		t.Fatalf("First: %+v %v %v", got, ok, err)
	}
	if _, ok, _ := c.First(ctx, "id", "9"); ok {
		t.Fatalf("expected no match")
	}

	if err := c.Replace(ctx, []lead{{ID: "3"}}); err != nil {
		t.Fatalf("Replace: %v", err)
	}
	all, err := c.All(ctx)
	if err != nil || len(all) != 1 || all[0].ID != "3" {
		t.Fatalf("All: %+v %v", all, err)
	}
}
