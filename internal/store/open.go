package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"syscall"

	_ "github.com/mattn/go-sqlite3"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/dialect/sqlitedialect"

	"github.com/goliatone/go-site/internal/logging"
	"github.com/goliatone/go-site/pkg/interfaces"
)

const (
	ProviderFile     = "file"
	ProviderMemory   = "memory"
	ProviderSQLite   = "sqlite"
	ProviderPostgres = "postgres"
)

// Config selects and configures a backend.
type Config struct {
	Provider string
	// Dir is the data directory for the file provider.
	Dir string
	// DSN is the connection string for sqlite and postgres.
	DSN string
}

// Opened is a store plus the database handle backing it, if any.
type Opened struct {
	Store Store
	// DB is set for the sqlite and postgres providers so other components
	// can share the connection.
	DB *bun.DB
	// Provider is the provider actually in use, which differs from the
	// configured one after a read-only fallback.
	Provider string
}

// Open builds the configured backend. The file provider falls back to memory
// when the data directory cannot be written.
func Open(ctx context.Context, cfg Config, logger interfaces.Logger) (*Opened, error) {
	logger = logging.Or(logger)
	provider := strings.ToLower(strings.TrimSpace(cfg.Provider))
	if provider == "" {
		provider = ProviderFile
	}

	switch provider {
	case ProviderFile:
		fileStore, err := NewFileStore(cfg.Dir, logger)
		if err != nil {
			if isReadOnly(err) {
				logger.Warn("store.file.readonly_fallback", "dir", cfg.Dir, "error", err)
				return &Opened{Store: NewMemoryStore(), Provider: ProviderMemory}, nil
			}
			return nil, err
		}
		return &Opened{Store: fileStore, Provider: ProviderFile}, nil
	case ProviderMemory:
		return &Opened{Store: NewMemoryStore(), Provider: ProviderMemory}, nil
	case ProviderSQLite, ProviderPostgres:
		db, err := OpenDB(provider, cfg.DSN)
		if err != nil {
			return nil, err
		}
		bunStore := NewBunStore(db, logger)
		if err := bunStore.EnsureSchema(ctx); err != nil {
			_ = db.Close()
			return nil, err
		}
		return &Opened{Store: bunStore, DB: db, Provider: provider}, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownProvider, cfg.Provider)
}

// OpenDB opens a bun database for sqlite or postgres. The postgres driver
// must be registered by the binary. SQLite handles are limited to one
// connection since shared-cache connections fail with table locks instead
// of waiting.
func OpenDB(provider, dsn string) (*bun.DB, error) {
	switch provider {
	case ProviderSQLite:
		if strings.TrimSpace(dsn) == "" {
			dsn = "file:site.db?cache=shared&_fk=1"
		}
		sqldb, err := sql.Open("sqlite3", dsn)
		if err != nil {
			return nil, fmt.Errorf("store: open sqlite: %w", err)
		}
		sqldb.SetMaxOpenConns(1)
		return bun.NewDB(sqldb, sqlitedialect.New()), nil
	case ProviderPostgres:
		if strings.TrimSpace(dsn) == "" {
			return nil, errors.New("store: postgres provider requires a dsn")
		}
		sqldb, err := sql.Open("postgres", dsn)
		if err != nil {
			return nil, fmt.Errorf("store: open postgres: %w", err)
		}
		return bun.NewDB(sqldb, pgdialect.New()), nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownProvider, provider)
}

func isReadOnly(err error) bool {
	return errors.Is(err, fs.ErrPermission) || errors.Is(err, syscall.EROFS)
}
