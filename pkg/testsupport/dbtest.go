package testsupport

import (
	"database/sql"
	"fmt"
	"sync/atomic"
	"testing"

	_ "github.com/mattn/go-sqlite3"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
)

var dbCounter atomic.Int64

// NewSQLiteMemoryDB opens a private in-memory sqlite database. Each call gets
// its own database name so shared-cache connections never leak between tests.
func NewSQLiteMemoryDB() (*sql.DB, error) {
	name := fmt.Sprintf("site_test_%d", dbCounter.Add(1))
	return sql.Open("sqlite3", "file:"+name+"?mode=memory&cache=shared&_fk=1")
}

// NewBunDB wraps NewSQLiteMemoryDB in a bun.DB closed at test cleanup.
func NewBunDB(tb testing.TB) *bun.DB {
	tb.Helper()
	sqldb, err := NewSQLiteMemoryDB()
	if err != nil {
		tb.Fatalf("open sqlite: %v", err)
	}
	// A single connection keeps the in-memory database alive for the test.
	sqldb.SetMaxOpenConns(1)
	db := bun.NewDB(sqldb, sqlitedialect.New())
	tb.Cleanup(func() {
		_ = db.Close()
	})
	return db
}
