// Package storetest opens migrated in-memory databases for tests.
package storetest

import (
	"context"
	"database/sql"
	"sync"
	"testing"

	"github.com/lbxxgn/my-blog/internal/dbx"
	"github.com/lbxxgn/my-blog/internal/server/migrations"
	"github.com/pressly/goose/v3"
)

// goose keeps its base FS and dialect in package state.
var gooseMu sync.Mutex

// OpenSQLite returns a fresh in-memory SQLite database with the schema applied.
// The pool is pinned to one connection so every statement sees the same
// in-memory database.
func OpenSQLite(tb testing.TB) *sql.DB {
	tb.Helper()

	db, err := sql.Open(dbx.SQLiteDriver, ":memory:")
	if err != nil {
		tb.Fatalf("open sqlite: %v", err)
	}
	db.SetMaxOpenConns(1)
	tb.Cleanup(func() { _ = db.Close() })

	gooseMu.Lock()
	defer gooseMu.Unlock()

	goose.SetLogger(goose.NopLogger())
	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect("sqlite3"); err != nil {
		tb.Fatalf("goose dialect: %v", err)
	}
	if err := goose.UpContext(context.Background(), db, "sqlite"); err != nil {
		tb.Fatalf("migrate: %v", err)
	}
	return db
}
