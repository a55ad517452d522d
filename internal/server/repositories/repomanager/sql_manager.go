// Package repomanager provides a concrete RepositoryManager for the SQL
// stores, wiring together repository constructors and database migrations
// (via goose).
package repomanager

import (
	"context"
	"database/sql"
	"fmt"
	"sync"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/lbxxgn/my-blog/internal/dbx"
	"github.com/lbxxgn/my-blog/internal/server/migrations"
	"github.com/lbxxgn/my-blog/internal/server/repositories/content"
	"github.com/lbxxgn/my-blog/internal/server/repositories/index"
	"github.com/lbxxgn/my-blog/internal/server/repositories/taxonomy"
	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite"
)

// SQLRepositoryManager vends repositories bound to a DBTX and the configured
// dialect, and exposes a schema migration hook.
type SQLRepositoryManager struct {
	dialect dbx.Dialect
}

func (m *SQLRepositoryManager) Dialect() dbx.Dialect { return m.dialect }

// Content returns a content.Repository bound to the provided DBTX.
func (m *SQLRepositoryManager) Content(db dbx.DBTX) content.Repository {
	return content.NewSQLRepository(db, m.dialect)
}

// Index returns an index.Repository bound to the provided DBTX.
func (m *SQLRepositoryManager) Index(db dbx.DBTX) index.Repository {
	return index.NewSQLRepository(db, m.dialect)
}

// Taxonomy returns a taxonomy.Repository bound to the provided DBTX.
func (m *SQLRepositoryManager) Taxonomy(db dbx.DBTX) taxonomy.Repository {
	return taxonomy.NewSQLRepository(db, m.dialect)
}

// gooseUpContext is a seam for testing goose.UpContext.
var gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
	return goose.UpContext(ctx, db, dir, opts...)
}

// goose keeps its base FS and dialect in package state.
var gooseMu sync.Mutex

// migrationDir names the embedded directory holding the dialect's migrations.
func migrationDir(d dbx.Dialect) string {
	if d == dbx.SQLite {
		return "sqlite"
	}
	return "postgres"
}

// RunMigrations sets up goose with the embedded migrations and runs them
// against the provided database connection.
func (m *SQLRepositoryManager) RunMigrations(ctx context.Context, db *sql.DB) error {
	gooseMu.Lock()
	defer gooseMu.Unlock()

	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect(m.dialect.String()); err != nil {
		return fmt.Errorf("migrations: %w", err)
	}
	if err := gooseUpContext(ctx, db, migrationDir(m.dialect)); err != nil {
		return err
	}
	return nil
}

// NewRepositoryManager constructs a RepositoryManager for the given dialect.
func NewRepositoryManager(d dbx.Dialect) RepositoryManager {
	return &SQLRepositoryManager{dialect: d}
}
