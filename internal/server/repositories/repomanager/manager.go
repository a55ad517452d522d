package repomanager

import (
	"context"
	"database/sql"

	"github.com/lbxxgn/my-blog/internal/dbx"
	"github.com/lbxxgn/my-blog/internal/server/repositories/content"
	"github.com/lbxxgn/my-blog/internal/server/repositories/index"
	"github.com/lbxxgn/my-blog/internal/server/repositories/taxonomy"
)

type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Dialect() dbx.Dialect
	Content(db dbx.DBTX) content.Repository
	Index(db dbx.DBTX) index.Repository
	Taxonomy(db dbx.DBTX) taxonomy.Repository
}
