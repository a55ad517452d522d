package services

import (
	"context"
	"database/sql"
	"time"

	"github.com/lbxxgn/my-blog/internal/dbx"
	"github.com/lbxxgn/my-blog/internal/server/models"
	"github.com/lbxxgn/my-blog/internal/server/repositories/repomanager"
)

// TaxonomyService manages the categories and tags listings filter by.
type TaxonomyService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	now         func() time.Time
}

func NewTaxonomyService(db *sql.DB, m repomanager.RepositoryManager) *TaxonomyService {
	return &TaxonomyService{db: db, repomanager: m, now: time.Now}
}

func (s *TaxonomyService) CreateCategory(ctx context.Context, name string) (*models.Category, error) {
	return s.repomanager.Taxonomy(s.db).CreateCategory(ctx, name, s.now())
}

func (s *TaxonomyService) Categories(ctx context.Context) ([]*models.Category, error) {
	return s.repomanager.Taxonomy(s.db).ListCategories(ctx)
}

// DeleteCategory removes the category and leaves its items uncategorized.
func (s *TaxonomyService) DeleteCategory(ctx context.Context, id int64) error {
	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		return s.repomanager.Taxonomy(tx).DeleteCategory(ctx, id)
	})
}

func (s *TaxonomyService) CreateTag(ctx context.Context, name string) (*models.Tag, error) {
	return s.repomanager.Taxonomy(s.db).CreateTag(ctx, name, s.now())
}

func (s *TaxonomyService) Tags(ctx context.Context) ([]*models.Tag, error) {
	return s.repomanager.Taxonomy(s.db).ListTags(ctx)
}

func (s *TaxonomyService) DeleteTag(ctx context.Context, id int64) error {
	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		return s.repomanager.Taxonomy(tx).DeleteTag(ctx, id)
	})
}
