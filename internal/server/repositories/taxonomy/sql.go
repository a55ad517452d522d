// Package taxonomy stores categories and tags.
package taxonomy

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/lbxxgn/my-blog/internal/common"
	"github.com/lbxxgn/my-blog/internal/dbx"
	"github.com/lbxxgn/my-blog/internal/server/models"
)

// table names are fixed below; callers never choose them.
const (
	categories = "categories"
	tags       = "tags"
)

type SQLRepository struct {
	db      dbx.DBTX
	dialect dbx.Dialect
}

func NewSQLRepository(db dbx.DBTX, dialect dbx.Dialect) *SQLRepository {
	return &SQLRepository{db: db, dialect: dialect}
}

type named struct {
	id        int64
	name      string
	createdAt time.Time
}

func (r *SQLRepository) create(ctx context.Context, table, name string, now time.Time) (*named, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: empty name", common.ErrInvalidInput)
	}

	query := `INSERT INTO ` + table + ` (name, created_at) VALUES (?, ?) RETURNING id`
	n := &named{name: name, createdAt: now.UTC()}
	if err := r.db.QueryRowContext(ctx, r.dialect.Rebind(query), name, now.UnixNano()).Scan(&n.id); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return n, nil
}

func (r *SQLRepository) get(ctx context.Context, table string, id int64) (*named, error) {
	query := `SELECT id, name, created_at FROM ` + table + ` WHERE id = ?`

	var (
		n     named
		nanos int64
	)
	if err := r.db.QueryRowContext(ctx, r.dialect.Rebind(query), id).Scan(&n.id, &n.name, &nanos); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	n.createdAt = time.Unix(0, nanos).UTC()
	return &n, nil
}

func (r *SQLRepository) list(ctx context.Context, table string) ([]*named, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, name, created_at FROM `+table+` ORDER BY name, id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", table, err)
	}
	defer rows.Close()

	var result []*named
	for rows.Next() {
		var (
			n     named
			nanos int64
		)
		if err := rows.Scan(&n.id, &n.name, &nanos); err != nil {
			return nil, err
		}
		n.createdAt = time.Unix(0, nanos).UTC()
		result = append(result, &n)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *SQLRepository) delete(ctx context.Context, table string, id int64) error {
	res, err := r.db.ExecContext(ctx, r.dialect.Rebind(`DELETE FROM `+table+` WHERE id = ?`), id)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected error: %w", err)
	}
	if n == 0 {
		return common.ErrNotFound
	}
	return nil
}

func (r *SQLRepository) CreateCategory(ctx context.Context, name string, now time.Time) (*models.Category, error) {
	n, err := r.create(ctx, categories, name, now)
	if err != nil {
		return nil, err
	}
	return &models.Category{ID: n.id, Name: n.name, CreatedAt: n.createdAt}, nil
}

func (r *SQLRepository) GetCategory(ctx context.Context, id int64) (*models.Category, error) {
	n, err := r.get(ctx, categories, id)
	if err != nil {
		return nil, err
	}
	return &models.Category{ID: n.id, Name: n.name, CreatedAt: n.createdAt}, nil
}

func (r *SQLRepository) ListCategories(ctx context.Context) ([]*models.Category, error) {
	ns, err := r.list(ctx, categories)
	if err != nil {
		return nil, err
	}
	out := make([]*models.Category, 0, len(ns))
	for _, n := range ns {
		out = append(out, &models.Category{ID: n.id, Name: n.name, CreatedAt: n.createdAt})
	}
	return out, nil
}

func (r *SQLRepository) DeleteCategory(ctx context.Context, id int64) error {
	if _, err := r.db.ExecContext(ctx,
		r.dialect.Rebind(`UPDATE content_items SET category_id = NULL WHERE category_id = ?`), id); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return r.delete(ctx, categories, id)
}

func (r *SQLRepository) CreateTag(ctx context.Context, name string, now time.Time) (*models.Tag, error) {
	n, err := r.create(ctx, tags, name, now)
	if err != nil {
		return nil, err
	}
	return &models.Tag{ID: n.id, Name: n.name, CreatedAt: n.createdAt}, nil
}

func (r *SQLRepository) GetTag(ctx context.Context, id int64) (*models.Tag, error) {
	n, err := r.get(ctx, tags, id)
	if err != nil {
		return nil, err
	}
	return &models.Tag{ID: n.id, Name: n.name, CreatedAt: n.createdAt}, nil
}

func (r *SQLRepository) ListTags(ctx context.Context) ([]*models.Tag, error) {
	ns, err := r.list(ctx, tags)
	if err != nil {
		return nil, err
	}
	out := make([]*models.Tag, 0, len(ns))
	for _, n := range ns {
		out = append(out, &models.Tag{ID: n.id, Name: n.name, CreatedAt: n.createdAt})
	}
	return out, nil
}

// DeleteTag removes the tag and its links to content.
func (r *SQLRepository) DeleteTag(ctx context.Context, id int64) error {
	if _, err := r.db.ExecContext(ctx, r.dialect.Rebind(`DELETE FROM content_tags WHERE tag_id = ?`), id); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return r.delete(ctx, tags, id)
}
