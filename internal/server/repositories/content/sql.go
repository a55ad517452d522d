// Package content provides the SQL-backed content store used by the write and
// read paths. Queries are written with '?' placeholders and rebound for the
// configured dialect.
package content

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/lbxxgn/my-blog/internal/common"
	"github.com/lbxxgn/my-blog/internal/dbx"
	"github.com/lbxxgn/my-blog/internal/server/filters"
	"github.com/lbxxgn/my-blog/internal/server/models"
	"github.com/lbxxgn/my-blog/internal/server/pagination"
)

const (
	listColumns = `p.id, p.title, p.body, p.published, p.visibility, p.owner_id, p.category_id, p.created_at, p.updated_at`
	fullColumns = listColumns + `, p.visibility_secret`

	orderBy = ` ORDER BY p.created_at DESC, p.id DESC`

	afterKey = `(p.created_at < ? OR (p.created_at = ? AND p.id < ?))`
)

// SQLRepository implements Repository over a dbx.DBTX (*sql.DB or *sql.Tx).
type SQLRepository struct {
	db      dbx.DBTX
	dialect dbx.Dialect
}

// NewSQLRepository constructs a repository bound to the given DBTX.
func NewSQLRepository(db dbx.DBTX, dialect dbx.Dialect) *SQLRepository {
	return &SQLRepository{db: db, dialect: dialect}
}

func (r *SQLRepository) q(query string) string { return r.dialect.Rebind(query) }

// Create inserts item and fills in its generated id.
func (r *SQLRepository) Create(ctx context.Context, item *models.ContentItem) (*models.ContentItem, error) {
	query := `INSERT INTO content_items
		(title, body, published, visibility, visibility_secret, owner_id, category_id, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		RETURNING id`

	err := r.db.QueryRowContext(ctx, r.q(query),
		item.Title, item.Body, item.Published, string(item.Visibility), nullString(item.VisibilitySecret),
		item.OwnerID, nullInt64(item.CategoryID), toNanos(item.CreatedAt), toNanos(item.UpdatedAt),
	).Scan(&item.ID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return item, nil
}

// GetByID loads the full row including the visibility secret.
func (r *SQLRepository) GetByID(ctx context.Context, id int64) (*models.ContentItem, error) {
	query := `SELECT ` + fullColumns + ` FROM content_items p WHERE p.id = ?`

	item, err := scanItem(r.db.QueryRowContext(ctx, r.q(query), id), true)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return item, nil
}

func (r *SQLRepository) Exists(ctx context.Context, id int64) (bool, error) {
	var one int
	err := r.db.QueryRowContext(ctx, r.q(`SELECT 1 FROM content_items WHERE id = ?`), id).Scan(&one)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("db error: %w", err)
	}
	return true, nil
}

// Update rewrites the editable fields and updated_at of item.
func (r *SQLRepository) Update(ctx context.Context, item *models.ContentItem) error {
	query := `UPDATE content_items
		SET title = ?, body = ?, published = ?, category_id = ?, updated_at = ?
		WHERE id = ?`

	res, err := r.db.ExecContext(ctx, r.q(query),
		item.Title, item.Body, item.Published, nullInt64(item.CategoryID), toNanos(item.UpdatedAt), item.ID)
	return expectOne(res, err)
}

// SetVisibility stores the tier and its secret. The secret is cleared for
// every tier except password.
func (r *SQLRepository) SetVisibility(ctx context.Context, id int64, v models.Visibility, secret string, updatedAt time.Time) error {
	if v != models.VisibilityPassword {
		secret = ""
	}
	query := `UPDATE content_items SET visibility = ?, visibility_secret = ?, updated_at = ? WHERE id = ?`

	res, err := r.db.ExecContext(ctx, r.q(query), string(v), nullString(secret), toNanos(updatedAt), id)
	return expectOne(res, err)
}

func (r *SQLRepository) SetCategory(ctx context.Context, id int64, categoryID *int64, updatedAt time.Time) error {
	query := `UPDATE content_items SET category_id = ?, updated_at = ? WHERE id = ?`

	res, err := r.db.ExecContext(ctx, r.q(query), nullInt64(categoryID), toNanos(updatedAt), id)
	return expectOne(res, err)
}

// SetTags replaces the tag set of item id.
func (r *SQLRepository) SetTags(ctx context.Context, id int64, tagIDs []int64) error {
	if _, err := r.db.ExecContext(ctx, r.q(`DELETE FROM content_tags WHERE content_id = ?`), id); err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	seen := make(map[int64]struct{}, len(tagIDs))
	for _, tagID := range tagIDs {
		if _, dup := seen[tagID]; dup {
			continue
		}
		seen[tagID] = struct{}{}

		if _, err := r.db.ExecContext(ctx,
			r.q(`INSERT INTO content_tags (content_id, tag_id) VALUES (?, ?)`), id, tagID); err != nil {
			return fmt.Errorf("db error: %w", err)
		}
	}
	return nil
}

// Delete removes the item and its tag links. It returns common.ErrNotFound
// when no row was removed.
func (r *SQLRepository) Delete(ctx context.Context, id int64) error {
	if _, err := r.db.ExecContext(ctx, r.q(`DELETE FROM content_tags WHERE content_id = ?`), id); err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	res, err := r.db.ExecContext(ctx, r.q(`DELETE FROM content_items WHERE id = ?`), id)
	return expectOne(res, err)
}

// Count returns the number of items matching set.
func (r *SQLRepository) Count(ctx context.Context, set filters.Set) (int, error) {
	pred := set.Compile()
	query := `SELECT COUNT(*) FROM content_items p` + pred.Where()

	var n int
	if err := r.db.QueryRowContext(ctx, r.q(query), pred.Args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count content: %w", err)
	}
	return n, nil
}

func (r *SQLRepository) List(ctx context.Context, set filters.Set, after *pagination.Key, limit, offset int) ([]*models.ContentItem, error) {
	pred := set.Compile()

	conds := make([]string, 0, 2)
	args := make([]any, 0, len(pred.Args)+5)
	if pred.SQL != "" {
		conds = append(conds, pred.SQL)
		args = append(args, pred.Args...)
	}
	if after != nil {
		ts := toNanos(after.CreatedAt)
		conds = append(conds, afterKey)
		args = append(args, ts, ts, after.ID)
	}

	var b strings.Builder
	b.WriteString(`SELECT ` + listColumns + ` FROM content_items p`)
	if len(conds) > 0 {
		b.WriteString(` WHERE `)
		b.WriteString(strings.Join(conds, " AND "))
	}
	b.WriteString(orderBy)
	b.WriteString(` LIMIT ?`)
	args = append(args, limit)
	if offset > 0 {
		b.WriteString(` OFFSET ?`)
		args = append(args, offset)
	}

	rows, err := r.db.QueryContext(ctx, r.q(b.String()), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list content: %w", err)
	}
	defer rows.Close()

	var result []*models.ContentItem
	for rows.Next() {
		item, err := scanItem(rows, false)
		if err != nil {
			return nil, err
		}
		result = append(result, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *SQLRepository) TextsAfter(ctx context.Context, afterID int64, limit int) ([]*models.ContentItem, error) {
	query := `SELECT id, title, body FROM content_items WHERE id > ? ORDER BY id LIMIT ?`

	rows, err := r.db.QueryContext(ctx, r.q(query), afterID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to read content: %w", err)
	}
	defer rows.Close()

	var result []*models.ContentItem
	for rows.Next() {
		var item models.ContentItem
		if err := rows.Scan(&item.ID, &item.Title, &item.Body); err != nil {
			return nil, err
		}
		result = append(result, &item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanItem(s scanner, withSecret bool) (*models.ContentItem, error) {
	var (
		item       models.ContentItem
		visibility string
		category   sql.NullInt64
		secret     sql.NullString
		created    int64
		updated    int64
	)

	dest := []any{
		&item.ID, &item.Title, &item.Body, &item.Published, &visibility,
		&item.OwnerID, &category, &created, &updated,
	}
	if withSecret {
		dest = append(dest, &secret)
	}
	if err := s.Scan(dest...); err != nil {
		return nil, err
	}

	item.Visibility = models.Visibility(visibility)
	if category.Valid {
		id := category.Int64
		item.CategoryID = &id
	}
	item.VisibilitySecret = secret.String
	item.CreatedAt = fromNanos(created)
	item.UpdatedAt = fromNanos(updated)
	return &item, nil
}

func expectOne(res sql.Result, err error) error {
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected error: %w", err)
	}
	switch n {
	case 1:
		return nil
	case 0:
		return common.ErrNotFound
	default:
		return fmt.Errorf("unexpected rows affected: %d", n)
	}
}

func toNanos(t time.Time) int64 { return t.UnixNano() }

func fromNanos(n int64) time.Time { return time.Unix(0, n).UTC() }

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullInt64(p *int64) sql.NullInt64 {
	if p == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *p, Valid: true}
}
