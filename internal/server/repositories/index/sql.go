// Package index persists the denormalized title/body mirror used by
// free-text search.
package index

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lbxxgn/my-blog/internal/common"
	"github.com/lbxxgn/my-blog/internal/dbx"
	"github.com/lbxxgn/my-blog/internal/server/models"
)

type SQLRepository struct {
	db      dbx.DBTX
	dialect dbx.Dialect
}

func NewSQLRepository(db dbx.DBTX, dialect dbx.Dialect) *SQLRepository {
	return &SQLRepository{db: db, dialect: dialect}
}

func (r *SQLRepository) Insert(ctx context.Context, entry *models.IndexEntry) error {
	query := `INSERT INTO content_index (id, title_text, body_text) VALUES (?, ?, ?)`

	if _, err := r.db.ExecContext(ctx, r.dialect.Rebind(query), entry.ID, entry.TitleText, entry.BodyText); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *SQLRepository) Get(ctx context.Context, id int64) (*models.IndexEntry, error) {
	query := `SELECT id, title_text, body_text FROM content_index WHERE id = ?`

	var e models.IndexEntry
	err := r.db.QueryRowContext(ctx, r.dialect.Rebind(query), id).Scan(&e.ID, &e.TitleText, &e.BodyText)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return &e, nil
}

func (r *SQLRepository) Exists(ctx context.Context, id int64) (bool, error) {
	var one int
	err := r.db.QueryRowContext(ctx, r.dialect.Rebind(`SELECT 1 FROM content_index WHERE id = ?`), id).Scan(&one)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("db error: %w", err)
	}
	return true, nil
}

func (r *SQLRepository) Delete(ctx context.Context, id int64) error {
	if _, err := r.db.ExecContext(ctx, r.dialect.Rebind(`DELETE FROM content_index WHERE id = ?`), id); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

// Clear removes every mirror row and reports how many were removed.
func (r *SQLRepository) Clear(ctx context.Context) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM content_index`)
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected error: %w", err)
	}
	return n, nil
}

func (r *SQLRepository) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM content_index`).Scan(&n); err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return n, nil
}

func (r *SQLRepository) MissingIDs(ctx context.Context) ([]int64, error) {
	return r.ids(ctx, `SELECT p.id FROM content_items p
		LEFT JOIN content_index ci ON ci.id = p.id
		WHERE ci.id IS NULL
		ORDER BY p.id`)
}

func (r *SQLRepository) OrphanedIDs(ctx context.Context) ([]int64, error) {
	return r.ids(ctx, `SELECT ci.id FROM content_index ci
		LEFT JOIN content_items p ON p.id = ci.id
		WHERE p.id IS NULL
		ORDER BY ci.id`)
}

func (r *SQLRepository) StaleIDs(ctx context.Context) ([]int64, error) {
	return r.ids(ctx, `SELECT p.id FROM content_items p
		JOIN content_index ci ON ci.id = p.id
		WHERE ci.title_text <> p.title OR ci.body_text <> p.body
		ORDER BY p.id`)
}

func (r *SQLRepository) ids(ctx context.Context, query string) ([]int64, error) {
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to audit index: %w", err)
	}
	defer rows.Close()

	var result []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		result = append(result, id)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}
