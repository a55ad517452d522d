package content

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lbxxgn/my-blog/internal/common"
	"github.com/lbxxgn/my-blog/internal/dbx"
	"github.com/lbxxgn/my-blog/internal/server/filters"
	"github.com/lbxxgn/my-blog/internal/server/models"
	"github.com/lbxxgn/my-blog/internal/server/pagination"
	"github.com/lbxxgn/my-blog/internal/server/storetest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var itemColumns = []string{
	"id", "title", "body", "published", "visibility", "owner_id", "category_id", "created_at", "updated_at",
}

func newRepoWithMock(t *testing.T) (*SQLRepository, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	return NewSQLRepository(db, dbx.Postgres), mock, db
}

func TestCreate_ReturnsID(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	ts := time.Unix(0, 1_000).UTC()
	cat := int64(4)

	mock.ExpectQuery(`INSERT INTO content_items .* VALUES \(\$1, \$2, \$3, \$4, \$5, \$6, \$7, \$8, \$9\) RETURNING id`).
		WithArgs("t", "b", true, "password", "abc", int64(7), int64(4), int64(1_000), int64(1_000)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(42)))

	item, err := repo.Create(context.Background(), &models.ContentItem{
		Title: "t", Body: "b", Published: true,
		Visibility: models.VisibilityPassword, VisibilitySecret: "abc",
		OwnerID: 7, CategoryID: &cat, CreatedAt: ts, UpdatedAt: ts,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(42), item.ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreate_DBError(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`INSERT INTO content_items`).WillReturnError(errors.New("db is down"))

	_, err := repo.Create(context.Background(), &models.ContentItem{Visibility: models.VisibilityPublic})
	if err == nil || !regexp.MustCompile(`db error: .*db is down`).MatchString(err.Error()) {
		t.Fatalf("expected wrapped db error, got %v", err)
	}
}

func TestGetByID_NotFound(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`SELECT .*p\.visibility_secret FROM content_items p WHERE p\.id = \$1`).
		WithArgs(int64(9)).
		WillReturnError(sql.ErrNoRows)

	_, err := repo.GetByID(context.Background(), 9)
	require.ErrorIs(t, err, common.ErrNotFound)
}

func TestGetByID_ScansNullables(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	rows := sqlmock.NewRows(append(itemColumns, "visibility_secret")).
		AddRow(int64(1), "t", "b", false, "public", int64(3), nil, int64(5), int64(6), nil)
	mock.ExpectQuery(`FROM content_items p WHERE p\.id = \$1`).WithArgs(int64(1)).WillReturnRows(rows)

	item, err := repo.GetByID(context.Background(), 1)
	require.NoError(t, err)
	assert.Nil(t, item.CategoryID)
	assert.Empty(t, item.VisibilitySecret)
	assert.Equal(t, models.VisibilityPublic, item.Visibility)
	assert.Equal(t, int64(5), item.CreatedAt.UnixNano())
	assert.Equal(t, int64(6), item.UpdatedAt.UnixNano())
}

func TestUpdate_RowsAffected(t *testing.T) {
	cases := []struct {
		name string
		n    int64
		want error
	}{
		{"one", 1, nil},
		{"none", 0, common.ErrNotFound},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			repo, mock, db := newRepoWithMock(t)
			defer db.Close()

			mock.ExpectExec(`UPDATE content_items SET title = \$1, body = \$2, published = \$3, category_id = \$4, updated_at = \$5 WHERE id = \$6`).
				WillReturnResult(sqlmock.NewResult(0, tc.n))

			err := repo.Update(context.Background(), &models.ContentItem{ID: 1, UpdatedAt: time.Unix(0, 1)})
			if tc.want == nil {
				require.NoError(t, err)
			} else {
				require.ErrorIs(t, err, tc.want)
			}
		})
	}
}

func TestUpdate_UnexpectedRowsAffected(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(`UPDATE content_items`).WillReturnResult(sqlmock.NewResult(0, 2))

	err := repo.Update(context.Background(), &models.ContentItem{ID: 1})
	if err == nil || !regexp.MustCompile(`unexpected rows affected: 2`).MatchString(err.Error()) {
		t.Fatalf("expected unexpected rows affected error, got %v", err)
	}
}

func TestSetVisibility_ClearsSecretUnlessPassword(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(`UPDATE content_items SET visibility = \$1, visibility_secret = \$2`).
		WithArgs("private", nil, int64(10), int64(3)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.SetVisibility(context.Background(), 3, models.VisibilityPrivate, "leftover", time.Unix(0, 10))
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDelete_RemovesTagsThenItem(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(`DELETE FROM content_tags WHERE content_id = \$1`).WithArgs(int64(5)).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec(`DELETE FROM content_items WHERE id = \$1`).WithArgs(int64(5)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Delete(context.Background(), 5)
	require.ErrorIs(t, err, common.ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestList_CursorQueryShape(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	key := pagination.Key{CreatedAt: time.Unix(0, 100), ID: 8}

	mock.ExpectQuery(regexp.QuoteMeta(
		`FROM content_items p WHERE p.published = $1 AND p.category_id = $2 AND `+
			`(p.created_at < $3 OR (p.created_at = $4 AND p.id < $5)) `+
			`ORDER BY p.created_at DESC, p.id DESC LIMIT $6`)).
		WithArgs(true, int64(2), int64(100), int64(100), int64(8), 11).
		WillReturnRows(sqlmock.NewRows(itemColumns))

	got, err := repo.List(context.Background(),
		filters.Set{filters.PublishedOnly(), filters.CategoryEquals(2)}, &key, 11, 0)
	require.NoError(t, err)
	assert.Empty(t, got)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestList_QueryError(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`SELECT .* FROM content_items p ORDER BY`).WillReturnError(errors.New("db err"))

	_, err := repo.List(context.Background(), nil, nil, 10, 0)
	if err == nil || !regexp.MustCompile(`failed to list content: .*db err`).MatchString(err.Error()) {
		t.Fatalf("expected wrapped list error, got %v", err)
	}
}

func TestList_RowsErr(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	rows := sqlmock.NewRows(itemColumns).
		AddRow(int64(2), "a", "b", true, "public", int64(1), nil, int64(2), int64(2)).
		AddRow(int64(1), "c", "d", true, "public", int64(1), nil, int64(1), int64(1)).
		RowError(1, errors.New("row-err"))
	mock.ExpectQuery(`FROM content_items p`).WillReturnRows(rows)

	_, err := repo.List(context.Background(), nil, nil, 10, 0)
	if err == nil || err.Error() != "row-err" {
		t.Fatalf("expected rows.Err 'row-err', got %v", err)
	}
}

func TestCount_UsesFilterArgs(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT COUNT(*) FROM content_items p WHERE p.owner_id = $1`)).
		WithArgs(int64(3)).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(7))

	n, err := repo.Count(context.Background(), filters.Set{filters.AuthorEquals(3)})
	require.NoError(t, err)
	assert.Equal(t, 7, n)
}

// SQLite-backed tests exercise the real schema.

func seed(t *testing.T, repo *SQLRepository, title string, owner int64, nanos int64) *models.ContentItem {
	t.Helper()
	ts := time.Unix(0, nanos).UTC()
	item, err := repo.Create(context.Background(), &models.ContentItem{
		Title: title, Body: title + " body", Published: true,
		Visibility: models.VisibilityPublic, OwnerID: owner,
		CreatedAt: ts, UpdatedAt: ts,
	})
	require.NoError(t, err)
	return item
}

func TestSQLite_ListOrdersByCreatedThenID(t *testing.T) {
	db := storetest.OpenSQLite(t)
	repo := NewSQLRepository(db, dbx.SQLite)
	ctx := context.Background()

	a := seed(t, repo, "a", 1, 100)
	b := seed(t, repo, "b", 1, 200)
	c := seed(t, repo, "c", 1, 200)

	got, err := repo.List(ctx, nil, nil, 10, 0)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, []int64{c.ID, b.ID, a.ID}, []int64{got[0].ID, got[1].ID, got[2].ID})

	after := pagination.Key{CreatedAt: got[0].CreatedAt, ID: got[0].ID}
	rest, err := repo.List(ctx, nil, &after, 10, 0)
	require.NoError(t, err)
	require.Len(t, rest, 2)
	assert.Equal(t, b.ID, rest[0].ID)
	assert.Equal(t, a.ID, rest[1].ID)

	page, err := repo.List(ctx, nil, nil, 1, 1)
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, b.ID, page[0].ID)
}

func TestSQLite_ListNeverLoadsSecret(t *testing.T) {
	db := storetest.OpenSQLite(t)
	repo := NewSQLRepository(db, dbx.SQLite)
	ctx := context.Background()

	item := seed(t, repo, "locked", 1, 10)
	require.NoError(t, repo.SetVisibility(ctx, item.ID, models.VisibilityPassword, "abc", time.Unix(0, 11)))

	full, err := repo.GetByID(ctx, item.ID)
	require.NoError(t, err)
	assert.Equal(t, "abc", full.VisibilitySecret)

	listed, err := repo.List(ctx, nil, nil, 10, 0)
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Empty(t, listed[0].VisibilitySecret)
	assert.Equal(t, models.VisibilityPassword, listed[0].Visibility)
}

func TestSQLite_TagsAndDelete(t *testing.T) {
	db := storetest.OpenSQLite(t)
	repo := NewSQLRepository(db, dbx.SQLite)
	ctx := context.Background()

	_, err := db.Exec(`INSERT INTO tags (id, name, created_at) VALUES (1, 'go', 0), (2, 'sql', 0)`)
	require.NoError(t, err)

	x := seed(t, repo, "x", 1, 1)
	y := seed(t, repo, "y", 2, 2)
	require.NoError(t, repo.SetTags(ctx, x.ID, []int64{1, 2, 1}))
	require.NoError(t, repo.SetTags(ctx, y.ID, []int64{2}))

	n, err := repo.Count(ctx, filters.Set{filters.TagEquals(1)})
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	n, err = repo.Count(ctx, filters.Set{filters.TagEquals(2)})
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	require.NoError(t, repo.Delete(ctx, x.ID))
	require.ErrorIs(t, repo.Delete(ctx, x.ID), common.ErrNotFound)

	ok, err := repo.Exists(ctx, x.ID)
	require.NoError(t, err)
	assert.False(t, ok)

	var links int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM content_tags WHERE content_id = ?`, x.ID).Scan(&links))
	assert.Zero(t, links)
}

func TestSQLite_TextsAfterPagesByID(t *testing.T) {
	db := storetest.OpenSQLite(t)
	repo := NewSQLRepository(db, dbx.SQLite)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		seed(t, repo, "t", 1, int64(100-i))
	}

	var ids []int64
	var after int64
	for {
		batch, err := repo.TextsAfter(ctx, after, 2)
		require.NoError(t, err)
		if len(batch) == 0 {
			break
		}
		for _, it := range batch {
			ids = append(ids, it.ID)
			assert.Equal(t, "t body", it.Body)
		}
		after = batch[len(batch)-1].ID
	}
	assert.Equal(t, []int64{1, 2, 3, 4, 5}, ids)
}
