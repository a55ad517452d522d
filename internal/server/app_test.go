package server

import (
	"context"
	"testing"
	"time"

	"github.com/lbxxgn/my-blog/internal/common"
	"github.com/lbxxgn/my-blog/internal/logging"
	"github.com/lbxxgn/my-blog/internal/server/access"
	"github.com/lbxxgn/my-blog/internal/server/config"
	"github.com/lbxxgn/my-blog/internal/server/filters"
	"github.com/lbxxgn/my-blog/internal/server/models"
	"github.com/pressly/goose/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sqliteConfig() *config.Config {
	var c config.Config
	c.LoadDefaults()
	c.DatabaseDriver = "sqlite"
	c.DatabaseDSN = ":memory:"
	return &c
}

func TestNewApp_EndToEnd(t *testing.T) {
	goose.SetLogger(goose.NopLogger())
	ctx := context.Background()

	app, err := newApp(ctx, sqliteConfig(), logging.Nop())
	require.NoError(t, err)
	defer app.Close()

	require.NoError(t, app.Migrate(ctx))

	item, err := app.Content.Create(ctx, models.NewContent{Title: "Hello", Body: "world", OwnerID: 3, Published: true})
	require.NoError(t, err)

	token, err := app.IssueToken(3, "")
	require.NoError(t, err)
	viewer, err := app.Viewer(token)
	require.NoError(t, err)
	assert.Equal(t, access.User(3, ""), viewer)

	page, err := app.Listing.ListOffset(ctx, filters.Set{filters.FreeText("hello")}, viewer, nil, 1, 10)
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, item.ID, page.Items[0].ID)

	report, err := app.Content.AuditIndex(ctx)
	require.NoError(t, err)
	assert.True(t, report.Clean())
}

func TestNewApp_RejectsUnknownDriver(t *testing.T) {
	c := sqliteConfig()
	c.DatabaseDriver = "mysql"

	_, err := newApp(context.Background(), c, logging.Nop())
	require.Error(t, err)
}

func TestNewApp_RejectsBadLogLevel(t *testing.T) {
	c := sqliteConfig()
	c.LogLevel = "loud"

	_, err := NewApp(context.Background(), c)
	require.Error(t, err)
}

func TestNewApp_UnreachableStore(t *testing.T) {
	c := sqliteConfig()
	c.DatabaseDSN = "file:/nonexistent-dir/blog.db?mode=ro"

	_, err := newApp(context.Background(), c, logging.Nop())
	require.ErrorIs(t, err, common.ErrStoreUnavailable)
}

func TestWithSignalCancel_ParentCancel(t *testing.T) {
	parent, cancel := context.WithCancel(context.Background())
	ctx, stop := WithSignalCancel(parent)
	defer stop()

	cancel()
	select {
	case <-ctx.Done():
	case <-time.After(time.Second):
		t.Fatal("context not cancelled")
	}
}
