// Package server wires the content engine together: it opens the store for
// the configured driver, runs migrations and builds the services.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/lbxxgn/my-blog/internal/common"
	"github.com/lbxxgn/my-blog/internal/dbx"
	"github.com/lbxxgn/my-blog/internal/logging"
	"github.com/lbxxgn/my-blog/internal/server/access"
	"github.com/lbxxgn/my-blog/internal/server/auth"
	"github.com/lbxxgn/my-blog/internal/server/config"
	"github.com/lbxxgn/my-blog/internal/server/indexsync"
	"github.com/lbxxgn/my-blog/internal/server/repositories/repomanager"
	"github.com/lbxxgn/my-blog/internal/server/services"
)

type App struct {
	config      *config.Config
	logger      logging.Logger
	db          *sql.DB
	repomanager repomanager.RepositoryManager

	Content  *services.ContentService
	Listing  *services.ListingService
	Reader   *services.ReaderService
	Taxonomy *services.TaxonomyService
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	level, err := logging.ParseLevel(c.LogLevel)
	if err != nil {
		return nil, err
	}
	logger := logging.New(os.Stdout, level)
	return newApp(ctx, c, logger)
}

func newApp(ctx context.Context, c *config.Config, logger logging.Logger) (*App, error) {
	dialect, err := dbx.DialectForDriver(c.DatabaseDriver)
	if err != nil {
		return nil, err
	}
	policy, err := c.PagePolicy()
	if err != nil {
		return nil, err
	}

	db, err := sql.Open(c.DatabaseDriver, c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}
	if dialect == dbx.SQLite {
		// one writer at a time; in-memory databases also need a single connection
		db.SetMaxOpenConns(1)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%w: %v", common.ErrStoreUnavailable, err)
	}

	m := repomanager.NewRepositoryManager(dialect)
	resolver := access.NewResolver(nil)
	sync := indexsync.New(m, logger)

	return &App{
		config:      c,
		logger:      logger,
		db:          db,
		repomanager: m,
		Content:     services.NewContentService(db, m, sync, c, logger),
		Listing:     services.NewListingService(db, m, resolver, policy, logger),
		Reader:      services.NewReaderService(db, m, resolver, logger),
		Taxonomy:    services.NewTaxonomyService(db, m),
	}, nil
}

// Migrate applies the embedded schema migrations.
func (app *App) Migrate(ctx context.Context) error {
	app.logger.Info(ctx, "running migrations", "dialect", app.repomanager.Dialect().String())
	return app.repomanager.RunMigrations(ctx, app.db)
}

// Viewer maps a bearer token to the identity used by access checks.
func (app *App) Viewer(token string) (access.Viewer, error) {
	return auth.ViewerFromToken(token, []byte(app.config.TokenSecret))
}

// IssueToken signs a viewer token for userID with the configured lifetime.
func (app *App) IssueToken(userID int64, role string) (string, error) {
	return auth.GenerateToken(userID, role, []byte(app.config.TokenSecret), app.config.TokenValidity)
}

func (app *App) Logger() logging.Logger { return app.logger }

func (app *App) Close() error { return app.db.Close() }

// WithSignalCancel returns a context cancelled on SIGINT, SIGTERM or SIGQUIT.
func WithSignalCancel(ctx context.Context) (context.Context, context.CancelFunc) {
	ctx, cancelFunc := context.WithCancel(ctx)

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		defer signal.Stop(sigs)
		select {
		case <-sigs:
			cancelFunc()
		case <-ctx.Done():
		}
	}()

	return ctx, cancelFunc
}
