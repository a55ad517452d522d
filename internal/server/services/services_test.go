package services

import (
	"database/sql"
	"testing"
	"time"

	"github.com/lbxxgn/my-blog/internal/dbx"
	"github.com/lbxxgn/my-blog/internal/logging"
	"github.com/lbxxgn/my-blog/internal/server/access"
	"github.com/lbxxgn/my-blog/internal/server/config"
	"github.com/lbxxgn/my-blog/internal/server/indexsync"
	"github.com/lbxxgn/my-blog/internal/server/repositories/repomanager"
	"github.com/lbxxgn/my-blog/internal/server/storetest"
	"github.com/stretchr/testify/require"
)

// -------- helpers --------

type testEnv struct {
	db       *sql.DB
	m        repomanager.RepositoryManager
	content  *ContentService
	listing  *ListingService
	reader   *ReaderService
	taxonomy *TaxonomyService
}

func newEnv(t *testing.T, mutate ...func(*config.Config)) *testEnv {
	t.Helper()

	var cfg config.Config
	cfg.LoadDefaults()
	for _, fn := range mutate {
		fn(&cfg)
	}
	policy, err := cfg.PagePolicy()
	require.NoError(t, err)

	db := storetest.OpenSQLite(t)
	m := repomanager.NewRepositoryManager(dbx.SQLite)
	l := logging.Nop()
	resolver := access.NewResolver(nil)

	return &testEnv{
		db:       db,
		m:        m,
		content:  NewContentService(db, m, indexsync.New(m, l), &cfg, l),
		listing:  NewListingService(db, m, resolver, policy, l),
		reader:   NewReaderService(db, m, resolver, l),
		taxonomy: NewTaxonomyService(db, m),
	}
}

// stepClock returns a clock that advances one second every `every` calls, so
// groups of items share a created_at.
func stepClock(every int) func() time.Time {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	n := 0
	return func() time.Time {
		t := base.Add(time.Duration(n/every) * time.Second)
		n++
		return t
	}
}
