// Package indexsync keeps the full-text mirror consistent with the content
// table. Every mutation path calls through a Synchronizer inside the same
// transaction as its content write; nothing else writes the mirror.
package indexsync

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lbxxgn/my-blog/internal/common"
	"github.com/lbxxgn/my-blog/internal/dbx"
	"github.com/lbxxgn/my-blog/internal/logging"
	"github.com/lbxxgn/my-blog/internal/server/models"
	"github.com/lbxxgn/my-blog/internal/server/repositories/repomanager"
)

// rebuildBatch is the number of content rows read per round trip during RebuildAll.
const rebuildBatch = 500

type Synchronizer struct {
	repomanager repomanager.RepositoryManager
	logger      logging.Logger
}

func New(m repomanager.RepositoryManager, l logging.Logger) *Synchronizer {
	return &Synchronizer{repomanager: m, logger: l.With("module", "indexsync")}
}

// OnCreate inserts the mirror row for a freshly created item. An existing row
// for item.ID yields common.ErrIndexEntryExists.
func (s *Synchronizer) OnCreate(ctx context.Context, tx dbx.DBTX, item *models.ContentItem) (*models.IndexEntry, error) {
	repo := s.repomanager.Index(tx)

	exists, err := repo.Exists(ctx, item.ID)
	if err != nil {
		return nil, err
	}
	if exists {
		s.logger.Error(ctx, "index entry already present on create", "id", item.ID)
		return nil, fmt.Errorf("%w: id %d", common.ErrIndexEntryExists, item.ID)
	}

	entry := models.IndexEntryFor(item)
	if err := repo.Insert(ctx, entry); err != nil {
		return nil, err
	}
	return entry, nil
}

// OnUpdate replaces the mirror row for item with one derived from its current text.
func (s *Synchronizer) OnUpdate(ctx context.Context, tx dbx.DBTX, item *models.ContentItem) error {
	repo := s.repomanager.Index(tx)

	if err := repo.Delete(ctx, item.ID); err != nil {
		return err
	}
	return repo.Insert(ctx, models.IndexEntryFor(item))
}

// OnDelete removes the mirror row for id. Missing rows are not an error.
func (s *Synchronizer) OnDelete(ctx context.Context, tx dbx.DBTX, id int64) error {
	return s.repomanager.Index(tx).Delete(ctx, id)
}

// RebuildAll clears the mirror and re-derives it from every content row in a
// single transaction. It returns the number of entries written.
func (s *Synchronizer) RebuildAll(ctx context.Context, db *sql.DB) (int, error) {
	var count int

	err := dbx.WithTx(ctx, db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		idx := s.repomanager.Index(tx)
		src := s.repomanager.Content(tx)

		cleared, err := idx.Clear(ctx)
		if err != nil {
			return err
		}
		s.logger.Debug(ctx, "index cleared", "removed", cleared)

		var after int64
		for {
			batch, err := src.TextsAfter(ctx, after, rebuildBatch)
			if err != nil {
				return err
			}
			if len(batch) == 0 {
				return nil
			}
			for _, item := range batch {
				if err := idx.Insert(ctx, models.IndexEntryFor(item)); err != nil {
					return err
				}
			}
			count += len(batch)
			after = batch[len(batch)-1].ID
		}
	})
	if err != nil {
		s.logger.Error(ctx, "index rebuild failed", "error", err)
		return 0, err
	}

	s.logger.Info(ctx, "index rebuilt", "entries", count)
	return count, nil
}

// Audit compares the mirror with the content table without changing either.
func (s *Synchronizer) Audit(ctx context.Context, db dbx.DBTX) (*models.DriftReport, error) {
	repo := s.repomanager.Index(db)

	missing, err := repo.MissingIDs(ctx)
	if err != nil {
		return nil, err
	}
	orphaned, err := repo.OrphanedIDs(ctx)
	if err != nil {
		return nil, err
	}
	stale, err := repo.StaleIDs(ctx)
	if err != nil {
		return nil, err
	}

	report := &models.DriftReport{Missing: missing, Orphaned: orphaned, Stale: stale}
	if !report.Clean() {
		s.logger.Warn(ctx, "index drift detected",
			"missing", len(missing), "orphaned", len(orphaned), "stale", len(stale))
	}
	return report, nil
}
