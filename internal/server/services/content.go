// Package services contains the engine's business logic: the content write
// path, listings, and single-item reads.
package services

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/lbxxgn/my-blog/internal/common"
	"github.com/lbxxgn/my-blog/internal/dbx"
	"github.com/lbxxgn/my-blog/internal/logging"
	"github.com/lbxxgn/my-blog/internal/server/access"
	"github.com/lbxxgn/my-blog/internal/server/config"
	"github.com/lbxxgn/my-blog/internal/server/indexsync"
	"github.com/lbxxgn/my-blog/internal/server/models"
	"github.com/lbxxgn/my-blog/internal/server/repositories/repomanager"
)

// ContentService owns every mutation of content items. Each mutation writes
// the content row and the index mirror in the same transaction.
type ContentService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	sync        *indexsync.Synchronizer
	logger      logging.Logger
	hashSecrets bool
	now         func() time.Time
}

func NewContentService(db *sql.DB, m repomanager.RepositoryManager, s *indexsync.Synchronizer, cfg *config.Config, l logging.Logger) *ContentService {
	return &ContentService{
		db:          db,
		repomanager: m,
		sync:        s,
		logger:      l.With("module", "content_service"),
		hashSecrets: cfg.HashVisibilitySecrets,
		now:         time.Now,
	}
}

func (s *ContentService) clock() time.Time { return s.now().UTC() }

// touch returns the new updated_at for an item last updated at prev; it never
// moves backwards.
func (s *ContentService) touch(prev time.Time) time.Time {
	now := s.clock()
	if now.Before(prev) {
		return prev
	}
	return now
}

// prepareSecret validates the secret for v and returns the value to store.
func (s *ContentService) prepareSecret(v models.Visibility, secret string) (string, error) {
	if !v.Valid() {
		return "", fmt.Errorf("%w: visibility %q", common.ErrInvalidInput, v)
	}
	if v != models.VisibilityPassword {
		return "", nil
	}
	if secret == "" {
		return "", fmt.Errorf("%w: password visibility requires a secret", common.ErrInvalidInput)
	}
	if s.hashSecrets {
		return access.HashSecret(secret)
	}
	return secret, nil
}

func (s *ContentService) newItem(in models.NewContent) (*models.ContentItem, error) {
	if strings.TrimSpace(in.Title) == "" {
		return nil, fmt.Errorf("%w: empty title", common.ErrInvalidInput)
	}
	if in.OwnerID <= 0 {
		return nil, fmt.Errorf("%w: missing owner", common.ErrInvalidInput)
	}
	if in.Visibility == "" {
		in.Visibility = models.VisibilityPublic
	}
	secret, err := s.prepareSecret(in.Visibility, in.VisibilitySecret)
	if err != nil {
		return nil, err
	}

	now := s.clock()
	return &models.ContentItem{
		Title:            in.Title,
		Body:             in.Body,
		Published:        in.Published,
		Visibility:       in.Visibility,
		VisibilitySecret: secret,
		OwnerID:          in.OwnerID,
		CategoryID:       in.CategoryID,
		CreatedAt:        now,
		UpdatedAt:        now,
	}, nil
}

func (s *ContentService) create(ctx context.Context, tx dbx.DBTX, item *models.ContentItem) error {
	if _, err := s.repomanager.Content(tx).Create(ctx, item); err != nil {
		return err
	}
	_, err := s.sync.OnCreate(ctx, tx, item)
	return err
}

// Create stores a new item and its index entry.
func (s *ContentService) Create(ctx context.Context, in models.NewContent) (*models.ContentItem, error) {
	item, err := s.newItem(in)
	if err != nil {
		return nil, err
	}

	if err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		return s.create(ctx, tx, item)
	}); err != nil {
		return nil, err
	}

	s.logger.Debug(ctx, "content created", "id", item.ID)
	return item, nil
}

// Update replaces the editable fields of item id and re-derives its index entry.
func (s *ContentService) Update(ctx context.Context, id int64, upd models.ContentUpdate) (*models.ContentItem, error) {
	if strings.TrimSpace(upd.Title) == "" {
		return nil, fmt.Errorf("%w: empty title", common.ErrInvalidInput)
	}

	var item *models.ContentItem
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Content(tx)

		var err error
		item, err = repo.GetByID(ctx, id)
		if err != nil {
			return err
		}

		item.Title = upd.Title
		item.Body = upd.Body
		item.Published = upd.Published
		item.CategoryID = upd.CategoryID
		item.UpdatedAt = s.touch(item.UpdatedAt)

		if err := repo.Update(ctx, item); err != nil {
			return err
		}
		return s.sync.OnUpdate(ctx, tx, item)
	})
	if err != nil {
		return nil, err
	}
	return item, nil
}

// SetVisibility changes the access tier of item id. The secret is required
// for password visibility and discarded for every other tier.
func (s *ContentService) SetVisibility(ctx context.Context, id int64, v models.Visibility, secret string) error {
	stored, err := s.prepareSecret(v, secret)
	if err != nil {
		return err
	}

	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Content(tx)

		item, err := repo.GetByID(ctx, id)
		if err != nil {
			return err
		}

		item.Visibility = v
		item.VisibilitySecret = stored
		item.UpdatedAt = s.touch(item.UpdatedAt)

		if err := repo.SetVisibility(ctx, id, v, stored, item.UpdatedAt); err != nil {
			return err
		}
		return s.sync.OnUpdate(ctx, tx, item)
	})
}

// SetTags replaces the tags of item id.
func (s *ContentService) SetTags(ctx context.Context, id int64, tagIDs []int64) error {
	for _, t := range tagIDs {
		if t <= 0 {
			return fmt.Errorf("%w: tag id %d", common.ErrInvalidInput, t)
		}
	}

	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Content(tx)

		ok, err := repo.Exists(ctx, id)
		if err != nil {
			return err
		}
		if !ok {
			return common.ErrNotFound
		}
		return repo.SetTags(ctx, id, tagIDs)
	})
}

func (s *ContentService) delete(ctx context.Context, tx dbx.DBTX, id int64) error {
	if err := s.repomanager.Content(tx).Delete(ctx, id); err != nil {
		return err
	}
	return s.sync.OnDelete(ctx, tx, id)
}

// Delete removes item id and its index entry.
func (s *ContentService) Delete(ctx context.Context, id int64) error {
	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		return s.delete(ctx, tx, id)
	})
}

// BatchCreate creates each item in its own transaction.
func (s *ContentService) BatchCreate(ctx context.Context, in []models.NewContent) (*BatchResult, error) {
	return runBatch(ctx, s.db, s.logger, "create", len(in),
		func(int) int64 { return 0 },
		func(ctx context.Context, tx dbx.DBTX, i int) (int64, error) {
			item, err := s.newItem(in[i])
			if err != nil {
				return 0, err
			}
			if err := s.create(ctx, tx, item); err != nil {
				return 0, err
			}
			return item.ID, nil
		})
}

// BatchDelete deletes each id in its own transaction. Missing ids are
// reported per item.
func (s *ContentService) BatchDelete(ctx context.Context, ids []int64) (*BatchResult, error) {
	return runBatch(ctx, s.db, s.logger, "delete", len(ids),
		func(i int) int64 { return ids[i] },
		func(ctx context.Context, tx dbx.DBTX, i int) (int64, error) {
			return ids[i], s.delete(ctx, tx, ids[i])
		})
}

// BatchUpdateCategory moves each item to categoryID, or detaches it when
// categoryID is nil.
func (s *ContentService) BatchUpdateCategory(ctx context.Context, ids []int64, categoryID *int64) (*BatchResult, error) {
	if categoryID != nil {
		if _, err := s.repomanager.Taxonomy(s.db).GetCategory(ctx, *categoryID); err != nil {
			return nil, fmt.Errorf("category %d: %w", *categoryID, err)
		}
	}

	return runBatch(ctx, s.db, s.logger, "update_category", len(ids),
		func(i int) int64 { return ids[i] },
		func(ctx context.Context, tx dbx.DBTX, i int) (int64, error) {
			repo := s.repomanager.Content(tx)

			item, err := repo.GetByID(ctx, ids[i])
			if err != nil {
				return ids[i], err
			}
			item.CategoryID = categoryID
			item.UpdatedAt = s.touch(item.UpdatedAt)

			if err := repo.SetCategory(ctx, item.ID, categoryID, item.UpdatedAt); err != nil {
				return ids[i], err
			}
			return ids[i], s.sync.OnUpdate(ctx, tx, item)
		})
}

// RebuildIndex re-derives the whole index mirror.
func (s *ContentService) RebuildIndex(ctx context.Context) (int, error) {
	return s.sync.RebuildAll(ctx, s.db)
}

// AuditIndex reports index drift without repairing it.
func (s *ContentService) AuditIndex(ctx context.Context) (*models.DriftReport, error) {
	return s.sync.Audit(ctx, s.db)
}
