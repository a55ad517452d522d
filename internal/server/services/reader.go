package services

import (
	"context"
	"database/sql"

	"github.com/lbxxgn/my-blog/internal/logging"
	"github.com/lbxxgn/my-blog/internal/server/access"
	"github.com/lbxxgn/my-blog/internal/server/models"
	"github.com/lbxxgn/my-blog/internal/server/repositories/repomanager"
)

// ReaderService is the single-item read path.
type ReaderService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	resolver    *access.Resolver
	logger      logging.Logger
}

func NewReaderService(db *sql.DB, m repomanager.RepositoryManager, r *access.Resolver, l logging.Logger) *ReaderService {
	return &ReaderService{
		db:          db,
		repomanager: m,
		resolver:    r,
		logger:      l.With("module", "reader_service"),
	}
}

// ResolveAccess decides whether viewer may read item id. A missing item
// yields common.ErrNotFound rather than a denial.
func (s *ReaderService) ResolveAccess(ctx context.Context, id int64, viewer access.Viewer, cache access.UnlockCache) (access.Decision, error) {
	item, err := s.repomanager.Content(s.db).GetByID(ctx, id)
	if err != nil {
		return access.Decision{}, err
	}
	return s.resolver.Resolve(item, viewer, cache), nil
}

// VerifyAndUnlock checks candidate against the secret of password item id
// and records the unlock in cache on a match.
func (s *ReaderService) VerifyAndUnlock(ctx context.Context, id int64, candidate string, cache access.UnlockCache) (bool, error) {
	item, err := s.repomanager.Content(s.db).GetByID(ctx, id)
	if err != nil {
		return false, err
	}

	ok := s.resolver.Unlock(item, candidate, cache)
	if !ok {
		s.logger.Info(ctx, "unlock rejected", "id", id)
	}
	return ok, nil
}

// Get returns item id when viewer may read it. On denial the item is nil and
// the decision carries the reason. The visibility secret is never returned.
func (s *ReaderService) Get(ctx context.Context, id int64, viewer access.Viewer, cache access.UnlockCache) (*models.ContentItem, access.Decision, error) {
	item, err := s.repomanager.Content(s.db).GetByID(ctx, id)
	if err != nil {
		return nil, access.Decision{}, err
	}

	d := s.resolver.Resolve(item, viewer, cache)
	if !d.Allowed {
		return nil, d, nil
	}

	item.VisibilitySecret = ""
	return item, d, nil
}
