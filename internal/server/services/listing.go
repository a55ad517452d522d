package services

import (
	"context"
	"database/sql"

	"github.com/lbxxgn/my-blog/internal/logging"
	"github.com/lbxxgn/my-blog/internal/server/access"
	"github.com/lbxxgn/my-blog/internal/server/filters"
	"github.com/lbxxgn/my-blog/internal/server/models"
	"github.com/lbxxgn/my-blog/internal/server/pagination"
	"github.com/lbxxgn/my-blog/internal/server/repositories/repomanager"
)

// ListingService serves filtered listings in offset and cursor mode. Both
// modes order by created_at DESC, id DESC and scope the filter set to what
// the viewer may see.
type ListingService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	resolver    *access.Resolver
	policy      pagination.Policy
	logger      logging.Logger
}

func NewListingService(db *sql.DB, m repomanager.RepositoryManager, r *access.Resolver, p pagination.Policy, l logging.Logger) *ListingService {
	return &ListingService{
		db:          db,
		repomanager: m,
		resolver:    r,
		policy:      p,
		logger:      l.With("module", "listing_service"),
	}
}

// scope hides items the viewer could never open. Admins see everything;
// members see all but other principals' private items; anonymous viewers see
// public and password items only.
func scope(set filters.Set, viewer access.Viewer) filters.Set {
	switch {
	case viewer.IsAdmin():
		return set
	case viewer.Authenticated:
		return set.With(filters.ListableByMember(viewer.UserID))
	default:
		return set.With(filters.ListableByAnonymous())
	}
}

// redact blanks and marks Locked the body of every listed item the viewer has
// not been granted, which leaves only locked password items once scope has
// been applied.
func (s *ListingService) redact(items []*models.ContentItem, viewer access.Viewer, cache access.UnlockCache) {
	for _, item := range items {
		item.VisibilitySecret = ""
		if !s.resolver.Resolve(item, viewer, cache).Allowed {
			item.Body = ""
			item.Locked = true
		}
	}
}

// ListOffset returns page of the filtered set. Unsupported page sizes fall
// back to the default and page is clamped to [1, total pages].
func (s *ListingService) ListOffset(ctx context.Context, set filters.Set, viewer access.Viewer, cache access.UnlockCache, page, pageSize int) (*pagination.OffsetPage[*models.ContentItem], error) {
	size := s.policy.Size(pageSize)
	scoped := scope(set, viewer)
	repo := s.repomanager.Content(s.db)

	total, err := repo.Count(ctx, scoped)
	if err != nil {
		return nil, err
	}

	totalPages := pagination.TotalPages(total, size)
	page = pagination.ClampPage(page, totalPages)

	items, err := repo.List(ctx, scoped, nil, size, pagination.Offset(page, size))
	if err != nil {
		return nil, err
	}
	s.redact(items, viewer, cache)

	return &pagination.OffsetPage[*models.ContentItem]{
		Items:      items,
		TotalCount: total,
		Page:       page,
		PageSize:   size,
		TotalPages: totalPages,
	}, nil
}

// ListCursor returns the page following cursor, or the first page when cursor
// is empty. A malformed cursor yields common.ErrInvalidCursor.
func (s *ListingService) ListCursor(ctx context.Context, set filters.Set, viewer access.Viewer, cache access.UnlockCache, cursor string, pageSize int) (*pagination.CursorPage[*models.ContentItem], error) {
	size := s.policy.Size(pageSize)

	var after *pagination.Key
	if cursor != "" {
		k, err := pagination.DecodeCursor(cursor)
		if err != nil {
			s.logger.Debug(ctx, "rejected cursor", "error", err)
			return nil, err
		}
		after = &k
	}

	items, err := s.repomanager.Content(s.db).List(ctx, scope(set, viewer), after, size+1, 0)
	if err != nil {
		return nil, err
	}

	hasMore := len(items) > size
	if hasMore {
		items = items[:size]
	}
	s.redact(items, viewer, cache)

	page := &pagination.CursorPage[*models.ContentItem]{
		Items:    items,
		HasMore:  hasMore,
		PageSize: size,
	}
	if n := len(items); n > 0 {
		last := items[n-1]
		page.NextCursor = pagination.EncodeCursor(pagination.Key{CreatedAt: last.CreatedAt, ID: last.ID})
	}
	return page, nil
}
