package content

import (
	"context"
	"time"

	"github.com/lbxxgn/my-blog/internal/server/filters"
	"github.com/lbxxgn/my-blog/internal/server/models"
	"github.com/lbxxgn/my-blog/internal/server/pagination"
)

// Repository is the set of primitives the engine needs from the content table.
// Implementations never touch the index mirror.
type Repository interface {
	Create(ctx context.Context, item *models.ContentItem) (*models.ContentItem, error)
	GetByID(ctx context.Context, id int64) (*models.ContentItem, error)
	Exists(ctx context.Context, id int64) (bool, error)
	Update(ctx context.Context, item *models.ContentItem) error
	SetVisibility(ctx context.Context, id int64, v models.Visibility, secret string, updatedAt time.Time) error
	SetCategory(ctx context.Context, id int64, categoryID *int64, updatedAt time.Time) error
	SetTags(ctx context.Context, id int64, tagIDs []int64) error
	Delete(ctx context.Context, id int64) error

	Count(ctx context.Context, set filters.Set) (int, error)
	// List returns up to limit items matching set in created_at DESC, id DESC
	// order. When after is non-nil only rows strictly past that key are
	// returned and offset should be zero. Listed items never carry the
	// visibility secret.
	List(ctx context.Context, set filters.Set, after *pagination.Key, limit, offset int) ([]*models.ContentItem, error)
	// TextsAfter returns id, title and body of up to limit items with
	// id > afterID in id order.
	TextsAfter(ctx context.Context, afterID int64, limit int) ([]*models.ContentItem, error)
}
