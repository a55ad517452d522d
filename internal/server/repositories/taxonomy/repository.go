package taxonomy

import (
	"context"
	"time"

	"github.com/lbxxgn/my-blog/internal/server/models"
)

// Repository manages the categories and tags that listings filter on.
type Repository interface {
	CreateCategory(ctx context.Context, name string, now time.Time) (*models.Category, error)
	GetCategory(ctx context.Context, id int64) (*models.Category, error)
	ListCategories(ctx context.Context) ([]*models.Category, error)
	// DeleteCategory detaches every item from the category before removing it.
	DeleteCategory(ctx context.Context, id int64) error

	CreateTag(ctx context.Context, name string, now time.Time) (*models.Tag, error)
	GetTag(ctx context.Context, id int64) (*models.Tag, error)
	ListTags(ctx context.Context) ([]*models.Tag, error)
	DeleteTag(ctx context.Context, id int64) error
}
