package index

import (
	"context"

	"github.com/lbxxgn/my-blog/internal/server/models"
)

// Repository stores the full-text mirror rows. Only the index synchronizer
// writes through it.
type Repository interface {
	Insert(ctx context.Context, entry *models.IndexEntry) error
	Get(ctx context.Context, id int64) (*models.IndexEntry, error)
	Exists(ctx context.Context, id int64) (bool, error)
	// Delete is idempotent.
	Delete(ctx context.Context, id int64) error
	Clear(ctx context.Context) (int64, error)
	Count(ctx context.Context) (int, error)

	// MissingIDs lists content ids without a mirror row.
	MissingIDs(ctx context.Context) ([]int64, error)
	// OrphanedIDs lists mirror ids without a content row.
	OrphanedIDs(ctx context.Context) ([]int64, error)
	// StaleIDs lists ids whose mirror text differs from the content row.
	StaleIDs(ctx context.Context) ([]int64, error)
}
