package services

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"

	"github.com/google/uuid"
	"github.com/lbxxgn/my-blog/internal/common"
	"github.com/lbxxgn/my-blog/internal/dbx"
	"github.com/lbxxgn/my-blog/internal/logging"
)

// ItemResult is the outcome of one item of a batch.
type ItemResult struct {
	// Index is the position of the item in the request.
	Index     int
	ID        int64
	Succeeded bool
	Error     string
}

// BatchResult reports a batch item by item. Items holds one entry per item
// attempted; when the batch aborts early it is shorter than TotalCount.
type BatchResult struct {
	BatchID        string
	Items          []ItemResult
	SucceededCount int
	TotalCount     int
}

// Failed returns the entries that did not succeed.
func (r *BatchResult) Failed() []ItemResult {
	var out []ItemResult
	for _, it := range r.Items {
		if !it.Succeeded {
			out = append(out, it)
		}
	}
	return out
}

// isStructural reports whether err means the store itself is broken, in which
// case a batch stops instead of moving on to the next item.
func isStructural(err error) bool {
	switch {
	case errors.Is(err, common.ErrStoreUnavailable),
		errors.Is(err, common.ErrIndexEntryExists),
		errors.Is(err, driver.ErrBadConn),
		errors.Is(err, sql.ErrConnDone),
		errors.Is(err, context.Canceled),
		errors.Is(err, context.DeadlineExceeded):
		return true
	}
	return false
}

// batchStep mutates one item inside its own transaction and returns the id it
// touched.
type batchStep func(ctx context.Context, tx dbx.DBTX, i int) (int64, error)

// runBatch applies step to n items, one transaction per item. Per-item
// failures are recorded and skipped. A structural failure is recorded against
// the item that hit it, then aborts the batch and is returned together with
// the partial result.
func runBatch(ctx context.Context, db *sql.DB, l logging.Logger, op string, n int, idOf func(int) int64, step batchStep) (*BatchResult, error) {
	res := &BatchResult{BatchID: uuid.NewString(), TotalCount: n}
	log := l.With("batch_id", res.BatchID, "op", op)

	for i := 0; i < n; i++ {
		if err := ctx.Err(); err != nil {
			log.Warn(ctx, "batch cancelled", "done", i, "total", n)
			return res, err
		}

		var id int64
		err := dbx.WithTx(ctx, db, nil, func(ctx context.Context, tx dbx.DBTX) error {
			var err error
			id, err = step(ctx, tx, i)
			return err
		})
		if err != nil {
			if id == 0 {
				id = idOf(i)
			}
			res.Items = append(res.Items, ItemResult{Index: i, ID: id, Error: err.Error()})
			if isStructural(err) {
				log.Error(ctx, "batch aborted", "index", i, "id", id, "error", err)
				return res, err
			}
			log.Warn(ctx, "batch item failed", "index", i, "id", id, "error", err)
			continue
		}

		res.Items = append(res.Items, ItemResult{Index: i, ID: id, Succeeded: true})
		res.SucceededCount++
	}

	log.Info(ctx, "batch finished", "succeeded", res.SucceededCount, "total", n)
	return res, nil
}
