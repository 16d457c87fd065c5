package store

import (
	"context"

	"go.uber.org/zap"

	"github.com/santican/clinic-intake/pkg/workerpool"
)

// Deleter deletes one record by id.
type Deleter interface {
	DeleteByID(ctx context.Context, id string) error
}

// BulkDelete fans single-record deletions out over a bounded worker pool.
// The remote collection has no multi-delete, so bulk operations are N calls.
// Returns how many deletions succeeded and how many failed after retries.
func BulkDelete(ctx context.Context, d Deleter, ids []string, logger *zap.Logger) (deleted, failed int) {
	if len(ids) == 0 {
		return 0, 0
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	cfg := workerpool.DefaultConfig()
	if len(ids) > cfg.QueueSize {
		cfg.QueueSize = len(ids)
	}

	pool, err := workerpool.New(cfg, func(ctx context.Context, task *workerpool.Task) *workerpool.Result {
		id := task.Payload.(string)
		if err := d.DeleteByID(ctx, id); err != nil {
			return &workerpool.Result{TaskID: task.ID, Success: false, Error: err}
		}
		return &workerpool.Result{TaskID: task.ID, Success: true}
	}, logger)
	if err != nil {
		return 0, len(ids)
	}

	pool.Start()
	defer pool.Stop()

	submitted := 0
	for _, id := range ids {
		if err := pool.Submit(&workerpool.Task{ID: id, Payload: id, Context: ctx}); err != nil {
			logger.Error("bulk delete submit failed", zap.String("id", id), zap.Error(err))
			failed++
			continue
		}
		submitted++
	}

	for i := 0; i < submitted; i++ {
		res := <-pool.Results()
		if res.Success {
			deleted++
		} else {
			failed++
		}
	}
	return deleted, failed
}
