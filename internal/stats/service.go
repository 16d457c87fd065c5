package stats

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/santican/clinic-intake/internal/domain/patient"
	"github.com/santican/clinic-intake/internal/store"
)

// Service reads the record set and produces statistics reports. Reads go
// through the resilient store, so a remote outage degrades the report to the
// locally cached records instead of failing.
type Service struct {
	store  *store.Resilient
	logger *zap.Logger
}

// NewService creates the statistics service.
func NewService(st *store.Resilient, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{store: st, logger: logger}
}

// Report aggregates the current record set under the filter. fromCache tells
// the caller the report was built from the local mirror.
func (s *Service) Report(ctx context.Context, f Filter) (*Report, bool, error) {
	records, fromCache, err := s.store.GetAll(ctx)
	if err != nil {
		return nil, fromCache, fmt.Errorf("load records: %w", err)
	}

	rep := Aggregate(records, f)
	s.logger.Debug("statistics report built",
		zap.Int("records", len(records)),
		zap.Int("buckets", len(rep.Buckets)),
		zap.Bool("from_cache", fromCache))
	return rep, fromCache, nil
}

// DeleteFiltered removes every record matching the filter, by exclusion:
// records failing the filter are kept, including those with unparseable
// walk-in dates. Remote deletions fan out over the worker pool; the cache is
// rewritten with the same predicate so cache-only strays go too. Per-record
// failures are logged but the operation still reports the attempted count.
func (s *Service) DeleteFiltered(ctx context.Context, f Filter) (int, error) {
	records, fromCache, err := s.store.GetAll(ctx)
	if err != nil {
		return 0, fmt.Errorf("load records: %w", err)
	}

	var ids []string
	for i := range records {
		if f.Matches(&records[i]) {
			ids = append(ids, records[i].ID)
		}
	}

	deleted, failed := store.BulkDelete(ctx, s.store, ids, s.logger)
	if failed > 0 {
		s.logger.Warn("filtered deletion had failures",
			zap.Int("deleted", deleted), zap.Int("failed", failed))
	}

	if err := s.store.Cache().RemoveWhere(func(r *patient.Record) bool {
		return f.Matches(r)
	}); err != nil {
		s.logger.Error("cache rewrite failed after filtered deletion", zap.Error(err))
	}

	s.logger.Info("filtered records deleted",
		zap.Int("matched", len(ids)),
		zap.Bool("from_cache", fromCache))
	return len(ids), nil
}
