package tracker

import (
	"context"
	"fmt"
	"time"

	"github.com/runnerr0/dwell/internal/logger"
	"github.com/runnerr0/dwell/internal/storage"
)

// PruneResult reports a retention pass.
type PruneResult struct {
	Cutoff       time.Time `json:"cutoff"`
	ActivityLogs int64     `json:"activityLogs"`
	Pages        int64     `json:"pages"`
	DryRun       bool      `json:"dryRun"`
}

// Prune removes activity older than olderThan and pages not seen since. With
// dryRun set nothing is deleted.
func (s *Service) Prune(ctx context.Context, olderThan time.Duration, dryRun bool) (*PruneResult, error) {
	if olderThan <= 0 {
		return nil, invalid("olderThan", "must be positive")
	}
	cutoff := s.Now().Add(-olderThan)

	res, err := s.store.PruneBefore(ctx, cutoff, dryRun)
	if err != nil {
		return nil, fmt.Errorf("prune: %w", err)
	}

	if !dryRun {
		s.log.Info("Pruned activity",
			logger.Time("cutoff", cutoff),
			logger.Int64("activity_logs", res.ActivityLogs),
			logger.Int64("pages", res.Pages),
		)
	}
	return &PruneResult{
		Cutoff:       cutoff,
		ActivityLogs: res.ActivityLogs,
		Pages:        res.Pages,
		DryRun:       dryRun,
	}, nil
}

// Purge deletes every page, project and activity log. Users are kept.
func (s *Service) Purge(ctx context.Context) error {
	if err := s.store.PurgeAll(ctx); err != nil {
		return fmt.Errorf("purge: %w", err)
	}
	s.log.Warn("Purged all tracked data")
	return nil
}

// DatabaseStats returns row counts and the activity time range.
func (s *Service) DatabaseStats(ctx context.Context) (*storage.DBStats, error) {
	return s.store.GetStats(ctx)
}
