package storage

import (
	"context"
	"fmt"
	"time"
)

// staleLogs selects logs older than the cutoff plus any log whose page is
// itself being pruned.
const staleLogs = `activity_logs
	WHERE ts < ? OR page_id IN (SELECT id FROM pages WHERE last_seen_at < ?)`

// PruneBefore removes activity logs with ts before cutoff and pages not seen
// since cutoff. With dryRun set it only counts what would be removed.
func (s *SQLiteStore) PruneBefore(ctx context.Context, cutoff time.Time, dryRun bool) (*PruneResult, error) {
	ts := formatTime(cutoff)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin prune: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	res := &PruneResult{}
	if err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM `+staleLogs, ts, ts).Scan(&res.ActivityLogs); err != nil {
		return nil, fmt.Errorf("count stale logs: %w", err)
	}
	if err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM pages WHERE last_seen_at < ?`, ts).Scan(&res.Pages); err != nil {
		return nil, fmt.Errorf("count stale pages: %w", err)
	}
	if dryRun {
		return res, nil
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM `+staleLogs, ts, ts); err != nil {
		return nil, fmt.Errorf("prune activity logs: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM pages WHERE last_seen_at < ?`, ts); err != nil {
		return nil, fmt.Errorf("prune pages: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit prune: %w", err)
	}
	return res, nil
}

// PurgeAll deletes all tracked data. Users and their tokens are kept.
func (s *SQLiteStore) PurgeAll(ctx context.Context) error {
	stmts := []string{
		"DELETE FROM activity_logs",
		"DELETE FROM pages",
		"DELETE FROM projects",
	}
	for _, stmt := range stmts {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("purge (%s): %w", stmt, err)
		}
	}
	return nil
}

// GetStats returns row counts and the activity time range.
func (s *SQLiteStore) GetStats(ctx context.Context) (*DBStats, error) {
	stats := &DBStats{}

	counts := []struct {
		table string
		dest  *int64
	}{
		{"users", &stats.Users},
		{"pages", &stats.Pages},
		{"projects", &stats.Projects},
		{"activity_logs", &stats.ActivityLogs},
	}
	for _, c := range counts {
		if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+c.table).Scan(c.dest); err != nil {
			return nil, fmt.Errorf("count %s: %w", c.table, err)
		}
	}

	// Oldest and newest (handle empty DB)
	if stats.ActivityLogs > 0 {
		var oldest, newest string
		err := s.db.QueryRowContext(ctx, "SELECT MIN(ts), MAX(ts) FROM activity_logs").Scan(&oldest, &newest)
		if err != nil {
			return nil, fmt.Errorf("activity time range: %w", err)
		}
		stats.OldestEvent, _ = parseTimestamp(oldest)
		stats.NewestEvent, _ = parseTimestamp(newest)
	}

	return stats, nil
}
