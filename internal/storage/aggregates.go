package storage

import (
	"context"
	"database/sql"
	"fmt"
)

// windowClause restricts the "a" alias to one user's logs inside an
// inclusive time window.
const windowClause = `a.user_id = ? AND a.ts >= ? AND a.ts <= ?`

func windowArgs(userID string, w Window) []any {
	return []any{userID, formatTime(w.Start), formatTime(w.End)}
}

// TotalDuration sums durations in the window. An empty window yields 0.
func (s *SQLiteStore) TotalDuration(ctx context.Context, userID string, w Window) (int64, error) {
	var total int64
	err := s.db.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(a.duration), 0) FROM activity_logs a WHERE `+windowClause,
		windowArgs(userID, w)...,
	).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("total duration: %w", err)
	}
	return total, nil
}

// DurationByProject groups the window by the project id recorded at
// ingestion, largest first. Logs without a project group under a NULL id.
func (s *SQLiteStore) DurationByProject(ctx context.Context, userID string, w Window) ([]ProjectTotal, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT a.project_id, pr.name, pr.color, SUM(a.duration) AS total
		FROM activity_logs a
		LEFT JOIN projects pr ON pr.id = a.project_id
		WHERE `+windowClause+`
		GROUP BY a.project_id
		ORDER BY total DESC, a.project_id`,
		windowArgs(userID, w)...,
	)
	if err != nil {
		return nil, fmt.Errorf("duration by project: %w", err)
	}
	defer rows.Close()

	out := []ProjectTotal{}
	for rows.Next() {
		var pt ProjectTotal
		var id, name, color sql.NullString
		if err := rows.Scan(&id, &name, &color, &pt.TotalDuration); err != nil {
			return nil, fmt.Errorf("scan project total: %w", err)
		}
		pt.ProjectID = stringPtr(id)
		pt.ProjectName = stringPtr(name)
		pt.Color = stringPtr(color)
		out = append(out, pt)
	}
	return out, rows.Err()
}

// DurationByDomain groups the window by the domain copied onto each log.
func (s *SQLiteStore) DurationByDomain(ctx context.Context, userID string, w Window, limit int) ([]DomainTotal, error) {
	args := append(windowArgs(userID, w), limit)
	rows, err := s.db.QueryContext(ctx, `
		SELECT a.domain, SUM(a.duration) AS total
		FROM activity_logs a
		WHERE `+windowClause+`
		GROUP BY a.domain
		ORDER BY total DESC, a.domain
		LIMIT ?`, args...)
	if err != nil {
		return nil, fmt.Errorf("duration by domain: %w", err)
	}
	defer rows.Close()

	out := []DomainTotal{}
	for rows.Next() {
		var d DomainTotal
		if err := rows.Scan(&d.Domain, &d.TotalDuration); err != nil {
			return nil, fmt.Errorf("scan domain total: %w", err)
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// HeatmapRows groups the window by (UTC hour, weekday, page). Weekdays are
// 1-indexed from Sunday. Only buckets with activity are returned.
func (s *SQLiteStore) HeatmapRows(ctx context.Context, userID string, w Window) ([]HeatmapRow, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT CAST(strftime('%H', a.ts) AS INTEGER)     AS hour,
		       CAST(strftime('%w', a.ts) AS INTEGER) + 1 AS dow,
		       a.page_id, p.url, p.title,
		       SUM(a.duration)
		FROM activity_logs a
		LEFT JOIN pages p ON p.id = a.page_id
		WHERE `+windowClause+`
		GROUP BY hour, dow, a.page_id
		ORDER BY dow, hour`,
		windowArgs(userID, w)...,
	)
	if err != nil {
		return nil, fmt.Errorf("heatmap: %w", err)
	}
	defer rows.Close()

	out := []HeatmapRow{}
	for rows.Next() {
		var h HeatmapRow
		var pageURL, title sql.NullString
		if err := rows.Scan(&h.Hour, &h.DayOfWeek, &h.PageID, &pageURL, &title, &h.Duration); err != nil {
			return nil, fmt.Errorf("scan heatmap row: %w", err)
		}
		h.URL = stringPtr(pageURL)
		h.Title = stringPtr(title)
		out = append(out, h)
	}
	return out, rows.Err()
}

// TopPages sums the window per page, joined with the page row, largest first.
func (s *SQLiteStore) TopPages(ctx context.Context, userID string, w Window, limit int) ([]PageTotal, error) {
	args := append(windowArgs(userID, w), limit)
	rows, err := s.db.QueryContext(ctx, `
		SELECT a.page_id, p.title, p.url, p.domain, SUM(a.duration) AS total
		FROM activity_logs a
		JOIN pages p ON p.id = a.page_id
		WHERE `+windowClause+`
		GROUP BY a.page_id
		ORDER BY total DESC, p.last_seen_at DESC
		LIMIT ?`, args...)
	if err != nil {
		return nil, fmt.Errorf("top pages: %w", err)
	}
	defer rows.Close()

	out := []PageTotal{}
	for rows.Next() {
		var pt PageTotal
		if err := rows.Scan(&pt.PageID, &pt.Title, &pt.URL, &pt.Domain, &pt.TotalDuration); err != nil {
			return nil, fmt.Errorf("scan page total: %w", err)
		}
		out = append(out, pt)
	}
	return out, rows.Err()
}

// PageSummary returns the total duration and event count for one page.
func (s *SQLiteStore) PageSummary(ctx context.Context, userID, pageID string, w Window) (*PageSummary, error) {
	args := append(windowArgs(userID, w), pageID)
	var sum PageSummary
	err := s.db.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(a.duration), 0), COUNT(*) FROM activity_logs a WHERE `+windowClause+` AND a.page_id = ?`,
		args...,
	).Scan(&sum.TotalDuration, &sum.Count)
	if err != nil {
		return nil, fmt.Errorf("page summary: %w", err)
	}
	return &sum, nil
}

// PageDaily returns per-UTC-day durations for one page, oldest day first.
func (s *SQLiteStore) PageDaily(ctx context.Context, userID, pageID string, w Window) ([]DailyTotal, error) {
	args := append(windowArgs(userID, w), pageID)
	rows, err := s.db.QueryContext(ctx, `
		SELECT date(a.ts) AS day, SUM(a.duration)
		FROM activity_logs a
		WHERE `+windowClause+` AND a.page_id = ?
		GROUP BY day
		ORDER BY day`, args...)
	if err != nil {
		return nil, fmt.Errorf("page daily: %w", err)
	}
	defer rows.Close()

	out := []DailyTotal{}
	for rows.Next() {
		var d DailyTotal
		if err := rows.Scan(&d.Date, &d.Duration); err != nil {
			return nil, fmt.Errorf("scan daily total: %w", err)
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// PageActivity sums the window per page with the project name of the
// earliest log in each group. SQLite takes bare columns from the row that
// produced MIN(a.ts).
func (s *SQLiteStore) PageActivity(ctx context.Context, userID string, w Window) ([]PageActivity, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT a.page_id,
		       COALESCE(p.title, 'Unknown'),
		       COALESCE(p.url, 'Unknown'),
		       COALESCE(p.domain, 'Unknown'),
		       SUM(a.duration) AS total,
		       MIN(a.ts),
		       pr.name
		FROM activity_logs a
		LEFT JOIN pages p     ON p.id = a.page_id
		LEFT JOIN projects pr ON pr.id = a.project_id
		WHERE `+windowClause+`
		GROUP BY a.page_id
		ORDER BY total DESC, a.page_id`,
		windowArgs(userID, w)...,
	)
	if err != nil {
		return nil, fmt.Errorf("page activity: %w", err)
	}
	defer rows.Close()

	out := []PageActivity{}
	for rows.Next() {
		var pa PageActivity
		var firstTS string
		var project sql.NullString
		if err := rows.Scan(&pa.PageID, &pa.Title, &pa.URL, &pa.Domain, &pa.TotalDuration, &firstTS, &project); err != nil {
			return nil, fmt.Errorf("scan page activity: %w", err)
		}
		pa.ProjectName = stringPtr(project)
		out = append(out, pa)
	}
	return out, rows.Err()
}
