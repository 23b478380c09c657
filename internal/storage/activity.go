package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// InsertActivityLog appends one activity log row. The ID is generated when
// empty. Rows are never updated afterwards.
func (s *SQLiteStore) InsertActivityLog(ctx context.Context, log *ActivityLog) error {
	if log.ID == "" {
		log.ID = newID()
	}

	_, err := s.insertActivity.ExecContext(ctx,
		log.ID, log.UserID, formatTime(log.Timestamp), log.Duration, log.PageID, log.Domain,
		nullString(log.ProjectID), log.Source.Type, nullString(log.Source.DeviceName),
		nullString(log.Source.ClientID), formatTime(time.Now()),
	)
	if err != nil {
		return fmt.Errorf("insert activity log: %w", err)
	}
	return nil
}

// RecentActivity returns the user's newest activity logs joined with their
// page, if the page still exists.
func (s *SQLiteStore) RecentActivity(ctx context.Context, userID string, limit int) ([]RecentActivity, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT a.id, a.ts, a.duration, a.page_id, a.user_id, a.domain, a.project_id,
		       a.source_type, a.source_device_name, a.source_client_id,
		       p.title, p.url, p.domain
		FROM activity_logs a
		LEFT JOIN pages p ON p.id = a.page_id
		WHERE a.user_id = ?
		ORDER BY a.ts DESC, a.created_at DESC
		LIMIT ?`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("query recent activity: %w", err)
	}
	defer rows.Close()

	out := []RecentActivity{}
	for rows.Next() {
		var r RecentActivity
		var ts string
		var projectID, device, client sql.NullString
		var title, pageURL, pageDomain sql.NullString

		if err := rows.Scan(
			&r.ID, &ts, &r.Duration, &r.PageID, &r.UserID, &r.Domain, &projectID,
			&r.Source.Type, &device, &client,
			&title, &pageURL, &pageDomain,
		); err != nil {
			return nil, fmt.Errorf("scan recent activity: %w", err)
		}

		r.Timestamp, _ = parseTimestamp(ts)
		r.ProjectID = stringPtr(projectID)
		r.Source.DeviceName = stringPtr(device)
		r.Source.ClientID = stringPtr(client)
		if pageURL.Valid {
			r.Page = &PageRef{Title: title.String, URL: pageURL.String, Domain: pageDomain.String}
		}
		out = append(out, r)
	}

	return out, rows.Err()
}
