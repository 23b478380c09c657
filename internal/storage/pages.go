package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
)

// UpsertPage atomically finds or creates the page for (UserID, URL). On
// insert it sets first_seen_at; on every call it overwrites title,
// description, domain and last_seen_at. The stored row is returned.
func (s *SQLiteStore) UpsertPage(ctx context.Context, in PageUpsert) (*Page, error) {
	seen := formatTime(in.SeenAt)

	row := s.upsertPage.QueryRowContext(ctx,
		newID(), in.UserID, in.URL, in.Domain, in.Title, nullString(in.Description), seen, seen,
	)
	page, err := scanPage(row)
	if err != nil {
		return nil, fmt.Errorf("upsert page: %w", err)
	}
	return page, nil
}

// GetPage retrieves one of the user's pages by ID.
func (s *SQLiteStore) GetPage(ctx context.Context, userID, pageID string) (*Page, error) {
	page, err := scanPage(s.getPage.QueryRowContext(ctx, pageID, userID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("page %s: %w", pageID, ErrNotFound)
		}
		return nil, fmt.Errorf("get page: %w", err)
	}
	return page, nil
}

// pageFilter is a WHERE fragment over the "p" alias plus its arguments.
type pageFilter struct {
	where string
	args  []any
}

func userPages(userID string) pageFilter {
	return pageFilter{where: "p.user_id = ?", args: []any{userID}}
}

// searchFilter matches the query as a literal, case-insensitive substring of
// title, url or domain.
func searchFilter(userID, query string) pageFilter {
	q := strings.ToLower(query)
	return pageFilter{
		where: `p.user_id = ? AND (instr(go_lower(p.title), ?) > 0
			OR instr(go_lower(p.url), ?) > 0
			OR instr(go_lower(p.domain), ?) > 0)`,
		args: []any{userID, q, q, q},
	}
}

// ListPages returns one slice of the user's pages.
//
// Sorting by lastSeenAt pages over the stored column and only then sums
// durations for the rows in the slice. Sorting by totalDuration has no stored
// column to page over: every page's all-time sum is computed, the whole joined
// set is ordered by it, and the slice is cut afterwards.
func (s *SQLiteStore) ListPages(ctx context.Context, q PageQuery) (*PageList, error) {
	filter := userPages(q.UserID)

	total, err := s.countPages(ctx, filter)
	if err != nil {
		return nil, err
	}

	var pages []PageListing
	switch q.SortBy {
	case SortByTotalDuration:
		pages, err = s.listPagesByTotalDuration(ctx, filter, q.SortOrder, q.Page, q.Limit)
	default:
		pages, err = s.listPagesByLastSeen(ctx, filter, q.SortOrder, q.Page, q.Limit)
	}
	if err != nil {
		return nil, err
	}

	return newPageList(pages, total, q.Page, q.Limit), nil
}

// SearchPages returns one slice of the user's pages matching query, newest
// last_seen_at first. Duration sorting is not offered for search.
func (s *SQLiteStore) SearchPages(ctx context.Context, userID, query string, page, limit int) (*PageList, error) {
	filter := searchFilter(userID, query)

	total, err := s.countPages(ctx, filter)
	if err != nil {
		return nil, err
	}

	pages, err := s.listPagesByLastSeen(ctx, filter, SortDesc, page, limit)
	if err != nil {
		return nil, err
	}

	return newPageList(pages, total, page, limit), nil
}

func newPageList(pages []PageListing, total int64, page, limit int) *PageList {
	totalPages := 0
	if limit > 0 {
		totalPages = int((total + int64(limit) - 1) / int64(limit))
	}
	if pages == nil {
		pages = []PageListing{}
	}
	return &PageList{Pages: pages, Total: total, Page: page, TotalPages: totalPages}
}

func (s *SQLiteStore) countPages(ctx context.Context, f pageFilter) (int64, error) {
	var total int64
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM pages p WHERE "+f.where, f.args...).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("count pages: %w", err)
	}
	return total, nil
}

func direction(o SortOrder) string {
	if o == SortAsc {
		return "ASC"
	}
	return "DESC"
}

func offset(page, limit int) int {
	if page < 1 {
		page = 1
	}
	return (page - 1) * limit
}

// listPagesByLastSeen cuts the slice on the stored column first, then joins
// the activity log for just those rows.
func (s *SQLiteStore) listPagesByLastSeen(ctx context.Context, f pageFilter, order SortOrder, page, limit int) ([]PageListing, error) {
	dir := direction(order)
	query := `
		SELECT ` + pageColumns + `, COALESCE(SUM(a.duration), 0) AS total_duration
		FROM (
			SELECT p.* FROM pages p
			WHERE ` + f.where + `
			ORDER BY p.last_seen_at ` + dir + `, p.id
			LIMIT ? OFFSET ?
		) p
		LEFT JOIN activity_logs a ON a.page_id = p.id
		GROUP BY p.id
		ORDER BY p.last_seen_at ` + dir + `, p.id`

	args := append(append([]any{}, f.args...), limit, offset(page, limit))
	return s.scanPageListings(ctx, query, args...)
}

// listPagesByTotalDuration aggregates every page in the filter before the
// LIMIT/OFFSET is applied.
func (s *SQLiteStore) listPagesByTotalDuration(ctx context.Context, f pageFilter, order SortOrder, page, limit int) ([]PageListing, error) {
	dir := direction(order)
	query := `
		SELECT ` + pageColumns + `, COALESCE(SUM(a.duration), 0) AS total_duration
		FROM pages p
		LEFT JOIN activity_logs a ON a.page_id = p.id
		WHERE ` + f.where + `
		GROUP BY p.id
		ORDER BY total_duration ` + dir + `, p.last_seen_at DESC, p.id
		LIMIT ? OFFSET ?`

	args := append(append([]any{}, f.args...), limit, offset(page, limit))
	return s.scanPageListings(ctx, query, args...)
}

func (s *SQLiteStore) scanPageListings(ctx context.Context, query string, args ...any) ([]PageListing, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query pages: %w", err)
	}
	defer rows.Close()

	var out []PageListing
	for rows.Next() {
		var total int64
		p, err := scanPage(rows, &total)
		if err != nil {
			return nil, fmt.Errorf("scan page: %w", err)
		}
		out = append(out, PageListing{Page: *p, TotalDuration: total})
	}

	return out, rows.Err()
}
