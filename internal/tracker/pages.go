package tracker

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/runnerr0/dwell/internal/storage"
)

// ListParams are the raw listing parameters a caller supplied. Out-of-range
// values are clamped rather than rejected.
type ListParams struct {
	Page      int
	Limit     int
	SortBy    string
	SortOrder string
}

// PageView is a page as shown in listings.
type PageView struct {
	ID                     string    `json:"id"`
	URL                    string    `json:"url"`
	Domain                 string    `json:"domain"`
	Title                  string    `json:"title"`
	Description            *string   `json:"description"`
	FirstSeenAt            time.Time `json:"firstSeenAt"`
	LastSeenAt             time.Time `json:"lastSeenAt"`
	TotalDuration          int64     `json:"totalDuration"`
	TotalDurationFormatted string    `json:"totalDurationFormatted"`
}

// Pagination describes the slice returned out of the whole filtered set.
type Pagination struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"totalPages"`
}

// PageListResult is one listing or search result page.
type PageListResult struct {
	Pages      []PageView `json:"pages"`
	Pagination Pagination `json:"pagination"`
	Query      string     `json:"query,omitempty"`
}

// PageStatsResult is the per-page summary and daily breakdown.
type PageStatsResult struct {
	PageID  string       `json:"pageId"`
	Summary PageSummary  `json:"summary"`
	Daily   []DailyTotal `json:"daily"`
	Window  WindowView   `json:"window"`
}

// PageSummary is the in-window total and event count for one page.
type PageSummary struct {
	TotalDuration int64 `json:"totalDuration"`
	Count         int64 `json:"count"`
}

// DailyTotal is one UTC day's duration.
type DailyTotal struct {
	Date     string `json:"date"`
	Duration int64  `json:"duration"`
}

// WindowView echoes the resolved window back to callers.
type WindowView struct {
	Start time.Time `json:"startDate"`
	End   time.Time `json:"endDate"`
}

func normalizeParams(p ListParams) storage.PageQuery {
	q := storage.PageQuery{
		Page:      p.Page,
		Limit:     p.Limit,
		SortBy:    storage.SortByLastSeen,
		SortOrder: storage.SortDesc,
	}
	q.Page = clamp(q.Page, 1, MaxPage)
	if q.Limit == 0 {
		q.Limit = DefaultPageLimit
	}
	q.Limit = clamp(q.Limit, 1, MaxPageLimit)
	if storage.SortField(p.SortBy) == storage.SortByTotalDuration {
		q.SortBy = storage.SortByTotalDuration
	}
	if strings.EqualFold(p.SortOrder, string(storage.SortAsc)) {
		q.SortOrder = storage.SortAsc
	}
	return q
}

// ListPages returns one page of the user's catalog with all-time totals.
func (s *Service) ListPages(ctx context.Context, userID string, p ListParams) (*PageListResult, error) {
	q := normalizeParams(p)
	q.UserID = userID

	list, err := s.store.ListPages(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("list pages: %w", err)
	}
	return newPageListResult(list, q.Limit, ""), nil
}

// SearchPages matches query against title, url and domain, newest first.
// Search results are always ordered by last_seen_at; SortBy is ignored.
func (s *Service) SearchPages(ctx context.Context, userID, query string, p ListParams) (*PageListResult, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, invalid("q", "required")
	}
	q := normalizeParams(p)

	list, err := s.store.SearchPages(ctx, userID, query, q.Page, q.Limit)
	if err != nil {
		return nil, fmt.Errorf("search pages: %w", err)
	}
	return newPageListResult(list, q.Limit, query), nil
}

func newPageListResult(list *storage.PageList, limit int, query string) *PageListResult {
	views := make([]PageView, 0, len(list.Pages))
	for _, p := range list.Pages {
		views = append(views, PageView{
			ID:                     p.ID,
			URL:                    p.URL,
			Domain:                 p.Domain,
			Title:                  p.Title,
			Description:            p.Description,
			FirstSeenAt:            p.FirstSeenAt,
			LastSeenAt:             p.LastSeenAt,
			TotalDuration:          p.TotalDuration,
			TotalDurationFormatted: FormatDuration(p.TotalDuration),
		})
	}
	return &PageListResult{
		Pages: views,
		Pagination: Pagination{
			Page:       list.Page,
			Limit:      limit,
			Total:      list.Total,
			TotalPages: list.TotalPages,
		},
		Query: query,
	}
}

// PageStats returns the page's summary and daily durations in w. The page
// must belong to the user.
func (s *Service) PageStats(ctx context.Context, userID, pageID string, w storage.Window) (*PageStatsResult, error) {
	if _, err := s.store.GetPage(ctx, userID, pageID); err != nil {
		return nil, err
	}

	sum, err := s.store.PageSummary(ctx, userID, pageID, w)
	if err != nil {
		return nil, fmt.Errorf("page stats: %w", err)
	}
	days, err := s.store.PageDaily(ctx, userID, pageID, w)
	if err != nil {
		return nil, fmt.Errorf("page stats: %w", err)
	}

	daily := make([]DailyTotal, 0, len(days))
	for _, d := range days {
		daily = append(daily, DailyTotal{Date: d.Date, Duration: d.Duration})
	}

	return &PageStatsResult{
		PageID:  pageID,
		Summary: PageSummary{TotalDuration: sum.TotalDuration, Count: sum.Count},
		Daily:   daily,
		Window:  WindowView{Start: w.Start, End: w.End},
	}, nil
}
