package tracker

import (
	"context"
	"fmt"
	"time"

	"github.com/runnerr0/dwell/internal/storage"
)

// ActivityEntry is one recent activity log with its page, when the page
// still exists.
type ActivityEntry struct {
	ID                string           `json:"id"`
	Timestamp         time.Time        `json:"timestamp"`
	Duration          int64            `json:"duration"`
	DurationFormatted string           `json:"durationFormatted"`
	Domain            string           `json:"domain"`
	ProjectID         *string          `json:"projectId"`
	Source            SourceView       `json:"source"`
	Page              *PageSummaryView `json:"page"`
}

// SourceView is the stored source block.
type SourceView struct {
	Type       string  `json:"type"`
	DeviceName *string `json:"deviceName"`
	ClientID   *string `json:"clientId"`
}

// PageSummaryView is the page fields joined onto recent activity.
type PageSummaryView struct {
	Title  string `json:"title"`
	URL    string `json:"url"`
	Domain string `json:"domain"`
}

// PageActivity is one page's total for a day or week report.
type PageActivity struct {
	PageID                 string  `json:"pageId"`
	Title                  string  `json:"title"`
	URL                    string  `json:"url"`
	Domain                 string  `json:"domain"`
	TotalDuration          int64   `json:"totalDuration"`
	TotalDurationFormatted string  `json:"totalDurationFormatted"`
	ProjectName            *string `json:"projectName"`
}

// ActivityReport is a per-page report over a fixed window.
type ActivityReport struct {
	StartDate time.Time      `json:"startDate"`
	EndDate   time.Time      `json:"endDate"`
	Pages     []PageActivity `json:"pages"`
}

// RecentActivity returns the newest logs. limit defaults to 20 and is
// capped at 100.
func (s *Service) RecentActivity(ctx context.Context, userID string, limit int) ([]ActivityEntry, error) {
	if limit <= 0 {
		limit = DefaultRecentLimit
	}
	rows, err := s.store.RecentActivity(ctx, userID, clamp(limit, 1, MaxPageLimit))
	if err != nil {
		return nil, fmt.Errorf("recent activity: %w", err)
	}
	return activityEntries(rows), nil
}

// TodaysActivity reports per-page totals for the current UTC day.
func (s *Service) TodaysActivity(ctx context.Context, userID string) (*ActivityReport, error) {
	return s.activityReport(ctx, userID, CalendarDay(s.Now()))
}

// WeekActivity reports per-page totals for today and the six days before.
func (s *Service) WeekActivity(ctx context.Context, userID string) (*ActivityReport, error) {
	return s.activityReport(ctx, userID, LastSevenDays(s.Now()))
}

func (s *Service) activityReport(ctx context.Context, userID string, w storage.Window) (*ActivityReport, error) {
	rows, err := s.store.PageActivity(ctx, userID, w)
	if err != nil {
		return nil, fmt.Errorf("activity report: %w", err)
	}

	pages := make([]PageActivity, 0, len(rows))
	for _, r := range rows {
		pages = append(pages, PageActivity{
			PageID:                 r.PageID,
			Title:                  r.Title,
			URL:                    r.URL,
			Domain:                 r.Domain,
			TotalDuration:          r.TotalDuration,
			TotalDurationFormatted: FormatDuration(r.TotalDuration),
			ProjectName:            r.ProjectName,
		})
	}
	return &ActivityReport{StartDate: w.Start, EndDate: w.End, Pages: pages}, nil
}

func activityEntries(rows []storage.RecentActivity) []ActivityEntry {
	out := make([]ActivityEntry, 0, len(rows))
	for _, r := range rows {
		e := ActivityEntry{
			ID:                r.ID,
			Timestamp:         r.Timestamp,
			Duration:          r.Duration,
			DurationFormatted: FormatDuration(r.Duration),
			Domain:            r.Domain,
			ProjectID:         r.ProjectID,
			Source: SourceView{
				Type:       r.Source.Type,
				DeviceName: r.Source.DeviceName,
				ClientID:   r.Source.ClientID,
			},
		}
		if r.Page != nil {
			e.Page = &PageSummaryView{Title: r.Page.Title, URL: r.Page.URL, Domain: r.Page.Domain}
		}
		out = append(out, e)
	}
	return out
}
