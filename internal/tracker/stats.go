package tracker

import (
	"context"
	"fmt"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/runnerr0/dwell/internal/storage"
)

// Stats is the dashboard rollup for one window.
type Stats struct {
	Range          string          `json:"range,omitempty"`
	StartDate      time.Time       `json:"startDate"`
	EndDate        time.Time       `json:"endDate"`
	Summary        Summary         `json:"summary"`
	ByProject      []ProjectStat   `json:"byProject"`
	ByDomain       []DomainStat    `json:"byDomain"`
	Heatmap        []HeatmapCell   `json:"heatmap"`
	TopPages       []TopPage       `json:"topPages"`
	RecentActivity []ActivityEntry `json:"recentActivity"`
}

// Summary is the window total.
type Summary struct {
	TotalDuration          int64  `json:"totalDuration"`
	TotalDurationFormatted string `json:"totalDurationFormatted"`
}

// ProjectStat is one by-project row. Activity without a live project is
// reported as Uncategorized.
type ProjectStat struct {
	ProjectID              *string `json:"projectId"`
	ProjectName            string  `json:"projectName"`
	Color                  string  `json:"color"`
	TotalDuration          int64   `json:"totalDuration"`
	TotalDurationFormatted string  `json:"totalDurationFormatted"`
}

// DomainStat is one by-domain row.
type DomainStat struct {
	Domain                 string `json:"domain"`
	TotalDuration          int64  `json:"totalDuration"`
	TotalDurationFormatted string `json:"totalDurationFormatted"`
}

// HeatmapCell is one (hour, weekday) bucket. Hours are 0-23 UTC and weekdays
// run 1 (Sunday) to 7 (Saturday). Empty buckets are omitted.
type HeatmapCell struct {
	Hour          int        `json:"hour"`
	DayOfWeek     int        `json:"dayOfWeek"`
	TotalDuration int64      `json:"totalDuration"`
	TopURLs       []URLTotal `json:"topUrls"`
}

// URLTotal is one URL's share of a heatmap bucket.
type URLTotal struct {
	URL           string `json:"url"`
	Title         string `json:"title"`
	TotalDuration int64  `json:"totalDuration"`
}

// TopPage is one top-pages row.
type TopPage struct {
	PageID                 string `json:"pageId"`
	Title                  string `json:"title"`
	URL                    string `json:"url"`
	Domain                 string `json:"domain"`
	TotalDuration          int64  `json:"totalDuration"`
	TotalDurationFormatted string `json:"totalDurationFormatted"`
}

// Stats runs every rollup for w concurrently. Any failing query fails the
// whole call.
func (s *Service) Stats(ctx context.Context, userID string, w storage.Window) (*Stats, error) {
	var (
		total    int64
		projects []storage.ProjectTotal
		domains  []storage.DomainTotal
		heatmap  []storage.HeatmapRow
		top      []storage.PageTotal
		recent   []storage.RecentActivity
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		total, err = s.store.TotalDuration(gctx, userID, w)
		return err
	})
	g.Go(func() (err error) {
		projects, err = s.store.DurationByProject(gctx, userID, w)
		return err
	})
	g.Go(func() (err error) {
		domains, err = s.store.DurationByDomain(gctx, userID, w, TopDomainsLimit)
		return err
	})
	g.Go(func() (err error) {
		heatmap, err = s.store.HeatmapRows(gctx, userID, w)
		return err
	})
	g.Go(func() (err error) {
		top, err = s.store.TopPages(gctx, userID, w, TopPagesLimit)
		return err
	})
	g.Go(func() (err error) {
		recent, err = s.store.RecentActivity(gctx, userID, s.recentLimit)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("stats: %w", err)
	}

	return &Stats{
		StartDate:      w.Start,
		EndDate:        w.End,
		Summary:        Summary{TotalDuration: total, TotalDurationFormatted: FormatDuration(total)},
		ByProject:      projectStats(projects),
		ByDomain:       domainStats(domains),
		Heatmap:        BuildHeatmap(heatmap, HeatmapTopURLs),
		TopPages:       topPages(top),
		RecentActivity: activityEntries(recent),
	}, nil
}

// projectStats folds rows whose project is missing or deleted into one
// Uncategorized row and keeps the result sorted by duration.
func projectStats(rows []storage.ProjectTotal) []ProjectStat {
	out := make([]ProjectStat, 0, len(rows))
	uncategorized := -1
	for _, r := range rows {
		if r.ProjectName == nil {
			if uncategorized >= 0 {
				out[uncategorized].TotalDuration += r.TotalDuration
				continue
			}
			uncategorized = len(out)
			out = append(out, ProjectStat{
				ProjectName:   UncategorizedName,
				Color:         UncategorizedColor,
				TotalDuration: r.TotalDuration,
			})
			continue
		}
		out = append(out, ProjectStat{
			ProjectID:     r.ProjectID,
			ProjectName:   *r.ProjectName,
			Color:         stringValue(r.Color, UncategorizedColor),
			TotalDuration: r.TotalDuration,
		})
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].TotalDuration > out[j].TotalDuration })
	for i := range out {
		out[i].TotalDurationFormatted = FormatDuration(out[i].TotalDuration)
	}
	return out
}

func domainStats(rows []storage.DomainTotal) []DomainStat {
	out := make([]DomainStat, 0, len(rows))
	for _, r := range rows {
		out = append(out, DomainStat{
			Domain:                 r.Domain,
			TotalDuration:          r.TotalDuration,
			TotalDurationFormatted: FormatDuration(r.TotalDuration),
		})
	}
	return out
}

func topPages(rows []storage.PageTotal) []TopPage {
	out := make([]TopPage, 0, len(rows))
	for _, r := range rows {
		out = append(out, TopPage{
			PageID:                 r.PageID,
			Title:                  r.Title,
			URL:                    r.URL,
			Domain:                 r.Domain,
			TotalDuration:          r.TotalDuration,
			TotalDurationFormatted: FormatDuration(r.TotalDuration),
		})
	}
	return out
}

type bucketKey struct{ hour, day int }

// BuildHeatmap groups per-page rows into (hour, weekday) cells. Each cell
// sums its rows and keeps the topN URLs by duration. Cells are ordered by
// weekday then hour.
func BuildHeatmap(rows []storage.HeatmapRow, topN int) []HeatmapCell {
	cells := map[bucketKey]*HeatmapCell{}
	urls := map[bucketKey]map[string]*URLTotal{}

	for _, r := range rows {
		k := bucketKey{r.Hour, r.DayOfWeek}
		cell, ok := cells[k]
		if !ok {
			cell = &HeatmapCell{Hour: r.Hour, DayOfWeek: r.DayOfWeek}
			cells[k] = cell
			urls[k] = map[string]*URLTotal{}
		}
		cell.TotalDuration += r.Duration

		u := stringValue(r.URL, "")
		if u == "" {
			continue
		}
		if ut, ok := urls[k][u]; ok {
			ut.TotalDuration += r.Duration
		} else {
			urls[k][u] = &URLTotal{URL: u, Title: stringValue(r.Title, ""), TotalDuration: r.Duration}
		}
	}

	out := make([]HeatmapCell, 0, len(cells))
	for k, cell := range cells {
		top := make([]URLTotal, 0, len(urls[k]))
		for _, ut := range urls[k] {
			top = append(top, *ut)
		}
		sort.Slice(top, func(i, j int) bool {
			if top[i].TotalDuration != top[j].TotalDuration {
				return top[i].TotalDuration > top[j].TotalDuration
			}
			return top[i].URL < top[j].URL
		})
		if len(top) > topN {
			top = top[:topN]
		}
		cell.TopURLs = top
		out = append(out, *cell)
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].DayOfWeek != out[j].DayOfWeek {
			return out[i].DayOfWeek < out[j].DayOfWeek
		}
		return out[i].Hour < out[j].Hour
	})
	return out
}
