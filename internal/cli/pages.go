package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/runnerr0/dwell/internal/storage"
	"github.com/runnerr0/dwell/internal/tracker"
)

// Execute implements the go-flags Commander interface for PagesCommand.
func (c *PagesCommand) Execute(args []string) error {
	return withRuntime(c.globals, func(rt *runtime) error {
		return c.executeWith(context.Background(), rt)
	})
}

func (c *PagesCommand) executeWith(ctx context.Context, rt *runtime) error {
	userID, err := rt.userID(ctx, c.globals)
	if err != nil {
		return err
	}
	res, err := rt.svc.ListPages(ctx, userID, tracker.ListParams{
		Page:      c.Page,
		Limit:     c.Limit,
		SortBy:    c.SortBy,
		SortOrder: c.SortOrder,
	})
	if err != nil {
		return err
	}
	if wantJSON(c.globals) {
		return printJSON(res)
	}
	printPageList(res)
	return nil
}

// Execute implements the go-flags Commander interface for SearchCommand.
func (c *SearchCommand) Execute(args []string) error {
	return withRuntime(c.globals, func(rt *runtime) error {
		return c.executeWith(context.Background(), rt)
	})
}

func (c *SearchCommand) executeWith(ctx context.Context, rt *runtime) error {
	userID, err := rt.userID(ctx, c.globals)
	if err != nil {
		return err
	}
	query := strings.Join(c.Args.Query, " ")
	res, err := rt.svc.SearchPages(ctx, userID, query, tracker.ListParams{Page: c.Page, Limit: c.Limit})
	if err != nil {
		return err
	}
	if wantJSON(c.globals) {
		return printJSON(res)
	}
	if len(res.Pages) == 0 {
		fmt.Printf("No pages found for %q\n", query)
		return nil
	}
	printPageList(res)
	return nil
}

func printPageList(res *tracker.PageListResult) {
	for i, p := range res.Pages {
		n := (res.Pagination.Page-1)*res.Pagination.Limit + i + 1
		fmt.Printf("%d. %s \u2014 %s\n", n, p.Title, p.Domain)
		fmt.Printf("   %s\n", p.URL)
		fmt.Printf("   %s total \u00b7 last seen %s \u00b7 %s\n",
			p.TotalDurationFormatted, p.LastSeenAt.Local().Format("2006-01-02 15:04"), p.ID)
	}
	fmt.Printf("\nPage %d of %d (%s pages)\n",
		res.Pagination.Page, res.Pagination.TotalPages, formatNumber(res.Pagination.Total))
}

// Execute implements the go-flags Commander interface for PageStatsCommand.
func (c *PageStatsCommand) Execute(args []string) error {
	return withRuntime(c.globals, func(rt *runtime) error {
		return c.executeWith(context.Background(), rt)
	})
}

func (c *PageStatsCommand) executeWith(ctx context.Context, rt *runtime) error {
	userID, err := rt.userID(ctx, c.globals)
	if err != nil {
		return err
	}
	start, end := rt.svc.ParseBounds(c.Start, c.End)
	win := tracker.TrailingDays(tracker.DefaultPageStatsDays, rt.svc.Now())
	if start != nil && end != nil && !start.After(*end) {
		win = storage.Window{Start: *start, End: *end}
	}

	res, err := rt.svc.PageStats(ctx, userID, c.Args.PageID, win)
	if err != nil {
		return fmt.Errorf("page %s: %w", c.Args.PageID, err)
	}
	if wantJSON(c.globals) {
		return printJSON(res)
	}

	fmt.Printf("Page %s (%s to %s)\n", res.PageID,
		win.Start.Format("2006-01-02"), win.End.Format("2006-01-02"))
	fmt.Printf("Total:   %s\n", tracker.FormatDuration(res.Summary.TotalDuration))
	fmt.Printf("Visits:  %s\n", formatNumber(res.Summary.Count))
	if len(res.Daily) > 0 {
		fmt.Println()
		for _, d := range res.Daily {
			fmt.Printf("  %s  %s\n", d.Date, tracker.FormatDuration(d.Duration))
		}
	}
	return nil
}
