package cli

import (
	"context"
	"fmt"

	"github.com/runnerr0/dwell/internal/tracker"
)

// Execute implements the go-flags Commander interface for StatsCommand.
func (c *StatsCommand) Execute(args []string) error {
	return withRuntime(c.globals, func(rt *runtime) error {
		return c.executeWith(context.Background(), rt)
	})
}

func (c *StatsCommand) executeWith(ctx context.Context, rt *runtime) error {
	userID, err := rt.userID(ctx, c.globals)
	if err != nil {
		return err
	}
	start, end := rt.svc.ParseBounds(c.Start, c.End)
	win, rangeName := tracker.ResolveWindow(c.Range, start, end, rt.svc.Now())

	stats, err := rt.svc.Stats(ctx, userID, win)
	if err != nil {
		return err
	}
	stats.Range = rangeName

	if wantJSON(c.globals) {
		return printJSON(stats)
	}

	label := rangeName
	if label == "" {
		label = "custom"
	}
	fmt.Printf("Stats (%s: %s to %s)\n", label,
		win.Start.Format("2006-01-02 15:04"), win.End.Format("2006-01-02 15:04"))
	fmt.Println("==========")
	fmt.Printf("Total:   %s\n", stats.Summary.TotalDurationFormatted)

	if len(stats.ByProject) > 0 {
		fmt.Println()
		fmt.Println("By Project:")
		for _, p := range stats.ByProject {
			fmt.Printf("  %-24s %s\n", p.ProjectName, p.TotalDurationFormatted)
		}
	}
	if len(stats.ByDomain) > 0 {
		fmt.Println()
		fmt.Println("Top Domains:")
		for _, d := range stats.ByDomain {
			fmt.Printf("  %-24s %s\n", d.Domain, d.TotalDurationFormatted)
		}
	}
	if len(stats.TopPages) > 0 {
		fmt.Println()
		fmt.Println("Top Pages:")
		for i, p := range stats.TopPages {
			fmt.Printf("  %d. %s (%s)\n", i+1, p.Title, p.TotalDurationFormatted)
		}
	}
	return nil
}

// Execute implements the go-flags Commander interface for RecentCommand.
func (c *RecentCommand) Execute(args []string) error {
	return withRuntime(c.globals, func(rt *runtime) error {
		return c.executeWith(context.Background(), rt)
	})
}

func (c *RecentCommand) executeWith(ctx context.Context, rt *runtime) error {
	userID, err := rt.userID(ctx, c.globals)
	if err != nil {
		return err
	}
	entries, err := rt.svc.RecentActivity(ctx, userID, c.Limit)
	if err != nil {
		return err
	}
	if wantJSON(c.globals) {
		return printJSON(map[string]any{"activity": entries})
	}
	if len(entries) == 0 {
		fmt.Println("No activity recorded yet.")
		return nil
	}
	for _, e := range entries {
		title := e.Domain
		if e.Page != nil {
			title = e.Page.Title
		}
		fmt.Printf("%s  %6s  %s\n", e.Timestamp.Local().Format("2006-01-02 15:04"), e.DurationFormatted, title)
	}
	return nil
}

// Execute implements the go-flags Commander interface for ActivityCommand.
func (c *ActivityCommand) Execute(args []string) error {
	return withRuntime(c.globals, func(rt *runtime) error {
		return c.executeWith(context.Background(), rt)
	})
}

func (c *ActivityCommand) executeWith(ctx context.Context, rt *runtime) error {
	userID, err := rt.userID(ctx, c.globals)
	if err != nil {
		return err
	}

	var report *tracker.ActivityReport
	switch c.Args.Period {
	case tracker.RangeToday:
		report, err = rt.svc.TodaysActivity(ctx, userID)
	case tracker.RangeWeek:
		report, err = rt.svc.WeekActivity(ctx, userID)
	default:
		return fmt.Errorf("unknown period %q (use today or week)", c.Args.Period)
	}
	if err != nil {
		return err
	}

	if wantJSON(c.globals) {
		return printJSON(report)
	}
	if len(report.Pages) == 0 {
		fmt.Printf("No activity between %s and %s.\n",
			report.StartDate.Format("2006-01-02"), report.EndDate.Format("2006-01-02"))
		return nil
	}
	for _, p := range report.Pages {
		fmt.Printf("%8s  %s [%s]\n", p.TotalDurationFormatted, p.Title, stringOr(p.ProjectName, tracker.UncategorizedName))
		fmt.Printf("          %s\n", p.URL)
	}
	return nil
}
