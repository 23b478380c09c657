package cli

import (
	"context"
	"fmt"
	"time"
)

// Execute implements the go-flags Commander interface for PruneCommand.
func (c *PruneCommand) Execute(args []string) error {
	return withRuntime(c.globals, func(rt *runtime) error {
		return c.executeWith(context.Background(), rt)
	})
}

func (c *PruneCommand) executeWith(ctx context.Context, rt *runtime) error {
	age := time.Duration(rt.cfg.Retention.Days) * 24 * time.Hour
	if c.OlderThan != "" {
		d, err := parseDuration(c.OlderThan)
		if err != nil {
			return fmt.Errorf("invalid --older-than value: %w", err)
		}
		age = d
	}

	res, err := rt.svc.Prune(ctx, age, c.DryRun)
	if err != nil {
		return err
	}

	if wantJSON(c.globals) {
		return printJSON(res)
	}

	verb := "Pruned"
	if c.DryRun {
		verb = "Would prune"
	}
	fmt.Printf("%s %s activity logs and %s pages older than %s (before %s)\n",
		verb,
		formatNumber(res.ActivityLogs),
		formatNumber(res.Pages),
		formatDurationHuman(age),
		res.Cutoff.Local().Format("2006-01-02 15:04"),
	)
	return nil
}
