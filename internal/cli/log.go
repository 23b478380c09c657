package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/runnerr0/dwell/internal/tracker"
)

// Execute implements the go-flags Commander interface for LogCommand.
func (c *LogCommand) Execute(args []string) error {
	return withRuntime(c.globals, func(rt *runtime) error {
		return c.executeWith(context.Background(), rt)
	})
}

// executeWith records the visit through the same pipeline the API uses.
func (c *LogCommand) executeWith(ctx context.Context, rt *runtime) error {
	userID, err := rt.userID(ctx, c.globals)
	if err != nil {
		return err
	}

	at := c.At
	if at == "" {
		at = rt.svc.Now().Format(time.RFC3339Nano)
	}
	duration := c.Duration

	p := tracker.LogPayload{
		URL:       c.URL,
		Title:     c.Title,
		Duration:  &duration,
		Timestamp: at,
		Source:    &tracker.SourcePayload{Type: "cli"},
	}
	if c.Description != "" {
		p.Description = &c.Description
	}
	if c.Device != "" {
		p.Source.DeviceName = &c.Device
	}

	res, err := rt.svc.Ingest(ctx, userID, p)
	if err != nil {
		return fmt.Errorf("log visit: %w", err)
	}

	if wantJSON(c.globals) {
		return printJSON(res)
	}

	fmt.Printf("Logged %s on %s\n", tracker.FormatDuration(int64(duration)), c.URL)
	fmt.Printf("  Log:     %s\n", res.LogID)
	fmt.Printf("  Page:    %s\n", res.PageID)
	fmt.Printf("  Project: %s\n", stringOr(res.ProjectID, tracker.UncategorizedName))
	return nil
}
