package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"
)

// Execute implements the go-flags Commander interface for PurgeCommand.
func (c *PurgeCommand) Execute(args []string) error {
	if !c.All {
		return fmt.Errorf("purge requires --all flag for safety")
	}
	if err := c.confirm(); err != nil {
		return err
	}
	return withRuntime(c.globals, func(rt *runtime) error {
		return c.executeWith(context.Background(), rt)
	})
}

// confirm asks the user to type PURGE unless --force was given.
func (c *PurgeCommand) confirm() error {
	if c.Force {
		return nil
	}

	fmt.Println("\u26a0 WARNING: This will permanently delete ALL tracked data.")
	fmt.Println("  - All pages")
	fmt.Println("  - All projects and their rules")
	fmt.Println("  - All activity logs")
	fmt.Println()
	fmt.Println("Users and API tokens are kept. This action cannot be undone.")
	fmt.Println()
	fmt.Print(`Type "PURGE" to confirm: `)

	var in io.Reader = os.Stdin
	if c.stdin != nil {
		in = c.stdin
	}
	scanner := bufio.NewScanner(in)
	if !scanner.Scan() {
		return fmt.Errorf("aborted: no input received")
	}
	if strings.TrimSpace(scanner.Text()) != "PURGE" {
		return fmt.Errorf("aborted: confirmation text did not match")
	}
	return nil
}

func (c *PurgeCommand) executeWith(ctx context.Context, rt *runtime) error {
	if err := rt.svc.Purge(ctx); err != nil {
		return err
	}

	if wantJSON(c.globals) {
		return printJSON(map[string]any{
			"purged":  true,
			"message": "all data deleted",
		})
	}

	fmt.Println("Purged all data. dwell is empty.")
	return nil
}
