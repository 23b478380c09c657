package cli

import (
	"context"
	"fmt"
)

// Execute implements the go-flags Commander interface for UserCreateCommand.
func (c *UserCreateCommand) Execute(args []string) error {
	return withRuntime(c.globals, func(rt *runtime) error {
		return c.executeWith(context.Background(), rt)
	})
}

func (c *UserCreateCommand) executeWith(ctx context.Context, rt *runtime) error {
	u, token, err := rt.svc.CreateUser(ctx, c.Args.Username)
	if err != nil {
		return fmt.Errorf("create user: %w", err)
	}
	if wantJSON(c.globals) {
		return printJSON(map[string]any{"id": u.ID, "username": u.Username, "token": token})
	}
	fmt.Printf("Created user %s (%s)\n", u.Username, u.ID)
	fmt.Printf("Token: %s\n", token)
	fmt.Println("Store this token now; it cannot be shown again.")
	return nil
}

// Execute implements the go-flags Commander interface for UserRotateTokenCommand.
func (c *UserRotateTokenCommand) Execute(args []string) error {
	return withRuntime(c.globals, func(rt *runtime) error {
		return c.executeWith(context.Background(), rt)
	})
}

func (c *UserRotateTokenCommand) executeWith(ctx context.Context, rt *runtime) error {
	token, err := rt.svc.RotateToken(ctx, c.Args.Username)
	if err != nil {
		return fmt.Errorf("rotate token for %s: %w", c.Args.Username, err)
	}
	if wantJSON(c.globals) {
		return printJSON(map[string]any{"username": c.Args.Username, "token": token})
	}
	fmt.Printf("New token for %s: %s\n", c.Args.Username, token)
	fmt.Println("The previous token no longer works.")
	return nil
}
