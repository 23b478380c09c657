package cli

import (
	"context"
	"fmt"

	"github.com/runnerr0/dwell/internal/tracker"
)

func printProject(p *tracker.ProjectView) {
	fmt.Printf("%s  %s (%s)\n", p.ID, p.Name, p.Color)
	if len(p.Rules) == 0 {
		fmt.Println("  no rules")
		return
	}
	for i, r := range p.Rules {
		fmt.Printf("  [%d] %s = %s\n", i, r.Type, r.Value)
	}
}

func showProject(g *GlobalFlags, p *tracker.ProjectView) error {
	if wantJSON(g) {
		return printJSON(map[string]any{"project": p})
	}
	printProject(p)
	return nil
}

// Execute implements the go-flags Commander interface for ProjectListCommand.
func (c *ProjectListCommand) Execute(args []string) error {
	return withRuntime(c.globals, func(rt *runtime) error {
		return c.executeWith(context.Background(), rt)
	})
}

func (c *ProjectListCommand) executeWith(ctx context.Context, rt *runtime) error {
	userID, err := rt.userID(ctx, c.globals)
	if err != nil {
		return err
	}
	projects, err := rt.svc.ListProjects(ctx, userID)
	if err != nil {
		return err
	}
	if wantJSON(c.globals) {
		return printJSON(map[string]any{"projects": projects})
	}
	if len(projects) == 0 {
		fmt.Println("No projects.")
		return nil
	}
	for i := range projects {
		printProject(&projects[i])
	}
	return nil
}

// Execute implements the go-flags Commander interface for ProjectCreateCommand.
func (c *ProjectCreateCommand) Execute(args []string) error {
	return withRuntime(c.globals, func(rt *runtime) error {
		return c.executeWith(context.Background(), rt)
	})
}

func (c *ProjectCreateCommand) executeWith(ctx context.Context, rt *runtime) error {
	userID, err := rt.userID(ctx, c.globals)
	if err != nil {
		return err
	}
	rules, err := parseRules(c.Rules)
	if err != nil {
		return err
	}
	p, err := rt.svc.CreateProject(ctx, userID, tracker.ProjectInput{Name: c.Name, Color: c.Color, Rules: rules})
	if err != nil {
		return fmt.Errorf("create project: %w", err)
	}
	return showProject(c.globals, p)
}

// Execute implements the go-flags Commander interface for ProjectShowCommand.
func (c *ProjectShowCommand) Execute(args []string) error {
	return withRuntime(c.globals, func(rt *runtime) error {
		return c.executeWith(context.Background(), rt)
	})
}

func (c *ProjectShowCommand) executeWith(ctx context.Context, rt *runtime) error {
	userID, err := rt.userID(ctx, c.globals)
	if err != nil {
		return err
	}
	p, err := rt.svc.GetProject(ctx, userID, c.Args.ID)
	if err != nil {
		return fmt.Errorf("project %s: %w", c.Args.ID, err)
	}
	return showProject(c.globals, p)
}

// Execute implements the go-flags Commander interface for ProjectUpdateCommand.
func (c *ProjectUpdateCommand) Execute(args []string) error {
	return withRuntime(c.globals, func(rt *runtime) error {
		return c.executeWith(context.Background(), rt)
	})
}

func (c *ProjectUpdateCommand) executeWith(ctx context.Context, rt *runtime) error {
	var u tracker.ProjectUpdate
	if c.Name != "" {
		u.Name = &c.Name
	}
	if c.Color != "" {
		u.Color = &c.Color
	}
	return updateProject(ctx, rt, c.globals, c.Args.ID, u)
}

// Execute implements the go-flags Commander interface for ProjectAddRuleCommand.
func (c *ProjectAddRuleCommand) Execute(args []string) error {
	return withRuntime(c.globals, func(rt *runtime) error {
		return c.executeWith(context.Background(), rt)
	})
}

func (c *ProjectAddRuleCommand) executeWith(ctx context.Context, rt *runtime) error {
	rule, err := parseRule(c.Args.Rule)
	if err != nil {
		return err
	}
	return updateProject(ctx, rt, c.globals, c.Args.ID, tracker.ProjectUpdate{AddRule: &rule})
}

// Execute implements the go-flags Commander interface for ProjectRemoveRuleCommand.
func (c *ProjectRemoveRuleCommand) Execute(args []string) error {
	return withRuntime(c.globals, func(rt *runtime) error {
		return c.executeWith(context.Background(), rt)
	})
}

func (c *ProjectRemoveRuleCommand) executeWith(ctx context.Context, rt *runtime) error {
	idx := c.Args.Index
	return updateProject(ctx, rt, c.globals, c.Args.ID, tracker.ProjectUpdate{RemoveRuleIndex: &idx})
}

// Execute implements the go-flags Commander interface for ProjectSetRulesCommand.
func (c *ProjectSetRulesCommand) Execute(args []string) error {
	return withRuntime(c.globals, func(rt *runtime) error {
		return c.executeWith(context.Background(), rt)
	})
}

func (c *ProjectSetRulesCommand) executeWith(ctx context.Context, rt *runtime) error {
	rules, err := parseRules(c.Rules)
	if err != nil {
		return err
	}
	return updateProject(ctx, rt, c.globals, c.Args.ID, tracker.ProjectUpdate{Rules: &rules})
}

func updateProject(ctx context.Context, rt *runtime, g *GlobalFlags, id string, u tracker.ProjectUpdate) error {
	userID, err := rt.userID(ctx, g)
	if err != nil {
		return err
	}
	p, err := rt.svc.UpdateProject(ctx, userID, id, u)
	if err != nil {
		return fmt.Errorf("update project %s: %w", id, err)
	}
	return showProject(g, p)
}

// Execute implements the go-flags Commander interface for ProjectDeleteCommand.
func (c *ProjectDeleteCommand) Execute(args []string) error {
	return withRuntime(c.globals, func(rt *runtime) error {
		return c.executeWith(context.Background(), rt)
	})
}

func (c *ProjectDeleteCommand) executeWith(ctx context.Context, rt *runtime) error {
	userID, err := rt.userID(ctx, c.globals)
	if err != nil {
		return err
	}
	if err := rt.svc.DeleteProject(ctx, userID, c.Args.ID); err != nil {
		return fmt.Errorf("delete project %s: %w", c.Args.ID, err)
	}
	if wantJSON(c.globals) {
		return printJSON(map[string]any{"deleted": true, "id": c.Args.ID})
	}
	fmt.Printf("Deleted project %s\n", c.Args.ID)
	return nil
}
