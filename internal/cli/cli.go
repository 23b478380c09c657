package cli

import (
	"fmt"
	"os"

	goflags "github.com/jessevdk/go-flags"
)

// commands holds references to all subcommand structs for inspection/testing.
type commands struct {
	Serve     *ServeCommand
	Log       *LogCommand
	Pages     *PagesCommand
	Search    *SearchCommand
	PageStats *PageStatsCommand
	Stats     *StatsCommand
	Recent    *RecentCommand
	Activity  *ActivityCommand

	ProjectList       *ProjectListCommand
	ProjectCreate     *ProjectCreateCommand
	ProjectShow       *ProjectShowCommand
	ProjectUpdate     *ProjectUpdateCommand
	ProjectAddRule    *ProjectAddRuleCommand
	ProjectRemoveRule *ProjectRemoveRuleCommand
	ProjectSetRules   *ProjectSetRulesCommand
	ProjectDelete     *ProjectDeleteCommand

	UserCreate      *UserCreateCommand
	UserRotateToken *UserRotateTokenCommand

	Prune  *PruneCommand
	Purge  *PurgeCommand
	Status *StatusCommand
}

// group is a command that only holds subcommands.
type group struct{}

// buildParser constructs the go-flags parser with all subcommands registered.
func buildParser(version string) (*goflags.Parser, *GlobalFlags, *commands) {
	var globals GlobalFlags
	g := &globals

	parser := goflags.NewParser(&globals, goflags.Default)
	parser.Name = "dwell"
	parser.LongDescription = "Personal browsing-activity tracker: page catalog, project rules and time statistics."

	cmds := &commands{
		Serve:     &ServeCommand{globals: g, version: version},
		Log:       &LogCommand{globals: g, version: version},
		Pages:     &PagesCommand{globals: g, version: version},
		Search:    &SearchCommand{globals: g, version: version},
		PageStats: &PageStatsCommand{globals: g, version: version},
		Stats:     &StatsCommand{globals: g, version: version},
		Recent:    &RecentCommand{globals: g, version: version},
		Activity:  &ActivityCommand{globals: g, version: version},

		ProjectList:       &ProjectListCommand{globals: g, version: version},
		ProjectCreate:     &ProjectCreateCommand{globals: g, version: version},
		ProjectShow:       &ProjectShowCommand{globals: g, version: version},
		ProjectUpdate:     &ProjectUpdateCommand{globals: g, version: version},
		ProjectAddRule:    &ProjectAddRuleCommand{globals: g, version: version},
		ProjectRemoveRule: &ProjectRemoveRuleCommand{globals: g, version: version},
		ProjectSetRules:   &ProjectSetRulesCommand{globals: g, version: version},
		ProjectDelete:     &ProjectDeleteCommand{globals: g, version: version},

		UserCreate:      &UserCreateCommand{globals: g, version: version},
		UserRotateToken: &UserRotateTokenCommand{globals: g, version: version},

		Prune:  &PruneCommand{globals: g, version: version},
		Purge:  &PurgeCommand{globals: g, version: version},
		Status: &StatusCommand{globals: g, version: version},
	}

	parser.AddCommand("serve", "Start the dwell daemon", "Start the local HTTP service the browser extension reports to.", cmds.Serve)
	parser.AddCommand("log", "Record a visit", "Record one page visit with its dwell time.", cmds.Log)
	parser.AddCommand("pages", "List tracked pages", "List tracked pages with all-time totals.", cmds.Pages)
	parser.AddCommand("search", "Search tracked pages", "Search page titles, URLs and domains.", cmds.Search)
	parser.AddCommand("page-stats", "Show one page's statistics", "Show one page's total, visit count and daily breakdown.", cmds.PageStats)
	parser.AddCommand("stats", "Show time statistics", "Show totals by project, domain, hour of week and top pages.", cmds.Stats)
	parser.AddCommand("recent", "Show recent activity", "Show the newest activity logs.", cmds.Recent)
	parser.AddCommand("activity", "Show per-page activity", "Show per-page totals for today or the last seven days.", cmds.Activity)

	project, _ := parser.AddCommand("project", "Manage projects", "Create, inspect and edit projects and their matching rules.", &group{})
	project.AddCommand("list", "List projects", "List projects, newest first.", cmds.ProjectList)
	project.AddCommand("create", "Create a project", "Create a project with optional type=value rules.", cmds.ProjectCreate)
	project.AddCommand("show", "Show a project", "Show a project and its rules.", cmds.ProjectShow)
	project.AddCommand("update", "Rename or recolor a project", "Change a project's name or color.", cmds.ProjectUpdate)
	project.AddCommand("add-rule", "Append a rule", "Append a type=value rule to a project.", cmds.ProjectAddRule)
	project.AddCommand("remove-rule", "Remove a rule", "Remove the rule at a zero-based index.", cmds.ProjectRemoveRule)
	project.AddCommand("set-rules", "Replace all rules", "Replace a project's rules.", cmds.ProjectSetRules)
	project.AddCommand("delete", "Delete a project", "Delete a project. Its activity is reported as Uncategorized.", cmds.ProjectDelete)

	user, _ := parser.AddCommand("user", "Manage users", "Create users and rotate their API tokens.", &group{})
	user.AddCommand("create", "Create a user", "Create a user and print its API token.", cmds.UserCreate)
	user.AddCommand("rotate-token", "Rotate a user's token", "Issue a new API token. The old token stops working.", cmds.UserRotateToken)

	parser.AddCommand("prune", "Apply retention pruning", "Remove activity and pages older than the retention period.", cmds.Prune)
	parser.AddCommand("purge", "Delete ALL tracked data", "Delete ALL pages, projects and activity. Destructive operation with safety prompt.", cmds.Purge)
	parser.AddCommand("status", "Show database statistics", "Show database statistics and configuration summary.", cmds.Status)

	return parser, &globals, cmds
}

// Run is the main entry point for the dwell CLI using os.Args.
func Run(version string) error {
	return RunWithArgs(version, nil)
}

// RunWithArgs parses the given args (or os.Args if nil) and executes the matched subcommand.
func RunWithArgs(version string, args []string) error {
	// Handle --version before parser (go-flags requires a subcommand, but
	// --version is valid without one).
	checkArgs := args
	if checkArgs == nil {
		checkArgs = os.Args[1:]
	}
	for _, arg := range checkArgs {
		if arg == "--version" {
			fmt.Printf("dwell %s\n", version)
			return nil
		}
		if arg == "--" {
			break
		}
	}

	parser, _, _ := buildParser(version)

	var err error
	if args != nil {
		_, err = parser.ParseArgs(args)
	} else {
		_, err = parser.Parse()
	}

	if err != nil {
		if flagsErr, ok := err.(*goflags.Error); ok {
			if flagsErr.Type == goflags.ErrHelp {
				return nil
			}
		}
		return err
	}

	return nil
}
