package cli

import "io"

// GlobalFlags holds flags available to all subcommands.
type GlobalFlags struct {
	Config  string `long:"config" description:"Path to config file" default:""`
	JSON    bool   `long:"json" description:"Output in JSON format"`
	User    string `long:"user" env:"DWELL_USER" description:"Local user to act as" default:"default"`
	Verbose bool   `long:"verbose" description:"Enable verbose output"`
	Version bool   `long:"version" description:"Show version and exit"`
}

// ServeCommand runs the HTTP daemon.
type ServeCommand struct {
	Host     string `long:"host" description:"Override listen host"`
	Port     int    `long:"port" description:"Override listen port"`
	LogLevel string `long:"log-level" description:"Override log level"`

	globals *GlobalFlags
	version string
}

// LogCommand records one visit as if reported by the extension.
type LogCommand struct {
	URL         string  `long:"url" description:"Visited URL (required)"`
	Title       string  `long:"title" description:"Page title (required)"`
	Duration    float64 `long:"duration" description:"Seconds spent on the page" default:"0"`
	At          string  `long:"at" description:"Visit time, RFC 3339 (default now)"`
	Description string  `long:"description" description:"Page description"`
	Device      string  `long:"device" description:"Device name recorded on the source"`

	globals *GlobalFlags
	version string
}

// PagesCommand lists the page catalog.
type PagesCommand struct {
	Page      int    `long:"page" description:"Page number" default:"1"`
	Limit     int    `long:"limit" description:"Pages per listing page (max 100)" default:"20"`
	SortBy    string `long:"sort-by" description:"lastSeenAt | totalDuration" default:"lastSeenAt"`
	SortOrder string `long:"sort-order" description:"asc | desc" default:"desc"`

	globals *GlobalFlags
	version string
}

// SearchCommand searches the page catalog by keyword.
type SearchCommand struct {
	Page  int `long:"page" description:"Page number" default:"1"`
	Limit int `long:"limit" description:"Results per page (max 100)" default:"20"`

	Args struct {
		Query []string `positional-arg-name:"query" required:"1"`
	} `positional-args:"yes"`

	globals *GlobalFlags
	version string
}

// PageStatsCommand shows one page's summary and daily breakdown.
type PageStatsCommand struct {
	Start string `long:"start" description:"Window start (YYYY-MM-DD or RFC 3339)"`
	End   string `long:"end" description:"Window end (YYYY-MM-DD or RFC 3339)"`

	Args struct {
		PageID string `positional-arg-name:"page-id" required:"yes"`
	} `positional-args:"yes"`

	globals *GlobalFlags
	version string
}

// StatsCommand prints the dashboard rollup.
type StatsCommand struct {
	Range string `long:"range" description:"today | week | month" default:"week"`
	Start string `long:"start" description:"Window start (YYYY-MM-DD or RFC 3339)"`
	End   string `long:"end" description:"Window end (YYYY-MM-DD or RFC 3339)"`

	globals *GlobalFlags
	version string
}

// RecentCommand prints the newest activity logs.
type RecentCommand struct {
	Limit int `long:"limit" description:"Number of entries (max 100)" default:"20"`

	globals *GlobalFlags
	version string
}

// ActivityCommand prints per-page totals for today or the last seven days.
type ActivityCommand struct {
	Args struct {
		Period string `positional-arg-name:"today|week" required:"yes"`
	} `positional-args:"yes"`

	globals *GlobalFlags
	version string
}

// ProjectListCommand lists projects.
type ProjectListCommand struct {
	globals *GlobalFlags
	version string
}

// ProjectCreateCommand creates a project.
type ProjectCreateCommand struct {
	Name  string   `long:"name" description:"Project name (required)"`
	Color string   `long:"color" description:"Display color, e.g. #3b82f6 (required)"`
	Rules []string `long:"rule" description:"Rule as type=value (repeatable)"`

	globals *GlobalFlags
	version string
}

// ProjectShowCommand prints one project.
type ProjectShowCommand struct {
	Args struct {
		ID string `positional-arg-name:"project-id" required:"yes"`
	} `positional-args:"yes"`

	globals *GlobalFlags
	version string
}

// ProjectUpdateCommand renames or recolors a project.
type ProjectUpdateCommand struct {
	Name  string `long:"name" description:"New name"`
	Color string `long:"color" description:"New color"`

	Args struct {
		ID string `positional-arg-name:"project-id" required:"yes"`
	} `positional-args:"yes"`

	globals *GlobalFlags
	version string
}

// ProjectAddRuleCommand appends one rule.
type ProjectAddRuleCommand struct {
	Args struct {
		ID   string `positional-arg-name:"project-id" required:"yes"`
		Rule string `positional-arg-name:"type=value" required:"yes"`
	} `positional-args:"yes"`

	globals *GlobalFlags
	version string
}

// ProjectRemoveRuleCommand removes the rule at an index.
type ProjectRemoveRuleCommand struct {
	Args struct {
		ID    string `positional-arg-name:"project-id" required:"yes"`
		Index int    `positional-arg-name:"index" required:"yes"`
	} `positional-args:"yes"`

	globals *GlobalFlags
	version string
}

// ProjectSetRulesCommand replaces every rule.
type ProjectSetRulesCommand struct {
	Rules []string `long:"rule" description:"Rule as type=value (repeatable; none clears all rules)"`

	Args struct {
		ID string `positional-arg-name:"project-id" required:"yes"`
	} `positional-args:"yes"`

	globals *GlobalFlags
	version string
}

// ProjectDeleteCommand deletes a project. Its activity becomes Uncategorized.
type ProjectDeleteCommand struct {
	Args struct {
		ID string `positional-arg-name:"project-id" required:"yes"`
	} `positional-args:"yes"`

	globals *GlobalFlags
	version string
}

// UserCreateCommand registers a user and prints its token.
type UserCreateCommand struct {
	Args struct {
		Username string `positional-arg-name:"username" required:"yes"`
	} `positional-args:"yes"`

	globals *GlobalFlags
	version string
}

// UserRotateTokenCommand issues a new token for a user.
type UserRotateTokenCommand struct {
	Args struct {
		Username string `positional-arg-name:"username" required:"yes"`
	} `positional-args:"yes"`

	globals *GlobalFlags
	version string
}

// PruneCommand applies retention to activity logs and pages.
type PruneCommand struct {
	OlderThan string `long:"older-than" description:"Override retention period (e.g., 30d)"`
	DryRun    bool   `long:"dry-run" description:"Show what would be pruned without deleting"`

	globals *GlobalFlags
	version string
}

// PurgeCommand deletes all tracked data with safety confirmation.
type PurgeCommand struct {
	All   bool `long:"all" description:"Required flag to confirm purge intent"`
	Force bool `long:"force" description:"Skip safety confirmation prompt"`

	globals *GlobalFlags
	version string
	stdin   io.Reader // confirmation input; nil means os.Stdin
}

// StatusCommand shows database statistics and a config summary.
type StatusCommand struct {
	globals *GlobalFlags
	version string
}
