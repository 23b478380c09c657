package storage

import (
	"errors"
	"time"
)

// ErrNotFound is returned when a looked-up row does not exist for the user.
var ErrNotFound = errors.New("not found")

// Page is the canonical record of one browsing destination per (user, url).
type Page struct {
	ID          string
	UserID      string
	URL         string
	Domain      string
	Title       string
	Description *string
	FirstSeenAt time.Time
	LastSeenAt  time.Time
	AI          Classification
}

// Classification is reserved for future inference; nothing computes it yet.
type Classification struct {
	ProductivityLabel *string
	Confidence        *float64
	Embedding         []float64
}

// PageUpsert carries the fields written on every visit to a page.
type PageUpsert struct {
	UserID      string
	URL         string
	Domain      string
	Title       string
	Description *string
	SeenAt      time.Time
}

// RuleType is the kind of predicate a ProjectRule evaluates.
type RuleType string

const (
	RuleDomain      RuleType = "domain"
	RuleURLContains RuleType = "url_contains"
	RuleManualURL   RuleType = "manual_url"
)

// ProjectRule is a single matching predicate owned by a Project.
type ProjectRule struct {
	Type  RuleType `json:"type"`
	Value string   `json:"value"`
}

// Project is a user-defined category with ordered matching rules.
type Project struct {
	ID        string
	UserID    string
	Name      string
	Color     string
	Rules     []ProjectRule
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Source describes the client that reported an activity event.
type Source struct {
	Type       string
	DeviceName *string
	ClientID   *string
}

// ActivityLog is one immutable record of time spent on a page.
type ActivityLog struct {
	ID        string
	Timestamp time.Time
	Duration  int64 // seconds
	PageID    string
	UserID    string
	Domain    string  // copied at write time, never re-derived
	ProjectID *string // resolved once at ingestion
	Source    Source
}

// User is an account known to the authentication collaborator.
type User struct {
	ID              string
	Username        string
	TokenHash       string
	TokenCreatedAt  *time.Time
	TokenLastUsedAt *time.Time
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// Window is an inclusive [Start, End] time range.
type Window struct {
	Start time.Time
	End   time.Time
}

// SortField selects how ListPages orders the catalog.
type SortField string

const (
	SortByLastSeen      SortField = "lastSeenAt"
	SortByTotalDuration SortField = "totalDuration"
)

// SortOrder is asc or desc.
type SortOrder string

const (
	SortAsc  SortOrder = "asc"
	SortDesc SortOrder = "desc"
)

// PageQuery defines a paginated, sorted page listing.
type PageQuery struct {
	UserID    string
	SortBy    SortField
	SortOrder SortOrder
	Page      int
	Limit     int
}

// PageListing is a page together with the sum of all its activity durations.
type PageListing struct {
	Page
	TotalDuration int64
}

// PageList is one slice of a paginated listing plus metadata for the whole set.
type PageList struct {
	Pages      []PageListing
	Total      int64
	Page       int
	TotalPages int
}

// ProjectTotal is a by-project rollup row. ProjectName and Color are nil when
// the log carried no project or the project no longer exists.
type ProjectTotal struct {
	ProjectID     *string
	ProjectName   *string
	Color         *string
	TotalDuration int64
}

// DomainTotal is a by-domain rollup row.
type DomainTotal struct {
	Domain        string
	TotalDuration int64
}

// HeatmapRow is the duration one page contributed to one (hour, weekday)
// bucket. URL and Title are nil when the page row is gone.
type HeatmapRow struct {
	Hour      int
	DayOfWeek int
	PageID    string
	URL       *string
	Title     *string
	Duration  int64
}

// PageTotal is a top-pages rollup row.
type PageTotal struct {
	PageID        string
	Title         string
	URL           string
	Domain        string
	TotalDuration int64
}

// PageSummary is the in-window total and event count for one page.
type PageSummary struct {
	TotalDuration int64
	Count         int64
}

// DailyTotal is the duration recorded on one UTC calendar day.
type DailyTotal struct {
	Date     string
	Duration int64
}

// PageRef is the page summary joined onto recent activity rows.
type PageRef struct {
	Title  string
	URL    string
	Domain string
}

// RecentActivity is an activity log joined with its page, if it still exists.
type RecentActivity struct {
	ActivityLog
	Page *PageRef
}

// PageActivity is a per-page total for a window with the project name of the
// first log in the group.
type PageActivity struct {
	PageID        string
	Title         string
	URL           string
	Domain        string
	TotalDuration int64
	ProjectName   *string
}

// PruneResult reports how many rows a retention pass removed (or would remove).
type PruneResult struct {
	ActivityLogs int64
	Pages        int64
}

// DBStats holds aggregate statistics about the database.
type DBStats struct {
	Users        int64
	Pages        int64
	Projects     int64
	ActivityLogs int64
	OldestEvent  time.Time
	NewestEvent  time.Time
}
