package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/mattn/go-sqlite3"
)

// DriverName is the sqlite3 driver with dwell's SQL functions registered.
// SQLite's built-in lower() only folds ASCII, so search goes through
// go_lower instead.
const DriverName = "sqlite3_dwell"

func init() {
	sql.Register(DriverName, &sqlite3.SQLiteDriver{
		ConnectHook: func(conn *sqlite3.SQLiteConn) error {
			return conn.RegisterFunc("go_lower", strings.ToLower, true)
		},
	})
}

// Store defines the data operations the tracker core runs against.
type Store interface {
	UpsertPage(ctx context.Context, in PageUpsert) (*Page, error)
	GetPage(ctx context.Context, userID, pageID string) (*Page, error)
	ListPages(ctx context.Context, q PageQuery) (*PageList, error)
	SearchPages(ctx context.Context, userID, query string, page, limit int) (*PageList, error)

	CreateProject(ctx context.Context, p *Project) error
	GetProject(ctx context.Context, userID, projectID string) (*Project, error)
	ListProjects(ctx context.Context, userID string) ([]Project, error)
	UpdateProject(ctx context.Context, p *Project) error
	DeleteProject(ctx context.Context, userID, projectID string) (bool, error)

	InsertActivityLog(ctx context.Context, log *ActivityLog) error
	RecentActivity(ctx context.Context, userID string, limit int) ([]RecentActivity, error)

	TotalDuration(ctx context.Context, userID string, w Window) (int64, error)
	DurationByProject(ctx context.Context, userID string, w Window) ([]ProjectTotal, error)
	DurationByDomain(ctx context.Context, userID string, w Window, limit int) ([]DomainTotal, error)
	HeatmapRows(ctx context.Context, userID string, w Window) ([]HeatmapRow, error)
	TopPages(ctx context.Context, userID string, w Window, limit int) ([]PageTotal, error)
	PageSummary(ctx context.Context, userID, pageID string, w Window) (*PageSummary, error)
	PageDaily(ctx context.Context, userID, pageID string, w Window) ([]DailyTotal, error)
	PageActivity(ctx context.Context, userID string, w Window) ([]PageActivity, error)

	CreateUser(ctx context.Context, u *User) error
	GetUserByUsername(ctx context.Context, username string) (*User, error)
	GetUserByTokenHash(ctx context.Context, tokenHash string, usedAt time.Time) (*User, error)
	SetUserToken(ctx context.Context, userID, tokenHash string, at time.Time) error

	PruneBefore(ctx context.Context, cutoff time.Time, dryRun bool) (*PruneResult, error)
	PurgeAll(ctx context.Context) error
	GetStats(ctx context.Context) (*DBStats, error)
	Close() error
}

// SQLiteStore implements Store backed by a SQLite database.
type SQLiteStore struct {
	db *sql.DB

	// Prepared statements
	upsertPage     *sql.Stmt
	insertActivity *sql.Stmt
	getPage        *sql.Stmt
}

// NewSQLiteStore creates a new SQLiteStore from an already-opened and migrated database.
func NewSQLiteStore(db *sql.DB) (*SQLiteStore, error) {
	s := &SQLiteStore{db: db}

	if err := s.prepareStatements(); err != nil {
		return nil, fmt.Errorf("prepare statements: %w", err)
	}

	return s, nil
}

// OpenOptions tunes how Open configures the SQLite connection.
type OpenOptions struct {
	BusyTimeoutMS int
	JournalMode   string
}

// Open opens the SQLite database at path, creating its directory if needed,
// and applies all migrations. ":memory:" is pinned to one connection so every
// query sees the same database.
func Open(path string, opts OpenOptions) (*sql.DB, error) {
	if opts.BusyTimeoutMS <= 0 {
		opts.BusyTimeoutMS = 5000
	}

	inMemory := path == ":memory:"
	if !inMemory {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}

	dsn := fmt.Sprintf("%s?_foreign_keys=on&_busy_timeout=%d", path, opts.BusyTimeoutMS)
	db, err := sql.Open(DriverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if inMemory {
		db.SetMaxOpenConns(1)
	}

	if err := NewMigrationRunner(db).WithJournalMode(opts.JournalMode).Run(); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return db, nil
}

func (s *SQLiteStore) prepareStatements() error {
	var err error

	// A single statement keeps the find-or-create atomic: concurrent visits
	// to the same (user_id, url) collapse onto the unique index.
	s.upsertPage, err = s.db.Prepare(`
		INSERT INTO pages (id, user_id, url, domain, title, description, first_seen_at, last_seen_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (user_id, url) DO UPDATE SET
			title        = excluded.title,
			description  = excluded.description,
			domain       = excluded.domain,
			last_seen_at = excluded.last_seen_at
		RETURNING ` + pageColumnsBare)
	if err != nil {
		return err
	}

	s.insertActivity, err = s.db.Prepare(`
		INSERT INTO activity_logs (id, user_id, ts, duration, page_id, domain, project_id,
		                           source_type, source_device_name, source_client_id, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return err
	}

	s.getPage, err = s.db.Prepare(`SELECT ` + pageColumnsBare + ` FROM pages WHERE id = ? AND user_id = ?`)
	if err != nil {
		return err
	}

	return nil
}

// Close releases all prepared statements. The underlying *sql.DB is NOT
// closed; that is the caller's responsibility.
func (s *SQLiteStore) Close() error {
	stmts := []*sql.Stmt{s.upsertPage, s.insertActivity, s.getPage}
	for _, stmt := range stmts {
		if stmt != nil {
			stmt.Close()
		}
	}
	return nil
}

// timeLayout is fixed-width (millisecond precision, always UTC "Z") so stored
// timestamps compare correctly as strings.
const timeLayout = "2006-01-02T15:04:05.000Z07:00"

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

// parseTimestamp tries the stored layout first, then other common formats.
func parseTimestamp(s string) (time.Time, error) {
	formats := []string{
		timeLayout,
		time.RFC3339Nano,
		time.RFC3339,
		"2006-01-02 15:04:05",
	}
	for _, f := range formats {
		if t, err := time.Parse(f, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("cannot parse timestamp: %s", s)
}

func parseNullTime(ns sql.NullString) *time.Time {
	if !ns.Valid {
		return nil
	}
	t, err := parseTimestamp(ns.String)
	if err != nil {
		return nil
	}
	return &t
}

// ExtractDomain pulls the hostname from a URL string. Input that does not
// parse to a URL with a host falls back to the raw string.
func ExtractDomain(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Hostname() == "" {
		return rawURL
	}
	return u.Hostname()
}

func newID() string {
	return uuid.NewString()
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func stringPtr(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	v := ns.String
	return &v
}

// pageColumnsBare lists page columns without a table alias.
const pageColumnsBare = `id, user_id, url, domain, title, description, first_seen_at, last_seen_at,
	ai_productivity_label, ai_confidence, ai_embedding`

// pageColumns lists page columns qualified with the "p" alias.
const pageColumns = `p.id, p.user_id, p.url, p.domain, p.title, p.description, p.first_seen_at, p.last_seen_at,
	p.ai_productivity_label, p.ai_confidence, p.ai_embedding`

type rowScanner interface {
	Scan(dest ...any) error
}

// scanPage reads the page columns in pageColumns order, followed by any extra
// destinations.
func scanPage(row rowScanner, extra ...any) (*Page, error) {
	var p Page
	var description, label, embedding sql.NullString
	var confidence sql.NullFloat64
	var firstSeen, lastSeen string

	dest := []any{
		&p.ID, &p.UserID, &p.URL, &p.Domain, &p.Title, &description, &firstSeen, &lastSeen,
		&label, &confidence, &embedding,
	}
	dest = append(dest, extra...)

	if err := row.Scan(dest...); err != nil {
		return nil, err
	}

	p.Description = stringPtr(description)
	p.FirstSeenAt, _ = parseTimestamp(firstSeen)
	p.LastSeenAt, _ = parseTimestamp(lastSeen)
	p.AI.ProductivityLabel = stringPtr(label)
	if confidence.Valid {
		c := confidence.Float64
		p.AI.Confidence = &c
	}
	if embedding.Valid && embedding.String != "" {
		if err := json.Unmarshal([]byte(embedding.String), &p.AI.Embedding); err != nil {
			return nil, fmt.Errorf("decode embedding: %w", err)
		}
	}

	return &p, nil
}
