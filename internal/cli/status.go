package cli

import (
	"context"
	"database/sql"
	"fmt"
	"net"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/runnerr0/dwell/internal/storage"
)

// statusJSON is the JSON output structure for the status command.
type statusJSON struct {
	Version           string `json:"version"`
	DatabasePath      string `json:"database_path"`
	DatabaseSizeBytes int64  `json:"database_size_bytes"`
	SchemaVersion     int    `json:"schema_version"`
	Users             int64  `json:"users"`
	Pages             int64  `json:"pages"`
	Projects          int64  `json:"projects"`
	ActivityLogs      int64  `json:"activity_logs"`
	OldestEvent       string `json:"oldest_event,omitempty"`
	NewestEvent       string `json:"newest_event,omitempty"`
	RetentionDays     int    `json:"retention_days"`
	ListenAddr        string `json:"listen_addr"`
	DaemonRunning     bool   `json:"daemon_running"`
}

// Execute implements the go-flags Commander interface for StatusCommand.
func (c *StatusCommand) Execute(args []string) error {
	return withRuntime(c.globals, func(rt *runtime) error {
		return c.executeWith(context.Background(), rt)
	})
}

func (c *StatusCommand) executeWith(ctx context.Context, rt *runtime) error {
	stats, err := rt.svc.DatabaseStats(ctx)
	if err != nil {
		return fmt.Errorf("get stats: %w", err)
	}

	schema, err := storage.SchemaVersion(ctx, rt.db)
	if err != nil {
		return err
	}

	addr := net.JoinHostPort(rt.cfg.Server.Host, strconv.Itoa(rt.cfg.Server.Port))
	out := statusJSON{
		Version:           c.version,
		DatabasePath:      rt.dbPath,
		DatabaseSizeBytes: getDatabaseSize(rt.db, rt.dbPath),
		SchemaVersion:     schema,
		Users:             stats.Users,
		Pages:             stats.Pages,
		Projects:          stats.Projects,
		ActivityLogs:      stats.ActivityLogs,
		RetentionDays:     rt.cfg.Retention.Days,
		ListenAddr:        addr,
		DaemonRunning:     checkDaemon(addr),
	}
	if stats.ActivityLogs > 0 {
		out.OldestEvent = stats.OldestEvent.UTC().Format(time.RFC3339)
		out.NewestEvent = stats.NewestEvent.UTC().Format(time.RFC3339)
	}

	if wantJSON(c.globals) {
		return printJSON(out)
	}
	printStatusHuman(out, stats)
	return nil
}

func printStatusHuman(out statusJSON, stats *storage.DBStats) {
	fmt.Println("dwell Status")
	fmt.Println("============")
	fmt.Printf("Version:       %s\n", out.Version)
	fmt.Printf("Database:      %s (%s)\n", out.DatabasePath, formatBytes(out.DatabaseSizeBytes))
	fmt.Printf("Schema:        v%d\n", out.SchemaVersion)
	fmt.Printf("Users:         %s\n", formatNumber(out.Users))
	fmt.Printf("Pages:         %s\n", formatNumber(out.Pages))
	fmt.Printf("Projects:      %s\n", formatNumber(out.Projects))
	fmt.Printf("Activity logs: %s\n", formatNumber(out.ActivityLogs))

	if stats.ActivityLogs > 0 {
		fmt.Printf("Oldest:        %s\n", stats.OldestEvent.Local().Format("2006-01-02"))
		fmt.Printf("Newest:        %s\n", stats.NewestEvent.Local().Format("2006-01-02"))
	}

	fmt.Printf("Retention:     %d days\n", out.RetentionDays)
	fmt.Println()
	if out.DaemonRunning {
		fmt.Printf("Daemon:        running on %s\n", out.ListenAddr)
	} else {
		fmt.Printf("Daemon:        not running (%s)\n", out.ListenAddr)
	}
}

// getDatabaseSize returns the database file size in bytes.
// For on-disk databases, it uses os.Stat. For in-memory databases,
// it queries page_count * page_size.
func getDatabaseSize(db *sql.DB, dbPath string) int64 {
	if info, err := os.Stat(dbPath); err == nil {
		return info.Size()
	}

	var pageCount, pageSize int64
	if err := db.QueryRow("PRAGMA page_count").Scan(&pageCount); err != nil {
		return 0
	}
	if err := db.QueryRow("PRAGMA page_size").Scan(&pageSize); err != nil {
		return 0
	}
	return pageCount * pageSize
}

// checkDaemon reports whether something answers HTTP on addr within one
// second. Any response, including 401 from /api/status, counts.
func checkDaemon(addr string) bool {
	client := &http.Client{Timeout: 1 * time.Second}
	resp, err := client.Get("http://" + addr + "/api/status")
	if err != nil {
		return false
	}
	resp.Body.Close()
	return true
}
