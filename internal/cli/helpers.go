package cli

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/runnerr0/dwell/internal/config"
	"github.com/runnerr0/dwell/internal/logger"
	"github.com/runnerr0/dwell/internal/storage"
	"github.com/runnerr0/dwell/internal/tracker"
)

// runtime is everything a command needs once config and the database are
// open. Tests build one around an in-memory store.
type runtime struct {
	cfg    *config.Config
	dbPath string
	db     *sql.DB
	store  *storage.SQLiteStore
	svc    *tracker.Service
	log    logger.Logger
}

// openRuntime loads config, applies override, opens and migrates the
// database and builds the tracker service. Logging is silent unless logging
// or --verbose is set.
func openRuntime(g *GlobalFlags, logging bool, override func(*config.Config)) (*runtime, error) {
	cfg, err := config.LoadOrCreate(g.Config)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if override != nil {
		override(cfg)
	}

	log := logger.NewNop()
	if logging || g.Verbose {
		log, err = logger.New(cfg.Logging)
		if err != nil {
			return nil, fmt.Errorf("create logger: %w", err)
		}
	}

	dbPath, err := cfg.DBPath()
	if err != nil {
		return nil, err
	}

	db, err := storage.Open(dbPath, storage.OpenOptions{
		BusyTimeoutMS: cfg.Storage.BusyTimeoutMS,
		JournalMode:   cfg.Storage.JournalMode,
	})
	if err != nil {
		return nil, err
	}

	store, err := storage.NewSQLiteStore(db)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("init store: %w", err)
	}

	svc := tracker.NewService(store, log, tracker.WithRecentLimit(cfg.Stats.RecentLimit))
	return &runtime{cfg: cfg, dbPath: dbPath, db: db, store: store, svc: svc, log: log}, nil
}

func (rt *runtime) Close() {
	rt.store.Close()
	rt.db.Close()
	_ = rt.log.Sync()
}

// withRuntime opens a runtime for the duration of fn.
func withRuntime(g *GlobalFlags, fn func(*runtime) error) error {
	rt, err := openRuntime(g, false, nil)
	if err != nil {
		return err
	}
	defer rt.Close()
	return fn(rt)
}

// userID resolves the --user flag to a user id.
func (rt *runtime) userID(ctx context.Context, g *GlobalFlags) (string, error) {
	name := "default"
	if g != nil && g.User != "" {
		name = g.User
	}
	u, err := rt.svc.ResolveUser(ctx, name)
	if err != nil {
		if errors.Is(err, tracker.ErrNotFound) {
			return "", fmt.Errorf("user %q does not exist (create it with: dwell user create %s)", name, name)
		}
		return "", err
	}
	return u.ID, nil
}

func wantJSON(g *GlobalFlags) bool {
	return g != nil && g.JSON
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// parseRule parses a "type=value" rule argument.
func parseRule(s string) (storage.ProjectRule, error) {
	kind, value, ok := strings.Cut(s, "=")
	if !ok {
		return storage.ProjectRule{}, fmt.Errorf("invalid rule %q: expected type=value", s)
	}
	return storage.ProjectRule{Type: storage.RuleType(strings.TrimSpace(kind)), Value: strings.TrimSpace(value)}, nil
}

func parseRules(args []string) ([]storage.ProjectRule, error) {
	out := make([]storage.ProjectRule, 0, len(args))
	for _, a := range args {
		r, err := parseRule(a)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, nil
}

// parseDuration parses a human-friendly duration string like "30d", "7d", "24h", "2w".
func parseDuration(s string) (time.Duration, error) {
	if s == "" {
		return 0, fmt.Errorf("invalid duration: empty string")
	}

	if len(s) < 2 {
		return 0, fmt.Errorf("invalid duration: %q", s)
	}

	suffix := s[len(s)-1]
	numStr := s[:len(s)-1]

	n, err := strconv.Atoi(numStr)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("invalid duration: %q", s)
	}

	switch suffix {
	case 'd':
		return time.Duration(n) * 24 * time.Hour, nil
	case 'h':
		return time.Duration(n) * time.Hour, nil
	case 'w':
		return time.Duration(n) * 7 * 24 * time.Hour, nil
	case 'm':
		return time.Duration(n) * time.Minute, nil
	default:
		return 0, fmt.Errorf("invalid duration: %q (use d, h, w, or m suffix)", s)
	}
}

// formatDurationHuman formats a duration into a human-readable string like "30 days".
func formatDurationHuman(d time.Duration) string {
	days := int(d.Hours() / 24)
	if days > 0 {
		if days == 1 {
			return "1 day"
		}
		return fmt.Sprintf("%d days", days)
	}
	hours := int(d.Hours())
	if hours > 0 {
		if hours == 1 {
			return "1 hour"
		}
		return fmt.Sprintf("%d hours", hours)
	}
	return d.String()
}

// formatNumber formats an int64 with comma separators.
func formatNumber(n int64) string {
	s := strconv.FormatInt(n, 10)
	if len(s) <= 3 {
		return s
	}

	var result strings.Builder
	remainder := len(s) % 3
	if remainder > 0 {
		result.WriteString(s[:remainder])
	}
	for i := remainder; i < len(s); i += 3 {
		if i > 0 {
			result.WriteString(",")
		}
		result.WriteString(s[i : i+3])
	}
	return result.String()
}

// formatBytes formats a byte count into a human-readable string.
func formatBytes(b int64) string {
	switch {
	case b >= 1<<30:
		return fmt.Sprintf("%.1f GB", float64(b)/float64(1<<30))
	case b >= 1<<20:
		return fmt.Sprintf("%.1f MB", float64(b)/float64(1<<20))
	case b >= 1<<10:
		return fmt.Sprintf("%.1f KB", float64(b)/float64(1<<10))
	default:
		return fmt.Sprintf("%d B", b)
	}
}

func stringOr(p *string, fallback string) string {
	if p == nil {
		return fallback
	}
	return *p
}
