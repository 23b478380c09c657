package cli

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	goflags "github.com/jessevdk/go-flags"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVersionFlag(t *testing.T) {
	output := captureOutput(t, func() {
		assert.NoError(t, RunWithArgs("1.2.3", []string{"--version"}))
	})
	assert.Equal(t, "dwell 1.2.3", strings.TrimSpace(output))
}

func TestSubcommandsRecognized(t *testing.T) {
	tests := [][]string{
		{"serve", "--port", "9000"},
		{"log", "--url", "https://example.com", "--title", "Example", "--duration", "30"},
		{"pages", "--sort-by", "totalDuration"},
		{"search", "golang", "generics"},
		{"page-stats", "some-page-id"},
		{"stats", "--range", "month"},
		{"recent", "--limit", "5"},
		{"activity", "today"},
		{"project", "list"},
		{"project", "create", "--name", "Work", "--color", "#fff", "--rule", "domain=github.com"},
		{"project", "show", "p1"},
		{"project", "update", "p1", "--name", "Home"},
		{"project", "add-rule", "p1", "url_contains=/docs/"},
		{"project", "remove-rule", "p1", "0"},
		{"project", "set-rules", "p1"},
		{"project", "delete", "p1"},
		{"user", "create", "alice"},
		{"user", "rotate-token", "alice"},
		{"prune", "--dry-run", "--older-than", "30d"},
		{"purge", "--all", "--force"},
		{"status"},
	}
	for _, args := range tests {
		t.Run(strings.Join(args, " "), func(t *testing.T) {
			parser, _, _ := buildParser("test")
			parser.CommandHandler = func(goflags.Commander, []string) error { return nil }
			_, err := parser.ParseArgs(args)
			assert.NoError(t, err)
		})
	}
}

func TestProjectRequiresSubcommand(t *testing.T) {
	parser, _, _ := buildParser("test")
	_, err := parser.ParseArgs([]string{"project"})
	assert.Error(t, err)
}

func TestGlobalFlagsParsed(t *testing.T) {
	parser, globals, _ := buildParser("test")
	parser.CommandHandler = func(goflags.Commander, []string) error { return nil }
	_, err := parser.ParseArgs([]string{"--json", "--user", "alice", "--config", "/tmp/x.yaml", "status"})
	require.NoError(t, err)
	assert.True(t, globals.JSON)
	assert.Equal(t, "alice", globals.User)
	assert.Equal(t, "/tmp/x.yaml", globals.Config)
}

func TestParseDuration(t *testing.T) {
	tests := []struct {
		in   string
		want time.Duration
	}{
		{"30d", 30 * 24 * time.Hour},
		{"24h", 24 * time.Hour},
		{"2w", 14 * 24 * time.Hour},
		{"90m", 90 * time.Minute},
	}
	for _, tt := range tests {
		got, err := parseDuration(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got)
	}

	for _, bad := range []string{"", "d", "10", "10y", "-5d", "abcd"} {
		_, err := parseDuration(bad)
		assert.Error(t, err, bad)
	}
}

func TestFormatNumber(t *testing.T) {
	assert.Equal(t, "0", formatNumber(0))
	assert.Equal(t, "999", formatNumber(999))
	assert.Equal(t, "1,000", formatNumber(1000))
	assert.Equal(t, "123,456", formatNumber(123456))
	assert.Equal(t, "1,234,567", formatNumber(1234567))
}

func TestParseRule(t *testing.T) {
	r, err := parseRule("domain = github.com")
	require.NoError(t, err)
	assert.Equal(t, "domain", string(r.Type))
	assert.Equal(t, "github.com", r.Value)

	r, err = parseRule("url_contains=a=b")
	require.NoError(t, err)
	assert.Equal(t, "a=b", r.Value)

	_, err = parseRule("github.com")
	assert.Error(t, err)
}

func TestOpenRuntime_UsesConfigFile(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "config.yaml")
	dataDir := filepath.Join(dir, "data")
	require.NoError(t, os.WriteFile(cfgPath, []byte("storage:\n  path: "+dataDir+"\n  sqlite_file: test.db\n"), 0644))

	rt, err := openRuntime(&GlobalFlags{Config: cfgPath}, false, nil)
	require.NoError(t, err)
	defer rt.Close()

	assert.Equal(t, filepath.Join(dataDir, "test.db"), rt.dbPath)
	_, err = os.Stat(rt.dbPath)
	assert.NoError(t, err)
}
