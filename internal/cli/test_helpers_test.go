package cli

import (
	"bytes"
	"context"
	"io"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/runnerr0/dwell/internal/config"
	"github.com/runnerr0/dwell/internal/logger"
	"github.com/runnerr0/dwell/internal/storage"
	"github.com/runnerr0/dwell/internal/tracker"
)

// Wednesday, 3 January 2024, noon UTC.
var testNow = time.Date(2024, 1, 3, 12, 0, 0, 0, time.UTC)

// captureOutput captures stdout during fn execution and returns it as a string.
func captureOutput(t *testing.T, fn func()) string {
	t.Helper()
	old := os.Stdout
	r, w, err := os.Pipe()
	require.NoError(t, err)
	os.Stdout = w

	fn()

	w.Close()
	os.Stdout = old

	var buf bytes.Buffer
	_, _ = io.Copy(&buf, r)
	return buf.String()
}

// newTestRuntime builds a runtime over an in-memory database with a fixed
// clock and a user named "default".
func newTestRuntime(t *testing.T) *runtime {
	t.Helper()
	db, err := storage.Open(":memory:", storage.OpenOptions{})
	require.NoError(t, err)

	store, err := storage.NewSQLiteStore(db)
	require.NoError(t, err)

	log := logger.NewNop()
	svc := tracker.NewService(store, log, tracker.WithClock(func() time.Time { return testNow }))
	_, _, err = svc.CreateUser(context.Background(), "default")
	require.NoError(t, err)

	rt := &runtime{cfg: config.DefaultConfig(), dbPath: ":memory:", db: db, store: store, svc: svc, log: log}
	t.Cleanup(rt.Close)
	return rt
}

// logVisit records a visit through LogCommand.
func logVisit(t *testing.T, rt *runtime, url string, seconds float64, at string) {
	t.Helper()
	cmd := &LogCommand{URL: url, Title: "Title of " + url, Duration: seconds, At: at, globals: &GlobalFlags{}}
	captureOutput(t, func() {
		require.NoError(t, cmd.executeWith(context.Background(), rt))
	})
}
