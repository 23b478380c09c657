package tracker

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/runnerr0/dwell/internal/logger"
	"github.com/runnerr0/dwell/internal/storage"
)

func TestResolveWindow(t *testing.T) {
	now := time.Date(2024, 3, 15, 13, 30, 0, 0, time.UTC)
	midnight := time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)

	w, name := ResolveWindow("today", nil, nil, now)
	assert.Equal(t, RangeToday, name)
	assert.Equal(t, midnight, w.Start)
	assert.Equal(t, now, w.End)

	w, name = ResolveWindow("month", nil, nil, now)
	assert.Equal(t, RangeMonth, name)
	assert.Equal(t, time.Date(2024, 2, 15, 0, 0, 0, 0, time.UTC), w.Start)

	for _, r := range []string{"", "week", "fortnight"} {
		w, name = ResolveWindow(r, nil, nil, now)
		assert.Equal(t, RangeWeek, name, "range %q", r)
		assert.Equal(t, time.Date(2024, 3, 8, 0, 0, 0, 0, time.UTC), w.Start)
		assert.Equal(t, now, w.End)
	}

	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC)
	w, name = ResolveWindow("today", &start, &end, now)
	assert.Empty(t, name)
	assert.Equal(t, start, w.Start)
	assert.Equal(t, end, w.End)

	// Inverted or half-specified bounds fall back to the week preset.
	_, name = ResolveWindow("", &end, &start, now)
	assert.Equal(t, RangeWeek, name)
	_, name = ResolveWindow("", &start, nil, now)
	assert.Equal(t, RangeWeek, name)
}

func TestFixedWindows(t *testing.T) {
	now := time.Date(2024, 3, 15, 13, 30, 0, 0, time.UTC)

	day := CalendarDay(now)
	assert.Equal(t, time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC), day.Start)
	assert.Equal(t, time.Date(2024, 3, 15, 23, 59, 59, int(999*time.Millisecond), time.UTC), day.End)

	week := LastSevenDays(now)
	assert.Equal(t, time.Date(2024, 3, 9, 0, 0, 0, 0, time.UTC), week.Start)
	assert.Equal(t, day.End, week.End)

	trailing := TrailingDays(30, now)
	assert.Equal(t, time.Date(2024, 2, 14, 0, 0, 0, 0, time.UTC), trailing.Start)
}

func TestParseDate(t *testing.T) {
	got, err := ParseDate("2024-01-05", false)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC), got)

	got, err = ParseDate("2024-01-05", true)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 1, 5, 23, 59, 59, int(999*time.Millisecond), time.UTC), got)

	got, err = ParseDate("2024-01-05T10:00:00+02:00", true)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 1, 5, 8, 0, 0, 0, time.UTC), got)

	got, err = ParseDate("2024-01-05T10:00:00.0005Z", false)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 1, 5, 10, 0, 0, 0, time.UTC), got)

	_, err = ParseDate("last tuesday", false)
	assert.ErrorIs(t, err, ErrValidation)
}

func TestParseBounds_MalformedBoundIsDropped(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	svc := NewService(openStore(t), logger.Wrap(zap.New(core)), WithClock(func() time.Time { return testNow }))

	start, end := svc.ParseBounds("garbage", "2024-01-02")
	assert.Nil(t, start)
	require.NotNil(t, end)
	assert.Equal(t, time.Date(2024, 1, 2, 23, 59, 59, int(999*time.Millisecond), time.UTC), *end)

	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	assert.Equal(t, "Ignoring malformed date bound", entry.Message)
	assert.Equal(t, "garbage", entry.ContextMap()["value"])

	// With a bound missing the default week applies instead of an error.
	w, name := ResolveWindow("", start, end, testNow)
	assert.Equal(t, RangeWeek, name)
	assert.Equal(t, time.Date(2023, 12, 27, 0, 0, 0, 0, time.UTC), w.Start)

	start, end = svc.ParseBounds("", "")
	assert.Nil(t, start)
	assert.Nil(t, end)
	assert.Equal(t, 1, logs.Len())
}

func TestWindowBoundsAndEventsShareMillisecondPrecision(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Ingest(ctx, "u1", payload("https://a.com", 60, "2024-01-02T10:00:00.0001Z"))
	require.NoError(t, err)
	_, err = svc.Ingest(ctx, "u1", payload("https://b.com", 30, "2024-01-02T09:59:59.9999Z"))
	require.NoError(t, err)

	start, err := ParseDate("2024-01-02T10:00:00.0005Z", false)
	require.NoError(t, err)
	end, err := ParseDate("2024-01-02T11:00:00Z", true)
	require.NoError(t, err)

	stats, err := svc.Stats(ctx, "u1", storage.Window{Start: start, End: end})
	require.NoError(t, err)
	assert.Equal(t, int64(60), stats.Summary.TotalDuration)

	// Stored instants are truncated the same way as the bounds.
	require.Len(t, stats.RecentActivity, 2)
	assert.Equal(t, time.Date(2024, 1, 2, 10, 0, 0, 0, time.UTC), stats.RecentActivity[0].Timestamp)
	assert.Equal(t, time.Date(2024, 1, 2, 9, 59, 59, int(999*time.Millisecond), time.UTC), stats.RecentActivity[1].Timestamp)
}

func TestFormatDuration(t *testing.T) {
	tests := map[int64]string{
		0:     "0m",
		59:    "0m",
		300:   "5m",
		3599:  "59m",
		3600:  "1h 0m",
		5400:  "1h 30m",
		90061: "25h 1m",
		-5:    "0m",
	}
	for in, want := range tests {
		assert.Equal(t, want, FormatDuration(in), "FormatDuration(%d)", in)
	}
}
