package tracker

import (
	"time"

	"github.com/runnerr0/dwell/internal/logger"
	"github.com/runnerr0/dwell/internal/storage"
)

// Range presets accepted by ResolveWindow.
const (
	RangeToday = "today"
	RangeWeek  = "week"
	RangeMonth = "month"
)

// DefaultPageStatsDays is the trailing window for page stats without bounds.
const DefaultPageStatsDays = 30

// ResolveWindow turns a preset name or explicit bounds into an inclusive
// window. Explicit bounds win when both are set and start <= end. Anything
// else, including an unknown preset, falls back to the week preset. Day
// boundaries are UTC midnights.
func ResolveWindow(rangeName string, start, end *time.Time, now time.Time) (storage.Window, string) {
	now = now.UTC()
	if start != nil && end != nil && !start.After(*end) {
		return storage.Window{Start: start.UTC(), End: end.UTC()}, ""
	}

	today := startOfDay(now)
	switch rangeName {
	case RangeToday:
		return storage.Window{Start: today, End: now}, RangeToday
	case RangeMonth:
		return storage.Window{Start: today.AddDate(0, -1, 0), End: now}, RangeMonth
	default:
		return storage.Window{Start: today.AddDate(0, 0, -7), End: now}, RangeWeek
	}
}

// TrailingDays is the window from midnight `days` days ago up to now.
func TrailingDays(days int, now time.Time) storage.Window {
	now = now.UTC()
	return storage.Window{Start: startOfDay(now).AddDate(0, 0, -days), End: now}
}

// CalendarDay covers the whole UTC day containing now.
func CalendarDay(now time.Time) storage.Window {
	start := startOfDay(now.UTC())
	return storage.Window{Start: start, End: endOfDay(start)}
}

// LastSevenDays covers today and the six UTC days before it.
func LastSevenDays(now time.Time) storage.Window {
	start := startOfDay(now.UTC())
	return storage.Window{Start: start.AddDate(0, 0, -6), End: endOfDay(start)}
}

// ParseDate accepts RFC 3339 or a bare YYYY-MM-DD. A bare end date is
// extended to the last millisecond of that day. Sub-millisecond precision is
// dropped, matching how timestamps are stored.
func ParseDate(s string, isEnd bool) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t.UTC().Truncate(time.Millisecond), nil
	}
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return time.Time{}, invalid("date", "expected RFC 3339 or YYYY-MM-DD, got "+s)
	}
	if isEnd {
		return endOfDay(t), nil
	}
	return t, nil
}

// ParseBounds parses optional start and end dates. A malformed bound is
// logged and treated as absent, so the caller's default window applies.
func (s *Service) ParseBounds(startRaw, endRaw string) (start, end *time.Time) {
	parse := func(name, raw string, isEnd bool) *time.Time {
		if raw == "" {
			return nil
		}
		t, err := ParseDate(raw, isEnd)
		if err != nil {
			s.log.Warn("Ignoring malformed date bound",
				logger.String("bound", name),
				logger.String("value", raw),
			)
			return nil
		}
		return &t
	}
	return parse("start", startRaw, false), parse("end", endRaw, true)
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func endOfDay(t time.Time) time.Time {
	return startOfDay(t).Add(24*time.Hour - time.Millisecond)
}
