package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/runnerr0/dwell/internal/logger"
	"github.com/runnerr0/dwell/internal/storage"
	"github.com/runnerr0/dwell/internal/tracker"
)

var testNow = time.Date(2024, 1, 3, 12, 0, 0, 0, time.UTC)

type testServer struct {
	handler http.Handler
	token   string
}

func newTestServer(t *testing.T, cfg Config) *testServer {
	t.Helper()
	db, err := storage.Open(":memory:", storage.OpenOptions{})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	store, err := storage.NewSQLiteStore(db)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	svc := tracker.NewService(store, logger.NewNop(), tracker.WithClock(func() time.Time { return testNow }))
	_, token, err := svc.CreateUser(context.Background(), "alice")
	require.NoError(t, err)

	srv := NewServer(cfg, svc, tracker.NewTokenAuthenticator(store), logger.NewNop())
	return &testServer{handler: srv.Router(), token: token}
}

func (ts *testServer) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		switch b := body.(type) {
		case string:
			buf.WriteString(b)
		default:
			require.NoError(t, json.NewEncoder(&buf).Encode(b))
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Authorization", "Bearer "+ts.token)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	ts.handler.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func logBody(url string, duration float64, ts string) map[string]any {
	return map[string]any{"url": url, "title": "Title " + url, "duration": duration, "timestamp": ts}
}

func TestAuth(t *testing.T) {
	ts := newTestServer(t, Config{})

	req := httptest.NewRequest(http.MethodGet, "/api/status", nil)
	rec := httptest.NewRecorder()
	ts.handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/api/status", nil)
	req.Header.Set("Authorization", "Bearer nope")
	rec = httptest.NewRecorder()
	ts.handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	body := decode[errorBody](t, rec)
	assert.Equal(t, "UNAUTHORIZED", body.Error.Code)

	rec = ts.do(t, http.MethodGet, "/api/status", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	status := decode[map[string]any](t, rec)
	assert.Equal(t, "active", status["status"])
	assert.Equal(t, "alice", status["user"])
}

func TestCORSPreflightSkipsAuth(t *testing.T) {
	ts := newTestServer(t, Config{AllowedOrigins: []string{"chrome-extension://abc"}})

	req := httptest.NewRequest(http.MethodOptions, "/api/log", nil)
	req.Header.Set("Origin", "chrome-extension://abc")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	req.Header.Set("Access-Control-Request-Headers", "Authorization, Content-Type")
	rec := httptest.NewRecorder()
	ts.handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "chrome-extension://abc", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestLogAndStats(t *testing.T) {
	ts := newTestServer(t, Config{})

	rec := ts.do(t, http.MethodPost, "/api/log", logBody("https://a.com/x", 1800, "2024-01-01T10:00:00Z"))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	created := decode[map[string]any](t, rec)
	assert.Equal(t, true, created["success"])
	assert.NotEmpty(t, created["logId"])
	assert.NotEmpty(t, created["pageId"])
	assert.Nil(t, created["projectId"])

	rec = ts.do(t, http.MethodGet, "/api/stats", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	stats := decode[tracker.Stats](t, rec)
	assert.Equal(t, "week", stats.Range)
	assert.Equal(t, int64(1800), stats.Summary.TotalDuration)
	require.Len(t, stats.ByProject, 1)
	assert.Equal(t, "Uncategorized", stats.ByProject[0].ProjectName)
	require.Len(t, stats.Heatmap, 1)
	assert.Equal(t, 2, stats.Heatmap[0].DayOfWeek)

	rec = ts.do(t, http.MethodGet, "/api/stats?range=today", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	stats = decode[tracker.Stats](t, rec)
	assert.Equal(t, int64(0), stats.Summary.TotalDuration)

	rec = ts.do(t, http.MethodGet, "/api/stats?startDate=2024-01-01&endDate=2024-01-01", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	stats = decode[tracker.Stats](t, rec)
	assert.Empty(t, stats.Range)
	assert.Equal(t, int64(1800), stats.Summary.TotalDuration)

	// A malformed bound falls back to the default week.
	rec = ts.do(t, http.MethodGet, "/api/stats?startDate=garbage&endDate=2024-01-02", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	stats = decode[tracker.Stats](t, rec)
	assert.Equal(t, "week", stats.Range)
	assert.Equal(t, int64(1800), stats.Summary.TotalDuration)
}

func TestLog_Validation(t *testing.T) {
	ts := newTestServer(t, Config{})

	rec := ts.do(t, http.MethodPost, "/api/log", logBody("https://a.com", -5, "2024-01-01T10:00:00Z"))
	require.Equal(t, http.StatusBadRequest, rec.Code)
	body := decode[errorBody](t, rec)
	assert.Equal(t, "VALIDATION_ERROR", body.Error.Code)
	assert.Equal(t, "duration", body.Error.Field)

	rec = ts.do(t, http.MethodPost, "/api/log", "{not json")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = ts.do(t, http.MethodPost, "/api/log", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestLog_BodyTooLarge(t *testing.T) {
	ts := newTestServer(t, Config{MaxRequestSize: 64})

	rec := ts.do(t, http.MethodPost, "/api/log", logBody("https://a.com/"+strings.Repeat("x", 200), 1, "2024-01-01T10:00:00Z"))
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
}

func TestPages(t *testing.T) {
	ts := newTestServer(t, Config{})

	for _, b := range []map[string]any{
		logBody("https://go.dev", 100, "2024-01-02T10:00:00Z"),
		logBody("https://rust-lang.org", 500, "2024-01-02T10:00:00Z"),
		logBody("https://go.dev", 100, "2024-01-02T11:00:00Z"),
	} {
		require.Equal(t, http.StatusCreated, ts.do(t, http.MethodPost, "/api/log", b).Code)
	}

	rec := ts.do(t, http.MethodGet, "/api/pages?sortBy=totalDuration&sortOrder=desc&limit=1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	list := decode[tracker.PageListResult](t, rec)
	require.Len(t, list.Pages, 1)
	assert.Equal(t, "https://rust-lang.org", list.Pages[0].URL)
	assert.Equal(t, tracker.Pagination{Page: 1, Limit: 1, Total: 2, TotalPages: 2}, list.Pagination)

	rec = ts.do(t, http.MethodGet, "/api/pages?q=GO.DEV", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	list = decode[tracker.PageListResult](t, rec)
	require.Len(t, list.Pages, 1)
	assert.Equal(t, int64(200), list.Pages[0].TotalDuration)
	assert.Equal(t, "GO.DEV", list.Query)

	pageID := list.Pages[0].ID
	rec = ts.do(t, http.MethodGet, "/api/pages/"+pageID+"/stats", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	stats := decode[tracker.PageStatsResult](t, rec)
	assert.Equal(t, tracker.PageSummary{TotalDuration: 200, Count: 2}, stats.Summary)
	assert.Equal(t, []tracker.DailyTotal{{Date: "2024-01-02", Duration: 200}}, stats.Daily)

	rec = ts.do(t, http.MethodGet, "/api/pages/"+pageID+"/stats?startDate=2024-01-02&endDate=nope", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	stats = decode[tracker.PageStatsResult](t, rec)
	assert.Equal(t, int64(200), stats.Summary.TotalDuration)
	assert.Equal(t, time.Date(2023, 12, 4, 0, 0, 0, 0, time.UTC), stats.Window.Start)

	rec = ts.do(t, http.MethodGet, "/api/pages/unknown/stats", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestActivity(t *testing.T) {
	ts := newTestServer(t, Config{})

	require.Equal(t, http.StatusCreated, ts.do(t, http.MethodPost, "/api/log", logBody("https://a.com", 60, "2024-01-03T09:00:00Z")).Code)
	require.Equal(t, http.StatusCreated, ts.do(t, http.MethodPost, "/api/log", logBody("https://b.com", 60, "2023-12-30T09:00:00Z")).Code)

	rec := ts.do(t, http.MethodGet, "/api/activity/recent?limit=1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	recent := decode[map[string][]tracker.ActivityEntry](t, rec)
	require.Len(t, recent["activity"], 1)
	assert.Equal(t, "a.com", recent["activity"][0].Domain)

	rec = ts.do(t, http.MethodGet, "/api/activity/today", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	today := decode[tracker.ActivityReport](t, rec)
	assert.Len(t, today.Pages, 1)

	rec = ts.do(t, http.MethodGet, "/api/activity/week", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	week := decode[tracker.ActivityReport](t, rec)
	assert.Len(t, week.Pages, 2)
}

func TestProjects(t *testing.T) {
	ts := newTestServer(t, Config{})

	rec := ts.do(t, http.MethodPost, "/api/projects", map[string]any{"name": "Work"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = ts.do(t, http.MethodPost, "/api/projects", map[string]any{
		"name": "Work", "color": "#ff0000",
		"rules": []map[string]string{{"type": "domain", "value": "github.com"}},
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	created := decode[struct {
		Project tracker.ProjectView `json:"project"`
	}](t, rec)
	id := created.Project.ID

	rec = ts.do(t, http.MethodPatch, "/api/projects/"+id, map[string]any{
		"addRule": map[string]string{"type": "url_contains", "value": "/pull/"},
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = ts.do(t, http.MethodPatch, "/api/projects/"+id, map[string]any{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = ts.do(t, http.MethodPost, "/api/log", logBody("https://github.com/o/r", 30, "2024-01-03T09:00:00Z"))
	require.Equal(t, http.StatusCreated, rec.Code)
	logged := decode[map[string]any](t, rec)
	assert.Equal(t, id, logged["projectId"])

	rec = ts.do(t, http.MethodGet, "/api/projects/"+id, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	got := decode[struct {
		Project tracker.ProjectView `json:"project"`
	}](t, rec)
	assert.Len(t, got.Project.Rules, 2)

	rec = ts.do(t, http.MethodGet, "/api/projects", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	list := decode[map[string][]tracker.ProjectView](t, rec)
	assert.Len(t, list["projects"], 1)

	assert.Equal(t, http.StatusOK, ts.do(t, http.MethodDelete, "/api/projects/"+id, nil).Code)
	assert.Equal(t, http.StatusNotFound, ts.do(t, http.MethodDelete, "/api/projects/"+id, nil).Code)
	assert.Equal(t, http.StatusNotFound, ts.do(t, http.MethodGet, "/api/projects/"+id, nil).Code)
}

func TestHealth(t *testing.T) {
	ts := newTestServer(t, Config{})

	rec := ts.do(t, http.MethodPost, "/api/health", map[string]any{
		"extensionVersion": "1.0.0", "platform": "linux", "arch": "x64", "errorsEncountered": 0, "timestamp": "2024-01-01T00:00:00Z",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = ts.do(t, http.MethodPost, "/api/health", map[string]any{"extensionVersion": "1.0.0"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
