package api

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/runnerr0/dwell/internal/storage"
	"github.com/runnerr0/dwell/internal/tracker"
)

func (s *Server) handleLog(w http.ResponseWriter, r *http.Request) {
	var p tracker.LogPayload
	if !s.decodeJSON(w, r, &p) {
		return
	}
	res, err := s.svc.Ingest(r.Context(), userFrom(r.Context()).ID, p)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, struct {
		Success bool `json:"success"`
		*tracker.IngestResult
	}{true, res})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	var p tracker.HealthPayload
	if !s.decodeJSON(w, r, &p) {
		return
	}
	if err := s.svc.RecordHealth(userFrom(r.Context()).ID, p); err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success":   true,
		"message":   "Health telemetry received",
		"timestamp": s.svc.Now(),
	})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "active",
		"user":      userFrom(r.Context()).Username,
		"timestamp": s.svc.Now(),
	})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	start, end := s.svc.ParseBounds(q.Get("startDate"), q.Get("endDate"))
	win, rangeName := tracker.ResolveWindow(q.Get("range"), start, end, s.svc.Now())

	stats, err := s.svc.Stats(r.Context(), userFrom(r.Context()).ID, win)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	stats.Range = rangeName
	writeJSON(w, http.StatusOK, stats)
}

func (s *Server) handleListPages(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	params := tracker.ListParams{
		Page:      atoiDefault(q.Get("page"), 1),
		Limit:     atoiDefault(q.Get("limit"), tracker.DefaultPageLimit),
		SortBy:    q.Get("sortBy"),
		SortOrder: q.Get("sortOrder"),
	}
	userID := userFrom(r.Context()).ID

	var (
		res *tracker.PageListResult
		err error
	)
	if query := q.Get("q"); query != "" {
		res, err = s.svc.SearchPages(r.Context(), userID, query, params)
	} else {
		res, err = s.svc.ListPages(r.Context(), userID, params)
	}
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handlePageStats(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	start, end := s.svc.ParseBounds(q.Get("startDate"), q.Get("endDate"))

	win := tracker.TrailingDays(tracker.DefaultPageStatsDays, s.svc.Now())
	if start != nil && end != nil && !start.After(*end) {
		win = storage.Window{Start: *start, End: *end}
	}

	res, err := s.svc.PageStats(r.Context(), userFrom(r.Context()).ID, chi.URLParam(r, "id"), win)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleRecentActivity(w http.ResponseWriter, r *http.Request) {
	limit := atoiDefault(r.URL.Query().Get("limit"), tracker.DefaultRecentLimit)
	entries, err := s.svc.RecentActivity(r.Context(), userFrom(r.Context()).ID, limit)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"activity": entries})
}

func (s *Server) handleTodaysActivity(w http.ResponseWriter, r *http.Request) {
	report, err := s.svc.TodaysActivity(r.Context(), userFrom(r.Context()).ID)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func (s *Server) handleWeekActivity(w http.ResponseWriter, r *http.Request) {
	report, err := s.svc.WeekActivity(r.Context(), userFrom(r.Context()).ID)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func (s *Server) handleListProjects(w http.ResponseWriter, r *http.Request) {
	projects, err := s.svc.ListProjects(r.Context(), userFrom(r.Context()).ID)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"projects": projects})
}

func (s *Server) handleCreateProject(w http.ResponseWriter, r *http.Request) {
	var in tracker.ProjectInput
	if !s.decodeJSON(w, r, &in) {
		return
	}
	p, err := s.svc.CreateProject(r.Context(), userFrom(r.Context()).ID, in)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"success": true, "project": p})
}

func (s *Server) handleGetProject(w http.ResponseWriter, r *http.Request) {
	p, err := s.svc.GetProject(r.Context(), userFrom(r.Context()).ID, chi.URLParam(r, "id"))
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"project": p})
}

func (s *Server) handleUpdateProject(w http.ResponseWriter, r *http.Request) {
	var u tracker.ProjectUpdate
	if !s.decodeJSON(w, r, &u) {
		return
	}
	p, err := s.svc.UpdateProject(r.Context(), userFrom(r.Context()).ID, chi.URLParam(r, "id"), u)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "project": p})
}

func (s *Server) handleDeleteProject(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.DeleteProject(r.Context(), userFrom(r.Context()).ID, chi.URLParam(r, "id")); err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "message": "Project deleted"})
}

func atoiDefault(s string, def int) int {
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return n
}
