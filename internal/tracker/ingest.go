package tracker

import (
	"context"
	"fmt"
	"math"
	"net/url"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/runnerr0/dwell/internal/logger"
	"github.com/runnerr0/dwell/internal/rules"
	"github.com/runnerr0/dwell/internal/storage"
)

// LogPayload is one visit reported by a client. Duration is in seconds.
type LogPayload struct {
	URL         string         `json:"url"`
	Title       string         `json:"title"`
	Duration    *float64       `json:"duration"`
	Timestamp   string         `json:"timestamp"`
	Description *string        `json:"description,omitempty"`
	Source      *SourcePayload `json:"source,omitempty"`
}

// SourcePayload describes the reporting client.
type SourcePayload struct {
	Type       string  `json:"type,omitempty"`
	DeviceName *string `json:"deviceName,omitempty"`
	ClientID   *string `json:"clientId,omitempty"`
}

// IngestResult identifies the rows written for one visit.
type IngestResult struct {
	LogID     string  `json:"logId"`
	PageID    string  `json:"pageId"`
	ProjectID *string `json:"projectId"`
}

type visit struct {
	url         string
	title       string
	duration    int64
	timestamp   time.Time
	description *string
	source      storage.Source
}

func (s *Service) validate(p LogPayload) (*visit, error) {
	if strings.TrimSpace(p.URL) == "" {
		return nil, invalid("url", "required")
	}
	if _, err := url.Parse(p.URL); err != nil {
		return nil, invalid("url", err.Error())
	}
	if strings.TrimSpace(p.Title) == "" {
		return nil, invalid("title", "required")
	}
	if p.Duration == nil {
		return nil, invalid("duration", "required")
	}
	if math.IsNaN(*p.Duration) || math.IsInf(*p.Duration, 0) || *p.Duration < 0 {
		return nil, invalid("duration", "must be a non-negative number of seconds")
	}
	if p.Timestamp == "" {
		return nil, invalid("timestamp", "required")
	}
	ts, err := time.Parse(time.RFC3339Nano, p.Timestamp)
	if err != nil {
		return nil, invalid("timestamp", "must be an ISO-8601 instant")
	}

	return &visit{
		url:         p.URL,
		title:       p.Title,
		duration:    int64(math.Round(*p.Duration)),
		timestamp:   ts.UTC().Truncate(time.Millisecond),
		description: p.Description,
		source:      s.resolveSource(p.Source),
	}, nil
}

func (s *Service) resolveSource(in *SourcePayload) storage.Source {
	src := storage.Source{
		Type:       s.sources.Type,
		DeviceName: s.sources.DeviceName,
		ClientID:   s.sources.ClientID,
	}
	if in == nil {
		return src
	}
	if in.Type != "" {
		src.Type = in.Type
	}
	if in.DeviceName != nil {
		src.DeviceName = in.DeviceName
	}
	if in.ClientID != nil {
		src.ClientID = in.ClientID
	}
	return src
}

// Ingest records one visit: it upserts the page, classifies the visit
// against the user's current projects and appends an activity log.
//
// The page upsert and the activity insert are separate writes. If the insert
// fails the page keeps the new title and last_seen_at; the next successful
// visit to the same URL overwrites them again.
func (s *Service) Ingest(ctx context.Context, userID string, p LogPayload) (*IngestResult, error) {
	v, err := s.validate(p)
	if err != nil {
		return nil, err
	}
	domain := storage.ExtractDomain(v.url)

	var (
		page     *storage.Page
		projects []storage.Project
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		page, err = s.store.UpsertPage(gctx, storage.PageUpsert{
			UserID:      userID,
			URL:         v.url,
			Domain:      domain,
			Title:       v.title,
			Description: v.description,
			SeenAt:      s.Now(),
		})
		return err
	})
	g.Go(func() error {
		var err error
		projects, err = s.store.ListProjects(gctx, userID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("ingest: %w", err)
	}

	var projectID *string
	if id, ok := rules.Match(projects, v.url, domain); ok {
		projectID = &id
	}

	entry := &storage.ActivityLog{
		Timestamp: v.timestamp,
		Duration:  v.duration,
		PageID:    page.ID,
		UserID:    userID,
		Domain:    domain,
		ProjectID: projectID,
		Source:    v.source,
	}
	if err := s.store.InsertActivityLog(ctx, entry); err != nil {
		s.log.Warn("Activity log insert failed after page upsert",
			logger.String("user_id", userID),
			logger.String("page_id", page.ID),
			logger.Error(err),
		)
		return nil, fmt.Errorf("ingest: %w", err)
	}

	s.log.Info("Activity log created",
		logger.String("user_id", userID),
		logger.String("domain", domain),
		logger.Int64("duration", v.duration),
		logger.Bool("categorized", projectID != nil),
	)

	return &IngestResult{LogID: entry.ID, PageID: page.ID, ProjectID: projectID}, nil
}
