package tracker

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/runnerr0/dwell/internal/logger"
	"github.com/runnerr0/dwell/internal/rules"
	"github.com/runnerr0/dwell/internal/storage"
)

// ProjectInput creates a project. Invalid rules are dropped.
type ProjectInput struct {
	Name  string                `json:"name"`
	Color string                `json:"color"`
	Rules []storage.ProjectRule `json:"rules"`
}

// ProjectUpdate changes a project. At most one rule edit applies, checked in
// the order AddRule, RemoveRuleIndex, Rules.
type ProjectUpdate struct {
	Name            *string                `json:"name,omitempty"`
	Color           *string                `json:"color,omitempty"`
	AddRule         *storage.ProjectRule   `json:"addRule,omitempty"`
	RemoveRuleIndex *int                   `json:"removeRuleIndex,omitempty"`
	Rules           *[]storage.ProjectRule `json:"rules,omitempty"`
}

// ProjectView is a project as returned to callers.
type ProjectView struct {
	ID        string                `json:"id"`
	Name      string                `json:"name"`
	Color     string                `json:"color"`
	Rules     []storage.ProjectRule `json:"rules"`
	CreatedAt time.Time             `json:"createdAt"`
	UpdatedAt time.Time             `json:"updatedAt"`
}

func projectView(p *storage.Project) ProjectView {
	return ProjectView{
		ID:        p.ID,
		Name:      p.Name,
		Color:     p.Color,
		Rules:     p.Rules,
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
}

// CreateProject adds a project for the user.
func (s *Service) CreateProject(ctx context.Context, userID string, in ProjectInput) (*ProjectView, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, invalid("name", "required")
	}
	color := strings.TrimSpace(in.Color)
	if color == "" {
		return nil, invalid("color", "required")
	}

	now := s.Now()
	p := &storage.Project{
		UserID:    userID,
		Name:      name,
		Color:     color,
		Rules:     rules.Normalize(in.Rules),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.store.CreateProject(ctx, p); err != nil {
		return nil, fmt.Errorf("create project: %w", err)
	}

	s.log.Info("Project created",
		logger.String("user_id", userID),
		logger.String("project_id", p.ID),
		logger.Int("rules", len(p.Rules)),
	)
	v := projectView(p)
	return &v, nil
}

// GetProject returns one of the user's projects.
func (s *Service) GetProject(ctx context.Context, userID, projectID string) (*ProjectView, error) {
	p, err := s.store.GetProject(ctx, userID, projectID)
	if err != nil {
		return nil, err
	}
	v := projectView(p)
	return &v, nil
}

// ListProjects returns the user's projects in matching order.
func (s *Service) ListProjects(ctx context.Context, userID string) ([]ProjectView, error) {
	list, err := s.store.ListProjects(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	out := make([]ProjectView, 0, len(list))
	for i := range list {
		out = append(out, projectView(&list[i]))
	}
	return out, nil
}

// UpdateProject applies u. Existing activity logs keep the project they were
// classified under.
func (s *Service) UpdateProject(ctx context.Context, userID, projectID string, u ProjectUpdate) (*ProjectView, error) {
	p, err := s.store.GetProject(ctx, userID, projectID)
	if err != nil {
		return nil, err
	}

	changed := false
	switch {
	case u.AddRule != nil:
		p.Rules, err = rules.Append(p.Rules, *u.AddRule)
		if err != nil {
			return nil, invalid("addRule", err.Error())
		}
		changed = true
	case u.RemoveRuleIndex != nil:
		p.Rules, err = rules.RemoveAt(p.Rules, *u.RemoveRuleIndex)
		if err != nil {
			if errors.Is(err, rules.ErrIndexOutOfRange) {
				return nil, invalid("removeRuleIndex", err.Error())
			}
			return nil, err
		}
		changed = true
	case u.Rules != nil:
		p.Rules = rules.Normalize(*u.Rules)
		changed = true
	}

	if u.Name != nil && strings.TrimSpace(*u.Name) != "" {
		p.Name = strings.TrimSpace(*u.Name)
		changed = true
	}
	if u.Color != nil && strings.TrimSpace(*u.Color) != "" {
		p.Color = strings.TrimSpace(*u.Color)
		changed = true
	}
	if !changed {
		return nil, invalid("body", "no valid updates provided")
	}

	p.UpdatedAt = s.Now()
	if err := s.store.UpdateProject(ctx, p); err != nil {
		return nil, fmt.Errorf("update project: %w", err)
	}

	s.log.Info("Project updated",
		logger.String("user_id", userID),
		logger.String("project_id", p.ID),
		logger.Int("rules", len(p.Rules)),
	)
	v := projectView(p)
	return &v, nil
}

// DeleteProject removes a project. Its logs keep the dangling project id and
// show up as Uncategorized in stats.
func (s *Service) DeleteProject(ctx context.Context, userID, projectID string) error {
	ok, err := s.store.DeleteProject(ctx, userID, projectID)
	if err != nil {
		return fmt.Errorf("delete project: %w", err)
	}
	if !ok {
		return fmt.Errorf("project %s: %w", projectID, ErrNotFound)
	}
	s.log.Info("Project deleted", logger.String("user_id", userID), logger.String("project_id", projectID))
	return nil
}
