package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
)

const projectColumns = `id, user_id, name, color, rules, created_at, updated_at`

// CreateProject inserts a project. ID and timestamps are filled in when empty.
func (s *SQLiteStore) CreateProject(ctx context.Context, p *Project) error {
	if p.ID == "" {
		p.ID = newID()
	}
	if p.Rules == nil {
		p.Rules = []ProjectRule{}
	}

	rules, err := json.Marshal(p.Rules)
	if err != nil {
		return fmt.Errorf("encode rules: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO projects (`+projectColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		p.ID, p.UserID, p.Name, p.Color, string(rules), formatTime(p.CreatedAt), formatTime(p.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("insert project: %w", err)
	}
	return nil
}

// GetProject retrieves one of the user's projects.
func (s *SQLiteStore) GetProject(ctx context.Context, userID, projectID string) (*Project, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+projectColumns+` FROM projects WHERE id = ? AND user_id = ?`, projectID, userID,
	)
	p, err := scanProject(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("project %s: %w", projectID, ErrNotFound)
		}
		return nil, fmt.Errorf("get project: %w", err)
	}
	return p, nil
}

// ListProjects returns the user's projects newest-created first. Ties are
// broken by id so the order the rule matcher sees is stable.
func (s *SQLiteStore) ListProjects(ctx context.Context, userID string) ([]Project, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+projectColumns+` FROM projects WHERE user_id = ? ORDER BY created_at DESC, id`, userID,
	)
	if err != nil {
		return nil, fmt.Errorf("query projects: %w", err)
	}
	defer rows.Close()

	projects := []Project{}
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, fmt.Errorf("scan project: %w", err)
		}
		projects = append(projects, *p)
	}

	return projects, rows.Err()
}

// UpdateProject overwrites name, color, rules and updated_at.
func (s *SQLiteStore) UpdateProject(ctx context.Context, p *Project) error {
	if p.Rules == nil {
		p.Rules = []ProjectRule{}
	}
	rules, err := json.Marshal(p.Rules)
	if err != nil {
		return fmt.Errorf("encode rules: %w", err)
	}

	res, err := s.db.ExecContext(ctx,
		`UPDATE projects SET name = ?, color = ?, rules = ?, updated_at = ? WHERE id = ? AND user_id = ?`,
		p.Name, p.Color, string(rules), formatTime(p.UpdatedAt), p.ID, p.UserID,
	)
	if err != nil {
		return fmt.Errorf("update project: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("project %s: %w", p.ID, ErrNotFound)
	}
	return nil
}

// DeleteProject removes a project. Activity logs keep their project_id.
func (s *SQLiteStore) DeleteProject(ctx context.Context, userID, projectID string) (bool, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM projects WHERE id = ? AND user_id = ?`, projectID, userID)
	if err != nil {
		return false, fmt.Errorf("delete project: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func scanProject(row rowScanner) (*Project, error) {
	var p Project
	var rules, createdAt, updatedAt string

	if err := row.Scan(&p.ID, &p.UserID, &p.Name, &p.Color, &rules, &createdAt, &updatedAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(rules), &p.Rules); err != nil {
		return nil, fmt.Errorf("decode rules: %w", err)
	}
	if p.Rules == nil {
		p.Rules = []ProjectRule{}
	}
	p.CreatedAt, _ = parseTimestamp(createdAt)
	p.UpdatedAt, _ = parseTimestamp(updatedAt)

	return &p, nil
}
