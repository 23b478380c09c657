package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

const userColumns = `id, username, token_hash, token_created_at, token_last_used_at, created_at, updated_at`

// CreateUser inserts a user. An empty TokenHash is stored as NULL.
func (s *SQLiteStore) CreateUser(ctx context.Context, u *User) error {
	if u.ID == "" {
		u.ID = newID()
	}

	var hash sql.NullString
	if u.TokenHash != "" {
		hash = sql.NullString{String: u.TokenHash, Valid: true}
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO users (`+userColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		u.ID, u.Username, hash, nullTime(u.TokenCreatedAt), nullTime(u.TokenLastUsedAt),
		formatTime(u.CreatedAt), formatTime(u.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

// GetUserByUsername looks a user up by username.
func (s *SQLiteStore) GetUserByUsername(ctx context.Context, username string) (*User, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE username = ?`, username)
	u, err := scanUser(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("user %s: %w", username, ErrNotFound)
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	return u, nil
}

// GetUserByTokenHash resolves a bearer token hash to its user and records
// usedAt as the token's last use.
func (s *SQLiteStore) GetUserByTokenHash(ctx context.Context, tokenHash string, usedAt time.Time) (*User, error) {
	row := s.db.QueryRowContext(ctx, `
		UPDATE users SET token_last_used_at = ?
		WHERE token_hash = ?
		RETURNING `+userColumns, formatTime(usedAt), tokenHash)
	u, err := scanUser(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("token: %w", ErrNotFound)
		}
		return nil, fmt.Errorf("get user by token: %w", err)
	}
	return u, nil
}

// SetUserToken replaces the user's token hash. The previous token stops
// resolving immediately.
func (s *SQLiteStore) SetUserToken(ctx context.Context, userID, tokenHash string, at time.Time) error {
	ts := formatTime(at)
	res, err := s.db.ExecContext(ctx, `
		UPDATE users
		SET token_hash = ?, token_created_at = ?, token_last_used_at = NULL, updated_at = ?
		WHERE id = ?`, tokenHash, ts, ts, userID)
	if err != nil {
		return fmt.Errorf("set user token: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("user %s: %w", userID, ErrNotFound)
	}
	return nil
}

func scanUser(row rowScanner) (*User, error) {
	var u User
	var hash, tokenCreated, tokenUsed sql.NullString
	var createdAt, updatedAt string

	if err := row.Scan(&u.ID, &u.Username, &hash, &tokenCreated, &tokenUsed, &createdAt, &updatedAt); err != nil {
		return nil, err
	}
	u.TokenHash = hash.String
	u.TokenCreatedAt = parseNullTime(tokenCreated)
	u.TokenLastUsedAt = parseNullTime(tokenUsed)
	u.CreatedAt, _ = parseTimestamp(createdAt)
	u.UpdatedAt, _ = parseTimestamp(updatedAt)

	return &u, nil
}

func nullTime(t *time.Time) sql.NullString {
	if t == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: formatTime(*t), Valid: true}
}
