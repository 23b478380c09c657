package storage

import "database/sql"

// migrateV001 creates the initial schema: users, pages, projects and the
// activity log, plus the indexes the aggregate queries rely on. Every
// statement uses IF NOT EXISTS for idempotency.
//
// Timestamps are TEXT in a fixed-width UTC layout (see timeLayout) so that
// string comparison orders them chronologically.
func migrateV001(tx *sql.Tx) error {
	stmts := []string{
		// ── Tables ──────────────────────────────────────────────

		`CREATE TABLE IF NOT EXISTS users (
			id                 TEXT PRIMARY KEY,
			username           TEXT NOT NULL UNIQUE,
			token_hash         TEXT UNIQUE,
			token_created_at   TEXT,
			token_last_used_at TEXT,
			created_at         TEXT NOT NULL,
			updated_at         TEXT NOT NULL
		)`,

		`CREATE TABLE IF NOT EXISTS pages (
			id                    TEXT PRIMARY KEY,
			user_id               TEXT NOT NULL,
			url                   TEXT NOT NULL,
			domain                TEXT NOT NULL DEFAULT '',
			title                 TEXT NOT NULL DEFAULT '',
			description           TEXT,
			first_seen_at         TEXT NOT NULL,
			last_seen_at          TEXT NOT NULL,
			ai_productivity_label TEXT,
			ai_confidence         REAL,
			ai_embedding          TEXT,
			UNIQUE(user_id, url)
		)`,

		`CREATE TABLE IF NOT EXISTS projects (
			id         TEXT PRIMARY KEY,
			user_id    TEXT NOT NULL,
			name       TEXT NOT NULL,
			color      TEXT NOT NULL,
			rules      TEXT NOT NULL DEFAULT '[]',
			created_at TEXT NOT NULL,
			updated_at TEXT NOT NULL
		)`,

		`CREATE TABLE IF NOT EXISTS activity_logs (
			id                 TEXT PRIMARY KEY,
			user_id            TEXT NOT NULL,
			ts                 TEXT NOT NULL,
			duration           INTEGER NOT NULL CHECK (duration >= 0),
			page_id            TEXT NOT NULL REFERENCES pages(id) ON DELETE CASCADE,
			domain             TEXT NOT NULL DEFAULT '',
			project_id         TEXT,
			source_type        TEXT NOT NULL DEFAULT 'extension',
			source_device_name TEXT,
			source_client_id   TEXT,
			created_at         TEXT NOT NULL
		)`,

		// ── Indexes ────────────────────────────────────────────

		`CREATE INDEX IF NOT EXISTS idx_pages_user_last_seen   ON pages(user_id, last_seen_at)`,
		`CREATE INDEX IF NOT EXISTS idx_projects_user_created  ON projects(user_id, created_at)`,
		`CREATE INDEX IF NOT EXISTS idx_activity_user_ts       ON activity_logs(user_id, ts)`,
		`CREATE INDEX IF NOT EXISTS idx_activity_page          ON activity_logs(page_id)`,
		`CREATE INDEX IF NOT EXISTS idx_activity_user_project  ON activity_logs(user_id, project_id)`,
	}

	for _, stmt := range stmts {
		if _, err := tx.Exec(stmt); err != nil {
			return err
		}
	}

	return nil
}
