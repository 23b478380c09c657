package storage

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open(DriverName, ":memory:?_foreign_keys=on")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestMigrationRunner_FreshDB(t *testing.T) {
	db := openTestDB(t)
	require.NoError(t, NewMigrationRunner(db).Run())

	for _, table := range []string{"users", "pages", "projects", "activity_logs", "schema_migrations"} {
		var name string
		err := db.QueryRow(
			"SELECT name FROM sqlite_master WHERE type='table' AND name=?", table,
		).Scan(&name)
		require.NoError(t, err, "table %s should exist", table)
		assert.Equal(t, table, name)
	}
}

func TestMigrationRunner_IndexesCreated(t *testing.T) {
	db := openTestDB(t)
	require.NoError(t, NewMigrationRunner(db).Run())

	expectedIndexes := []string{
		"idx_pages_user_last_seen",
		"idx_projects_user_created",
		"idx_activity_user_ts",
		"idx_activity_page",
		"idx_activity_user_project",
	}
	for _, idx := range expectedIndexes {
		var name string
		err := db.QueryRow(
			"SELECT name FROM sqlite_master WHERE type='index' AND name=?", idx,
		).Scan(&name)
		require.NoError(t, err, "index %s should exist", idx)
		assert.Equal(t, idx, name)
	}
}

func TestMigrationRunner_Idempotent(t *testing.T) {
	db := openTestDB(t)
	runner := NewMigrationRunner(db)

	require.NoError(t, runner.Run())
	require.NoError(t, runner.Run())

	var count int
	err := db.QueryRow("SELECT COUNT(*) FROM schema_migrations").Scan(&count)
	require.NoError(t, err)
	assert.Equal(t, 1, count, "should have exactly 1 migration recorded after double-run")
}

func TestMigrationRunner_SchemaMigrationsTracking(t *testing.T) {
	db := openTestDB(t)
	require.NoError(t, NewMigrationRunner(db).Run())

	var version int
	var name string
	err := db.QueryRow("SELECT version, name FROM schema_migrations WHERE version = 1").Scan(&version, &name)
	require.NoError(t, err)
	assert.Equal(t, 1, version)
	assert.Equal(t, "initial_schema", name)
}

func TestSchemaVersion(t *testing.T) {
	db := openTestDB(t)
	require.NoError(t, NewMigrationRunner(db).Run())

	v, err := SchemaVersion(context.Background(), db)
	require.NoError(t, err)
	assert.Equal(t, 1, v)
}

func TestMigrationRunner_JournalMode(t *testing.T) {
	db := openTestDB(t)
	require.NoError(t, NewMigrationRunner(db).Run())

	var journalMode string
	require.NoError(t, db.QueryRow("PRAGMA journal_mode").Scan(&journalMode))
	// WAL only takes effect on file-backed databases.
	assert.Contains(t, []string{"wal", "memory"}, journalMode)
}

func TestMigrationRunner_RejectsUnknownJournalMode(t *testing.T) {
	db := openTestDB(t)
	err := NewMigrationRunner(db).WithJournalMode("wal; DROP TABLE pages").Run()
	assert.ErrorContains(t, err, "unsupported journal mode")
}

func TestMigrationRunner_ForeignKeys(t *testing.T) {
	db := openTestDB(t)
	require.NoError(t, NewMigrationRunner(db).Run())

	var fk int
	require.NoError(t, db.QueryRow("PRAGMA foreign_keys").Scan(&fk))
	assert.Equal(t, 1, fk, "foreign_keys should be enabled")
}

func TestMigrationRunner_ActivityRequiresPage(t *testing.T) {
	db := openTestDB(t)
	require.NoError(t, NewMigrationRunner(db).Run())

	_, err := db.Exec(`
		INSERT INTO activity_logs (id, user_id, ts, duration, page_id, domain, created_at)
		VALUES ('a1', 'u1', '2024-01-01T00:00:00.000Z', 10, 'missing', 'x.com', '2024-01-01T00:00:00.000Z')
	`)
	assert.Error(t, err, "foreign key constraint should prevent orphan activity rows")
}

func TestMigrationRunner_RejectsNegativeDuration(t *testing.T) {
	db := openTestDB(t)
	require.NoError(t, NewMigrationRunner(db).Run())

	_, err := db.Exec(`
		INSERT INTO pages (id, user_id, url, first_seen_at, last_seen_at)
		VALUES ('p1', 'u1', 'https://x.com', '2024-01-01T00:00:00.000Z', '2024-01-01T00:00:00.000Z')
	`)
	require.NoError(t, err)

	_, err = db.Exec(`
		INSERT INTO activity_logs (id, user_id, ts, duration, page_id, domain, created_at)
		VALUES ('a1', 'u1', '2024-01-01T00:00:00.000Z', -1, 'p1', 'x.com', '2024-01-01T00:00:00.000Z')
	`)
	assert.Error(t, err)
}

func TestMigrationRunner_PagesUniquePerUserURL(t *testing.T) {
	db := openTestDB(t)
	require.NoError(t, NewMigrationRunner(db).Run())

	insert := `INSERT INTO pages (id, user_id, url, first_seen_at, last_seen_at)
		VALUES (?, ?, 'https://x.com', '2024-01-01T00:00:00.000Z', '2024-01-01T00:00:00.000Z')`
	_, err := db.Exec(insert, "p1", "u1")
	require.NoError(t, err)
	_, err = db.Exec(insert, "p2", "u2")
	require.NoError(t, err, "same url for a different user is a different page")
	_, err = db.Exec(insert, "p3", "u1")
	assert.Error(t, err)
}
