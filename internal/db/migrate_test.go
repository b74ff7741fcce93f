package db

import (
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := OpenDB(MemoryPath)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestMigrate_Idempotent(t *testing.T) {
	db := openTestDB(t)

	require.NoError(t, Migrate(db))
	require.NoError(t, Migrate(db))
}

func TestMigrate_CreatesAllTables(t *testing.T) {
	db := openTestDB(t)

	for _, table := range []string{"projects", "tasks", "attachments"} {
		var name string
		err := db.QueryRow(`SELECT name FROM sqlite_master WHERE type='table' AND name=?`, table).Scan(&name)
		require.NoError(t, err, "table %s should exist", table)
		assert.Equal(t, table, name)
	}
}

func TestMigrate_CreatesIndexes(t *testing.T) {
	db := openTestDB(t)

	for _, idx := range []string{"idx_tasks_parent", "idx_attachments_task", "idx_projects_updated"} {
		var name string
		err := db.QueryRow(`SELECT name FROM sqlite_master WHERE type='index' AND name=?`, idx).Scan(&name)
		require.NoError(t, err, "index %s should exist", idx)
	}
}

func TestMigrate_AddsLateColumns(t *testing.T) {
	db := openTestDB(t)

	rows, err := db.Query(`PRAGMA table_info(tasks)`)
	require.NoError(t, err)
	defer rows.Close()

	var cols []string
	for rows.Next() {
		var (
			cid       int
			name, typ string
			notNull   int
			dflt      sql.NullString
			pk        int
		)
		require.NoError(t, rows.Scan(&cid, &name, &typ, &notNull, &dflt, &pk))
		cols = append(cols, name)
	}
	require.NoError(t, rows.Err())
	assert.Contains(t, cols, "updated_at")
	assert.Contains(t, cols, "child_field")
}

func TestSchema_Constraints(t *testing.T) {
	db := openTestDB(t)

	_, err := db.Exec(`INSERT INTO projects (id, title, status, created_at, updated_at) VALUES ('p', 'T', 'archived', '', '')`)
	assert.Error(t, err, "status is constrained")

	_, err = db.Exec(`INSERT INTO projects (id, title, created_at, updated_at) VALUES ('p', 'T', '', '')`)
	require.NoError(t, err)

	_, err = db.Exec(`INSERT INTO tasks (project_id, id, parent_id) VALUES ('p', 'child', 'missing')`)
	assert.Error(t, err, "parent must exist")

	_, err = db.Exec(`INSERT INTO tasks (project_id, id) VALUES ('p', 'root')`)
	require.NoError(t, err)
	_, err = db.Exec(`INSERT INTO tasks (project_id, id, parent_id) VALUES ('p', 'child', 'root')`)
	require.NoError(t, err)

	_, err = db.Exec(`DELETE FROM projects WHERE id = 'p'`)
	require.NoError(t, err)
	var n int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM tasks`).Scan(&n))
	assert.Zero(t, n, "tasks cascade with their project")
}

func TestOpenDB_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "tasktree.db")
	db, err := OpenDB(path)
	require.NoError(t, err)
	defer db.Close()

	var mode string
	require.NoError(t, db.QueryRow(`PRAGMA journal_mode`).Scan(&mode))
	assert.Equal(t, "wal", mode)
	assert.FileExists(t, path)
}
