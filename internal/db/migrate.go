package db

import (
	"database/sql"
	"fmt"
	"strings"
)

// Migrate applies the schema. Every statement is idempotent so the whole
// list runs on each open; columns added after the first release are added
// with ALTER TABLE and "duplicate column name" is tolerated.
func Migrate(db *sql.DB) error {
	for i, stmt := range migrations {
		if _, err := db.Exec(stmt); err != nil {
			if strings.Contains(err.Error(), "duplicate column name") {
				continue
			}
			return fmt.Errorf("migration %d: %w", i, err)
		}
	}
	return nil
}

var migrations = []string{
	`CREATE TABLE IF NOT EXISTS projects (
		id          TEXT PRIMARY KEY,
		title       TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		status      TEXT NOT NULL DEFAULT 'draft'
		            CHECK(status IN ('draft','in-progress','completed','submitted')),
		progress    INTEGER NOT NULL DEFAULT 0 CHECK(progress BETWEEN 0 AND 100),
		created_at  TEXT NOT NULL,
		updated_at  TEXT NOT NULL
	)`,

	// Task ids are unique within a project. parent_id is NULL for
	// top-level nodes.
	`CREATE TABLE IF NOT EXISTS tasks (
		project_id       TEXT NOT NULL REFERENCES projects(id) ON DELETE CASCADE,
		id               TEXT NOT NULL,
		parent_id        TEXT,
		position         INTEGER NOT NULL DEFAULT 0,
		name             TEXT NOT NULL DEFAULT '',
		description      TEXT NOT NULL DEFAULT '',
		type             TEXT NOT NULL DEFAULT '',
		status           TEXT NOT NULL DEFAULT ''
		                 CHECK(status IN ('','to-do','completed')),
		is_required      INTEGER NOT NULL DEFAULT 0,
		is_custom_task   INTEGER NOT NULL DEFAULT 0,
		is_deletable     INTEGER NOT NULL DEFAULT 0,
		is_deleted       INTEGER NOT NULL DEFAULT 0,
		service_provider TEXT NOT NULL DEFAULT '',
		child_field      TEXT NOT NULL DEFAULT ''
		                 CHECK(child_field IN ('','children','tasks')),
		metadata         TEXT,
		PRIMARY KEY (project_id, id),
		FOREIGN KEY (project_id, parent_id) REFERENCES tasks(project_id, id) ON DELETE CASCADE
	)`,

	`CREATE TABLE IF NOT EXISTS attachments (
		project_id    TEXT NOT NULL,
		task_id       TEXT NOT NULL,
		id            TEXT NOT NULL,
		position      INTEGER NOT NULL DEFAULT 0,
		name          TEXT NOT NULL DEFAULT '',
		mime_type     TEXT NOT NULL DEFAULT '',
		size          INTEGER NOT NULL DEFAULT 0,
		url           TEXT NOT NULL DEFAULT '',
		upload_status TEXT NOT NULL DEFAULT 'pending'
		              CHECK(upload_status IN ('pending','uploading','uploaded','failed')),
		created_at    TEXT NOT NULL,
		PRIMARY KEY (project_id, task_id, id),
		FOREIGN KEY (project_id, task_id) REFERENCES tasks(project_id, id) ON DELETE CASCADE
	)`,

	`ALTER TABLE tasks ADD COLUMN updated_at TEXT NOT NULL DEFAULT ''`,

	`CREATE INDEX IF NOT EXISTS idx_tasks_parent ON tasks(project_id, parent_id, position)`,
	`CREATE INDEX IF NOT EXISTS idx_attachments_task ON attachments(project_id, task_id, position)`,
	`CREATE INDEX IF NOT EXISTS idx_projects_updated ON projects(updated_at)`,
}
