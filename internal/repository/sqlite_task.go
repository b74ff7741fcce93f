package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/alexanderramin/tasktree/internal/db"
	"github.com/alexanderramin/tasktree/internal/domain"
)

// taskColumns is the canonical SELECT column list for tasks.
const taskColumns = `project_id, id, parent_id, position, name, description, type, status,
		is_required, is_custom_task, is_deletable, is_deleted, service_provider, child_field, metadata`

// SQLiteTaskRepo implements TaskRepo using a SQLite database.
type SQLiteTaskRepo struct {
	db db.DBTX
}

// NewSQLiteTaskRepo creates a new SQLiteTaskRepo.
func NewSQLiteTaskRepo(db db.DBTX) *SQLiteTaskRepo {
	return &SQLiteTaskRepo{db: db}
}

func (r *SQLiteTaskRepo) Get(ctx context.Context, projectID, id string) (*TaskRecord, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE project_id = ? AND id = ?`
	rec, err := scanTask(r.db.QueryRowContext(ctx, query, projectID, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("task %s: %w", id, ErrNotFound)
	}
	return rec, err
}

// Insert stores the node's own fields. Children and attachments are
// stored separately.
func (r *SQLiteTaskRepo) Insert(ctx context.Context, rec *TaskRecord) error {
	t := rec.Task
	meta, err := metadataToValue(t.Metadata)
	if err != nil {
		return err
	}
	query := `INSERT INTO tasks (` + taskColumns + `, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err = r.db.ExecContext(ctx, query,
		rec.ProjectID,
		t.ID,
		rec.ParentID, // *string: nil becomes SQL NULL
		rec.Position,
		t.Name,
		t.Description,
		string(t.Type),
		string(t.Status),
		boolToInt(t.IsRequired),
		boolToInt(t.IsCustomTask),
		boolToInt(t.IsDeletable),
		boolToInt(t.IsDeleted),
		t.ServiceProvider,
		string(t.ChildField),
		meta,
		nowUTC(),
	)
	if err != nil {
		return fmt.Errorf("inserting task %s: %w", t.ID, err)
	}
	return nil
}

// Update overwrites the node's own fields. Its place in the tree is fixed
// at insert time.
func (r *SQLiteTaskRepo) Update(ctx context.Context, projectID string, t *domain.Task) error {
	meta, err := metadataToValue(t.Metadata)
	if err != nil {
		return err
	}
	query := `UPDATE tasks SET name = ?, description = ?, type = ?, status = ?,
		is_required = ?, is_custom_task = ?, is_deletable = ?, is_deleted = ?,
		service_provider = ?, child_field = ?, metadata = ?, updated_at = ?
		WHERE project_id = ? AND id = ?`
	res, err := r.db.ExecContext(ctx, query,
		t.Name,
		t.Description,
		string(t.Type),
		string(t.Status),
		boolToInt(t.IsRequired),
		boolToInt(t.IsCustomTask),
		boolToInt(t.IsDeletable),
		boolToInt(t.IsDeleted),
		t.ServiceProvider,
		string(t.ChildField),
		meta,
		nowUTC(),
		projectID,
		t.ID,
	)
	if err != nil {
		return fmt.Errorf("updating task %s: %w", t.ID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("updating task %s: %w", t.ID, err)
	}
	if n == 0 {
		return fmt.Errorf("task %s: %w", t.ID, ErrNotFound)
	}
	return nil
}

// ListByProject returns every node of a project ordered by position.
// Siblings keep their relative order.
func (r *SQLiteTaskRepo) ListByProject(ctx context.Context, projectID string) ([]*TaskRecord, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE project_id = ? ORDER BY position, rowid`
	rows, err := r.db.QueryContext(ctx, query, projectID)
	if err != nil {
		return nil, fmt.Errorf("listing tasks: %w", err)
	}
	defer rows.Close()

	var recs []*TaskRecord
	for rows.Next() {
		rec, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		recs = append(recs, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating tasks: %w", err)
	}
	return recs, nil
}

// NextPosition returns the position a new last child of parentID takes.
// A nil parentID addresses the project's top level.
func (r *SQLiteTaskRepo) NextPosition(ctx context.Context, projectID string, parentID *string) (int, error) {
	query := `SELECT COALESCE(MAX(position), -1) + 1 FROM tasks WHERE project_id = ? AND parent_id IS ?`
	var next int
	if err := r.db.QueryRowContext(ctx, query, projectID, parentID).Scan(&next); err != nil {
		return 0, fmt.Errorf("computing next position: %w", err)
	}
	return next, nil
}

func scanTask(s rowScanner) (*TaskRecord, error) {
	var (
		rec                                             TaskRecord
		t                                               domain.Task
		parentID, meta                                  sql.NullString
		typ, status, childField                         string
		isRequired, isCustom, isDeletable, isDeletedInt int
	)
	err := s.Scan(
		&rec.ProjectID, &t.ID, &parentID, &rec.Position, &t.Name, &t.Description,
		&typ, &status, &isRequired, &isCustom, &isDeletable, &isDeletedInt,
		&t.ServiceProvider, &childField, &meta,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scanning task: %w", err)
	}
	if parentID.Valid {
		rec.ParentID = &parentID.String
	}
	t.Type = domain.TaskType(typ)
	t.Status = domain.TaskStatus(status)
	t.IsRequired = intToBool(isRequired)
	t.IsCustomTask = intToBool(isCustom)
	t.IsDeletable = intToBool(isDeletable)
	t.IsDeleted = intToBool(isDeletedInt)
	t.ChildField = domain.ChildField(childField)
	if t.Metadata, err = metadataFromColumn(meta); err != nil {
		return nil, fmt.Errorf("task %s: %w", t.ID, err)
	}
	rec.Task = &t
	return &rec, nil
}
