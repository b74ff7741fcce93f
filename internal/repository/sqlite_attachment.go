package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/alexanderramin/tasktree/internal/db"
	"github.com/alexanderramin/tasktree/internal/domain"
)

// SQLiteAttachmentRepo implements AttachmentRepo using a SQLite database.
type SQLiteAttachmentRepo struct {
	db db.DBTX
}

// NewSQLiteAttachmentRepo creates a new SQLiteAttachmentRepo.
func NewSQLiteAttachmentRepo(db db.DBTX) *SQLiteAttachmentRepo {
	return &SQLiteAttachmentRepo{db: db}
}

// ReplaceForTask swaps the task's attachment list for atts, keeping their order.
func (r *SQLiteAttachmentRepo) ReplaceForTask(ctx context.Context, projectID, taskID string, atts []domain.Attachment) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM attachments WHERE project_id = ? AND task_id = ?`, projectID, taskID)
	if err != nil {
		return fmt.Errorf("clearing attachments of %s: %w", taskID, err)
	}
	query := `INSERT INTO attachments (project_id, task_id, id, position, name, mime_type, size, url, upload_status, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	for i, a := range atts {
		status := a.UploadStatus
		if status == "" {
			status = domain.UploadPending
		}
		created := a.CreatedAt
		if created.IsZero() {
			created = time.Now()
		}
		_, err := r.db.ExecContext(ctx, query,
			projectID, taskID, a.ID, i, a.Name, a.MimeType, a.Size, a.URL,
			string(status), created.UTC().Format(time.RFC3339),
		)
		if err != nil {
			return fmt.Errorf("inserting attachment %s: %w", a.ID, err)
		}
	}
	return nil
}

// ListByProject returns attachments keyed by task id.
func (r *SQLiteAttachmentRepo) ListByProject(ctx context.Context, projectID string) (map[string][]domain.Attachment, error) {
	query := `SELECT task_id, id, name, mime_type, size, url, upload_status, created_at
		FROM attachments WHERE project_id = ? ORDER BY task_id, position`
	rows, err := r.db.QueryContext(ctx, query, projectID)
	if err != nil {
		return nil, fmt.Errorf("listing attachments: %w", err)
	}
	defer rows.Close()

	out := make(map[string][]domain.Attachment)
	for rows.Next() {
		var (
			taskID, status, createdAt string
			a                         domain.Attachment
		)
		if err := rows.Scan(&taskID, &a.ID, &a.Name, &a.MimeType, &a.Size, &a.URL, &status, &createdAt); err != nil {
			return nil, fmt.Errorf("scanning attachment: %w", err)
		}
		a.UploadStatus = domain.UploadStatus(status)
		if a.CreatedAt, err = parseTime(createdAt); err != nil {
			return nil, err
		}
		out[taskID] = append(out[taskID], a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating attachments: %w", err)
	}
	return out, nil
}
