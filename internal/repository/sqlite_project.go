package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/alexanderramin/tasktree/internal/db"
	"github.com/alexanderramin/tasktree/internal/domain"
)

const projectColumns = `id, title, description, status, progress, created_at, updated_at`

// SQLiteProjectRepo implements ProjectRepo using a SQLite database.
type SQLiteProjectRepo struct {
	db db.DBTX
}

// NewSQLiteProjectRepo creates a new SQLiteProjectRepo.
func NewSQLiteProjectRepo(db db.DBTX) *SQLiteProjectRepo {
	return &SQLiteProjectRepo{db: db}
}

func (r *SQLiteProjectRepo) Create(ctx context.Context, p *domain.Project) error {
	query := `INSERT INTO projects (` + projectColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query,
		p.ID,
		p.Title,
		p.Description,
		string(p.Status),
		p.Progress,
		p.CreatedAt.UTC().Format(time.RFC3339),
		p.UpdatedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("inserting project: %w", err)
	}
	return nil
}

// GetByID returns the project header. Tasks is left nil.
func (r *SQLiteProjectRepo) GetByID(ctx context.Context, id string) (*domain.Project, error) {
	query := `SELECT ` + projectColumns + ` FROM projects WHERE id = ?`
	p, err := scanProject(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("project %s: %w", id, ErrNotFound)
	}
	return p, err
}

// List returns every project header, most recently updated first.
func (r *SQLiteProjectRepo) List(ctx context.Context) ([]*domain.Project, error) {
	query := `SELECT ` + projectColumns + ` FROM projects ORDER BY updated_at DESC, id`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("listing projects: %w", err)
	}
	defer rows.Close()

	var projects []*domain.Project
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, err
		}
		projects = append(projects, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating projects: %w", err)
	}
	return projects, nil
}

// UpdateHeader writes title, description, status and progress, and bumps
// updated_at. The task tree is not touched.
func (r *SQLiteProjectRepo) UpdateHeader(ctx context.Context, p *domain.Project) error {
	query := `UPDATE projects SET title = ?, description = ?, status = ?, progress = ?, updated_at = ?
		WHERE id = ?`
	res, err := r.db.ExecContext(ctx, query,
		p.Title,
		p.Description,
		string(p.Status),
		p.Progress,
		nowUTC(),
		p.ID,
	)
	if err != nil {
		return fmt.Errorf("updating project: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("updating project: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("project %s: %w", p.ID, ErrNotFound)
	}
	return nil
}

func (r *SQLiteProjectRepo) Delete(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM projects WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting project: %w", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProject(s rowScanner) (*domain.Project, error) {
	var p domain.Project
	var status, createdAt, updatedAt string
	err := s.Scan(&p.ID, &p.Title, &p.Description, &status, &p.Progress, &createdAt, &updatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scanning project: %w", err)
	}
	p.Status = domain.ProjectStatus(status)
	if p.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if p.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, err
	}
	return &p, nil
}
