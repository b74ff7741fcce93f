package repository

import (
	"context"

	"github.com/alexanderramin/tasktree/internal/domain"
)

// TaskRecord is a stored node together with its place in the tree.
// Task.Children is always empty on a record; LoadTree assembles it.
type TaskRecord struct {
	ProjectID string
	ParentID  *string
	Position  int
	Task      *domain.Task
}

// ProjectRepo stores project headers. The task tree lives in TaskRepo.
type ProjectRepo interface {
	Create(ctx context.Context, p *domain.Project) error
	GetByID(ctx context.Context, id string) (*domain.Project, error)
	List(ctx context.Context) ([]*domain.Project, error)
	UpdateHeader(ctx context.Context, p *domain.Project) error
	Delete(ctx context.Context, id string) error
}

type TaskRepo interface {
	Get(ctx context.Context, projectID, id string) (*TaskRecord, error)
	Insert(ctx context.Context, rec *TaskRecord) error
	Update(ctx context.Context, projectID string, t *domain.Task) error
	ListByProject(ctx context.Context, projectID string) ([]*TaskRecord, error)
	NextPosition(ctx context.Context, projectID string, parentID *string) (int, error)
}

type AttachmentRepo interface {
	ReplaceForTask(ctx context.Context, projectID, taskID string, atts []domain.Attachment) error
	ListByProject(ctx context.Context, projectID string) (map[string][]domain.Attachment, error)
}
