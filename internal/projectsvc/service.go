package projectsvc

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/alexanderramin/tasktree/internal/db"
	"github.com/alexanderramin/tasktree/internal/domain"
	"github.com/alexanderramin/tasktree/internal/loader"
	"github.com/alexanderramin/tasktree/internal/progress"
	"github.com/alexanderramin/tasktree/internal/remote"
	"github.com/alexanderramin/tasktree/internal/repository"
	"github.com/alexanderramin/tasktree/internal/tree"
)

var (
	// ErrInvalidProject wraps the validation errors of a rejected document.
	ErrInvalidProject = errors.New("invalid project")
	// ErrInvalidPatch is returned for a patch node that cannot be applied.
	ErrInvalidPatch = errors.New("invalid patch")
	// ErrProjectExists is returned by Create for an id already stored.
	ErrProjectExists = errors.New("project already exists")
)

// Service owns the stored copy of every project and applies partial
// updates to it. It is the server side of the remote sync protocol.
type Service struct {
	db     db.DBTX
	uow    db.UnitOfWork
	logger *slog.Logger
}

func NewService(database db.DBTX, uow db.UnitOfWork, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Service{db: database, uow: uow, logger: logger}
}

// Get returns the project with its whole tree.
func (s *Service) Get(ctx context.Context, id string) (*domain.Project, error) {
	return repository.LoadProject(ctx, s.db, id)
}

// List returns project headers without their trees.
func (s *Service) List(ctx context.Context) ([]*domain.Project, error) {
	return repository.NewSQLiteProjectRepo(s.db).List(ctx)
}

// Create stores a whole project. A missing id is minted, timestamps are
// set and progress is recomputed from the tree.
func (s *Service) Create(ctx context.Context, p *domain.Project) (*domain.Project, error) {
	cp := *p
	if cp.ID == "" {
		cp.ID = domain.NewServerID()
	}
	if cp.Status == "" {
		cp.Status = domain.ProjectDraft
	}
	now := time.Now().UTC().Truncate(time.Second)
	if cp.CreatedAt.IsZero() {
		cp.CreatedAt = now
	}
	cp.UpdatedAt = now
	cp.Progress = progress.PillarProgress(&cp).Percent
	if errs := loader.Validate(&cp); len(errs) > 0 {
		return nil, fmt.Errorf("%w: %w", ErrInvalidProject, errors.Join(errs...))
	}

	err := s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		_, err := repository.NewSQLiteProjectRepo(tx).GetByID(ctx, cp.ID)
		switch {
		case err == nil:
			return fmt.Errorf("%w: %s", ErrProjectExists, cp.ID)
		case !errors.Is(err, repository.ErrNotFound):
			return err
		}
		return repository.SaveProject(ctx, tx, &cp)
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("project created", "project_id", cp.ID, "tasks", tree.Size(cp.Tasks))
	return &cp, nil
}

// ApplyPatch merges a partial-update body into the stored project inside
// one transaction. Nodes are matched by _id anywhere in the tree; unknown
// ids are created under the enclosing node; changed fields overwrite the
// stored ones; isDeleted marks a node deleted. Project progress is
// recomputed afterwards.
func (s *Service) ApplyPatch(ctx context.Context, projectID string, body remote.Body) (*domain.Project, error) {
	var out *domain.Project
	err := s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		p, err := repository.LoadProject(ctx, tx, projectID)
		if err != nil {
			return err
		}
		m := newMerger(ctx, tx, p)
		if err := m.apply(nil, body.Tasks); err != nil {
			return err
		}

		if p.Tasks, err = repository.LoadTree(ctx, tx, projectID); err != nil {
			return err
		}
		p.Progress = progress.PillarProgress(p).Percent
		p.UpdatedAt = time.Now().UTC().Truncate(time.Second)
		if err := repository.NewSQLiteProjectRepo(tx).UpdateHeader(ctx, p); err != nil {
			return err
		}
		s.logger.Debug("patch applied", "project_id", projectID,
			"updated", m.updated, "created", m.created, "deleted", m.deleted)
		out = p
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
