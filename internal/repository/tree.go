package repository

import (
	"context"
	"fmt"

	"github.com/alexanderramin/tasktree/internal/db"
	"github.com/alexanderramin/tasktree/internal/domain"
)

// InsertSubtree stores nodes, and everything below them, as children of
// parentID starting at position first. A nil parentID addresses the
// project's top level. Parents are written before their children.
func InsertSubtree(ctx context.Context, tx db.DBTX, projectID string, parentID *string, first int, nodes []*domain.Task) error {
	tasks := NewSQLiteTaskRepo(tx)
	atts := NewSQLiteAttachmentRepo(tx)

	var insert func(parentID *string, pos int, t *domain.Task) error
	insert = func(parentID *string, pos int, t *domain.Task) error {
		rec := &TaskRecord{ProjectID: projectID, ParentID: parentID, Position: pos, Task: t}
		if err := tasks.Insert(ctx, rec); err != nil {
			return err
		}
		if len(t.Attachments) > 0 {
			if err := atts.ReplaceForTask(ctx, projectID, t.ID, t.Attachments); err != nil {
				return err
			}
		}
		id := t.ID
		for i, c := range t.Children {
			if err := insert(&id, i, c); err != nil {
				return err
			}
		}
		return nil
	}
	for i, n := range nodes {
		if err := insert(parentID, first+i, n); err != nil {
			return err
		}
	}
	return nil
}

// LoadTree assembles the project's node tree from its task and attachment
// rows. Each node's children are ordered by position.
func LoadTree(ctx context.Context, tx db.DBTX, projectID string) ([]*domain.Task, error) {
	recs, err := NewSQLiteTaskRepo(tx).ListByProject(ctx, projectID)
	if err != nil {
		return nil, err
	}
	atts, err := NewSQLiteAttachmentRepo(tx).ListByProject(ctx, projectID)
	if err != nil {
		return nil, err
	}
	return assemble(recs, atts)
}

// assemble links records into a tree. recs must be in position order;
// a record may precede its parent.
func assemble(recs []*TaskRecord, atts map[string][]domain.Attachment) ([]*domain.Task, error) {
	byID := make(map[string]*domain.Task, len(recs))
	for _, rec := range recs {
		t := rec.Task
		t.Children = nil
		t.Attachments = atts[t.ID]
		byID[t.ID] = t
	}

	roots := []*domain.Task{}
	for _, rec := range recs {
		if rec.ParentID == nil {
			roots = append(roots, rec.Task)
			continue
		}
		parent, ok := byID[*rec.ParentID]
		if !ok {
			return nil, fmt.Errorf("task %s: parent %s missing", rec.Task.ID, *rec.ParentID)
		}
		parent.Children = append(parent.Children, rec.Task)
	}
	return roots, nil
}

// LoadProject returns the project header together with its tree.
func LoadProject(ctx context.Context, tx db.DBTX, id string) (*domain.Project, error) {
	p, err := NewSQLiteProjectRepo(tx).GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p.Tasks, err = LoadTree(ctx, tx, id); err != nil {
		return nil, err
	}
	return p, nil
}

// SaveProject stores a new project and its whole tree.
func SaveProject(ctx context.Context, tx db.DBTX, p *domain.Project) error {
	if err := NewSQLiteProjectRepo(tx).Create(ctx, p); err != nil {
		return err
	}
	return InsertSubtree(ctx, tx, p.ID, nil, 0, p.Tasks)
}
