package projectsvc

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/alexanderramin/tasktree/internal/db"
	"github.com/alexanderramin/tasktree/internal/domain"
	"github.com/alexanderramin/tasktree/internal/remote"
	"github.com/alexanderramin/tasktree/internal/repository"
	"github.com/alexanderramin/tasktree/internal/tree"
)

// merger applies one patch body against the rows of a single project.
// index tracks the latest value of every node, including ones created
// earlier in the same body.
type merger struct {
	ctx       context.Context
	tx        db.DBTX
	projectID string
	tasks     *repository.SQLiteTaskRepo
	atts      *repository.SQLiteAttachmentRepo
	index     map[string]*domain.Task

	updated, created, deleted int
}

func newMerger(ctx context.Context, tx db.DBTX, p *domain.Project) *merger {
	index := make(map[string]*domain.Task, tree.Size(p.Tasks))
	tree.Walk(p.Tasks, func(n *domain.Task, _ int) bool {
		index[n.ID] = n
		return true
	})
	return &merger{
		ctx:       ctx,
		tx:        tx,
		projectID: p.ID,
		tasks:     repository.NewSQLiteTaskRepo(tx),
		atts:      repository.NewSQLiteAttachmentRepo(tx),
		index:     index,
	}
}

// apply merges nodes as children of parent. A nil parent is the project.
func (m *merger) apply(parent *domain.Task, nodes []remote.Node) error {
	for _, n := range nodes {
		if n.ID == "" {
			return fmt.Errorf("%w: node without _id", ErrInvalidPatch)
		}
		patch, err := decodePatch(n)
		if err != nil {
			return err
		}

		var next *domain.Task
		if existing, ok := m.index[n.ID]; ok {
			next, err = m.merge(existing, patch, n.IsDeleted)
		} else {
			if n.IsDeleted {
				continue
			}
			next, err = m.create(parent, n, patch)
		}
		if err != nil {
			return err
		}
		if err := m.apply(next, n.Children); err != nil {
			return err
		}
	}
	return nil
}

func (m *merger) merge(existing *domain.Task, patch domain.TaskPatch, deleted bool) (*domain.Task, error) {
	if patch.Name != nil && *patch.Name == existing.Name {
		patch.Name = nil
	}
	markDeleted := deleted && !existing.IsDeleted
	if patch.IsEmpty() && !markDeleted {
		return existing, nil
	}

	next := patch.Apply(existing)
	if markDeleted {
		next.IsDeleted = true
		m.deleted++
	} else {
		m.updated++
	}
	if err := m.tasks.Update(m.ctx, m.projectID, next); err != nil {
		return nil, err
	}
	if patch.Attachments != nil {
		if err := m.atts.ReplaceForTask(m.ctx, m.projectID, next.ID, next.Attachments); err != nil {
			return nil, err
		}
	}
	m.index[next.ID] = next
	return next, nil
}

func (m *merger) create(parent *domain.Task, n remote.Node, patch domain.TaskPatch) (*domain.Task, error) {
	t := patch.Apply(&domain.Task{ID: n.ID})
	if n.Children != nil {
		t.ChildField = domain.ChildFieldChildren
	}
	if errs := tree.Validate([]*domain.Task{t}); len(errs) > 0 {
		return nil, fmt.Errorf("%w: %w", ErrInvalidPatch, errs[0])
	}

	var parentID *string
	if parent != nil {
		parent = m.index[parent.ID]
		if parent.ChildField == domain.ChildFieldNone {
			adopted := *parent
			adopted.ChildField = domain.ChildFieldChildren
			if err := m.tasks.Update(m.ctx, m.projectID, &adopted); err != nil {
				return nil, err
			}
			m.index[adopted.ID] = &adopted
		}
		parentID = &parent.ID
	}

	pos, err := m.tasks.NextPosition(m.ctx, m.projectID, parentID)
	if err != nil {
		return nil, err
	}
	if err := repository.InsertSubtree(m.ctx, m.tx, m.projectID, parentID, pos, []*domain.Task{t}); err != nil {
		return nil, err
	}
	m.index[t.ID] = t
	m.created++
	return t, nil
}

// patchWire mirrors the wire names of the mergeable task fields.
type patchWire struct {
	Name            *string              `json:"name"`
	Description     *string              `json:"description"`
	Type            *domain.TaskType     `json:"type"`
	Status          *domain.TaskStatus   `json:"status"`
	IsRequired      *bool                `json:"isRequired"`
	IsCustomTask    *bool                `json:"isCustomTask"`
	IsDeletable     *bool                `json:"isDeletable"`
	ServiceProvider *string              `json:"serviceProvider"`
	Attachments     *[]domain.Attachment `json:"attachments"`
	Metadata        map[string]any       `json:"metadata"`
}

// decodePatch turns a node's changed fields into a TaskPatch. A name in
// the fields wins over the node's addressing name. Keys the tree does not
// store are ignored.
func decodePatch(n remote.Node) (domain.TaskPatch, error) {
	var patch domain.TaskPatch
	if n.Name != "" {
		name := n.Name
		patch.Name = &name
	}
	if len(n.Fields) == 0 {
		return patch, nil
	}

	data, err := json.Marshal(n.Fields)
	if err != nil {
		return patch, fmt.Errorf("%w: node %s: %w", ErrInvalidPatch, n.ID, err)
	}
	var w patchWire
	if err := json.Unmarshal(data, &w); err != nil {
		return patch, fmt.Errorf("%w: node %s: %w", ErrInvalidPatch, n.ID, err)
	}
	if w.Status != nil && !domain.ValidTaskStatuses[*w.Status] {
		return patch, fmt.Errorf("%w: node %s: invalid status %q", ErrInvalidPatch, n.ID, *w.Status)
	}
	if w.Type != nil && !domain.ValidTaskTypes[*w.Type] {
		return patch, fmt.Errorf("%w: node %s: invalid type %q", ErrInvalidPatch, n.ID, *w.Type)
	}

	if w.Name != nil {
		patch.Name = w.Name
	}
	patch.Description = w.Description
	patch.Type = w.Type
	patch.Status = w.Status
	patch.IsRequired = w.IsRequired
	patch.IsCustomTask = w.IsCustomTask
	patch.IsDeletable = w.IsDeletable
	patch.ServiceProvider = w.ServiceProvider
	patch.Attachments = w.Attachments
	patch.Metadata = w.Metadata
	return patch, nil
}
