package store

import (
	"errors"
	"fmt"

	"github.com/alexanderramin/tasktree/internal/domain"
	"github.com/alexanderramin/tasktree/internal/gate"
	"github.com/alexanderramin/tasktree/internal/remote"
	"github.com/alexanderramin/tasktree/internal/tree"
)

// ErrDuplicateTask is returned when an added task reuses an id already in
// the tree.
var ErrDuplicateTask = errors.New("task id already exists")

// Policy carries the session settings that shape remote commands.
type Policy struct {
	Mode gate.Mode
	// SyncTasksBranch makes add and delete under a parent that keeps its
	// children in the legacy "tasks" field issue remote calls too.
	SyncTasksBranch bool
}

// Transition is the outcome of a pure tree mutation: the next project
// value and the remote command that mirrors it, if any. When Changed is
// false Project is the input value itself.
type Transition struct {
	Op      remote.Op
	Project *domain.Project
	Changed bool
	// Updated is the merged node of an update, or the added node.
	Updated *domain.Task
	Command *remote.Command
}

func unchanged(p *domain.Project) Transition {
	return Transition{Project: p}
}

// UpdateTransition shallow-merges patch into the node with taskID. The
// command is suppressed outside EDIT mode for custom tasks whose parent has
// no server-assigned id; top-level nodes count the project as their parent.
// An empty patch still replaces the node but sends nothing.
func UpdateTransition(p *domain.Project, taskID string, patch domain.TaskPatch, pol Policy) Transition {
	loc, ok := tree.Find(p.Tasks, taskID)
	if !ok {
		return unchanged(p)
	}
	merged := patch.Apply(loc.Node)
	roots, _ := tree.Replace(p.Tasks, taskID, func(*domain.Task) *domain.Task { return merged })

	t := Transition{Op: remote.OpUpdate, Project: p.WithTasks(roots), Changed: true, Updated: merged}
	if !patch.IsEmpty() && !suppressUpdateSync(p, loc, merged, pol) {
		cmd := remote.UpdateCommand(p.ID, loc.Path, taskID, patch.Fields())
		t.Command = &cmd
	}
	return t
}

func suppressUpdateSync(p *domain.Project, loc tree.Location, merged *domain.Task, pol Policy) bool {
	if pol.Mode == gate.ModeEdit || !merged.IsCustomTask {
		return false
	}
	parentID := p.ID
	if parent := loc.Parent(); parent != nil {
		parentID = parent.ID
	}
	return !domain.IsServerID(parentID)
}

// AddTransition appends task as the last child of parentID, or as the last
// top-level node when parentID is the project id. The project keeps its top
// level in "tasks", so a top-level add only syncs with SyncTasksBranch. A
// task without an id gets a locally minted one.
func AddTransition(p *domain.Project, parentID string, task *domain.Task, pol Policy) (Transition, error) {
	child := *task
	if child.ID == "" {
		child.ID = domain.NewLocalID()
	}
	if child.ID == p.ID {
		return unchanged(p), fmt.Errorf("adding %q: %w", child.ID, ErrDuplicateTask)
	}
	if _, exists := tree.Find(p.Tasks, child.ID); exists {
		return unchanged(p), fmt.Errorf("adding %q: %w", child.ID, ErrDuplicateTask)
	}

	if parentID == p.ID {
		roots := make([]*domain.Task, len(p.Tasks), len(p.Tasks)+1)
		copy(roots, p.Tasks)
		roots = append(roots, &child)
		t := Transition{Op: remote.OpAdd, Project: p.WithTasks(roots), Changed: true, Updated: &child}
		if pol.SyncTasksBranch {
			cmd := remote.AddCommand(p.ID, nil, &child)
			t.Command = &cmd
		}
		return t, nil
	}

	loc, ok := tree.Find(p.Tasks, parentID)
	if !ok {
		return unchanged(p), nil
	}
	roots, _ := tree.Append(p.Tasks, parentID, &child)
	t := Transition{Op: remote.OpAdd, Project: p.WithTasks(roots), Changed: true, Updated: &child}
	if loc.Node.ChildField != domain.ChildFieldTasks || pol.SyncTasksBranch {
		cmd := remote.AddCommand(p.ID, loc.Node, &child)
		t.Command = &cmd
	}
	return t, nil
}

// DeleteTransition removes every node with taskID and its subtree. Only
// EDIT mode mirrors the delete, as a soft delete of the direct node.
func DeleteTransition(p *domain.Project, taskID string, pol Policy) Transition {
	loc, ok := tree.Find(p.Tasks, taskID)
	if !ok {
		return unchanged(p)
	}
	roots, _ := tree.Remove(p.Tasks, taskID)
	t := Transition{Op: remote.OpDelete, Project: p.WithTasks(roots), Changed: true}

	parent := loc.Parent()
	syncBranch := parent == nil || parent.ChildField != domain.ChildFieldTasks || pol.SyncTasksBranch
	if pol.Mode == gate.ModeEdit && syncBranch {
		cmd := remote.DeleteCommand(p.ID, parent, taskID)
		t.Command = &cmd
	}
	return t
}
