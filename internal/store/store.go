// Package store is the orchestrating core of a plan session. It owns the
// current tree value, applies mutations synchronously, hands the matching
// remote command to a dispatcher, and notifies observers once each
// mutation has completed.
package store

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/alexanderramin/tasktree/internal/approval"
	"github.com/alexanderramin/tasktree/internal/domain"
	"github.com/alexanderramin/tasktree/internal/gate"
	"github.com/alexanderramin/tasktree/internal/progress"
	"github.com/alexanderramin/tasktree/internal/remote"
	"github.com/alexanderramin/tasktree/internal/tree"
)

// ErrNilProject is returned by New when there is no project to manage.
var ErrNilProject = errors.New("store requires a project")

type Option func(*Store)

// WithDispatcher sets where remote commands go. Without one, commands are
// dropped and the session is local-only.
func WithDispatcher(d remote.Dispatcher) Option {
	return func(s *Store) {
		s.dispatcher = d
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(s *Store) {
		s.logger = l
	}
}

// WithAdvisoryGate logs mode violations instead of rejecting them.
func WithAdvisoryGate(enabled bool) Option {
	return func(s *Store) {
		s.advisory = enabled
	}
}

// WithSyncTasksBranch mirrors add and delete under "tasks" parents too.
func WithSyncTasksBranch(enabled bool) Option {
	return func(s *Store) {
		s.policy.SyncTasksBranch = enabled
	}
}

// WithTracker shares an approval tracker across stores of one session.
func WithTracker(t *approval.Tracker) Option {
	return func(s *Store) {
		s.tracker = t
	}
}

// WithConfig attaches caller-owned settings returned untouched by Config.
func WithConfig(cfg map[string]any) Option {
	return func(s *Store) {
		s.config = cfg
	}
}

// WithCompletionObserver subscribes obs before the initial notification.
func WithCompletionObserver(obs CompletionObserver) Option {
	return func(s *Store) {
		s.completion.add(obs)
	}
}

// Store holds one project session.
type Store struct {
	mu         sync.RWMutex
	project    *domain.Project
	policy     Policy
	gate       *gate.Gate
	advisory   bool
	tracker    *approval.Tracker
	dispatcher remote.Dispatcher
	logger     *slog.Logger
	config     map[string]any
	now        func() time.Time

	updates    registry[TaskUpdateFunc]
	completion registry[CompletionObserver]
	queue      notifyQueue
}

// New starts a session over project in the given mode. The approval
// tracker is seeded from the tree, and completion observers receive the
// initial figures before New returns.
func New(project *domain.Project, mode gate.Mode, opts ...Option) (*Store, error) {
	if project == nil {
		return nil, ErrNilProject
	}
	s := &Store{
		policy: Policy{Mode: mode},
		logger: slog.Default(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.tracker == nil {
		s.tracker = approval.NewTracker()
	}
	s.gate = gate.New(mode, gate.Advisory(s.advisory), gate.WithLogger(s.logger))
	s.queue.logger = s.logger

	s.mu.Lock()
	s.commitLocked(project, false)
	s.mu.Unlock()
	s.tracker.Seed(project.Tasks)
	s.queue.flush()
	return s, nil
}

// ProjectData returns the current tree value. Callers must treat it as
// read-only; the store never mutates a value it has handed out.
func (s *Store) ProjectData() *domain.Project {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.project
}

func (s *Store) Mode() gate.Mode { return s.policy.Mode }

// Config returns the settings passed with WithConfig.
func (s *Store) Config() map[string]any { return s.config }

// Progress returns the overall figure for the current tree.
func (s *Store) Progress() int {
	return s.ProjectData().Progress
}

// OnTaskUpdate subscribes fn to merged nodes of successful updates and
// returns a function that unsubscribes it.
func (s *Store) OnTaskUpdate(fn TaskUpdateFunc) (unsubscribe func()) {
	s.mu.Lock()
	id := s.updates.add(fn)
	s.mu.Unlock()
	return func() {
		s.mu.Lock()
		s.updates.remove(id)
		s.mu.Unlock()
	}
}

// ObserveCompletion subscribes obs and immediately queues the current
// figures for it.
func (s *Store) ObserveCompletion(obs CompletionObserver) (unsubscribe func()) {
	s.mu.Lock()
	id := s.completion.add(obs)
	s.queue.push(completionNotices([]CompletionObserver{obs}, s.project)...)
	s.mu.Unlock()
	s.queue.flush()
	return func() {
		s.mu.Lock()
		s.completion.remove(id)
		s.mu.Unlock()
	}
}

// UpdateTask shallow-merges patch into the node with taskID. An unknown id
// is a no-op.
func (s *Store) UpdateTask(ctx context.Context, taskID string, patch domain.TaskPatch) error {
	if err := s.gate.Check(gate.CapUpdate, "update task"); err != nil {
		return err
	}
	return s.apply(ctx, func(p *domain.Project) (Transition, error) {
		return UpdateTransition(p, taskID, patch, s.policy), nil
	})
}

// ToggleTaskStatus flips a node between completed and to-do.
func (s *Store) ToggleTaskStatus(ctx context.Context, taskID string) error {
	if err := s.gate.Check(gate.CapUpdate, "toggle task"); err != nil {
		return err
	}
	return s.apply(ctx, func(p *domain.Project) (Transition, error) {
		loc, ok := tree.Find(p.Tasks, taskID)
		if !ok {
			return unchanged(p), nil
		}
		next := domain.TaskCompleted
		if progress.IsTaskCompleted(loc.Node) {
			next = domain.TaskToDo
		}
		return UpdateTransition(p, taskID, domain.TaskPatch{Status: &next}, s.policy), nil
	})
}

// AddTask appends task under parentID, or at the top level when parentID
// is the project id. It returns the id the task was stored under, or ""
// when the parent does not exist.
func (s *Store) AddTask(ctx context.Context, parentID string, task *domain.Task) (string, error) {
	if err := s.gate.Check(gate.CapStructure, "add task"); err != nil {
		return "", err
	}
	var id string
	err := s.apply(ctx, func(p *domain.Project) (Transition, error) {
		t, err := AddTransition(p, parentID, task, s.policy)
		if t.Updated != nil {
			id = t.Updated.ID
		}
		return t, err
	})
	return id, err
}

// DeleteTask removes the node with taskID and its whole subtree.
func (s *Store) DeleteTask(ctx context.Context, taskID string) error {
	if err := s.gate.Check(gate.CapStructure, "delete task"); err != nil {
		return err
	}
	return s.apply(ctx, func(p *domain.Project) (Transition, error) {
		return DeleteTransition(p, taskID, s.policy), nil
	})
}

// AddedToPlanTaskIDs returns the accepted task ids in sorted order.
func (s *Store) AddedToPlanTaskIDs() []string {
	return s.tracker.AddedIDs()
}

// PlanDecision reports the reviewer decision recorded for taskID.
func (s *Store) PlanDecision(taskID string) approval.Decision {
	return s.tracker.DecisionFor(taskID)
}

func (s *Store) SetTaskAddedToPlan(taskID string, added bool) error {
	if err := s.gate.Check(gate.CapPlanDecision, "set added to plan"); err != nil {
		return err
	}
	s.tracker.SetAddedToPlan(taskID, added)
	return nil
}

func (s *Store) SetTaskPlanActionPerformed(taskID string) error {
	if err := s.gate.Check(gate.CapPlanDecision, "mark plan action performed"); err != nil {
		return err
	}
	s.tracker.SetPlanActionPerformed(taskID)
	return nil
}

// DecidePlanTask records a reviewer accept or reject for taskID and writes
// the addedToPlan marker onto the node. An unknown id is a no-op.
func (s *Store) DecidePlanTask(ctx context.Context, taskID string, accept bool) error {
	if err := s.gate.Check(gate.CapPlanDecision, "decide plan task"); err != nil {
		return err
	}
	return s.apply(ctx, func(p *domain.Project) (Transition, error) {
		loc, ok := tree.Find(p.Tasks, taskID)
		if !ok {
			return unchanged(p), nil
		}
		s.tracker.SetAddedToPlan(taskID, accept)
		patch := domain.TaskPatch{
			Metadata: domain.WithMetadataValue(loc.Node.Metadata, domain.MetaAddedToPlan, accept),
		}
		return UpdateTransition(p, taskID, patch, s.policy), nil
	})
}

// apply runs a transition under the lock, commits it, dispatches its
// command and then flushes observer notifications. Local state is always
// committed before the command is dispatched.
func (s *Store) apply(ctx context.Context, transition func(*domain.Project) (Transition, error)) error {
	s.mu.Lock()
	t, err := transition(s.project)
	if err != nil {
		s.mu.Unlock()
		return err
	}
	if t.Changed {
		if t.Op == remote.OpUpdate {
			s.queueUpdateLocked(t.Updated)
		}
		s.commitLocked(t.Project, true)
	}
	s.mu.Unlock()

	if t.Changed && t.Command == nil {
		s.logger.Debug("mutation kept local", "project", t.Project.ID, "mode", string(s.policy.Mode))
	}
	if t.Command != nil {
		s.dispatch(ctx, *t.Command)
	}
	s.queue.flush()
	return nil
}

func (s *Store) queueUpdateLocked(merged *domain.Task) {
	for _, fn := range s.updates.snapshot() {
		s.queue.push(func() { fn(merged) })
	}
}

// commitLocked installs next as the current tree value, stamped with its
// overall progress, and queues completion notifications. Mutations also
// advance UpdatedAt; the initial load keeps the loaded value.
func (s *Store) commitLocked(next *domain.Project, touched bool) {
	cp := *next
	if touched {
		cp.UpdatedAt = s.now().UTC()
	}
	cp.Progress = progress.Overall(&cp, s.policy.Mode == gate.ModeEdit)
	s.project = &cp
	s.queue.push(completionNotices(s.completion.snapshot(), s.project)...)
}

func (s *Store) dispatch(ctx context.Context, cmd remote.Command) {
	if s.dispatcher == nil {
		s.logger.Debug("no dispatcher, dropping command", "op", string(cmd.Op), "task", cmd.TaskID)
		return
	}
	s.dispatcher.Dispatch(ctx, cmd)
}

func completionNotices(observers []CompletionObserver, p *domain.Project) []func() {
	allDone := progress.AreAllTasksCompleted(p.Tasks)
	pct := p.Progress
	out := make([]func(), 0, 2*len(observers))
	for _, obs := range observers {
		out = append(out,
			func() { obs.OnTaskCompletionChange(allDone) },
			func() { obs.OnProgressChange(pct) },
		)
	}
	return out
}
