// Package approval keeps the session-scoped record of preview-mode plan
// decisions. It lives beside the tree, not in it: a rejection leaves no
// marker on any node, so the tracker is the only place it survives.
package approval

import (
	"slices"
	"sync"

	"github.com/alexanderramin/tasktree/internal/domain"
	"github.com/alexanderramin/tasktree/internal/tree"
)

// Tracker records which tasks a reviewer added to the plan and which tasks
// have had any decision performed. The performed set never shrinks.
type Tracker struct {
	mu        sync.RWMutex
	added     map[string]struct{}
	performed map[string]struct{}
	seeded    bool
}

func NewTracker() *Tracker {
	return &Tracker{
		added:     make(map[string]struct{}),
		performed: make(map[string]struct{}),
	}
}

// SetAddedToPlan inserts or removes id from the added set and records the
// decision as performed.
func (t *Tracker) SetAddedToPlan(id string, added bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if added {
		t.added[id] = struct{}{}
	} else {
		delete(t.added, id)
	}
	t.performed[id] = struct{}{}
}

// SetPlanActionPerformed marks id as decided without touching the added set.
func (t *Tracker) SetPlanActionPerformed(id string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.performed[id] = struct{}{}
}

// Seed fills both sets from addedToPlan markers in the tree. It runs at
// most once per tracker and only while both sets are empty; it reports
// whether seeding happened.
func (t *Tracker) Seed(roots []*domain.Task) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.seeded || len(t.added) > 0 || len(t.performed) > 0 {
		return false
	}
	t.seeded = true
	tree.Walk(roots, func(n *domain.Task, _ int) bool {
		if n.AddedToPlan() {
			t.added[n.ID] = struct{}{}
			t.performed[n.ID] = struct{}{}
		}
		return true
	})
	return true
}

// AddedIDs returns the added set in sorted order.
func (t *Tracker) AddedIDs() []string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return sortedKeys(t.added)
}

// PerformedIDs returns the performed set in sorted order.
func (t *Tracker) PerformedIDs() []string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return sortedKeys(t.performed)
}

func (t *Tracker) IsAdded(id string) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	_, ok := t.added[id]
	return ok
}

func (t *Tracker) IsPerformed(id string) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	_, ok := t.performed[id]
	return ok
}

// Decision is the reviewer-facing state of a single task.
type Decision string

const (
	Pending  Decision = "pending"
	Accepted Decision = "accepted"
	Rejected Decision = "rejected"
)

// DecisionFor derives the decision for id from both sets.
func (t *Tracker) DecisionFor(id string) Decision {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if _, ok := t.added[id]; ok {
		return Accepted
	}
	if _, ok := t.performed[id]; ok {
		return Rejected
	}
	return Pending
}

func sortedKeys(m map[string]struct{}) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	slices.Sort(out)
	return out
}
