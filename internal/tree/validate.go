package tree

import (
	"fmt"

	"github.com/alexanderramin/tasktree/internal/domain"
)

// MaxDepth bounds how deep a loaded tree may nest (project -> pillar -> task
// leaves room for one more level of sub-tasks).
const MaxDepth = 4

// Validate checks the structural invariants of a forest: unique ids,
// known enum values, bounded depth, and one child field among siblings
// that carry children. Cousins under different parents may differ.
func Validate(roots []*domain.Task) []error {
	var errs []error
	seen := make(map[string]bool)

	Walk(roots, func(n *domain.Task, depth int) bool {
		if n.ID == "" {
			errs = append(errs, fmt.Errorf("task %q at depth %d: id is required", n.Name, depth))
		} else if seen[n.ID] {
			errs = append(errs, fmt.Errorf("task %q: duplicate id", n.ID))
		}
		seen[n.ID] = true

		if !domain.ValidTaskTypes[n.Type] {
			errs = append(errs, fmt.Errorf("task %q: invalid type %q", n.ID, n.Type))
		}
		if !domain.ValidTaskStatuses[n.Status] {
			errs = append(errs, fmt.Errorf("task %q: invalid status %q", n.ID, n.Status))
		}
		if depth >= MaxDepth {
			errs = append(errs, fmt.Errorf("task %q: nested deeper than %d levels", n.ID, MaxDepth))
			return false
		}
		return true
	})

	errs = append(errs, siblingFields(roots, 0)...)
	return errs
}

// siblingFields reports siblings whose child field differs from the first
// sibling that carries children, then descends into each sibling.
func siblingFields(siblings []*domain.Task, depth int) []error {
	if depth >= MaxDepth {
		return nil
	}
	var errs []error
	var want domain.ChildField
	for _, n := range siblings {
		if n.ChildField == domain.ChildFieldNone {
			continue
		}
		if want == domain.ChildFieldNone {
			want = n.ChildField
		} else if n.ChildField != want {
			errs = append(errs, fmt.Errorf("task %q: child field %q differs from %q used by its depth-%d siblings",
				n.ID, n.ChildField, want, depth))
		}
	}
	for _, n := range siblings {
		errs = append(errs, siblingFields(n.Children, depth+1)...)
	}
	return errs
}
