// Package tree holds the pure, allocation-conscious algorithms over a plan
// tree. No function here mutates a node it was given: changes produce copies
// of the nodes on the path to the change and share everything else.
package tree

import "github.com/alexanderramin/tasktree/internal/domain"

// Location describes where a node sits in the tree.
type Location struct {
	Node *domain.Task
	// Path lists the ancestors of Node, outermost first. Empty for
	// top-level nodes.
	Path  []*domain.Task
	Index int
}

// Parent returns the immediate parent, or nil for a top-level node.
func (l Location) Parent() *domain.Task {
	if len(l.Path) == 0 {
		return nil
	}
	return l.Path[len(l.Path)-1]
}

// Depth is 0 for top-level nodes.
func (l Location) Depth() int {
	return len(l.Path)
}

// Find locates the first node with the given id in a depth-first,
// pre-order traversal.
func Find(roots []*domain.Task, id string) (Location, bool) {
	return find(roots, id, nil)
}

func find(nodes []*domain.Task, id string, path []*domain.Task) (Location, bool) {
	for i, n := range nodes {
		if n.ID == id {
			return Location{Node: n, Path: path, Index: i}, true
		}
		if len(n.Children) == 0 {
			continue
		}
		// Copy so sibling branches never share the backing array.
		next := make([]*domain.Task, len(path), len(path)+1)
		copy(next, path)
		if loc, ok := find(n.Children, id, append(next, n)); ok {
			return loc, true
		}
	}
	return Location{}, false
}

// Replace swaps the node with the given id for fn(node). Only the nodes on
// the path to the match are copied. When no node matches, the input slice
// is returned unchanged and ok is false.
func Replace(roots []*domain.Task, id string, fn func(*domain.Task) *domain.Task) ([]*domain.Task, bool) {
	for i, n := range roots {
		if n.ID == id {
			out := clone(roots)
			out[i] = fn(n)
			return out, true
		}
		if len(n.Children) == 0 {
			continue
		}
		if kids, ok := Replace(n.Children, id, fn); ok {
			cp := *n
			cp.Children = kids
			out := clone(roots)
			out[i] = &cp
			return out, true
		}
	}
	return roots, false
}

// Append adds child as the last child of the node with parentID.
// A parent without a recorded child field adopts "children".
func Append(roots []*domain.Task, parentID string, child *domain.Task) ([]*domain.Task, bool) {
	return Replace(roots, parentID, func(parent *domain.Task) *domain.Task {
		cp := *parent
		kids := make([]*domain.Task, len(parent.Children), len(parent.Children)+1)
		copy(kids, parent.Children)
		cp.Children = append(kids, child)
		if cp.ChildField == domain.ChildFieldNone {
			cp.ChildField = domain.ChildFieldChildren
		}
		return &cp
	})
}

// Remove drops every node with the given id, together with its subtree,
// from every branch. Branches without a match are shared with the input.
func Remove(roots []*domain.Task, id string) ([]*domain.Task, bool) {
	var out []*domain.Task
	changed := false
	for i, n := range roots {
		if n.ID == id {
			if !changed {
				out = append(make([]*domain.Task, 0, len(roots)-1), roots[:i]...)
				changed = true
			}
			continue
		}
		next := n
		if len(n.Children) > 0 {
			if kids, ok := Remove(n.Children, id); ok {
				cp := *n
				cp.Children = kids
				next = &cp
				if !changed {
					out = append(make([]*domain.Task, 0, len(roots)), roots[:i]...)
					changed = true
				}
			}
		}
		if changed {
			out = append(out, next)
		}
	}
	if !changed {
		return roots, false
	}
	return out, true
}

// Walk visits every node depth-first, pre-order. Returning false from fn
// skips the node's children.
func Walk(roots []*domain.Task, fn func(n *domain.Task, depth int) bool) {
	walk(roots, 0, fn)
}

func walk(nodes []*domain.Task, depth int, fn func(*domain.Task, int) bool) {
	for _, n := range nodes {
		if fn(n, depth) && len(n.Children) > 0 {
			walk(n.Children, depth+1, fn)
		}
	}
}

// Size counts every node in the forest.
func Size(roots []*domain.Task) int {
	count := 0
	Walk(roots, func(*domain.Task, int) bool {
		count++
		return true
	})
	return count
}

// Collect returns the nodes matching pred in traversal order.
func Collect(roots []*domain.Task, pred func(*domain.Task) bool) []*domain.Task {
	var out []*domain.Task
	Walk(roots, func(n *domain.Task, _ int) bool {
		if pred(n) {
			out = append(out, n)
		}
		return true
	})
	return out
}

func clone(nodes []*domain.Task) []*domain.Task {
	out := make([]*domain.Task, len(nodes))
	copy(out, nodes)
	return out
}
