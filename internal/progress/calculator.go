// Package progress computes completion and percentage metrics over a plan
// tree. Every function is pure.
package progress

import (
	"math"

	"github.com/alexanderramin/tasktree/internal/domain"
)

// EditModeStep is the fixed contribution of each completed top-level node
// to the edit-mode progress figure.
const EditModeStep = 3

func IsTaskCompleted(t *domain.Task) bool {
	return t.Status == domain.TaskCompleted
}

// TaskProgress returns 100 or 0 for a leaf, otherwise the rounded share of
// direct children that are completed.
func TaskProgress(t *domain.Task) int {
	if !t.HasChildren() {
		if IsTaskCompleted(t) {
			return 100
		}
		return 0
	}
	done := 0
	for _, c := range t.Children {
		if IsTaskCompleted(c) {
			done++
		}
	}
	return Percent(done, len(t.Children))
}

// AreAllTasksCompleted is false for an empty list. Otherwise every node must
// be completed and every node's children must satisfy the same predicate.
func AreAllTasksCompleted(tasks []*domain.Task) bool {
	if len(tasks) == 0 {
		return false
	}
	for _, t := range tasks {
		if !IsTaskCompleted(t) {
			return false
		}
		if t.HasChildren() && !AreAllTasksCompleted(t.Children) {
			return false
		}
	}
	return true
}

// EditModeProgress counts completed top-level nodes at EditModeStep points
// each, capped at 100. The total number of tasks does not matter.
func EditModeProgress(p *domain.Project) int {
	done := 0
	for _, t := range p.Tasks {
		if IsTaskCompleted(t) {
			done++
		}
	}
	return min(done*EditModeStep, 100)
}

// Readiness is the pillar-view progress summary.
type Readiness struct {
	Completed int
	Total     int
	Percent   int
}

// PillarProgress aggregates the direct children of every top-level pillar,
// skipping soft-deleted ones.
func PillarProgress(p *domain.Project) Readiness {
	var r Readiness
	for _, pillar := range p.Tasks {
		c, n := countDirect(pillar)
		r.Completed += c
		r.Total += n
	}
	r.Percent = Percent(r.Completed, r.Total)
	return r
}

// PillarSummary is the readiness of a single pillar.
type PillarSummary struct {
	ID   string
	Name string
	Readiness
}

// PillarBreakdown returns one summary per top-level pillar in tree order.
func PillarBreakdown(p *domain.Project) []PillarSummary {
	out := make([]PillarSummary, 0, len(p.Tasks))
	for _, pillar := range p.Tasks {
		c, n := countDirect(pillar)
		out = append(out, PillarSummary{
			ID:        pillar.ID,
			Name:      pillar.Name,
			Readiness: Readiness{Completed: c, Total: n, Percent: Percent(c, n)},
		})
	}
	return out
}

// Overall picks the figure shown for a project: the edit-mode step count
// while editing, the pillar readiness otherwise.
func Overall(p *domain.Project, editing bool) int {
	if editing {
		return EditModeProgress(p)
	}
	return PillarProgress(p).Percent
}

// Percent returns round(100*done/total), or 0 when total is 0.
func Percent(done, total int) int {
	if total == 0 {
		return 0
	}
	return int(math.Round(100 * float64(done) / float64(total)))
}

func countDirect(pillar *domain.Task) (done, total int) {
	for _, c := range pillar.Children {
		if c.IsDeleted {
			continue
		}
		total++
		if IsTaskCompleted(c) {
			done++
		}
	}
	return done, total
}
