package domain

import "time"

// Project is the root aggregate of an intervention plan. It owns the
// top-level pillars exclusively; nodes never point back at their parents.
type Project struct {
	ID          string        `json:"_id"`
	Title       string        `json:"title"`
	Description string        `json:"description,omitempty"`
	Status      ProjectStatus `json:"status"`
	Progress    int           `json:"progress"`
	CreatedAt   time.Time     `json:"createdAt"`
	UpdatedAt   time.Time     `json:"updatedAt"`
	Tasks       []*Task       `json:"tasks"`
}

// WithTasks returns a shallow copy of p that owns the given top-level slice.
// Every other field, and every untouched node, is shared with p.
func (p *Project) WithTasks(tasks []*Task) *Project {
	cp := *p
	cp.Tasks = tasks
	return &cp
}

// DisplayID returns a short identifier for listings.
func (p *Project) DisplayID() string {
	if len(p.ID) > 8 {
		return p.ID[len(p.ID)-8:]
	}
	return p.ID
}
