package testutil

import (
	"time"

	"github.com/alexanderramin/tasktree/internal/domain"
)

// Project options
type ProjectOption func(*domain.Project)

func WithProjectID(id string) ProjectOption {
	return func(p *domain.Project) {
		p.ID = id
	}
}

func WithProjectStatus(s domain.ProjectStatus) ProjectOption {
	return func(p *domain.Project) {
		p.Status = s
	}
}

func WithPillars(pillars ...*domain.Task) ProjectOption {
	return func(p *domain.Project) {
		p.Tasks = pillars
	}
}

func NewTestProject(title string, opts ...ProjectOption) *domain.Project {
	now := time.Now().UTC().Truncate(time.Second)
	p := &domain.Project{
		ID:        domain.NewServerID(),
		Title:     title,
		Status:    domain.ProjectInProgress,
		CreatedAt: now,
		UpdatedAt: now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Task options
type TaskOption func(*domain.Task)

func WithID(id string) TaskOption {
	return func(t *domain.Task) {
		t.ID = id
	}
}

func WithStatus(s domain.TaskStatus) TaskOption {
	return func(t *domain.Task) {
		t.Status = s
	}
}

func WithType(tt domain.TaskType) TaskOption {
	return func(t *domain.Task) {
		t.Type = tt
	}
}

func Completed() TaskOption {
	return WithStatus(domain.TaskCompleted)
}

func Custom() TaskOption {
	return func(t *domain.Task) {
		t.IsCustomTask = true
		t.IsDeletable = true
	}
}

func Optional() TaskOption {
	return func(t *domain.Task) {
		t.IsRequired = false
	}
}

func Deleted() TaskOption {
	return func(t *domain.Task) {
		t.IsDeleted = true
	}
}

func WithMetadata(key string, value any) TaskOption {
	return func(t *domain.Task) {
		t.Metadata = domain.WithMetadataValue(t.Metadata, key, value)
	}
}

// WithChildren attaches children under the "children" field.
func WithChildren(kids ...*domain.Task) TaskOption {
	return func(t *domain.Task) {
		t.ChildField = domain.ChildFieldChildren
		t.Children = kids
	}
}

// WithTasks attaches children under the legacy "tasks" field.
func WithTasks(kids ...*domain.Task) TaskOption {
	return func(t *domain.Task) {
		t.ChildField = domain.ChildFieldTasks
		t.Children = kids
	}
}

func NewTestTask(name string, opts ...TaskOption) *domain.Task {
	t := &domain.Task{
		ID:         domain.NewServerID(),
		Name:       name,
		Type:       domain.TaskPlain,
		Status:     domain.TaskToDo,
		IsRequired: true,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

func NewTestPillar(name string, opts ...TaskOption) *domain.Task {
	base := []TaskOption{WithType(domain.TaskProject), WithChildren()}
	return NewTestTask(name, append(base, opts...)...)
}

// NewSampleProject builds the canonical three-level plan used across tests:
//
//	Housing  (children): Lease signed [completed], Utilities [to-do]
//	Health   (children): Doctor visit [completed], Dentist [optional custom, to-do]
//	Work     (tasks):    CV [to-do]
func NewSampleProject() *domain.Project {
	return NewTestProject("Intervention plan", WithPillars(
		NewTestPillar("Housing", WithID("housing"), WithChildren(
			NewTestTask("Lease signed", WithID("lease"), Completed()),
			NewTestTask("Utilities", WithID("utilities")),
		)),
		NewTestPillar("Health", WithID("health"), WithChildren(
			NewTestTask("Doctor visit", WithID("doctor"), Completed()),
			NewTestTask("Dentist", WithID("dentist"), Custom(), Optional()),
		)),
		NewTestPillar("Work", WithID("work"), WithTasks(
			NewTestTask("CV", WithID("cv")),
		)),
	))
}

// NewPlanProject is the sample plan with every pillar on the "children"
// field, so it passes tree validation and can be persisted as is.
func NewPlanProject() *domain.Project {
	return NewTestProject("Intervention plan", WithPillars(
		NewTestPillar("Housing", WithID("housing"), WithChildren(
			NewTestTask("Lease signed", WithID("lease"), Completed()),
			NewTestTask("Utilities", WithID("utilities")),
		)),
		NewTestPillar("Health", WithID("health"), WithChildren(
			NewTestTask("Doctor visit", WithID("doctor"), Completed()),
			NewTestTask("Dentist", WithID("dentist"), Custom(), Optional()),
		)),
		NewTestPillar("Work", WithID("work"), WithChildren(
			NewTestTask("CV", WithID("cv")),
		)),
	))
}
