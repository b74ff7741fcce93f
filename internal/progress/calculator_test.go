package progress

import (
	"testing"

	"github.com/alexanderramin/tasktree/internal/domain"
	"github.com/alexanderramin/tasktree/internal/testutil"
	"github.com/stretchr/testify/assert"
)

func TestTaskProgress_Leaf(t *testing.T) {
	assert.Equal(t, 100, TaskProgress(testutil.NewTestTask("a", testutil.Completed())))
	assert.Equal(t, 0, TaskProgress(testutil.NewTestTask("b")))
}

func TestTaskProgress_RoundsShareOfChildren(t *testing.T) {
	root := testutil.NewTestTask("root", testutil.WithChildren(
		testutil.NewTestTask("a", testutil.Completed()),
		testutil.NewTestTask("b", testutil.Completed()),
		testutil.NewTestTask("c"),
	))
	assert.Equal(t, 67, TaskProgress(root))
}

func TestTaskProgress_IgnoresOwnStatusWhenParent(t *testing.T) {
	root := testutil.NewTestTask("root", testutil.Completed(), testutil.WithTasks(
		testutil.NewTestTask("a"),
	))
	assert.Equal(t, 0, TaskProgress(root))
}

func TestAreAllTasksCompleted(t *testing.T) {
	done := func(kids ...*domain.Task) *domain.Task {
		return testutil.NewTestTask("done", testutil.Completed(), testutil.WithChildren(kids...))
	}
	todo := func() *domain.Task { return testutil.NewTestTask("todo") }

	tests := []struct {
		name  string
		tasks []*domain.Task
		want  bool
	}{
		{"empty list is not complete", nil, false},
		{"single completed leaf", []*domain.Task{done()}, true},
		{"one incomplete sibling", []*domain.Task{done(), todo()}, false},
		{"completed parent with incomplete child", []*domain.Task{done(todo())}, false},
		{"nested all completed", []*domain.Task{done(done(done()), done())}, true},
		{"incomplete grandchild", []*domain.Task{done(done(todo()))}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, AreAllTasksCompleted(tt.tasks))
		})
	}
}

func TestEditModeProgress(t *testing.T) {
	project := func(completed, open int) *domain.Project {
		var tasks []*domain.Task
		for range completed {
			tasks = append(tasks, testutil.NewTestTask("c", testutil.Completed()))
		}
		for range open {
			tasks = append(tasks, testutil.NewTestTask("o"))
		}
		return testutil.NewTestProject("p", testutil.WithPillars(tasks...))
	}

	assert.Equal(t, 0, EditModeProgress(project(0, 4)))
	assert.Equal(t, 15, EditModeProgress(project(5, 0)))
	assert.Equal(t, 15, EditModeProgress(project(5, 40)))
	assert.Equal(t, 99, EditModeProgress(project(33, 0)))
	assert.Equal(t, 100, EditModeProgress(project(34, 0)))
	assert.Equal(t, 100, EditModeProgress(project(60, 2)))
}

func TestPillarProgress_SampleProject(t *testing.T) {
	r := PillarProgress(testutil.NewSampleProject())
	// lease, doctor completed; utilities, dentist, cv open
	assert.Equal(t, Readiness{Completed: 2, Total: 5, Percent: 40}, r)
}

func TestPillarProgress_SkipsDeletedChildren(t *testing.T) {
	p := testutil.NewTestProject("p", testutil.WithPillars(
		testutil.NewTestPillar("A", testutil.WithChildren(
			testutil.NewTestTask("a1", testutil.Completed()),
			testutil.NewTestTask("a2", testutil.Deleted()),
		)),
	))
	assert.Equal(t, Readiness{Completed: 1, Total: 1, Percent: 100}, PillarProgress(p))
}

func TestPillarProgress_EmptyIsZero(t *testing.T) {
	p := testutil.NewTestProject("p", testutil.WithPillars(testutil.NewTestPillar("A")))
	assert.Equal(t, Readiness{}, PillarProgress(p))
}

func TestPillarBreakdown(t *testing.T) {
	got := PillarBreakdown(testutil.NewSampleProject())
	assert.Equal(t, []PillarSummary{
		{ID: "housing", Name: "Housing", Readiness: Readiness{Completed: 1, Total: 2, Percent: 50}},
		{ID: "health", Name: "Health", Readiness: Readiness{Completed: 1, Total: 2, Percent: 50}},
		{ID: "work", Name: "Work", Readiness: Readiness{Completed: 0, Total: 1, Percent: 0}},
	}, got)
}

func TestOverall(t *testing.T) {
	p := testutil.NewSampleProject()
	assert.Equal(t, 0, Overall(p, true))
	assert.Equal(t, 40, Overall(p, false))
}
