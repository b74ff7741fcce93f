package projectsvc

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/alexanderramin/tasktree/internal/domain"
	"github.com/alexanderramin/tasktree/internal/remote"
	"github.com/alexanderramin/tasktree/internal/repository"
	"github.com/alexanderramin/tasktree/internal/testutil"
	"github.com/alexanderramin/tasktree/internal/tree"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var ctx = context.Background()

// newPlan builds a valid three-pillar plan:
//
//	Housing: Lease signed [completed], Utilities
//	Health:  Doctor visit [completed], Dentist [optional custom]
//	Work:    CV
func newPlan() *domain.Project {
	return testutil.NewPlanProject()
}

func newTestService(t *testing.T) *Service {
	t.Helper()
	database := testutil.NewTestDB(t)
	return NewService(database, testutil.NewTestUoW(database), slog.New(slog.DiscardHandler))
}

func createPlan(t *testing.T, svc *Service) *domain.Project {
	t.Helper()
	p, err := svc.Create(ctx, newPlan())
	require.NoError(t, err)
	return p
}

func findTask(t *testing.T, p *domain.Project, id string) *domain.Task {
	t.Helper()
	loc, ok := tree.Find(p.Tasks, id)
	require.True(t, ok, "task %s not found", id)
	return loc.Node
}

func TestService_CreateAndGet(t *testing.T) {
	svc := newTestService(t)
	created := createPlan(t, svc)
	assert.Equal(t, 40, created.Progress, "2 of 5 pillar children completed")

	got, err := svc.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.Title, got.Title)
	assert.Equal(t, 40, got.Progress)
	assert.Equal(t, created.Tasks, got.Tasks)
}

func TestService_CreateMintsIDAndDefaults(t *testing.T) {
	svc := newTestService(t)
	p := newPlan()
	p.ID = ""
	p.Status = ""

	created, err := svc.Create(ctx, p)
	require.NoError(t, err)
	assert.True(t, domain.IsServerID(created.ID))
	assert.Equal(t, domain.ProjectDraft, created.Status)
	assert.False(t, created.CreatedAt.IsZero())
}

func TestService_CreateRejectsInvalidTree(t *testing.T) {
	svc := newTestService(t)
	p := newPlan()
	p.Tasks[0].Children[1].ID = "lease"

	_, err := svc.Create(ctx, p)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidProject)
	assert.Contains(t, err.Error(), "duplicate")
}

func TestService_CreateDuplicateProject(t *testing.T) {
	svc := newTestService(t)
	created := createPlan(t, svc)

	again := newPlan()
	again.ID = created.ID
	_, err := svc.Create(ctx, again)
	assert.ErrorIs(t, err, ErrProjectExists)
}

func TestService_GetNotFound(t *testing.T) {
	svc := newTestService(t)
	_, err := svc.Get(ctx, "missing")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestService_List(t *testing.T) {
	svc := newTestService(t)
	createPlan(t, svc)
	createPlan(t, svc)

	list, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 2)
}

func TestService_ApplyPatch_UpdateNested(t *testing.T) {
	svc := newTestService(t)
	p := createPlan(t, svc)

	housing := findTask(t, p, "housing")
	cmd := remote.UpdateCommand(p.ID, []*domain.Task{housing}, "utilities",
		map[string]any{"status": "completed"})

	got, err := svc.ApplyPatch(ctx, p.ID, cmd.Body)
	require.NoError(t, err)
	assert.Equal(t, domain.TaskCompleted, findTask(t, got, "utilities").Status)
	assert.Equal(t, "Housing", findTask(t, got, "housing").Name, "ancestor name untouched")
	assert.Equal(t, 60, got.Progress)

	stored, err := svc.Get(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 60, stored.Progress)
}

func TestService_ApplyPatch_MatchesIDAnywhere(t *testing.T) {
	svc := newTestService(t)
	p := createPlan(t, svc)

	// The node is addressed at the top level even though it lives under Health.
	body := remote.Body{Tasks: []remote.Node{{
		ID:     "dentist",
		Fields: map[string]any{"serviceProvider": "Smile clinic", "metadata": map[string]any{"addedToPlan": true}},
	}}}
	got, err := svc.ApplyPatch(ctx, p.ID, body)
	require.NoError(t, err)

	dentist := findTask(t, got, "dentist")
	assert.Equal(t, "Smile clinic", dentist.ServiceProvider)
	assert.True(t, dentist.AddedToPlan())
	assert.Equal(t, 3, tree.Size(got.Tasks[1:2]), "no node was created")
}

func TestService_ApplyPatch_CreatesUnknownChildren(t *testing.T) {
	svc := newTestService(t)
	p := createPlan(t, svc)

	child := testutil.NewTestTask("Therapy", testutil.WithID("therapy"), testutil.Custom(),
		testutil.WithChildren(testutil.NewTestTask("Intake call", testutil.WithID("intake"))))
	cmd := remote.AddCommand(p.ID, findTask(t, p, "health"), child)

	got, err := svc.ApplyPatch(ctx, p.ID, cmd.Body)
	require.NoError(t, err)

	health := findTask(t, got, "health")
	require.Len(t, health.Children, 3)
	therapy := health.Children[2]
	assert.Equal(t, "therapy", therapy.ID)
	assert.Equal(t, "Therapy", therapy.Name)
	assert.True(t, therapy.IsCustomTask)
	assert.Equal(t, domain.ChildFieldChildren, therapy.ChildField)
	require.Len(t, therapy.Children, 1)
	assert.Equal(t, "intake", therapy.Children[0].ID)
	assert.Equal(t, 33, got.Progress, "2 of 6")
}

func TestService_ApplyPatch_LeafAdoptsChildren(t *testing.T) {
	svc := newTestService(t)
	p := createPlan(t, svc)

	body := remote.Body{Tasks: []remote.Node{{
		ID: "cv",
		Children: []remote.Node{{
			ID: "cv-draft", Fields: map[string]any{"name": "Draft", "status": "to-do"},
		}},
	}}}
	got, err := svc.ApplyPatch(ctx, p.ID, body)
	require.NoError(t, err)

	cv := findTask(t, got, "cv")
	assert.Equal(t, domain.ChildFieldChildren, cv.ChildField)
	require.Len(t, cv.Children, 1)
	assert.Equal(t, "Draft", cv.Children[0].Name)
}

func TestService_ApplyPatch_TopLevelAdd(t *testing.T) {
	svc := newTestService(t)
	p := createPlan(t, svc)

	pillar := testutil.NewTestPillar("Income", testutil.WithID("income"))
	got, err := svc.ApplyPatch(ctx, p.ID, remote.AddCommand(p.ID, nil, pillar).Body)
	require.NoError(t, err)
	require.Len(t, got.Tasks, 4)
	assert.Equal(t, "income", got.Tasks[3].ID)
	assert.Equal(t, domain.TaskProject, got.Tasks[3].Type)
}

func TestService_ApplyPatch_Delete(t *testing.T) {
	svc := newTestService(t)
	p := createPlan(t, svc)

	cmd := remote.DeleteCommand(p.ID, findTask(t, p, "health"), "dentist")
	got, err := svc.ApplyPatch(ctx, p.ID, cmd.Body)
	require.NoError(t, err)
	assert.True(t, findTask(t, got, "dentist").IsDeleted)
	assert.Equal(t, 50, got.Progress, "deleted nodes drop out of readiness")

	// Deleting an unknown node is a no-op.
	_, err = svc.ApplyPatch(ctx, p.ID, remote.DeleteCommand(p.ID, nil, "ghost").Body)
	require.NoError(t, err)
}

func TestService_ApplyPatch_Errors(t *testing.T) {
	svc := newTestService(t)
	p := createPlan(t, svc)

	tests := []struct {
		name    string
		project string
		body    remote.Body
		want    error
	}{
		{
			name:    "unknown project",
			project: "missing",
			body:    remote.Body{},
			want:    repository.ErrNotFound,
		},
		{
			name:    "node without id",
			project: p.ID,
			body:    remote.Body{Tasks: []remote.Node{{Fields: map[string]any{"status": "completed"}}}},
			want:    ErrInvalidPatch,
		},
		{
			name:    "invalid status",
			project: p.ID,
			body:    remote.Body{Tasks: []remote.Node{{ID: "cv", Fields: map[string]any{"status": "done"}}}},
			want:    ErrInvalidPatch,
		},
		{
			name:    "wrong field type",
			project: p.ID,
			body:    remote.Body{Tasks: []remote.Node{{ID: "cv", Fields: map[string]any{"isRequired": "yes"}}}},
			want:    ErrInvalidPatch,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.ApplyPatch(ctx, tt.project, tt.body)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestService_ApplyPatch_RollsBackOnFailure(t *testing.T) {
	database := testutil.NewTestDB(t)
	setup := NewService(database, testutil.NewTestUoW(database), nil)
	p, err := setup.Create(ctx, newPlan())
	require.NoError(t, err)

	boom := errors.New("disk full")
	svc := NewService(database, &testutil.FailOnNthExecUoW{DB: database, FailOn: 2, Err: boom}, nil)
	body := remote.Body{Tasks: []remote.Node{
		{ID: "utilities", Fields: map[string]any{"status": "completed"}},
		{ID: "cv", Fields: map[string]any{"status": "completed"}},
	}}

	_, err = svc.ApplyPatch(ctx, p.ID, body)
	require.ErrorIs(t, err, boom)

	stored, err := setup.Get(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.TaskToDo, findTask(t, stored, "utilities").Status, "first write rolled back")
	assert.Equal(t, domain.TaskToDo, findTask(t, stored, "cv").Status)
	assert.Equal(t, 40, stored.Progress)
}
