package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/alexanderramin/tasktree/internal/config"
	"github.com/alexanderramin/tasktree/internal/domain"
	"github.com/alexanderramin/tasktree/internal/gate"
	"github.com/alexanderramin/tasktree/internal/loader"
	"github.com/alexanderramin/tasktree/internal/projectsvc"
	"github.com/alexanderramin/tasktree/internal/remote"
	"github.com/alexanderramin/tasktree/internal/repository"
	"github.com/alexanderramin/tasktree/internal/template"
	"github.com/alexanderramin/tasktree/internal/testutil"
	"github.com/alexanderramin/tasktree/internal/tree"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	promtest "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var ctx = context.Background()

// testApp wires a full App against an in-memory database served over
// httptest, so task commands sync through the real HTTP path.
func testApp(t *testing.T) *App {
	t.Helper()
	gin.SetMode(gin.TestMode)

	database := testutil.NewTestDB(t)
	svc := projectsvc.NewService(database, testutil.NewTestUoW(database), nil)
	srv := httptest.NewServer(projectsvc.NewServer(svc, prometheus.NewRegistry(), nil).Handler())
	t.Cleanup(srv.Close)

	client := remote.NewHTTPClient(remote.Config{Endpoint: srv.URL, Timeout: 5 * time.Second})
	lib := template.Library{Dir: t.TempDir()}
	reg := prometheus.NewRegistry()

	cfg := config.DefaultConfig()
	cfg.Endpoint = srv.URL

	return &App{
		Config:    cfg,
		Projects:  svc,
		Templates: lib,
		Loader:    loader.New(lib, client),
		Remote:    client,
		Observer:  remote.NewMetricsObserver(reg),
		Registry:  reg,
	}
}

// seedPlan stores the sample plan in the service and returns its id.
func seedPlan(t *testing.T, app *App) string {
	t.Helper()
	p, err := app.Projects.Create(ctx, testutil.NewPlanProject())
	require.NoError(t, err)
	return p.ID
}

// writePlanFile writes the sample plan to a temp JSON file.
func writePlanFile(t *testing.T) (string, *domain.Project) {
	t.Helper()
	p := testutil.NewPlanProject()
	data, err := json.Marshal(p)
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "plan.json")
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path, p
}

func readPlanFile(t *testing.T, path string) *domain.Project {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	p, err := loader.Decode(data)
	require.NoError(t, err)
	return p
}

func storedTask(t *testing.T, app *App, projectID, taskID string) *domain.Task {
	t.Helper()
	p, err := app.Projects.Get(ctx, projectID)
	require.NoError(t, err)
	loc, ok := tree.Find(p.Tasks, taskID)
	require.True(t, ok, "task %s", taskID)
	return loc.Node
}

// executeCmd runs a cobra command and captures stdout/stderr.
func executeCmd(t *testing.T, app *App, args ...string) (string, error) {
	t.Helper()
	root := NewRootCmd(app)
	buf := new(bytes.Buffer)
	root.SetOut(buf)
	root.SetErr(buf)
	root.SetArgs(args)
	err := root.Execute()
	return buf.String(), err
}

// --- project ---

func TestProjectList_Empty(t *testing.T) {
	app := testApp(t)

	out, err := executeCmd(t, app, "project", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "No projects yet")
}

func TestProjectImport_ThenListAndShow(t *testing.T) {
	app := testApp(t)
	path, plan := writePlanFile(t)

	out, err := executeCmd(t, app, "project", "import", path)
	require.NoError(t, err)
	assert.Contains(t, out, "Imported project Intervention plan")

	out, err = executeCmd(t, app, "project", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "Intervention plan")
	assert.Contains(t, out, " 40%")

	out, err = executeCmd(t, app, "project", "show", plan.ID)
	require.NoError(t, err)
	assert.Contains(t, out, "Doctor visit")
	assert.Contains(t, out, "(dentist)")
	assert.Contains(t, out, "1/2")
}

func TestProjectImport_Invalid(t *testing.T) {
	app := testApp(t)
	path := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"title": 3}`), 0o644))

	_, err := executeCmd(t, app, "project", "import", path)
	assert.Error(t, err)

	_, err = executeCmd(t, app, "project", "import", filepath.Join(t.TempDir(), "missing.json"))
	assert.ErrorContains(t, err, "reading project file")
}

func TestProjectShow_NotFound(t *testing.T) {
	app := testApp(t)

	_, err := executeCmd(t, app, "project", "show", "nope")
	assert.True(t, errors.Is(err, repository.ErrNotFound), err)
}

func TestProjectInit_FromBuiltinTemplate(t *testing.T) {
	app := testApp(t)

	out, err := executeCmd(t, app, "project", "init", "onboarding", "--var", "client=Ana")
	require.NoError(t, err)
	assert.Contains(t, out, "Created project Onboarding for Ana")

	out, err = executeCmd(t, app, "project", "init", "onboarding", "--name", "Custom title")
	require.NoError(t, err)
	assert.Contains(t, out, "Created project Custom title")

	projects, err := app.Projects.List(ctx)
	require.NoError(t, err)
	assert.Len(t, projects, 2)
}

func TestProjectInit_Errors(t *testing.T) {
	app := testApp(t)

	_, err := executeCmd(t, app, "project", "init", "nope")
	assert.True(t, errors.Is(err, template.ErrTemplateNotFound), err)

	_, err = executeCmd(t, app, "project", "init", "onboarding", "--var", "novalue")
	assert.ErrorContains(t, err, "want key=value")
}

func TestParseVars(t *testing.T) {
	got, err := parseVars([]string{"a=1", " b = two ", "c="})
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"a": "1", "b": "two", "c": ""}, got)

	_, err = parseVars([]string{"=x"})
	assert.Error(t, err)
}

// --- template & config ---

func TestTemplateList(t *testing.T) {
	app := testApp(t)

	out, err := executeCmd(t, app, "template", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "onboarding")
	assert.Contains(t, out, "builtin")
}

func TestConfigCmd(t *testing.T) {
	app := testApp(t)

	out, err := executeCmd(t, app, "config")
	require.NoError(t, err)
	assert.Contains(t, out, "endpoint")
	assert.Contains(t, out, app.Config.Endpoint)
	assert.Contains(t, out, "sync_tasks_branch")
}

// --- task ---

func TestTaskUpdate_SyncsToService(t *testing.T) {
	app := testApp(t)
	id := seedPlan(t, app)

	out, err := executeCmd(t, app, "--project", id, "task", "update", "utilities", "--status", "completed", "--provider", "City water")
	require.NoError(t, err)
	assert.Contains(t, out, "Synced 1 change(s).")
	assert.Contains(t, out, "EDIT")

	got := storedTask(t, app, id, "utilities")
	assert.Equal(t, domain.TaskCompleted, got.Status)
	assert.Equal(t, "City water", got.ServiceProvider)

	count, err := promtest.GatherAndCount(app.Registry, "tasktree_sync_calls_total")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestTaskUpdate_FlagErrors(t *testing.T) {
	app := testApp(t)
	id := seedPlan(t, app)

	tests := []struct {
		name string
		args []string
		want string
	}{
		{"no fields", []string{"task", "update", "cv"}, "nothing to update"},
		{"bad status", []string{"task", "update", "cv", "--status", "done"}, "invalid --status"},
		{"unset status", []string{"task", "update", "cv", "--status", ""}, "invalid --status"},
		{"bad type", []string{"task", "update", "cv", "--type", "video"}, "invalid --type"},
		{"empty name", []string{"task", "update", "cv", "--name", " "}, "must not be empty"},
		{"unknown task", []string{"task", "update", "ghost", "--status", "completed"}, `task "ghost" not found`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := executeCmd(t, app, append([]string{"--project", id}, tt.args...)...)
			assert.ErrorContains(t, err, tt.want)
		})
	}
}

func TestTaskToggle(t *testing.T) {
	app := testApp(t)
	id := seedPlan(t, app)

	_, err := executeCmd(t, app, "--project", id, "task", "toggle", "lease")
	require.NoError(t, err)
	assert.Equal(t, domain.TaskToDo, storedTask(t, app, id, "lease").Status)

	_, err = executeCmd(t, app, "--project", id, "task", "toggle", "lease")
	require.NoError(t, err)
	assert.Equal(t, domain.TaskCompleted, storedTask(t, app, id, "lease").Status)
}

func TestTaskAdd_WithName(t *testing.T) {
	app := testApp(t)
	id := seedPlan(t, app)

	out, err := executeCmd(t, app, "--project", id, "task", "add", "health", "--name", "Therapy", "--optional")
	require.NoError(t, err)
	assert.Contains(t, out, "Added Therapy")
	assert.Contains(t, out, "Synced 1 change(s).")

	p, err := app.Projects.Get(ctx, id)
	require.NoError(t, err)
	health := p.Tasks[1]
	require.Len(t, health.Children, 3)
	added := health.Children[2]
	assert.Equal(t, "Therapy", added.Name)
	assert.True(t, added.IsCustomTask)
	assert.False(t, added.IsRequired)
	assert.Equal(t, domain.TaskToDo, added.Status)
}

func TestTaskAdd_NameRequiredWithoutTerminal(t *testing.T) {
	app := testApp(t)
	id := seedPlan(t, app)

	_, err := executeCmd(t, app, "--project", id, "task", "add", "health")
	assert.ErrorContains(t, err, "--name is required")
}

func TestTaskAdd_PromptsOnTerminal(t *testing.T) {
	app := testApp(t)
	app.IsInteractive = func() bool { return true }
	id := seedPlan(t, app)

	var askedFor string
	orig := promptTaskName
	promptTaskName = func(parent string) (string, error) {
		askedFor = parent
		return "Prompted task", nil
	}
	t.Cleanup(func() { promptTaskName = orig })

	out, err := executeCmd(t, app, "--project", id, "task", "add", "work")
	require.NoError(t, err)
	assert.Equal(t, "Work", askedFor)
	assert.Contains(t, out, "Added Prompted task")

	p, err := app.Projects.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "Prompted task", p.Tasks[2].Children[1].Name)
}

func TestTaskAdd_UnknownParent(t *testing.T) {
	app := testApp(t)
	id := seedPlan(t, app)

	_, err := executeCmd(t, app, "--project", id, "task", "add", "ghost", "--name", "x")
	assert.ErrorContains(t, err, "not found")
}

func TestTaskDelete_NestedIsSoftDelete(t *testing.T) {
	app := testApp(t)
	id := seedPlan(t, app)

	out, err := executeCmd(t, app, "--project", id, "task", "delete", "dentist")
	require.NoError(t, err)
	assert.Contains(t, out, "Synced 1 change(s).")
	assert.True(t, storedTask(t, app, id, "dentist").IsDeleted)

	p, err := app.Projects.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, 50, p.Progress, "2 of 4 live children completed")
}

func TestTask_ReadOnlyModeIsRejected(t *testing.T) {
	app := testApp(t)
	id := seedPlan(t, app)

	_, err := executeCmd(t, app, "--project", id, "--mode", "read_only", "task", "toggle", "cv")
	assert.True(t, errors.Is(err, gate.ErrNotPermitted), err)
	assert.Equal(t, domain.TaskToDo, storedTask(t, app, id, "cv").Status)
}

func TestTask_AdvisoryGateProceeds(t *testing.T) {
	app := testApp(t)
	app.Config.AdvisoryGate = true
	id := seedPlan(t, app)

	_, err := executeCmd(t, app, "--project", id, "--mode", "read_only", "task", "toggle", "cv")
	require.NoError(t, err)
	assert.Equal(t, domain.TaskCompleted, storedTask(t, app, id, "cv").Status)
}

func TestTask_BadModeAndMissingSource(t *testing.T) {
	app := testApp(t)

	_, err := executeCmd(t, app, "task", "toggle", "cv")
	assert.True(t, errors.Is(err, loader.ErrNoProjectSource), err)

	_, err = executeCmd(t, app, "--mode", "admin", "--project", "x", "task", "toggle", "cv")
	assert.ErrorContains(t, err, "unknown mode")
}

func TestTask_FileProjectIsWrittenBackWhenSyncFails(t *testing.T) {
	app := testApp(t)
	path, _ := writePlanFile(t)

	out, err := executeCmd(t, app, "--file", path, "task", "toggle", "utilities")
	require.NoError(t, err)
	assert.Contains(t, out, "1 of 1 sync call(s) failed")

	p := readPlanFile(t, path)
	loc, ok := tree.Find(p.Tasks, "utilities")
	require.True(t, ok)
	assert.Equal(t, domain.TaskCompleted, loc.Node.Status)
	assert.Equal(t, domain.ChildFieldChildren, p.Tasks[0].ChildField)
}

// --- plan ---

func TestPlanAccept_PreviewFileKeepsDecision(t *testing.T) {
	app := testApp(t)
	path, _ := writePlanFile(t)

	out, err := executeCmd(t, app, "--file", path, "--mode", "preview", "plan", "accept", "dentist")
	require.NoError(t, err)
	assert.Contains(t, out, "Accepted Dentist")
	assert.Contains(t, out, "Changes kept locally")
	assert.Contains(t, out, "in plan")

	p := readPlanFile(t, path)
	loc, ok := tree.Find(p.Tasks, "dentist")
	require.True(t, ok)
	assert.True(t, loc.Node.AddedToPlan())

	out, err = executeCmd(t, app, "--file", path, "--mode", "preview", "plan", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "dentist")
	assert.Contains(t, out, "Dentist")
}

func TestPlanReject_SyncsNonCustomTask(t *testing.T) {
	app := testApp(t)
	id := seedPlan(t, app)

	out, err := executeCmd(t, app, "--project", id, "--mode", "preview", "plan", "reject", "utilities")
	require.NoError(t, err)
	assert.Contains(t, out, "Rejected Utilities")
	assert.Contains(t, out, "rejected")
	assert.Contains(t, out, "Synced 1 change(s).")

	got := storedTask(t, app, id, "utilities")
	assert.Equal(t, false, got.Metadata[domain.MetaAddedToPlan])
}

func TestPlanList_Empty(t *testing.T) {
	app := testApp(t)
	id := seedPlan(t, app)

	out, err := executeCmd(t, app, "--project", id, "plan", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "No tasks added to the plan yet.")
}

func TestPlan_ReadOnlyRejected(t *testing.T) {
	app := testApp(t)
	id := seedPlan(t, app)

	_, err := executeCmd(t, app, "--project", id, "--mode", "read_only", "plan", "accept", "cv")
	assert.True(t, errors.Is(err, gate.ErrNotPermitted), err)
}
