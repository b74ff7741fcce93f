package formatter

import (
	"strings"
	"testing"
	"time"

	"github.com/alexanderramin/tasktree/internal/approval"
	"github.com/alexanderramin/tasktree/internal/domain"
	"github.com/alexanderramin/tasktree/internal/gate"
	"github.com/alexanderramin/tasktree/internal/template"
	"github.com/alexanderramin/tasktree/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatProjectList(t *testing.T) {
	p := testutil.NewSampleProject()
	p.ID = "65f0c0ffee00000000001234"
	p.Progress = 40
	p.UpdatedAt = time.Now().Add(-2 * time.Hour)

	out := FormatProjectList([]*domain.Project{p})

	assert.Contains(t, out, "PROJECTS")
	assert.Contains(t, out, "00001234")
	assert.Contains(t, out, "Intervention plan")
	assert.Contains(t, out, " 40%")
	assert.Contains(t, out, "2h ago")
}

func TestFormatProjectList_Empty(t *testing.T) {
	assert.Contains(t, FormatProjectList(nil), "No projects yet")
}

func TestProjectTreeItems_DepthFirst(t *testing.T) {
	p := testutil.NewSampleProject()

	items := ProjectTreeItems(p.Tasks, nil, true)

	titles := make([]string, len(items))
	for i, it := range items {
		titles[i] = it.Title
	}
	assert.Equal(t, []string{
		"Housing", "Lease signed", "Utilities",
		"Health", "Doctor visit", "Dentist",
		"Work", "CV",
	}, titles)

	assert.Equal(t, 0, items[0].Level)
	assert.Equal(t, 1, items[1].Level)
	assert.True(t, items[1].Done)
	assert.False(t, items[2].Done)
	assert.True(t, items[2].IsLast)
	assert.Equal(t, "lease", items[1].ID)
	assert.True(t, items[6].IsLast, "last pillar")
}

func TestProjectTreeItems_Badges(t *testing.T) {
	p := testutil.NewSampleProject()
	decision := func(id string) approval.Decision {
		if id == "utilities" {
			return approval.Accepted
		}
		return approval.Pending
	}

	items := ProjectTreeItems(p.Tasks, decision, false)

	var dentist, utilities TreeItem
	for _, it := range items {
		switch it.Title {
		case "Dentist":
			dentist = it
		case "Utilities":
			utilities = it
		}
		assert.Empty(t, it.ID)
	}
	joined := strings.Join(dentist.Badges, " ")
	assert.Contains(t, joined, "custom")
	assert.Contains(t, joined, "optional")
	assert.Contains(t, strings.Join(utilities.Badges, " "), "in plan")
}

func TestProjectTreeItems_Deleted(t *testing.T) {
	roots := []*domain.Task{
		testutil.NewTestPillar("Housing", testutil.WithChildren(
			testutil.NewTestTask("Gone", testutil.Deleted()),
		)),
	}

	items := ProjectTreeItems(roots, nil, false)

	require.Len(t, items, 2)
	assert.True(t, items[1].Deleted)
	assert.Contains(t, RenderTree(items), "✕")
}

func TestFormatProject(t *testing.T) {
	p := testutil.NewSampleProject()

	out := FormatProject(ProjectView{Project: p, Mode: gate.ModePreview, Progress: 40})

	assert.Contains(t, out, "Intervention plan")
	assert.Contains(t, out, "PREVIEW")
	assert.Contains(t, out, " 40%")
	assert.Contains(t, out, "PLAN")
	assert.Contains(t, out, "Doctor visit")
	assert.Contains(t, out, "PILLARS")
	assert.Contains(t, out, "1/2")
	assert.Contains(t, out, "0/1")
}

func TestFormatProject_NoTasks(t *testing.T) {
	p := testutil.NewTestProject("Empty")

	out := FormatProject(ProjectView{Project: p})

	assert.Contains(t, out, "No tasks")
	assert.NotContains(t, out, "PILLARS")
}

func TestFormatTemplateList(t *testing.T) {
	out := FormatTemplateList([]template.Summary{
		{ID: "onboarding", Title: "Onboarding", Pillars: 3, Builtin: true},
		{ID: "custom", Title: "My plan", Pillars: 1},
	})

	assert.Contains(t, out, "TEMPLATES")
	assert.Contains(t, out, "onboarding")
	assert.Contains(t, out, "builtin")
	assert.Contains(t, out, "local")
}

func TestRenderTable_AlignsStyledCells(t *testing.T) {
	out := RenderTable([]string{"A", "B"}, [][]string{
		{Bold("long cell"), "x"},
		{"s", "y"},
	})
	lines := strings.Split(out, "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, strings.Index(stripANSI(lines[2]), "x"), strings.Index(stripANSI(lines[3]), "y"))
	assert.Empty(t, RenderTable(nil, nil))
}

func stripANSI(s string) string {
	var b strings.Builder
	inEsc := false
	for _, r := range s {
		switch {
		case r == '\x1b':
			inEsc = true
		case inEsc && r == 'm':
			inEsc = false
		case !inEsc:
			b.WriteRune(r)
		}
	}
	return b.String()
}
