package tree

import (
	"testing"

	"github.com/alexanderramin/tasktree/internal/domain"
	"github.com/alexanderramin/tasktree/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate_SampleIsMixedAtPillarDepth(t *testing.T) {
	// Work uses "tasks" while its sibling pillars use "children".
	errs := Validate(testutil.NewSampleProject().Tasks)
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0].Error(), "work")
}

func TestValidate_Consistent(t *testing.T) {
	roots := []*domain.Task{
		testutil.NewTestPillar("A", testutil.WithChildren(testutil.NewTestTask("a1"))),
		testutil.NewTestPillar("B", testutil.WithChildren()),
	}
	assert.Empty(t, Validate(roots))
}

func TestValidate_DuplicateAndEnums(t *testing.T) {
	roots := []*domain.Task{
		testutil.NewTestTask("one", testutil.WithID("x")),
		testutil.NewTestTask("two", testutil.WithID("x"), testutil.WithStatus("done")),
		testutil.NewTestTask("three", testutil.WithID(""), testutil.WithType("video")),
	}
	errs := Validate(roots)
	require.Len(t, errs, 4)
	assert.Contains(t, errs[0].Error(), "duplicate id")
	assert.Contains(t, errs[1].Error(), "invalid status")
	assert.Contains(t, errs[2].Error(), "id is required")
	assert.Contains(t, errs[3].Error(), "invalid type")
}

func TestValidate_CousinsMayUseDifferentChildFields(t *testing.T) {
	roots := []*domain.Task{
		testutil.NewTestPillar("A", testutil.WithChildren(
			testutil.NewTestTask("a1", testutil.WithChildren(testutil.NewTestTask("a1x"))),
		)),
		testutil.NewTestPillar("B", testutil.WithChildren(
			testutil.NewTestTask("b1", testutil.WithTasks(testutil.NewTestTask("b1x"))),
		)),
	}
	assert.Empty(t, Validate(roots))
}

func TestValidate_NestedSiblingsMustAgree(t *testing.T) {
	roots := []*domain.Task{
		testutil.NewTestPillar("A", testutil.WithChildren(
			testutil.NewTestTask("a1", testutil.WithID("a1"), testutil.WithChildren(testutil.NewTestTask("a1x"))),
			testutil.NewTestTask("a2", testutil.WithID("a2"), testutil.WithTasks(testutil.NewTestTask("a2x"))),
		)),
	}
	errs := Validate(roots)
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0].Error(), `"a2"`)
	assert.Contains(t, errs[0].Error(), "depth-1")
}
