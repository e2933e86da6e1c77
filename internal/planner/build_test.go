package planner

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/precompute/internal/ir"
)

func TestBuild_Reference(t *testing.T) {
	p := newTestPlanner()

	plan, err := p.Build("Employee department Department")
	require.NoError(t, err)

	assert.Equal(t, []ir.ClassSlot{
		{Alias: "a0", Class: "Employee"},
		{Alias: "a1", Class: "Department"},
	}, plan.From)
	assert.Equal(t, plan.From, plan.Select)
	assert.Equal(t, plan.From, plan.OrderBy)
	assert.Equal(t, []ir.JoinConstraint{
		{Source: "a0", Relation: "department", Target: "a1", Kind: ir.ObjectReference},
	}, plan.Constraints)

	assert.Equal(t,
		"SELECT a0, a1 FROM Employee AS a0, Department AS a1 WHERE a0.department CONTAINS a1 ORDER BY a0, a1",
		plan.String())
}

func TestBuild_Collection(t *testing.T) {
	p := newTestPlanner()

	plan, err := p.Build("Department employees Employee")
	require.NoError(t, err)
	require.Len(t, plan.Constraints, 1)
	assert.Equal(t, ir.CollectionReference, plan.Constraints[0].Kind)
}

func TestBuild_ChainLinksConsecutiveSlots(t *testing.T) {
	p := newTestPlanner()

	plan, err := p.Build("Employee department Department company Company")
	require.NoError(t, err)

	assert.Equal(t, []string{"Employee", "Department", "Company"}, plan.Classes())
	assert.Equal(t, []ir.JoinConstraint{
		{Source: "a0", Relation: "department", Target: "a1", Kind: ir.ObjectReference},
		{Source: "a1", Relation: "company", Target: "a2", Kind: ir.ObjectReference},
	}, plan.Constraints)
}

func TestBuild_RepeatedClassGetsOwnSlot(t *testing.T) {
	p := newTestPlanner()

	plan, err := p.Build("Employee department Department employees Employee")
	require.NoError(t, err)

	assert.Equal(t, []string{"Employee", "Department", "Employee"}, plan.Classes())
	assert.Len(t, plan.Constraints, 2)
	assert.Equal(t, "a2", plan.Constraints[1].Target)
}

func TestBuild_InheritedRelation(t *testing.T) {
	p := newTestPlanner()

	plan, err := p.Build("Manager department Department")
	require.NoError(t, err)
	assert.Equal(t, ir.ObjectReference, plan.Constraints[0].Kind)
}

func TestBuild_ShapeInvariant(t *testing.T) {
	p := newTestPlanner()

	paths := []string{
		"Employee department Department",
		"Employee department Department company Company",
		"Company departments Department employees Employee department Department",
	}
	for _, path := range paths {
		plan, err := p.Build(path)
		require.NoError(t, err)

		n := (len(Tokenize(path)) + 1) / 2
		assert.Len(t, plan.From, n)
		assert.Len(t, plan.Select, n)
		assert.Len(t, plan.OrderBy, n)
		assert.Len(t, plan.Constraints, n-1)
	}
}

func TestBuild_RejectsInvalidPath(t *testing.T) {
	p := newTestPlanner()

	tests := []struct {
		name    string
		path    string
		message string
	}{
		{"missing field", "Employee salary Department", `cannot find reference or collection "salary" in Employee`},
		{"attribute", "Employee age Department", "Employee.age is an attribute, not a reference or collection"},
		{"inherited attribute", "Manager name Department", "Manager.name is an attribute, not a reference or collection"},
		{"attribute after a hop", "Department employees Employee age Company", "Employee.age is an attribute"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			plan, err := p.Build(tt.path)
			require.Error(t, err)
			assert.Nil(t, plan)
			assert.True(t, ir.IsModelError(err))
			assert.Equal(t, ir.ErrCodeUnknownRelation, ir.CodeOf(err))
			assert.Contains(t, err.Error(), tt.message)

			var e *ir.Error
			require.ErrorAs(t, err, &e)
			assert.Equal(t, tt.path, e.Plan)
		})
	}
}
