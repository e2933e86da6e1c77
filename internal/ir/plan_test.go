package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func twoClassPlan() *QueryPlan {
	p := &QueryPlan{}
	p.AddSlot(ClassSlot{Alias: "a0", Class: "Employee"})
	p.AddSlot(ClassSlot{Alias: "a1", Class: "Department"})
	p.AddConstraint(JoinConstraint{Source: "a0", Relation: "department", Target: "a1", Kind: ObjectReference})
	return p
}

func TestConstraintKindFor(t *testing.T) {
	kind, ok := ConstraintKindFor(FieldDescriptor{Kind: FieldReference})
	require.True(t, ok)
	assert.Equal(t, ObjectReference, kind)

	kind, ok = ConstraintKindFor(FieldDescriptor{Kind: FieldCollection})
	require.True(t, ok)
	assert.Equal(t, CollectionReference, kind)

	_, ok = ConstraintKindFor(FieldDescriptor{Kind: FieldAttribute})
	assert.False(t, ok)
}

func TestPlanString(t *testing.T) {
	p := twoClassPlan()
	assert.Equal(t,
		"SELECT a0, a1 FROM Employee AS a0, Department AS a1 WHERE a0.department CONTAINS a1 ORDER BY a0, a1",
		p.String())
}

func TestPlanCloneIsDeep(t *testing.T) {
	p := twoClassPlan()
	c := p.Clone()
	c.From[0].Class = "Manager"
	c.Constraints[0].Relation = "other"

	assert.Equal(t, "Employee", p.From[0].Class)
	assert.Equal(t, "department", p.Constraints[0].Relation)
}

func TestPlanReordered(t *testing.T) {
	p := twoClassPlan()

	r, err := p.Reordered([]int{1, 0})
	require.NoError(t, err)
	assert.Equal(t, []ClassSlot{{"a1", "Department"}, {"a0", "Employee"}}, r.OrderBy)
	assert.Equal(t, p.From, r.From)

	// original untouched
	assert.Equal(t, []ClassSlot{{"a0", "Employee"}, {"a1", "Department"}}, p.OrderBy)
}

func TestPlanReorderedRejectsBadPermutation(t *testing.T) {
	p := twoClassPlan()

	for _, perm := range [][]int{{0}, {0, 0}, {0, 2}, {-1, 0}} {
		_, err := p.Reordered(perm)
		assert.Error(t, err, "perm %v", perm)
	}
}

func TestPlanSlotAndClasses(t *testing.T) {
	p := twoClassPlan()
	s, ok := p.Slot("a1")
	require.True(t, ok)
	assert.Equal(t, "Department", s.Class)
	_, ok = p.Slot("a9")
	assert.False(t, ok)
	assert.Equal(t, []string{"Employee", "Department"}, p.Classes())
	assert.Equal(t, "a3", SlotAlias(3))
}
