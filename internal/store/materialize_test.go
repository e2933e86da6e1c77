package store

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/precompute/internal/ir"
)

func TestMaterialize_CreatesTableAndCatalogEntry(t *testing.T) {
	s := createSeededStore(t)
	ctx := ContextWithRunID(context.Background(), "run-1")

	plan := buildPlan(t, "Employee department Department")
	require.NoError(t, s.Materialize(ctx, plan, nil))

	table, err := TableName(plan, nil)
	require.NoError(t, err)

	var n int
	require.NoError(t, s.DB().QueryRow(fmt.Sprintf(`SELECT COUNT(*) FROM "%s"`, table)).Scan(&n))
	assert.Equal(t, 4, n)

	entries, err := s.Precomputed(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 1)

	e := entries[0]
	assert.Equal(t, table, e.Table)
	assert.Equal(t, ir.MustPlanID(plan), e.PlanID)
	assert.Equal(t, plan.String(), e.Plan)
	assert.Equal(t, []string{"a0", "a1"}, e.OrderBy)
	assert.Equal(t, "run-1", e.RunID)
	assert.Equal(t, int64(4), e.Rows)
	assert.Equal(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), e.CreatedAt)
}

func TestMaterialize_Idempotent(t *testing.T) {
	s := createSeededStore(t)
	ctx := context.Background()

	plan := buildPlan(t, "Employee department Department")
	require.NoError(t, s.Materialize(ctx, plan, nil))
	require.NoError(t, s.Materialize(ctx, plan, nil))

	entries, err := s.Precomputed(ctx)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestMaterialize_OrderingsAreDistinctTables(t *testing.T) {
	s := createSeededStore(t)
	ctx := context.Background()

	plan := buildPlan(t, "Employee department Department")
	reordered, err := plan.Reordered([]int{1, 0})
	require.NoError(t, err)

	require.NoError(t, s.Materialize(ctx, plan, nil))
	require.NoError(t, s.Materialize(ctx, reordered, nil))
	// hints equal to the reordered plan's own order map to the same table
	require.NoError(t, s.Materialize(ctx, plan, reordered.OrderBy))

	entries, err := s.Precomputed(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.NotEqual(t, entries[0].Table, entries[1].Table)
	assert.Equal(t, []string{"a1", "a0"}, entries[1].OrderBy)
}

func TestMaterialize_IndexCreated(t *testing.T) {
	s := createSeededStore(t)
	ctx := context.Background()

	plan := buildPlan(t, "Department employees Employee")
	require.NoError(t, s.Materialize(ctx, plan, nil))

	table, err := TableName(plan, nil)
	require.NoError(t, err)

	var name string
	err = s.DB().QueryRow(`SELECT name FROM sqlite_master WHERE type = 'index' AND tbl_name = ?`, table).Scan(&name)
	require.NoError(t, err)
	assert.Equal(t, table+"_order", name)
}

func TestMaterialize_FailureRollsBack(t *testing.T) {
	s := createSeededStore(t)
	ctx := context.Background()

	plan := buildPlan(t, "Employee department Department")
	bad := []ir.ClassSlot{{Alias: "nope", Class: "Employee"}}

	err := s.Materialize(ctx, plan, bad)
	require.Error(t, err)
	assert.True(t, ir.IsStoreError(err))

	entries, err := s.Precomputed(ctx)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestRunIDFromContext(t *testing.T) {
	assert.Equal(t, "", RunIDFromContext(context.Background()))
	assert.Equal(t, "r", RunIDFromContext(ContextWithRunID(context.Background(), "r")))
}
