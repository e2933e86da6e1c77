package store

import (
	"context"
	"fmt"

	"github.com/roach88/precompute/internal/ir"
)

// Results is a random-access view over a plan's rows.
// Each row holds one object id per select slot.
type Results interface {
	Len() int
	Row(ctx context.Context, i int) ([]int64, error)
}

// Execute runs plan and returns its results.
//
// The row count is fixed when Execute returns; Row fetches rows lazily,
// one query per call, in the plan's deterministic order.
func (s *Store) Execute(ctx context.Context, plan *ir.QueryPlan) (Results, error) {
	if plan == nil {
		return nil, ir.NewStoreError("execute", nil, fmt.Errorf("nil plan"))
	}
	n, err := s.count(ctx, plan)
	if err != nil {
		return nil, ir.NewStoreError("execute", plan, err)
	}
	return &planResults{store: s, plan: plan.Clone(), size: int(n)}, nil
}

type planResults struct {
	store *Store
	plan  *ir.QueryPlan
	size  int
}

func (r *planResults) Len() int {
	return r.size
}

func (r *planResults) Row(ctx context.Context, i int) ([]int64, error) {
	if i < 0 || i >= r.size {
		return nil, fmt.Errorf("row %d out of range [0, %d)", i, r.size)
	}

	query, params, err := r.store.compiler.CompileRow(r.plan, i)
	if err != nil {
		return nil, ir.NewStoreError("execute", r.plan, err)
	}

	row := make([]int64, len(r.plan.Select))
	dest := make([]any, len(row))
	for j := range row {
		dest[j] = &row[j]
	}
	if err := r.store.db.QueryRowContext(ctx, query, params...).Scan(dest...); err != nil {
		return nil, ir.NewStoreError("execute", r.plan, fmt.Errorf("fetch row %d: %w", i, err))
	}
	return row, nil
}
