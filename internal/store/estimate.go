package store

import (
	"context"
	"encoding/json"
	"fmt"
	"math"

	"github.com/roach88/precompute/internal/ir"
	"github.com/roach88/precompute/internal/querysql"
)

// Estimate returns the approximate row count of plan.
//
// A plan whose from list names a class recorded in the summary with zero
// instances is estimated at zero without touching the database. Otherwise
// SQLite backends count exactly and Postgres reports the planner's row
// estimate.
func (s *Store) Estimate(ctx context.Context, plan *ir.QueryPlan) (int64, error) {
	if plan == nil {
		return 0, ir.NewStoreError("estimate", nil, fmt.Errorf("nil plan"))
	}

	for _, cls := range plan.Classes() {
		if n, ok := s.summary[cls]; ok && n == 0 {
			return 0, nil
		}
	}

	var (
		rows int64
		err  error
	)
	if s.backend.Dialect == querysql.DialectPostgres {
		rows, err = s.explainRows(ctx, plan)
	} else {
		rows, err = s.count(ctx, plan)
	}
	if err != nil {
		return 0, ir.NewStoreError("estimate", plan, err)
	}
	return rows, nil
}

func (s *Store) count(ctx context.Context, plan *ir.QueryPlan) (int64, error) {
	query, params, err := s.compiler.CompileCount(plan)
	if err != nil {
		return 0, err
	}
	var n int64
	if err := s.db.QueryRowContext(ctx, query, params...).Scan(&n); err != nil {
		return 0, fmt.Errorf("count rows: %w", err)
	}
	return n, nil
}

// explainPlan is the part of EXPLAIN (FORMAT JSON) output we read.
type explainPlan struct {
	Plan struct {
		PlanRows float64 `json:"Plan Rows"`
	} `json:"Plan"`
}

func (s *Store) explainRows(ctx context.Context, plan *ir.QueryPlan) (int64, error) {
	query, params, err := s.compiler.Compile(plan)
	if err != nil {
		return 0, err
	}

	var raw []byte
	if err := s.db.QueryRowContext(ctx, "EXPLAIN (FORMAT JSON) "+query, params...).Scan(&raw); err != nil {
		return 0, fmt.Errorf("explain: %w", err)
	}
	return parseExplainRows(raw)
}

func parseExplainRows(raw []byte) (int64, error) {
	var plans []explainPlan
	if err := json.Unmarshal(raw, &plans); err != nil {
		return 0, fmt.Errorf("decode explain output: %w", err)
	}
	if len(plans) == 0 {
		return 0, fmt.Errorf("explain returned no plan")
	}
	return int64(math.Round(plans[0].Plan.PlanRows)), nil
}
