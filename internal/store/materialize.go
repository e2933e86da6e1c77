package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/roach88/precompute/internal/ir"
)

type runIDKey struct{}

// ContextWithRunID tags ctx with the run that materializations belong to.
func ContextWithRunID(ctx context.Context, runID string) context.Context {
	return context.WithValue(ctx, runIDKey{}, runID)
}

// RunIDFromContext returns the run ID set by ContextWithRunID, or "".
func RunIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(runIDKey{}).(string)
	return id
}

// TableName returns the table a plan materializes into under the given
// ordering hints. Empty hints mean the plan's own order-by list.
func TableName(plan *ir.QueryPlan, orderBy []ir.ClassSlot) (string, error) {
	ordered := plan.Clone()
	if len(orderBy) > 0 {
		ordered.OrderBy = append([]ir.ClassSlot(nil), orderBy...)
	}
	id, err := ir.PlanID(ordered)
	if err != nil {
		return "", err
	}
	return "precomp_" + id[:16], nil
}

// Materialize stores plan's rows in a dedicated table ordered and indexed
// by orderBy, and records it in the catalog.
//
// Materializing a plan already in the catalog under the same ordering is
// a successful no-op. The table, index and catalog row are written in one
// transaction.
func (s *Store) Materialize(ctx context.Context, plan *ir.QueryPlan, orderBy []ir.ClassSlot) error {
	if plan == nil {
		return ir.NewStoreError("materialize", nil, fmt.Errorf("nil plan"))
	}
	if err := s.materialize(ctx, plan, orderBy); err != nil {
		return ir.NewStoreError("materialize", plan, err)
	}
	return nil
}

func (s *Store) materialize(ctx context.Context, plan *ir.QueryPlan, orderBy []ir.ClassSlot) error {
	table, err := TableName(plan, orderBy)
	if err != nil {
		return err
	}
	planID, err := ir.PlanID(plan)
	if err != nil {
		return err
	}

	exists, err := s.cataloged(ctx, table)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}

	m, err := s.compiler.CompileMaterialize(plan, table, orderBy)
	if err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, m.Create); err != nil {
		return fmt.Errorf("create %s: %w", table, err)
	}
	res, err := tx.ExecContext(ctx, m.Insert, m.Params...)
	if err != nil {
		return fmt.Errorf("fill %s: %w", table, err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("fill %s: %w", table, err)
	}
	if _, err := tx.ExecContext(ctx, m.Index); err != nil {
		return fmt.Errorf("index %s: %w", table, err)
	}

	_, err = tx.ExecContext(ctx, s.rebind(`
		INSERT INTO precomputed (table_name, plan_id, plan, order_by, run_id, row_count, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`), table, planID, plan.String(), strings.Join(m.OrderBy, ","),
		RunIDFromContext(ctx), rows, s.now().UTC().Format(timeLayout))
	if err != nil {
		return fmt.Errorf("record %s: %w", table, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

func (s *Store) cataloged(ctx context.Context, table string) (bool, error) {
	var name string
	err := s.db.QueryRowContext(ctx, s.rebind(`SELECT table_name FROM precomputed WHERE table_name = ?`), table).Scan(&name)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("query catalog: %w", err)
	}
	return true, nil
}
