package store

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// timeLayout is fixed-width so created_at sorts lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

// Precomputed is one catalog entry.
type Precomputed struct {
	Table     string    `json:"table"`
	PlanID    string    `json:"plan_id"`
	Plan      string    `json:"plan"`
	OrderBy   []string  `json:"order_by"`
	RunID     string    `json:"run_id"`
	Rows      int64     `json:"rows"`
	CreatedAt time.Time `json:"created_at"`
}

// Precomputed lists the materialization catalog, oldest first.
// Returns an empty slice (not nil) when nothing has been materialized.
func (s *Store) Precomputed(ctx context.Context) ([]Precomputed, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT table_name, plan_id, plan, order_by, run_id, row_count, created_at
		FROM precomputed
		ORDER BY created_at ASC, table_name ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query catalog: %w", err)
	}
	defer rows.Close()

	out := []Precomputed{}
	for rows.Next() {
		var (
			p         Precomputed
			orderBy   string
			createdAt string
		)
		if err := rows.Scan(&p.Table, &p.PlanID, &p.Plan, &orderBy, &p.RunID, &p.Rows, &createdAt); err != nil {
			return nil, fmt.Errorf("scan catalog: %w", err)
		}
		if orderBy != "" {
			p.OrderBy = strings.Split(orderBy, ",")
		}
		if p.CreatedAt, err = time.Parse(timeLayout, createdAt); err != nil {
			return nil, fmt.Errorf("parse created_at of %s: %w", p.Table, err)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate catalog: %w", err)
	}
	return out, nil
}
