package precompute

import (
	"context"
	"errors"
	"log/slog"

	"github.com/roach88/precompute/internal/config"
	"github.com/roach88/precompute/internal/iql"
	"github.com/roach88/precompute/internal/ir"
	"github.com/roach88/precompute/internal/planner"
)

// Candidate is one plan an entry resolved to.
type Candidate struct {
	Key    string         `json:"key"`
	Kind   config.KeyKind `json:"kind"`
	PlanID string         `json:"plan_id"`
	Plan   *ir.QueryPlan  `json:"-"`
	Query  string         `json:"query"`
}

// ResolvedEntry is a configuration entry with its candidate plans in
// generation order.
type ResolvedEntry struct {
	Key        string         `json:"key"`
	Kind       config.KeyKind `json:"kind"`
	Value      string         `json:"value"`
	Candidates []Candidate    `json:"candidates"`
}

// Resolution is the output of planning: the entries to materialize and
// the verification battery, both in ascending key order.
type Resolution struct {
	Entries []ResolvedEntry `json:"entries"`
	Battery []ResolvedEntry `json:"battery"`
}

// CandidateCount returns the number of materialization candidates.
func (r *Resolution) CandidateCount() int {
	n := 0
	for _, e := range r.Entries {
		n += len(e.Candidates)
	}
	return n
}

// resolve classifies every property and compiles it to plans.
// No store call is made. Cancellation is checked between entries.
func resolve(ctx context.Context, rc RunContext) (*Resolution, error) {
	entries, err := rc.Properties.Entries()
	if err != nil {
		return nil, err
	}

	p := planner.New(rc.Model)
	res := &Resolution{}

	for _, e := range entries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		plans, err := resolveEntry(p, rc, e)
		if err != nil {
			return nil, withKey(err, e.Key)
		}

		re := ResolvedEntry{Key: e.Key, Kind: e.Kind, Value: e.Value}
		for _, plan := range plans {
			id, err := ir.PlanID(plan)
			if err != nil {
				return nil, withKey(err, e.Key)
			}
			re.Candidates = append(re.Candidates, Candidate{
				Key:    e.Key,
				Kind:   e.Kind,
				PlanID: id,
				Plan:   plan,
				Query:  plan.String(),
			})
		}

		slog.Debug("entry resolved",
			"key", e.Key,
			"kind", e.Kind,
			"candidates", len(re.Candidates))

		if e.Kind == config.KindTestQuery {
			res.Battery = append(res.Battery, re)
		} else {
			res.Entries = append(res.Entries, re)
		}
	}

	return res, nil
}

func resolveEntry(p *planner.Planner, rc RunContext, e config.Entry) ([]*ir.QueryPlan, error) {
	switch e.Kind {
	case config.KindConstructQuery:
		return p.Construct(e.Value, rc.AllOrders)
	default:
		plan, err := iql.Parse(e.Value, rc.Model)
		if err != nil {
			return nil, err
		}
		return []*ir.QueryPlan{plan}, nil
	}
}

// withKey annotates err with the configuration key being processed.
func withKey(err error, key string) error {
	var e *ir.Error
	if errors.As(err, &e) {
		return e.WithKey(key)
	}
	return err
}

// storeError makes sure a store failure is a store error naming the key
// and plan.
func storeError(op, key string, plan *ir.QueryPlan, err error) error {
	var e *ir.Error
	if errors.As(err, &e) && e.Kind == ir.KindStore {
		return e.WithKey(key)
	}
	return ir.NewStoreError(op, plan, err).WithKey(key)
}
