package planner

import (
	"github.com/roach88/precompute/internal/ir"
)

// Build compiles one concrete path into a query plan.
//
// The path is validated first. Walking left to right, the first class is
// added to the select, from and order-by lists, then each following class
// is added and joined to the previous slot by a contains constraint over
// the named relation. The constraint kind follows the relation kind.
//
// Every class position gets its own slot, so a class repeated along the
// path appears once per position.
func (p *Planner) Build(path string) (*ir.QueryPlan, error) {
	if err := p.Validate(path); err != nil {
		return nil, err
	}

	tokens := Tokenize(path)
	plan := &ir.QueryPlan{}

	var current ir.ClassSlot
	for i := 0; i+2 < len(tokens); i += 2 {
		if i == 0 {
			current = ir.ClassSlot{Alias: ir.SlotAlias(0), Class: tokens[0]}
			plan.AddSlot(current)
		}

		relation := tokens[i+1]
		target := ir.ClassSlot{Alias: ir.SlotAlias(i/2 + 1), Class: tokens[i+2]}
		plan.AddSlot(target)

		kind, err := p.relation(current.Class, relation)
		if err != nil {
			err.Plan = path
			return nil, err
		}

		plan.AddConstraint(ir.JoinConstraint{
			Source:   current.Alias,
			Relation: relation,
			Target:   target.Alias,
			Kind:     kind,
		})
		current = target
	}

	return plan, nil
}
