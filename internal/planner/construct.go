package planner

import (
	"github.com/roach88/precompute/internal/ir"
)

// Construct turns a path spec into its candidate plans: one per expanded
// path, or n! per expanded path when allOrders is set. Candidates are in
// expansion order, then permutation order.
func (p *Planner) Construct(path string, allOrders bool) ([]*ir.QueryPlan, error) {
	tokens := Tokenize(path)
	if err := checkShape(path, tokens, 3); err != nil {
		return nil, err
	}

	paths, err := p.Expand(path)
	if err != nil {
		return nil, err
	}

	var plans []*ir.QueryPlan
	for _, concrete := range paths {
		plan, err := p.Build(concrete)
		if err != nil {
			return nil, err
		}
		if !allOrders {
			plans = append(plans, plan)
			continue
		}
		variants, err := OrderedVariants(plan)
		if err != nil {
			return nil, err
		}
		plans = append(plans, variants...)
	}
	return plans, nil
}
