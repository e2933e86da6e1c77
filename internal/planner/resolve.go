package planner

import (
	"github.com/roach88/precompute/internal/ir"
)

// Resolve returns the concrete class names a class reference stands for:
// the class itself, then (only when IncludeSubclasses is set) every
// subclass in model order. Duplicates are dropped, first occurrence wins.
func (p *Planner) Resolve(ref ClassRef) ([]string, error) {
	if _, ok := p.model.Class(ref.Name); !ok {
		return nil, ir.NewModelError(ir.ErrCodeUnknownClass, "cannot find class descriptor for %q", ref.Name)
	}

	names := []string{ref.Name}
	if !ref.IncludeSubclasses {
		return names, nil
	}

	seen := map[string]bool{ref.Name: true}
	for _, sub := range p.model.Subclasses(ref.Name) {
		if seen[sub] {
			continue
		}
		seen[sub] = true
		names = append(names, sub)
	}
	return names, nil
}

// ResolveToken is Resolve on a raw, possibly wildcard-marked, class token.
func (p *Planner) ResolveToken(token string) ([]string, error) {
	return p.Resolve(ParseClassRef(token))
}
