package planner

import (
	"github.com/roach88/precompute/internal/ir"
)

// Validate checks a concrete path against the model.
//
// The path must have an odd token count greater than one. For every
// (classA, relation, classB) triple both classes must exist and relation
// must be a reference or collection on classA, declared or inherited.
//
// Validate does not check that classB is assignable to the relation's
// declared target type.
func (p *Planner) Validate(path string) error {
	tokens := Tokenize(path)
	if err := checkShape(path, tokens, 3); err != nil {
		return err
	}

	for i := 0; i+2 < len(tokens); i += 2 {
		start, relation, end := tokens[i], tokens[i+1], tokens[i+2]

		for _, cls := range []string{start, end} {
			if _, ok := p.model.Class(cls); !ok {
				e := ir.NewModelError(ir.ErrCodeUnknownClass, "class not found in model: %s", cls)
				e.Plan = path
				return e
			}
		}

		if _, err := p.relation(start, relation); err != nil {
			err.Plan = path
			return err
		}
	}
	return nil
}

// relation looks up a reference or collection on class and returns the
// constraint kind a join over it uses.
func (p *Planner) relation(class, name string) (ir.ConstraintKind, *ir.Error) {
	fd, ok := p.model.Field(class, name)
	if !ok {
		return "", ir.NewModelError(ir.ErrCodeUnknownRelation,
			"cannot find reference or collection %q in %s", name, class)
	}
	kind, ok := ir.ConstraintKindFor(fd)
	if !ok {
		return "", ir.NewModelError(ir.ErrCodeUnknownRelation,
			"%s.%s is an %s, not a reference or collection", class, name, fd.Kind)
	}
	return kind, nil
}
