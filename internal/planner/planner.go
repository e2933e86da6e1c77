package planner

import (
	"strings"

	"github.com/roach88/precompute/internal/ir"
)

// WildcardMarker prefixes a class token to include its subclasses.
const WildcardMarker = "+"

// ClassLookup is the read-only view of the domain model the planner needs.
// *ir.Model implements it.
type ClassLookup interface {
	Class(name string) (*ir.ClassDescriptor, bool)
	Subclasses(name string) []string
	Field(class, field string) (ir.FieldDescriptor, bool)
}

// Planner resolves, expands, validates and builds paths against one model.
type Planner struct {
	model ClassLookup
}

// New creates a Planner over the given model.
func New(model ClassLookup) *Planner {
	return &Planner{model: model}
}

// ClassRef is a class token with its wildcard marker resolved.
type ClassRef struct {
	Name              string
	IncludeSubclasses bool
}

// ParseClassRef splits the wildcard marker off a class token.
func ParseClassRef(token string) ClassRef {
	if name, ok := strings.CutPrefix(token, WildcardMarker); ok {
		return ClassRef{Name: name, IncludeSubclasses: true}
	}
	return ClassRef{Name: token}
}

// Tokenize splits a path spec on runs of whitespace.
func Tokenize(path string) []string {
	return strings.Fields(path)
}

// checkShape enforces an odd token count of at least minTokens.
func checkShape(path string, tokens []string, minTokens int) error {
	if len(tokens) < minTokens || len(tokens)%2 == 0 {
		e := ir.NewPlanningError(ir.ErrCodeMalformedPath,
			"path does not have a valid number of elements (%d): %q", len(tokens), path)
		e.Plan = path
		return e
	}
	return nil
}
