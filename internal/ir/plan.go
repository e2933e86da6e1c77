package ir

import (
	"fmt"
	"slices"
	"strings"
)

// ConstraintKind says which relation kind a join constraint follows.
type ConstraintKind string

const (
	// ObjectReference joins through a single-valued reference.
	ObjectReference ConstraintKind = "object_reference"

	// CollectionReference joins through a multi-valued collection.
	CollectionReference ConstraintKind = "collection_reference"
)

// ConstraintKindFor maps a relation field to the constraint that follows it.
func ConstraintKindFor(fd FieldDescriptor) (ConstraintKind, bool) {
	switch fd.Kind {
	case FieldReference:
		return ObjectReference, true
	case FieldCollection:
		return CollectionReference, true
	default:
		return "", false
	}
}

// ClassSlot is one class instance on a plan's from list.
type ClassSlot struct {
	Alias string `json:"alias"`
	Class string `json:"class"`
}

// JoinConstraint is a "contains" constraint: Source.Relation contains Target.
type JoinConstraint struct {
	Source   string         `json:"source"` // alias of the slot holding the relation
	Relation string         `json:"relation"`
	Target   string         `json:"target"` // alias of the slot being contained
	Kind     ConstraintKind `json:"kind"`
}

// QueryPlan is the compiled form of a path or a literal query.
//
// Select and From hold the same slots in the same order. OrderBy starts
// out equal to From and is only ever replaced wholesale on a clone.
type QueryPlan struct {
	Select      []ClassSlot      `json:"select"`
	From        []ClassSlot      `json:"from"`
	Constraints []JoinConstraint `json:"constraints"`
	OrderBy     []ClassSlot      `json:"order_by"`
}

// SlotAlias returns the conventional alias for the i-th from-list slot.
func SlotAlias(i int) string {
	return fmt.Sprintf("a%d", i)
}

// AddSlot appends a slot to the select, from and order-by lists.
func (p *QueryPlan) AddSlot(s ClassSlot) {
	p.Select = append(p.Select, s)
	p.From = append(p.From, s)
	p.OrderBy = append(p.OrderBy, s)
}

// AddConstraint appends a join constraint.
func (p *QueryPlan) AddConstraint(c JoinConstraint) {
	p.Constraints = append(p.Constraints, c)
}

// Slot finds a from-list slot by alias.
func (p *QueryPlan) Slot(alias string) (ClassSlot, bool) {
	for _, s := range p.From {
		if s.Alias == alias {
			return s, true
		}
	}
	return ClassSlot{}, false
}

// Classes returns the from-list class names in order.
func (p *QueryPlan) Classes() []string {
	out := make([]string, len(p.From))
	for i, s := range p.From {
		out[i] = s.Class
	}
	return out
}

// Clone returns a deep copy of the plan.
func (p *QueryPlan) Clone() *QueryPlan {
	return &QueryPlan{
		Select:      slices.Clone(p.Select),
		From:        slices.Clone(p.From),
		Constraints: slices.Clone(p.Constraints),
		OrderBy:     slices.Clone(p.OrderBy),
	}
}

// Reordered returns a clone whose order-by list is the from list
// rearranged by perm: OrderBy[i] = From[perm[i]].
//
// perm must be a bijection of 0..len(From)-1.
func (p *QueryPlan) Reordered(perm []int) (*QueryPlan, error) {
	if len(perm) != len(p.From) {
		return nil, fmt.Errorf("permutation length %d does not match from list length %d", len(perm), len(p.From))
	}
	seen := make([]bool, len(perm))
	for _, idx := range perm {
		if idx < 0 || idx >= len(perm) || seen[idx] {
			return nil, fmt.Errorf("invalid permutation %v", perm)
		}
		seen[idx] = true
	}

	clone := p.Clone()
	clone.OrderBy = make([]ClassSlot, len(perm))
	for i, idx := range perm {
		clone.OrderBy[i] = p.From[idx]
	}
	return clone, nil
}

// String renders the plan in the literal query language understood by
// package iql, e.g.
//
//	SELECT a0, a1 FROM Employee AS a0, Department AS a1
//	WHERE a0.department CONTAINS a1 ORDER BY a0, a1
//
// (on one line).
func (p *QueryPlan) String() string {
	var b strings.Builder

	b.WriteString("SELECT ")
	b.WriteString(joinAliases(p.Select))

	b.WriteString(" FROM ")
	for i, s := range p.From {
		if i > 0 {
			b.WriteString(", ")
		}
		fmt.Fprintf(&b, "%s AS %s", s.Class, s.Alias)
	}

	if len(p.Constraints) > 0 {
		b.WriteString(" WHERE ")
		for i, c := range p.Constraints {
			if i > 0 {
				b.WriteString(" AND ")
			}
			fmt.Fprintf(&b, "%s.%s CONTAINS %s", c.Source, c.Relation, c.Target)
		}
	}

	if len(p.OrderBy) > 0 {
		b.WriteString(" ORDER BY ")
		b.WriteString(joinAliases(p.OrderBy))
	}
	return b.String()
}

func joinAliases(slots []ClassSlot) string {
	aliases := make([]string, len(slots))
	for i, s := range slots {
		aliases[i] = s.Alias
	}
	return strings.Join(aliases, ", ")
}

// ToIR converts the plan to an IRObject for canonical encoding.
func (p *QueryPlan) ToIR() IRObject {
	slots := func(in []ClassSlot) IRArray {
		arr := make(IRArray, len(in))
		for i, s := range in {
			arr[i] = IRObject{"alias": IRString(s.Alias), "class": IRString(s.Class)}
		}
		return arr
	}

	constraints := make(IRArray, len(p.Constraints))
	for i, c := range p.Constraints {
		constraints[i] = IRObject{
			"source":   IRString(c.Source),
			"relation": IRString(c.Relation),
			"target":   IRString(c.Target),
			"kind":     IRString(string(c.Kind)),
		}
	}

	return IRObject{
		"version":     IRString(PlanVersion),
		"select":      slots(p.Select),
		"from":        slots(p.From),
		"constraints": constraints,
		"order_by":    slots(p.OrderBy),
	}
}
