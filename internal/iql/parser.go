package iql

import (
	"fmt"

	"github.com/roach88/precompute/internal/ir"
)

// ClassLookup is the part of the domain model the parser resolves
// classes and relations against. *ir.Model implements it.
type ClassLookup interface {
	Class(name string) (*ir.ClassDescriptor, bool)
	Field(class, field string) (ir.FieldDescriptor, bool)
}

// Parse compiles a literal query into a plan checked against model.
func Parse(input string, model ClassLookup) (*ir.QueryPlan, error) {
	tokens, err := Lex(input)
	if err != nil {
		return nil, parseError(input, "%v", err)
	}

	p := &parser{tokens: tokens, input: input, model: model}
	return p.parseQuery()
}

type parser struct {
	tokens []Token
	pos    int
	input  string
	model  ClassLookup

	slots map[string]ir.ClassSlot
}

func (p *parser) parseQuery() (*ir.QueryPlan, error) {
	if err := p.expectKeyword("SELECT"); err != nil {
		return nil, err
	}
	selectAliases, err := p.parseAliasList()
	if err != nil {
		return nil, err
	}

	if err := p.expectKeyword("FROM"); err != nil {
		return nil, err
	}
	from, err := p.parseFrom()
	if err != nil {
		return nil, err
	}

	plan := &ir.QueryPlan{From: from}

	for _, alias := range selectAliases {
		slot, err := p.slot(alias)
		if err != nil {
			return nil, err
		}
		plan.Select = append(plan.Select, slot)
	}

	if p.current().is("WHERE") {
		p.advance()
		constraints, err := p.parseWhere()
		if err != nil {
			return nil, err
		}
		plan.Constraints = constraints
	}

	if p.current().is("ORDER") {
		p.advance()
		if err := p.expectKeyword("BY"); err != nil {
			return nil, err
		}
		aliases, err := p.parseAliasList()
		if err != nil {
			return nil, err
		}
		for _, alias := range aliases {
			slot, err := p.slot(alias)
			if err != nil {
				return nil, err
			}
			plan.OrderBy = append(plan.OrderBy, slot)
		}
	} else {
		plan.OrderBy = append([]ir.ClassSlot(nil), from...)
	}

	if !p.match(TokEOF) {
		return nil, p.errorf("unexpected %v after end of query", p.current())
	}
	return plan, nil
}

// parseFrom reads "Class [AS] alias, ..." and registers the aliases.
func (p *parser) parseFrom() ([]ir.ClassSlot, error) {
	p.slots = make(map[string]ir.ClassSlot)
	var from []ir.ClassSlot

	for {
		class, err := p.expectIdent("class name")
		if err != nil {
			return nil, err
		}
		if p.current().is("AS") {
			p.advance()
		}
		if isKeyword(p.current()) {
			return nil, p.errorf("expected alias after %q, got %v", class, p.current())
		}
		alias, err := p.expectIdent("alias")
		if err != nil {
			return nil, err
		}

		if _, dup := p.slots[alias]; dup {
			return nil, p.errorf("alias %q declared twice", alias)
		}
		if _, ok := p.model.Class(class); !ok {
			e := ir.NewModelError(ir.ErrCodeUnknownClass, "class not found in model: %s", class)
			e.Plan = p.input
			return nil, e
		}

		slot := ir.ClassSlot{Alias: alias, Class: class}
		p.slots[alias] = slot
		from = append(from, slot)

		if !p.match(TokComma) {
			return from, nil
		}
		p.advance()
	}
}

// parseWhere reads "a.rel CONTAINS b [AND ...]".
func (p *parser) parseWhere() ([]ir.JoinConstraint, error) {
	var constraints []ir.JoinConstraint

	for {
		c, err := p.parseContains()
		if err != nil {
			return nil, err
		}
		constraints = append(constraints, c)

		if !p.current().is("AND") {
			return constraints, nil
		}
		p.advance()
	}
}

func (p *parser) parseContains() (ir.JoinConstraint, error) {
	var c ir.JoinConstraint

	sourceAlias, err := p.expectIdent("alias")
	if err != nil {
		return c, err
	}
	source, err := p.slot(sourceAlias)
	if err != nil {
		return c, err
	}
	if !p.match(TokDot) {
		return c, p.errorf("expected '.' after %q, got %v", sourceAlias, p.current())
	}
	p.advance()

	relation, err := p.expectIdent("relation name")
	if err != nil {
		return c, err
	}
	if err := p.expectKeyword("CONTAINS"); err != nil {
		return c, err
	}

	targetAlias, err := p.expectIdent("alias")
	if err != nil {
		return c, err
	}
	if _, err := p.slot(targetAlias); err != nil {
		return c, err
	}

	fd, ok := p.model.Field(source.Class, relation)
	kind, isRelation := ir.ConstraintKindFor(fd)
	if !ok || !isRelation {
		e := ir.NewModelError(ir.ErrCodeUnknownRelation,
			"cannot find reference or collection %q in %s", relation, source.Class)
		e.Plan = p.input
		return c, e
	}

	return ir.JoinConstraint{
		Source:   sourceAlias,
		Relation: relation,
		Target:   targetAlias,
		Kind:     kind,
	}, nil
}

// parseAliasList reads "a, b, ..." with at least one alias.
func (p *parser) parseAliasList() ([]string, error) {
	var aliases []string
	for {
		alias, err := p.expectIdent("alias")
		if err != nil {
			return nil, err
		}
		aliases = append(aliases, alias)

		if !p.match(TokComma) {
			return aliases, nil
		}
		p.advance()
	}
}

func (p *parser) slot(alias string) (ir.ClassSlot, error) {
	slot, ok := p.slots[alias]
	if !ok {
		return ir.ClassSlot{}, p.errorf("alias %q is not declared in FROM", alias)
	}
	return slot, nil
}

func (p *parser) current() Token {
	if p.pos < len(p.tokens) {
		return p.tokens[p.pos]
	}
	return Token{Kind: TokEOF}
}

func (p *parser) advance() {
	if p.pos < len(p.tokens) {
		p.pos++
	}
}

func (p *parser) match(kind TokenKind) bool {
	return p.current().Kind == kind
}

func (p *parser) expectKeyword(keyword string) error {
	if !p.current().is(keyword) {
		return p.errorf("expected %s, got %v", keyword, p.current())
	}
	p.advance()
	return nil
}

func (p *parser) expectIdent(what string) (string, error) {
	tok := p.current()
	if tok.Kind != TokIdent {
		return "", p.errorf("expected %s, got %v", what, tok)
	}
	p.advance()
	return tok.Value, nil
}

func (p *parser) errorf(format string, args ...any) error {
	return parseError(p.input, "offset %d: %s", p.current().Pos, fmt.Sprintf(format, args...))
}

func parseError(input, format string, args ...any) *ir.Error {
	e := ir.NewPlanningError(ir.ErrCodeParseFailed, format, args...)
	e.Plan = input
	return e
}
