package planner

import (
	"strings"

	"github.com/roach88/precompute/internal/ir"
)

// Expand replaces every wildcard-marked class in path with each of its
// concrete substitutions and returns the resulting concrete paths.
//
// A single class token is a valid input; its expansion is its
// substitution set. Output order follows substitution order at the
// leftmost position, then the order of the expanded remainder.
// Each output path joins its tokens with single spaces.
func (p *Planner) Expand(path string) ([]string, error) {
	tokens := Tokenize(path)
	if err := checkShape(path, tokens, 1); err != nil {
		return nil, err
	}

	expanded, err := p.expandTokens(tokens)
	if err != nil {
		if e, ok := err.(*ir.Error); ok && e.Plan == "" {
			e.Plan = path
		}
		return nil, err
	}

	seen := make(map[string]bool, len(expanded))
	paths := make([]string, 0, len(expanded))
	for _, toks := range expanded {
		s := strings.Join(toks, " ")
		if seen[s] {
			continue
		}
		seen[s] = true
		paths = append(paths, s)
	}
	return paths, nil
}

// expandTokens is the recursive cross-product over a well-shaped token list.
func (p *Planner) expandTokens(tokens []string) ([][]string, error) {
	subs, err := p.ResolveToken(tokens[0])
	if err != nil {
		return nil, err
	}

	// Last class: each substitution is terminal.
	if len(tokens) == 1 {
		out := make([][]string, len(subs))
		for i, sub := range subs {
			out[i] = []string{sub}
		}
		return out, nil
	}

	relation := tokens[1]
	rest, err := p.expandTokens(tokens[2:])
	if err != nil {
		return nil, err
	}

	out := make([][]string, 0, len(subs)*len(rest))
	for _, sub := range subs {
		for _, tail := range rest {
			toks := make([]string, 0, len(tail)+2)
			toks = append(toks, sub, relation)
			toks = append(toks, tail...)
			out = append(out, toks)
		}
	}
	return out, nil
}
