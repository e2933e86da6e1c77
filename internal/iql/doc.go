// Package iql parses literal precompute queries into query plans.
//
// The language is the one QueryPlan.String renders:
//
//	SELECT a, b FROM Employee AS a, Department AS b
//	WHERE a.department CONTAINS b
//	ORDER BY b, a
//
// Keywords are case-insensitive and AS is optional. Every alias used in
// SELECT, WHERE or ORDER BY must be declared in FROM. The left side of
// CONTAINS names a reference or collection on the alias's class; the
// constraint kind follows the relation kind. Without ORDER BY the plan is
// ordered by its FROM list.
//
// Syntax errors are planning errors with code PARSE_FAILED. Classes or
// relations missing from the model are model errors.
package iql
