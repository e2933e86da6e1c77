// Package planner compiles path specifications into query plans.
//
// A path spec names a chain of domain classes linked by relations:
//
//	Employee department Department company Company
//
// Tokens are separated by runs of whitespace. The token count is odd and
// greater than one; even positions are classes and odd positions are
// relation names (references or collections declared on the class to
// their left, possibly inherited).
//
// A class token prefixed with the wildcard marker "+" stands for the
// class and every subclass. Expansion substitutes each wildcard
// independently and combines the substitutions by cross-product along the
// chain, so a path with wildcard positions of sizes s1..sw expands to
// s1*...*sw concrete paths. No bound is placed on that product.
//
// The pipeline is:
//
//	[path spec] -> Expand -> [concrete paths] -> Validate -> Build -> [QueryPlan]
//	                                                                -> OrderedVariants (n! plans)
//
// Planner only reads the domain model; it never talks to a store.
package planner
