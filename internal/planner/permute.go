package planner

import (
	"github.com/roach88/precompute/internal/ir"
)

// Permutations returns all n! orderings of 0..n-1, generated by recursive
// transposition. Callers should treat the result as an unordered set.
func Permutations(n int) [][]int {
	if n < 0 {
		return nil
	}
	array := make([]int, n)
	for i := range array {
		array[i] = i
	}

	var result [][]int
	enumerate(&result, array, n)
	return result
}

func enumerate(result *[][]int, array []int, n int) {
	if n <= 1 {
		perm := make([]int, len(array))
		copy(perm, array)
		*result = append(*result, perm)
		return
	}
	for i := 0; i < n; i++ {
		array[i], array[n-1] = array[n-1], array[i]
		enumerate(result, array, n-1)
		array[i], array[n-1] = array[n-1], array[i]
	}
}

// OrderedVariants clones plan once per permutation of its from list, each
// clone ordered by that permutation. The input plan is not modified.
func OrderedVariants(plan *ir.QueryPlan) ([]*ir.QueryPlan, error) {
	perms := Permutations(len(plan.From))
	variants := make([]*ir.QueryPlan, 0, len(perms))
	for _, perm := range perms {
		v, err := plan.Reordered(perm)
		if err != nil {
			return nil, err
		}
		variants = append(variants, v)
	}
	return variants, nil
}
