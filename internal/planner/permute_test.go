package planner

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/precompute/internal/ir"
)

func factorial(n int) int {
	if n <= 1 {
		return 1
	}
	return n * factorial(n-1)
}

func TestPermutations_CountAndDistinct(t *testing.T) {
	for n := 1; n <= 5; n++ {
		t.Run(fmt.Sprintf("n=%d", n), func(t *testing.T) {
			perms := Permutations(n)
			assert.Len(t, perms, factorial(n))

			seen := make(map[string]bool)
			for _, perm := range perms {
				key := fmt.Sprint(perm)
				assert.False(t, seen[key], "duplicate permutation %v", perm)
				seen[key] = true

				// each is a bijection of 0..n-1
				hit := make([]bool, n)
				for _, idx := range perm {
					require.True(t, idx >= 0 && idx < n)
					hit[idx] = true
				}
				for _, h := range hit {
					assert.True(t, h)
				}
			}
		})
	}
}

func TestPermutations_Three(t *testing.T) {
	assert.ElementsMatch(t, [][]int{
		{0, 1, 2}, {0, 2, 1},
		{1, 0, 2}, {1, 2, 0},
		{2, 0, 1}, {2, 1, 0},
	}, Permutations(3))
}

func TestPermutations_One(t *testing.T) {
	assert.Equal(t, [][]int{{0}}, Permutations(1))
}

func TestOrderedVariants(t *testing.T) {
	p := newTestPlanner()

	plan, err := p.Build("Employee department Department company Company")
	require.NoError(t, err)
	original := plan.String()

	variants, err := OrderedVariants(plan)
	require.NoError(t, err)
	require.Len(t, variants, 6)

	ids := make(map[string]bool)
	for _, v := range variants {
		// only the order-by list differs
		assert.Equal(t, plan.From, v.From)
		assert.Equal(t, plan.Select, v.Select)
		assert.Equal(t, plan.Constraints, v.Constraints)
		assert.ElementsMatch(t, plan.From, v.OrderBy)

		ids[ir.MustPlanID(v)] = true
	}
	assert.Len(t, ids, 6)

	// input untouched
	assert.Equal(t, original, plan.String())
}
