package planner

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/precompute/internal/ir"
	"github.com/roach88/precompute/internal/testutil"
)

func newTestPlanner() *Planner {
	return New(testutil.SampleModel())
}

func TestParseClassRef(t *testing.T) {
	assert.Equal(t, ClassRef{Name: "Employee"}, ParseClassRef("Employee"))
	assert.Equal(t, ClassRef{Name: "Employee", IncludeSubclasses: true}, ParseClassRef("+Employee"))
}

func TestTokenize_CollapsesWhitespace(t *testing.T) {
	assert.Equal(t,
		[]string{"Employee", "department", "Department"},
		Tokenize("  Employee \t department\n  Department "))
	assert.Empty(t, Tokenize("   "))
}

func TestResolve(t *testing.T) {
	p := newTestPlanner()

	tests := []struct {
		name  string
		token string
		want  []string
	}{
		{"plain class", "Employee", []string{"Employee"}},
		{"wildcard", "+Employee", []string{"Employee", "Manager", "CEO"}},
		{"wildcard on leaf", "+CEO", []string{"CEO"}},
		{"wildcard on root", "+Thing", []string{"Thing", "Employee", "Manager", "Department", "Company", "CEO"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := p.ResolveToken(tt.token)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestResolve_UnknownClass(t *testing.T) {
	p := newTestPlanner()

	for _, token := range []string{"Nope", "+Nope"} {
		_, err := p.ResolveToken(token)
		require.Error(t, err)
		assert.True(t, ir.IsModelError(err))
		assert.Equal(t, ir.ErrCodeUnknownClass, ir.CodeOf(err))
	}
}
