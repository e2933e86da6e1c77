package store

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFixture(t *testing.T) {
	fx, err := ParseFixture(strings.NewReader(`
objects:
  - id: 1
    class: Department
  - id: 2
    class: Employee
    refs:
      department: [1]
`))
	require.NoError(t, err)
	require.Len(t, fx.Objects, 2)
	assert.Equal(t, map[string][]int64{"department": {1}}, fx.Objects[1].Refs)
}

func TestParseFixture_UnknownField(t *testing.T) {
	_, err := ParseFixture(strings.NewReader("objects:\n  - id: 1\n    klass: X\n"))
	assert.Error(t, err)
}

func TestParseFixture_Empty(t *testing.T) {
	fx, err := ParseFixture(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, fx.Objects)
}

func TestLoadFixture_DanglingRefFails(t *testing.T) {
	s := createTestStore(t)

	_, err := s.LoadFixture(context.Background(), &Fixture{Objects: []FixtureObject{
		{ID: 1, Class: "Employee", Refs: map[string][]int64{"department": {99}}},
	}})
	require.Error(t, err)

	// rolled back
	counts, err := s.ClassCounts(context.Background())
	require.NoError(t, err)
	assert.Empty(t, counts)
}

func TestLoadFixture_MissingClass(t *testing.T) {
	s := createTestStore(t)

	_, err := s.LoadFixture(context.Background(), &Fixture{Objects: []FixtureObject{{ID: 1}}})
	assert.Error(t, err)
}

func TestClassCounts(t *testing.T) {
	s := createSeededStore(t)

	counts, err := s.ClassCounts(context.Background())
	require.NoError(t, err)
	assert.Equal(t, map[string]int64{
		"CEO":        1,
		"Company":    1,
		"Department": 2,
		"Employee":   2,
		"Manager":    1,
	}, counts)
}
