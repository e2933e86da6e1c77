package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/roach88/precompute/internal/ir"
	"github.com/roach88/precompute/internal/planner"
	"github.com/roach88/precompute/internal/testutil"
)

// createTestStore creates a new SQLite store in a temp dir.
func createTestStore(t *testing.T, opts ...Option) *Store {
	t.Helper()
	return createTestStoreDSN(t, "sqlite:"+filepath.Join(t.TempDir(), "test.db"), opts...)
}

func createTestStoreDSN(t *testing.T, dsn string, opts ...Option) *Store {
	t.Helper()
	clock := testutil.NewStepClock(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), time.Second)
	opts = append([]Option{WithModel(testutil.SampleModel()), WithClock(clock.Now)}, opts...)

	s, err := Open(context.Background(), dsn, opts...)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

// createSeededStore creates a store loaded with testdata/company.yaml.
func createSeededStore(t *testing.T, opts ...Option) *Store {
	t.Helper()
	s := createTestStore(t, opts...)
	n, err := s.LoadFixtureFile(context.Background(), filepath.Join("testdata", "company.yaml"))
	require.NoError(t, err)
	require.Equal(t, 7, n)
	return s
}

func buildPlan(t *testing.T, path string) *ir.QueryPlan {
	t.Helper()
	plan, err := planner.New(testutil.SampleModel()).Build(path)
	require.NoError(t, err)
	return plan
}
