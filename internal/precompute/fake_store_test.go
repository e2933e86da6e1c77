package precompute

import (
	"context"
	"fmt"
	"sync"

	"github.com/roach88/precompute/internal/ir"
	"github.com/roach88/precompute/internal/store"
)

// fakeStore records every call and answers from fixed tables.
type fakeStore struct {
	mu sync.Mutex

	estimates map[string]int64 // by rendered query
	sizes     map[string]int   // by rendered query
	fallback  int64

	estimateErr    error
	materializeErr error

	calls        []string
	materialized []string
	runIDs       []string
}

func newFakeStore(fallback int64) *fakeStore {
	return &fakeStore{
		estimates: make(map[string]int64),
		sizes:     make(map[string]int),
		fallback:  fallback,
	}
}

func (f *fakeStore) Estimate(ctx context.Context, plan *ir.QueryPlan) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, "estimate "+plan.String())
	if f.estimateErr != nil {
		return 0, f.estimateErr
	}
	if n, ok := f.estimates[plan.String()]; ok {
		return n, nil
	}
	return f.fallback, nil
}

func (f *fakeStore) Execute(ctx context.Context, plan *ir.QueryPlan) (store.Results, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, "execute "+plan.String())
	return fakeResults(f.sizes[plan.String()]), nil
}

func (f *fakeStore) Materialize(ctx context.Context, plan *ir.QueryPlan, orderBy []ir.ClassSlot) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, "materialize "+plan.String())
	f.runIDs = append(f.runIDs, store.RunIDFromContext(ctx))
	if f.materializeErr != nil {
		return f.materializeErr
	}
	f.materialized = append(f.materialized, plan.String())
	return nil
}

func (f *fakeStore) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

type fakeResults int

func (r fakeResults) Len() int { return int(r) }

func (r fakeResults) Row(ctx context.Context, i int) ([]int64, error) {
	if i < 0 || i >= int(r) {
		return nil, fmt.Errorf("row %d out of range", i)
	}
	return []int64{int64(i + 1)}, nil
}
