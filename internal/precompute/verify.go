package precompute

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/roach88/precompute/internal/metrics"
)

// verify runs every battery query once, printing size and timings.
// For a non-empty result the first and last rows are fetched and timed;
// row contents are not checked.
func (o *Orchestrator) verify(ctx context.Context, battery []ResolvedEntry, label string) (VerifyPass, error) {
	pass := VerifyPass{Label: label}
	passStart := o.clock.Now()

	for _, entry := range battery {
		for _, c := range entry.Candidates {
			result, err := o.runTestQuery(ctx, c)
			if err != nil {
				return pass, err
			}
			pass.Queries = append(pass.Queries, result)
		}
	}

	pass.Elapsed = o.clock.Now().Sub(passStart)
	o.metrics.ObservePhase(metrics.PhaseVerify, pass.Elapsed)
	fmt.Fprintf(o.out, "tests took: %s\n", pass.Elapsed)

	slog.Debug("verification pass complete",
		"run_id", o.rc.RunID,
		"label", label,
		"queries", len(pass.Queries),
		"elapsed", pass.Elapsed)

	return pass, nil
}

func (o *Orchestrator) runTestQuery(ctx context.Context, c Candidate) (QueryTiming, error) {
	qt := QueryTiming{Key: c.Key}

	fmt.Fprintf(o.out, "  running test %s:\n", c.Key)
	start := o.clock.Now()
	results, err := o.rc.Store.Execute(ctx, c.Plan)
	if err != nil {
		return qt, storeError("execute", c.Key, c.Plan, err)
	}
	qt.Size = results.Len()
	qt.Elapsed = o.clock.Now().Sub(start)
	fmt.Fprintf(o.out, "  got size %d in %s\n", qt.Size, qt.Elapsed)

	if qt.Size == 0 {
		return qt, nil
	}

	start = o.clock.Now()
	if _, err := results.Row(ctx, 0); err != nil {
		return qt, storeError("execute", c.Key, c.Plan, err)
	}
	qt.FirstRow = o.clock.Now().Sub(start)
	fmt.Fprintf(o.out, "  first row in %s\n", qt.FirstRow)

	start = o.clock.Now()
	if _, err := results.Row(ctx, qt.Size-1); err != nil {
		return qt, storeError("execute", c.Key, c.Plan, err)
	}
	qt.LastRow = o.clock.Now().Sub(start)
	fmt.Fprintf(o.out, "  last row in %s\n", qt.LastRow)

	return qt, nil
}
