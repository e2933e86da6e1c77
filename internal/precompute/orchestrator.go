package precompute

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/roach88/precompute/internal/metrics"
	"github.com/roach88/precompute/internal/store"
)

// Orchestrator runs one precompute pass over a RunContext.
type Orchestrator struct {
	rc      RunContext
	clock   Clock
	out     io.Writer
	metrics *metrics.Metrics
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithClock sets the time source for phase timings.
func WithClock(c Clock) Option {
	return func(o *Orchestrator) { o.clock = c }
}

// WithReportWriter sets where verification timings are printed.
// Default: os.Stdout.
func WithReportWriter(w io.Writer) Option {
	return func(o *Orchestrator) { o.out = w }
}

// WithMetrics sets the collectors updated during the run.
func WithMetrics(m *metrics.Metrics) Option {
	return func(o *Orchestrator) { o.metrics = m }
}

// New creates an Orchestrator for rc.
func New(rc RunContext, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		rc:      rc,
		clock:   systemClock{},
		out:     os.Stdout,
		metrics: metrics.New(),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Metrics returns the collectors updated by Run.
func (o *Orchestrator) Metrics() *metrics.Metrics {
	return o.metrics
}

// Plan resolves every configured entry to its candidate plans without
// touching the store. The run context may omit the store and threshold.
func (o *Orchestrator) Plan(ctx context.Context) (*Resolution, error) {
	if o.rc.Model == nil {
		return nil, errNoModel
	}
	return resolve(ctx, o.rc)
}

// Run executes the precompute pass.
//
// All entries are resolved before the first store call, so a malformed
// path or unparsable query fails the run without touching the store.
// In test mode the battery runs as a warm-up, then as a timed baseline,
// then after each materialization and once more at the end.
func (o *Orchestrator) Run(ctx context.Context) (*Report, error) {
	if err := o.rc.validate(); err != nil {
		return nil, err
	}

	runStart := o.clock.Now()
	report := &Report{RunID: o.rc.RunID, MinRows: o.rc.MinRows}

	res, err := resolve(ctx, o.rc)
	if err != nil {
		return nil, err
	}
	slog.Info("precompute starting",
		"run_id", o.rc.RunID,
		"entries", len(res.Entries),
		"candidates", res.CandidateCount(),
		"min_rows", o.rc.MinRows,
		"test_mode", o.rc.TestMode)

	ctx = store.ContextWithRunID(ctx, o.rc.RunID)

	if o.rc.TestMode {
		fmt.Fprintln(o.out, "Starting tests")
		// Results are discarded; this pass warms the store's caches.
		if _, err := o.verify(ctx, res.Battery, "warm-up"); err != nil {
			return nil, err
		}

		fmt.Fprintln(o.out, "Running tests before precomputing")
		pass, err := o.verify(ctx, res.Battery, "before")
		if err != nil {
			return nil, err
		}
		report.Verifications = append(report.Verifications, pass)
	}

	for _, entry := range res.Entries {
		for _, c := range entry.Candidates {
			outcome, err := o.admit(ctx, c)
			if err != nil {
				return nil, err
			}
			report.Outcomes = append(report.Outcomes, outcome)

			if outcome.Admitted && o.rc.TestMode {
				fmt.Fprintf(o.out, "Running tests after precomputing %s: %s\n", c.Key, c.Query)
				pass, err := o.verify(ctx, res.Battery, "after "+c.Key)
				if err != nil {
					return nil, err
				}
				report.Verifications = append(report.Verifications, pass)
			}
		}
	}

	if o.rc.TestMode {
		fmt.Fprintln(o.out, "Running tests after all precomputes")
		pass, err := o.verify(ctx, res.Battery, "after all")
		if err != nil {
			return nil, err
		}
		report.Verifications = append(report.Verifications, pass)
	}

	report.Elapsed = o.clock.Now().Sub(runStart)
	slog.Info("precompute finished",
		"run_id", o.rc.RunID,
		"admitted", report.Admitted(),
		"skipped", report.Skipped(),
		"elapsed", report.Elapsed)

	return report, nil
}

// admit estimates one candidate and materializes it when the estimate
// meets the threshold. The boundary is inclusive.
func (o *Orchestrator) admit(ctx context.Context, c Candidate) (Outcome, error) {
	outcome := Outcome{Key: c.Key, PlanID: c.PlanID, Query: c.Query}
	kind := string(c.Kind)

	slog.Info("estimating", "run_id", o.rc.RunID, "key", c.Key, "plan_id", c.PlanID)

	start := o.clock.Now()
	rows, err := o.rc.Store.Estimate(ctx, c.Plan)
	o.metrics.ObservePhase(metrics.PhaseEstimate, o.clock.Now().Sub(start))
	if err != nil {
		return outcome, storeError("estimate", c.Key, c.Plan, err)
	}
	o.metrics.PlansEstimated.WithLabelValues(kind).Inc()
	outcome.Estimate = rows

	if rows < o.rc.MinRows {
		o.metrics.PlansSkipped.WithLabelValues(kind).Inc()
		slog.Debug("below threshold, skipping",
			"key", c.Key,
			"plan_id", c.PlanID,
			"rows", rows,
			"min_rows", o.rc.MinRows)
		return outcome, nil
	}

	outcome.Admitted = true
	o.metrics.PlansAdmitted.WithLabelValues(kind).Inc()
	slog.Info("precomputing",
		"run_id", o.rc.RunID,
		"key", c.Key,
		"plan_id", c.PlanID,
		"rows", rows,
		"query", c.Query)

	start = o.clock.Now()
	err = o.rc.Store.Materialize(ctx, c.Plan, c.Plan.OrderBy)
	elapsed := o.clock.Now().Sub(start)
	o.metrics.ObservePhase(metrics.PhaseMaterialize, elapsed)
	if err != nil {
		return outcome, storeError("materialize", c.Key, c.Plan, err)
	}
	o.metrics.Materializations.Inc()
	outcome.Elapsed = elapsed

	slog.Info("precomputed",
		"run_id", o.rc.RunID,
		"key", c.Key,
		"plan_id", c.PlanID,
		"elapsed", elapsed)

	return outcome, nil
}

