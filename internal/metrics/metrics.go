// Package metrics collects per-run precompute counters and phase timings.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Phases timed by PhaseDuration.
const (
	PhaseEstimate    = "estimate"
	PhaseMaterialize = "materialize"
	PhaseVerify      = "verify"
)

// Metrics holds the collectors of one run on a private registry.
type Metrics struct {
	Registry *prometheus.Registry

	// PlansEstimated counts estimate calls by entry kind.
	PlansEstimated *prometheus.CounterVec
	// PlansAdmitted counts plans whose estimate met the threshold.
	PlansAdmitted *prometheus.CounterVec
	// PlansSkipped counts plans below the threshold.
	PlansSkipped *prometheus.CounterVec
	// Materializations counts completed materialize calls.
	Materializations prometheus.Counter
	// PhaseDuration is the latency of each store-facing phase.
	PhaseDuration *prometheus.HistogramVec
}

// New registers a fresh set of collectors.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		Registry: reg,
		PlansEstimated: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "precompute_plans_estimated_total",
				Help: "Total number of candidate plans estimated",
			},
			[]string{"kind"},
		),
		PlansAdmitted: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "precompute_plans_admitted_total",
				Help: "Total number of plans admitted for materialization",
			},
			[]string{"kind"},
		),
		PlansSkipped: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "precompute_plans_skipped_total",
				Help: "Total number of plans below the row threshold",
			},
			[]string{"kind"},
		),
		Materializations: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "precompute_materializations_total",
				Help: "Total number of completed materializations",
			},
		),
		PhaseDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "precompute_phase_duration_seconds",
				Help:    "Duration of estimate, materialize and verify phases in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"phase"},
		),
	}
}

// ObservePhase records one phase duration.
func (m *Metrics) ObservePhase(phase string, d time.Duration) {
	m.PhaseDuration.WithLabelValues(phase).Observe(d.Seconds())
}

// WriteTextfile writes the registry in Prometheus text format, for the
// node exporter textfile collector.
func (m *Metrics) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, m.Registry)
}
