package precompute

import (
	"time"
)

// Outcome records what happened to one candidate.
type Outcome struct {
	Key      string        `json:"key"`
	PlanID   string        `json:"plan_id"`
	Query    string        `json:"query"`
	Estimate int64         `json:"estimate"`
	Admitted bool          `json:"admitted"`
	Elapsed  time.Duration `json:"elapsed_ns,omitempty"` // materialization time
}

// QueryTiming is one battery query's timings.
type QueryTiming struct {
	Key      string        `json:"key"`
	Size     int           `json:"size"`
	Elapsed  time.Duration `json:"elapsed_ns"`
	FirstRow time.Duration `json:"first_row_ns,omitempty"`
	LastRow  time.Duration `json:"last_row_ns,omitempty"`
}

// VerifyPass is one run of the battery.
type VerifyPass struct {
	Label   string        `json:"label"`
	Queries []QueryTiming `json:"queries"`
	Elapsed time.Duration `json:"elapsed_ns"`
}

// Report summarizes a finished run.
type Report struct {
	RunID         string        `json:"run_id"`
	MinRows       int64         `json:"min_rows"`
	Outcomes      []Outcome     `json:"outcomes"`
	Verifications []VerifyPass  `json:"verifications,omitempty"`
	Elapsed       time.Duration `json:"elapsed_ns"`
}

// Admitted returns the number of materialized candidates.
func (r *Report) Admitted() int {
	n := 0
	for _, o := range r.Outcomes {
		if o.Admitted {
			n++
		}
	}
	return n
}

// Skipped returns the number of candidates below the threshold.
func (r *Report) Skipped() int {
	return len(r.Outcomes) - r.Admitted()
}
