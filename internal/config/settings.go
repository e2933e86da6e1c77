package config

import (
	"github.com/roach88/precompute/internal/ir"
)

// UnsetMinRows marks a threshold that was never configured.
const UnsetMinRows int64 = -1

// Settings are the run-level options of a precompute run.
type Settings struct {
	// Required.
	Store   string // store DSN
	Summary string // summary statistics file
	MinRows int64  // admission threshold, UnsetMinRows when missing

	ModelDir   string
	Properties string // defaults to DefaultPropertiesFile(ModelDir, model name)

	TestMode    bool
	AllOrders   bool
	MetricsFile string
}

// Validate checks the required settings, in the order store, summary,
// min-rows, and reports the first one missing.
func (s Settings) Validate() error {
	if s.Store == "" {
		return missing("store", "store handle not set")
	}
	if s.Summary == "" {
		return missing("summary", "summary statistics source not set")
	}
	if s.MinRows == UnsetMinRows {
		return missing("min-rows", "minimum row threshold not set")
	}
	if s.MinRows < 0 {
		return ir.NewConfigError(ir.ErrCodeMissingSetting, "minimum row threshold must not be negative: %d", s.MinRows).WithKey("min-rows")
	}
	return nil
}

func missing(key, msg string) error {
	return ir.NewConfigError(ir.ErrCodeMissingSetting, "%s", msg).WithKey(key)
}
