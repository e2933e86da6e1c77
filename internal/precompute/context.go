package precompute

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/roach88/precompute/internal/config"
	"github.com/roach88/precompute/internal/ir"
	"github.com/roach88/precompute/internal/store"
)

// Store is the object store a run plans against.
// *store.Store implements it.
type Store interface {
	Estimate(ctx context.Context, plan *ir.QueryPlan) (int64, error)
	Execute(ctx context.Context, plan *ir.QueryPlan) (store.Results, error)
	Materialize(ctx context.Context, plan *ir.QueryPlan, orderBy []ir.ClassSlot) error
}

// RunIDGenerator generates run identifiers.
// Implemented by UUIDv7Generator (production) and
// testutil.FixedRunIDGenerator (tests).
type RunIDGenerator interface {
	Generate() string
}

// UUIDv7Generator generates time-sortable UUIDv7 run IDs.
//
// Thread-safety: UUIDv7Generator is stateless and safe for concurrent use.
type UUIDv7Generator struct{}

// Generate creates a new UUIDv7 and returns it as a hyphenated string.
//
// Panics if UUID generation fails (should never happen in practice).
func (UUIDv7Generator) Generate() string {
	return uuid.Must(uuid.NewV7()).String()
}

// Clock is the time source used for phase timings.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// RunContext is everything one run needs, built once and never modified.
type RunContext struct {
	RunID      string
	Model      *ir.Model
	Store      Store
	Properties config.Properties
	MinRows    int64
	AllOrders  bool
	TestMode   bool
}

// NewRunContext assembles a run context from loaded inputs and settings.
// The settings must already be validated.
func NewRunContext(gen RunIDGenerator, model *ir.Model, s Store, props config.Properties, settings config.Settings) RunContext {
	return RunContext{
		RunID:      gen.Generate(),
		Model:      model,
		Store:      s,
		Properties: props,
		MinRows:    settings.MinRows,
		AllOrders:  settings.AllOrders,
		TestMode:   settings.TestMode,
	}
}

var errNoModel = errors.New("run context has no model")

// validate checks the context is complete.
func (rc RunContext) validate() error {
	if rc.Model == nil {
		return errNoModel
	}
	if rc.Store == nil {
		return ir.NewConfigError(ir.ErrCodeMissingSetting, "store handle not set").WithKey("store")
	}
	if rc.MinRows < 0 {
		return ir.NewConfigError(ir.ErrCodeMissingSetting, "minimum row threshold not set").WithKey("min-rows")
	}
	return nil
}
