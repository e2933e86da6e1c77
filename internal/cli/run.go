package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/roach88/precompute/internal/config"
	"github.com/roach88/precompute/internal/ir"
	"github.com/roach88/precompute/internal/metrics"
	"github.com/roach88/precompute/internal/precompute"
	"github.com/roach88/precompute/internal/store"
)

// RunOptions holds flags for the run command.
type RunOptions struct {
	*RootOptions
	Settings config.Settings

	// RunIDGenerator allows overriding the run ID generator (for testing).
	// If nil, defaults to UUIDv7Generator.
	RunIDGenerator precompute.RunIDGenerator

	// Clock allows overriding the timing source (for testing).
	Clock precompute.Clock
}

// NewRunCommand creates the run command.
func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	return newRunCommandWith(&RunOptions{RootOptions: rootOpts})
}

func newRunCommandWith(opts *RunOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run <model-dir>",
		Short: "Estimate and materialize the configured precompute queries",
		Long: `Run the precompute planner against a store.

Every entry of the properties file is compiled to candidate plans before the
store is touched. Each candidate is estimated and materialized when the
estimate is at least --min-rows. With --test-mode the test.query.* battery
runs before planning, after each materialization and at the end.

Example:
  precompute run --store sqlite:./objects.db --summary ./summary.yaml --min-rows 1000 ./model
  precompute run --store postgres://localhost/objects --summary s.yaml --min-rows 10 --test-mode ./model`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.Settings.ModelDir = args[0]
			return runPrecompute(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Settings.Store, "store", "", "store DSN (sqlite:<path>, sqlite-pure:<path>, postgres://...) (required)")
	cmd.Flags().StringVar(&opts.Settings.Summary, "summary", "", "summary statistics file (required)")
	cmd.Flags().Int64Var(&opts.Settings.MinRows, "min-rows", config.UnsetMinRows, "minimum estimated rows for a plan to be materialized (required)")
	cmd.Flags().StringVar(&opts.Settings.Properties, "properties", "", "properties file (default <model-dir>/<model>_precompute.yaml)")
	cmd.Flags().BoolVar(&opts.Settings.TestMode, "test-mode", false, "run the test query battery around each materialization")
	cmd.Flags().BoolVar(&opts.Settings.AllOrders, "all-orders", false, "materialize one variant per ordering of each path")
	cmd.Flags().StringVar(&opts.Settings.MetricsFile, "metrics-file", "", "write run metrics in Prometheus text format")

	return cmd
}

func runPrecompute(opts *RunOptions, cmd *cobra.Command) error {
	setupLogging(opts.RootOptions, cmd)
	formatter := newFormatter(opts.RootOptions, cmd.OutOrStdout(), cmd.ErrOrStderr())

	// Missing settings fail before any planning work.
	if err := opts.Settings.Validate(); err != nil {
		return fail(formatter, "invalid settings", err)
	}

	slog.Info("loading model", "dir", opts.Settings.ModelDir)
	model, err := loadValidModel(opts.Settings.ModelDir)
	if err != nil {
		return fail(formatter, "failed to load model", err)
	}

	props, err := loadProperties(opts.Settings, model)
	if err != nil {
		return fail(formatter, "failed to load properties", err)
	}

	summary, err := config.LoadSummary(opts.Settings.Summary)
	if err != nil {
		return fail(formatter, "failed to load summary", err)
	}

	ctx, cancel := signalContext(cmd)
	defer cancel()

	slog.Info("opening store", "dsn", opts.Settings.Store)
	st, err := store.Open(ctx, opts.Settings.Store, store.WithModel(model), store.WithSummary(summary.Classes))
	if err != nil {
		return fail(formatter, "failed to open store", err)
	}
	defer func() {
		if closeErr := st.Close(); closeErr != nil {
			slog.Error("error closing store", "error", closeErr)
		}
	}()

	gen := opts.RunIDGenerator
	if gen == nil {
		gen = precompute.UUIDv7Generator{}
	}
	rc := precompute.NewRunContext(gen, model, st, props, opts.Settings)

	// Keep battery timings off stdout when it carries JSON.
	var reportWriter io.Writer = cmd.OutOrStdout()
	if opts.Format == "json" {
		reportWriter = cmd.ErrOrStderr()
	}
	orchOpts := []precompute.Option{
		precompute.WithReportWriter(reportWriter),
		precompute.WithMetrics(metrics.New()),
	}
	if opts.Clock != nil {
		orchOpts = append(orchOpts, precompute.WithClock(opts.Clock))
	}
	orch := precompute.New(rc, orchOpts...)

	report, err := orch.Run(ctx)
	if err != nil {
		return fail(formatter, "precompute failed", err)
	}

	if opts.Settings.MetricsFile != "" {
		if err := orch.Metrics().WriteTextfile(opts.Settings.MetricsFile); err != nil {
			return failWrite(formatter, "failed to write metrics", err)
		}
	}

	return outputReport(formatter, report)
}

// loadProperties reads the properties file named in settings, or the
// model's conventional one.
func loadProperties(s config.Settings, model *ir.Model) (config.Properties, error) {
	path := s.Properties
	if path == "" {
		path = config.DefaultPropertiesFile(s.ModelDir, model.Name)
	}
	slog.Debug("loading properties", "path", path)
	return config.LoadProperties(path)
}

// signalContext returns the command's context cancelled on SIGINT/SIGTERM.
func signalContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	parent := cmd.Context()
	if parent == nil {
		parent = context.Background()
	}
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}

func outputReport(f *OutputFormatter, report *precompute.Report) error {
	if f.Format == "json" {
		return f.Success(report)
	}

	for _, o := range report.Outcomes {
		status := "skipped"
		if o.Admitted {
			status = "admitted"
		}
		fmt.Fprintf(f.Writer, "%-8s %8d  %s  %s\n", status, o.Estimate, o.Key, o.Query)
	}
	fmt.Fprintf(f.Writer, "run %s: %d admitted, %d skipped (min rows %d)\n",
		report.RunID, report.Admitted(), report.Skipped(), report.MinRows)
	return nil
}
