package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/roach88/precompute/internal/config"
	"github.com/roach88/precompute/internal/precompute"
)

// PlanOptions holds flags for the plan command.
type PlanOptions struct {
	*RootOptions
	Properties string
	AllOrders  bool
}

// NewPlanCommand creates the plan command.
func NewPlanCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &PlanOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "plan <model-dir>",
		Short: "Show the candidate plans of every configured entry",
		Long: `Resolve the properties file into candidate plans without a store.

Useful for checking path specs and literal queries before a run: every
failure a run would report during planning is reported here.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPlan(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Properties, "properties", "", "properties file (default <model-dir>/<model>_precompute.yaml)")
	cmd.Flags().BoolVar(&opts.AllOrders, "all-orders", false, "include one variant per ordering of each path")

	return cmd
}

func runPlan(opts *PlanOptions, modelDir string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd.OutOrStdout(), cmd.ErrOrStderr())

	model, err := loadValidModel(modelDir)
	if err != nil {
		return fail(formatter, "failed to load model", err)
	}

	settings := config.Settings{
		ModelDir:   modelDir,
		Properties: opts.Properties,
		AllOrders:  opts.AllOrders,
		MinRows:    config.UnsetMinRows,
	}
	props, err := loadProperties(settings, model)
	if err != nil {
		return fail(formatter, "failed to load properties", err)
	}

	// No store: Plan never reaches it.
	rc := precompute.NewRunContext(precompute.UUIDv7Generator{}, model, nil, props, settings)
	res, err := precompute.New(rc, precompute.WithReportWriter(io.Discard)).Plan(cmd.Context())
	if err != nil {
		return fail(formatter, "planning failed", err)
	}

	if formatter.Format == "json" {
		return formatter.Success(res)
	}
	writeResolution(formatter.Writer, res)
	return nil
}

// writeResolution prints entries then the test battery, one candidate
// per line with a shortened plan ID.
func writeResolution(w io.Writer, res *precompute.Resolution) {
	writeEntries := func(entries []precompute.ResolvedEntry) {
		for _, e := range entries {
			fmt.Fprintf(w, "%s (%s): %s\n", e.Key, e.Kind, e.Value)
			for _, c := range e.Candidates {
				fmt.Fprintf(w, "  %s  %s\n", c.PlanID[:12], c.Query)
			}
		}
	}

	writeEntries(res.Entries)
	if len(res.Battery) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "test queries:")
		writeEntries(res.Battery)
	}
	fmt.Fprintf(w, "\n%d candidates, %d test queries\n", res.CandidateCount(), len(res.Battery))
}
