package cli

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/roach88/precompute/internal/ir"
	"github.com/roach88/precompute/internal/store"
)

// PrecomputedOptions holds flags for the precomputed command.
type PrecomputedOptions struct {
	*RootOptions
	Store string
	RunID string
}

// NewPrecomputedCommand creates the precomputed command.
func NewPrecomputedCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &PrecomputedOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "precomputed",
		Short: "List the precomputed tables recorded in a store",
		Long: `List the materialization catalog of a store, oldest first.

Each entry names the table, the plan it holds, its row count and the run
that created it.

Example:
  precompute precomputed --store sqlite:./objects.db --run-id 0192f6a0-...`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPrecomputed(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Store, "store", "", "store DSN (required)")
	cmd.Flags().StringVar(&opts.RunID, "run-id", "", "only list tables created by this run")
	_ = cmd.MarkFlagRequired("store")

	return cmd
}

func runPrecomputed(opts *PrecomputedOptions, cmd *cobra.Command) error {
	setupLogging(opts.RootOptions, cmd)
	formatter := newFormatter(opts.RootOptions, cmd.OutOrStdout(), cmd.ErrOrStderr())

	ctx, cancel := signalContext(cmd)
	defer cancel()

	st, err := store.Open(ctx, opts.Store)
	if err != nil {
		return fail(formatter, "failed to open store", ir.NewStoreError("open", nil, err))
	}
	defer func() {
		if closeErr := st.Close(); closeErr != nil {
			slog.Error("error closing store", "error", closeErr)
		}
	}()

	all, err := st.Precomputed(ctx)
	if err != nil {
		return fail(formatter, "failed to read catalog", ir.NewStoreError("catalog", nil, err))
	}

	tables := all
	if opts.RunID != "" {
		tables = []store.Precomputed{}
		for _, p := range all {
			if p.RunID == opts.RunID {
				tables = append(tables, p)
			}
		}
	}

	if formatter.Format == "json" {
		return formatter.Success(tables)
	}
	writeCatalog(formatter.Writer, tables)
	return nil
}

// writeCatalog prints one catalog entry per line.
func writeCatalog(w io.Writer, tables []store.Precomputed) {
	for _, p := range tables {
		fmt.Fprintf(w, "%s  %8d rows  run %s  %s\n", p.Table, p.Rows, p.RunID, p.Plan)
	}
	fmt.Fprintf(w, "\n%d precomputed table(s)\n", len(tables))
}
