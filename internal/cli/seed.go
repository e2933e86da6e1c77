package cli

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/precompute/internal/config"
	"github.com/roach88/precompute/internal/store"
)

// SeedOptions holds flags for the seed command.
type SeedOptions struct {
	*RootOptions
	Store   string
	Summary string
}

// SeedResult is the JSON payload of the seed command.
type SeedResult struct {
	Objects int              `json:"objects"`
	Classes map[string]int64 `json:"classes"`
	Summary string           `json:"summary,omitempty"`
}

// NewSeedCommand creates the seed command.
func NewSeedCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &SeedOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "seed <model-dir> <fixture.yaml>",
		Short: "Load objects into a store and write its summary statistics",
		Long: `Load a YAML object fixture into the store, then count instances per
class (including subclasses) and optionally write them as a summary file.

Example:
  precompute seed --store sqlite:./objects.db --summary ./summary.yaml ./model ./objects.yaml`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSeed(opts, args[0], args[1], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Store, "store", "", "store DSN (required)")
	cmd.Flags().StringVar(&opts.Summary, "summary", "", "write summary statistics to this file")
	_ = cmd.MarkFlagRequired("store")

	return cmd
}

func runSeed(opts *SeedOptions, modelDir, fixture string, cmd *cobra.Command) error {
	setupLogging(opts.RootOptions, cmd)
	formatter := newFormatter(opts.RootOptions, cmd.OutOrStdout(), cmd.ErrOrStderr())

	model, err := loadValidModel(modelDir)
	if err != nil {
		return fail(formatter, "failed to load model", err)
	}

	ctx, cancel := signalContext(cmd)
	defer cancel()

	st, err := store.Open(ctx, opts.Store, store.WithModel(model))
	if err != nil {
		return fail(formatter, "failed to open store", err)
	}
	defer func() {
		if closeErr := st.Close(); closeErr != nil {
			slog.Error("error closing store", "error", closeErr)
		}
	}()

	n, err := st.LoadFixtureFile(ctx, fixture)
	if err != nil {
		return fail(formatter, "failed to load fixture", err)
	}
	slog.Info("fixture loaded", "objects", n, "path", fixture)

	exact, err := st.ClassCounts(ctx)
	if err != nil {
		return fail(formatter, "failed to count objects", err)
	}
	summary := config.Summarize(model, exact)

	if opts.Summary != "" {
		if err := writeSummary(opts.Summary, summary); err != nil {
			return failWrite(formatter, "failed to write summary", err)
		}
	}

	if formatter.Format == "json" {
		return formatter.Success(SeedResult{Objects: n, Classes: summary.Classes, Summary: opts.Summary})
	}
	fmt.Fprintf(formatter.Writer, "loaded %d object(s)\n", n)
	for _, cls := range model.ClassNames() {
		fmt.Fprintf(formatter.Writer, "  %-20s %d\n", cls, summary.Classes[cls])
	}
	return nil
}

func writeSummary(path string, s *config.Summary) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := s.Write(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
