package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/precompute/internal/planner"
)

// ExpandResult is the JSON payload of the expand command.
type ExpandResult struct {
	Path     string   `json:"path"`
	Expanded []string `json:"expanded"`
}

// NewExpandCommand creates the expand command.
func NewExpandCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "expand <model-dir> <path>",
		Short: "Expand a path spec's subclass wildcards",
		Long: `Print the concrete paths a path spec expands to.

A class token prefixed with "+" stands for the class and each of its
subclasses, for example:

  precompute expand ./model "+Employee department Department"`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExpand(rootOpts, args[0], args[1], cmd)
		},
	}
	return cmd
}

func runExpand(opts *RootOptions, modelDir, path string, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd.OutOrStdout(), cmd.ErrOrStderr())

	model, err := loadValidModel(modelDir)
	if err != nil {
		return fail(formatter, "failed to load model", err)
	}

	expanded, err := planner.New(model).Expand(path)
	if err != nil {
		return fail(formatter, "expansion failed", err)
	}

	if formatter.Format == "json" {
		return formatter.Success(ExpandResult{Path: path, Expanded: expanded})
	}
	for _, p := range expanded {
		fmt.Fprintln(formatter.Writer, p)
	}
	return nil
}
