package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/precompute/internal/compiler"
)

// ValidationResult holds validation results.
type ValidationResult struct {
	Valid   bool                       `json:"valid"`
	Model   string                     `json:"model,omitempty"`
	Classes int                        `json:"classes,omitempty"`
	Errors  []compiler.ValidationError `json:"errors,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <model-dir>",
		Short: "Validate a domain model",
		Long: `Compile the CUE domain model and check it for duplicate names, unknown
superclasses, relations to unknown classes and inheritance cycles.

All problems are reported, not just the first.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true, // Don't print usage on errors
		SilenceErrors: true, // Don't print errors - we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, args[0], cmd)
		},
	}

	return cmd
}

func runValidate(opts *RootOptions, modelDir string, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd.OutOrStdout(), cmd.ErrOrStderr())

	res, err := LoadModel(modelDir)
	if err != nil {
		return fail(formatter, "failed to load model", err)
	}
	formatter.VerboseLog("Found %d CUE file(s) in %s", res.FileCount, modelDir)

	if errs := compiler.ValidateModel(res.Model); len(errs) > 0 {
		return outputValidationErrors(formatter, errs)
	}

	if formatter.Format == "json" {
		return formatter.Success(ValidationResult{
			Valid:   true,
			Model:   res.Model.Name,
			Classes: len(res.Model.Classes),
		})
	}
	fmt.Fprintf(formatter.Writer, "✓ Model %s valid (%d classes)\n", res.Model.Name, len(res.Model.Classes))
	return nil
}

// outputValidationErrors outputs multiple validation errors.
func outputValidationErrors(formatter *OutputFormatter, errs []compiler.ValidationError) error {
	if formatter.Format == "json" {
		response := CLIResponse{
			Status: "error",
			Data:   ValidationResult{Valid: false, Errors: errs},
			Error: &CLIError{
				Code:    errs[0].Code,
				Message: errs[0].Message,
			},
		}

		encoder := json.NewEncoder(formatter.Writer)
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(response); err != nil {
			return err
		}
		return validationFailed(len(errs))
	}

	fmt.Fprintln(formatter.Writer, "✗ Validation failed")
	fmt.Fprintln(formatter.Writer)
	for _, err := range errs {
		fmt.Fprintf(formatter.Writer, "  %s %s: %s\n", err.Code, err.Field, err.Message)
	}

	return validationFailed(len(errs))
}

func validationFailed(n int) error {
	e := NewExitError(ExitFailure, fmt.Sprintf("validation failed with %d error(s)", n))
	e.Reported = true
	return e
}
