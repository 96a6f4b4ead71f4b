package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/medizininformatik-initiative/feasibility-sq2cql/internal/structured"
)

// ValidateOptions holds flags for the validate command.
type ValidateOptions struct {
	*RootOptions
}

// ValidationSummary is the JSON success payload of the validate command.
type ValidationSummary struct {
	Valid           bool `json:"valid"`
	InclusionGroups int  `json:"inclusion_groups"`
	ExclusionGroups int  `json:"exclusion_groups"`
	CriterionCount  int  `json:"criterion_count"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ValidateOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "validate <query-file>",
		Short: "Validate a structured query file",
		Long: `Validate that a structured query JSON file is well-formed.

Validation checks the query shape only: criterion term codes, filter
types, and the presence of at least one inclusion criterion. It does not
resolve criteria against a catalog; use translate for that.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(opts, args[0], cmd)
		},
	}

	return cmd
}

func runValidate(opts *ValidateOptions, queryFile string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
		TraceID:   newTraceID(),
	}

	data, err := os.ReadFile(queryFile)
	if err != nil {
		return reportError(formatter, ExitCommandError, ErrCodeReadFailed, fmt.Sprintf("reading query file: %v", err), nil)
	}

	query, err := structured.ParseStructuredQuery(data)
	if err != nil {
		return reportError(formatter, ExitFailure, ErrCodeInvalidQuery, err.Error(), nil)
	}

	summary := ValidationSummary{
		Valid:           true,
		InclusionGroups: len(query.InclusionCriteria),
		ExclusionGroups: len(query.ExclusionCriteria),
	}
	for _, group := range query.InclusionCriteria {
		summary.CriterionCount += len(group)
	}
	for _, group := range query.ExclusionCriteria {
		summary.CriterionCount += len(group)
	}

	if formatter.Format == "json" {
		return formatter.Success(summary)
	}
	fmt.Fprintf(formatter.Writer, "✓ Valid query: %d criterion(s) in %d inclusion group(s), %d exclusion group(s)\n",
		summary.CriterionCount, summary.InclusionGroups, summary.ExclusionGroups)
	return nil
}
