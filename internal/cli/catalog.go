package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/medizininformatik-initiative/feasibility-sq2cql/internal/catalog"
)

// CatalogImportOptions holds flags for the catalog import command.
type CatalogImportOptions struct {
	*RootOptions
	Database string // catalog database path
}

// ImportStats is the JSON success payload of the catalog import command.
type ImportStats struct {
	CodeSystems  int `json:"code_systems"`
	Mappings     int `json:"mappings"`
	ConceptRoots int `json:"concept_roots"`
}

// NewCatalogCommand creates the catalog command group.
func NewCatalogCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "Manage the mapping catalog database",
	}
	cmd.AddCommand(newCatalogImportCommand(rootOpts))
	return cmd
}

func newCatalogImportCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CatalogImportOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "import <ontology-dir>",
		Short: "Import ontology files into a catalog database",
		Long: `Validate the ontology files in a directory and import them into a
catalog database. The import is idempotent: re-importing the same
ontology leaves the catalog unchanged.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCatalogImport(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "catalog database path (required)")
	cmd.MarkFlagRequired("db")

	return cmd
}

func runCatalogImport(opts *CatalogImportOptions, ontologyDir string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
		TraceID:   newTraceID(),
	}

	ontology, err := catalog.LoadOntology(ontologyDir)
	if err != nil {
		return reportError(formatter, ExitCommandError, mappingContextErrorCode(err), err.Error(), nil)
	}
	formatter.VerboseLog("Loaded ontology: %d code system(s), %d mapping(s)",
		len(ontology.CodeSystems), len(ontology.Mappings))

	store, err := catalog.Open(opts.Database)
	if err != nil {
		return reportError(formatter, ExitCommandError, ErrCodeCatalog, err.Error(), nil)
	}
	defer store.Close()

	if err := store.ImportOntology(cmd.Context(), ontology); err != nil {
		return reportError(formatter, ExitCommandError, ErrCodeCatalog, err.Error(), nil)
	}

	stats := ImportStats{
		CodeSystems:  len(ontology.CodeSystems),
		Mappings:     len(ontology.Mappings),
		ConceptRoots: len(ontology.ConceptRoots),
	}
	if formatter.Format == "json" {
		return formatter.Success(stats)
	}
	fmt.Fprintf(formatter.Writer, "✓ Imported %d code system(s), %d mapping(s) into %s\n",
		stats.CodeSystems, stats.Mappings, opts.Database)
	return nil
}
