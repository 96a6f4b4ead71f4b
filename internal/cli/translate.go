package cli

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/spf13/cobra"

	"github.com/medizininformatik-initiative/feasibility-sq2cql/internal/catalog"
	"github.com/medizininformatik-initiative/feasibility-sq2cql/internal/model"
	"github.com/medizininformatik-initiative/feasibility-sq2cql/internal/structured"
)

// TranslateOptions holds flags for the translate command.
type TranslateOptions struct {
	*RootOptions
	Ontology string // ontology directory
	Catalog  string // catalog database path
	Config   string // YAML config file path
	Output   string // output file path
}

// TranslateResult is the JSON success payload of the translate command.
type TranslateResult struct {
	CQL string `json:"cql"`
}

// NewTranslateCommand creates the translate command.
func NewTranslateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TranslateOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "translate <query-file>",
		Short: "Translate a structured query to a CQL library",
		Long: `Translate a structured query JSON file into a CQL library.

The translator resolves every criterion through a mapping catalog, given
either as an ontology directory (--ontology) or as an imported catalog
database (--catalog).`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true, // Don't print usage on errors - we handle our own error output
		SilenceErrors: true, // Don't print errors - we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTranslate(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Ontology, "ontology", "", "ontology directory to translate against")
	cmd.Flags().StringVar(&opts.Catalog, "catalog", "", "catalog database to translate against")
	cmd.Flags().StringVar(&opts.Config, "config", "", "YAML configuration file for the library header")
	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "output file path")

	return cmd
}

func runTranslate(opts *TranslateOptions, queryFile string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(), // Verbose logs go to stderr to avoid corrupting JSON
		Verbose:   opts.Verbose,
		TraceID:   newTraceID(),
	}

	mappingContext, err := loadMappingContext(cmd.Context(), opts.Ontology, opts.Catalog)
	if err != nil {
		return reportError(formatter, ExitCommandError, mappingContextErrorCode(err), err.Error(), nil)
	}

	data, err := os.ReadFile(queryFile)
	if err != nil {
		return reportError(formatter, ExitCommandError, ErrCodeReadFailed, fmt.Sprintf("reading query file: %v", err), nil)
	}

	query, err := structured.ParseStructuredQuery(data)
	if err != nil {
		return reportError(formatter, ExitFailure, ErrCodeInvalidQuery, err.Error(), nil)
	}
	formatter.VerboseLog("Parsed query with %d inclusion group(s), %d exclusion group(s)",
		len(query.InclusionCriteria), len(query.ExclusionCriteria))

	library, err := LoadConfig(opts.Config)
	if err != nil {
		return reportError(formatter, ExitCommandError, ErrCodeReadFailed, err.Error(), nil)
	}

	translator := structured.NewTranslator(mappingContext, library)
	cqlText, err := translator.Translate(query)
	if err != nil {
		if translationErr, ok := structured.IsTranslationError(err); ok {
			return reportError(formatter, ExitFailure, ErrCodeTranslation, translationErr.Message,
				map[string]string{"translation_code": string(translationErr.Code)})
		}
		return reportError(formatter, ExitFailure, ErrCodeTranslation, err.Error(), nil)
	}

	if opts.Output != "" {
		if err := os.WriteFile(opts.Output, []byte(cqlText), 0644); err != nil {
			return reportError(formatter, ExitCommandError, ErrCodeWriteFailed, fmt.Sprintf("writing output file: %v", err), nil)
		}
		formatter.VerboseLog("Wrote CQL library to %s", opts.Output)
	}

	if formatter.Format == "json" {
		return formatter.Success(TranslateResult{CQL: cqlText})
	}
	// The rendered library is already newline-terminated.
	fmt.Fprint(formatter.Writer, cqlText)
	return nil
}

// loadMappingContext resolves the catalog flags into a mapping context.
// Exactly one of ontologyDir and catalogPath must be given.
func loadMappingContext(ctx context.Context, ontologyDir, catalogPath string) (model.MappingContext, error) {
	switch {
	case ontologyDir != "" && catalogPath != "":
		return nil, errors.New("--ontology and --catalog are mutually exclusive")
	case ontologyDir != "":
		ontology, err := catalog.LoadOntology(ontologyDir)
		if err != nil {
			return nil, err
		}
		return ontology.MappingContext(), nil
	case catalogPath != "":
		if _, err := os.Stat(catalogPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("catalog database not found: %s: %w", catalogPath, err)
		}
		store, err := catalog.Open(catalogPath)
		if err != nil {
			return nil, err
		}
		defer store.Close()
		return store.LoadContext(ctx)
	default:
		return nil, errors.New("one of --ontology or --catalog is required")
	}
}

// mappingContextErrorCode classifies a loadMappingContext error.
func mappingContextErrorCode(err error) string {
	if errors.Is(err, fs.ErrNotExist) {
		return ErrCodeNotFound
	}
	var loadErr *catalog.LoadError
	if errors.As(err, &loadErr) {
		return ErrCodeInvalidOntology
	}
	return ErrCodeCatalog
}

// reportError writes the error in the configured format and returns a
// matching ExitError.
func reportError(formatter *OutputFormatter, exitCode int, code, message string, details interface{}) error {
	_ = formatter.Error(code, message, details)
	return NewExitError(exitCode, fmt.Sprintf("%s: %s", code, message))
}
