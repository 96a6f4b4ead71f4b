package catalog

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
	cuejson "cuelang.org/go/encoding/json"

	"github.com/medizininformatik-initiative/feasibility-sq2cql/internal/cql"
	"github.com/medizininformatik-initiative/feasibility-sq2cql/internal/model"
)

//go:embed schema.cue
var schemaCUE string

// Ontology file names expected in an ontology directory.
const (
	CodeSystemsFile = "code-systems.json"
	MappingsFile    = "mappings.json"
	ConceptTreeFile = "concept-tree.json"
)

// Ontology is the parsed content of an ontology directory, ready for
// import into a catalog store.
type Ontology struct {
	CodeSystems  []cql.CodeSystemDefinition
	Mappings     []model.Mapping
	ConceptRoots []*model.TermCodeNode
}

// MappingContext builds an in-memory mapping context from the ontology.
func (o Ontology) MappingContext() *model.InMemoryContext {
	return model.NewInMemoryContext(o.Mappings, o.CodeSystems, conceptForest(o.ConceptRoots))
}

// LoadError reports a problem with one ontology file.
type LoadError struct {
	File    string
	Message string
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("%s: %s", e.File, e.Message)
}

// LoadOntology reads and validates the ontology files in dir.
//
// code-systems.json and mappings.json are required; concept-tree.json is
// optional and its absence yields an ontology without a closure tree. Every
// file is checked against the embedded CUE schema before decoding, so a
// malformed file fails with a position-carrying message instead of a partial
// import.
func LoadOntology(dir string) (Ontology, error) {
	info, err := os.Stat(dir)
	if os.IsNotExist(err) {
		return Ontology{}, fmt.Errorf("ontology directory not found: %s: %w", dir, err)
	}
	if err != nil {
		return Ontology{}, fmt.Errorf("error accessing ontology directory: %w", err)
	}
	if !info.IsDir() {
		return Ontology{}, fmt.Errorf("not a directory: %s", dir)
	}

	ctx := cuecontext.New()
	schema := ctx.CompileString(schemaCUE, cue.Filename("schema.cue"))
	if err := schema.Err(); err != nil {
		return Ontology{}, fmt.Errorf("compiling ontology schema: %w", err)
	}

	var ontology Ontology

	var codeSystems []struct {
		Name   string `json:"name"`
		System string `json:"system"`
	}
	if err := loadFile(ctx, schema, dir, CodeSystemsFile, "#CodeSystems", &codeSystems); err != nil {
		return Ontology{}, err
	}
	for _, definition := range codeSystems {
		ontology.CodeSystems = append(ontology.CodeSystems, cql.NewCodeSystemDefinition(definition.Name, definition.System))
	}

	if err := loadFile(ctx, schema, dir, MappingsFile, "#Mappings", &ontology.Mappings); err != nil {
		return Ontology{}, err
	}

	treePath := filepath.Join(dir, ConceptTreeFile)
	if _, err := os.Stat(treePath); err == nil {
		if err := loadFile(ctx, schema, dir, ConceptTreeFile, "#ConceptTree", &ontology.ConceptRoots); err != nil {
			return Ontology{}, err
		}
	} else if !os.IsNotExist(err) {
		return Ontology{}, fmt.Errorf("error accessing %s: %w", treePath, err)
	}

	return ontology, nil
}

// loadFile reads one ontology file, validates it against the named schema
// definition, and decodes it into out.
func loadFile(ctx *cue.Context, schema cue.Value, dir, name, definition string, out any) error {
	path := filepath.Join(dir, name)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &LoadError{File: name, Message: "file not found"}
		}
		return &LoadError{File: name, Message: err.Error()}
	}

	expr, err := cuejson.Extract(name, data)
	if err != nil {
		return &LoadError{File: name, Message: fmt.Sprintf("invalid JSON: %v", err)}
	}
	value := ctx.BuildExpr(expr)
	if err := value.Err(); err != nil {
		return &LoadError{File: name, Message: fmt.Sprintf("building value: %v", err)}
	}

	unified := schema.LookupPath(cue.ParsePath(definition)).Unify(value)
	if err := unified.Validate(cue.Concrete(true)); err != nil {
		return &LoadError{File: name, Message: cueerrors.Details(err, nil)}
	}

	if err := json.Unmarshal(data, out); err != nil {
		return &LoadError{File: name, Message: fmt.Sprintf("decoding: %v", err)}
	}
	return nil
}
