package catalog

import (
	"context"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/medizininformatik-initiative/feasibility-sq2cql/internal/cql"
	"github.com/medizininformatik-initiative/feasibility-sq2cql/internal/model"
)

func testOntology() Ontology {
	diabetes := model.TermCode{System: "http://snomed.info/sct", Code: "73211009", Display: "Diabetes mellitus"}
	diabetesType1 := model.TermCode{System: "http://snomed.info/sct", Code: "46635009", Display: "Diabetes mellitus type 1"}
	diabetesType2 := model.TermCode{System: "http://snomed.info/sct", Code: "44054006", Display: "Diabetes mellitus type 2"}

	return Ontology{
		CodeSystems: []cql.CodeSystemDefinition{
			cql.NewCodeSystemDefinition("snomed", "http://snomed.info/sct"),
			cql.NewCodeSystemDefinition("loinc", "http://loinc.org"),
		},
		Mappings: []model.Mapping{
			{
				Key:          model.ContextualTermCode{Context: "Condition", TermCode: diabetes},
				ResourceType: "Condition",
				PrimaryCode:  &diabetes,
			},
			{
				Key:          model.ContextualTermCode{Context: "Condition", TermCode: diabetesType1},
				ResourceType: "Condition",
				PrimaryCode:  &diabetesType1,
			},
		},
		ConceptRoots: []*model.TermCodeNode{
			{
				Context:  "Condition",
				TermCode: diabetes,
				Children: []*model.TermCodeNode{
					{Context: "Condition", TermCode: diabetesType1},
					{Context: "Condition", TermCode: diabetesType2},
				},
			},
		},
	}
}

func TestOpen_CreatesNewDatabase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.db")

	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	defer s.Close()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Error("database file was not created")
	}
}

func TestOpen_Idempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.db")

	for i := 0; i < 3; i++ {
		s, err := Open(path)
		if err != nil {
			t.Fatalf("Open() iteration %d failed: %v", i, err)
		}
		s.Close()
	}

	s, err := Open(path)
	if err != nil {
		t.Fatalf("final Open() failed: %v", err)
	}
	defer s.Close()

	tables := []string{"code_systems", "mappings", "concept_nodes"}
	for _, table := range tables {
		var name string
		err := s.db.QueryRow(
			"SELECT name FROM sqlite_master WHERE type='table' AND name=?",
			table,
		).Scan(&name)
		if err != nil {
			t.Errorf("table %q not found after idempotent opens: %v", table, err)
		}
	}
}

func TestOpen_AppliesPragmas(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.db")

	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	defer s.Close()

	checks := map[string]string{
		"journal_mode": "wal",
		"foreign_keys": "1",
	}
	for name, expected := range checks {
		if got := pragmaValue(t, s, name); got != expected {
			t.Errorf("PRAGMA %s = %q, expected %q", name, got, expected)
		}
	}
}

func TestOpen_StampsSchemaVersion(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.db")

	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	defer s.Close()

	if got := pragmaValue(t, s, "user_version"); got != "1" {
		t.Errorf("user_version = %q, expected %q", got, "1")
	}
}

func pragmaValue(t *testing.T, s *Store, name string) string {
	t.Helper()
	var value string
	if err := s.db.QueryRow("PRAGMA " + name).Scan(&value); err != nil {
		t.Fatalf("query PRAGMA %s: %v", name, err)
	}
	return value
}

func TestOpen_InvalidPath(t *testing.T) {
	_, err := Open("/nonexistent/dir/catalog.db")
	if err == nil {
		t.Error("expected error for invalid path, got nil")
	}
}

func TestClose_NilDB(t *testing.T) {
	s := &Store{db: nil}
	if err := s.Close(); err != nil {
		t.Errorf("Close() on nil db should not error: %v", err)
	}
}

func TestImportOntology_RoundTrip(t *testing.T) {
	ctx := context.Background()
	s, err := Open(filepath.Join(t.TempDir(), "catalog.db"))
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	defer s.Close()

	ontology := testOntology()
	if err := s.ImportOntology(ctx, ontology); err != nil {
		t.Fatalf("ImportOntology() failed: %v", err)
	}

	codeSystems, err := s.ReadCodeSystems(ctx)
	if err != nil {
		t.Fatalf("ReadCodeSystems() failed: %v", err)
	}
	// Ordered by name, so loinc before snomed.
	want := []cql.CodeSystemDefinition{
		cql.NewCodeSystemDefinition("loinc", "http://loinc.org"),
		cql.NewCodeSystemDefinition("snomed", "http://snomed.info/sct"),
	}
	if !reflect.DeepEqual(codeSystems, want) {
		t.Errorf("code systems = %v, want %v", codeSystems, want)
	}

	mappings, err := s.ReadMappings(ctx)
	if err != nil {
		t.Fatalf("ReadMappings() failed: %v", err)
	}
	if len(mappings) != 2 {
		t.Fatalf("got %d mappings, want 2", len(mappings))
	}
	// Ordered by context, system, code: 46635009 before 73211009.
	if mappings[0].Key.TermCode.Code != "46635009" {
		t.Errorf("first mapping code = %q, want 46635009", mappings[0].Key.TermCode.Code)
	}
	if !reflect.DeepEqual(mappings[1], ontology.Mappings[0]) {
		t.Errorf("mapping = %+v, want %+v", mappings[1], ontology.Mappings[0])
	}

	roots, err := s.ReadConceptRoots(ctx)
	if err != nil {
		t.Fatalf("ReadConceptRoots() failed: %v", err)
	}
	if !reflect.DeepEqual(roots, ontology.ConceptRoots) {
		t.Errorf("concept roots = %+v, want %+v", roots, ontology.ConceptRoots)
	}
}

func TestImportOntology_Idempotent(t *testing.T) {
	ctx := context.Background()
	s, err := Open(filepath.Join(t.TempDir(), "catalog.db"))
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	defer s.Close()

	ontology := Ontology{
		CodeSystems: testOntology().CodeSystems,
		Mappings:    testOntology().Mappings,
	}
	if err := s.ImportOntology(ctx, ontology); err != nil {
		t.Fatalf("first import failed: %v", err)
	}
	if err := s.ImportOntology(ctx, ontology); err != nil {
		t.Fatalf("second import failed: %v", err)
	}

	mappings, err := s.ReadMappings(ctx)
	if err != nil {
		t.Fatalf("ReadMappings() failed: %v", err)
	}
	if len(mappings) != 2 {
		t.Errorf("got %d mappings after double import, want 2", len(mappings))
	}
}

func TestLoadContext(t *testing.T) {
	ctx := context.Background()
	s, err := Open(filepath.Join(t.TempDir(), "catalog.db"))
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	defer s.Close()

	if err := s.ImportOntology(ctx, testOntology()); err != nil {
		t.Fatalf("ImportOntology() failed: %v", err)
	}

	mappingContext, err := s.LoadContext(ctx)
	if err != nil {
		t.Fatalf("LoadContext() failed: %v", err)
	}

	if _, ok := mappingContext.FindCodeSystemDefinition("http://snomed.info/sct"); !ok {
		t.Error("snomed code system definition not found")
	}

	diabetes := model.TermCode{System: "http://snomed.info/sct", Code: "73211009", Display: "Diabetes mellitus"}
	key := model.ContextualTermCode{Context: "Condition", TermCode: diabetes}
	if _, ok := mappingContext.FindMapping(key); !ok {
		t.Error("diabetes mapping not found")
	}

	// Expansion walks the closure tree imported above.
	concept := model.ContextualConcept{Context: "Condition", TermCodes: []model.TermCode{diabetes}}
	expansion := mappingContext.ExpandConcept(concept)
	if len(expansion) != 3 {
		t.Fatalf("got expansion of %d codes, want 3", len(expansion))
	}
	if expansion[1].TermCode.Code != "46635009" || expansion[2].TermCode.Code != "44054006" {
		t.Errorf("expansion = %v, want diabetes subtypes in child order", expansion)
	}
}

func TestReadEmptyCatalog(t *testing.T) {
	ctx := context.Background()
	s, err := Open(filepath.Join(t.TempDir(), "catalog.db"))
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	defer s.Close()

	codeSystems, err := s.ReadCodeSystems(ctx)
	if err != nil {
		t.Fatalf("ReadCodeSystems() failed: %v", err)
	}
	if codeSystems == nil || len(codeSystems) != 0 {
		t.Errorf("ReadCodeSystems() = %v, want empty non-nil slice", codeSystems)
	}

	mappings, err := s.ReadMappings(ctx)
	if err != nil {
		t.Fatalf("ReadMappings() failed: %v", err)
	}
	if mappings == nil || len(mappings) != 0 {
		t.Errorf("ReadMappings() = %v, want empty non-nil slice", mappings)
	}
}
