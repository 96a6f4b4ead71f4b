package model

import (
	"github.com/medizininformatik-initiative/feasibility-sq2cql/internal/cql"
)

// MappingContext resolves the catalog lookups the criterion translator
// needs. Implementations are read-only during translation and safe to share
// across concurrently translated criteria.
type MappingContext interface {
	// FindCodeSystemDefinition returns the declared alias definition for a
	// code system URI.
	FindCodeSystemDefinition(system string) (cql.CodeSystemDefinition, bool)

	// FindMapping returns the mapping for a contextual term code.
	FindMapping(key ContextualTermCode) (Mapping, bool)

	// ExpandConcept expands a concept into its constituent contextual term
	// codes, including all narrower codes known to the catalog.
	ExpandConcept(concept ContextualConcept) []ContextualTermCode
}

// InMemoryContext is a MappingContext over pre-loaded maps and a concept
// closure tree. The zero value is an empty catalog.
type InMemoryContext struct {
	mappings    map[string]Mapping
	codeSystems map[string]cql.CodeSystemDefinition
	conceptTree *TermCodeNode
}

// NewInMemoryContext builds a MappingContext from mappings, code system
// definitions, and an optional concept closure tree. A nil tree expands
// every concept to exactly its own term codes.
func NewInMemoryContext(mappings []Mapping, codeSystems []cql.CodeSystemDefinition, conceptTree *TermCodeNode) *InMemoryContext {
	ctx := &InMemoryContext{
		mappings:    make(map[string]Mapping, len(mappings)),
		codeSystems: make(map[string]cql.CodeSystemDefinition, len(codeSystems)),
		conceptTree: conceptTree,
	}
	for _, mapping := range mappings {
		ctx.mappings[mapping.Key.key()] = mapping
	}
	for _, definition := range codeSystems {
		ctx.codeSystems[TermCode{System: definition.System}.key()] = definition
	}
	return ctx
}

func (c *InMemoryContext) FindCodeSystemDefinition(system string) (cql.CodeSystemDefinition, bool) {
	definition, ok := c.codeSystems[TermCode{System: system}.key()]
	return definition, ok
}

func (c *InMemoryContext) FindMapping(key ContextualTermCode) (Mapping, bool) {
	mapping, ok := c.mappings[key.key()]
	return mapping, ok
}

// ExpandConcept expands every term code of the concept through the closure
// tree and concatenates the results, deduplicated in order. Codes unknown
// to the tree expand to themselves.
func (c *InMemoryContext) ExpandConcept(concept ContextualConcept) []ContextualTermCode {
	var result []ContextualTermCode
	seen := map[string]bool{}
	for _, termCode := range concept.TermCodes {
		key := ContextualTermCode{Context: concept.Context, TermCode: termCode}
		expansion := c.conceptTree.Expand(key)
		if expansion == nil {
			expansion = []ContextualTermCode{key}
		}
		for _, expanded := range expansion {
			if k := expanded.key(); !seen[k] {
				seen[k] = true
				result = append(result, expanded)
			}
		}
	}
	return result
}
