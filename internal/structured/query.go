package structured

import (
	"encoding/json"
	"fmt"

	"github.com/medizininformatik-initiative/feasibility-sq2cql/internal/cql"
	"github.com/medizininformatik-initiative/feasibility-sq2cql/internal/model"
)

// StructuredQuery is a whole feasibility query: inclusion criteria in
// conjunctive normal form (and of or-groups) and exclusion criteria in
// disjunctive normal form (or of and-groups).
type StructuredQuery struct {
	Version           string        `json:"version,omitempty"`
	InclusionCriteria [][]Criterion `json:"inclusionCriteria"`
	ExclusionCriteria [][]Criterion `json:"exclusionCriteria,omitempty"`
}

// ParseStructuredQuery deserializes a structured query from JSON.
func ParseStructuredQuery(data []byte) (StructuredQuery, error) {
	var query StructuredQuery
	if err := json.Unmarshal(data, &query); err != nil {
		return StructuredQuery{}, fmt.Errorf("parse structured query: %w", err)
	}
	if len(query.InclusionCriteria) == 0 {
		return StructuredQuery{}, fmt.Errorf("parse structured query: no inclusion criteria")
	}
	return query, nil
}

type attributeFilterJSON struct {
	AttributeCode    model.TermCode   `json:"attributeCode"`
	Type             string           `json:"type"`
	SelectedConcepts []model.TermCode `json:"selectedConcepts,omitempty"`
}

type unitJSON struct {
	Code string `json:"code"`
}

type valueFilterJSON struct {
	Type             string           `json:"type"`
	SelectedConcepts []model.TermCode `json:"selectedConcepts,omitempty"`
	Comparator       model.Comparator `json:"comparator,omitempty"`
	Value            json.Number      `json:"value,omitempty"`
	MinValue         json.Number      `json:"minValue,omitempty"`
	MaxValue         json.Number      `json:"maxValue,omitempty"`
	Unit             *unitJSON        `json:"unit,omitempty"`
}

type criterionJSON struct {
	Context          string                `json:"context"`
	TermCodes        []model.TermCode      `json:"termCodes"`
	AttributeFilters []attributeFilterJSON `json:"attributeFilters,omitempty"`
	ValueFilter      *valueFilterJSON      `json:"valueFilter,omitempty"`
	TimeRestriction  *TimeRestriction      `json:"timeRestriction,omitempty"`
}

// UnmarshalJSON builds a criterion from its wire form, converting the value
// filter into the matching value strategy.
func (c *Criterion) UnmarshalJSON(data []byte) error {
	var wire criterionJSON
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}
	if len(wire.TermCodes) == 0 {
		return fmt.Errorf("criterion without term codes")
	}

	criterion := Criterion{
		Concept: model.ContextualConcept{
			Context:   wire.Context,
			TermCodes: wire.TermCodes,
		},
		TimeRestriction: wire.TimeRestriction,
	}
	for _, filter := range wire.AttributeFilters {
		if filter.Type != "concept" {
			return fmt.Errorf("unknown attribute filter type %q", filter.Type)
		}
		criterion = criterion.AppendAttributeFilter(
			NewConceptAttributeFilter(filter.AttributeCode, filter.SelectedConcepts...))
	}
	if wire.ValueFilter != nil {
		value, err := valueStrategy(*wire.ValueFilter)
		if err != nil {
			return err
		}
		criterion.Value = value
	}

	*c = criterion
	return nil
}

func valueStrategy(filter valueFilterJSON) (ValueStrategy, error) {
	unit := ""
	if filter.Unit != nil {
		unit = filter.Unit.Code
	}
	switch filter.Type {
	case "concept":
		return ConceptValue{SelectedConcepts: filter.SelectedConcepts}, nil
	case "quantity-comparator":
		return QuantityComparatorValue{
			Comparator: filter.Comparator,
			Value:      filter.Value,
			Unit:       unit,
		}, nil
	case "quantity-range":
		return QuantityRangeValue{
			MinValue: filter.MinValue,
			MaxValue: filter.MaxValue,
			Unit:     unit,
		}, nil
	default:
		return nil, fmt.Errorf("unknown value filter type %q", filter.Type)
	}
}

// Translator translates structured queries into CQL libraries.
type Translator struct {
	mappingContext model.MappingContext
	library        cql.Library
}

// NewTranslator creates a translator over the given mapping context and
// library header.
func NewTranslator(mappingContext model.MappingContext, library cql.Library) Translator {
	return Translator{mappingContext: mappingContext, library: library}
}

// Translate translates a structured query into the rendered CQL library.
func (t Translator) Translate(query StructuredQuery) (string, error) {
	population, err := t.PopulationExpr(query)
	if err != nil {
		return "", err
	}
	return cql.RenderLibrary(t.library, population), nil
}

// PopulationExpr builds the population expression container: the inclusion
// criteria combined and-of-ors, minus the exclusion criteria combined
// or-of-ands. Criteria are translated independently, so their containers go
// through the alias hygiene pass before they are merged.
func (t Translator) PopulationExpr(query StructuredQuery) (cql.Container[cql.BooleanExpression], error) {
	merger := newContainerMerger()

	inclusion := cql.Empty[cql.BooleanExpression]()
	for _, group := range query.InclusionCriteria {
		groupExpr := cql.Empty[cql.BooleanExpression]()
		for _, criterion := range group {
			expr, err := criterion.ToCQL(t.mappingContext)
			if err != nil {
				return cql.Empty[cql.BooleanExpression](), err
			}
			groupExpr = cql.Or(groupExpr, merger.prepare(expr))
		}
		inclusion = cql.And(inclusion, groupExpr)
	}
	if inclusion.IsEmpty() {
		return cql.Empty[cql.BooleanExpression](), &TranslationError{
			Code:    ErrCodeEmptyTranslation,
			Message: "translation of the inclusion criteria yielded no expression",
		}
	}

	exclusion := cql.Empty[cql.BooleanExpression]()
	for _, group := range query.ExclusionCriteria {
		groupExpr := cql.Empty[cql.BooleanExpression]()
		for _, criterion := range group {
			expr, err := criterion.ToCQL(t.mappingContext)
			if err != nil {
				return cql.Empty[cql.BooleanExpression](), err
			}
			groupExpr = cql.And(groupExpr, merger.prepare(expr))
		}
		exclusion = cql.Or(exclusion, groupExpr)
	}
	if exclusion.IsEmpty() {
		return inclusion, nil
	}
	return cql.And(inclusion, cql.Map(exclusion, func(expr cql.BooleanExpression) cql.BooleanExpression {
		return cql.NewNotExpression(expr)
	})), nil
}

// containerMerger applies the capture-avoiding alias rename to every
// container before it joins the combined expression: the incoming
// container's suffixes are lifted above all suffixes the merger has seen.
type containerMerger struct {
	used map[string]int
}

func newContainerMerger() *containerMerger {
	return &containerMerger{used: map[string]int{}}
}

func (m *containerMerger) prepare(c cql.Container[cql.BooleanExpression]) cql.Container[cql.BooleanExpression] {
	incoming := cql.MaxContainerSuffixes(c)
	increments := cql.CaptureAvoidingIncrements(m.used, incoming)
	prepared := cql.IncrementContainerSuffixes(c, increments)
	for name, suffix := range cql.MaxContainerSuffixes(prepared) {
		if current, ok := m.used[name]; !ok || suffix > current {
			m.used[name] = suffix
		}
	}
	return prepared
}
