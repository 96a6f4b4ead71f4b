package structured

import (
	"encoding/json"

	"github.com/medizininformatik-initiative/feasibility-sq2cql/internal/cql"
	"github.com/medizininformatik-initiative/feasibility-sq2cql/internal/model"
)

// ValueStrategy produces the resource-specific base predicate of a
// criterion. A criterion composes one strategy instead of subclassing; a
// nil strategy means the criterion constrains by code only.
type ValueStrategy interface {
	Expression(mappingContext model.MappingContext, mapping model.Mapping, identifier cql.Expression) (cql.Container[cql.BooleanExpression], error)
}

// valuePath returns the mapping's value predicate path, defaulting to
// "value".
func valuePath(mapping model.Mapping) string {
	if mapping.ValuePath != "" {
		return mapping.ValuePath
	}
	return "value"
}

// QuantityComparatorValue compares the mapping's value path against a
// quantity, e.g. O.value < 7.3 'mg/dL'.
type QuantityComparatorValue struct {
	Comparator model.Comparator
	Value      json.Number
	Unit       string
}

func (v QuantityComparatorValue) Expression(_ model.MappingContext, mapping model.Mapping, identifier cql.Expression) (cql.Container[cql.BooleanExpression], error) {
	return cql.NewContainer[cql.BooleanExpression](cql.NewComparatorExpression(
		cql.NewInvocationExpression(identifier, valuePath(mapping)),
		v.Comparator.Symbol(),
		cql.NewQuantityExpression(v.Value.String(), v.Unit))), nil
}

// QuantityRangeValue bounds the mapping's value path by a closed quantity
// range, e.g. O.value >= 20 'kg/m2' and O.value <= 25 'kg/m2'.
type QuantityRangeValue struct {
	MinValue json.Number
	MaxValue json.Number
	Unit     string
}

func (v QuantityRangeValue) Expression(_ model.MappingContext, mapping model.Mapping, identifier cql.Expression) (cql.Container[cql.BooleanExpression], error) {
	invocation := cql.NewInvocationExpression(identifier, valuePath(mapping))
	lower := cql.NewComparatorExpression(invocation, ">=",
		cql.NewQuantityExpression(v.MinValue.String(), v.Unit))
	upper := cql.NewComparatorExpression(invocation, "<=",
		cql.NewQuantityExpression(v.MaxValue.String(), v.Unit))
	return cql.NewContainer[cql.BooleanExpression](cql.NewAndExpression(lower, upper)), nil
}

// ConceptValue tests the mapping's value path for coding membership in a
// set of selected concepts, combined with or.
type ConceptValue struct {
	SelectedConcepts []model.TermCode
}

func (v ConceptValue) Expression(mappingContext model.MappingContext, mapping model.Mapping, identifier cql.Expression) (cql.Container[cql.BooleanExpression], error) {
	if len(v.SelectedConcepts) == 0 {
		return cql.Empty[cql.BooleanExpression](), NewUnsupportedModifierError(
			"concept value filter selects no concepts")
	}
	modifier := NewCodingModifier(valuePath(mapping), v.SelectedConcepts...)
	return modifier.Expression(mappingContext, identifier)
}
