package structured

import (
	"github.com/medizininformatik-initiative/feasibility-sq2cql/internal/cql"
	"github.com/medizininformatik-initiative/feasibility-sq2cql/internal/model"
)

// patientIdentifier is the implicit identifier criteria on the Patient
// resource type are evaluated against: the query's ambient patient context.
var patientIdentifier = cql.NewIdentifierExpression("Patient")

// Criterion is one feasibility criterion: a concept with optional attribute
// filters, an optional value filter, and an optional time restriction.
type Criterion struct {
	Concept          model.ContextualConcept
	AttributeFilters []AttributeFilter
	TimeRestriction  *TimeRestriction
	Value            ValueStrategy
}

// NewCriterion creates a concept-only criterion.
func NewCriterion(concept model.ContextualConcept) Criterion {
	return Criterion{Concept: concept}
}

// AppendAttributeFilter returns a copy of the criterion with the filter
// appended.
func (c Criterion) AppendAttributeFilter(filter AttributeFilter) Criterion {
	filters := make([]AttributeFilter, len(c.AttributeFilters), len(c.AttributeFilters)+1)
	copy(filters, c.AttributeFilters)
	c.AttributeFilters = append(filters, filter)
	return c
}

// ToCQL translates the criterion into a boolean expression container by
// expanding the concept, translating every expanded term code, and
// combining the results with or. Any resolution failure aborts the whole
// criterion's translation.
func (c Criterion) ToCQL(mappingContext model.MappingContext) (cql.Container[cql.BooleanExpression], error) {
	expansion := mappingContext.ExpandConcept(c.Concept)
	if len(expansion) == 0 {
		return cql.Empty[cql.BooleanExpression](), NewEmptyExpansionError(c.Concept)
	}
	result := cql.Empty[cql.BooleanExpression]()
	for _, termCode := range expansion {
		expr, err := c.termCodeExpr(mappingContext, termCode)
		if err != nil {
			return cql.Empty[cql.BooleanExpression](), err
		}
		result = cql.Or(result, expr)
	}
	if result.IsEmpty() {
		return cql.Empty[cql.BooleanExpression](), NewEmptyTranslationError(c.Concept)
	}
	return result, nil
}

// termCodeExpr translates one expanded term code, dispatching on the
// mapping's resource type.
func (c Criterion) termCodeExpr(mappingContext model.MappingContext, termCode model.ContextualTermCode) (cql.Container[cql.BooleanExpression], error) {
	mapping, ok := mappingContext.FindMapping(termCode)
	if !ok {
		return cql.Empty[cql.BooleanExpression](), NewMappingNotFoundError(termCode)
	}
	switch mapping.ResourceType {
	case "Patient":
		// Evaluated against the ambient patient context, without a
		// retrieve/exists wrapper.
		return c.valueAndModifierExpr(mappingContext, mapping, patientIdentifier)
	case "MedicationAdministration":
		return c.medicationAdministrationExpr(mappingContext, termCode.TermCode)
	default:
		return c.defaultExpr(mappingContext, termCode, mapping)
	}
}

// defaultExpr translates a term code against any ordinary resource type:
// retrieve by code selector, then either bare existence or existence of the
// retrieve filtered by the value-and-modifier predicate.
func (c Criterion) defaultExpr(mappingContext model.MappingContext, termCode model.ContextualTermCode, mapping model.Mapping) (cql.Container[cql.BooleanExpression], error) {
	retrieveContainer, err := retrieveExpr(mappingContext, termCode, mapping)
	if err != nil {
		return cql.Empty[cql.BooleanExpression](), err
	}
	return cql.FlatMap(retrieveContainer, func(retrieve cql.RetrieveExpression) (cql.Container[cql.BooleanExpression], error) {
		alias := retrieve.Alias()
		predicate, err := c.valueAndModifierExpr(mappingContext, mapping, alias)
		if err != nil {
			return cql.Empty[cql.BooleanExpression](), err
		}
		if predicate.IsEmpty() {
			return cql.NewContainer[cql.BooleanExpression](cql.NewExistsExpression(retrieve)), nil
		}
		return cql.Map(predicate, func(expr cql.BooleanExpression) cql.BooleanExpression {
			return existsExpr(cql.NewSourceClause(retrieve, alias), expr)
		}), nil
	})
}

// medicationAdministrationExpr translates a term code against the
// MedicationAdministration resource type. The administration resource only
// carries a reference to its medication, not the medication's code, so the
// match goes through an Unfiltered context define that collects the
// references of all medications with the code.
func (c Criterion) medicationAdministrationExpr(mappingContext model.MappingContext, termCode model.TermCode) (cql.Container[cql.BooleanExpression], error) {
	references, err := medicationReferencesExpr(mappingContext, termCode)
	if err != nil {
		return cql.Empty[cql.BooleanExpression](), err
	}
	lifted := cql.MoveToUnfilteredContext(references, referenceName(termCode))
	return cql.Map(lifted, func(medicationReferences cql.IdentifierExpression) cql.BooleanExpression {
		retrieve := cql.NewRetrieveExpression("MedicationAdministration")
		alias := retrieve.Alias()
		reference := cql.NewInvocationExpression(alias, "medication.reference")
		return existsExpr(cql.NewSourceClause(retrieve, alias),
			cql.NewInExpression(reference, medicationReferences))
	}), nil
}

// valueAndModifierExpr combines the criterion's value predicate with the
// mapping's fixed criteria, the resolved attribute filters, and the time
// restriction. An empty result means the criterion constrains by code only.
func (c Criterion) valueAndModifierExpr(mappingContext model.MappingContext, mapping model.Mapping, identifier cql.Expression) (cql.Container[cql.BooleanExpression], error) {
	result := cql.Empty[cql.BooleanExpression]()
	if c.Value != nil {
		valueExpr, err := c.Value.Expression(mappingContext, mapping, identifier)
		if err != nil {
			return cql.Empty[cql.BooleanExpression](), err
		}
		result = valueExpr
	}

	modifiers, err := c.resolveModifiers(mapping)
	if err != nil {
		return cql.Empty[cql.BooleanExpression](), err
	}
	for _, modifier := range modifiers {
		expr, err := modifier.Expression(mappingContext, identifier)
		if err != nil {
			return cql.Empty[cql.BooleanExpression](), err
		}
		result = cql.And(result, expr)
	}
	return result, nil
}

// resolveModifiers collects the mapping's fixed criteria, the attribute
// filters resolved against the mapping's attribute table, and the time
// restriction converted through the mapping's date path.
func (c Criterion) resolveModifiers(mapping model.Mapping) ([]Modifier, error) {
	var modifiers []Modifier
	for _, fixed := range mapping.FixedCriteria {
		modifier, err := fixedCriterionModifier(fixed)
		if err != nil {
			return nil, err
		}
		modifiers = append(modifiers, modifier)
	}
	for _, filter := range c.AttributeFilters {
		attribute, ok := mapping.FindAttributeMapping(filter.Code)
		if !ok {
			return nil, NewAttributeMappingNotFoundError(filter.Code)
		}
		modifier, err := filter.toModifier(attribute)
		if err != nil {
			return nil, err
		}
		modifiers = append(modifiers, modifier)
	}
	if c.TimeRestriction != nil {
		modifier, err := c.TimeRestriction.toModifier(mapping.TimeRestrictionPath)
		if err != nil {
			return nil, err
		}
		modifiers = append(modifiers, modifier)
	}
	return modifiers, nil
}

// codeSelector returns the code selector expression for a term code
// together with the code system definition it uses.
func codeSelector(mappingContext model.MappingContext, termCode model.TermCode) (cql.Container[cql.CodeSelector], error) {
	definition, ok := mappingContext.FindCodeSystemDefinition(termCode.System)
	if !ok {
		return cql.Empty[cql.CodeSelector](), NewCodeSystemUndefinedError(termCode.System)
	}
	return cql.NewContainer(cql.NewCodeSelector(termCode.Code, definition.Name), definition), nil
}

// retrieveExpr returns the retrieve expression for a term code's mapping.
// The mapping has to carry a primary code; retrieving all resources of a
// type without one is not supported.
func retrieveExpr(mappingContext model.MappingContext, termCode model.ContextualTermCode, mapping model.Mapping) (cql.Container[cql.RetrieveExpression], error) {
	if mapping.PrimaryCode == nil {
		return cql.Empty[cql.RetrieveExpression](), &TranslationError{
			Code:    ErrCodeMappingNotFound,
			Message: "mapping for term code " + termCode.String() + " has no primary code",
		}
	}
	selector, err := codeSelector(mappingContext, *mapping.PrimaryCode)
	if err != nil {
		return cql.Empty[cql.RetrieveExpression](), err
	}
	return cql.Map(selector, func(terminology cql.CodeSelector) cql.RetrieveExpression {
		return cql.NewRetrieveExpressionWithCode(mapping.ResourceType, terminology)
	}), nil
}

// medicationReferencesExpr returns a query yielding the reference strings
// of all Medication resources with the given code. The query's shape is
// only legal as a named top-level statement, so callers have to lift it
// into the Unfiltered context.
func medicationReferencesExpr(mappingContext model.MappingContext, code model.TermCode) (cql.Container[cql.QueryExpression], error) {
	selector, err := codeSelector(mappingContext, code)
	if err != nil {
		return cql.Empty[cql.QueryExpression](), err
	}
	return cql.Map(selector, func(terminology cql.CodeSelector) cql.QueryExpression {
		retrieve := cql.NewRetrieveExpressionWithCode("Medication", terminology)
		alias := retrieve.Alias()
		return cql.NewQueryExpression(
			cql.NewSourceClause(retrieve, alias),
			cql.NewReturnClause(cql.NewAdditionExpressionTerm(
				cql.NewStringLiteral("Medication/"),
				cql.NewInvocationExpression(alias, "id"))))
	}), nil
}

// existsExpr wraps a filtered query into an existence test.
func existsExpr(sourceClause cql.SourceClause, condition cql.BooleanExpression) cql.ExistsExpression {
	return cql.NewExistsExpression(cql.NewQueryExpression(sourceClause, cql.NewWhereClause(condition)))
}

// referenceName derives the Unfiltered context define name for a
// medication reference set.
func referenceName(termCode model.TermCode) string {
	return termCode.Display + termCode.Code + "Ref"
}
