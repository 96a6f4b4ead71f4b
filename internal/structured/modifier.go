package structured

import (
	"github.com/medizininformatik-initiative/feasibility-sq2cql/internal/cql"
	"github.com/medizininformatik-initiative/feasibility-sq2cql/internal/model"
)

// Modifier is a constraint contributed to a criterion's predicate besides
// the primary code match: a mapping's fixed criterion, a resolved attribute
// filter, or a time restriction.
type Modifier interface {
	// Expression renders the constraint against the given query identifier.
	Expression(mappingContext model.MappingContext, identifier cql.Expression) (cql.Container[cql.BooleanExpression], error)
}

// CodeModifier constrains a primitive code path to one or more plain codes,
// e.g. C.verificationStatus = 'confirmed'.
type CodeModifier struct {
	path  string
	codes []string
}

// NewCodeModifier creates a code modifier over the given path and codes.
func NewCodeModifier(path string, codes ...string) CodeModifier {
	copied := make([]string, len(codes))
	copy(copied, codes)
	return CodeModifier{path: path, codes: copied}
}

func (m CodeModifier) Expression(_ model.MappingContext, identifier cql.Expression) (cql.Container[cql.BooleanExpression], error) {
	invocation := cql.NewInvocationExpression(identifier, m.path)
	if len(m.codes) == 1 {
		return cql.NewContainer[cql.BooleanExpression](cql.NewComparatorExpression(
			invocation, "=", cql.NewStringLiteral(m.codes[0]))), nil
	}
	elements := make([]cql.Expression, len(m.codes))
	for i, code := range m.codes {
		elements[i] = cql.NewStringLiteral(code)
	}
	return cql.NewContainer[cql.BooleanExpression](cql.NewInExpression(
		invocation, cql.NewListSelector(elements))), nil
}

// CodingModifier constrains a codeable concept path to one or more term
// codes by coding membership, e.g. C.verificationStatus.coding contains
// Code 'confirmed' from ver_status. Multiple codes combine with or.
type CodingModifier struct {
	path  string
	codes []model.TermCode
}

// NewCodingModifier creates a coding modifier over the given path and term
// codes.
func NewCodingModifier(path string, codes ...model.TermCode) CodingModifier {
	copied := make([]model.TermCode, len(codes))
	copy(copied, codes)
	return CodingModifier{path: path, codes: copied}
}

func (m CodingModifier) Expression(mappingContext model.MappingContext, identifier cql.Expression) (cql.Container[cql.BooleanExpression], error) {
	coding := cql.NewInvocationExpression(cql.NewInvocationExpression(identifier, m.path), "coding")
	result := cql.Empty[cql.BooleanExpression]()
	for _, code := range m.codes {
		selector, err := codeSelector(mappingContext, code)
		if err != nil {
			return cql.Empty[cql.BooleanExpression](), err
		}
		result = cql.Or(result, cql.Map(selector, func(s cql.CodeSelector) cql.BooleanExpression {
			return cql.NewContainsExpression(coding, s)
		}))
	}
	return result, nil
}

// TimeRestrictionModifier constrains the mapping's date field to a closed
// date interval, e.g. C.onsetDateTime in Interval[@2021-01-01,
// @2021-12-31].
type TimeRestrictionModifier struct {
	path   string
	after  string
	before string
}

// NewTimeRestrictionModifier creates a time restriction modifier over the
// given date path and ISO date bounds.
func NewTimeRestrictionModifier(path, after, before string) TimeRestrictionModifier {
	return TimeRestrictionModifier{path: path, after: after, before: before}
}

func (m TimeRestrictionModifier) Expression(_ model.MappingContext, identifier cql.Expression) (cql.Container[cql.BooleanExpression], error) {
	interval := cql.NewIntervalSelector(
		cql.NewDateTimeExpression(m.after), cql.NewDateTimeExpression(m.before))
	return cql.NewContainer[cql.BooleanExpression](cql.NewInExpression(
		cql.NewInvocationExpression(identifier, m.path), interval)), nil
}

// fixedCriterionModifier converts a mapping's fixed criterion into its
// modifier.
func fixedCriterionModifier(criterion model.FixedCriterion) (Modifier, error) {
	if len(criterion.Codes) == 0 {
		return nil, NewUnsupportedModifierError(
			"fixed criterion on `" + criterion.Path + "` has no codes")
	}
	switch criterion.Type {
	case "code":
		codes := make([]string, len(criterion.Codes))
		for i, code := range criterion.Codes {
			codes[i] = code.Code
		}
		return NewCodeModifier(criterion.Path, codes...), nil
	case "coding":
		return NewCodingModifier(criterion.Path, criterion.Codes...), nil
	default:
		return nil, NewUnsupportedModifierError(
			"unknown fixed criterion type `" + criterion.Type + "`")
	}
}
