package cql

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	snomed = NewCodeSystemDefinition("snomed", "http://snomed.info/sct")
	atc    = NewCodeSystemDefinition("atc", "http://fhir.de/CodeSystem/dimdi/atc")
)

func boolContainer(name string, codeSystems ...CodeSystemDefinition) Container[BooleanExpression] {
	return NewContainer[BooleanExpression](NewIdentifierExpression(name), codeSystems...)
}

func TestContainer_Empty(t *testing.T) {
	empty := Empty[BooleanExpression]()

	assert.True(t, empty.IsEmpty())
	assert.Nil(t, empty.Value())
	assert.Empty(t, empty.CodeSystemDefinitions())
	assert.Empty(t, empty.UnfilteredDefines())
}

func TestContainer_AndOrIdentity(t *testing.T) {
	a := boolContainer("a", snomed)

	testCases := []struct {
		name string
		got  Container[BooleanExpression]
	}{
		{name: "and left identity", got: And(Empty[BooleanExpression](), a)},
		{name: "and right identity", got: And(a, Empty[BooleanExpression]())},
		{name: "or left identity", got: Or(Empty[BooleanExpression](), a)},
		{name: "or right identity", got: Or(a, Empty[BooleanExpression]())},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, a, tc.got)
		})
	}

	t.Run("both empty", func(t *testing.T) {
		assert.True(t, And(Empty[BooleanExpression](), Empty[BooleanExpression]()).IsEmpty())
		assert.True(t, Or(Empty[BooleanExpression](), Empty[BooleanExpression]()).IsEmpty())
	})
}

func TestContainer_AndBuildsConjunction(t *testing.T) {
	result := And(boolContainer("a", snomed), boolContainer("b", atc))

	assert.Equal(t, "a and b", result.Value().Print(DefaultPrintContext))
	assert.Equal(t, []CodeSystemDefinition{atc, snomed}, result.CodeSystemDefinitions())
}

func TestContainer_CodeSystemUnionIsIdempotent(t *testing.T) {
	result := Or(boolContainer("a", snomed), boolContainer("b", snomed, snomed))

	assert.Equal(t, []CodeSystemDefinition{snomed}, result.CodeSystemDefinitions())
}

func TestContainer_AndAssociativeOverMetadata(t *testing.T) {
	a := boolContainer("a", snomed)
	b := boolContainer("b", atc)
	c := boolContainer("c")

	left := And(And(a, b), c)
	right := And(a, And(b, c))

	assert.Equal(t, left.CodeSystemDefinitions(), right.CodeSystemDefinitions())
	assert.Equal(t, left.UnfilteredDefines(), right.UnfilteredDefines())
	assert.Equal(t, "a and b and c", left.Value().Print(DefaultPrintContext))
}

func TestContainer_Map(t *testing.T) {
	container := NewContainer[Expression](NewRetrieveExpression("Condition"), snomed)

	result := Map(container, func(e Expression) Expression {
		return NewExistsExpression(e)
	})

	assert.Equal(t, "exists [Condition]", result.Value().Print(DefaultPrintContext))
	assert.Equal(t, []CodeSystemDefinition{snomed}, result.CodeSystemDefinitions())
}

func TestContainer_FlatMapMergesMetadata(t *testing.T) {
	container := NewContainer[Expression](NewRetrieveExpression("Condition"), snomed)

	result, err := FlatMap(container, func(e Expression) (Container[Expression], error) {
		return NewContainer[Expression](NewExistsExpression(e), atc), nil
	})
	require.NoError(t, err)

	assert.Equal(t, "exists [Condition]", result.Value().Print(DefaultPrintContext))
	assert.Equal(t, []CodeSystemDefinition{atc, snomed}, result.CodeSystemDefinitions())
}

func TestContainer_FlatMapPropagatesError(t *testing.T) {
	container := NewContainer[Expression](NewRetrieveExpression("Condition"), snomed)

	_, err := FlatMap(container, func(Expression) (Container[Expression], error) {
		return Container[Expression]{}, assert.AnError
	})

	assert.ErrorIs(t, err, assert.AnError)
}

func TestMoveToUnfilteredContext(t *testing.T) {
	retrieve := NewRetrieveExpressionWithCode("Medication", NewCodeSelector("L01DB01", "atc"))
	alias := retrieve.Alias()
	query := NewQueryExpression(
		NewSourceClause(retrieve, alias),
		NewReturnClause(NewAdditionExpressionTerm(
			NewStringLiteral("Medication/"),
			NewInvocationExpression(alias, "id"))))
	container := NewContainer(query, atc)

	result := MoveToUnfilteredContext(container, "Liebavin100mgRef")

	assert.Equal(t, `"Liebavin100mgRef"`, result.Value().Print(DefaultPrintContext))
	assert.Equal(t, []CodeSystemDefinition{atc}, result.CodeSystemDefinitions())
	defines := result.UnfilteredDefines()
	require.Len(t, defines, 1)
	assert.Equal(t, "Liebavin100mgRef", defines[0].Name)
	assert.Equal(t, query, defines[0].Query)
}

func TestContainer_DefinesDeduplicatedByName(t *testing.T) {
	query := conditionQuery()
	first := MoveToUnfilteredContext(NewContainer(query, snomed), "Refs")
	second := MoveToUnfilteredContext(NewContainer(query, snomed), "Refs")

	combined := And(
		Map(first, func(e IdentifierExpression) BooleanExpression { return e }),
		Map(second, func(e IdentifierExpression) BooleanExpression { return e }))

	assert.Len(t, combined.UnfilteredDefines(), 1)
}

func TestIncrementContainerSuffixes(t *testing.T) {
	container := MoveToUnfilteredContext(NewContainer(conditionQuery(), snomed), "Refs")

	result := IncrementContainerSuffixes(container, map[string]int{"C": 1})

	defines := result.UnfilteredDefines()
	assert.Contains(t, defines[0].Query.Print(DefaultPrintContext), "C1")
	assert.Equal(t, `"Refs"`, result.Value().Print(DefaultPrintContext))
}
