package cql

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRenderLibrary(t *testing.T) {
	medicationQuery := func() QueryExpression {
		retrieve := NewRetrieveExpressionWithCode("Medication", NewCodeSelector("L01DB01", "atc"))
		alias := retrieve.Alias()
		return NewQueryExpression(
			NewSourceClause(retrieve, alias),
			NewReturnClause(NewAdditionExpressionTerm(
				NewStringLiteral("Medication/"),
				NewInvocationExpression(alias, "id"))))
	}

	references := MoveToUnfilteredContext(NewContainer(medicationQuery(), atc), "Liebavin100mgRef")
	retrieve := NewRetrieveExpression("MedicationAdministration")
	alias := retrieve.Alias()
	population := Map(references, func(refs IdentifierExpression) BooleanExpression {
		return NewExistsExpression(NewQueryExpression(
			NewSourceClause(retrieve, alias),
			NewWhereClause(NewInExpression(
				NewInvocationExpression(alias, "medication.reference"), refs))))
	})

	want := `library Retrieve version '1.0.0'
using FHIR version '4.0.0'
include FHIRHelpers version '4.0.0'

codesystem atc: 'http://fhir.de/CodeSystem/dimdi/atc'

context Unfiltered

define "Liebavin100mgRef":
  from [Medication: Code 'L01DB01' from atc] M return 'Medication/' + M.id

context Patient

define InInitialPopulation:
  exists (from [MedicationAdministration] M where M.medication.reference in "Liebavin100mgRef")
`

	assert.Equal(t, want, RenderLibrary(DefaultLibrary, population))
}
