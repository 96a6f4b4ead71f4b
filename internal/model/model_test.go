package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medizininformatik-initiative/feasibility-sq2cql/internal/cql"
)

var (
	sct  = "http://snomed.info/sct"
	dm2  = TermCode{System: sct, Code: "73211009", Display: "Diabetes mellitus"}
	dm2a = TermCode{System: sct, Code: "426875007", Display: "Latent autoimmune diabetes"}
	dm2b = TermCode{System: sct, Code: "44054006", Display: "Diabetes mellitus type 2"}
)

func TestTermCode_KeyNormalization(t *testing.T) {
	// U+00E9 vs e + U+0301 are canonically equal
	composed := TermCode{System: sct, Code: "café"}
	decomposed := TermCode{System: sct, Code: "café"}

	assert.Equal(t, composed.key(), decomposed.key())
}

func TestTermCodeNode_Expand(t *testing.T) {
	tree := &TermCodeNode{
		TermCode: dm2, Context: "Condition",
		Children: []*TermCodeNode{
			{TermCode: dm2a, Context: "Condition"},
			{TermCode: dm2b, Context: "Condition"},
		},
	}

	t.Run("root expands to whole subtree", func(t *testing.T) {
		expansion := tree.Expand(ContextualTermCode{Context: "Condition", TermCode: dm2})
		require.Len(t, expansion, 3)
		assert.Equal(t, dm2, expansion[0].TermCode)
		assert.Equal(t, dm2a, expansion[1].TermCode)
		assert.Equal(t, dm2b, expansion[2].TermCode)
	})

	t.Run("leaf expands to itself", func(t *testing.T) {
		expansion := tree.Expand(ContextualTermCode{Context: "Condition", TermCode: dm2b})
		assert.Equal(t, []ContextualTermCode{{Context: "Condition", TermCode: dm2b}}, expansion)
	})

	t.Run("unknown code yields nil", func(t *testing.T) {
		unknown := TermCode{System: sct, Code: "0"}
		assert.Nil(t, tree.Expand(ContextualTermCode{Context: "Condition", TermCode: unknown}))
	})

	t.Run("context must match", func(t *testing.T) {
		assert.Nil(t, tree.Expand(ContextualTermCode{Context: "Patient", TermCode: dm2}))
	})
}

func TestInMemoryContext(t *testing.T) {
	snomed := cql.NewCodeSystemDefinition("snomed", sct)
	key := ContextualTermCode{Context: "Condition", TermCode: dm2}
	mapping := Mapping{Key: key, ResourceType: "Condition", PrimaryCode: &dm2}
	ctx := NewInMemoryContext([]Mapping{mapping}, []cql.CodeSystemDefinition{snomed}, nil)

	t.Run("code system lookup", func(t *testing.T) {
		definition, ok := ctx.FindCodeSystemDefinition(sct)
		require.True(t, ok)
		assert.Equal(t, snomed, definition)

		_, ok = ctx.FindCodeSystemDefinition("http://loinc.org")
		assert.False(t, ok)
	})

	t.Run("mapping lookup", func(t *testing.T) {
		found, ok := ctx.FindMapping(key)
		require.True(t, ok)
		assert.Equal(t, "Condition", found.ResourceType)

		_, ok = ctx.FindMapping(ContextualTermCode{Context: "Patient", TermCode: dm2})
		assert.False(t, ok)
	})

	t.Run("expansion without tree yields the concept codes", func(t *testing.T) {
		concept := ContextualConcept{Context: "Condition", TermCodes: []TermCode{dm2}}
		assert.Equal(t, []ContextualTermCode{key}, ctx.ExpandConcept(concept))
	})
}

func TestInMemoryContext_ExpandConceptDeduplicates(t *testing.T) {
	tree := &TermCodeNode{
		TermCode: dm2, Context: "Condition",
		Children: []*TermCodeNode{{TermCode: dm2b, Context: "Condition"}},
	}
	ctx := NewInMemoryContext(nil, nil, tree)

	concept := ContextualConcept{Context: "Condition", TermCodes: []TermCode{dm2, dm2b}}
	expansion := ctx.ExpandConcept(concept)

	require.Len(t, expansion, 2)
	assert.Equal(t, dm2, expansion[0].TermCode)
	assert.Equal(t, dm2b, expansion[1].TermCode)
}

func TestMapping_FindAttributeMapping(t *testing.T) {
	status := TermCode{System: sct, Code: "status"}
	mapping := Mapping{
		AttributeMappings: []AttributeMapping{{Type: "code", Key: status, Path: "status"}},
	}

	found, ok := mapping.FindAttributeMapping(status)
	require.True(t, ok)
	assert.Equal(t, "status", found.Path)

	_, ok = mapping.FindAttributeMapping(TermCode{System: sct, Code: "severity"})
	assert.False(t, ok)
}

func TestComparator_UnmarshalJSON(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		var c Comparator
		require.NoError(t, json.Unmarshal([]byte(`"le"`), &c))
		assert.Equal(t, ComparatorLessEqual, c)
		assert.Equal(t, "<=", c.Symbol())
	})

	t.Run("unknown", func(t *testing.T) {
		var c Comparator
		assert.Error(t, json.Unmarshal([]byte(`"approx"`), &c))
	})
}
