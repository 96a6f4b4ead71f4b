package structured

import (
	"github.com/medizininformatik-initiative/feasibility-sq2cql/internal/model"
)

// AttributeFilter is a caller-supplied constraint on one attribute of a
// criterion, identified by the attribute's term code. The attribute must
// have an entry in the resolved mapping's attribute table or translation
// fails.
type AttributeFilter struct {
	Code             model.TermCode
	SelectedConcepts []model.TermCode
}

// NewConceptAttributeFilter creates an attribute filter selecting one or
// more concepts for the given attribute code.
func NewConceptAttributeFilter(code model.TermCode, selected ...model.TermCode) AttributeFilter {
	copied := make([]model.TermCode, len(selected))
	copy(copied, selected)
	return AttributeFilter{Code: code, SelectedConcepts: copied}
}

// toModifier resolves the filter against the mapping's attribute table
// entry. The attribute mapping's type decides whether the selected concepts
// render as plain code comparisons or as coding membership.
func (f AttributeFilter) toModifier(attribute model.AttributeMapping) (Modifier, error) {
	if len(f.SelectedConcepts) == 0 {
		return nil, NewUnsupportedModifierError(
			"attribute filter `" + f.Code.Code + "` selects no concepts")
	}
	switch attribute.Type {
	case "code":
		codes := make([]string, len(f.SelectedConcepts))
		for i, concept := range f.SelectedConcepts {
			codes[i] = concept.Code
		}
		return NewCodeModifier(attribute.Path, codes...), nil
	case "coding":
		return NewCodingModifier(attribute.Path, f.SelectedConcepts...), nil
	default:
		return nil, NewUnsupportedModifierError(
			"unknown attribute mapping type `" + attribute.Type + "`")
	}
}
