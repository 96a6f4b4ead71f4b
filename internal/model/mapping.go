package model

// FixedCriterion is a constraint that is always applied when a mapping is
// used, independent of the caller's attribute filters. The type decides how
// the criterion renders: "code" compares the FHIR path against plain code
// strings, "coding" tests coding membership with full term codes.
type FixedCriterion struct {
	Type  string     `json:"type"`
	Path  string     `json:"fhirPath"`
	Codes []TermCode `json:"value"`
}

// AttributeMapping describes how one attribute code of a mapping renders:
// the FHIR path to constrain and whether the attribute carries plain codes
// or codings.
type AttributeMapping struct {
	Type string   `json:"attributeType"`
	Key  TermCode `json:"attributeKey"`
	Path string   `json:"attributeFhirPath"`
}

// Mapping resolves a contextual term code to its translation shape: the
// target resource type, the primary selecting code, the constraints that
// always apply, the attribute table, and the resource-specific paths for
// value predicates and time restrictions.
//
// At most one mapping exists per contextual term code; absence is a
// translation failure, not a default.
type Mapping struct {
	Key                 ContextualTermCode `json:"key"`
	ResourceType        string             `json:"resourceType"`
	PrimaryCode         *TermCode          `json:"primaryCode,omitempty"`
	ValuePath           string             `json:"valueFhirPath,omitempty"`
	FixedCriteria       []FixedCriterion   `json:"fixedCriteria,omitempty"`
	AttributeMappings   []AttributeMapping `json:"attributeFhirPaths,omitempty"`
	TimeRestrictionPath string             `json:"timeRestrictionPath,omitempty"`
}

// FindAttributeMapping returns the attribute mapping for the given
// attribute code, if any.
func (m Mapping) FindAttributeMapping(attributeCode TermCode) (AttributeMapping, bool) {
	key := attributeCode.key()
	for _, attribute := range m.AttributeMappings {
		if attribute.Key.key() == key {
			return attribute, true
		}
	}
	return AttributeMapping{}, false
}
