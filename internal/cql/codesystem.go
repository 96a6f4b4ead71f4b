package cql

// CodeSystemDefinition declares a code system under a short alias so that
// code selectors can reference it, e.g. codesystem snomed:
// 'http://snomed.info/sct'.
type CodeSystemDefinition struct {
	Name   string // declared alias
	System string // code system URI
}

// NewCodeSystemDefinition creates a code system definition.
func NewCodeSystemDefinition(name, system string) CodeSystemDefinition {
	return CodeSystemDefinition{Name: name, System: system}
}

// Print renders the codesystem declaration.
func (d CodeSystemDefinition) Print() string {
	return "codesystem " + d.Name + ": '" + d.System + "'"
}
