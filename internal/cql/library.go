package cql

import "strings"

// Library describes the header of a rendered CQL library.
type Library struct {
	Name        string
	Version     string
	FHIRVersion string
}

// DefaultLibrary is the header used when no configuration is given.
var DefaultLibrary = Library{Name: "Retrieve", Version: "1.0.0", FHIRVersion: "4.0.0"}

// RenderLibrary renders a complete CQL library: the header, the codesystem
// declarations for every accumulated code system, the Unfiltered context
// defines, and the InInitialPopulation define holding the population
// expression.
func RenderLibrary(library Library, population Container[BooleanExpression]) string {
	var b strings.Builder

	b.WriteString("library " + library.Name + " version '" + library.Version + "'\n")
	b.WriteString("using FHIR version '" + library.FHIRVersion + "'\n")
	b.WriteString("include FHIRHelpers version '" + library.FHIRVersion + "'\n")

	for _, definition := range population.CodeSystemDefinitions() {
		b.WriteString("\n" + definition.Print())
	}
	if len(population.CodeSystemDefinitions()) > 0 {
		b.WriteString("\n")
	}

	if defines := population.UnfilteredDefines(); len(defines) > 0 {
		b.WriteString("\ncontext Unfiltered\n")
		for _, define := range defines {
			b.WriteString("\ndefine \"" + define.Name + "\":\n")
			b.WriteString("  " + define.Query.Print(DefaultPrintContext) + "\n")
		}
	}

	b.WriteString("\ncontext Patient\n")
	b.WriteString("\ndefine InInitialPopulation:\n")
	b.WriteString("  " + population.Value().Print(DefaultPrintContext) + "\n")

	return b.String()
}
