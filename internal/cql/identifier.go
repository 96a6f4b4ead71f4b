package cql

import "strconv"

// IdentifierExpression references a named CQL definition or an implicit
// identifier like Patient.
type IdentifierExpression struct {
	name string
}

// NewIdentifierExpression creates an identifier printed verbatim.
func NewIdentifierExpression(name string) IdentifierExpression {
	return IdentifierExpression{name: name}
}

// NewQuotedIdentifierExpression creates an identifier printed inside double
// quotes, as required for define names that are not simple identifiers.
func NewQuotedIdentifierExpression(name string) IdentifierExpression {
	return IdentifierExpression{name: `"` + name + `"`}
}

func (e IdentifierExpression) Print(PrintContext) string {
	return e.name
}

func (e IdentifierExpression) incrementSuffixes(map[string]int) Expression {
	return e
}

func (e IdentifierExpression) collectSuffixes(map[string]int) {}

func (IdentifierExpression) booleanExpr() {}

// AliasExpression is a query source alias with a base name and a numeric
// suffix. Suffix zero prints as the bare base name; nonzero suffixes are
// appended, e.g. M, M1, M2. Suffixes exist so that independently built
// trees can be merged without identifier capture.
type AliasExpression struct {
	name   string
	suffix int
}

// NewAliasExpression creates an alias with suffix zero.
func NewAliasExpression(name string) AliasExpression {
	return AliasExpression{name: name}
}

// Name returns the alias base name.
func (e AliasExpression) Name() string {
	return e.name
}

// Suffix returns the alias suffix.
func (e AliasExpression) Suffix() int {
	return e.suffix
}

func (e AliasExpression) Print(PrintContext) string {
	if e.suffix == 0 {
		return e.name
	}
	return e.name + strconv.Itoa(e.suffix)
}

func (e AliasExpression) incrementSuffixes(increments map[string]int) Expression {
	return e.withIncrement(increments)
}

func (e AliasExpression) withIncrement(increments map[string]int) AliasExpression {
	if delta, ok := increments[e.name]; ok {
		return AliasExpression{name: e.name, suffix: e.suffix + delta}
	}
	return e
}

func (e AliasExpression) collectSuffixes(acc map[string]int) {
	recordSuffix(acc, e.name, e.suffix)
}
