package cql

import "strings"

// CodeSelector selects a single code from a declared code system, e.g.
// Code '73211009' from snomed. The system is referenced by its declared
// alias, not its URI.
type CodeSelector struct {
	code        string
	systemAlias string
}

// NewCodeSelector creates a code selector for code within the code system
// declared under systemAlias.
func NewCodeSelector(code, systemAlias string) CodeSelector {
	return CodeSelector{code: code, systemAlias: systemAlias}
}

func (e CodeSelector) Print(ctx PrintContext) string {
	return "Code " + NewStringLiteral(e.code).Print(ctx) + " from " + e.systemAlias
}

func (e CodeSelector) incrementSuffixes(map[string]int) Expression {
	return e
}

func (e CodeSelector) collectSuffixes(map[string]int) {}

// RetrieveExpression retrieves all resources of a type, optionally filtered
// by a code selector, e.g. [Condition: Code '73211009' from snomed].
// Self-delimiting, so it never needs parentheses.
type RetrieveExpression struct {
	resourceType string
	terminology  *CodeSelector
}

// NewRetrieveExpression retrieves all resources of resourceType.
func NewRetrieveExpression(resourceType string) RetrieveExpression {
	return RetrieveExpression{resourceType: resourceType}
}

// NewRetrieveExpressionWithCode retrieves the resources of resourceType
// whose primary code matches the given code selector.
func NewRetrieveExpressionWithCode(resourceType string, terminology CodeSelector) RetrieveExpression {
	return RetrieveExpression{resourceType: resourceType, terminology: &terminology}
}

// ResourceType returns the retrieved resource type.
func (e RetrieveExpression) ResourceType() string {
	return e.resourceType
}

// Alias returns the canonical alias for this retrieve, the uppercase first
// letter of the resource type with suffix zero.
func (e RetrieveExpression) Alias() AliasExpression {
	return NewAliasExpression(strings.ToUpper(e.resourceType[:1]))
}

func (e RetrieveExpression) Print(ctx PrintContext) string {
	if e.terminology == nil {
		return "[" + e.resourceType + "]"
	}
	return "[" + e.resourceType + ": " + e.terminology.Print(ctx.ResetPrecedence()) + "]"
}

func (e RetrieveExpression) incrementSuffixes(map[string]int) Expression {
	return e
}

func (e RetrieveExpression) collectSuffixes(map[string]int) {}

// Clause is one clause of a query expression.
//
// This is a sealed interface - only SourceClause, WhereClause and
// ReturnClause implement it.
type Clause interface {
	Print(ctx PrintContext) string
	incrementSuffixes(increments map[string]int) Clause
	collectSuffixes(acc map[string]int)
}

// SourceClause introduces a query source under an alias, e.g.
// from [Condition: Code '73211009' from snomed] C.
type SourceClause struct {
	source Expression
	alias  AliasExpression
}

// NewSourceClause creates a source clause binding source to alias.
func NewSourceClause(source Expression, alias AliasExpression) SourceClause {
	return SourceClause{source: source, alias: alias}
}

func (c SourceClause) Print(ctx PrintContext) string {
	inner := ctx.ResetPrecedence()
	return "from " + c.source.Print(inner) + " " + c.alias.Print(inner)
}

func (c SourceClause) incrementSuffixes(increments map[string]int) Clause {
	return SourceClause{
		source: c.source.incrementSuffixes(increments),
		alias:  c.alias.withIncrement(increments),
	}
}

func (c SourceClause) collectSuffixes(acc map[string]int) {
	c.source.collectSuffixes(acc)
	c.alias.collectSuffixes(acc)
}

// WhereClause filters a query by a boolean condition.
type WhereClause struct {
	condition BooleanExpression
}

// NewWhereClause creates a where clause over condition.
func NewWhereClause(condition BooleanExpression) WhereClause {
	return WhereClause{condition: condition}
}

func (c WhereClause) Print(ctx PrintContext) string {
	return "where " + c.condition.Print(ctx.ResetPrecedence().Increase())
}

func (c WhereClause) incrementSuffixes(increments map[string]int) Clause {
	return WhereClause{condition: incrementBool(c.condition, increments)}
}

func (c WhereClause) collectSuffixes(acc map[string]int) {
	c.condition.collectSuffixes(acc)
}

// ReturnClause projects each query element through an expression.
type ReturnClause struct {
	expression Expression
}

// NewReturnClause creates a return clause over expression.
func NewReturnClause(expression Expression) ReturnClause {
	return ReturnClause{expression: expression}
}

func (c ReturnClause) Print(ctx PrintContext) string {
	return "return " + c.expression.Print(ctx.ResetPrecedence().Increase())
}

func (c ReturnClause) incrementSuffixes(increments map[string]int) Clause {
	return ReturnClause{expression: c.expression.incrementSuffixes(increments)}
}

func (c ReturnClause) collectSuffixes(acc map[string]int) {
	c.expression.collectSuffixes(acc)
}

// QueryExpression is one retrieve-and-filter-or-project unit: a source
// clause followed by further clauses. It has the lowest precedence, so it
// is parenthesized in any operand position but never at statement level.
type QueryExpression struct {
	sourceClause SourceClause
	clauses      []Clause
}

// NewQueryExpression creates a query from a source clause and any number of
// further clauses.
func NewQueryExpression(sourceClause SourceClause, clauses ...Clause) QueryExpression {
	copied := make([]Clause, len(clauses))
	copy(copied, clauses)
	return QueryExpression{sourceClause: sourceClause, clauses: copied}
}

func (e QueryExpression) Print(ctx PrintContext) string {
	parts := make([]string, 0, len(e.clauses)+1)
	parts = append(parts, e.sourceClause.Print(ctx.ResetPrecedence()))
	for _, clause := range e.clauses {
		parts = append(parts, clause.Print(ctx.ResetPrecedence()))
	}
	return ctx.Parenthesize(queryPrecedence, strings.Join(parts, " "))
}

func (e QueryExpression) incrementSuffixes(increments map[string]int) Expression {
	clauses := make([]Clause, len(e.clauses))
	for i, clause := range e.clauses {
		clauses[i] = clause.incrementSuffixes(increments)
	}
	source := e.sourceClause.incrementSuffixes(increments).(SourceClause)
	return QueryExpression{sourceClause: source, clauses: clauses}
}

func (e QueryExpression) collectSuffixes(acc map[string]int) {
	e.sourceClause.collectSuffixes(acc)
	for _, clause := range e.clauses {
		clause.collectSuffixes(acc)
	}
}
