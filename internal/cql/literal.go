package cql

import "strings"

// StringLiteral is a single-quoted CQL string.
type StringLiteral struct {
	value string
}

// NewStringLiteral creates a string literal. Embedded single quotes and
// backslashes are escaped at print time.
func NewStringLiteral(value string) StringLiteral {
	return StringLiteral{value: value}
}

func (e StringLiteral) Print(PrintContext) string {
	escaped := strings.NewReplacer(`\`, `\\`, `'`, `\'`).Replace(e.value)
	return "'" + escaped + "'"
}

func (e StringLiteral) incrementSuffixes(map[string]int) Expression {
	return e
}

func (e StringLiteral) collectSuffixes(map[string]int) {}

// QuantityExpression is a CQL quantity, a decimal value with an optional
// UCUM unit, e.g. 7.3 'mg/dL'. The value keeps the caller's lexeme so that
// printing never reformats decimals.
type QuantityExpression struct {
	value string
	unit  string
}

// NewQuantityExpression creates a quantity with a unit. The unit may be
// empty for unitless values.
func NewQuantityExpression(value, unit string) QuantityExpression {
	return QuantityExpression{value: value, unit: unit}
}

func (e QuantityExpression) Print(ctx PrintContext) string {
	if e.unit == "" {
		return e.value
	}
	return e.value + " " + NewStringLiteral(e.unit).Print(ctx)
}

func (e QuantityExpression) incrementSuffixes(map[string]int) Expression {
	return e
}

func (e QuantityExpression) collectSuffixes(map[string]int) {}

// DateTimeExpression is a CQL date or datetime literal, e.g. @2021-06-04.
type DateTimeExpression struct {
	value string
}

// NewDateTimeExpression creates a date/datetime literal from its ISO text
// without the leading @.
func NewDateTimeExpression(value string) DateTimeExpression {
	return DateTimeExpression{value: value}
}

func (e DateTimeExpression) Print(PrintContext) string {
	return "@" + e.value
}

func (e DateTimeExpression) incrementSuffixes(map[string]int) Expression {
	return e
}

func (e DateTimeExpression) collectSuffixes(map[string]int) {}

// ListSelector is a CQL list literal, e.g. { 'final', 'amended' }.
// Self-delimiting, so it never needs parentheses.
type ListSelector struct {
	elements []Expression
}

// NewListSelector creates a list literal over the given elements.
func NewListSelector(elements []Expression) ListSelector {
	copied := make([]Expression, len(elements))
	copy(copied, elements)
	return ListSelector{elements: copied}
}

func (e ListSelector) Print(ctx PrintContext) string {
	parts := make([]string, len(e.elements))
	for i, element := range e.elements {
		parts[i] = element.Print(ctx.ResetPrecedence())
	}
	return "{ " + strings.Join(parts, ", ") + " }"
}

func (e ListSelector) incrementSuffixes(increments map[string]int) Expression {
	elements := make([]Expression, len(e.elements))
	for i, element := range e.elements {
		elements[i] = element.incrementSuffixes(increments)
	}
	return ListSelector{elements: elements}
}

func (e ListSelector) collectSuffixes(acc map[string]int) {
	for _, element := range e.elements {
		element.collectSuffixes(acc)
	}
}

// IntervalSelector is a closed CQL interval, e.g. Interval[@2021-01-01,
// @2021-12-31]. Self-delimiting, so it never needs parentheses.
type IntervalSelector struct {
	low  Expression
	high Expression
}

// NewIntervalSelector creates a closed interval from low to high.
func NewIntervalSelector(low, high Expression) IntervalSelector {
	return IntervalSelector{low: low, high: high}
}

func (e IntervalSelector) Print(ctx PrintContext) string {
	inner := ctx.ResetPrecedence()
	return "Interval[" + e.low.Print(inner) + ", " + e.high.Print(inner) + "]"
}

func (e IntervalSelector) incrementSuffixes(increments map[string]int) Expression {
	return IntervalSelector{
		low:  e.low.incrementSuffixes(increments),
		high: e.high.incrementSuffixes(increments),
	}
}

func (e IntervalSelector) collectSuffixes(acc map[string]int) {
	e.low.collectSuffixes(acc)
	e.high.collectSuffixes(acc)
}
