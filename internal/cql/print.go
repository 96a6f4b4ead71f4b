package cql

// Operator precedence, higher binds tighter. The values follow the CQL
// grammar's operator ladder; only relative order matters to the printer.
const (
	queryPrecedence      = 0
	orPrecedence         = 3
	andPrecedence        = 4
	membershipPrecedence = 5
	comparatorPrecedence = 8
	notPrecedence        = 10
	existsPrecedence     = 11
	additionPrecedence   = 16
	invocationPrecedence = 25
)

// PrintContext carries the ambient operator precedence during rendering.
//
// A composite node prints its operands through WithPrecedence(own) and wraps
// the joined text in parentheses iff its own precedence is lower than the
// ambient precedence it was printed under. Statement-level clauses reset the
// ambient precedence to zero and increase it one notch so that a statement
// body is never spuriously parenthesized but interior operators are wherever
// required.
type PrintContext struct {
	precedence int
}

// DefaultPrintContext is the zero-precedence context used for top-level
// statements.
var DefaultPrintContext = PrintContext{}

// Precedence returns the ambient precedence.
func (c PrintContext) Precedence() int {
	return c.precedence
}

// Parenthesize wraps s in parentheses iff the printing node's precedence is
// lower than the ambient precedence.
func (c PrintContext) Parenthesize(precedence int, s string) string {
	if precedence < c.precedence {
		return "(" + s + ")"
	}
	return s
}

// WithPrecedence returns a context with the given ambient precedence.
func (c PrintContext) WithPrecedence(precedence int) PrintContext {
	return PrintContext{precedence: precedence}
}

// ResetPrecedence returns a context with ambient precedence zero.
func (c PrintContext) ResetPrecedence() PrintContext {
	return PrintContext{}
}

// Increase returns a context with the ambient precedence increased by one.
func (c PrintContext) Increase() PrintContext {
	return PrintContext{precedence: c.precedence + 1}
}
