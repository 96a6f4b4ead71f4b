package cql

import "strings"

// AndExpression is the n-ary boolean conjunction.
type AndExpression struct {
	operands []BooleanExpression
}

// NewAndExpression combines two boolean expressions with "and". When the
// left operand is itself a conjunction its operand list is extended instead
// of nested, so chains print flat: a and b and c.
func NewAndExpression(e1, e2 BooleanExpression) AndExpression {
	if and, ok := e1.(AndExpression); ok {
		operands := make([]BooleanExpression, len(and.operands), len(and.operands)+1)
		copy(operands, and.operands)
		return AndExpression{operands: append(operands, e2)}
	}
	return AndExpression{operands: []BooleanExpression{e1, e2}}
}

func (e AndExpression) Print(ctx PrintContext) string {
	return ctx.Parenthesize(andPrecedence, joinOperands(e.operands, " and ", ctx.WithPrecedence(andPrecedence)))
}

func (e AndExpression) incrementSuffixes(increments map[string]int) Expression {
	return AndExpression{operands: incrementOperands(e.operands, increments)}
}

func (e AndExpression) collectSuffixes(acc map[string]int) {
	collectOperands(e.operands, acc)
}

func (AndExpression) booleanExpr() {}

// OrExpression is the n-ary boolean disjunction.
type OrExpression struct {
	operands []BooleanExpression
}

// NewOrExpression combines two boolean expressions with "or", flattening a
// left-hand disjunction the same way NewAndExpression does.
func NewOrExpression(e1, e2 BooleanExpression) OrExpression {
	if or, ok := e1.(OrExpression); ok {
		operands := make([]BooleanExpression, len(or.operands), len(or.operands)+1)
		copy(operands, or.operands)
		return OrExpression{operands: append(operands, e2)}
	}
	return OrExpression{operands: []BooleanExpression{e1, e2}}
}

func (e OrExpression) Print(ctx PrintContext) string {
	return ctx.Parenthesize(orPrecedence, joinOperands(e.operands, " or ", ctx.WithPrecedence(orPrecedence)))
}

func (e OrExpression) incrementSuffixes(increments map[string]int) Expression {
	return OrExpression{operands: incrementOperands(e.operands, increments)}
}

func (e OrExpression) collectSuffixes(acc map[string]int) {
	collectOperands(e.operands, acc)
}

func (OrExpression) booleanExpr() {}

// NotExpression is the boolean negation.
type NotExpression struct {
	operand BooleanExpression
}

// NewNotExpression negates a boolean expression.
func NewNotExpression(operand BooleanExpression) NotExpression {
	return NotExpression{operand: operand}
}

func (e NotExpression) Print(ctx PrintContext) string {
	return ctx.Parenthesize(notPrecedence, "not "+e.operand.Print(ctx.WithPrecedence(notPrecedence)))
}

func (e NotExpression) incrementSuffixes(increments map[string]int) Expression {
	return NotExpression{operand: incrementBool(e.operand, increments)}
}

func (e NotExpression) collectSuffixes(acc map[string]int) {
	e.operand.collectSuffixes(acc)
}

func (NotExpression) booleanExpr() {}

// ComparatorExpression compares two operands with one of the CQL comparison
// operators (=, !=, <, <=, >, >=).
type ComparatorExpression struct {
	left       Expression
	comparator string
	right      Expression
}

// NewComparatorExpression creates a comparison.
func NewComparatorExpression(left Expression, comparator string, right Expression) ComparatorExpression {
	return ComparatorExpression{left: left, comparator: comparator, right: right}
}

func (e ComparatorExpression) Print(ctx PrintContext) string {
	operand := ctx.WithPrecedence(comparatorPrecedence)
	return ctx.Parenthesize(comparatorPrecedence,
		e.left.Print(operand)+" "+e.comparator+" "+e.right.Print(operand))
}

func (e ComparatorExpression) incrementSuffixes(increments map[string]int) Expression {
	return ComparatorExpression{
		left:       e.left.incrementSuffixes(increments),
		comparator: e.comparator,
		right:      e.right.incrementSuffixes(increments),
	}
}

func (e ComparatorExpression) collectSuffixes(acc map[string]int) {
	e.left.collectSuffixes(acc)
	e.right.collectSuffixes(acc)
}

func (ComparatorExpression) booleanExpr() {}

// MembershipExpression tests membership with "in" or "contains".
type MembershipExpression struct {
	left     Expression
	operator string
	right    Expression
}

// NewInExpression tests whether element is a member of collection.
func NewInExpression(element, collection Expression) MembershipExpression {
	return MembershipExpression{left: element, operator: "in", right: collection}
}

// NewContainsExpression tests whether collection contains element.
func NewContainsExpression(collection, element Expression) MembershipExpression {
	return MembershipExpression{left: collection, operator: "contains", right: element}
}

func (e MembershipExpression) Print(ctx PrintContext) string {
	operand := ctx.WithPrecedence(membershipPrecedence)
	return ctx.Parenthesize(membershipPrecedence,
		e.left.Print(operand)+" "+e.operator+" "+e.right.Print(operand))
}

func (e MembershipExpression) incrementSuffixes(increments map[string]int) Expression {
	return MembershipExpression{
		left:     e.left.incrementSuffixes(increments),
		operator: e.operator,
		right:    e.right.incrementSuffixes(increments),
	}
}

func (e MembershipExpression) collectSuffixes(acc map[string]int) {
	e.left.collectSuffixes(acc)
	e.right.collectSuffixes(acc)
}

func (MembershipExpression) booleanExpr() {}

// ExistsExpression tests whether a retrieve or query yields any element.
type ExistsExpression struct {
	operand Expression
}

// NewExistsExpression creates an existence test over a retrieve or query.
func NewExistsExpression(operand Expression) ExistsExpression {
	return ExistsExpression{operand: operand}
}

func (e ExistsExpression) Print(ctx PrintContext) string {
	return ctx.Parenthesize(existsPrecedence, "exists "+e.operand.Print(ctx.WithPrecedence(existsPrecedence)))
}

func (e ExistsExpression) incrementSuffixes(increments map[string]int) Expression {
	return ExistsExpression{operand: e.operand.incrementSuffixes(increments)}
}

func (e ExistsExpression) collectSuffixes(acc map[string]int) {
	e.operand.collectSuffixes(acc)
}

func (ExistsExpression) booleanExpr() {}

func joinOperands(operands []BooleanExpression, separator string, ctx PrintContext) string {
	parts := make([]string, len(operands))
	for i, operand := range operands {
		parts[i] = operand.Print(ctx)
	}
	return strings.Join(parts, separator)
}

func incrementOperands(operands []BooleanExpression, increments map[string]int) []BooleanExpression {
	result := make([]BooleanExpression, len(operands))
	for i, operand := range operands {
		result[i] = incrementBool(operand, increments)
	}
	return result
}

func collectOperands(operands []BooleanExpression, acc map[string]int) {
	for _, operand := range operands {
		operand.collectSuffixes(acc)
	}
}
