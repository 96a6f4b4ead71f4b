package cql

// InvocationExpression is a member invocation on an expression, e.g.
// C.onsetDateTime or M.medication.reference. The invocation text may be a
// dotted path; only the base expression participates in alias rewriting.
type InvocationExpression struct {
	expression Expression
	invocation string
}

// NewInvocationExpression creates a member invocation on expression.
func NewInvocationExpression(expression Expression, invocation string) InvocationExpression {
	return InvocationExpression{expression: expression, invocation: invocation}
}

func (e InvocationExpression) Print(ctx PrintContext) string {
	return ctx.Parenthesize(invocationPrecedence,
		e.expression.Print(ctx.WithPrecedence(invocationPrecedence))+"."+e.invocation)
}

func (e InvocationExpression) incrementSuffixes(increments map[string]int) Expression {
	return InvocationExpression{
		expression: e.expression.incrementSuffixes(increments),
		invocation: e.invocation,
	}
}

func (e InvocationExpression) collectSuffixes(acc map[string]int) {
	e.expression.collectSuffixes(acc)
}

func (InvocationExpression) booleanExpr() {}

// AdditionExpressionTerm is the n-ary + term, used for string concatenation
// like 'Medication/' + M.id.
type AdditionExpressionTerm struct {
	operands []Expression
}

// NewAdditionExpressionTerm combines two terms with "+". When the left
// operand is itself an addition its operand list is extended instead of
// nested, so chains print flat: a + b + c.
func NewAdditionExpressionTerm(e1, e2 Expression) AdditionExpressionTerm {
	if addition, ok := e1.(AdditionExpressionTerm); ok {
		operands := make([]Expression, len(addition.operands), len(addition.operands)+1)
		copy(operands, addition.operands)
		return AdditionExpressionTerm{operands: append(operands, e2)}
	}
	return AdditionExpressionTerm{operands: []Expression{e1, e2}}
}

func (e AdditionExpressionTerm) Print(ctx PrintContext) string {
	operand := ctx.WithPrecedence(additionPrecedence)
	parts := make([]string, len(e.operands))
	for i, op := range e.operands {
		parts[i] = op.Print(operand)
	}
	joined := parts[0]
	for _, part := range parts[1:] {
		joined += " + " + part
	}
	return ctx.Parenthesize(additionPrecedence, joined)
}

func (e AdditionExpressionTerm) incrementSuffixes(increments map[string]int) Expression {
	operands := make([]Expression, len(e.operands))
	for i, op := range e.operands {
		operands[i] = op.incrementSuffixes(increments)
	}
	return AdditionExpressionTerm{operands: operands}
}

func (e AdditionExpressionTerm) collectSuffixes(acc map[string]int) {
	for _, op := range e.operands {
		op.collectSuffixes(acc)
	}
}
