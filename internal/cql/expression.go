package cql

// Expression represents a CQL expression or term.
//
// This is a sealed interface - only types in this package implement it.
// The unexported methods prevent external implementations and keep the
// node family closed, so the printer and the suffix rewriter can rely on
// every node handling both protocols.
type Expression interface {
	// Print renders the expression under the given ambient precedence.
	Print(ctx PrintContext) string

	// incrementSuffixes returns a structurally identical expression with
	// every contained alias suffix increased by increments[baseName].
	// The dynamic type of the result is always the receiver's type.
	incrementSuffixes(increments map[string]int) Expression

	// collectSuffixes records, per alias base name, the maximum suffix in
	// use anywhere inside the expression.
	collectSuffixes(acc map[string]int)
}

// BooleanExpression represents an expression of boolean type, usable as a
// where-clause condition and as an operand of the boolean connectives.
type BooleanExpression interface {
	Expression
	booleanExpr() // Marker method - seals boolean nodes to this package
}

// WithIncrementedSuffixes returns expr rewritten with every alias suffix
// increased by increments[baseName] (zero if absent). The empty increment
// map is the identity transformation. The rewrite preserves the concrete
// node type, so callers keep the static type of the tree they pass in.
func WithIncrementedSuffixes[T Expression](expr T, increments map[string]int) T {
	if isNilExpr(expr) {
		return expr
	}
	return expr.incrementSuffixes(increments).(T)
}

// MaxAliasSuffixes returns, per alias base name, the maximum suffix used in
// any of the given expressions. Names never introduced map to no entry.
func MaxAliasSuffixes(exprs ...Expression) map[string]int {
	acc := map[string]int{}
	for _, expr := range exprs {
		if !isNilExpr(expr) {
			expr.collectSuffixes(acc)
		}
	}
	return acc
}

func isNilExpr(expr Expression) bool {
	return expr == nil
}

// incrementBool narrows the suffix rewrite back to BooleanExpression.
func incrementBool(expr BooleanExpression, increments map[string]int) BooleanExpression {
	return expr.incrementSuffixes(increments).(BooleanExpression)
}

func recordSuffix(acc map[string]int, name string, suffix int) {
	if current, ok := acc[name]; !ok || suffix > current {
		acc[name] = suffix
	}
}
