// Package cql provides the CQL expression model for sq2cql.
//
// This package contains the expression AST, the precedence-aware printer,
// the alias suffix rewriting used when independently built trees are merged,
// and the Container type that threads code system definitions and Unfiltered
// context defines alongside translation results. All other internal packages
// import cql; cql imports nothing internal. This keeps the expression model
// the foundational layer with no circular dependencies.
//
// Key design constraints:
//   - All node types are immutable values; constructors copy their inputs
//   - Printing is pure: structurally equal trees render identical text
//   - Expression and Clause are sealed interfaces (unexported methods)
package cql
