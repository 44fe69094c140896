// Package ast provides the Abstract Syntax Tree for SPDX-style license expressions.
//
// A license expression is a boolean combination of license identifiers using
// the AND, OR and WITH operators, as declared by packages in their metadata.
// The AST represents the parsed structure of such an expression, enabling
// compatibility evaluation and canonical rendering.
//
// # Core Types
//
// Expression: Interface implemented by all tree nodes
//
// Atom: A single license identifier, optionally with a WITH exception
//
// And: All operands apply simultaneously (most restrictive combination governs)
//
// Or: The licensor grants a choice; exactly one operand governs a distribution
//
// Identifier: Canonical license identifier plus optional exception identifier
//
// # Basic Usage
//
// Build and render an expression:
//
//	expr := ast.NewAnd(
//	    ast.NewAtom(ast.Ident("MIT")),
//	    ast.NewAtom(ast.Ident("Apache-2.0")),
//	)
//	fmt.Println(expr.String()) // "MIT AND Apache-2.0"
//
// Traverse all atoms in an expression:
//
//	ast.WalkAtoms(expr, func(a *ast.Atom) {
//	    fmt.Println(a.Identifier)
//	})
package ast
