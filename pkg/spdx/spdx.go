// Package spdx is the entry point for working with SPDX-style license
// expressions. It re-exports the common parse operations; the AST lives in
// pkg/spdx/ast and the grammar in pkg/spdx/parser.
package spdx

import (
	"mercator-hq/callisto/pkg/spdx/ast"
	"mercator-hq/callisto/pkg/spdx/parser"
)

// Parse parses a strict license expression string.
func Parse(raw string) (ast.Expression, error) {
	return parser.Parse(raw)
}

// ParseLenient parses a raw license declaration, falling back to a single
// opaque identifier atom when the strict grammar does not match. The bool
// reports whether the strict grammar matched.
func ParseLenient(raw string) (ast.Expression, bool) {
	return parser.ParseLenient(raw)
}

// MustParse parses a strict license expression and panics on error.
// It is intended for tests and static initialization with known-good input.
func MustParse(raw string) ast.Expression {
	expr, err := parser.Parse(raw)
	if err != nil {
		panic(err)
	}
	return expr
}
