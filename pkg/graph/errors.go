package graph

import (
	"fmt"
	"strings"
)

// Error reports a malformed dependency graph (duplicate packages, edges to
// missing packages). It is fatal: the evaluator refuses to run on a graph
// that failed validation.
type Error struct {
	Message string
}

// Error implements the error interface.
func (e *Error) Error() string {
	return "invalid dependency graph: " + e.Message
}

// CycleError reports a dependency cycle. Cycle holds the offending path with
// the first and last entries equal.
type CycleError struct {
	Cycle []PackageID
}

// Error implements the error interface.
func (e *CycleError) Error() string {
	parts := make([]string, len(e.Cycle))
	for i, id := range e.Cycle {
		parts[i] = string(id)
	}
	return fmt.Sprintf("dependency cycle: %s", strings.Join(parts, " -> "))
}
