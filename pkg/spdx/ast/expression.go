package ast

import (
	"encoding/json"
	"strings"
)

// Kind identifies the node kind of an Expression.
type Kind string

const (
	KindAtom Kind = "atom" // Single license identifier
	KindAnd  Kind = "and"  // All operands apply simultaneously
	KindOr   Kind = "or"   // Licensor grants a choice between operands
)

// Expression is a node in a license expression tree.
// Every tree contains at least one Atom leaf; And and Or nodes always
// carry at least two operands (single-operand nodes collapse to the
// operand at construction time).
type Expression interface {
	// Kind returns the node kind.
	Kind() Kind

	// String returns the canonical rendering of the subtree. Parsing the
	// result yields a structurally equal tree.
	String() string

	// precedence is used to decide parenthesization during rendering.
	precedence() int
}

// Identifier is a canonical license identifier, optionally paired with an
// exception identifier from a WITH clause. It is an immutable value type;
// equality is exact string comparison on both fields.
type Identifier struct {
	// ID is the canonical license identifier, e.g. "MIT" or "GPL-3.0-only".
	ID string

	// Exception is the exception identifier from a WITH clause, e.g.
	// "Classpath-exception-2.0". Empty when no exception applies.
	Exception string
}

// Ident returns an Identifier with no exception.
func Ident(id string) Identifier {
	return Identifier{ID: id}
}

// IdentWith returns an Identifier carrying a WITH exception.
func IdentWith(id, exception string) Identifier {
	return Identifier{ID: id, Exception: exception}
}

// HasException returns true if the identifier carries a WITH exception.
func (i Identifier) HasException() bool {
	return i.Exception != ""
}

// String returns the canonical rendering, e.g. "GPL-2.0-only WITH Classpath-exception-2.0".
func (i Identifier) String() string {
	if i.Exception == "" {
		return i.ID
	}
	return i.ID + " WITH " + i.Exception
}

// MarshalJSON encodes the identifier in its canonical rendering.
func (i Identifier) MarshalJSON() ([]byte, error) {
	return json.Marshal(i.String())
}

// UnmarshalJSON decodes an identifier from its canonical rendering.
func (i *Identifier) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	if id, exception, found := strings.Cut(s, " WITH "); found {
		*i = Identifier{ID: id, Exception: exception}
	} else {
		*i = Identifier{ID: s}
	}
	return nil
}

// Atom is a leaf node holding a single license identifier.
type Atom struct {
	Identifier Identifier
}

// NewAtom creates an Atom for the given identifier.
func NewAtom(id Identifier) *Atom {
	return &Atom{Identifier: id}
}

// Kind returns KindAtom.
func (a *Atom) Kind() Kind { return KindAtom }

// String returns the canonical rendering of the identifier.
func (a *Atom) String() string { return a.Identifier.String() }

func (a *Atom) precedence() int { return 3 }

// And is a conjunction: the work is under every operand simultaneously,
// so the most restrictive combination of obligations governs.
type And struct {
	Operands []Expression
}

// NewAnd builds a conjunction. A single operand is returned unchanged
// (And([X]) is semantically identical to X). It panics on zero operands;
// empty operand lists are rejected at parse time.
func NewAnd(operands ...Expression) Expression {
	if len(operands) == 0 {
		panic("ast: empty And")
	}
	if len(operands) == 1 {
		return operands[0]
	}
	return &And{Operands: operands}
}

// Kind returns KindAnd.
func (a *And) Kind() Kind { return KindAnd }

// String returns the canonical rendering with operands joined by " AND ".
func (a *And) String() string { return renderOperands(a.Operands, " AND ", a.precedence()) }

func (a *And) precedence() int { return 2 }

// Or is a disjunction: the licensor grants a choice, and exactly one
// operand is chosen to govern a given distribution.
type Or struct {
	Operands []Expression
}

// NewOr builds a disjunction. A single operand is returned unchanged
// (Or([X]) is semantically identical to X). It panics on zero operands;
// empty operand lists are rejected at parse time.
func NewOr(operands ...Expression) Expression {
	if len(operands) == 0 {
		panic("ast: empty Or")
	}
	if len(operands) == 1 {
		return operands[0]
	}
	return &Or{Operands: operands}
}

// Kind returns KindOr.
func (o *Or) Kind() Kind { return KindOr }

// String returns the canonical rendering with operands joined by " OR ".
func (o *Or) String() string { return renderOperands(o.Operands, " OR ", o.precedence()) }

func (o *Or) precedence() int { return 1 }

// renderOperands joins operand renderings, parenthesizing any operand that
// binds looser than the parent so the rendering round-trips.
func renderOperands(operands []Expression, sep string, parentPrec int) string {
	var sb strings.Builder
	for i, op := range operands {
		if i > 0 {
			sb.WriteString(sep)
		}
		if op.precedence() < parentPrec {
			sb.WriteString("(")
			sb.WriteString(op.String())
			sb.WriteString(")")
		} else {
			sb.WriteString(op.String())
		}
	}
	return sb.String()
}

// WalkAtoms calls fn for every Atom leaf in the expression, in rendering order.
func WalkAtoms(expr Expression, fn func(*Atom)) {
	switch e := expr.(type) {
	case *Atom:
		fn(e)
	case *And:
		for _, op := range e.Operands {
			WalkAtoms(op, fn)
		}
	case *Or:
		for _, op := range e.Operands {
			WalkAtoms(op, fn)
		}
	}
}

// Identifiers returns every identifier reachable in the expression,
// regardless of OR choice, deduplicated in first-seen order.
func Identifiers(expr Expression) []Identifier {
	var ids []Identifier
	seen := make(map[Identifier]bool)
	WalkAtoms(expr, func(a *Atom) {
		if !seen[a.Identifier] {
			seen[a.Identifier] = true
			ids = append(ids, a.Identifier)
		}
	})
	return ids
}

// Equal reports whether two expressions are structurally equal.
func Equal(a, b Expression) bool {
	if a.Kind() != b.Kind() {
		return false
	}
	switch ea := a.(type) {
	case *Atom:
		return ea.Identifier == b.(*Atom).Identifier
	case *And:
		return equalOperands(ea.Operands, b.(*And).Operands)
	case *Or:
		return equalOperands(ea.Operands, b.(*Or).Operands)
	}
	return false
}

func equalOperands(a, b []Expression) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !Equal(a[i], b[i]) {
			return false
		}
	}
	return true
}
