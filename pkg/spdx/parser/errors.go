package parser

import "fmt"

// ParseError describes a malformed license expression. Position is the
// byte offset into Raw at which parsing failed (0-based); it points at the
// offending token, or at the end of the input for truncated expressions.
type ParseError struct {
	Raw      string // The input expression
	Position int    // Byte offset of the failure
	Message  string // What went wrong
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	return fmt.Sprintf("malformed license expression %q at offset %d: %s", e.Raw, e.Position, e.Message)
}

func (p *parser) errorf(pos int, format string, args ...interface{}) *ParseError {
	return &ParseError{
		Raw:      p.raw,
		Position: pos,
		Message:  fmt.Sprintf(format, args...),
	}
}
