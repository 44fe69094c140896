package parser

import (
	"strings"

	"mercator-hq/callisto/pkg/spdx/ast"
)

// Parse parses a strict license expression. The input must be a well-formed
// boolean combination of identifiers; empty input, unbalanced parentheses,
// dangling operators and misplaced WITH clauses all yield a *ParseError.
func Parse(raw string) (ast.Expression, error) {
	p := &parser{raw: raw, tokens: lex(raw)}
	expr, err := p.parseOr()
	if err != nil {
		return nil, err
	}
	if tok := p.peek(); tok.kind != tokenEOF {
		return nil, p.errorf(tok.pos, "unexpected %q after expression", tok.text)
	}
	return expr, nil
}

// ParseLenient parses a raw license declaration that may be legacy free text
// rather than a structured expression. It first tries the strict grammar
// (after normalizing the historical "/" separator to OR); if that fails, the
// entire trimmed string becomes a single identifier atom, so free-text names
// like "BSD style" still flow through tier classification as one opaque
// identifier instead of aborting the run. The returned bool reports whether
// the strict grammar matched.
func ParseLenient(raw string) (ast.Expression, bool) {
	candidate := raw
	// Cargo's historical shorthand "MIT/Apache-2.0" means a license choice.
	if strings.Contains(candidate, "/") && !strings.ContainsAny(candidate, "()") {
		candidate = strings.Join(strings.Split(candidate, "/"), " OR ")
	}
	if expr, err := Parse(candidate); err == nil {
		return expr, true
	}
	return ast.NewAtom(ast.Ident(strings.TrimSpace(raw))), false
}

// parser is a recursive-descent parser over the token stream.
type parser struct {
	raw    string
	tokens []token
	next   int
}

func (p *parser) peek() token {
	return p.tokens[p.next]
}

func (p *parser) advance() token {
	tok := p.tokens[p.next]
	if tok.kind != tokenEOF {
		p.next++
	}
	return tok
}

// parseOr parses the lowest-precedence level: operand (OR operand)*.
func (p *parser) parseOr() (ast.Expression, error) {
	first, err := p.parseAnd()
	if err != nil {
		return nil, err
	}
	operands := []ast.Expression{first}
	for p.peek().kind == tokenOr {
		p.advance()
		operand, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		operands = append(operands, operand)
	}
	return ast.NewOr(operands...), nil
}

// parseAnd parses operand (AND operand)*.
func (p *parser) parseAnd() (ast.Expression, error) {
	first, err := p.parseWith()
	if err != nil {
		return nil, err
	}
	operands := []ast.Expression{first}
	for p.peek().kind == tokenAnd {
		p.advance()
		operand, err := p.parseWith()
		if err != nil {
			return nil, err
		}
		operands = append(operands, operand)
	}
	return ast.NewAnd(operands...), nil
}

// parseWith parses primary (WITH identifier)?. A WITH clause attaches only
// to an immediately preceding bare identifier, never to a parenthesized
// subexpression.
func (p *parser) parseWith() (ast.Expression, error) {
	primary, parenthesized, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}
	if p.peek().kind != tokenWith {
		return primary, nil
	}
	withTok := p.advance()
	atom, ok := primary.(*ast.Atom)
	if !ok || parenthesized {
		return nil, p.errorf(withTok.pos, "WITH must immediately follow a license identifier")
	}
	if atom.Identifier.HasException() {
		return nil, p.errorf(withTok.pos, "identifier already carries a WITH exception")
	}
	exc := p.advance()
	if exc.kind != tokenIdent {
		return nil, p.errorf(exc.pos, "expected exception identifier after WITH")
	}
	return ast.NewAtom(ast.IdentWith(atom.Identifier.ID, exc.text)), nil
}

// parsePrimary parses an identifier or a parenthesized expression. The
// second return value reports whether the expression was parenthesized.
func (p *parser) parsePrimary() (ast.Expression, bool, error) {
	tok := p.advance()
	switch tok.kind {
	case tokenIdent:
		return ast.NewAtom(ast.Ident(tok.text)), false, nil
	case tokenLParen:
		inner, err := p.parseOr()
		if err != nil {
			return nil, false, err
		}
		closing := p.advance()
		if closing.kind != tokenRParen {
			return nil, false, p.errorf(closing.pos, "expected closing parenthesis")
		}
		return inner, true, nil
	case tokenEOF:
		return nil, false, p.errorf(tok.pos, "unexpected end of expression")
	default:
		return nil, false, p.errorf(tok.pos, "unexpected %q", tok.text)
	}
}
