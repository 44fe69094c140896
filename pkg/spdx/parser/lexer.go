package parser

import (
	"strings"
	"unicode"
)

// tokenKind identifies the lexical class of a token.
type tokenKind int

const (
	tokenIdent tokenKind = iota
	tokenAnd
	tokenOr
	tokenWith
	tokenLParen
	tokenRParen
	tokenEOF
)

// token is a single lexical token with its byte offset in the input.
type token struct {
	kind tokenKind
	text string
	pos  int
}

// lex splits a raw expression into tokens. Identifiers are maximal runs of
// non-whitespace, non-parenthesis characters; parentheses are their own
// tokens even without surrounding whitespace. Operator keywords are
// recognized case-insensitively.
func lex(raw string) []token {
	var tokens []token
	i := 0
	for i < len(raw) {
		c := rune(raw[i])
		switch {
		case unicode.IsSpace(c):
			i++
		case c == '(':
			tokens = append(tokens, token{kind: tokenLParen, text: "(", pos: i})
			i++
		case c == ')':
			tokens = append(tokens, token{kind: tokenRParen, text: ")", pos: i})
			i++
		default:
			start := i
			for i < len(raw) && !unicode.IsSpace(rune(raw[i])) && raw[i] != '(' && raw[i] != ')' {
				i++
			}
			text := raw[start:i]
			tokens = append(tokens, token{kind: keywordKind(text), text: text, pos: start})
		}
	}
	tokens = append(tokens, token{kind: tokenEOF, pos: len(raw)})
	return tokens
}

// keywordKind classifies a word as an operator keyword or an identifier.
func keywordKind(text string) tokenKind {
	switch strings.ToUpper(text) {
	case "AND":
		return tokenAnd
	case "OR":
		return tokenOr
	case "WITH":
		return tokenWith
	default:
		return tokenIdent
	}
}
