// Package parser parses SPDX-style license expression strings into ASTs.
//
// The grammar follows conventional boolean-expression precedence: WITH binds
// tightest (and applies only to the immediately preceding license identifier),
// then AND, then OR, all left-associative, with parentheses for grouping.
// Operator keywords are matched case-insensitively ("and" and "AND" are both
// accepted); identifiers are case-sensitive.
//
// Identifier validity is not the parser's concern. Any syntactically valid
// identifier parses successfully; classifying it (or failing to) is the
// registry's job. This separation lets callers report "unknown license" as a
// distinct diagnosis from "malformed expression".
//
// Strict parsing:
//
//	expr, err := parser.Parse("GPL-2.0-only WITH Classpath-exception-2.0")
//
// Lenient parsing, for legacy free-text license names that are not valid
// expressions ("BSD style", "MIT/Apache-2.0"):
//
//	expr := parser.ParseLenient("some free text licence")
package parser
