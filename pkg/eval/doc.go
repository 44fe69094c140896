// Package eval decides whether a dependency graph's licensing is
// self-consistent under a declared target tier.
//
// For every package the evaluator collapses its license expression to the
// set of compatibility tiers reachable by some choice of OR branches
// (Choices). The whole-graph requirement is then node-independent: each
// package's licensing choice is independent of its siblings', so the graph
// is compatible iff every package's reachable set contains at least one
// tier the target can host. The evaluator picks the least sufficient tier
// per package as the canonical witness, making verdicts deterministic and
// reproducible.
//
// Packages with no declared license, or whose reachable set is unknowable
// (unrecognized identifiers), are never treated as compatible; they are
// collected into the verdict's undetermined list. An undetermined package
// downgrades the overall result to StatusUndetermined; a conflicting one to
// StatusIncompatible.
//
// Per-package computation touches only the package's own expression and the
// read-only registry table, so the evaluator fans work out across a bounded
// worker pool.
package eval
