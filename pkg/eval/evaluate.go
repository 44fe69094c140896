package eval

import (
	"log/slog"
	"runtime"
	"sort"
	"sync"

	"mercator-hq/callisto/pkg/graph"
	"mercator-hq/callisto/pkg/registry"
	"mercator-hq/callisto/pkg/spdx/ast"
)

// Status is the overall outcome of a compatibility evaluation.
type Status string

const (
	// StatusCompatible means every package has a licensing choice the
	// target can host; the verdict carries a witness assignment.
	StatusCompatible Status = "compatible"

	// StatusIncompatible means at least one package has no licensing
	// choice the target can host.
	StatusIncompatible Status = "incompatible"

	// StatusUndetermined means no conflict was found, but at least one
	// package's licensing could not be established (missing declaration or
	// unrecognized identifiers).
	StatusUndetermined Status = "undetermined"
)

// Reason explains why a package is undetermined.
type Reason string

const (
	// ReasonMissingLicense marks a package with no license declaration.
	ReasonMissingLicense Reason = "missing-license"

	// ReasonUnknownLicense marks a package whose declaration only resolves
	// through unrecognized identifiers.
	ReasonUnknownLicense Reason = "unknown-license"
)

// Choice is one package's witness: the governing tier and the identifiers
// in force under the chosen OR branches.
type Choice struct {
	Tier        registry.Tier    `json:"tier"`
	Identifiers []ast.Identifier `json:"identifiers"`
}

// Conflict names a package whose achievable tiers are all incompatible
// with the target.
type Conflict struct {
	Package    graph.PackageID `json:"package"`
	Expression string          `json:"expression"`
	Achievable []registry.Tier `json:"achievable"`
}

// Undetermined names a package whose licensing could not be established.
type Undetermined struct {
	Package graph.PackageID `json:"package"`
	Reason  Reason          `json:"reason"`
}

// Verdict is the result of evaluating a graph against a target tier.
// Evaluation is deterministic: the same graph and target always produce an
// identical verdict.
type Verdict struct {
	Status       Status                     `json:"status"`
	Target       registry.Tier              `json:"-"`
	TargetName   string                     `json:"target"`
	Assignment   map[graph.PackageID]Choice `json:"assignment,omitempty"`
	Conflicts    []Conflict                 `json:"conflicts,omitempty"`
	Undetermined []Undetermined             `json:"undetermined,omitempty"`
}

// Config contains configuration for the evaluator.
type Config struct {
	// Workers is the number of concurrent per-package evaluations.
	// Default: runtime.NumCPU().
	Workers int
}

// DefaultConfig returns the default evaluator configuration.
func DefaultConfig() *Config {
	return &Config{Workers: runtime.NumCPU()}
}

// Evaluator decides graph-wide license compatibility against a target tier.
// It is stateless apart from the read-only registry and safe for concurrent
// use.
type Evaluator struct {
	reg     *registry.Registry
	workers int
	logger  *slog.Logger
}

// New creates an evaluator backed by the given registry.
func New(reg *registry.Registry, config *Config) *Evaluator {
	if config == nil {
		config = DefaultConfig()
	}
	workers := config.Workers
	if workers < 1 {
		workers = 1
	}
	return &Evaluator{
		reg:     reg,
		workers: workers,
		logger:  slog.Default().With("component", "eval"),
	}
}

// nodeResult is the per-package outcome before verdict assembly.
type nodeResult struct {
	id           graph.PackageID
	choice       *Choice
	conflict     *Conflict
	undetermined *Undetermined
}

// Evaluate checks every package in the graph against the target tier.
// expressions maps package IDs to their parsed license expressions; a
// missing or nil entry means the package declares no license. The graph
// must have passed validation (graph.New refuses cycles), so evaluation
// never follows edges and cannot loop.
func (e *Evaluator) Evaluate(target registry.Tier, g *graph.Graph, expressions map[graph.PackageID]ast.Expression) *Verdict {
	packages := g.Packages()
	results := make([]nodeResult, len(packages))

	jobs := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < e.workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				results[i] = e.evaluateNode(target, packages[i].ID, expressions[packages[i].ID])
			}
		}()
	}
	for i := range packages {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	verdict := &Verdict{
		Target:     target,
		TargetName: target.String(),
		Assignment: make(map[graph.PackageID]Choice, len(packages)),
	}
	for _, res := range results {
		switch {
		case res.conflict != nil:
			verdict.Conflicts = append(verdict.Conflicts, *res.conflict)
		case res.undetermined != nil:
			verdict.Undetermined = append(verdict.Undetermined, *res.undetermined)
		case res.choice != nil:
			verdict.Assignment[res.id] = *res.choice
		}
	}
	sort.Slice(verdict.Conflicts, func(i, j int) bool {
		return verdict.Conflicts[i].Package < verdict.Conflicts[j].Package
	})
	sort.Slice(verdict.Undetermined, func(i, j int) bool {
		return verdict.Undetermined[i].Package < verdict.Undetermined[j].Package
	})

	switch {
	case len(verdict.Conflicts) > 0:
		verdict.Status = StatusIncompatible
		verdict.Assignment = nil
	case len(verdict.Undetermined) > 0:
		verdict.Status = StatusUndetermined
		verdict.Assignment = nil
	default:
		verdict.Status = StatusCompatible
	}

	e.logger.Debug("evaluation finished",
		"target", target.String(),
		"status", string(verdict.Status),
		"packages", len(packages),
		"conflicts", len(verdict.Conflicts),
		"undetermined", len(verdict.Undetermined),
	)
	return verdict
}

// evaluateNode decides a single package. A package is compatible when some
// choice of OR branches yields a tier the target can host; otherwise it is
// undetermined if unrecognized identifiers leave the question open, and a
// conflict only when every achievable tier is provably incompatible.
func (e *Evaluator) evaluateNode(target registry.Tier, id graph.PackageID, expr ast.Expression) nodeResult {
	if expr == nil {
		return nodeResult{id: id, undetermined: &Undetermined{Package: id, Reason: ReasonMissingLicense}}
	}

	res := choices(e.reg, expr)
	for _, tier := range res.set.Tiers() {
		if target.CanHost(tier) {
			w := resolveWitnessFor(e.reg, expr, target)
			return nodeResult{id: id, choice: &Choice{Tier: w.tier, Identifiers: w.identifiers}}
		}
	}

	if res.sawUnknown {
		return nodeResult{id: id, undetermined: &Undetermined{Package: id, Reason: ReasonUnknownLicense}}
	}
	return nodeResult{id: id, conflict: &Conflict{
		Package:    id,
		Expression: expr.String(),
		Achievable: res.set.Tiers(),
	}}
}
