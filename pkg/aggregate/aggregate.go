// Package aggregate orchestrates a whole compliance run: it pulls packages
// from a metadata source, parses every license declaration, evaluates the
// dependency graph against the target tier, and assembles the report the
// calling surface renders.
//
// Per-package failures (malformed expressions, unknown identifiers, missing
// declarations) are diagnoses inside the report; only a malformed graph or
// a failing metadata source aborts the run.
package aggregate

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/google/uuid"
	lru "github.com/hashicorp/golang-lru/v2"

	"mercator-hq/callisto/pkg/eval"
	"mercator-hq/callisto/pkg/graph"
	"mercator-hq/callisto/pkg/registry"
	"mercator-hq/callisto/pkg/spdx/ast"
	"mercator-hq/callisto/pkg/spdx/parser"
)

// Source supplies the dependency graph and per-package metadata. Reading
// happens entirely before evaluation; the core performs no I/O of its own.
type Source interface {
	// Packages returns every package in the graph and the root IDs the
	// run is scoped to. An empty root list means all packages are roots.
	Packages(ctx context.Context) ([]*graph.Package, []graph.PackageID, error)
}

// Options configures a single run.
type Options struct {
	// Mode selects check or list resolution. Default: ModeCheck.
	Mode Mode

	// Target is the tier the distributing artifact is declared under.
	// Required in check mode.
	Target registry.Tier
}

// CacheMetrics receives parse cache outcomes. The telemetry collector
// implements it; a nil value disables recording.
type CacheMetrics interface {
	RecordCacheHit()
	RecordCacheMiss()
}

// Config contains configuration for the Aggregator.
type Config struct {
	// ParseCacheSize bounds the raw-string parse cache. Many packages
	// share identical declarations ("MIT"), so parses are memoized.
	// Default: 512.
	ParseCacheSize int

	// Evaluator configures the compatibility evaluator.
	Evaluator *eval.Config

	// Metrics, when non-nil, is notified of parse cache hits and misses.
	Metrics CacheMetrics
}

// DefaultConfig returns the default aggregator configuration.
func DefaultConfig() *Config {
	return &Config{ParseCacheSize: 512}
}

// Aggregator runs compliance checks end to end.
type Aggregator struct {
	reg       *registry.Registry
	evaluator *eval.Evaluator
	cache     *lru.Cache[string, parseOutcome]
	metrics   CacheMetrics
	logger    *slog.Logger
}

// parseOutcome memoizes the lenient parse of one raw declaration.
type parseOutcome struct {
	expr     ast.Expression
	strict   bool
	position int
	message  string
}

// New creates an Aggregator backed by the given registry.
func New(reg *registry.Registry, config *Config) (*Aggregator, error) {
	if config == nil {
		config = DefaultConfig()
	}
	size := config.ParseCacheSize
	if size <= 0 {
		size = 512
	}
	cache, err := lru.New[string, parseOutcome](size)
	if err != nil {
		return nil, fmt.Errorf("failed to create parse cache: %w", err)
	}
	return &Aggregator{
		reg:       reg,
		evaluator: eval.New(reg, config.Evaluator),
		cache:     cache,
		metrics:   config.Metrics,
		logger:    slog.Default().With("component", "aggregate"),
	}, nil
}

// Run executes one compliance run. It returns an error only for fatal
// conditions: a failing metadata source or a malformed dependency graph
// (duplicates, dangling edges, cycles). Everything else is reported.
func (a *Aggregator) Run(ctx context.Context, src Source, opts Options) (*Report, error) {
	started := time.Now().UTC()
	if opts.Mode == "" {
		opts.Mode = ModeCheck
	}
	if opts.Mode == ModeCheck && !opts.Target.Known() {
		return nil, fmt.Errorf("check mode requires a known target tier")
	}

	packages, roots, err := src.Packages(ctx)
	if err != nil {
		return nil, fmt.Errorf("metadata source failed: %w", err)
	}
	full, err := graph.New(packages)
	if err != nil {
		return nil, err
	}
	scoped := full
	if len(roots) > 0 {
		scoped, err = graph.New(full.Reachable(roots))
		if err != nil {
			return nil, err
		}
	}

	report := &Report{
		RunID:     uuid.New().String(),
		Mode:      opts.Mode,
		StartedAt: started,
		Packages:  scoped.Len(),
	}

	expressions := make(map[graph.PackageID]ast.Expression, scoped.Len())
	for _, pkg := range scoped.Packages() {
		if pkg.RawLicense == nil {
			continue
		}
		outcome := a.parse(*pkg.RawLicense)
		expressions[pkg.ID] = outcome.expr
		if !outcome.strict {
			report.Malformed = append(report.Malformed, Diagnosis{
				Package:  pkg.ID,
				Raw:      *pkg.RawLicense,
				Position: outcome.position,
				Message:  outcome.message,
			})
		}
	}
	sort.Slice(report.Malformed, func(i, j int) bool {
		return report.Malformed[i].Package < report.Malformed[j].Package
	})

	if opts.Mode == ModeCheck {
		report.Verdict = a.evaluator.Evaluate(opts.Target, scoped, expressions)
	}
	report.Licenses = collectProvenance(scoped, expressions, report.Verdict)
	report.FinishedAt = time.Now().UTC()

	a.logger.Info("run finished",
		"run_id", report.RunID,
		"mode", string(report.Mode),
		"packages", report.Packages,
		"licenses", len(report.Licenses),
		"malformed", len(report.Malformed),
		"duration", report.FinishedAt.Sub(report.StartedAt),
	)
	return report, nil
}

// parse memoizes the lenient parse of a raw declaration, keeping the strict
// parse error's position and message for diagnosis.
func (a *Aggregator) parse(raw string) parseOutcome {
	if outcome, ok := a.cache.Get(raw); ok {
		if a.metrics != nil {
			a.metrics.RecordCacheHit()
		}
		return outcome
	}
	if a.metrics != nil {
		a.metrics.RecordCacheMiss()
	}
	outcome := parseOutcome{strict: true}
	expr, err := parser.Parse(raw)
	if err == nil {
		outcome.expr = expr
	} else {
		lenient, strictOK := parser.ParseLenient(raw)
		outcome.expr = lenient
		outcome.strict = strictOK
		if !strictOK {
			if perr, ok := err.(*parser.ParseError); ok {
				outcome.position = perr.Position
				outcome.message = perr.Message
			} else {
				outcome.message = err.Error()
			}
		}
	}
	a.cache.Add(raw, outcome)
	return outcome
}

// collectProvenance builds the deduplicated identifier set. With a verdict
// carrying a witness assignment, a package contributes its witness
// identifiers; otherwise (list mode, or packages outside the assignment)
// it contributes every identifier reachable in its expression.
func collectProvenance(g *graph.Graph, expressions map[graph.PackageID]ast.Expression, verdict *eval.Verdict) []Provenance {
	contributions := make(map[ast.Identifier][]graph.PackageID)
	for _, pkg := range g.Packages() {
		expr := expressions[pkg.ID]
		if expr == nil {
			continue
		}
		var ids []ast.Identifier
		if verdict != nil {
			if choice, ok := verdict.Assignment[pkg.ID]; ok {
				ids = choice.Identifiers
			}
		}
		if ids == nil {
			ids = ast.Identifiers(expr)
		}
		for _, id := range ids {
			contributions[id] = append(contributions[id], pkg.ID)
		}
	}

	result := make([]Provenance, 0, len(contributions))
	for id, pkgs := range contributions {
		sort.Slice(pkgs, func(i, j int) bool { return pkgs[i] < pkgs[j] })
		deduped := pkgs[:0]
		var last graph.PackageID
		for i, pkg := range pkgs {
			if i == 0 || pkg != last {
				deduped = append(deduped, pkg)
			}
			last = pkg
		}
		result = append(result, Provenance{Identifier: id, Packages: deduped})
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].Identifier.String() < result[j].Identifier.String()
	})
	return result
}
