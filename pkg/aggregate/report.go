package aggregate

import (
	"time"

	"mercator-hq/callisto/pkg/eval"
	"mercator-hq/callisto/pkg/graph"
	"mercator-hq/callisto/pkg/spdx/ast"
)

// Mode selects how the aggregator resolves the identifier set.
type Mode string

const (
	// ModeCheck evaluates the graph against a target tier and collects
	// only the witness identifiers actually in force.
	ModeCheck Mode = "check"

	// ModeList skips the compatibility verdict and collects every
	// identifier reachable in any expression regardless of OR choice.
	// Deliberately more conservative, showing everything that might apply.
	ModeList Mode = "list"
)

// Diagnosis records a malformed license declaration attached to one
// package. A malformed dependency never aborts the run; the package flows
// through as a single opaque identifier and is reported here.
type Diagnosis struct {
	Package  graph.PackageID `json:"package"`
	Raw      string          `json:"raw"`
	Position int             `json:"position"`
	Message  string          `json:"message"`
}

// Provenance maps one license identifier to the packages that contributed it.
type Provenance struct {
	Identifier ast.Identifier    `json:"identifier"`
	Packages   []graph.PackageID `json:"packages"`
}

// Report is the full result of one aggregator run. It is a plain value;
// rendering is the calling surface's concern.
type Report struct {
	// RunID uniquely identifies this run.
	RunID string `json:"run_id"`

	// Mode is the resolution mode the run used.
	Mode Mode `json:"mode"`

	// StartedAt and FinishedAt bound the run.
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`

	// Packages is the number of packages considered (roots included).
	Packages int `json:"packages"`

	// Verdict is the compatibility verdict. Nil in list mode.
	Verdict *eval.Verdict `json:"verdict,omitempty"`

	// Licenses is the deduplicated identifier set with provenance, sorted
	// by identifier.
	Licenses []Provenance `json:"licenses"`

	// Malformed lists per-package parse diagnoses.
	Malformed []Diagnosis `json:"malformed,omitempty"`
}

// HasConflicts reports whether the verdict found incompatible packages.
func (r *Report) HasConflicts() bool {
	return r.Verdict != nil && len(r.Verdict.Conflicts) > 0
}

// HasUndetermined reports whether any package's licensing could not be
// established.
func (r *Report) HasUndetermined() bool {
	return r.Verdict != nil && len(r.Verdict.Undetermined) > 0
}
