// Package graph models the dependency graph a compliance run operates on.
//
// The graph is built fresh per invocation from the metadata source, validated
// once, and read-only afterwards. A build dependency graph is acyclic by
// construction; a reported cycle is a fatal input error (see CycleError),
// never a modeling case.
package graph

import (
	"fmt"
	"sort"
	"strings"
)

// PackageID identifies a package as "name@version". Version may be empty for
// metadata sources that do not track versions, in which case the ID is just
// the name.
type PackageID string

// MakeID builds a PackageID from a name and an optional version.
func MakeID(name, version string) PackageID {
	if version == "" {
		return PackageID(name)
	}
	return PackageID(name + "@" + version)
}

// Name returns the name component of the ID.
func (id PackageID) Name() string {
	if i := strings.LastIndex(string(id), "@"); i >= 0 {
		return string(id)[:i]
	}
	return string(id)
}

// Version returns the version component of the ID, or "" when absent.
func (id PackageID) Version() string {
	if i := strings.LastIndex(string(id), "@"); i >= 0 {
		return string(id)[i+1:]
	}
	return ""
}

// Package is a node in the dependency graph as reported by the metadata
// source. RawLicense nil means "no declared license", a distinguished
// failure state, never silently defaulted.
type Package struct {
	// ID identifies the package.
	ID PackageID

	// RawLicense is the raw license declaration string, or nil when the
	// package declares no license.
	RawLicense *string

	// LicenseFile is the path of a declared license file, if any, relative
	// to Dir.
	LicenseFile string

	// Dir is the package's source directory, used by license text discovery.
	Dir string

	// Dependencies lists the IDs of this package's direct dependencies.
	Dependencies []PackageID
}

// Graph is a validated directed acyclic graph over packages.
type Graph struct {
	packages map[PackageID]*Package
	order    []PackageID // insertion order, for deterministic iteration
}

// New builds and validates a graph from a package list. It returns an error
// for duplicate IDs, dependency edges to packages not in the list, or cycles.
func New(packages []*Package) (*Graph, error) {
	g := &Graph{packages: make(map[PackageID]*Package, len(packages))}
	for _, pkg := range packages {
		if pkg.ID == "" {
			return nil, &Error{Message: "package with empty id"}
		}
		if _, dup := g.packages[pkg.ID]; dup {
			return nil, &Error{Message: fmt.Sprintf("duplicate package %s", pkg.ID)}
		}
		g.packages[pkg.ID] = pkg
		g.order = append(g.order, pkg.ID)
	}
	for _, pkg := range packages {
		for _, dep := range pkg.Dependencies {
			if _, ok := g.packages[dep]; !ok {
				return nil, &Error{Message: fmt.Sprintf("package %s depends on %s, which is not in the graph", pkg.ID, dep)}
			}
		}
	}
	if cycle := g.findCycle(); cycle != nil {
		return nil, &CycleError{Cycle: cycle}
	}
	return g, nil
}

// Get returns the package with the given ID, or nil when absent.
func (g *Graph) Get(id PackageID) *Package {
	return g.packages[id]
}

// Len returns the number of packages in the graph.
func (g *Graph) Len() int {
	return len(g.packages)
}

// Packages returns every package in insertion order.
func (g *Graph) Packages() []*Package {
	result := make([]*Package, 0, len(g.order))
	for _, id := range g.order {
		result = append(result, g.packages[id])
	}
	return result
}

// IDs returns every package ID, sorted.
func (g *Graph) IDs() []PackageID {
	ids := make([]PackageID, 0, len(g.packages))
	for id := range g.packages {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// Reachable returns the set of packages reachable from the given roots,
// roots included, in breadth-first order.
func (g *Graph) Reachable(roots []PackageID) []*Package {
	var result []*Package
	seen := make(map[PackageID]bool, len(g.packages))
	queue := append([]PackageID(nil), roots...)
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		if seen[id] {
			continue
		}
		seen[id] = true
		pkg := g.packages[id]
		if pkg == nil {
			continue
		}
		result = append(result, pkg)
		queue = append(queue, pkg.Dependencies...)
	}
	return result
}

// findCycle returns a dependency cycle as a path of IDs (first and last
// entries equal), or nil when the graph is acyclic. Iteration over sorted
// IDs keeps the reported cycle deterministic.
func (g *Graph) findCycle() []PackageID {
	const (
		unvisited = 0
		inStack   = 1
		done      = 2
	)
	state := make(map[PackageID]int, len(g.packages))
	var stack []PackageID

	var visit func(id PackageID) []PackageID
	visit = func(id PackageID) []PackageID {
		state[id] = inStack
		stack = append(stack, id)
		pkg := g.packages[id]
		deps := append([]PackageID(nil), pkg.Dependencies...)
		sort.Slice(deps, func(i, j int) bool { return deps[i] < deps[j] })
		for _, dep := range deps {
			switch state[dep] {
			case unvisited:
				if cycle := visit(dep); cycle != nil {
					return cycle
				}
			case inStack:
				for i, entry := range stack {
					if entry == dep {
						return append(append([]PackageID(nil), stack[i:]...), dep)
					}
				}
			}
		}
		stack = stack[:len(stack)-1]
		state[id] = done
		return nil
	}

	for _, id := range g.IDs() {
		if state[id] == unvisited {
			if cycle := visit(id); cycle != nil {
				return cycle
			}
		}
	}
	return nil
}
