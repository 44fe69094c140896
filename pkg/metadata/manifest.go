// Package metadata supplies dependency graphs to the aggregator.
//
// The core never reads package metadata itself; sources in this package do
// all I/O up front and hand the aggregator a fully materialized package
// list. ManifestSource reads the callisto manifest, a YAML document listing
// every package in the dependency graph with its raw license declaration
// and dependency edges.
package metadata

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"mercator-hq/callisto/pkg/graph"
)

// maxManifestSize bounds manifest reads. Dependency graphs are small; a
// larger file is a sign of the wrong file being pointed at.
const maxManifestSize = 16 * 1024 * 1024

// manifestFile mirrors the manifest YAML schema.
type manifestFile struct {
	Roots    []string `yaml:"roots"`
	Packages []struct {
		Name         string   `yaml:"name"`
		Version      string   `yaml:"version"`
		License      *string  `yaml:"license"`
		LicenseFile  string   `yaml:"license-file"`
		Dir          string   `yaml:"dir"`
		Dependencies []string `yaml:"dependencies"`
	} `yaml:"packages"`
}

// ManifestSource reads the dependency graph from a YAML manifest file.
type ManifestSource struct {
	// Path is the manifest file path.
	Path string
}

// NewManifestSource creates a source reading from the given manifest path.
func NewManifestSource(path string) *ManifestSource {
	return &ManifestSource{Path: path}
}

// Packages implements the aggregator's Source interface. A `license: null`
// or absent license key means the package declares no license; it is
// reported as missing, never defaulted. Package directories are resolved
// relative to the manifest's own directory.
func (s *ManifestSource) Packages(ctx context.Context) ([]*graph.Package, []graph.PackageID, error) {
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}

	info, err := os.Stat(s.Path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to access manifest %q: %w", s.Path, err)
	}
	if info.Size() > maxManifestSize {
		return nil, nil, fmt.Errorf("manifest %q is %d bytes, exceeding the %d byte limit", s.Path, info.Size(), maxManifestSize)
	}

	data, err := os.ReadFile(s.Path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read manifest %q: %w", s.Path, err)
	}

	var file manifestFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, nil, fmt.Errorf("failed to parse manifest %q: %w", s.Path, err)
	}
	if len(file.Packages) == 0 {
		return nil, nil, fmt.Errorf("manifest %q lists no packages", s.Path)
	}

	base := filepath.Dir(s.Path)
	packages := make([]*graph.Package, 0, len(file.Packages))
	for i, entry := range file.Packages {
		if entry.Name == "" {
			return nil, nil, fmt.Errorf("manifest %q: package %d has no name", s.Path, i)
		}
		pkg := &graph.Package{
			ID:          graph.MakeID(entry.Name, entry.Version),
			RawLicense:  entry.License,
			LicenseFile: entry.LicenseFile,
		}
		if entry.Dir != "" {
			pkg.Dir = entry.Dir
			if !filepath.IsAbs(pkg.Dir) {
				pkg.Dir = filepath.Join(base, pkg.Dir)
			}
		}
		for _, dep := range entry.Dependencies {
			pkg.Dependencies = append(pkg.Dependencies, graph.PackageID(dep))
		}
		packages = append(packages, pkg)
	}

	roots := make([]graph.PackageID, 0, len(file.Roots))
	for _, root := range file.Roots {
		roots = append(roots, graph.PackageID(root))
	}
	return packages, roots, nil
}
