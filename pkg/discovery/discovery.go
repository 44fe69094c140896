// Package discovery locates license text files on disk for attribution
// bundling.
//
// Given a package directory and a license identifier, the locator gathers
// candidate files (the declared license file, generically named files like
// LICENSE or COPYING, and files named after the license itself) and scores
// each against an embedded template of the expected license text using
// word-frequency comparison. The confidence score is advisory bundling
// metadata, not license recognition: it flags texts worth a human look, it
// does not overrule the declared expression.
package discovery

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"mercator-hq/callisto/pkg/graph"
	"mercator-hq/callisto/pkg/registry"
	"mercator-hq/callisto/pkg/spdx/ast"
)

// Confidence grades how well a found file matches the expected license text.
type Confidence int

const (
	// ConfidenceNoTemplate means no embedded template exists for the
	// license, so the text could not be compared.
	ConfidenceNoTemplate Confidence = iota

	// ConfidenceUnsure means the text diverges substantially from the
	// template.
	ConfidenceUnsure

	// ConfidenceSemiConfident means the text mostly matches the template.
	ConfidenceSemiConfident

	// ConfidenceConfident means the text matches the template closely.
	ConfidenceConfident
)

// String returns the lowercase name of the confidence grade.
func (c Confidence) String() string {
	switch c {
	case ConfidenceConfident:
		return "confident"
	case ConfidenceSemiConfident:
		return "semi-confident"
	case ConfidenceUnsure:
		return "unsure"
	default:
		return "no-template"
	}
}

// Text is one license text found on disk.
type Text struct {
	Path       string
	Content    string
	Confidence Confidence
}

// maxLicenseFileSize bounds license file reads; genuine license texts are
// a few tens of kilobytes at most.
const maxLicenseFileSize = 1 * 1024 * 1024

// Locator finds license texts in package directories.
type Locator struct {
	reg    *registry.Registry
	logger *slog.Logger
}

// NewLocator creates a locator using the registry's synonym table for
// name matching.
func NewLocator(reg *registry.Registry) *Locator {
	return &Locator{
		reg:    reg,
		logger: slog.Default().With("component", "discovery"),
	}
}

// Find returns the license texts for one identifier in a package
// directory, best match first. A package without a directory yields no
// texts and no error; unreadable candidate files are skipped with a log
// line rather than failing the bundle.
func (l *Locator) Find(pkg *graph.Package, id ast.Identifier) ([]Text, error) {
	if pkg.Dir == "" {
		return nil, nil
	}
	entries, err := os.ReadDir(pkg.Dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read package directory %q: %w", pkg.Dir, err)
	}

	template, hasTemplate := Template(id)

	var texts []Text
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if name != pkg.LicenseFile && !genericLicenseName(name) && !l.nameMatches(name, id) {
			continue
		}
		path := filepath.Join(pkg.Dir, name)
		info, err := entry.Info()
		if err != nil || info.Size() > maxLicenseFileSize {
			l.logger.Warn("skipping license candidate", "path", path, "error", err)
			continue
		}
		content, err := os.ReadFile(path)
		if err != nil {
			l.logger.Warn("skipping unreadable license candidate", "path", path, "error", err)
			continue
		}
		text := Text{Path: path, Content: string(content), Confidence: ConfidenceNoTemplate}
		if hasTemplate {
			text.Confidence = scoreAgainstTemplate(text.Content, template)
		}
		texts = append(texts, text)
	}

	sort.SliceStable(texts, func(i, j int) bool {
		if texts[i].Confidence != texts[j].Confidence {
			return texts[i].Confidence > texts[j].Confidence
		}
		return texts[i].Path < texts[j].Path
	})
	return texts, nil
}

// genericLicenseName reports whether a file name is a generic license file
// name (LICENSE, LICENCE, COPYING, with optional .md/.txt extension).
func genericLicenseName(name string) bool {
	upper := strings.ToUpper(name)
	for _, ext := range []string{"", ".MD", ".TXT"} {
		for _, base := range []string{"LICENSE", "LICENCE", "COPYING"} {
			if upper == base+ext {
				return true
			}
		}
	}
	return false
}

// nameMatches reports whether a file name names the license itself, e.g.
// LICENSE-APACHE or license.mit, matched through the registry's slugified
// synonyms.
func (l *Locator) nameMatches(name string, id ast.Identifier) bool {
	info := l.reg.Lookup(id)
	if info == nil {
		return false
	}
	slug := registry.Slugify(strings.TrimSuffix(strings.TrimSuffix(name, ".txt"), ".md"))
	if !strings.Contains(slug, "license") && !strings.Contains(slug, "licence") && !strings.Contains(slug, "copying") {
		return false
	}
	for _, synonym := range info.Synonyms {
		if strings.Contains(slug, synonym) {
			return true
		}
	}
	return false
}
