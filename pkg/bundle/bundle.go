// Package bundle assembles third-party license attributions for
// distribution alongside a built artifact.
//
// The bundler walks the packages named in a finished report, locates each
// license text on disk (falling back to the embedded reference template
// when a package ships none), and writes one of three variants: the full
// inline document, a name-only summary, or a split layout with one text
// file per distinct license. Missing and low-confidence texts are counted
// and reported, never silently dropped.
package bundle

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"mercator-hq/callisto/pkg/aggregate"
	"mercator-hq/callisto/pkg/discovery"
	"mercator-hq/callisto/pkg/graph"
	"mercator-hq/callisto/pkg/spdx/ast"
)

// Variant controls how the attribution bundle is written.
type Variant string

const (
	// VariantInline writes names and full license texts to one document.
	VariantInline Variant = "inline"

	// VariantNameOnly writes only the license name per package.
	VariantNameOnly Variant = "name-only"

	// VariantSplit writes a summary document plus one text file per
	// distinct license into a directory.
	VariantSplit Variant = "split"
)

// Summary counts the quality issues encountered while bundling.
type Summary struct {
	// Packages is the number of packages covered.
	Packages int

	// MissingTexts counts identifiers with neither a discovered file nor
	// an embedded template.
	MissingTexts int

	// LowConfidence counts discovered texts that scored below
	// semi-confident against their template.
	LowConfidence int
}

// entry is one package's resolved attribution: the identifiers in force
// and the best text found per identifier.
type entry struct {
	pkg   *graph.Package
	ids   []ast.Identifier
	texts map[ast.Identifier]*discovery.Text
}

// Bundler writes attribution bundles.
type Bundler struct {
	locator *discovery.Locator
	logger  *slog.Logger
}

// New creates a bundler using the given locator for on-disk texts.
func New(locator *discovery.Locator) *Bundler {
	return &Bundler{
		locator: locator,
		logger:  slog.Default().With("component", "bundle"),
	}
}

// Write writes the attribution bundle for a finished report to w. The
// packages slice must cover every package the report names; root packages
// are attributed like any other. splitDir is required for VariantSplit and
// ignored otherwise.
func (b *Bundler) Write(w io.Writer, variant Variant, report *aggregate.Report, packages []*graph.Package, splitDir string) (*Summary, error) {
	entries, summary := b.resolve(report, packages)
	switch variant {
	case VariantInline, "":
		return summary, b.writeInline(w, entries)
	case VariantNameOnly:
		return summary, b.writeNameOnly(w, entries)
	case VariantSplit:
		if splitDir == "" {
			return nil, fmt.Errorf("split bundle requires a directory")
		}
		return summary, b.writeSplit(w, entries, splitDir)
	default:
		return nil, fmt.Errorf("unknown bundle variant %q", variant)
	}
}

// resolve pairs every package in the report with its identifiers and the
// best available text per identifier.
func (b *Bundler) resolve(report *aggregate.Report, packages []*graph.Package) ([]*entry, *Summary) {
	byPackage := make(map[graph.PackageID][]ast.Identifier)
	for _, prov := range report.Licenses {
		for _, id := range prov.Packages {
			byPackage[id] = append(byPackage[id], prov.Identifier)
		}
	}

	index := make(map[graph.PackageID]*graph.Package, len(packages))
	for _, pkg := range packages {
		index[pkg.ID] = pkg
	}

	summary := &Summary{}
	var entries []*entry
	for pkgID, ids := range byPackage {
		pkg := index[pkgID]
		if pkg == nil {
			continue
		}
		sort.Slice(ids, func(i, j int) bool { return ids[i].String() < ids[j].String() })
		e := &entry{pkg: pkg, ids: ids, texts: make(map[ast.Identifier]*discovery.Text)}
		for _, id := range ids {
			e.texts[id] = b.bestText(pkg, id, summary)
		}
		entries = append(entries, e)
		summary.Packages++
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].pkg.ID.Name() != entries[j].pkg.ID.Name() {
			return entries[i].pkg.ID.Name() < entries[j].pkg.ID.Name()
		}
		return entries[i].pkg.ID.Version() < entries[j].pkg.ID.Version()
	})
	return entries, summary
}

// bestText returns the best text for one identifier in one package: the
// top-ranked discovered file, else the embedded template, else nil.
func (b *Bundler) bestText(pkg *graph.Package, id ast.Identifier, summary *Summary) *discovery.Text {
	texts, err := b.locator.Find(pkg, id)
	if err != nil {
		b.logger.Warn("license text discovery failed", "package", string(pkg.ID), "license", id.String(), "error", err)
	}
	if len(texts) > 0 {
		best := texts[0]
		if best.Confidence == discovery.ConfidenceUnsure {
			summary.LowConfidence++
			b.logger.Warn("license text matches its template poorly",
				"package", string(pkg.ID), "license", id.String(), "path", best.Path)
		}
		return &best
	}
	if template, ok := discovery.Template(id); ok {
		return &discovery.Text{Content: template, Confidence: discovery.ConfidenceNoTemplate}
	}
	summary.MissingTexts++
	b.logger.Warn("no license text found", "package", string(pkg.ID), "license", id.String())
	return nil
}

func (b *Bundler) writeInline(w io.Writer, entries []*entry) error {
	if _, err := fmt.Fprintf(w, "This distribution uses third party libraries under their own license terms:\n\n"); err != nil {
		return err
	}
	for _, e := range entries {
		for _, id := range e.ids {
			if _, err := fmt.Fprintf(w, " * %s %s under the terms of %s:\n\n", e.pkg.ID.Name(), e.pkg.ID.Version(), id); err != nil {
				return err
			}
			text := e.texts[id]
			if text == nil {
				if _, err := fmt.Fprintf(w, "    Missing %s license text\n\n", id); err != nil {
					return err
				}
				continue
			}
			for _, line := range strings.Split(strings.TrimRight(text.Content, "\n"), "\n") {
				if _, err := fmt.Fprintf(w, "    %s\n", line); err != nil {
					return err
				}
			}
			if _, err := fmt.Fprintln(w); err != nil {
				return err
			}
		}
	}
	return nil
}

func (b *Bundler) writeNameOnly(w io.Writer, entries []*entry) error {
	for _, e := range entries {
		names := make([]string, len(e.ids))
		for i, id := range e.ids {
			names[i] = id.String()
		}
		if _, err := fmt.Fprintf(w, " * %s %s under the terms of %s\n", e.pkg.ID.Name(), e.pkg.ID.Version(), strings.Join(names, ", ")); err != nil {
			return err
		}
	}
	return nil
}

// writeSplit writes the name-only summary to w and one text file per
// distinct license into dir, named after the slugified identifier.
func (b *Bundler) writeSplit(w io.Writer, entries []*entry, dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create bundle directory %q: %w", dir, err)
	}
	if err := b.writeNameOnly(w, entries); err != nil {
		return err
	}
	written := make(map[ast.Identifier]bool)
	for _, e := range entries {
		for _, id := range e.ids {
			text := e.texts[id]
			if text == nil || written[id] {
				continue
			}
			written[id] = true
			path := filepath.Join(dir, slugFileName(id))
			if err := os.WriteFile(path, []byte(text.Content), 0o644); err != nil {
				return fmt.Errorf("failed to write license text %q: %w", path, err)
			}
		}
	}
	return nil
}

func slugFileName(id ast.Identifier) string {
	name := id.ID
	if id.Exception != "" {
		name += "-with-" + id.Exception
	}
	var sb strings.Builder
	for _, r := range name {
		switch {
		case (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '-' || r == '.':
			sb.WriteRune(r)
		default:
			sb.WriteByte('-')
		}
	}
	return sb.String() + ".txt"
}
