package bundle

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"mercator-hq/callisto/pkg/aggregate"
	"mercator-hq/callisto/pkg/discovery"
	"mercator-hq/callisto/pkg/graph"
	"mercator-hq/callisto/pkg/registry"
	"mercator-hq/callisto/pkg/spdx/ast"
)

type staticSource struct {
	packages []*graph.Package
}

func (s *staticSource) Packages(ctx context.Context) ([]*graph.Package, []graph.PackageID, error) {
	return s.packages, nil, nil
}

func strptr(s string) *string { return &s }

// fixture runs a list-mode aggregation over two packages, one with an MIT
// text on disk and one without any directory.
func fixture(t *testing.T) (*aggregate.Report, []*graph.Package) {
	t.Helper()
	dir := t.TempDir()
	template, _ := discovery.Template(ast.Ident("MIT"))
	text := strings.ReplaceAll(template, "<year> <copyright holders>", "2022 Somebody")
	if err := os.WriteFile(filepath.Join(dir, "LICENSE"), []byte(text), 0o644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	packages := []*graph.Package{
		{ID: "alpha@1.0.0", RawLicense: strptr("MIT"), Dir: dir},
		{ID: "beta@2.0.0", RawLicense: strptr("BSD-3-Clause")},
	}
	agg, err := aggregate.New(registry.Default(), nil)
	if err != nil {
		t.Fatalf("aggregate.New() failed: %v", err)
	}
	report, err := agg.Run(context.Background(), &staticSource{packages: packages}, aggregate.Options{Mode: aggregate.ModeList})
	if err != nil {
		t.Fatalf("Run() failed: %v", err)
	}
	return report, packages
}

func TestWrite_Inline(t *testing.T) {
	report, packages := fixture(t)
	bundler := New(discovery.NewLocator(registry.Default()))

	var sb strings.Builder
	summary, err := bundler.Write(&sb, VariantInline, report, packages, "")
	if err != nil {
		t.Fatalf("Write() failed: %v", err)
	}
	out := sb.String()
	if !strings.Contains(out, " * alpha 1.0.0 under the terms of MIT:") {
		t.Errorf("inline output missing alpha header:\n%s", out)
	}
	if !strings.Contains(out, "Permission is hereby granted") {
		t.Errorf("inline output missing MIT text:\n%s", out)
	}
	// alpha must come before beta regardless of map iteration order.
	if strings.Index(out, "alpha") > strings.Index(out, "beta") {
		t.Error("packages not sorted by name")
	}
	if summary.Packages != 2 {
		t.Errorf("Summary.Packages = %d, want 2", summary.Packages)
	}
	// beta has no directory, but BSD-3-Clause has an embedded template.
	if summary.MissingTexts != 0 {
		t.Errorf("Summary.MissingTexts = %d, want 0", summary.MissingTexts)
	}
}

func TestWrite_NameOnly(t *testing.T) {
	report, packages := fixture(t)
	bundler := New(discovery.NewLocator(registry.Default()))

	var sb strings.Builder
	if _, err := bundler.Write(&sb, VariantNameOnly, report, packages, ""); err != nil {
		t.Fatalf("Write() failed: %v", err)
	}
	out := sb.String()
	if strings.Contains(out, "Permission is hereby granted") {
		t.Error("name-only output contains license text")
	}
	if !strings.Contains(out, " * beta 2.0.0 under the terms of BSD-3-Clause") {
		t.Errorf("name-only output missing beta line:\n%s", out)
	}
}

func TestWrite_Split(t *testing.T) {
	report, packages := fixture(t)
	bundler := New(discovery.NewLocator(registry.Default()))

	outDir := filepath.Join(t.TempDir(), "licenses")
	var sb strings.Builder
	if _, err := bundler.Write(&sb, VariantSplit, report, packages, outDir); err != nil {
		t.Fatalf("Write() failed: %v", err)
	}
	for _, name := range []string{"MIT.txt", "BSD-3-Clause.txt"} {
		if _, err := os.Stat(filepath.Join(outDir, name)); err != nil {
			t.Errorf("split bundle missing %s: %v", name, err)
		}
	}
}

func TestWrite_SplitRequiresDir(t *testing.T) {
	report, packages := fixture(t)
	bundler := New(discovery.NewLocator(registry.Default()))
	var sb strings.Builder
	if _, err := bundler.Write(&sb, VariantSplit, report, packages, ""); err == nil {
		t.Fatal("Write() succeeded without a split directory")
	}
}

func TestWrite_MissingText(t *testing.T) {
	// A license with neither an on-disk text nor an embedded template is
	// reported, not dropped.
	packages := []*graph.Package{
		{ID: "gamma@0.1.0", RawLicense: strptr("GPL-3.0-only")},
	}
	agg, err := aggregate.New(registry.Default(), nil)
	if err != nil {
		t.Fatalf("aggregate.New() failed: %v", err)
	}
	report, err := agg.Run(context.Background(), &staticSource{packages: packages}, aggregate.Options{Mode: aggregate.ModeList})
	if err != nil {
		t.Fatalf("Run() failed: %v", err)
	}

	bundler := New(discovery.NewLocator(registry.Default()))
	var sb strings.Builder
	summary, err := bundler.Write(&sb, VariantInline, report, packages, "")
	if err != nil {
		t.Fatalf("Write() failed: %v", err)
	}
	if summary.MissingTexts != 1 {
		t.Errorf("Summary.MissingTexts = %d, want 1", summary.MissingTexts)
	}
	if !strings.Contains(sb.String(), "Missing GPL-3.0-only license text") {
		t.Errorf("inline output does not flag the missing text:\n%s", sb.String())
	}
}
