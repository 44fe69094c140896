package discovery

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"mercator-hq/callisto/pkg/graph"
	"mercator-hq/callisto/pkg/registry"
	"mercator-hq/callisto/pkg/spdx/ast"
)

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile(%s) failed: %v", name, err)
	}
}

func mitText(holder string) string {
	template, ok := Template(ast.Ident("MIT"))
	if !ok {
		panic("MIT template missing")
	}
	return strings.ReplaceAll(template, "<year> <copyright holders>", holder)
}

func TestFind_ConfidentMatch(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "LICENSE", mitText("2024 Example Authors"))

	locator := NewLocator(registry.Default())
	texts, err := locator.Find(&graph.Package{ID: "pkg", Dir: dir}, ast.Ident("MIT"))
	if err != nil {
		t.Fatalf("Find() failed: %v", err)
	}
	if len(texts) != 1 {
		t.Fatalf("len(texts) = %d, want 1", len(texts))
	}
	if texts[0].Confidence != ConfidenceConfident {
		t.Errorf("Confidence = %q, want %q", texts[0].Confidence, ConfidenceConfident)
	}
}

func TestFind_WrongLicenseTextIsUnsure(t *testing.T) {
	dir := t.TempDir()
	zlib, _ := Template(ast.Ident("Zlib"))
	writeFile(t, dir, "LICENSE", zlib)

	locator := NewLocator(registry.Default())
	texts, err := locator.Find(&graph.Package{ID: "pkg", Dir: dir}, ast.Ident("MIT"))
	if err != nil {
		t.Fatalf("Find() failed: %v", err)
	}
	if len(texts) != 1 {
		t.Fatalf("len(texts) = %d, want 1", len(texts))
	}
	if texts[0].Confidence != ConfidenceUnsure {
		t.Errorf("Confidence = %q, want %q", texts[0].Confidence, ConfidenceUnsure)
	}
}

func TestFind_NoTemplate(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "COPYING", "GNU GENERAL PUBLIC LICENSE Version 3 ...")

	locator := NewLocator(registry.Default())
	texts, err := locator.Find(&graph.Package{ID: "pkg", Dir: dir}, ast.Ident("GPL-3.0-only"))
	if err != nil {
		t.Fatalf("Find() failed: %v", err)
	}
	if len(texts) != 1 {
		t.Fatalf("len(texts) = %d, want 1", len(texts))
	}
	if texts[0].Confidence != ConfidenceNoTemplate {
		t.Errorf("Confidence = %q, want %q", texts[0].Confidence, ConfidenceNoTemplate)
	}
}

func TestFind_SynonymNamedFile(t *testing.T) {
	dir := t.TempDir()
	apache := "Apache License Version 2.0, January 2004 ..."
	writeFile(t, dir, "LICENSE-APACHE", apache)
	writeFile(t, dir, "README.md", "not a license")

	locator := NewLocator(registry.Default())
	texts, err := locator.Find(&graph.Package{ID: "pkg", Dir: dir}, ast.Ident("Apache-2.0"))
	if err != nil {
		t.Fatalf("Find() failed: %v", err)
	}
	if len(texts) != 1 {
		t.Fatalf("len(texts) = %d, want 1 (README must not match)", len(texts))
	}
	if filepath.Base(texts[0].Path) != "LICENSE-APACHE" {
		t.Errorf("Path = %q, want LICENSE-APACHE", texts[0].Path)
	}
}

func TestFind_DeclaredLicenseFile(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "legal.txt", mitText("2020 Someone"))

	locator := NewLocator(registry.Default())
	texts, err := locator.Find(&graph.Package{ID: "pkg", Dir: dir, LicenseFile: "legal.txt"}, ast.Ident("MIT"))
	if err != nil {
		t.Fatalf("Find() failed: %v", err)
	}
	if len(texts) != 1 {
		t.Fatalf("len(texts) = %d, want 1", len(texts))
	}
}

func TestFind_BestMatchFirst(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "COPYING", "completely unrelated text about nothing in particular")
	writeFile(t, dir, "LICENSE", mitText("2023 Authors"))

	locator := NewLocator(registry.Default())
	texts, err := locator.Find(&graph.Package{ID: "pkg", Dir: dir}, ast.Ident("MIT"))
	if err != nil {
		t.Fatalf("Find() failed: %v", err)
	}
	if len(texts) != 2 {
		t.Fatalf("len(texts) = %d, want 2", len(texts))
	}
	if filepath.Base(texts[0].Path) != "LICENSE" {
		t.Errorf("best match = %q, want LICENSE", texts[0].Path)
	}
}

func TestFind_NoDirectory(t *testing.T) {
	locator := NewLocator(registry.Default())
	texts, err := locator.Find(&graph.Package{ID: "pkg"}, ast.Ident("MIT"))
	if err != nil {
		t.Fatalf("Find() failed: %v", err)
	}
	if texts != nil {
		t.Errorf("texts = %v, want nil for package without directory", texts)
	}
}

func TestTemplate(t *testing.T) {
	if _, ok := Template(ast.Ident("MIT")); !ok {
		t.Error("Template(MIT) missing")
	}
	if _, ok := Template(ast.Ident("GPL-3.0-only")); ok {
		t.Error("Template(GPL-3.0-only) unexpectedly present")
	}
	// Path traversal through an identifier must not escape the template dir.
	if _, ok := Template(ast.Ident("../templates/MIT")); ok {
		t.Error("Template() followed a path traversal")
	}
}
