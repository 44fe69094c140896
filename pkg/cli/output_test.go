package cli

import (
	"encoding/json"
	"strings"
	"testing"

	"mercator-hq/callisto/pkg/aggregate"
	"mercator-hq/callisto/pkg/eval"
	"mercator-hq/callisto/pkg/graph"
	"mercator-hq/callisto/pkg/registry"
	"mercator-hq/callisto/pkg/spdx/ast"
)

func checkReport() *aggregate.Report {
	return &aggregate.Report{
		RunID:    "run-1",
		Mode:     aggregate.ModeCheck,
		Packages: 3,
		Verdict: &eval.Verdict{
			Status:     eval.StatusIncompatible,
			TargetName: "permissive",
			Conflicts: []eval.Conflict{{
				Package:    "gplware@1.0.0",
				Expression: "GPL-3.0-only",
				Achievable: []registry.Tier{registry.TierStrongCopyleft},
			}},
			Undetermined: []eval.Undetermined{{
				Package: "mystery@0.1.0",
				Reason:  eval.ReasonMissingLicense,
			}},
		},
		Licenses: []aggregate.Provenance{
			{Identifier: ast.Ident("MIT"), Packages: []graph.PackageID{"app@1.0.0"}},
		},
	}
}

func listReport() *aggregate.Report {
	return &aggregate.Report{
		RunID:    "run-2",
		Mode:     aggregate.ModeList,
		Packages: 2,
		Licenses: []aggregate.Provenance{
			{Identifier: ast.Ident("Apache-2.0"), Packages: []graph.PackageID{"httpkit@2.0.0"}},
			{Identifier: ast.Ident("MIT"), Packages: []graph.PackageID{"app@1.0.0", "httpkit@2.0.0"}},
		},
		Malformed: []aggregate.Diagnosis{
			{Package: "broken@0.0.1", Raw: "MIT OR", Position: 6, Message: "expected a license identifier"},
		},
	}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    OutputFormat
		wantErr bool
	}{
		{"", FormatText, false},
		{"text", FormatText, false},
		{"json", FormatJSON, false},
		{"csv", FormatCSV, false},
		{"yaml", FormatText, true},
	}
	for _, tt := range tests {
		got, err := ParseFormat(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseFormat(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if !tt.wantErr && got != tt.want {
			t.Errorf("ParseFormat(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestRenderReport_TextCheck(t *testing.T) {
	var sb strings.Builder
	if err := RenderReport(&sb, FormatText, checkReport()); err != nil {
		t.Fatalf("RenderReport() failed: %v", err)
	}
	out := sb.String()
	for _, want := range []string{
		"incompatible",
		"conflict: gplware@1.0.0 (GPL-3.0-only) can only reach: strong-copyleft",
		"undetermined: mystery@0.1.0 (missing-license)",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("text output missing %q:\n%s", want, out)
		}
	}
}

func TestRenderReport_TextList(t *testing.T) {
	var sb strings.Builder
	if err := RenderReport(&sb, FormatText, listReport()); err != nil {
		t.Fatalf("RenderReport() failed: %v", err)
	}
	out := sb.String()
	if !strings.Contains(out, "MIT: app@1.0.0, httpkit@2.0.0") {
		t.Errorf("list output missing MIT provenance:\n%s", out)
	}
	if !strings.Contains(out, `malformed: broken@0.0.1 declares "MIT OR"`) {
		t.Errorf("list output missing diagnosis:\n%s", out)
	}
}

func TestRenderReport_JSON(t *testing.T) {
	var sb strings.Builder
	if err := RenderReport(&sb, FormatJSON, checkReport()); err != nil {
		t.Fatalf("RenderReport() failed: %v", err)
	}
	var decoded aggregate.Report
	if err := json.Unmarshal([]byte(sb.String()), &decoded); err != nil {
		t.Fatalf("output is not JSON: %v", err)
	}
	if decoded.RunID != "run-1" {
		t.Errorf("RunID = %q, want %q", decoded.RunID, "run-1")
	}
	// Tiers serialize as names, not ordinals.
	if !strings.Contains(sb.String(), `"strong-copyleft"`) {
		t.Errorf("JSON output does not name the tier:\n%s", sb.String())
	}
}

func TestRenderReport_CSV(t *testing.T) {
	var sb strings.Builder
	if err := RenderReport(&sb, FormatCSV, listReport()); err != nil {
		t.Fatalf("RenderReport() failed: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(sb.String()), "\n")
	if lines[0] != "license,package,version" {
		t.Errorf("header = %q", lines[0])
	}
	if len(lines) != 4 {
		t.Fatalf("len(lines) = %d, want 4:\n%s", len(lines), sb.String())
	}
	if lines[2] != "MIT,app,1.0.0" {
		t.Errorf("row = %q, want %q", lines[2], "MIT,app,1.0.0")
	}
}

func TestExitCodeFor(t *testing.T) {
	conflicted := checkReport()

	undetermined := checkReport()
	undetermined.Verdict.Status = eval.StatusUndetermined
	undetermined.Verdict.Conflicts = nil

	clean := checkReport()
	clean.Verdict.Status = eval.StatusCompatible
	clean.Verdict.Conflicts = nil
	clean.Verdict.Undetermined = nil

	tests := []struct {
		name   string
		report *aggregate.Report
		strict bool
		want   int
	}{
		{"conflicts", conflicted, false, ExitConflicts},
		{"conflicts strict", conflicted, true, ExitConflicts},
		{"undetermined lax", undetermined, false, ExitOK},
		{"undetermined strict", undetermined, true, ExitUndetermined},
		{"clean", clean, true, ExitOK},
		{"malformed strict", listReport(), true, ExitUndetermined},
		{"malformed lax", listReport(), false, ExitOK},
	}
	for _, tt := range tests {
		if got := ExitCodeFor(tt.report, tt.strict); got != tt.want {
			t.Errorf("%s: ExitCodeFor() = %d, want %d", tt.name, got, tt.want)
		}
	}
}
