package cli

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"mercator-hq/callisto/pkg/aggregate"
	"mercator-hq/callisto/pkg/eval"
)

// OutputFormat represents the output format for command results.
type OutputFormat string

const (
	// FormatText is plain text output (default).
	FormatText OutputFormat = "text"
	// FormatJSON is JSON output.
	FormatJSON OutputFormat = "json"
	// FormatCSV is CSV output.
	FormatCSV OutputFormat = "csv"
)

// ParseFormat validates and converts an output format string.
func ParseFormat(s string) (OutputFormat, error) {
	switch OutputFormat(s) {
	case FormatText, "":
		return FormatText, nil
	case FormatJSON:
		return FormatJSON, nil
	case FormatCSV:
		return FormatCSV, nil
	default:
		return FormatText, fmt.Errorf("unknown output format %q (expected text, json, or csv)", s)
	}
}

// RenderReport writes a finished report to w in the requested format.
func RenderReport(w io.Writer, format OutputFormat, report *aggregate.Report) error {
	switch format {
	case FormatJSON:
		return renderJSON(w, report)
	case FormatCSV:
		return renderCSV(w, report)
	default:
		return renderText(w, report)
	}
}

func renderJSON(w io.Writer, report *aggregate.Report) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(report)
}

// renderCSV writes one row per license identifier and contributing
// package. The flat shape feeds spreadsheet review of large trees.
func renderCSV(w io.Writer, report *aggregate.Report) error {
	csvWriter := csv.NewWriter(w)
	defer csvWriter.Flush()

	if err := csvWriter.Write([]string{"license", "package", "version"}); err != nil {
		return err
	}
	for _, prov := range report.Licenses {
		for _, pkgID := range prov.Packages {
			row := []string{prov.Identifier.String(), pkgID.Name(), pkgID.Version()}
			if err := csvWriter.Write(row); err != nil {
				return err
			}
		}
	}
	csvWriter.Flush()
	return csvWriter.Error()
}

func renderText(w io.Writer, report *aggregate.Report) error {
	if report.Mode == aggregate.ModeList || report.Verdict == nil {
		return renderTextList(w, report)
	}
	return renderTextCheck(w, report)
}

func renderTextList(w io.Writer, report *aggregate.Report) error {
	for _, prov := range report.Licenses {
		names := make([]string, len(prov.Packages))
		for i, pkgID := range prov.Packages {
			names[i] = string(pkgID)
		}
		if _, err := fmt.Fprintf(w, "%s: %s\n", prov.Identifier, strings.Join(names, ", ")); err != nil {
			return err
		}
	}
	return renderDiagnoses(w, report)
}

func renderTextCheck(w io.Writer, report *aggregate.Report) error {
	verdict := report.Verdict

	switch verdict.Status {
	case eval.StatusCompatible:
		if _, err := fmt.Fprintf(w, "All %d packages are compatible with a %s project.\n",
			report.Packages, verdict.TargetName); err != nil {
			return err
		}
	default:
		if _, err := fmt.Fprintf(w, "Checked %d packages against a %s project: %s.\n",
			report.Packages, verdict.TargetName, verdict.Status); err != nil {
			return err
		}
	}

	for _, conflict := range verdict.Conflicts {
		achievable := "none"
		if len(conflict.Achievable) > 0 {
			names := make([]string, len(conflict.Achievable))
			for i, tier := range conflict.Achievable {
				names[i] = tier.String()
			}
			achievable = strings.Join(names, ", ")
		}
		if _, err := fmt.Fprintf(w, "  conflict: %s (%s) can only reach: %s\n",
			conflict.Package, conflict.Expression, achievable); err != nil {
			return err
		}
	}

	for _, und := range verdict.Undetermined {
		if _, err := fmt.Fprintf(w, "  undetermined: %s (%s)\n", und.Package, und.Reason); err != nil {
			return err
		}
	}

	if verdict.Assignment != nil {
		if _, err := fmt.Fprintln(w, "Licenses in force:"); err != nil {
			return err
		}
		for _, prov := range report.Licenses {
			if _, err := fmt.Fprintf(w, "  %s (%d packages)\n", prov.Identifier, len(prov.Packages)); err != nil {
				return err
			}
		}
	}

	return renderDiagnoses(w, report)
}

func renderDiagnoses(w io.Writer, report *aggregate.Report) error {
	for _, diag := range report.Malformed {
		if _, err := fmt.Fprintf(w, "  malformed: %s declares %q: %s (column %d)\n",
			diag.Package, diag.Raw, diag.Message, diag.Position); err != nil {
			return err
		}
	}
	return nil
}

// ExitCodeFor maps a finished report to the process exit code. Conflicts
// outrank undetermined packages; undetermined packages only fail the run
// in strict mode.
func ExitCodeFor(report *aggregate.Report, strict bool) int {
	if report.HasConflicts() {
		return ExitConflicts
	}
	if strict && (report.HasUndetermined() || len(report.Malformed) > 0) {
		return ExitUndetermined
	}
	return ExitOK
}
