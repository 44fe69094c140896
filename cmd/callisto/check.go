package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"mercator-hq/callisto/pkg/aggregate"
	"mercator-hq/callisto/pkg/cli"
	"mercator-hq/callisto/pkg/eval"
	"mercator-hq/callisto/pkg/history"
	"mercator-hq/callisto/pkg/metadata"
	"mercator-hq/callisto/pkg/registry"
)

var checkFlags struct {
	manifest string
	target   string
	strict   bool
	format   string
	workers  int
	record   bool
}

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Check dependency licenses against a compatibility tier",
	Long: `Check every package in the dependency graph against a target tier.

The target tier describes the license of the project that hosts the
dependencies. A package passes when some choice of its OR branches
yields obligations the target can carry; the verdict names the exact
choice. Packages with missing or unrecognized licenses are reported as
undetermined and never silently pass.

Exit codes:
  0  every package is compatible
  1  at least one package is incompatible
  2  undetermined packages remain and --strict is set
  3  the run itself failed

Examples:
  # Check against a permissive (MIT/BSD/Apache) project
  callisto check --manifest deps.yaml --target permissive

  # Fail CI on anything that cannot be classified
  callisto check --target weak-copyleft --strict

  # Machine-readable verdict
  callisto check --target permissive --format json

  # Archive the run for later comparison
  callisto check --target permissive --record`,
	RunE: runCheck,
}

func init() {
	rootCmd.AddCommand(checkCmd)

	checkCmd.Flags().StringVarP(&checkFlags.manifest, "manifest", "m", "", "dependency manifest path")
	checkCmd.Flags().StringVarP(&checkFlags.target, "target", "t", "", "target tier: public-domain, permissive, weak-copyleft, strong-copyleft, network-copyleft, proprietary")
	checkCmd.Flags().BoolVar(&checkFlags.strict, "strict", false, "fail when any package is undetermined or malformed")
	checkCmd.Flags().StringVarP(&checkFlags.format, "format", "o", "text", "output format: text, json, csv")
	checkCmd.Flags().IntVar(&checkFlags.workers, "workers", 0, "concurrent evaluation workers (default: number of CPUs)")
	checkCmd.Flags().BoolVar(&checkFlags.record, "record", false, "archive the run in the history database")
}

func runCheck(cmd *cobra.Command, args []string) error {
	logAdvisory()

	format, err := cli.ParseFormat(checkFlags.format)
	if err != nil {
		return err
	}

	manifest := checkFlags.manifest
	if manifest == "" {
		manifest = cfg.Manifest.Path
	}
	targetName := checkFlags.target
	if targetName == "" {
		targetName = cfg.Check.Target
	}
	target, err := registry.ParseTier(targetName)
	if err != nil {
		return err
	}
	strict := checkFlags.strict || cfg.Check.Strict

	workers := checkFlags.workers
	if workers == 0 {
		workers = cfg.Check.Workers
	}

	ctx := cli.SetupSignalHandler()
	report, err := runAggregation(ctx, manifest, aggregate.Options{Mode: aggregate.ModeCheck, Target: target}, workers, nil)
	if err != nil {
		return err
	}

	if checkFlags.record || cfg.History.Enabled {
		if err := recordRun(ctx, report); err != nil {
			return err
		}
	}

	if err := cli.RenderReport(os.Stdout, format, report); err != nil {
		return err
	}

	if code := cli.ExitCodeFor(report, strict); code != cli.ExitOK {
		return cli.NewExitError(code, nil)
	}
	return nil
}

// runAggregation wires a manifest source to an aggregator configured
// from the effective config plus command overrides. metrics may be nil.
func runAggregation(ctx context.Context, manifest string, opts aggregate.Options, workers int, metrics aggregate.CacheMetrics) (*aggregate.Report, error) {
	aggCfg := &aggregate.Config{
		ParseCacheSize: cfg.Check.ParseCacheSize,
		Evaluator:      &eval.Config{Workers: workers},
		Metrics:        metrics,
	}
	if workers <= 0 {
		aggCfg.Evaluator = nil
	}
	agg, err := aggregate.New(registry.Default(), aggCfg)
	if err != nil {
		return nil, err
	}
	return agg.Run(ctx, metadata.NewManifestSource(manifest), opts)
}

// recordRun archives a finished report in the history database.
func recordRun(ctx context.Context, report *aggregate.Report) error {
	histCfg := history.DefaultConfig()
	histCfg.Path = cfg.History.Path
	store, err := history.Open(histCfg)
	if err != nil {
		return fmt.Errorf("failed to open history store: %w", err)
	}
	defer store.Close()
	return store.Record(ctx, report)
}
