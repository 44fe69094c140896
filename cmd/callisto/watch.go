package main

import (
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"

	"mercator-hq/callisto/pkg/aggregate"
	"mercator-hq/callisto/pkg/cli"
	"mercator-hq/callisto/pkg/registry"
	"mercator-hq/callisto/pkg/telemetry/metrics"
	"mercator-hq/callisto/pkg/watch"
)

var watchFlags struct {
	manifest string
	target   string
	strict   bool
	schedule string
	metrics  bool
}

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Re-check licenses whenever the manifest changes",
	Long: `Watch the dependency manifest and re-run the compatibility check on
every change.

An initial check runs immediately. After that, file changes trigger a
debounced re-check, and an optional cron schedule re-checks periodically
even without file activity. Outcomes go to the log; with metrics enabled
a Prometheus endpoint exposes the latest verdict for scraping.

The process stays alive until interrupted. Its exit code reflects the
last completed check.

Examples:
  callisto watch --manifest deps.yaml --target permissive
  callisto watch --target permissive --schedule "0 3 * * *"
  callisto watch --target permissive --metrics`,
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)

	watchCmd.Flags().StringVarP(&watchFlags.manifest, "manifest", "m", "", "dependency manifest path")
	watchCmd.Flags().StringVarP(&watchFlags.target, "target", "t", "", "target tier")
	watchCmd.Flags().BoolVar(&watchFlags.strict, "strict", false, "count undetermined packages as failures")
	watchCmd.Flags().StringVar(&watchFlags.schedule, "schedule", "", "cron expression for periodic re-checks")
	watchCmd.Flags().BoolVar(&watchFlags.metrics, "metrics", false, "serve Prometheus metrics")
}

func runWatch(cmd *cobra.Command, args []string) error {
	logAdvisory()
	logger := slog.Default().With("component", "watch.cmd")

	manifest := watchFlags.manifest
	if manifest == "" {
		manifest = cfg.Manifest.Path
	}
	targetName := watchFlags.target
	if targetName == "" {
		targetName = cfg.Check.Target
	}
	target, err := registry.ParseTier(targetName)
	if err != nil {
		return err
	}
	strict := watchFlags.strict || cfg.Check.Strict
	schedule := watchFlags.schedule
	if schedule == "" {
		schedule = cfg.Watch.Schedule
	}

	var collector *metrics.Collector
	if watchFlags.metrics || cfg.Telemetry.Metrics.Enabled {
		collector = metrics.NewCollector(nil, nil)
		mux := http.NewServeMux()
		mux.Handle(cfg.Telemetry.Metrics.Path, collector.Handler())
		server := &http.Server{
			Addr:              cfg.Telemetry.Metrics.ListenAddress,
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
		}
		go func() {
			logger.Info("metrics listener started", "address", server.Addr, "path", cfg.Telemetry.Metrics.Path)
			if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				logger.Error("metrics listener failed", "error", err)
			}
		}()
		defer server.Close()
	}

	ctx := cli.SetupSignalHandler()

	// A nil *Collector must stay a nil interface for the aggregator's
	// nil check to work.
	var cacheMetrics aggregate.CacheMetrics
	if collector != nil {
		cacheMetrics = collector
	}

	// lastCode carries the most recent check outcome to the process exit.
	lastCode := cli.ExitOK
	runOnce := func(trigger string) error {
		report, err := runAggregation(ctx, manifest, aggregate.Options{Mode: aggregate.ModeCheck, Target: target}, cfg.Check.Workers, cacheMetrics)
		if err != nil {
			logger.Error("check failed", "trigger", trigger, "error", err)
			lastCode = cli.ExitFatal
			return err
		}

		if cfg.History.Enabled {
			if err := recordRun(ctx, report); err != nil {
				logger.Warn("failed to archive run", "error", err)
			}
		}

		status := ""
		conflicts, undetermined := 0, 0
		if report.Verdict != nil {
			status = string(report.Verdict.Status)
			conflicts = len(report.Verdict.Conflicts)
			undetermined = len(report.Verdict.Undetermined)
		}
		if collector != nil {
			collector.RecordRecheck(trigger)
			collector.RecordRun(string(report.Mode), status,
				report.FinishedAt.Sub(report.StartedAt),
				report.Packages, conflicts, undetermined, len(report.Malformed))
		}

		lastCode = cli.ExitCodeFor(report, strict)
		logger.Info("check finished",
			"trigger", trigger,
			"status", status,
			"conflicts", conflicts,
			"undetermined", undetermined,
			"exit_code", lastCode,
		)
		if lastCode != cli.ExitOK {
			_ = cli.RenderReport(os.Stderr, cli.FormatText, report)
		}
		return nil
	}

	if err := runOnce("startup"); err != nil {
		return err
	}

	watcher, err := watch.NewWatcher(&watch.WatcherConfig{
		Path:             manifest,
		DebounceInterval: cfg.Watch.DebounceInterval,
	})
	if err != nil {
		return err
	}

	scheduler := watch.NewScheduler(schedule)
	if err := scheduler.Start(ctx, func() error { return runOnce("schedule") }); err != nil {
		return err
	}
	defer scheduler.Stop()

	if err := watcher.Watch(ctx, func() error { return runOnce("fsevent") }); err != nil {
		return err
	}

	if lastCode != cli.ExitOK {
		return cli.NewExitError(lastCode, nil)
	}
	return nil
}
