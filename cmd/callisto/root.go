package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"mercator-hq/callisto/pkg/cli"
	"mercator-hq/callisto/pkg/config"
	"mercator-hq/callisto/pkg/telemetry/logging"
)

var (
	// Global flags
	cfgFile   string
	verbose   bool
	logFormat string

	// cfg is the effective configuration, loaded in the persistent pre-run.
	cfg *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "callisto",
	Short: "Callisto - dependency license compatibility checker",
	Long: `Callisto checks whether a dependency graph's licenses are compatible
with the license of the project that uses it.

It reads a dependency manifest, parses each package's SPDX license
expression, and evaluates the whole graph against a compatibility tier:
  - check:   pass/fail verdict with a concrete license choice per package
  - list:    every license that may apply, with provenance
  - bundle:  third-party attribution documents for release artifacts
  - watch:   continuous re-checking as the manifest changes
  - history: archive of past runs`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = loadConfig()
		if err != nil {
			return err
		}

		logCfg := &logging.Config{
			Level:     cfg.Telemetry.Logging.Level,
			Format:    cfg.Telemetry.Logging.Format,
			AddSource: cfg.Telemetry.Logging.AddSource,
		}
		if verbose {
			logCfg.Level = "debug"
		}
		if logFormat != "" {
			logCfg.Format = logFormat
		}
		if _, err := logging.Setup(logCfg); err != nil {
			return err
		}
		return nil
	},
}

// Execute runs the root command. Findings and failures exit with the
// codes defined in the cli package.
func Execute() {
	cmd, err := rootCmd.ExecuteC()
	if err == nil {
		return
	}
	var exitErr *cli.ExitError
	if errors.As(err, &exitErr) {
		if exitErr.Err != nil {
			fmt.Fprintln(os.Stderr, exitErr.Err)
		}
		os.Exit(exitErr.Code)
	}
	fmt.Fprintln(os.Stderr, cli.NewCommandError(cmd.Name(), err))
	os.Exit(cli.ExitFatal)
}

// loadConfig resolves the effective configuration. An explicit --config
// must exist; the default path is optional and silently skipped when
// absent.
func loadConfig() (*config.Config, error) {
	if cfgFile != "" {
		return config.LoadConfigWithEnvOverrides(cfgFile)
	}
	if _, err := os.Stat("callisto.yaml"); err == nil {
		return config.LoadConfigWithEnvOverrides("callisto.yaml")
	}
	return config.DefaultConfig(), nil
}

// logAdvisory prints the standing disclaimer before any command that
// renders a legal-sounding verdict.
func logAdvisory() {
	slog.Warn("callisto is not a lawyer; verdicts are tier heuristics, not legal advice")
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file path (default callisto.yaml if present)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "", "log format: json, text, console")

	rootCmd.CompletionOptions.DisableDefaultCmd = true
}
