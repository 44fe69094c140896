package main

import (
	"os"

	"github.com/spf13/cobra"

	"mercator-hq/callisto/pkg/aggregate"
	"mercator-hq/callisto/pkg/cli"
)

var listFlags struct {
	manifest string
	format   string
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List every license that may apply to the dependency graph",
	Long: `List the deduplicated set of licenses across the dependency graph.

Listing is deliberately conservative: for a package offering a choice
(MIT OR GPL-3.0-only), every branch is listed, because any of them might
govern a given distribution. Each license is annotated with the packages
that contribute it.

Examples:
  # Human-readable listing
  callisto list --manifest deps.yaml

  # One row per license and package, for spreadsheets
  callisto list --format csv`,
	RunE: runList,
}

func init() {
	rootCmd.AddCommand(listCmd)

	listCmd.Flags().StringVarP(&listFlags.manifest, "manifest", "m", "", "dependency manifest path")
	listCmd.Flags().StringVarP(&listFlags.format, "format", "o", "text", "output format: text, json, csv")
}

func runList(cmd *cobra.Command, args []string) error {
	logAdvisory()

	format, err := cli.ParseFormat(listFlags.format)
	if err != nil {
		return err
	}

	manifest := listFlags.manifest
	if manifest == "" {
		manifest = cfg.Manifest.Path
	}

	ctx := cli.SetupSignalHandler()
	report, err := runAggregation(ctx, manifest, aggregate.Options{Mode: aggregate.ModeList}, 0, nil)
	if err != nil {
		return err
	}

	return cli.RenderReport(os.Stdout, format, report)
}
