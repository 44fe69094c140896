package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"mercator-hq/callisto/pkg/aggregate"
	"mercator-hq/callisto/pkg/bundle"
	"mercator-hq/callisto/pkg/cli"
	"mercator-hq/callisto/pkg/discovery"
	"mercator-hq/callisto/pkg/metadata"
	"mercator-hq/callisto/pkg/registry"
)

var bundleFlags struct {
	manifest string
	variant  string
	dir      string
	output   string
}

var bundleCmd = &cobra.Command{
	Use:   "bundle",
	Short: "Assemble third-party license attributions",
	Long: `Assemble the license attribution document that ships with a built
artifact.

Each package's license text is taken from its own directory when it can
be found there, and from an embedded reference template otherwise.
Texts that match their reference poorly are flagged, and licenses with
no text at all are reported rather than dropped.

Variants:
  inline     one document with every license text (default)
  name-only  one line per package, no texts
  split      a summary plus one text file per license in --dir

Examples:
  callisto bundle --manifest deps.yaml > THIRD_PARTY.txt
  callisto bundle --variant name-only
  callisto bundle --variant split --dir licenses/`,
	RunE: runBundle,
}

func init() {
	rootCmd.AddCommand(bundleCmd)

	bundleCmd.Flags().StringVarP(&bundleFlags.manifest, "manifest", "m", "", "dependency manifest path")
	bundleCmd.Flags().StringVar(&bundleFlags.variant, "variant", "", "bundle variant: inline, name-only, split")
	bundleCmd.Flags().StringVar(&bundleFlags.dir, "dir", "", "output directory for the split variant")
	bundleCmd.Flags().StringVar(&bundleFlags.output, "output", "", "write the document to a file instead of stdout")
}

func runBundle(cmd *cobra.Command, args []string) error {
	logAdvisory()

	manifest := bundleFlags.manifest
	if manifest == "" {
		manifest = cfg.Manifest.Path
	}
	variant := bundleFlags.variant
	if variant == "" {
		variant = cfg.Bundle.Variant
	}
	dir := bundleFlags.dir
	if dir == "" {
		dir = cfg.Bundle.Dir
	}

	ctx := cli.SetupSignalHandler()

	source := metadata.NewManifestSource(manifest)
	packages, _, err := source.Packages(ctx)
	if err != nil {
		return err
	}

	agg, err := aggregate.New(registry.Default(), &aggregate.Config{ParseCacheSize: cfg.Check.ParseCacheSize})
	if err != nil {
		return err
	}
	report, err := agg.Run(ctx, source, aggregate.Options{Mode: aggregate.ModeList})
	if err != nil {
		return err
	}

	var out io.Writer = os.Stdout
	if bundleFlags.output != "" {
		f, err := os.Create(bundleFlags.output)
		if err != nil {
			return fmt.Errorf("failed to create output file %q: %w", bundleFlags.output, err)
		}
		defer f.Close()
		out = f
	}

	bundler := bundle.New(discovery.NewLocator(registry.Default()))
	summary, err := bundler.Write(out, bundle.Variant(variant), report, packages, dir)
	if err != nil {
		return err
	}

	if summary.MissingTexts > 0 || summary.LowConfidence > 0 {
		fmt.Fprintf(os.Stderr, "bundle covered %d packages: %d missing texts, %d low-confidence matches\n",
			summary.Packages, summary.MissingTexts, summary.LowConfidence)
	}
	return nil
}
