package main

import (
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"mercator-hq/callisto/pkg/cli"
	"mercator-hq/callisto/pkg/history"
)

var historyFlags struct {
	path   string
	limit  int
	days   int
	format string
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Inspect archived compliance runs",
	Long: `Inspect the archive of past compliance runs.

Runs are archived when checks pass --record or when history is enabled
in the configuration. The archive keeps the full report, so old verdicts
can be re-rendered and compared after the manifest has moved on.`,
}

var historyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List archived runs, newest first",
	RunE:  runHistoryList,
}

var historyShowCmd = &cobra.Command{
	Use:   "show <run-id>",
	Short: "Re-render the full report of an archived run",
	Args:  cobra.ExactArgs(1),
	RunE:  runHistoryShow,
}

var historyPruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Delete archived runs older than the retention window",
	RunE:  runHistoryPrune,
}

func init() {
	rootCmd.AddCommand(historyCmd)
	historyCmd.AddCommand(historyListCmd, historyShowCmd, historyPruneCmd)

	historyCmd.PersistentFlags().StringVar(&historyFlags.path, "db", "", "history database path")
	historyListCmd.Flags().IntVar(&historyFlags.limit, "limit", 20, "maximum runs to list")
	historyShowCmd.Flags().StringVarP(&historyFlags.format, "format", "o", "text", "output format: text, json, csv")
	historyPruneCmd.Flags().IntVar(&historyFlags.days, "days", 0, "retention in days (default: history.retention_days)")
}

func openHistory() (*history.Store, error) {
	histCfg := history.DefaultConfig()
	histCfg.Path = cfg.History.Path
	if historyFlags.path != "" {
		histCfg.Path = historyFlags.path
	}
	return history.Open(histCfg)
}

func runHistoryList(cmd *cobra.Command, args []string) error {
	store, err := openHistory()
	if err != nil {
		return err
	}
	defer store.Close()

	ctx := cli.SetupSignalHandler()
	entries, err := store.List(ctx, historyFlags.limit)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		fmt.Println("no archived runs")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "RUN ID\tSTARTED\tMODE\tTARGET\tSTATUS\tPACKAGES\tCONFLICTS\tUNDETERMINED")
	for _, e := range entries {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%d\t%d\t%d\n",
			e.RunID, e.StartedAt.Format(time.RFC3339), e.Mode, e.Target,
			e.Status, e.Packages, e.Conflicts, e.Undetermined)
	}
	return w.Flush()
}

func runHistoryShow(cmd *cobra.Command, args []string) error {
	format, err := cli.ParseFormat(historyFlags.format)
	if err != nil {
		return err
	}

	store, err := openHistory()
	if err != nil {
		return err
	}
	defer store.Close()

	ctx := cli.SetupSignalHandler()
	report, err := store.Get(ctx, args[0])
	if err != nil {
		return err
	}
	return cli.RenderReport(os.Stdout, format, report)
}

func runHistoryPrune(cmd *cobra.Command, args []string) error {
	days := historyFlags.days
	if days <= 0 {
		days = cfg.History.RetentionDays
	}
	if days <= 0 {
		return fmt.Errorf("no retention window configured; pass --days")
	}

	store, err := openHistory()
	if err != nil {
		return err
	}
	defer store.Close()

	ctx := cli.SetupSignalHandler()
	cutoff := time.Now().UTC().AddDate(0, 0, -days)
	deleted, err := store.Prune(ctx, cutoff)
	if err != nil {
		return err
	}
	fmt.Printf("deleted %d archived runs older than %d days\n", deleted, days)
	return nil
}
