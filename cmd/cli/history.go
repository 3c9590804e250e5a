package main

import (
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/sevigo/sparrow/internal/config"
	"github.com/sevigo/sparrow/internal/storage"
)

var historyLimit int

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recent review runs",
	Long:  `List recent review runs with their per-status file counts and report locations.`,
	Args:  cobra.NoArgs,
	RunE:  runHistory,
}

func init() { //nolint:gochecknoinits // Cobra command registration
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "maximum number of runs to list")
	rootCmd.AddCommand(historyCmd)
}

func runHistory(cmd *cobra.Command, _ []string) error {
	store, err := storage.NewStore(filepath.Join(config.DataRoot(), "history.db"))
	if err != nil {
		return err
	}
	defer store.Close()

	runs, err := store.ListRuns(cmd.Context(), historyLimit)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		dimColor.Println("No review runs recorded yet.")
		return nil
	}

	for _, run := range runs {
		dimColor.Printf("%s  ", run.CreatedAt.Local().Format("2006-01-02 15:04"))
		titleColor.Printf("%-24s", run.Target)
		successColor.Printf("  %d accepted", run.Accepted)
		errorColor.Printf("  %d rejected", run.Rejected)
		dimColor.Printf("  %d skipped  %s\n", run.Skipped, run.ReportPath)
	}
	return nil
}
