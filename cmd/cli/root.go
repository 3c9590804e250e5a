package main

import (
	"github.com/spf13/cobra"
)

var (
	repoPath string
	logLevel string
)

var rootCmd = &cobra.Command{
	Use:   "sparrow",
	Short: "sparrow reviews code changes with a hosted LLM and writes HTML reports.",
	Long: `Sparrow submits source code diffs to a hosted LLM assistant and renders
the returned suggestions as an HTML report.

A review target is a file path, a single commit reference, or a commit range.
Files excluded by policy or failing review are marked skipped in the report;
one file's failure never aborts the rest of the run.`,
	SilenceUsage: true,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() { //nolint:gochecknoinits // Cobra's init function for command registration
	rootCmd.PersistentFlags().StringVar(&repoPath, "repo", "", "path to the git repository containing the target")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error)")
}
