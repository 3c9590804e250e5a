package main

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/pkg/browser"
	"github.com/spf13/cobra"

	"github.com/sevigo/sparrow/internal/config"
	"github.com/sevigo/sparrow/internal/core"
	"github.com/sevigo/sparrow/internal/gitutil"
	"github.com/sevigo/sparrow/internal/llm"
	"github.com/sevigo/sparrow/internal/logger"
	"github.com/sevigo/sparrow/internal/report"
	"github.com/sevigo/sparrow/internal/review"
	"github.com/sevigo/sparrow/internal/storage"
)

var (
	autoApprove bool
	outPath     string
	openReport  bool
	concurrency int
)

// Color definitions
var (
	titleColor   = color.New(color.FgCyan, color.Bold)
	successColor = color.New(color.FgGreen)
	warnColor    = color.New(color.FgYellow)
	errorColor   = color.New(color.FgRed)
	infoColor    = color.New(color.FgWhite)
	dimColor     = color.New(color.FgHiBlack)
)

var reviewCmd = &cobra.Command{
	Use:   "review [path-or-commit] [base]",
	Short: "Review a file, commit, or commit range and write an HTML report",
	Long: `Review the specified file or commit.

The target is a path to a file, or a commit reference (hash, rev, tag). With a
second argument the changes between base and the target commit are reviewed;
without one a commit is reviewed against its parent.

Examples:
  sparrow review HEAD
  sparrow review v1.4.0 v1.3.0
  sparrow review internal/server/router.go
  sparrow review --repo ~/src/service --yes --open HEAD`,
	Args: cobra.MaximumNArgs(2),
	RunE: runReview,
}

func init() { //nolint:gochecknoinits // Cobra command registration
	reviewCmd.Flags().BoolVarP(&autoApprove, "yes", "y", false, "approve the review plan without prompting")
	reviewCmd.Flags().StringVarP(&outPath, "out", "o", "", "report output path (default: under the sparrow cache directory)")
	reviewCmd.Flags().BoolVar(&openReport, "open", false, "open the report in a browser when done")
	reviewCmd.Flags().IntVar(&concurrency, "concurrency", 0, "parallel review calls (default from config)")
	rootCmd.AddCommand(reviewCmd)
}

func runReview(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if logLevel != "" {
		cfg.LogLevel = logLevel
	}
	log := logger.New(logger.Config{Level: cfg.LogLevel, Format: cfg.LogFormat}, nil)

	if cfg.APIToken == "" {
		token, err := promptForToken(cmd)
		if err != nil {
			return err
		}
		cfg.APIToken = token
		if err := cfg.Save(); err != nil {
			log.Warn("failed to persist API token", "error", err)
		}
	}

	source := gitutil.NewSource(log)
	target := buildTarget(source, args)

	diffs, err := source.Resolve(ctx, target)
	if err != nil {
		return err
	}

	policy := review.Policy{
		ExcludedExtensions: cfg.ExcludedExtensions,
		MaxTokens:          cfg.MaxReviewTokens,
	}
	plan := review.BuildPlan(diffs, policy, cfg.Model)
	printPlan(plan)

	if plan.ReviewableFiles() > 0 && !autoApprove {
		ok, err := confirm(cmd, "Continue with review?")
		if err != nil {
			return err
		}
		if !ok {
			dimColor.Println("Review aborted.")
			return nil
		}
	}

	client := llm.NewClient(llm.Config{
		APIToken:       cfg.APIToken,
		Model:          cfg.Model,
		Seed:           cfg.Seed,
		Temperature:    cfg.Temperature,
		RequestTimeout: cfg.RequestTimeout,
		MaxRetries:     cfg.MaxRetries,
	}, log)
	if plan.ReviewableFiles() > 0 {
		if err := client.Init(ctx); err != nil {
			return err
		}
	}

	workers := cfg.Concurrency
	if concurrency > 0 {
		workers = concurrency
	}
	orch := review.NewOrchestrator(source, client, policy, workers, log)
	rep := orch.ReviewDiffs(ctx, target, diffs)

	renderer, err := report.NewRenderer()
	if err != nil {
		return err
	}
	path := outPath
	if path == "" {
		name := fmt.Sprintf("review-%s.html", time.Now().Format("20060102-150405"))
		path = filepath.Join(config.DataRoot(), "reports", name)
	}
	if err := renderer.WriteFile(rep, path); err != nil {
		return err
	}

	recordRun(ctx, log, rep, path)
	printSummary(rep, path)

	if openReport {
		if err := browser.OpenFile(path); err != nil {
			log.Warn("failed to open report in browser", "path", path, "error", err)
		}
	}
	return nil
}

// buildTarget decides whether the argument names a commit or a file. A commit
// reference wins when both interpretations are possible, matching git's own
// disambiguation.
func buildTarget(source *gitutil.Source, args []string) core.Target {
	rev := "HEAD"
	if len(args) > 0 {
		rev = args[0]
	}
	base := ""
	if len(args) > 1 {
		base = args[1]
	}

	if source.IsCommit(repoPath, rev) {
		return core.Target{Rev: rev, BaseRev: base, RepoPath: repoPath}
	}
	if info, err := os.Stat(rev); err == nil && info.Mode().IsRegular() {
		return core.Target{Path: rev}
	}
	return core.Target{Rev: rev, BaseRev: base, RepoPath: repoPath}
}

func promptForToken(cmd *cobra.Command) (string, error) {
	infoColor.Println("Enter your OpenAI API token (https://platform.openai.com/api-keys):")
	reader := bufio.NewReader(cmd.InOrStdin())
	line, err := reader.ReadString('\n')
	if err != nil {
		return "", fmt.Errorf("failed to read API token: %w", err)
	}
	token := strings.TrimSpace(line)
	if !strings.HasPrefix(token, "sk-") {
		return "", fmt.Errorf("invalid OpenAI API token")
	}
	return token, nil
}

func confirm(cmd *cobra.Command, question string) (bool, error) {
	fmt.Printf("%s [y/N]: ", question)
	reader := bufio.NewReader(cmd.InOrStdin())
	line, err := reader.ReadString('\n')
	if err != nil {
		return false, fmt.Errorf("failed to read confirmation: %w", err)
	}
	answer := strings.ToLower(strings.TrimSpace(line))
	return answer == "y" || answer == "yes", nil
}

func printPlan(plan review.Plan) {
	titleColor.Println("Code Review Plan")
	infoColor.Printf("  %-26s %d\n", "Files", len(plan.Files))
	infoColor.Printf("  %-26s %d\n", "Files to review", plan.ReviewableFiles())
	infoColor.Printf("  %-26s %d\n", "Input tokens", plan.InputTokens)
	infoColor.Printf("  %-26s %d\n", "Output tokens (estimate)", plan.EstimatedOutputTokens)
	if plan.CostKnown {
		infoColor.Printf("  %-26s %.3f\n", "Cost (USD, estimate)", plan.EstimatedCost)
	} else {
		dimColor.Printf("  %-26s %s\n", "Cost (USD, estimate)", "unknown model pricing")
	}
	for _, f := range plan.Files {
		if f.SkipReason != "" {
			dimColor.Printf("  skip %s: %s\n", f.Path, f.SkipReason)
		}
	}
	fmt.Println()
}

func printSummary(rep *core.Report, path string) {
	accepted, rejected, skipped := rep.Counts()
	fmt.Println()
	titleColor.Println("Review Summary")
	successColor.Printf("  accepted  %d\n", accepted)
	errorColor.Printf("  rejected  %d\n", rejected)
	dimColor.Printf("  skipped   %d\n", skipped)
	for _, w := range rep.Warnings {
		warnColor.Printf("  warning: %s\n", w)
	}
	fmt.Println()
	infoColor.Printf("Saved review to: %s\n", path)
}

// recordRun appends the run to the local history. History is best-effort and
// never fails the review.
func recordRun(ctx context.Context, log *slog.Logger, rep *core.Report, path string) {
	store, err := storage.NewStore(filepath.Join(config.DataRoot(), "history.db"))
	if err != nil {
		log.Warn("failed to open run history", "error", err)
		return
	}
	defer store.Close()

	accepted, rejected, skipped := rep.Counts()
	run := &storage.Run{
		Target:     rep.Target,
		Accepted:   accepted,
		Rejected:   rejected,
		Skipped:    skipped,
		ReportPath: path,
		CreatedAt:  rep.CreatedAt,
	}
	if err := store.SaveRun(ctx, run); err != nil {
		log.Warn("failed to record run history", "error", err)
	}
}
