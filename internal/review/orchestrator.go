// Package review drives a target through diff resolution, per-file review
// calls, and report assembly.
package review

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/sevigo/sparrow/internal/core"
)

// Orchestrator turns a review target into a complete report. Per-file client
// failures degrade to skipped fragments; only target resolution can fail the
// run as a whole.
type Orchestrator struct {
	source      core.DiffSource
	client      core.ReviewClient
	policy      Policy
	concurrency int
	logger      *slog.Logger
}

// NewOrchestrator wires an orchestrator. Concurrency below 1 is clamped to
// sequential operation, which keeps requests friendly to API rate limits.
func NewOrchestrator(source core.DiffSource, client core.ReviewClient, policy Policy, concurrency int, logger *slog.Logger) *Orchestrator {
	if source == nil {
		panic("diff source cannot be nil")
	}
	if client == nil {
		panic("review client cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	if concurrency < 1 {
		concurrency = 1
	}
	return &Orchestrator{
		source:      source,
		client:      client,
		policy:      policy,
		concurrency: concurrency,
		logger:      logger,
	}
}

// Run resolves the target and reviews every file it covers. An unresolvable
// target fails with *core.ResolutionError and no report; an empty change set
// yields an empty report.
func (o *Orchestrator) Run(ctx context.Context, target core.Target) (*core.Report, error) {
	diffs, err := o.source.Resolve(ctx, target)
	if err != nil {
		return nil, err
	}
	return o.ReviewDiffs(ctx, target, diffs), nil
}

// ReviewDiffs reviews an already-resolved set of diffs. The returned report
// has exactly one fragment per diff, in the same order, regardless of review
// concurrency or completion order. Cancellation stops new client calls and
// marks the remaining files skipped; the partial report is still returned.
func (o *Orchestrator) ReviewDiffs(ctx context.Context, target core.Target, diffs []core.FileDiff) *core.Report {
	report := &core.Report{
		Target:    target.String(),
		Fragments: make([]core.ReportFragment, len(diffs)),
		CreatedAt: time.Now().UTC(),
	}

	// Warnings are collected per index and compacted afterwards so their
	// order matches the file order even under parallel completion.
	warnings := make([]string, len(diffs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(o.concurrency)

	for i, diff := range diffs {
		if reason, skip := o.policy.Skip(diff); skip {
			o.logger.Info("skipping file", "path", diff.Path, "reason", reason)
			report.Fragments[i] = core.NewSkippedFragment(diff, reason)
			continue
		}

		g.Go(func() error {
			if gctx.Err() != nil {
				report.Fragments[i] = core.NewSkippedFragment(diff, "run canceled")
				return nil
			}

			o.logger.Info("reviewing file", "path", diff.Path)
			result, err := o.client.Review(gctx, diff)
			if err != nil {
				o.logger.Warn("review client failed, skipping file", "path", diff.Path, "error", err)
				warnings[i] = fmt.Sprintf("review of %s failed: %v", diff.Path, err)
				report.Fragments[i] = core.NewSkippedFragment(diff, "review failed")
				return nil
			}

			report.Fragments[i] = core.NewReviewedFragment(diff, result)
			return nil
		})
	}

	// Workers never return errors; Wait only synchronizes completion.
	_ = g.Wait()

	for _, w := range warnings {
		if w != "" {
			report.Warnings = append(report.Warnings, w)
		}
	}
	if ctx.Err() != nil {
		report.Warnings = append(report.Warnings, "run canceled before all files were reviewed")
	}

	accepted, rejected, skipped := report.Counts()
	o.logger.Info("review complete",
		"target", report.Target,
		"accepted", accepted,
		"rejected", rejected,
		"skipped", skipped,
	)
	return report
}
