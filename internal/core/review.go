// Package core defines the data model and collaborator contracts shared by the
// review pipeline: diffs in, verdicts back, fragments out. These types are
// deliberately free of git, HTTP, and rendering concerns so the orchestrator
// can be exercised against fakes.
package core

import "time"

// HunkRange marks a span of changed lines in the new version of a file,
// inclusive on both ends.
type HunkRange struct {
	Start int
	End   int
}

// FileDiff describes one file's change within a review target. It is produced
// by the diff source and never mutated afterwards.
type FileDiff struct {
	Path       string
	OldContent string // empty when IsNew
	NewContent string // empty when IsDeleted
	IsNew      bool
	IsDeleted  bool
	IsBinary   bool
	Unified    string // unified diff text for this file only
	Hunks      []HunkRange
}

// ReviewComment is a single suggestion attached to a verdict.
type ReviewComment struct {
	Explanation string `json:"explanation"`
	StartLine   int    `json:"start_line"`
	OldCode     string `json:"old_code_block,omitempty"`
	NewCode     string `json:"new_code_block,omitempty"`
}

// ReviewResult is the verdict for one file: an acceptance flag plus the
// comments the assistant produced, in the order it produced them.
type ReviewResult struct {
	Accepted bool            `json:"accepted"`
	Comments []ReviewComment `json:"comments"`
}

// FragmentStatus is the closed set of per-file outcomes in a report.
type FragmentStatus int

const (
	// StatusAccepted means a verdict was obtained and the change looks good.
	StatusAccepted FragmentStatus = iota
	// StatusRejected means a verdict was obtained and the change was flagged.
	StatusRejected
	// StatusSkipped means no verdict was obtained, either by policy or
	// because the review client failed for this file.
	StatusSkipped
)

// String returns the lowercase name used in logs and reports.
func (s FragmentStatus) String() string {
	switch s {
	case StatusAccepted:
		return "accepted"
	case StatusRejected:
		return "rejected"
	case StatusSkipped:
		return "skipped"
	default:
		return "unknown"
	}
}

// ReportFragment is the per-file entry of a report. A skipped fragment never
// carries a result; use the constructors below to keep that invariant.
type ReportFragment struct {
	Diff       FileDiff
	Status     FragmentStatus
	Result     *ReviewResult // nil iff Status == StatusSkipped
	SkipReason string        // set only when Status == StatusSkipped
}

// NewReviewedFragment builds a fragment from a verdict, mapping the acceptance
// flag to accepted or rejected.
func NewReviewedFragment(diff FileDiff, result *ReviewResult) ReportFragment {
	status := StatusRejected
	if result.Accepted {
		status = StatusAccepted
	}
	return ReportFragment{Diff: diff, Status: status, Result: result}
}

// NewSkippedFragment builds a fragment for a file that received no verdict.
func NewSkippedFragment(diff FileDiff, reason string) ReportFragment {
	return ReportFragment{Diff: diff, Status: StatusSkipped, SkipReason: reason}
}

// Report is the assembled outcome of one review run. Fragment order matches
// the diff source's emission order.
type Report struct {
	Target    string
	Fragments []ReportFragment
	Warnings  []string
	CreatedAt time.Time
}

// Counts returns how many fragments ended up in each status.
func (r *Report) Counts() (accepted, rejected, skipped int) {
	for _, f := range r.Fragments {
		switch f.Status {
		case StatusAccepted:
			accepted++
		case StatusRejected:
			rejected++
		case StatusSkipped:
			skipped++
		}
	}
	return accepted, rejected, skipped
}
