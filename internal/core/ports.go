package core

import (
	"context"
	"fmt"
)

// Target identifies what to review: either a single file by path, or the
// changes introduced by a commit (optionally relative to an explicit base).
type Target struct {
	// Path points at a single file to review in full. When set, the commit
	// fields are ignored.
	Path string

	// Rev is a commit reference: hash, tag, branch, or anything git
	// rev-parse understands.
	Rev string
	// BaseRev is the commit to diff against. Empty means the parent of Rev.
	BaseRev string
	// RepoPath overrides the repository location; empty means the current
	// working directory.
	RepoPath string
}

// String renders the target the way it appears in reports and the run history.
func (t Target) String() string {
	if t.Path != "" {
		return t.Path
	}
	if t.BaseRev != "" {
		return fmt.Sprintf("%s..%s", t.BaseRev, t.Rev)
	}
	return t.Rev
}

// DiffSource resolves a target to the ordered set of per-file diffs it covers.
// Resolving zero files is not an error; an unresolvable target fails with
// *ResolutionError.
type DiffSource interface {
	Resolve(ctx context.Context, target Target) ([]FileDiff, error)
}

// ReviewClient obtains a verdict for one file's diff. Failures are reported
// as *ClientError; the orchestrator downgrades any such failure to a skipped
// fragment.
type ReviewClient interface {
	Review(ctx context.Context, diff FileDiff) (*ReviewResult, error)
}
