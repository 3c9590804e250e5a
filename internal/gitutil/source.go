// Package gitutil resolves review targets to per-file diffs using go-git.
package gitutil

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	fdiff "github.com/go-git/go-git/v5/plumbing/format/diff"
	"github.com/go-git/go-git/v5/plumbing/object"

	"github.com/sevigo/sparrow/internal/core"
)

// binaryCheckBytes mirrors git's own binary detection window.
const binaryCheckBytes = 8000

// Source implements core.DiffSource over a local git repository.
type Source struct {
	logger *slog.Logger
}

// NewSource returns a Source logging through the given logger.
func NewSource(logger *slog.Logger) *Source {
	if logger == nil {
		logger = slog.Default()
	}
	return &Source{logger: logger}
}

// Resolve maps a target to its ordered file diffs. A target that cannot be
// mapped to any commit or path fails with *core.ResolutionError; an empty
// change set resolves to zero diffs without error.
func (s *Source) Resolve(ctx context.Context, target core.Target) ([]core.FileDiff, error) {
	if target.Path != "" {
		return s.resolveFile(target)
	}
	return s.resolveCommits(ctx, target)
}

// IsCommit reports whether rev resolves to a commit in the repository at
// repoPath (or the working directory when repoPath is empty).
func (s *Source) IsCommit(repoPath, rev string) bool {
	repo, err := openRepo(repoPath)
	if err != nil {
		return false
	}
	_, err = repo.ResolveRevision(plumbing.Revision(rev))
	return err == nil
}

func (s *Source) resolveFile(target core.Target) ([]core.FileDiff, error) {
	data, err := os.ReadFile(target.Path)
	if err != nil {
		return nil, &core.ResolutionError{Target: target.String(), Err: err}
	}
	content := string(data)
	diff := core.FileDiff{
		Path:       target.Path,
		NewContent: content,
		IsNew:      true,
		IsBinary:   isBinary(data),
		Unified:    synthesizeAddDiff(target.Path, content),
		Hunks:      []core.HunkRange{{Start: 1, End: countLines(content)}},
	}
	return []core.FileDiff{diff}, nil
}

func (s *Source) resolveCommits(ctx context.Context, target core.Target) ([]core.FileDiff, error) {
	repo, err := openRepo(target.RepoPath)
	if err != nil {
		return nil, &core.ResolutionError{Target: target.String(), Err: err}
	}

	headHash, err := repo.ResolveRevision(plumbing.Revision(target.Rev))
	if err != nil {
		return nil, &core.ResolutionError{Target: target.String(), Err: err}
	}
	headCommit, err := repo.CommitObject(*headHash)
	if err != nil {
		return nil, &core.ResolutionError{Target: target.String(), Err: err}
	}

	// A root commit has no parent to diff against: everything is new.
	if target.BaseRev == "" && headCommit.NumParents() == 0 {
		return s.rootCommitDiffs(headCommit)
	}

	baseRev := target.BaseRev
	if baseRev == "" {
		baseRev = target.Rev + "^"
	}
	baseHash, err := repo.ResolveRevision(plumbing.Revision(baseRev))
	if err != nil {
		return nil, &core.ResolutionError{Target: target.String(), Err: err}
	}
	baseCommit, err := repo.CommitObject(*baseHash)
	if err != nil {
		return nil, &core.ResolutionError{Target: target.String(), Err: err}
	}

	patch, err := baseCommit.PatchContext(ctx, headCommit)
	if err != nil {
		return nil, &core.ResolutionError{Target: target.String(), Err: err}
	}

	var diffs []core.FileDiff
	for _, fp := range patch.FilePatches() {
		diff, err := s.fileDiff(repo, fp)
		if err != nil {
			return nil, &core.ResolutionError{Target: target.String(), Err: err}
		}
		diffs = append(diffs, diff)
	}

	s.logger.Debug("resolved target", "target", target.String(), "files", len(diffs))
	return diffs, nil
}

// fileDiff converts one go-git file patch into the pipeline's FileDiff.
func (s *Source) fileDiff(repo *git.Repository, fp fdiff.FilePatch) (core.FileDiff, error) {
	from, to := fp.Files()

	diff := core.FileDiff{
		IsNew:     from == nil,
		IsDeleted: to == nil,
		IsBinary:  fp.IsBinary(),
	}
	switch {
	case to != nil:
		diff.Path = to.Path()
	case from != nil:
		diff.Path = from.Path()
	default:
		return core.FileDiff{}, fmt.Errorf("file patch has neither old nor new file")
	}

	if !fp.IsBinary() {
		if from != nil {
			content, err := blobContent(repo, from.Hash())
			if err != nil {
				return core.FileDiff{}, fmt.Errorf("failed to read old contents of %s: %w", diff.Path, err)
			}
			diff.OldContent = content
		}
		if to != nil {
			content, err := blobContent(repo, to.Hash())
			if err != nil {
				return core.FileDiff{}, fmt.Errorf("failed to read new contents of %s: %w", diff.Path, err)
			}
			diff.NewContent = content
		}

		unified, err := encodeFilePatch(fp)
		if err != nil {
			return core.FileDiff{}, fmt.Errorf("failed to encode diff for %s: %w", diff.Path, err)
		}
		diff.Unified = unified
		diff.Hunks = changedRanges(fp)
	}

	return diff, nil
}

func (s *Source) rootCommitDiffs(commit *object.Commit) ([]core.FileDiff, error) {
	iter, err := commit.Files()
	if err != nil {
		return nil, &core.ResolutionError{Target: commit.Hash.String(), Err: err}
	}
	defer iter.Close()

	var diffs []core.FileDiff
	err = iter.ForEach(func(f *object.File) error {
		content, err := f.Contents()
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", f.Name, err)
		}
		diffs = append(diffs, core.FileDiff{
			Path:       f.Name,
			NewContent: content,
			IsNew:      true,
			IsBinary:   isBinary([]byte(content)),
			Unified:    synthesizeAddDiff(f.Name, content),
			Hunks:      []core.HunkRange{{Start: 1, End: countLines(content)}},
		})
		return nil
	})
	if err != nil {
		return nil, &core.ResolutionError{Target: commit.Hash.String(), Err: err}
	}
	return diffs, nil
}

func openRepo(repoPath string) (*git.Repository, error) {
	if repoPath == "" {
		repoPath = "."
	}
	repo, err := git.PlainOpenWithOptions(repoPath, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return nil, fmt.Errorf("no git repository at %s: %w", repoPath, err)
	}
	return repo, nil
}

func blobContent(repo *git.Repository, hash plumbing.Hash) (string, error) {
	blob, err := repo.BlobObject(hash)
	if err != nil {
		return "", err
	}
	r, err := blob.Reader()
	if err != nil {
		return "", err
	}
	defer r.Close()
	data, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// singlePatch adapts one file patch to the diff.Patch interface so it can be
// run through go-git's unified encoder on its own.
type singlePatch struct {
	fp fdiff.FilePatch
}

func (p singlePatch) FilePatches() []fdiff.FilePatch { return []fdiff.FilePatch{p.fp} }
func (p singlePatch) Message() string                { return "" }

func encodeFilePatch(fp fdiff.FilePatch) (string, error) {
	var buf bytes.Buffer
	if err := fdiff.NewUnifiedEncoder(&buf, fdiff.DefaultContextLines).Encode(singlePatch{fp: fp}); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// changedRanges extracts the line spans added or modified on the new side of
// the patch, for annotating file contents in review prompts.
func changedRanges(fp fdiff.FilePatch) []core.HunkRange {
	var ranges []core.HunkRange
	line := 1
	for _, chunk := range fp.Chunks() {
		n := countLines(chunk.Content())
		switch chunk.Type() {
		case fdiff.Equal:
			line += n
		case fdiff.Add:
			if n > 0 {
				ranges = append(ranges, core.HunkRange{Start: line, End: line + n - 1})
			}
			line += n
		case fdiff.Delete:
			// Removed lines do not exist on the new side.
		}
	}
	return ranges
}

func countLines(content string) int {
	if content == "" {
		return 0
	}
	n := strings.Count(content, "\n")
	if !strings.HasSuffix(content, "\n") {
		n++
	}
	return n
}

// isBinary applies the same heuristic git uses: a NUL byte within the first
// 8000 bytes marks the content as binary.
func isBinary(data []byte) bool {
	if len(data) > binaryCheckBytes {
		data = data[:binaryCheckBytes]
	}
	return bytes.IndexByte(data, 0) >= 0
}

// synthesizeAddDiff builds a unified diff presenting the whole file as newly
// added, used for single-file and root-commit reviews.
func synthesizeAddDiff(path, content string) string {
	n := countLines(content)
	var b strings.Builder
	fmt.Fprintf(&b, "--- /dev/null\n+++ b/%s\n@@ -0,0 +1,%d @@\n", path, n)
	for _, line := range splitLines(content) {
		b.WriteString("+")
		b.WriteString(line)
		b.WriteString("\n")
	}
	return b.String()
}

func splitLines(content string) []string {
	if content == "" {
		return nil
	}
	content = strings.TrimSuffix(content, "\n")
	return strings.Split(content, "\n")
}
