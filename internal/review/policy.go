package review

import (
	"fmt"
	"path/filepath"

	"github.com/sevigo/sparrow/internal/core"
	"github.com/sevigo/sparrow/internal/llm"
)

// Policy decides which files are excluded from review before any client call
// is made. The criteria are deliberately configurable rather than hard-coded.
type Policy struct {
	// ExcludedExtensions lists file extensions (with leading dot) that are
	// never sent for review.
	ExcludedExtensions []string
	// MaxTokens caps the estimated prompt size of a single file. Zero
	// disables the cutoff.
	MaxTokens int
}

// DefaultPolicy mirrors the stock exclusion list: lockfiles, data and
// documentation formats carry little review signal.
func DefaultPolicy() Policy {
	return Policy{
		ExcludedExtensions: []string{".lock", ".yaml", ".toml", ".json", ".md", ".txt"},
		MaxTokens:          20_000,
	}
}

// Skip reports whether the file must be skipped and why.
func (p Policy) Skip(diff core.FileDiff) (reason string, skip bool) {
	if diff.IsBinary {
		return "binary file", true
	}
	if diff.IsDeleted {
		return "removed file", true
	}
	ext := filepath.Ext(diff.Path)
	for _, excluded := range p.ExcludedExtensions {
		if ext == excluded {
			return "excluded file extension", true
		}
	}
	if p.MaxTokens > 0 && llm.EstimateTokens(diff.NewContent) > p.MaxTokens {
		return fmt.Sprintf("file too large to review (~%d tokens)", llm.EstimateTokens(diff.NewContent)), true
	}
	return "", false
}
