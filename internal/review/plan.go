package review

import (
	"github.com/sevigo/sparrow/internal/core"
	"github.com/sevigo/sparrow/internal/llm"
)

// PlannedFile is the pre-flight classification of one file.
type PlannedFile struct {
	Path         string
	SkipReason   string // empty when the file will be reviewed
	InputTokens  int
	OutputTokens int
}

// Plan summarizes what a run will review and what it is likely to cost, so
// the user can confirm before any API call is made.
type Plan struct {
	Files                 []PlannedFile
	InputTokens           int
	EstimatedOutputTokens int
	EstimatedCost         float64
	CostKnown             bool
}

// ReviewableFiles returns how many files will actually be sent for review.
func (p Plan) ReviewableFiles() int {
	n := 0
	for _, f := range p.Files {
		if f.SkipReason == "" {
			n++
		}
	}
	return n
}

// BuildPlan classifies every diff against the policy and estimates token
// usage and cost for the given model. Output tokens are approximated by the
// patch size, which tracks how much the model tends to quote back.
func BuildPlan(diffs []core.FileDiff, policy Policy, model string) Plan {
	plan := Plan{Files: make([]PlannedFile, 0, len(diffs))}
	for _, d := range diffs {
		file := PlannedFile{Path: d.Path}
		if reason, skip := policy.Skip(d); skip {
			file.SkipReason = reason
		} else {
			file.InputTokens = llm.EstimateTokens(d.NewContent)
			file.OutputTokens = llm.EstimateTokens(d.Unified)
			plan.InputTokens += file.InputTokens
			plan.EstimatedOutputTokens += file.OutputTokens
		}
		plan.Files = append(plan.Files, file)
	}
	plan.EstimatedCost, plan.CostKnown = llm.Cost(model, plan.InputTokens, plan.EstimatedOutputTokens)
	return plan
}
