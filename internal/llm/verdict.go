package llm

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/sevigo/sparrow/internal/core"
)

// wireVerdict mirrors the JSON contract from reviewInstructions. Accepted is
// a pointer so a missing field can be told apart from an explicit false.
type wireVerdict struct {
	Accepted *bool         `json:"accepted"`
	Comments []wireComment `json:"comments"`
}

type wireComment struct {
	Explanation string `json:"explanation"`
	StartLine   int    `json:"start_line"`
	OldCode     string `json:"old_code_block"`
	NewCode     string `json:"new_code_block"`
}

// parseVerdict turns the model's response content into a review result. It
// tolerates a markdown code fence around the JSON, a quirk some models have
// even in JSON mode.
func parseVerdict(content string) (*core.ReviewResult, error) {
	content = stripJSONFence(content)

	var v wireVerdict
	if err := json.Unmarshal([]byte(content), &v); err != nil {
		return nil, fmt.Errorf("invalid verdict JSON: %w", err)
	}
	if v.Accepted == nil {
		return nil, fmt.Errorf("verdict is missing the accepted field")
	}

	result := &core.ReviewResult{Accepted: *v.Accepted}
	for _, c := range v.Comments {
		if c.StartLine < 0 {
			return nil, fmt.Errorf("comment has negative start_line %d", c.StartLine)
		}
		result.Comments = append(result.Comments, core.ReviewComment{
			Explanation: c.Explanation,
			StartLine:   c.StartLine,
			OldCode:     c.OldCode,
			NewCode:     c.NewCode,
		})
	}
	return result, nil
}

// stripJSONFence removes a wrapping ```json ... ``` block if present.
func stripJSONFence(s string) string {
	trimmed := strings.TrimSpace(s)
	if !strings.HasPrefix(trimmed, "```") {
		return trimmed
	}
	idx := strings.Index(trimmed, "\n")
	if idx < 0 {
		return trimmed
	}
	inner := trimmed[idx+1:]
	if fence := strings.LastIndex(inner, "```"); fence >= 0 {
		inner = inner[:fence]
	}
	return strings.TrimSpace(inner)
}
