package llm

import (
	"fmt"
	"strings"

	"github.com/sevigo/sparrow/internal/core"
)

// reviewInstructions is the system prompt for every review call. The JSON
// contract here must stay in sync with parseVerdict.
const reviewInstructions = `You are a code review assistant. The user message contains changes made to one file in a patch set: the file path followed by the file contents annotated with line numbers. Only the lines that start with an asterisk were updated.

Review the code and flag substantive issues in the updated lines (the ones marked with an asterisk). Only reject if you are sure there is an underlying issue with the code. Do not flag formatting or style issues.

Respond with a single JSON object of this shape and nothing else:
{
  "accepted": true or false,
  "comments": [
    {
      "explanation": "description of the problem this suggestion is solving",
      "start_line": 10,
      "old_code_block": "the block of code that needs to be replaced",
      "new_code_block": "the replacement block"
    }
  ]
}

"accepted" is true when the changes look good. "comments" may be empty.`

const lineNumberWidth = 5

// reviewPrompt builds the user message for a single file review.
func reviewPrompt(diff core.FileDiff) string {
	var b strings.Builder
	fmt.Fprintf(&b, "File Path: %s\n\nFile Contents (annotated):\n```\n", diff.Path)
	b.WriteString(annotateContents(diff.NewContent, diff.Hunks))
	b.WriteString("\n```\n")
	return b.String()
}

// annotateContents numbers every line of content and marks lines inside the
// changed ranges with an asterisk so the model knows what to focus on.
func annotateContents(content string, changed []core.HunkRange) string {
	changedLine := func(n int) bool {
		for _, r := range changed {
			if r.Start <= n && n <= r.End {
				return true
			}
		}
		return false
	}

	lines := strings.Split(strings.TrimSuffix(content, "\n"), "\n")
	annotated := make([]string, 0, len(lines))
	for i, line := range lines {
		n := i + 1
		marker := " "
		if changedLine(n) {
			marker = "*"
		}
		entry := fmt.Sprintf("%s%*d", marker, lineNumberWidth, n)
		if line != "" {
			entry += " " + line
		}
		annotated = append(annotated, entry)
	}
	return strings.Join(annotated, "\n")
}
