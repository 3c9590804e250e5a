package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseVerdict(t *testing.T) {
	content := `{
		"accepted": false,
		"comments": [
			{
				"explanation": "missing error check",
				"start_line": 12,
				"old_code_block": "f()",
				"new_code_block": "if err := f(); err != nil {"
			}
		]
	}`

	result, err := parseVerdict(content)
	require.NoError(t, err)
	assert.False(t, result.Accepted)
	require.Len(t, result.Comments, 1)
	assert.Equal(t, "missing error check", result.Comments[0].Explanation)
	assert.Equal(t, 12, result.Comments[0].StartLine)
	assert.Equal(t, "f()", result.Comments[0].OldCode)
}

func TestParseVerdict_AcceptedNoComments(t *testing.T) {
	result, err := parseVerdict(`{"accepted": true, "comments": []}`)
	require.NoError(t, err)
	assert.True(t, result.Accepted)
	assert.Empty(t, result.Comments)
}

func TestParseVerdict_FencedJSON(t *testing.T) {
	content := "```json\n{\"accepted\": true, \"comments\": []}\n```"

	result, err := parseVerdict(content)
	require.NoError(t, err)
	assert.True(t, result.Accepted)
}

func TestParseVerdict_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"not JSON", "the changes look good to me"},
		{"missing accepted", `{"comments": []}`},
		{"negative start line", `{"accepted": false, "comments": [{"explanation": "x", "start_line": -1}]}`},
		{"empty", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := parseVerdict(tt.content)
			assert.Error(t, err)
			assert.Nil(t, result)
		})
	}
}

func TestStripJSONFence(t *testing.T) {
	assert.Equal(t, `{"a":1}`, stripJSONFence("```json\n{\"a\":1}\n```"))
	assert.Equal(t, `{"a":1}`, stripJSONFence("```\n{\"a\":1}\n```"))
	assert.Equal(t, `{"a":1}`, stripJSONFence(` {"a":1} `))
	assert.Equal(t, "```", stripJSONFence("```"))
}
