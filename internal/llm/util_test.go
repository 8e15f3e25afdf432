package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCleanJSONBlock(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"json code block", "```json\n{\"content\": \"value\"}\n```", `{"content": "value"}`},
		{"generic code block", "```\n{\"content\": \"value\"}\n```", `{"content": "value"}`},
		{"code block with language", "```javascript\n{\"content\": 1}\n```", `{"content": 1}`},
		{"plain JSON", `{"content": "value"}`, `{"content": "value"}`},
		{"preamble before object", "Here is the rewritten section:\n{\"content\": \"x\"}", `{"content": "x"}`},
		{"preamble before array", "Items:\n[\"Go\", \"SQL\"]", `["Go", "SQL"]`},
		{"trailing text", "{\"content\": \"x\"}\n\nLet me know if you need anything else!", `{"content": "x"}`},
		{"braces inside strings", `Result: {"content": "Hello {name}!"}`, `{"content": "Hello {name}!"}`},
		{"escaped quotes", `Result: {"content": "He said \"hi\" }"}`, `{"content": "He said \"hi\" }"}`},
		{"deeply nested", `Here: {"a": {"b": [{"c": "d"}]}}`, `{"a": {"b": [{"c": "d"}]}}`},
		{"no JSON", "I cannot help with that.", "I cannot help with that."},
		{"unbalanced", `{"content": "x"`, `{"content": "x"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, CleanJSONBlock(tt.input))
		})
	}
}

func TestExtractJSONValue(t *testing.T) {
	assert.Equal(t, `[1, [2]]`, extractJSONValue(`[1, [2]] extra`))
	assert.Equal(t, "", extractJSONValue(""))
	assert.Equal(t, "", extractJSONValue("not json"))
}
