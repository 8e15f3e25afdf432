package prompts

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGet_ValidPrompt(t *testing.T) {
	ClearCache()

	prompt, err := Get("rewriting.json", "rewrite-strict")
	require.NoError(t, err)
	assert.Contains(t, prompt, "Do NOT add or remove any list items")
}

func TestGet_SectionRules(t *testing.T) {
	for _, section := range []string{"summary", "experiences", "skills", "projects", "education", "header", "cover_letter"} {
		assert.NotEmpty(t, Lookup("rewriting.json", "rules-"+section), section)
	}
	assert.Empty(t, Lookup("rewriting.json", "rules-hobbies"))
}

func TestGet_InvalidFile(t *testing.T) {
	ClearCache()

	_, err := Get("nonexistent.json", "some-key")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read prompt file")
}

func TestGet_InvalidKey(t *testing.T) {
	_, err := Get("rewriting.json", "nonexistent-key")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestMustGet_Panics(t *testing.T) {
	assert.Panics(t, func() {
		MustGet("nonexistent.json", "some-key")
	})
}

func TestFormat(t *testing.T) {
	out := Format("Edit {{.Section}}: {{.Instruction}}", map[string]string{
		"Section":     "summary",
		"Instruction": "mention {{.Section}} literally",
	})
	assert.Equal(t, "Edit summary: mention {{.Section}} literally", out)
}
