package rewriting

import (
	"encoding/json"
	"strings"

	"github.com/jonathan/resume-editor/internal/prompts"
	"github.com/jonathan/resume-editor/internal/types"
)

const promptFile = "rewriting.json"

// BuildPrompt assembles the single generation prompt for a section rewrite.
func BuildPrompt(section, instruction string, content any, strict bool) (string, error) {
	encoded, err := json.MarshalIndent(content, "", "  ")
	if err != nil {
		return "", &MalformedError{Message: "section content is not JSON-representable", Cause: err}
	}

	var sb strings.Builder
	sb.WriteString(prompts.Format(prompts.MustGet(promptFile, "rewrite-intro"), map[string]string{
		"Section":     section,
		"Instruction": strings.TrimSpace(instruction),
		"Content":     string(encoded),
	}))

	shape, ok := types.SectionShape(section)
	if !ok {
		shape = types.KindOf(content)
	}
	if s := prompts.Lookup(promptFile, "shape-"+string(shape)); s != "" {
		sb.WriteString(s)
		sb.WriteString("\n")
	}
	if rules := prompts.Lookup(promptFile, "rules-"+section); rules != "" {
		sb.WriteString(rules)
		sb.WriteString("\n")
	}
	if strict {
		sb.WriteString(prompts.MustGet(promptFile, "rewrite-strict"))
		sb.WriteString("\n")
	}
	sb.WriteString(prompts.MustGet(promptFile, "rewrite-output"))
	return sb.String(), nil
}
