package rewriting

import (
	"encoding/json"
	"fmt"

	"github.com/jonathan/resume-editor/internal/llm"
	"github.com/jonathan/resume-editor/internal/types"
)

const maxPayloadInError = 500

// ParsePayload extracts the section content from a generator response of the
// form {"content": ...} and checks that it has the expected shape.
func ParsePayload(raw string, want types.Shape) (any, error) {
	cleaned := llm.CleanJSONBlock(raw)
	if cleaned == "" {
		return nil, &MalformedError{Message: "empty response", Payload: clip(raw)}
	}

	var envelope map[string]any
	if err := json.Unmarshal([]byte(cleaned), &envelope); err != nil {
		return nil, &MalformedError{Message: "response is not a JSON object", Payload: clip(raw), Cause: err}
	}
	content, ok := envelope["content"]
	if !ok {
		return nil, &MalformedError{Message: `response has no "content" field`, Payload: clip(raw)}
	}
	if content == nil {
		return nil, &MalformedError{Message: "content is null", Payload: clip(raw)}
	}
	if got := types.KindOf(content); got != want {
		return nil, &MalformedError{
			Message: fmt.Sprintf("expected %s content, got %s", want, got),
			Payload: clip(raw),
		}
	}
	return content, nil
}

func clip(s string) string {
	if len(s) <= maxPayloadInError {
		return s
	}
	return s[:maxPayloadInError]
}
