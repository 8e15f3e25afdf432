package rewriting

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jonathan/resume-editor/internal/llm"
	"github.com/jonathan/resume-editor/internal/types"
	"github.com/jonathan/resume-editor/internal/validation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeGenerator struct {
	response string
	err      error
	block    bool
	calls    int
	prompt   string
	tier     llm.ModelTier
}

func (f *fakeGenerator) GenerateJSON(ctx context.Context, prompt string, tier llm.ModelTier) (string, error) {
	f.calls++
	f.prompt = prompt
	f.tier = tier
	if f.block {
		<-ctx.Done()
		return "", ctx.Err()
	}
	return f.response, f.err
}

func header() map[string]any {
	return map[string]any{
		"name":       "Jane Doe",
		"title_line": "Backend Engineer",
		"contact_info": map[string]any{
			"email": "jane@example.com",
			"phone": "555-0100",
		},
	}
}

func TestRewrite_Text(t *testing.T) {
	gen := &fakeGenerator{response: "```json\n{\"content\": \"Shorter summary.\"}\n```"}
	r := New(gen, Options{})

	out, err := r.Rewrite(context.Background(), Request{
		Section:     types.SectionSummary,
		Instruction: "make it shorter",
		Content:     "A much longer summary about many things.",
	})
	require.NoError(t, err)
	assert.Equal(t, "Shorter summary.", out.Content)
	assert.Empty(t, out.Restored)
	assert.Equal(t, 1, gen.calls)
	assert.Equal(t, llm.TierAdvanced, gen.tier)
	assert.Contains(t, gen.prompt, "make it shorter")
	assert.Contains(t, gen.prompt, `"summary"`)
	assert.NotContains(t, gen.prompt, "STRICT MODE")
}

func TestRewrite_NoGenerator(t *testing.T) {
	_, err := New(nil, Options{}).Rewrite(context.Background(), Request{Section: "summary", Content: "x"})
	var genErr *GenerationError
	assert.ErrorAs(t, err, &genErr)
}

func TestRewrite_TransportError(t *testing.T) {
	gen := &fakeGenerator{err: errors.New("connection reset")}
	_, err := New(gen, Options{}).Rewrite(context.Background(), Request{Section: "summary", Content: "x"})
	var genErr *GenerationError
	require.ErrorAs(t, err, &genErr)
	assert.Contains(t, err.Error(), "connection reset")
	assert.Equal(t, 1, gen.calls, "no retry")
}

func TestRewrite_Timeout(t *testing.T) {
	gen := &fakeGenerator{block: true}
	r := New(gen, Options{Timeout: 20 * time.Millisecond})

	_, err := r.Rewrite(context.Background(), Request{Section: "summary", Content: "x"})
	var genErr *GenerationError
	require.ErrorAs(t, err, &genErr)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Contains(t, genErr.Message, "timed out")
}

func TestRewrite_Malformed(t *testing.T) {
	tests := []struct {
		name     string
		section  string
		content  any
		response string
	}{
		{"not json", "summary", "x", "I cannot do that."},
		{"missing content", "summary", "x", `{"text": "hello"}`},
		{"null content", "summary", "x", `{"content": null}`},
		{"text for list", "skills", []any{"Go"}, `{"content": "Go, SQL"}`},
		{"list for mapping", "header", header(), `{"content": ["Jane"]}`},
		{"bare array", "skills", []any{"Go"}, `["Go", "SQL"]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gen := &fakeGenerator{response: tt.response}
			_, err := New(gen, Options{}).Rewrite(context.Background(), Request{Section: tt.section, Content: tt.content})
			var malformed *MalformedError
			assert.ErrorAs(t, err, &malformed)
		})
	}
}

func TestRewrite_StrictRejectsStructuralChange(t *testing.T) {
	gen := &fakeGenerator{response: `{"content": {"name": "Jane Doe", "title_line": "Staff Engineer"}}`}
	_, err := New(gen, Options{}).Rewrite(context.Background(), Request{
		Section:     types.SectionHeader,
		Instruction: "make the title more senior",
		Content:     header(),
		Strict:      true,
	})

	var strictErr *StrictError
	require.ErrorAs(t, err, &strictErr)
	var violation *validation.StrictViolationError
	require.ErrorAs(t, err, &violation)
	assert.Equal(t, "header", violation.Path)
	assert.Contains(t, gen.prompt, "STRICT MODE")
}

func TestRewrite_StrictAcceptsTextChange(t *testing.T) {
	gen := &fakeGenerator{response: `{"content": {"name": "Jane Doe", "title_line": "Staff Engineer",
		"contact_info": {"email": "jane@example.com", "phone": "555-0100"}}}`}
	out, err := New(gen, Options{}).Rewrite(context.Background(), Request{
		Section: types.SectionHeader,
		Content: header(),
		Strict:  true,
	})
	require.NoError(t, err)
	assert.Equal(t, "Staff Engineer", out.Content.(map[string]any)["title_line"])
}

func TestRewrite_LenientRestoresDroppedKeys(t *testing.T) {
	gen := &fakeGenerator{response: `{"content": {"name": "Jane Doe", "title_line": "Staff Engineer"}}`}
	out, err := New(gen, Options{}).Rewrite(context.Background(), Request{
		Section: types.SectionHeader,
		Content: header(),
	})
	require.NoError(t, err)

	got := out.Content.(map[string]any)
	assert.Equal(t, "Staff Engineer", got["title_line"])
	assert.Equal(t, header()["contact_info"], got["contact_info"])
	assert.Equal(t, []string{"header.contact_info"}, out.Restored)
}

func TestRestoreDropped_ListEntries(t *testing.T) {
	original := []any{
		map[string]any{"organization": "Acme", "title": "Engineer", "bullets": []any{"a"}},
		map[string]any{"organization": "Globex", "title": "Lead"},
	}
	candidate := []any{
		map[string]any{"organization": "Acme", "bullets": []any{"b"}},
		map[string]any{"organization": "Globex", "title": "Principal"},
		map[string]any{"organization": "Initech"},
	}

	out, restored := RestoreDropped("experiences", original, candidate)
	entries := out.([]any)
	require.Len(t, entries, 3)
	assert.Equal(t, "Engineer", entries[0].(map[string]any)["title"])
	assert.Equal(t, []any{"b"}, entries[0].(map[string]any)["bullets"])
	assert.Equal(t, "Principal", entries[1].(map[string]any)["title"])
	assert.Equal(t, []string{"experiences[0].title"}, restored)
	_, touched := candidate[0].(map[string]any)["title"]
	assert.False(t, touched, "candidate must not be modified")
}

func TestRestoreDropped_Text(t *testing.T) {
	out, restored := RestoreDropped("summary", "old", "new")
	assert.Equal(t, "new", out)
	assert.Nil(t, restored)
}

func TestBuildPrompt(t *testing.T) {
	prompt, err := BuildPrompt("skills", "add Rust", []any{"Go"}, true)
	require.NoError(t, err)
	assert.Contains(t, prompt, "add Rust")
	assert.Contains(t, prompt, `"Go"`)
	assert.Contains(t, prompt, "JSON array")
	assert.Contains(t, prompt, "STRICT MODE")
	assert.Contains(t, prompt, `{"content":`)

	_, err = BuildPrompt("summary", "x", func() {}, false)
	var malformed *MalformedError
	assert.ErrorAs(t, err, &malformed)
}
