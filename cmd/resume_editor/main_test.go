package main

import (
	"bytes"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/resume-editor/internal/types"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("GEMINI_API_KEY", "")
	t.Setenv("OPENAI_API_KEY", "")
	t.Setenv("DATABASE_URL", "")

	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func sampleDocument() types.Document {
	return types.Document{
		"summary": "Backend engineer with ten years of Go.",
		"skills":  []any{"Python", "JavaScript"},
		"experiences": []any{
			map[string]any{"organization": "Acme", "title": "Engineer", "dates": "2015 - 2018", "bullets": []any{"Built APIs"}},
		},
		"header": map[string]any{
			"name":       "Jane Doe",
			"title_line": "Engineer",
			"contact_info": map[string]any{
				"email": "jane@example.com",
			},
		},
	}
}

func writeTestDocument(t *testing.T, dir, name string, doc types.Document) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, writeDocument(path, doc))
	return path
}

func TestClassifyCommand(t *testing.T) {
	tests := []struct {
		name    string
		request string
		want    []string
	}{
		{"skills", "Add AWS to skills", []string{"scope: ok", "edit_type: skills", "section: skills"}},
		{"unknown", "Make it better", []string{"edit_type: unknown", "section: (none)"}},
		{"layout", "Change the font to Helvetica", []string{"scope: rejected"}},
		{"compound", "Add AWS to skills; shorten the summary", []string{"parts: 2", "[1] Add AWS to skills", "[2] shorten the summary"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := execute(t, "classify", tt.request)
			require.NoError(t, err)
			for _, want := range tt.want {
				assert.Contains(t, out, want)
			}
		})
	}
}

func TestValidateCommand(t *testing.T) {
	dir := t.TempDir()

	valid := writeTestDocument(t, dir, "valid.json", types.Document{
		"summary": "Engineer.",
		"skills":  []any{"Go"},
	})
	out, err := execute(t, "validate", "--doc", valid)
	require.NoError(t, err)
	assert.Contains(t, out, "ALL 2 SECTIONS VALID")

	invalid := writeTestDocument(t, dir, "invalid.json", types.Document{
		"summary": "Engineer.",
		"skills":  []any{"Go", ""},
	})
	out, err = execute(t, "validate", "--doc", invalid, "--json")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "1 section(s) failed validation")

	var reports []types.ValidationReport
	require.NoError(t, json.Unmarshal([]byte(out), &reports))
	assert.Len(t, reports, 2)
}

func TestValidateCommand_MissingFile(t *testing.T) {
	_, err := execute(t, "validate", "--doc", filepath.Join(t.TempDir(), "missing.json"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read document file")
}

func TestEditCommand_WritesOutput(t *testing.T) {
	dir := t.TempDir()
	docPath := writeTestDocument(t, dir, "resume.json", sampleDocument())
	outPath := filepath.Join(dir, "out", "resume.json")

	out, err := execute(t, "edit", "--doc", docPath, "--request", "Add AWS to skills", "--out", outPath)
	require.NoError(t, err)
	assert.Contains(t, out, "EDIT APPLIED")
	assert.Contains(t, out, "Output: "+outPath)

	edited, err := readDocument(outPath)
	require.NoError(t, err)
	assert.Equal(t, []any{"Python", "JavaScript", "AWS"}, edited["skills"])

	original, err := readDocument(docPath)
	require.NoError(t, err)
	assert.Equal(t, []any{"Python", "JavaScript"}, original["skills"])
}

func TestEditCommand_DryRunJSON(t *testing.T) {
	dir := t.TempDir()
	docPath := writeTestDocument(t, dir, "resume.json", sampleDocument())
	before, err := os.ReadFile(docPath)
	require.NoError(t, err)

	out, err := execute(t, "edit", "--doc", docPath, "--dry-run", "--json",
		"--request", "Add AWS to skills", "--request", "Add Go to skills")
	require.NoError(t, err)

	var outcomes []types.EditOutcome
	require.NoError(t, json.Unmarshal([]byte(out), &outcomes))
	require.Len(t, outcomes, 2)
	assert.Equal(t, types.StatusApplied, outcomes[1].Status)
	assert.Equal(t, []any{"Python", "JavaScript", "AWS", "Go"}, outcomes[1].UpdatedDocument["skills"])

	after, err := os.ReadFile(docPath)
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestEditCommand_NotPossible(t *testing.T) {
	dir := t.TempDir()
	docPath := writeTestDocument(t, dir, "resume.json", sampleDocument())

	// No API key is configured, so a free-text rewrite cannot be generated.
	out, err := execute(t, "edit", "--doc", docPath, "--request", "Rewrite the summary to sound more senior")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "1 of 1 edit(s) were not possible")
	assert.Contains(t, out, "EDIT NOT POSSIBLE")
	assert.NotContains(t, out, "Output:")
}

func TestEditCommand_FlagErrors(t *testing.T) {
	_, err := execute(t, "edit", "--request", "Add AWS to skills")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "exactly one of --doc or --doc-id")

	_, err = execute(t, "edit", "--doc", "x.json")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `required flag(s) "request" not set`)

	_, err = execute(t, "edit", "--doc-id", "not-a-uuid", "--request", "Add AWS to skills")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid document ID")
}

func TestBatchCommand(t *testing.T) {
	dir := t.TempDir()
	outDir := filepath.Join(dir, "out")
	a := writeTestDocument(t, dir, "a.json", sampleDocument())
	b := writeTestDocument(t, dir, "b.json", sampleDocument())

	out, err := execute(t, "batch", "--request", "Add AWS to skills", "--out-dir", outDir, "--concurrency", "2", a, b)
	require.NoError(t, err)
	assert.Contains(t, out, a+": applied=1 no_change=0 not_possible=0")
	assert.Contains(t, out, b+": applied=1 no_change=0 not_possible=0")

	for _, name := range []string{"a.json", "b.json"} {
		edited, err := readDocument(filepath.Join(outDir, name))
		require.NoError(t, err)
		assert.Equal(t, []any{"Python", "JavaScript", "AWS"}, edited["skills"])
	}
}

func TestBatchCommand_Errors(t *testing.T) {
	_, err := execute(t, "batch", "--request", "Add AWS to skills", "--concurrency", "0", "a.json")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--concurrency")

	_, err = execute(t, "batch", "--request", "Add AWS to skills", filepath.Join(t.TempDir(), "missing.json"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing.json")
}

func TestLoadConfig_FromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"provider": "openai", "strict": true}`), 0644))

	cfg, err := loadConfig(&rootOptions{configPath: path, verbose: true})
	require.NoError(t, err)
	assert.Equal(t, "openai", cfg.Provider)
	assert.True(t, cfg.Strict)
	assert.True(t, cfg.Verbose)
	assert.Equal(t, 8080, cfg.Port)

	require.NoError(t, os.WriteFile(path, []byte(`{"provider": "anthropic"}`), 0644))
	_, err = loadConfig(&rootOptions{configPath: path})
	assert.Error(t, err)
}

func TestExpandRequests(t *testing.T) {
	in := []string{"Add AWS to skills; shorten the summary", "Add Go to skills"}
	assert.Equal(t, in, expandRequests(in, false))
	assert.Equal(t, []string{"Add AWS to skills", "shorten the summary", "Add Go to skills"}, expandRequests(in, true))
}
