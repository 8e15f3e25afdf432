package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckStrict(t *testing.T) {
	exp := func(org string, bullets ...any) map[string]any {
		return map[string]any{"organization": org, "bullets": bullets}
	}

	tests := []struct {
		name     string
		before   any
		after    any
		wantPath string
		wantMsg  string
	}{
		{"text rewrite", "old", "new", "", ""},
		{"bullet wording", []any{exp("Acme", "a", "b")}, []any{exp("Acme", "A", "B")}, "", ""},
		{"bullet dropped", []any{exp("Acme", "a", "b")}, []any{exp("Acme", "a")}, "experiences[0].bullets", "list length changed from 2 to 1"},
		{"entry added", []any{exp("Acme")}, []any{exp("Acme"), exp("Beta")}, "experiences", "list length changed"},
		{
			"key added",
			[]any{exp("Acme")},
			[]any{map[string]any{"organization": "Acme", "bullets": []any{}, "title": "x"}},
			"experiences[0]", "keys added: [title]",
		},
		{
			"key removed",
			[]any{exp("Acme")},
			[]any{map[string]any{"organization": "Acme"}},
			"experiences[0]", "keys removed: [bullets]",
		},
		{"list collapsed to text", []any{exp("Acme", "a")}, []any{map[string]any{"organization": "Acme", "bullets": "a"}}, "experiences[0].bullets", "kind changed from list to text"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CheckStrict("experiences", tt.before, tt.after)
			if tt.wantPath == "" {
				assert.NoError(t, err)
				return
			}
			var sv *StrictViolationError
			require.ErrorAs(t, err, &sv)
			assert.Equal(t, tt.wantPath, sv.Path)
			assert.Contains(t, sv.Message, tt.wantMsg)
		})
	}
}
