package validation

import (
	"testing"

	"github.com/jonathan/resume-editor/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name       string
		section    string
		content    any
		opts       *Options
		wantValid  bool
		wantSubstr string
	}{
		{"summary text", "summary", "Backend engineer.", nil, true, ""},
		{"summary empty", "summary", "  ", nil, false, "summary cannot be empty"},
		{"summary empty allowed", "summary", "", &Options{AllowEmpty: true}, true, ""},
		{"summary as list", "summary", []any{"x"}, nil, false, ""},
		{"cover letter empty", "cover_letter", "", nil, false, "cover letter cannot be empty"},
		{"skills list", "skills", []any{"Go", "SQL"}, nil, true, ""},
		{"skills blank token", "skills", []any{"Go", "   "}, nil, false, "skill 1 cannot be blank"},
		{"skills as text", "skills", "Go, SQL", nil, false, ""},
		{
			"experience with organization", "experiences",
			[]any{map[string]any{"organization": "Acme", "bullets": []any{"Built X"}}}, nil, true, "",
		},
		{
			"experience with company", "experiences",
			[]any{map[string]any{"company": "Acme"}}, nil, true, "",
		},
		{
			"experience missing identifier", "experiences",
			[]any{map[string]any{"title": "Engineer"}}, nil, false, "missing required 'organization' or 'company'",
		},
		{
			"project missing name", "projects",
			[]any{map[string]any{"description": "CLI"}}, nil, false, "project 0 missing required 'name'",
		},
		{
			"education complete", "education",
			[]any{map[string]any{"school": "MIT", "degree": "BS", "dates": map[string]any{"end": "2014"}}}, nil, true, "",
		},
		{
			"education missing dates", "education",
			[]any{map[string]any{"institution": "MIT", "credential": "BS"}}, nil, false, "missing required date range",
		},
		{"header ok", "header", map[string]any{"title_line": "A | B", "email": "a@b.co"}, nil, true, ""},
		{"header empty title", "header", map[string]any{"title_line": ""}, nil, false, "header 'title_line' cannot be empty"},
		{
			"header nested bad email", "header",
			map[string]any{"contact_info": map[string]any{"email": "not-an-email"}}, nil, false, "header.contact_info.email has invalid format",
		},
		{"header as text", "header", "A | B", nil, false, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			report := Validate(tt.section, tt.content, tt.opts)
			assert.Equal(t, tt.section, report.Section)
			assert.Equal(t, tt.wantValid, report.Valid, report.Summary())
			if tt.wantValid {
				assert.Empty(t, report.Errors)
				return
			}
			require.NotEmpty(t, report.Errors)
			if tt.wantSubstr != "" {
				assert.Contains(t, report.Summary(), tt.wantSubstr)
			}
		})
	}
}

func TestValidate_UnknownSectionIsValid(t *testing.T) {
	report := Validate("hobbies", []any{"chess"}, nil)
	assert.True(t, report.Valid)
}

func TestValidate_DoesNotMutate(t *testing.T) {
	content := []any{map[string]any{"organization": "Acme", "bullets": []any{"a"}}}
	before, err := types.CloneValue(content)
	require.NoError(t, err)

	Validate("experiences", content, nil)
	assert.True(t, types.Equal(before, content))
}

func TestValidateDocument(t *testing.T) {
	doc := types.Document{
		"summary": "ok",
		"skills":  []any{""},
	}
	reports := ValidateDocument(doc, nil)
	require.Len(t, reports, 2)
	assert.Equal(t, "skills", reports[0].Section)
	assert.False(t, reports[0].Valid)
	assert.Equal(t, "summary", reports[1].Section)
	assert.True(t, reports[1].Valid)
}

func TestReportError(t *testing.T) {
	assert.NoError(t, ReportError(types.ValidationReport{Section: "summary", Valid: true}))

	err := ReportError(types.ValidationReport{Section: "summary", Errors: []string{"summary cannot be empty"}})
	var vErr *Error
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "summary", vErr.Section)
	assert.Contains(t, err.Error(), "summary cannot be empty")
}
