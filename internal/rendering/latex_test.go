package rendering

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/jonathan/resume-editor/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleDocument() types.Document {
	return types.Document{
		"header": map[string]any{
			"name":         "Jane Doe",
			"title_line":   "Backend Engineer | Go & Postgres",
			"contact_info": map[string]any{"email": "jane@example.com", "phone": "555-0100"},
			"links":        []any{"github.com/jane", map[string]any{"url": "jane.dev"}},
		},
		"summary": "Engineer with 10% more coffee.",
		"experiences": []any{
			map[string]any{
				"organization": "Acme",
				"title":        "Senior Engineer",
				"dates":        map[string]any{"start": "2021"},
				"bullets":      []any{"Built services_v2", "Cut costs by $1M"},
			},
		},
		"projects": []any{map[string]any{"name": "resume-editor", "description": "CLI"}},
		"skills":   []any{"Go", "C#"},
		"education": []any{
			map[string]any{"institution": "MIT", "credential": "BS", "dates": "2010 -- 2014"},
		},
	}
}

func TestParseTemplate_Embedded(t *testing.T) {
	tmpl, err := ParseTemplate("", defaultResumeTemplate)
	require.NoError(t, err)
	assert.NotNil(t, tmpl)
}

func TestParseTemplate_InvalidPath(t *testing.T) {
	_, err := ParseTemplate("/nonexistent/template.tex", defaultResumeTemplate)
	var templateErr *TemplateError
	require.ErrorAs(t, err, &templateErr)
	assert.Contains(t, err.Error(), "template file not found")
}

func TestParseTemplate_InvalidTemplate(t *testing.T) {
	templatePath := filepath.Join(t.TempDir(), "invalid.tex")
	require.NoError(t, os.WriteFile(templatePath, []byte(`{{.InvalidSyntax{{}}`), 0644))

	_, err := ParseTemplate(templatePath, defaultResumeTemplate)
	var templateErr *TemplateError
	assert.ErrorAs(t, err, &templateErr)
}

func TestBuildTemplateData(t *testing.T) {
	data, err := BuildTemplateData(sampleDocument())
	require.NoError(t, err)

	assert.True(t, data.HasHeader)
	assert.Equal(t, "Jane Doe", data.Name)
	assert.Equal(t, `Backend Engineer | Go \& Postgres`, data.TitleLine)
	assert.Equal(t, []string{"jane@example.com", "555-0100"}, data.Contact)
	assert.Equal(t, []string{"github.com/jane", "jane.dev"}, data.Links)
	assert.Equal(t, `Engineer with 10\% more coffee.`, data.Summary)
	assert.Equal(t, []string{"Go", `C\#`}, data.Skills)

	require.Len(t, data.Experiences, 1)
	exp := data.Experiences[0]
	assert.Equal(t, "Acme", exp.Heading)
	assert.Equal(t, "Senior Engineer", exp.Subheading)
	assert.Equal(t, "2021 -- Present", exp.Dates)
	assert.Equal(t, []string{`Built services\_v2`, `Cut costs by \$1M`}, exp.Bullets)

	require.Len(t, data.Projects, 1)
	assert.Equal(t, "CLI", data.Projects[0].Subheading)
	require.Len(t, data.Education, 1)
	assert.Equal(t, "2010 -- 2014", data.Education[0].Dates)
}

func TestBuildTemplateData_WrongKinds(t *testing.T) {
	tests := []struct {
		name string
		doc  types.Document
	}{
		{"summary as list", types.Document{"summary": []any{"x"}}},
		{"skills as text", types.Document{"skills": "Go, SQL"}},
		{"header as text", types.Document{"header": "Jane"}},
		{"experiences entry as text", types.Document{"experiences": []any{"Acme"}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := BuildTemplateData(tt.doc)
			var renderErr *RenderError
			assert.ErrorAs(t, err, &renderErr)
		})
	}
}

func TestBuildCoverLetterData_SplitsParagraphs(t *testing.T) {
	doc := types.Document{
		"header":       map[string]any{"name": "Jane"},
		"cover_letter": "Dear team,\n\nI build things.\r\n\r\nThanks & regards",
	}
	data, err := BuildCoverLetterData(doc)
	require.NoError(t, err)
	assert.Equal(t, "Jane", data.Name)
	assert.Equal(t, []string{"Dear team,", "I build things.", `Thanks \& regards`}, data.Paragraphs)
}

func TestCheckBalanced(t *testing.T) {
	assert.NoError(t, CheckBalanced(`\textbf{a} \{ literal`))
	assert.Error(t, CheckBalanced(`\textbf{a`))
	assert.Error(t, CheckBalanced(`a}`))
}
