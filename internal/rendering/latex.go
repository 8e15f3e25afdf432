// Package rendering provides functionality to render LaTeX resumes from templates.
package rendering

import (
	"embed"
	"fmt"
	"os"
	"sort"
	"strings"
	"text/template"

	"github.com/jonathan/resume-editor/internal/types"
)

//go:embed templates/*.tex.tmpl
var templateFS embed.FS

const (
	defaultResumeTemplate      = "templates/resume.tex.tmpl"
	defaultCoverLetterTemplate = "templates/cover_letter.tex.tmpl"
)

// TemplateData represents the data structure passed to the resume template.
// Every string is already LaTeX-escaped.
type TemplateData struct {
	HasHeader   bool
	Name        string
	TitleLine   string
	Contact     []string
	Links       []string
	Summary     string
	Experiences []EntrySection
	Projects    []EntrySection
	Skills      []string
	Education   []EntrySection
}

// EntrySection is one rendered experience, project or education entry
type EntrySection struct {
	Heading    string
	Subheading string
	Dates      string
	Bullets    []string
}

// CoverLetterData represents the data passed to the cover letter template
type CoverLetterData struct {
	Name       string
	Paragraphs []string
}

var funcs = template.FuncMap{
	"escape": EscapeLaTeX,
	"join":   strings.Join,
}

// ParseTemplate reads and parses a LaTeX template file. An empty path selects
// the embedded default named by fallback.
func ParseTemplate(templatePath, fallback string) (*template.Template, error) {
	var content []byte
	var err error
	if templatePath == "" {
		content, err = templateFS.ReadFile(fallback)
		templatePath = fallback
	} else {
		content, err = os.ReadFile(templatePath)
	}
	if err != nil {
		if os.IsNotExist(err) {
			return nil, &TemplateError{
				Message: fmt.Sprintf("template file not found: %s", templatePath),
				Cause:   err,
			}
		}
		return nil, &TemplateError{
			Message: fmt.Sprintf("failed to read template file: %s", templatePath),
			Cause:   err,
		}
	}

	tmpl, err := template.New("resume").Option("missingkey=error").Funcs(funcs).Parse(string(content))
	if err != nil {
		return nil, &TemplateError{
			Message: "failed to parse template",
			Cause:   err,
		}
	}
	return tmpl, nil
}

// Execute renders tmpl with data.
func Execute(tmpl *template.Template, data any) (string, error) {
	var result strings.Builder
	if err := tmpl.Execute(&result, data); err != nil {
		return "", &TemplateError{
			Message: "failed to execute template",
			Cause:   err,
		}
	}
	return result.String(), nil
}

// BuildTemplateData converts a document into resume template data. Sections
// whose content has the wrong kind fail with a RenderError.
func BuildTemplateData(doc types.Document) (*TemplateData, error) {
	data := &TemplateData{}

	if raw, ok := doc[types.SectionHeader]; ok {
		header, ok := raw.(map[string]any)
		if !ok {
			return nil, &RenderError{Message: "header must be a mapping"}
		}
		data.HasHeader = true
		data.Name = EscapeLaTeX(stringField(header, "name"))
		data.TitleLine = EscapeLaTeX(stringField(header, "title_line", "title"))
		data.Contact = contactItems(header)
		data.Links = linkItems(header["links"])
	}

	if raw, ok := doc[types.SectionSummary]; ok {
		s, ok := raw.(string)
		if !ok {
			return nil, &RenderError{Message: "summary must be text"}
		}
		data.Summary = EscapeLaTeX(s)
	}

	if raw, ok := doc[types.SectionSkills]; ok {
		items, ok := raw.([]any)
		if !ok {
			return nil, &RenderError{Message: "skills must be a list"}
		}
		for _, item := range items {
			data.Skills = append(data.Skills, EscapeLaTeX(fmt.Sprint(item)))
		}
	}

	var err error
	if data.Experiences, err = entrySections(doc, types.SectionExperiences,
		[]string{"organization", "company"}, []string{"title", "role"}); err != nil {
		return nil, err
	}
	if data.Projects, err = entrySections(doc, types.SectionProjects,
		[]string{"name"}, []string{"description", "url"}); err != nil {
		return nil, err
	}
	if data.Education, err = entrySections(doc, types.SectionEducation,
		[]string{"institution", "school"}, []string{"credential", "degree"}); err != nil {
		return nil, err
	}
	return data, nil
}

// BuildCoverLetterData converts the cover letter section into template data.
// Paragraphs are separated by blank lines.
func BuildCoverLetterData(doc types.Document) (*CoverLetterData, error) {
	text, ok := doc[types.SectionCoverLetter].(string)
	if !ok {
		return nil, &RenderError{Message: "cover letter must be text"}
	}
	data := &CoverLetterData{}
	if header, ok := doc[types.SectionHeader].(map[string]any); ok {
		data.Name = EscapeLaTeX(stringField(header, "name"))
	}
	for _, p := range strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n\n") {
		if p = strings.TrimSpace(p); p != "" {
			data.Paragraphs = append(data.Paragraphs, EscapeLaTeX(p))
		}
	}
	return data, nil
}

func entrySections(doc types.Document, section string, headingKeys, subKeys []string) ([]EntrySection, error) {
	raw, ok := doc[section]
	if !ok {
		return nil, nil
	}
	items, ok := raw.([]any)
	if !ok {
		return nil, &RenderError{Message: fmt.Sprintf("%s must be a list", section)}
	}

	entries := make([]EntrySection, 0, len(items))
	for i, item := range items {
		entry, ok := item.(map[string]any)
		if !ok {
			return nil, &RenderError{Message: fmt.Sprintf("%s entry %d must be a mapping", section, i)}
		}
		es := EntrySection{
			Heading:    EscapeLaTeX(stringField(entry, headingKeys...)),
			Subheading: EscapeLaTeX(stringField(entry, subKeys...)),
			Dates:      EscapeLaTeX(formatDates(entry)),
		}
		if bullets, ok := entry["bullets"].([]any); ok {
			for _, b := range bullets {
				es.Bullets = append(es.Bullets, EscapeLaTeX(fmt.Sprint(b)))
			}
		}
		entries = append(entries, es)
	}
	return entries, nil
}

func stringField(m map[string]any, keys ...string) string {
	for _, k := range keys {
		if s, ok := m[k].(string); ok && s != "" {
			return s
		}
	}
	return ""
}

// formatDates renders "dates" or "date_range" given as text or a start/end mapping.
func formatDates(entry map[string]any) string {
	for _, key := range []string{"dates", "date_range"} {
		switch v := entry[key].(type) {
		case string:
			if v != "" {
				return v
			}
		case map[string]any:
			start, end := stringField(v, "start"), stringField(v, "end")
			switch {
			case start != "" && end != "":
				return start + " -- " + end
			case start != "":
				return start + " -- Present"
			case end != "":
				return end
			}
		}
	}
	return ""
}

func contactItems(header map[string]any) []string {
	var items []string
	for _, key := range []string{"email", "phone", "location"} {
		if s := stringField(header, key); s != "" {
			items = append(items, EscapeLaTeX(s))
		}
	}
	info, ok := header["contact_info"].(map[string]any)
	if !ok {
		return items
	}
	keys := make([]string, 0, len(info))
	for k := range info {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if s, ok := info[k].(string); ok && s != "" {
			items = append(items, EscapeLaTeX(s))
		}
	}
	return items
}

func linkItems(raw any) []string {
	links, ok := raw.([]any)
	if !ok {
		return nil
	}
	var out []string
	for _, l := range links {
		switch v := l.(type) {
		case string:
			out = append(out, EscapeLaTeX(v))
		case map[string]any:
			if s := stringField(v, "url", "label", "name"); s != "" {
				out = append(out, EscapeLaTeX(s))
			}
		}
	}
	return out
}

// CheckBalanced reports an error when the rendered source has unbalanced braces.
// Escaped braces (\{ and \}) are ignored.
func CheckBalanced(source string) error {
	depth := 0
	escaped := false
	for i, r := range source {
		if escaped {
			escaped = false
			continue
		}
		switch r {
		case '\\':
			escaped = true
		case '{':
			depth++
		case '}':
			depth--
			if depth < 0 {
				return &RenderError{Message: fmt.Sprintf("unexpected closing brace at offset %d", i)}
			}
		}
	}
	if depth != 0 {
		return &RenderError{Message: fmt.Sprintf("%d unclosed brace(s)", depth)}
	}
	return nil
}
