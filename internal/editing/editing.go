// Package editing provides deterministic section editors: exact structural
// transformations applied without any generative call.
package editing

import (
	"fmt"

	"github.com/jonathan/resume-editor/internal/types"
)

// Result is the output of a deterministic edit
type Result struct {
	Content      any      // new section content; the input is never modified
	Changed      bool     // deep structural inequality between input and output
	ChangedPaths []string // leaf paths actually mutated, when the editor tracks them
	AllowEmpty   bool     // the request explicitly asked for removal of a text blob
	Operation    string   // e.g. "add", "remove", "strip"
}

// Editor applies a deterministic edit to one section's content. The bool is
// false when the request is outside the editor's repertoire.
type Editor func(request string, content any) (Result, bool, error)

// Named pairs an editor with the name used in logs and metrics
type Named struct {
	Name string
	Edit Editor
}

var registry = map[string][]Named{
	types.SectionSkills:      {{Name: "skills_list", Edit: EditSkills}},
	types.SectionExperiences: {{Name: "entries", Edit: EntryEditor(experienceKeys)}},
	types.SectionProjects: {
		{Name: "projects_clear", Edit: ClearProjects},
		{Name: "entries", Edit: EntryEditor(projectKeys)},
	},
	types.SectionEducation:   {{Name: "entries", Edit: EntryEditor(educationKeys)}},
	types.SectionHeader:      {{Name: "header_strip", Edit: StripHeader}},
	types.SectionSummary:     {{Name: "text", Edit: TextEditor(types.SectionSummary)}},
	types.SectionCoverLetter: {{Name: "text", Edit: TextEditor(types.SectionCoverLetter)}},
}

// For returns the deterministic editors registered for a section, most specific first.
func For(section string) []Named {
	return registry[section]
}

// Error reports a deterministic edit that could not be applied
type Error struct {
	Section string
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("edit error in %s: %s: %v", e.Section, e.Message, e.Cause)
	}
	return fmt.Sprintf("edit error in %s: %s", e.Section, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

func result(op string, before, after any) Result {
	return Result{Content: after, Changed: !types.Equal(before, after), Operation: op}
}

func listContent(section string, content any) ([]any, error) {
	items, ok := content.([]any)
	if !ok {
		return nil, &Error{Section: section, Message: fmt.Sprintf("expected a list, got %s", types.KindOf(content))}
	}
	return items, nil
}
