package classify

import (
	"fmt"
	"regexp"
)

// Scope names the reason a request falls outside content editing
type Scope string

// Scope constants
const (
	ScopeStructural Scope = "structural"
	ScopeMarkup     Scope = "markup"
)

// ScopeError reports a request that edits presentation instead of content
type ScopeError struct {
	Scope   Scope
	Matched string
}

func (e *ScopeError) Error() string {
	switch e.Scope {
	case ScopeStructural:
		return fmt.Sprintf("structural and layout edits are not supported through this path (request mentions %q)", e.Matched)
	default:
		return fmt.Sprintf("markup edits are not supported through this path; it edits content, not presentation markup (request mentions %q)", e.Matched)
	}
}

const presentationNoun = `(?:templates?|layouts?|fonts?|typefaces?|margins?)`

var (
	// Template, layout, font and margin words only count when the request acts
	// on them ("change the template", "use a smaller font", "my layout"), so a
	// skill such as "Go templates" still passes.
	structuralRe = regexp.MustCompile(`(?i)(?:` +
		`\b(?:change|modify|alter|switch|swap|use|adjust|tweak|increase|decrease|reduce|shrink|enlarge|widen|narrow|make|set|fix)\b(?:\s+[\w'-]+){0,3}?\s+` + presentationNoun + `\b` +
		`|\b(?:the|my|this|resume|résumé|page)\s+(?:[\w'-]+\s+)?` + presentationNoun + `\b` +
		`|\b(?:smaller|larger|bigger|different|new|serif|sans[\s-]serif|monospace)\s+` + presentationNoun + `\b` +
		`|\b` + presentationNoun + `\s+(?:size|sizes|spacing|change)\b` +
		`|\b(?:typeset(?:ting)?|pdflatex|xelatex|documentclass|page\s+size|two[\s-]+columns?|line\s+spacing)\b)`)

	markupRe = regexp.MustCompile(`(?i)(\b(?:la)?tex\b|\\[a-zA-Z]+|\bmacros?\b|\bmarkup\b|</?[a-z][a-z0-9]*\s*/?>)`)
)

// CheckScope rejects requests that target the rendering template or the
// output markup. It runs before classification.
func CheckScope(request string) error {
	if m := structuralRe.FindString(request); m != "" {
		return &ScopeError{Scope: ScopeStructural, Matched: m}
	}
	if m := markupRe.FindString(request); m != "" {
		return &ScopeError{Scope: ScopeMarkup, Matched: m}
	}
	return nil
}
