// Package classify maps free-text edit requests to the section they target
// and rejects requests outside the content-editing scope.
package classify

import (
	"regexp"
	"strings"

	"github.com/jonathan/resume-editor/internal/types"
)

type group struct {
	editType types.EditType
	patterns []*regexp.Regexp
}

func words(exprs ...string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, 0, len(exprs))
	for _, e := range exprs {
		out = append(out, regexp.MustCompile(`(?i)`+e))
	}
	return out
}

// Positional phrases always mean the header, even when they name another
// section ("before the summary").
var headerPosition = words(
	`\btop\s+of\s+(?:the\s+)?(?:page|resume|résumé|document)\b`,
	`\b(?:before|above)\s+(?:the\s+|my\s+)?summary\b`,
	`\bfirst\s+page\b`,
)

// destination matches an explicit target such as "to my skills"; it beats the
// vocabulary in the request's object ("Add email marketing to my skills").
var destination = regexp.MustCompile(`(?i)\b(?:to|from|in|into|under)\s+(?:my\s+|the\s+)?` +
	`(skills?|tech(?:nical)?\s+stack|experiences?|work\s+history|projects?|education|summary|header)\b`)

var destinationTypes = map[string]types.EditType{
	"skill":           types.EditSkills,
	"skills":          types.EditSkills,
	"tech stack":      types.EditSkills,
	"technical stack": types.EditSkills,
	"experience":      types.EditExperiences,
	"experiences":     types.EditExperiences,
	"work history":    types.EditExperiences,
	"project":         types.EditProjects,
	"projects":        types.EditProjects,
	"education":       types.EditEducation,
	"summary":         types.EditSummary,
	"header":          types.EditHeader,
}

// groups are checked in order; the first group with a matching pattern wins.
var groups = []group{
	{types.EditHeader, words(
		`\bheader\b`, `\btitle\s+line\b`, `\bcontact(?:\s+info(?:rmation)?)?\b`,
		`\bphone\b`, `\be-?mail\b`, `\blinkedin\b`,
		`\bpipes?\b`, `\bvertical\s+bars?\b`, `\|`, `\bseparators?\b`,
	)},
	{types.EditSummary, words(`\bsummary\b`, `\bprofile\b`, `\babout\s+me\b`, `\bobjective\b`)},
	{types.EditEducation, words(`\beducation\b`, `\bdegrees?\b`, `\buniversity\b`, `\bcollege\b`, `\bschool\b`, `\bgpa\b`)},
	{types.EditProjects, words(`\bprojects?\b`, `\badditional\s+info(?:rmation)?\b`, `\bgithub\b`, `\bportfolio\b`)},
	{types.EditSkills, words(`\bskills?\b`, `\btech(?:nical)?\s+stack\b`, `\btechnologies\b`)},
	{types.EditExperiences, words(
		`\bexperiences?\b`, `\bwork\s+history\b`, `\bemployment\b`, `\bjobs?\b`,
		`\broles?\b`, `\bpositions?\b`, `\bbullets?\b`, `\bcareer\b`,
	)},
}

var coverLetter = regexp.MustCompile(`(?i)\bcover[\s_-]*letter\b`)

// Classify resolves a request to the EditType it targets. The cover letter
// is checked first, then positional header phrases, then an explicit
// destination, then the section vocabulary. Matching is case-insensitive;
// EditUnknown means nothing matched.
func Classify(request string) types.EditType {
	if coverLetter.MatchString(request) {
		return types.EditCoverLetter
	}
	for _, p := range headerPosition {
		if p.MatchString(request) {
			return types.EditHeader
		}
	}
	if m := destination.FindStringSubmatch(request); m != nil {
		key := strings.Join(strings.Fields(strings.ToLower(m[1])), " ")
		if t, ok := destinationTypes[key]; ok {
			return t
		}
	}
	for _, g := range groups {
		for _, p := range g.patterns {
			if p.MatchString(request) {
				return g.editType
			}
		}
	}
	return types.EditUnknown
}

// SectionFor returns the document section key an EditType targets.
func SectionFor(t types.EditType) (string, bool) {
	if t == types.EditUnknown || t == "" {
		return "", false
	}
	section := string(t)
	_, ok := types.SectionShape(section)
	return section, ok
}

var (
	compoundSep = regexp.MustCompile(`(?i)\s*;\s*|\.\s+|\s+also\s+|\s+and\s+then\s+`)
	andSep      = regexp.MustCompile(`(?i)\s+and\s+`)
)

// SplitCompound splits a request that bundles several edits into its parts.
// A part joined by "and" is split further only when every piece targets a
// different known section, so "add Go and SQL to skills" stays whole.
func SplitCompound(request string) []string {
	var parts []string
	for _, p := range compoundSep.Split(request, -1) {
		p = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(p), "."))
		if p == "" {
			continue
		}
		parts = append(parts, splitOnAnd(p)...)
	}
	return parts
}

func splitOnAnd(part string) []string {
	pieces := andSep.Split(part, -1)
	if len(pieces) < 2 {
		return []string{part}
	}
	seen := make(map[types.EditType]bool, len(pieces))
	for _, piece := range pieces {
		t := Classify(piece)
		if t == types.EditUnknown || seen[t] {
			return []string{part}
		}
		seen[t] = true
	}
	for i := range pieces {
		pieces[i] = strings.TrimSpace(pieces[i])
	}
	return pieces
}
