package editing

import (
	"regexp"
	"strings"

	"github.com/jonathan/resume-editor/internal/types"
)

const skillsSuffix = `(?:\s+(?:to|into|in|from|of)\s+(?:my\s+|the\s+)?(?:technical\s+|core\s+)?skills?(?:\s+(?:list|section))?)?`

var (
	skillsAddRe    = regexp.MustCompile(`(?i)^\s*(?:please\s+)?(?:add|include|append|insert)\s+(.+?)` + skillsSuffix + `\s*[.!]?\s*$`)
	skillsRemoveRe = regexp.MustCompile(`(?i)^\s*(?:please\s+)?(?:remove|drop|delete|take\s+out)\s+(.+?)` + skillsSuffix + `\s*[.!]?\s*$`)
	skillsMoveRe   = regexp.MustCompile(`(?i)^\s*(?:please\s+)?move\s+(.+?)\s+to\s+the\s+(top|front|beginning|start|bottom|end)` + skillsSuffix + `\s*[.!]?\s*$`)
)

// EditSkills adds, removes or moves skill tokens. Comparison is case-insensitive
// and item order is otherwise preserved.
func EditSkills(request string, content any) (Result, bool, error) {
	var op string
	var m []string
	switch {
	case skillsMoveRe.MatchString(request):
		op, m = "move", skillsMoveRe.FindStringSubmatch(request)
	case skillsAddRe.MatchString(request):
		op, m = "add", skillsAddRe.FindStringSubmatch(request)
	case skillsRemoveRe.MatchString(request):
		op, m = "remove", skillsRemoveRe.FindStringSubmatch(request)
	default:
		return Result{}, false, nil
	}

	items, err := listContent(types.SectionSkills, content)
	if err != nil {
		return Result{}, true, err
	}

	var out []any
	switch op {
	case "add":
		out = addSkills(items, splitItems(m[1]))
	case "remove":
		out = removeSkills(items, splitItems(m[1]))
	case "move":
		out = moveSkill(items, strings.TrimSpace(m[1]), strings.ToLower(m[2]))
	}
	return result(op, items, out), true, nil
}

// skillAliases maps case-folded spelling variants to one canonical key, so
// "add golang" is a no-op on a list that already holds "Go".
var skillAliases = map[string]string{
	"golang":   "go",
	"go lang":  "go",
	"js":       "javascript",
	"ts":       "typescript",
	"k8s":      "kubernetes",
	"react.js": "react",
	"reactjs":  "react",
	"vue.js":   "vue",
	"vuejs":    "vue",
	"nodejs":   "node.js",
	"node":     "node.js",
	"postgres": "postgresql",
	"gcp":      "google cloud",
}

// skillKey returns the comparison key for a skill token. The token itself is
// never rewritten.
func skillKey(name string) string {
	f := fold(name)
	if canonical, ok := skillAliases[f]; ok {
		return canonical
	}
	return f
}

func indexOfSkill(items []any, name string) int {
	key := skillKey(name)
	for i, item := range items {
		if s, ok := item.(string); ok && skillKey(s) == key {
			return i
		}
	}
	return -1
}

func addSkills(items []any, names []string) []any {
	out := append([]any{}, items...)
	for _, name := range names {
		if indexOfSkill(out, name) < 0 {
			out = append(out, name)
		}
	}
	return out
}

func removeSkills(items []any, names []string) []any {
	out := append([]any{}, items...)
	for _, name := range names {
		if i := indexOfSkill(out, name); i >= 0 {
			out = append(out[:i:i], out[i+1:]...)
		}
	}
	return out
}

func moveSkill(items []any, name, where string) []any {
	out := append([]any{}, items...)
	i := indexOfSkill(out, strings.Trim(name, `"'`))
	if i < 0 {
		return out
	}
	return moveIndex(out, i, where == "bottom" || where == "end")
}

// moveIndex moves element i to the front, or to the back when toEnd is set.
func moveIndex(items []any, i int, toEnd bool) []any {
	item := items[i]
	rest := append(append([]any{}, items[:i]...), items[i+1:]...)
	if toEnd {
		return append(rest, item)
	}
	return append([]any{item}, rest...)
}
