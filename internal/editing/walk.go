package editing

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/jonathan/resume-editor/internal/types"
)

// Walk returns a copy of v with fn applied to every string leaf, at any depth
// of nested mappings and sequences, plus the paths of the leaves fn changed.
func Walk(path string, v any, fn func(string) string) (any, []string) {
	switch t := v.(type) {
	case string:
		out := fn(t)
		if out != t {
			return out, []string{path}
		}
		return t, nil
	case map[string]any:
		out := make(map[string]any, len(t))
		var changed []string
		for k, inner := range t {
			nv, paths := Walk(path+"."+k, inner, fn)
			out[k] = nv
			changed = append(changed, paths...)
		}
		return out, changed
	case []any:
		out := make([]any, len(t))
		var changed []string
		for i, inner := range t {
			nv, paths := Walk(fmt.Sprintf("%s[%d]", path, i), inner, fn)
			out[i] = nv
			changed = append(changed, paths...)
		}
		return out, changed
	default:
		return v, nil
	}
}

// Character classes stripped from header strings
const (
	PipeClass      = "|"
	SeparatorClass = "|•·¦"
)

var (
	stripVerbRe       = regexp.MustCompile(`(?i)\b(remove|strip|delete|drop|get\s+rid\s+of|take\s+out|eliminate|clean\s+up)\b`)
	pipeTargetRe      = regexp.MustCompile(`(?i)(\bpipes?\b|\bvertical\s+bars?\b|\|)`)
	separatorTargetRe = regexp.MustCompile(`(?i)\b(separators?|dividers?|bullets?\s+separators?|middle\s+dots?)\b|[•·¦]`)
)

// StripHeader removes a character class from every string in the header tree.
func StripHeader(request string, content any) (Result, bool, error) {
	if !stripVerbRe.MatchString(request) {
		return Result{}, false, nil
	}
	var class string
	switch {
	case separatorTargetRe.MatchString(request):
		class = SeparatorClass
	case pipeTargetRe.MatchString(request):
		class = PipeClass
	default:
		return Result{}, false, nil
	}

	if _, ok := content.(map[string]any); !ok {
		return Result{}, true, &Error{Section: types.SectionHeader, Message: fmt.Sprintf("expected a mapping, got %s", types.KindOf(content))}
	}

	out, paths := Walk(types.SectionHeader, content, func(s string) string {
		if !strings.ContainsAny(s, class) {
			return s
		}
		return strings.TrimSpace(strings.Map(func(r rune) rune {
			if strings.ContainsRune(class, r) {
				return -1
			}
			return r
		}, s))
	})
	sort.Strings(paths)
	res := result("strip", content, out)
	res.ChangedPaths = paths
	return res, true, nil
}
