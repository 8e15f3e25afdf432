package editing

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// EntryKeys names the identifier and date fields of an entry-list section
type EntryKeys struct {
	Section     string
	Identifiers []string
	Dates       []string
}

var (
	experienceKeys = EntryKeys{Section: "experiences", Identifiers: []string{"organization", "company", "title"}, Dates: []string{"dates", "date_range", "end_date", "start_date"}}
	projectKeys    = EntryKeys{Section: "projects", Identifiers: []string{"name"}, Dates: []string{"dates", "date_range"}}
	educationKeys  = EntryKeys{Section: "education", Identifiers: []string{"institution", "school"}, Dates: []string{"dates", "date_range"}}
)

var (
	entrySwapRe   = regexp.MustCompile(`(?i)\bswap\s+(?:the\s+|my\s+)?(\S+)(?:\s+[a-z]+)?\s+and\s+(?:the\s+|my\s+)?(\S+)(?:\s+[a-z]+)?\s*[.!]?\s*$`)
	entryMoveRe   = regexp.MustCompile(`(?i)\bmove\s+(.+?)\s+to\s+(?:the\s+)?(top|front|beginning|start|bottom|end)\b`)
	entryRemoveRe = regexp.MustCompile(`(?i)^\s*(?:please\s+)?(?:remove|delete|drop)\s+(.+?)\s*[.!]?\s*$`)
	entrySortRe   = regexp.MustCompile(`(?i)\b((?:most\s+recent|newest|latest)\s+(?:[\w'-]+\s+){0,2}?first|reverse[\s-]+chronological)\b`)
	yearRe        = regexp.MustCompile(`\b(19|20)\d{2}\b`)
	presentRe     = regexp.MustCompile(`(?i)\b(present|current|now|ongoing)\b`)
)

// EntryEditor returns an editor for ordered entry lists: swap, move to top or
// bottom, remove by position or identifier, and most-recent-first ordering.
// Entries are only reordered or removed, never invented.
func EntryEditor(keys EntryKeys) Editor {
	return func(request string, content any) (Result, bool, error) {
		entries, ok := content.([]any)
		if !ok {
			if entrySwapRe.MatchString(request) || entryMoveRe.MatchString(request) || entrySortRe.MatchString(request) {
				_, err := listContent(keys.Section, content)
				return Result{}, true, err
			}
			return Result{}, false, nil
		}

		if m := entrySwapRe.FindStringSubmatch(request); m != nil {
			i, okI := parseOrdinal(m[1], len(entries))
			j, okJ := parseOrdinal(m[2], len(entries))
			if !okI || !okJ {
				return Result{}, false, nil
			}
			out := append([]any{}, entries...)
			out[i], out[j] = out[j], out[i]
			return result("swap", entries, out), true, nil
		}

		if m := entryMoveRe.FindStringSubmatch(request); m != nil {
			i, ok := resolveEntry(m[1], entries, keys)
			if !ok {
				return Result{}, true, &Error{Section: keys.Section, Message: fmt.Sprintf("no entry matches %q", strings.TrimSpace(m[1]))}
			}
			where := strings.ToLower(m[2])
			out := moveIndex(append([]any{}, entries...), i, where == "bottom" || where == "end")
			return result("move", entries, out), true, nil
		}

		if entrySortRe.MatchString(request) {
			out := append([]any{}, entries...)
			sort.SliceStable(out, func(a, b int) bool {
				return latestYear(out[a], keys.Dates) > latestYear(out[b], keys.Dates)
			})
			return result("sort", entries, out), true, nil
		}

		if m := entryRemoveRe.FindStringSubmatch(request); m != nil {
			i, ok := resolveEntry(m[1], entries, keys)
			if !ok {
				// e.g. "remove the bullet about X" is a rewrite, not a structural removal
				return Result{}, false, nil
			}
			out := append(append([]any{}, entries[:i]...), entries[i+1:]...)
			return result("remove", entries, out), true, nil
		}
		return Result{}, false, nil
	}
}

func resolveEntry(phrase string, entries []any, keys EntryKeys) (int, bool) {
	if i, ok := ordinalTarget(phrase, len(entries)); ok {
		return i, true
	}
	if i, ok := identifierTarget(phrase, entries, keys.Identifiers); ok {
		return i, true
	}
	return recencyTarget(phrase, entries, keys.Dates)
}

// recencyTarget resolves "most recent", "latest" or "oldest" to the entry with
// the newest or oldest dates. Ties go to the earlier entry.
func recencyTarget(phrase string, entries []any, dateKeys []string) (int, bool) {
	newest := true
	switch strings.Join(phraseWords(phrase), " ") {
	case "most recent", "latest", "newest", "current":
	case "oldest", "earliest", "least recent":
		newest = false
	default:
		return 0, false
	}
	if len(entries) == 0 {
		return 0, false
	}
	best, bestYear := 0, latestYear(entries[0], dateKeys)
	for i := 1; i < len(entries); i++ {
		y := latestYear(entries[i], dateKeys)
		if (newest && y > bestYear) || (!newest && y < bestYear) {
			best, bestYear = i, y
		}
	}
	return best, true
}

// latestYear returns the newest year mentioned in an entry's date fields.
// Ongoing entries rank above every dated one.
func latestYear(item any, dateKeys []string) int {
	entry, ok := item.(map[string]any)
	if !ok {
		return 0
	}
	latest := 0
	var scan func(v any)
	scan = func(v any) {
		switch t := v.(type) {
		case string:
			if presentRe.MatchString(t) {
				latest = 9999
				return
			}
			for _, y := range yearRe.FindAllString(t, -1) {
				if n, err := strconv.Atoi(y); err == nil && n > latest {
					latest = n
				}
			}
		case map[string]any:
			for _, inner := range t {
				scan(inner)
			}
		}
	}
	for _, k := range dateKeys {
		if v, ok := entry[k]; ok {
			scan(v)
		}
	}
	return latest
}

var clearProjectsRe = regexp.MustCompile(`(?i)\b(?:remove|delete|drop|clear)\s+(?:the\s+|my\s+|all\s+)?(?:additional\s+info(?:rmation)?|projects)(?:\s+section)?\s*[.!]?\s*$`)

// ClearProjects empties the projects list for "remove the additional info
// section" style requests.
func ClearProjects(request string, content any) (Result, bool, error) {
	if !clearProjectsRe.MatchString(request) {
		return Result{}, false, nil
	}
	items, err := listContent(projectKeys.Section, content)
	if err != nil {
		return Result{}, true, err
	}
	return result("clear", items, []any{}), true, nil
}
