package editing

import (
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/text/cases"
)

// fold returns the Unicode case-folded, space-trimmed form of s. A Caser
// keeps state, so one is built per call.
func fold(s string) string {
	return cases.Fold().String(strings.TrimSpace(s))
}

func equalFold(a, b string) bool {
	return fold(a) == fold(b)
}

var ordinalWords = map[string]int{
	"first": 1, "second": 2, "third": 3, "fourth": 4, "fifth": 5,
	"sixth": 6, "seventh": 7, "eighth": 8, "ninth": 9, "tenth": 10,
	"top": 1, "1st": 1, "2nd": 2, "3rd": 3,
}

var numericOrdinal = regexp.MustCompile(`^#?(\d+)(?:st|nd|rd|th)?$`)

// parseOrdinal resolves an ordinal word to a zero-based index into a list of
// length n. "last" resolves to n-1. Returns false when out of range.
func parseOrdinal(word string, n int) (int, bool) {
	w := strings.ToLower(strings.TrimSpace(word))
	idx := -1
	switch {
	case w == "last" || w == "bottom" || w == "final":
		idx = n - 1
	case ordinalWords[w] > 0:
		idx = ordinalWords[w] - 1
	default:
		if m := numericOrdinal.FindStringSubmatch(w); m != nil {
			if v, err := strconv.Atoi(m[1]); err == nil {
				idx = v - 1
			}
		}
	}
	if idx < 0 || idx >= n {
		return 0, false
	}
	return idx, true
}

// fillerWords are dropped from a target phrase before it is compared with
// entry identifiers.
var fillerWords = map[string]bool{
	"the": true, "my": true, "a": true, "an": true, "entry": true, "entries": true,
	"experience": true, "experiences": true, "job": true, "role": true, "position": true,
	"project": true, "projects": true, "education": true, "degree": true, "section": true,
	"item": true, "one": true, "from": true, "in": true, "on": true, "resume": true, "résumé": true,
	"list": true, "work": true, "history": true, "at": true,
}

var wordSplit = regexp.MustCompile(`[\s,.!?;:"']+`)

// phraseWords returns the meaningful words of a target phrase.
func phraseWords(phrase string) []string {
	var out []string
	for _, w := range wordSplit.Split(fold(phrase), -1) {
		if w != "" && !fillerWords[w] {
			out = append(out, w)
		}
	}
	return out
}

// ordinalTarget reports whether the phrase is just an ordinal plus filler words,
// such as "the second experience" or "my last project".
func ordinalTarget(phrase string, n int) (int, bool) {
	words := phraseWords(phrase)
	if len(words) != 1 {
		return 0, false
	}
	return parseOrdinal(words[0], n)
}

// identifierTarget finds the single entry whose identifier matches the phrase
// once filler words are removed.
func identifierTarget(phrase string, entries []any, keys []string) (int, bool) {
	words := phraseWords(phrase)
	if len(words) == 0 {
		return 0, false
	}
	target := strings.Join(words, " ")

	found := -1
	for i, item := range entries {
		entry, ok := item.(map[string]any)
		if !ok {
			continue
		}
		for _, k := range keys {
			id, ok := entry[k].(string)
			if !ok || id == "" {
				continue
			}
			if strings.Join(phraseWords(id), " ") == target {
				if found >= 0 && found != i {
					return 0, false
				}
				found = i
				break
			}
		}
	}
	return found, found >= 0
}

// splitItems splits "A, B and C" into trimmed items with surrounding quotes removed.
func splitItems(s string) []string {
	s = strings.ReplaceAll(s, " and ", ",")
	s = strings.ReplaceAll(s, " & ", ",")
	var out []string
	for _, part := range strings.Split(s, ",") {
		part = strings.Trim(strings.TrimSpace(part), `"'`+"`“”‘’")
		part = strings.TrimSpace(strings.TrimPrefix(part, "and "))
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}
