package editing

import (
	"fmt"
	"regexp"
	"strings"
)

var (
	keepFirstRe  = regexp.MustCompile(`(?i)\b(?:keep|limit\s+(?:it|this)?\s*to|trim\s+(?:it|this)?\s*to|cut\s+(?:it|this)?\s*to)\s+(?:only\s+)?(?:the\s+)?(?:first\s+)?(\w+)\s+(sentences?|paragraphs?)\b`)
	sentenceRe   = regexp.MustCompile(`[^.!?]+(?:[.!?]+["')\]]*|$)`)
	paragraphSep = regexp.MustCompile(`\n\s*\n`)
	numberWords  = map[string]int{"one": 1, "two": 2, "three": 3, "four": 4, "five": 5, "six": 6}
)

// TextEditor returns an editor for text-blob sections: keep only the first N
// sentences or paragraphs, or remove the blob entirely.
func TextEditor(section string) Editor {
	label := strings.ReplaceAll(section, "_", `[\s_]+`)
	removeRe := regexp.MustCompile(`(?i)^\s*(?:please\s+)?(?:remove|delete|drop|clear)\s+(?:the\s+|my\s+)?(?:entire\s+|whole\s+|professional\s+)?` +
		label + `(?:\s+section)?(?:\s+entirely)?\s*[.!]?\s*$`)

	return func(request string, content any) (Result, bool, error) {
		removal := removeRe.MatchString(request)
		m := keepFirstRe.FindStringSubmatch(request)
		if !removal && m == nil {
			return Result{}, false, nil
		}

		text, ok := content.(string)
		if !ok {
			return Result{}, true, &Error{Section: section, Message: fmt.Sprintf("expected text, got %T", content)}
		}

		if removal {
			res := result("remove", text, "")
			res.AllowEmpty = true
			return res, true, nil
		}

		n, ok := countWord(m[1])
		if !ok {
			return Result{}, false, nil
		}
		var out string
		if strings.HasPrefix(strings.ToLower(m[2]), "paragraph") {
			out = firstParagraphs(text, n)
		} else {
			out = firstSentences(text, n)
		}
		return result("truncate", text, out), true, nil
	}
}

func countWord(w string) (int, bool) {
	w = strings.ToLower(w)
	if n, ok := numberWords[w]; ok {
		return n, true
	}
	var n int
	if _, err := fmt.Sscanf(w, "%d", &n); err != nil || n <= 0 {
		return 0, false
	}
	return n, true
}

func firstSentences(text string, n int) string {
	sentences := sentenceRe.FindAllString(strings.TrimSpace(text), -1)
	if len(sentences) <= n {
		return text
	}
	return strings.TrimSpace(strings.Join(sentences[:n], ""))
}

func firstParagraphs(text string, n int) string {
	paragraphs := paragraphSep.Split(strings.TrimSpace(text), -1)
	if len(paragraphs) <= n {
		return text
	}
	return strings.Join(paragraphs[:n], "\n\n")
}
