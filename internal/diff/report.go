package diff

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/jonathan/resume-editor/internal/types"
	"github.com/pmezard/go-difflib/difflib"
)

// MaxReportLength is the character budget of a human-readable report
const MaxReportLength = 2000

const truncationMarker = "\n... (truncated)"

// Format renders a summary as display text.
func Format(summary types.DiffSummary) string {
	var sb strings.Builder
	sb.WriteString("Changes: ")
	sb.WriteString(summary.String())
	if summary.Coarse {
		sb.WriteString(" (top-level comparison)")
	}
	for _, c := range summary.Examples {
		switch c.Kind {
		case KindAdded:
			fmt.Fprintf(&sb, "\n  + %s: %s", c.Path, c.NewValue)
		case KindRemoved:
			fmt.Fprintf(&sb, "\n  - %s: %s", c.Path, c.OldValue)
		default:
			fmt.Fprintf(&sb, "\n  ~ %s\n    Old: %s\n    New: %s", c.Path, c.OldValue, c.NewValue)
		}
	}
	return sb.String()
}

// Report renders the summary followed by a unified diff of each changed
// section, truncated to MaxReportLength characters.
func Report(before, after types.Document, sections []string, summary types.DiffSummary) string {
	var sb strings.Builder
	sb.WriteString(Format(summary))

	for _, section := range sections {
		ud := difflib.UnifiedDiff{
			A:        difflib.SplitLines(indent(before[section], before.Has(section))),
			B:        difflib.SplitLines(indent(after[section], after.Has(section))),
			FromFile: "before/" + section,
			ToFile:   "after/" + section,
			Context:  1,
		}
		text, err := difflib.GetUnifiedDiffString(ud)
		if err != nil || text == "" {
			continue
		}
		sb.WriteString("\n\n")
		sb.WriteString(text)
	}

	out := sb.String()
	if len(out) > MaxReportLength {
		out = truncateBytes(out, MaxReportLength-len(truncationMarker)) + truncationMarker
	}
	return out
}

func indent(v any, present bool) string {
	if !present {
		return ""
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Sprint(v)
	}
	return string(data) + "\n"
}

// truncateBytes cuts s to at most n bytes without splitting a rune.
func truncateBytes(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !isRuneStart(s[n]) {
		n--
	}
	return s[:n]
}

func isRuneStart(b byte) bool {
	return b&0xC0 != 0x80
}
