// Package observability provides metrics and formatted output utilities for
// verbose CLI mode.
package observability

import (
	"fmt"
	"io"
	"strings"

	"github.com/jonathan/resume-editor/internal/types"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// maxItemsToShow is the default number of items to display in lists
	maxItemsToShow = 5
)

// Printer handles formatted output for verbose mode
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, shorten(title, boxWidth-4))
	fmt.Fprintf(p.out, "├%s┤\n", border)

	for _, line := range strings.Split(content, "\n") {
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, shorten(line, boxWidth-4))
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

func shorten(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}

// PrintOutcome outputs the status, changed sections and example changes of an edit.
func (p *Printer) PrintOutcome(outcome *types.EditOutcome) {
	if outcome == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Status:   %s\n", outcome.Status))
	if outcome.EditType != "" {
		sb.WriteString(fmt.Sprintf("Type:     %s\n", outcome.EditType))
	}
	if outcome.Editor != "" {
		sb.WriteString(fmt.Sprintf("Editor:   %s\n", outcome.Editor))
	}
	if outcome.State != "" {
		sb.WriteString(fmt.Sprintf("State:    %s\n", outcome.State))
	}
	if outcome.TransactionID != "" {
		sb.WriteString(fmt.Sprintf("Txn:      %s\n", outcome.TransactionID))
	}

	if len(outcome.ChangedSections) > 0 {
		sb.WriteString(fmt.Sprintf("Changed:  %s\n", strings.Join(outcome.ChangedSections, ", ")))
	}
	if outcome.Reason != "" {
		sb.WriteString(fmt.Sprintf("Reason:   %s\n", outcome.Reason))
	}
	if outcome.DiffSummary != nil {
		sb.WriteString("\n")
		sb.WriteString(diffLines(*outcome.DiffSummary))
	}

	title := "EDIT APPLIED"
	switch outcome.Status {
	case types.StatusNotPossible:
		title = "EDIT NOT POSSIBLE"
	case types.StatusNoChange:
		title = "NO CHANGE"
	}
	p.printBox(title, strings.TrimSuffix(sb.String(), "\n"))
}

// PrintDiff outputs the counts and examples of a diff summary.
func (p *Printer) PrintDiff(summary types.DiffSummary) {
	p.printBox("DIFF", strings.TrimSuffix(diffLines(summary), "\n"))
}

func diffLines(summary types.DiffSummary) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Diff: %s\n", summary.String()))
	if summary.Coarse {
		sb.WriteString("(coarse, document above size threshold)\n")
	}
	count := min(len(summary.Examples), maxItemsToShow)
	for i := 0; i < count; i++ {
		c := summary.Examples[i]
		switch c.Kind {
		case "added":
			sb.WriteString(fmt.Sprintf("  + %s: %s\n", c.Path, c.NewValue))
		case "removed":
			sb.WriteString(fmt.Sprintf("  - %s: %s\n", c.Path, c.OldValue))
		default:
			sb.WriteString(fmt.Sprintf("  ~ %s: %s -> %s\n", c.Path, c.OldValue, c.NewValue))
		}
	}
	return sb.String()
}

// PrintValidation outputs a validation report per section.
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) PrintValidation(reports []types.ValidationReport) {
	invalid := 0
	for _, r := range reports {
		if !r.Valid {
			invalid++
		}
	}
	if invalid == 0 {
		fmt.Fprintf(p.out, "┌%s┐\n", strings.Repeat("─", boxWidth-2))
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, fmt.Sprintf("✅ ALL %d SECTIONS VALID", len(reports)))
		fmt.Fprintf(p.out, "└%s┘\n", strings.Repeat("─", boxWidth-2))
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%d of %d sections invalid:\n\n", invalid, len(reports)))
	for _, r := range reports {
		if r.Valid {
			sb.WriteString(fmt.Sprintf("✓ %s\n", r.Section))
			continue
		}
		sb.WriteString(fmt.Sprintf("⚠ %s\n", r.Section))
		for _, e := range r.Errors {
			sb.WriteString(fmt.Sprintf("  %s\n", e))
		}
	}
	p.printBox("SCHEMA VALIDATION", strings.TrimSuffix(sb.String(), "\n"))
}
