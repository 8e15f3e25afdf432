package observability

import (
	"bytes"
	"errors"
	"testing"
	"time"

	"github.com/jonathan/resume-editor/internal/types"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestPrintOutcome_Applied(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintOutcome(&types.EditOutcome{
		OK:              true,
		Status:          types.StatusApplied,
		EditType:        types.EditSkills,
		Editor:          "skills_list",
		State:           "committed",
		ChangedSections: []string{"skills"},
		DiffSummary: &types.DiffSummary{
			AddedCount: 1,
			Examples:   []types.Change{{Path: "skills[2]", Kind: "added", NewValue: "AWS"}},
		},
	})
	output := buf.String()

	assert.Contains(t, output, "EDIT APPLIED")
	assert.Contains(t, output, "skills_list")
	assert.Contains(t, output, "Changed:  skills")
	assert.Contains(t, output, "1 added")
	assert.Contains(t, output, "+ skills[2]: AWS")
}

func TestPrintOutcome_NotPossible(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintOutcome(&types.EditOutcome{
		Status: types.StatusNotPossible,
		Reason: "required content block not found",
	})

	assert.Contains(t, buf.String(), "EDIT NOT POSSIBLE")
	assert.Contains(t, buf.String(), "required content block not found")
}

func TestPrintOutcome_Nil(t *testing.T) {
	var buf bytes.Buffer
	NewPrinter(&buf).PrintOutcome(nil)
	assert.Empty(t, buf.String())
}

func TestPrintDiff_Modified(t *testing.T) {
	var buf bytes.Buffer
	NewPrinter(&buf).PrintDiff(types.DiffSummary{
		ModifiedCount: 1,
		Coarse:        true,
		Examples:      []types.Change{{Path: "summary", Kind: "modified", OldValue: "a", NewValue: "b"}},
	})

	assert.Contains(t, buf.String(), "~ summary: a -> b")
	assert.Contains(t, buf.String(), "coarse")
}

func TestPrintValidation(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintValidation([]types.ValidationReport{
		{Section: "skills", Valid: true},
		{Section: "projects", Valid: false, Errors: []string{"project 0 missing required 'name' field"}},
	})
	output := buf.String()

	assert.Contains(t, output, "1 of 2 sections invalid")
	assert.Contains(t, output, "✓ skills")
	assert.Contains(t, output, "⚠ projects")
	assert.Contains(t, output, "missing required 'name'")
}

func TestPrintValidation_AllValid(t *testing.T) {
	var buf bytes.Buffer
	NewPrinter(&buf).PrintValidation([]types.ValidationReport{{Section: "skills", Valid: true}})
	assert.Contains(t, buf.String(), "ALL 1 SECTIONS VALID")
}

func TestPrintBox_TruncatesLongLines(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.printBox("TITLE", "ééééééééééééééééééééééééééééééééééééééééééééééééééééééééééééééééééééééé")

	assert.Contains(t, buf.String(), "...")
}

func TestRecordMetrics(t *testing.T) {
	before := testutil.ToFloat64(editsTotal.WithLabelValues("skills", "applied"))
	RecordEdit("skills", "applied", "skills_list", 5*time.Millisecond)
	assert.Equal(t, before+1, testutil.ToFloat64(editsTotal.WithLabelValues("skills", "applied")))

	failures := testutil.ToFloat64(editFailures.WithLabelValues("MissingSection"))
	RecordFailure("MissingSection")
	assert.Equal(t, failures+1, testutil.ToFloat64(editFailures.WithLabelValues("MissingSection")))

	RecordCollaborator("generator", time.Second, errors.New("boom"))
	assert.Equal(t, 1, testutil.CollectAndCount(collaboratorDuration))
}
