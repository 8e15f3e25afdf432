// Package types provides type definitions for structured data used throughout the resume-editor system.
//
//nolint:revive // types is a standard Go package name pattern
package types

import (
	"fmt"
	"strings"
)

// EditType is the closed set of edit targets a request can resolve to
type EditType string

// EditType constants. Values equal the section key they target.
const (
	EditSummary     EditType = "summary"
	EditExperiences EditType = "experiences"
	EditSkills      EditType = "skills"
	EditProjects    EditType = "projects"
	EditEducation   EditType = "education"
	EditHeader      EditType = "header"
	EditCoverLetter EditType = "cover_letter"
	EditUnknown     EditType = "unknown"
)

// EditRequest is the raw instruction string for one edit
type EditRequest string

// EditStatus is the caller-visible status of an edit
type EditStatus string

// EditStatus constants
const (
	StatusApplied     EditStatus = "applied"
	StatusNotPossible EditStatus = "not_possible"
	// StatusNoChange marks a successful edit that left every section as it was.
	StatusNoChange EditStatus = "no_change"
)

// EditOutcome is the result of one edit transaction
type EditOutcome struct {
	OK              bool         `json:"ok"`
	Status          EditStatus   `json:"status"`
	UpdatedDocument Document     `json:"updated_document,omitempty"`
	ChangedSections []string     `json:"changed_sections"`
	DiffSummary     *DiffSummary `json:"diff_summary,omitempty"`
	Reason          string       `json:"reason,omitempty"`

	TransactionID string   `json:"transaction_id"`
	EditType      EditType `json:"edit_type"`
	Section       string   `json:"section,omitempty"`
	Editor        string   `json:"editor,omitempty"` // deterministic editor name or "rewrite"
	State         string   `json:"state"`            // final transaction state
	Report        string   `json:"report,omitempty"` // truncated human-readable diff
}

// Change is one example difference surfaced in a diff summary
type Change struct {
	Path     string `json:"path"`
	Kind     string `json:"kind"` // added, removed, modified
	OldValue string `json:"old_value,omitempty"`
	NewValue string `json:"new_value,omitempty"`
}

// DiffSummary is the structured summary of differences between two snapshots
type DiffSummary struct {
	AddedCount    int      `json:"added_count"`
	RemovedCount  int      `json:"removed_count"`
	ModifiedCount int      `json:"modified_count"`
	Examples      []Change `json:"examples,omitempty"`
	Coarse        bool     `json:"coarse,omitempty"` // true when the size threshold forced a top-level diff
}

// Total returns the number of differences of every kind.
func (d DiffSummary) Total() int {
	return d.AddedCount + d.RemovedCount + d.ModifiedCount
}

// IsZero reports whether no differences were found.
func (d DiffSummary) IsZero() bool {
	return d.Total() == 0
}

func (d DiffSummary) String() string {
	if d.IsZero() {
		return "No changes detected"
	}
	var parts []string
	if d.AddedCount > 0 {
		parts = append(parts, fmt.Sprintf("%d added", d.AddedCount))
	}
	if d.RemovedCount > 0 {
		parts = append(parts, fmt.Sprintf("%d removed", d.RemovedCount))
	}
	if d.ModifiedCount > 0 {
		parts = append(parts, fmt.Sprintf("%d modified", d.ModifiedCount))
	}
	return strings.Join(parts, ", ")
}

// ValidationReport is the result of validating one section
type ValidationReport struct {
	Section string   `json:"section"`
	Valid   bool     `json:"valid"`
	Errors  []string `json:"errors,omitempty"`
}

// Summary joins the report errors into one line.
func (r ValidationReport) Summary() string {
	if r.Valid {
		return "valid"
	}
	return strings.Join(r.Errors, "; ")
}
