// Package types provides type definitions for structured data used throughout the resume-editor system.
//
//nolint:revive // types is a standard Go package name pattern
package types

import (
	"encoding/json"
	"fmt"
)

// Section names recognised by the edit engine
const (
	SectionSummary     = "summary"
	SectionExperiences = "experiences"
	SectionSkills      = "skills"
	SectionProjects    = "projects"
	SectionEducation   = "education"
	SectionHeader      = "header"
	SectionCoverLetter = "cover_letter"
)

// AllSections lists every known section in rendering order
var AllSections = []string{
	SectionHeader,
	SectionSummary,
	SectionExperiences,
	SectionProjects,
	SectionSkills,
	SectionEducation,
	SectionCoverLetter,
}

// Shape describes the structural kind of a section value
type Shape string

// Shape constants
const (
	ShapeText    Shape = "text"
	ShapeList    Shape = "list"
	ShapeMapping Shape = "mapping"
	ShapeScalar  Shape = "scalar"
)

var sectionShapes = map[string]Shape{
	SectionSummary:     ShapeText,
	SectionExperiences: ShapeList,
	SectionSkills:      ShapeList,
	SectionProjects:    ShapeList,
	SectionEducation:   ShapeList,
	SectionHeader:      ShapeMapping,
	SectionCoverLetter: ShapeText,
}

// SectionShape returns the expected shape of a known section.
func SectionShape(section string) (Shape, bool) {
	shape, ok := sectionShapes[section]
	return shape, ok
}

// KindOf reports the shape of an arbitrary decoded JSON value.
func KindOf(v any) Shape {
	switch v.(type) {
	case string:
		return ShapeText
	case []any, []string:
		return ShapeList
	case map[string]any, Document:
		return ShapeMapping
	default:
		return ShapeScalar
	}
}

// Document maps section names to section content. Values are decoded JSON
// (string, []any, map[string]any, float64, bool, nil).
type Document map[string]any

// Has reports whether the section is present in the document.
func (d Document) Has(section string) bool {
	_, ok := d[section]
	return ok
}

// Sections returns the known sections present in the document, in rendering order.
func (d Document) Sections() []string {
	var sections []string
	for _, s := range AllSections {
		if d.Has(s) {
			sections = append(sections, s)
		}
	}
	return sections
}

// Clone returns a deep copy of the document through a JSON round-trip, which
// also normalizes Go-built values ([]string, structs) to their decoded form.
func (d Document) Clone() (Document, error) {
	if d == nil {
		return Document{}, nil
	}
	data, err := json.Marshal(d)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal document: %w", err)
	}
	var out Document
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("failed to unmarshal document: %w", err)
	}
	if out == nil {
		out = Document{}
	}
	return out, nil
}

// CloneValue deep-copies a single decoded JSON value.
func CloneValue(v any) (any, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal value: %w", err)
	}
	var out any
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("failed to unmarshal value: %w", err)
	}
	return out, nil
}
