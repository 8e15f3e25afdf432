// Package schemas provides JSON Schema validation functionality for document sections.
package schemas

import (
	"embed"
	"fmt"
	"path"
	"strings"
	"sync"

	"github.com/xeipuuv/gojsonschema"
)

//go:embed sections/*.schema.json
var sectionFS embed.FS

// ValidationError represents a schema validation error with field paths
type ValidationError struct {
	Errors []FieldError
}

// FieldError represents a single validation error at a specific field
type FieldError struct {
	Field   string
	Message string
}

// SchemaLoadError represents errors loading or parsing the schema itself
type SchemaLoadError struct {
	Path    string
	Message string
	Cause   error
}

func (e *SchemaLoadError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("failed to load schema %s: %s: %v", e.Path, e.Message, e.Cause)
	}
	return fmt.Sprintf("failed to load schema %s: %s", e.Path, e.Message)
}

func (e *SchemaLoadError) Unwrap() error {
	return e.Cause
}

func (ve *ValidationError) Error() string {
	var sb strings.Builder
	sb.WriteString("validation failed:\n")
	for i, err := range ve.Errors {
		sb.WriteString(fmt.Sprintf("  %d. %s: %s\n", i+1, err.Field, err.Message))
	}
	return sb.String()
}

// Messages returns each field error as "field: message".
func (ve *ValidationError) Messages() []string {
	out := make([]string, 0, len(ve.Errors))
	for _, fe := range ve.Errors {
		out = append(out, fmt.Sprintf("%s: %s", fe.Field, fe.Message))
	}
	return out
}

var (
	compileOnce sync.Once
	compiled    map[string]*gojsonschema.Schema
	compileErr  error
)

// SectionSchemaNames returns the embedded schema file names.
func SectionSchemaNames() ([]string, error) {
	entries, err := sectionFS.ReadDir("sections")
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names, nil
}

func loadSectionSchemas() (map[string]*gojsonschema.Schema, error) {
	compileOnce.Do(func() {
		names, err := SectionSchemaNames()
		if err != nil {
			compileErr = &SchemaLoadError{Path: "sections", Message: "failed to list embedded schemas", Cause: err}
			return
		}
		compiled = make(map[string]*gojsonschema.Schema, len(names))
		for _, name := range names {
			data, err := sectionFS.ReadFile(path.Join("sections", name))
			if err != nil {
				compileErr = &SchemaLoadError{Path: name, Message: "failed to read embedded schema", Cause: err}
				return
			}
			schema, err := gojsonschema.NewSchema(gojsonschema.NewBytesLoader(data))
			if err != nil {
				compileErr = &SchemaLoadError{Path: name, Message: "failed to compile schema", Cause: err}
				return
			}
			compiled[strings.TrimSuffix(name, ".schema.json")] = schema
		}
	})
	return compiled, compileErr
}

// HasSectionSchema reports whether an embedded schema exists for the section.
func HasSectionSchema(section string) bool {
	all, err := loadSectionSchemas()
	if err != nil {
		return false
	}
	_, ok := all[section]
	return ok
}

// ValidateSection validates a decoded section value against its embedded schema.
// Returns *ValidationError when the value does not conform.
func ValidateSection(section string, value any) error {
	all, err := loadSectionSchemas()
	if err != nil {
		return err
	}
	schema, ok := all[section]
	if !ok {
		return &SchemaLoadError{Path: section, Message: "no schema for section"}
	}

	result, err := schema.Validate(gojsonschema.NewGoLoader(value))
	if err != nil {
		return &SchemaLoadError{
			Path:    section,
			Message: "document could not be loaded for validation",
			Cause:   err,
		}
	}
	return buildValidationError(result)
}

// ValidateJSONString validates JSON string content against schema string content
func ValidateJSONString(schemaContent, jsonContent string) error {
	schemaLoader := gojsonschema.NewStringLoader(schemaContent)
	documentLoader := gojsonschema.NewStringLoader(jsonContent)

	result, err := gojsonschema.Validate(schemaLoader, documentLoader)
	if err != nil {
		return &SchemaLoadError{
			Path:    "(string schema)",
			Message: "schema validation failed during load",
			Cause:   err,
		}
	}
	return buildValidationError(result)
}

func buildValidationError(result *gojsonschema.Result) error {
	if result.Valid() {
		return nil
	}

	validationErr := &ValidationError{
		Errors: make([]FieldError, 0, len(result.Errors())),
	}
	for _, desc := range result.Errors() {
		field := desc.Field()
		if field == "" {
			field = "(root)"
		}
		validationErr.Errors = append(validationErr.Errors, FieldError{
			Field:   field,
			Message: desc.Description(),
		})
	}
	return validationErr
}
