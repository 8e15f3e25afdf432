package validation

import (
	"fmt"

	"github.com/jonathan/resume-editor/internal/types"
)

// Error represents a general validation error
type Error struct {
	Section string
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("validation error in %s: %s: %v", e.Section, e.Message, e.Cause)
	}
	return fmt.Sprintf("validation error in %s: %s", e.Section, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// StrictViolationError reports a structural change forbidden under strict mode
type StrictViolationError struct {
	Path    string
	Message string
}

func (e *StrictViolationError) Error() string {
	return fmt.Sprintf("strict mode violation at %s: %s", e.Path, e.Message)
}

// ReportError converts a failing report into an *Error. Returns nil for a valid report.
func ReportError(report types.ValidationReport) error {
	if report.Valid {
		return nil
	}
	return &Error{Section: report.Section, Message: report.Summary()}
}
