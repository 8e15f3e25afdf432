package rewriting

import "fmt"

// GenerationError represents a failed or timed-out generator call
type GenerationError struct {
	Message string
	Cause   error
}

func (e *GenerationError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("generation error: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("generation error: %s", e.Message)
}

func (e *GenerationError) Unwrap() error {
	return e.Cause
}

// MalformedError represents a generator payload that could not be used as section content
type MalformedError struct {
	Message string
	Payload string
	Cause   error
}

func (e *MalformedError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("malformed generation: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("malformed generation: %s", e.Message)
}

func (e *MalformedError) Unwrap() error {
	return e.Cause
}

// StrictError represents a strict-mode rewrite that changed the section structure.
// Cause is the *validation.StrictViolationError describing the first deviation.
type StrictError struct {
	Section string
	Cause   error
}

func (e *StrictError) Error() string {
	return fmt.Sprintf("strict rewrite of %s changed structure: %v", e.Section, e.Cause)
}

func (e *StrictError) Unwrap() error {
	return e.Cause
}
