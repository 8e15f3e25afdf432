package engine

import (
	"errors"
	"fmt"

	"github.com/jonathan/resume-editor/internal/classify"
	"github.com/jonathan/resume-editor/internal/editing"
	"github.com/jonathan/resume-editor/internal/rewriting"
	"github.com/jonathan/resume-editor/internal/validation"
)

// Kind classifies why an edit was rejected. It is used for logs and metrics;
// callers only ever see status not_possible and a reason.
type Kind string

// Kind constants
const (
	KindUnclassifiable        Kind = "UnclassifiableRequest"
	KindUnsupportedScope      Kind = "UnsupportedScope"
	KindMissingSection        Kind = "MissingSection"
	KindGenerationUnavailable Kind = "GenerationUnavailable"
	KindMalformedGeneration   Kind = "MalformedGeneration"
	KindStrictModeViolation   Kind = "StrictModeViolation"
	KindSchemaViolation       Kind = "SchemaViolation"
	KindRenderProbeFailed     Kind = "RenderProbeFailed"
	KindEditorFailed          Kind = "EditorFailed"
	KindSnapshotFailed        Kind = "SnapshotFailed"
	KindInternal              Kind = "InternalError"
	KindCancelled             Kind = "Cancelled"
)

// Reasons shown to callers
const (
	ReasonMissingSection        = "required content block not found — generate it first"
	ReasonUnclassifiable        = "could not determine which section the request targets"
	ReasonGenerationUnavailable = "generation unavailable"
	ReasonMalformedGeneration   = "generation returned malformed content"
	ReasonStrictModeViolation   = "generation violated strict-mode structural constraint"
	ReasonInternal              = "internal error while applying the edit"
	ReasonCancelled             = "edit cancelled"
)

// EditError is the typed failure of an edit transaction
type EditError struct {
	Kind    Kind
	Section string
	Message string // caller-visible reason
	Cause   error
}

func (e *EditError) Error() string {
	prefix := fmt.Sprintf("edit rejected (%s)", e.Kind)
	if e.Section != "" {
		prefix = fmt.Sprintf("edit rejected (%s) in %s", e.Kind, e.Section)
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", prefix, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", prefix, e.Message)
}

func (e *EditError) Unwrap() error {
	return e.Cause
}

// Reason returns the human-readable reason for the caller.
func (e *EditError) Reason() string {
	return e.Message
}

// classifyError maps a collaborator or editor error to an *EditError.
func classifyError(section string, err error) *EditError {
	var editErr *EditError
	if errors.As(err, &editErr) {
		return editErr
	}

	var scopeErr *classify.ScopeError
	var genErr *rewriting.GenerationError
	var malformedErr *rewriting.MalformedError
	var violation *validation.StrictViolationError
	var editorErr *editing.Error

	switch {
	case errors.As(err, &scopeErr):
		return &EditError{Kind: KindUnsupportedScope, Message: scopeErr.Error(), Cause: err}
	case errors.As(err, &genErr):
		return &EditError{Kind: KindGenerationUnavailable, Section: section, Message: ReasonGenerationUnavailable, Cause: err}
	case errors.As(err, &malformedErr):
		return &EditError{Kind: KindMalformedGeneration, Section: section, Message: ReasonMalformedGeneration, Cause: err}
	case errors.As(err, &violation):
		return &EditError{
			Kind:    KindStrictModeViolation,
			Section: section,
			Message: fmt.Sprintf("%s (%s: %s)", ReasonStrictModeViolation, violation.Path, violation.Message),
			Cause:   err,
		}
	case errors.As(err, &editorErr):
		return &EditError{
			Kind:    KindEditorFailed,
			Section: section,
			Message: fmt.Sprintf("could not apply edit to %s: %s", section, editorErr.Message),
			Cause:   err,
		}
	default:
		return &EditError{Kind: KindInternal, Section: section, Message: ReasonInternal, Cause: err}
	}
}
