package db

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jonathan/resume-editor/internal/types"
)

// ErrNotFound is returned when a document does not exist
var ErrNotFound = errors.New("document not found")

// VersionConflictError is returned when a document changed since it was read
type VersionConflictError struct {
	DocumentID uuid.UUID
	Expected   int
}

func (e *VersionConflictError) Error() string {
	return fmt.Sprintf("document %s was modified concurrently (expected version %d)", e.DocumentID, e.Expected)
}

// Document is a stored résumé document
type Document struct {
	ID        uuid.UUID      `json:"id"`
	Name      string         `json:"name"`
	Content   types.Document `json:"content"`
	Version   int            `json:"version"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}

// Edit is one entry of a document's edit log
type Edit struct {
	ID              uuid.UUID          `json:"id"`
	DocumentID      uuid.UUID          `json:"document_id"`
	TransactionID   string             `json:"transaction_id"`
	Request         string             `json:"request"`
	EditType        string             `json:"edit_type"`
	Status          string             `json:"status"`
	Reason          string             `json:"reason,omitempty"`
	ChangedSections []string           `json:"changed_sections"`
	Diff            *types.DiffSummary `json:"diff,omitempty"`
	Version         int                `json:"version"` // document version after the edit
	CreatedAt       time.Time          `json:"created_at"`
}

// NewEdit builds an edit log entry from an outcome.
func NewEdit(documentID uuid.UUID, request string, outcome types.EditOutcome, version int) *Edit {
	changed := outcome.ChangedSections
	if changed == nil {
		changed = []string{}
	}
	return &Edit{
		ID:              uuid.New(),
		DocumentID:      documentID,
		TransactionID:   outcome.TransactionID,
		Request:         request,
		EditType:        string(outcome.EditType),
		Status:          string(outcome.Status),
		Reason:          outcome.Reason,
		ChangedSections: changed,
		Diff:            outcome.DiffSummary,
		Version:         version,
	}
}
