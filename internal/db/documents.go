package db

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/jonathan/resume-editor/internal/types"
)

// DefaultEditListLimit caps ListEdits when no limit is given
const DefaultEditListLimit = 50

// querier is satisfied by both the pool and a transaction
type querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// CreateDocument stores a new document at version 1.
func (db *DB) CreateDocument(ctx context.Context, name string, content types.Document) (*Document, error) {
	jsonBytes, err := json.Marshal(content)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal document: %w", err)
	}

	doc := &Document{ID: uuid.New(), Name: name, Content: content}
	err = db.pool.QueryRow(ctx,
		`INSERT INTO documents (id, name, content, version)
		 VALUES ($1, $2, $3, 1)
		 RETURNING version, created_at, updated_at`,
		doc.ID, name, jsonBytes,
	).Scan(&doc.Version, &doc.CreatedAt, &doc.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create document: %w", err)
	}
	return doc, nil
}

// GetDocument retrieves a document by ID. Returns ErrNotFound if it does not exist.
func (db *DB) GetDocument(ctx context.Context, id uuid.UUID) (*Document, error) {
	var doc Document
	var content []byte
	err := db.pool.QueryRow(ctx,
		`SELECT id, name, content, version, created_at, updated_at
		 FROM documents WHERE id = $1`,
		id,
	).Scan(&doc.ID, &doc.Name, &content, &doc.Version, &doc.CreatedAt, &doc.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get document %s: %w", id, err)
	}
	if err := json.Unmarshal(content, &doc.Content); err != nil {
		return nil, fmt.Errorf("failed to unmarshal document %s: %w", id, err)
	}
	return &doc, nil
}

// SaveDocument replaces the content of a document if it is still at
// expectedVersion and returns the new version. A stale version yields
// *VersionConflictError.
func (db *DB) SaveDocument(ctx context.Context, id uuid.UUID, content types.Document, expectedVersion int) (int, error) {
	return saveDocument(ctx, db.pool, id, content, expectedVersion)
}

func saveDocument(ctx context.Context, q querier, id uuid.UUID, content types.Document, expectedVersion int) (int, error) {
	jsonBytes, err := json.Marshal(content)
	if err != nil {
		return 0, fmt.Errorf("failed to marshal document: %w", err)
	}

	var version int
	err = q.QueryRow(ctx,
		`UPDATE documents SET content = $1, version = version + 1, updated_at = NOW()
		 WHERE id = $2 AND version = $3
		 RETURNING version`,
		jsonBytes, id, expectedVersion,
	).Scan(&version)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, &VersionConflictError{DocumentID: id, Expected: expectedVersion}
		}
		return 0, fmt.Errorf("failed to save document %s: %w", id, err)
	}
	return version, nil
}

// RecordEdit appends an entry to a document's edit log.
func (db *DB) RecordEdit(ctx context.Context, edit *Edit) error {
	return recordEdit(ctx, db.pool, edit)
}

func recordEdit(ctx context.Context, q querier, edit *Edit) error {
	var diffJSON []byte
	if edit.Diff != nil {
		var err error
		if diffJSON, err = json.Marshal(edit.Diff); err != nil {
			return fmt.Errorf("failed to marshal diff: %w", err)
		}
	}

	err := q.QueryRow(ctx,
		`INSERT INTO document_edits
		   (id, document_id, transaction_id, request, edit_type, status, reason, changed_sections, diff, version)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		 RETURNING created_at`,
		edit.ID, edit.DocumentID, edit.TransactionID, edit.Request, edit.EditType,
		edit.Status, edit.Reason, edit.ChangedSections, diffJSON, edit.Version,
	).Scan(&edit.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to record edit for document %s: %w", edit.DocumentID, err)
	}
	return nil
}

// CommitEdit saves the updated document and records the edit in one
// transaction. The document must still be at expectedVersion.
func (db *DB) CommitEdit(ctx context.Context, id uuid.UUID, content types.Document, expectedVersion int, edit *Edit) (int, error) {
	tx, err := db.pool.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	version, err := saveDocument(ctx, tx, id, content, expectedVersion)
	if err != nil {
		return 0, err
	}
	edit.Version = version
	if err := recordEdit(ctx, tx, edit); err != nil {
		return 0, err
	}
	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("failed to commit edit: %w", err)
	}
	return version, nil
}

// ListEdits returns the most recent edits of a document, newest first.
func (db *DB) ListEdits(ctx context.Context, documentID uuid.UUID, limit int) ([]Edit, error) {
	if limit <= 0 {
		limit = DefaultEditListLimit
	}

	rows, err := db.pool.Query(ctx,
		`SELECT id, document_id, transaction_id, request, edit_type, status, reason,
		        changed_sections, diff, version, created_at
		 FROM document_edits
		 WHERE document_id = $1
		 ORDER BY created_at DESC
		 LIMIT $2`,
		documentID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list edits: %w", err)
	}
	defer rows.Close()

	var edits []Edit
	for rows.Next() {
		var e Edit
		var diffJSON []byte
		if err := rows.Scan(&e.ID, &e.DocumentID, &e.TransactionID, &e.Request, &e.EditType, &e.Status,
			&e.Reason, &e.ChangedSections, &diffJSON, &e.Version, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan edit: %w", err)
		}
		if len(diffJSON) > 0 {
			var summary types.DiffSummary
			if err := json.Unmarshal(diffJSON, &summary); err != nil {
				return nil, fmt.Errorf("failed to unmarshal diff: %w", err)
			}
			e.Diff = &summary
		}
		edits = append(edits, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate edits: %w", err)
	}
	return edits, nil
}
