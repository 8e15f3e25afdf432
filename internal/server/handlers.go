package server

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/jonathan/resume-editor/internal/db"
	"github.com/jonathan/resume-editor/internal/engine"
	"github.com/jonathan/resume-editor/internal/types"
)

// maxBodyBytes caps request bodies; documents are small JSON objects.
const maxBodyBytes = 1 << 20

// validate reports field names by their JSON tag.
var validate = func() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}()

// EditRequest is the body of POST /edits
type EditRequest struct {
	Request  string         `json:"request" validate:"required,max=2000"`
	Document types.Document `json:"document" validate:"required"`
	Strict   *bool          `json:"strict,omitempty"`
}

// DocumentEditRequest is the body of POST /documents/{id}/edits
type DocumentEditRequest struct {
	Request string `json:"request" validate:"required,max=2000"`
	Strict  *bool  `json:"strict,omitempty"`
	DryRun  bool   `json:"dry_run,omitempty"`
}

// DocumentEditResponse reports the outcome of an edit on a stored document
type DocumentEditResponse struct {
	Outcome   types.EditOutcome `json:"outcome"`
	Version   int               `json:"version"`
	Persisted bool              `json:"persisted"`
}

// CreateDocumentRequest is the body of POST /documents
type CreateDocumentRequest struct {
	Name    string         `json:"name" validate:"required,max=200"`
	Content types.Document `json:"content" validate:"required"`
}

// decodeBody decodes and validates a JSON body into v.
func decodeBody(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil {
		return &ErrValidation{Field: "body", Message: "invalid JSON: " + err.Error()}
	}
	if err := validate.Struct(v); err != nil {
		return fromValidator(err)
	}
	return nil
}

func parseDocumentID(r *http.Request) (uuid.UUID, error) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		return uuid.Nil, &ErrValidation{Field: "id", Message: "must be a UUID"}
	}
	return id, nil
}

func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	status := HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed",
			slog.String("path", r.URL.Path),
			slog.Any("error", err))
	}
	s.errorResponse(w, status, err.Error())
}

// apply runs one edit, honoring an explicit strict flag when given.
func (s *Server) apply(ctx context.Context, request string, doc types.Document, strict *bool) types.EditOutcome {
	ctx, cancel := context.WithTimeout(ctx, s.editTimeout)
	defer cancel()
	if strict == nil {
		return s.editor.ApplyEdit(ctx, request, doc)
	}
	return s.editor.ApplyEditWithOptions(ctx, request, doc, engine.EditOptions{Strict: *strict})
}

// handleEdit applies an edit to the document in the body without storing anything.
// A not_possible outcome is still a 200: the outcome body carries the reason.
func (s *Server) handleEdit(w http.ResponseWriter, r *http.Request) {
	var req EditRequest
	if err := decodeBody(w, r, &req); err != nil {
		s.fail(w, r, err)
		return
	}

	outcome := s.apply(r.Context(), req.Request, req.Document, req.Strict)
	s.jsonResponse(w, http.StatusOK, outcome)
}

func (s *Server) handleCreateDocument(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		s.fail(w, r, ErrStoreUnavailable)
		return
	}
	var req CreateDocumentRequest
	if err := decodeBody(w, r, &req); err != nil {
		s.fail(w, r, err)
		return
	}

	doc, err := s.store.CreateDocument(r.Context(), req.Name, req.Content)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusCreated, doc)
}

func (s *Server) handleGetDocument(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		s.fail(w, r, ErrStoreUnavailable)
		return
	}
	id, err := parseDocumentID(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	doc, err := s.store.GetDocument(r.Context(), id)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, doc)
}

// handleDocumentEdit loads a stored document, applies the edit and saves the
// result if it was applied. Every non-dry-run attempt lands in the edit log.
func (s *Server) handleDocumentEdit(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		s.fail(w, r, ErrStoreUnavailable)
		return
	}
	id, err := parseDocumentID(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	var req DocumentEditRequest
	if err := decodeBody(w, r, &req); err != nil {
		s.fail(w, r, err)
		return
	}

	stored, err := s.store.GetDocument(r.Context(), id)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	outcome := s.apply(r.Context(), req.Request, stored.Content, req.Strict)
	resp := DocumentEditResponse{Outcome: outcome, Version: stored.Version}

	switch {
	case req.DryRun:
	case outcome.Status == types.StatusApplied:
		edit := db.NewEdit(id, req.Request, outcome, stored.Version+1)
		version, err := s.store.CommitEdit(r.Context(), id, outcome.UpdatedDocument, stored.Version, edit)
		if err != nil {
			s.fail(w, r, err)
			return
		}
		resp.Version = version
		resp.Persisted = true
	default:
		edit := db.NewEdit(id, req.Request, outcome, stored.Version)
		if err := s.store.RecordEdit(r.Context(), edit); err != nil {
			// The document is unchanged, so the caller still gets the outcome.
			s.logger.Warn("failed to record edit",
				slog.String("document_id", id.String()),
				slog.Any("error", err))
		}
	}

	s.jsonResponse(w, http.StatusOK, resp)
}

func (s *Server) handleListEdits(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		s.fail(w, r, ErrStoreUnavailable)
		return
	}
	id, err := parseDocumentID(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if limit, err = strconv.Atoi(raw); err != nil || limit < 0 {
			s.fail(w, r, &ErrValidation{Field: "limit", Message: "must be a non-negative integer"})
			return
		}
	}

	if _, err := s.store.GetDocument(r.Context(), id); err != nil {
		s.fail(w, r, err)
		return
	}
	edits, err := s.store.ListEdits(r.Context(), id, limit)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if edits == nil {
		edits = []db.Edit{}
	}
	s.jsonResponse(w, http.StatusOK, map[string]any{
		"document_id": id,
		"edits":       edits,
	})
}
