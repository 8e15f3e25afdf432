// Package engine implements the edit transaction coordinator: it classifies a
// free-text edit request, dispatches it to a deterministic editor or the
// rewrite adapter, validates and render-probes the candidate, and commits or
// rolls back atomically.
package engine

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/jonathan/resume-editor/internal/classify"
	"github.com/jonathan/resume-editor/internal/diff"
	"github.com/jonathan/resume-editor/internal/observability"
	"github.com/jonathan/resume-editor/internal/rewriting"
	"github.com/jonathan/resume-editor/internal/types"
	"github.com/jonathan/resume-editor/internal/validation"
)

// Default collaborator deadlines
const (
	DefaultGenerationTimeout = rewriting.DefaultTimeout
	DefaultRenderTimeout     = 30 * time.Second
)

const editorRewrite = "rewrite"

var tracer = otel.Tracer("resume_editor.engine")

// RenderProber dry-run renders a full candidate document. rendering.Prober satisfies it.
type RenderProber interface {
	ProbeRender(ctx context.Context, doc types.Document) error
}

// Options configures an Engine
type Options struct {
	Generator         rewriting.Generator // nil makes every free-text rewrite fail as unavailable
	Prober            RenderProber        // nil skips the render probe
	Logger            *slog.Logger
	Strict            bool // default for ApplyEdit
	GenerationTimeout time.Duration
	RenderTimeout     time.Duration
	DiffSizeThreshold int
	LogContent        bool // include section content in debug logs
	OnTransition      TransitionFunc
}

// EditOptions are per-call options
type EditOptions struct {
	Strict bool
}

// Engine applies edit requests to documents. It holds no per-document state
// and is safe for concurrent use on independent documents.
type Engine struct {
	rewriter      *rewriting.Rewriter
	prober        RenderProber
	logger        *slog.Logger
	strict        bool
	renderTimeout time.Duration
	diffOpts      *diff.Options
	logContent    bool
	onTransition  TransitionFunc
}

// New creates an Engine.
func New(opts Options) *Engine {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	genTimeout := opts.GenerationTimeout
	if genTimeout <= 0 {
		genTimeout = DefaultGenerationTimeout
	}
	renderTimeout := opts.RenderTimeout
	if renderTimeout <= 0 {
		renderTimeout = DefaultRenderTimeout
	}
	return &Engine{
		rewriter:      rewriting.New(opts.Generator, rewriting.Options{Timeout: genTimeout, Logger: logger}),
		prober:        opts.Prober,
		logger:        logger,
		strict:        opts.Strict,
		renderTimeout: renderTimeout,
		diffOpts:      &diff.Options{SizeThreshold: opts.DiffSizeThreshold},
		logContent:    opts.LogContent,
		onTransition:  opts.OnTransition,
	}
}

// ApplyEdit applies one request using the engine's default strictness.
func (e *Engine) ApplyEdit(ctx context.Context, request string, doc types.Document) types.EditOutcome {
	return e.ApplyEditWithOptions(ctx, request, doc, EditOptions{Strict: e.strict})
}

// ApplyEditWithOptions applies one request as a transaction. The caller's
// document is never modified; on any failure the outcome has status
// not_possible and no document.
func (e *Engine) ApplyEditWithOptions(ctx context.Context, request string, doc types.Document, opts EditOptions) (outcome types.EditOutcome) {
	txn := e.begin()
	ctx, span := tracer.Start(ctx, "engine.ApplyEdit",
		trace.WithAttributes(
			attribute.String("edit.transaction_id", txn.id),
			attribute.Bool("edit.strict", opts.Strict),
		),
	)
	defer span.End()

	defer func() {
		if r := recover(); r != nil {
			e.logger.Error("edit panicked", "txn", txn.id, "section", txn.section, "state", txn.state, "panic", r)
			outcome = e.reject(txn, txn.editType, &EditError{
				Kind:    KindInternal,
				Section: txn.section,
				Message: ReasonInternal,
				Cause:   fmt.Errorf("panic: %v", r),
			})
		}
		e.finish(span, txn, outcome)
	}()

	snapshot, err := doc.Clone()
	if err != nil {
		return e.reject(txn, types.EditUnknown, &EditError{
			Kind:    KindSnapshotFailed,
			Message: "document could not be copied",
			Cause:   err,
		})
	}

	if err := classify.CheckScope(request); err != nil {
		return e.reject(txn, types.EditUnknown, classifyError("", err))
	}
	editType := classify.Classify(request)
	txn.editType = editType
	if _, ok := routeFor(editType); !ok {
		return e.reject(txn, editType, &EditError{Kind: KindUnclassifiable, Message: ReasonUnclassifiable})
	}
	e.transition(txn, StateClassified)
	e.logger.Debug("request classified", "txn", txn.id, "edit_type", editType, "request", request)

	return e.dispatch(ctx, txn, editType, request, snapshot, opts)
}

// Dispatch applies an already classified request. It performs the same
// transaction as ApplyEditWithOptions minus the scope guards and
// classification.
func (e *Engine) Dispatch(ctx context.Context, editType types.EditType, request string, doc types.Document, opts EditOptions) (outcome types.EditOutcome) {
	txn := e.begin()
	txn.editType = editType
	ctx, span := tracer.Start(ctx, "engine.Dispatch",
		trace.WithAttributes(
			attribute.String("edit.transaction_id", txn.id),
			attribute.String("edit.type", string(editType)),
		),
	)
	defer span.End()

	defer func() {
		if r := recover(); r != nil {
			e.logger.Error("edit panicked", "txn", txn.id, "section", txn.section, "state", txn.state, "panic", r)
			outcome = e.reject(txn, txn.editType, &EditError{
				Kind:    KindInternal,
				Section: txn.section,
				Message: ReasonInternal,
				Cause:   fmt.Errorf("panic: %v", r),
			})
		}
		e.finish(span, txn, outcome)
	}()

	snapshot, err := doc.Clone()
	if err != nil {
		return e.reject(txn, editType, &EditError{Kind: KindSnapshotFailed, Message: "document could not be copied", Cause: err})
	}
	if _, ok := routeFor(editType); !ok {
		return e.reject(txn, editType, &EditError{Kind: KindUnclassifiable, Message: ReasonUnclassifiable})
	}
	e.transition(txn, StateClassified)
	return e.dispatch(ctx, txn, editType, request, snapshot, opts)
}

// ApplyEdits applies requests in order, each against the document produced
// by the previous applied edit. A rejected edit leaves the running document
// as it was and the remaining requests still run.
func (e *Engine) ApplyEdits(ctx context.Context, requests []string, doc types.Document, opts EditOptions) ([]types.EditOutcome, types.Document) {
	current := doc
	outcomes := make([]types.EditOutcome, 0, len(requests))
	for _, req := range requests {
		if err := ctx.Err(); err != nil {
			outcomes = append(outcomes, e.cancelled(req, err))
			continue
		}
		outcome := e.ApplyEditWithOptions(ctx, req, current, opts)
		if outcome.Status == types.StatusApplied {
			current = outcome.UpdatedDocument
		}
		outcomes = append(outcomes, outcome)
	}
	return outcomes, current
}

// ApplyCompound splits a request bundling several edits and applies the parts in order.
func (e *Engine) ApplyCompound(ctx context.Context, request string, doc types.Document, opts EditOptions) ([]types.EditOutcome, types.Document) {
	parts := classify.SplitCompound(request)
	if len(parts) == 0 {
		parts = []string{request}
	}
	return e.ApplyEdits(ctx, parts, doc, opts)
}

func (e *Engine) dispatch(ctx context.Context, txn *transaction, editType types.EditType, request string, snapshot types.Document, opts EditOptions) types.EditOutcome {
	rt, _ := routeFor(editType)
	section := rt.section
	txn.section = section

	if !snapshot.Has(section) {
		return e.reject(txn, editType, &EditError{Kind: KindMissingSection, Section: section, Message: ReasonMissingSection})
	}
	before := snapshot[section]

	after, allowEmpty, err := e.produce(ctx, txn, rt, request, before, opts)
	if err != nil {
		e.transition(txn, StateDispatched)
		return e.reject(txn, editType, classifyError(section, err))
	}
	e.transition(txn, StateDispatched)

	if types.Equal(before, after) {
		e.logger.Info("edit left document unchanged", "txn", txn.id, "section", section, "editor", txn.editor)
		return types.EditOutcome{
			OK:              true,
			Status:          types.StatusNoChange,
			UpdatedDocument: snapshot,
			ChangedSections: []string{},
			DiffSummary:     &types.DiffSummary{},
			TransactionID:   txn.id,
			EditType:        editType,
			Section:         section,
			Editor:          txn.editor,
			State:           string(txn.state),
		}
	}

	candidate := make(types.Document, len(snapshot))
	for k, v := range snapshot {
		candidate[k] = v
	}
	candidate[section] = after

	report := validation.Validate(section, after, &validation.Options{AllowEmpty: allowEmpty, Logger: e.logger})
	if !report.Valid {
		return e.reject(txn, editType, &EditError{
			Kind:    KindSchemaViolation,
			Section: section,
			Message: fmt.Sprintf("updated %s failed validation: %s", section, report.Summary()),
			Cause:   validation.ReportError(report),
		})
	}
	e.transition(txn, StateValidated)

	if err := e.probe(ctx, candidate); err != nil {
		return e.reject(txn, editType, &EditError{
			Kind:    KindRenderProbeFailed,
			Section: section,
			Message: fmt.Sprintf("render probe failed: %v", err),
			Cause:   err,
		})
	}
	e.transition(txn, StateRenderProbed)

	changed := changedSections(snapshot, candidate)
	summary := diff.Compute(snapshot, candidate, e.diffOpts)
	e.transition(txn, StateCommitted)

	if e.logContent {
		e.logger.Debug("committed section content", "txn", txn.id, "section", section, "content", after)
	}
	e.logger.Info("edit committed",
		"txn", txn.id,
		"edit_type", editType,
		"section", section,
		"editor", txn.editor,
		"changes", summary.String(),
	)

	return types.EditOutcome{
		OK:              true,
		Status:          types.StatusApplied,
		UpdatedDocument: candidate,
		ChangedSections: changed,
		DiffSummary:     &summary,
		TransactionID:   txn.id,
		EditType:        editType,
		Section:         section,
		Editor:          txn.editor,
		State:           string(txn.state),
		Report:          diff.Report(snapshot, candidate, changed, summary),
	}
}

// produce runs the first deterministic editor that recognizes the request,
// falling through to the rewrite adapter.
func (e *Engine) produce(ctx context.Context, txn *transaction, rt route, request string, before any, opts EditOptions) (any, bool, error) {
	for _, ed := range rt.editors {
		res, handled, err := ed.Edit(request, before)
		if !handled {
			continue
		}
		txn.editor = ed.Name
		if err != nil {
			return nil, false, err
		}
		e.logger.Debug("deterministic edit", "txn", txn.id, "section", rt.section, "editor", ed.Name,
			"operation", res.Operation, "changed", res.Changed, "paths", res.ChangedPaths)
		return res.Content, res.AllowEmpty, nil
	}

	txn.editor = editorRewrite
	start := time.Now()
	out, err := e.rewriter.Rewrite(ctx, rewriting.Request{
		Section:     rt.section,
		Instruction: request,
		Content:     before,
		Strict:      opts.Strict,
	})
	observability.RecordCollaborator("generator", time.Since(start), err)
	if err != nil {
		return nil, false, err
	}
	return out.Content, false, nil
}

func (e *Engine) probe(ctx context.Context, candidate types.Document) error {
	if e.prober == nil {
		e.logger.Debug("render probe skipped, no prober configured")
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, e.renderTimeout)
	defer cancel()

	start := time.Now()
	err := e.prober.ProbeRender(ctx, candidate)
	if err == nil && ctx.Err() != nil {
		err = fmt.Errorf("render probe deadline: %w", ctx.Err())
	}
	observability.RecordCollaborator("render_probe", time.Since(start), err)
	return err
}

// cancelled rejects a queued request whose context ended before it ran.
func (e *Engine) cancelled(request string, cause error) types.EditOutcome {
	txn := e.begin()
	txn.editType = classify.Classify(request)
	outcome := e.reject(txn, txn.editType, &EditError{Kind: KindCancelled, Message: ReasonCancelled, Cause: cause})
	observability.RecordEdit(string(outcome.EditType), string(outcome.Status), txn.editor, time.Since(txn.started))
	return outcome
}

func (e *Engine) begin() *transaction {
	return &transaction{id: uuid.NewString(), state: StateStart, started: time.Now()}
}

func (e *Engine) transition(txn *transaction, to State) {
	from := txn.state
	txn.state = to
	e.logger.Debug("transaction state", "txn", txn.id, "from", from, "to", to, "section", txn.section)
	if e.onTransition != nil {
		e.onTransition(Transition{TransactionID: txn.id, From: from, To: to, Section: txn.section, At: time.Now()})
	}
}

// reject rolls the transaction back. The outcome never carries a document.
func (e *Engine) reject(txn *transaction, editType types.EditType, editErr *EditError) types.EditOutcome {
	if txn.state != StateStart && txn.state != StateClassified {
		e.transition(txn, StateRolledBack)
	}
	e.logger.Warn("edit rejected",
		"txn", txn.id,
		"edit_type", editType,
		"section", editErr.Section,
		"kind", editErr.Kind,
		"state", txn.state,
		"error", editErr,
	)
	observability.RecordFailure(string(editErr.Kind))
	return types.EditOutcome{
		OK:              false,
		Status:          types.StatusNotPossible,
		ChangedSections: []string{},
		Reason:          editErr.Reason(),
		TransactionID:   txn.id,
		EditType:        editType,
		Section:         editErr.Section,
		Editor:          txn.editor,
		State:           string(txn.state),
	}
}

func (e *Engine) finish(span trace.Span, txn *transaction, outcome types.EditOutcome) {
	span.SetAttributes(
		attribute.String("edit.status", string(outcome.Status)),
		attribute.String("edit.section", outcome.Section),
		attribute.String("edit.state", outcome.State),
	)
	if !outcome.OK {
		span.SetStatus(codes.Error, outcome.Reason)
	}
	observability.RecordEdit(string(outcome.EditType), string(outcome.Status), txn.editor, time.Since(txn.started))
}

// changedSections lists the sections whose content differs, sorted.
func changedSections(before, after types.Document) []string {
	var changed []string
	for k, v := range after {
		if old, ok := before[k]; !ok || !types.Equal(old, v) {
			changed = append(changed, k)
		}
	}
	for k := range before {
		if _, ok := after[k]; !ok {
			changed = append(changed, k)
		}
	}
	sort.Strings(changed)
	return changed
}
