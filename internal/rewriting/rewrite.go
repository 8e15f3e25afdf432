// Package rewriting provides the free-text rewrite adapter: one bounded
// generator call that returns a replacement for a single document section.
package rewriting

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/jonathan/resume-editor/internal/llm"
	"github.com/jonathan/resume-editor/internal/types"
	"github.com/jonathan/resume-editor/internal/validation"
)

// DefaultTimeout bounds a single generation call
const DefaultTimeout = 60 * time.Second

var tracer = otel.Tracer("resume_editor.rewriting")

// Generator produces JSON text for a prompt. llm.Client satisfies it.
type Generator interface {
	GenerateJSON(ctx context.Context, prompt string, tier llm.ModelTier) (string, error)
}

// Options configures a Rewriter
type Options struct {
	Timeout time.Duration
	Tier    llm.ModelTier
	Logger  *slog.Logger
}

// Rewriter turns an instruction plus section content into replacement content
type Rewriter struct {
	gen     Generator
	timeout time.Duration
	tier    llm.ModelTier
	logger  *slog.Logger
}

// New creates a Rewriter. A nil generator is allowed; every Rewrite then
// fails with *GenerationError.
func New(gen Generator, opts Options) *Rewriter {
	r := &Rewriter{
		gen:     gen,
		timeout: opts.Timeout,
		tier:    opts.Tier,
		logger:  opts.Logger,
	}
	if r.timeout <= 0 {
		r.timeout = DefaultTimeout
	}
	if r.tier == "" {
		r.tier = llm.TierAdvanced
	}
	if r.logger == nil {
		r.logger = slog.Default()
	}
	return r
}

// Request is one section rewrite
type Request struct {
	Section     string
	Instruction string
	Content     any
	Strict      bool
}

// Outcome is the accepted rewrite of a section
type Outcome struct {
	Content  any
	Restored []string // paths copied back from the original in lenient mode
}

// Rewrite calls the generator once and returns the parsed, shape-checked
// content. In strict mode any structural deviation is an error; otherwise
// dropped keys are restored from the original.
func (r *Rewriter) Rewrite(ctx context.Context, req Request) (*Outcome, error) {
	if r.gen == nil {
		return nil, &GenerationError{Message: "no generator configured"}
	}

	want, ok := types.SectionShape(req.Section)
	if !ok {
		want = types.KindOf(req.Content)
	}

	prompt, err := BuildPrompt(req.Section, req.Instruction, req.Content, req.Strict)
	if err != nil {
		return nil, err
	}

	raw, err := r.generate(ctx, req.Section, prompt)
	if err != nil {
		return nil, err
	}

	content, err := ParsePayload(raw, want)
	if err != nil {
		r.logger.Warn("rewrite returned unusable payload", "section", req.Section, "error", err)
		return nil, err
	}

	if req.Strict {
		if err := validation.CheckStrict(req.Section, req.Content, content); err != nil {
			return nil, &StrictError{Section: req.Section, Cause: err}
		}
		return &Outcome{Content: content}, nil
	}

	content, restored := RestoreDropped(req.Section, req.Content, content)
	if len(restored) > 0 {
		r.logger.Info("restored keys dropped by rewrite", "section", req.Section, "paths", restored)
	}
	return &Outcome{Content: content, Restored: restored}, nil
}

func (r *Rewriter) generate(ctx context.Context, section, prompt string) (string, error) {
	ctx, span := tracer.Start(ctx, "rewriting.Generate",
		trace.WithAttributes(
			attribute.String("rewrite.section", section),
			attribute.String("rewrite.tier", string(r.tier)),
		),
	)
	defer span.End()

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	start := time.Now()
	raw, err := r.gen.GenerateJSON(ctx, prompt, r.tier)
	elapsed := time.Since(start)
	if err == nil && ctx.Err() != nil {
		err = ctx.Err()
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "generation failed")
		msg := "generator call failed"
		if errors.Is(err, context.DeadlineExceeded) {
			msg = fmt.Sprintf("generator call timed out after %s", r.timeout)
		}
		r.logger.Warn(msg, "section", section, "elapsed", elapsed, "error", err)
		return "", &GenerationError{Message: msg, Cause: err}
	}

	span.SetAttributes(attribute.Int("rewrite.response_length", len(raw)))
	r.logger.Debug("generator call finished", "section", section, "elapsed", elapsed)
	return raw, nil
}
