package rendering

import (
	"context"
	"text/template"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/jonathan/resume-editor/internal/types"
)

var tracer = otel.Tracer("resume_editor.rendering")

// ProberOptions configures a Prober
type ProberOptions struct {
	TemplatePath            string // empty selects the embedded resume template
	CoverLetterTemplatePath string // empty selects the embedded cover letter template
	Compile                 bool   // run pdflatex on the rendered source
	Timeout                 time.Duration
}

// Prober checks that a candidate document can be rendered. It holds parsed
// templates and is safe for concurrent use.
type Prober struct {
	resume      *template.Template
	coverLetter *template.Template
	compile     bool
	timeout     time.Duration
}

// NewProber parses the configured templates.
func NewProber(opts ProberOptions) (*Prober, error) {
	resume, err := ParseTemplate(opts.TemplatePath, defaultResumeTemplate)
	if err != nil {
		return nil, err
	}
	coverLetter, err := ParseTemplate(opts.CoverLetterTemplatePath, defaultCoverLetterTemplate)
	if err != nil {
		return nil, err
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = CompilationTimeout
	}
	return &Prober{
		resume:      resume,
		coverLetter: coverLetter,
		compile:     opts.Compile,
		timeout:     timeout,
	}, nil
}

// Rendered holds the LaTeX sources produced for a document
type Rendered struct {
	Resume      string
	CoverLetter string // empty when the document has no cover letter
}

// Render produces LaTeX source for the document.
func (p *Prober) Render(doc types.Document) (*Rendered, error) {
	data, err := BuildTemplateData(doc)
	if err != nil {
		return nil, err
	}
	out := &Rendered{}
	if out.Resume, err = Execute(p.resume, data); err != nil {
		return nil, err
	}
	if doc.Has(types.SectionCoverLetter) {
		clData, err := BuildCoverLetterData(doc)
		if err != nil {
			return nil, err
		}
		if out.CoverLetter, err = Execute(p.coverLetter, clData); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// ProbeRender renders the document and, when configured, compiles it. Any
// failure is returned as an error; the document itself is never modified.
func (p *Prober) ProbeRender(ctx context.Context, doc types.Document) (err error) {
	ctx, span := tracer.Start(ctx, "rendering.Probe",
		trace.WithAttributes(
			attribute.Bool("render.compile", p.compile),
			attribute.Int("render.sections", len(doc)),
		),
	)
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "render probe failed")
		}
		span.End()
	}()

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	rendered, err := p.Render(doc)
	if err != nil {
		return err
	}
	if err := CheckBalanced(rendered.Resume); err != nil {
		return err
	}
	if rendered.CoverLetter != "" {
		if err := CheckBalanced(rendered.CoverLetter); err != nil {
			return err
		}
	}
	if err := ctx.Err(); err != nil {
		return &RenderError{Message: "render probe cancelled", Cause: err}
	}

	if !p.compile {
		return nil
	}
	if _, err := CompileLaTeX(ctx, rendered.Resume, "resume"); err != nil {
		return err
	}
	if rendered.CoverLetter != "" {
		if _, err := CompileLaTeX(ctx, rendered.CoverLetter, "cover_letter"); err != nil {
			return err
		}
	}
	return nil
}
