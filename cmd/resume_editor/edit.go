package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/jonathan/resume-editor/internal/config"
	"github.com/jonathan/resume-editor/internal/db"
	"github.com/jonathan/resume-editor/internal/engine"
	"github.com/jonathan/resume-editor/internal/observability"
	"github.com/jonathan/resume-editor/internal/types"
)

type editOptions struct {
	docPath  string
	docID    string
	dbURL    string
	outPath  string
	requests []string
	strict   bool
	dryRun   bool
	split    bool
	jsonOut  bool
}

func newEditCmd(root *rootOptions) *cobra.Command {
	o := &editOptions{}
	cmd := &cobra.Command{
		Use:   "edit",
		Short: "Apply edit requests to a document",
		Long: `Applies one or more free-text edit requests, in order, to a résumé document
read from a JSON file (--doc) or from the database (--doc-id). Each request is
its own transaction: a rejected request leaves the document as it was and the
next request starts from the last committed state.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runEdit(cmd, root, o)
		},
	}

	cmd.Flags().StringVarP(&o.docPath, "doc", "d", "", "Path to document JSON file")
	cmd.Flags().StringVar(&o.docID, "doc-id", "", "ID of a stored document")
	cmd.Flags().StringVar(&o.dbURL, "db-url", "", "PostgreSQL URL (overrides DATABASE_URL)")
	cmd.Flags().StringVarP(&o.outPath, "out", "o", "", "Output path for the edited document (defaults to --doc)")
	cmd.Flags().StringArrayVarP(&o.requests, "request", "r", nil, "Edit request; repeat to apply several in order (required)")
	cmd.Flags().BoolVar(&o.strict, "strict", false, "Reject rewrites that change the section structure")
	cmd.Flags().BoolVar(&o.dryRun, "dry-run", false, "Report outcomes without saving anything")
	cmd.Flags().BoolVar(&o.split, "split", false, "Split compound requests joined by 'and' or ';'")
	cmd.Flags().BoolVar(&o.jsonOut, "json", false, "Print outcomes as JSON")

	if err := cmd.MarkFlagRequired("request"); err != nil {
		panic(fmt.Sprintf("failed to mark request flag as required: %v", err))
	}
	return cmd
}

func runEdit(cmd *cobra.Command, root *rootOptions, o *editOptions) error {
	if (o.docPath == "") == (o.docID == "") {
		return errors.New("exactly one of --doc or --doc-id is required")
	}

	cfg, err := loadConfig(root)
	if err != nil {
		return err
	}
	logger := newLogger(cmd.ErrOrStderr(), cfg.Verbose)
	ctx := cmd.Context()

	eng, cleanup, err := buildEngine(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer cleanup()

	requests := expandRequests(o.requests, o.split)
	opts := engine.EditOptions{Strict: cfg.Strict || o.strict}

	var outcomes []types.EditOutcome
	written := ""
	if o.docPath != "" {
		outcomes, written, err = editFile(ctx, eng, o, requests, opts)
	} else {
		outcomes, err = editStored(ctx, cfg, logger, eng, o, requests, opts)
	}
	if err != nil {
		return err
	}

	if err := printOutcomes(cmd.OutOrStdout(), outcomes, o.jsonOut); err != nil {
		return err
	}
	if written != "" && !o.jsonOut {
		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Output: %s\n", written)
	}
	return notPossibleError(outcomes)
}

// editFile applies requests to a document file and writes the result when
// at least one edit was applied. It returns the path written, if any.
func editFile(ctx context.Context, eng *engine.Engine, o *editOptions, requests []string, opts engine.EditOptions) ([]types.EditOutcome, string, error) {
	doc, err := readDocument(o.docPath)
	if err != nil {
		return nil, "", err
	}

	outcomes, final := eng.ApplyEdits(ctx, requests, doc, opts)
	if o.dryRun || !anyApplied(outcomes) {
		return outcomes, "", nil
	}

	outPath := o.outPath
	if outPath == "" {
		outPath = o.docPath
	}
	if err := writeDocument(outPath, final); err != nil {
		return nil, "", err
	}
	return outcomes, outPath, nil
}

// editStored applies requests one at a time to a stored document, committing
// each applied edit with an optimistic version check.
func editStored(ctx context.Context, cfg *config.Config, logger *slog.Logger, eng *engine.Engine, o *editOptions, requests []string, opts engine.EditOptions) ([]types.EditOutcome, error) {
	id, err := uuid.Parse(o.docID)
	if err != nil {
		return nil, fmt.Errorf("invalid document ID %q: %w", o.docID, err)
	}
	dbURL := o.dbURL
	if dbURL == "" {
		dbURL = cfg.ResolveDatabaseURL()
	}
	if dbURL == "" {
		return nil, errors.New("a database URL is required with --doc-id (set DATABASE_URL or use --db-url)")
	}

	database, err := db.Connect(ctx, dbURL)
	if err != nil {
		return nil, err
	}
	defer database.Close()

	stored, err := database.GetDocument(ctx, id)
	if err != nil {
		return nil, err
	}
	doc, version := stored.Content, stored.Version

	outcomes := make([]types.EditOutcome, 0, len(requests))
	for _, request := range requests {
		outcome := eng.ApplyEditWithOptions(ctx, request, doc, opts)
		outcomes = append(outcomes, outcome)

		switch {
		case o.dryRun:
			if outcome.Status == types.StatusApplied {
				doc = outcome.UpdatedDocument
			}
		case outcome.Status == types.StatusApplied:
			edit := db.NewEdit(id, request, outcome, version+1)
			if version, err = database.CommitEdit(ctx, id, outcome.UpdatedDocument, version, edit); err != nil {
				return outcomes, err
			}
			doc = outcome.UpdatedDocument
		default:
			if err := database.RecordEdit(ctx, db.NewEdit(id, request, outcome, version)); err != nil {
				logger.Warn("failed to record edit", slog.String("document_id", id.String()), slog.Any("error", err))
			}
		}
	}
	return outcomes, nil
}

func printOutcomes(out io.Writer, outcomes []types.EditOutcome, asJSON bool) error {
	if asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		if err := enc.Encode(outcomes); err != nil {
			return fmt.Errorf("failed to encode outcomes: %w", err)
		}
		return nil
	}
	printer := observability.NewPrinter(out)
	for i := range outcomes {
		printer.PrintOutcome(&outcomes[i])
	}
	return nil
}

func notPossibleError(outcomes []types.EditOutcome) error {
	failed := 0
	for _, o := range outcomes {
		if o.Status == types.StatusNotPossible {
			failed++
		}
	}
	if failed == 0 {
		return nil
	}
	return fmt.Errorf("%d of %d edit(s) were not possible", failed, len(outcomes))
}
