package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/jonathan/resume-editor/internal/engine"
	"github.com/jonathan/resume-editor/internal/types"
)

type batchOptions struct {
	requests    []string
	outDir      string
	concurrency int
	strict      bool
	dryRun      bool
	split       bool
}

// batchResult tallies the outcomes for one document file
type batchResult struct {
	path        string
	written     string
	applied     int
	noChange    int
	notPossible int
	reasons     []string
}

func newBatchCmd(root *rootOptions) *cobra.Command {
	o := &batchOptions{}
	cmd := &cobra.Command{
		Use:   "batch [flags] DOC.json...",
		Short: "Apply the same edit requests to many documents",
		Long: `Applies the same request list to every document file given as an argument.
Documents are independent, so they are edited in parallel; requests within one
document still run in order.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBatch(cmd, root, o, args)
		},
	}

	cmd.Flags().StringArrayVarP(&o.requests, "request", "r", nil, "Edit request; repeat to apply several in order (required)")
	cmd.Flags().StringVar(&o.outDir, "out-dir", "", "Directory for edited documents (defaults to editing in place)")
	cmd.Flags().IntVar(&o.concurrency, "concurrency", 4, "Maximum documents edited at once")
	cmd.Flags().BoolVar(&o.strict, "strict", false, "Reject rewrites that change the section structure")
	cmd.Flags().BoolVar(&o.dryRun, "dry-run", false, "Report outcomes without writing files")
	cmd.Flags().BoolVar(&o.split, "split", false, "Split compound requests joined by 'and' or ';'")

	if err := cmd.MarkFlagRequired("request"); err != nil {
		panic(fmt.Sprintf("failed to mark request flag as required: %v", err))
	}
	return cmd
}

func runBatch(cmd *cobra.Command, root *rootOptions, o *batchOptions, paths []string) error {
	if o.concurrency < 1 {
		return fmt.Errorf("--concurrency must be at least 1, got %d", o.concurrency)
	}
	cfg, err := loadConfig(root)
	if err != nil {
		return err
	}
	logger := newLogger(cmd.ErrOrStderr(), cfg.Verbose)

	eng, cleanup, err := buildEngine(cmd.Context(), cfg, logger)
	if err != nil {
		return err
	}
	defer cleanup()

	requests := expandRequests(o.requests, o.split)
	opts := engine.EditOptions{Strict: cfg.Strict || o.strict}
	results := make([]batchResult, len(paths))

	g, ctx := errgroup.WithContext(cmd.Context())
	g.SetLimit(o.concurrency)
	for i, path := range paths {
		g.Go(func() error {
			doc, err := readDocument(path)
			if err != nil {
				return fmt.Errorf("%s: %w", path, err)
			}
			outcomes, final := eng.ApplyEdits(ctx, requests, doc, opts)
			res := tally(path, outcomes)

			if !o.dryRun && res.applied > 0 {
				out := path
				if o.outDir != "" {
					out = filepath.Join(o.outDir, filepath.Base(path))
				}
				if err := writeDocument(out, final); err != nil {
					return fmt.Errorf("%s: %w", path, err)
				}
				res.written = out
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	failed := 0
	for _, r := range results {
		_, _ = fmt.Fprintf(out, "%s: applied=%d no_change=%d not_possible=%d\n", r.path, r.applied, r.noChange, r.notPossible)
		for _, reason := range r.reasons {
			_, _ = fmt.Fprintf(out, "  - %s\n", reason)
		}
		if r.written != "" {
			_, _ = fmt.Fprintf(out, "  output: %s\n", r.written)
		}
		if r.notPossible > 0 {
			failed++
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d document(s) had edits that were not possible", failed, len(results))
	}
	return nil
}

func tally(path string, outcomes []types.EditOutcome) batchResult {
	res := batchResult{path: path}
	for _, o := range outcomes {
		switch o.Status {
		case types.StatusApplied:
			res.applied++
		case types.StatusNoChange:
			res.noChange++
		default:
			res.notPossible++
			res.reasons = append(res.reasons, o.Reason)
		}
	}
	return res
}
