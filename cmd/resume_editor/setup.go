package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/jonathan/resume-editor/internal/classify"
	"github.com/jonathan/resume-editor/internal/config"
	"github.com/jonathan/resume-editor/internal/engine"
	"github.com/jonathan/resume-editor/internal/llm"
	"github.com/jonathan/resume-editor/internal/rendering"
	"github.com/jonathan/resume-editor/internal/types"
)

// loadConfig reads the optional config file, fills defaults and validates.
func loadConfig(opts *rootOptions) (*config.Config, error) {
	cfg := config.Defaults()
	if opts.configPath != "" {
		fileCfg, err := config.LoadConfig(opts.configPath)
		if err != nil {
			return nil, err
		}
		cfg = fileCfg.MergeWithDefaults(config.Defaults())
	}
	if opts.verbose {
		cfg.Verbose = true
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func newLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// buildEngine wires the generator and render prober into an Engine. Without
// an API key the engine still runs; free-text rewrites then fail as
// generation unavailable. The returned cleanup closes the generator.
func buildEngine(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*engine.Engine, func(), error) {
	prober, err := rendering.NewProber(rendering.ProberOptions{
		TemplatePath:            cfg.Template,
		CoverLetterTemplatePath: cfg.CoverLetterTemplate,
		Compile:                 cfg.CompileLaTeX,
		Timeout:                 cfg.RenderTimeout(),
	})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load templates: %w", err)
	}

	opts := engine.Options{
		Prober:            prober,
		Logger:            logger,
		Strict:            cfg.Strict,
		GenerationTimeout: cfg.GenerationTimeout(),
		RenderTimeout:     cfg.RenderTimeout(),
		DiffSizeThreshold: cfg.DiffSizeThreshold,
		LogContent:        cfg.LogContent,
	}
	if cfg.Verbose {
		opts.OnTransition = func(t engine.Transition) {
			logger.Debug("transition",
				slog.String("txn", t.TransactionID),
				slog.String("from", string(t.From)),
				slog.String("to", string(t.To)),
				slog.String("section", t.Section))
		}
	}

	cleanup := func() {}
	if apiKey := cfg.ResolveAPIKey(); apiKey != "" {
		llmCfg, err := llm.ConfigFor(llm.Provider(cfg.Provider), cfg.Model)
		if err != nil {
			return nil, nil, err
		}
		client, err := llm.NewClient(ctx, llmCfg, apiKey)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create LLM client: %w", err)
		}
		opts.Generator = client
		cleanup = func() { _ = client.Close() }
	} else {
		logger.Warn("no API key configured; free-text rewrites will be rejected",
			slog.String("provider", cfg.Provider))
	}

	return engine.New(opts), cleanup, nil
}

func readDocument(path string) (types.Document, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read document file: %w", err)
	}
	var doc types.Document
	if err := json.Unmarshal(content, &doc); err != nil {
		return nil, fmt.Errorf("failed to unmarshal document JSON: %w", err)
	}
	if doc == nil {
		return nil, fmt.Errorf("document %s is not a JSON object", path)
	}
	return doc, nil
}

func writeDocument(path string, doc types.Document) error {
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}
	jsonBytes, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}
	if err := os.WriteFile(path, append(jsonBytes, '\n'), 0644); err != nil {
		return fmt.Errorf("failed to write output file: %w", err)
	}
	return nil
}

// expandRequests optionally splits compound requests into their parts.
func expandRequests(requests []string, split bool) []string {
	if !split {
		return requests
	}
	var out []string
	for _, r := range requests {
		out = append(out, classify.SplitCompound(r)...)
	}
	return out
}

func anyApplied(outcomes []types.EditOutcome) bool {
	for _, o := range outcomes {
		if o.Status == types.StatusApplied {
			return true
		}
	}
	return false
}
