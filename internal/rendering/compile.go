package rendering

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"
)

const (
	// CompilationTimeout is the maximum time to wait for LaTeX compilation
	CompilationTimeout = 30 * time.Second
)

// CompileLaTeX compiles LaTeX source with pdflatex in a scratch directory that is
// removed afterwards. It returns the combined pdflatex output.
func CompileLaTeX(ctx context.Context, source, name string) (logOutput string, err error) {
	if _, err := exec.LookPath("pdflatex"); err != nil {
		return "", &CompilationError{
			Message: "pdflatex not found in PATH. Please install a LaTeX distribution (e.g., TeX Live, MiKTeX)",
			Cause:   err,
		}
	}

	workDir, err := os.MkdirTemp("", "latex-compile-*")
	if err != nil {
		return "", &CompilationError{
			Message: "failed to create temporary working directory",
			Cause:   err,
		}
	}
	defer func() { _ = os.RemoveAll(workDir) }()

	if name == "" {
		name = "document"
	}
	texPath := filepath.Join(workDir, name+".tex")
	if err := os.WriteFile(texPath, []byte(source), 0644); err != nil {
		return "", &CompilationError{
			Message: fmt.Sprintf("failed to write LaTeX file to working directory: %s", workDir),
			Cause:   err,
		}
	}

	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, CompilationTimeout)
		defer cancel()
	}

	// nonstopmode prevents pdflatex from waiting on stdin
	cmd := exec.CommandContext(ctx, "pdflatex", "-interaction=nonstopmode", "-halt-on-error", "-output-directory", workDir, texPath)
	var stdout, stderr strings.Builder
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	runErr := cmd.Run()
	logOutput = stdout.String() + stderr.String()

	if ctx.Err() != nil {
		return logOutput, &CompilationError{
			Message:   "LaTeX compilation timed out",
			LogOutput: logOutput,
			Cause:     ctx.Err(),
		}
	}

	pdfPath := filepath.Join(workDir, name+".pdf")
	if _, err := os.Stat(pdfPath); os.IsNotExist(err) {
		return logOutput, &CompilationError{
			Message:   "LaTeX compilation failed: PDF was not generated",
			LogOutput: logOutput,
			Cause:     runErr,
		}
	}
	if runErr != nil {
		return logOutput, &CompilationError{
			Message:   "LaTeX compilation completed with errors",
			LogOutput: logOutput,
			Cause:     runErr,
		}
	}
	return logOutput, nil
}
