// Package main provides the resume_editor CLI: apply edit requests to résumé
// documents, validate them, and serve the edit HTTP API.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

// rootOptions are the persistent flags shared by every command
type rootOptions struct {
	configPath string
	verbose    bool
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:           "resume_editor",
		Short:         "Résumé edit transaction engine",
		Long:          "Applies free-text edit requests to structured résumé documents, one section at a time, with validation, a render probe and rollback on failure.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().StringVar(&opts.configPath, "config", "", "Path to JSON config file")
	cmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "Print detailed debug information")

	cmd.AddCommand(
		newEditCmd(opts),
		newBatchCmd(opts),
		newValidateCmd(opts),
		newClassifyCmd(),
		newServeCmd(opts),
	)
	return cmd
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
