package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jonathan/resume-editor/internal/observability"
	"github.com/jonathan/resume-editor/internal/validation"
)

func newValidateCmd(root *rootOptions) *cobra.Command {
	var (
		docPath string
		jsonOut bool
	)
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate every section of a document",
		RunE: func(cmd *cobra.Command, _ []string) error {
			doc, err := readDocument(docPath)
			if err != nil {
				return err
			}
			logger := newLogger(cmd.ErrOrStderr(), root.verbose)
			reports := validation.ValidateDocument(doc, &validation.Options{Logger: logger})

			if jsonOut {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				if err := enc.Encode(reports); err != nil {
					return fmt.Errorf("failed to encode reports: %w", err)
				}
			} else {
				observability.NewPrinter(cmd.OutOrStdout()).PrintValidation(reports)
			}

			invalid := 0
			for _, r := range reports {
				if !r.Valid {
					invalid++
				}
			}
			if invalid > 0 {
				return fmt.Errorf("%d section(s) failed validation", invalid)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&docPath, "doc", "d", "", "Path to document JSON file (required)")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Print reports as JSON")
	if err := cmd.MarkFlagRequired("doc"); err != nil {
		panic(fmt.Sprintf("failed to mark doc flag as required: %v", err))
	}
	return cmd
}
