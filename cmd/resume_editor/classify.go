package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/jonathan/resume-editor/internal/classify"
)

func newClassifyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "classify REQUEST",
		Short: "Show which section a request targets",
		Long:  "Prints the edit type, target section and scope check for a request without applying it. Compound requests are also shown split into their parts.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			describe(out, args[0], "")

			parts := classify.SplitCompound(args[0])
			if len(parts) > 1 {
				_, _ = fmt.Fprintf(out, "parts: %d\n", len(parts))
				for i, part := range parts {
					_, _ = fmt.Fprintf(out, "[%d] %s\n", i+1, part)
					describe(out, part, "    ")
				}
			}
			return nil
		},
	}
}

func describe(out io.Writer, request, indent string) {
	if err := classify.CheckScope(request); err != nil {
		_, _ = fmt.Fprintf(out, "%sscope: rejected (%v)\n", indent, err)
		return
	}
	_, _ = fmt.Fprintf(out, "%sscope: ok\n", indent)

	editType := classify.Classify(request)
	_, _ = fmt.Fprintf(out, "%sedit_type: %s\n", indent, editType)
	if section, ok := classify.SectionFor(editType); ok {
		_, _ = fmt.Fprintf(out, "%ssection: %s\n", indent, section)
	} else {
		_, _ = fmt.Fprintf(out, "%ssection: (none)\n", indent)
	}
}
