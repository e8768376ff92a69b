package main

import (
	"github.com/spf13/cobra"

	"github.com/dhamidi/docfront/java/parser"
	"github.com/dhamidi/docfront/lsp"
)

func newLSPCmd() *cobra.Command {
	var maxDepth int

	cmd := &cobra.Command{
		Use:   "lsp",
		Short: "Run a language server on stdio that reports syntax errors",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return lsp.NewServer(version, parser.WithMaxDepth(maxDepth)).RunStdio()
		},
	}

	cmd.Flags().IntVar(&maxDepth, "max-depth", parser.DefaultMaxDepth, "maximum nesting depth before a document is abandoned")

	return cmd
}
