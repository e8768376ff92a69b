package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dhamidi/docfront/format"
	"github.com/dhamidi/docfront/java/diag"
	"github.com/dhamidi/docfront/java/parser"
)

func newParseCmd() *cobra.Command {
	var outputFormat string
	var as string
	var includePositions bool
	var showStats bool
	var maxDepth int

	cmd := &cobra.Command{
		Use:   "parse <file>",
		Short: "Parse a .java file and dump its syntax tree",
		Long: `Parse a .java file and dump its syntax tree.

Diagnostics are written to stderr. With --as expression or --as statement
the file holds a single expression or block statement instead of a
compilation unit.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			filename := args[0]
			data, err := os.ReadFile(filename)
			if err != nil {
				return fmt.Errorf("read java file: %w", err)
			}

			enc, err := format.NewEncoder(outputFormat, cmd.OutOrStdout(), includePositions)
			if err != nil {
				return err
			}

			src := parser.NewSource(filename, data)
			opts := []parser.Option{parser.WithMaxDepth(maxDepth)}
			var res *parser.Result
			switch as {
			case "unit":
				res = parser.Parse(cmd.Context(), src, opts...)
			case "expression":
				res = parser.ParseExpression(cmd.Context(), src, opts...)
			case "statement":
				res = parser.ParseStatement(cmd.Context(), src, opts...)
			default:
				return fmt.Errorf("unknown rule %q (expected unit, expression or statement)", as)
			}

			r := &diag.Renderer{Sources: func(string) *parser.Source { return src }}
			if err := r.RenderAll(cmd.ErrOrStderr(), res.Diagnostics); err != nil {
				return err
			}
			if showStats {
				s := res.Stats
				fmt.Fprintf(cmd.ErrOrStderr(), "tokens=%d steps=%d speculations=%d memo=%d hits=%d misses=%d\n",
					s.Tokens, s.Steps, s.Speculations, s.MemoEntries, s.MemoHits, s.MemoMisses)
			}

			if res.Unit != nil {
				if err := enc.Encode(res.Unit); err != nil {
					return fmt.Errorf("encode %s: %w", outputFormat, err)
				}
			}
			if res.Err != nil {
				return fmt.Errorf("parse %s: %w", filename, res.Err)
			}
			if res.Unit == nil {
				return fmt.Errorf("parse %s: no syntax tree", filename)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&outputFormat, "format", "f", "tree", "output format ("+strings.Join(format.Names, ", ")+")")
	cmd.Flags().StringVar(&as, "as", "unit", "what the file holds (unit, expression, statement)")
	cmd.Flags().BoolVar(&includePositions, "positions", false, "include spans in tree output")
	cmd.Flags().BoolVar(&showStats, "stats", false, "print parser statistics to stderr")
	cmd.Flags().IntVar(&maxDepth, "max-depth", parser.DefaultMaxDepth, "maximum nesting depth")

	return cmd
}
