package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dhamidi/docfront/java/diag"
	"github.com/dhamidi/docfront/java/driver"
)

func newCheckCmd() *cobra.Command {
	var configPath string
	var flags driver.Config

	cmd := &cobra.Command{
		Use:   "check [paths...]",
		Short: "Parse a tree of .java files and report syntax errors",
		Long: `Parse a tree of .java files and report syntax errors.

Settings come from docfront.yaml in the working directory, or the file
named by --config, and are overridden by flags. Paths given on the command
line replace the configured roots. The command fails when any file has
errors.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadCheckConfig(configPath)
			if err != nil {
				return err
			}
			if len(args) > 0 {
				cfg.Roots = args
			}
			fs := cmd.Flags()
			if fs.Changed("include") {
				cfg.Include = flags.Include
			}
			if fs.Changed("exclude") {
				cfg.Exclude = flags.Exclude
			}
			if fs.Changed("jobs") {
				cfg.Jobs = flags.Jobs
			}
			if fs.Changed("max-depth") {
				cfg.MaxDepth = flags.MaxDepth
			}
			if fs.Changed("timeout") {
				cfg.UnitTimeout = flags.UnitTimeout
			}

			sink := diag.NewCollector()
			units, err := driver.Run(cmd.Context(), cfg, sink)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			r := &diag.Renderer{Sources: sink.Source}
			if err := r.RenderAll(out, sink.All()); err != nil {
				return err
			}

			failed := 0
			for _, u := range units {
				if u.Source == nil && u.Err != nil {
					fmt.Fprintf(out, "%s\n", u.Err)
				}
				if u.Failed() {
					failed++
				}
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "%d files checked, %d with errors, %d diagnostics\n", len(units), failed, sink.Len())
			if failed > 0 {
				return fmt.Errorf("%d of %d files have errors", failed, len(units))
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "configuration file (default ./"+driver.ConfigFile+" if present)")
	cmd.Flags().StringSliceVar(&flags.Include, "include", nil, "glob of files to parse, relative to each root")
	cmd.Flags().StringSliceVar(&flags.Exclude, "exclude", nil, "glob of files or directories to skip")
	cmd.Flags().IntVarP(&flags.Jobs, "jobs", "j", 0, "files parsed in parallel")
	cmd.Flags().IntVar(&flags.MaxDepth, "max-depth", 0, "maximum nesting depth")
	cmd.Flags().DurationVar(&flags.UnitTimeout, "timeout", 0, "time limit per file")

	return cmd
}

func loadCheckConfig(path string) (driver.Config, error) {
	if path != "" {
		return driver.LoadConfig(path)
	}
	return driver.FindConfig(".")
}
