package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/cognicore/datalog/pkg/datalog"
	"github.com/cognicore/datalog/pkg/datalog/config"
	"github.com/cognicore/datalog/pkg/datalog/interp"
	"github.com/cognicore/datalog/pkg/datalog/term"
)

func newQueryCmd(verbose *bool) *cobra.Command {
	var (
		cfgPath string
		queries []string
		arith   bool
	)

	cmd := &cobra.Command{
		Use:   "query [files...]",
		Short: "Answer goal conjunctions top-down against a program",
		RunE: func(cmd *cobra.Command, args []string) error {
			run := &config.Run{
				Files:      args,
				Queries:    queries,
				Arithmetic: arith,
			}
			if cfgPath != "" {
				loaded, err := config.LoadRun(cfgPath)
				if err != nil {
					return err
				}
				loaded.Merge(*run)
				run = loaded
				if err := run.Validate(); err != nil {
					return err
				}
			}

			logger, err := newLogger(*verbose)
			if err != nil {
				return err
			}
			defer logger.Sync() //nolint:errcheck

			var reg *interp.Registry
			if run.Arithmetic {
				reg = interp.NewRegistry()
				interp.Arith(reg)
			}

			engine := datalog.New(datalog.Options{Logger: logger, Interpreters: reg})
			for _, path := range run.Files {
				if err := engine.LoadFile(path); err != nil {
					return err
				}
			}

			out := cmd.OutOrStdout()
			for _, q := range run.Queries {
				rows, err := engine.AskQuery(q)
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "?- %s\n", q)
				if len(rows) == 0 {
					fmt.Fprintln(out, "  no")
					continue
				}
				for _, row := range rows {
					if len(row) == 0 {
						fmt.Fprintln(out, "  yes")
						continue
					}
					fmt.Fprintf(out, "  %s\n", joinTerms(row))
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&cfgPath, "config", "c", "", "YAML run configuration")
	cmd.Flags().StringArrayVarP(&queries, "query", "q", nil, "goal conjunction to answer")
	cmd.Flags().BoolVar(&arith, "arith", false, "enable built-in integer comparisons")
	return cmd
}

func joinTerms(row []term.Term) string {
	parts := make([]string, len(row))
	for i, t := range row {
		parts[i] = t.String()
	}
	return strings.Join(parts, ", ")
}
