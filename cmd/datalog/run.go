package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cognicore/datalog/internal/stats"
	"github.com/cognicore/datalog/pkg/datalog"
	"github.com/cognicore/datalog/pkg/datalog/ast"
	"github.com/cognicore/datalog/pkg/datalog/bottomup"
	"github.com/cognicore/datalog/pkg/datalog/config"
	"github.com/cognicore/datalog/pkg/datalog/interp"
	"github.com/cognicore/datalog/pkg/datalog/term"
	"github.com/cognicore/datalog/pkg/datalog/unify"
)

func newRunCmd(verbose *bool) *cobra.Command {
	var (
		cfgPath   string
		patterns  []string
		explains  []string
		counts    []string
		arith     bool
		showStats bool
	)

	cmd := &cobra.Command{
		Use:   "run [files...]",
		Short: "Saturate a program bottom-up and report on the derived facts",
		RunE: func(cmd *cobra.Command, args []string) error {
			run := &config.Run{
				Files:      args,
				Patterns:   patterns,
				Explains:   explains,
				Counts:     counts,
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

			// Subscriptions must exist before the clauses go in, so the
			// saturation is loaded by hand here instead of via Saturate.
			db := bottomup.New(bottomup.Options{Logger: logger, Interpreters: reg})
			counters := make(map[string]*int, len(run.Counts))
			for _, name := range run.Counts {
				n := new(int)
				counters[name] = n
				db.Subscribe(term.Intern(name), func(term.Term) { *n++ })
			}
			for _, c := range engine.Clauses() {
				if err := db.Add(c); err != nil {
					return err
				}
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "saturated: %d facts, %d rules\n", db.Size(), db.NumRules())

			for _, name := range run.Counts {
				fmt.Fprintf(out, "count %s: %d\n", name, *counters[name])
			}

			for _, p := range run.Patterns {
				pattern, err := parseGoal(p)
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "match %s:\n", pattern)
				db.Match(pattern, func(fact term.Term, _ unify.Bindings) {
					fmt.Fprintf(out, "  %s\n", fact)
				})
			}

			for _, e := range run.Explains {
				goal, err := parseGoal(e)
				if err != nil {
					return err
				}
				support, err := db.Explain(goal)
				if err != nil {
					return err
				}
				d, err := db.Derivation(goal)
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "explain %s [%s]:\n", goal, d.ID)
				for _, f := range support {
					fmt.Fprintf(out, "  %s\n", f)
				}
			}

			if showStats {
				fmt.Fprintln(out, stats.ReadHeap())
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&cfgPath, "config", "c", "", "YAML run configuration")
	cmd.Flags().StringArrayVarP(&patterns, "pattern", "p", nil, "pattern to match against the saturated facts")
	cmd.Flags().StringArrayVarP(&explains, "explain", "e", nil, "fact to explain after saturation")
	cmd.Flags().StringArrayVar(&counts, "count", nil, "predicate name to count during saturation")
	cmd.Flags().BoolVar(&arith, "arith", false, "enable built-in integer comparisons")
	cmd.Flags().BoolVar(&showStats, "stats", false, "print heap statistics after the run")
	return cmd
}

// parseGoal parses a single (possibly non-ground) term.
func parseGoal(src string) (term.Term, error) {
	parsed, err := ast.ParseTerm(src)
	if err != nil {
		return nil, err
	}
	return ast.TermOf(parsed, ast.NewVarCtx()), nil
}
