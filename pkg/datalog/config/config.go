package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/cognicore/datalog/pkg/datalog/internalerr"
)

// Run describes one evaluation run for the CLI: which program files to load
// and what to do with them. It replaces ad hoc process-global accumulator
// state with explicit configuration handed to the evaluation entry points.
type Run struct {
	// Files are paths to Datalog source files, loaded in order.
	Files []string `yaml:"files"`
	// Strategy picks the evaluator: "bottomup" (default) or "topdown".
	Strategy string `yaml:"strategy"`
	// Queries are goal conjunctions answered after loading.
	Queries []string `yaml:"queries"`
	// Patterns are terms matched against the saturated fact set.
	Patterns []string `yaml:"patterns"`
	// Explains are facts whose full supporting fact set is printed.
	Explains []string `yaml:"explains"`
	// Counts are predicate names whose facts are counted via subscription
	// during saturation.
	Counts []string `yaml:"counts"`
	// Arithmetic enables the built-in integer comparison predicates.
	Arithmetic bool `yaml:"arithmetic"`
}

const (
	StrategyBottomUp = "bottomup"
	StrategyTopDown  = "topdown"
)

// LoadRun loads and validates a run configuration from a YAML file.
func LoadRun(path string) (*Run, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var r Run
	if err := yaml.Unmarshal(data, &r); err != nil {
		return nil, err
	}
	if err := r.Validate(); err != nil {
		return nil, err
	}
	return &r, nil
}

// Merge folds command-line overrides into the configuration: list fields
// append in order, the arithmetic flag ors in, a non-empty strategy wins.
func (r *Run) Merge(o Run) {
	r.Files = append(r.Files, o.Files...)
	if o.Strategy != "" {
		r.Strategy = o.Strategy
	}
	r.Queries = append(r.Queries, o.Queries...)
	r.Patterns = append(r.Patterns, o.Patterns...)
	r.Explains = append(r.Explains, o.Explains...)
	r.Counts = append(r.Counts, o.Counts...)
	r.Arithmetic = r.Arithmetic || o.Arithmetic
}

// Validate checks strategy names and strategy-specific fields.
func (r *Run) Validate() error {
	switch r.Strategy {
	case "", StrategyBottomUp:
	case StrategyTopDown:
		if len(r.Explains) > 0 || len(r.Counts) > 0 || len(r.Patterns) > 0 {
			return fmt.Errorf("explains, counts and patterns need the bottomup strategy: %w",
				internalerr.ErrInvalidConfig)
		}
	default:
		return fmt.Errorf("unknown strategy %q: %w", r.Strategy, internalerr.ErrInvalidConfig)
	}
	return nil
}
