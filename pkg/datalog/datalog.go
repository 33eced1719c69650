// Package datalog is the engine facade: it ties the parsing boundary to the
// two evaluation strategies so callers can load textual programs and query
// them without wiring the subpackages by hand.
package datalog

import (
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/cognicore/datalog/pkg/datalog/ast"
	"github.com/cognicore/datalog/pkg/datalog/bottomup"
	"github.com/cognicore/datalog/pkg/datalog/interp"
	"github.com/cognicore/datalog/pkg/datalog/term"
	"github.com/cognicore/datalog/pkg/datalog/topdown"
)

// Options configures an Engine.
type Options struct {
	// Logger traces evaluation. Nil means no logging.
	Logger *zap.Logger
	// Interpreters serves interpreted predicates to the top-down resolver.
	Interpreters *interp.Registry
}

// Engine accumulates a program and hands it to either evaluator.
type Engine struct {
	logger  *zap.Logger
	reg     *interp.Registry
	clauses []*term.Clause
}

// New creates an engine with the given dependencies.
func New(opts Options) *Engine {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{logger: logger, reg: opts.Interpreters}
}

// Add appends one already-built clause to the program.
func (e *Engine) Add(c *term.Clause) {
	e.clauses = append(e.clauses, c)
}

// LoadString parses src and appends its clauses to the program.
func (e *Engine) LoadString(src string) error {
	parsed, err := ast.Parse(src)
	if err != nil {
		return err
	}
	clauses, err := ast.ClausesOf(parsed)
	if err != nil {
		return err
	}
	e.clauses = append(e.clauses, clauses...)
	e.logger.Debug("program loaded", zap.Int("clauses", len(clauses)))
	return nil
}

// LoadFile parses the file at path and appends its clauses.
func (e *Engine) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := e.LoadString(string(data)); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	return nil
}

// Clauses returns the accumulated program.
func (e *Engine) Clauses() []*term.Clause { return e.clauses }

// Saturate loads the program into a fresh bottom-up database, driving it to
// its fixpoint. Subscriptions cannot observe this load; use the returned DB
// directly when streaming aggregation is needed.
func (e *Engine) Saturate() (*bottomup.DB, error) {
	db := bottomup.New(bottomup.Options{Logger: e.logger, Interpreters: e.reg})
	for _, c := range e.clauses {
		if err := db.Add(c); err != nil {
			return nil, err
		}
	}
	return db, nil
}

// Resolver loads the program into a fresh top-down database.
func (e *Engine) Resolver() (*topdown.DB, error) {
	db := topdown.New(topdown.Options{Logger: e.logger, Interpreters: e.reg})
	for _, c := range e.clauses {
		if err := db.AddClause(c); err != nil {
			return nil, err
		}
	}
	return db, nil
}

// Ask parses a goal term and answers it top-down, returning its provable
// ground instantiations.
func (e *Engine) Ask(goal string) ([]term.Term, error) {
	parsed, err := ast.ParseTerm(goal)
	if err != nil {
		return nil, err
	}
	ctx := ast.NewVarCtx()
	g := ast.TermOf(parsed, ctx)
	db, err := e.Resolver()
	if err != nil {
		return nil, err
	}
	return db.Ask(g)
}

// AskQuery parses a conjunction of literals and answers it top-down,
// returning one row of bindings per solution: the values of the query's
// variables in first-occurrence order.
func (e *Engine) AskQuery(query string) ([][]term.Term, error) {
	parsed, err := ast.ParseQuery(query)
	if err != nil {
		return nil, err
	}
	ctx := ast.NewVarCtx()
	lits := make([]term.Literal, len(parsed))
	for i, l := range parsed {
		lits[i] = ast.LitOf(l, ctx)
	}
	var vars []term.Var
	seen := make(map[term.Var]struct{})
	for _, l := range lits {
		for _, v := range term.Vars(l.Term) {
			if _, ok := seen[v]; !ok {
				seen[v] = struct{}{}
				vars = append(vars, v)
			}
		}
	}
	db, err := e.Resolver()
	if err != nil {
		return nil, err
	}
	return db.AskLits(vars, lits)
}
