// Package interp holds the registry of interpreted predicates: predicates
// whose extension is computed on demand instead of stored as facts, such as
// arithmetic comparisons over an unbounded domain.
package interp

import (
	"strconv"

	"github.com/cognicore/datalog/pkg/datalog/term"
)

// Interpreter receives a goal term and returns zero or more safe clauses
// sharing the goal's head symbol. The resolver treats the returned clauses
// exactly like stored clauses for one resolution step.
type Interpreter func(goal term.Term) []*term.Clause

// Registry maps constants to the interpreters consulted for goals headed by
// them. Multiple interpreters may serve the same constant.
type Registry struct {
	m map[term.Const][]Interpreter
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{m: make(map[term.Const][]Interpreter)}
}

// Register adds fn as an interpreter for goals headed by c.
func (r *Registry) Register(c term.Const, fn Interpreter) {
	r.m[c] = append(r.m[c], fn)
}

// Lookup returns the interpreters registered for c.
func (r *Registry) Lookup(c term.Const) []Interpreter {
	if r == nil {
		return nil
	}
	return r.m[c]
}

// Interpreted reports whether any interpreter serves c.
func (r *Registry) Interpreted(c term.Const) bool {
	return r != nil && len(r.m[c]) > 0
}

// Arith registers the integer comparison predicates lt, le, gt, ge, eq and
// neq on r. Each succeeds on a fully instantiated goal over two constants
// that parse as integers; anything else yields no clauses.
func Arith(r *Registry) {
	cmp := func(name string, ok func(a, b int64) bool) {
		r.Register(term.Intern(name), func(goal term.Term) []*term.Clause {
			a, b, valid := intPair(goal)
			if !valid || !ok(a, b) {
				return nil
			}
			fact, err := term.NewFact(goal)
			if err != nil {
				return nil
			}
			return []*term.Clause{fact}
		})
	}
	cmp("lt", func(a, b int64) bool { return a < b })
	cmp("le", func(a, b int64) bool { return a <= b })
	cmp("gt", func(a, b int64) bool { return a > b })
	cmp("ge", func(a, b int64) bool { return a >= b })
	cmp("eq", func(a, b int64) bool { return a == b })
	cmp("neq", func(a, b int64) bool { return a != b })
}

// intPair extracts two integer constants from a binary goal.
func intPair(goal term.Term) (int64, int64, bool) {
	app, ok := goal.(*term.Apply)
	if !ok || len(app.Args) != 2 {
		return 0, 0, false
	}
	a, ok := intArg(app.Args[0])
	if !ok {
		return 0, 0, false
	}
	b, ok := intArg(app.Args[1])
	if !ok {
		return 0, 0, false
	}
	return a, b, true
}

func intArg(t term.Term) (int64, bool) {
	if !term.IsConst(t) {
		return 0, false
	}
	n, err := strconv.ParseInt(t.(*term.Apply).Head.Name(), 10, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}
