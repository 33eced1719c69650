package topdown

import (
	"go.uber.org/zap"

	"github.com/cognicore/datalog/pkg/datalog/index"
	"github.com/cognicore/datalog/pkg/datalog/term"
	"github.com/cognicore/datalog/pkg/datalog/unify"
)

// queryScope is the scope the caller's goal lives in. Every clause instance
// resolved against gets its own fresh scope, so variables from separate rule
// applications can share one substitution without capture.
const queryScope unify.Scope = 0

// groundScope tags stored facts, which bind nothing.
const groundScope unify.Scope = -1

type scopes struct {
	last unify.Scope
}

func (s *scopes) fresh() unify.Scope {
	s.last++
	return s.last
}

// Ask returns the ground instantiations of goal provable from the database,
// deduplicated. Extra clauses, if given, are layered into a child database
// for the duration of the call; the receiver is not mutated.
//
// The program is validated for stratified negation first; a cycle through a
// negative edge fails the whole call with ErrNonStratified.
func (db *DB) Ask(goal term.Term, extra ...*term.Clause) ([]term.Term, error) {
	target := db
	if len(extra) > 0 {
		target = NewChild(db)
		for _, c := range extra {
			if err := target.AddClause(c); err != nil {
				return nil, err
			}
		}
	}
	if err := target.checkStratified(); err != nil {
		return nil, err
	}

	seen := index.NewTermIndex[struct{}]()
	var out []term.Term
	target.solve(goal, queryScope, unify.Bindings{}, &scopes{}, func(b unify.Bindings) {
		inst := unify.Resolve(b, goal, queryScope, unify.NewRenaming(0))
		if seen.Put(inst, struct{}{}) {
			out = append(out, inst)
		}
	})

	db.logger.Debug("ask answered",
		zap.Stringer("goal", goal),
		zap.Int("answers", len(out)))
	return out, nil
}

// answerSym heads the clause AskLits synthesizes. The parser cannot produce
// a '$'-prefixed name, so stored programs never collide with it.
var answerSym = term.Intern("$answer")

// AskLits answers a conjunction of literals: for each solution it returns
// the bindings of vars, in order. It behaves as if querying a synthesized
// clause `$answer(vars...) :- lits`, which must itself be safe.
func (db *DB) AskLits(vars []term.Var, lits []term.Literal, extra ...*term.Clause) ([][]term.Term, error) {
	args := make([]term.Term, len(vars))
	for i, v := range vars {
		args[i] = v
	}
	head := term.NewApply(answerSym, args...)
	c, err := term.NewClause(head, lits)
	if err != nil {
		return nil, err
	}

	target := NewChild(db)
	for _, ec := range extra {
		if err := target.AddClause(ec); err != nil {
			return nil, err
		}
	}
	if err := target.AddClause(c); err != nil {
		return nil, err
	}

	answers, err := target.Ask(head)
	if err != nil {
		return nil, err
	}
	rows := make([][]term.Term, len(answers))
	for i, a := range answers {
		rows[i] = a.(*term.Apply).Args
	}
	return rows, nil
}

// solve proves goal under b, calling emit once per solution. Unification
// failures only prune branches; they never surface to the caller.
func (db *DB) solve(goal term.Term, gs unify.Scope, b unify.Bindings, sc *scopes, emit func(unify.Bindings)) {
	g, gsd := b.Deref(goal, gs)
	app, ok := g.(*term.Apply)
	if !ok {
		return
	}
	sym := app.Head

	for _, f := range db.factsFor(sym) {
		if nb, err := unify.Unify(b, g, gsd, f, groundScope); err == nil {
			emit(nb)
		}
	}

	for _, c := range db.rulesFor(sym) {
		db.solveClause(g, gsd, c, b, sc, emit)
	}

	for _, fn := range db.interpretersFor(sym) {
		// Interpreters see the goal as currently instantiated, outside
		// any scope.
		inst := unify.Resolve(b, g, gsd, unify.NewRenaming(0))
		for _, c := range fn(inst) {
			if hs, ok := c.HeadSymbol(); !ok || hs != sym {
				continue
			}
			db.solveClause(g, gsd, c, b, sc, emit)
		}
	}
}

// solveClause resolves goal against one clause instance in a fresh scope and
// proves the body.
func (db *DB) solveClause(goal term.Term, gs unify.Scope, c *term.Clause, b unify.Bindings, sc *scopes, emit func(unify.Bindings)) {
	cs := sc.fresh()
	nb, err := unify.Unify(b, goal, gs, c.Head, cs)
	if err != nil {
		return
	}
	db.solveBody(reorder(c.Body), 0, cs, nb, sc, emit)
}

// reorder moves negated literals after the positives, preserving relative
// order. Safety guarantees their variables are bound by some positive
// literal, and evaluating the positives first makes that binding happen
// before negation as failure is applied.
func reorder(body []term.Literal) []term.Literal {
	neg := 0
	for _, l := range body {
		if l.Negated {
			neg++
		}
	}
	if neg == 0 {
		return body
	}
	out := make([]term.Literal, 0, len(body))
	for _, l := range body {
		if !l.Negated {
			out = append(out, l)
		}
	}
	for _, l := range body {
		if l.Negated {
			out = append(out, l)
		}
	}
	return out
}

func (db *DB) solveBody(lits []term.Literal, i int, cs unify.Scope, b unify.Bindings, sc *scopes, emit func(unify.Bindings)) {
	if i == len(lits) {
		emit(b)
		return
	}
	l := lits[i]
	if l.Negated {
		// Negation as failure: the branch survives only when the (now
		// ground) positive form has no proof.
		proved := false
		db.solve(l.Term, cs, b, sc, func(unify.Bindings) { proved = true })
		if !proved {
			db.solveBody(lits, i+1, cs, b, sc, emit)
		}
		return
	}
	db.solve(l.Term, cs, b, sc, func(nb unify.Bindings) {
		db.solveBody(lits, i+1, cs, nb, sc, emit)
	})
}
