// Package unify implements the scoped substitution store and the
// unification, matching and alpha-equivalence procedures both evaluators
// are built on.
package unify

import (
	"github.com/cognicore/datalog/pkg/datalog/term"
)

// Scope tags a variable-index namespace. Two instances of the same clause
// (or a query and a candidate clause) are combined under distinct scopes so
// their identically-numbered variables cannot collide.
type Scope int

type scopedVar struct {
	v term.Var
	s Scope
}

// binding is one (var, scope) -> (term, scope) entry in a persistent chain.
type binding struct {
	key  scopedVar
	t    term.Term
	ts   Scope
	next *binding
}

// Bindings is an immutable substitution. Bind returns an extended value and
// leaves the receiver usable, so resolution keeps earlier snapshots for
// backtracking without copying. The zero value is the empty substitution.
type Bindings struct {
	head *binding
}

// Bind extends the substitution with (v,vs) -> (t,ts). No occurs check is
// performed here; callers wanting cycle protection opt in on the Unifier.
func (b Bindings) Bind(v term.Var, vs Scope, t term.Term, ts Scope) Bindings {
	return Bindings{head: &binding{key: scopedVar{v, vs}, t: t, ts: ts, next: b.head}}
}

// Len returns the number of entries reachable from this view.
func (b Bindings) Len() int {
	n := 0
	for e := b.head; e != nil; e = e.next {
		n++
	}
	return n
}

func (b Bindings) lookup(v term.Var, s Scope) (term.Term, Scope, bool) {
	key := scopedVar{v, s}
	for e := b.head; e != nil; e = e.next {
		if e.key == key {
			return e.t, e.ts, true
		}
	}
	return nil, 0, false
}

// Deref follows variable bindings until it reaches an unbound variable or a
// non-variable term, returning the term paired with its scope.
func (b Bindings) Deref(t term.Term, s Scope) (term.Term, Scope) {
	for {
		v, ok := t.(term.Var)
		if !ok {
			return t, s
		}
		bt, bs, ok := b.lookup(v, s)
		if !ok {
			return t, s
		}
		t, s = bt, bs
	}
}

// Renaming maps previously unseen (variable, scope) pairs to globally fresh
// variable indices. It is mutable and short-lived: one Renaming per
// evaluation step, so dereferencing a substitution never leaks scope-tagged
// variables into a scope-free result.
type Renaming struct {
	next term.Var
	seen map[scopedVar]term.Var
}

// NewRenaming starts fresh indices at from.
func NewRenaming(from term.Var) *Renaming {
	return &Renaming{next: from, seen: make(map[scopedVar]term.Var)}
}

// Rename returns the fresh index for (v, s), allocating it on first sight.
func (r *Renaming) Rename(v term.Var, s Scope) term.Var {
	key := scopedVar{v, s}
	if fresh, ok := r.seen[key]; ok {
		return fresh
	}
	fresh := r.next
	r.next++
	r.seen[key] = fresh
	return fresh
}

// Resolve instantiates t under b, recursing through bindings and renaming
// any unbound variables via r. The result lives outside every scope.
func Resolve(b Bindings, t term.Term, s Scope, r *Renaming) term.Term {
	t, s = b.Deref(t, s)
	switch t := t.(type) {
	case term.Var:
		return r.Rename(t, s)
	case *term.Apply:
		if len(t.Args) == 0 {
			return t
		}
		args := make([]term.Term, len(t.Args))
		for i, arg := range t.Args {
			args[i] = Resolve(b, arg, s, r)
		}
		return term.NewApply(t.Head, args...)
	}
	return t
}

// ResolveLiteral instantiates a literal's term under b.
func ResolveLiteral(b Bindings, l term.Literal, s Scope, r *Renaming) term.Literal {
	return term.Literal{Negated: l.Negated, Term: Resolve(b, l.Term, s, r)}
}

// ResolveClause instantiates a whole clause under b.
func ResolveClause(b Bindings, c *term.Clause, s Scope, r *Renaming) *term.Clause {
	return c.Fmap(func(t term.Term) term.Term { return Resolve(b, t, s, r) })
}
