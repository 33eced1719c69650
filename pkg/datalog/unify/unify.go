package unify

import (
	"fmt"

	"github.com/cognicore/datalog/pkg/datalog/internalerr"
	"github.com/cognicore/datalog/pkg/datalog/term"
)

// Unifier holds the options for unification and matching. The zero value
// unifies without an occurs check, which is the fast default; callers that
// need termination guarantees against cyclic bindings opt in.
type Unifier struct {
	OccursCheck bool
}

type mode int

const (
	modeUnify mode = iota
	modeMatch
)

// Unify extends b so that a (in scope sa) and c (in scope sc) become equal,
// or fails with ErrNoUnifier. It is symmetric: either side's variables may
// receive bindings.
func (u Unifier) Unify(b Bindings, a term.Term, sa Scope, c term.Term, sc Scope) (Bindings, error) {
	return u.walk(b, modeUnify, a, sa, c, sc, 0)
}

// Match is the directional restriction of Unify: only the pattern's
// variables may bind, the target's are held fixed. The two sides must live
// in distinct scopes.
func (u Unifier) Match(b Bindings, pattern term.Term, sp Scope, target term.Term, st Scope) (Bindings, error) {
	return u.walk(b, modeMatch, pattern, sp, target, st, st)
}

// Unify is a convenience for the zero Unifier (occurs check disabled).
func Unify(b Bindings, a term.Term, sa Scope, c term.Term, sc Scope) (Bindings, error) {
	return Unifier{}.Unify(b, a, sa, c, sc)
}

// Match is a convenience for the zero Unifier (occurs check disabled).
func Match(b Bindings, pattern term.Term, sp Scope, target term.Term, st Scope) (Bindings, error) {
	return Unifier{}.Match(b, pattern, sp, target, st)
}

// walk unifies one term pair. In match mode, fixed names the target's
// scope: no variable living there may receive a binding, even when a pattern
// variable dereferences into it through an earlier aliasing bind.
func (u Unifier) walk(b Bindings, m mode, a term.Term, sa Scope, c term.Term, sc Scope, fixed Scope) (Bindings, error) {
	a, sa = b.Deref(a, sa)
	c, sc = b.Deref(c, sc)

	av, aIsVar := a.(term.Var)
	cv, cIsVar := c.(term.Var)

	switch {
	case aIsVar && cIsVar && av == cv && sa == sc:
		return b, nil

	case aIsVar:
		if m == modeMatch && sa == fixed {
			return b, fmt.Errorf("target variable %s against %s: %w", av, c, internalerr.ErrNoUnifier)
		}
		if u.OccursCheck && occurs(b, av, sa, c, sc) {
			return b, fmt.Errorf("occurs check: %s in %s: %w", av, c, internalerr.ErrNoUnifier)
		}
		return b.Bind(av, sa, c, sc), nil

	case cIsVar:
		if m == modeMatch {
			// The matched side is held fixed; its variables never bind.
			return b, fmt.Errorf("pattern term %s against target variable %s: %w",
				a, cv, internalerr.ErrNoUnifier)
		}
		if u.OccursCheck && occurs(b, cv, sc, a, sa) {
			return b, fmt.Errorf("occurs check: %s in %s: %w", cv, a, internalerr.ErrNoUnifier)
		}
		return b.Bind(cv, sc, a, sa), nil

	default:
		aa := a.(*term.Apply)
		ca := c.(*term.Apply)
		if aa.Head != ca.Head {
			return b, fmt.Errorf("%s vs %s: %w", aa.Head, ca.Head, internalerr.ErrNoUnifier)
		}
		if len(aa.Args) != len(ca.Args) {
			return b, fmt.Errorf("%s arity %d vs %d: %w",
				aa.Head, len(aa.Args), len(ca.Args), internalerr.ErrNoUnifier)
		}
		var err error
		for i := range aa.Args {
			b, err = u.walk(b, m, aa.Args[i], sa, ca.Args[i], sc, fixed)
			if err != nil {
				return b, err
			}
		}
		return b, nil
	}
}

// occurs reports whether (v, vs) occurs in t (under b, in scope ts).
func occurs(b Bindings, v term.Var, vs Scope, t term.Term, ts Scope) bool {
	t, ts = b.Deref(t, ts)
	switch t := t.(type) {
	case term.Var:
		return t == v && ts == vs
	case *term.Apply:
		for _, arg := range t.Args {
			if occurs(b, v, vs, arg, ts) {
				return true
			}
		}
	}
	return false
}

// AlphaEquiv reports whether a and b are identical up to a consistent,
// injective renaming of variables. Scope-free: both terms are read in their
// own index space.
func AlphaEquiv(a, b term.Term) bool {
	fwd := make(map[term.Var]term.Var)
	rev := make(map[term.Var]term.Var)
	return alphaWalk(a, b, fwd, rev)
}

func alphaWalk(a, b term.Term, fwd, rev map[term.Var]term.Var) bool {
	switch a := a.(type) {
	case term.Var:
		bv, ok := b.(term.Var)
		if !ok {
			return false
		}
		if mapped, seen := fwd[a]; seen {
			return mapped == bv
		}
		if _, taken := rev[bv]; taken {
			// A second variable mapping onto bv would collapse two
			// distinct variables; the renaming must stay injective.
			return false
		}
		fwd[a] = bv
		rev[bv] = a
		return true
	case *term.Apply:
		ba, ok := b.(*term.Apply)
		if !ok || a.Head != ba.Head || len(a.Args) != len(ba.Args) {
			return false
		}
		for i := range a.Args {
			if !alphaWalk(a.Args[i], ba.Args[i], fwd, rev) {
				return false
			}
		}
		return true
	}
	return false
}

// ClauseAlphaEquiv extends AlphaEquiv to whole clauses: the renaming is
// shared across head and body, body order and literal signs are significant.
func ClauseAlphaEquiv(a, b *term.Clause) bool {
	if len(a.Body) != len(b.Body) {
		return false
	}
	fwd := make(map[term.Var]term.Var)
	rev := make(map[term.Var]term.Var)
	if !alphaWalk(a.Head, b.Head, fwd, rev) {
		return false
	}
	for i := range a.Body {
		if a.Body[i].Negated != b.Body[i].Negated {
			return false
		}
		if !alphaWalk(a.Body[i].Term, b.Body[i].Term, fwd, rev) {
			return false
		}
	}
	return true
}
