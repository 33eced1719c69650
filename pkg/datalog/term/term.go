// Package term defines the immutable logical term model shared by both
// evaluation strategies: interned constants, variables, applications,
// literals and safety-checked clauses.
package term

import (
	"fmt"
	"sort"
	"strings"
	"sync"
)

// Const identifies an interned constant symbol. Predicate names and atomic
// values are both constants; interning keeps term comparison cheap.
type Const int32

// symtab is the process-wide intern table. Constants are never released.
var symtab = struct {
	mu    sync.RWMutex
	ids   map[string]Const
	names []string
}{ids: make(map[string]Const)}

// Intern returns the constant for name, creating it on first use.
func Intern(name string) Const {
	symtab.mu.RLock()
	c, ok := symtab.ids[name]
	symtab.mu.RUnlock()
	if ok {
		return c
	}

	symtab.mu.Lock()
	defer symtab.mu.Unlock()
	if c, ok := symtab.ids[name]; ok {
		return c
	}
	c = Const(len(symtab.names))
	symtab.names = append(symtab.names, name)
	symtab.ids[name] = c
	return c
}

// Name returns the surface name the constant was interned under.
func (c Const) Name() string {
	symtab.mu.RLock()
	defer symtab.mu.RUnlock()
	if int(c) < 0 || int(c) >= len(symtab.names) {
		return fmt.Sprintf("<const:%d>", int32(c))
	}
	return symtab.names[c]
}

func (c Const) String() string { return c.Name() }

// Term is either a variable or an application of a constant to subterms.
// Terms are immutable once built. Equality on Term values is structural;
// alpha-equivalence lives in the unify package.
type Term interface {
	fmt.Stringer
	isTerm()
}

// Var is a logical variable identified by a non-negative index. The index is
// meaningful only relative to a scope tag: the same index in two scopes
// denotes unrelated variables.
type Var int

func (Var) isTerm() {}

func (v Var) String() string { return fmt.Sprintf("X%d", int(v)) }

// Apply is a constant applied to zero or more subterms. A 0-ary Apply is an
// atomic constant.
type Apply struct {
	Head Const
	Args []Term
}

func (*Apply) isTerm() {}

// NewApply builds an application term. The args slice is not copied; callers
// must not mutate it afterwards.
func NewApply(head Const, args ...Term) *Apply {
	return &Apply{Head: head, Args: args}
}

// Atom builds a 0-ary application for name.
func Atom(name string) *Apply { return NewApply(Intern(name)) }

// App builds an application for name over args.
func App(name string, args ...Term) *Apply { return NewApply(Intern(name), args...) }

func (a *Apply) String() string {
	if len(a.Args) == 0 {
		return a.Head.Name()
	}
	var sb strings.Builder
	sb.WriteString(a.Head.Name())
	sb.WriteByte('(')
	for i, arg := range a.Args {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(arg.String())
	}
	sb.WriteByte(')')
	return sb.String()
}

// IsVar reports whether t is a variable.
func IsVar(t Term) bool {
	_, ok := t.(Var)
	return ok
}

// IsApply reports whether t is an application.
func IsApply(t Term) bool {
	_, ok := t.(*Apply)
	return ok
}

// IsConst reports whether t is an atomic constant (0-ary application).
func IsConst(t Term) bool {
	a, ok := t.(*Apply)
	return ok && len(a.Args) == 0
}

// IsGround reports whether t contains no variables.
func IsGround(t Term) bool {
	switch t := t.(type) {
	case Var:
		return false
	case *Apply:
		for _, arg := range t.Args {
			if !IsGround(arg) {
				return false
			}
		}
		return true
	}
	return false
}

// Vars returns the sorted set of variable indices free in t.
func Vars(t Term) []Var {
	set := make(map[Var]struct{})
	collectVars(t, set)
	out := make([]Var, 0, len(set))
	for v := range set {
		out = append(out, v)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func collectVars(t Term, set map[Var]struct{}) {
	switch t := t.(type) {
	case Var:
		set[t] = struct{}{}
	case *Apply:
		for _, arg := range t.Args {
			collectVars(arg, set)
		}
	}
}

// MaxVar returns the largest variable index in t, or 0 when t is ground.
func MaxVar(t Term) Var {
	var max Var
	switch t := t.(type) {
	case Var:
		return t
	case *Apply:
		for _, arg := range t.Args {
			if m := MaxVar(arg); m > max {
				max = m
			}
		}
	}
	return max
}

// HeadSymbol returns the constant heading an application term. The second
// result is false when t is a variable.
func HeadSymbol(t Term) (Const, bool) {
	a, ok := t.(*Apply)
	if !ok {
		return 0, false
	}
	return a.Head, true
}

// Fmap applies f to every subterm of t, bottom-up, rebuilding applications.
// Variables and constants are handed to f directly.
func Fmap(f func(Term) Term, t Term) Term {
	a, ok := t.(*Apply)
	if !ok || len(a.Args) == 0 {
		return f(t)
	}
	args := make([]Term, len(a.Args))
	for i, arg := range a.Args {
		args[i] = Fmap(f, arg)
	}
	return f(NewApply(a.Head, args...))
}
