package ast

import (
	"github.com/cognicore/datalog/pkg/datalog/term"
)

// VarCtx maps surface variable names to term variables. One context spans
// one top-level clause, so repeated names within a clause denote the same
// variable while names are free to repeat across clauses. The name "_" is
// anonymous: every occurrence is a fresh variable.
type VarCtx struct {
	next   term.Var
	byName map[string]term.Var
}

// NewVarCtx returns an empty context allocating variables from 0.
func NewVarCtx() *VarCtx {
	return &VarCtx{byName: make(map[string]term.Var)}
}

// Var returns the term variable for name, allocating on first use.
func (c *VarCtx) Var(name string) term.Var {
	if name != "_" {
		if v, ok := c.byName[name]; ok {
			return v
		}
	}
	v := c.next
	c.next++
	if name != "_" {
		c.byName[name] = v
	}
	return v
}

// TermOf converts a surface term, resolving variable names through ctx.
func TermOf(a Term, ctx *VarCtx) term.Term {
	if a.Var != "" {
		return ctx.Var(a.Var)
	}
	if len(a.Args) == 0 {
		return term.Atom(a.Name)
	}
	args := make([]term.Term, len(a.Args))
	for i, arg := range a.Args {
		args[i] = TermOf(arg, ctx)
	}
	return term.NewApply(term.Intern(a.Name), args...)
}

// LitOf converts a surface literal.
func LitOf(l Literal, ctx *VarCtx) term.Literal {
	return term.Literal{Negated: l.Negated, Term: TermOf(l.Term, ctx)}
}

// ClauseOf converts a surface clause under a fresh variable context,
// enforcing the safety invariant.
func ClauseOf(c Clause) (*term.Clause, error) {
	ctx := NewVarCtx()
	head := TermOf(c.Head, ctx)
	body := make([]term.Literal, len(c.Body))
	for i, l := range c.Body {
		body[i] = LitOf(l, ctx)
	}
	if len(body) == 0 {
		return term.NewFact(head)
	}
	return term.NewClause(head, body)
}

// ClausesOf converts a parsed program clause by clause.
func ClausesOf(cs []Clause) ([]*term.Clause, error) {
	out := make([]*term.Clause, len(cs))
	for i, c := range cs {
		tc, err := ClauseOf(c)
		if err != nil {
			return nil, err
		}
		out[i] = tc
	}
	return out, nil
}
