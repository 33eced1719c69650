package term

import (
	"fmt"
	"strings"

	"github.com/cognicore/datalog/pkg/datalog/internalerr"
)

// Literal is a term tagged positive or negative. Negation only ever appears
// in clause bodies.
type Literal struct {
	Negated bool
	Term    Term
}

// Pos wraps t as a positive literal.
func Pos(t Term) Literal { return Literal{Term: t} }

// Neg wraps t as a negated literal.
func Neg(t Term) Literal { return Literal{Negated: true, Term: t} }

// Fmap applies f to the literal's term, keeping the sign.
func (l Literal) Fmap(f func(Term) Term) Literal {
	return Literal{Negated: l.Negated, Term: f(l.Term)}
}

func (l Literal) String() string {
	if l.Negated {
		return "~" + l.Term.String()
	}
	return l.Term.String()
}

// Clause is a head term plus an ordered body. An empty body makes it a fact.
type Clause struct {
	Head Term
	Body []Literal
}

// NewClause builds a clause, enforcing the safety invariant: every variable
// in the head, and every variable in a negated body literal, must occur in
// some positive body literal. Violations fail with ErrUnsafeClause.
func NewClause(head Term, body []Literal) (*Clause, error) {
	positive := make(map[Var]struct{})
	for _, l := range body {
		if !l.Negated {
			collectVars(l.Term, positive)
		}
	}
	if v, ok := unsafeVar(head, positive); !ok {
		return nil, fmt.Errorf("head variable %s unbound by any positive body literal: %w",
			v, internalerr.ErrUnsafeClause)
	}
	for _, l := range body {
		if !l.Negated {
			continue
		}
		if v, ok := unsafeVar(l.Term, positive); !ok {
			return nil, fmt.Errorf("variable %s in negated literal %s unbound by any positive body literal: %w",
				v, l, internalerr.ErrUnsafeClause)
		}
	}
	return &Clause{Head: head, Body: body}, nil
}

// unsafeVar returns the first variable of t missing from positive, if any.
func unsafeVar(t Term, positive map[Var]struct{}) (Var, bool) {
	for _, v := range Vars(t) {
		if _, ok := positive[v]; !ok {
			return v, false
		}
	}
	return 0, true
}

// NewFact builds an empty-body clause. Facts carry no guarding body, so a
// non-ground head is rejected: a free variable there has nothing to range
// over.
func NewFact(head Term) (*Clause, error) {
	a, ok := head.(*Apply)
	if !ok {
		return nil, fmt.Errorf("fact head must be an application: %w", internalerr.ErrUnsafeClause)
	}
	if !IsGround(a) {
		return nil, fmt.Errorf("fact %s is not ground: %w", a, internalerr.ErrUnsafeClause)
	}
	return &Clause{Head: a}, nil
}

// IsFact reports whether the clause has an empty body.
func (c *Clause) IsFact() bool { return len(c.Body) == 0 }

// HeadSymbol returns the constant heading the clause's head term.
func (c *Clause) HeadSymbol() (Const, bool) { return HeadSymbol(c.Head) }

// Fmap applies f to the head and every body term. The caller is responsible
// for keeping the safety invariant; substitution application only ever
// narrows the variable set.
func (c *Clause) Fmap(f func(Term) Term) *Clause {
	body := make([]Literal, len(c.Body))
	for i, l := range c.Body {
		body[i] = l.Fmap(f)
	}
	return &Clause{Head: f(c.Head), Body: body}
}

func (c *Clause) String() string {
	if c.IsFact() {
		return c.Head.String() + "."
	}
	parts := make([]string, len(c.Body))
	for i, l := range c.Body {
		parts[i] = l.String()
	}
	return c.Head.String() + " :- " + strings.Join(parts, ", ") + "."
}
