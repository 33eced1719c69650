package unify

import (
	"testing"

	"github.com/cognicore/datalog/pkg/datalog/term"
)

func TestAlphaEquivReflexive(t *testing.T) {
	terms := []term.Term{
		term.Atom("a"),
		term.Var(3),
		term.App("f", term.Var(0), term.App("g", term.Var(1), term.Var(0))),
	}
	for _, tm := range terms {
		if !AlphaEquiv(tm, tm) {
			t.Errorf("AlphaEquiv(%s, itself) = false", tm)
		}
	}
}

func TestAlphaEquivRenaming(t *testing.T) {
	a := term.App("f", term.Var(0), term.Var(1), term.Var(0))
	renamed := term.App("f", term.Var(5), term.Var(2), term.Var(5))
	if !AlphaEquiv(a, renamed) {
		t.Errorf("injective renaming not alpha-equivalent")
	}
	if !AlphaEquiv(renamed, a) {
		t.Errorf("alpha-equivalence not symmetric")
	}
}

func TestAlphaEquivRejectsCollapse(t *testing.T) {
	distinct := term.App("f", term.Var(0), term.Var(1))
	collapsed := term.App("f", term.Var(2), term.Var(2))
	if AlphaEquiv(distinct, collapsed) {
		t.Error("collapsing renaming accepted left-to-right")
	}
	if AlphaEquiv(collapsed, distinct) {
		t.Error("collapsing renaming accepted right-to-left")
	}
}

func TestAlphaEquivStructure(t *testing.T) {
	if AlphaEquiv(term.App("f", term.Var(0)), term.App("g", term.Var(0))) {
		t.Error("distinct heads equivalent")
	}
	if AlphaEquiv(term.App("f", term.Var(0)), term.App("f", term.Var(0), term.Var(1))) {
		t.Error("distinct arities equivalent")
	}
	if AlphaEquiv(term.Var(0), term.Atom("a")) {
		t.Error("variable equivalent to constant")
	}
}

func TestClauseAlphaEquiv(t *testing.T) {
	mk := func(x, y, z term.Var) *term.Clause {
		c, err := term.NewClause(
			term.App("ancestor", x, y),
			[]term.Literal{
				term.Pos(term.App("parent", x, z)),
				term.Pos(term.App("ancestor", z, y)),
			},
		)
		if err != nil {
			t.Fatal(err)
		}
		return c
	}

	a := mk(0, 1, 2)
	if !ClauseAlphaEquiv(a, mk(4, 5, 6)) {
		t.Error("renamed clause not equivalent")
	}
	if ClauseAlphaEquiv(a, mk(0, 1, 1)) {
		t.Error("collapsed clause equivalent")
	}

	// The renaming spans head and body: swapping body variables against
	// the head breaks equivalence.
	swapped, err := term.NewClause(
		term.App("ancestor", term.Var(0), term.Var(1)),
		[]term.Literal{
			term.Pos(term.App("parent", term.Var(1), term.Var(2))),
			term.Pos(term.App("ancestor", term.Var(2), term.Var(0))),
		},
	)
	if err != nil {
		t.Fatal(err)
	}
	if ClauseAlphaEquiv(a, swapped) {
		t.Error("head/body renaming mismatch accepted")
	}

	// Sign matters.
	neg := &term.Clause{
		Head: a.Head,
		Body: []term.Literal{a.Body[0], term.Neg(a.Body[1].Term)},
	}
	if ClauseAlphaEquiv(a, neg) {
		t.Error("sign-differing clause equivalent")
	}
}
