package interp

import (
	"testing"

	"github.com/cognicore/datalog/pkg/datalog/term"
)

func TestRegistry(t *testing.T) {
	reg := NewRegistry()
	sym := term.Intern("custom")
	if reg.Interpreted(sym) {
		t.Error("empty registry claims interpretation")
	}
	reg.Register(sym, func(term.Term) []*term.Clause { return nil })
	if !reg.Interpreted(sym) {
		t.Error("registered symbol not interpreted")
	}
	if len(reg.Lookup(sym)) != 1 {
		t.Errorf("Lookup returned %d interpreters", len(reg.Lookup(sym)))
	}

	// Nil registry is inert.
	var nilReg *Registry
	if nilReg.Interpreted(sym) || nilReg.Lookup(sym) != nil {
		t.Error("nil registry not inert")
	}
}

func TestArithComparisons(t *testing.T) {
	reg := NewRegistry()
	Arith(reg)

	cases := []struct {
		goal string
		a, b string
		ok   bool
	}{
		{"lt", "1", "2", true},
		{"lt", "2", "2", false},
		{"le", "2", "2", true},
		{"gt", "-3", "-4", true},
		{"ge", "10", "11", false},
		{"eq", "7", "7", true},
		{"neq", "7", "7", false},
		{"neq", "7", "8", true},
	}
	for _, c := range cases {
		goal := term.App(c.goal, term.Atom(c.a), term.Atom(c.b))
		var clauses []*term.Clause
		for _, fn := range reg.Lookup(term.Intern(c.goal)) {
			clauses = append(clauses, fn(goal)...)
		}
		if got := len(clauses) > 0; got != c.ok {
			t.Errorf("%s(%s, %s): provable=%v, want %v", c.goal, c.a, c.b, got, c.ok)
		}
		for _, cl := range clauses {
			if !cl.IsFact() {
				t.Errorf("%s returned a non-fact clause", c.goal)
			}
			if sym, _ := cl.HeadSymbol(); sym != term.Intern(c.goal) {
				t.Errorf("%s returned a clause with head %s", c.goal, sym)
			}
		}
	}
}

func TestArithRejectsNonIntegers(t *testing.T) {
	reg := NewRegistry()
	Arith(reg)
	lt := reg.Lookup(term.Intern("lt"))[0]

	if got := lt(term.App("lt", term.Atom("a"), term.Atom("2"))); got != nil {
		t.Errorf("symbolic argument accepted: %v", got)
	}
	if got := lt(term.App("lt", term.Var(0), term.Atom("2"))); got != nil {
		t.Errorf("unbound argument accepted: %v", got)
	}
	if got := lt(term.App("lt", term.Atom("1"))); got != nil {
		t.Errorf("wrong arity accepted: %v", got)
	}
}
