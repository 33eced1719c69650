package unify

import (
	"errors"
	"testing"

	"github.com/cognicore/datalog/pkg/datalog/internalerr"
	"github.com/cognicore/datalog/pkg/datalog/term"
)

func TestDerefFollowsChainsAcrossScopes(t *testing.T) {
	// X@1 -> Y@2 -> a
	var b Bindings
	b = b.Bind(term.Var(0), 1, term.Var(1), 2)
	b = b.Bind(term.Var(1), 2, term.Atom("a"), 3)

	got, gs := b.Deref(term.Var(0), 1)
	if got.String() != "a" || gs != 3 {
		t.Errorf("Deref = %s@%d, want a@3", got, gs)
	}

	// The same index in another scope is a different variable.
	got, gs = b.Deref(term.Var(0), 2)
	if !term.IsVar(got) || gs != 2 {
		t.Errorf("Deref of unrelated scope = %s@%d", got, gs)
	}
}

func TestBindingsArePersistent(t *testing.T) {
	var base Bindings
	ext := base.Bind(term.Var(0), 0, term.Atom("a"), 0)

	if base.Len() != 0 {
		t.Error("extension mutated the base substitution")
	}
	if got, _ := base.Deref(term.Var(0), 0); !term.IsVar(got) {
		t.Errorf("base substitution resolves X0 to %s", got)
	}
	if got, _ := ext.Deref(term.Var(0), 0); got.String() != "a" {
		t.Errorf("extended substitution resolves X0 to %s", got)
	}
}

func TestUnifyBuildsMGU(t *testing.T) {
	// f(X, b) @0 with f(a, Y) @1
	a := term.App("f", term.Var(0), term.Atom("b"))
	c := term.App("f", term.Atom("a"), term.Var(1))

	b, err := Unify(Bindings{}, a, 0, c, 1)
	if err != nil {
		t.Fatal(err)
	}
	if got := Resolve(b, a, 0, NewRenaming(0)); got.String() != "f(a, b)" {
		t.Errorf("left instance = %s", got)
	}
	if got := Resolve(b, c, 1, NewRenaming(0)); got.String() != "f(a, b)" {
		t.Errorf("right instance = %s", got)
	}
}

func TestUnifySymmetry(t *testing.T) {
	cases := []struct {
		a, c term.Term
		ok   bool
	}{
		{term.App("f", term.Var(0)), term.App("f", term.Atom("a")), true},
		{term.App("f", term.Var(0), term.Var(1)), term.App("f", term.Var(1), term.Var(0)), true},
		{term.App("f", term.Var(0), term.Var(1)), term.App("f", term.Var(0), term.Atom("a")), true},
		{term.App("f", term.Atom("a")), term.App("f", term.Atom("b")), false},
		{term.App("f", term.Var(0), term.Var(0)), term.App("f", term.Atom("a"), term.Atom("b")), false},
		{term.App("f", term.Atom("a")), term.App("g", term.Atom("a")), false},
		{term.App("f", term.Atom("a")), term.App("f", term.Atom("a"), term.Atom("b")), false},
	}
	for _, tc := range cases {
		bAB, errAB := Unify(Bindings{}, tc.a, 0, tc.c, 1)
		bBA, errBA := Unify(Bindings{}, tc.c, 1, tc.a, 0)
		if (errAB == nil) != tc.ok {
			t.Errorf("Unify(%s, %s) error = %v, want ok=%v", tc.a, tc.c, errAB, tc.ok)
		}
		if (errAB == nil) != (errBA == nil) {
			t.Errorf("Unify(%s, %s) not symmetric", tc.a, tc.c)
		}
		if errAB != nil {
			if !errors.Is(errAB, internalerr.ErrNoUnifier) {
				t.Errorf("failure not ErrNoUnifier: %v", errAB)
			}
			continue
		}
		// Both directions must denote the same most-general unifier modulo
		// renaming: every side instantiates alpha-equivalently under either.
		sides := []struct {
			t term.Term
			s Scope
		}{{tc.a, 0}, {tc.c, 1}}
		for _, side := range sides {
			ab := Resolve(bAB, side.t, side.s, NewRenaming(0))
			ba := Resolve(bBA, side.t, side.s, NewRenaming(0))
			if !AlphaEquiv(ab, ba) {
				t.Errorf("Unify(%s, %s): %s instantiates to %s one way and %s the other",
					tc.a, tc.c, side.t, ab, ba)
			}
		}
	}
}

func TestSharedVariableThroughScopes(t *testing.T) {
	// f(X, X) @0 against f(a, Y) @1 forces Y = a.
	a := term.App("f", term.Var(0), term.Var(0))
	c := term.App("f", term.Atom("a"), term.Var(1))
	b, err := Unify(Bindings{}, a, 0, c, 1)
	if err != nil {
		t.Fatal(err)
	}
	got, _ := b.Deref(term.Var(1), 1)
	if got.String() != "a" {
		t.Errorf("Y resolved to %s, want a", got)
	}
}

func TestMatchIsDirectional(t *testing.T) {
	pattern := term.App("parent", term.Var(0), term.Atom("b"))
	target := term.App("parent", term.Atom("a"), term.Atom("b"))

	if _, err := Match(Bindings{}, pattern, 0, target, 1); err != nil {
		t.Fatalf("pattern failed to match ground target: %v", err)
	}

	// The target side is held fixed: its variables must not bind.
	openTarget := term.App("parent", term.Var(0), term.Var(1))
	if _, err := Match(Bindings{}, target, 0, openTarget, 1); !errors.Is(err, internalerr.ErrNoUnifier) {
		t.Fatalf("match bound a target variable: %v", err)
	}

	// Unify, by contrast, accepts the same pair.
	if _, err := Unify(Bindings{}, target, 0, openTarget, 1); err != nil {
		t.Fatalf("unify rejected what match rejects: %v", err)
	}
}

func TestMatchNeverSpecializesAliasedTarget(t *testing.T) {
	// f(X, X) against f(Y, b): the first X aliases to the target's Y, the
	// second then dereferences into the target scope. Binding Y would
	// specialize the fixed side, so the match must fail.
	pattern := term.App("f", term.Var(0), term.Var(0))
	target := term.App("f", term.Var(1), term.Atom("b"))
	if _, err := Match(Bindings{}, pattern, 0, target, 1); !errors.Is(err, internalerr.ErrNoUnifier) {
		t.Fatalf("match specialized the target through an alias: %v", err)
	}

	// Pure aliasing needs no target binding: f(X, X) matches f(Y, Y).
	aliased := term.App("f", term.Var(1), term.Var(1))
	if _, err := Match(Bindings{}, pattern, 0, aliased, 1); err != nil {
		t.Fatalf("alias-only match rejected: %v", err)
	}

	// Unify accepts the original pair by binding the target's variable.
	b, err := Unify(Bindings{}, pattern, 0, target, 1)
	if err != nil {
		t.Fatalf("unify rejected the pair: %v", err)
	}
	if got, _ := b.Deref(term.Var(1), 1); got.String() != "b" {
		t.Errorf("unify bound Y to %s, want b", got)
	}
}

func TestOccursCheck(t *testing.T) {
	x := term.Var(0)
	cyclic := term.App("f", term.Var(0))

	// Enabled: X with f(X) in the same scope must fail.
	u := Unifier{OccursCheck: true}
	if _, err := u.Unify(Bindings{}, x, 0, cyclic, 0); !errors.Is(err, internalerr.ErrNoUnifier) {
		t.Fatalf("occurs check missed the cycle: %v", err)
	}

	// Disabled: the same call must not fail on the occurrence alone.
	if _, err := Unify(Bindings{}, x, 0, cyclic, 0); err != nil {
		t.Fatalf("disabled occurs check still failed: %v", err)
	}

	// Different scopes: no occurrence, even with the check on.
	if _, err := u.Unify(Bindings{}, x, 0, cyclic, 1); err != nil {
		t.Fatalf("occurs check fired across scopes: %v", err)
	}
}

func TestResolveRenamesUnboundVariables(t *testing.T) {
	// f(X, Y, X) with nothing bound: the result must use fresh indices
	// consistently and drop scope tags.
	tm := term.App("f", term.Var(7), term.Var(9), term.Var(7))
	got := Resolve(Bindings{}, tm, 4, NewRenaming(0))
	if got.String() != "f(X0, X1, X0)" {
		t.Errorf("Resolve = %s", got)
	}
}

func TestResolveClause(t *testing.T) {
	rule, err := term.NewClause(
		term.App("p", term.Var(0)),
		[]term.Literal{term.Pos(term.App("q", term.Var(0)))},
	)
	if err != nil {
		t.Fatal(err)
	}
	b := Bindings{}.Bind(term.Var(0), 2, term.Atom("a"), 0)
	got := ResolveClause(b, rule, 2, NewRenaming(0))
	if got.String() != "p(a) :- q(a)." {
		t.Errorf("ResolveClause = %s", got)
	}
}
