package datalog

import (
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/cognicore/datalog/pkg/datalog/interp"
	"github.com/cognicore/datalog/pkg/datalog/term"
	"github.com/cognicore/datalog/pkg/datalog/unify"
)

const ancestry = `
parent(a, b).
parent(b, c).
parent(b, d).
ancestor(X, Y) :- parent(X, Y).
ancestor(X, Y) :- parent(X, Z), ancestor(Z, Y).
`

func newEngine(t *testing.T, src string, opts Options) *Engine {
	t.Helper()
	e := New(opts)
	if err := e.LoadString(src); err != nil {
		t.Fatal(err)
	}
	return e
}

func TestLoadString(t *testing.T) {
	e := newEngine(t, ancestry, Options{})
	if n := len(e.Clauses()); n != 5 {
		t.Errorf("loaded %d clauses, want 5", n)
	}
	if err := e.LoadString("p(X) :-"); err == nil {
		t.Error("malformed program accepted")
	}
	if err := e.LoadString("p(a, X)."); err == nil {
		t.Error("non-ground fact accepted")
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ancestry.dl")
	if err := os.WriteFile(path, []byte(ancestry), 0o644); err != nil {
		t.Fatal(err)
	}
	e := New(Options{})
	if err := e.LoadFile(path); err != nil {
		t.Fatal(err)
	}
	if n := len(e.Clauses()); n != 5 {
		t.Errorf("loaded %d clauses, want 5", n)
	}
	if err := e.LoadFile(filepath.Join(t.TempDir(), "absent.dl")); err == nil {
		t.Error("missing file accepted")
	}
}

// Both evaluation strategies agree on the answer set for positive programs.
func TestStrategiesAgree(t *testing.T) {
	e := newEngine(t, ancestry, Options{})

	db, err := e.Saturate()
	if err != nil {
		t.Fatal(err)
	}
	var saturated []string
	db.Match(term.App("ancestor", term.Var(0), term.Var(1)), func(f term.Term, _ unify.Bindings) {
		saturated = append(saturated, f.String())
	})
	sort.Strings(saturated)

	answers, err := e.Ask("ancestor(X, Y)")
	if err != nil {
		t.Fatal(err)
	}
	var resolved []string
	for _, a := range answers {
		resolved = append(resolved, a.String())
	}
	sort.Strings(resolved)

	if diff := cmp.Diff(saturated, resolved); diff != "" {
		t.Errorf("strategies disagree (-bottomup +topdown):\n%s", diff)
	}
}

func TestAsk(t *testing.T) {
	e := newEngine(t, ancestry, Options{})

	answers, err := e.Ask("ancestor(a, X)")
	if err != nil {
		t.Fatal(err)
	}
	var got []string
	for _, a := range answers {
		got = append(got, a.String())
	}
	sort.Strings(got)
	want := []string{"ancestor(a, b)", "ancestor(a, c)", "ancestor(a, d)"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("answers mismatch (-want +got):\n%s", diff)
	}
}

func TestAskQuery(t *testing.T) {
	e := newEngine(t, ancestry, Options{})

	rows, err := e.AskQuery("parent(a, X), parent(X, Y)")
	if err != nil {
		t.Fatal(err)
	}
	var got []string
	for _, row := range rows {
		got = append(got, row[0].String()+"/"+row[1].String())
	}
	sort.Strings(got)
	want := []string{"b/c", "b/d"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("rows mismatch (-want +got):\n%s", diff)
	}
}

func TestInterpretersReachBothStrategies(t *testing.T) {
	reg := interp.NewRegistry()
	interp.Arith(reg)
	e := newEngine(t, `
temperature(oslo, -3).
temperature(cairo, 31).
warm(C) :- temperature(C, T), gt(T, 15).
`, Options{Interpreters: reg})

	db, err := e.Saturate()
	if err != nil {
		t.Fatal(err)
	}
	if !db.Contains(term.App("warm", term.Atom("cairo"))) {
		t.Error("bottom-up missed the interpreted predicate")
	}

	answers, err := e.Ask("warm(X)")
	if err != nil {
		t.Fatal(err)
	}
	if len(answers) != 1 || answers[0].String() != "warm(cairo)" {
		t.Errorf("top-down interpreted answers = %v", answers)
	}
}
