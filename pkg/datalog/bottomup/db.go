// Package bottomup implements the forward-chaining database: facts and
// rules are saturated to the least fixpoint incrementally as they are added,
// with subscription hooks on fact insertion and provenance recorded for
// every derivation.
package bottomup

import (
	"crypto/rand"
	"fmt"

	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"

	"github.com/cognicore/datalog/pkg/datalog/index"
	"github.com/cognicore/datalog/pkg/datalog/internalerr"
	"github.com/cognicore/datalog/pkg/datalog/interp"
	"github.com/cognicore/datalog/pkg/datalog/term"
	"github.com/cognicore/datalog/pkg/datalog/unify"
)

// Body literals of a firing rule live in one scope, the ground facts they
// are joined with in another, so identically-numbered rule variables never
// collide with anything.
const (
	ruleScope unify.Scope = 0
	factScope unify.Scope = 1
)

// Handler is invoked synchronously, exactly once, when a fact with the
// subscribed head symbol is first inserted.
type Handler func(fact term.Term)

// Options configures a DB.
type Options struct {
	// Logger traces derivations at debug level. Nil means no logging.
	Logger *zap.Logger
	// Interpreters serves interpreted predicates during rule joins. Nil
	// means none.
	Interpreters *interp.Registry
}

// DB is the saturating fact/rule store. Facts and rules are append-only;
// re-adding a variant of a stored clause is a no-op. Single-writer: callers
// must not mutate a DB concurrently with reads.
type DB struct {
	logger *zap.Logger
	reg    *interp.Registry

	rules   []*term.Clause
	rulesIx *index.ClauseIndex[struct{}]

	facts      *index.TermIndex[*Derivation]
	factsBySym map[term.Const][]term.Term

	handlers map[term.Const][]Handler

	entropy *ulid.MonotonicEntropy

	// pending is the agenda of derived facts awaiting insertion and
	// propagation. Facts queue here so rule joins never observe a fact
	// store mutating under them.
	pending []pendingFact
}

type pendingFact struct {
	fact     term.Term
	premises []term.Term
}

// New creates an empty database.
func New(opts Options) *DB {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DB{
		logger:     logger,
		reg:        opts.Interpreters,
		rulesIx:    index.NewClauseIndex[struct{}](),
		facts:      index.NewTermIndex[*Derivation](),
		factsBySym: make(map[term.Const][]term.Term),
		handlers:   make(map[term.Const][]Handler),
		entropy:    ulid.Monotonic(rand.Reader, 0),
	}
}

// Subscribe registers h to run on the first insertion of any fact whose head
// symbol equals sym. Already-stored facts do not replay.
func (db *DB) Subscribe(sym term.Const, h Handler) {
	db.handlers[sym] = append(db.handlers[sym], h)
}

// Add inserts one clause and extends the fixpoint: every fact derivable from
// the new clause against the saturated store, and transitively from those
// facts, is derived before Add returns. The final fact set is independent of
// insertion order.
//
// Negated body literals are rejected; negation is answered by the top-down
// resolver under stratification.
func (db *DB) Add(c *term.Clause) error {
	for _, l := range c.Body {
		if l.Negated {
			return fmt.Errorf("clause %s: %w", c, internalerr.ErrNegativeBody)
		}
	}

	if c.IsFact() {
		db.enqueue(c.Head, nil)
	} else {
		if !db.rulesIx.Put(c, struct{}{}) {
			return nil
		}
		db.rules = append(db.rules, c)
		// Join the whole body against the current store.
		db.join(c, 0, unify.Bindings{}, make([]term.Term, len(c.Body)), -1, nil)
	}

	db.drain()
	return nil
}

// AddFact is a convenience wrapping term.NewFact.
func (db *DB) AddFact(head term.Term) error {
	fact, err := term.NewFact(head)
	if err != nil {
		return err
	}
	return db.Add(fact)
}

func (db *DB) enqueue(fact term.Term, premises []term.Term) {
	db.pending = append(db.pending, pendingFact{fact: fact, premises: premises})
}

// drain inserts queued facts and propagates each new one through every rule
// position it can feed, queueing whatever that derives, until quiescence.
func (db *DB) drain() {
	for len(db.pending) > 0 {
		p := db.pending[0]
		db.pending = db.pending[1:]
		if !db.insert(p.fact, p.premises) {
			continue
		}
		db.propagate(p.fact)
	}
}

// insert stores a fact and reports whether it was new. Re-derivation keeps
// the first derivation's provenance and fires no callbacks.
func (db *DB) insert(fact term.Term, premises []term.Term) bool {
	d := &Derivation{
		ID:       ulid.MustNew(ulid.Now(), db.entropy),
		Premises: premises,
	}
	if !db.facts.Put(fact, d) {
		return false
	}
	sym, _ := term.HeadSymbol(fact)
	db.factsBySym[sym] = append(db.factsBySym[sym], fact)

	db.logger.Debug("fact inserted",
		zap.Stringer("fact", fact),
		zap.String("derivation", d.ID.String()),
		zap.Int("premises", len(premises)))

	for _, h := range db.handlers[sym] {
		h(fact)
	}
	return true
}

// propagate fires every rule that can consume fact, pinning it in turn to
// each body position it matches and joining the remaining positions against
// the full store.
func (db *DB) propagate(fact term.Term) {
	sym, ok := term.HeadSymbol(fact)
	if !ok {
		return
	}
	for _, r := range db.rules {
		for i, l := range r.Body {
			if ls, ok := term.HeadSymbol(l.Term); !ok || ls != sym {
				continue
			}
			db.join(r, 0, unify.Bindings{}, make([]term.Term, len(r.Body)), i, fact)
		}
	}
}

// join enumerates body solutions of r from position i on. When pinned is a
// valid position, only pinnedFact is tried there; every other position
// ranges over the stored facts. Each complete solution instantiates the head
// (ground, by safety) and queues it with the matched facts as premises.
func (db *DB) join(r *term.Clause, i int, b unify.Bindings, chosen []term.Term, pinned int, pinnedFact term.Term) {
	if i == len(r.Body) {
		head := unify.Resolve(b, r.Head, ruleScope, unify.NewRenaming(0))
		premises := make([]term.Term, len(chosen))
		copy(premises, chosen)
		// Interpreted facts used as premises are not stored yet; queue
		// them first so every premise precedes its consequent.
		for _, f := range premises {
			if !db.Contains(f) {
				db.enqueue(f, nil)
			}
		}
		db.enqueue(head, premises)
		return
	}

	lit := r.Body[i].Term
	var candidates []term.Term
	if i == pinned {
		candidates = []term.Term{pinnedFact}
	} else if sym, ok := term.HeadSymbol(lit); ok {
		candidates = db.factsBySym[sym]
		if db.reg.Interpreted(sym) {
			candidates = append(candidates[:len(candidates):len(candidates)],
				db.interpret(sym, lit, b)...)
		}
	}

	for _, f := range candidates {
		nb, err := unify.Unify(b, lit, ruleScope, f, factScope)
		if err != nil {
			continue
		}
		chosen[i] = f
		db.join(r, i+1, nb, chosen, pinned, pinnedFact)
	}
}

// interpret consults the registered interpreters with the body literal as
// currently instantiated and returns the heads of the fact clauses they
// synthesize.
func (db *DB) interpret(sym term.Const, lit term.Term, b unify.Bindings) []term.Term {
	inst := unify.Resolve(b, lit, ruleScope, unify.NewRenaming(0))
	var out []term.Term
	for _, fn := range db.reg.Lookup(sym) {
		for _, c := range fn(inst) {
			if hs, ok := c.HeadSymbol(); !ok || hs != sym || !c.IsFact() {
				continue
			}
			out = append(out, c.Head)
		}
	}
	return out
}

// Contains reports whether fact is in the saturated set.
func (db *DB) Contains(fact term.Term) bool {
	_, ok := db.facts.Get(fact)
	return ok
}

// Match unifies pattern against every stored fact, invoking cb with each
// matching fact and the unifying substitution. Non-destructive.
func (db *DB) Match(pattern term.Term, cb func(fact term.Term, b unify.Bindings)) {
	try := func(f term.Term) {
		if b, err := unify.Unify(unify.Bindings{}, pattern, ruleScope, f, factScope); err == nil {
			cb(f, b)
		}
	}
	if sym, ok := term.HeadSymbol(pattern); ok {
		for _, f := range db.factsBySym[sym] {
			try(f)
		}
		return
	}
	db.facts.Range(func(f term.Term, _ *Derivation) bool {
		try(f)
		return true
	})
}

// Range calls f for every stored fact until f returns false.
func (db *DB) Range(f func(fact term.Term) bool) {
	db.facts.Range(func(t term.Term, _ *Derivation) bool {
		return f(t)
	})
}

// Size returns the number of stored facts.
func (db *DB) Size() int { return db.facts.Len() }

// NumRules returns the number of stored proper rules.
func (db *DB) NumRules() int { return len(db.rules) }
