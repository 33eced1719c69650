// Package topdown implements goal-directed query answering: SLD-style
// resolution against stored facts and clauses, negation as failure under a
// stratification check, and interpreted predicates consulted through the
// registry.
package topdown

import (
	"go.uber.org/zap"

	"github.com/cognicore/datalog/pkg/datalog/index"
	"github.com/cognicore/datalog/pkg/datalog/interp"
	"github.com/cognicore/datalog/pkg/datalog/term"
)

// Options configures a DB.
type Options struct {
	// Parent makes lookups read through to another database. The parent is
	// never mutated through the child.
	Parent *DB
	// Interpreters serves interpreted predicates. Nil means none.
	Interpreters *interp.Registry
	// Logger traces resolution at debug level. Nil inherits the parent's
	// logger, or none.
	Logger *zap.Logger
}

// DB stores facts and clauses for top-down resolution. A child DB layers
// ephemeral query-local knowledge over a persistent base. Append-only,
// single-writer, like its bottom-up counterpart.
type DB struct {
	parent *DB
	logger *zap.Logger
	reg    *interp.Registry

	factsBySym map[term.Const][]term.Term
	rulesBySym map[term.Const][]*term.Clause
	ix         *index.ClauseIndex[struct{}]
	count      int

	// stratVersion is the chain clause count at the last successful
	// stratification check; -1 means unchecked.
	stratVersion int
}

// New creates a database.
func New(opts Options) *DB {
	logger := opts.Logger
	if logger == nil {
		if opts.Parent != nil {
			logger = opts.Parent.logger
		} else {
			logger = zap.NewNop()
		}
	}
	return &DB{
		parent:       opts.Parent,
		logger:       logger,
		reg:          opts.Interpreters,
		factsBySym:   make(map[term.Const][]term.Term),
		rulesBySym:   make(map[term.Const][]*term.Clause),
		ix:           index.NewClauseIndex[struct{}](),
		stratVersion: -1,
	}
}

// NewChild layers an empty database over parent.
func NewChild(parent *DB) *DB {
	return New(Options{Parent: parent})
}

// Register adds an interpreter for goals headed by c.
func (db *DB) Register(c term.Const, fn interp.Interpreter) {
	if db.reg == nil {
		db.reg = interp.NewRegistry()
	}
	db.reg.Register(c, fn)
}

// AddClause stores a clause. A variant already visible through the chain is
// a no-op.
func (db *DB) AddClause(c *term.Clause) error {
	if db.containsVariant(c) {
		return nil
	}
	db.ix.Put(c, struct{}{})
	db.count++
	sym, _ := c.HeadSymbol()
	if c.IsFact() {
		db.factsBySym[sym] = append(db.factsBySym[sym], c.Head)
	} else {
		db.rulesBySym[sym] = append(db.rulesBySym[sym], c)
	}
	return nil
}

// AddFact stores a ground fact, wrapping term.NewFact.
func (db *DB) AddFact(head term.Term) error {
	fact, err := term.NewFact(head)
	if err != nil {
		return err
	}
	return db.AddClause(fact)
}

func (db *DB) containsVariant(c *term.Clause) bool {
	for d := db; d != nil; d = d.parent {
		if _, ok := d.ix.Get(c); ok {
			return true
		}
	}
	return false
}

// Size returns the number of clauses visible through the chain.
func (db *DB) Size() int { return db.version() }

func (db *DB) version() int {
	n := 0
	for d := db; d != nil; d = d.parent {
		n += d.count
	}
	return n
}

// factsFor returns the stored facts headed by sym, local layer first.
func (db *DB) factsFor(sym term.Const) []term.Term {
	if db.parent == nil {
		return db.factsBySym[sym]
	}
	var out []term.Term
	for d := db; d != nil; d = d.parent {
		out = append(out, d.factsBySym[sym]...)
	}
	return out
}

// rulesFor returns the stored proper rules headed by sym, local layer first.
func (db *DB) rulesFor(sym term.Const) []*term.Clause {
	if db.parent == nil {
		return db.rulesBySym[sym]
	}
	var out []*term.Clause
	for d := db; d != nil; d = d.parent {
		out = append(out, d.rulesBySym[sym]...)
	}
	return out
}

// interpretersFor returns the interpreters registered for sym anywhere in
// the chain.
func (db *DB) interpretersFor(sym term.Const) []interp.Interpreter {
	var out []interp.Interpreter
	for d := db; d != nil; d = d.parent {
		out = append(out, d.reg.Lookup(sym)...)
	}
	return out
}

// rangeClauses calls f for every clause visible through the chain.
func (db *DB) rangeClauses(f func(c *term.Clause)) {
	for d := db; d != nil; d = d.parent {
		d.ix.Range(func(c *term.Clause, _ struct{}) bool {
			f(c)
			return true
		})
	}
}
