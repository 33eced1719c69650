package bottomup

import (
	"fmt"

	"github.com/oklog/ulid/v2"

	"github.com/cognicore/datalog/pkg/datalog/index"
	"github.com/cognicore/datalog/pkg/datalog/internalerr"
	"github.com/cognicore/datalog/pkg/datalog/term"
)

// Derivation records how a fact entered the store. The database owns these
// exclusively: they are never supplied by callers, and the first derivation
// of a fact is the one that sticks.
type Derivation struct {
	// ID identifies the derivation event, ordered by insertion time.
	ID ulid.ULID
	// Premises are the facts that matched the firing rule's body, in body
	// order. Empty for facts added directly.
	Premises []term.Term
}

// Derivation returns the provenance record for fact.
func (db *DB) Derivation(fact term.Term) (*Derivation, error) {
	d, ok := db.facts.Get(fact)
	if !ok {
		return nil, fmt.Errorf("fact %s: %w", fact, internalerr.ErrNotFound)
	}
	return d, nil
}

// Premises returns the immediate antecedents of fact: the facts that matched
// the body of the rule firing that first derived it. Facts added directly
// have none.
func (db *DB) Premises(fact term.Term) ([]term.Term, error) {
	d, err := db.Derivation(fact)
	if err != nil {
		return nil, err
	}
	return d.Premises, nil
}

// Explain returns the transitive closure of Premises: the full set of facts
// supporting fact, each appearing once. The result is closed under Premises.
func (db *DB) Explain(fact term.Term) ([]term.Term, error) {
	d, err := db.Derivation(fact)
	if err != nil {
		return nil, err
	}

	seen := index.NewTermIndex[struct{}]()
	var out []term.Term
	queue := append([]term.Term(nil), d.Premises...)
	for len(queue) > 0 {
		f := queue[0]
		queue = queue[1:]
		if !seen.Put(f, struct{}{}) {
			continue
		}
		out = append(out, f)
		fd, ok := db.facts.Get(f)
		if !ok {
			// Premises are always stored before their consequent.
			return nil, fmt.Errorf("premise %s: %w", f, internalerr.ErrNotFound)
		}
		queue = append(queue, fd.Premises...)
	}
	return out, nil
}
