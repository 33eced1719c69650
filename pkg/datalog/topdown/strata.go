package topdown

import (
	"fmt"

	"github.com/cognicore/datalog/pkg/datalog/internalerr"
	"github.com/cognicore/datalog/pkg/datalog/term"
)

// The predicate dependency graph has an edge P -> Q for every clause with
// head symbol P and a body literal over Q, marked negative when the literal
// is negated. A cycle through a negative edge means some predicate depends
// on its own negation, so no query over the program is answered at all.

type depEdge struct {
	from, to term.Const
	negated  bool
}

// checkStratified validates the dependency graph of every clause visible
// through the chain. The successful result is cached until more clauses
// appear.
func (db *DB) checkStratified() error {
	v := db.version()
	if db.stratVersion == v {
		return nil
	}

	var edges []depEdge
	adj := make(map[term.Const][]term.Const)
	db.rangeClauses(func(c *term.Clause) {
		head, ok := c.HeadSymbol()
		if !ok {
			return
		}
		for _, l := range c.Body {
			to, ok := term.HeadSymbol(l.Term)
			if !ok {
				continue
			}
			edges = append(edges, depEdge{from: head, to: to, negated: l.Negated})
			adj[head] = append(adj[head], to)
		}
	})

	comp := stronglyConnected(adj)
	for _, e := range edges {
		if !e.negated {
			continue
		}
		cf, okf := comp[e.from]
		ct, okt := comp[e.to]
		if okf && okt && cf == ct {
			return fmt.Errorf("%s depends on its own negation through %s: %w",
				e.from, e.to, internalerr.ErrNonStratified)
		}
	}

	db.stratVersion = v
	return nil
}

// stronglyConnected assigns a component id to every node reachable in adj,
// using Tarjan's algorithm.
func stronglyConnected(adj map[term.Const][]term.Const) map[term.Const]int {
	type nodeState struct {
		index, lowlink int
		onStack        bool
	}
	states := make(map[term.Const]*nodeState)
	comp := make(map[term.Const]int)
	var stack []term.Const
	next, ncomp := 0, 0

	var visit func(n term.Const)
	visit = func(n term.Const) {
		st := &nodeState{index: next, lowlink: next, onStack: true}
		states[n] = st
		next++
		stack = append(stack, n)

		for _, m := range adj[n] {
			ms, seen := states[m]
			if !seen {
				visit(m)
				if l := states[m].lowlink; l < st.lowlink {
					st.lowlink = l
				}
			} else if ms.onStack {
				if ms.index < st.lowlink {
					st.lowlink = ms.index
				}
			}
		}

		if st.lowlink == st.index {
			for {
				m := stack[len(stack)-1]
				stack = stack[:len(stack)-1]
				states[m].onStack = false
				comp[m] = ncomp
				if m == n {
					break
				}
			}
			ncomp++
		}
	}

	for n := range adj {
		if _, seen := states[n]; !seen {
			visit(n)
		}
	}
	return comp
}
