// Package index provides hash tables keyed by terms and clauses under
// alpha-equivalence rather than structural equality. Keys are bucketed by a
// canonical variant tag (variables renamed in first-occurrence order) and
// disambiguated by an exact alpha-equivalence check on collision, so
// logically identical entries are stored once.
package index

import (
	"strconv"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/cognicore/datalog/pkg/datalog/term"
	"github.com/cognicore/datalog/pkg/datalog/unify"
)

// tagCache memoizes the standalone variant tag of compound terms. Terms are
// immutable, so a pointer key stays valid for the life of the term.
var tagCache, _ = lru.New[*term.Apply, string](8192)

// TermTag returns the canonical variant tag of t: alpha-equivalent terms
// share a tag, and tag equality almost always means equivalence (the index
// still confirms with AlphaEquiv on lookup).
func TermTag(t term.Term) string {
	if a, ok := t.(*term.Apply); ok {
		if tag, ok := tagCache.Get(a); ok {
			return tag
		}
		var sb strings.Builder
		writeTag(&sb, a, make(map[term.Var]int))
		tag := sb.String()
		tagCache.Add(a, tag)
		return tag
	}
	var sb strings.Builder
	writeTag(&sb, t, make(map[term.Var]int))
	return sb.String()
}

// ClauseTag is the clause analogue of TermTag; variable numbering is shared
// across head and body, and literal signs are part of the tag.
func ClauseTag(c *term.Clause) string {
	var sb strings.Builder
	vars := make(map[term.Var]int)
	writeTag(&sb, c.Head, vars)
	for _, l := range c.Body {
		sb.WriteByte('|')
		if l.Negated {
			sb.WriteByte('~')
		}
		writeTag(&sb, l.Term, vars)
	}
	return sb.String()
}

func writeTag(sb *strings.Builder, t term.Term, vars map[term.Var]int) {
	switch t := t.(type) {
	case term.Var:
		n, ok := vars[t]
		if !ok {
			n = len(vars)
			vars[t] = n
		}
		sb.WriteByte('v')
		sb.WriteString(strconv.Itoa(n))
	case *term.Apply:
		sb.WriteByte('c')
		sb.WriteString(strconv.Itoa(int(t.Head)))
		if len(t.Args) > 0 {
			sb.WriteByte('(')
			for i, arg := range t.Args {
				if i > 0 {
					sb.WriteByte(',')
				}
				writeTag(sb, arg, vars)
			}
			sb.WriteByte(')')
		}
	}
}

type termEntry[V any] struct {
	key term.Term
	val V
}

// TermIndex maps terms to values under alpha-equivalence.
type TermIndex[V any] struct {
	buckets map[string][]termEntry[V]
	n       int
}

// NewTermIndex returns an empty index.
func NewTermIndex[V any]() *TermIndex[V] {
	return &TermIndex[V]{buckets: make(map[string][]termEntry[V])}
}

// Get returns the value stored under a variant of t.
func (ix *TermIndex[V]) Get(t term.Term) (V, bool) {
	for _, e := range ix.buckets[TermTag(t)] {
		if unify.AlphaEquiv(e.key, t) {
			return e.val, true
		}
	}
	var zero V
	return zero, false
}

// Put stores v under t and reports whether t was new. An existing variant
// keeps its value: insertion is first-writer-wins, matching the append-only
// fact model.
func (ix *TermIndex[V]) Put(t term.Term, v V) bool {
	tag := TermTag(t)
	for _, e := range ix.buckets[tag] {
		if unify.AlphaEquiv(e.key, t) {
			return false
		}
	}
	ix.buckets[tag] = append(ix.buckets[tag], termEntry[V]{key: t, val: v})
	ix.n++
	return true
}

// Len returns the number of stored variants.
func (ix *TermIndex[V]) Len() int { return ix.n }

// Range calls f for every entry until f returns false.
func (ix *TermIndex[V]) Range(f func(t term.Term, v V) bool) {
	for _, bucket := range ix.buckets {
		for _, e := range bucket {
			if !f(e.key, e.val) {
				return
			}
		}
	}
}

type clauseEntry[V any] struct {
	key *term.Clause
	val V
}

// ClauseIndex maps clauses to values under alpha-equivalence.
type ClauseIndex[V any] struct {
	buckets map[string][]clauseEntry[V]
	n       int
}

// NewClauseIndex returns an empty index.
func NewClauseIndex[V any]() *ClauseIndex[V] {
	return &ClauseIndex[V]{buckets: make(map[string][]clauseEntry[V])}
}

// Get returns the value stored under a variant of c.
func (ix *ClauseIndex[V]) Get(c *term.Clause) (V, bool) {
	for _, e := range ix.buckets[ClauseTag(c)] {
		if unify.ClauseAlphaEquiv(e.key, c) {
			return e.val, true
		}
	}
	var zero V
	return zero, false
}

// Put stores v under c and reports whether c was new.
func (ix *ClauseIndex[V]) Put(c *term.Clause, v V) bool {
	tag := ClauseTag(c)
	for _, e := range ix.buckets[tag] {
		if unify.ClauseAlphaEquiv(e.key, c) {
			return false
		}
	}
	ix.buckets[tag] = append(ix.buckets[tag], clauseEntry[V]{key: c, val: v})
	ix.n++
	return true
}

// Len returns the number of stored variants.
func (ix *ClauseIndex[V]) Len() int { return ix.n }

// Range calls f for every entry until f returns false.
func (ix *ClauseIndex[V]) Range(f func(c *term.Clause, v V) bool) {
	for _, bucket := range ix.buckets {
		for _, e := range bucket {
			if !f(e.key, e.val) {
				return
			}
		}
	}
}
