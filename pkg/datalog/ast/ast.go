// Package ast is the surface-syntax boundary: abstract syntax for terms,
// literals and clauses with textual names, a parser producing it, and the
// conversions that intern names and allocate variables per clause.
package ast

// Term is a surface term: either a named variable or a symbol applied to
// arguments. Exactly one of Var and Name is set.
type Term struct {
	Var  string
	Name string
	Args []Term
}

// Literal is a surface term with a sign.
type Literal struct {
	Negated bool
	Term    Term
}

// Clause is a surface head with an ordered body. An empty body is a fact.
type Clause struct {
	Head Term
	Body []Literal
}
