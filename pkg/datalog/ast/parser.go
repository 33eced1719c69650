package ast

import (
	"fmt"
)

// parser is a single-token-lookahead recursive descent parser for textual
// Datalog:
//
//	parent(a, b).
//	ancestor(X, Y) :- parent(X, Z), ancestor(Z, Y).
//	orphan(X) :- person(X), ~parent(_, X).
type parser struct {
	lex *lexer
	tok token
}

func newParser(src string) (*parser, error) {
	p := &parser{lex: newLexer(src)}
	return p, p.advance()
}

func (p *parser) advance() error {
	tok, err := p.lex.next()
	if err != nil {
		return err
	}
	p.tok = tok
	return nil
}

func (p *parser) expect(kind tokenKind) (token, error) {
	tok := p.tok
	if tok.kind != kind {
		return tok, fmt.Errorf("line %d:%d: expected %s, found %s",
			tok.line, tok.col, kind, tok.kind)
	}
	return tok, p.advance()
}

// Parse reads a whole program: a sequence of dot-terminated clauses.
func Parse(src string) ([]Clause, error) {
	p, err := newParser(src)
	if err != nil {
		return nil, err
	}
	var out []Clause
	for p.tok.kind != tokEOF {
		c, err := p.clause()
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, nil
}

// ParseTerm reads a single term, e.g. a query goal. A trailing dot is
// allowed.
func ParseTerm(src string) (Term, error) {
	p, err := newParser(src)
	if err != nil {
		return Term{}, err
	}
	t, err := p.term()
	if err != nil {
		return Term{}, err
	}
	if p.tok.kind == tokDot {
		if err := p.advance(); err != nil {
			return Term{}, err
		}
	}
	if p.tok.kind != tokEOF {
		return Term{}, fmt.Errorf("line %d:%d: trailing input after term", p.tok.line, p.tok.col)
	}
	return t, nil
}

// ParseQuery reads a conjunction of literals, e.g. "p(X), ~q(X)". A trailing
// dot is allowed.
func ParseQuery(src string) ([]Literal, error) {
	p, err := newParser(src)
	if err != nil {
		return nil, err
	}
	lits, err := p.body()
	if err != nil {
		return nil, err
	}
	if p.tok.kind == tokDot {
		if err := p.advance(); err != nil {
			return nil, err
		}
	}
	if p.tok.kind != tokEOF {
		return nil, fmt.Errorf("line %d:%d: trailing input after query", p.tok.line, p.tok.col)
	}
	return lits, nil
}

func (p *parser) clause() (Clause, error) {
	head, err := p.application()
	if err != nil {
		return Clause{}, err
	}
	c := Clause{Head: head}
	if p.tok.kind == tokImplies {
		if err := p.advance(); err != nil {
			return Clause{}, err
		}
		c.Body, err = p.body()
		if err != nil {
			return Clause{}, err
		}
	}
	if _, err := p.expect(tokDot); err != nil {
		return Clause{}, err
	}
	return c, nil
}

func (p *parser) body() ([]Literal, error) {
	var lits []Literal
	for {
		l, err := p.literal()
		if err != nil {
			return nil, err
		}
		lits = append(lits, l)
		if p.tok.kind != tokComma {
			return lits, nil
		}
		if err := p.advance(); err != nil {
			return nil, err
		}
	}
}

func (p *parser) literal() (Literal, error) {
	var l Literal
	if p.tok.kind == tokTilde {
		l.Negated = true
		if err := p.advance(); err != nil {
			return Literal{}, err
		}
	}
	t, err := p.application()
	if err != nil {
		return Literal{}, err
	}
	l.Term = t
	return l, nil
}

// application parses a predicate position: a symbol, optionally applied.
// Variables are not predicates.
func (p *parser) application() (Term, error) {
	tok, err := p.expect(tokIdent)
	if err != nil {
		return Term{}, err
	}
	return p.arguments(Term{Name: tok.text})
}

func (p *parser) arguments(t Term) (Term, error) {
	if p.tok.kind != tokLParen {
		return t, nil
	}
	if err := p.advance(); err != nil {
		return Term{}, err
	}
	for {
		arg, err := p.term()
		if err != nil {
			return Term{}, err
		}
		t.Args = append(t.Args, arg)
		if p.tok.kind == tokComma {
			if err := p.advance(); err != nil {
				return Term{}, err
			}
			continue
		}
		break
	}
	if _, err := p.expect(tokRParen); err != nil {
		return Term{}, err
	}
	return t, nil
}

// term parses an argument position: a variable or a (possibly applied)
// symbol.
func (p *parser) term() (Term, error) {
	switch p.tok.kind {
	case tokVar:
		t := Term{Var: p.tok.text}
		return t, p.advance()
	case tokIdent:
		return p.application()
	default:
		return Term{}, fmt.Errorf("line %d:%d: expected term, found %s",
			p.tok.line, p.tok.col, p.tok.kind)
	}
}
