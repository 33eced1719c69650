package ast

import (
	"fmt"
	"unicode"
	"unicode/utf8"
)

type tokenKind int

const (
	tokEOF tokenKind = iota
	tokIdent
	tokVar
	tokLParen
	tokRParen
	tokComma
	tokDot
	tokImplies // :-
	tokTilde   // ~
)

func (k tokenKind) String() string {
	switch k {
	case tokEOF:
		return "end of input"
	case tokIdent:
		return "identifier"
	case tokVar:
		return "variable"
	case tokLParen:
		return "'('"
	case tokRParen:
		return "')'"
	case tokComma:
		return "','"
	case tokDot:
		return "'.'"
	case tokImplies:
		return "':-'"
	case tokTilde:
		return "'~'"
	}
	return "unknown token"
}

type token struct {
	kind tokenKind
	text string
	line int
	col  int
}

type lexer struct {
	src  string
	pos  int
	line int
	col  int
}

func newLexer(src string) *lexer {
	return &lexer{src: src, line: 1, col: 1}
}

func (l *lexer) peek() rune {
	if l.pos >= len(l.src) {
		return 0
	}
	r, _ := utf8.DecodeRuneInString(l.src[l.pos:])
	return r
}

func (l *lexer) advance() {
	r, size := utf8.DecodeRuneInString(l.src[l.pos:])
	l.pos += size
	if r == '\n' {
		l.line++
		l.col = 1
	} else {
		l.col++
	}
}

// next returns the following token. Whitespace and '%' line comments are
// skipped.
func (l *lexer) next() (token, error) {
	for l.pos < len(l.src) {
		r := l.peek()
		if unicode.IsSpace(r) {
			l.advance()
			continue
		}
		if r == '%' {
			for l.pos < len(l.src) && l.peek() != '\n' {
				l.advance()
			}
			continue
		}
		break
	}

	tok := token{line: l.line, col: l.col}
	if l.pos >= len(l.src) {
		tok.kind = tokEOF
		return tok, nil
	}

	r := l.peek()
	switch {
	case r == '(':
		l.advance()
		tok.kind = tokLParen
	case r == ')':
		l.advance()
		tok.kind = tokRParen
	case r == ',':
		l.advance()
		tok.kind = tokComma
	case r == '.':
		l.advance()
		tok.kind = tokDot
	case r == '~':
		l.advance()
		tok.kind = tokTilde
	case r == ':':
		l.advance()
		if l.peek() != '-' {
			return tok, fmt.Errorf("line %d:%d: expected ':-'", tok.line, tok.col)
		}
		l.advance()
		tok.kind = tokImplies
	case isVarStart(r):
		tok.kind = tokVar
		tok.text = l.word()
	case isIdentStart(r):
		tok.kind = tokIdent
		tok.text = l.word()
	default:
		return tok, fmt.Errorf("line %d:%d: unexpected character %q", tok.line, tok.col, r)
	}
	return tok, nil
}

// word consumes an identifier or variable name, including a leading minus
// sign for negative integer constants.
func (l *lexer) word() string {
	start := l.pos
	if l.peek() == '-' {
		l.advance()
	}
	for l.pos < len(l.src) && isWordRune(l.peek()) {
		l.advance()
	}
	return l.src[start:l.pos]
}

// Variables start with an uppercase letter or underscore; everything else
// word-like is a constant symbol, including bare integers.
func isVarStart(r rune) bool {
	return unicode.IsUpper(r) || r == '_'
}

func isIdentStart(r rune) bool {
	return unicode.IsLower(r) || unicode.IsDigit(r) || r == '-'
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_'
}
