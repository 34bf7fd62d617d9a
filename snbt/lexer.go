// Package snbt implements the stringified NBT text format: a
// recursive-descent lexer and parser that read SNBT into nbt.Tag
// values, and a serializer that renders nbt.Tag values back to SNBT
// in compact, default, or pretty modes.
//
// No example in the retrieved pack implements a text format for NBT;
// this package follows the teacher's per-tag-type switch idiom for
// token/value classification and the hand-written recursive-descent
// shape used elsewhere in the pack for small grammars, rather than
// pulling in a parser-generator dependency.
package snbt

import (
	"strings"

	"github.com/vberlier/nbtlib/nbterr"
)

type tokenKind int

const (
	tokEOF tokenKind = iota
	tokLBrace
	tokRBrace
	tokLBracket
	tokRBracket
	tokColon
	tokComma
	tokSemicolon
	tokString  // quoted string, value already unescaped
	tokUnquoted // bare word: identifier or numeric literal text
)

type token struct {
	kind    tokenKind
	text    string
	line    int
	col     int
}

// unquotedChar reports whether r may appear in a bare (unquoted)
// string or numeric literal, matching SNBT's permissive unquoted-word
// character class.
func unquotedChar(r rune) bool {
	switch {
	case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		return true
	case r == '_' || r == '-' || r == '.' || r == '+':
		return true
	}
	return false
}

type lexer struct {
	src        []rune
	pos        int
	line, col  int
}

func newLexer(s string) *lexer {
	return &lexer{src: []rune(s), line: 1, col: 1}
}

func (l *lexer) peekRune() (rune, bool) {
	if l.pos >= len(l.src) {
		return 0, false
	}
	return l.src[l.pos], true
}

func (l *lexer) advance() (rune, bool) {
	r, ok := l.peekRune()
	if !ok {
		return 0, false
	}
	l.pos++
	if r == '\n' {
		l.line++
		l.col = 1
	} else {
		l.col++
	}
	return r, true
}

func (l *lexer) skipSpace() {
	for {
		r, ok := l.peekRune()
		if !ok {
			return
		}
		switch r {
		case ' ', '\t', '\r', '\n':
			l.advance()
		default:
			return
		}
	}
}

func (l *lexer) next() (token, error) {
	l.skipSpace()
	line, col := l.line, l.col

	r, ok := l.peekRune()
	if !ok {
		return token{kind: tokEOF, line: line, col: col}, nil
	}

	switch r {
	case '{':
		l.advance()
		return token{kind: tokLBrace, line: line, col: col}, nil
	case '}':
		l.advance()
		return token{kind: tokRBrace, line: line, col: col}, nil
	case '[':
		l.advance()
		return token{kind: tokLBracket, line: line, col: col}, nil
	case ']':
		l.advance()
		return token{kind: tokRBracket, line: line, col: col}, nil
	case ':':
		l.advance()
		return token{kind: tokColon, line: line, col: col}, nil
	case ',':
		l.advance()
		return token{kind: tokComma, line: line, col: col}, nil
	case ';':
		l.advance()
		return token{kind: tokSemicolon, line: line, col: col}, nil
	case '"', '\'':
		return l.lexQuoted(r, line, col)
	default:
		if unquotedChar(r) {
			return l.lexUnquoted(line, col), nil
		}
		return token{}, &nbterr.SyntaxError{Line: line, Col: col, Msg: "unexpected character " + string(r)}
	}
}

func (l *lexer) lexUnquoted(line, col int) token {
	var b strings.Builder
	for {
		r, ok := l.peekRune()
		if !ok || !unquotedChar(r) {
			break
		}
		b.WriteRune(r)
		l.advance()
	}
	return token{kind: tokUnquoted, text: b.String(), line: line, col: col}
}

func (l *lexer) lexQuoted(quote rune, line, col int) (token, error) {
	l.advance() // consume opening quote
	var b strings.Builder
	for {
		r, ok := l.advance()
		if !ok {
			return token{}, &nbterr.SyntaxError{Line: line, Col: col, Msg: "unterminated quoted string"}
		}
		if r == quote {
			return token{kind: tokString, text: b.String(), line: line, col: col}, nil
		}
		if r == '\\' {
			esc, ok := l.advance()
			if !ok {
				return token{}, &nbterr.SyntaxError{Line: line, Col: col, Msg: "unterminated escape sequence"}
			}
			switch esc {
			case '\\', '"', '\'':
				b.WriteRune(esc)
			case 'n':
				b.WriteRune('\n')
			case 't':
				b.WriteRune('\t')
			case 'r':
				b.WriteRune('\r')
			default:
				b.WriteRune(esc)
			}
			continue
		}
		b.WriteRune(r)
	}
}
