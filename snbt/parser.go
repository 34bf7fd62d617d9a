package snbt

import (
	"strconv"
	"strings"

	"github.com/vberlier/nbtlib/nbt"
	"github.com/vberlier/nbtlib/nbterr"
)

// Parse reads a complete SNBT document and returns the tag it
// describes. The grammar accepts a Compound, List, array, quoted
// string, unquoted string, or numeric literal at the top level.
func Parse(s string) (nbt.Tag, error) {
	p := &parser{lex: newLexer(s)}
	if err := p.advance(); err != nil {
		return nil, err
	}
	t, err := p.parseValue()
	if err != nil {
		return nil, err
	}
	if p.tok.kind != tokEOF {
		return nil, &nbterr.SyntaxError{Line: p.tok.line, Col: p.tok.col, Msg: "trailing input after value"}
	}
	return t, nil
}

type parser struct {
	lex *lexer
	tok token
}

func (p *parser) advance() error {
	t, err := p.lex.next()
	if err != nil {
		return err
	}
	p.tok = t
	return nil
}

func (p *parser) expect(k tokenKind, what string) error {
	if p.tok.kind != k {
		return &nbterr.SyntaxError{Line: p.tok.line, Col: p.tok.col, Msg: "expected " + what}
	}
	return p.advance()
}

func (p *parser) parseValue() (nbt.Tag, error) {
	switch p.tok.kind {
	case tokLBrace:
		return p.parseCompound()
	case tokLBracket:
		return p.parseListOrArray()
	case tokString:
		s := p.tok.text
		if err := p.advance(); err != nil {
			return nil, err
		}
		return nbt.String(s), nil
	case tokUnquoted:
		return p.parseUnquotedValue()
	default:
		return nil, &nbterr.SyntaxError{Line: p.tok.line, Col: p.tok.col, Msg: "expected value"}
	}
}

func (p *parser) parseUnquotedValue() (nbt.Tag, error) {
	text := p.tok.text
	line, col := p.tok.line, p.tok.col
	if err := p.advance(); err != nil {
		return nil, err
	}

	tag, numeric, err := parseNumeric(text)
	if err != nil {
		return nil, &nbterr.RangeError{Line: line, Col: col, Literal: text, TypeName: err.Error()}
	}
	if numeric {
		return tag, nil
	}

	switch strings.ToLower(text) {
	case "true":
		return nbt.Byte(1), nil
	case "false":
		return nbt.Byte(0), nil
	}

	if text == "" {
		return nil, &nbterr.SyntaxError{Line: line, Col: col, Msg: "empty unquoted value"}
	}
	return nbt.String(text), nil
}

// parseNumeric attempts to classify text as a numeric SNBT literal,
// applying the b/s/l/f/d suffix disambiguation rule: an explicit
// suffix selects the tag type outright; otherwise a literal
// containing '.', 'e', or 'E' is a Double and a bare digit run is an
// Int (falling back to Long if it overflows 32 bits), matching the
// numeric-suffix rules of the grammar.
//
// The second return value reports whether text was recognized as a
// numeric literal at all (false means "treat as a bare string", not
// an error). Once text is recognized as numeric with an explicit
// suffix, an out-of-range value is a hard NumericRange failure rather
// than a silent fallback to string — e.g. "2147483648b" is a Byte
// literal that overflows, not the string "2147483648b".
func parseNumeric(text string) (nbt.Tag, bool, error) {
	if text == "" {
		return nil, false, nil
	}

	body := text
	suffix := byte(0)
	last := text[len(text)-1]
	switch last {
	case 'b', 'B', 's', 'S', 'l', 'L', 'f', 'F', 'd', 'D':
		// A bare trailing 'b'/'B' only counts as a suffix if the rest
		// parses as a number; this also excludes hex-looking or
		// identifier-like words such as "bed".
		body = text[:len(text)-1]
		suffix = lowerByte(last)
	}

	if body == "" || !looksNumeric(body) {
		return nil, false, nil
	}

	switch suffix {
	case 'b':
		n, err := strconv.ParseInt(body, 10, 8)
		if err != nil {
			return nil, true, errRange("TAG_Byte")
		}
		return nbt.Byte(n), true, nil
	case 's':
		n, err := strconv.ParseInt(body, 10, 16)
		if err != nil {
			return nil, true, errRange("TAG_Short")
		}
		return nbt.Short(n), true, nil
	case 'l':
		n, err := strconv.ParseInt(body, 10, 64)
		if err != nil {
			return nil, true, errRange("TAG_Long")
		}
		return nbt.Long(n), true, nil
	case 'f':
		f, err := strconv.ParseFloat(body, 32)
		if err != nil {
			return nil, true, errRange("TAG_Float")
		}
		return nbt.Float(f), true, nil
	case 'd':
		f, err := strconv.ParseFloat(body, 64)
		if err != nil {
			return nil, true, errRange("TAG_Double")
		}
		return nbt.Double(f), true, nil
	}

	if strings.ContainsAny(body, ".eE") {
		f, err := strconv.ParseFloat(body, 64)
		if err != nil {
			return nil, false, nil
		}
		return nbt.Double(f), true, nil
	}

	if n, err := strconv.ParseInt(body, 10, 32); err == nil {
		return nbt.Int(n), true, nil
	}
	if n, err := strconv.ParseInt(body, 10, 64); err == nil {
		return nbt.Long(n), true, nil
	}
	return nil, false, nil
}

func errRange(typeName string) error { return rangeSentinel{typeName} }

// rangeSentinel carries the tag type name an out-of-range literal was
// rejected for; parseUnquotedValue unwraps it into a proper
// *nbterr.RangeError with the literal's source position attached.
type rangeSentinel struct{ typeName string }

func (r rangeSentinel) Error() string { return r.typeName }

func lowerByte(b byte) byte {
	if b >= 'A' && b <= 'Z' {
		return b + ('a' - 'A')
	}
	return b
}

func looksNumeric(s string) bool {
	if s == "" {
		return false
	}
	i := 0
	if s[i] == '+' || s[i] == '-' {
		i++
	}
	if i >= len(s) {
		return false
	}
	sawDigit := false
	for ; i < len(s); i++ {
		c := s[i]
		switch {
		case c >= '0' && c <= '9':
			sawDigit = true
		case c == '.' || c == 'e' || c == 'E' || c == '+' || c == '-':
			// allowed inside float/exponent literals; full validation
			// happens in strconv.Parse*.
		default:
			return false
		}
	}
	return sawDigit
}

func (p *parser) parseCompound() (nbt.Tag, error) {
	if err := p.advance(); err != nil { // consume '{'
		return nil, err
	}
	c := nbt.NewCompound()
	if p.tok.kind == tokRBrace {
		return c, p.advance()
	}
	for {
		key, err := p.parseKey()
		if err != nil {
			return nil, err
		}
		if err := p.expect(tokColon, "':'"); err != nil {
			return nil, err
		}
		val, err := p.parseValue()
		if err != nil {
			return nil, err
		}
		c.Set(key, val)

		switch p.tok.kind {
		case tokComma:
			if err := p.advance(); err != nil {
				return nil, err
			}
		case tokRBrace:
			return c, p.advance()
		default:
			return nil, &nbterr.SyntaxError{Line: p.tok.line, Col: p.tok.col, Msg: "expected ',' or '}'"}
		}
	}
}

func (p *parser) parseKey() (string, error) {
	switch p.tok.kind {
	case tokString, tokUnquoted:
		key := p.tok.text
		return key, p.advance()
	default:
		return "", &nbterr.SyntaxError{Line: p.tok.line, Col: p.tok.col, Msg: "expected compound key"}
	}
}

// parseListOrArray handles '[', which begins either a typed array
// ('[B; ...]', '[I; ...]', '[L; ...]') or a plain homogeneous list
// ('[...]'), per the grammar's list/array unification rule.
func (p *parser) parseListOrArray() (nbt.Tag, error) {
	startLine, startCol := p.tok.line, p.tok.col
	if err := p.advance(); err != nil { // consume '['
		return nil, err
	}

	if p.tok.kind == tokUnquoted && len(p.tok.text) == 1 && isArrayPrefix(p.tok.text[0]) {
		prefix := p.tok.text[0]
		// Only a prefix immediately followed by ';' selects the array
		// form; otherwise it is the first element of a plain list
		// (e.g. the bare word "B" used as a string). Save both the
		// pending token and the lexer's scan position so the lookahead
		// can be fully undone.
		savedTok := p.tok
		savedLex := *p.lex
		if err := p.advance(); err != nil {
			return nil, err
		}
		if p.tok.kind == tokSemicolon {
			if err := p.advance(); err != nil {
				return nil, err
			}
			return p.parseArrayBody(prefix)
		}
		p.tok = savedTok
		*p.lex = savedLex
	}

	return p.parseListBody(startLine, startCol)
}

func isArrayPrefix(b byte) bool {
	return b == 'B' || b == 'I' || b == 'L'
}

func (p *parser) parseArrayBody(prefix byte) (nbt.Tag, error) {
	if p.tok.kind == tokRBracket {
		return emptyArray(prefix), p.advance()
	}

	var bytes []int8
	var ints []int32
	var longs []int64

	for {
		val, err := p.parseValue()
		if err != nil {
			return nil, err
		}
		switch prefix {
		case 'B':
			b, err := coerceByte(val)
			if err != nil {
				return nil, err
			}
			bytes = append(bytes, b)
		case 'I':
			i, err := coerceInt(val)
			if err != nil {
				return nil, err
			}
			ints = append(ints, i)
		case 'L':
			l, err := coerceLong(val)
			if err != nil {
				return nil, err
			}
			longs = append(longs, l)
		}

		switch p.tok.kind {
		case tokComma:
			if err := p.advance(); err != nil {
				return nil, err
			}
		case tokRBracket:
			if err := p.advance(); err != nil {
				return nil, err
			}
			switch prefix {
			case 'B':
				return nbt.ByteArray(bytes), nil
			case 'I':
				return nbt.IntArray(ints), nil
			default:
				return nbt.LongArray(longs), nil
			}
		default:
			return nil, &nbterr.SyntaxError{Line: p.tok.line, Col: p.tok.col, Msg: "expected ',' or ']'"}
		}
	}
}

func emptyArray(prefix byte) nbt.Tag {
	switch prefix {
	case 'B':
		return nbt.ByteArray(nil)
	case 'I':
		return nbt.IntArray(nil)
	default:
		return nbt.LongArray(nil)
	}
}

// coerceByte, coerceInt, and coerceLong enforce the grammar's "element
// suffixes must match or be absent" rule for typed arrays: an element
// explicitly suffixed for a different array kind is rejected, but an
// unsuffixed element (which always parses as Int, or as Long once it
// overflows 32 bits) is accepted into any of the three array kinds.
// Short never belongs in an array: the grammar has no [S; ...] form,
// so an explicit 's' suffix is always a mismatch.

func coerceByte(t nbt.Tag) (int8, error) {
	switch v := t.(type) {
	case nbt.Byte:
		return int8(v), nil
	case nbt.Int:
		return int8(v), nil
	case nbt.Long:
		return int8(v), nil
	default:
		return 0, nbterr.ErrNumericRange
	}
}

func coerceInt(t nbt.Tag) (int32, error) {
	switch v := t.(type) {
	case nbt.Int:
		return int32(v), nil
	case nbt.Long:
		return int32(v), nil
	default:
		return 0, nbterr.ErrNumericRange
	}
}

func coerceLong(t nbt.Tag) (int64, error) {
	switch v := t.(type) {
	case nbt.Long:
		return int64(v), nil
	case nbt.Int:
		return int64(v), nil
	default:
		return 0, nbterr.ErrNumericRange
	}
}

func (p *parser) parseListBody(line, col int) (nbt.Tag, error) {
	if p.tok.kind == tokRBracket {
		return nbt.NewList(nbt.TagEnd), p.advance()
	}

	var elems []nbt.Tag
	for {
		v, err := p.parseValue()
		if err != nil {
			return nil, err
		}
		if len(elems) > 0 && elems[0].ID() != v.ID() {
			return nil, &nbterr.SyntaxError{Line: line, Col: col, Sentinel: nbterr.ErrListHeterogeneous, Msg: "list elements have different types"}
		}
		elems = append(elems, v)

		switch p.tok.kind {
		case tokComma:
			if err := p.advance(); err != nil {
				return nil, err
			}
		case tokRBracket:
			if err := p.advance(); err != nil {
				return nil, err
			}
			return nbt.NewList(nbt.TagEnd, elems...), nil
		default:
			return nil, &nbterr.SyntaxError{Line: p.tok.line, Col: p.tok.col, Msg: "expected ',' or ']'"}
		}
	}
}
