// Package nbtpath implements the NBT Path accessor expression
// language: a small grammar for addressing one or more tags inside a
// tree by name, index, or compound filter, and the get_all/set_all/
// delete_all/find operations built on top of it.
//
// nictuku-chunkymonkey's ITag.Lookup(path string) ITag is the pack's
// only existing precedent for addressing an NBT tree by string path;
// this package generalizes that single-segment lookup into the full
// accessor grammar (indices, wildcards, compound filters).
package nbtpath

import (
	"strconv"
	"strings"

	"github.com/vberlier/nbtlib/nbt"
	"github.com/vberlier/nbtlib/nbterr"
	"github.com/vberlier/nbtlib/snbt"
)

type segKind int

const (
	segName segKind = iota
	segIndex
	segAllElements
	segIndexFilter // [{...}]
	segFilter      // {...} applied directly to the current tag
)

type segment struct {
	kind   segKind
	name   string
	index  int
	filter *nbt.Compound
}

// Path is a parsed NBT Path expression, ready to be evaluated against
// any root tag with GetAll/SetAll/DeleteAll/Find.
type Path struct {
	segments []segment
}

// Parse compiles an NBT Path expression. Segments are name accesses
// ("foo", possibly quoted), "[]" for every element, "[i]" for a
// signed index (negative counts from the end), "[{...}]" for list
// elements whose value matches a compound filter, and "{...}" to
// filter the current compound itself. Consecutive segments are
// concatenated directly ("a.b[0]") using '.' only between two name
// segments, matching the grammar's minimal-punctuation style.
func Parse(s string) (*Path, error) {
	p := &pparser{src: s}
	var segs []segment
	for p.pos < len(p.src) {
		if p.src[p.pos] == '.' {
			p.pos++
			continue
		}
		seg, err := p.parseSegment()
		if err != nil {
			return nil, err
		}
		segs = append(segs, seg)
	}
	return &Path{segments: segs}, nil
}

type pparser struct {
	src string
	pos int
}

func (p *pparser) parseSegment() (segment, error) {
	c := p.src[p.pos]
	switch c {
	case '[':
		return p.parseBracket()
	case '{':
		f, err := p.parseFilterLiteral()
		if err != nil {
			return segment{}, err
		}
		return segment{kind: segFilter, filter: f}, nil
	case '"', '\'':
		name, err := p.parseQuotedName(c)
		if err != nil {
			return segment{}, err
		}
		return segment{kind: segName, name: name}, nil
	default:
		return p.parseBareName()
	}
}

func (p *pparser) parseBareName() (segment, error) {
	start := p.pos
	for p.pos < len(p.src) {
		c := p.src[p.pos]
		if c == '.' || c == '[' || c == '{' {
			break
		}
		p.pos++
	}
	if p.pos == start {
		return segment{}, &nbterr.SyntaxError{Sentinel: nbterr.ErrPathSyntax, Msg: "expected path segment"}
	}
	return segment{kind: segName, name: p.src[start:p.pos]}, nil
}

func (p *pparser) parseQuotedName(quote byte) (string, error) {
	p.pos++ // opening quote
	start := p.pos
	for p.pos < len(p.src) && p.src[p.pos] != quote {
		if p.src[p.pos] == '\\' {
			p.pos++
		}
		p.pos++
	}
	if p.pos >= len(p.src) {
		return "", &nbterr.SyntaxError{Sentinel: nbterr.ErrPathSyntax, Msg: "unterminated quoted path segment"}
	}
	name := p.src[start:p.pos]
	p.pos++ // closing quote
	return name, nil
}

func (p *pparser) parseBracket() (segment, error) {
	p.pos++ // '['
	if p.pos < len(p.src) && p.src[p.pos] == ']' {
		p.pos++
		return segment{kind: segAllElements}, nil
	}
	if p.pos < len(p.src) && p.src[p.pos] == '{' {
		f, err := p.parseFilterLiteral()
		if err != nil {
			return segment{}, err
		}
		if p.pos >= len(p.src) || p.src[p.pos] != ']' {
			return segment{}, &nbterr.SyntaxError{Sentinel: nbterr.ErrPathSyntax, Msg: "expected ']' after filter"}
		}
		p.pos++
		return segment{kind: segIndexFilter, filter: f}, nil
	}

	start := p.pos
	if p.pos < len(p.src) && p.src[p.pos] == '-' {
		p.pos++
	}
	for p.pos < len(p.src) && p.src[p.pos] >= '0' && p.src[p.pos] <= '9' {
		p.pos++
	}
	if p.pos == start {
		return segment{}, &nbterr.SyntaxError{Sentinel: nbterr.ErrPathSyntax, Msg: "expected index inside '[]'"}
	}
	n, err := strconv.Atoi(p.src[start:p.pos])
	if err != nil {
		return segment{}, &nbterr.SyntaxError{Sentinel: nbterr.ErrPathSyntax, Msg: "invalid index"}
	}
	if p.pos >= len(p.src) || p.src[p.pos] != ']' {
		return segment{}, &nbterr.SyntaxError{Sentinel: nbterr.ErrPathSyntax, Msg: "expected ']'"}
	}
	p.pos++
	return segment{kind: segIndex, index: n}, nil
}

// parseFilterLiteral extracts the balanced-brace span starting at '{'
// and delegates parsing to the SNBT compound grammar, so a filter
// like {id:"minecraft:stick", Count: 1b} reuses the exact same value
// syntax as the rest of the format.
func (p *pparser) parseFilterLiteral() (*nbt.Compound, error) {
	start := p.pos
	depth := 0
	inString := byte(0)
	for p.pos < len(p.src) {
		c := p.src[p.pos]
		switch {
		case inString != 0:
			if c == '\\' {
				p.pos++
			} else if c == inString {
				inString = 0
			}
		case c == '"' || c == '\'':
			inString = c
		case c == '{':
			depth++
		case c == '}':
			depth--
			if depth == 0 {
				p.pos++
				literal := p.src[start:p.pos]
				tag, err := snbt.Parse(literal)
				if err != nil {
					return nil, &nbterr.SyntaxError{Sentinel: nbterr.ErrPathSyntax, Msg: "invalid filter literal: " + err.Error()}
				}
				c, ok := tag.(*nbt.Compound)
				if !ok {
					return nil, &nbterr.SyntaxError{Sentinel: nbterr.ErrPathSyntax, Msg: "path filter must be a compound"}
				}
				return c, nil
			}
		}
		p.pos++
	}
	return nil, &nbterr.SyntaxError{Sentinel: nbterr.ErrPathSyntax, Msg: "unterminated filter"}
}

// Empty returns the zero-length path, which resolves to exactly the
// root tag it is evaluated against.
func Empty() *Path { return &Path{} }

// Concat returns a new path equivalent to following path then other,
// satisfying get_all(tree, a.Concat(b)) == flatmap(get_all(tree, a),
// x => get_all(x, b)).
func (path *Path) Concat(other *Path) *Path {
	segs := make([]segment, 0, len(path.segments)+len(other.segments))
	segs = append(segs, path.segments...)
	segs = append(segs, other.segments...)
	return &Path{segments: segs}
}

// String renders the path back to its canonical textual form, using
// '.' between consecutive name segments.
func (path *Path) String() string {
	var b strings.Builder
	for i, s := range path.segments {
		switch s.kind {
		case segName:
			if i > 0 && path.segments[i-1].kind == segName {
				b.WriteByte('.')
			}
			b.WriteString(s.name)
		case segIndex:
			b.WriteByte('[')
			b.WriteString(strconv.Itoa(s.index))
			b.WriteByte(']')
		case segAllElements:
			b.WriteString("[]")
		case segIndexFilter:
			b.WriteByte('[')
			b.WriteString(snbt.Serialize(s.filter, snbt.Compact))
			b.WriteByte(']')
		case segFilter:
			b.WriteString(snbt.Serialize(s.filter, snbt.Compact))
		}
	}
	return b.String()
}
