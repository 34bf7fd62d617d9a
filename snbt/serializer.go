package snbt

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/vberlier/nbtlib/nbt"
)

// Mode selects how Serialize lays out whitespace and punctuation.
type Mode int

const (
	// Compact emits no insignificant whitespace at all.
	Compact Mode = iota
	// Default matches vanilla Minecraft's single-space-after-separator
	// style: "{a: 1, b: 2}".
	Default
	// Pretty indents nested compounds/lists one level per depth with
	// two-space indentation and trailing newlines.
	Pretty
)

// Serialize renders t as SNBT text under the given mode.
func Serialize(t nbt.Tag, mode Mode) string {
	var b strings.Builder
	w := &writer{mode: mode}
	w.writeTag(&b, t, 0)
	return b.String()
}

type writer struct {
	mode Mode
}

func (w *writer) writeTag(b *strings.Builder, t nbt.Tag, depth int) {
	switch v := t.(type) {
	case nbt.Byte:
		fmt.Fprintf(b, "%db", int8(v))
	case nbt.Short:
		fmt.Fprintf(b, "%ds", int16(v))
	case nbt.Int:
		fmt.Fprintf(b, "%d", int32(v))
	case nbt.Long:
		fmt.Fprintf(b, "%dL", int64(v))
	case nbt.Float:
		b.WriteString(strconv.FormatFloat(float64(v), 'g', -1, 32))
		b.WriteByte('f')
	case nbt.Double:
		b.WriteString(strconv.FormatFloat(float64(v), 'g', -1, 64))
		b.WriteByte('d')
	case nbt.String:
		b.WriteString(quoteString(string(v)))
	case nbt.ByteArray:
		w.writeNumericArray(b, "B", len(v), depth, func(i int) string { return strconv.Itoa(int(v[i])) })
	case nbt.IntArray:
		w.writeNumericArray(b, "I", len(v), depth, func(i int) string { return strconv.Itoa(int(v[i])) })
	case nbt.LongArray:
		w.writeNumericArray(b, "L", len(v), depth, func(i int) string { return strconv.FormatInt(v[i], 10) })
	case nbt.List:
		w.writeList(b, v, depth)
	case *nbt.Compound:
		w.writeCompound(b, v, depth)
	case nbt.End:
		b.WriteString("{}")
	}
}

func (w *writer) writeNumericArray(b *strings.Builder, prefix string, n int, depth int, elem func(i int) string) {
	b.WriteByte('[')
	b.WriteString(prefix)
	b.WriteByte(';')
	if n == 0 {
		b.WriteByte(']')
		return
	}
	if w.mode == Pretty {
		b.WriteByte('\n')
	} else {
		w.sep(b)
	}
	for i := 0; i < n; i++ {
		if i > 0 {
			b.WriteByte(',')
			if w.mode != Pretty {
				w.sep(b)
			}
		}
		if w.mode == Pretty {
			w.indent(b, depth+1)
		}
		b.WriteString(elem(i))
		if w.mode == Pretty {
			b.WriteByte('\n')
		}
	}
	if w.mode == Pretty {
		w.indent(b, depth)
	}
	b.WriteByte(']')
}

func (w *writer) writeList(b *strings.Builder, l nbt.List, depth int) {
	if len(l.Elements) == 0 {
		b.WriteString("[]")
		return
	}

	b.WriteByte('[')
	if w.mode == Pretty {
		b.WriteByte('\n')
	}
	for i, e := range l.Elements {
		if i > 0 {
			b.WriteByte(',')
			if w.mode != Pretty {
				w.sep(b)
			}
		}
		if w.mode == Pretty {
			w.indent(b, depth+1)
		}
		w.writeTag(b, e, depth+1)
		if w.mode == Pretty {
			b.WriteByte('\n')
		}
	}
	if w.mode == Pretty {
		w.indent(b, depth)
	}
	b.WriteByte(']')
}

func (w *writer) writeCompound(b *strings.Builder, c *nbt.Compound, depth int) {
	if c.Len() == 0 {
		b.WriteString("{}")
		return
	}

	b.WriteByte('{')
	if w.mode == Pretty {
		b.WriteByte('\n')
	}
	i := 0
	c.Range(func(name string, tag nbt.Tag) bool {
		if i > 0 {
			b.WriteByte(',')
			if w.mode != Pretty {
				w.sep(b)
			}
		}
		if w.mode == Pretty {
			w.indent(b, depth+1)
		}
		b.WriteString(quoteKey(name))
		b.WriteByte(':')
		w.sep(b)
		w.writeTag(b, tag, depth+1)
		if w.mode == Pretty {
			b.WriteByte('\n')
		}
		i++
		return true
	})
	if w.mode == Pretty {
		w.indent(b, depth)
	}
	b.WriteByte('}')
}

func (w *writer) sep(b *strings.Builder) {
	if w.mode != Compact {
		b.WriteByte(' ')
	}
}

func (w *writer) indent(b *strings.Builder, depth int) {
	if w.mode != Pretty {
		return
	}
	for i := 0; i < depth; i++ {
		b.WriteString("  ")
	}
}

// quoteKey quotes a compound key only when it is not a valid bare
// unquoted word, matching SNBT's minimal-quoting convention.
func quoteKey(s string) string {
	if s != "" && allUnquoted(s) {
		return s
	}
	return quoteString(s)
}

func allUnquoted(s string) bool {
	for _, r := range s {
		if !unquotedChar(r) {
			return false
		}
	}
	return true
}

// quoteString picks the quote character that minimizes escaping: '"'
// is preferred, falling back to '\'' only when s contains '"' but no
// '\'', matching the grammar's quoting policy.
func quoteString(s string) string {
	quote := byte('"')
	if strings.Contains(s, `"`) && !strings.Contains(s, `'`) {
		quote = '\''
	}

	var b strings.Builder
	b.WriteByte(quote)
	for _, r := range s {
		switch {
		case r == rune(quote):
			b.WriteByte('\\')
			b.WriteByte(quote)
		case r == '\\':
			b.WriteString(`\\`)
		case r == '\n':
			b.WriteString(`\n`)
		case r == '\t':
			b.WriteString(`\t`)
		case r == '\r':
			b.WriteString(`\r`)
		default:
			b.WriteRune(r)
		}
	}
	b.WriteByte(quote)
	return b.String()
}
