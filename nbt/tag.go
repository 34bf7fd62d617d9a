// Package nbt implements the Named Binary Tag data model: the twelve
// typed tag variants, their binary codec, the stack-machine scanner
// that indexes a buffer without materializing it, and the
// materializer that turns a scan index into an owned tag tree.
//
// reference: the NBT format as used by Minecraft and its derivatives;
// see GLOSSARY in the project specification for terminology.
package nbt

import (
	"fmt"
	"math"
)

// TagType identifies one of the twelve NBT tag variants by its
// one-byte wire discriminator.
type TagType byte

const (
	TagEnd TagType = iota
	TagByte
	TagShort
	TagInt
	TagLong
	TagFloat
	TagDouble
	TagByteArray
	TagString
	TagList
	TagCompound
	TagIntArray
	TagLongArray
)

var tagTypeNames = [...]string{
	TagEnd:       "TAG_End",
	TagByte:      "TAG_Byte",
	TagShort:     "TAG_Short",
	TagInt:       "TAG_Int",
	TagLong:      "TAG_Long",
	TagFloat:     "TAG_Float",
	TagDouble:    "TAG_Double",
	TagByteArray: "TAG_Byte_Array",
	TagString:    "TAG_String",
	TagList:      "TAG_List",
	TagCompound:  "TAG_Compound",
	TagIntArray:  "TAG_Int_Array",
	TagLongArray: "TAG_Long_Array",
}

func (t TagType) String() string {
	if int(t) < len(tagTypeNames) && tagTypeNames[t] != "" {
		return tagTypeNames[t]
	}
	return fmt.Sprintf("TAG_Unknown(%d)", byte(t))
}

// Valid reports whether t is one of the thirteen wire discriminators
// (End through LongArray) understood by the codec.
func (t TagType) Valid() bool {
	return t <= TagLongArray
}

// numeric reports whether t is a fixed-size scalar (Byte..Double),
// the class the scanner can bulk-skip inside a List without
// per-element dispatch.
func (t TagType) numeric() bool {
	return t >= TagByte && t <= TagDouble
}

// scalarSize is the fixed wire size, in bytes, of a numeric scalar
// tag type. Indexed by TagType; zero for non-scalar types.
var scalarSize = [...]int{
	TagByte:   1,
	TagShort:  2,
	TagInt:    4,
	TagLong:   8,
	TagFloat:  4,
	TagDouble: 8,
}

// elementSize is the per-element wire size of an array tag's payload.
var elementSize = [...]int{
	TagByteArray: 1,
	TagIntArray:  4,
	TagLongArray: 8,
}

// Tag is any of the twelve NBT value variants. Implementations are
// the named scalar/array/container types below; End is only valid as
// a list's element-type sentinel or a compound terminator and does
// not usually appear as a materialized value.
type Tag interface {
	ID() TagType
	// Equal reports whether two tags have the same type and
	// recursively equal value, per the NBT Path compound-filter
	// equality rules: numeric equality requires identical tag type,
	// list equality is order-sensitive, compound equality compares
	// all entries regardless of order.
	Equal(Tag) bool
}

// scalar and array tag variants. Each is a defined type over its
// natural Go primitive so that type switches (schema coercion, path
// filters, SNBT disambiguation) dispatch on the NBT type rather than
// on a boxed interface{} payload.
type (
	Byte      int8
	Short     int16
	Int       int32
	Long      int64
	Float     float32
	Double    float64
	ByteArray []int8
	String    string
	IntArray  []int32
	LongArray []int64
)

func (Byte) ID() TagType      { return TagByte }
func (Short) ID() TagType     { return TagShort }
func (Int) ID() TagType       { return TagInt }
func (Long) ID() TagType      { return TagLong }
func (Float) ID() TagType     { return TagFloat }
func (Double) ID() TagType    { return TagDouble }
func (ByteArray) ID() TagType { return TagByteArray }
func (String) ID() TagType    { return TagString }
func (IntArray) ID() TagType  { return TagIntArray }
func (LongArray) ID() TagType { return TagLongArray }

func (a Byte) Equal(b Tag) bool   { v, ok := b.(Byte); return ok && a == v }
func (a Short) Equal(b Tag) bool  { v, ok := b.(Short); return ok && a == v }
func (a Int) Equal(b Tag) bool    { v, ok := b.(Int); return ok && a == v }
func (a Long) Equal(b Tag) bool   { v, ok := b.(Long); return ok && a == v }
func (a String) Equal(b Tag) bool { v, ok := b.(String); return ok && a == v }

// Float and Double compare by IEEE-754 bit pattern so that NaN
// equals NaN for the purposes of a path filter, matching Python
// nbtlib's tag equality (and unlike Go's own == on float64).
func (a Float) Equal(b Tag) bool {
	v, ok := b.(Float)
	return ok && math.Float32bits(float32(a)) == math.Float32bits(float32(v))
}
func (a Double) Equal(b Tag) bool {
	v, ok := b.(Double)
	return ok && math.Float64bits(float64(a)) == math.Float64bits(float64(v))
}

func (a ByteArray) Equal(b Tag) bool {
	v, ok := b.(ByteArray)
	if !ok || len(a) != len(v) {
		return false
	}
	for i := range a {
		if a[i] != v[i] {
			return false
		}
	}
	return true
}

func (a IntArray) Equal(b Tag) bool {
	v, ok := b.(IntArray)
	if !ok || len(a) != len(v) {
		return false
	}
	for i := range a {
		if a[i] != v[i] {
			return false
		}
	}
	return true
}

func (a LongArray) Equal(b Tag) bool {
	v, ok := b.(LongArray)
	if !ok || len(a) != len(v) {
		return false
	}
	for i := range a {
		if a[i] != v[i] {
			return false
		}
	}
	return true
}

// End is the compound terminator / empty-list sentinel. It is not a
// meaningful value in its own right.
type End struct{}

func (End) ID() TagType      { return TagEnd }
func (End) Equal(b Tag) bool { _, ok := b.(End); return ok }

// List is an ordered, homogeneously-typed sequence of unnamed tags.
// An empty list's ElemType is conventionally TagEnd.
type List struct {
	ElemType TagType
	Elements []Tag
}

func (List) ID() TagType { return TagList }

func (a List) Equal(b Tag) bool {
	v, ok := b.(List)
	if !ok || len(a.Elements) != len(v.Elements) {
		return false
	}
	for i := range a.Elements {
		if !a.Elements[i].Equal(v.Elements[i]) {
			return false
		}
	}
	return true
}

// NewList builds a List, inferring ElemType from the first element
// when elemType is TagEnd and elements is non-empty.
func NewList(elemType TagType, elements ...Tag) List {
	if elemType == TagEnd && len(elements) > 0 {
		elemType = elements[0].ID()
	}
	return List{ElemType: elemType, Elements: elements}
}

// entry is one named slot of a Compound, kept in insertion order.
type entry struct {
	name string
	tag  Tag
}

// Compound is an ordered mapping from unique names to tags.
// Insertion order is preserved for canonical SNBT/JSON output; it is
// not significant for Equal.
type Compound struct {
	entries []entry
	index   map[string]int
}

// NewCompound returns an empty Compound ready for Set.
func NewCompound() *Compound {
	return &Compound{index: make(map[string]int)}
}

func (*Compound) ID() TagType { return TagCompound }

// Len returns the number of entries in the compound.
func (c *Compound) Len() int {
	if c == nil {
		return 0
	}
	return len(c.entries)
}

// Get returns the tag stored under name and whether it was present.
func (c *Compound) Get(name string) (Tag, bool) {
	if c == nil {
		return nil, false
	}
	i, ok := c.index[name]
	if !ok {
		return nil, false
	}
	return c.entries[i].tag, true
}

// Set inserts or replaces the tag stored under name, preserving the
// original position on replacement and appending on insertion.
func (c *Compound) Set(name string, tag Tag) {
	if i, ok := c.index[name]; ok {
		c.entries[i].tag = tag
		return
	}
	c.index[name] = len(c.entries)
	c.entries = append(c.entries, entry{name, tag})
}

// Delete removes name from the compound, reporting whether it was
// present. Order of the remaining entries is preserved.
func (c *Compound) Delete(name string) bool {
	i, ok := c.index[name]
	if !ok {
		return false
	}
	c.entries = append(c.entries[:i], c.entries[i+1:]...)
	delete(c.index, name)
	for n, idx := range c.index {
		if idx > i {
			c.index[n] = idx - 1
		}
	}
	return true
}

// DeleteAt removes the entry at position i (used by NBT Path
// delete_all for list/array elements addressed by index; Compound
// itself is addressed by name, but array-backed siblings reuse this
// helper via their own index types).
func (c *Compound) DeleteAt(i int) {
	name := c.entries[i].name
	c.Delete(name)
}

// Names returns the entry names in insertion order.
func (c *Compound) Names() []string {
	names := make([]string, len(c.entries))
	for i, e := range c.entries {
		names[i] = e.name
	}
	return names
}

// Range calls fn for every entry in insertion order, stopping early
// if fn returns false.
func (c *Compound) Range(fn func(name string, tag Tag) bool) {
	if c == nil {
		return
	}
	for _, e := range c.entries {
		if !fn(e.name, e.tag) {
			return
		}
	}
}

func (a *Compound) Equal(b Tag) bool {
	v, ok := b.(*Compound)
	if !ok || a.Len() != v.Len() {
		return false
	}
	for _, e := range a.entries {
		other, ok := v.Get(e.name)
		if !ok || !e.tag.Equal(other) {
			return false
		}
	}
	return true
}

// Clone returns a deep copy of the compound, generalizing the
// teacher's reflect-based DeepCopy into a type switch over the
// twelve concrete variants (nictuku-chunkymonkey and go-mclib-protocol
// both favor an explicit type switch here over reflection).
func (c *Compound) Clone() *Compound {
	clone := NewCompound()
	c.Range(func(name string, tag Tag) bool {
		clone.Set(name, CloneTag(tag))
		return true
	})
	return clone
}

// CloneTag returns a deep copy of any Tag. Scalars are copied by
// value; arrays, lists, and compounds are recursively duplicated so
// that mutating the clone never aliases the source.
func CloneTag(t Tag) Tag {
	switch v := t.(type) {
	case *Compound:
		return v.Clone()
	case List:
		elems := make([]Tag, len(v.Elements))
		for i, e := range v.Elements {
			elems[i] = CloneTag(e)
		}
		return List{ElemType: v.ElemType, Elements: elems}
	case ByteArray:
		out := make(ByteArray, len(v))
		copy(out, v)
		return out
	case IntArray:
		out := make(IntArray, len(v))
		copy(out, v)
		return out
	case LongArray:
		out := make(LongArray, len(v))
		copy(out, v)
		return out
	default:
		// scalars (Byte, Short, Int, Long, Float, Double, String, End)
		// are plain values; returning them copies by value.
		return v
	}
}
