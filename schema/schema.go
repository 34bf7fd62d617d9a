// Package schema validates and coerces a Compound's entries against a
// declared key -> expected tag type mapping, with an optional strict
// mode that rejects keys the schema does not know about.
package schema

import (
	"github.com/vberlier/nbtlib/nbt"
	"github.com/vberlier/nbtlib/nbterr"
)

// Schema declares the expected tag type for each known compound key.
// Fields not listed are passed through unchanged unless Strict is set.
type Schema struct {
	Fields map[string]nbt.TagType
	Strict bool
}

// New returns a Schema with the given field -> type declarations and
// Strict set to false.
func New(fields map[string]nbt.TagType) *Schema {
	return &Schema{Fields: fields}
}

// Validate reports nbterr.ErrUnknownKey (wrapped with the offending
// key's name via errors-compatible formatting at the call site) if
// Strict is set and c has a key absent from the schema, or
// nbterr.ErrInvalidType if a known key's tag does not match and
// cannot be coerced.
func (s *Schema) Validate(c *nbt.Compound) error {
	_, err := s.apply(c, false)
	return err
}

// Coerce returns a new Compound with every known-but-mismatched-type
// field converted to its schema type where a lossless numeric
// conversion exists (widening integer types, int-to-float), leaving
// already-matching and unknown (non-strict) fields untouched.
func (s *Schema) Coerce(c *nbt.Compound) (*nbt.Compound, error) {
	return s.apply(c, true)
}

func (s *Schema) apply(c *nbt.Compound, coerce bool) (*nbt.Compound, error) {
	out := nbt.NewCompound()
	var firstErr error

	c.Range(func(name string, tag nbt.Tag) bool {
		want, known := s.Fields[name]
		if !known {
			if s.Strict {
				firstErr = nbterr.ErrUnknownKey
				return false
			}
			out.Set(name, tag)
			return true
		}

		if tag.ID() == want {
			out.Set(name, tag)
			return true
		}

		if !coerce {
			firstErr = nbterr.ErrInvalidType
			return false
		}

		converted, ok := coerceTag(tag, want)
		if !ok {
			firstErr = nbterr.ErrInvalidType
			return false
		}
		out.Set(name, converted)
		return true
	})

	if firstErr != nil {
		return nil, firstErr
	}

	return out, nil
}

// coerceTag converts t to want using the target tag type's
// single-argument constructor semantics: narrowing an integer scalar
// masks it to the target width exactly the way Go's own int8(x)/
// int16(x)/int32(x) conversions do (e.g. an Int coerced to Byte keeps
// only its low 8 bits, sign-extended), rather than rejecting values
// outside the narrower range. Cross-family conversions (e.g. String
// to Int) are still rejected: there is no numeric value to mask.
func coerceTag(t nbt.Tag, want nbt.TagType) (nbt.Tag, bool) {
	asInt, ok := intValue(t)
	if !ok {
		return nil, false
	}

	switch want {
	case nbt.TagByte:
		return nbt.Byte(int8(asInt)), true
	case nbt.TagShort:
		return nbt.Short(int16(asInt)), true
	case nbt.TagInt:
		return nbt.Int(int32(asInt)), true
	case nbt.TagLong:
		return nbt.Long(asInt), true
	case nbt.TagFloat:
		return nbt.Float(asInt), true
	case nbt.TagDouble:
		return nbt.Double(asInt), true
	default:
		return nil, false
	}
}

func intValue(t nbt.Tag) (int64, bool) {
	switch v := t.(type) {
	case nbt.Byte:
		return int64(v), true
	case nbt.Short:
		return int64(v), true
	case nbt.Int:
		return int64(v), true
	case nbt.Long:
		return int64(v), true
	default:
		return 0, false
	}
}
