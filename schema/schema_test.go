package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vberlier/nbtlib/nbt"
	"github.com/vberlier/nbtlib/nbterr"
)

func TestValidatePassesMatchingTypes(t *testing.T) {
	c := nbt.NewCompound()
	c.Set("health", nbt.Short(20))
	s := New(map[string]nbt.TagType{"health": nbt.TagShort})
	assert.NoError(t, s.Validate(c))
}

func TestValidateRejectsMismatchedType(t *testing.T) {
	c := nbt.NewCompound()
	c.Set("health", nbt.Int(20))
	s := New(map[string]nbt.TagType{"health": nbt.TagShort})
	assert.ErrorIs(t, s.Validate(c), nbterr.ErrInvalidType)
}

func TestStrictRejectsUnknownKey(t *testing.T) {
	c := nbt.NewCompound()
	c.Set("health", nbt.Short(20))
	c.Set("extra", nbt.Byte(1))
	s := &Schema{Fields: map[string]nbt.TagType{"health": nbt.TagShort}, Strict: true}
	assert.ErrorIs(t, s.Validate(c), nbterr.ErrUnknownKey)
}

func TestCoerceWidensIntegerType(t *testing.T) {
	c := nbt.NewCompound()
	c.Set("health", nbt.Byte(20))
	s := New(map[string]nbt.TagType{"health": nbt.TagShort})

	out, err := s.Coerce(c)
	require.NoError(t, err)
	v, ok := out.Get("health")
	require.True(t, ok)
	assert.Equal(t, nbt.Short(20), v)
}

func TestCoerceNarrowingMasksToTargetWidth(t *testing.T) {
	c := nbt.NewCompound()
	c.Set("health", nbt.Int(99999))
	s := New(map[string]nbt.TagType{"health": nbt.TagByte})

	out, err := s.Coerce(c)
	require.NoError(t, err)
	v, ok := out.Get("health")
	require.True(t, ok)
	assert.Equal(t, nbt.Byte(int8(int32(99999))), v)
}

func TestCoerceRejectsCrossFamilyConversion(t *testing.T) {
	c := nbt.NewCompound()
	c.Set("name", nbt.String("steve"))
	s := New(map[string]nbt.TagType{"name": nbt.TagInt})

	_, err := s.Coerce(c)
	assert.ErrorIs(t, err, nbterr.ErrInvalidType)
}
