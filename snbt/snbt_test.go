package snbt

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vberlier/nbtlib/nbt"
)

func TestParseScalars(t *testing.T) {
	cases := map[string]nbt.Tag{
		"1b":     nbt.Byte(1),
		"-5s":    nbt.Short(-5),
		"42":     nbt.Int(42),
		"42L":    nbt.Long(42),
		"1.5f":   nbt.Float(1.5),
		"1.5":    nbt.Double(1.5),
		"\"hi\"": nbt.String("hi"),
		"bare":   nbt.String("bare"),
		"true":   nbt.Byte(1),
	}
	for input, want := range cases {
		got, err := Parse(input)
		require.NoError(t, err, input)
		assert.True(t, want.Equal(got), "input %q: want %v got %v", input, want, got)
	}
}

func TestParseCompound(t *testing.T) {
	got, err := Parse(`{name: "Steve", health: 20s, pos: [1.0d, 64.0d, -4.0d]}`)
	require.NoError(t, err)
	c, ok := got.(*nbt.Compound)
	require.True(t, ok)

	name, ok := c.Get("name")
	require.True(t, ok)
	assert.Equal(t, nbt.String("Steve"), name)

	health, ok := c.Get("health")
	require.True(t, ok)
	assert.Equal(t, nbt.Short(20), health)
}

func TestParseByteArray(t *testing.T) {
	got, err := Parse("[B; 1b, 2b, 3b]")
	require.NoError(t, err)
	assert.Equal(t, nbt.ByteArray{1, 2, 3}, got)
}

func TestParseByteArrayAcceptsUnsuffixedInts(t *testing.T) {
	got, err := Parse("[B; 1, 2, 3]")
	require.NoError(t, err)
	assert.Equal(t, nbt.ByteArray{1, 2, 3}, got)
}

func TestParseByteArrayRejectsShortSuffixedElement(t *testing.T) {
	_, err := Parse("[B; 1s]")
	assert.Error(t, err)
}

func TestParseEmptyArray(t *testing.T) {
	got, err := Parse("[I;]")
	require.NoError(t, err)
	assert.Equal(t, nbt.IntArray(nil), got)
}

func TestParseHeterogeneousListRejected(t *testing.T) {
	_, err := Parse("[1, \"two\"]")
	assert.Error(t, err)
}

func TestSerializeRoundTrip(t *testing.T) {
	c := nbt.NewCompound()
	c.Set("a", nbt.Int(1))
	c.Set("b", nbt.NewList(nbt.TagString, nbt.String("x"), nbt.String("y")))

	text := Serialize(c, Default)
	got, err := Parse(text)
	require.NoError(t, err)
	assert.True(t, c.Equal(got))
}

func TestSerializeQuotesWithApostropheWhenStringContainsDoubleQuote(t *testing.T) {
	text := Serialize(nbt.String(`say "hi"`), Compact)
	assert.Equal(t, `'say "hi"'`, text)
}

func TestSerializeEscapesWhenStringContainsBothQuoteStyles(t *testing.T) {
	text := Serialize(nbt.String(`it's "ok"`), Compact)
	assert.Equal(t, `"it's \"ok\""`, text)
}

func TestSerializePrettyPutsArrayElementsOnOwnLines(t *testing.T) {
	text := Serialize(nbt.IntArray{1, 2, 3}, Pretty)
	assert.Equal(t, "[I;\n  1,\n  2,\n  3\n]", text)
}

func TestSerializeCompactHasNoSpaces(t *testing.T) {
	c := nbt.NewCompound()
	c.Set("a", nbt.Int(1))
	c.Set("b", nbt.Int(2))
	text := Serialize(c, Compact)
	assert.NotContains(t, text, " ")
}
