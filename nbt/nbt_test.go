package nbt

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vberlier/nbtlib/nbterr"
)

func buildSample(t *testing.T) (string, Tag) {
	t.Helper()
	root := NewCompound()
	root.Set("name", String("bananrama"))
	root.Set("health", Short(20))
	root.Set("pos", NewList(TagDouble, Double(1.5), Double(64), Double(-12.25)))
	inv := NewCompound()
	inv.Set("slot", Byte(0))
	root.Set("inventory", NewList(TagCompound, inv))
	return "root", root
}

func TestScanMaterializeRoundTrip(t *testing.T) {
	name, root := buildSample(t)

	buf, err := Write(nil, BigEndian, name, root)
	require.NoError(t, err)

	idx, err := Scan(buf, BigEndian, 512)
	require.NoError(t, err)

	gotName, gotRoot, err := Materialize(idx)
	require.NoError(t, err)
	assert.Equal(t, name, gotName)
	assert.True(t, root.Equal(gotRoot), "materialized tree should equal the original")
}

func TestIndexNameRecoversKeysPastVariableLengthPayloads(t *testing.T) {
	name, root := buildSample(t)

	buf, err := Write(nil, BigEndian, name, root)
	require.NoError(t, err)

	idx, err := Scan(buf, BigEndian, 512)
	require.NoError(t, err)

	var names []string
	for i := range idx.Tags {
		names = append(names, idx.Name(i))
	}
	assert.Contains(t, names, "name")
	assert.Contains(t, names, "pos")
	assert.Contains(t, names, "inventory")
	assert.Contains(t, names, "slot")
}

func TestScanTruncatedBufferReturnsUnexpectedEOF(t *testing.T) {
	_, root := buildSample(t)
	buf, err := Write(nil, BigEndian, "root", root)
	require.NoError(t, err)

	_, err = Scan(buf[:len(buf)-3], BigEndian, 512)
	assert.ErrorIs(t, err, nbterr.ErrUnexpectedEOF)
}

func TestScanDepthExceeded(t *testing.T) {
	c := NewCompound()
	inner := c
	for i := 0; i < 10; i++ {
		next := NewCompound()
		inner.Set("child", next)
		inner = next
	}
	buf, err := Write(nil, BigEndian, "root", c)
	require.NoError(t, err)

	_, err = Scan(buf, BigEndian, 4)
	require.Error(t, err)
}

func TestListEqualityIsOrderSensitive(t *testing.T) {
	a := NewList(TagInt, Int(1), Int(2))
	b := NewList(TagInt, Int(2), Int(1))
	assert.False(t, a.Equal(b))
}

func TestCompoundEqualityIsOrderInsensitive(t *testing.T) {
	a := NewCompound()
	a.Set("x", Int(1))
	a.Set("y", Int(2))

	b := NewCompound()
	b.Set("y", Int(2))
	b.Set("x", Int(1))

	assert.True(t, a.Equal(b))
}

func TestModifiedUTF8RoundTrip(t *testing.T) {
	s := "café \U0001F600  "
	enc := encodeModifiedUTF8(s)
	assert.NotContains(t, string(enc), "\x00")
	assert.Equal(t, s, decodeModifiedUTF8(enc))
}

func TestJSONLongPrecision(t *testing.T) {
	big := Long(9007199254740993) // 2^53 + 1, not exactly representable as float64
	data, err := MarshalJSON(big)
	require.NoError(t, err)

	back, err := DecodeJSON(data)
	require.NoError(t, err)
	assert.True(t, big.Equal(back))
}
