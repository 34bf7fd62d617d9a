package nbtfile

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vberlier/nbtlib/nbt"
)

func sampleFile(compressed bool) *File {
	root := nbt.NewCompound()
	root.Set("version", nbt.Int(7))
	return &File{Root: root, OuterName: "", Compressed: compressed, Order: nbt.BigEndian}
}

func TestSaveLoadRoundTripUncompressed(t *testing.T) {
	f := sampleFile(false)
	var buf bytes.Buffer
	require.NoError(t, Save(&buf, f))

	got, err := Load(&buf, nbt.BigEndian, 512)
	require.NoError(t, err)
	assert.True(t, f.Root.Equal(got.Root))
	assert.False(t, got.Compressed)
}

func TestSaveLoadRoundTripGzip(t *testing.T) {
	f := sampleFile(true)
	var buf bytes.Buffer
	require.NoError(t, Save(&buf, f))

	assert.Equal(t, byte(gzipMagic0), buf.Bytes()[0])
	assert.Equal(t, byte(gzipMagic1), buf.Bytes()[1])

	got, err := Load(&buf, nbt.BigEndian, 512)
	require.NoError(t, err)
	assert.True(t, f.Root.Equal(got.Root))
	assert.True(t, got.Compressed)
}

func TestMergeOverlaysTopLevelKeys(t *testing.T) {
	base := sampleFile(false)
	patchRoot := nbt.NewCompound()
	patchRoot.Set("version", nbt.Int(8))
	patch := &File{Root: patchRoot, Order: nbt.BigEndian}

	n := Merge(base, patch)
	assert.Equal(t, 1, n)

	v, ok := base.Root.(*nbt.Compound).Get("version")
	require.True(t, ok)
	assert.Equal(t, nbt.Int(8), v)
}

func TestMergeRecursesIntoNestedCompounds(t *testing.T) {
	baseRoot := nbt.NewCompound()
	basePlayer := nbt.NewCompound()
	basePlayer.Set("health", nbt.Short(20))
	basePlayer.Set("name", nbt.String("Steve"))
	baseRoot.Set("player", basePlayer)
	base := &File{Root: baseRoot, Order: nbt.BigEndian}

	patchRoot := nbt.NewCompound()
	patchPlayer := nbt.NewCompound()
	patchPlayer.Set("health", nbt.Short(10))
	patchRoot.Set("player", patchPlayer)
	patch := &File{Root: patchRoot, Order: nbt.BigEndian}

	n := Merge(base, patch)
	assert.Equal(t, 1, n)

	player, ok := baseRoot.Get("player")
	require.True(t, ok)
	pc := player.(*nbt.Compound)

	health, ok := pc.Get("health")
	require.True(t, ok)
	assert.Equal(t, nbt.Short(10), health)

	name, ok := pc.Get("name")
	require.True(t, ok)
	assert.Equal(t, nbt.String("Steve"), name, "keys only present in the base side survive the merge")
}

func TestMergeReplacesListWholesale(t *testing.T) {
	baseRoot := nbt.NewCompound()
	baseRoot.Set("items", nbt.NewList(nbt.TagInt, nbt.Int(1), nbt.Int(2), nbt.Int(3)))
	base := &File{Root: baseRoot, Order: nbt.BigEndian}

	patchRoot := nbt.NewCompound()
	patchRoot.Set("items", nbt.NewList(nbt.TagInt, nbt.Int(9)))
	patch := &File{Root: patchRoot, Order: nbt.BigEndian}

	Merge(base, patch)

	items, ok := baseRoot.Get("items")
	require.True(t, ok)
	assert.Equal(t, []nbt.Tag{nbt.Int(9)}, items.(nbt.List).Elements)
}
