package nbtpath

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vberlier/nbtlib/nbt"
)

func sampleRoot() nbt.Tag {
	root := nbt.NewCompound()
	item1 := nbt.NewCompound()
	item1.Set("id", nbt.String("minecraft:stick"))
	item1.Set("Slot", nbt.Byte(0))
	item2 := nbt.NewCompound()
	item2.Set("id", nbt.String("minecraft:diamond"))
	item2.Set("Slot", nbt.Byte(1))
	root.Set("Items", nbt.NewList(nbt.TagCompound, item1, item2))
	root.Set("Health", nbt.Short(20))
	return root
}

func TestGetAllName(t *testing.T) {
	var root nbt.Tag = sampleRoot()
	path, err := Parse("Health")
	require.NoError(t, err)
	got := GetAll(&root, path)
	require.Len(t, got, 1)
	assert.Equal(t, nbt.Short(20), got[0])
}

func TestGetAllIndexAndField(t *testing.T) {
	var root nbt.Tag = sampleRoot()
	path, err := Parse("Items[0].id")
	require.NoError(t, err)
	got := GetAll(&root, path)
	require.Len(t, got, 1)
	assert.Equal(t, nbt.String("minecraft:stick"), got[0])
}

func TestGetAllWithFilter(t *testing.T) {
	var root nbt.Tag = sampleRoot()
	path, err := Parse(`Items[{id:"minecraft:diamond"}].Slot`)
	require.NoError(t, err)
	got := GetAll(&root, path)
	require.Len(t, got, 1)
	assert.Equal(t, nbt.Byte(1), got[0])
}

func TestSetAllAllElements(t *testing.T) {
	var root nbt.Tag = sampleRoot()
	path, err := Parse("Items[].Slot")
	require.NoError(t, err)
	n := SetAll(&root, path, nbt.Byte(9))
	assert.Equal(t, 2, n)

	got := GetAll(&root, path)
	for _, v := range got {
		assert.Equal(t, nbt.Byte(9), v)
	}
}

func TestDeleteAllByFilter(t *testing.T) {
	var root nbt.Tag = sampleRoot()
	path, err := Parse(`Items[{id:"minecraft:stick"}]`)
	require.NoError(t, err)
	n := DeleteAll(&root, path)
	assert.Equal(t, 1, n)

	itemsPath, err := Parse("Items")
	require.NoError(t, err)
	items := GetAll(&root, itemsPath)
	require.Len(t, items, 1)
	assert.Len(t, items[0].(nbt.List).Elements, 1)
}

func TestFindReturnsFirstMatch(t *testing.T) {
	var root nbt.Tag = sampleRoot()
	path, err := Parse("Items[].id")
	require.NoError(t, err)
	got, ok := Find(&root, path)
	require.True(t, ok)
	assert.Equal(t, nbt.String("minecraft:stick"), got)
}

func TestPathStringRoundTrip(t *testing.T) {
	path, err := Parse("Items[0].id")
	require.NoError(t, err)
	assert.Equal(t, "Items[0].id", path.String())
}
