package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vberlier/nbtlib/nbt"
	"github.com/vberlier/nbtlib/nbterr"
	"github.com/vberlier/nbtlib/nbtfile"
)

func TestExitCodeForKnownErrors(t *testing.T) {
	assert.Equal(t, 2, exitCodeFor(nbterr.ErrUnexpectedEOF))
	assert.Equal(t, 3, exitCodeFor(nbterr.ErrPathSyntax))
	assert.Equal(t, 4, exitCodeFor(nbterr.ErrNotCompound))
	assert.Equal(t, 1, exitCodeFor(assert.AnError))
}

func TestRunPrintsDefaultSNBT(t *testing.T) {
	dir := t.TempDir()
	binPath := filepath.Join(dir, "data.nbt")

	root := nbt.NewCompound()
	root.Set("greeting", nbt.String("hello"))
	f, err := os.Create(binPath)
	require.NoError(t, err)
	require.NoError(t, nbtfile.Save(f, &nbtfile.File{Root: root, OuterName: "", Order: nbt.BigEndian}))
	require.NoError(t, f.Close())

	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"-r", binPath})

	require.NoError(t, cmd.Execute())
	assert.Contains(t, out.String(), "greeting")
}

func TestRunMergeIntoExistingFile(t *testing.T) {
	dir := t.TempDir()
	targetPath := filepath.Join(dir, "target.nbt")
	patchPath := filepath.Join(dir, "patch.snbt")

	target := nbt.NewCompound()
	target.Set("health", nbt.Short(20))
	target.Set("name", nbt.String("Steve"))
	f, err := os.Create(targetPath)
	require.NoError(t, err)
	require.NoError(t, nbtfile.Save(f, &nbtfile.File{Root: target, OuterName: "", Order: nbt.BigEndian}))
	require.NoError(t, f.Close())

	require.NoError(t, os.WriteFile(patchPath, []byte(`{health: 10s}`), 0o644))

	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"-s", patchPath, "-m", targetPath})
	require.NoError(t, cmd.Execute())

	merged, err := os.Open(targetPath)
	require.NoError(t, err)
	defer merged.Close()
	result, err := nbtfile.Load(merged, nbt.BigEndian, 512)
	require.NoError(t, err)

	health, ok := result.Root.(*nbt.Compound).Get("health")
	require.True(t, ok)
	assert.Equal(t, nbt.Short(10), health)

	name, ok := result.Root.(*nbt.Compound).Get("name")
	require.True(t, ok)
	assert.Equal(t, nbt.String("Steve"), name, "keys the patch doesn't mention survive the merge")
}

func TestRunWithFindPath(t *testing.T) {
	dir := t.TempDir()
	binPath := filepath.Join(dir, "data.nbt")

	root := nbt.NewCompound()
	root.Set("greeting", nbt.String("hello"))
	f, err := os.Create(binPath)
	require.NoError(t, err)
	require.NoError(t, nbtfile.Save(f, &nbtfile.File{Root: root, OuterName: "", Order: nbt.BigEndian}))
	require.NoError(t, f.Close())

	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"-r", binPath, "--find", "greeting"})

	require.NoError(t, cmd.Execute())
	assert.Contains(t, out.String(), "hello")
}
