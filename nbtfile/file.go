// Package nbtfile implements the File container: a named root
// compound tag, optionally gzip-framed, read from or written to a
// byte stream. Framing detection and gzip I/O are grounded in
// tmpim-anvil's nbt package, which wires the same
// github.com/klauspost/compress/gzip dependency for its NewGzipReader
// and sniffs the 0x1F 0x8B magic before constructing it.
package nbtfile

import (
	"bytes"
	"io"

	"github.com/klauspost/compress/gzip"

	"github.com/vberlier/nbtlib/nbt"
	"github.com/vberlier/nbtlib/nbterr"
)

const gzipMagic0, gzipMagic1 = 0x1F, 0x8B

// File is the in-memory representation of an NBT file: a named root
// tag plus the framing metadata needed to write it back out the same
// way it was read.
type File struct {
	Root       nbt.Tag
	OuterName  string
	Compressed bool
	Order      nbt.Endianness
}

// Load reads a File from r, auto-detecting gzip framing by magic
// bytes and decoding with the given byte order. maxDepth bounds the
// scanner's nesting budget (see nbt.Scan).
func Load(r io.Reader, order nbt.Endianness, maxDepth int) (*File, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	compressed := len(data) >= 2 && data[0] == gzipMagic0 && data[1] == gzipMagic1
	raw := data
	if compressed {
		gr, err := gzip.NewReader(bytes.NewReader(data))
		if err != nil {
			return nil, err
		}
		defer gr.Close()
		raw, err = io.ReadAll(gr)
		if err != nil {
			return nil, err
		}
	}

	idx, err := nbt.Scan(raw, order, maxDepth)
	if err != nil {
		return nil, err
	}
	name, root, err := nbt.Materialize(idx)
	if err != nil {
		return nil, err
	}
	if _, ok := root.(*nbt.Compound); !ok {
		return nil, nbterr.ErrNotCompound
	}

	return &File{
		Root:       root,
		OuterName:  name,
		Compressed: compressed,
		Order:      order,
	}, nil
}

// LoadAutoDetect tries big-endian first, then little-endian, useful
// when the caller does not know in advance which byte order produced
// the file (e.g. Bedrock Edition's little-endian variant).
func LoadAutoDetect(r io.Reader, maxDepth int) (*File, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	if f, err := Load(bytes.NewReader(data), nbt.BigEndian, maxDepth); err == nil {
		return f, nil
	}
	return Load(bytes.NewReader(data), nbt.LittleEndian, maxDepth)
}

// Save writes f to w, gzip-framing the encoded bytes when f.Compressed
// is set.
func Save(w io.Writer, f *File) error {
	if _, ok := f.Root.(*nbt.Compound); !ok {
		return nbterr.ErrNotCompound
	}

	raw, err := nbt.Write(nil, f.Order, f.OuterName, f.Root)
	if err != nil {
		return err
	}

	if !f.Compressed {
		_, err := w.Write(raw)
		return err
	}

	gw := gzip.NewWriter(w)
	if _, err := gw.Write(raw); err != nil {
		gw.Close()
		return err
	}
	return gw.Close()
}

// Merge overlays patch's root compound onto base's, in place, and
// returns the number of top-level keys that were added or replaced.
// Keys present in patch recursively merge when both sides hold a
// Compound at that key; every other value (including Lists and
// Arrays) is replaced wholesale. Keys present only in base are left
// untouched.
func Merge(base, patch *File) int {
	baseRoot, ok1 := base.Root.(*nbt.Compound)
	patchRoot, ok2 := patch.Root.(*nbt.Compound)
	if !ok1 || !ok2 {
		return 0
	}
	n := 0
	patchRoot.Range(func(name string, tag nbt.Tag) bool {
		mergeEntry(baseRoot, name, tag)
		n++
		return true
	})
	return n
}

func mergeEntry(base *nbt.Compound, name string, patchTag nbt.Tag) {
	patchCompound, ok := patchTag.(*nbt.Compound)
	if !ok {
		base.Set(name, nbt.CloneTag(patchTag))
		return
	}
	existing, ok := base.Get(name)
	baseCompound, ok := existing.(*nbt.Compound)
	if !ok {
		base.Set(name, nbt.CloneTag(patchTag))
		return
	}
	patchCompound.Range(func(key string, tag nbt.Tag) bool {
		mergeEntry(baseCompound, key, tag)
		return true
	})
}
