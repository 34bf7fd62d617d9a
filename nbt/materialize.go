package nbt

import "github.com/vberlier/nbtlib/nbterr"

// Materialize walks idx from its root descriptor (index 0) and builds
// an owned Tag tree. The returned name is the root compound's name,
// which the File container stores separately from the value (spec's
// `outer_name`).
func Materialize(idx *Index) (name string, root Tag, err error) {
	if len(idx.Tags) == 0 {
		return "", nil, nbterr.ErrUnexpectedEOF
	}
	m := &materializer{idx: idx}
	v, next, err := m.build(0)
	if err != nil {
		return "", nil, err
	}
	_ = next
	return idx.Name(0), v, nil
}

// MaterializeAt builds only the subtree rooted at descriptor i,
// letting a caller combine Scan with NBT Path navigation to
// materialize one branch of a large file without paying for the rest.
func MaterializeAt(idx *Index, i int) (Tag, error) {
	if i < 0 || i >= len(idx.Tags) {
		return nil, nbterr.ErrUnexpectedEOF
	}
	m := &materializer{idx: idx}
	v, _, err := m.build(i)
	return v, err
}

type materializer struct {
	idx *Index
}

// build materializes the descriptor at i and returns its value along
// with the index of the descriptor immediately following its entire
// subtree (i.e. its next sibling), so callers can walk a container's
// children without recomputing sibling offsets from Children counts.
func (m *materializer) build(i int) (Tag, int, error) {
	d := m.idx.Tags[i]

	switch d.Type {
	case TagEnd:
		return End{}, i + 1, nil

	case TagByte:
		return Byte(int8(m.idx.Buf[d.PayloadOffset])), i + 1, nil

	case TagShort:
		return Short(int16(m.idx.Order.Uint16(m.idx.Buf[d.PayloadOffset:]))), i + 1, nil

	case TagInt:
		return Int(int32(m.idx.Order.Uint32(m.idx.Buf[d.PayloadOffset:]))), i + 1, nil

	case TagLong:
		return Long(int64(m.idx.Order.Uint64(m.idx.Buf[d.PayloadOffset:]))), i + 1, nil

	case TagFloat:
		bits := m.idx.Order.Uint32(m.idx.Buf[d.PayloadOffset:])
		return Float(float32FromBits(bits)), i + 1, nil

	case TagDouble:
		bits := m.idx.Order.Uint64(m.idx.Buf[d.PayloadOffset:])
		return Double(float64FromBits(bits)), i + 1, nil

	case TagString:
		s := decodeModifiedUTF8(m.idx.Buf[d.PayloadOffset : int(d.PayloadOffset)+int(d.Children)])
		return String(s), i + 1, nil

	case TagByteArray:
		out := make(ByteArray, d.Children)
		for j := range out {
			out[j] = int8(m.idx.Buf[int(d.PayloadOffset)+j])
		}
		return out, i + 1, nil

	case TagIntArray:
		out := make(IntArray, d.Children)
		for j := range out {
			off := int(d.PayloadOffset) + j*4
			out[j] = int32(m.idx.Order.Uint32(m.idx.Buf[off:]))
		}
		return out, i + 1, nil

	case TagLongArray:
		out := make(LongArray, d.Children)
		for j := range out {
			off := int(d.PayloadOffset) + j*8
			out[j] = int64(m.idx.Order.Uint64(m.idx.Buf[off:]))
		}
		return out, i + 1, nil

	case TagList:
		return m.buildList(i, d)

	case TagCompound:
		return m.buildCompound(i, d)

	default:
		return nil, 0, nbterr.ErrInvalidType
	}
}

func (m *materializer) buildList(i int, d TagDesc) (Tag, int, error) {
	elemType := m.idx.listElemType(d)

	if elemType.numeric() || elemType == TagEnd {
		// numeric lists and the empty list were scanned without
		// per-element descriptors: decode straight from the buffer.
		n := int(d.Children)
		elems := make([]Tag, 0, n)
		off := d.PayloadOffset
		size := scalarSize[elemType]
		for j := 0; j < n; j++ {
			v, err := m.decodeScalarAt(elemType, off)
			if err != nil {
				return nil, 0, err
			}
			elems = append(elems, v)
			off += uint32(size)
		}
		return List{ElemType: elemType, Elements: elems}, i + 1, nil
	}

	// Non-numeric elements (String, List, Compound, the three array
	// types) were each given their own descriptor; Children counts
	// descendant descriptors, so walk forward by sibling until
	// consumed.
	n := int(d.Children)
	end := i + 1 + n
	elems := make([]Tag, 0)
	next := i + 1
	for next < end {
		v, after, err := m.build(next)
		if err != nil {
			return nil, 0, err
		}
		elems = append(elems, v)
		next = after
	}
	return List{ElemType: elemType, Elements: elems}, end, nil
}

func (m *materializer) buildCompound(i int, d TagDesc) (Tag, int, error) {
	c := NewCompound()
	end := i + 1 + int(d.Children)
	next := i + 1
	for next < end {
		name := m.idx.Name(next)
		v, after, err := m.build(next)
		if err != nil {
			return nil, 0, err
		}
		c.Set(name, v)
		next = after
	}
	return c, end, nil
}

func (m *materializer) decodeScalarAt(t TagType, off uint32) (Tag, error) {
	switch t {
	case TagEnd:
		return End{}, nil
	case TagByte:
		return Byte(int8(m.idx.Buf[off])), nil
	case TagShort:
		return Short(int16(m.idx.Order.Uint16(m.idx.Buf[off:]))), nil
	case TagInt:
		return Int(int32(m.idx.Order.Uint32(m.idx.Buf[off:]))), nil
	case TagLong:
		return Long(int64(m.idx.Order.Uint64(m.idx.Buf[off:]))), nil
	case TagFloat:
		return Float(float32FromBits(m.idx.Order.Uint32(m.idx.Buf[off:]))), nil
	case TagDouble:
		return Double(float64FromBits(m.idx.Order.Uint64(m.idx.Buf[off:]))), nil
	default:
		return nil, nbterr.ErrInvalidType
	}
}
