package nbt

import (
	"encoding/binary"
	"math"

	"github.com/vberlier/nbtlib/nbterr"
)

// Write serializes name/root as a complete named tag (the wire
// encoding of a File's root) in order, generalizing the teacher's
// recursive WriteNBTData from its single interface{}-payload NBT
// struct to the typed Tag variants.
func Write(buf []byte, order Endianness, name string, root Tag) ([]byte, error) {
	w := &writer{buf: buf, order: order.byteOrder()}
	if err := w.writeNamedTag(name, root); err != nil {
		return nil, err
	}
	return w.buf, nil
}

type writer struct {
	buf   []byte
	order binary.ByteOrder
}

func (w *writer) writeNamedTag(name string, t Tag) error {
	w.buf = append(w.buf, byte(t.ID()))
	if t.ID() == TagEnd {
		return nil
	}
	w.writeName(name)
	return w.writeValue(t)
}

func (w *writer) writeName(name string) {
	enc := encodeModifiedUTF8(name)
	w.putUint16(uint16(len(enc)))
	w.buf = append(w.buf, enc...)
}

func (w *writer) putUint16(v uint16) {
	var b [2]byte
	w.order.PutUint16(b[:], v)
	w.buf = append(w.buf, b[:]...)
}

func (w *writer) putUint32(v uint32) {
	var b [4]byte
	w.order.PutUint32(b[:], v)
	w.buf = append(w.buf, b[:]...)
}

func (w *writer) putUint64(v uint64) {
	var b [8]byte
	w.order.PutUint64(b[:], v)
	w.buf = append(w.buf, b[:]...)
}

func (w *writer) writeValue(t Tag) error {
	switch v := t.(type) {
	case Byte:
		w.buf = append(w.buf, byte(v))
	case Short:
		w.putUint16(uint16(v))
	case Int:
		w.putUint32(uint32(v))
	case Long:
		w.putUint64(uint64(v))
	case Float:
		w.putUint32(math.Float32bits(float32(v)))
	case Double:
		w.putUint64(math.Float64bits(float64(v)))
	case String:
		enc := encodeModifiedUTF8(string(v))
		w.putUint16(uint16(len(enc)))
		w.buf = append(w.buf, enc...)
	case ByteArray:
		w.putUint32(uint32(len(v)))
		for _, b := range v {
			w.buf = append(w.buf, byte(b))
		}
	case IntArray:
		w.putUint32(uint32(len(v)))
		for _, x := range v {
			w.putUint32(uint32(x))
		}
	case LongArray:
		w.putUint32(uint32(len(v)))
		for _, x := range v {
			w.putUint64(uint64(x))
		}
	case List:
		return w.writeList(v)
	case *Compound:
		return w.writeCompound(v)
	case End:
		// Empty payload; only ever appears as a list element-type
		// sentinel or a compound terminator, both handled by callers.
	default:
		return nbterr.ErrInvalidType
	}
	return nil
}

func (w *writer) writeList(l List) error {
	w.buf = append(w.buf, byte(l.ElemType))
	w.putUint32(uint32(len(l.Elements)))
	for _, e := range l.Elements {
		if err := w.writeValue(e); err != nil {
			return err
		}
	}
	return nil
}

func (w *writer) writeCompound(c *Compound) error {
	var err error
	c.Range(func(name string, tag Tag) bool {
		w.buf = append(w.buf, byte(tag.ID()))
		w.writeName(name)
		if e := w.writeValue(tag); e != nil {
			err = e
			return false
		}
		return true
	})
	if err != nil {
		return err
	}
	w.buf = append(w.buf, byte(TagEnd))
	return nil
}
