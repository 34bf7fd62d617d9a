package nbt

import (
	"encoding/binary"

	"github.com/vberlier/nbtlib/nbterr"
)

// TagDesc is one entry of a Scanner's flat, pre-order index. It
// describes a tag without materializing its value: scalars point at
// their payload bytes, containers record how many further
// descriptors (Compound, non-numeric List) or elements (numeric List,
// String, the three array types) follow.
//
// The next sibling of the tag at index i lives at i + Children + 1
// for Compound and non-numeric List; for every other type Children
// counts elements/code-units rather than descriptors, and the next
// sibling is simply i + 1.
type TagDesc struct {
	PayloadOffset uint32
	NameOffset    uint32
	Children      uint32
	NameLength    uint16
	Type          TagType
}

// Endianness selects the byte order a Scanner decodes multibyte
// fields with, matching spec's '<'/'>' convention.
type Endianness byte

const (
	BigEndian    Endianness = '>'
	LittleEndian Endianness = '<'
)

func (e Endianness) byteOrder() binary.ByteOrder {
	if e == LittleEndian {
		return binary.LittleEndian
	}
	return binary.BigEndian
}

// hostLittleEndian decides the host's native byte order the way
// spec's scanner does: encode 0x3E3C with the platform's native
// encoder and look at the first byte. Go 1.21's binary.NativeEndian
// makes this a direct translation instead of the unsafe pointer cast
// the literal description implies.
func hostLittleEndian() bool {
	var buf [2]byte
	binary.NativeEndian.PutUint16(buf[:], 0x3E3C)
	return buf[0] == 0x3C
}

// native reports whether decoding with order requires no byte
// swapping on this host. Go's encoding/binary.ByteOrder already
// performs the swap transparently when needed, so this flag is
// carried purely for API fidelity with the specification (callers
// that want to know whether a re-scan in the opposite order is likely
// to succeed on an unmarked file can consult it) and is not consulted
// by the decode path itself.
func native(order Endianness) bool {
	if order == LittleEndian {
		return hostLittleEndian()
	}
	return !hostLittleEndian()
}

// Index is the result of a successful Scan: a flat, pre-order vector
// of TagDesc entries that borrow payload pointers into buf. An Index
// must not outlive the buffer it was built from.
type Index struct {
	Buf    []byte
	Order  binary.ByteOrder
	Native bool
	Tags   []TagDesc
}

// opKind distinguishes the four kinds of frame the scanner's explicit
// stack can hold, generalizing spec's raw-word encoding (tag-type ids
// interleaved with three marker values) into a small tagged struct —
// the idiomatic Go translation of the same stack machine.
type opKind int

const (
	opDecode opKind = iota
	opSetName
	opExtendList
	opExtendCompound
)

type opFrame struct {
	kind      opKind
	tagType   TagType // opDecode: the type to decode next
	skipName  bool    // opDecode: true for list elements (no name field)
	childType TagType // opExtendList: element type of the list
	remaining int32   // opExtendList: elements left to decode
	parent    int      // opExtendList / opExtendCompound: index of the container's TagDesc
}

// Scan decodes buf into a flat pre-order index without materializing
// any tag value. maxDepth bounds the explicit operation stack used in
// place of recursion: nesting deeper than maxDepth fails with
// ErrDepthExceeded instead of risking a call-stack overflow on
// adversarial input.
func Scan(buf []byte, order Endianness, maxDepth int) (*Index, error) {
	s := &scanner{
		buf:      buf,
		order:    order.byteOrder(),
		tags:     make([]TagDesc, 0, 32),
		maxDepth: maxDepth,
	}
	s.stack = append(s.stack, opFrame{kind: opSetName})

	if err := s.run(); err != nil {
		return nil, err
	}

	return &Index{
		Buf:    buf,
		Order:  s.order,
		Native: native(order),
		Tags:   s.tags,
	}, nil
}

type scanner struct {
	buf      []byte
	order    binary.ByteOrder
	pos      int
	tags     []TagDesc
	stack    []opFrame
	maxDepth int

	// pendingNameLength and pendingNameOffset describe the name read by
	// the most recent opSetName frame, consumed by the opDecode frame
	// it pushes. List elements leave both zero since they never read a
	// name.
	pendingNameLength uint16
	pendingNameOffset uint32
}

func (s *scanner) push(f opFrame) error {
	if len(s.stack) >= s.maxDepth {
		return nbterr.ErrDepthExceeded
	}
	s.stack = append(s.stack, f)
	return nil
}

func (s *scanner) run() error {
	for len(s.stack) > 0 {
		f := s.stack[len(s.stack)-1]
		s.stack = s.stack[:len(s.stack)-1]

		var err error
		switch f.kind {
		case opSetName:
			err = s.doSetName()
		case opDecode:
			err = s.doDecode(f.tagType, f.skipName)
		case opExtendList:
			err = s.doExtendList(f)
		case opExtendCompound:
			err = s.doExtendCompound(f)
		}
		if err != nil {
			// the scanner never partially emits: release the
			// accumulated index on any failure.
			s.tags = nil
			return err
		}
	}
	return nil
}

func (s *scanner) need(n int) error {
	if n < 0 || s.pos+n > len(s.buf) {
		return nbterr.ErrUnexpectedEOF
	}
	return nil
}

func (s *scanner) readByte() (byte, error) {
	if err := s.need(1); err != nil {
		return 0, err
	}
	b := s.buf[s.pos]
	s.pos++
	return b, nil
}

func (s *scanner) readUint16() (uint16, error) {
	if err := s.need(2); err != nil {
		return 0, err
	}
	v := s.order.Uint16(s.buf[s.pos:])
	s.pos += 2
	return v, nil
}

// readLength reads the 4-byte signed length prefix used by String's
// big sibling (arrays, lists): decoded as unsigned and truncated at
// 2^31-1, per spec's array-length invariant.
func (s *scanner) readLength() (uint32, error) {
	if err := s.need(4); err != nil {
		return 0, err
	}
	v := s.order.Uint32(s.buf[s.pos:])
	s.pos += 4
	if v > 0x7FFFFFFF {
		v = 0x7FFFFFFF
	}
	return v, nil
}

func (s *scanner) doSetName() error {
	typeByte, err := s.readByte()
	if err != nil {
		return err
	}
	tt := TagType(typeByte)
	if !tt.Valid() {
		return nbterr.ErrInvalidType
	}

	if tt == TagEnd {
		s.tags = append(s.tags, TagDesc{Type: TagEnd, PayloadOffset: uint32(s.pos)})
		return nil
	}

	nameLen, err := s.readUint16()
	if err != nil {
		return err
	}
	if err := s.need(int(nameLen)); err != nil {
		return err
	}
	s.pendingNameOffset = uint32(s.pos)
	s.pos += int(nameLen)
	s.pendingNameLength = nameLen

	return s.push(opFrame{kind: opDecode, tagType: tt})
}

func (s *scanner) doDecode(tt TagType, skipName bool) error {
	nameLen := s.pendingNameLength
	nameOff := s.pendingNameOffset
	if skipName {
		nameLen = 0
		nameOff = 0
	}
	s.pendingNameLength = 0
	s.pendingNameOffset = 0

	switch {
	case tt.numeric():
		size := scalarSize[tt]
		if err := s.need(size); err != nil {
			return err
		}
		s.emit(TagDesc{Type: tt, PayloadOffset: uint32(s.pos), NameOffset: nameOff, NameLength: nameLen})
		s.pos += size
		return nil

	case tt == TagString:
		strLen, err := s.readUint16()
		if err != nil {
			return err
		}
		if err := s.need(int(strLen)); err != nil {
			return err
		}
		s.emit(TagDesc{Type: tt, PayloadOffset: uint32(s.pos), Children: uint32(strLen), NameOffset: nameOff, NameLength: nameLen})
		s.pos += int(strLen)
		return nil

	case tt == TagByteArray, tt == TagIntArray, tt == TagLongArray:
		length, err := s.readLength()
		if err != nil {
			return err
		}
		elemSz := elementSize[tt]
		if err := s.need(int(length) * elemSz); err != nil {
			return err
		}
		s.emit(TagDesc{Type: tt, PayloadOffset: uint32(s.pos), Children: length, NameOffset: nameOff, NameLength: nameLen})
		s.pos += int(length) * elemSz
		return nil

	case tt == TagList:
		return s.doDecodeList(nameOff, nameLen)

	case tt == TagCompound:
		parentIdx := len(s.tags)
		s.emit(TagDesc{Type: tt, PayloadOffset: uint32(s.pos), NameOffset: nameOff, NameLength: nameLen})
		return s.push(opFrame{kind: opExtendCompound, parent: parentIdx})

	default:
		return nbterr.ErrInvalidType
	}
}

func (s *scanner) doDecodeList(nameOff uint32, nameLen uint16) error {
	childByte, err := s.readByte()
	if err != nil {
		return err
	}
	childType := TagType(childByte)
	if !childType.Valid() {
		return nbterr.ErrInvalidType
	}

	length, err := s.readLength()
	if err != nil {
		return err
	}

	// A List declaring child type End with nonzero length is
	// underspecified by the wire format; treat it as an empty list
	// and do not read any further payload bytes for it (see
	// DESIGN.md's note on this ambiguous source behavior).
	if childType == TagEnd {
		s.emit(TagDesc{Type: TagList, PayloadOffset: uint32(s.pos), NameOffset: nameOff, NameLength: nameLen})
		return nil
	}

	if childType.numeric() {
		size := scalarSize[childType]
		if err := s.need(int(length) * size); err != nil {
			return err
		}
		s.emit(TagDesc{Type: TagList, PayloadOffset: uint32(s.pos), Children: length, NameOffset: nameOff, NameLength: nameLen})
		s.pos += int(length) * size
		return nil
	}

	parentIdx := len(s.tags)
	s.emit(TagDesc{Type: TagList, PayloadOffset: uint32(s.pos), NameOffset: nameOff, NameLength: nameLen})
	return s.push(opFrame{
		kind:      opExtendList,
		childType: childType,
		remaining: int32(length),
		parent:    parentIdx,
	})
}

func (s *scanner) doExtendList(f opFrame) error {
	if f.remaining == 0 {
		s.tags[f.parent].Children = uint32(len(s.tags) - f.parent - 1)
		return nil
	}

	if err := s.push(opFrame{kind: opExtendList, childType: f.childType, remaining: f.remaining - 1, parent: f.parent}); err != nil {
		return err
	}
	return s.push(opFrame{kind: opDecode, tagType: f.childType, skipName: true})
}

func (s *scanner) doExtendCompound(f opFrame) error {
	if err := s.need(1); err != nil {
		return err
	}
	if s.buf[s.pos] == byte(TagEnd) {
		s.pos++
		s.tags[f.parent].Children = uint32(len(s.tags) - f.parent - 1)
		return nil
	}

	if err := s.push(opFrame{kind: opExtendCompound, parent: f.parent}); err != nil {
		return err
	}
	return s.push(opFrame{kind: opSetName})
}

// emit appends a descriptor, doubling capacity starting at 32 the way
// spec's resource model describes (Go's append already does this;
// the explicit initial capacity in Scan keeps the first few growths
// matching the described schedule instead of starting from zero).
func (s *scanner) emit(d TagDesc) {
	s.tags = append(s.tags, d)
}

// Name decodes the modified-UTF-8 name of the descriptor at i. It
// reads from the name's own recorded start offset rather than walking
// backward from PayloadOffset: for String, the three array types, and
// List, PayloadOffset sits past a length (and, for List, a child-type
// byte) that doDecode/doDecodeList read after the name, so it is not
// adjacent to the name bytes the way it is for scalars and Compound.
func (idx *Index) Name(i int) string {
	d := idx.Tags[i]
	return decodeModifiedUTF8(idx.Buf[d.NameOffset : int(d.NameOffset)+int(d.NameLength)])
}

// listElemType recovers the element type of a List descriptor by
// re-reading the one byte that precedes its 4-byte length field,
// rather than widening TagDesc with a fifth field: the child-type
// byte and the length are still sitting in the buffer exactly where
// the scanner left them, 5 bytes before PayloadOffset.
func (idx *Index) listElemType(d TagDesc) TagType {
	headerStart := int(d.PayloadOffset) - 5
	if headerStart < 0 {
		return TagEnd
	}
	return TagType(idx.Buf[headerStart])
}
