package nbtpath

import "github.com/vberlier/nbtlib/nbt"

// slot is a mutable reference to one tag's storage location, letting
// SetAll/DeleteAll rewrite a value in place without the evaluator
// needing to know whether its container is a Compound or a List.
type slot struct {
	get func() nbt.Tag
	set func(nbt.Tag)
	del func() bool // reports whether deletion succeeded
}

// GetAll returns every tag the path resolves to, in encounter order.
// root is a pointer so that a path with zero segments (the whole
// document) can still participate uniformly in SetAll/DeleteAll.
func GetAll(root *nbt.Tag, path *Path) []nbt.Tag {
	slots := walk(rootSlots(root), path.segments)
	out := make([]nbt.Tag, 0, len(slots))
	for _, s := range slots {
		out = append(out, s.get())
	}
	return out
}

// Find returns the first tag the path resolves to, if any.
func Find(root *nbt.Tag, path *Path) (nbt.Tag, bool) {
	all := GetAll(root, path)
	if len(all) == 0 {
		return nil, false
	}
	return all[0], true
}

// SetAll assigns value at every location the path resolves to and
// returns how many locations were set.
func SetAll(root *nbt.Tag, path *Path, value nbt.Tag) int {
	slots := walk(rootSlots(root), path.segments)
	for _, s := range slots {
		s.set(value)
	}
	return len(slots)
}

// DeleteAll removes every location the path resolves to and returns
// how many deletions succeeded. Matches are deleted in reverse
// document order so that deleting one sequence element never shifts
// the index another pending match still refers to.
func DeleteAll(root *nbt.Tag, path *Path) int {
	slots := walk(rootSlots(root), path.segments)
	n := 0
	for i := len(slots) - 1; i >= 0; i-- {
		if slots[i].del != nil && slots[i].del() {
			n++
		}
	}
	return n
}

func rootSlots(root *nbt.Tag) []slot {
	return []slot{{
		get: func() nbt.Tag { return *root },
		set: func(t nbt.Tag) { *root = t },
		del: func() bool { return false },
	}}
}

func walk(slots []slot, segs []segment) []slot {
	for _, seg := range segs {
		var next []slot
		for _, s := range slots {
			next = append(next, step(s, seg)...)
		}
		slots = next
	}
	return slots
}

func step(s slot, seg segment) []slot {
	switch seg.kind {
	case segName:
		return stepName(s, seg.name)
	case segIndex:
		return stepIndex(s, seg.index)
	case segAllElements:
		return stepAllElements(s)
	case segIndexFilter:
		return stepIndexFilter(s, seg.filter)
	case segFilter:
		return stepFilter(s, seg.filter)
	default:
		return nil
	}
}

func stepName(s slot, name string) []slot {
	c, ok := s.get().(*nbt.Compound)
	if !ok {
		return nil
	}
	_, ok = c.Get(name)
	if !ok {
		return nil
	}
	return []slot{{
		get: func() nbt.Tag { v, _ := c.Get(name); return v },
		set: func(t nbt.Tag) { c.Set(name, t) },
		del: func() bool { return c.Delete(name) },
	}}
}

// listSlot builds a slot for index i of a List stored at container
// slot s. Mutating through it rewrites the element in the shared
// backing array directly; deletion instead rewrites the whole List
// back into the parent since removing an element changes length.
func listSlot(s slot, i int) slot {
	return slot{
		get: func() nbt.Tag {
			l := s.get().(nbt.List)
			return l.Elements[i]
		},
		set: func(t nbt.Tag) {
			l := s.get().(nbt.List)
			l.Elements[i] = t
		},
		del: func() bool {
			l := s.get().(nbt.List)
			if i < 0 || i >= len(l.Elements) {
				return false
			}
			l.Elements = append(l.Elements[:i], l.Elements[i+1:]...)
			s.set(l)
			return true
		},
	}
}

func resolveIndex(length, i int) (int, bool) {
	if i < 0 {
		i += length
	}
	if i < 0 || i >= length {
		return 0, false
	}
	return i, true
}

func stepIndex(s slot, index int) []slot {
	switch v := s.get().(type) {
	case nbt.List:
		i, ok := resolveIndex(len(v.Elements), index)
		if !ok {
			return nil
		}
		return []slot{listSlot(s, i)}
	case nbt.ByteArray:
		i, ok := resolveIndex(len(v), index)
		if !ok {
			return nil
		}
		return []slot{byteArraySlot(s, i)}
	case nbt.IntArray:
		i, ok := resolveIndex(len(v), index)
		if !ok {
			return nil
		}
		return []slot{intArraySlot(s, i)}
	case nbt.LongArray:
		i, ok := resolveIndex(len(v), index)
		if !ok {
			return nil
		}
		return []slot{longArraySlot(s, i)}
	default:
		return nil
	}
}

func byteArraySlot(s slot, i int) slot {
	return slot{
		get: func() nbt.Tag { return nbt.Byte(s.get().(nbt.ByteArray)[i]) },
		set: func(t nbt.Tag) {
			if b, ok := t.(nbt.Byte); ok {
				s.get().(nbt.ByteArray)[i] = int8(b)
			}
		},
		del: func() bool {
			a := s.get().(nbt.ByteArray)
			if i < 0 || i >= len(a) {
				return false
			}
			s.set(append(a[:i], a[i+1:]...))
			return true
		},
	}
}

func intArraySlot(s slot, i int) slot {
	return slot{
		get: func() nbt.Tag { return nbt.Int(s.get().(nbt.IntArray)[i]) },
		set: func(t nbt.Tag) {
			if v, ok := t.(nbt.Int); ok {
				s.get().(nbt.IntArray)[i] = int32(v)
			}
		},
		del: func() bool {
			a := s.get().(nbt.IntArray)
			if i < 0 || i >= len(a) {
				return false
			}
			s.set(append(a[:i], a[i+1:]...))
			return true
		},
	}
}

func longArraySlot(s slot, i int) slot {
	return slot{
		get: func() nbt.Tag { return nbt.Long(s.get().(nbt.LongArray)[i]) },
		set: func(t nbt.Tag) {
			if v, ok := t.(nbt.Long); ok {
				s.get().(nbt.LongArray)[i] = int64(v)
			}
		},
		del: func() bool {
			a := s.get().(nbt.LongArray)
			if i < 0 || i >= len(a) {
				return false
			}
			s.set(append(a[:i], a[i+1:]...))
			return true
		},
	}
}

func stepAllElements(s slot) []slot {
	switch v := s.get().(type) {
	case nbt.List:
		out := make([]slot, len(v.Elements))
		for i := range v.Elements {
			out[i] = listSlot(s, i)
		}
		return out
	case nbt.ByteArray:
		out := make([]slot, len(v))
		for i := range v {
			out[i] = byteArraySlot(s, i)
		}
		return out
	case nbt.IntArray:
		out := make([]slot, len(v))
		for i := range v {
			out[i] = intArraySlot(s, i)
		}
		return out
	case nbt.LongArray:
		out := make([]slot, len(v))
		for i := range v {
			out[i] = longArraySlot(s, i)
		}
		return out
	case *nbt.Compound:
		names := v.Names()
		out := make([]slot, len(names))
		for i, name := range names {
			n := name
			out[i] = slot{
				get: func() nbt.Tag { t, _ := v.Get(n); return t },
				set: func(t nbt.Tag) { v.Set(n, t) },
				del: func() bool { return v.Delete(n) },
			}
		}
		return out
	default:
		return nil
	}
}

func stepIndexFilter(s slot, filter *nbt.Compound) []slot {
	l, ok := s.get().(nbt.List)
	if !ok {
		return nil
	}
	var out []slot
	for i, e := range l.Elements {
		if matchesFilter(e, filter) {
			out = append(out, listSlot(s, i))
		}
	}
	return out
}

func stepFilter(s slot, filter *nbt.Compound) []slot {
	if matchesFilter(s.get(), filter) {
		return []slot{s}
	}
	return nil
}

// matchesFilter reports whether t is a Compound containing, for
// every key in filter, an entry that is Equal to filter's value —
// extra keys in t are ignored, matching the compound-filter semantics
// of the grammar (a partial-match predicate, not full equality).
func matchesFilter(t nbt.Tag, filter *nbt.Compound) bool {
	c, ok := t.(*nbt.Compound)
	if !ok {
		return false
	}
	match := true
	filter.Range(func(name string, want nbt.Tag) bool {
		got, ok := c.Get(name)
		if !ok || !want.Equal(got) {
			match = false
			return false
		}
		return true
	})
	return match
}
