package jpath

import "strconv"

// SegmentID is a dense identifier for one step of a path: an object
// key or a rendered array index. ID 0 is the reserved empty segment.
type SegmentID uint32

// RootSegmentID is the reserved segment paired with the root path.
const RootSegmentID SegmentID = 0

// Interner maps path segments to dense SegmentIDs.
//
// Keys and array indices live in disjoint lookup maps but share one
// string table, so two distinct indices always receive two distinct
// IDs and never collide with keys syntactically: index segments are
// stored in their rendered "[N]" form.
//
// Key lookup is by 64-bit hash alone - the stored bytes are never
// re-compared on a hash hit. Two distinct keys whose hashes collide
// therefore share one SegmentID (and the bytes of the first one); the
// collision is not detected. This trades a small collision risk for
// lookup speed.
type Interner struct {
	strings [][]byte
	keys    map[uint64]SegmentID
	indices map[int]SegmentID
}

// NewInterner returns an Interner holding only the reserved empty
// segment in slot 0.
func NewInterner() *Interner {
	in := &Interner{
		keys:    make(map[uint64]SegmentID, 64),
		indices: make(map[int]SegmentID, 32),
	}
	in.strings = append(in.strings, nil)
	return in
}

// InternKey returns the SegmentID for an object key, assigning a new
// one on first sight. The key bytes are copied into the string table;
// callers may reuse the input slice.
func (in *Interner) InternKey(key []byte) SegmentID {
	h := Hash(key)
	if id, ok := in.keys[h]; ok {
		return id
	}
	id := SegmentID(len(in.strings))
	owned := make([]byte, len(key))
	copy(owned, key)
	in.strings = append(in.strings, owned)
	in.keys[h] = id
	return id
}

// InternIndex returns the SegmentID for array index n, rendering it
// as "[N]" on first sight.
func (in *Interner) InternIndex(n int) SegmentID {
	if id, ok := in.indices[n]; ok {
		return id
	}
	id := SegmentID(len(in.strings))
	rendered := make([]byte, 0, 8)
	rendered = append(rendered, '[')
	rendered = strconv.AppendInt(rendered, int64(n), 10)
	rendered = append(rendered, ']')
	in.strings = append(in.strings, rendered)
	in.indices[n] = id
	return id
}

// SegmentBytes returns the stored form of id: raw key bytes for keys,
// "[N]" for indices, nil for the reserved root segment. The returned
// slice is owned by the interner and must not be modified.
func (in *Interner) SegmentBytes(id SegmentID) []byte {
	if int(id) >= len(in.strings) {
		return nil
	}
	return in.strings[id]
}

// Len returns the number of interned segments including slot 0.
func (in *Interner) Len() int { return len(in.strings) }

// Clear drops every interned segment except the reserved slot 0.
// Lookup maps keep their capacity.
func (in *Interner) Clear() {
	in.strings = in.strings[:1]
	clear(in.keys)
	clear(in.indices)
}
