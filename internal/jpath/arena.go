package jpath

// PathID is a dense identifier for a node in the document tree.
// ID 0 is the document root.
type PathID uint32

// RootPathID identifies the document root. A bare top-level scalar is
// the only leaf that can carry it.
const RootPathID PathID = 0

const noCache = ^uint64(0)

// edge records the trie edge that produced a PathID.
type edge struct {
	parent  PathID
	segment SegmentID
}

// Arena interns (parent, segment) pairs into dense PathIDs.
//
// Storage is two parallel structures: a forward map from the packed
// (parent, segment) pair to the child PathID, and a flat reverse
// table indexed by PathID yielding the pair back. Entry 0 of the
// reverse table is the root sentinel. Child IDs are always assigned
// after their parents, so the reverse walk in AppendPath terminates
// at the root without cycle checking.
//
// A single-slot cache in front of the forward map captures the
// dominant access pattern: consecutive sibling array elements and
// consecutive keys of one object query the same (parent, segment)
// pair or at least the same parent many times in a row.
type Arena struct {
	trie     map[uint64]PathID
	reverse  []edge
	interner *Interner

	// last-query cache: packed key and its answer
	cacheKey uint64
	cacheID  PathID
}

// NewArena returns an empty Arena with the root sentinel in place.
func NewArena() *Arena {
	a := &Arena{
		trie:     make(map[uint64]PathID, 256),
		interner: NewInterner(),
		cacheKey: noCache,
	}
	a.reverse = append(a.reverse, edge{RootPathID, RootSegmentID})
	return a
}

// Interner exposes the segment interner shared by both parsers.
func (a *Arena) Interner() *Interner { return a.interner }

// ChildPath returns the PathID for segment under parent, assigning a
// new one on first sight. Total: never fails.
func (a *Arena) ChildPath(parent PathID, segment SegmentID) PathID {
	key := uint64(parent)<<32 | uint64(segment)
	if key == a.cacheKey {
		return a.cacheID
	}
	id, ok := a.trie[key]
	if !ok {
		id = PathID(len(a.reverse))
		a.trie[key] = id
		a.reverse = append(a.reverse, edge{parent, segment})
	}
	a.cacheKey = key
	a.cacheID = id
	return id
}

// Parent returns the trie edge for id. The root reports itself.
func (a *Arena) Parent(id PathID) (PathID, SegmentID) {
	if int(id) >= len(a.reverse) {
		return RootPathID, RootSegmentID
	}
	e := a.reverse[id]
	return e.parent, e.segment
}

// Len returns the number of assigned PathIDs including the root.
func (a *Arena) Len() int { return len(a.reverse) }

// AppendPath appends the rendered path for id to dst and returns the
// extended slice. The root renders as "$"; every further segment is
// preceded by a dot, array indices keeping their bracketed form:
// "$.users.[0].name".
func (a *Arena) AppendPath(dst []byte, id PathID) []byte {
	dst = append(dst, '$')
	if id == RootPathID {
		return dst
	}

	var segments [64]SegmentID
	stack := segments[:0]
	for cur := id; cur != RootPathID && int(cur) < len(a.reverse); {
		e := a.reverse[cur]
		stack = append(stack, e.segment)
		cur = e.parent
	}
	for i := len(stack) - 1; i >= 0; i-- {
		dst = append(dst, '.')
		dst = append(dst, a.interner.SegmentBytes(stack[i])...)
	}
	return dst
}

// PathString renders id as a string. Convenience wrapper over
// AppendPath for hosts and tests.
func (a *Arena) PathString(id PathID) string {
	return string(a.AppendPath(nil, id))
}

// Clear resets the arena and its interner to the freshly constructed
// state. Map and table capacity is retained.
func (a *Arena) Clear() {
	clear(a.trie)
	a.reverse = a.reverse[:1]
	a.interner.Clear()
	a.cacheKey = noCache
	a.cacheID = RootPathID
}
