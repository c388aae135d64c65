// Package jpath interns JSON document locations into dense integer
// identifiers.
//
// Every location in a JSON document (an object member or an array
// element) is identified by a PathID. PathIDs are assigned by the
// Arena, a trie keyed on (parent PathID, SegmentID) pairs. Segments
// themselves - object keys and rendered array indices - are interned
// into dense SegmentIDs by the Interner.
//
// Because both sides of a diff share one Arena, identical locations in
// the two documents collapse to the same PathID, which is what allows
// the comparator to join the token streams with a direct-indexed
// table instead of path-string comparison.
//
// ID ASSIGNMENT:
//
// PathIDs and SegmentIDs are handed out sequentially. ID 0 is reserved
// on both axes: PathID 0 is the document root, SegmentID 0 is the
// empty string paired with it. A child PathID is always greater than
// its parent, so walking parent pointers is acyclic by construction.
//
// The Arena is NOT safe for concurrent use. The engine serializes all
// access: the left parse completes before the right parse begins.
package jpath
