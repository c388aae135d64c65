// Package diff joins two parsed token streams by PathID and
// classifies every leaf as added, removed or modified.
package diff

import (
	"github.com/roach88/diffcore/internal/jpath"
	"github.com/roach88/diffcore/internal/parser"
)

// Op classifies a diff entry. The numeric values are part of the
// binary result format.
type Op uint8

const (
	Added    Op = 0
	Removed  Op = 1
	Modified Op = 2
)

// String implements fmt.Stringer for host-side rendering.
func (o Op) String() string {
	switch o {
	case Added:
		return "added"
	case Removed:
		return "removed"
	case Modified:
		return "modified"
	}
	return "unknown"
}

// Entry describes one changed leaf.
//
// The left span points into the left input buffer, the right span
// into the right one. Added entries carry a zero left span, Removed
// entries a zero right span.
type Entry struct {
	Op     Op
	PathID jpath.PathID

	LeftOffset uint32
	LeftLen    uint32

	RightOffset uint32
	RightLen    uint32
}

// Compute joins the two token streams and returns the diff entries.
//
// The result ordering is part of the contract: Added and Modified
// entries appear first, in right-document order, followed by Removed
// entries in left-document order. Both passes are O(1) per token via
// the parsers' value-index tables.
//
// A leaf whose PathID fell outside a side's value index looks absent
// on that side, so it degrades to an Added/Removed pair rather than
// being lost.
func Compute(left, right *parser.Parser) []Entry {
	entries := make([]Entry, 0, 64)
	leftTokens := left.Tokens()

	// Added / Modified: walk the right side, join against the left
	// value index.
	for _, rt := range right.Tokens() {
		if rt.Event != parser.Value {
			continue
		}
		if idx := left.ValueIndexGet(rt.PathID); idx > 0 {
			lt := leftTokens[idx-1]
			if lt.ValueHash != rt.ValueHash {
				entries = append(entries, Entry{
					Op:          Modified,
					PathID:      rt.PathID,
					LeftOffset:  lt.RawOffset,
					LeftLen:     lt.RawLen,
					RightOffset: rt.RawOffset,
					RightLen:    rt.RawLen,
				})
			}
		} else {
			entries = append(entries, Entry{
				Op:          Added,
				PathID:      rt.PathID,
				RightOffset: rt.RawOffset,
				RightLen:    rt.RawLen,
			})
		}
	}

	// Removed: walk the left side, join against the right value
	// index.
	for _, lt := range leftTokens {
		if lt.Event != parser.Value {
			continue
		}
		if right.ValueIndexGet(lt.PathID) == 0 {
			entries = append(entries, Entry{
				Op:         Removed,
				PathID:     lt.PathID,
				LeftOffset: lt.RawOffset,
				LeftLen:    lt.RawLen,
			})
		}
	}

	return entries
}
