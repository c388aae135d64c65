package parser

import "github.com/roach88/diffcore/internal/jpath"

// Event tags the structural meaning of a token.
type Event uint8

const (
	// StartObject and friends carry the PathID under which the
	// container lives and no payload.
	StartObject Event = iota
	EndObject
	StartArray
	EndArray
	// Value is the only event with a meaningful hash and byte span.
	Value
)

// String implements fmt.Stringer for test output.
func (e Event) String() string {
	switch e {
	case StartObject:
		return "StartObject"
	case EndObject:
		return "EndObject"
	case StartArray:
		return "StartArray"
	case EndArray:
		return "EndArray"
	case Value:
		return "Value"
	}
	return "Unknown"
}

// Token is one structural event of the parse.
//
// RawOffset is the byte offset of the value's first byte from the
// start of the side's input buffer; RawLen its byte length. For
// strings the span bounds the contents inside the surrounding quotes,
// for primitives the literal itself. Structural events carry a zero
// hash and span.
type Token struct {
	PathID    jpath.PathID
	Event     Event
	ValueHash uint64
	RawOffset uint32
	RawLen    uint32
}
