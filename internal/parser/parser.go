package parser

import (
	"bytes"
	"errors"

	"github.com/roach88/diffcore/internal/jpath"
)

// Parse failures. Everything else is handled leniently.
var (
	// ErrUnterminatedString reports input ending inside a string
	// literal.
	ErrUnterminatedString = errors.New("parser: unterminated string literal")

	// ErrObjectKeyLimit reports an object exceeding the configured
	// member limit.
	ErrObjectKeyLimit = errors.New("parser: object key limit exceeded")
)

// DefaultMaxObjectKeys bounds the members of a single object. The
// limit is a sanity cap against adversarial input, not a structural
// constraint.
const DefaultMaxObjectKeys = 100_000

// valueIndexSlots is the preallocated size of the PathID-indexed
// value lookup table. Paths interned beyond this range still produce
// tokens but lose the O(1) lookup; the comparator then reports them
// as absent on this side. The cap is a performance knob, not a
// correctness bound.
const valueIndexSlots = 262_144

// Parser turns one committed JSON buffer into a token stream.
//
// A Parser is bound to one side of a diff and reused across sessions
// via Clear. It is not safe for concurrent use.
type Parser struct {
	tokens     []Token
	valueIndex []uint32

	currentPath jpath.PathID
	// pathStack and containers grow in lockstep: one entry per open
	// container, recording the enclosing path and whether the
	// container is an object ('{') or an array ('[').
	pathStack     []jpath.PathID
	containers    []byte
	arrayIndices  []int
	expectingKey  bool
	keyCount      uint32
	keyCountStack []uint32
	maxObjectKeys uint32
}

// New returns a Parser with the given per-object key limit. Zero
// selects DefaultMaxObjectKeys.
func New(maxObjectKeys uint32) *Parser {
	if maxObjectKeys == 0 {
		maxObjectKeys = DefaultMaxObjectKeys
	}
	return &Parser{
		tokens:        make([]Token, 0, 2048),
		valueIndex:    make([]uint32, valueIndexSlots),
		pathStack:     make([]jpath.PathID, 0, 64),
		containers:    make([]byte, 0, 64),
		arrayIndices:  make([]int, 0, 64),
		keyCountStack: make([]uint32, 0, 64),
		maxObjectKeys: maxObjectKeys,
	}
}

// Clear resets the parser for a new session, keeping capacity.
func (p *Parser) Clear() {
	p.tokens = p.tokens[:0]
	clear(p.valueIndex)
	p.pathStack = p.pathStack[:0]
	p.containers = p.containers[:0]
	p.arrayIndices = p.arrayIndices[:0]
	p.keyCountStack = p.keyCountStack[:0]
	p.currentPath = jpath.RootPathID
	p.expectingKey = false
	p.keyCount = 0
}

// Tokens returns the token stream of the last parse.
func (p *Parser) Tokens() []Token { return p.tokens }

// ValueIndexGet returns tokenIndex+1 for the most recent Value token
// at id, or 0 when the path carries no value on this side (or lies
// beyond the lookup table).
func (p *Parser) ValueIndexGet(id jpath.PathID) uint32 {
	if int(id) >= len(p.valueIndex) {
		return 0
	}
	return p.valueIndex[id]
}

func (p *Parser) pushToken(id jpath.PathID, event Event, hash uint64, offset, length uint32) {
	if event == Value && int(id) < len(p.valueIndex) {
		p.valueIndex[id] = uint32(len(p.tokens)) + 1
	}
	p.tokens = append(p.tokens, Token{
		PathID:    id,
		Event:     event,
		ValueHash: hash,
		RawOffset: offset,
		RawLen:    length,
	})
}

func (p *Parser) stackTop() jpath.PathID {
	if len(p.pathStack) == 0 {
		return jpath.RootPathID
	}
	return p.pathStack[len(p.pathStack)-1]
}

// inArray reports whether the innermost open container is an array.
func (p *Parser) inArray() bool {
	return len(p.containers) > 0 && p.containers[len(p.containers)-1] == '['
}

// popContainer drops the innermost container, releasing its array
// cursor when it was an array. Lenient: a stray closer on an empty
// stack is a no-op.
func (p *Parser) popContainer() {
	k := len(p.containers)
	if k == 0 {
		return
	}
	if p.containers[k-1] == '[' && len(p.arrayIndices) > 0 {
		p.arrayIndices = p.arrayIndices[:len(p.arrayIndices)-1]
	}
	p.containers = p.containers[:k-1]
	p.pathStack = p.pathStack[:len(p.pathStack)-1]
}

// Parse tokenizes input against the shared arena. Offsets in the
// emitted tokens are relative to the start of input.
//
// The pass is lenient: bytes that make no structural sense are
// skipped. Parse fails only on an unterminated string or an object
// exceeding the key limit; in both cases the tokens emitted so far
// remain in place.
func (p *Parser) Parse(input []byte, arena *jpath.Arena) error {
	pos := 0
	n := len(input)

	for pos < n {
		b := input[pos]

		// Whitespace runs are common between tokens; skip them in
		// one tight loop.
		if b == ' ' || b == '\t' || b == '\n' || b == '\r' {
			pos++
			for pos < n {
				c := input[pos]
				if c != ' ' && c != '\t' && c != '\n' && c != '\r' {
					break
				}
				pos++
			}
			continue
		}

		switch b {
		case '{':
			p.pathStack = append(p.pathStack, p.currentPath)
			p.containers = append(p.containers, '{')
			p.pushToken(p.currentPath, StartObject, 0, 0, 0)
			p.expectingKey = true
			p.keyCountStack = append(p.keyCountStack, p.keyCount)
			p.keyCount = 0
			pos++

		case '}':
			p.expectingKey = false
			p.currentPath = p.stackTop()
			p.popContainer()
			// Restore the enclosing object's member count; the
			// limit is per object, not cumulative.
			if k := len(p.keyCountStack); k > 0 {
				p.keyCount = p.keyCountStack[k-1]
				p.keyCountStack = p.keyCountStack[:k-1]
			} else {
				p.keyCount = 0
			}
			p.pushToken(p.currentPath, EndObject, 0, 0, 0)
			pos++

		case '[':
			p.pathStack = append(p.pathStack, p.currentPath)
			p.containers = append(p.containers, '[')
			p.pushToken(p.currentPath, StartArray, 0, 0, 0)
			p.arrayIndices = append(p.arrayIndices, 0)
			seg := arena.Interner().InternIndex(0)
			p.currentPath = arena.ChildPath(p.currentPath, seg)
			pos++

		case ']':
			p.currentPath = p.stackTop()
			p.popContainer()
			p.pushToken(p.currentPath, EndArray, 0, 0, 0)
			pos++

		case '"':
			start := pos + 1
			end, ok := scanString(input, start)
			if !ok {
				return ErrUnterminatedString
			}
			contents := input[start:end]
			pos = end + 1

			if p.expectingKey {
				p.keyCount++
				if p.keyCount > p.maxObjectKeys {
					return ErrObjectKeyLimit
				}
				seg := arena.Interner().InternKey(contents)
				p.currentPath = arena.ChildPath(p.stackTop(), seg)
			} else {
				p.pushToken(p.currentPath, Value, jpath.Hash(contents),
					uint32(start), uint32(len(contents)))
			}

		case ':':
			p.expectingKey = false
			pos++

		case ',':
			if p.inArray() {
				k := len(p.arrayIndices)
				p.arrayIndices[k-1]++
				seg := arena.Interner().InternIndex(p.arrayIndices[k-1])
				p.currentPath = arena.ChildPath(p.stackTop(), seg)
			} else {
				p.expectingKey = true
			}
			pos++

		default:
			if b == '-' || (b >= '0' && b <= '9') || b == 't' || b == 'f' || b == 'n' {
				start := pos
				for pos < n {
					c := input[pos]
					if c == ',' || c == '}' || c == ']' || c <= 0x20 {
						break
					}
					pos++
				}
				lit := input[start:pos]
				p.pushToken(p.currentPath, Value, jpath.Hash(lit),
					uint32(start), uint32(len(lit)))

				// Inside an object the key parked its path on
				// currentPath; restore the container's path so the
				// literal does not become the next key's parent.
				if !p.inArray() && len(p.pathStack) > 0 {
					p.currentPath = p.pathStack[len(p.pathStack)-1]
				}
			} else {
				// Lenient mode: anything unexpected outside a
				// string is skipped.
				pos++
			}
		}
	}
	return nil
}

// scanString finds the first unescaped quote at or after pos and
// returns its index. A backslash skips the following byte. The scan
// leans on bytes.IndexByte, which is the vectorized path on every
// platform the runtime supports.
func scanString(input []byte, pos int) (int, bool) {
	for pos < len(input) {
		q := bytes.IndexByte(input[pos:], '"')
		if q < 0 {
			return 0, false
		}
		s := bytes.IndexByte(input[pos:pos+q], '\\')
		if s < 0 {
			return pos + q, true
		}
		pos += s + 2
	}
	return 0, false
}
