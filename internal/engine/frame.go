package engine

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/roach88/diffcore/internal/diff"
	"github.com/roach88/diffcore/internal/jpath"
)

// Binary result format version.
const (
	FormatVersionMajor uint16 = 2
	FormatVersionMinor uint16 = 1
)

const (
	resultHeaderSize = 16
	resultEntrySize  = 24
)

// Frame decoding failures. The encoders are total.
var (
	ErrFrameTruncated = errors.New("engine: frame truncated")
	ErrFrameVersion   = errors.New("engine: unsupported frame version")
)

// appendResultFrame encodes the result frame into dst:
//
//	offset size  field
//	 0     2     major version (=2)
//	 2     2     minor version (=1)
//	 4     4     entry count
//	 8     8     total frame length in bytes
//	16     N*24  entries
//
// Each 24-byte entry is op, path_id, the two spans and three zero
// padding bytes, all little-endian. The total length is patched last.
func appendResultFrame(dst []byte, entries []diff.Entry) []byte {
	base := len(dst)
	var header [resultHeaderSize]byte
	binary.LittleEndian.PutUint16(header[0:2], FormatVersionMajor)
	binary.LittleEndian.PutUint16(header[2:4], FormatVersionMinor)
	binary.LittleEndian.PutUint32(header[4:8], uint32(len(entries)))
	dst = append(dst, header[:]...)

	var entry [resultEntrySize]byte
	for _, e := range entries {
		entry[0] = uint8(e.Op)
		binary.LittleEndian.PutUint32(entry[1:5], uint32(e.PathID))
		binary.LittleEndian.PutUint32(entry[5:9], e.LeftOffset)
		binary.LittleEndian.PutUint32(entry[9:13], e.LeftLen)
		binary.LittleEndian.PutUint32(entry[13:17], e.RightOffset)
		binary.LittleEndian.PutUint32(entry[17:21], e.RightLen)
		entry[21], entry[22], entry[23] = 0, 0, 0
		dst = append(dst, entry[:]...)
	}

	binary.LittleEndian.PutUint64(dst[base+8:base+16], uint64(len(dst)-base))
	return dst
}

// appendSymbolFrame encodes the symbol frame into dst:
//
//	[u32 N][for each entry in result order: u32 len, len bytes of path]
//
// One path string per diff entry; hosts join on position.
func appendSymbolFrame(dst []byte, entries []diff.Entry, arena *jpath.Arena) []byte {
	var word [4]byte
	binary.LittleEndian.PutUint32(word[:], uint32(len(entries)))
	dst = append(dst, word[:]...)

	for _, e := range entries {
		lenAt := len(dst)
		dst = append(dst, word[:]...)
		pathStart := len(dst)
		dst = arena.AppendPath(dst, e.PathID)
		binary.LittleEndian.PutUint32(dst[lenAt:lenAt+4], uint32(len(dst)-pathStart))
	}
	return dst
}

// FrameHeader is the decoded result frame header.
type FrameHeader struct {
	Major    uint16
	Minor    uint16
	Count    uint32
	TotalLen uint64
}

// DecodeResult parses a result frame back into diff entries. It is
// the host-side inverse of the engine's serializer; the engine itself
// never reads frames.
func DecodeResult(frame []byte) (FrameHeader, []diff.Entry, error) {
	if len(frame) < resultHeaderSize {
		return FrameHeader{}, nil, fmt.Errorf("%w: header needs %d bytes, have %d",
			ErrFrameTruncated, resultHeaderSize, len(frame))
	}
	h := FrameHeader{
		Major:    binary.LittleEndian.Uint16(frame[0:2]),
		Minor:    binary.LittleEndian.Uint16(frame[2:4]),
		Count:    binary.LittleEndian.Uint32(frame[4:8]),
		TotalLen: binary.LittleEndian.Uint64(frame[8:16]),
	}
	if h.Major != FormatVersionMajor {
		return FrameHeader{}, nil, fmt.Errorf("%w: %d.%d", ErrFrameVersion, h.Major, h.Minor)
	}
	need := resultHeaderSize + int(h.Count)*resultEntrySize
	if len(frame) < need {
		return FrameHeader{}, nil, fmt.Errorf("%w: %d entries need %d bytes, have %d",
			ErrFrameTruncated, h.Count, need, len(frame))
	}

	entries := make([]diff.Entry, 0, h.Count)
	for i := 0; i < int(h.Count); i++ {
		b := frame[resultHeaderSize+i*resultEntrySize:]
		entries = append(entries, diff.Entry{
			Op:          diff.Op(b[0]),
			PathID:      jpath.PathID(binary.LittleEndian.Uint32(b[1:5])),
			LeftOffset:  binary.LittleEndian.Uint32(b[5:9]),
			LeftLen:     binary.LittleEndian.Uint32(b[9:13]),
			RightOffset: binary.LittleEndian.Uint32(b[13:17]),
			RightLen:    binary.LittleEndian.Uint32(b[17:21]),
		})
	}
	return h, entries, nil
}

// DecodeSymbols parses a symbol frame into its path strings.
func DecodeSymbols(frame []byte) ([]string, error) {
	if len(frame) < 4 {
		return nil, fmt.Errorf("%w: symbol frame needs 4 bytes, have %d",
			ErrFrameTruncated, len(frame))
	}
	count := binary.LittleEndian.Uint32(frame[0:4])
	paths := make([]string, 0, count)
	pos := 4
	for i := uint32(0); i < count; i++ {
		if pos+4 > len(frame) {
			return nil, fmt.Errorf("%w: symbol %d length prefix", ErrFrameTruncated, i)
		}
		n := int(binary.LittleEndian.Uint32(frame[pos : pos+4]))
		pos += 4
		if pos+n > len(frame) {
			return nil, fmt.Errorf("%w: symbol %d body", ErrFrameTruncated, i)
		}
		paths = append(paths, string(frame[pos:pos+n]))
		pos += n
	}
	return paths, nil
}
