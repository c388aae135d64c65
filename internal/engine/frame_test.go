package engine

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/roach88/diffcore/internal/diff"
	"github.com/roach88/diffcore/internal/jpath"
)

func sampleEntries() []diff.Entry {
	return []diff.Entry{
		{Op: diff.Added, PathID: 3, RightOffset: 10, RightLen: 4},
		{Op: diff.Removed, PathID: 5, LeftOffset: 7, LeftLen: 2},
		{Op: diff.Modified, PathID: 9, LeftOffset: 1, LeftLen: 1, RightOffset: 2, RightLen: 3},
	}
}

func TestResultFrameLayout(t *testing.T) {
	frame := appendResultFrame(nil, sampleEntries())

	require.Equal(t, uint16(2), binary.LittleEndian.Uint16(frame[0:2]))
	require.Equal(t, uint16(1), binary.LittleEndian.Uint16(frame[2:4]))
	require.Equal(t, uint32(3), binary.LittleEndian.Uint32(frame[4:8]))
	require.Equal(t, uint64(len(frame)), binary.LittleEndian.Uint64(frame[8:16]))
	require.Equal(t, 16+3*24, len(frame))

	// First entry, byte by byte.
	e := frame[16:40]
	require.Equal(t, uint8(0), e[0])
	require.Equal(t, uint32(3), binary.LittleEndian.Uint32(e[1:5]))
	require.Equal(t, uint32(0), binary.LittleEndian.Uint32(e[5:9]))
	require.Equal(t, uint32(0), binary.LittleEndian.Uint32(e[9:13]))
	require.Equal(t, uint32(10), binary.LittleEndian.Uint32(e[13:17]))
	require.Equal(t, uint32(4), binary.LittleEndian.Uint32(e[17:21]))
	require.Equal(t, []byte{0, 0, 0}, e[21:24])
}

func TestResultFrameRoundTrip(t *testing.T) {
	want := sampleEntries()
	frame := appendResultFrame(nil, want)

	header, got, err := DecodeResult(frame)
	require.NoError(t, err)
	require.Equal(t, uint32(3), header.Count)
	require.Equal(t, uint64(len(frame)), header.TotalLen)
	require.Equal(t, want, got)
}

func TestResultFrameEmpty(t *testing.T) {
	frame := appendResultFrame(nil, nil)
	require.Equal(t, 16, len(frame))

	header, entries, err := DecodeResult(frame)
	require.NoError(t, err)
	require.Zero(t, header.Count)
	require.Empty(t, entries)
}

func TestDecodeResultErrors(t *testing.T) {
	t.Run("truncated header", func(t *testing.T) {
		_, _, err := DecodeResult(make([]byte, 8))
		require.ErrorIs(t, err, ErrFrameTruncated)
	})

	t.Run("truncated entries", func(t *testing.T) {
		frame := appendResultFrame(nil, sampleEntries())
		_, _, err := DecodeResult(frame[:len(frame)-1])
		require.ErrorIs(t, err, ErrFrameTruncated)
	})

	t.Run("wrong version", func(t *testing.T) {
		frame := appendResultFrame(nil, nil)
		binary.LittleEndian.PutUint16(frame[0:2], 1)
		_, _, err := DecodeResult(frame)
		require.ErrorIs(t, err, ErrFrameVersion)
	})
}

func TestSymbolFrameRoundTrip(t *testing.T) {
	arena := jpath.NewArena()
	users := arena.ChildPath(jpath.RootPathID, arena.Interner().InternKey([]byte("users")))
	first := arena.ChildPath(users, arena.Interner().InternIndex(0))

	entries := []diff.Entry{
		{Op: diff.Added, PathID: first},
		{Op: diff.Removed, PathID: users},
		{Op: diff.Modified, PathID: jpath.RootPathID},
	}
	frame := appendSymbolFrame(nil, entries, arena)

	require.Equal(t, uint32(3), binary.LittleEndian.Uint32(frame[0:4]))

	paths, err := DecodeSymbols(frame)
	require.NoError(t, err)
	require.Equal(t, []string{"$.users.[0]", "$.users", "$"}, paths)
}

func TestDecodeSymbolsErrors(t *testing.T) {
	arena := jpath.NewArena()
	frame := appendSymbolFrame(nil, []diff.Entry{{PathID: jpath.RootPathID}}, arena)

	_, err := DecodeSymbols(frame[:len(frame)-1])
	require.ErrorIs(t, err, ErrFrameTruncated)

	_, err = DecodeSymbols(frame[:2])
	require.ErrorIs(t, err, ErrFrameTruncated)
}
