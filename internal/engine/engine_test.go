package engine

import (
	"encoding/binary"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"

	"github.com/roach88/diffcore/internal/diff"
)

func testConfig() Config {
	cfg := DefaultConfig()
	cfg.MaxInputSize = 1 << 20
	cfg.MaxMemoryBytes = 1 << 20
	return cfg
}

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	eng, err := New(testConfig())
	require.NoError(t, err)
	return eng
}

// runSession stages both documents and walks the full call order.
func runSession(t *testing.T, eng *Engine, left, right string) {
	t.Helper()
	n := copy(eng.LeftInput(), left)
	require.Equal(t, StatusOK, eng.CommitLeft(uint32(n)), eng.LastError())
	n = copy(eng.RightInput(), right)
	require.Equal(t, StatusOK, eng.CommitRight(uint32(n)), eng.LastError())
	require.NotNil(t, eng.Finalize(), eng.LastError())
}

func TestEngineRejectsInvalidConfig(t *testing.T) {
	cfg := testConfig()
	cfg.MaxInputSize = 0
	_, err := New(cfg)
	require.ErrorIs(t, err, ErrConfigInvalidLimits)
}

func TestCommittedPrefixes(t *testing.T) {
	eng := newTestEngine(t)
	require.Empty(t, eng.LeftBytes())
	require.Empty(t, eng.RightBytes())

	runSession(t, eng, `{"a":1}`, `{"a":22}`)
	require.Equal(t, `{"a":1}`, string(eng.LeftBytes()))
	require.Equal(t, `{"a":22}`, string(eng.RightBytes()))

	eng.Clear()
	require.Empty(t, eng.LeftBytes())
}

func TestPipelineModifiedScalar(t *testing.T) {
	eng := newTestEngine(t)
	runSession(t, eng, `{"a":1}`, `{"a":2}`)

	header, entries, err := DecodeResult(eng.Result())
	require.NoError(t, err)
	require.Equal(t, uint32(1), header.Count)

	e := entries[0]
	require.Equal(t, diff.Modified, e.Op)
	require.Equal(t, "1", string(eng.LeftSpan(e)))
	require.Equal(t, "2", string(eng.RightSpan(e)))

	paths, err := DecodeSymbols(eng.BatchResolveSymbols())
	require.NoError(t, err)
	require.Equal(t, []string{"$.a"}, paths)
}

func TestFrameLengthConsistency(t *testing.T) {
	eng := newTestEngine(t)
	runSession(t, eng, `{"a":1,"b":2}`, `{"a":1,"c":3}`)

	frame := eng.Result()
	count := binary.LittleEndian.Uint32(frame[4:8])
	require.Equal(t, uint64(eng.ResultLen()), binary.LittleEndian.Uint64(frame[8:16]))
	require.Equal(t, uint32(16+24*count), eng.ResultLen())
}

func TestSymbolTableSizing(t *testing.T) {
	eng := newTestEngine(t)
	runSession(t, eng, `{"a":1,"b":2}`, `{"a":9,"c":3}`)

	symbols := eng.BatchResolveSymbols()
	require.Equal(t, uint32(len(eng.Entries())), binary.LittleEndian.Uint32(symbols[0:4]))

	paths, err := DecodeSymbols(symbols)
	require.NoError(t, err)
	require.Len(t, paths, len(eng.Entries()))
}

func TestPhaseOrderEnforced(t *testing.T) {
	eng := newTestEngine(t)

	// Right before left is a phase violation.
	require.Equal(t, StatusError, eng.CommitRight(0))
	require.Contains(t, eng.LastError(), "phase")

	// Finalize before both commits as well.
	require.Nil(t, eng.Finalize())

	// Symbols before finalize.
	require.Nil(t, eng.BatchResolveSymbols())

	runSession(t, eng, `{"a":1}`, `{"a":1}`)

	// Sealed: no further input.
	require.Equal(t, StatusEngineSealed, eng.CommitLeft(0))
	require.Nil(t, eng.Finalize(), "double finalize")
}

func TestCommitOversizedInput(t *testing.T) {
	cfg := testConfig()
	cfg.MaxInputSize = 32 // 16 bytes per side
	eng, err := New(cfg)
	require.NoError(t, err)

	require.Equal(t, StatusInputLimitExceeded, eng.CommitLeft(17))
	require.Contains(t, eng.LastError(), "capacity")

	// The failed commit leaves the phase untouched; a valid commit
	// still goes through.
	copy(eng.LeftInput(), `{"a":1}`)
	require.Equal(t, StatusOK, eng.CommitLeft(7))
}

func TestCommitParseFailures(t *testing.T) {
	t.Run("truncated string", func(t *testing.T) {
		eng := newTestEngine(t)
		n := copy(eng.LeftInput(), `{"a":"oops`)
		require.Equal(t, StatusError, eng.CommitLeft(uint32(n)))
		require.Contains(t, eng.LastError(), "unterminated")
	})

	t.Run("key explosion", func(t *testing.T) {
		cfg := testConfig()
		cfg.MaxObjectKeys = 2
		eng, err := New(cfg)
		require.NoError(t, err)

		n := copy(eng.LeftInput(), `{"a":1,"b":2,"c":3}`)
		require.Equal(t, StatusObjectKeyLimitExceeded, eng.CommitLeft(uint32(n)))
	})
}

func TestClearAllowsReuse(t *testing.T) {
	eng := newTestEngine(t)
	runSession(t, eng, `{"a":1}`, `{"a":2}`)
	require.Len(t, eng.Entries(), 1)

	eng.Clear()
	require.Zero(t, eng.ResultLen())
	require.Nil(t, eng.Entries())
	require.Empty(t, eng.LastError())

	// A fresh session over different documents works and resolves
	// fresh paths.
	runSession(t, eng, `{"x":[1]}`, `{"x":[2]}`)
	paths, err := DecodeSymbols(eng.BatchResolveSymbols())
	require.NoError(t, err)
	require.Equal(t, []string{"$.x.[0]"}, paths)
}

// gjsonPath converts an engine path string into gjson syntax:
// "$.xs.[1].name" -> "xs.1.name".
func gjsonPath(p string) string {
	if p == "$" {
		return "@this"
	}
	segs := strings.Split(strings.TrimPrefix(p, "$."), ".")
	for i, s := range segs {
		if strings.HasPrefix(s, "[") {
			segs[i] = strings.TrimSuffix(strings.TrimPrefix(s, "["), "]")
		}
	}
	return strings.Join(segs, ".")
}

// TestSpanValidity cross-checks every reported span against an
// independent JSON navigator: the bytes each entry points at must be
// the value gjson finds at the same path.
func TestSpanValidity(t *testing.T) {
	left := `{"name":"ann","age":41,"tags":["x","y"],"addr":{"city":"Oslo","zip":"0150"}}`
	right := `{"name":"ann","age":42,"tags":["x","z"],"addr":{"city":"Oslo"},"email":"a@b.c"}`

	eng := newTestEngine(t)
	runSession(t, eng, left, right)

	paths, err := DecodeSymbols(eng.BatchResolveSymbols())
	require.NoError(t, err)
	require.NotEmpty(t, eng.Entries())

	for i, e := range eng.Entries() {
		gp := gjsonPath(paths[i])
		if e.Op != diff.Added {
			res := gjson.Get(left, gp)
			require.True(t, res.Exists(), "left %s", paths[i])
			require.Equal(t, valueText(res), string(eng.LeftSpan(e)), "left %s", paths[i])
		}
		if e.Op != diff.Removed {
			res := gjson.Get(right, gp)
			require.True(t, res.Exists(), "right %s", paths[i])
			require.Equal(t, valueText(res), string(eng.RightSpan(e)), "right %s", paths[i])
		}
	}
}

// valueText returns the bytes the engine spans: string contents
// without quotes, raw literals otherwise.
func valueText(res gjson.Result) string {
	if res.Type == gjson.String {
		return res.Str
	}
	return res.Raw
}

// TestSingleMutationDiff mutates one leaf with an independent JSON
// editor and checks the diff reports exactly that path.
func TestSingleMutationDiff(t *testing.T) {
	base := `{"name":"ann","profile":{"city":"Oslo","zip":"0150"},"tags":["a","b"]}`

	t.Run("modified", func(t *testing.T) {
		mutated, err := sjson.Set(base, "profile.city", "Berlin")
		require.NoError(t, err)

		eng := newTestEngine(t)
		runSession(t, eng, base, mutated)

		entries := eng.Entries()
		require.Len(t, entries, 1)
		require.Equal(t, diff.Modified, entries[0].Op)
		require.Equal(t, "$.profile.city", eng.PathString(entries[0].PathID))
		require.Equal(t, "Berlin", string(eng.RightSpan(entries[0])))
	})

	t.Run("added", func(t *testing.T) {
		mutated, err := sjson.Set(base, "profile.country", "NO")
		require.NoError(t, err)

		eng := newTestEngine(t)
		runSession(t, eng, base, mutated)

		entries := eng.Entries()
		require.Len(t, entries, 1)
		require.Equal(t, diff.Added, entries[0].Op)
		require.Equal(t, "$.profile.country", eng.PathString(entries[0].PathID))
	})
}

func TestIdentityDiffThroughEngine(t *testing.T) {
	doc := `{"a":[1,{"b":null},true],"c":{"d":"e"}}`
	eng := newTestEngine(t)
	runSession(t, eng, doc, doc)

	require.Empty(t, eng.Entries())
	require.Equal(t, uint32(16), eng.ResultLen(), "header-only frame")
}
