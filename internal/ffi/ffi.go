// Package ffi maps opaque numeric handles to live engines for the C
// boundary.
//
// The C surface cannot hold Go pointers, so hosts receive a uint64
// handle instead. Handles carry a magic tag in their low 32 bits;
// lookups validate the tag and the registry entry, so a stale
// (destroyed) or forged handle degrades to InvalidHandle rather than
// touching freed state. Destroying a handle a second time is a no-op
// that reports Ok.
//
// The registry itself is the only shared state and is mutex-guarded;
// each engine remains single-threaded per the engine contract.
package ffi

import (
	"sync"

	"github.com/roach88/diffcore/internal/engine"
)

// engineMagic tags valid handles (0xD1FFC0AE).
const engineMagic = 0xD1FFC0AE

// Handle is an opaque engine reference: registry id in the high 32
// bits, magic tag in the low 32. The zero Handle is never valid.
type Handle uint64

func makeHandle(id uint32) Handle {
	return Handle(uint64(id)<<32 | uint64(engineMagic))
}

func (h Handle) id() (uint32, bool) {
	if uint32(h) != engineMagic {
		return 0, false
	}
	return uint32(h >> 32), true
}

var registry = struct {
	mu      sync.Mutex
	nextID  uint32
	engines map[uint32]*engine.Engine
}{
	nextID:  1,
	engines: make(map[uint32]*engine.Engine),
}

// CreateEngine builds an engine with the given buffer limits and
// registers it. Zero arguments keep the corresponding default.
// Returns 0 on failure.
func CreateEngine(maxMemory, maxInput uint32) Handle {
	cfg := engine.DefaultConfig()
	if maxMemory > 0 {
		cfg.MaxMemoryBytes = maxMemory
	}
	if maxInput > 0 {
		cfg.MaxInputSize = maxInput
	}
	return register(cfg)
}

// CreateEngineFromFrame builds an engine from a binary config frame,
// for hosts that stage a full configuration instead of the two limit
// words. An empty frame selects the default config. Returns 0 on an
// invalid frame.
func CreateEngineFromFrame(configFrame []byte) Handle {
	cfg := engine.DefaultConfig()
	if len(configFrame) > 0 {
		parsed, err := engine.ConfigFromBytes(configFrame)
		if err != nil {
			return 0
		}
		cfg = parsed
	}
	return register(cfg)
}

func register(cfg engine.Config) Handle {
	eng, err := engine.New(cfg)
	if err != nil {
		return 0
	}

	registry.mu.Lock()
	defer registry.mu.Unlock()
	id := registry.nextID
	registry.nextID++
	registry.engines[id] = eng
	return makeHandle(id)
}

// Lookup resolves a handle to its engine.
func Lookup(h Handle) (*engine.Engine, bool) {
	id, ok := h.id()
	if !ok {
		return nil, false
	}
	registry.mu.Lock()
	defer registry.mu.Unlock()
	eng, ok := registry.engines[id]
	return eng, ok
}

// DestroyEngine unregisters a handle. Destroying an already-destroyed
// or never-created handle reports Ok, matching the double-free-safe
// contract of the boundary; a malformed handle reports InvalidHandle.
func DestroyEngine(h Handle) engine.Status {
	if h == 0 {
		return engine.StatusOK
	}
	id, ok := h.id()
	if !ok {
		return engine.StatusInvalidHandle
	}
	registry.mu.Lock()
	defer registry.mu.Unlock()
	delete(registry.engines, id)
	return engine.StatusOK
}

// ClearEngine resets the engine behind h for a new session.
func ClearEngine(h Handle) engine.Status {
	eng, ok := Lookup(h)
	if !ok {
		return engine.StatusInvalidHandle
	}
	eng.Clear()
	return engine.StatusOK
}

// CommitLeft applies the 0/-1 ABI contract over Engine.CommitLeft.
func CommitLeft(h Handle, n uint32) int32 {
	eng, ok := Lookup(h)
	if !ok {
		return -1
	}
	if s := eng.CommitLeft(n); !s.IsOK() {
		return -1
	}
	return 0
}

// CommitRight applies the 0/-1 ABI contract over Engine.CommitRight.
func CommitRight(h Handle, n uint32) int32 {
	eng, ok := Lookup(h)
	if !ok {
		return -1
	}
	if s := eng.CommitRight(n); !s.IsOK() {
		return -1
	}
	return 0
}
