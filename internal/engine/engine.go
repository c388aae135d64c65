package engine

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/roach88/diffcore/internal/diff"
	"github.com/roach88/diffcore/internal/jpath"
	"github.com/roach88/diffcore/internal/parser"
)

// phase tracks the session's position in the mandatory call order.
type phase uint8

const (
	phaseIdle phase = iota
	phaseLeftCommitted
	phaseRightCommitted
	phaseSealed
)

func (p phase) String() string {
	switch p {
	case phaseIdle:
		return "idle"
	case phaseLeftCommitted:
		return "left committed"
	case phaseRightCommitted:
		return "right committed"
	case phaseSealed:
		return "sealed"
	}
	return "unknown"
}

// Engine owns the diff pipeline for one session at a time.
//
// Input buffers are allocated once at construction and reused across
// sessions; token vectors and the arena are cleared between sessions
// but keep capacity. See the package documentation for the phase
// contract.
type Engine struct {
	cfg Config

	leftInput  []byte
	rightInput []byte
	leftLen    uint32
	rightLen   uint32

	arena       *jpath.Arena
	leftParser  *parser.Parser
	rightParser *parser.Parser

	entries   []diff.Entry
	resultBuf []byte
	symbolBuf []byte

	phase   phase
	lastErr *EngineError
	logger  *slog.Logger
}

// Option configures an Engine at construction.
type Option func(*Engine)

// WithLogger routes the engine's debug logging. The default discards.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) { e.logger = l }
}

// New allocates an Engine with the given limits. Each input buffer
// holds MaxInputSize/2 bytes.
func New(cfg Config, opts ...Option) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("engine: %w", err)
	}

	half := cfg.MaxInputSize / 2
	e := &Engine{
		cfg:         cfg,
		leftInput:   make([]byte, half),
		rightInput:  make([]byte, half),
		arena:       jpath.NewArena(),
		leftParser:  parser.New(cfg.MaxObjectKeys),
		rightParser: parser.New(cfg.MaxObjectKeys),
		resultBuf:   make([]byte, 0, 16384),
		symbolBuf:   make([]byte, 0, 4096),
		logger:      slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// Config returns the limits the engine was built with.
func (e *Engine) Config() Config { return e.cfg }

// LeftInput returns the host-writable left buffer at full capacity.
func (e *Engine) LeftInput() []byte { return e.leftInput }

// RightInput returns the host-writable right buffer at full capacity.
func (e *Engine) RightInput() []byte { return e.rightInput }

// LeftBytes returns the committed prefix of the left buffer.
func (e *Engine) LeftBytes() []byte { return e.leftInput[:e.leftLen] }

// RightBytes returns the committed prefix of the right buffer.
func (e *Engine) RightBytes() []byte { return e.rightInput[:e.rightLen] }

// CommitLeft parses the first n bytes of the left buffer. Must be the
// first commit of a session.
func (e *Engine) CommitLeft(n uint32) Status {
	return e.commit(n, phaseIdle, phaseLeftCommitted, e.leftParser, e.leftInput, &e.leftLen, "commit left")
}

// CommitRight parses the first n bytes of the right buffer. Must
// follow a successful CommitLeft.
func (e *Engine) CommitRight(n uint32) Status {
	return e.commit(n, phaseLeftCommitted, phaseRightCommitted, e.rightParser, e.rightInput, &e.rightLen, "commit right")
}

func (e *Engine) commit(n uint32, want, next phase, p *parser.Parser, buf []byte, committed *uint32, op string) Status {
	if e.phase == phaseSealed {
		e.fail(StatusEngineSealed, op, nil, "%s", StatusEngineSealed)
		return StatusEngineSealed
	}
	if e.phase != want {
		e.fail(StatusError, op, nil, "phase is %s, want %s", e.phase, want)
		return StatusError
	}
	if int(n) > len(buf) {
		e.fail(StatusInputLimitExceeded, op, nil, "%d bytes exceed buffer capacity %d", n, len(buf))
		return StatusInputLimitExceeded
	}

	if err := p.Parse(buf[:n], e.arena); err != nil {
		if errors.Is(err, parser.ErrObjectKeyLimit) {
			e.fail(StatusObjectKeyLimitExceeded, op, err, "%v", err)
			return StatusObjectKeyLimitExceeded
		}
		e.fail(StatusError, op, err, "%v", err)
		return StatusError
	}

	*committed = n
	e.phase = next
	e.logger.Debug("side committed",
		"op", op,
		"bytes", n,
		"tokens", len(p.Tokens()),
		"paths", e.arena.Len())
	return StatusOK
}

// Finalize runs the comparator and encodes the result frame. It seals
// the session: no further commits are accepted until Clear. The
// returned frame is valid until the next Finalize, commit or Clear.
//
// Finalize is infallible when both commits succeeded; it returns nil
// only on a phase violation.
func (e *Engine) Finalize() []byte {
	if e.phase != phaseRightCommitted {
		e.fail(StatusError, "finalize", nil, "phase is %s, want %s", e.phase, phaseRightCommitted)
		return nil
	}
	start := time.Now()

	e.entries = diff.Compute(e.leftParser, e.rightParser)
	e.resultBuf = appendResultFrame(e.resultBuf[:0], e.entries)
	e.phase = phaseSealed

	e.logger.Debug("session finalized",
		"entries", len(e.entries),
		"frame_bytes", len(e.resultBuf),
		"elapsed", time.Since(start))
	return e.resultBuf
}

// Result returns the current result frame, or nil before Finalize.
func (e *Engine) Result() []byte {
	if e.phase != phaseSealed {
		return nil
	}
	return e.resultBuf
}

// ResultLen returns the byte length of the current result frame.
func (e *Engine) ResultLen() uint32 { return uint32(len(e.resultBuf)) }

// Entries returns the diff entries of the sealed session. In-process
// hosts can use these directly instead of decoding the result frame.
func (e *Engine) Entries() []diff.Entry {
	if e.phase != phaseSealed {
		return nil
	}
	return e.entries
}

// BatchResolveSymbols encodes the symbol frame for the current diff
// entries. Must follow Finalize; returns nil otherwise. The frame is
// valid until the next call invalidating engine buffers.
func (e *Engine) BatchResolveSymbols() []byte {
	if e.phase != phaseSealed {
		e.fail(StatusError, "batch resolve symbols", nil, "phase is %s, want %s", e.phase, phaseSealed)
		return nil
	}
	e.symbolBuf = appendSymbolFrame(e.symbolBuf[:0], e.entries, e.arena)
	return e.symbolBuf
}

// PathString renders a PathID from the shared arena.
func (e *Engine) PathString(id jpath.PathID) string {
	return e.arena.PathString(id)
}

// LeftSpan returns the left input bytes an entry points at, or nil
// for Added entries. Spans always land inside the committed prefix.
func (e *Engine) LeftSpan(en diff.Entry) []byte {
	if en.Op == diff.Added {
		return nil
	}
	return e.LeftBytes()[en.LeftOffset : en.LeftOffset+en.LeftLen]
}

// RightSpan returns the right input bytes an entry points at, or nil
// for Removed entries. Spans always land inside the committed prefix.
func (e *Engine) RightSpan(en diff.Entry) []byte {
	if en.Op == diff.Removed {
		return nil
	}
	return e.RightBytes()[en.RightOffset : en.RightOffset+en.RightLen]
}

// Err returns the typed error recorded by the most recent failure, or
// nil. Use the Is*Error helpers to branch on the category.
func (e *Engine) Err() error {
	if e.lastErr == nil {
		return nil
	}
	return e.lastErr
}

// LastError returns the message recorded by the most recent failure,
// or the empty string. This is the string the C boundary exposes via
// get_last_error.
func (e *Engine) LastError() string {
	if e.lastErr == nil {
		return ""
	}
	return e.lastErr.Error()
}

// Clear resets parsers, arena and output buffers for a new session.
// Input buffers remain allocated; every previously returned slice is
// invalidated.
func (e *Engine) Clear() {
	e.leftParser.Clear()
	e.rightParser.Clear()
	e.arena.Clear()
	e.entries = nil
	e.resultBuf = e.resultBuf[:0]
	e.symbolBuf = e.symbolBuf[:0]
	e.leftLen = 0
	e.rightLen = 0
	e.phase = phaseIdle
	e.lastErr = nil
}

func (e *Engine) fail(s Status, op string, cause error, format string, args ...any) {
	e.lastErr = newEngineError(s, op, cause, format, args...)
	e.logger.Debug("engine error", "status", s, "detail", e.lastErr.Error())
}
