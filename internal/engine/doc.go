// Package engine drives the diff pipeline.
//
// An Engine owns the two input buffers, one shared path arena, a
// parser per side, and the reusable result and symbol buffers. The
// host stages raw JSON bytes into the input buffers, commits each
// side, finalizes, and reads back two little-endian binary frames:
// the result frame (diff entries) and, on demand, the symbol frame
// (resolved path strings).
//
// PHASE ORDER:
//
// A session moves strictly through idle -> left committed -> right
// committed -> sealed. The arena is mutated by both parsers but never
// concurrently - the left parse completes before the right parse
// begins - so the pipeline needs no locking. Every transition is
// asserted; out-of-order calls fail with a status code instead of
// corrupting the session. Clear returns the engine to idle and
// invalidates every previously returned buffer.
//
// An Engine is not safe for concurrent use. Hosts serialize calls on
// a handle; independent engines are fully isolated.
package engine
