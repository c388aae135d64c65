// Package parser tokenizes a JSON document in a single byte-oriented
// pass, attributing every leaf value to an interned PathID.
//
// The parser is deliberately lenient: it is the front end of a diff
// engine, not a validator. Unexpected bytes outside of string
// literals are skipped, and structurally malformed input produces a
// best-effort token stream. The only hard failures are an input that
// ends inside a string literal and an object that exceeds the
// configured key limit.
//
// Alongside the token stream the parser maintains a PathID-indexed
// value lookup table recording, for each path, the most recent Value
// token emitted at it. The comparator uses this table for O(1) joins
// between the two sides of a diff.
package parser
