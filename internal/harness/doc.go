// Package harness runs conformance scenarios against the diff
// pipeline.
//
// A scenario is a YAML document naming two JSON inputs and a set of
// assertions over the resolved diff entries. Scenarios execute the
// full pipeline - commit, finalize, symbol resolution - exactly as a
// host would drive it, and can additionally be snapshotted against
// golden files for regression coverage.
package harness
