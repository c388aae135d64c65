// Package testutil provides deterministic helpers for diff tests.
package testutil

import (
	"bytes"
	"math/rand"
	"strconv"
)

// Generator produces pseudo-random JSON documents from a fixed seed.
//
// The same seed always yields the same document, so property tests
// (path closure, identity diff, antisymmetry) are reproducible
// without recording fixtures. Keys are drawn from a small alphabet on
// purpose: overlapping paths between two generated documents are what
// exercise the comparator.
type Generator struct {
	rng *rand.Rand
}

// NewGenerator creates a Generator for the given seed.
func NewGenerator(seed int64) *Generator {
	return &Generator{rng: rand.New(rand.NewSource(seed))}
}

// Document returns one JSON document with containers nested at most
// depth levels deep.
func (g *Generator) Document(depth int) []byte {
	var buf bytes.Buffer
	g.value(&buf, depth)
	return buf.Bytes()
}

func (g *Generator) value(buf *bytes.Buffer, depth int) {
	if depth <= 0 {
		g.scalar(buf)
		return
	}
	switch g.rng.Intn(4) {
	case 0:
		g.object(buf, depth)
	case 1:
		g.array(buf, depth)
	default:
		g.scalar(buf)
	}
}

func (g *Generator) object(buf *bytes.Buffer, depth int) {
	buf.WriteByte('{')
	n := g.rng.Intn(5)
	seen := make(map[string]bool, n)
	wrote := false
	for i := 0; i < n; i++ {
		key := "k" + strconv.Itoa(g.rng.Intn(8))
		if seen[key] {
			continue
		}
		seen[key] = true
		if wrote {
			buf.WriteByte(',')
		}
		wrote = true
		buf.WriteByte('"')
		buf.WriteString(key)
		buf.WriteString(`":`)
		g.value(buf, depth-1)
	}
	buf.WriteByte('}')
}

func (g *Generator) array(buf *bytes.Buffer, depth int) {
	buf.WriteByte('[')
	n := g.rng.Intn(4)
	for i := 0; i < n; i++ {
		if i > 0 {
			buf.WriteByte(',')
		}
		g.value(buf, depth-1)
	}
	buf.WriteByte(']')
}

func (g *Generator) scalar(buf *bytes.Buffer) {
	switch g.rng.Intn(5) {
	case 0:
		buf.WriteString("null")
	case 1:
		buf.WriteString(strconv.FormatBool(g.rng.Intn(2) == 0))
	case 2:
		buf.WriteString(strconv.Itoa(g.rng.Intn(10000) - 5000))
	case 3:
		buf.WriteString(strconv.FormatFloat(g.rng.Float64()*100, 'f', 3, 64))
	default:
		buf.WriteByte('"')
		buf.WriteString("v" + strconv.Itoa(g.rng.Intn(1000)))
		buf.WriteByte('"')
	}
}
