// Package id assigns record identifiers on insert.
package id

import (
	"sync/atomic"
	"time"

	fid "github.com/amterp/flexid"
)

// Generator produces unique, roughly time-ordered identifiers.
type Generator interface {
	Generate() string
}

// FlexGenerator wraps a flexid generator.
type FlexGenerator struct {
	g *fid.Generator
}

// NewFlexGenerator returns the generator used by the record stores.
// IDs are short base-62 strings: a 10ms tick since the epoch plus
// four random characters.
func NewFlexGenerator() *FlexGenerator {
	epoch := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	config := fid.NewConfig().
		WithEpoch(epoch).
		WithTickSize(10 * time.Millisecond).
		WithNumRandomChars(4)

	return &FlexGenerator{g: fid.MustNewGenerator(config)}
}

// Generate returns a new ID.
func (f *FlexGenerator) Generate() string {
	return f.g.MustGenerate()
}

var defaultGenerator atomic.Pointer[FlexGenerator]

// Generate returns a new ID from the shared generator.
func Generate() string {
	g := defaultGenerator.Load()
	if g == nil {
		defaultGenerator.CompareAndSwap(nil, NewFlexGenerator())
		g = defaultGenerator.Load()
	}
	return g.Generate()
}
