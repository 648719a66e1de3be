// Package transform holds post-generation adjustments to piece records.
package transform

import (
	"math/rand/v2"
	"slices"

	"github.com/matzehuels/jigsaw/pkg/puzzle"
)

// scatterStream separates the scatter draws from the edge draws of the same
// seed, so piece shapes never depend on the scatter strength.
const scatterStream = 0x5ca77e12

// ScatterRNG returns the random source Scatter uses for a run seeded with
// seed.
func ScatterRNG(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed^scatterStream, seed^0xdeadbeef))
}

// Scatter returns a copy of records where each piece carries a placement
// delta with DX and DY drawn independently from [-strength, strength].
// For strength ≤ 0 the deltas are cleared and rng is not used.
func Scatter(records []puzzle.PieceRecord, strength float64, rng *rand.Rand) []puzzle.PieceRecord {
	out := slices.Clone(records)
	for i := range out {
		if !(strength > 0) {
			out[i].PlacementDelta = nil
			continue
		}
		out[i].PlacementDelta = &puzzle.Delta{
			DX: (rng.Float64()*2 - 1) * strength,
			DY: (rng.Float64()*2 - 1) * strength,
		}
	}
	return out
}
