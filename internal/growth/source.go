package growth

import "math/rand/v2"

// Source supplies uniform draws in [0, n). *rand.Rand satisfies it.
type Source interface {
	Int64N(n int64) int64
}

// NewSource returns a PCG-backed generator. Equal seeds yield equal draw
// sequences.
func NewSource(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}
