package nn

import (
	"math"
	"math/rand/v2"
)

// NewRand returns the random source used for weight initialization.
// A zero seed still yields a deterministic stream.
func NewRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// xavierUniform fills data from U(-b, b) with b = sqrt(6/(fanIn+fanOut)).
func xavierUniform(data []float64, fanIn, fanOut int, rng *rand.Rand) {
	bound := math.Sqrt(6.0 / float64(fanIn+fanOut))
	for i := range data {
		data[i] = (rng.Float64()*2 - 1) * bound
	}
}
