package txn

import "math/rand/v2"

// Source is the randomness capability used by the simulator.
// *rand.Rand from math/rand/v2 satisfies it.
type Source interface {
	// IntN returns a value in [0, n). It panics if n <= 0.
	IntN(n int) int
	// Float64 returns a value in [0.0, 1.0).
	Float64() float64
}

// SourceFactory returns an independent Source for the batch with the given index.
// It is called once per batch task, from that task's goroutine.
type SourceFactory func(batchIndex int) Source

// NewSourceFactory returns a factory of PCG generators.
// With a nil seed every batch gets a randomly seeded generator. With a seed,
// batch i always receives PCG(seed, i), so runs are reproducible.
func NewSourceFactory(seed *uint64) SourceFactory {
	if seed == nil {
		return func(int) Source {
			//nolint:gosec // Simulated latency does not need a cryptographic generator.
			return rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
		}
	}

	s := *seed
	return func(batchIndex int) Source {
		//nolint:gosec // Reproducible sequences are the point of a seeded source.
		return rand.New(rand.NewPCG(s, uint64(batchIndex)))
	}
}
