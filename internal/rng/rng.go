// Package rng provides the seeded pseudo-random bit source the search
// engine draws on for initial assignments, clause/variable selection,
// and the random-walk noise step.
package rng

import "math/rand"

// Source is a deterministic, seedable source of uniform integers and
// reals. Two Sources built from the same seed produce identical output
// given identical call sequences.
//
// Source wraps math/rand rather than hand-rolling a generator: Go's
// runtime algorithm is an additive lagged-Fibonacci generator, not the
// "trivial" linear congruential generator the spec rules out, so the
// standard library already satisfies the requirement.
type Source struct {
	r *rand.Rand
}

// New builds a Source seeded with the given 64-bit seed.
func New(seed int64) *Source {
	return &Source{r: rand.New(rand.NewSource(seed))}
}

// UniformInt returns a uniform integer in [0, n). Panics if n <= 0.
func (s *Source) UniformInt(n int) int {
	return s.r.Intn(n)
}

// UniformReal returns a uniform float64 in [0, 1).
func (s *Source) UniformReal() float64 {
	return s.r.Float64()
}
