// Package random provides the seeded pseudo-random stream shared by one
// synthesis run and the weighted selector drawn from it.
//
// A Stream is not safe for concurrent use. Every draw advances the stream, so
// callers must consume it in a fixed order for runs to be reproducible.
package random

import (
	"fmt"
	"math/rand/v2"
)

// Stream is an explicitly passed source of uniform draws.
type Stream struct {
	rng *rand.Rand
}

// NewStream returns a stream whose sequence is fully determined by seed.
func NewStream(seed int64) *Stream {
	s := uint64(seed)
	return &Stream{rng: rand.New(rand.NewPCG(s, s^0x9e3779b97f4a7c15))}
}

// Float64 returns a uniform draw in [0, 1).
func (s *Stream) Float64() float64 {
	return s.rng.Float64()
}

// Uniform returns a uniform draw in [lo, hi).
func (s *Stream) Uniform(lo, hi float64) float64 {
	return lo + (hi-lo)*s.rng.Float64()
}

// IntRange returns a uniform integer in [lo, hi], both ends inclusive.
func (s *Stream) IntRange(lo, hi int) (int, error) {
	if hi < lo {
		return 0, fmt.Errorf("empty integer range [%d, %d]", lo, hi)
	}

	return lo + s.rng.IntN(hi-lo+1), nil
}

// Sample draws k distinct indices from [0, n) without replacement, in draw
// order.
func (s *Stream) Sample(n, k int) ([]int, error) {
	if k < 0 || k > n {
		return nil, fmt.Errorf("cannot sample %d distinct values from %d", k, n)
	}

	pool := make([]int, n)
	for i := range pool {
		pool[i] = i
	}

	// Partial Fisher-Yates: the first k slots end up holding the sample.
	for i := range k {
		j := i + s.rng.IntN(n-i)
		pool[i], pool[j] = pool[j], pool[i]
	}

	return pool[:k:k], nil
}
