// Package rng provides the random capability injected into night
// resolution. Every draw goes through an explicit Source so that a resolved
// night can be replayed exactly from its recorded seed.
package rng

import (
	"crypto/rand"
	"encoding/binary"
	"math"
	mrand "math/rand"
)

// Source is the full random surface the resolver is allowed to touch.
// Implementations must be deterministic for a given seed and call sequence.
type Source interface {
	// Uniform returns a draw in [0, 1).
	Uniform() float64
	// Die returns a draw in 1..n. It panics when n < 1, which is always a
	// caller bug: callers gate on non-empty candidate sets first.
	Die(n int) int
	// Shuffle permutes n elements through the swap callback, matching the
	// contract of sort.Slice style swaps.
	Shuffle(n int, swap func(i, j int))
}

type seeded struct {
	r *mrand.Rand
}

// New returns a deterministic Source for the given seed. Resolution code
// receives one of these per night; tests pin the seed.
func New(seed int64) Source {
	return &seeded{r: mrand.New(mrand.NewSource(seed))}
}

func (s *seeded) Uniform() float64 { return s.r.Float64() }

func (s *seeded) Die(n int) int {
	if n < 1 {
		panic("rng: die with no faces")
	}
	return s.r.Intn(n) + 1
}

func (s *seeded) Shuffle(n int, swap func(i, j int)) { s.r.Shuffle(n, swap) }

// NewSeed draws a fresh seed from the operating system's entropy pool. The
// seed is recorded alongside the night it resolves so the pass can be
// replayed later.
func NewSeed() int64 {
	var b [8]byte
	if _, err := rand.Read(b[:]); err != nil {
		// crypto/rand failing is effectively unrecoverable; fall back to a
		// constant rather than abort resolution.
		return 1
	}
	seed := int64(binary.BigEndian.Uint64(b[:]) & math.MaxInt64)
	if seed == 0 {
		seed = 1
	}
	return seed
}
