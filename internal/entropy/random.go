// Package entropy provides the single random source shared by every engine in a turn.
// All rolls go through a Source so a fixed seed reproduces a turn exactly.
package entropy

import (
	"crypto/rand"
	"encoding/binary"
	mrand "math/rand"
)

// Source is the random stream consumed by the engines.
type Source interface {
	// Float64 returns a value in [0, 1).
	Float64() float64
	// Intn returns a value in [0, n). n <= 0 yields 0.
	Intn(n int) int
	// Int63 returns a non-negative 63-bit integer.
	Int63() int64
}

// Seeded is a deterministic Source backed by math/rand.
type Seeded struct {
	seed int64
	rng  *mrand.Rand
}

// NewSeeded creates a Source from seed. A zero seed draws one from crypto/rand.
func NewSeeded(seed int64) *Seeded {
	if seed == 0 {
		seed = CryptoSeed()
	}
	return &Seeded{
		seed: seed,
		rng:  mrand.New(mrand.NewSource(seed)),
	}
}

// Seed returns the seed the source was created with.
func (s *Seeded) Seed() int64 { return s.seed }

func (s *Seeded) Float64() float64 { return s.rng.Float64() }

func (s *Seeded) Int63() int64 { return s.rng.Int63() }

func (s *Seeded) Intn(n int) int {
	if n <= 0 {
		return 0
	}
	return s.rng.Intn(n)
}

// CryptoSeed returns a non-zero seed from crypto/rand.
func CryptoSeed() int64 {
	var buf [8]byte
	if _, err := rand.Read(buf[:]); err != nil {
		// This should never happen; fall back to a fixed seed.
		return 42
	}
	seed := int64(binary.LittleEndian.Uint64(buf[:]) >> 1)
	if seed == 0 {
		seed = 42
	}
	return seed
}

// Chance reports whether a percentage roll succeeds: a draw in [0,100) below pct.
// pct <= 0 never succeeds, pct >= 100 always does.
func Chance(src Source, pct float64) bool {
	return src.Float64()*100 < pct
}

// Between returns an integer in [lo, hi].
func Between(src Source, lo, hi int) int {
	if hi <= lo {
		return lo
	}
	return lo + src.Intn(hi-lo+1)
}
