package ctest

import (
	"crypto/sha256"
	"math/rand/v2"
	"testing"
)

// RandForTest returns a pseudorandom source seeded from the test name,
// so every run of a given test sees the same sequence.
func RandForTest(t testing.TB) *rand.Rand {
	// SHA-256 output is exactly the size of a ChaCha8 seed,
	// and hashing means long test names are not truncated.
	seed := sha256.Sum256([]byte(t.Name()))
	return rand.New(rand.NewChaCha8(seed))
}

// RandomWordsForTest returns n pseudorandom words
// derived from a seed based on the test name.
func RandomWordsForTest(t testing.TB, n int) []uint64 {
	rng := RandForTest(t)
	out := make([]uint64, n)
	for i := range out {
		out[i] = rng.Uint64()
	}
	return out
}
