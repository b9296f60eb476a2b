package cbt_test

import (
	"slices"
	"testing"

	"github.com/gordian-engine/cbt"
	"github.com/gordian-engine/cbt/internal/ctest"
	"github.com/stretchr/testify/require"
)

func TestHeap_roundTrip(t *testing.T) {
	t.Parallel()

	rng := ctest.RandForTest(t)

	words := make([]uint64, 4)
	totalBits := uint(len(words)) * cbt.NumBitsPerElement

	for bitCount := uint(1); bitCount <= cbt.NumBitsPerElement; bitCount++ {
		for range 64 {
			off := rng.UintN(totalBits - bitCount + 1)

			var value uint
			if bitCount == cbt.NumBitsPerElement {
				value = uint(rng.Uint64())
			} else {
				value = uint(rng.Uint64N(uint64(1) << bitCount))
			}

			// Fill with noise so that neighboring bits must be preserved.
			for i := range words {
				words[i] = rng.Uint64()
			}
			before := slices.Clone(words)

			cbt.HeapSet(words, off, bitCount, value)
			require.Equalf(
				t, value, cbt.HeapGet(words, off, bitCount),
				"offset=%d count=%d", off, bitCount,
			)

			// Writing the old value back restores the storage exactly.
			cbt.HeapSet(words, off, bitCount, cbt.HeapGet(before, off, bitCount))
			require.Equal(t, before, words)
		}
	}
}

func TestHeap_straddlesWords(t *testing.T) {
	t.Parallel()

	words := make([]uint64, 2)

	// 8 bits starting 4 bits before the word boundary.
	cbt.HeapSet(words, 60, 8, 0xab)
	require.Equal(t, uint64(0xb)<<60, words[0])
	require.Equal(t, uint64(0xa), words[1])
	require.Equal(t, uint(0xab), cbt.HeapGet(words, 60, 8))

	cbt.HeapSet(words, 60, 8, 0)
	require.Equal(t, []uint64{0, 0}, words)
}

func TestHeap_lastWordClamp(t *testing.T) {
	t.Parallel()

	words := []uint64{0, 0xffff}

	// A field that ends exactly at the end of storage
	// must not touch anything but its own bits.
	cbt.HeapSet(words, 120, 8, 0x5a)
	require.Equal(t, uint(0x5a), cbt.HeapGet(words, 120, 8))
	require.Equal(t, uint64(0x5a)<<56|0xffff, words[1])
	require.Zero(t, words[0])

	// Single word storage, last bit.
	one := []uint64{0}
	cbt.HeapSet(one, 63, 1, 1)
	require.Equal(t, uint64(1)<<63, one[0])
	require.Equal(t, uint(1), cbt.HeapGet(one, 63, 1))
}

func TestHeap_contracts(t *testing.T) {
	t.Parallel()

	words := make([]uint64, 1)
	require.Panics(t, func() { cbt.HeapGet(words, 60, 8) })
	require.Panics(t, func() { cbt.HeapGet(words, 0, 0) })
	require.Panics(t, func() { cbt.HeapGet(make([]uint64, 2), 0, 65) })
	require.Panics(t, func() { cbt.HeapSet(words, 0, 2, 4) })
}
