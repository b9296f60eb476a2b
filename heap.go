package cbt

import (
	"fmt"

	"github.com/gordian-engine/cbt/bitfield"
)

// NumBitsPerElement is the width of one storage word.
const NumBitsPerElement = bitfield.WordBits

func lowMask(n uint) uint64 {
	// Shifting by the full word width yields zero in Go,
	// so n == 64 produces all ones.
	return (uint64(1) << n) - 1
}

// HeapGet reads bitCount bits starting at bitOffset in words.
//
// A field may straddle two adjacent words.
// The second word index is clamped to the last word,
// in which case no bits are taken from it.
func HeapGet(words []uint64, bitOffset, bitCount uint) uint {
	checkHeapRange(words, bitOffset, bitCount)

	elementIndex := bitOffset / NumBitsPerElement
	elementOffset := bitOffset % NumBitsPerElement
	nextIndex := min(elementIndex+1, uint(len(words)-1))

	lsbCount := min(bitCount, NumBitsPerElement-elementOffset)
	msbCount := bitCount - lsbCount

	lsb := (words[elementIndex] >> elementOffset) & lowMask(lsbCount)
	msb := words[nextIndex] & lowMask(msbCount)

	return uint(lsb | (msb << lsbCount))
}

// HeapSet writes the low bitCount bits of value at bitOffset in words,
// leaving every other bit untouched.
// It is the inverse of [HeapGet].
func HeapSet(words []uint64, bitOffset, bitCount, value uint) {
	checkHeapRange(words, bitOffset, bitCount)
	if bitCount < NumBitsPerElement && uint64(value)>>bitCount != 0 {
		panic(fmt.Errorf(
			"BUG: value %d does not fit in %d bits", value, bitCount,
		))
	}

	elementIndex := bitOffset / NumBitsPerElement
	elementOffset := bitOffset % NumBitsPerElement
	nextIndex := min(elementIndex+1, uint(len(words)-1))

	lsbCount := min(bitCount, NumBitsPerElement-elementOffset)
	msbCount := bitCount - lsbCount

	lsbMask := lowMask(lsbCount) << elementOffset
	words[elementIndex] = (words[elementIndex] &^ lsbMask) |
		((uint64(value) << elementOffset) & lsbMask)

	msbMask := lowMask(msbCount)
	words[nextIndex] = (words[nextIndex] &^ msbMask) |
		((uint64(value) >> lsbCount) & msbMask)
}

func checkHeapRange(words []uint64, bitOffset, bitCount uint) {
	if bitCount == 0 || bitCount > NumBitsPerElement {
		panic(fmt.Errorf(
			"BUG: heap field width must be in [1, %d] (got %d)",
			NumBitsPerElement, bitCount,
		))
	}
	if total := uint(len(words)) * NumBitsPerElement; bitOffset+bitCount > total {
		panic(fmt.Errorf(
			"BUG: heap field [%d, %d) exceeds storage of %d bits",
			bitOffset, bitOffset+bitCount, total,
		))
	}
}

// BinaryHeapGet reads bitCount bits at bitOffset from the tree's storage.
func (t *Tree) BinaryHeapGet(bitOffset, bitCount uint) uint {
	return HeapGet(t.words(), bitOffset, bitCount)
}

// BinaryHeapSet writes value into bitCount bits at bitOffset
// in the tree's storage.
func (t *Tree) BinaryHeapSet(bitOffset, bitCount, value uint) {
	HeapSet(t.words(), bitOffset, bitCount, value)
}
