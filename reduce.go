package cbt

import "fmt"

// prepassLevels is the number of levels above the deepest one
// that the word-parallel prepass produces from a single storage word.
const prepassLevels = 6

// Masks selecting the low half of each 2, 4, 8, 16 and 32-bit field.
var swarMasks = [prepassLevels - 1]uint64{
	0x5555555555555555,
	0x3333333333333333,
	0x0f0f0f0f0f0f0f0f,
	0x00ff00ff00ff00ff,
	0x0000ffff0000ffff,
}

// SumReduction recomputes every counter above the deepest level
// as the sum of its two children, restoring NumNodes
// and the per-subtree leaf counts after splits and merges.
//
// Levels are processed from maxDepth-1 up to the root.
// Every node within a level is independent of the others,
// but a level can only be reduced once the level below it is complete.
func (t *Tree) SumReduction() {
	maxDepth := t.MaxDepth()
	if maxDepth < prepassLevels {
		t.sumReductionNaive()
		return
	}

	t.reductionPrepass(maxDepth)
	for d := int(maxDepth) - prepassLevels - 1; d >= 0; d-- {
		t.ReduceLevel(uint(d))
	}
}

// sumReductionNaive is the reference reduction: one level at a time,
// one node at a time.
func (t *Tree) sumReductionNaive() {
	for d := int(t.MaxDepth()) - 1; d >= 0; d-- {
		t.ReduceLevel(uint(d))
	}
}

// ReduceLevel sets every counter at depth to the sum of its children.
// The level below depth must already be reduced.
//
// This is the unit of work for a scheduler that dispatches
// one pass per level.
func (t *Tree) ReduceLevel(depth uint) {
	if maxDepth := t.MaxDepth(); depth >= maxDepth {
		panic(fmt.Errorf(
			"BUG: cannot reduce depth %d of a tree with max depth %d",
			depth, maxDepth,
		))
	}

	for h := uint(1) << depth; h < uint(2)<<depth; h++ {
		left := LeftChildIndex(h)
		t.SetData(h, t.GetData(left)+t.GetData(left|1))
	}
}

// reductionPrepass produces the six levels directly above the deepest one
// from the deepest level's bitfield, 64 leaves at a time.
//
// With maxDepth >= 6, the deepest level starts at bit 3*2^maxDepth,
// which is word aligned, so leaf j is bit j%64 of the (j/64)th leaf word.
// Successive pairwise sums within the word (the first steps of a
// SWAR population count) yield the counters for 2, 4, 8, 16, 32
// and finally all 64 leaves.
func (t *Tree) reductionPrepass(maxDepth uint) {
	words := t.words()
	leafCount := uint(1) << maxDepth
	firstLeafWord := 3 * leafCount / NumBitsPerElement
	nLeafWords := leafCount / NumBitsPerElement

	for k := range nLeafWords {
		x := words[firstLeafWord+k]

		for m := uint(1); m <= prepassLevels; m++ {
			fieldBits := uint(1) << m
			if m < prepassLevels {
				mask := swarMasks[m-1]
				x = (x & mask) + ((x >> (fieldBits / 2)) & mask)
			} else {
				x = (x & 0xffffffff) + (x >> 32)
			}

			nodesPerWord := uint(NumBitsPerElement) >> m
			first := (uint(1) << (maxDepth - m)) + k*nodesPerWord
			fieldMask := lowMask(fieldBits)
			for i := range nodesPerWord {
				t.SetData(first+i, uint((x>>(i*fieldBits))&fieldMask))
			}
		}
	}
}
