// Package cbttest contains test helpers for code built on [cbt.Tree].
//
// [NaiveTree] keeps one counter per node in its own slot
// instead of the packed layout,
// which makes it a convenient oracle for the packed implementation.
package cbttest

import (
	"fmt"
	"testing"

	"github.com/gordian-engine/cbt"
	"github.com/stretchr/testify/require"
)

// NaiveTree is the non-compact encoding of a concurrent binary tree:
// counters are indexed directly by heap index.
type NaiveTree struct {
	MaxDepth uint

	// Data[h] is the counter for heap index h; Data[0] is unused.
	Data []uint
}

// NewNaiveTree returns a reduced NaiveTree
// with every node at initialDepth active.
func NewNaiveTree(maxDepth, initialDepth uint) *NaiveTree {
	if initialDepth > maxDepth {
		panic(fmt.Errorf(
			"BUG: initial depth %d exceeds max depth %d", initialDepth, maxDepth,
		))
	}
	t := &NaiveTree{
		MaxDepth: maxDepth,
		Data:     make([]uint, uint(2)<<maxDepth),
	}
	for h := uint(1) << initialDepth; h < uint(2)<<initialDepth; h++ {
		t.Data[t.bitfieldHeapIndex(h)] = 1
	}
	t.SumReduction()
	return t
}

func (t *NaiveTree) bitfieldHeapIndex(h uint) uint {
	return h << (t.MaxDepth - cbt.Depth(h))
}

// SplitNode mirrors [*cbt.Tree.SplitNode].
func (t *NaiveTree) SplitNode(h uint) {
	if cbt.Depth(h) == t.MaxDepth {
		return
	}
	t.Data[t.bitfieldHeapIndex(cbt.RightChildIndex(h))] = 1
}

// MergeNode mirrors [*cbt.Tree.MergeNode].
func (t *NaiveTree) MergeNode(h uint) {
	if h == 1 {
		return
	}
	t.Data[t.bitfieldHeapIndex(h|1)] = 0
}

// SumReduction mirrors [*cbt.Tree.SumReduction].
func (t *NaiveTree) SumReduction() {
	for h := (uint(1) << t.MaxDepth) - 1; h >= 1; h-- {
		t.Data[h] = t.Data[2*h] + t.Data[2*h+1]
	}
}

// NumNodes returns the root counter.
func (t *NaiveTree) NumNodes() uint {
	return t.Data[1]
}

// RequireMatches fails the test if any counter in tree
// differs from the corresponding counter in want.
func RequireMatches(tb testing.TB, want *NaiveTree, tree *cbt.Tree) {
	tb.Helper()

	require.Equal(tb, want.MaxDepth, tree.MaxDepth())
	for h := uint(1); h < uint(len(want.Data)); h++ {
		if got := tree.GetData(h); got != want.Data[h] {
			require.Failf(
				tb, "counter mismatch",
				"heap index %d: want %d, got %d", h, want.Data[h], got,
			)
		}
	}
}

// RequireSumInvariant fails the test if any internal counter in tree
// is not the sum of its children's counters.
func RequireSumInvariant(tb testing.TB, tree *cbt.Tree) {
	tb.Helper()

	n := uint(1) << tree.MaxDepth()
	for h := uint(1); h < n; h++ {
		l := tree.GetData(cbt.LeftChildIndex(h))
		r := tree.GetData(cbt.RightChildIndex(h))
		if got := tree.GetData(h); got != l+r {
			require.Failf(
				tb, "sum invariant violated",
				"heap index %d holds %d, children hold %d + %d", h, got, l, r,
			)
		}
	}
}
