package cbt_test

import (
	"math/rand/v2"
	"slices"
	"testing"

	"github.com/gordian-engine/cbt"
	"github.com/gordian-engine/cbt/cbttest"
	"github.com/gordian-engine/cbt/internal/ctest"
	"github.com/stretchr/testify/require"
)

func TestTree_Init_leafCount(t *testing.T) {
	t.Parallel()

	for maxDepth := uint(0); maxDepth <= 12; maxDepth++ {
		for initialDepth := uint(0); initialDepth <= maxDepth; initialDepth++ {
			tree := cbt.NewTree(maxDepth, initialDepth)
			require.Equal(t, maxDepth, tree.MaxDepth())
			require.Equalf(
				t, uint(1)<<initialDepth, tree.NumNodes(),
				"maxDepth=%d initialDepth=%d", maxDepth, initialDepth,
			)
			cbttest.RequireSumInvariant(t, tree)
			cbttest.RequireMatches(t, cbttest.NewNaiveTree(maxDepth, initialDepth), tree)
		}
	}
}

func TestTree_InitBare_leavesCountersStale(t *testing.T) {
	t.Parallel()

	var tree cbt.Tree
	tree.InitBare(5, 2)
	require.Zero(t, tree.NumNodes())

	tree.SumReduction()
	require.Equal(t, uint(4), tree.NumNodes())
}

func TestTree_Init_contracts(t *testing.T) {
	t.Parallel()

	var tree cbt.Tree
	require.Panics(t, func() { tree.NumNodes() })
	require.Panics(t, func() { tree.Init(3, 4) })
	require.Panics(t, func() { tree.Init(63, 0) })
}

func TestTree_layout(t *testing.T) {
	t.Parallel()

	for _, tc := range []struct {
		maxDepth uint
		words    int
	}{
		{maxDepth: 0, words: 1},
		{maxDepth: 4, words: 1},
		{maxDepth: 5, words: 2},
		{maxDepth: 10, words: 64},
	} {
		tree := cbt.NewTree(tc.maxDepth, 0)
		require.Len(t, tree.Words(), tc.words)
		require.Equal(t, tc.words*8, tree.MemoryUse())

		// The header is the lone max depth bit.
		require.NotZero(t, tree.Words()[0]&(uint64(1)<<tc.maxDepth))
	}

	tree := cbt.NewTree(4, 0)
	off, n := tree.GetDataRange(1)
	require.Equal(t, uint(5), n)
	require.Equal(t, uint(2+5), off)

	off, n = tree.GetDataRange(31)
	require.Equal(t, uint(1), n)
	require.Equal(t, uint(32+31), off)
	require.Equal(t, uint(1), tree.NodeBitSize(16))
}

func TestTree_Reinit(t *testing.T) {
	t.Parallel()

	tree := cbt.NewTree(8, 3)
	tree.SplitNode(8)
	tree.SumReduction()
	require.Equal(t, uint(9), tree.NumNodes())

	tree.Init(4, 1)
	require.Equal(t, uint(4), tree.MaxDepth())
	require.Equal(t, uint(2), tree.NumNodes())
	require.Len(t, tree.Words(), 1)
}

func TestTree_indexArithmetic(t *testing.T) {
	t.Parallel()

	const maxDepth = 10
	tree := cbt.NewTree(maxDepth, 0)

	for h := uint(1); h < uint(2)<<maxDepth; h++ {
		d := tree.Depth(h)
		require.LessOrEqual(t, uint(1)<<d, h)
		require.Greater(t, uint(2)<<d, h)

		if d < maxDepth {
			require.Equal(t, d+1, tree.Depth(cbt.LeftChildIndex(h)))
			require.Equal(t, d+1, tree.Depth(cbt.RightChildIndex(h)))
			require.Equal(t, h, cbt.ParentIndex(cbt.LeftChildIndex(h)))
			require.Equal(t, h, cbt.ParentIndex(cbt.RightChildIndex(h)))
		}
		if h > 1 {
			require.Equal(t, cbt.ParentIndex(h), cbt.ParentIndex(cbt.SiblingIndex(h)))
			require.NotEqual(t, h, cbt.SiblingIndex(h))
		}

		require.Equal(t, d == maxDepth, tree.IsCeilNode(h))
		require.Equal(t, h == 1, tree.IsRootNode(h))
	}

	require.Panics(t, func() { tree.GetData(0) })
	require.Panics(t, func() { tree.GetData(uint(2) << maxDepth) })
}

func TestTree_SplitNode_ceilingIsNoop(t *testing.T) {
	t.Parallel()

	tree := cbt.NewTree(3, 3)
	before := slices.Clone(tree.Words())

	for h := uint(8); h < 16; h++ {
		tree.SplitNode(h)
	}
	require.Equal(t, before, tree.Words())
}

func TestTree_MergeNode_rootIsNoop(t *testing.T) {
	t.Parallel()

	tree := cbt.NewTree(5, 0)
	before := slices.Clone(tree.Words())

	tree.MergeNode(1)
	require.Equal(t, before, tree.Words())
}

func TestTree_splitThenMerge(t *testing.T) {
	t.Parallel()

	tree := cbt.NewTree(6, 2)
	require.Equal(t, uint(4), tree.NumNodes())
	before := slices.Clone(tree.Words())

	for h := uint(4); h < 8; h++ {
		tree.SplitNode(h)
		tree.SumReduction()
		require.Equal(t, uint(5), tree.NumNodes())

		// Merging either child undoes the split.
		tree.MergeNode(cbt.LeftChildIndex(h))
		tree.SumReduction()
		require.Equal(t, uint(4), tree.NumNodes())
		require.Equal(t, before, tree.Words())
	}
}

func TestTree_LeafIndexToHeapIndex(t *testing.T) {
	t.Parallel()

	tree := cbt.NewTree(4, 1)
	tree.SplitNode(2)
	tree.SplitNode(5)
	tree.SumReduction()

	// Leaves, left to right: 4, 10, 11, 3.
	require.Equal(t, uint(4), tree.NumNodes())
	require.Equal(t, []uint{4, 10, 11, 3}, slices.Collect(tree.Leaves()))
	require.Equal(t, uint(10), tree.LeafIndexToHeapIndex(1))

	require.Panics(t, func() { tree.LeafIndexToHeapIndex(4) })

	// Restartable, and early exit is honored.
	var first []uint
	for h := range tree.Leaves() {
		first = append(first, h)
		break
	}
	require.Equal(t, []uint{4}, first)
	require.Equal(t, []uint{4, 10, 11, 3}, slices.Collect(tree.Leaves()))
}

func TestTree_Leaves_randomHistory(t *testing.T) {
	t.Parallel()

	for _, maxDepth := range []uint{2, 5, 10} {
		rng := rand.New(rand.NewPCG(uint64(maxDepth), 99))

		tree := cbt.NewTree(maxDepth, 1)
		naive := cbttest.NewNaiveTree(maxDepth, 1)

		for range 200 {
			leaves := slices.Collect(tree.Leaves())
			h := leaves[rng.IntN(len(leaves))]

			if rng.IntN(3) > 0 {
				tree.SplitNode(h)
				naive.SplitNode(h)
			} else if h > 1 && tree.GetData(cbt.ParentIndex(h)) == 2 {
				// Both h and its sibling are leaves, so the merge keeps a tiling.
				tree.MergeNode(h)
				naive.MergeNode(h)
			}
			tree.SumReduction()
			naive.SumReduction()

			cbttest.RequireSumInvariant(t, tree)
			cbttest.RequireMatches(t, naive, tree)
			requireLeafTiling(t, tree)
		}
	}
}

// requireLeafTiling checks that the enumerated leaves are distinct,
// number exactly NumNodes, and cover the deepest level without overlap.
func requireLeafTiling(t *testing.T, tree *cbt.Tree) {
	t.Helper()

	maxDepth := tree.MaxDepth()
	leaves := slices.Collect(tree.Leaves())
	require.Len(t, leaves, int(tree.NumNodes()))

	next := uint(0)
	for _, h := range leaves {
		require.LessOrEqual(t, tree.GetData(h), uint(1))

		span := uint(1) << (maxDepth - tree.Depth(h))
		start := (h << (maxDepth - tree.Depth(h))) - (uint(1) << maxDepth)
		require.Equalf(t, next, start, "leaf %d", h)
		next = start + span
	}
	require.Equal(t, uint(1)<<maxDepth, next)
}

func TestTree_CloneEqual(t *testing.T) {
	t.Parallel()

	tree := cbt.NewTree(7, 3)
	c := tree.Clone()
	require.True(t, tree.Equal(c))

	c.SplitNode(9)
	c.SumReduction()
	require.False(t, tree.Equal(c))
	require.Equal(t, uint(8), tree.NumNodes())

	require.True(t, new(cbt.Tree).Equal(new(cbt.Tree)))
	require.False(t, tree.Equal(new(cbt.Tree)))
}

func TestTree_LoadWords(t *testing.T) {
	t.Parallel()

	src := cbt.NewTree(9, 4)
	src.SplitNode(20)
	src.SumReduction()

	var dst cbt.Tree
	require.NoError(t, dst.LoadWords(src.Words()))
	require.True(t, src.Equal(&dst))

	// The loaded storage is a copy.
	src.SplitNode(21)
	require.False(t, src.Equal(&dst))

	// Reloading into an existing tree of the same size reuses its storage.
	require.NoError(t, dst.LoadWords(src.Words()))
	require.True(t, src.Equal(&dst))
}

func TestTree_LoadWords_rejects(t *testing.T) {
	t.Parallel()

	good := cbt.NewTree(6, 2)

	for name, words := range map[string][]uint64{
		"empty":       nil,
		"no header":   {0, 0, 0, 0},
		"wrong size":  slices.Clone(good.Words()[:2]),
		"stray bit":   append([]uint64{good.Words()[0] | 1}, good.Words()[1:]...),
		"beyond tree": {1<<2 | 1<<40},
	} {
		var tree cbt.Tree
		err := tree.LoadWords(words)
		require.Errorf(t, err, "case %q", name)
		require.ErrorAs(t, err, new(cbt.HeaderError))
	}

	// A failed load leaves the tree untouched.
	tree := good.Clone()
	require.Error(t, tree.LoadWords([]uint64{0}))
	require.True(t, good.Equal(tree))
}

func TestTree_LoadWords_garbageDoesNotPanic(t *testing.T) {
	t.Parallel()

	for n := 1; n <= 64; n *= 2 {
		words := ctest.RandomWordsForTest(t, n)
		var tree cbt.Tree
		if err := tree.LoadWords(words); err != nil {
			require.ErrorAs(t, err, new(cbt.HeaderError))
		}
	}
}
