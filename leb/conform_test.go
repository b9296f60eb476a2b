package leb_test

import (
	"math/rand/v2"
	"slices"
	"testing"

	"github.com/gordian-engine/cbt"
	"github.com/gordian-engine/cbt/cbttest"
	"github.com/gordian-engine/cbt/leb"
	"github.com/stretchr/testify/require"
)

func TestSplitMerge_endToEnd(t *testing.T) {
	t.Parallel()

	t.Run("triangle", func(t *testing.T) {
		t.Parallel()

		tree := cbt.NewTree(4, 1)
		require.Equal(t, uint(2), tree.NumNodes())

		leb.SplitConformed(tree, leb.Triangle, 2)
		tree.SumReduction()
		require.Equal(t, uint(3), tree.NumNodes())
		require.Equal(t, []uint{4, 5, 3}, slices.Collect(tree.Leaves()))

		leb.MergeConformed(tree, leb.Triangle, 4)
		tree.SumReduction()
		require.Equal(t, uint(2), tree.NumNodes())
		require.Equal(t, []uint{2, 3}, slices.Collect(tree.Leaves()))
	})

	t.Run("square", func(t *testing.T) {
		t.Parallel()

		tree := cbt.NewTree(4, 1)
		require.Equal(t, uint(2), tree.NumNodes())

		// Node 2's hypotenuse is the square's diagonal,
		// so node 3 splits with it.
		leb.SplitConformed(tree, leb.Square, 2)
		tree.SumReduction()
		require.Equal(t, uint(4), tree.NumNodes())
		require.Equal(t, []uint{4, 5, 6, 7}, slices.Collect(tree.Leaves()))

		leb.MergeConformed(tree, leb.Square, 4)
		tree.SumReduction()
		require.Equal(t, uint(2), tree.NumNodes())
		require.Equal(t, []uint{2, 3}, slices.Collect(tree.Leaves()))
	})

	t.Run("raw split", func(t *testing.T) {
		t.Parallel()

		tree := cbt.NewTree(4, 1)
		tree.SplitNode(2)
		tree.SumReduction()
		require.Equal(t, uint(3), tree.NumNodes())
	})
}

func TestSplitConformed_propagates(t *testing.T) {
	t.Parallel()

	tree := cbt.NewTree(6, 1)

	// Node 5's hypotenuse is on the boundary, so it splits alone.
	leb.SplitConformed(tree, leb.Square, 2)
	tree.SumReduction()
	leb.SplitConformed(tree, leb.Square, 5)
	tree.SumReduction()
	require.Equal(t, []uint{4, 10, 11, 6, 7}, slices.Collect(tree.Leaves()))

	// Node 11's hypotenuse neighbor 12 is inside the leaf 6,
	// so 6 splits first and 12 splits after it.
	leb.SplitConformed(tree, leb.Square, 11)
	tree.SumReduction()
	require.Equal(t, []uint{4, 10, 22, 23, 24, 25, 13, 7}, slices.Collect(tree.Leaves()))
	requireConforming(t, tree, leb.Square)
	cbttest.RequireSumInvariant(t, tree)
}

func TestSplitConformed_ceilingIsNoOp(t *testing.T) {
	t.Parallel()

	tree := cbt.NewTree(2, 2)
	before := tree.Clone()

	leb.SplitConformed(tree, leb.Square, 4)
	tree.SumReduction()
	require.True(t, before.Equal(tree))
}

func TestMergeConformed_noOps(t *testing.T) {
	t.Parallel()

	t.Run("square depth 1", func(t *testing.T) {
		t.Parallel()

		tree := cbt.NewTree(4, 1)
		before := tree.Clone()
		leb.MergeConformed(tree, leb.Square, 2)
		tree.SumReduction()
		require.True(t, before.Equal(tree))
	})

	t.Run("triangle root", func(t *testing.T) {
		t.Parallel()

		tree := cbt.NewTree(4, 0)
		before := tree.Clone()
		leb.MergeConformed(tree, leb.Triangle, 1)
		tree.SumReduction()
		require.True(t, before.Equal(tree))
	})

	t.Run("finer diamond half", func(t *testing.T) {
		t.Parallel()

		tree := cbt.NewTree(5, 1)
		leb.SplitConformed(tree, leb.Square, 2)
		tree.SumReduction()
		leb.SplitConformed(tree, leb.Square, 7)
		tree.SumReduction()
		before := tree.Clone()

		// Node 3 now holds more than two leaves,
		// so the diamond {2, 3} cannot merge.
		require.Greater(t, tree.GetData(3), uint(2))
		leb.MergeConformed(tree, leb.Square, 4)
		tree.SumReduction()
		require.True(t, before.Equal(tree))
	})
}

func TestSplitMerge_randomStaysConforming(t *testing.T) {
	t.Parallel()

	for _, tc := range []struct {
		mode         leb.Mode
		initialDepth uint
	}{
		{mode: leb.Square, initialDepth: 1},
		{mode: leb.Triangle, initialDepth: 0},
	} {
		t.Run(tc.mode.String(), func(t *testing.T) {
			t.Parallel()

			const maxDepth = 7
			tree := cbt.NewTree(maxDepth, tc.initialDepth)
			rng := rand.New(rand.NewPCG(7, uint64(tc.mode)))

			for step := range 400 {
				leaves := slices.Collect(tree.Leaves())
				h := leaves[rng.IntN(len(leaves))]

				if rng.IntN(10) < 6 {
					leb.SplitConformed(tree, tc.mode, h)
				} else {
					leb.MergeConformed(tree, tc.mode, h)
				}
				tree.SumReduction()
				cbttest.RequireSumInvariant(t, tree)

				if step%40 == 0 {
					requireConforming(t, tree, tc.mode)
				}
			}
			requireConforming(t, tree, tc.mode)
		})
	}
}
