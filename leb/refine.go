package leb

import (
	"slices"

	"github.com/gordian-engine/cbt"
)

// Decision is a per-leaf verdict for [Refine].
type Decision uint8

const (
	// Keep leaves the leaf as it is.
	Keep Decision = iota

	// Split bisects the leaf, along with any neighbors needed to stay conforming.
	Split

	// Merge joins the leaf with its siblings when the whole diamond agrees.
	Merge
)

// Refine runs one frame of adaptive subdivision.
//
// decide is called for every active leaf in a split pass,
// and Split verdicts are applied with [SplitConformed].
// The tree is reduced, then decide is called again for every leaf
// in a merge pass, where Merge verdicts are applied with [MergeConformed].
// The tree is reduced once more before returning.
//
// Keeping the passes apart means merges always see
// counters that include every split of the frame.
func Refine(tree *cbt.Tree, mode Mode, decide func(heapIndex uint) Decision) {
	for _, h := range slices.Collect(tree.Leaves()) {
		if decide(h) == Split {
			SplitConformed(tree, mode, h)
		}
	}
	tree.SumReduction()

	for _, h := range slices.Collect(tree.Leaves()) {
		if decide(h) == Merge {
			MergeConformed(tree, mode, h)
		}
	}
	tree.SumReduction()
}
