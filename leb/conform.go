package leb

import "github.com/gordian-engine/cbt"

// minNodeID stops the propagation of a conforming split.
const minNodeID = 1

// SplitConformed splits the leaf heapIndex,
// and every coarser or same-depth neighbor that would otherwise
// be left with a vertex in the middle of its edge.
// Splitting a ceiling node does nothing.
//
// The split walks the chain of edge neighbors toward the root,
// alternating between splitting a neighbor and splitting its parent,
// which is the propagation rule for longest edge bisection.
func SplitConformed(tree *cbt.Tree, mode Mode, heapIndex uint) {
	if tree.IsCeilNode(heapIndex) {
		return
	}

	tree.SplitNode(heapIndex)
	n := EdgeNeighbor(mode, heapIndex)
	for n > minNodeID {
		tree.SplitNode(n)
		n = cbt.ParentIndex(n)
		if n > minNodeID {
			tree.SplitNode(n)
			n = EdgeNeighbor(mode, n)
		}
	}
}

// MergeConformed merges heapIndex with its sibling,
// together with the other half of its diamond,
// but only if both diamond halves hold at most two leaves.
// Otherwise, and for nodes too shallow to merge, it does nothing.
//
// The leaf counts are read from the tree's counters,
// so the tree should have been reduced since the last split.
// Counters made stale by earlier merges only ever overestimate,
// which makes this conservative rather than incorrect.
func MergeConformed(tree *cbt.Tree, mode Mode, heapIndex uint) {
	if cbt.Depth(heapIndex) <= mode.minMergeDepth() {
		return
	}

	d := Diamond(mode, heapIndex)
	if tree.GetData(d.Base) > 2 || tree.GetData(d.Top) > 2 {
		return
	}

	tree.MergeNode(heapIndex)
	if d.Top != d.Base {
		tree.MergeNode(cbt.RightChildIndex(d.Top))
	}
}
