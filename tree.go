package cbt

import (
	"fmt"
	"iter"
	"slices"

	"github.com/gordian-engine/cbt/bitfield"
)

// Tree is a concurrent binary tree.
//
// The zero value is uninitialized;
// call [*Tree.Init] (or use [NewTree]) before any other method.
// Calling Init again discards the current contents.
type Tree struct {
	// The whole packed heap, header included.
	// Sized once by InitBare and never grown afterward.
	bits *bitfield.Set
}

// NewTree returns a tree initialized with [*Tree.Init].
func NewTree(maxDepth, initialDepth uint) *Tree {
	t := new(Tree)
	t.Init(maxDepth, initialDepth)
	return t
}

// MaxSupportedDepth is the deepest tree that can be initialized.
// The root counter is maxDepth+1 bits wide and must fit in one storage word,
// and the 2^(maxDepth+2) bit storage size must fit in a uint.
const MaxSupportedDepth = NumBitsPerElement - 3

// StorageWords returns the number of words needed for a tree of maxDepth:
// 2^(maxDepth+2) bits, and never less than one word.
func StorageWords(maxDepth uint) int {
	return int(max(uint(1)<<(maxDepth+2), NumBitsPerElement) / NumBitsPerElement)
}

// InitBare sizes the storage for maxDepth,
// writes the header, and activates every node at initialDepth as a leaf.
//
// The counters above the deepest level are left at zero;
// call [*Tree.SumReduction] before relying on them,
// or use [*Tree.Init] which does both.
func (t *Tree) InitBare(maxDepth, initialDepth uint) {
	if initialDepth > maxDepth {
		panic(fmt.Errorf(
			"BUG: initial depth %d exceeds max depth %d",
			initialDepth, maxDepth,
		))
	}
	if maxDepth > MaxSupportedDepth {
		panic(fmt.Errorf(
			"BUG: max depth %d exceeds supported maximum %d",
			maxDepth, MaxSupportedDepth,
		))
	}

	t.bits = bitfield.New(uint(StorageWords(maxDepth)) * NumBitsPerElement)
	t.bits.Set(maxDepth)

	for h := uint(1) << initialDepth; h < uint(2)<<initialDepth; h++ {
		t.SetData(t.BitfieldHeapIndex(h), 1)
	}
}

// Init is [*Tree.InitBare] followed by [*Tree.SumReduction].
func (t *Tree) Init(maxDepth, initialDepth uint) {
	t.InitBare(maxDepth, initialDepth)
	t.SumReduction()
}

func (t *Tree) words() []uint64 {
	if t.bits == nil {
		panic(fmt.Errorf("BUG: tree used before Init"))
	}
	return t.bits.Words()
}

// Words returns the live packed storage, header included.
// Writes through the returned slice modify the tree.
//
// This is the exact layout a GPU-side consumer expects,
// and the layout [*Tree.LoadWords] accepts.
func (t *Tree) Words() []uint64 {
	return t.words()
}

// MemoryUse returns the size of the packed storage in bytes.
func (t *Tree) MemoryUse() int {
	return len(t.words()) * (NumBitsPerElement / 8)
}

// MaxDepth returns the maximum depth the tree was initialized with,
// recovered from the header bit in the first storage word.
func (t *Tree) MaxDepth() uint {
	d, ok := bitfield.LeastSignificantBit(t.words()[0])
	if !ok {
		panic(fmt.Errorf("BUG: tree header is empty"))
	}
	return d
}

// Depth returns the depth of heapIndex; the root is at depth 0.
func (t *Tree) Depth(heapIndex uint) uint {
	return Depth(heapIndex)
}

// Depth returns the depth of heapIndex,
// which is the position of its most significant bit.
func Depth(heapIndex uint) uint {
	d, ok := bitfield.MostSignificantBit(heapIndex)
	if !ok {
		panic(fmt.Errorf("BUG: heap index 0 is not a node"))
	}
	return d
}

// LeftChildIndex returns 2*heapIndex.
func LeftChildIndex(heapIndex uint) uint { return heapIndex << 1 }

// RightChildIndex returns 2*heapIndex+1.
func RightChildIndex(heapIndex uint) uint { return heapIndex<<1 | 1 }

// ParentIndex returns heapIndex/2.
func ParentIndex(heapIndex uint) uint { return heapIndex >> 1 }

// SiblingIndex returns the other child of heapIndex's parent.
func SiblingIndex(heapIndex uint) uint { return heapIndex ^ 1 }

func (t *Tree) checkHeapIndex(heapIndex uint, maxDepth uint) {
	if heapIndex == 0 || heapIndex >= uint(2)<<maxDepth {
		panic(fmt.Errorf(
			"BUG: heap index %d out of range for max depth %d",
			heapIndex, maxDepth,
		))
	}
}

// NodeBitSize returns the width in bits of heapIndex's counter.
func (t *Tree) NodeBitSize(heapIndex uint) uint {
	return t.MaxDepth() - Depth(heapIndex) + 1
}

// GetDataRange returns the bit offset and bit width
// of heapIndex's counter within the packed storage.
func (t *Tree) GetDataRange(heapIndex uint) (bitOffset, bitCount uint) {
	maxDepth := t.MaxDepth()
	t.checkHeapIndex(heapIndex, maxDepth)

	depth := Depth(heapIndex)
	bitCount = maxDepth - depth + 1
	bitOffset = (uint(2) << depth) + heapIndex*bitCount
	return bitOffset, bitCount
}

// GetData returns heapIndex's counter.
func (t *Tree) GetData(heapIndex uint) uint {
	off, n := t.GetDataRange(heapIndex)
	return t.BinaryHeapGet(off, n)
}

// SetData overwrites heapIndex's counter.
func (t *Tree) SetData(heapIndex, value uint) {
	off, n := t.GetDataRange(heapIndex)
	t.BinaryHeapSet(off, n, value)
}

// BitfieldHeapIndex returns the deepest-level heap index
// of heapIndex's leftmost descendant.
// That is the bit which marks heapIndex as the start of an active leaf.
func (t *Tree) BitfieldHeapIndex(heapIndex uint) uint {
	return heapIndex << (t.MaxDepth() - Depth(heapIndex))
}

// IsCeilNode reports whether heapIndex is at the maximum depth
// and therefore cannot be split.
func (t *Tree) IsCeilNode(heapIndex uint) bool {
	return Depth(heapIndex) == t.MaxDepth()
}

// IsRootNode reports whether heapIndex is the root.
func (t *Tree) IsRootNode(heapIndex uint) bool {
	return heapIndex == 1
}

// SplitNode replaces the leaf heapIndex with its two children,
// by activating the bitfield slot of its right child.
// Splitting a ceiling node does nothing.
func (t *Tree) SplitNode(heapIndex uint) {
	if t.IsCeilNode(heapIndex) {
		return
	}
	t.SetData(t.BitfieldHeapIndex(RightChildIndex(heapIndex)), 1)
}

// MergeNode replaces heapIndex and its sibling with their parent,
// by deactivating the bitfield slot of the right sibling.
// Merging the root does nothing.
func (t *Tree) MergeNode(heapIndex uint) {
	if t.IsRootNode(heapIndex) {
		return
	}
	t.SetData(t.BitfieldHeapIndex(heapIndex|1), 0)
}

// NumNodes returns the number of active leaves.
// It is only accurate directly after [*Tree.SumReduction].
func (t *Tree) NumNodes() uint {
	return t.GetData(1)
}

// LeafIndexToHeapIndex returns the heap index of the leaf
// at position leafIndex, counting active leaves from the left.
// The result is only meaningful after [*Tree.SumReduction].
func (t *Tree) LeafIndexToHeapIndex(leafIndex uint) uint {
	if n := t.NumNodes(); leafIndex >= n {
		panic(fmt.Errorf(
			"BUG: leaf index %d out of range for %d leaves", leafIndex, n,
		))
	}

	heapIndex := uint(1)
	for t.GetData(heapIndex) > 1 {
		left := LeftChildIndex(heapIndex)
		leftCount := t.GetData(left)
		if leafIndex < leftCount {
			heapIndex = left
		} else {
			leafIndex -= leftCount
			heapIndex = left | 1
		}
	}
	return heapIndex
}

// Leaves returns an iterator over the heap index of every active leaf,
// from left to right.
// Each call walks the tree again, so the sequence may be restarted;
// it must not be consumed across a split or merge.
func (t *Tree) Leaves() iter.Seq[uint] {
	return func(yield func(uint) bool) {
		n := t.NumNodes()
		for i := range n {
			if !yield(t.LeafIndexToHeapIndex(i)) {
				return
			}
		}
	}
}

// Clone returns a deep copy of t.
func (t *Tree) Clone() *Tree {
	if t.bits == nil {
		return new(Tree)
	}
	return &Tree{bits: t.bits.Clone()}
}

// Equal reports whether t and o hold bit-identical storage.
func (t *Tree) Equal(o *Tree) bool {
	if t.bits == nil || o.bits == nil {
		return t.bits == nil && o.bits == nil
	}
	return t.bits.Equal(o.bits)
}

// LoadWords replaces t's storage with a copy of words,
// as produced by [*Tree.Words] on another tree.
//
// Unlike the rest of the Tree API, malformed input is reported
// as a [HeaderError] instead of a panic,
// since words typically arrive from outside the process.
// On error, t is unchanged.
func (t *Tree) LoadWords(words []uint64) error {
	if len(words) == 0 {
		return HeaderError{Reason: "no storage words"}
	}

	maxDepth, ok := bitfield.LeastSignificantBit(words[0])
	if !ok {
		return HeaderError{Reason: "missing max depth bit"}
	}
	if maxDepth > MaxSupportedDepth {
		return HeaderError{Reason: fmt.Sprintf("max depth %d too large", maxDepth)}
	}

	if want := StorageWords(maxDepth); len(words) != want {
		return HeaderError{Reason: fmt.Sprintf(
			"max depth %d needs %d words, got %d", maxDepth, want, len(words),
		)}
	}

	// Everything below the root counter is header,
	// and only the max depth bit may be set there.
	if words[0]&lowMask(maxDepth+3) != uint64(1)<<maxDepth {
		return HeaderError{Reason: "stray bits in header"}
	}

	if nBits := uint(1) << (maxDepth + 2); nBits < NumBitsPerElement {
		if words[0]>>nBits != 0 {
			return HeaderError{Reason: "bits set beyond the last node"}
		}
	}

	if t.bits != nil && len(t.bits.Words()) == len(words) {
		copy(t.bits.Words(), words)
		return nil
	}

	t.bits = bitfield.FromWords(slices.Clone(words))
	return nil
}
