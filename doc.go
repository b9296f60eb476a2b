// Package cbt contains a concurrent binary tree:
// a complete binary tree of fixed maximum depth,
// stored as a single bit-packed array and addressed by heap index.
//
// Heap index 1 is the root, and the children of node h are 2h and 2h+1.
// Every node owns a counter whose width depends only on its depth:
// maxDepth-depth+1 bits, so the deepest level is a plain bitfield.
// A bit set at the deepest level marks the leftmost position
// of an active leaf, and the counters above it are the number of
// active leaves in each subtree once [*Tree.SumReduction] has run.
//
// Splits and merges only touch the deepest level.
// Counters above it are stale until the next reduction,
// so callers apply every split and merge for a frame
// and then reduce once.
//
// The packed layout is what a GPU-side mirror reads directly,
// so it is fixed: the first 64-bit word carries the maximum depth
// as a single set bit at position maxDepth,
// and node h at depth d starts at bit 2^(d+1) + h*(maxDepth-d+1).
//
// A Tree is not safe for concurrent use.
//
// Subpackage leb interprets heap indices as
// longest edge bisection triangles.
package cbt
