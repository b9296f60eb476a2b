package leb

import (
	"fmt"

	"github.com/gordian-engine/cbt"
)

// NeighborIDs holds the same-depth neighbors of Current.
// A zero ID means the corresponding edge is on the domain boundary.
//
// In canonical vertex order, Left is across (start, apex),
// Right is across (apex, end), and Edge is across the hypotenuse.
type NeighborIDs struct {
	Left, Right, Edge, Current uint
}

// split returns the neighbors of the child of ids.Current selected by bit.
func (ids NeighborIDs) split(bit uint) NeighborIDs {
	// Children of a boundary stay on the boundary,
	// so only nonzero IDs get their low bit set.
	var bRight, bEdge uint
	if ids.Right != 0 {
		bRight = 1
	}
	if ids.Edge != 0 {
		bEdge = 1
	}

	if bit == 0 {
		return NeighborIDs{
			Left:    ids.Current<<1 | 1,
			Right:   ids.Edge<<1 | bEdge,
			Edge:    ids.Right<<1 | bRight,
			Current: ids.Current << 1,
		}
	}
	return NeighborIDs{
		Left:    ids.Edge << 1,
		Right:   ids.Current << 1,
		Edge:    ids.Left << 1,
		Current: ids.Current<<1 | 1,
	}
}

// Neighbors returns the same-depth neighbors of heapIndex,
// found by replaying the path from the top of the domain.
//
// A returned neighbor need not be an active leaf:
// it is the node at the same depth across the shared edge.
func Neighbors(mode Mode, heapIndex uint) NeighborIDs {
	depth := cbt.Depth(heapIndex)
	if depth == 0 {
		return NeighborIDs{Current: heapIndex}
	}

	var ids NeighborIDs
	var bitID int
	switch mode {
	case Square:
		// Triangles 2 and 3 share the square's diagonal.
		b := bitValue(heapIndex, depth-1)
		ids = NeighborIDs{Edge: 3 - b, Current: 2 + b}
		bitID = int(depth) - 2
	case Triangle:
		ids = NeighborIDs{Current: 1}
		bitID = int(depth) - 1
	default:
		panic(fmt.Errorf("BUG: unknown mode %d", mode))
	}

	for ; bitID >= 0; bitID-- {
		ids = ids.split(bitValue(heapIndex, uint(bitID)))
	}
	return ids
}

// EdgeNeighbor returns the neighbor across heapIndex's hypotenuse,
// or zero if the hypotenuse is on the boundary.
func EdgeNeighbor(mode Mode, heapIndex uint) uint {
	return Neighbors(mode, heapIndex).Edge
}

// DiamondIDs is the pair of nodes that must merge together:
// the parent of a node and the parent's edge neighbor.
// On the boundary, Top equals Base.
type DiamondIDs struct {
	Base, Top uint
}

// Diamond returns the diamond that heapIndex belongs to.
// heapIndex must not be the root.
func Diamond(mode Mode, heapIndex uint) DiamondIDs {
	if heapIndex <= 1 {
		panic(fmt.Errorf("BUG: node %d has no diamond", heapIndex))
	}

	base := cbt.ParentIndex(heapIndex)
	top := EdgeNeighbor(mode, base)
	if top == 0 {
		top = base
	}
	return DiamondIDs{Base: base, Top: top}
}
