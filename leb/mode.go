package leb

import "fmt"

// Mode selects the domain being subdivided.
type Mode uint8

const (
	// Square subdivides the unit square, made of the two
	// depth 1 triangles 2 and 3 sharing their hypotenuse.
	// The root itself has no geometry in this mode,
	// so trees should be initialized with an initial depth of at least 1.
	Square Mode = iota

	// Triangle subdivides a single base triangle, which is the root.
	Triangle
)

func (m Mode) String() string {
	switch m {
	case Square:
		return "Square"
	case Triangle:
		return "Triangle"
	default:
		return fmt.Sprintf("Mode(%d)", uint8(m))
	}
}

// minMergeDepth is the depth at or below which a node cannot be merged.
func (m Mode) minMergeDepth() uint {
	switch m {
	case Square:
		return 1
	case Triangle:
		return 0
	default:
		panic(fmt.Errorf("BUG: unknown mode %d", m))
	}
}

func bitValue(heapIndex, bitID uint) uint {
	return (heapIndex >> bitID) & 1
}
