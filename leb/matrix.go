package leb

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/gordian-engine/cbt"
)

// baseTriangle holds one vertex per row:
// (0, 1), (0, 0) and (1, 0), with z = 0.
var baseTriangle = mgl32.Mat3FromRows(
	mgl32.Vec3{0, 1, 0},
	mgl32.Vec3{0, 0, 0},
	mgl32.Vec3{1, 0, 0},
)

// splitMatrix maps a triangle to its child selected by bit.
// The parent hypotenuse midpoint becomes the child's apex.
// Child 0 keeps the parent's (apex, end) leg as its hypotenuse,
// child 1 keeps the (start, apex) leg.
func splitMatrix(bit uint) mgl32.Mat3 {
	b := float32(bit)
	c := 1 - b
	return mgl32.Mat3FromRows(
		mgl32.Vec3{b, c, 0},
		mgl32.Vec3{0.5, 0, 0.5},
		mgl32.Vec3{0, b, c},
	)
}

// squareMatrix selects one of the two halves of the unit square.
func squareMatrix(bit uint) mgl32.Mat3 {
	b := float32(bit)
	c := 1 - b
	return mgl32.Mat3FromRows(
		mgl32.Vec3{c, 0, b},
		mgl32.Vec3{b, c, b},
		mgl32.Vec3{b, 0, c},
	)
}

// windingMatrix swaps the hypotenuse endpoints when bit is set.
func windingMatrix(bit uint) mgl32.Mat3 {
	b := float32(bit)
	c := 1 - b
	return mgl32.Mat3FromRows(
		mgl32.Vec3{c, 0, b},
		mgl32.Vec3{0, 1, 0},
		mgl32.Vec3{b, 0, c},
	)
}

// canonicalMatrix is the transform from the base triangle to heapIndex,
// before the winding correction.
// Each split reverses orientation, so the result alternates
// between counter-clockwise and clockwise by depth.
func canonicalMatrix(mode Mode, heapIndex uint) mgl32.Mat3 {
	depth := cbt.Depth(heapIndex)

	var m mgl32.Mat3
	var bitID int
	switch mode {
	case Square:
		if depth == 0 {
			panic(fmt.Errorf("BUG: the root of the square domain is not a triangle"))
		}
		m = squareMatrix(bitValue(heapIndex, depth-1))
		bitID = int(depth) - 2
	case Triangle:
		m = mgl32.Ident3()
		bitID = int(depth) - 1
	default:
		panic(fmt.Errorf("BUG: unknown mode %d", mode))
	}

	for ; bitID >= 0; bitID-- {
		m = splitMatrix(bitValue(heapIndex, uint(bitID))).Mul3(m)
	}
	return m
}

// windingBit reports whether the canonical triangle at depth is clockwise.
func windingBit(mode Mode, depth uint) uint {
	if mode == Square {
		return (depth ^ 1) & 1
	}
	return depth & 1
}

// Matrix returns the transform that maps the base triangle
// {(0,1,0), (0,0,0), (1,0,0)} (one vertex per row) to heapIndex's triangle.
//
// It panics for the root in [Square] mode.
func Matrix(mode Mode, heapIndex uint) mgl32.Mat3 {
	m := canonicalMatrix(mode, heapIndex)
	return windingMatrix(windingBit(mode, cbt.Depth(heapIndex))).Mul3(m)
}

// TriangleVertices returns the three vertices of heapIndex's triangle,
// counter-clockwise, in the unit square.
func TriangleVertices(mode Mode, heapIndex uint) [3]mgl32.Vec3 {
	v := Matrix(mode, heapIndex).Mul3(baseTriangle)
	return [3]mgl32.Vec3{v.Row(0), v.Row(1), v.Row(2)}
}
