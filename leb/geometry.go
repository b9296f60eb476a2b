package leb

import (
	"iter"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/gordian-engine/cbt"
)

// PointInTriangle reports whether pt lies inside heapIndex's triangle
// scaled by scale, boundary included.
func PointInTriangle(mode Mode, pt mgl32.Vec2, heapIndex uint, scale float32) bool {
	v := TriangleVertices(mode, heapIndex)
	a := v[0].Mul(scale).Vec2()
	b := v[1].Mul(scale).Vec2()
	c := v[2].Mul(scale).Vec2()

	d1 := edgeSign(pt, a, b)
	d2 := edgeSign(pt, b, c)
	d3 := edgeSign(pt, c, a)

	hasNeg := d1 < 0 || d2 < 0 || d3 < 0
	hasPos := d1 > 0 || d2 > 0 || d3 > 0
	return !(hasNeg && hasPos)
}

func edgeSign(p1, p2, p3 mgl32.Vec2) float32 {
	return (p1[0]-p3[0])*(p2[1]-p3[1]) - (p2[0]-p3[0])*(p1[1]-p3[1])
}

// Triangles returns an iterator over every active leaf of tree,
// paired with its vertices.
// As with [*cbt.Tree.Leaves], the tree must be reduced
// and must not change during iteration.
func Triangles(tree *cbt.Tree, mode Mode) iter.Seq2[uint, [3]mgl32.Vec3] {
	return func(yield func(uint, [3]mgl32.Vec3) bool) {
		for h := range tree.Leaves() {
			if !yield(h, TriangleVertices(mode, h)) {
				return
			}
		}
	}
}
