package leb_test

import (
	"slices"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/gordian-engine/cbt"
	"github.com/gordian-engine/cbt/leb"
	"github.com/stretchr/testify/require"
)

func sharedVertices(a, b [3]mgl32.Vec3) int {
	n := 0
	for _, av := range a {
		if slices.Contains(b[:], av) {
			n++
		}
	}
	return n
}

type testLeaf struct {
	h     uint
	depth uint
	v     [3]mgl32.Vec2
}

// requireConforming fails the test if any leaf vertex lies strictly inside
// another leaf's edge, or if leaves sharing an edge differ by more than one level.
// Vertex coordinates are dyadic, so the float32 arithmetic here is exact.
func requireConforming(t *testing.T, tree *cbt.Tree, mode leb.Mode) {
	t.Helper()

	var leaves []testLeaf
	for h, v := range leb.Triangles(tree, mode) {
		leaves = append(leaves, testLeaf{
			h:     h,
			depth: tree.Depth(h),
			v:     [3]mgl32.Vec2{v[0].Vec2(), v[1].Vec2(), v[2].Vec2()},
		})
	}

	for i, a := range leaves {
		for j, b := range leaves {
			if i == j {
				continue
			}

			for e := range 3 {
				p0, p1 := a.v[e], a.v[(e+1)%3]
				for _, q := range b.v {
					if strictlyInside(p0, p1, q) {
						require.Failf(
							t, "T-junction",
							"vertex %v of leaf %d lies inside an edge of leaf %d",
							q, b.h, a.h,
						)
					}
				}
			}

			shared := 0
			for _, av := range a.v {
				if slices.Contains(b.v[:], av) {
					shared++
				}
			}
			if shared >= 2 {
				gap := int(a.depth) - int(b.depth)
				require.LessOrEqualf(
					t, max(gap, -gap), 1,
					"adjacent leaves %d and %d", a.h, b.h,
				)
			}
		}
	}
}

func strictlyInside(a, b, p mgl32.Vec2) bool {
	ab := b.Sub(a)
	ap := p.Sub(a)
	if ab[0]*ap[1]-ab[1]*ap[0] != 0 {
		return false
	}
	dot := ab.Dot(ap)
	return dot > 0 && dot < ab.Dot(ab)
}
