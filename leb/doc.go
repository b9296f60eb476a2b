// Package leb interprets the nodes of a [cbt.Tree]
// as triangles of a longest edge bisection.
//
// Every node is a right isosceles triangle.
// Splitting a node bisects its hypotenuse,
// and its two children each take one of the parent's legs as their hypotenuse.
// The path bits of a heap index therefore fully determine
// both the triangle's vertices and its same-depth neighbors.
//
// Two subdivision domains are supported, see [Mode].
//
// Triangle vertices are given in the canonical order
// (hypotenuse start, apex, hypotenuse end),
// then reflected at alternating depths so that every triangle
// is counter-clockwise in the xy plane.
// The neighbor across the hypotenuse is the [NeighborIDs.Edge] neighbor.
//
// Split and merge here keep the subdivision conforming:
// no vertex of one leaf lies inside an edge of another,
// and adjacent leaves never differ by more than one level.
package leb
