// Package bitfield contains the bit scanning primitives
// and the fixed-capacity bit set that back a concurrent binary tree.
//
// The scans report their result through a (index, ok) pair,
// because a zero value is a meaningful input for callers
// probing tree boundaries.
// Out of range indices into a [Set] are programming errors and panic.
package bitfield
