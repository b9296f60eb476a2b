package bitfield

import "math/bits"

// Unsigned is the set of word types the scan functions accept.
type Unsigned interface {
	~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64 | ~uintptr
}

// MostSignificantBit returns the 0-based index of the highest set bit in v.
// The boolean result is false if v is zero.
func MostSignificantBit[T Unsigned](v T) (uint, bool) {
	if v == 0 {
		return 0, false
	}
	return uint(bits.Len64(uint64(v))) - 1, true
}

// LeastSignificantBit returns the 0-based index of the lowest set bit in v.
// The boolean result is false if v is zero.
func LeastSignificantBit[T Unsigned](v T) (uint, bool) {
	if v == 0 {
		return 0, false
	}
	return uint(bits.TrailingZeros64(uint64(v))), true
}
