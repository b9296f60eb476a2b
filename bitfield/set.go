package bitfield

import (
	"fmt"
	"iter"

	"github.com/bits-and-blooms/bitset"
)

// WordBits is the width of a single storage word in a [Set].
const WordBits = 64

// Set is a bit set of fixed capacity.
//
// Unlike the [bitset.BitSet] backing it, a Set never grows:
// touching a bit at or beyond [*Set.Len] panics,
// since that always indicates a miscalculated offset in the caller.
type Set struct {
	bs *bitset.BitSet
}

// New returns a Set able to hold n bits, all clear.
func New(n uint) *Set {
	if n == 0 {
		panic(fmt.Errorf("BUG: bitfield capacity must be positive"))
	}
	return &Set{bs: bitset.MustNew(n)}
}

// FromWords returns a Set using words as its backing storage,
// with a capacity of every bit in words.
// The slice is retained, not copied.
func FromWords(words []uint64) *Set {
	if len(words) == 0 {
		panic(fmt.Errorf("BUG: FromWords requires at least one word"))
	}
	return &Set{bs: bitset.From(words)}
}

// Len returns the capacity of s in bits.
func (s *Set) Len() uint {
	return s.bs.Len()
}

// Words returns the live backing words of s.
// Bit i lives in word i/64 at position i%64.
func (s *Set) Words() []uint64 {
	return s.bs.Words()
}

func (s *Set) check(i uint) {
	if i >= s.bs.Len() {
		panic(fmt.Errorf(
			"BUG: bit index %d out of range for bitfield of %d bits",
			i, s.bs.Len(),
		))
	}
}

func (s *Set) checkSameLen(o *Set) {
	if s.bs.Len() != o.bs.Len() {
		panic(fmt.Errorf(
			"BUG: bitfield capacity mismatch (%d vs %d)",
			s.bs.Len(), o.bs.Len(),
		))
	}
}

// Test reports whether bit i is set.
func (s *Set) Test(i uint) bool {
	s.check(i)
	return s.bs.Test(i)
}

// Set sets bit i.
func (s *Set) Set(i uint) {
	s.check(i)
	s.bs.Set(i)
}

// Clear clears bit i.
func (s *Set) Clear(i uint) {
	s.check(i)
	s.bs.Clear(i)
}

// SetTo sets bit i to v.
func (s *Set) SetTo(i uint, v bool) {
	s.check(i)
	s.bs.SetTo(i, v)
}

// ClearAll clears every bit.
func (s *Set) ClearAll() {
	s.bs.ClearAll()
}

// SetRange sets every bit in the half-open range [from, to).
func (s *Set) SetRange(from, to uint) {
	if from > to {
		panic(fmt.Errorf("BUG: invalid bit range [%d, %d)", from, to))
	}
	if from == to {
		return
	}
	s.check(to - 1)

	words := s.bs.Words()
	for from < to {
		w := from / WordBits
		off := from % WordBits
		n := min(WordBits-off, to-from)
		words[w] |= (^uint64(0) >> (WordBits - n)) << off
		from += n
	}
}

// SetUp sets count bits starting at from and extending upward,
// that is the range [from, from+count).
func (s *Set) SetUp(from, count uint) {
	s.SetRange(from, from+count)
}

// SetDown sets count bits starting at from and extending downward,
// that is the range (from-count, from].
func (s *Set) SetDown(from, count uint) {
	if count == 0 {
		return
	}
	if count > from+1 {
		panic(fmt.Errorf(
			"BUG: cannot set %d bits downward from bit %d", count, from,
		))
	}
	s.SetRange(from+1-count, from+1)
}

// And sets s to the intersection of s and o.
func (s *Set) And(o *Set) {
	s.checkSameLen(o)
	s.bs.InPlaceIntersection(o.bs)
}

// Or sets s to the union of s and o.
func (s *Set) Or(o *Set) {
	s.checkSameLen(o)
	s.bs.InPlaceUnion(o.bs)
}

// Xor sets s to the symmetric difference of s and o.
func (s *Set) Xor(o *Set) {
	s.checkSameLen(o)
	s.bs.InPlaceSymmetricDifference(o.bs)
}

// Not inverts every bit of s within its capacity.
func (s *Set) Not() {
	words := s.bs.Words()
	for i := range words {
		words[i] = ^words[i]
	}
	if tail := s.bs.Len() % WordBits; tail != 0 {
		words[len(words)-1] &= (uint64(1) << tail) - 1
	}
}

// Equal reports whether s and o have the same capacity and the same bits set.
func (s *Set) Equal(o *Set) bool {
	return s.bs.Equal(o.bs)
}

// Any reports whether any bit is set.
func (s *Set) Any() bool { return s.bs.Any() }

// None reports whether no bit is set.
func (s *Set) None() bool { return s.bs.None() }

// Count returns the number of set bits.
func (s *Set) Count() uint { return s.bs.Count() }

// MostSignificantBit returns the index of the highest set bit.
// Words are scanned from the most significant word downward.
func (s *Set) MostSignificantBit() (uint, bool) {
	words := s.bs.Words()
	for w := len(words) - 1; w >= 0; w-- {
		if i, ok := MostSignificantBit(words[w]); ok {
			return uint(w)*WordBits + i, true
		}
	}
	return 0, false
}

// LeastSignificantBit returns the index of the lowest set bit.
// Words are scanned from the least significant word upward.
func (s *Set) LeastSignificantBit() (uint, bool) {
	for w, word := range s.bs.Words() {
		if i, ok := LeastSignificantBit(word); ok {
			return uint(w)*WordBits + i, true
		}
	}
	return 0, false
}

// All returns an iterator over the indices of the set bits,
// in ascending order.
func (s *Set) All() iter.Seq[uint] {
	return func(yield func(uint) bool) {
		for i, ok := s.bs.NextSet(0); ok; i, ok = s.bs.NextSet(i + 1) {
			if !yield(i) {
				return
			}
		}
	}
}

// Clone returns a deep copy of s.
func (s *Set) Clone() *Set {
	return &Set{bs: s.bs.Clone()}
}

// String returns the set bits in the same format as [bitset.BitSet].
func (s *Set) String() string {
	return s.bs.String()
}
