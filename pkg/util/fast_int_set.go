// Copyright 2017 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

package util

import (
	"bytes"
	"fmt"
	"math"
	"math/bits"

	"golang.org/x/tools/container/intsets"
)

// smallCutoff is the size of the small set. Values in [0, smallCutoff) are
// stored in a bitmap; as soon as any other value is added, the set switches
// to the large representation.
const smallCutoff = 64

// FastIntSet keeps track of a set of integers. It does not perform any
// allocations when the values are small. It is not thread-safe.
type FastIntSet struct {
	small uint64
	large *intsets.Sparse
}

// MakeFastIntSet returns a set initialized with the given values.
func MakeFastIntSet(vals ...int) FastIntSet {
	var res FastIntSet
	for _, v := range vals {
		res.Add(v)
	}
	return res
}

func fitsSmall(i int) bool { return i >= 0 && i < smallCutoff }

// toLarge converts the set to the large representation, if it isn't already.
func (s *FastIntSet) toLarge() *intsets.Sparse {
	if s.large != nil {
		return s.large
	}
	large := new(intsets.Sparse)
	for i, ok := s.nextSmall(0); ok; i, ok = s.nextSmall(i + 1) {
		large.Insert(i)
	}
	s.large = large
	s.small = 0
	return large
}

func (s *FastIntSet) nextSmall(startVal int) (int, bool) {
	if startVal < 0 {
		startVal = 0
	}
	if startVal >= smallCutoff {
		return 0, false
	}
	w := s.small >> uint(startVal)
	if w == 0 {
		return 0, false
	}
	return startVal + bits.TrailingZeros64(w), true
}

// Add adds a value to the set. No-op if the value is already in the set.
func (s *FastIntSet) Add(i int) {
	if s.large == nil && fitsSmall(i) {
		s.small |= 1 << uint(i)
		return
	}
	s.toLarge().Insert(i)
}

// AddRange adds values 'from' up to 'to' (inclusively) to the set.
// E.g. AddRange(1,5) adds the values 1, 2, 3, 4, 5 to the set.
// 'to' must be >= 'from'.
func (s *FastIntSet) AddRange(from, to int) {
	if to < from {
		panic("invalid range when adding range to FastIntSet")
	}
	if s.large == nil && fitsSmall(from) && fitsSmall(to) {
		var mask uint64
		if to-from+1 == smallCutoff {
			mask = math.MaxUint64
		} else {
			mask = (uint64(1)<<uint(to-from+1) - 1) << uint(from)
		}
		s.small |= mask
		return
	}
	for i := from; i <= to; i++ {
		s.Add(i)
	}
}

// Remove removes a value from the set. No-op if the value is not in the set.
func (s *FastIntSet) Remove(i int) {
	if s.large == nil {
		if fitsSmall(i) {
			s.small &^= 1 << uint(i)
		}
		return
	}
	s.large.Remove(i)
}

// Contains returns true if the set contains the value.
func (s FastIntSet) Contains(i int) bool {
	if s.large != nil {
		return s.large.Has(i)
	}
	return fitsSmall(i) && (s.small&(1<<uint(i))) != 0
}

// Empty returns true if the set is empty.
func (s FastIntSet) Empty() bool {
	if s.large != nil {
		return s.large.IsEmpty()
	}
	return s.small == 0
}

// Len returns the number of the elements in the set.
func (s FastIntSet) Len() int {
	if s.large != nil {
		return s.large.Len()
	}
	return bits.OnesCount64(s.small)
}

// Next returns the first value in the set which is >= startVal. If there is no
// value, the second return value is false.
func (s FastIntSet) Next(startVal int) (int, bool) {
	if s.large != nil {
		res := s.large.LowerBound(startVal)
		return res, res != intsets.MaxInt
	}
	return s.nextSmall(startVal)
}

// ForEach calls a function for each value in the set (in increasing order).
func (s FastIntSet) ForEach(f func(i int)) {
	if s.large != nil {
		for _, v := range s.large.AppendTo(nil) {
			f(v)
		}
		return
	}
	for w := s.small; w != 0; {
		i := bits.TrailingZeros64(w)
		f(i)
		w &^= 1 << uint(i)
	}
}

// Ordered returns a slice with all the integers in the set, in increasing order.
func (s FastIntSet) Ordered() []int {
	if s.Empty() {
		return nil
	}
	if s.large != nil {
		return s.large.AppendTo(nil)
	}
	result := make([]int, 0, s.Len())
	s.ForEach(func(i int) {
		result = append(result, i)
	})
	return result
}

// Copy returns a copy of s which can be modified independently.
func (s FastIntSet) Copy() FastIntSet {
	var c FastIntSet
	c.CopyFrom(s)
	return c
}

// CopyFrom sets the receiver to a copy of other, which can then be modified
// independently.
func (s *FastIntSet) CopyFrom(other FastIntSet) {
	if other.large == nil {
		s.small = other.small
		s.large = nil
		return
	}
	s.small = 0
	s.large = new(intsets.Sparse)
	s.large.Copy(other.large)
}

// UnionWith adds all the elements from rhs to this set.
func (s *FastIntSet) UnionWith(rhs FastIntSet) {
	if s.large == nil && rhs.large == nil {
		s.small |= rhs.small
		return
	}
	s.toLarge().UnionWith(rhs.asLarge())
}

// Union returns the union of s and rhs as a new set.
func (s FastIntSet) Union(rhs FastIntSet) FastIntSet {
	r := s.Copy()
	r.UnionWith(rhs)
	return r
}

// IntersectionWith removes any elements not in rhs from this set.
func (s *FastIntSet) IntersectionWith(rhs FastIntSet) {
	if s.large == nil && rhs.large == nil {
		s.small &= rhs.small
		return
	}
	s.toLarge().IntersectionWith(rhs.asLarge())
}

// Intersection returns the intersection of s and rhs as a new set.
func (s FastIntSet) Intersection(rhs FastIntSet) FastIntSet {
	r := s.Copy()
	r.IntersectionWith(rhs)
	return r
}

// Intersects returns true if s has any elements in common with rhs.
func (s FastIntSet) Intersects(rhs FastIntSet) bool {
	if s.large == nil && rhs.large == nil {
		return (s.small & rhs.small) != 0
	}
	return s.asLarge().Intersects(rhs.asLarge())
}

// DifferenceWith removes any elements in rhs from this set.
func (s *FastIntSet) DifferenceWith(rhs FastIntSet) {
	if s.large == nil && rhs.large == nil {
		s.small &^= rhs.small
		return
	}
	s.toLarge().DifferenceWith(rhs.asLarge())
}

// Difference returns the elements of s that are not in rhs as a new set.
func (s FastIntSet) Difference(rhs FastIntSet) FastIntSet {
	r := s.Copy()
	r.DifferenceWith(rhs)
	return r
}

// Equals returns true if the two sets are identical.
func (s FastIntSet) Equals(rhs FastIntSet) bool {
	if s.large == nil && rhs.large == nil {
		return s.small == rhs.small
	}
	return s.asLarge().Equals(rhs.asLarge())
}

// SubsetOf returns true if rhs contains all the elements in s.
func (s FastIntSet) SubsetOf(rhs FastIntSet) bool {
	if s.large == nil && rhs.large == nil {
		return (s.small & rhs.small) == s.small
	}
	return s.asLarge().SubsetOf(rhs.asLarge())
}

// Shift generates a new set which contains elements i+delta for elements i in
// the original set.
func (s FastIntSet) Shift(delta int) FastIntSet {
	var res FastIntSet
	s.ForEach(func(i int) {
		res.Add(i + delta)
	})
	return res
}

// asLarge returns the large representation of the set without modifying the
// receiver. The result must not be modified.
func (s FastIntSet) asLarge() *intsets.Sparse {
	if s.large != nil {
		return s.large
	}
	c := s
	return c.toLarge()
}

// String returns a list representation of elements. Sequential runs of positive
// numbers are shown as ranges. For example, for the set {0, 1, 2, 5, 6, 10},
// the output is "(0-2,5,6,10)".
func (s FastIntSet) String() string {
	var buf bytes.Buffer
	buf.WriteByte('(')
	appendRange := func(start, end int) {
		if buf.Len() > 1 {
			buf.WriteByte(',')
		}
		if start == end {
			fmt.Fprintf(&buf, "%d", start)
		} else if start+1 == end {
			fmt.Fprintf(&buf, "%d,%d", start, end)
		} else {
			fmt.Fprintf(&buf, "%d-%d", start, end)
		}
	}
	rangeStart, rangeEnd := -1, -1
	s.ForEach(func(i int) {
		if i < 0 {
			appendRange(i, i)
			return
		}
		if rangeStart != -1 && rangeEnd == i-1 {
			rangeEnd = i
		} else {
			if rangeStart != -1 {
				appendRange(rangeStart, rangeEnd)
			}
			rangeStart, rangeEnd = i, i
		}
	})
	if rangeStart != -1 {
		appendRange(rangeStart, rangeEnd)
	}
	buf.WriteByte(')')
	return buf.String()
}
