// Copyright 2018 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

package props

import (
	"bytes"
	"fmt"
	"math"

	"github.com/relplan/optcore/pkg/opt/cat"
)

// epsilon is the smallest frequency or distinct count that is treated as
// non-zero.
const epsilon = 1e-9

// Bucket is a range of values in a Histogram. All values of a column have
// been mapped onto the numeric line before they reach the optimizer, so
// bounds are float64s.
type Bucket struct {
	Lower, Upper             float64
	LowerClosed, UpperClosed bool

	// Frequency is the fraction of the relation's rows whose value falls in
	// the bucket.
	Frequency float64

	// Distinct is the number of distinct values in the bucket.
	Distinct float64
}

// MakeSingletonBucket returns a bucket holding the single value v.
func MakeSingletonBucket(v, freq, distinct float64) Bucket {
	return Bucket{
		Lower: v, Upper: v, LowerClosed: true, UpperClosed: true,
		Frequency: freq, Distinct: distinct,
	}
}

func bucketFromCatalog(b *cat.HistogramBucket) Bucket {
	return Bucket{
		Lower:       b.Lower,
		Upper:       b.Upper,
		LowerClosed: b.LowerClosed,
		UpperClosed: b.UpperClosed,
		Frequency:   b.Frequency,
		Distinct:    b.Distinct,
	}
}

// IsSingleton returns true if the bucket contains exactly one value.
func (b *Bucket) IsSingleton() bool {
	return b.Lower == b.Upper
}

// Width returns the length of the bucket's range.
func (b *Bucket) Width() float64 {
	return b.Upper - b.Lower
}

// Contains returns true if the value lies inside the bucket.
func (b *Bucket) Contains(v float64) bool {
	if v < b.Lower || v > b.Upper {
		return false
	}
	if v == b.Lower && !b.LowerClosed {
		return false
	}
	if v == b.Upper && !b.UpperClosed {
		return false
	}
	return true
}

// valid returns false if the bucket bounds or counts are inconsistent.
func (b *Bucket) valid() bool {
	if math.IsNaN(b.Lower) || math.IsNaN(b.Upper) || b.Lower > b.Upper {
		return false
	}
	if b.IsSingleton() && !(b.LowerClosed && b.UpperClosed) {
		return false
	}
	return b.Frequency >= 0 && b.Distinct >= 0
}

// endsBefore returns true if every value of b is smaller than every value of
// other that lies at or after b's upper bound. It is used to decide which
// bucket to advance during a merge sweep.
func (b *Bucket) endsBefore(other *Bucket) bool {
	if b.Upper != other.Upper {
		return b.Upper < other.Upper
	}
	return !b.UpperClosed && other.UpperClosed
}

// precedes returns true if b lies strictly before next, without overlap.
func (b *Bucket) precedes(next *Bucket) bool {
	if b.Upper != next.Lower {
		return b.Upper < next.Lower
	}
	return !(b.UpperClosed && next.LowerClosed)
}

// intersect returns the range shared by the two buckets, with zero counts.
// ok is false if the buckets do not overlap.
func (b *Bucket) intersect(other *Bucket) (r Bucket, ok bool) {
	switch {
	case b.Lower > other.Lower:
		r.Lower, r.LowerClosed = b.Lower, b.LowerClosed
	case b.Lower < other.Lower:
		r.Lower, r.LowerClosed = other.Lower, other.LowerClosed
	default:
		r.Lower, r.LowerClosed = b.Lower, b.LowerClosed && other.LowerClosed
	}
	switch {
	case b.Upper < other.Upper:
		r.Upper, r.UpperClosed = b.Upper, b.UpperClosed
	case b.Upper > other.Upper:
		r.Upper, r.UpperClosed = other.Upper, other.UpperClosed
	default:
		r.Upper, r.UpperClosed = b.Upper, b.UpperClosed && other.UpperClosed
	}
	if r.Lower < r.Upper || (r.Lower == r.Upper && r.LowerClosed && r.UpperClosed) {
		return r, true
	}
	return Bucket{}, false
}

// slice returns the part of b that lies in the given range, which must be
// contained in b. Values are assumed to be uniformly distributed inside the
// bucket, so a range slice keeps a share of the counts proportional to its
// width and a single point keeps one of the bucket's distinct values.
func (b *Bucket) slice(r Bucket) Bucket {
	r.Frequency, r.Distinct = b.Frequency, b.Distinct
	switch {
	case b.IsSingleton():
	case r.IsSingleton():
		if b.Distinct > 1 {
			r.Frequency = b.Frequency / b.Distinct
			r.Distinct = 1
		}
	default:
		ratio := r.Width() / b.Width()
		r.Frequency = b.Frequency * ratio
		r.Distinct = b.Distinct * ratio
	}
	return r
}

// fractionAbove returns the share of the bucket's values that are strictly
// greater than v.
func (b *Bucket) fractionAbove(v float64) float64 {
	switch {
	case v < b.Lower:
		return 1
	case v >= b.Upper:
		return 0
	case b.IsSingleton():
		return 0
	}
	return (b.Upper - v) / b.Width()
}

func (b *Bucket) String() string {
	var buf bytes.Buffer
	b.format(&buf)
	return buf.String()
}

func (b *Bucket) format(buf *bytes.Buffer) {
	if b.IsSingleton() {
		fmt.Fprintf(buf, "[%g]", b.Lower)
		return
	}
	if b.LowerClosed {
		buf.WriteByte('[')
	} else {
		buf.WriteByte('(')
	}
	fmt.Fprintf(buf, "%g, %g", b.Lower, b.Upper)
	if b.UpperClosed {
		buf.WriteByte(']')
	} else {
		buf.WriteByte(')')
	}
}
