// Copyright 2018 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

package props

import (
	"math"
	"strings"
	"testing"

	"github.com/cockroachdb/redact"
	"github.com/relplan/optcore/pkg/opt"
	"github.com/relplan/optcore/pkg/opt/cat"
	"github.com/stretchr/testify/require"
)

const tolerance = 1e-9

func rangeBucket(lo, hi, freq, distinct float64) Bucket {
	return Bucket{Lower: lo, Upper: hi, LowerClosed: true, Frequency: freq, Distinct: distinct}
}

func TestNewHistogram(t *testing.T) {
	require.NotPanics(t, func() {
		NewHistogram([]Bucket{rangeBucket(0, 10, 0.5, 5), rangeBucket(10, 20, 0.5, 5)}, 0, 0, 0)
	})

	testCases := []struct {
		name    string
		buckets []Bucket
	}{
		{"overlap", []Bucket{rangeBucket(0, 10, 0.5, 5), rangeBucket(5, 15, 0.5, 5)}},
		{"shared closed bound", []Bucket{
			{Lower: 0, Upper: 10, LowerClosed: true, UpperClosed: true, Frequency: 0.5, Distinct: 5},
			rangeBucket(10, 20, 0.5, 5),
		}},
		{"out of order", []Bucket{rangeBucket(10, 20, 0.5, 5), rangeBucket(0, 10, 0.5, 5)}},
		{"inverted bounds", []Bucket{rangeBucket(10, 0, 0.5, 5)}},
		{"open singleton", []Bucket{{Lower: 1, Upper: 1, LowerClosed: true, Frequency: 0.1, Distinct: 1}}},
		{"negative frequency", []Bucket{rangeBucket(0, 10, -0.5, 5)}},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			require.Panics(t, func() { NewHistogram(tc.buckets, 0, 0, 0) })
		})
	}
	require.Panics(t, func() { NewHistogram(nil, 1.5, 0, 0) })
}

func TestHistogramCopy(t *testing.T) {
	h := NewHistogram([]Bucket{rangeBucket(0, 10, 0.4, 4), MakeSingletonBucket(12, 0.5, 1)}, 0.1, 0, 0).WithNDVScaled()
	c1 := h.Copy()
	c2 := c1.Copy()
	require.True(t, h.Equals(c2))
	require.NotSame(t, h, c2)
	require.NotSame(t, &h.buckets[0], &c2.buckets[0])
	c2.buckets[0].Frequency = 0
	require.Equal(t, 0.4, h.Bucket(0).Frequency)

	empty := EmptyHistogram()
	require.True(t, empty.IsEmpty())
	require.True(t, empty.Copy().Equals(empty))
	require.True(t, empty.Copy().ColStatsMissing())
	require.False(t, empty.Equals(h))
}

func TestHistogramFromCatalog(t *testing.T) {
	require.True(t, HistogramFromCatalog(nil).IsEmpty())
	h := HistogramFromCatalog(&cat.ColumnStatistic{
		NullFraction: 0.25,
		Buckets: []cat.HistogramBucket{
			{Lower: 0, Upper: 10, LowerClosed: true, Frequency: 0.75, Distinct: 10},
		},
	})
	require.Equal(t, 1, h.BucketCount())
	require.Equal(t, 0.25, h.NullFreq())
	require.Equal(t, 11.0, h.Distinct())
	require.InDelta(t, 1.0, h.TotalFrequency(), tolerance)
}

func TestNormalizeAndCap(t *testing.T) {
	h := NewHistogram([]Bucket{rangeBucket(0, 10, 0.3, 100)}, 0.1, 0, 0.1)
	n, total := h.Normalize()
	require.InDelta(t, 0.5, total, tolerance)
	require.InDelta(t, 0.6, n.Bucket(0).Frequency, tolerance)
	require.InDelta(t, 0.2, n.NullFreq(), tolerance)
	require.InDelta(t, 0.2, n.FreqRemain(), tolerance)
	require.InDelta(t, 1.0, n.TotalFrequency(), tolerance)

	capped := h.CapNDVs(50)
	require.InDelta(t, 50, capped.Bucket(0).Distinct, tolerance)
	require.True(t, capped.NDVScaled())

	unchanged := h.CapNDVs(200)
	require.True(t, unchanged.Equals(h))
	require.False(t, unchanged.NDVScaled())
}

func TestJoinNormalized(t *testing.T) {
	uniform := NewHistogram([]Bucket{rangeBucket(0, 10, 1, 10)}, 0, 0, 0)
	shifted := NewHistogram([]Bucket{rangeBucket(5, 15, 1, 10)}, 0, 0, 0)
	disjoint := NewHistogram([]Bucket{rangeBucket(20, 30, 1, 10)}, 0, 0, 0)
	above := NewHistogram([]Bucket{rangeBucket(10, 20, 1, 10)}, 0, 0, 0)
	withNulls := NewHistogram([]Bucket{rangeBucket(0, 10, 0.8, 10)}, 0.2, 0, 0)

	testCases := []struct {
		name    string
		cmp     opt.CmpType
		h1, h2  *Histogram
		scale   float64
		buckets []Bucket
		null    float64
	}{
		{
			name: "eq identical", cmp: opt.CmpEq, h1: uniform, h2: uniform, scale: 10,
			buckets: []Bucket{rangeBucket(0, 10, 1, 10)},
		},
		{
			name: "eq partial overlap", cmp: opt.CmpEq, h1: uniform, h2: shifted, scale: 20,
			buckets: []Bucket{rangeBucket(5, 10, 1, 5)},
		},
		{
			name: "eq disjoint", cmp: opt.CmpEq, h1: uniform, h2: disjoint, scale: 10000,
		},
		{
			name: "indf matches nulls", cmp: opt.CmpINDF, h1: withNulls, h2: withNulls, scale: 1 / 0.104,
			buckets: []Bucket{rangeBucket(0, 10, 0.064/0.104, 10)}, null: 0.04 / 0.104,
		},
		{
			name: "eq ignores nulls", cmp: opt.CmpEq, h1: withNulls, h2: withNulls, scale: 1 / 0.064,
			buckets: []Bucket{rangeBucket(0, 10, 1, 10)},
		},
		{name: "neq", cmp: opt.CmpNEq, h1: uniform, h2: uniform, scale: 1 / 0.9},
		{name: "idf", cmp: opt.CmpIDF, h1: withNulls, h2: withNulls, scale: 1 / (1 - 0.104)},
		{name: "lt overlapping", cmp: opt.CmpLt, h1: uniform, h2: uniform, scale: 2},
		{name: "lt below", cmp: opt.CmpLt, h1: uniform, h2: above, scale: 1},
		{name: "gt below", cmp: opt.CmpGt, h1: uniform, h2: above, scale: 10000},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			joined, scale := tc.h1.JoinNormalized(tc.cmp, 100, tc.h2, 100)
			require.InDelta(t, tc.scale, scale, 1e-6)
			require.Equal(t, len(tc.buckets), joined.BucketCount())
			for i := range tc.buckets {
				b := joined.Bucket(i)
				require.Equal(t, tc.buckets[i].Lower, b.Lower)
				require.Equal(t, tc.buckets[i].Upper, b.Upper)
				require.InDelta(t, tc.buckets[i].Frequency, b.Frequency, 1e-6)
				require.InDelta(t, tc.buckets[i].Distinct, b.Distinct, 1e-6)
			}
			require.InDelta(t, tc.null, joined.NullFreq(), 1e-6)
			require.False(t, joined.NDVScaled())
		})
	}

	require.Panics(t, func() { uniform.JoinNormalized(opt.CmpLike, 1, uniform, 1) })
	require.Panics(t, func() { uniform.JoinNormalized(opt.CmpEq, -1, uniform, 1) })
}

func TestJoinNormalizedCapsNDVs(t *testing.T) {
	h := NewHistogram([]Bucket{rangeBucket(0, 1000, 1, 1000)}, 0, 0, 0)
	joined, scale := h.JoinNormalized(opt.CmpEq, 10, h, 10)
	// The scale factor is clamped to the size of the cartesian product, which
	// leaves a single row and caps the distinct count accordingly.
	require.InDelta(t, 100, scale, tolerance)
	require.InDelta(t, 1, joined.Distinct(), tolerance)
}

func TestAntiSemiJoin(t *testing.T) {
	outer := NewHistogram([]Bucket{rangeBucket(0, 10, 0.9, 10)}, 0.1, 0, 0)
	inner := NewHistogram([]Bucket{rangeBucket(0, 5, 0.5, 5)}, 0.5, 0, 0)

	res, ok := outer.AntiSemiJoin(opt.CmpEq, inner)
	require.True(t, ok)
	require.Equal(t, 1, res.BucketCount())
	require.InDelta(t, 0.45, res.Bucket(0).Frequency, tolerance)
	require.InDelta(t, 5, res.Bucket(0).Distinct, tolerance)
	require.InDelta(t, 0.1, res.NullFreq(), tolerance)
	require.InDelta(t, 0.55, res.TotalFrequency(), tolerance)

	res, ok = outer.AntiSemiJoin(opt.CmpINDF, inner)
	require.True(t, ok)
	require.Equal(t, 0.0, res.NullFreq())

	res, ok = outer.AntiSemiJoin(opt.CmpEq, outer)
	require.True(t, ok)
	require.True(t, res.IsEmpty())

	_, ok = outer.AntiSemiJoin(opt.CmpLt, inner)
	require.False(t, ok)
}

func TestUnionAllNormalized(t *testing.T) {
	t.Run("same bounds", func(t *testing.T) {
		h1 := NewHistogram([]Bucket{rangeBucket(0, 10, 1, 10)}, 0, 0, 0)
		h2 := NewHistogram([]Bucket{rangeBucket(0, 10, 0.5, 5)}, 0.5, 0, 0)
		res := h1.UnionAllNormalized(100, h2, 100)
		require.Equal(t, 1, res.BucketCount())
		require.InDelta(t, 0.75, res.Bucket(0).Frequency, tolerance)
		require.InDelta(t, 10, res.Bucket(0).Distinct, tolerance)
		require.InDelta(t, 0.25, res.NullFreq(), tolerance)
		require.InDelta(t, 1, res.TotalFrequency(), tolerance)
	})

	t.Run("split at singleton", func(t *testing.T) {
		h1 := NewHistogram([]Bucket{rangeBucket(0, 10, 1, 10)}, 0, 0, 0)
		h2 := NewHistogram([]Bucket{MakeSingletonBucket(5, 1, 1)}, 0, 0, 0)
		res := h1.UnionAllNormalized(50, h2, 50)
		require.Equal(t, 3, res.BucketCount())
		require.Equal(t, Bucket{Lower: 0, Upper: 5, LowerClosed: true, Frequency: 0.25, Distinct: 5}, res.Bucket(0))
		require.Equal(t, MakeSingletonBucket(5, 0.5, 1), res.Bucket(1))
		require.Equal(t, Bucket{Lower: 5, Upper: 10, Frequency: 0.25, Distinct: 5}, res.Bucket(2))
		require.InDelta(t, 1, res.TotalFrequency(), tolerance)
	})

	t.Run("zero rows", func(t *testing.T) {
		h := NewHistogram([]Bucket{rangeBucket(0, 10, 1, 10)}, 0, 0, 0)
		require.True(t, h.UnionAllNormalized(0, EmptyHistogram(), 0).Equals(h))
	})
}

func TestFilter(t *testing.T) {
	h := NewHistogram([]Bucket{rangeBucket(0, 10, 0.8, 10), MakeSingletonBucket(20, 0.1, 1)}, 0.1, 0, 0)
	res := h.Filter([]Span{{Lower: 0, Upper: 5, LowerClosed: true}})
	require.Equal(t, 1, res.BucketCount())
	require.InDelta(t, 0.4, res.Frequency(), tolerance)
	require.Equal(t, 0.0, res.NullFreq())

	res = h.Filter([]Span{MakePointSpan(20)})
	require.Equal(t, 1, res.BucketCount())
	require.InDelta(t, 0.1, res.Frequency(), tolerance)

	res = h.Filter([]Span{UnconstrainedSpan})
	require.InDelta(t, 0.9, res.Frequency(), tolerance)
}

func TestHistogramString(t *testing.T) {
	h := NewHistogram([]Bucket{rangeBucket(0, 10, 0.5, 10), MakeSingletonBucket(12, 0.5, 1)}, 0, 0, 0)
	s := h.String()
	lines := strings.Split(s, "\n")
	require.Len(t, lines, 3)
	require.True(t, strings.HasPrefix(lines[1], "<"))
	require.Contains(t, lines[1], "[0, 10)")
	require.Contains(t, lines[1], "[12]")
	require.Equal(t, "null=0 remain=0/0", lines[2])

	require.Equal(t, "null=0 remain=0/0 missing", EmptyHistogram().String())
	require.Equal(t,
		"histogram(buckets=2, freq=1, null=0, ndv=11)",
		redact.Sprint(h).StripMarkers(),
	)
	require.True(t, math.IsInf(UnconstrainedSpan.Upper, 1))
}
