// Copyright 2018 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

package stats

import (
	"math"
	"testing"

	"github.com/relplan/optcore/pkg/opt"
	"github.com/relplan/optcore/pkg/opt/props"
	"github.com/stretchr/testify/require"
)

func uniformHist(lo, hi, distinct float64) *props.Histogram {
	return props.NewHistogram([]props.Bucket{
		{Lower: lo, Upper: hi, LowerClosed: true, Frequency: 1, Distinct: distinct},
	}, 0, 0, 0)
}

func TestJoinHistogramsEmptyInput(t *testing.T) {
	cfg := DefaultConfig()
	h1, h2 := uniformHist(0, 10, 10), uniformHist(0, 10, 10)
	out1, out2, sf := JoinHistograms(&cfg, h1, h2, opt.CmpEq, 100, 50, true /* emptyInput */)
	require.Equal(t, 5000.0, sf)
	require.True(t, out1.IsEmpty())
	require.True(t, out2.IsEmpty())
	require.False(t, out1.ColStatsMissing())
}

func TestJoinHistogramsMissingHistogram(t *testing.T) {
	cfg := DefaultConfig()
	h1, h2 := props.EmptyHistogram(), uniformHist(0, 10, 10)
	out1, out2, sf := JoinHistograms(&cfg, h1, h2, opt.CmpEq, 100, 50, false /* emptyInput */)
	require.Equal(t, 50.0, sf)
	require.True(t, out1.Equals(h1))
	require.True(t, out2.Equals(h2))
	require.NotSame(t, h1, out1)
	require.NotSame(t, h2, out2)
}

func TestJoinHistogramsEquality(t *testing.T) {
	h1 := uniformHist(0, 10, 10).WithNDVScaled()
	h2 := uniformHist(0, 10, 10)

	for _, propagate := range []bool{true, false} {
		cfg := DefaultConfig()
		cfg.EnableNDVScalePropagation = propagate
		for _, cmp := range []opt.CmpType{opt.CmpEq, opt.CmpINDF} {
			out1, out2, sf := JoinHistograms(&cfg, h1, h2, cmp, 100, 100, false /* emptyInput */)
			// Each value matches 1/10th of the other side.
			require.InDelta(t, 10.0, sf, 1e-9)
			require.Equal(t, 1, out1.BucketCount())
			require.InDelta(t, 1.0, out1.TotalFrequency(), 1e-9)
			require.InDelta(t, 10.0, out1.Distinct(), 1e-9)
			require.NotSame(t, out1, out2)
			require.Equal(t, propagate, out1.NDVScaled())
			require.False(t, out2.NDVScaled())
			if !propagate {
				require.True(t, out1.Equals(out2))
			}
		}
	}
}

func TestJoinHistogramsFallback(t *testing.T) {
	h1, h2 := uniformHist(0, 10, 10), uniformHist(5, 15, 10)
	testCases := []struct {
		cmp       opt.CmpType
		defaultSF float64
	}{
		{opt.CmpLike, 100},
		{opt.CmpOther, 100},
		{opt.CmpLt, 100},
		{opt.CmpNEq, 100},
		{opt.CmpLt, 7},
	}
	for _, tc := range testCases {
		t.Run(tc.cmp.String(), func(t *testing.T) {
			cfg := DefaultConfig()
			cfg.DefaultJoinScaleFactor = tc.defaultSF
			out1, out2, sf := JoinHistograms(&cfg, h1, h2, tc.cmp, 100, 100, false /* emptyInput */)
			require.Equal(t, tc.defaultSF, sf)
			require.True(t, out1.Equals(h1))
			require.True(t, out2.Equals(h2))
			require.NotSame(t, h1, out1)
			require.NotSame(t, h2, out2)
		})
	}
}

func TestJoinHistogramsNilArgument(t *testing.T) {
	cfg := DefaultConfig()
	require.Panics(t, func() {
		JoinHistograms(&cfg, nil, uniformHist(0, 1, 1), opt.CmpEq, 1, 1, false /* emptyInput */)
	})
	require.Panics(t, func() {
		JoinHistograms(&cfg, uniformHist(0, 1, 1), uniformHist(0, 1, 1), opt.CmpEq, -1, 1, false /* emptyInput */)
	})
}

func TestCumulativeJoinScaleFactor(t *testing.T) {
	cfg := DefaultConfig()
	require.Equal(t, 1.0, CumulativeJoinScaleFactor(&cfg, nil))
	require.Equal(t, 1.0, CumulativeJoinScaleFactor(&cfg, []float64{0.5}))
	require.InDelta(t, 100*math.Pow(10, 0.01), CumulativeJoinScaleFactor(&cfg, []float64{10, 100}), 1e-9)

	// The input is not reordered.
	factors := []float64{10, 100}
	CumulativeJoinScaleFactor(&cfg, factors)
	require.Equal(t, []float64{10, 100}, factors)

	cfg.DampingFactorJoin = 1
	require.InDelta(t, 1000.0, CumulativeJoinScaleFactor(&cfg, factors), 1e-9)
}
