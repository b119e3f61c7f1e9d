// Copyright 2018 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

package props

import (
	"math"
	"testing"

	"github.com/cockroachdb/redact"
	"github.com/relplan/optcore/pkg/opt"
	"github.com/stretchr/testify/require"
)

func buildTestStats() *Statistics {
	var sb StatisticsBuilder
	sb.Init(1000)
	sb.SetHistogram(1, NewHistogram([]Bucket{rangeBucket(0, 10, 1, 10)}, 0, 0, 0))
	sb.SetWidth(1, 8)
	sb.SetWidth(2, 16)
	sb.EnsureColumns(opt.MakeColSet(1, 2))
	sb.AddUpperBound(opt.MakeColSet(1, 2), 1000)
	sb.AddUpperBound(opt.MakeColSet(2), 500)
	sb.SetNumPredicates(2)
	return sb.Build()
}

func TestStatisticsBuilder(t *testing.T) {
	s := buildTestStats()
	require.Equal(t, 1000.0, s.Rows())
	require.Equal(t, opt.ColList{1, 2}, s.Columns())
	h, ok := s.Histogram(2)
	require.True(t, ok)
	require.True(t, h.IsEmpty())
	require.True(t, h.ColStatsMissing())
	h, _ = s.Histogram(1)
	require.False(t, h.IsEmpty())

	require.Equal(t, 24.0, s.RowWidth())
	require.Equal(t, 1000.0, s.UpperBound(1))
	require.Equal(t, 500.0, s.UpperBound(2))
	require.True(t, math.IsInf(s.UpperBound(3), 1))
	require.Equal(t, 2, s.NumPredicates())

	var sb StatisticsBuilder
	require.Panics(t, func() { sb.Init(-1) })
	require.Panics(t, func() { sb.SetRows(1) })
	sb.Init(1)
	sb.Build()
	require.Panics(t, func() { sb.SetWidth(1, 1) }, "builder cannot be reused after Build")
}

func TestStatisticsCopy(t *testing.T) {
	s := buildTestStats()
	c1 := s.Copy()
	c2 := c1.Copy()
	require.True(t, s.Equals(c2))
	require.NotSame(t, s, c2)

	h1, _ := s.Histogram(1)
	h2, _ := c2.Histogram(1)
	require.NotSame(t, h1, h2)
	require.True(t, h1.Equals(h2))

	ub := c2.UpperBounds()
	ub[0].UpperBound = 1
	require.Equal(t, 1000.0, s.UpperBound(1))

	var sb StatisticsBuilder
	sb.Init(999)
	require.False(t, s.Equals(sb.Build()))
}

func TestStatisticsString(t *testing.T) {
	s := buildTestStats()
	str := s.String()
	require.Contains(t, str, "rows: 1,000, predicates: 2, width: 24")
	require.Contains(t, str, "missing")
	require.Contains(t, str, "upper bound")
	require.Equal(t, "[rows=1000, cols=2]", redact.Sprint(s).StripMarkers())
	require.Equal(t, "33.33", humanizeRows(100.0/3))
}
