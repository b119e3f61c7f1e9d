// Copyright 2018 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

package stats

import (
	"math"

	"github.com/cockroachdb/errors"
	"github.com/cockroachdb/redact"
	"github.com/relplan/optcore/pkg/opt"
	"github.com/relplan/optcore/pkg/opt/props"
	"github.com/relplan/optcore/pkg/util/log"
)

// LeftOuterJoin derives the statistics of a left outer join. The inner join
// part is derived by the join driver; the outer rows without a match are
// estimated separately by subtracting the inner histograms from the outer
// ones, and added back to both the row count and the histograms of the outer
// join columns.
func (b *Builder) LeftOuterJoin(
	outer, inner *props.Statistics, preds []JoinPredicate,
) *props.Statistics {
	if outer == nil || inner == nil {
		panic(errors.AssertionFailedf("left outer join statistics derived from a nil input"))
	}
	innerJoin := b.joinDriver(opt.LeftOuterJoin, outer, inner, preds, true /* ignoreLASJHistComputation */)
	outerRows := outer.Rows()
	innerJoinRows := innerJoin.Rows()

	// Compute the histograms of the unmatched outer rows for every outer join
	// column; the largest unmatched row count over all predicates wins.
	type lasjHist struct {
		h    *props.Histogram
		rows float64
	}
	lasjHists := make(map[opt.ColumnID]lasjHist, len(preds))
	var outerJoinCols opt.ColSet
	unmatchedRows := -1.0
	if !outer.IsEmpty() {
		for _, p := range preds {
			outerJoinCols.Add(p.OuterCol)
			h1 := mustHistogram(outer, p.OuterCol)
			h2 := mustHistogram(inner, p.InnerCol)
			if h1.IsEmpty() || h2.IsEmpty() || inner.IsEmpty() {
				continue
			}
			lasj, ok := h1.AntiSemiJoin(p.Cmp, h2)
			if !ok {
				continue
			}
			rows := lasj.TotalFrequency() * outerRows
			unmatchedRows = math.Max(unmatchedRows, rows)
			if _, ok := lasjHists[p.OuterCol]; !ok {
				normalized, _ := lasj.Normalize()
				lasjHists[p.OuterCol] = lasjHist{h: normalized, rows: rows}
			}
		}
	}
	switch {
	case outer.IsEmpty():
		unmatchedRows = 0
	case inner.IsEmpty():
		unmatchedRows = outerRows
	case unmatchedRows < 0:
		unmatchedRows = unmatchedOuterRows(outerRows, innerJoinRows)
	}

	lojRows := LeftOuterJoinRows(outerRows, innerJoinRows, unmatchedRows)

	var sb props.StatisticsBuilder
	sb.Init(lojRows)
	sb.SetEmpty(outer.IsEmpty())
	sb.SetNumPredicates(outer.NumPredicates())

	for _, col := range innerJoin.Columns() {
		h, _ := innerJoin.Histogram(col)
		if inner.IsEmpty() && outerJoinCols.Contains(col) {
			// No outer row finds a match, so the column keeps the outer
			// distribution.
			h = mustHistogram(outer, col).Copy()
		} else if l, ok := lasjHists[col]; ok && !h.IsEmpty() {
			// Outer join column: the buckets of the matched rows plus the
			// buckets of the unmatched ones.
			h = h.UnionAllNormalized(innerJoinRows, l.h, l.rows)
		} else {
			// Columns of the inner side keep the inner join shape; their null
			// padding only shows in the row count.
			h = h.Copy()
		}
		sb.SetHistogram(col, h)
	}
	AddWidthInfo(innerJoin, &sb)

	// An outer join cannot raise the number of distinct values of a column
	// beyond what its source allows, even though null padding may raise the
	// row count.
	ComputeCardUpperBounds(outer, &sb, lojRows, BoundMin)
	ComputeCardUpperBounds(inner, &sb, lojRows, BoundMin)

	s := sb.Build()
	log.VEventf(b.ctx, 2, "left outer join: inner join rows %.6g, unmatched rows %.6g, rows %.6g",
		redact.Safe(innerJoinRows), redact.Safe(unmatchedRows), redact.Safe(lojRows))
	return s
}

// LeftOuterJoinRows returns the row count of a left outer join. Every outer
// row appears at least once in the result, so the outer row count is a lower
// bound.
func LeftOuterJoinRows(outerRows, innerJoinRows, unmatchedOuterRows float64) float64 {
	return math.Max(outerRows, innerJoinRows+unmatchedOuterRows)
}
