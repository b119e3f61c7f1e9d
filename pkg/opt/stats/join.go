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

// Join derives the statistics of a join of the given type between outer and
// inner under the conjunction of preds. Left outer joins are delegated to
// LeftOuterJoin.
func (b *Builder) Join(
	joinType opt.JoinType, outer, inner *props.Statistics, preds []JoinPredicate,
) *props.Statistics {
	if joinType == opt.LeftOuterJoin {
		return b.LeftOuterJoin(outer, inner, preds)
	}
	return b.joinDriver(joinType, outer, inner, preds, false /* ignoreLASJHistComputation */)
}

// joinDriver combines the histograms of every predicate and derives the row
// count of the join from the damped product of their scale factors.
//
// For a left outer join, the driver computes the inner join part only; the
// unmatched outer rows are added by LeftOuterJoin. If
// ignoreLASJHistComputation is set, a left anti-semi join keeps the copied
// outer histograms instead of computing the histograms of unmatched rows.
func (b *Builder) joinDriver(
	joinType opt.JoinType,
	outer, inner *props.Statistics,
	preds []JoinPredicate,
	ignoreLASJHistComputation bool,
) *props.Statistics {
	if outer == nil || inner == nil {
		panic(errors.AssertionFailedf("join statistics derived from a nil input"))
	}
	outerRows, innerRows := outer.Rows(), inner.Rows()
	emptyInput := outer.IsEmpty() || inner.IsEmpty()

	var emptyOutput bool
	switch joinType {
	case opt.InnerJoin, opt.LeftOuterJoin, opt.LeftSemiJoin:
		emptyOutput = emptyInput
	case opt.LeftAntiSemiJoin:
		// Every outer row survives an anti join with an empty inner input.
		emptyOutput = outer.IsEmpty()
	default:
		panic(errors.AssertionFailedf("unhandled join type %s", joinType))
	}
	keepInnerCols := joinType == opt.InnerJoin || joinType == opt.LeftOuterJoin
	computeLASJ := joinType == opt.LeftAntiSemiJoin && !ignoreLASJHistComputation

	outerHists := make(map[opt.ColumnID]*props.Histogram, len(preds))
	innerHists := make(map[opt.ColumnID]*props.Histogram, len(preds))
	scaleFactors := make([]float64, 0, len(preds))
	// unmatched is the largest fraction of outer rows without a match for any
	// predicate, or -1 if no predicate allows computing it.
	unmatched := -1.0
	for _, p := range preds {
		h1 := mustHistogram(outer, p.OuterCol)
		h2 := mustHistogram(inner, p.InnerCol)
		out1, out2, sf := JoinHistograms(&b.cfg, h1, h2, p.Cmp, outerRows, innerRows, emptyOutput)
		scaleFactors = append(scaleFactors, sf)
		log.VEventf(b.ctx, 3, "%s join predicate %v: scale factor %.6g", joinType, p, redact.Safe(sf))

		if joinType == opt.LeftAntiSemiJoin && inner.IsEmpty() && !emptyOutput {
			out1 = h1.Copy()
		} else if computeLASJ && !emptyInput && !h1.IsEmpty() && !h2.IsEmpty() {
			if lasj, ok := h1.AntiSemiJoin(p.Cmp, h2); ok {
				unmatched = math.Max(unmatched, lasj.TotalFrequency())
				out1, _ = lasj.Normalize()
			}
		}
		if _, ok := outerHists[p.OuterCol]; !ok {
			outerHists[p.OuterCol] = out1
		}
		if _, ok := innerHists[p.InnerCol]; !ok {
			innerHists[p.InnerCol] = out2
		}
	}

	scaleFactor := CumulativeJoinScaleFactor(&b.cfg, scaleFactors)
	innerJoinRows := outerRows * innerRows / scaleFactor

	var rows float64
	switch joinType {
	case opt.InnerJoin, opt.LeftOuterJoin:
		rows = innerJoinRows
	case opt.LeftSemiJoin:
		rows = math.Min(outerRows, innerJoinRows)
	case opt.LeftAntiSemiJoin:
		if inner.IsEmpty() {
			rows = outerRows
		} else if unmatched >= 0 {
			rows = outerRows * unmatched
		} else {
			rows = unmatchedOuterRows(outerRows, innerJoinRows)
		}
	}
	if emptyOutput {
		rows = 0
	} else if outerRows > 0 && (innerRows > 0 || joinType == opt.LeftAntiSemiJoin) {
		rows = math.Max(rows, b.cfg.MinRows)
	}

	var sb props.StatisticsBuilder
	sb.Init(rows)
	sb.SetEmpty(emptyOutput)
	numPredicates := outer.NumPredicates() + len(preds)
	if keepInnerCols {
		numPredicates += inner.NumPredicates()
	}
	sb.SetNumPredicates(numPredicates)

	for col, h := range outerHists {
		sb.SetHistogram(col, b.capNDVs(h, rows))
	}
	b.copyHistograms(outer, &sb, rows)
	AddWidthInfo(outer, &sb)
	if keepInnerCols {
		for col, h := range innerHists {
			if !sb.HasHistogram(col) {
				sb.SetHistogram(col, b.capNDVs(h, rows))
			}
		}
		b.copyHistograms(inner, &sb, rows)
		AddWidthInfo(inner, &sb)
	}

	method := BoundMin
	if joinType == opt.InnerJoin {
		method = BoundOutput
	}
	ComputeCardUpperBounds(outer, &sb, rows, method)
	if keepInnerCols {
		ComputeCardUpperBounds(inner, &sb, rows, method)
	}

	s := sb.Build()
	log.VEventf(b.ctx, 2, "%s join: scale factor %.6g, rows %.6g",
		joinType, redact.Safe(scaleFactor), redact.Safe(rows))
	return s
}

// mustHistogram returns the histogram of a column referenced by a join
// predicate. Every such column must have an entry, possibly the empty
// histogram.
func mustHistogram(s *props.Statistics, col opt.ColumnID) *props.Histogram {
	h, ok := s.Histogram(col)
	if !ok {
		panic(errors.AssertionFailedf("no histogram entry for join column %d", redact.Safe(col)))
	}
	return h
}

// unmatchedOuterRows estimates the outer rows of a join without a match when
// no histogram allows computing them: every inner join row is assumed to
// consume a distinct outer row.
func unmatchedOuterRows(outerRows, innerJoinRows float64) float64 {
	return math.Max(outerRows-innerJoinRows, 0)
}
