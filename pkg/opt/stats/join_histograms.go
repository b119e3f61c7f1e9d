// Copyright 2018 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

package stats

import (
	"math"
	"sort"

	"github.com/cockroachdb/errors"
	"github.com/cockroachdb/redact"
	"github.com/relplan/optcore/pkg/opt"
	"github.com/relplan/optcore/pkg/opt/props"
)

// JoinHistograms combines the histograms of the two columns of a join
// predicate. rows1 and rows2 are the row counts of the two inputs, and
// emptyInput is set if either input provably produces no rows. It returns the
// histograms of both columns after the join, which never alias the inputs,
// and the scale factor that divides the cartesian product.
//
// The cases are evaluated in order:
//   - an empty input yields the cartesian product as scale factor and two
//     empty histograms;
//   - if either histogram is missing, the scale factor is min(rows1, rows2),
//     which amounts to one side matching fully;
//   - for = and IS NOT DISTINCT FROM, the joined histogram is returned for
//     both columns;
//   - otherwise both inputs are copied and the scale factor is the default
//     one, or the one of the missing histogram case.
func JoinHistograms(
	cfg *Config, h1, h2 *props.Histogram, cmp opt.CmpType, rows1, rows2 float64, emptyInput bool,
) (out1, out2 *props.Histogram, scaleFactor float64) {
	if cfg == nil || h1 == nil || h2 == nil {
		panic(errors.AssertionFailedf("JoinHistograms called with a nil argument"))
	}
	if rows1 < 0 || rows2 < 0 {
		panic(errors.AssertionFailedf(
			"negative row count: %v, %v", redact.Safe(rows1), redact.Safe(rows2),
		))
	}

	if emptyInput {
		// Nothing survives the join, so the factor is never applied to a
		// non-zero row count.
		return &props.Histogram{}, &props.Histogram{}, rows1 * rows2
	}

	scaleFactor = cfg.DefaultJoinScaleFactor

	if h1.IsEmpty() || h2.IsEmpty() {
		scaleFactor = math.Min(rows1, rows2)
	} else if cmp.SupportsJoin() {
		joined, refined := h1.JoinNormalized(cmp, rows1, h2, rows2)
		if cmp.IsEquality() {
			out1, out2 = joined, joined.Copy()
			if cfg.EnableNDVScalePropagation {
				if h1.NDVScaled() {
					out1 = out1.WithNDVScaled()
				}
				if h2.NDVScaled() {
					out2 = out2.WithNDVScaled()
				}
			}
			return out1, out2, refined
		}
		// Only equality comparisons produce a histogram. The refined scale
		// factor of the other comparisons is not used.
	}

	return h1.Copy(), h2.Copy(), scaleFactor
}

// CumulativeJoinScaleFactor combines the scale factors of the predicates of a
// join. Predicates of the same join are frequently correlated, so the factors
// are applied from the most to the least selective, the ith one raised to the
// power damping^i.
func CumulativeJoinScaleFactor(cfg *Config, factors []float64) float64 {
	sorted := append([]float64(nil), factors...)
	sort.Sort(sort.Reverse(sort.Float64Slice(sorted)))
	cumulative := 1.0
	for i, sf := range sorted {
		cumulative *= math.Pow(math.Max(sf, 1), math.Pow(cfg.DampingFactorJoin, float64(i)))
	}
	return cumulative
}
