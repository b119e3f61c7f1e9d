// Copyright 2018 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

package stats

import (
	"math"

	"github.com/relplan/optcore/pkg/opt/props"
)

// BoundingMethod determines how the upper bound cardinality of a source is
// carried into the statistics of an operator.
type BoundingMethod int

const (
	// BoundMin keeps the smaller of the source's bound and the output row
	// count.
	BoundMin BoundingMethod = iota

	// BoundOutput replaces the source's bound with the output row count.
	BoundOutput
)

// ComputeCardUpperBounds carries the upper bound cardinality entries of input
// into the statistics being built, adjusted to the given output row count.
func ComputeCardUpperBounds(
	input *props.Statistics, output *props.StatisticsBuilder, rows float64, method BoundingMethod,
) {
	for _, ub := range input.UpperBounds() {
		bound := rows
		if method == BoundMin {
			bound = math.Min(ub.UpperBound, rows)
		}
		output.AddUpperBound(ub.Cols, bound)
	}
}

// AddWidthInfo copies the column widths of src into the statistics being
// built. Columns that already have a width keep it.
func AddWidthInfo(src *props.Statistics, dst *props.StatisticsBuilder) {
	for _, col := range src.WidthColumns() {
		if dst.HasWidth(col) {
			continue
		}
		w, _ := src.Width(col)
		dst.SetWidth(col, w)
	}
}

// copyHistograms copies the histograms of src into the statistics being
// built, skipping the columns that already have one. Histograms whose
// distinct counts exceed rows are capped, unless they were already scaled by
// an earlier join and the configuration honors that.
func (b *Builder) copyHistograms(src *props.Statistics, dst *props.StatisticsBuilder, rows float64) {
	for _, col := range src.Columns() {
		if dst.HasHistogram(col) {
			continue
		}
		h, _ := src.Histogram(col)
		dst.SetHistogram(col, b.capNDVs(h, rows))
	}
}

func (b *Builder) capNDVs(h *props.Histogram, rows float64) *props.Histogram {
	if h.IsEmpty() || (b.cfg.EnableNDVScalePropagation && h.NDVScaled()) {
		return h.Copy()
	}
	return h.CapNDVs(rows)
}
