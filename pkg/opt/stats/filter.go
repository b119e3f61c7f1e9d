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

// Filter derives the statistics of the rows of input that satisfy the
// single-column range constraints of the mapper. Columns without a histogram
// keep the selectivity of an unknown filter.
func (b *Builder) Filter(
	input *props.Statistics, constraints props.ColConstraintsMapper,
) *props.Statistics {
	if input == nil {
		panic(errors.AssertionFailedf("filter statistics derived from a nil input"))
	}
	cols := input.Columns()
	hists := make(map[opt.ColumnID]*props.Histogram, len(cols))
	var selectivities []float64
	for _, col := range cols {
		h, _ := input.Histogram(col)
		if constraints != nil {
			if spans, ok := props.SpansForCol(constraints, col); ok {
				var sel float64
				h, sel = filterHistogram(h, spans)
				selectivities = append(selectivities, sel)
			}
		}
		hists[col] = h
	}

	rows := input.Rows() * b.filterSelectivity(selectivities)
	if !input.IsEmpty() && input.Rows() > 0 {
		rows = math.Max(rows, b.cfg.MinRows)
	}

	var sb props.StatisticsBuilder
	sb.Init(rows)
	sb.SetEmpty(input.IsEmpty())
	sb.SetNumPredicates(input.NumPredicates() + len(selectivities))
	for _, col := range cols {
		sb.SetHistogram(col, b.capNDVs(hists[col], rows))
	}
	AddWidthInfo(input, &sb)
	ComputeCardUpperBounds(input, &sb, rows, BoundMin)
	s := sb.Build()
	log.VEventf(b.ctx, 2, "filter: %d constrained columns, rows %.6g",
		redact.Safe(len(selectivities)), redact.Safe(rows))
	return s
}
