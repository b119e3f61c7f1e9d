// Copyright 2018 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

// Package stats derives the statistics of relational expressions: the
// statistics of base tables from the catalog, and the statistics of joins by
// combining the histograms of their inputs.
package stats

import (
	"context"
	"math"
	"sort"

	"github.com/cockroachdb/errors"
	"github.com/cockroachdb/logtags"
	"github.com/cockroachdb/redact"
	"github.com/relplan/optcore/pkg/opt"
	"github.com/relplan/optcore/pkg/opt/cat"
	"github.com/relplan/optcore/pkg/opt/props"
	"github.com/relplan/optcore/pkg/util/log"
)

// unknownFilterSelectivity is the selectivity of a range constraint on a
// column without a histogram. This is the value used for inequality filters
// in "Access Path Selection in a Relational Database Management System" by
// Pat Selinger et al.
const unknownFilterSelectivity = 1.0 / 3.0

// JoinPredicate is a comparison between a column of the outer (left) input
// and a column of the inner (right) input of a join.
type JoinPredicate struct {
	OuterCol opt.ColumnID
	InnerCol opt.ColumnID
	Cmp      opt.CmpType
}

// SafeFormat implements the redact.SafeFormatter interface.
func (p JoinPredicate) SafeFormat(w redact.SafePrinter, _ rune) {
	w.Printf("@%d %s @%d", redact.Safe(p.OuterCol), p.Cmp, redact.Safe(p.InnerCol))
}

func (p JoinPredicate) String() string { return redact.Sprint(p).StripMarkers() }

// Builder derives statistics. It holds no state besides its configuration and
// is safe to reuse for any number of derivations.
type Builder struct {
	ctx     context.Context
	cfg     Config
	catalog cat.Catalog
}

// Init initializes the builder. The catalog may be nil if no base table
// statistics are derived.
func (b *Builder) Init(ctx context.Context, cfg Config, catalog cat.Catalog) {
	b.ctx = logtags.AddTag(ctx, "stats", nil)
	b.cfg = cfg
	b.catalog = catalog
}

// Config returns the configuration of the builder.
func (b *Builder) Config() *Config {
	return &b.cfg
}

// ClassifyPredicate builds the join predicate comparing two columns with the
// named operator, using the catalog to classify the operator.
func (b *Builder) ClassifyPredicate(outerCol, innerCol opt.ColumnID, op string) JoinPredicate {
	if b.catalog == nil {
		panic(errors.AssertionFailedf("statistics builder has no catalog"))
	}
	return JoinPredicate{OuterCol: outerCol, InnerCol: innerCol, Cmp: b.catalog.ClassifyComparison(op)}
}

// TableStats looks up the table in the catalog and derives its statistics.
// See BaseTableStats.
func (b *Builder) TableStats(
	id opt.TableID, cols opt.ColList, constraints props.ColConstraintsMapper,
) (*props.Statistics, error) {
	if b.catalog == nil {
		return nil, errors.AssertionFailedf("statistics builder has no catalog")
	}
	tab, err := b.catalog.TableByID(b.ctx, id)
	if err != nil {
		return nil, err
	}
	return b.BaseTableStats(tab, cols, constraints), nil
}

// BaseTableStats derives the statistics of a scan of the given table. The ith
// column of the table is identified by cols[i] in the result. If constraints
// is not nil, the range constraints on single columns are applied to their
// histograms, and the row count is reduced by the damped product of their
// selectivities.
func (b *Builder) BaseTableStats(
	tab cat.Table, cols opt.ColList, constraints props.ColConstraintsMapper,
) *props.Statistics {
	if tab == nil {
		panic(errors.AssertionFailedf("nil table"))
	}
	if len(cols) != tab.ColumnCount() {
		panic(errors.AssertionFailedf(
			"table %s has %d columns, %d ids given",
			redact.Safe(tab.ID()), redact.Safe(tab.ColumnCount()), redact.Safe(len(cols)),
		))
	}
	tableRows := tab.RowCount()

	hists := make([]*props.Histogram, len(cols))
	var selectivities []float64
	for i, col := range cols {
		h := props.HistogramFromCatalog(tab.Column(i).Statistic())
		if constraints != nil {
			if spans, ok := props.SpansForCol(constraints, col); ok {
				var sel float64
				h, sel = filterHistogram(h, spans)
				selectivities = append(selectivities, sel)
			}
		}
		hists[i] = h
	}

	rows := tableRows * b.filterSelectivity(selectivities)
	if tableRows > 0 {
		rows = math.Max(rows, b.cfg.MinRows)
	}

	var sb props.StatisticsBuilder
	sb.Init(rows)
	sb.SetNumPredicates(len(selectivities))
	for i, col := range cols {
		h := hists[i]
		if !h.IsEmpty() {
			h = h.CapNDVs(rows)
		}
		sb.SetHistogram(col, h)
		sb.SetWidth(col, tab.Column(i).AvgWidth())
	}
	sb.AddUpperBound(cols.ToSet(), tableRows)
	s := sb.Build()
	log.VEventf(b.ctx, 2, "table %s: %v", redact.Safe(tab.ID()), s)
	return s
}

// filterHistogram applies spans to a histogram and returns the histogram of
// the remaining rows along with the fraction of rows that remain.
func filterHistogram(h *props.Histogram, spans []props.Span) (*props.Histogram, float64) {
	if h.IsEmpty() {
		return h, unknownFilterSelectivity
	}
	filtered := h.Filter(spans)
	total := h.TotalFrequency()
	if total < 1e-9 {
		return filtered, 0
	}
	sel := filtered.TotalFrequency() / total
	filtered, _ = filtered.Normalize()
	return filtered, sel
}

// filterSelectivity combines the selectivities of several filters. Filters
// are frequently correlated, so they are applied from the most to the least
// selective, the ith one raised to the power damping^i.
func (b *Builder) filterSelectivity(selectivities []float64) float64 {
	sorted := append([]float64(nil), selectivities...)
	sort.Float64s(sorted)
	sel := 1.0
	for i, s := range sorted {
		sel *= math.Pow(s, math.Pow(b.cfg.DampingFactorFilter, float64(i)))
	}
	return sel
}
