// Copyright 2018 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

package props

import (
	"bytes"
	"fmt"
	"math"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/cockroachdb/redact"
	"github.com/dustin/go-humanize"
	"github.com/olekukonko/tablewriter"
	"github.com/relplan/optcore/pkg/opt"
	"golang.org/x/exp/maps"
)

// UpperBoundNDVs records that the number of distinct values of every column
// in Cols cannot exceed UpperBound, because they all descend from a source
// relation with that many rows.
type UpperBoundNDVs struct {
	Cols       opt.ColSet
	UpperBound float64
}

// Statistics is a snapshot of the estimated properties of the rows produced
// by a relational expression: the row count, the value distribution and the
// average width of every column.
//
// Statistics are immutable once built; a Statistics owns its maps and
// histograms exclusively, and derivations always build new objects through a
// StatisticsBuilder.
type Statistics struct {
	hists         map[opt.ColumnID]*Histogram
	widths        map[opt.ColumnID]float64
	rows          float64
	isEmpty       bool
	numPredicates int
	upperBounds   []UpperBoundNDVs
}

// Rows returns the estimated number of rows.
func (s *Statistics) Rows() float64 { return s.rows }

// IsEmpty returns true if the relation provably produces no rows.
func (s *Statistics) IsEmpty() bool { return s.isEmpty }

// NumPredicates returns the number of predicates applied so far, which is
// used to damp the combined selectivity of correlated predicates.
func (s *Statistics) NumPredicates() int { return s.numPredicates }

// Histogram returns the histogram of the given column.
func (s *Statistics) Histogram(col opt.ColumnID) (*Histogram, bool) {
	h, ok := s.hists[col]
	return h, ok
}

// Width returns the average width of the given column.
func (s *Statistics) Width(col opt.ColumnID) (float64, bool) {
	w, ok := s.widths[col]
	return w, ok
}

// RowWidth returns the average width of a row, summed over the columns with
// a known width.
func (s *Statistics) RowWidth() float64 {
	var w float64
	for _, col := range s.WidthColumns() {
		w += s.widths[col]
	}
	return w
}

// Columns returns the columns with a histogram, in increasing order.
func (s *Statistics) Columns() opt.ColList {
	return sortedCols(maps.Keys(s.hists))
}

// WidthColumns returns the columns with a width, in increasing order.
func (s *Statistics) WidthColumns() opt.ColList {
	return sortedCols(maps.Keys(s.widths))
}

func sortedCols(cols []opt.ColumnID) opt.ColList {
	var set opt.ColSet
	for _, c := range cols {
		set.Add(c)
	}
	return set.ToList()
}

// UpperBounds returns a copy of the upper bound cardinality entries.
func (s *Statistics) UpperBounds() []UpperBoundNDVs {
	res := make([]UpperBoundNDVs, len(s.upperBounds))
	for i := range s.upperBounds {
		res[i] = UpperBoundNDVs{Cols: s.upperBounds[i].Cols.Copy(), UpperBound: s.upperBounds[i].UpperBound}
	}
	return res
}

// UpperBound returns the upper bound on the number of distinct values of the
// column, or +Inf if none is known.
func (s *Statistics) UpperBound(col opt.ColumnID) float64 {
	bound := math.Inf(1)
	for i := range s.upperBounds {
		if s.upperBounds[i].Cols.Contains(col) {
			bound = math.Min(bound, s.upperBounds[i].UpperBound)
		}
	}
	return bound
}

// Copy returns a deep copy of the statistics.
func (s *Statistics) Copy() *Statistics {
	res := &Statistics{
		hists:         make(map[opt.ColumnID]*Histogram, len(s.hists)),
		widths:        maps.Clone(s.widths),
		rows:          s.rows,
		isEmpty:       s.isEmpty,
		numPredicates: s.numPredicates,
		upperBounds:   s.UpperBounds(),
	}
	if res.widths == nil {
		res.widths = make(map[opt.ColumnID]float64)
	}
	for col, h := range s.hists {
		res.hists[col] = h.Copy()
	}
	return res
}

// Equals returns true if the two statistics objects are structurally equal.
func (s *Statistics) Equals(other *Statistics) bool {
	if s.rows != other.rows || s.isEmpty != other.isEmpty ||
		s.numPredicates != other.numPredicates ||
		len(s.hists) != len(other.hists) || len(s.upperBounds) != len(other.upperBounds) {
		return false
	}
	if !maps.Equal(s.widths, other.widths) {
		return false
	}
	for col, h := range s.hists {
		if !h.Equals(other.hists[col]) {
			return false
		}
	}
	for i := range s.upperBounds {
		if s.upperBounds[i].UpperBound != other.upperBounds[i].UpperBound ||
			!s.upperBounds[i].Cols.Equals(other.upperBounds[i].Cols) {
			return false
		}
	}
	return true
}

// SafeFormat implements the redact.SafeFormatter interface.
func (s *Statistics) SafeFormat(w redact.SafePrinter, _ rune) {
	w.Printf("[rows=%.6g, cols=%d", redact.Safe(s.rows), redact.Safe(len(s.hists)))
	if s.isEmpty {
		w.SafeString(", empty")
	}
	w.SafeRune(']')
}

// String renders the statistics as a table with one line per column.
func (s *Statistics) String() string {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "rows: %s", humanizeRows(s.rows))
	if s.isEmpty {
		buf.WriteString(" (empty)")
	}
	fmt.Fprintf(&buf, ", predicates: %d, width: %.4g\n", s.numPredicates, s.RowWidth())

	var cols opt.ColSet
	for col := range s.hists {
		cols.Add(col)
	}
	for col := range s.widths {
		cols.Add(col)
	}
	table := tablewriter.NewWriter(&buf)
	table.SetHeader([]string{"col", "buckets", "freq", "null", "ndv", "width", "upper bound"})
	table.SetAutoFormatHeaders(false)
	cols.ForEach(func(col opt.ColumnID) {
		row := []string{fmt.Sprintf("%d", col), "-", "-", "-", "-", "-", "-"}
		if h, ok := s.hists[col]; ok {
			row[1] = fmt.Sprintf("%d", h.BucketCount())
			row[2] = fmt.Sprintf("%.4g", h.Frequency())
			row[3] = fmt.Sprintf("%.4g", h.NullFreq())
			row[4] = fmt.Sprintf("%.4g", h.Distinct())
			var flags []string
			if h.NDVScaled() {
				flags = append(flags, "scaled")
			}
			if h.ColStatsMissing() {
				flags = append(flags, "missing")
			}
			if len(flags) > 0 {
				row[1] += " (" + strings.Join(flags, ",") + ")"
			}
		}
		if w, ok := s.widths[col]; ok {
			row[5] = fmt.Sprintf("%.4g", w)
		}
		if ub := s.UpperBound(col); !math.IsInf(ub, 1) {
			row[6] = humanizeRows(ub)
		}
		table.Append(row)
	})
	table.Render()
	return buf.String()
}

// humanizeRows prints a row count with thousands separators, keeping a few
// decimals for fractional estimates.
func humanizeRows(rows float64) string {
	if rows == math.Trunc(rows) && math.Abs(rows) < 1e15 {
		return humanize.Comma(int64(rows))
	}
	return humanize.Commaf(math.Round(rows*100) / 100)
}

// StatisticsBuilder accumulates the parts of a Statistics object. The zero
// value is not usable; call Init first.
type StatisticsBuilder struct {
	s     *Statistics
	built bool
}

// Init starts a new statistics object with the given row count. A negative
// row count is a programming error.
func (sb *StatisticsBuilder) Init(rows float64) {
	if rows < 0 || math.IsNaN(rows) {
		panic(errors.AssertionFailedf("negative row count %v", redact.Safe(rows)))
	}
	sb.s = &Statistics{
		hists:  make(map[opt.ColumnID]*Histogram),
		widths: make(map[opt.ColumnID]float64),
		rows:   rows,
	}
	sb.built = false
}

func (sb *StatisticsBuilder) check() {
	if sb.s == nil || sb.built {
		panic(errors.AssertionFailedf("statistics builder used before Init or after Build"))
	}
}

// SetRows overrides the row count.
func (sb *StatisticsBuilder) SetRows(rows float64) {
	sb.check()
	if rows < 0 || math.IsNaN(rows) {
		panic(errors.AssertionFailedf("negative row count %v", redact.Safe(rows)))
	}
	sb.s.rows = rows
}

// SetEmpty records whether the relation provably produces no rows.
func (sb *StatisticsBuilder) SetEmpty(isEmpty bool) {
	sb.check()
	sb.s.isEmpty = isEmpty
}

// SetNumPredicates records the number of predicates applied so far.
func (sb *StatisticsBuilder) SetNumPredicates(n int) {
	sb.check()
	sb.s.numPredicates = n
}

// SetHistogram sets the histogram of a column. The builder takes ownership of
// the histogram.
func (sb *StatisticsBuilder) SetHistogram(col opt.ColumnID, h *Histogram) {
	sb.check()
	if h == nil {
		panic(errors.AssertionFailedf("nil histogram for column %d", redact.Safe(col)))
	}
	sb.s.hists[col] = h
}

// HasHistogram returns true if a histogram was already set for the column.
func (sb *StatisticsBuilder) HasHistogram(col opt.ColumnID) bool {
	sb.check()
	_, ok := sb.s.hists[col]
	return ok
}

// SetWidth sets the average width of a column.
func (sb *StatisticsBuilder) SetWidth(col opt.ColumnID, width float64) {
	sb.check()
	sb.s.widths[col] = width
}

// HasWidth returns true if a width was already set for the column.
func (sb *StatisticsBuilder) HasWidth(col opt.ColumnID) bool {
	sb.check()
	_, ok := sb.s.widths[col]
	return ok
}

// AddUpperBound records an upper bound on the distinct values of cols.
func (sb *StatisticsBuilder) AddUpperBound(cols opt.ColSet, bound float64) {
	sb.check()
	if cols.Empty() {
		return
	}
	sb.s.upperBounds = append(sb.s.upperBounds, UpperBoundNDVs{Cols: cols.Copy(), UpperBound: bound})
}

// EnsureColumns gives every column in cols that lacks a histogram the empty
// histogram, so that every column referenced by a predicate has an entry.
func (sb *StatisticsBuilder) EnsureColumns(cols opt.ColSet) {
	sb.check()
	cols.ForEach(func(col opt.ColumnID) {
		if _, ok := sb.s.hists[col]; !ok {
			sb.s.hists[col] = EmptyHistogram()
		}
	})
}

// Build returns the statistics object. The builder cannot be used afterwards
// until Init is called again.
func (sb *StatisticsBuilder) Build() *Statistics {
	sb.check()
	sb.built = true
	return sb.s
}
