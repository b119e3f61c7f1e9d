// Copyright 2018 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

package props

import (
	"bytes"
	"fmt"
	"io"
	"math"
	"sort"

	"github.com/cockroachdb/errors"
	"github.com/cockroachdb/redact"
	"github.com/olekukonko/tablewriter"
	"github.com/relplan/optcore/pkg/opt"
	"github.com/relplan/optcore/pkg/opt/cat"
	"github.com/relplan/optcore/pkg/util/buildutil"
)

// Histogram captures the distribution of values for a particular column within
// a relational expression. A histogram without buckets means that no
// statistics are available for the column.
//
// Histograms are immutable. Every operation that derives a modified histogram
// returns a new one, so histograms may be shared freely between statistics
// objects.
type Histogram struct {
	buckets []Bucket

	// nullFreq is the fraction of rows whose value is NULL.
	nullFreq float64

	// distinctRemain and freqRemain describe the non-null values that are not
	// covered by any bucket.
	distinctRemain float64
	freqRemain     float64

	// ndvScaled is set once the distinct counts have been adjusted to a row
	// count by a join and must not be derived again from the raw buckets.
	ndvScaled bool

	// colStatsMissing is set on the histogram of a column for which the
	// catalog has no statistics at all.
	colStatsMissing bool
}

// NewHistogram returns a histogram with the given buckets, which must be
// ordered and non-overlapping.
func NewHistogram(buckets []Bucket, nullFreq, distinctRemain, freqRemain float64) *Histogram {
	h := &Histogram{
		buckets:        append([]Bucket(nil), buckets...),
		nullFreq:       nullFreq,
		distinctRemain: distinctRemain,
		freqRemain:     freqRemain,
	}
	if err := h.validate(); err != nil {
		panic(err)
	}
	return h
}

// EmptyHistogram returns a histogram without buckets, which stands for a
// column without statistics.
func EmptyHistogram() *Histogram {
	return &Histogram{colStatsMissing: true}
}

// HistogramFromCatalog converts catalog statistics into a histogram. A nil
// statistic results in the empty histogram.
func HistogramFromCatalog(stat *cat.ColumnStatistic) *Histogram {
	if stat == nil {
		return EmptyHistogram()
	}
	buckets := make([]Bucket, len(stat.Buckets))
	for i := range stat.Buckets {
		buckets[i] = bucketFromCatalog(&stat.Buckets[i])
	}
	return NewHistogram(buckets, stat.NullFraction, stat.DistinctRemain, stat.FreqRemain)
}

func (h *Histogram) validate() error {
	if h.nullFreq < 0 || h.nullFreq > 1+epsilon {
		return errors.AssertionFailedf("invalid null frequency %v", redact.Safe(h.nullFreq))
	}
	if h.freqRemain < 0 || h.distinctRemain < 0 {
		return errors.AssertionFailedf(
			"invalid remainder: freq %v, distinct %v", redact.Safe(h.freqRemain), redact.Safe(h.distinctRemain),
		)
	}
	for i := range h.buckets {
		b := &h.buckets[i]
		if !b.valid() {
			return errors.AssertionFailedf("invalid bucket %d: %s", redact.Safe(i), redact.Safe(b.String()))
		}
		if i > 0 && !h.buckets[i-1].precedes(b) {
			return errors.AssertionFailedf(
				"buckets %d and %d overlap or are out of order", redact.Safe(i-1), redact.Safe(i),
			)
		}
	}
	if buildutil.Invariants {
		if total := h.TotalFrequency(); total > 1+1e-6 {
			return errors.AssertionFailedf("total frequency %v exceeds 1", redact.Safe(total))
		}
	}
	return nil
}

// Copy returns a deep copy of the histogram.
func (h *Histogram) Copy() *Histogram {
	res := *h
	if h.buckets != nil {
		res.buckets = make([]Bucket, len(h.buckets))
		copy(res.buckets, h.buckets)
	}
	return &res
}

// Equals returns true if the two histograms have the same buckets, counts and
// flags.
func (h *Histogram) Equals(other *Histogram) bool {
	if h == other {
		return true
	}
	if h == nil || other == nil {
		return false
	}
	if len(h.buckets) != len(other.buckets) ||
		h.nullFreq != other.nullFreq ||
		h.distinctRemain != other.distinctRemain ||
		h.freqRemain != other.freqRemain ||
		h.ndvScaled != other.ndvScaled ||
		h.colStatsMissing != other.colStatsMissing {
		return false
	}
	for i := range h.buckets {
		if h.buckets[i] != other.buckets[i] {
			return false
		}
	}
	return true
}

// IsEmpty returns true if the histogram has no buckets.
func (h *Histogram) IsEmpty() bool {
	return len(h.buckets) == 0
}

// BucketCount returns the number of buckets in the histogram.
func (h *Histogram) BucketCount() int {
	return len(h.buckets)
}

// Bucket returns the ith bucket in the histogram.
func (h *Histogram) Bucket(i int) Bucket {
	return h.buckets[i]
}

// NullFreq returns the fraction of rows that are NULL.
func (h *Histogram) NullFreq() float64 { return h.nullFreq }

// DistinctRemain returns the number of distinct values not covered by any
// bucket.
func (h *Histogram) DistinctRemain() float64 { return h.distinctRemain }

// FreqRemain returns the fraction of rows whose values are not covered by any
// bucket.
func (h *Histogram) FreqRemain() float64 { return h.freqRemain }

// NDVScaled returns true if the distinct counts have already been scaled to a
// row count.
func (h *Histogram) NDVScaled() bool { return h.ndvScaled }

// ColStatsMissing returns true if the histogram stands for a column without
// statistics.
func (h *Histogram) ColStatsMissing() bool { return h.colStatsMissing }

// Frequency returns the fraction of rows covered by the buckets.
func (h *Histogram) Frequency() float64 {
	var f float64
	for i := range h.buckets {
		f += h.buckets[i].Frequency
	}
	return f
}

// TotalFrequency returns the fraction of rows described by the histogram,
// including NULLs and values outside the buckets.
func (h *Histogram) TotalFrequency() float64 {
	return h.Frequency() + h.nullFreq + h.freqRemain
}

// Distinct returns the estimated number of distinct values, counting NULL as
// one value if present.
func (h *Histogram) Distinct() float64 {
	d := h.distinctRemain
	for i := range h.buckets {
		d += h.buckets[i].Distinct
	}
	if h.nullFreq > epsilon {
		d++
	}
	return d
}

// WithNDVScaled returns a copy of the histogram with the scaled NDV flag set.
func (h *Histogram) WithNDVScaled() *Histogram {
	res := h.Copy()
	res.ndvScaled = true
	return res
}

// Normalize returns a copy of the histogram whose total frequency is 1, along
// with the factor by which the frequencies were divided. A histogram with zero
// total frequency is returned unchanged with a factor of 1.
func (h *Histogram) Normalize() (_ *Histogram, total float64) {
	total = h.TotalFrequency()
	res := h.Copy()
	if total < epsilon {
		return res, 1
	}
	for i := range res.buckets {
		res.buckets[i].Frequency /= total
	}
	res.nullFreq /= total
	res.freqRemain /= total
	return res, total
}

// CapNDVs returns a histogram whose total distinct count does not exceed the
// given row count. If the distinct counts had to be reduced, the result is
// marked as NDV scaled.
func (h *Histogram) CapNDVs(rows float64) *Histogram {
	res, scaled := h.capNDVs(rows)
	if scaled {
		res.ndvScaled = true
	}
	return res
}

func (h *Histogram) capNDVs(rows float64) (_ *Histogram, scaled bool) {
	res := h.Copy()
	distinct := h.distinctRemain
	for i := range h.buckets {
		distinct += h.buckets[i].Distinct
	}
	if rows < 0 || distinct <= rows {
		return res, false
	}
	ratio := rows / distinct
	for i := range res.buckets {
		res.buckets[i].Distinct *= ratio
	}
	res.distinctRemain *= ratio
	return res, true
}

// JoinNormalized joins the histogram with the histogram of the other side of
// a join predicate. rows and otherRows are the row counts of the two inputs.
// It returns the joined histogram, normalized so that its frequencies are
// fractions of the join result, and the scale factor that divides the row
// count of the cartesian product to give the row count of the join.
//
// Only equality comparisons produce a histogram; the other supported
// comparisons return an empty one along with their scale factor.
func (h *Histogram) JoinNormalized(
	cmp opt.CmpType, rows float64, other *Histogram, otherRows float64,
) (*Histogram, float64) {
	if !cmp.SupportsJoin() {
		panic(errors.AssertionFailedf("comparison %s does not support histogram join", cmp))
	}
	if rows < 0 || otherRows < 0 {
		panic(errors.AssertionFailedf(
			"negative row count: %v, %v", redact.Safe(rows), redact.Safe(otherRows),
		))
	}
	maxScale := math.Max(1, rows*otherRows)

	switch {
	case cmp.IsEquality():
		joined, selectivity := h.equiJoin(other, cmp == opt.CmpINDF)
		scale := clampScaleFactor(selectivity, maxScale)
		if selectivity < epsilon {
			return &Histogram{}, scale
		}
		joined, _ = joined.Normalize()
		joined, _ = joined.capNDVs(rows * otherRows / scale)
		return joined, scale

	case cmp.IsInequality():
		_, eq := h.equiJoin(other, cmp == opt.CmpIDF)
		nonNull := (1 - h.nullFreq) * (1 - other.nullFreq)
		var selectivity float64
		if cmp == opt.CmpIDF {
			// IS DISTINCT FROM matches every pair except the ones that are
			// IS NOT DISTINCT FROM.
			selectivity = 1 - eq
		} else {
			selectivity = nonNull - eq
		}
		return &Histogram{}, clampScaleFactor(selectivity, maxScale)

	default:
		return &Histogram{}, clampScaleFactor(h.rangeSelectivity(cmp, other), maxScale)
	}
}

// clampScaleFactor converts a join selectivity into a scale factor in the
// range [1, maxScale].
func clampScaleFactor(selectivity, maxScale float64) float64 {
	if selectivity < epsilon {
		return maxScale
	}
	return math.Max(1, math.Min(1/selectivity, maxScale))
}

// equiJoin sweeps the buckets of both histograms in order and joins every
// overlapping pair of bucket slices. Assuming containment of values, an
// overlap with frequencies f1, f2 and distinct counts d1, d2 produces
// f1*f2/max(d1,d2) of the cartesian product with min(d1,d2) distinct values.
// The returned histogram is not normalized; selectivity is its total
// frequency as a fraction of the cartesian product.
func (h *Histogram) equiJoin(other *Histogram, matchNulls bool) (_ *Histogram, selectivity float64) {
	res := &Histogram{}
	i, j := 0, 0
	for i < len(h.buckets) && j < len(other.buckets) {
		b1, b2 := &h.buckets[i], &other.buckets[j]
		if r, ok := b1.intersect(b2); ok {
			s1, s2 := b1.slice(r), b2.slice(r)
			if maxD := math.Max(s1.Distinct, s2.Distinct); maxD > epsilon {
				r.Frequency = s1.Frequency * s2.Frequency / maxD
				r.Distinct = math.Min(s1.Distinct, s2.Distinct)
				if r.Frequency > epsilon {
					res.buckets = append(res.buckets, r)
				}
			}
		}
		switch {
		case b1.endsBefore(b2):
			i++
		case b2.endsBefore(b1):
			j++
		default:
			i++
			j++
		}
	}

	if maxD := math.Max(h.distinctRemain, other.distinctRemain); maxD > epsilon {
		res.freqRemain = h.freqRemain * other.freqRemain / maxD
		res.distinctRemain = math.Min(h.distinctRemain, other.distinctRemain)
	}
	if matchNulls {
		res.nullFreq = h.nullFreq * other.nullFreq
	}
	return res, res.TotalFrequency()
}

// rangeSelectivity estimates the fraction of the cartesian product that
// satisfies "this cmp other" for one of the range comparisons. Every bucket
// of this histogram is represented by its midpoint, which is compared against
// the cumulative distribution of the other histogram.
func (h *Histogram) rangeSelectivity(cmp opt.CmpType, other *Histogram) float64 {
	f1, f2 := h.Frequency(), other.Frequency()
	nonNull := (1 - h.nullFreq) * (1 - other.nullFreq)
	if f1 < epsilon || f2 < epsilon {
		// Without buckets on both sides, fall back to an even split.
		return nonNull / 2
	}
	// below is the probability that a value of this histogram is smaller
	// than a value of the other.
	var below float64
	for i := range h.buckets {
		b := &h.buckets[i]
		mid := b.Lower + b.Width()/2
		var above float64
		for j := range other.buckets {
			above += other.buckets[j].Frequency * other.buckets[j].fractionAbove(mid)
		}
		below += b.Frequency / f1 * above / f2
	}
	switch cmp {
	case opt.CmpLt, opt.CmpLEq:
		return nonNull * below
	case opt.CmpGt, opt.CmpGEq:
		return nonNull * (1 - below)
	}
	panic(errors.AssertionFailedf("unexpected range comparison %s", cmp))
}

// AntiSemiJoin returns the part of this histogram whose values have no match
// in the other histogram under an equality comparison. Frequencies keep their
// meaning as fractions of this histogram's rows, so the total frequency of
// the result is the fraction of rows left unmatched. ok is false if the
// comparison does not support the computation.
func (h *Histogram) AntiSemiJoin(cmp opt.CmpType, other *Histogram) (_ *Histogram, ok bool) {
	if !cmp.IsEquality() {
		return nil, false
	}
	res := &Histogram{
		nullFreq:       h.nullFreq,
		freqRemain:     h.freqRemain,
		distinctRemain: h.distinctRemain,
		ndvScaled:      h.ndvScaled,
	}
	if cmp == opt.CmpINDF && other.nullFreq > epsilon {
		res.nullFreq = 0
	}
	j := 0
	for i := range h.buckets {
		b1 := h.buckets[i]
		matchedFreq, matchedDistinct := 0.0, 0.0
		// Skip the buckets of other that end before b1 starts.
		for j < len(other.buckets) && other.buckets[j].precedes(&b1) {
			j++
		}
		for k := j; k < len(other.buckets); k++ {
			b2 := &other.buckets[k]
			if b1.precedes(b2) {
				break
			}
			r, ok := b1.intersect(b2)
			if !ok {
				continue
			}
			s1, s2 := b1.slice(r), b2.slice(r)
			if s1.Distinct < epsilon {
				continue
			}
			matched := math.Min(1, s2.Distinct/s1.Distinct)
			matchedFreq += s1.Frequency * matched
			matchedDistinct += s1.Distinct * matched
		}
		b1.Frequency = math.Max(0, b1.Frequency-matchedFreq)
		b1.Distinct = math.Max(0, b1.Distinct-matchedDistinct)
		if b1.Frequency > epsilon {
			res.buckets = append(res.buckets, b1)
		}
	}
	return res, true
}

// UnionAllNormalized combines this histogram, describing rows rows, with the
// other histogram, describing otherRows rows, into the histogram of the
// concatenation of both relations. Buckets are split at every bound of either
// histogram; the counts of a range bucket are divided between its pieces in
// proportion to their width.
func (h *Histogram) UnionAllNormalized(rows float64, other *Histogram, otherRows float64) *Histogram {
	if rows < 0 || otherRows < 0 {
		panic(errors.AssertionFailedf(
			"negative row count: %v, %v", redact.Safe(rows), redact.Safe(otherRows),
		))
	}
	total := rows + otherRows
	if total < epsilon {
		return h.Copy()
	}
	w1, w2 := rows/total, otherRows/total

	res := &Histogram{
		nullFreq:       h.nullFreq*w1 + other.nullFreq*w2,
		freqRemain:     h.freqRemain*w1 + other.freqRemain*w2,
		distinctRemain: math.Max(h.distinctRemain, other.distinctRemain),
		ndvScaled:      h.ndvScaled || other.ndvScaled,
	}
	for _, piece := range splitPoints(h.buckets, other.buckets) {
		f1, d1 := coverage(h.buckets, piece)
		f2, d2 := coverage(other.buckets, piece)
		piece.Frequency = f1*w1 + f2*w2
		piece.Distinct = math.Max(d1, d2)
		if piece.Frequency > epsilon {
			res.buckets = append(res.buckets, piece)
		}
	}
	return res
}

// splitPoints returns the elementary pieces obtained by cutting the buckets
// of both lists at every bound. Singleton buckets become point pieces; the
// space between two consecutive bounds covered by some range bucket becomes a
// range piece.
func splitPoints(a, b []Bucket) []Bucket {
	var bounds []float64
	points := make(map[float64]bool)
	closedUpper := make(map[float64]bool)
	collect := func(buckets []Bucket) {
		for i := range buckets {
			bk := &buckets[i]
			bounds = append(bounds, bk.Lower, bk.Upper)
			if bk.IsSingleton() {
				points[bk.Lower] = true
			} else if bk.UpperClosed {
				closedUpper[bk.Upper] = true
			}
		}
	}
	collect(a)
	collect(b)
	bounds = sortedUnique(bounds)

	covered := func(lo, hi float64) bool {
		for _, list := range [][]Bucket{a, b} {
			for i := range list {
				if !list[i].IsSingleton() && list[i].Lower <= lo && list[i].Upper >= hi {
					return true
				}
			}
		}
		return false
	}

	var pieces []Bucket
	for i, v := range bounds {
		if points[v] {
			pieces = append(pieces, Bucket{Lower: v, Upper: v, LowerClosed: true, UpperClosed: true})
		}
		if i+1 == len(bounds) || !covered(v, bounds[i+1]) {
			continue
		}
		next := bounds[i+1]
		piece := Bucket{Lower: v, Upper: next, LowerClosed: !points[v]}
		nextCovered := i+2 < len(bounds) && covered(next, bounds[i+2])
		if !points[next] && !nextCovered {
			piece.UpperClosed = closedUpper[next]
		}
		pieces = append(pieces, piece)
	}
	return pieces
}

// coverage returns the frequency and distinct count that the buckets assign
// to the given piece.
func coverage(buckets []Bucket, piece Bucket) (freq, distinct float64) {
	for i := range buckets {
		b := &buckets[i]
		if b.IsSingleton() {
			if piece.IsSingleton() && piece.Lower == b.Lower {
				freq += b.Frequency
				distinct += b.Distinct
			}
			continue
		}
		if piece.IsSingleton() || piece.Lower < b.Lower || piece.Upper > b.Upper {
			continue
		}
		ratio := piece.Width() / b.Width()
		freq += b.Frequency * ratio
		distinct += b.Distinct * ratio
	}
	return freq, distinct
}

func sortedUnique(vals []float64) []float64 {
	if len(vals) == 0 {
		return vals
	}
	sort.Float64s(vals)
	res := vals[:1]
	for _, v := range vals[1:] {
		if v != res[len(res)-1] {
			res = append(res, v)
		}
	}
	return res
}

// Filter returns the part of the histogram that satisfies the given spans,
// which must be ordered and non-overlapping. NULLs never satisfy a range
// constraint. Frequencies keep their meaning as fractions of the original
// rows.
func (h *Histogram) Filter(spans []Span) *Histogram {
	res := &Histogram{ndvScaled: h.ndvScaled}
	for i := range h.buckets {
		b := &h.buckets[i]
		for s := range spans {
			sp := spans[s].toBucket()
			if r, ok := b.intersect(&sp); ok {
				res.buckets = append(res.buckets, b.slice(r))
			}
		}
	}
	if f := h.Frequency(); f > epsilon {
		ratio := res.Frequency() / f
		res.freqRemain = h.freqRemain * ratio
		res.distinctRemain = h.distinctRemain * ratio
	}
	return res
}

func (h *Histogram) String() string {
	var buf bytes.Buffer
	w := histogramWriter{}
	w.init(h)
	w.write(&buf)
	return buf.String()
}

// SafeFormat implements the redact.SafeFormatter interface. Histograms only
// hold numbers derived from statistics, so the whole output is safe.
func (h *Histogram) SafeFormat(w redact.SafePrinter, _ rune) {
	w.Printf("histogram(buckets=%d, freq=%.4g, null=%.4g, ndv=%.4g",
		redact.Safe(len(h.buckets)), redact.Safe(h.Frequency()),
		redact.Safe(h.nullFreq), redact.Safe(h.Distinct()))
	if h.ndvScaled {
		w.SafeString(", ndv-scaled")
	}
	if h.colStatsMissing {
		w.SafeString(", missing")
	}
	w.SafeRune(')')
}

// histogramWriter prints histograms with the following formatting:
//
//	  freq1   ndv1    freq2   ndv2
//	<--- [lo1, hi1) ---- [v2] -----
//	null=..., remain=...
//
// Each bucket occupies two cells: its frequency and its distinct count, with
// its range written underneath.
type histogramWriter struct {
	cells     [][]string
	colWidths []int
	footer    string
}

const (
	// These constants describe the two rows that are printed.
	counts = iota
	boundaries
)

func (w *histogramWriter) init(h *Histogram) {
	w.cells = [][]string{
		make([]string, len(h.buckets)*2),
		make([]string, len(h.buckets)*2),
	}
	w.colWidths = make([]int, len(h.buckets)*2)

	for i := range h.buckets {
		b := &h.buckets[i]
		w.cells[counts][i*2] = fmt.Sprintf(" %.5g ", b.Frequency)
		w.cells[counts][i*2+1] = fmt.Sprintf("%.5g", b.Distinct)
		w.cells[boundaries][i*2+1] = fmt.Sprintf(" %s ", b.String())
		for _, c := range []struct{ row, col int }{
			{counts, i * 2}, {counts, i*2 + 1}, {boundaries, i*2 + 1},
		} {
			if width := tablewriter.DisplayWidth(w.cells[c.row][c.col]); width > w.colWidths[c.col] {
				w.colWidths[c.col] = width
			}
		}
	}
	w.footer = fmt.Sprintf("null=%.5g remain=%.5g/%.5g", h.nullFreq, h.freqRemain, h.distinctRemain)
	if h.ndvScaled {
		w.footer += " ndv-scaled"
	}
	if h.colStatsMissing {
		w.footer += " missing"
	}
}

func (w *histogramWriter) write(out io.Writer) {
	if len(w.cells[counts]) > 0 {
		// Print a space to match up with the "<" character below.
		fmt.Fprint(out, " ")
		for i := range w.cells[counts] {
			fmt.Fprintf(out, "%s", tablewriter.Pad(w.cells[counts][i], " ", w.colWidths[i]))
		}
		fmt.Fprint(out, "\n")
		fmt.Fprint(out, "<")
		for i := range w.cells[boundaries] {
			fmt.Fprintf(out, "%s", tablewriter.Pad(w.cells[boundaries][i], "-", w.colWidths[i]))
		}
		fmt.Fprint(out, "\n")
	}
	fmt.Fprint(out, w.footer)
}
