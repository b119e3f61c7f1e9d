// Copyright 2018 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

package props

import (
	"bytes"
	"fmt"
	"math"
)

// Span is a range of values on the numeric line that a column is constrained
// to. Infinite bounds are represented with math.Inf and are always open.
type Span struct {
	Lower, Upper             float64
	LowerClosed, UpperClosed bool
}

// UnconstrainedSpan contains every non-null value.
var UnconstrainedSpan = Span{Lower: math.Inf(-1), Upper: math.Inf(1)}

// MakePointSpan returns the span holding exactly v.
func MakePointSpan(v float64) Span {
	return Span{Lower: v, Upper: v, LowerClosed: true, UpperClosed: true}
}

func (sp Span) toBucket() Bucket {
	return Bucket{
		Lower: sp.Lower, Upper: sp.Upper, LowerClosed: sp.LowerClosed, UpperClosed: sp.UpperClosed,
	}
}

// IsEmpty returns true if no value satisfies the span.
func (sp Span) IsEmpty() bool {
	if sp.Lower != sp.Upper {
		return sp.Lower > sp.Upper
	}
	return !(sp.LowerClosed && sp.UpperClosed)
}

func (sp Span) String() string {
	var buf bytes.Buffer
	if sp.LowerClosed {
		buf.WriteByte('[')
	} else {
		buf.WriteByte('(')
	}
	fmt.Fprintf(&buf, "%g - %g", sp.Lower, sp.Upper)
	if sp.UpperClosed {
		buf.WriteByte(']')
	} else {
		buf.WriteByte(')')
	}
	return buf.String()
}

// IntersectSpans returns the values that satisfy both span lists. Both lists
// must be ordered and non-overlapping; so is the result.
func IntersectSpans(a, b []Span) []Span {
	var res []Span
	i, j := 0, 0
	for i < len(a) && j < len(b) {
		ba, bb := a[i].toBucket(), b[j].toBucket()
		if r, ok := ba.intersect(&bb); ok {
			res = append(res, Span{
				Lower: r.Lower, Upper: r.Upper, LowerClosed: r.LowerClosed, UpperClosed: r.UpperClosed,
			})
		}
		if ba.endsBefore(&bb) {
			i++
		} else {
			j++
		}
	}
	return res
}
