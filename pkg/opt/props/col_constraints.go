// Copyright 2018 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

package props

import (
	"bytes"

	"github.com/relplan/optcore/pkg/opt"
)

// Constraint restricts the values of a set of columns to a list of spans. A
// constraint over a single column restricts that column directly; a
// constraint over several columns restricts their combination and cannot be
// used to filter the histogram of one of them.
type Constraint struct {
	Cols  opt.ColSet
	Spans []Span
}

func (c *Constraint) String() string {
	var buf bytes.Buffer
	buf.WriteString(c.Cols.String())
	buf.WriteString(": ")
	for i := range c.Spans {
		if i > 0 {
			buf.WriteString(" ")
		}
		buf.WriteString(c.Spans[i].String())
	}
	return buf.String()
}

// ColConstraintsMapper looks up the constraints that mention a column.
type ColConstraintsMapper interface {
	// ConstraintsOnCol returns every constraint whose column set contains the
	// given column.
	ConstraintsOnCol(col opt.ColumnID) []*Constraint
}

// ColConstraintsArrayMapper scans a list of constraints on every lookup. It is
// the better choice for the handful of constraints of a typical predicate.
type ColConstraintsArrayMapper struct {
	constraints []*Constraint
}

var _ ColConstraintsMapper = &ColConstraintsArrayMapper{}

// NewColConstraintsArrayMapper returns a mapper over the given constraints.
func NewColConstraintsArrayMapper(constraints ...*Constraint) *ColConstraintsArrayMapper {
	return &ColConstraintsArrayMapper{constraints: constraints}
}

// ConstraintsOnCol is part of the ColConstraintsMapper interface.
func (m *ColConstraintsArrayMapper) ConstraintsOnCol(col opt.ColumnID) []*Constraint {
	var res []*Constraint
	for _, c := range m.constraints {
		if c.Cols.Contains(col) {
			res = append(res, c)
		}
	}
	return res
}

// ColConstraintsHashMapper indexes the constraints by column once, at
// construction time.
type ColConstraintsHashMapper struct {
	byCol map[opt.ColumnID][]*Constraint
}

var _ ColConstraintsMapper = &ColConstraintsHashMapper{}

// NewColConstraintsHashMapper returns a mapper over the given constraints.
func NewColConstraintsHashMapper(constraints ...*Constraint) *ColConstraintsHashMapper {
	m := &ColConstraintsHashMapper{byCol: make(map[opt.ColumnID][]*Constraint)}
	for _, c := range constraints {
		c.Cols.ForEach(func(col opt.ColumnID) {
			m.byCol[col] = append(m.byCol[col], c)
		})
	}
	return m
}

// ConstraintsOnCol is part of the ColConstraintsMapper interface.
func (m *ColConstraintsHashMapper) ConstraintsOnCol(col opt.ColumnID) []*Constraint {
	return m.byCol[col]
}

// SpansForCol intersects the spans of every single-column constraint on col.
// ok is false if no such constraint exists.
func SpansForCol(m ColConstraintsMapper, col opt.ColumnID) (spans []Span, ok bool) {
	for _, c := range m.ConstraintsOnCol(col) {
		if c.Cols.Len() != 1 {
			continue
		}
		if !ok {
			spans, ok = c.Spans, true
			continue
		}
		spans = IntersectSpans(spans, c.Spans)
	}
	return spans, ok
}
