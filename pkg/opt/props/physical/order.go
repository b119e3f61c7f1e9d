// Copyright 2018 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

// Package physical defines the physical properties that operators require of
// their inputs and derive for their outputs: sort order, distribution,
// rewindability, common table expressions, and partition propagation.
//
// Every spec is an immutable value. Operations that need a modified spec
// return a new one.
package physical

import "github.com/relplan/optcore/pkg/opt"

// OrderSpec is the sort order of the rows of an operator. The empty ordering
// stands for "any order" when required and for "no known order" when derived.
type OrderSpec struct {
	Ordering opt.Ordering
}

// MakeOrderSpec returns an order spec on the given columns.
func MakeOrderSpec(cols ...opt.OrderingColumn) OrderSpec {
	return OrderSpec{Ordering: opt.Ordering(cols).Copy()}
}

// Any returns true if the spec places no requirement on the order of rows.
func (o OrderSpec) Any() bool {
	return o.Ordering.Empty()
}

// Equals returns true if both specs describe the same ordering.
func (o OrderSpec) Equals(other OrderSpec) bool {
	return o.Ordering.Equals(other.Ordering)
}

// SatisfiedBy returns true if rows in the provided order are also in the
// required order, that is if the required ordering is a prefix of the
// provided one.
func (o OrderSpec) SatisfiedBy(provided OrderSpec) bool {
	return provided.Ordering.Provides(o.Ordering)
}

// Cols returns the columns of the ordering.
func (o OrderSpec) Cols() opt.ColSet {
	return o.Ordering.ColSet()
}

// BoundBy returns true if all the columns of the ordering are in cols.
func (o OrderSpec) BoundBy(cols opt.ColSet) bool {
	return o.Cols().SubsetOf(cols)
}

func (o OrderSpec) String() string {
	if o.Any() {
		return "any"
	}
	return o.Ordering.String()
}
