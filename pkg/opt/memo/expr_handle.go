// Copyright 2018 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

// Package memo defines the physical operators of a plan and the contract by
// which they take part in the derivation of physical properties: which
// properties each operator requires of its inputs, which properties it
// provides, and when an enforcer has to be placed on top of it.
package memo

import (
	"github.com/relplan/optcore/pkg/opt"
	"github.com/relplan/optcore/pkg/opt/props"
	"github.com/relplan/optcore/pkg/opt/props/physical"
)

// ExprHandle gives an operator read access to its place in the plan: its
// inputs and what is known about them. Operators never modify the plan
// through the handle.
type ExprHandle interface {
	// Arity returns the number of inputs of the operator.
	Arity() int

	// OutputCols returns the columns produced by the operator.
	OutputCols() opt.ColSet

	// ChildOutputCols returns the columns produced by the ith input.
	ChildOutputCols(i int) opt.ColSet

	// ChildDerived returns the properties derived for the ith input, or nil if
	// the input has not been optimized yet.
	ChildDerived(i int) *physical.Derived

	// ChildStats returns the statistics of the ith input, or nil if they have
	// not been derived yet.
	ChildStats(i int) *props.Statistics

	// CTEProducerStats returns the statistics of the producer of a CTE, if it
	// has been derived already.
	CTEProducerStats(id opt.CTEID) (*props.Statistics, bool)
}
