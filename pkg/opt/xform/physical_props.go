// Copyright 2018 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

// Package xform assembles the physical property contract of the operators in
// pkg/opt/memo into the decisions of an optimizer: which properties to
// require of each input, which properties an operator provides, and which
// enforcers have to be placed on top of it.
package xform

import (
	"github.com/cockroachdb/errors"
	"github.com/relplan/optcore/pkg/opt/memo"
	"github.com/relplan/optcore/pkg/opt/props/physical"
	"github.com/relplan/optcore/pkg/util/buildutil"
)

// BuildChildRequired returns the set of physical properties required of the
// given input of op, based upon the properties required of op itself and the
// reqIdx-th way in which op splits requirements among its inputs.
//
// The CTE requirement of an input may depend on the properties derived for
// the inputs before it, so inputs must be optimized in order.
func BuildChildRequired(
	h memo.ExprHandle, op memo.PhysicalOperator, required *physical.Required, childIdx, reqIdx int,
) *physical.Required {
	if reqIdx < 0 || reqIdx >= op.NumRequests() {
		panic(errors.AssertionFailedf("%s has no request %d", op.Op(), reqIdx))
	}
	child := &physical.Required{
		Cols:          op.RequiredCols(h, required.Cols, childIdx, reqIdx),
		Order:         op.RequiredOrder(h, required.Order, childIdx, reqIdx),
		Distribution:  op.RequiredDistribution(h, required.Distribution, childIdx, reqIdx),
		Rewindability: op.RequiredRewindability(h, required.Rewindability, childIdx, reqIdx),
		CTEs:          op.RequiredCTEs(h, required.CTEs, childIdx, reqIdx),
		Partition:     op.RequiredPartitionPropagation(h, required.Partition, childIdx, reqIdx),
	}

	// Invariants builds check that operators only ask their inputs for
	// columns the inputs produce.
	if buildutil.Invariants {
		childCols := h.ChildOutputCols(childIdx)
		if !child.Cols.SubsetOf(childCols) {
			panic(errors.AssertionFailedf(
				"%s requires columns %s of an input producing %s", op.Op(), child.Cols, childCols))
		}
		if !child.Order.BoundBy(childCols) {
			panic(errors.AssertionFailedf(
				"%s requires order %s of an input producing %s", op.Op(), child.Order, childCols))
		}
	}
	return child
}

// DeriveProps returns the physical properties provided by op, given the
// properties derived for its inputs.
func DeriveProps(h memo.ExprHandle, op memo.PhysicalOperator) *physical.Derived {
	return &physical.Derived{
		OutputCols:    h.OutputCols(),
		Order:         op.DeriveOrder(h),
		Distribution:  op.DeriveDistribution(h),
		Rewindability: op.DeriveRewindability(h),
		CTEs:          op.DeriveCTEMap(h),
		PartIndex:     op.DerivePartIndexMap(h),
	}
}
