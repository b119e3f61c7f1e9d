// Copyright 2018 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

package memo

import (
	"github.com/cockroachdb/errors"
	"github.com/cockroachdb/redact"
	"github.com/relplan/optcore/pkg/opt"
	"github.com/relplan/optcore/pkg/opt/props"
	"github.com/relplan/optcore/pkg/opt/props/physical"
	"github.com/relplan/optcore/pkg/opt/stats"
)

// PhysicalOperator is implemented by every physical operator. The methods
// taking a child index compute what the operator requires of that input,
// given what is required of the operator itself. reqIdx selects one of the
// NumRequests alternative ways in which the operator can split a
// requirement among its inputs.
//
// All methods are pure functions of their arguments and of the operator.
type PhysicalOperator interface {
	// Op returns the operator tag.
	Op() opt.Operator

	// NumRequests returns the number of alternative child requests.
	NumRequests() int

	// OutputCols returns the columns produced by the operator given the
	// columns produced by its inputs.
	OutputCols(childCols []opt.ColSet) opt.ColSet

	RequiredCols(h ExprHandle, required opt.ColSet, childIdx, reqIdx int) opt.ColSet
	RequiredCTEs(h ExprHandle, required physical.CTEReq, childIdx, reqIdx int) physical.CTEReq
	RequiredOrder(h ExprHandle, required physical.OrderSpec, childIdx, reqIdx int) physical.OrderSpec
	RequiredDistribution(
		h ExprHandle, required physical.DistributionSpec, childIdx, reqIdx int,
	) physical.DistributionSpec
	RequiredRewindability(
		h ExprHandle, required physical.RewindabilitySpec, childIdx, reqIdx int,
	) physical.RewindabilitySpec
	RequiredPartitionPropagation(
		h ExprHandle, required physical.PartitionPropagationSpec, childIdx, reqIdx int,
	) physical.PartitionPropagationSpec

	// ProvidesRequiredCols returns true if the operator outputs every
	// required column.
	ProvidesRequiredCols(h ExprHandle, required opt.ColSet, reqIdx int) bool

	DeriveOrder(h ExprHandle) physical.OrderSpec
	DeriveDistribution(h ExprHandle) physical.DistributionSpec
	DeriveRewindability(h ExprHandle) physical.RewindabilitySpec
	DeriveCTEMap(h ExprHandle) physical.CTEMap
	DerivePartIndexMap(h ExprHandle) physical.PartIndexMap

	OrderEnforcingType(h ExprHandle, required physical.OrderSpec) physical.EnforcingType
	RewindabilityEnforcingType(h ExprHandle, required physical.RewindabilitySpec) physical.EnforcingType
	DistributionEnforcingType(h ExprHandle, required physical.DistributionSpec) physical.EnforcingType
	PartitionEnforcingType(
		h ExprHandle, required physical.PartitionPropagationSpec,
	) physical.EnforcingType

	// PassThroughStats returns true if the statistics of the operator are
	// those of its first input.
	PassThroughStats() bool

	// DeriveStatistics derives the statistics of the operator's output from
	// the statistics of its inputs.
	DeriveStatistics(h ExprHandle, b *stats.Builder) (*props.Statistics, error)
}

// unaryOp provides the behavior shared by operators with a single input that
// do not change the shape of the rows: requirements are passed to the input
// and the input's properties are passed up.
type unaryOp struct{}

func (unaryOp) NumRequests() int { return 1 }

func (unaryOp) OutputCols(childCols []opt.ColSet) opt.ColSet {
	return childCols[0]
}

func (unaryOp) RequiredCols(h ExprHandle, required opt.ColSet, _, _ int) opt.ColSet {
	return required.Intersection(h.ChildOutputCols(0))
}

func (unaryOp) RequiredCTEs(_ ExprHandle, required physical.CTEReq, _, _ int) physical.CTEReq {
	return required
}

func (unaryOp) RequiredOrder(
	_ ExprHandle, required physical.OrderSpec, _, _ int,
) physical.OrderSpec {
	return required
}

func (unaryOp) RequiredDistribution(
	_ ExprHandle, required physical.DistributionSpec, _, _ int,
) physical.DistributionSpec {
	return required
}

func (unaryOp) RequiredRewindability(
	_ ExprHandle, required physical.RewindabilitySpec, _, _ int,
) physical.RewindabilitySpec {
	return required
}

func (unaryOp) RequiredPartitionPropagation(
	_ ExprHandle, required physical.PartitionPropagationSpec, _, _ int,
) physical.PartitionPropagationSpec {
	return required
}

func (unaryOp) ProvidesRequiredCols(h ExprHandle, required opt.ColSet, _ int) bool {
	return required.SubsetOf(h.OutputCols())
}

func (unaryOp) DeriveOrder(h ExprHandle) physical.OrderSpec {
	return mustChildDerived(h, 0).Order
}

func (unaryOp) DeriveDistribution(h ExprHandle) physical.DistributionSpec {
	return mustChildDerived(h, 0).Distribution
}

func (unaryOp) DeriveRewindability(h ExprHandle) physical.RewindabilitySpec {
	return mustChildDerived(h, 0).Rewindability
}

func (unaryOp) DeriveCTEMap(h ExprHandle) physical.CTEMap {
	return mustChildDerived(h, 0).CTEs
}

func (unaryOp) DerivePartIndexMap(h ExprHandle) physical.PartIndexMap {
	return mustChildDerived(h, 0).PartIndex
}

func (unaryOp) OrderEnforcingType(h ExprHandle, required physical.OrderSpec) physical.EnforcingType {
	return physical.EnforcingTypeFor(required.SatisfiedBy(mustChildDerived(h, 0).Order))
}

func (unaryOp) RewindabilityEnforcingType(
	h ExprHandle, required physical.RewindabilitySpec,
) physical.EnforcingType {
	return physical.EnforcingTypeFor(required.SatisfiedBy(mustChildDerived(h, 0).Rewindability))
}

func (unaryOp) DistributionEnforcingType(
	h ExprHandle, required physical.DistributionSpec,
) physical.EnforcingType {
	return physical.EnforcingTypeFor(required.SatisfiedBy(mustChildDerived(h, 0).Distribution))
}

func (unaryOp) PartitionEnforcingType(
	h ExprHandle, required physical.PartitionPropagationSpec,
) physical.EnforcingType {
	return physical.EnforcingTypeFor(required.SatisfiedBy(mustChildDerived(h, 0).PartIndex))
}

func (unaryOp) PassThroughStats() bool { return true }

func (unaryOp) DeriveStatistics(h ExprHandle, _ *stats.Builder) (*props.Statistics, error) {
	s := h.ChildStats(0)
	if s == nil {
		return nil, errors.AssertionFailedf("statistics of the input are not derived")
	}
	return s.Copy(), nil
}

// leafOp provides the behavior shared by operators without inputs.
type leafOp struct{}

func (leafOp) NumRequests() int { return 1 }

func (leafOp) RequiredCols(ExprHandle, opt.ColSet, int, int) opt.ColSet {
	panic(errors.AssertionFailedf("leaf operator has no input"))
}

func (leafOp) RequiredCTEs(ExprHandle, physical.CTEReq, int, int) physical.CTEReq {
	panic(errors.AssertionFailedf("leaf operator has no input"))
}

func (leafOp) RequiredOrder(ExprHandle, physical.OrderSpec, int, int) physical.OrderSpec {
	panic(errors.AssertionFailedf("leaf operator has no input"))
}

func (leafOp) RequiredDistribution(
	ExprHandle, physical.DistributionSpec, int, int,
) physical.DistributionSpec {
	panic(errors.AssertionFailedf("leaf operator has no input"))
}

func (leafOp) RequiredRewindability(
	ExprHandle, physical.RewindabilitySpec, int, int,
) physical.RewindabilitySpec {
	panic(errors.AssertionFailedf("leaf operator has no input"))
}

func (leafOp) RequiredPartitionPropagation(
	ExprHandle, physical.PartitionPropagationSpec, int, int,
) physical.PartitionPropagationSpec {
	panic(errors.AssertionFailedf("leaf operator has no input"))
}

func (leafOp) ProvidesRequiredCols(h ExprHandle, required opt.ColSet, _ int) bool {
	return required.SubsetOf(h.OutputCols())
}

func (leafOp) DeriveOrder(ExprHandle) physical.OrderSpec { return physical.OrderSpec{} }

func (leafOp) PassThroughStats() bool { return false }

// orderVerdict is the verdict of an operator that provides no order of its
// own: any non-trivial order has to be enforced.
func orderVerdict(required physical.OrderSpec) physical.EnforcingType {
	if required.Any() {
		return physical.EnforcingUnnecessary
	}
	return physical.EnforcingRequired
}

// rewindabilityVerdict is the equivalent of orderVerdict for rewindability.
func rewindabilityVerdict(required physical.RewindabilitySpec) physical.EnforcingType {
	if required.Any() {
		return physical.EnforcingUnnecessary
	}
	return physical.EnforcingRequired
}

// mustChildDerived returns the derived properties of an input, which must
// have been optimized.
func mustChildDerived(h ExprHandle, i int) *physical.Derived {
	d := h.ChildDerived(i)
	if d == nil {
		panic(errors.AssertionFailedf("properties of input %d are not derived", redact.Safe(i)))
	}
	return d
}

// checkChildIdx asserts that the operator has an input at the given index.
func checkChildIdx(op opt.Operator, arity, childIdx int) {
	if childIdx < 0 || childIdx >= arity {
		panic(errors.AssertionFailedf("%s has no input %d", op, redact.Safe(childIdx)))
	}
}
