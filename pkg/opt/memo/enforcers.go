// Copyright 2018 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

package memo

import (
	"github.com/relplan/optcore/pkg/opt"
	"github.com/relplan/optcore/pkg/opt/props/physical"
)

// SortExpr sorts the rows of its input. It is placed as an enforcer when an
// order is required of an operator that does not provide it.
type SortExpr struct {
	unaryOp

	Order physical.OrderSpec
}

var _ PhysicalOperator = &SortExpr{}

// Op is part of the PhysicalOperator interface.
func (*SortExpr) Op() opt.Operator { return opt.SortOp }

// RequiredCols is part of the PhysicalOperator interface.
func (e *SortExpr) RequiredCols(h ExprHandle, required opt.ColSet, childIdx, _ int) opt.ColSet {
	checkChildIdx(e.Op(), 1, childIdx)
	return required.Union(e.Order.Cols()).Intersection(h.ChildOutputCols(0))
}

// RequiredOrder is part of the PhysicalOperator interface.
func (e *SortExpr) RequiredOrder(
	_ ExprHandle, _ physical.OrderSpec, childIdx, _ int,
) physical.OrderSpec {
	checkChildIdx(e.Op(), 1, childIdx)
	return physical.OrderSpec{}
}

// RequiredRewindability is part of the PhysicalOperator interface. A sort
// materializes its input.
func (e *SortExpr) RequiredRewindability(
	_ ExprHandle, _ physical.RewindabilitySpec, childIdx, _ int,
) physical.RewindabilitySpec {
	checkChildIdx(e.Op(), 1, childIdx)
	return physical.RewindabilitySpec{}
}

// DeriveOrder is part of the PhysicalOperator interface.
func (e *SortExpr) DeriveOrder(ExprHandle) physical.OrderSpec { return e.Order }

// DeriveRewindability is part of the PhysicalOperator interface.
func (*SortExpr) DeriveRewindability(ExprHandle) physical.RewindabilitySpec {
	return physical.RewindabilitySpec{Rewindable: true}
}

// OrderEnforcingType is part of the PhysicalOperator interface. Sorts are
// never stacked: a sort in the wrong order is rejected.
func (e *SortExpr) OrderEnforcingType(
	_ ExprHandle, required physical.OrderSpec,
) physical.EnforcingType {
	if required.SatisfiedBy(e.Order) {
		return physical.EnforcingUnnecessary
	}
	return physical.EnforcingProhibited
}

// RewindabilityEnforcingType is part of the PhysicalOperator interface.
func (*SortExpr) RewindabilityEnforcingType(
	ExprHandle, physical.RewindabilitySpec,
) physical.EnforcingType {
	return physical.EnforcingUnnecessary
}

// SpoolExpr materializes the rows of its input so that they can be read
// again.
type SpoolExpr struct {
	unaryOp
}

var _ PhysicalOperator = &SpoolExpr{}

// Op is part of the PhysicalOperator interface.
func (*SpoolExpr) Op() opt.Operator { return opt.SpoolOp }

// RequiredRewindability is part of the PhysicalOperator interface.
func (e *SpoolExpr) RequiredRewindability(
	_ ExprHandle, _ physical.RewindabilitySpec, childIdx, _ int,
) physical.RewindabilitySpec {
	checkChildIdx(e.Op(), 1, childIdx)
	return physical.RewindabilitySpec{}
}

// DeriveRewindability is part of the PhysicalOperator interface.
func (*SpoolExpr) DeriveRewindability(ExprHandle) physical.RewindabilitySpec {
	return physical.RewindabilitySpec{Rewindable: true}
}

// RewindabilityEnforcingType is part of the PhysicalOperator interface.
func (*SpoolExpr) RewindabilityEnforcingType(
	ExprHandle, physical.RewindabilitySpec,
) physical.EnforcingType {
	return physical.EnforcingUnnecessary
}

// MotionExpr moves the rows of its input across nodes to produce the target
// distribution. A motion gathering rows on a single node can preserve the
// order of its input by merging.
type MotionExpr struct {
	unaryOp

	Target physical.DistributionSpec
	// MergeOrder is only meaningful for a singleton target.
	MergeOrder physical.OrderSpec
}

var _ PhysicalOperator = &MotionExpr{}

// Op is part of the PhysicalOperator interface.
func (*MotionExpr) Op() opt.Operator { return opt.MotionOp }

func (e *MotionExpr) merges() bool {
	return e.Target.Kind == physical.DistributionSingleton && !e.MergeOrder.Any()
}

// RequiredCols is part of the PhysicalOperator interface.
func (e *MotionExpr) RequiredCols(h ExprHandle, required opt.ColSet, childIdx, _ int) opt.ColSet {
	checkChildIdx(e.Op(), 1, childIdx)
	cols := required.Union(e.Target.Cols)
	if e.merges() {
		cols.UnionWith(e.MergeOrder.Cols())
	}
	return cols.Intersection(h.ChildOutputCols(0))
}

// RequiredOrder is part of the PhysicalOperator interface.
func (e *MotionExpr) RequiredOrder(
	_ ExprHandle, _ physical.OrderSpec, childIdx, _ int,
) physical.OrderSpec {
	checkChildIdx(e.Op(), 1, childIdx)
	if e.merges() {
		return e.MergeOrder
	}
	return physical.OrderSpec{}
}

// RequiredDistribution is part of the PhysicalOperator interface.
func (e *MotionExpr) RequiredDistribution(
	_ ExprHandle, _ physical.DistributionSpec, childIdx, _ int,
) physical.DistributionSpec {
	checkChildIdx(e.Op(), 1, childIdx)
	return physical.AnyDistribution
}

// RequiredRewindability is part of the PhysicalOperator interface.
func (e *MotionExpr) RequiredRewindability(
	_ ExprHandle, _ physical.RewindabilitySpec, childIdx, _ int,
) physical.RewindabilitySpec {
	checkChildIdx(e.Op(), 1, childIdx)
	return physical.RewindabilitySpec{}
}

// DeriveOrder is part of the PhysicalOperator interface.
func (e *MotionExpr) DeriveOrder(ExprHandle) physical.OrderSpec {
	if e.merges() {
		return e.MergeOrder
	}
	return physical.OrderSpec{}
}

// DeriveDistribution is part of the PhysicalOperator interface.
func (e *MotionExpr) DeriveDistribution(ExprHandle) physical.DistributionSpec {
	return e.Target
}

// DeriveRewindability is part of the PhysicalOperator interface.
func (*MotionExpr) DeriveRewindability(ExprHandle) physical.RewindabilitySpec {
	return physical.RewindabilitySpec{}
}

// OrderEnforcingType is part of the PhysicalOperator interface.
func (e *MotionExpr) OrderEnforcingType(
	h ExprHandle, required physical.OrderSpec,
) physical.EnforcingType {
	return physical.EnforcingTypeFor(required.SatisfiedBy(e.DeriveOrder(h)))
}

// RewindabilityEnforcingType is part of the PhysicalOperator interface.
func (*MotionExpr) RewindabilityEnforcingType(
	_ ExprHandle, required physical.RewindabilitySpec,
) physical.EnforcingType {
	return rewindabilityVerdict(required)
}

// DistributionEnforcingType is part of the PhysicalOperator interface.
// Motions are never stacked: a motion to the wrong distribution is rejected.
func (e *MotionExpr) DistributionEnforcingType(
	_ ExprHandle, required physical.DistributionSpec,
) physical.EnforcingType {
	if required.SatisfiedBy(e.Target) {
		return physical.EnforcingUnnecessary
	}
	return physical.EnforcingProhibited
}

// PartitionSelectorExpr restricts a scan of a partitioned table below it to
// the partitions that can hold matching rows.
type PartitionSelectorExpr struct {
	unaryOp

	PartScan opt.PartScanID
	Table    opt.TableID
}

var _ PhysicalOperator = &PartitionSelectorExpr{}

// Op is part of the PhysicalOperator interface.
func (*PartitionSelectorExpr) Op() opt.Operator { return opt.PartitionSelectorOp }

// RequiredPartitionPropagation is part of the PhysicalOperator interface.
// The selector resolves its own scan.
func (e *PartitionSelectorExpr) RequiredPartitionPropagation(
	_ ExprHandle, required physical.PartitionPropagationSpec, childIdx, _ int,
) physical.PartitionPropagationSpec {
	checkChildIdx(e.Op(), 1, childIdx)
	return required.Without(e.PartScan)
}

// DerivePartIndexMap is part of the PhysicalOperator interface.
func (e *PartitionSelectorExpr) DerivePartIndexMap(h ExprHandle) physical.PartIndexMap {
	return mustChildDerived(h, 0).PartIndex.Resolve(e.PartScan)
}

// PartitionEnforcingType is part of the PhysicalOperator interface.
func (e *PartitionSelectorExpr) PartitionEnforcingType(
	h ExprHandle, required physical.PartitionPropagationSpec,
) physical.EnforcingType {
	return physical.EnforcingTypeFor(required.SatisfiedBy(e.DerivePartIndexMap(h)))
}
