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

// joinOp provides the behavior shared by the join operators. The first input
// is the outer side of the join, the second the inner side.
type joinOp struct {
	JoinType   opt.JoinType
	Predicates []stats.JoinPredicate
}

// outputsInner returns true if the inner columns are part of the join output.
func (j *joinOp) outputsInner() bool {
	return j.JoinType == opt.InnerJoin || j.JoinType == opt.LeftOuterJoin
}

func checkJoinChildIdx(childIdx int) {
	if childIdx != 0 && childIdx != 1 {
		panic(errors.AssertionFailedf("join has no input %d", redact.Safe(childIdx)))
	}
}

func (j *joinOp) OutputCols(childCols []opt.ColSet) opt.ColSet {
	if j.outputsInner() {
		return childCols[0].Union(childCols[1])
	}
	return childCols[0]
}

// predicateCols returns the columns of the given side referenced by the join
// predicates.
func (j *joinOp) predicateCols(childIdx int) opt.ColSet {
	var cols opt.ColSet
	for _, p := range j.Predicates {
		if childIdx == 0 {
			cols.Add(p.OuterCol)
		} else {
			cols.Add(p.InnerCol)
		}
	}
	return cols
}

// equalityCols returns the columns of both sides compared for equality, in
// matching order.
func (j *joinOp) equalityCols() (outer, inner opt.ColSet) {
	for _, p := range j.Predicates {
		if p.Cmp.IsEquality() {
			outer.Add(p.OuterCol)
			inner.Add(p.InnerCol)
		}
	}
	return outer, inner
}

func (j *joinOp) RequiredCols(h ExprHandle, required opt.ColSet, childIdx, _ int) opt.ColSet {
	checkJoinChildIdx(childIdx)
	return required.Union(j.predicateCols(childIdx)).Intersection(h.ChildOutputCols(childIdx))
}

// RequiredCTEs asks the outer side for nothing. Whatever the outer side does
// not already provide is asked of the inner side, which is optimized after
// it.
func (j *joinOp) RequiredCTEs(
	h ExprHandle, required physical.CTEReq, childIdx, _ int,
) physical.CTEReq {
	checkJoinChildIdx(childIdx)
	if childIdx == 0 || required.Any() {
		return nil
	}
	outer := mustChildDerived(h, 0).CTEs
	var res physical.CTEReq
	for id, typ := range required {
		if (physical.CTEReq{id: typ}).SatisfiedBy(outer) {
			continue
		}
		if res == nil {
			res = make(physical.CTEReq)
		}
		res[id] = typ
	}
	return res
}

func (j *joinOp) RequiredPartitionPropagation(
	_ ExprHandle, required physical.PartitionPropagationSpec, childIdx, _ int,
) physical.PartitionPropagationSpec {
	checkJoinChildIdx(childIdx)
	return required
}

func (j *joinOp) ProvidesRequiredCols(h ExprHandle, required opt.ColSet, _ int) bool {
	return required.SubsetOf(h.OutputCols())
}

// DeriveDistribution returns the distribution of the outer side, unless its
// rows are present on every node, in which case the inner side decides.
func (j *joinOp) DeriveDistribution(h ExprHandle) physical.DistributionSpec {
	outer := mustChildDerived(h, 0).Distribution
	switch outer.Kind {
	case physical.DistributionReplicated, physical.DistributionUniversal:
		return mustChildDerived(h, 1).Distribution
	}
	return outer
}

func (j *joinOp) DeriveRewindability(h ExprHandle) physical.RewindabilitySpec {
	return mustChildDerived(h, 0).Rewindability
}

func (j *joinOp) DeriveCTEMap(h ExprHandle) physical.CTEMap {
	return mustChildDerived(h, 0).CTEs.Union(mustChildDerived(h, 1).CTEs)
}

func (j *joinOp) DerivePartIndexMap(h ExprHandle) physical.PartIndexMap {
	return mustChildDerived(h, 0).PartIndex.Union(mustChildDerived(h, 1).PartIndex)
}

func (j *joinOp) RewindabilityEnforcingType(
	h ExprHandle, required physical.RewindabilitySpec,
) physical.EnforcingType {
	return physical.EnforcingTypeFor(required.SatisfiedBy(j.DeriveRewindability(h)))
}

func (j *joinOp) DistributionEnforcingType(
	h ExprHandle, required physical.DistributionSpec,
) physical.EnforcingType {
	return physical.EnforcingTypeFor(required.SatisfiedBy(j.DeriveDistribution(h)))
}

func (j *joinOp) PartitionEnforcingType(
	h ExprHandle, required physical.PartitionPropagationSpec,
) physical.EnforcingType {
	return physical.EnforcingTypeFor(required.SatisfiedBy(j.DerivePartIndexMap(h)))
}

func (j *joinOp) PassThroughStats() bool { return false }

func (j *joinOp) DeriveStatistics(h ExprHandle, b *stats.Builder) (*props.Statistics, error) {
	return b.DeriveJoin(j.JoinType, h.ChildStats(0), h.ChildStats(1), j.Predicates)
}

// HashJoinExpr joins its inputs by building a hash table over the inner
// side. The rows of the join are not produced in any particular order.
//
// A hash join can be distributed in two ways: both sides hashed on their
// equality columns (or both gathered on a single node), or the inner side
// broadcast to every node holding outer rows.
type HashJoinExpr struct {
	joinOp
}

var _ PhysicalOperator = &HashJoinExpr{}

// Op is part of the PhysicalOperator interface.
func (*HashJoinExpr) Op() opt.Operator { return opt.HashJoinOp }

// NumRequests is part of the PhysicalOperator interface.
func (*HashJoinExpr) NumRequests() int { return 2 }

// RequiredOrder is part of the PhysicalOperator interface.
func (e *HashJoinExpr) RequiredOrder(
	_ ExprHandle, _ physical.OrderSpec, childIdx, _ int,
) physical.OrderSpec {
	checkChildIdx(e.Op(), 2, childIdx)
	return physical.OrderSpec{}
}

// RequiredDistribution is part of the PhysicalOperator interface.
func (e *HashJoinExpr) RequiredDistribution(
	_ ExprHandle, required physical.DistributionSpec, childIdx, reqIdx int,
) physical.DistributionSpec {
	checkChildIdx(e.Op(), 2, childIdx)
	if reqIdx == 1 {
		if childIdx == 0 {
			return required
		}
		return physical.ReplicatedDistribution
	}
	outer, inner := e.equalityCols()
	if required.Kind == physical.DistributionSingleton || outer.Empty() {
		return physical.SingletonDistribution
	}
	if childIdx == 0 {
		return physical.HashedDistribution(outer)
	}
	return physical.HashedDistribution(inner)
}

// RequiredRewindability is part of the PhysicalOperator interface. The inner
// side is read once to build the hash table.
func (e *HashJoinExpr) RequiredRewindability(
	_ ExprHandle, required physical.RewindabilitySpec, childIdx, _ int,
) physical.RewindabilitySpec {
	checkChildIdx(e.Op(), 2, childIdx)
	if childIdx == 0 {
		return required
	}
	return physical.RewindabilitySpec{}
}

// DeriveOrder is part of the PhysicalOperator interface.
func (*HashJoinExpr) DeriveOrder(ExprHandle) physical.OrderSpec {
	return physical.OrderSpec{}
}

// OrderEnforcingType is part of the PhysicalOperator interface.
func (*HashJoinExpr) OrderEnforcingType(
	_ ExprHandle, required physical.OrderSpec,
) physical.EnforcingType {
	return orderVerdict(required)
}

// NestedLoopJoinExpr joins every outer row with every row of the inner side,
// which it reads again for each outer row. The order of the outer side is
// preserved.
type NestedLoopJoinExpr struct {
	joinOp
}

var _ PhysicalOperator = &NestedLoopJoinExpr{}

// Op is part of the PhysicalOperator interface.
func (*NestedLoopJoinExpr) Op() opt.Operator { return opt.NestedLoopJoinOp }

// NumRequests is part of the PhysicalOperator interface. The first request
// pushes a required order down to the outer side; the second sorts above the
// join.
func (*NestedLoopJoinExpr) NumRequests() int { return 2 }

// RequiredOrder is part of the PhysicalOperator interface.
func (e *NestedLoopJoinExpr) RequiredOrder(
	h ExprHandle, required physical.OrderSpec, childIdx, reqIdx int,
) physical.OrderSpec {
	checkChildIdx(e.Op(), 2, childIdx)
	if reqIdx == 0 && childIdx == 0 && required.BoundBy(h.ChildOutputCols(0)) {
		return required
	}
	return physical.OrderSpec{}
}

// RequiredDistribution is part of the PhysicalOperator interface.
func (e *NestedLoopJoinExpr) RequiredDistribution(
	_ ExprHandle, required physical.DistributionSpec, childIdx, _ int,
) physical.DistributionSpec {
	checkChildIdx(e.Op(), 2, childIdx)
	if childIdx == 0 {
		return required
	}
	return physical.ReplicatedDistribution
}

// RequiredRewindability is part of the PhysicalOperator interface.
func (e *NestedLoopJoinExpr) RequiredRewindability(
	_ ExprHandle, required physical.RewindabilitySpec, childIdx, _ int,
) physical.RewindabilitySpec {
	checkChildIdx(e.Op(), 2, childIdx)
	if childIdx == 0 {
		return required
	}
	return physical.RewindabilitySpec{Rewindable: true}
}

// DeriveOrder is part of the PhysicalOperator interface.
func (*NestedLoopJoinExpr) DeriveOrder(h ExprHandle) physical.OrderSpec {
	return mustChildDerived(h, 0).Order
}

// OrderEnforcingType is part of the PhysicalOperator interface. An order over
// the outer columns can be provided by the outer side or by a sort, so both
// alternatives are considered.
func (*NestedLoopJoinExpr) OrderEnforcingType(
	h ExprHandle, required physical.OrderSpec,
) physical.EnforcingType {
	switch {
	case required.Any():
		return physical.EnforcingUnnecessary
	case required.BoundBy(h.ChildOutputCols(0)):
		return physical.EnforcingOptional
	}
	return physical.EnforcingRequired
}
