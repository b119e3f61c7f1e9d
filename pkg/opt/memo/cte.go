// Copyright 2018 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

package memo

import (
	"math"

	"github.com/cockroachdb/errors"
	"github.com/cockroachdb/redact"
	"github.com/relplan/optcore/pkg/opt"
	"github.com/relplan/optcore/pkg/opt/props"
	"github.com/relplan/optcore/pkg/opt/props/physical"
	"github.com/relplan/optcore/pkg/opt/stats"
)

// CTEProducerExpr computes the rows of a common table expression once, for
// all of its consumers. It passes its input's rows through.
type CTEProducerExpr struct {
	unaryOp

	ID   opt.CTEID
	Cols opt.ColList
}

var _ PhysicalOperator = &CTEProducerExpr{}

// Op is part of the PhysicalOperator interface.
func (*CTEProducerExpr) Op() opt.Operator { return opt.CTEProducerOp }

// OutputCols is part of the PhysicalOperator interface.
func (e *CTEProducerExpr) OutputCols([]opt.ColSet) opt.ColSet {
	return e.Cols.ToSet()
}

// RequiredCols is part of the PhysicalOperator interface. The input must
// produce every column of the CTE, whichever of them the parent needs, since
// consumers elsewhere in the plan read them.
func (e *CTEProducerExpr) RequiredCols(
	h ExprHandle, required opt.ColSet, childIdx, _ int,
) opt.ColSet {
	checkChildIdx(e.Op(), 1, childIdx)
	return required.Union(e.Cols.ToSet()).Intersection(h.ChildOutputCols(0))
}

// RequiredOrder is part of the PhysicalOperator interface. The rows of a CTE
// are read by several consumers with different needs, so no order is
// requested of the input.
func (e *CTEProducerExpr) RequiredOrder(
	_ ExprHandle, _ physical.OrderSpec, childIdx, _ int,
) physical.OrderSpec {
	checkChildIdx(e.Op(), 1, childIdx)
	return physical.OrderSpec{}
}

// DeriveOrder is part of the PhysicalOperator interface. The producer offers
// no order guarantee of its own.
func (*CTEProducerExpr) DeriveOrder(ExprHandle) physical.OrderSpec {
	return physical.OrderSpec{}
}

// DeriveCTEMap is part of the PhysicalOperator interface.
func (e *CTEProducerExpr) DeriveCTEMap(h ExprHandle) physical.CTEMap {
	return mustChildDerived(h, 0).CTEs.Insert(e.ID, physical.CTEProducer)
}

// OrderEnforcingType is part of the PhysicalOperator interface.
func (*CTEProducerExpr) OrderEnforcingType(
	_ ExprHandle, required physical.OrderSpec,
) physical.EnforcingType {
	return orderVerdict(required)
}

// RewindabilityEnforcingType is part of the PhysicalOperator interface.
func (*CTEProducerExpr) RewindabilityEnforcingType(
	_ ExprHandle, required physical.RewindabilitySpec,
) physical.EnforcingType {
	return rewindabilityVerdict(required)
}

// PassThroughStats is part of the PhysicalOperator interface.
func (*CTEProducerExpr) PassThroughStats() bool { return false }

// CTEConsumerExpr reads the rows computed by the producer of a CTE. The ith
// column of the consumer is the ith column of the producer.
type CTEConsumerExpr struct {
	leafOp

	ID           opt.CTEID
	Cols         opt.ColList
	ProducerCols opt.ColList
	// Distribution is the distribution of the rows of the producer.
	Distribution physical.DistributionSpec
}

var _ PhysicalOperator = &CTEConsumerExpr{}

// Op is part of the PhysicalOperator interface.
func (*CTEConsumerExpr) Op() opt.Operator { return opt.CTEConsumerOp }

// OutputCols is part of the PhysicalOperator interface.
func (e *CTEConsumerExpr) OutputCols([]opt.ColSet) opt.ColSet {
	return e.Cols.ToSet()
}

// DeriveDistribution is part of the PhysicalOperator interface.
func (e *CTEConsumerExpr) DeriveDistribution(ExprHandle) physical.DistributionSpec {
	return e.Distribution
}

// DeriveRewindability is part of the PhysicalOperator interface. The
// producer's rows are materialized and can be read any number of times.
func (*CTEConsumerExpr) DeriveRewindability(ExprHandle) physical.RewindabilitySpec {
	return physical.RewindabilitySpec{Rewindable: true}
}

// DeriveCTEMap is part of the PhysicalOperator interface.
func (e *CTEConsumerExpr) DeriveCTEMap(ExprHandle) physical.CTEMap {
	return physical.CTEMap{e.ID: physical.CTEConsumer}
}

// DerivePartIndexMap is part of the PhysicalOperator interface.
func (*CTEConsumerExpr) DerivePartIndexMap(ExprHandle) physical.PartIndexMap {
	return nil
}

// OrderEnforcingType is part of the PhysicalOperator interface.
func (*CTEConsumerExpr) OrderEnforcingType(
	_ ExprHandle, required physical.OrderSpec,
) physical.EnforcingType {
	return orderVerdict(required)
}

// RewindabilityEnforcingType is part of the PhysicalOperator interface.
func (*CTEConsumerExpr) RewindabilityEnforcingType(
	ExprHandle, physical.RewindabilitySpec,
) physical.EnforcingType {
	return physical.EnforcingUnnecessary
}

// DistributionEnforcingType is part of the PhysicalOperator interface.
func (e *CTEConsumerExpr) DistributionEnforcingType(
	_ ExprHandle, required physical.DistributionSpec,
) physical.EnforcingType {
	return physical.EnforcingTypeFor(required.SatisfiedBy(e.Distribution))
}

// PartitionEnforcingType is part of the PhysicalOperator interface.
func (*CTEConsumerExpr) PartitionEnforcingType(
	ExprHandle, physical.PartitionPropagationSpec,
) physical.EnforcingType {
	return physical.EnforcingUnnecessary
}

// DeriveStatistics is part of the PhysicalOperator interface. The statistics
// of the producer are renamed to the columns of the consumer.
func (e *CTEConsumerExpr) DeriveStatistics(
	h ExprHandle, _ *stats.Builder,
) (*props.Statistics, error) {
	if len(e.Cols) != len(e.ProducerCols) {
		return nil, errors.AssertionFailedf(
			"consumer of %s has %d columns, its producer %d",
			e.ID, redact.Safe(len(e.Cols)), redact.Safe(len(e.ProducerCols)),
		)
	}
	producer, ok := h.CTEProducerStats(e.ID)
	if !ok {
		return nil, errors.AssertionFailedf("consumer of %s is derived before its producer", e.ID)
	}

	var sb props.StatisticsBuilder
	sb.Init(producer.Rows())
	sb.SetEmpty(producer.IsEmpty())
	sb.SetNumPredicates(producer.NumPredicates())
	for i, col := range e.Cols {
		from := e.ProducerCols[i]
		if hist, ok := producer.Histogram(from); ok {
			sb.SetHistogram(col, hist.Copy())
		} else {
			sb.SetHistogram(col, props.EmptyHistogram())
		}
		if w, ok := producer.Width(from); ok {
			sb.SetWidth(col, w)
		}
		if ub := producer.UpperBound(from); !math.IsInf(ub, 1) {
			sb.AddUpperBound(opt.MakeColSet(col), ub)
		}
	}
	return sb.Build(), nil
}
