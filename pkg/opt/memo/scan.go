// Copyright 2018 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

package memo

import (
	"github.com/relplan/optcore/pkg/opt"
	"github.com/relplan/optcore/pkg/opt/props"
	"github.com/relplan/optcore/pkg/opt/props/physical"
	"github.com/relplan/optcore/pkg/opt/stats"
)

// TableScanExpr reads the rows of a table. The ith column of the table is
// output as Cols[i]. Scans of partitioned tables carry a PartScan id by which
// requirements refer to them.
type TableScanExpr struct {
	leafOp

	Table opt.TableID
	Cols  opt.ColList
	// PartScan is zero for tables without partitions.
	PartScan opt.PartScanID
	// Distribution is how the table is stored across nodes.
	Distribution physical.DistributionSpec
	// Constraints restrict the rows read by the scan.
	Constraints []*props.Constraint
}

var _ PhysicalOperator = &TableScanExpr{}

// Op is part of the PhysicalOperator interface.
func (*TableScanExpr) Op() opt.Operator { return opt.TableScanOp }

// OutputCols is part of the PhysicalOperator interface.
func (e *TableScanExpr) OutputCols([]opt.ColSet) opt.ColSet {
	return e.Cols.ToSet()
}

// DeriveDistribution is part of the PhysicalOperator interface.
func (e *TableScanExpr) DeriveDistribution(ExprHandle) physical.DistributionSpec {
	return e.Distribution
}

// DeriveRewindability is part of the PhysicalOperator interface. A table can
// always be scanned again.
func (*TableScanExpr) DeriveRewindability(ExprHandle) physical.RewindabilitySpec {
	return physical.RewindabilitySpec{Rewindable: true}
}

// DeriveCTEMap is part of the PhysicalOperator interface.
func (*TableScanExpr) DeriveCTEMap(ExprHandle) physical.CTEMap { return nil }

// DerivePartIndexMap is part of the PhysicalOperator interface.
func (e *TableScanExpr) DerivePartIndexMap(ExprHandle) physical.PartIndexMap {
	if e.PartScan == 0 {
		return nil
	}
	return physical.PartIndexMap{
		e.PartScan: {Role: physical.PartitionConsumer, Table: e.Table},
	}
}

// OrderEnforcingType is part of the PhysicalOperator interface.
func (*TableScanExpr) OrderEnforcingType(
	_ ExprHandle, required physical.OrderSpec,
) physical.EnforcingType {
	return orderVerdict(required)
}

// RewindabilityEnforcingType is part of the PhysicalOperator interface.
func (*TableScanExpr) RewindabilityEnforcingType(
	ExprHandle, physical.RewindabilitySpec,
) physical.EnforcingType {
	return physical.EnforcingUnnecessary
}

// DistributionEnforcingType is part of the PhysicalOperator interface.
func (e *TableScanExpr) DistributionEnforcingType(
	_ ExprHandle, required physical.DistributionSpec,
) physical.EnforcingType {
	return physical.EnforcingTypeFor(required.SatisfiedBy(e.Distribution))
}

// PartitionEnforcingType is part of the PhysicalOperator interface.
func (e *TableScanExpr) PartitionEnforcingType(
	h ExprHandle, required physical.PartitionPropagationSpec,
) physical.EnforcingType {
	return physical.EnforcingTypeFor(required.SatisfiedBy(e.DerivePartIndexMap(h)))
}

// DeriveStatistics is part of the PhysicalOperator interface.
func (e *TableScanExpr) DeriveStatistics(
	_ ExprHandle, b *stats.Builder,
) (*props.Statistics, error) {
	var constraints props.ColConstraintsMapper
	if len(e.Constraints) > 0 {
		constraints = props.NewColConstraintsArrayMapper(e.Constraints...)
	}
	return b.TableStats(e.Table, e.Cols, constraints)
}

// FilterExpr passes through the rows of its input that satisfy a set of
// range constraints.
type FilterExpr struct {
	unaryOp

	Constraints []*props.Constraint
}

var _ PhysicalOperator = &FilterExpr{}

// Op is part of the PhysicalOperator interface.
func (*FilterExpr) Op() opt.Operator { return opt.FilterOp }

// RequiredCols is part of the PhysicalOperator interface. The input must also
// produce the constrained columns.
func (e *FilterExpr) RequiredCols(h ExprHandle, required opt.ColSet, childIdx, _ int) opt.ColSet {
	checkChildIdx(e.Op(), 1, childIdx)
	cols := required.Copy()
	for _, c := range e.Constraints {
		cols.UnionWith(c.Cols)
	}
	return cols.Intersection(h.ChildOutputCols(0))
}

// PassThroughStats is part of the PhysicalOperator interface.
func (*FilterExpr) PassThroughStats() bool { return false }

// DeriveStatistics is part of the PhysicalOperator interface.
func (e *FilterExpr) DeriveStatistics(h ExprHandle, b *stats.Builder) (*props.Statistics, error) {
	input, err := e.unaryOp.DeriveStatistics(h, b)
	if err != nil {
		return nil, err
	}
	return b.Filter(input, props.NewColConstraintsHashMapper(e.Constraints...)), nil
}
