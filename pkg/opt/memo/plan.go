// Copyright 2018 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

package memo

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/relplan/optcore/pkg/opt"
)

// PlanNode is a node of a fixed physical plan: an operator and its inputs.
type PlanNode struct {
	Op       PhysicalOperator
	Children []*PlanNode
}

// NewPlanNode returns a plan node, checking that the operator has the right
// number of inputs.
func NewPlanNode(op PhysicalOperator, children ...*PlanNode) *PlanNode {
	if want := arity(op.Op()); want != len(children) {
		panic(errors.AssertionFailedf(
			"%s expects %d inputs, got %d", op.Op(), want, len(children)))
	}
	return &PlanNode{Op: op, Children: children}
}

func arity(op opt.Operator) int {
	switch op {
	case opt.TableScanOp, opt.CTEConsumerOp:
		return 0
	case opt.HashJoinOp, opt.NestedLoopJoinOp:
		return 2
	}
	return 1
}

// OutputCols returns the columns produced by the node.
func (n *PlanNode) OutputCols() opt.ColSet {
	childCols := make([]opt.ColSet, len(n.Children))
	for i, c := range n.Children {
		childCols[i] = c.OutputCols()
	}
	return n.Op.OutputCols(childCols)
}

// String formats the plan as an indented tree.
func (n *PlanNode) String() string {
	var buf bytes.Buffer
	n.format(&buf, 0)
	return buf.String()
}

func (n *PlanNode) format(buf *bytes.Buffer, depth int) {
	fmt.Fprintf(buf, "%s%s\n", strings.Repeat("  ", depth), Describe(n.Op))
	for _, c := range n.Children {
		c.format(buf, depth+1)
	}
}

// Describe returns the operator name followed by its defining attributes.
func Describe(op PhysicalOperator) string {
	switch e := op.(type) {
	case *TableScanExpr:
		if e.PartScan != 0 {
			return fmt.Sprintf("scan %s %s", e.Table, e.PartScan)
		}
		return fmt.Sprintf("scan %s", e.Table)
	case *FilterExpr:
		parts := make([]string, len(e.Constraints))
		for i, c := range e.Constraints {
			parts[i] = c.String()
		}
		return fmt.Sprintf("filter [%s]", strings.Join(parts, "; "))
	case *CTEProducerExpr:
		return fmt.Sprintf("cte-producer %s", e.ID)
	case *CTEConsumerExpr:
		return fmt.Sprintf("cte-consumer %s", e.ID)
	case *SortExpr:
		return fmt.Sprintf("sort %s", e.Order)
	case *SpoolExpr:
		return "spool"
	case *MotionExpr:
		if e.merges() {
			return fmt.Sprintf("motion %s merge %s", e.Target, e.MergeOrder)
		}
		return fmt.Sprintf("motion %s", e.Target)
	case *PartitionSelectorExpr:
		return fmt.Sprintf("partition-selector %s", e.PartScan)
	case *HashJoinExpr:
		return fmt.Sprintf("hash-join %s %s", e.JoinType, formatPredicates(&e.joinOp))
	case *NestedLoopJoinExpr:
		return fmt.Sprintf("nested-loop-join %s %s", e.JoinType, formatPredicates(&e.joinOp))
	}
	return op.Op().String()
}

func formatPredicates(j *joinOp) string {
	parts := make([]string, len(j.Predicates))
	for i, p := range j.Predicates {
		parts[i] = p.String()
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

// mustBe asserts that the operator has the given tag.
func mustBe(op PhysicalOperator, tag opt.Operator) {
	if op == nil {
		panic(errors.AssertionFailedf("expected %s, got nil operator", tag))
	}
	if op.Op() != tag {
		panic(errors.AssertionFailedf("expected %s, got %s", tag, op.Op()))
	}
}

// AsCTEProducer narrows the operator to a CTE producer. It panics if the
// operator is of another kind.
func AsCTEProducer(op PhysicalOperator) *CTEProducerExpr {
	mustBe(op, opt.CTEProducerOp)
	return op.(*CTEProducerExpr)
}

// AsCTEConsumer narrows the operator to a CTE consumer.
func AsCTEConsumer(op PhysicalOperator) *CTEConsumerExpr {
	mustBe(op, opt.CTEConsumerOp)
	return op.(*CTEConsumerExpr)
}

// AsTableScan narrows the operator to a table scan.
func AsTableScan(op PhysicalOperator) *TableScanExpr {
	mustBe(op, opt.TableScanOp)
	return op.(*TableScanExpr)
}

// AsMotion narrows the operator to a motion.
func AsMotion(op PhysicalOperator) *MotionExpr {
	mustBe(op, opt.MotionOp)
	return op.(*MotionExpr)
}

// AsSort narrows the operator to a sort.
func AsSort(op PhysicalOperator) *SortExpr {
	mustBe(op, opt.SortOp)
	return op.(*SortExpr)
}

// AsPartitionSelector narrows the operator to a partition selector.
func AsPartitionSelector(op PhysicalOperator) *PartitionSelectorExpr {
	mustBe(op, opt.PartitionSelectorOp)
	return op.(*PartitionSelectorExpr)
}
