// Copyright 2018 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

package opt

import (
	"fmt"
	"strings"

	"github.com/cockroachdb/errors"
)

// Operator describes the type of operation that a physical plan node
// performs.
type Operator uint8

const (
	// UnknownOp is not a valid operator.
	UnknownOp Operator = iota

	// CTEProducerOp materializes the output of its single input and makes it
	// visible to every consumer of the same CTE id.
	CTEProducerOp

	// CTEConsumerOp reads the rows materialized by a CTE producer.
	CTEConsumerOp

	// TableScanOp reads the rows of a base table.
	TableScanOp

	FilterOp

	// SortOp is an enforcer that sorts its input.
	SortOp

	// SpoolOp is an enforcer that materializes its input so that it can be
	// rewound.
	SpoolOp

	// MotionOp is an enforcer that redistributes rows across segments.
	MotionOp

	// PartitionSelectorOp is an enforcer that computes the partitions a
	// partitioned scan must read.
	PartitionSelectorOp

	HashJoinOp
	NestedLoopJoinOp

	// NumOperators tracks the total count of operators.
	NumOperators
)

var operatorNames = [...]string{
	UnknownOp:           "unknown",
	CTEProducerOp:       "cte-producer",
	CTEConsumerOp:       "cte-consumer",
	TableScanOp:         "scan",
	FilterOp:            "filter",
	SortOp:              "sort",
	SpoolOp:             "spool",
	MotionOp:            "motion",
	PartitionSelectorOp: "partition-selector",
	HashJoinOp:          "hash-join",
	NestedLoopJoinOp:    "nested-loop-join",
}

func (op Operator) String() string {
	if op >= NumOperators {
		return fmt.Sprintf("operator(%d)", op)
	}
	return operatorNames[op]
}

// SafeValue implements the redact.SafeValue interface.
func (Operator) SafeValue() {}

// IsEnforcer returns true if the operator is only ever placed in a plan to
// provide a physical property that its input lacks.
func (op Operator) IsEnforcer() bool {
	switch op {
	case SortOp, SpoolOp, MotionOp, PartitionSelectorOp:
		return true
	}
	return false
}

// IsJoin returns true if the operator is a physical join.
func (op Operator) IsJoin() bool {
	return op == HashJoinOp || op == NestedLoopJoinOp
}

// ParseOperator returns the operator with the given name.
func ParseOperator(name string) (Operator, error) {
	for op := Operator(1); op < NumOperators; op++ {
		if operatorNames[op] == name {
			return op, nil
		}
	}
	return UnknownOp, errors.Errorf("unknown operator %q", name)
}

// JoinType is the logical flavor of a join. It is a property of the join as a
// whole, not of its individual predicates.
type JoinType uint8

const (
	InnerJoin JoinType = iota
	LeftOuterJoin
	LeftSemiJoin
	LeftAntiSemiJoin
)

var joinTypeNames = [...]string{
	InnerJoin:        "inner",
	LeftOuterJoin:    "left-outer",
	LeftSemiJoin:     "left-semi",
	LeftAntiSemiJoin: "left-anti-semi",
}

func (j JoinType) String() string {
	if int(j) >= len(joinTypeNames) {
		return fmt.Sprintf("join(%d)", j)
	}
	return joinTypeNames[j]
}

// SafeValue implements the redact.SafeValue interface.
func (JoinType) SafeValue() {}

// ParseJoinType returns the join type with the given name.
func ParseJoinType(name string) (JoinType, error) {
	for i, n := range joinTypeNames {
		if n == name {
			return JoinType(i), nil
		}
	}
	return InnerJoin, errors.Errorf("unknown join type %q", name)
}

// CmpType classifies the comparison performed by a join predicate.
type CmpType uint8

const (
	// CmpEq is =.
	CmpEq CmpType = iota
	// CmpNEq is <>.
	CmpNEq
	CmpLt
	CmpLEq
	CmpGt
	CmpGEq
	// CmpIDF is IS DISTINCT FROM.
	CmpIDF
	// CmpINDF is IS NOT DISTINCT FROM. Unlike CmpEq, it matches NULLs.
	CmpINDF
	CmpLike
	// CmpOther is any comparison whose semantics are opaque to statistics.
	CmpOther
)

var cmpTypeNames = [...]string{
	CmpEq:    "=",
	CmpNEq:   "<>",
	CmpLt:    "<",
	CmpLEq:   "<=",
	CmpGt:    ">",
	CmpGEq:   ">=",
	CmpIDF:   "IS DISTINCT FROM",
	CmpINDF:  "IS NOT DISTINCT FROM",
	CmpLike:  "LIKE",
	CmpOther: "other",
}

func (c CmpType) String() string {
	if int(c) >= len(cmpTypeNames) {
		return fmt.Sprintf("cmp(%d)", c)
	}
	return cmpTypeNames[c]
}

// SafeValue implements the redact.SafeValue interface.
func (CmpType) SafeValue() {}

// ParseCmpType returns the comparison with the given name. Names are matched
// case-insensitively.
func ParseCmpType(name string) (CmpType, error) {
	for i, n := range cmpTypeNames {
		if strings.EqualFold(n, name) {
			return CmpType(i), nil
		}
	}
	return CmpOther, errors.Errorf("unknown comparison %q", name)
}

// SupportsJoin returns true if histograms can be combined under this
// comparison by a bucket overlap computation.
func (c CmpType) SupportsJoin() bool {
	switch c {
	case CmpEq, CmpNEq, CmpLt, CmpLEq, CmpGt, CmpGEq, CmpIDF, CmpINDF:
		return true
	}
	return false
}

// IsEquality returns true for = and IS NOT DISTINCT FROM, the only
// comparisons under which a join produces a histogram of its own.
func (c CmpType) IsEquality() bool {
	return c == CmpEq || c == CmpINDF
}

// IsInequality returns true for <> and IS DISTINCT FROM.
func (c CmpType) IsInequality() bool {
	return c == CmpNEq || c == CmpIDF
}

// IsRange returns true for <, <=, > and >=.
func (c CmpType) IsRange() bool {
	switch c {
	case CmpLt, CmpLEq, CmpGt, CmpGEq:
		return true
	}
	return false
}

// Commute returns the comparison obtained by swapping its operands.
func (c CmpType) Commute() CmpType {
	switch c {
	case CmpLt:
		return CmpGt
	case CmpLEq:
		return CmpGEq
	case CmpGt:
		return CmpLt
	case CmpGEq:
		return CmpLEq
	}
	return c
}
