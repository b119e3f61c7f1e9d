// Copyright 2018 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

package memo

import (
	"context"
	"math"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/relplan/optcore/pkg/opt"
	"github.com/relplan/optcore/pkg/opt/props"
	"github.com/relplan/optcore/pkg/opt/props/physical"
	"github.com/relplan/optcore/pkg/opt/stats"
	"github.com/relplan/optcore/pkg/opt/testutils/testcat"
	"github.com/relplan/optcore/pkg/util/log"
	"github.com/stretchr/testify/require"
)

// testHandle is an ExprHandle over fixed input properties.
type testHandle struct {
	childCols []opt.ColSet
	derived   []*physical.Derived
	stats     []*props.Statistics
	producers map[opt.CTEID]*props.Statistics
	op        PhysicalOperator
}

var _ ExprHandle = &testHandle{}

func (h *testHandle) Arity() int { return len(h.childCols) }
func (h *testHandle) OutputCols() opt.ColSet { return h.op.OutputCols(h.childCols) }
func (h *testHandle) ChildOutputCols(i int) opt.ColSet { return h.childCols[i] }
func (h *testHandle) ChildDerived(i int) *physical.Derived { return h.derived[i] }
func (h *testHandle) ChildStats(i int) *props.Statistics { return h.stats[i] }
func (h *testHandle) CTEProducerStats(id opt.CTEID) (*props.Statistics, bool) {
	s, ok := h.producers[id]
	return s, ok
}

func derived(cols opt.ColSet) *physical.Derived {
	return &physical.Derived{OutputCols: cols, Distribution: physical.RandomDistribution}
}

func requireAssertion(t *testing.T, f func()) {
	t.Helper()
	defer func() {
		r := recover()
		require.NotNil(t, r)
		err, ok := r.(error)
		require.True(t, ok)
		require.True(t, errors.HasAssertionFailure(err), "%v", err)
	}()
	f()
}

func TestCTEProducer(t *testing.T) {
	e := &CTEProducerExpr{ID: 1, Cols: opt.ColList{1, 2}}
	child := derived(opt.MakeColSet(1, 2, 3))
	child.Order = physical.MakeOrderSpec(opt.MakeOrderingColumn(1, false))
	child.Distribution = physical.SingletonDistribution
	child.CTEs = physical.CTEMap{2: physical.CTEConsumer}
	h := &testHandle{
		childCols: []opt.ColSet{opt.MakeColSet(1, 2, 3)},
		derived:   []*physical.Derived{child},
		op:        e,
	}

	require.Equal(t, 1, e.NumRequests())
	require.Equal(t, "(1,2)", h.OutputCols().String())
	require.Equal(t, "(1,2)", e.RequiredCols(h, opt.MakeColSet(1), 0, 0).String())
	require.Equal(t, "(1-3)", e.RequiredCols(h, opt.MakeColSet(3, 4), 0, 0).String())

	order := physical.MakeOrderSpec(opt.MakeOrderingColumn(2, true))
	require.True(t, e.RequiredOrder(h, order, 0, 0).Any())
	require.Equal(t, physical.SingletonDistribution,
		e.RequiredDistribution(h, physical.SingletonDistribution, 0, 0))
	require.True(t, e.RequiredRewindability(h, physical.RewindabilitySpec{Rewindable: true}, 0, 0).Rewindable)
	cteReq := physical.CTEReq{2: physical.CTEConsumer}
	require.True(t, e.RequiredCTEs(h, cteReq, 0, 0).Equals(cteReq))
	requireAssertion(t, func() { e.RequiredOrder(h, order, 1, 0) })

	// The producer provides no order even though its input does.
	require.True(t, e.DeriveOrder(h).Any())
	require.Equal(t, physical.SingletonDistribution, e.DeriveDistribution(h))
	require.Equal(t, "cte1:producer,cte2:consumer", e.DeriveCTEMap(h).String())
	// The input's map is not modified.
	require.Len(t, child.CTEs, 1)

	require.Equal(t, physical.EnforcingRequired, e.OrderEnforcingType(h, order))
	require.Equal(t, physical.EnforcingUnnecessary, e.OrderEnforcingType(h, physical.OrderSpec{}))
	require.Equal(t, physical.EnforcingRequired,
		e.RewindabilityEnforcingType(h, physical.RewindabilitySpec{Rewindable: true}))
	require.Equal(t, physical.EnforcingUnnecessary,
		e.RewindabilityEnforcingType(h, physical.RewindabilitySpec{}))
	require.Equal(t, physical.EnforcingUnnecessary,
		e.DistributionEnforcingType(h, physical.SingletonDistribution))
	require.Equal(t, physical.EnforcingRequired,
		e.DistributionEnforcingType(h, physical.ReplicatedDistribution))
	require.False(t, e.PassThroughStats())
}

func TestCTEProducerUnoptimizedInput(t *testing.T) {
	e := &CTEProducerExpr{ID: 1, Cols: opt.ColList{1}}
	h := &testHandle{childCols: []opt.ColSet{opt.MakeColSet(1)}, derived: []*physical.Derived{nil}, op: e}
	requireAssertion(t, func() { e.DeriveCTEMap(h) })
	requireAssertion(t, func() { e.DeriveDistribution(h) })
}

func TestCTEConsumer(t *testing.T) {
	e := &CTEConsumerExpr{
		ID:           1,
		Cols:         opt.ColList{10, 11},
		ProducerCols: opt.ColList{1, 2},
		Distribution: physical.HashedDistribution(opt.MakeColSet(10)),
	}
	var sb props.StatisticsBuilder
	sb.Init(200)
	sb.SetNumPredicates(1)
	sb.SetHistogram(1, props.NewHistogram([]props.Bucket{
		{Lower: 0, Upper: 10, LowerClosed: true, Frequency: 1, Distinct: 10},
	}, 0, 0, 0))
	sb.SetWidth(1, 8)
	sb.SetWidth(2, 4)
	sb.AddUpperBound(opt.MakeColSet(1), 10)
	producer := sb.Build()

	h := &testHandle{op: e, producers: map[opt.CTEID]*props.Statistics{1: producer}}
	s, err := e.DeriveStatistics(h, nil)
	require.NoError(t, err)
	require.Equal(t, 200.0, s.Rows())
	require.Equal(t, 1, s.NumPredicates())
	h10, ok := s.Histogram(10)
	require.True(t, ok)
	require.Equal(t, 10.0, h10.Distinct())
	h11, ok := s.Histogram(11)
	require.True(t, ok)
	require.True(t, h11.IsEmpty())
	require.Equal(t, 12.0, s.RowWidth())
	require.Equal(t, 10.0, s.UpperBound(10))
	require.True(t, math.IsInf(s.UpperBound(11), 1))
	_, ok = s.Histogram(1)
	require.False(t, ok)

	require.True(t, e.DeriveRewindability(h).Rewindable)
	require.Equal(t, "cte1:consumer", e.DeriveCTEMap(h).String())
	require.Equal(t, physical.EnforcingUnnecessary,
		e.DistributionEnforcingType(h, physical.HashedDistribution(opt.MakeColSet(10, 11))))
	require.Equal(t, physical.EnforcingRequired,
		e.DistributionEnforcingType(h, physical.SingletonDistribution))
	requireAssertion(t, func() { e.RequiredCols(h, opt.ColSet{}, 0, 0) })

	_, err = e.DeriveStatistics(&testHandle{op: e}, nil)
	require.True(t, errors.HasAssertionFailure(err))
	e.ProducerCols = opt.ColList{1}
	_, err = e.DeriveStatistics(h, nil)
	require.True(t, errors.HasAssertionFailure(err))
}

const testCatalog = `
tables:
- name: t
  id: 7
  rows: 100
  partitioned: true
  columns:
  - name: a
    stats:
      buckets:
      - {lower: 0, upper: 100, freq: 1, ndv: 100}
  - name: b
`

func newTestBuilder(t *testing.T) (*stats.Builder, *testcat.Catalog) {
	catalog := testcat.New()
	require.NoError(t, catalog.Load([]byte(testCatalog)))
	var b stats.Builder
	b.Init(context.Background(), stats.DefaultConfig(), catalog)
	return &b, catalog
}

func TestTableScan(t *testing.T) {
	defer log.Scope(t).Close(t)
	b, _ := newTestBuilder(t)

	e := &TableScanExpr{
		Table:        7,
		Cols:         opt.ColList{1, 2},
		PartScan:     3,
		Distribution: physical.HashedDistribution(opt.MakeColSet(1)),
		Constraints: []*props.Constraint{{
			Cols:  opt.MakeColSet(1),
			Spans: []props.Span{{Lower: 0, Upper: 50, LowerClosed: true}},
		}},
	}
	h := &testHandle{op: e}
	require.Equal(t, "(1,2)", h.OutputCols().String())
	require.True(t, e.ProvidesRequiredCols(h, opt.MakeColSet(2), 0))
	require.False(t, e.ProvidesRequiredCols(h, opt.MakeColSet(3), 0))
	require.True(t, e.DeriveRewindability(h).Rewindable)
	require.Equal(t, "ps3:consumer(t7)", e.DerivePartIndexMap(h).String())

	sel := physical.PartitionPropagationSpec{3: physical.PartitionSelect}
	require.Equal(t, physical.EnforcingRequired, e.PartitionEnforcingType(h, sel))
	require.Equal(t, physical.EnforcingUnnecessary,
		e.DistributionEnforcingType(h, physical.HashedDistribution(opt.MakeColSet(1, 2))))
	require.Equal(t, physical.EnforcingRequired,
		e.DistributionEnforcingType(h, physical.SingletonDistribution))
	require.Equal(t, physical.EnforcingRequired,
		e.OrderEnforcingType(h, physical.MakeOrderSpec(opt.MakeOrderingColumn(1, false))))

	s, err := e.DeriveStatistics(h, b)
	require.NoError(t, err)
	require.InDelta(t, 50.0, s.Rows(), 1e-9)

	e.PartScan = 0
	require.Nil(t, e.DerivePartIndexMap(h))
	e.Table = 99
	_, err = e.DeriveStatistics(h, b)
	require.Error(t, err)
}

func TestFilter(t *testing.T) {
	defer log.Scope(t).Close(t)
	b, _ := newTestBuilder(t)

	scan := &TableScanExpr{Table: 7, Cols: opt.ColList{1, 2}}
	input, err := scan.DeriveStatistics(&testHandle{op: scan}, b)
	require.NoError(t, err)

	e := &FilterExpr{Constraints: []*props.Constraint{{
		Cols:  opt.MakeColSet(1),
		Spans: []props.Span{{Lower: 0, Upper: 10, LowerClosed: true}},
	}}}
	child := derived(opt.MakeColSet(1, 2))
	h := &testHandle{
		childCols: []opt.ColSet{opt.MakeColSet(1, 2)},
		derived:   []*physical.Derived{child},
		stats:     []*props.Statistics{input},
		op:        e,
	}
	require.Equal(t, "(1,2)", e.RequiredCols(h, opt.MakeColSet(2), 0, 0).String())
	require.False(t, e.PassThroughStats())
	s, err := e.DeriveStatistics(h, b)
	require.NoError(t, err)
	require.InDelta(t, 10.0, s.Rows(), 1e-9)

	h.stats = []*props.Statistics{nil}
	_, err = e.DeriveStatistics(h, b)
	require.True(t, errors.HasAssertionFailure(err))
}

func TestSort(t *testing.T) {
	order := physical.MakeOrderSpec(opt.MakeOrderingColumn(1, false), opt.MakeOrderingColumn(2, true))
	e := &SortExpr{Order: order}
	h := &testHandle{
		childCols: []opt.ColSet{opt.MakeColSet(1, 2, 3)},
		derived:   []*physical.Derived{derived(opt.MakeColSet(1, 2, 3))},
		op:        e,
	}
	require.Equal(t, "(1,2)", e.RequiredCols(h, opt.ColSet{}, 0, 0).String())
	require.True(t, e.RequiredOrder(h, order, 0, 0).Any())
	require.False(t, e.RequiredRewindability(h, physical.RewindabilitySpec{Rewindable: true}, 0, 0).Rewindable)
	require.True(t, e.DeriveOrder(h).Equals(order))
	require.True(t, e.DeriveRewindability(h).Rewindable)

	prefix := physical.MakeOrderSpec(opt.MakeOrderingColumn(1, false))
	other := physical.MakeOrderSpec(opt.MakeOrderingColumn(3, false))
	require.Equal(t, physical.EnforcingUnnecessary, e.OrderEnforcingType(h, prefix))
	require.Equal(t, physical.EnforcingProhibited, e.OrderEnforcingType(h, other))
	require.Equal(t, physical.EnforcingUnnecessary,
		e.RewindabilityEnforcingType(h, physical.RewindabilitySpec{Rewindable: true}))
	require.True(t, e.PassThroughStats())
}

func TestSpool(t *testing.T) {
	e := &SpoolExpr{}
	h := &testHandle{
		childCols: []opt.ColSet{opt.MakeColSet(1)},
		derived:   []*physical.Derived{derived(opt.MakeColSet(1))},
		op:        e,
	}
	require.False(t, e.RequiredRewindability(h, physical.RewindabilitySpec{Rewindable: true}, 0, 0).Rewindable)
	require.True(t, e.DeriveRewindability(h).Rewindable)
	require.Equal(t, physical.RandomDistribution, e.DeriveDistribution(h))
}

func TestMotion(t *testing.T) {
	merge := physical.MakeOrderSpec(opt.MakeOrderingColumn(2, false))
	e := &MotionExpr{Target: physical.SingletonDistribution, MergeOrder: merge}
	child := derived(opt.MakeColSet(1, 2))
	child.Rewindability.Rewindable = true
	h := &testHandle{
		childCols: []opt.ColSet{opt.MakeColSet(1, 2)},
		derived:   []*physical.Derived{child},
		op:        e,
	}
	require.True(t, e.RequiredOrder(h, physical.OrderSpec{}, 0, 0).Equals(merge))
	require.True(t, e.RequiredDistribution(h, physical.SingletonDistribution, 0, 0).Any())
	require.Equal(t, "(2)", e.RequiredCols(h, opt.ColSet{}, 0, 0).String())
	require.True(t, e.DeriveOrder(h).Equals(merge))
	require.Equal(t, physical.SingletonDistribution, e.DeriveDistribution(h))
	require.False(t, e.DeriveRewindability(h).Rewindable)
	require.Equal(t, physical.EnforcingUnnecessary, e.OrderEnforcingType(h, merge))

	require.Equal(t, physical.EnforcingUnnecessary,
		e.DistributionEnforcingType(h, physical.SingletonDistribution))
	require.Equal(t, physical.EnforcingProhibited,
		e.DistributionEnforcingType(h, physical.ReplicatedDistribution))
	require.Equal(t, physical.EnforcingRequired,
		e.RewindabilityEnforcingType(h, physical.RewindabilitySpec{Rewindable: true}))

	// A redistribution loses the order of its input.
	hashed := &MotionExpr{Target: physical.HashedDistribution(opt.MakeColSet(1)), MergeOrder: merge}
	require.True(t, hashed.RequiredOrder(h, merge, 0, 0).Any())
	require.True(t, hashed.DeriveOrder(h).Any())
	require.Equal(t, physical.EnforcingRequired, hashed.OrderEnforcingType(h, merge))
	require.Equal(t, "(1)", hashed.RequiredCols(h, opt.ColSet{}, 0, 0).String())
}

func TestPartitionSelector(t *testing.T) {
	e := &PartitionSelectorExpr{PartScan: 1, Table: 7}
	child := derived(opt.MakeColSet(1))
	child.PartIndex = physical.PartIndexMap{
		1: {Role: physical.PartitionConsumer, Table: 7},
		2: {Role: physical.PartitionConsumer, Table: 8},
	}
	h := &testHandle{
		childCols: []opt.ColSet{opt.MakeColSet(1)},
		derived:   []*physical.Derived{child},
		op:        e,
	}
	required := physical.PartitionPropagationSpec{
		1: physical.PartitionSelect,
		2: physical.PartitionPropagate,
	}
	require.Equal(t, "ps2:propagate", e.RequiredPartitionPropagation(h, required, 0, 0).String())
	require.Equal(t, "ps1:resolved(t7),ps2:consumer(t8)", e.DerivePartIndexMap(h).String())
	require.Equal(t, physical.EnforcingUnnecessary, e.PartitionEnforcingType(h, required))
	require.Equal(t, physical.EnforcingRequired, e.PartitionEnforcingType(h,
		physical.PartitionPropagationSpec{2: physical.PartitionSelect}))
}

func TestHashJoin(t *testing.T) {
	defer log.Scope(t).Close(t)
	b, catalog := newTestBuilder(t)

	preds, err := ParsePredicates(catalog, []string{"1 = 3", "2 < 4"})
	require.NoError(t, err)
	e := &HashJoinExpr{joinOp{JoinType: opt.InnerJoin, Predicates: preds}}
	outer := derived(opt.MakeColSet(1, 2))
	outer.CTEs = physical.CTEMap{1: physical.CTEProducer}
	outer.PartIndex = physical.PartIndexMap{1: {Role: physical.PartitionResolved, Table: 7}}
	inner := derived(opt.MakeColSet(3, 4))
	inner.CTEs = physical.CTEMap{1: physical.CTEConsumer, 2: physical.CTEConsumer}
	h := &testHandle{
		childCols: []opt.ColSet{opt.MakeColSet(1, 2), opt.MakeColSet(3, 4)},
		derived:   []*physical.Derived{outer, inner},
		op:        e,
	}

	require.Equal(t, 2, e.NumRequests())
	require.Equal(t, "(1-4)", h.OutputCols().String())
	require.Equal(t, "(1,2)", e.RequiredCols(h, opt.MakeColSet(1), 0, 0).String())
	require.Equal(t, "(3,4)", e.RequiredCols(h, opt.ColSet{}, 1, 0).String())
	requireAssertion(t, func() { e.RequiredCols(h, opt.ColSet{}, 2, 0) })

	anyDist := physical.AnyDistribution
	require.Equal(t, "hashed(1)", e.RequiredDistribution(h, anyDist, 0, 0).String())
	require.Equal(t, "hashed(3)", e.RequiredDistribution(h, anyDist, 1, 0).String())
	require.Equal(t, "singleton", e.RequiredDistribution(h, physical.SingletonDistribution, 1, 0).String())
	require.Equal(t, "random", e.RequiredDistribution(h, physical.RandomDistribution, 0, 1).String())
	require.Equal(t, "replicated", e.RequiredDistribution(h, physical.RandomDistribution, 1, 1).String())

	rewind := physical.RewindabilitySpec{Rewindable: true}
	require.True(t, e.RequiredRewindability(h, rewind, 0, 0).Rewindable)
	require.False(t, e.RequiredRewindability(h, rewind, 1, 0).Rewindable)
	require.True(t, e.RequiredOrder(h, physical.MakeOrderSpec(opt.MakeOrderingColumn(1, false)), 0, 0).Any())

	// The outer side does not provide the consumer of cte2, so the inner
	// side is asked for it.
	req := physical.CTEReq{1: physical.CTEProducer, 2: physical.CTEConsumer}
	require.Nil(t, e.RequiredCTEs(h, req, 0, 0))
	require.Equal(t, "cte2:consumer", e.RequiredCTEs(h, req, 1, 0).String())
	// The producer and consumer of cte1 meet at the join.
	require.Equal(t, "cte2:consumer", e.DeriveCTEMap(h).String())
	require.Equal(t, "ps1:resolved(t7)", e.DerivePartIndexMap(h).String())

	require.Equal(t, physical.RandomDistribution, e.DeriveDistribution(h))
	outer.Distribution = physical.ReplicatedDistribution
	inner.Distribution = physical.HashedDistribution(opt.MakeColSet(3))
	require.Equal(t, "hashed(3)", e.DeriveDistribution(h).String())
	require.True(t, e.DeriveOrder(h).Any())
	require.Equal(t, physical.EnforcingRequired,
		e.OrderEnforcingType(h, physical.MakeOrderSpec(opt.MakeOrderingColumn(1, false))))

	scanA := &TableScanExpr{Table: 7, Cols: opt.ColList{1, 2}}
	scanB := &TableScanExpr{Table: 7, Cols: opt.ColList{3, 4}}
	sa, err := scanA.DeriveStatistics(&testHandle{op: scanA}, b)
	require.NoError(t, err)
	sbStats, err := scanB.DeriveStatistics(&testHandle{op: scanB}, b)
	require.NoError(t, err)
	h.stats = []*props.Statistics{sa, sbStats}
	s, err := e.DeriveStatistics(h, b)
	require.NoError(t, err)
	require.Greater(t, s.Rows(), 0.0)
	require.Less(t, s.Rows(), 100.0*100.0)

	// Predicates on columns without statistics entries are reported as errors.
	e.Predicates = append(e.Predicates, stats.JoinPredicate{OuterCol: 9, InnerCol: 3, Cmp: opt.CmpEq})
	_, err = e.DeriveStatistics(h, b)
	require.True(t, errors.HasAssertionFailure(err))
}

func TestHashJoinWithoutEquality(t *testing.T) {
	e := &HashJoinExpr{joinOp{
		JoinType:   opt.LeftSemiJoin,
		Predicates: []stats.JoinPredicate{{OuterCol: 1, InnerCol: 2, Cmp: opt.CmpLt}},
	}}
	h := &testHandle{childCols: []opt.ColSet{opt.MakeColSet(1), opt.MakeColSet(2)}, op: e}
	require.Equal(t, "(1)", h.OutputCols().String())
	require.Equal(t, physical.SingletonDistribution,
		e.RequiredDistribution(h, physical.RandomDistribution, 0, 0))
	require.Equal(t, physical.SingletonDistribution,
		e.RequiredDistribution(h, physical.RandomDistribution, 1, 0))
}

func TestNestedLoopJoin(t *testing.T) {
	e := &NestedLoopJoinExpr{joinOp{JoinType: opt.LeftOuterJoin}}
	outer := derived(opt.MakeColSet(1, 2))
	outer.Order = physical.MakeOrderSpec(opt.MakeOrderingColumn(1, false))
	h := &testHandle{
		childCols: []opt.ColSet{opt.MakeColSet(1, 2), opt.MakeColSet(3)},
		derived:   []*physical.Derived{outer, derived(opt.MakeColSet(3))},
		op:        e,
	}
	onOuter := physical.MakeOrderSpec(opt.MakeOrderingColumn(2, false))
	onInner := physical.MakeOrderSpec(opt.MakeOrderingColumn(3, false))

	require.True(t, e.RequiredOrder(h, onOuter, 0, 0).Equals(onOuter))
	require.True(t, e.RequiredOrder(h, onOuter, 0, 1).Any())
	require.True(t, e.RequiredOrder(h, onOuter, 1, 0).Any())
	require.True(t, e.RequiredOrder(h, onInner, 0, 0).Any())

	require.Equal(t, physical.EnforcingUnnecessary, e.OrderEnforcingType(h, physical.OrderSpec{}))
	require.Equal(t, physical.EnforcingOptional, e.OrderEnforcingType(h, onOuter))
	require.Equal(t, physical.EnforcingRequired, e.OrderEnforcingType(h, onInner))
	require.True(t, e.DeriveOrder(h).Equals(outer.Order))

	require.True(t, e.RequiredRewindability(h, physical.RewindabilitySpec{}, 1, 0).Rewindable)
	require.False(t, e.RequiredRewindability(h, physical.RewindabilitySpec{}, 0, 0).Rewindable)
	require.Equal(t, physical.ReplicatedDistribution,
		e.RequiredDistribution(h, physical.SingletonDistribution, 1, 0))
	require.Equal(t, physical.SingletonDistribution,
		e.RequiredDistribution(h, physical.SingletonDistribution, 0, 0))
	require.Equal(t, physical.EnforcingRequired,
		e.RewindabilityEnforcingType(h, physical.RewindabilitySpec{Rewindable: true}))
}

func TestNarrowing(t *testing.T) {
	var op PhysicalOperator = &CTEProducerExpr{ID: 1}
	require.Equal(t, opt.CTEID(1), AsCTEProducer(op).ID)
	requireAssertion(t, func() { AsCTEConsumer(op) })
	requireAssertion(t, func() { AsTableScan(nil) })
	requireAssertion(t, func() { AsSort(&SpoolExpr{}) })
	require.NotNil(t, AsMotion(&MotionExpr{}))
	require.NotNil(t, AsPartitionSelector(&PartitionSelectorExpr{}))
}

func TestPlanNode(t *testing.T) {
	scan := NewPlanNode(&TableScanExpr{Table: 7, Cols: opt.ColList{1, 2}})
	producer := NewPlanNode(&CTEProducerExpr{ID: 1, Cols: opt.ColList{1}}, scan)
	consumer := NewPlanNode(&CTEConsumerExpr{ID: 1, Cols: opt.ColList{5}, ProducerCols: opt.ColList{1}})
	join := NewPlanNode(&HashJoinExpr{joinOp{JoinType: opt.InnerJoin}}, producer, consumer)
	require.Equal(t, "(1,5)", join.OutputCols().String())
	require.Equal(t,
		"hash-join inner []\n  cte-producer cte1\n    scan t7\n  cte-consumer cte1\n",
		join.String())
	requireAssertion(t, func() { NewPlanNode(&SortExpr{}) })
}
