// Copyright 2018 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

package xform

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/cockroachdb/logtags"
	"github.com/cockroachdb/redact"
	"github.com/relplan/optcore/pkg/opt"
	"github.com/relplan/optcore/pkg/opt/cat"
	"github.com/relplan/optcore/pkg/opt/memo"
	"github.com/relplan/optcore/pkg/opt/props"
	"github.com/relplan/optcore/pkg/opt/props/physical"
	"github.com/relplan/optcore/pkg/opt/stats"
	"github.com/relplan/optcore/pkg/util/log"
)

// Deriver derives the physical properties and statistics of a fixed plan
// under a requirement, inserting the enforcers the plan needs. It does not
// search for alternative plans: for every operator it only chooses among the
// ways the operator can split a requirement among its inputs, and among the
// enforcer alternatives of that operator.
//
// Inputs are optimized from left to right, so the producer of a CTE must be
// to the left of its consumers.
type Deriver struct {
	ctx context.Context
	sb  stats.Builder

	// producers holds the statistics of the CTE producers derived so far.
	producers map[opt.CTEID]*props.Statistics
}

// Init initializes the deriver.
func (d *Deriver) Init(ctx context.Context, cfg stats.Config, catalog cat.Catalog) {
	d.ctx = logtags.AddTag(ctx, "deriver", nil)
	d.sb.Init(ctx, cfg, catalog)
}

// DerivedNode is a node of a plan whose properties have been derived.
type DerivedNode struct {
	Op       memo.PhysicalOperator
	Children []*DerivedNode

	Required *physical.Required
	Derived  *physical.Derived
	Stats    *props.Statistics
	// ReqIdx is the request chosen for the inputs of the operator.
	ReqIdx int
	// Enforcer is set for operators placed by the deriver.
	Enforcer bool
}

// Derive derives the properties of the plan rooted at root, which has to
// meet required. Violated preconditions of the operators are reported as
// errors.
func (d *Deriver) Derive(
	root *memo.PlanNode, required *physical.Required,
) (res *DerivedNode, err error) {
	defer func() {
		if r := recover(); r != nil {
			res, err = nil, opt.CatchOptimizerError(r)
		}
	}()
	d.producers = make(map[opt.CTEID]*props.Statistics)
	res, ok := d.derive(root, required)
	if !ok {
		return nil, errors.Errorf("no plan for %s meets the requirement %s",
			memo.Describe(root.Op), required)
	}
	return res, nil
}

// derive returns the cheapest derivation of the node, in number of
// enforcers, or false if the node cannot meet the requirement.
func (d *Deriver) derive(node *memo.PlanNode, required *physical.Required) (*DerivedNode, bool) {
	op := node.Op
	var best *DerivedNode
	bestCount := 0
	for reqIdx := 0; reqIdx < op.NumRequests(); reqIdx++ {
		res, ok := d.deriveRequest(node, required, reqIdx)
		if !ok {
			continue
		}
		if count := res.enforcerCount(); best == nil || count < bestCount {
			best, bestCount = res, count
		}
	}
	return best, best != nil
}

func (d *Deriver) deriveRequest(
	node *memo.PlanNode, required *physical.Required, reqIdx int,
) (*DerivedNode, bool) {
	op := node.Op
	h := &planHandle{
		op:        op,
		childCols: make([]opt.ColSet, len(node.Children)),
		derived:   make([]*physical.Derived, len(node.Children)),
		stats:     make([]*props.Statistics, len(node.Children)),
		producers: d.producers,
	}
	for i, c := range node.Children {
		h.childCols[i] = c.OutputCols()
	}

	children := make([]*DerivedNode, len(node.Children))
	for i, c := range node.Children {
		childRequired := BuildChildRequired(h, op, required, i, reqIdx)
		child, ok := d.derive(c, childRequired)
		if !ok {
			log.VEventf(d.ctx, 2, "%s request %d: input %d cannot meet %s",
				op.Op(), redact.Safe(reqIdx), redact.Safe(i), childRequired)
			return nil, false
		}
		children[i] = child
		h.derived[i] = child.Derived
		h.stats[i] = child.Stats
	}

	if !op.ProvidesRequiredCols(h, required.Cols, reqIdx) {
		return nil, false
	}
	derived := DeriveProps(h, op)
	s, err := op.DeriveStatistics(h, &d.sb)
	if err != nil {
		panic(err)
	}
	if p, ok := op.(*memo.CTEProducerExpr); ok {
		d.producers[p.ID] = s
	}
	res := &DerivedNode{
		Op:       op,
		Children: children,
		Required: required,
		Derived:  derived,
		Stats:    s,
		ReqIdx:   reqIdx,
	}

	var chosen *Alternative
	alts := AppendEnforcers(h, op, required, derived)
	for i := range alts {
		if !alts[i].Derived.Satisfies(required) {
			continue
		}
		if chosen == nil || len(alts[i].Enforcers) < len(chosen.Enforcers) {
			chosen = &alts[i]
		}
	}
	if chosen == nil {
		log.VEventf(d.ctx, 2, "%s request %d: no enforcer alternative meets %s",
			op.Op(), redact.Safe(reqIdx), required)
		return nil, false
	}
	for _, e := range chosen.Enforcers {
		res = d.placeEnforcer(e, res, required)
	}
	return res, true
}

// placeEnforcer returns the node of an enforcer placed on top of input.
func (d *Deriver) placeEnforcer(
	e memo.PhysicalOperator, input *DerivedNode, required *physical.Required,
) *DerivedNode {
	h := &enforcerHandle{input: input.Derived, stats: input.Stats}
	s, err := e.DeriveStatistics(h, &d.sb)
	if err != nil {
		panic(err)
	}
	log.VEventf(d.ctx, 2, "placing %s", memo.Describe(e))
	return &DerivedNode{
		Op:       e,
		Children: []*DerivedNode{input},
		Required: required,
		Derived:  DeriveProps(h, e),
		Stats:    s,
		Enforcer: true,
	}
}

func (n *DerivedNode) enforcerCount() int {
	count := 0
	if n.Enforcer {
		count++
	}
	for _, c := range n.Children {
		count += c.enforcerCount()
	}
	return count
}

// String formats the derived plan as a tree, one operator per line followed
// by the properties it provides.
func (n *DerivedNode) String() string {
	var buf bytes.Buffer
	n.format(&buf, 0)
	return buf.String()
}

func (n *DerivedNode) format(buf *bytes.Buffer, depth int) {
	indent := strings.Repeat("  ", depth)
	buf.WriteString(indent)
	buf.WriteString(memo.Describe(n.Op))
	if n.Enforcer {
		buf.WriteString(" (enforcer)")
	}
	buf.WriteByte('\n')
	fmt.Fprintf(buf, "%s  %s rows=%.6g\n", indent, formatDerived(n.Derived), n.Stats.Rows())
	for _, c := range n.Children {
		c.format(buf, depth+1)
	}
}

// formatDerived prints the properties that are not trivial.
func formatDerived(d *physical.Derived) string {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "cols=%s", d.OutputCols)
	if !d.Order.Any() {
		fmt.Fprintf(&buf, " order=%s", d.Order)
	}
	fmt.Fprintf(&buf, " distribution=%s", d.Distribution)
	if d.Rewindability.Rewindable {
		buf.WriteString(" rewindable")
	}
	if !d.CTEs.Any() {
		fmt.Fprintf(&buf, " ctes=%s", d.CTEs)
	}
	if !d.PartIndex.Any() {
		fmt.Fprintf(&buf, " partitions=%s", d.PartIndex)
	}
	return buf.String()
}

// planHandle is the handle of an operator of a plan being derived.
type planHandle struct {
	op        memo.PhysicalOperator
	childCols []opt.ColSet
	derived   []*physical.Derived
	stats     []*props.Statistics
	producers map[opt.CTEID]*props.Statistics
}

var _ memo.ExprHandle = &planHandle{}

func (h *planHandle) Arity() int { return len(h.childCols) }

func (h *planHandle) OutputCols() opt.ColSet { return h.op.OutputCols(h.childCols) }

func (h *planHandle) ChildOutputCols(i int) opt.ColSet { return h.childCols[i] }

func (h *planHandle) ChildDerived(i int) *physical.Derived { return h.derived[i] }

func (h *planHandle) ChildStats(i int) *props.Statistics { return h.stats[i] }

func (h *planHandle) CTEProducerStats(id opt.CTEID) (*props.Statistics, bool) {
	s, ok := h.producers[id]
	return s, ok
}
