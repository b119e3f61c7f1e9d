// Copyright 2018 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

package memo

import (
	"context"
	"math"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/relplan/optcore/pkg/opt"
	"github.com/relplan/optcore/pkg/opt/cat"
	"github.com/relplan/optcore/pkg/opt/props"
	"github.com/relplan/optcore/pkg/opt/props/physical"
	"github.com/relplan/optcore/pkg/opt/stats"
	"gopkg.in/yaml.v2"
)

// planDef is the YAML form of a plan and of the properties required of it:
//
//	required:
//	  cols: [1, 3]
//	  order: +1
//	  distribution: singleton
//	plan:
//	  op: hash-join
//	  join_type: inner
//	  predicates: ["1 = 3"]
//	  children:
//	    - {op: scan, table: a, cols: [1, 2]}
//	    - {op: scan, table: b, cols: [3, 4]}
type planDef struct {
	Required requiredDef `yaml:"required"`
	Plan     *nodeDef    `yaml:"plan"`
}

type requiredDef struct {
	Cols         []int          `yaml:"cols"`
	Order        string         `yaml:"order"`
	Distribution string         `yaml:"distribution"`
	Rewindable   bool           `yaml:"rewindable"`
	CTEs         map[int]string `yaml:"ctes"`
	Partition    map[int]string `yaml:"partition"`
}

type nodeDef struct {
	Op       string     `yaml:"op"`
	Children []*nodeDef `yaml:"children"`

	// scan, partition-selector
	Table    string `yaml:"table"`
	PartScan int    `yaml:"part_scan"`
	// scan, cte-producer, cte-consumer
	Cols []int `yaml:"cols"`
	// scan, cte-consumer
	Distribution string `yaml:"distribution"`
	// scan, filter
	Constraints []constraintDef `yaml:"constraints"`
	// cte-producer, cte-consumer
	ID           int   `yaml:"id"`
	ProducerCols []int `yaml:"producer_cols"`
	// sort
	Order string `yaml:"order"`
	// motion
	Target     string `yaml:"target"`
	MergeOrder string `yaml:"merge_order"`
	// joins
	JoinType   string   `yaml:"join_type"`
	Predicates []string `yaml:"predicates"`
}

type constraintDef struct {
	Col   int      `yaml:"col"`
	Spans []string `yaml:"spans"`
}

// ParsePlan parses a plan and the properties required of it from YAML.
// Tables are resolved in the catalog, which also classifies the comparisons
// of join predicates.
func ParsePlan(
	ctx context.Context, catalog cat.Catalog, data []byte,
) (*PlanNode, *physical.Required, error) {
	var def planDef
	if err := yaml.UnmarshalStrict(data, &def); err != nil {
		return nil, nil, errors.Wrap(err, "parsing plan")
	}
	if def.Plan == nil {
		return nil, nil, errors.New("plan is required")
	}
	required, err := def.Required.build()
	if err != nil {
		return nil, nil, err
	}
	p := planParser{ctx: ctx, catalog: catalog}
	root, err := p.build(def.Plan)
	if err != nil {
		return nil, nil, err
	}
	return root, required, nil
}

func (d *requiredDef) build() (*physical.Required, error) {
	r := &physical.Required{Cols: makeColSet(d.Cols)}
	var err error
	if r.Order, err = physical.ParseOrderSpec(d.Order); err != nil {
		return nil, err
	}
	if r.Distribution, err = physical.ParseDistributionSpec(d.Distribution); err != nil {
		return nil, err
	}
	r.Rewindability.Rewindable = d.Rewindable
	for id, name := range d.CTEs {
		var typ physical.CTEType
		switch name {
		case "producer":
			typ = physical.CTEProducer
		case "consumer":
			typ = physical.CTEConsumer
		default:
			return nil, errors.Errorf("cte%d: unknown requirement %q", id, name)
		}
		if r.CTEs == nil {
			r.CTEs = make(physical.CTEReq)
		}
		r.CTEs[opt.CTEID(id)] = typ
	}
	for id, name := range d.Partition {
		var action physical.PartitionAction
		switch name {
		case "propagate":
			action = physical.PartitionPropagate
		case "select":
			action = physical.PartitionSelect
		default:
			return nil, errors.Errorf("ps%d: unknown requirement %q", id, name)
		}
		if r.Partition == nil {
			r.Partition = make(physical.PartitionPropagationSpec)
		}
		r.Partition[opt.PartScanID(id)] = action
	}
	return r, nil
}

type planParser struct {
	ctx     context.Context
	catalog cat.Catalog
}

func (p *planParser) build(d *nodeDef) (*PlanNode, error) {
	tag, err := opt.ParseOperator(d.Op)
	if err != nil {
		return nil, err
	}
	if want := arity(tag); want != len(d.Children) {
		return nil, errors.Errorf("%s expects %d inputs, got %d", tag, want, len(d.Children))
	}
	children := make([]*PlanNode, len(d.Children))
	for i := range d.Children {
		if children[i], err = p.build(d.Children[i]); err != nil {
			return nil, err
		}
	}
	op, err := p.buildOp(tag, d)
	if err != nil {
		return nil, errors.Wrapf(err, "%s", tag)
	}
	return NewPlanNode(op, children...), nil
}

func (p *planParser) buildOp(tag opt.Operator, d *nodeDef) (PhysicalOperator, error) {
	switch tag {
	case opt.TableScanOp:
		tab, err := p.catalog.ResolveTable(p.ctx, d.Table)
		if err != nil {
			return nil, err
		}
		if len(d.Cols) != tab.ColumnCount() {
			return nil, errors.Errorf(
				"table %s has %d columns, %d given", tab.Name(), tab.ColumnCount(), len(d.Cols))
		}
		if d.PartScan != 0 && !tab.IsPartitioned() {
			return nil, errors.Errorf("table %s is not partitioned", tab.Name())
		}
		dist, err := physical.ParseDistributionSpec(d.Distribution)
		if err != nil {
			return nil, err
		}
		if dist.Any() {
			dist = physical.RandomDistribution
		}
		constraints, err := buildConstraints(d.Constraints)
		if err != nil {
			return nil, err
		}
		return &TableScanExpr{
			Table:        tab.ID(),
			Cols:         makeColList(d.Cols),
			PartScan:     opt.PartScanID(d.PartScan),
			Distribution: dist,
			Constraints:  constraints,
		}, nil

	case opt.FilterOp:
		constraints, err := buildConstraints(d.Constraints)
		if err != nil {
			return nil, err
		}
		return &FilterExpr{Constraints: constraints}, nil

	case opt.CTEProducerOp:
		if d.ID <= 0 {
			return nil, errors.New("id must be positive")
		}
		return &CTEProducerExpr{ID: opt.CTEID(d.ID), Cols: makeColList(d.Cols)}, nil

	case opt.CTEConsumerOp:
		if d.ID <= 0 {
			return nil, errors.New("id must be positive")
		}
		if len(d.Cols) != len(d.ProducerCols) {
			return nil, errors.Errorf("%d columns but %d producer columns", len(d.Cols), len(d.ProducerCols))
		}
		dist, err := physical.ParseDistributionSpec(d.Distribution)
		if err != nil {
			return nil, err
		}
		if dist.Any() {
			dist = physical.RandomDistribution
		}
		return &CTEConsumerExpr{
			ID:           opt.CTEID(d.ID),
			Cols:         makeColList(d.Cols),
			ProducerCols: makeColList(d.ProducerCols),
			Distribution: dist,
		}, nil

	case opt.SortOp:
		order, err := physical.ParseOrderSpec(d.Order)
		if err != nil {
			return nil, err
		}
		return &SortExpr{Order: order}, nil

	case opt.SpoolOp:
		return &SpoolExpr{}, nil

	case opt.MotionOp:
		target, err := physical.ParseDistributionSpec(d.Target)
		if err != nil {
			return nil, err
		}
		if target.Any() {
			return nil, errors.New("target distribution is required")
		}
		merge, err := physical.ParseOrderSpec(d.MergeOrder)
		if err != nil {
			return nil, err
		}
		return &MotionExpr{Target: target, MergeOrder: merge}, nil

	case opt.PartitionSelectorOp:
		tab, err := p.catalog.ResolveTable(p.ctx, d.Table)
		if err != nil {
			return nil, err
		}
		if d.PartScan <= 0 {
			return nil, errors.New("part_scan must be positive")
		}
		return &PartitionSelectorExpr{PartScan: opt.PartScanID(d.PartScan), Table: tab.ID()}, nil

	case opt.HashJoinOp, opt.NestedLoopJoinOp:
		joinType, err := opt.ParseJoinType(d.JoinType)
		if err != nil {
			return nil, err
		}
		preds, err := ParsePredicates(p.catalog, d.Predicates)
		if err != nil {
			return nil, err
		}
		j := joinOp{JoinType: joinType, Predicates: preds}
		if tag == opt.HashJoinOp {
			return &HashJoinExpr{joinOp: j}, nil
		}
		return &NestedLoopJoinExpr{joinOp: j}, nil
	}
	return nil, errors.Errorf("operator cannot be parsed")
}

// ParsePredicates parses join predicates of the form "1 = 3": the outer
// column, the comparison and the inner column. The comparison may span
// several words, as in "1 is not distinct from 3".
func ParsePredicates(catalog cat.Catalog, lines []string) ([]stats.JoinPredicate, error) {
	preds := make([]stats.JoinPredicate, 0, len(lines))
	for _, line := range lines {
		fields := strings.Fields(line)
		if len(fields) < 3 {
			return nil, errors.Errorf("invalid predicate %q", line)
		}
		outer, err := strconv.Atoi(fields[0])
		if err != nil || outer <= 0 {
			return nil, errors.Errorf("invalid predicate %q", line)
		}
		inner, err := strconv.Atoi(fields[len(fields)-1])
		if err != nil || inner <= 0 {
			return nil, errors.Errorf("invalid predicate %q", line)
		}
		cmp := strings.Join(fields[1:len(fields)-1], " ")
		preds = append(preds, stats.JoinPredicate{
			OuterCol: opt.ColumnID(outer),
			InnerCol: opt.ColumnID(inner),
			Cmp:      catalog.ClassifyComparison(cmp),
		})
	}
	return preds, nil
}

func buildConstraints(defs []constraintDef) ([]*props.Constraint, error) {
	var res []*props.Constraint
	for _, d := range defs {
		if d.Col <= 0 {
			return nil, errors.Errorf("invalid constraint column %d", d.Col)
		}
		c := &props.Constraint{Cols: opt.MakeColSet(opt.ColumnID(d.Col))}
		for _, s := range d.Spans {
			sp, err := parseSpan(s)
			if err != nil {
				return nil, err
			}
			c.Spans = append(c.Spans, sp)
		}
		res = append(res, c)
	}
	return res, nil
}

// parseSpan parses the representation produced by props.Span.String, for
// example "[0 - 10)" or "(-Inf - 5]".
func parseSpan(s string) (props.Span, error) {
	s = strings.TrimSpace(s)
	if len(s) < 2 {
		return props.Span{}, errors.Errorf("invalid span %q", s)
	}
	var sp props.Span
	switch s[0] {
	case '[':
		sp.LowerClosed = true
	case '(':
	default:
		return props.Span{}, errors.Errorf("invalid span %q", s)
	}
	switch s[len(s)-1] {
	case ']':
		sp.UpperClosed = true
	case ')':
	default:
		return props.Span{}, errors.Errorf("invalid span %q", s)
	}
	lo, hi, ok := strings.Cut(s[1:len(s)-1], " - ")
	if !ok {
		return props.Span{}, errors.Errorf("invalid span %q", s)
	}
	var err error
	if sp.Lower, err = strconv.ParseFloat(strings.TrimSpace(lo), 64); err != nil {
		return props.Span{}, errors.Wrapf(err, "invalid span %q", s)
	}
	if sp.Upper, err = strconv.ParseFloat(strings.TrimSpace(hi), 64); err != nil {
		return props.Span{}, errors.Wrapf(err, "invalid span %q", s)
	}
	if math.IsInf(sp.Lower, 0) {
		sp.LowerClosed = false
	}
	if math.IsInf(sp.Upper, 0) {
		sp.UpperClosed = false
	}
	return sp, nil
}

func makeColList(ids []int) opt.ColList {
	res := make(opt.ColList, len(ids))
	for i, id := range ids {
		res[i] = opt.ColumnID(id)
	}
	return res
}

func makeColSet(ids []int) opt.ColSet {
	var res opt.ColSet
	for _, id := range ids {
		res.Add(opt.ColumnID(id))
	}
	return res
}
