// Copyright 2018 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

package xform

import (
	"github.com/cockroachdb/errors"
	"github.com/cockroachdb/redact"
	"github.com/relplan/optcore/pkg/opt"
	"github.com/relplan/optcore/pkg/opt/memo"
	"github.com/relplan/optcore/pkg/opt/props"
	"github.com/relplan/optcore/pkg/opt/props/physical"
	"github.com/relplan/optcore/pkg/util/buildutil"
)

// Alternative is one way of meeting a requirement with an operator: the
// enforcers to place on top of it, bottom-up, and the properties provided by
// the topmost of them.
type Alternative struct {
	Enforcers []memo.PhysicalOperator
	Derived   *physical.Derived
}

// AppendEnforcers returns the alternatives for meeting the required
// properties with op, whose own properties are derived. Each property kind
// is handled according to op's verdict for it:
//
//   - Unnecessary: op provides the property itself, so no enforcer is
//     needed on top of it. Invariants builds check this.
//   - Required: an enforcer is placed if the properties provided so far do
//     not meet the requirement.
//   - Optional: alternatives with and without the enforcer are returned.
//   - Prohibited: op cannot be used and no alternative is returned.
//
// Enforcers are placed in the order partition selector, motion, sort, spool,
// since a motion loses the order of its input and neither a sort nor a spool
// change the distribution of rows. An alternative is not guaranteed to meet
// the requirement; the caller checks the properties it provides.
func AppendEnforcers(
	h memo.ExprHandle, op memo.PhysicalOperator, required *physical.Required, derived *physical.Derived,
) []Alternative {
	var verdicts [4]physical.EnforcingType
	verdicts[0] = op.PartitionEnforcingType(h, required.Partition)
	verdicts[1] = op.DistributionEnforcingType(h, required.Distribution)
	verdicts[2] = op.OrderEnforcingType(h, required.Order)
	verdicts[3] = op.RewindabilityEnforcingType(h, required.Rewindability)
	for _, v := range verdicts {
		if v == physical.EnforcingProhibited {
			return nil
		}
	}
	if buildutil.Invariants {
		if err := checkUnnecessaryVerdicts(verdicts, required, derived); err != nil {
			panic(errors.NewAssertionErrorWithWrappedErrf(err, "%s", op.Op()))
		}
	}

	alts := []Alternative{{Derived: derived}}
	for i, step := range enforcerSteps {
		next := make([]Alternative, 0, len(alts))
		for _, alt := range alts {
			enforcers := step.enforce(required, alt.Derived)
			if len(enforcers) == 0 {
				next = append(next, alt)
				continue
			}
			if verdicts[i] == physical.EnforcingOptional {
				next = append(next, alt)
			}
			next = append(next, alt.with(enforcers))
		}
		alts = next
	}
	return alts
}

// enforcerSteps places the enforcers of each property kind, in the order of
// the verdicts computed by AppendEnforcers.
var enforcerSteps = [4]struct {
	name    string
	enforce func(required *physical.Required, provided *physical.Derived) []memo.PhysicalOperator
}{
	{"partition", partitionEnforcers},
	{"distribution", distributionEnforcers},
	{"order", orderEnforcers},
	{"rewindability", rewindabilityEnforcers},
}

// checkUnnecessaryVerdicts returns an error if an operator judged a property
// kind unnecessary to enforce while the properties it derives do not meet the
// requirement.
func checkUnnecessaryVerdicts(
	verdicts [4]physical.EnforcingType, required *physical.Required, derived *physical.Derived,
) error {
	for i, step := range enforcerSteps {
		if verdicts[i] != physical.EnforcingUnnecessary {
			continue
		}
		if enforcers := step.enforce(required, derived); len(enforcers) > 0 {
			return errors.AssertionFailedf(
				"%s is unnecessary to enforce but %d enforcers are missing",
				redact.Safe(step.name), redact.Safe(len(enforcers)))
		}
	}
	return nil
}

// with returns a copy of the alternative with enforcers placed on top.
func (a Alternative) with(enforcers []memo.PhysicalOperator) Alternative {
	res := Alternative{
		Enforcers: make([]memo.PhysicalOperator, 0, len(a.Enforcers)+len(enforcers)),
		Derived:   a.Derived,
	}
	res.Enforcers = append(res.Enforcers, a.Enforcers...)
	for _, e := range enforcers {
		res.Enforcers = append(res.Enforcers, e)
		res.Derived = DeriveProps(&enforcerHandle{input: res.Derived}, e)
	}
	return res
}

func partitionEnforcers(
	required *physical.Required, provided *physical.Derived,
) []memo.PhysicalOperator {
	var res []memo.PhysicalOperator
	for _, id := range required.Partition.Selections() {
		entry, ok := provided.PartIndex[id]
		if !ok || entry.Role != physical.PartitionConsumer {
			continue
		}
		res = append(res, &memo.PartitionSelectorExpr{PartScan: id, Table: entry.Table})
	}
	return res
}

func distributionEnforcers(
	required *physical.Required, provided *physical.Derived,
) []memo.PhysicalOperator {
	if required.Distribution.SatisfiedBy(provided.Distribution) {
		return nil
	}
	m := &memo.MotionExpr{Target: required.Distribution.Enforceable()}
	// Rows gathered on a single node keep their order if the streams are
	// merged.
	if m.Target.Kind == physical.DistributionSingleton && !required.Order.Any() &&
		required.Order.SatisfiedBy(provided.Order) {
		m.MergeOrder = required.Order
	}
	return []memo.PhysicalOperator{m}
}

func orderEnforcers(
	required *physical.Required, provided *physical.Derived,
) []memo.PhysicalOperator {
	if required.Order.SatisfiedBy(provided.Order) {
		return nil
	}
	return []memo.PhysicalOperator{&memo.SortExpr{Order: required.Order}}
}

func rewindabilityEnforcers(
	required *physical.Required, provided *physical.Derived,
) []memo.PhysicalOperator {
	if required.Rewindability.SatisfiedBy(provided.Rewindability) {
		return nil
	}
	return []memo.PhysicalOperator{&memo.SpoolExpr{}}
}

// enforcerHandle is the handle of an enforcer whose input provides the given
// properties. Enforcers have a single input and output its columns.
type enforcerHandle struct {
	input *physical.Derived
	stats *props.Statistics
}

var _ memo.ExprHandle = &enforcerHandle{}

func (h *enforcerHandle) Arity() int { return 1 }
func (h *enforcerHandle) OutputCols() opt.ColSet { return h.input.OutputCols }
func (h *enforcerHandle) ChildOutputCols(int) opt.ColSet { return h.input.OutputCols }
func (h *enforcerHandle) ChildDerived(int) *physical.Derived { return h.input }
func (h *enforcerHandle) ChildStats(int) *props.Statistics { return h.stats }

func (h *enforcerHandle) CTEProducerStats(opt.CTEID) (*props.Statistics, bool) {
	return nil, false
}
