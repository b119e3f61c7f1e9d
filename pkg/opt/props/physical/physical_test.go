// Copyright 2018 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

package physical_test

import (
	"testing"

	"github.com/cockroachdb/redact"
	"github.com/relplan/optcore/pkg/opt"
	"github.com/relplan/optcore/pkg/opt/props/physical"
	"github.com/stretchr/testify/require"
)

func TestOrderSpec(t *testing.T) {
	asc1 := opt.MakeOrderingColumn(1, false)
	desc2 := opt.MakeOrderingColumn(2, true)
	required := physical.MakeOrderSpec(asc1)
	provided := physical.MakeOrderSpec(asc1, desc2)

	require.True(t, required.SatisfiedBy(provided))
	require.False(t, provided.SatisfiedBy(required))
	require.True(t, physical.OrderSpec{}.SatisfiedBy(provided))
	require.True(t, physical.OrderSpec{}.Any())
	require.False(t, required.SatisfiedBy(physical.OrderSpec{}))
	require.True(t, provided.BoundBy(opt.MakeColSet(1, 2, 3)))
	require.False(t, provided.BoundBy(opt.MakeColSet(1)))
	require.Equal(t, "+1,-2", provided.String())
	require.Equal(t, "any", physical.OrderSpec{}.String())
}

func TestDistributionSatisfiedBy(t *testing.T) {
	hashed1 := physical.HashedDistribution(opt.MakeColSet(1))
	hashed12 := physical.HashedDistribution(opt.MakeColSet(1, 2))
	all := []physical.DistributionSpec{
		physical.AnyDistribution,
		physical.SingletonDistribution,
		hashed1,
		hashed12,
		physical.RandomDistribution,
		physical.ReplicatedDistribution,
		physical.NonSingletonDistribution,
		physical.UniversalDistribution,
	}
	// satisfiedBy[i] lists the indexes of the specs of all that satisfy all[i].
	satisfiedBy := [][]int{
		{0, 1, 2, 3, 4, 5, 6, 7},
		{1, 7},
		{2},
		{2, 3},
		{2, 3, 4},
		{5, 7},
		{2, 3, 4, 5},
		{7},
	}
	for i, required := range all {
		for j, provided := range all {
			expected := false
			for _, k := range satisfiedBy[i] {
				if k == j {
					expected = true
				}
			}
			require.Equal(t, expected, required.SatisfiedBy(provided),
				"%s satisfied by %s", required, provided)
		}
	}

	require.Equal(t, "hashed(1,2)", hashed12.String())
	require.Equal(t, physical.RandomDistribution, physical.NonSingletonDistribution.Enforceable())
	require.True(t, hashed1.Enforceable().Equals(hashed1))
	require.Panics(t, func() { physical.HashedDistribution(opt.ColSet{}) })

	kind, err := physical.ParseDistributionKind("replicated")
	require.NoError(t, err)
	require.Equal(t, physical.DistributionReplicated, kind)
	_, err = physical.ParseDistributionKind("everywhere")
	require.Error(t, err)
}

func TestRewindabilitySpec(t *testing.T) {
	rewindable := physical.RewindabilitySpec{Rewindable: true}
	none := physical.RewindabilitySpec{}
	require.True(t, none.Any())
	require.True(t, none.SatisfiedBy(none))
	require.True(t, rewindable.SatisfiedBy(rewindable))
	require.False(t, rewindable.SatisfiedBy(none))
	require.Equal(t, "rewindable", rewindable.String())
}

func TestCTEMap(t *testing.T) {
	var m physical.CTEMap
	require.True(t, m.Any())

	consumers := m.Insert(1, physical.CTEConsumer).Insert(2, physical.CTEConsumer)
	require.Equal(t, "cte1:consumer,cte2:consumer", consumers.String())
	require.True(t, m.Any())

	// The producer of a consumed CTE resolves it.
	resolved := consumers.Insert(1, physical.CTEProducer)
	require.Equal(t, "cte2:consumer", resolved.String())
	require.Equal(t, "cte1:consumer,cte2:consumer", consumers.String())

	typ, ok := consumers.Lookup(2)
	require.True(t, ok)
	require.Equal(t, physical.CTEConsumer, typ)

	req := physical.CTEReq{2: physical.CTEConsumer}
	require.True(t, req.SatisfiedBy(consumers))
	require.True(t, req.SatisfiedBy(resolved))
	require.False(t, physical.CTEReq{1: physical.CTEProducer}.SatisfiedBy(consumers))
	require.True(t, req.Without(2).Any())
	require.False(t, req.Any())
	require.True(t, consumers.Union(nil).Equals(consumers))
}

func TestPartitionSpecs(t *testing.T) {
	var pim physical.PartIndexMap
	pim = pim.Insert(1, physical.PartIndexEntry{Role: physical.PartitionConsumer, Table: 7})
	pim = pim.Insert(2, physical.PartIndexEntry{Role: physical.PartitionConsumer, Table: 8})
	require.Equal(t, []opt.PartScanID{1, 2}, pim.Unresolved())

	spec := physical.PartitionPropagationSpec{1: physical.PartitionSelect, 3: physical.PartitionPropagate}
	require.False(t, spec.SatisfiedBy(pim))

	resolved := pim.Resolve(1)
	require.True(t, spec.SatisfiedBy(resolved))
	require.Equal(t, []opt.PartScanID{2}, resolved.Unresolved())
	require.Equal(t, "ps1:resolved(t7),ps2:consumer(t8)", resolved.String())
	require.Equal(t, []opt.PartScanID{1, 2}, pim.Unresolved())
	require.True(t, pim.Resolve(9).Equals(pim))

	// A scan resolved on one side stays resolved.
	require.Equal(t, []opt.PartScanID{2}, pim.Union(resolved).Unresolved())

	require.Equal(t, "ps1:select", spec.Restrict(pim).String())
	require.Equal(t, []opt.PartScanID{1}, spec.Selections())
	require.Equal(t, "ps3:propagate", spec.Without(1).String())
	require.True(t, spec.Restrict(nil).Any())
}

func TestRequiredDerived(t *testing.T) {
	required := physical.Required{
		Cols:          opt.MakeColSet(1, 2),
		Order:         physical.MakeOrderSpec(opt.MakeOrderingColumn(1, false)),
		Distribution:  physical.SingletonDistribution,
		Rewindability: physical.RewindabilitySpec{Rewindable: true},
	}
	derived := physical.Derived{
		OutputCols:    opt.MakeColSet(1, 2, 3),
		Order:         physical.MakeOrderSpec(opt.MakeOrderingColumn(1, false), opt.MakeOrderingColumn(3, false)),
		Distribution:  physical.UniversalDistribution,
		Rewindability: physical.RewindabilitySpec{Rewindable: true},
	}
	require.True(t, derived.Satisfies(&required))
	require.Equal(t, "cols=(1,2) order=+1 distribution=singleton rewindability=rewindable", required.String())

	derived.OutputCols = opt.MakeColSet(1)
	require.False(t, derived.Satisfies(&required))

	copied := required
	require.True(t, copied.Equals(&required))
	require.False(t, required.Any())
	require.True(t, (&physical.Required{Cols: opt.MakeColSet(1)}).Any())
}

func TestEnforcingType(t *testing.T) {
	require.Equal(t, "optional", physical.EnforcingOptional.String())
	require.Equal(t, "unnecessary", redact.Sprint(physical.EnforcingUnnecessary).StripMarkers())
	require.True(t, physical.EnforcingOptional.Enforce())
	require.True(t, physical.EnforcingOptional.Unenforced())
	require.False(t, physical.EnforcingProhibited.Unenforced())
	require.False(t, physical.EnforcingProhibited.Enforce())
	require.Equal(t, physical.EnforcingRequired, physical.EnforcingTypeFor(false))
	require.Equal(t, physical.EnforcingUnnecessary, physical.EnforcingTypeFor(true))
}

func TestParse(t *testing.T) {
	for _, s := range []string{"+1", "+1,-2", "-3,+1"} {
		o, err := physical.ParseOrderSpec(s)
		require.NoError(t, err)
		require.Equal(t, s, o.String())
	}
	o, err := physical.ParseOrderSpec("any")
	require.NoError(t, err)
	require.True(t, o.Any())
	for _, s := range []string{"1", "+x", "+0", "+1,,"} {
		_, err := physical.ParseOrderSpec(s)
		require.Error(t, err, s)
	}

	for _, s := range []string{"any", "singleton", "hashed(1,2)", "hashed(1-3,7)", "replicated", "non-singleton"} {
		d, err := physical.ParseDistributionSpec(s)
		require.NoError(t, err)
		require.Equal(t, s, d.String())
	}
	for _, s := range []string{"hashed", "hashed()", "singleton(1)", "spread", "hashed(1"} {
		_, err := physical.ParseDistributionSpec(s)
		require.Error(t, err, s)
	}

	cols, err := physical.ParseColSet("(1-3,5)")
	require.NoError(t, err)
	require.True(t, cols.Equals(opt.MakeColSet(1, 2, 3, 5)))
	_, err = physical.ParseColSet("3-1")
	require.Error(t, err)
}
