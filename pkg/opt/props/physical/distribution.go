// Copyright 2018 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

package physical

import (
	"fmt"

	"github.com/cockroachdb/errors"
	"github.com/relplan/optcore/pkg/opt"
)

// DistributionKind describes how the rows of an operator are spread across
// the nodes of a cluster.
type DistributionKind int8

const (
	// DistributionAny places no requirement on the distribution.
	DistributionAny DistributionKind = iota
	// DistributionSingleton gathers all rows on a single node.
	DistributionSingleton
	// DistributionHashed places rows with equal values of the hash columns
	// on the same node.
	DistributionHashed
	// DistributionRandom spreads rows across nodes without a known pattern.
	DistributionRandom
	// DistributionReplicated gives every node a copy of all rows.
	DistributionReplicated
	// DistributionNonSingleton spreads rows over more than one node, in any
	// pattern.
	DistributionNonSingleton
	// DistributionUniversal is produced by operators that generate the same
	// rows on every node, such as constant values.
	DistributionUniversal
)

var distributionKindNames = [...]string{
	DistributionAny:          "any",
	DistributionSingleton:    "singleton",
	DistributionHashed:       "hashed",
	DistributionRandom:       "random",
	DistributionReplicated:   "replicated",
	DistributionNonSingleton: "non-singleton",
	DistributionUniversal:    "universal",
}

func (k DistributionKind) String() string {
	if int(k) >= len(distributionKindNames) {
		return fmt.Sprintf("distribution(%d)", k)
	}
	return distributionKindNames[k]
}

// SafeValue implements the redact.SafeValue interface.
func (DistributionKind) SafeValue() {}

// DistributionSpec is the distribution of the rows of an operator. Only
// hashed distributions have columns.
type DistributionSpec struct {
	Kind DistributionKind
	Cols opt.ColSet
}

// AnyDistribution places no requirement on the distribution.
var AnyDistribution = DistributionSpec{Kind: DistributionAny}

// SingletonDistribution gathers all rows on one node.
var SingletonDistribution = DistributionSpec{Kind: DistributionSingleton}

// RandomDistribution spreads rows without a known pattern.
var RandomDistribution = DistributionSpec{Kind: DistributionRandom}

// ReplicatedDistribution gives every node all rows.
var ReplicatedDistribution = DistributionSpec{Kind: DistributionReplicated}

// NonSingletonDistribution spreads rows over several nodes.
var NonSingletonDistribution = DistributionSpec{Kind: DistributionNonSingleton}

// UniversalDistribution produces the same rows on every node.
var UniversalDistribution = DistributionSpec{Kind: DistributionUniversal}

// HashedDistribution returns the distribution hashed on the given columns,
// which must not be empty.
func HashedDistribution(cols opt.ColSet) DistributionSpec {
	if cols.Empty() {
		panic(errors.AssertionFailedf("hashed distribution without columns"))
	}
	return DistributionSpec{Kind: DistributionHashed, Cols: cols.Copy()}
}

// ParseDistributionKind returns the distribution kind with the given name.
func ParseDistributionKind(name string) (DistributionKind, error) {
	for i, n := range distributionKindNames {
		if n == name {
			return DistributionKind(i), nil
		}
	}
	return DistributionAny, errors.Errorf("unknown distribution %q", name)
}

// Any returns true if the spec places no requirement on the distribution.
func (d DistributionSpec) Any() bool {
	return d.Kind == DistributionAny
}

// Equals returns true if both specs describe the same distribution.
func (d DistributionSpec) Equals(other DistributionSpec) bool {
	return d.Kind == other.Kind && d.Cols.Equals(other.Cols)
}

// SatisfiedBy returns true if rows distributed as provided are also
// distributed as required by d.
//
// Rows hashed on a set of columns are also hashed on any superset of it,
// since rows that agree on the superset agree on the subset. A universal
// distribution satisfies the requirements that ask every node to see all
// rows, or one node to see all of them.
func (d DistributionSpec) SatisfiedBy(provided DistributionSpec) bool {
	switch d.Kind {
	case DistributionAny:
		return true
	case DistributionSingleton:
		return provided.Kind == DistributionSingleton || provided.Kind == DistributionUniversal
	case DistributionHashed:
		return provided.Kind == DistributionHashed && provided.Cols.SubsetOf(d.Cols)
	case DistributionRandom:
		return provided.Kind == DistributionRandom || provided.Kind == DistributionHashed
	case DistributionReplicated:
		return provided.Kind == DistributionReplicated || provided.Kind == DistributionUniversal
	case DistributionNonSingleton:
		switch provided.Kind {
		case DistributionHashed, DistributionRandom, DistributionReplicated:
			return true
		}
		return false
	case DistributionUniversal:
		return provided.Kind == DistributionUniversal
	}
	panic(errors.AssertionFailedf("unhandled distribution %s", d.Kind))
}

// Enforceable returns the distribution that a data motion has to produce to
// satisfy d. A requirement of any non-singleton distribution is met by
// spreading rows randomly.
func (d DistributionSpec) Enforceable() DistributionSpec {
	if d.Kind == DistributionNonSingleton {
		return RandomDistribution
	}
	return d
}

func (d DistributionSpec) String() string {
	if d.Kind == DistributionHashed {
		return fmt.Sprintf("hashed%s", d.Cols)
	}
	return d.Kind.String()
}
