// Copyright 2018 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

package physical

// RewindabilitySpec describes whether the output of an operator can be
// scanned again from the start without re-executing the operator.
type RewindabilitySpec struct {
	Rewindable bool
}

// Any returns true if the spec places no requirement on rewindability.
func (r RewindabilitySpec) Any() bool {
	return !r.Rewindable
}

// Equals returns true if both specs are the same.
func (r RewindabilitySpec) Equals(other RewindabilitySpec) bool {
	return r == other
}

// SatisfiedBy returns true if the provided spec meets the requirement.
func (r RewindabilitySpec) SatisfiedBy(provided RewindabilitySpec) bool {
	return !r.Rewindable || provided.Rewindable
}

func (r RewindabilitySpec) String() string {
	if r.Rewindable {
		return "rewindable"
	}
	return "none"
}
