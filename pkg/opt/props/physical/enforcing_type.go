// Copyright 2018 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

package physical

import "fmt"

// EnforcingType is the verdict of an operator about a required property.
type EnforcingType int8

const (
	// EnforcingUnnecessary means that nothing has to be done: the property is
	// not required, or the operator provides it.
	EnforcingUnnecessary EnforcingType = iota

	// EnforcingProhibited means that the operator must not be used to
	// satisfy the requirement, with or without an enforcer.
	EnforcingProhibited

	// EnforcingRequired means that an enforcer has to be placed on top of the
	// operator.
	EnforcingRequired

	// EnforcingOptional means that the operator can satisfy the requirement
	// through its input, so that plans with and without an enforcer are both
	// valid.
	EnforcingOptional
)

var enforcingTypeNames = [...]string{
	EnforcingUnnecessary: "unnecessary",
	EnforcingProhibited:  "prohibited",
	EnforcingRequired:    "required",
	EnforcingOptional:    "optional",
}

func (e EnforcingType) String() string {
	if int(e) >= len(enforcingTypeNames) {
		return fmt.Sprintf("enforcing(%d)", e)
	}
	return enforcingTypeNames[e]
}

// SafeValue implements the redact.SafeValue interface.
func (EnforcingType) SafeValue() {}

// Enforce returns true if an enforcer is placed in at least one of the
// resulting plans.
func (e EnforcingType) Enforce() bool {
	return e == EnforcingRequired || e == EnforcingOptional
}

// Unenforced returns true if a plan without an enforcer is valid.
func (e EnforcingType) Unenforced() bool {
	return e == EnforcingUnnecessary || e == EnforcingOptional
}

// EnforcingTypeFor returns the verdict of an operator that provides the given
// property itself: Unnecessary if it satisfies the requirement, Required
// otherwise.
func EnforcingTypeFor(satisfied bool) EnforcingType {
	if satisfied {
		return EnforcingUnnecessary
	}
	return EnforcingRequired
}
