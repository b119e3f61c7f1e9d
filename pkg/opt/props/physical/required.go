// Copyright 2018 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

package physical

import (
	"bytes"
	"fmt"

	"github.com/relplan/optcore/pkg/opt"
)

// Required is the set of physical properties required of an operator by its
// parent.
type Required struct {
	// Cols are the columns the operator must output.
	Cols          opt.ColSet
	Order         OrderSpec
	Distribution  DistributionSpec
	Rewindability RewindabilitySpec
	CTEs          CTEReq
	Partition     PartitionPropagationSpec
}

// Equals returns true if both requirements are the same.
func (r *Required) Equals(other *Required) bool {
	return r.Cols.Equals(other.Cols) &&
		r.Order.Equals(other.Order) &&
		r.Distribution.Equals(other.Distribution) &&
		r.Rewindability.Equals(other.Rewindability) &&
		r.CTEs.Equals(other.CTEs) &&
		r.Partition.Equals(other.Partition)
}

// Any returns true if nothing beyond the columns is required.
func (r *Required) Any() bool {
	return r.Order.Any() && r.Distribution.Any() && r.Rewindability.Any() &&
		r.CTEs.Any() && r.Partition.Any()
}

func (r *Required) String() string {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "cols=%s", r.Cols)
	if !r.Order.Any() {
		fmt.Fprintf(&buf, " order=%s", r.Order)
	}
	if !r.Distribution.Any() {
		fmt.Fprintf(&buf, " distribution=%s", r.Distribution)
	}
	if !r.Rewindability.Any() {
		fmt.Fprintf(&buf, " rewindability=%s", r.Rewindability)
	}
	if !r.CTEs.Any() {
		fmt.Fprintf(&buf, " ctes=%s", r.CTEs)
	}
	if !r.Partition.Any() {
		fmt.Fprintf(&buf, " partition=%s", r.Partition)
	}
	return buf.String()
}

// Derived is the set of physical properties an operator provides.
type Derived struct {
	OutputCols    opt.ColSet
	Order         OrderSpec
	Distribution  DistributionSpec
	Rewindability RewindabilitySpec
	CTEs          CTEMap
	PartIndex     PartIndexMap
}

// Satisfies returns true if the derived properties meet every requirement.
func (d *Derived) Satisfies(r *Required) bool {
	return r.Cols.SubsetOf(d.OutputCols) &&
		r.Order.SatisfiedBy(d.Order) &&
		r.Distribution.SatisfiedBy(d.Distribution) &&
		r.Rewindability.SatisfiedBy(d.Rewindability) &&
		r.CTEs.SatisfiedBy(d.CTEs) &&
		r.Partition.SatisfiedBy(d.PartIndex)
}

// Equals returns true if both sets of properties are the same.
func (d *Derived) Equals(other *Derived) bool {
	return d.OutputCols.Equals(other.OutputCols) &&
		d.Order.Equals(other.Order) &&
		d.Distribution.Equals(other.Distribution) &&
		d.Rewindability.Equals(other.Rewindability) &&
		d.CTEs.Equals(other.CTEs) &&
		d.PartIndex.Equals(other.PartIndex)
}

func (d *Derived) String() string {
	return fmt.Sprintf("cols=%s order=%s distribution=%s rewindability=%s ctes=%s partitions=%s",
		d.OutputCols, d.Order, d.Distribution, d.Rewindability, d.CTEs, d.PartIndex)
}
