// Copyright 2020 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

package physical

import (
	"bytes"
	"fmt"
	"sort"

	"github.com/relplan/optcore/pkg/opt"
	"golang.org/x/exp/maps"
)

// PartitionRole describes the state of a scan of a partitioned table below
// an operator.
type PartitionRole int8

const (
	// PartitionConsumer is a scan that still reads every partition.
	PartitionConsumer PartitionRole = iota + 1
	// PartitionResolved is a scan whose partitions are selected by a
	// partition selector.
	PartitionResolved
)

func (r PartitionRole) String() string {
	switch r {
	case PartitionConsumer:
		return "consumer"
	case PartitionResolved:
		return "resolved"
	}
	return fmt.Sprintf("partition-role(%d)", r)
}

// PartIndexEntry is the derived state of one partitioned scan.
type PartIndexEntry struct {
	Role  PartitionRole
	Table opt.TableID
}

// PartIndexMap records the scans of partitioned tables below an operator.
// The nil map is the empty one; maps are never modified after
// construction.
type PartIndexMap map[opt.PartScanID]PartIndexEntry

// Any returns true if there is no partitioned scan below the operator.
func (m PartIndexMap) Any() bool {
	return len(m) == 0
}

// Insert returns a map that also records the given scan.
func (m PartIndexMap) Insert(id opt.PartScanID, e PartIndexEntry) PartIndexMap {
	res := make(PartIndexMap, len(m)+1)
	for k, v := range m {
		res[k] = v
	}
	res[id] = e
	return res
}

// Resolve returns a map in which the given scan is resolved. The map is
// returned unchanged if it does not contain the scan.
func (m PartIndexMap) Resolve(id opt.PartScanID) PartIndexMap {
	e, ok := m[id]
	if !ok {
		return m
	}
	e.Role = PartitionResolved
	return m.Insert(id, e)
}

// Union returns the map describing both subtrees. A scan resolved on either
// side is resolved.
func (m PartIndexMap) Union(other PartIndexMap) PartIndexMap {
	if len(other) == 0 {
		return m
	}
	if len(m) == 0 {
		return other
	}
	res := make(PartIndexMap, len(m)+len(other))
	for k, v := range m {
		res[k] = v
	}
	for k, v := range other {
		if prev, ok := res[k]; ok && prev.Role == PartitionResolved {
			continue
		}
		res[k] = v
	}
	return res
}

// Unresolved returns the scans that still read every partition, in
// increasing order.
func (m PartIndexMap) Unresolved() []opt.PartScanID {
	var res []opt.PartScanID
	for id, e := range m {
		if e.Role == PartitionConsumer {
			res = append(res, id)
		}
	}
	sort.Slice(res, func(i, j int) bool { return res[i] < res[j] })
	return res
}

// Equals returns true if both maps are the same.
func (m PartIndexMap) Equals(other PartIndexMap) bool {
	return maps.Equal(m, other)
}

func (m PartIndexMap) String() string {
	if len(m) == 0 {
		return "none"
	}
	ids := maps.Keys(m)
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	var buf bytes.Buffer
	for i, id := range ids {
		if i > 0 {
			buf.WriteByte(',')
		}
		fmt.Fprintf(&buf, "%s:%s(%s)", id, m[id].Role, m[id].Table)
	}
	return buf.String()
}

// PartitionAction is what a requirement asks of a partitioned scan.
type PartitionAction int8

const (
	// PartitionPropagate passes the requirement to the input that contains
	// the scan.
	PartitionPropagate PartitionAction = iota + 1
	// PartitionSelect asks for the partitions of the scan to be selected
	// before the rows reach the requiring operator.
	PartitionSelect
)

func (a PartitionAction) String() string {
	switch a {
	case PartitionPropagate:
		return "propagate"
	case PartitionSelect:
		return "select"
	}
	return fmt.Sprintf("partition-action(%d)", a)
}

// PartitionPropagationSpec maps partitioned scans to the action required of
// them.
type PartitionPropagationSpec map[opt.PartScanID]PartitionAction

// Any returns true if nothing is required.
func (s PartitionPropagationSpec) Any() bool {
	return len(s) == 0
}

// Equals returns true if both specs are the same.
func (s PartitionPropagationSpec) Equals(other PartitionPropagationSpec) bool {
	return maps.Equal(s, other)
}

// SatisfiedBy returns true if no scan required to be selected is still an
// unresolved consumer in the derived map.
func (s PartitionPropagationSpec) SatisfiedBy(derived PartIndexMap) bool {
	for id, a := range s {
		if a != PartitionSelect {
			continue
		}
		if e, ok := derived[id]; ok && e.Role == PartitionConsumer {
			return false
		}
	}
	return true
}

// Without returns the spec without the given scan.
func (s PartitionPropagationSpec) Without(id opt.PartScanID) PartitionPropagationSpec {
	if _, ok := s[id]; !ok {
		return s
	}
	res := make(PartitionPropagationSpec, len(s)-1)
	for k, a := range s {
		if k != id {
			res[k] = a
		}
	}
	return res
}

// Restrict returns the part of the spec about the scans in the given map.
func (s PartitionPropagationSpec) Restrict(m PartIndexMap) PartitionPropagationSpec {
	var res PartitionPropagationSpec
	for id, a := range s {
		if _, ok := m[id]; ok {
			if res == nil {
				res = make(PartitionPropagationSpec)
			}
			res[id] = a
		}
	}
	return res
}

// Selections returns the scans required to be selected, in increasing
// order.
func (s PartitionPropagationSpec) Selections() []opt.PartScanID {
	var res []opt.PartScanID
	for id, a := range s {
		if a == PartitionSelect {
			res = append(res, id)
		}
	}
	sort.Slice(res, func(i, j int) bool { return res[i] < res[j] })
	return res
}

func (s PartitionPropagationSpec) String() string {
	if len(s) == 0 {
		return "none"
	}
	ids := maps.Keys(s)
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	var buf bytes.Buffer
	for i, id := range ids {
		if i > 0 {
			buf.WriteByte(',')
		}
		fmt.Fprintf(&buf, "%s:%s", id, s[id])
	}
	return buf.String()
}
