// Copyright 2018 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

package opt

import "strconv"

// TableID identifies a base table known to the catalog.
type TableID uint64

func (t TableID) String() string { return "t" + strconv.FormatUint(uint64(t), 10) }

// SafeValue implements the redact.SafeValue interface.
func (TableID) SafeValue() {}

// CTEID identifies a common table expression. The producer of a CTE and all
// of its consumers share the same id.
type CTEID int32

func (c CTEID) String() string { return "cte" + strconv.Itoa(int(c)) }

// SafeValue implements the redact.SafeValue interface.
func (CTEID) SafeValue() {}

// PartScanID identifies a scan of a partitioned table whose partitions may be
// eliminated by a partition selector placed elsewhere in the plan.
type PartScanID int32

func (p PartScanID) String() string { return "ps" + strconv.Itoa(int(p)) }

// SafeValue implements the redact.SafeValue interface.
func (PartScanID) SafeValue() {}
