// Copyright 2018 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

// Package cat contains interfaces that are used by the query optimizer to avoid
// including specifics of the metadata store in the optimizer.
//
// The catalog is read-only and may be shared by optimizer instances running
// concurrently; nothing in the optimizer mutates objects obtained through it.
package cat

import (
	"context"

	"github.com/relplan/optcore/pkg/opt"
)

// Catalog is an interface to the metadata store from which the optimizer
// obtains base-table statistics and operator classification.
type Catalog interface {
	// ResolveTable locates a table by name.
	ResolveTable(ctx context.Context, name string) (Table, error)

	// TableByID locates a table by its stable identifier.
	TableByID(ctx context.Context, id opt.TableID) (Table, error)

	// ClassifyComparison maps a comparison operator name to the comparison
	// kind used by join statistics. Unknown operators map to opt.CmpOther.
	ClassifyComparison(name string) opt.CmpType

	// Comparable returns true if values of the two column types can be
	// compared with one another, and thus share a common value line for
	// histogram purposes.
	Comparable(left, right ColumnType) bool
}

// ColumnType is the family of values stored in a column.
type ColumnType string

// Supported column types.
const (
	IntType       ColumnType = "int"
	FloatType     ColumnType = "float"
	DecimalType   ColumnType = "decimal"
	StringType    ColumnType = "string"
	TimestampType ColumnType = "timestamp"
	BoolType      ColumnType = "bool"
)

// Numeric returns true for the types whose values share the numeric line.
func (t ColumnType) Numeric() bool {
	switch t {
	case IntType, FloatType, DecimalType:
		return true
	}
	return false
}
