// Copyright 2018 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

package cat

import "github.com/relplan/optcore/pkg/opt"

// Table is an interface to a database table, exposing only the information
// needed by the optimizer.
type Table interface {
	// ID is the unique, stable identifier for this table.
	ID() opt.TableID

	// Name is the name of the table.
	Name() string

	// ColumnCount returns the number of columns in the table.
	ColumnCount() int

	// Column returns the column at the ith ordinal position within the table.
	Column(i int) Column

	// RowCount returns the estimated number of rows in the table.
	RowCount() float64

	// IsPartitioned returns true if scans of this table can be pruned by a
	// partition selector.
	IsPartitioned() bool
}

// Column is an interface to a table column, exposing only the information
// needed by the optimizer.
type Column interface {
	// ColName returns the name of the column.
	ColName() string

	// DatumType returns the data type of the column.
	DatumType() ColumnType

	// AvgWidth returns the average size of a value of this column, in bytes.
	AvgWidth() float64

	// Statistic returns the collected statistics of the column, or nil if no
	// statistics have been collected.
	Statistic() *ColumnStatistic
}

// ColumnStatistic describes the value distribution of a single column, as
// collected by the metadata store. Bucket values have already been mapped
// onto the numeric line.
type ColumnStatistic struct {
	// NullFraction is the fraction of rows whose value is NULL.
	NullFraction float64

	// DistinctRemain is the number of distinct non-null values that are not
	// covered by any bucket.
	DistinctRemain float64

	// FreqRemain is the fraction of rows whose non-null value is not covered
	// by any bucket.
	FreqRemain float64

	Buckets []HistogramBucket
}

// HistogramBucket is one bucket of a collected histogram.
type HistogramBucket struct {
	Lower, Upper             float64
	LowerClosed, UpperClosed bool

	// Frequency is the fraction of all rows of the table falling into the
	// bucket.
	Frequency float64

	// Distinct is the number of distinct values within the bucket.
	Distinct float64
}
