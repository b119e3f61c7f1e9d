// Copyright 2018 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

// Package testcat implements an in-memory catalog for tests and tools. Tables
// are described in YAML:
//
//	tables:
//	- name: t
//	  id: 1
//	  rows: 1000
//	  columns:
//	  - name: a
//	    type: int
//	    width: 8
//	    stats:
//	      null_fraction: 0.1
//	      buckets:
//	      - {lower: 0, upper: 10, freq: 0.4, ndv: 10}
package testcat

import (
	"context"
	"sort"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/cockroachdb/redact"
	"github.com/relplan/optcore/pkg/opt"
	"github.com/relplan/optcore/pkg/opt/cat"
	"gopkg.in/yaml.v2"
)

// Catalog implements the cat.Catalog interface for testing purposes.
type Catalog struct {
	tables map[string]*Table
	byID   map[opt.TableID]*Table
}

var _ cat.Catalog = &Catalog{}

// New creates a new empty instance of the test catalog.
func New() *Catalog {
	return &Catalog{
		tables: make(map[string]*Table),
		byID:   make(map[opt.TableID]*Table),
	}
}

// ResolveTable is part of the cat.Catalog interface.
func (tc *Catalog) ResolveTable(_ context.Context, name string) (cat.Table, error) {
	if t, ok := tc.tables[name]; ok {
		return t, nil
	}
	return nil, errors.Errorf("table %q does not exist", name)
}

// TableByID is part of the cat.Catalog interface.
func (tc *Catalog) TableByID(_ context.Context, id opt.TableID) (cat.Table, error) {
	if t, ok := tc.byID[id]; ok {
		return t, nil
	}
	return nil, errors.Errorf("table [%d] does not exist", redact.Safe(id))
}

// ClassifyComparison is part of the cat.Catalog interface.
func (tc *Catalog) ClassifyComparison(name string) opt.CmpType {
	switch strings.ToUpper(strings.TrimSpace(name)) {
	case "==":
		return opt.CmpEq
	case "!=":
		return opt.CmpNEq
	}
	c, err := opt.ParseCmpType(name)
	if err != nil {
		return opt.CmpOther
	}
	return c
}

// Comparable is part of the cat.Catalog interface.
func (tc *Catalog) Comparable(left, right cat.ColumnType) bool {
	if left == right {
		return true
	}
	return left.Numeric() && right.Numeric()
}

// AddTable adds the given table to the catalog.
func (tc *Catalog) AddTable(t *Table) {
	if _, ok := tc.tables[t.TabName]; ok {
		panic(errors.AssertionFailedf("table %q already exists", t.TabName))
	}
	tc.tables[t.TabName] = t
	tc.byID[t.TabID] = t
}

// Tables returns all tables in the catalog, ordered by id.
func (tc *Catalog) Tables() []*Table {
	res := make([]*Table, 0, len(tc.byID))
	for _, t := range tc.byID {
		res = append(res, t)
	}
	sort.Slice(res, func(i, j int) bool { return res[i].TabID < res[j].TabID })
	return res
}

// Load parses YAML table definitions and adds them to the catalog.
func (tc *Catalog) Load(data []byte) error {
	var def catalogDef
	if err := yaml.UnmarshalStrict(data, &def); err != nil {
		return errors.Wrap(err, "parsing catalog")
	}
	for i := range def.Tables {
		t, err := def.Tables[i].build()
		if err != nil {
			return err
		}
		if _, ok := tc.tables[t.TabName]; ok {
			return errors.Errorf("table %q already exists", t.TabName)
		}
		if _, ok := tc.byID[t.TabID]; ok {
			return errors.Errorf("table id %d already in use", redact.Safe(t.TabID))
		}
		tc.AddTable(t)
	}
	return nil
}

// Table implements the cat.Table interface for testing purposes.
type Table struct {
	TabID       opt.TableID
	TabName     string
	Rows        float64
	Partitioned bool
	Columns     []*Column
}

var _ cat.Table = &Table{}

// ID is part of the cat.Table interface.
func (t *Table) ID() opt.TableID { return t.TabID }

// Name is part of the cat.Table interface.
func (t *Table) Name() string { return t.TabName }

// ColumnCount is part of the cat.Table interface.
func (t *Table) ColumnCount() int { return len(t.Columns) }

// Column is part of the cat.Table interface.
func (t *Table) Column(i int) cat.Column { return t.Columns[i] }

// RowCount is part of the cat.Table interface.
func (t *Table) RowCount() float64 { return t.Rows }

// IsPartitioned is part of the cat.Table interface.
func (t *Table) IsPartitioned() bool { return t.Partitioned }

// Column implements the cat.Column interface for testing purposes.
type Column struct {
	Name  string
	Type  cat.ColumnType
	Width float64
	Stats *cat.ColumnStatistic
}

var _ cat.Column = &Column{}

// ColName is part of the cat.Column interface.
func (c *Column) ColName() string { return c.Name }

// DatumType is part of the cat.Column interface.
func (c *Column) DatumType() cat.ColumnType { return c.Type }

// AvgWidth is part of the cat.Column interface.
func (c *Column) AvgWidth() float64 { return c.Width }

// Statistic is part of the cat.Column interface.
func (c *Column) Statistic() *cat.ColumnStatistic { return c.Stats }
