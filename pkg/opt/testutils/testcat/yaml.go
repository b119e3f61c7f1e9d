// Copyright 2018 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

package testcat

import (
	"github.com/cockroachdb/errors"
	"github.com/relplan/optcore/pkg/opt"
	"github.com/relplan/optcore/pkg/opt/cat"
)

type catalogDef struct {
	Tables []tableDef `yaml:"tables"`
}

type tableDef struct {
	Name        string      `yaml:"name"`
	ID          uint64      `yaml:"id"`
	Rows        float64     `yaml:"rows"`
	Partitioned bool        `yaml:"partitioned"`
	Columns     []columnDef `yaml:"columns"`
}

type columnDef struct {
	Name  string    `yaml:"name"`
	Type  string    `yaml:"type"`
	Width float64   `yaml:"width"`
	Stats *statsDef `yaml:"stats"`
}

type statsDef struct {
	NullFraction   float64     `yaml:"null_fraction"`
	DistinctRemain float64     `yaml:"distinct_remain"`
	FreqRemain     float64     `yaml:"freq_remain"`
	Buckets        []bucketDef `yaml:"buckets"`
}

// bucketDef describes a bucket. Unless overridden, the lower bound is
// inclusive and the upper bound is exclusive; a bucket whose bounds are
// equal is a singleton and is closed on both ends.
type bucketDef struct {
	Lower       float64 `yaml:"lower"`
	Upper       float64 `yaml:"upper"`
	LowerClosed *bool   `yaml:"lower_closed"`
	UpperClosed *bool   `yaml:"upper_closed"`
	Freq        float64 `yaml:"freq"`
	NDV         float64 `yaml:"ndv"`
}

func (d *tableDef) build() (*Table, error) {
	if d.Name == "" {
		return nil, errors.New("table name is required")
	}
	if d.ID == 0 {
		return nil, errors.Errorf("table %q: id must be positive", d.Name)
	}
	if d.Rows < 0 {
		return nil, errors.Errorf("table %q: negative row count %g", d.Name, d.Rows)
	}
	t := &Table{
		TabID:       opt.TableID(d.ID),
		TabName:     d.Name,
		Rows:        d.Rows,
		Partitioned: d.Partitioned,
	}
	for i := range d.Columns {
		c := &d.Columns[i]
		typ := cat.ColumnType(c.Type)
		if typ == "" {
			typ = cat.IntType
		}
		col := &Column{Name: c.Name, Type: typ, Width: c.Width}
		if col.Width == 0 {
			col.Width = 8
		}
		if c.Stats != nil {
			stat, err := c.Stats.build()
			if err != nil {
				return nil, errors.Wrapf(err, "table %q column %q", d.Name, c.Name)
			}
			col.Stats = stat
		}
		t.Columns = append(t.Columns, col)
	}
	return t, nil
}

func (d *statsDef) build() (*cat.ColumnStatistic, error) {
	if d.NullFraction < 0 || d.NullFraction > 1 {
		return nil, errors.Errorf("null fraction %g out of range", d.NullFraction)
	}
	stat := &cat.ColumnStatistic{
		NullFraction:   d.NullFraction,
		DistinctRemain: d.DistinctRemain,
		FreqRemain:     d.FreqRemain,
	}
	for _, b := range d.Buckets {
		singleton := b.Lower == b.Upper
		bucket := cat.HistogramBucket{
			Lower:       b.Lower,
			Upper:       b.Upper,
			LowerClosed: true,
			UpperClosed: singleton,
			Frequency:   b.Freq,
			Distinct:    b.NDV,
		}
		if b.LowerClosed != nil {
			bucket.LowerClosed = *b.LowerClosed
		}
		if b.UpperClosed != nil {
			bucket.UpperClosed = *b.UpperClosed
		}
		if bucket.Distinct == 0 && singleton && bucket.Frequency > 0 {
			bucket.Distinct = 1
		}
		stat.Buckets = append(stat.Buckets, bucket)
	}
	return stat, nil
}
