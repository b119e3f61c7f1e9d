// Copyright 2018 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

package testcat_test

import (
	"context"
	"testing"

	"github.com/relplan/optcore/pkg/opt"
	"github.com/relplan/optcore/pkg/opt/cat"
	"github.com/relplan/optcore/pkg/opt/testutils/testcat"
	"github.com/stretchr/testify/require"
)

const catalogYAML = `
tables:
- name: orders
  id: 1
  rows: 1000
  partitioned: true
  columns:
  - name: id
    type: int
    stats:
      buckets:
      - {lower: 0, upper: 500, freq: 0.5, ndv: 500}
      - {lower: 500, upper: 1000, upper_closed: true, freq: 0.5, ndv: 500}
  - name: note
    type: string
    width: 40
- name: customers
  id: 2
  rows: 100
  columns:
  - name: id
    stats:
      null_fraction: 0.1
      buckets:
      - {lower: 7, upper: 7, freq: 0.9}
`

func TestLoad(t *testing.T) {
	ctx := context.Background()
	tc := testcat.New()
	require.NoError(t, tc.Load([]byte(catalogYAML)))

	orders, err := tc.ResolveTable(ctx, "orders")
	require.NoError(t, err)
	require.Equal(t, opt.TableID(1), orders.ID())
	require.Equal(t, 1000.0, orders.RowCount())
	require.True(t, orders.IsPartitioned())
	require.Equal(t, 2, orders.ColumnCount())

	id := orders.Column(0).Statistic()
	require.Len(t, id.Buckets, 2)
	require.True(t, id.Buckets[0].LowerClosed)
	require.False(t, id.Buckets[0].UpperClosed)
	require.True(t, id.Buckets[1].UpperClosed)

	note := orders.Column(1)
	require.Nil(t, note.Statistic())
	require.Equal(t, 40.0, note.AvgWidth())
	require.Equal(t, cat.StringType, note.DatumType())

	customers, err := tc.TableByID(ctx, 2)
	require.NoError(t, err)
	b := customers.Column(0).Statistic().Buckets[0]
	require.True(t, b.LowerClosed && b.UpperClosed)
	require.Equal(t, 1.0, b.Distinct)
	require.Equal(t, 8.0, customers.Column(0).AvgWidth())

	_, err = tc.ResolveTable(ctx, "missing")
	require.Error(t, err)
	_, err = tc.TableByID(ctx, 3)
	require.Error(t, err)
	require.Len(t, tc.Tables(), 2)

	require.Error(t, tc.Load([]byte(catalogYAML)), "duplicate tables must be rejected")
	require.Error(t, testcat.New().Load([]byte("tables: [{name: x, id: 1, rows: -1}]")))
	require.Error(t, testcat.New().Load([]byte("tables: [{name: x, id: 1, bogus: 1}]")))
}

func TestClassifyComparison(t *testing.T) {
	tc := testcat.New()
	require.Equal(t, opt.CmpEq, tc.ClassifyComparison("="))
	require.Equal(t, opt.CmpEq, tc.ClassifyComparison("=="))
	require.Equal(t, opt.CmpNEq, tc.ClassifyComparison("!="))
	require.Equal(t, opt.CmpINDF, tc.ClassifyComparison("is not distinct from"))
	require.Equal(t, opt.CmpOther, tc.ClassifyComparison("@>"))

	require.True(t, tc.Comparable(cat.IntType, cat.FloatType))
	require.True(t, tc.Comparable(cat.StringType, cat.StringType))
	require.False(t, tc.Comparable(cat.StringType, cat.IntType))
}
