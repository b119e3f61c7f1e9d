// Copyright 2018 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

package main

import (
	"bytes"
	"context"
	"testing"

	"github.com/relplan/optcore/pkg/opt/stats"
	"github.com/relplan/optcore/pkg/opt/testutils/testcat"
	"github.com/relplan/optcore/pkg/settings"
	"github.com/relplan/optcore/pkg/util/log"
	"github.com/stretchr/testify/require"
)

const testCatalog = `
tables:
- name: orders
  id: 1
  rows: 1000
  columns:
  - name: a
    stats:
      buckets:
      - {lower: 0, upper: 100, freq: 1, ndv: 100}
- name: customers
  id: 2
  rows: 100
  columns:
  - name: c
    stats:
      buckets:
      - {lower: 0, upper: 100, freq: 1, ndv: 100}
`

func newCatalog(t *testing.T) *testcat.Catalog {
	catalog := testcat.New()
	require.NoError(t, catalog.Load([]byte(testCatalog)))
	return catalog
}

func TestJoin(t *testing.T) {
	defer log.Scope(t).Close(t)
	ctx := context.Background()

	const join = `
type: inner
outer: {table: orders, cols: [1]}
inner: {table: customers, cols: [2]}
predicates:
- 1 = 2
`
	var buf bytes.Buffer
	require.NoError(t, runJoin(ctx, &buf, stats.DefaultConfig(), newCatalog(t), []byte(join)))
	out := buf.String()
	require.Contains(t, out, "outer orders:\nrows: 1,000")
	require.Contains(t, out, "inner customers:\nrows: 100")
	require.Contains(t, out, "inner join:\nrows: 1,000")
	require.Contains(t, out, "selectivity: 0.01 of 100,000 row pairs")

	for _, tc := range []struct {
		join, err string
	}{
		{join: "type: cross\n", err: "cross"},
		{join: "type: inner\nouter: {table: nope, cols: [1]}\n", err: `outer: table "nope" does not exist`},
		{join: "type: inner\nouter: {table: orders, cols: [1, 2]}\n", err: "table orders has 1 columns, 2 given"},
		{join: "type: inner\nextra: 1\n", err: "parsing join"},
	} {
		err := runJoin(ctx, &buf, stats.DefaultConfig(), newCatalog(t), []byte(tc.join))
		require.Error(t, err)
		require.Contains(t, err.Error(), tc.err)
	}
}

func TestPlan(t *testing.T) {
	defer log.Scope(t).Close(t)
	ctx := context.Background()

	const plan = `
required:
  distribution: singleton
plan:
  op: hash-join
  join_type: inner
  predicates:
  - 1 = 2
  children:
  - {op: scan, table: orders, cols: [1]}
  - {op: scan, table: customers, cols: [2]}
`
	var buf bytes.Buffer
	require.NoError(t, runPlan(ctx, &buf, stats.DefaultConfig(), newCatalog(t), []byte(plan), false /* summary */))
	require.Contains(t, buf.String(), "hash-join inner [@1 = @2]\n")

	buf.Reset()
	require.NoError(t, runPlan(ctx, &buf, stats.DefaultConfig(), newCatalog(t), []byte(plan), true /* summary */))
	require.Contains(t, buf.String(), "enforcer")
	require.Contains(t, buf.String(), "placed\n")

	err := runPlan(ctx, &buf, stats.DefaultConfig(), newCatalog(t), []byte("required: {}\n"), false /* summary */)
	require.EqualError(t, err, "plan is required")
}

func TestSettings(t *testing.T) {
	sv := settings.MakeTestingValues()
	require.NoError(t, sv.Set("sql.opt.stats.default_join_scale_factor", "42"))
	var buf bytes.Buffer
	writeSettings(&buf, sv)
	require.Contains(t, buf.String(), "sql.opt.stats.default_join_scale_factor")
	require.Contains(t, buf.String(), "42")
	require.Equal(t, 42.0, stats.MakeConfig(sv).DefaultJoinScaleFactor)
}

func TestCommandFlags(t *testing.T) {
	cmd := makeOptcoreCommand()
	var buf bytes.Buffer
	cmd.SetOut(&buf)
	cmd.SetArgs([]string{"settings", "--sql.opt.stats.ndv_scale_propagation.enabled=false"})
	require.NoError(t, cmd.Execute())
	require.Contains(t, buf.String(), "sql.opt.stats.ndv_scale_propagation.enabled")
}
