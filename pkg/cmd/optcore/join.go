// Copyright 2018 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/cockroachdb/errors"
	"github.com/cockroachdb/logtags"
	"github.com/dustin/go-humanize"
	"github.com/relplan/optcore/pkg/opt"
	"github.com/relplan/optcore/pkg/opt/memo"
	"github.com/relplan/optcore/pkg/opt/props"
	"github.com/relplan/optcore/pkg/opt/stats"
	"github.com/relplan/optcore/pkg/opt/testutils/testcat"
	"github.com/relplan/optcore/pkg/util/log"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v2"
)

// joinDef describes a join of two table scans:
//
//	type: inner
//	outer: {table: orders, cols: [1, 2]}
//	inner: {table: customers, cols: [3]}
//	predicates:
//	- 1 = 3
type joinDef struct {
	Type       string   `yaml:"type"`
	Outer      scanDef  `yaml:"outer"`
	Inner      scanDef  `yaml:"inner"`
	Predicates []string `yaml:"predicates"`
}

type scanDef struct {
	Table string `yaml:"table"`
	Cols  []int  `yaml:"cols"`
}

func makeJoinCommand(cfg *rootConfig) *cobra.Command {
	return &cobra.Command{
		Use:   "join <catalog> <join>",
		Short: "Print the statistics of a join",
		Long: `Print the statistics of the outer and inner scans of a join and of the
join itself. Both arguments are YAML files.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := logtags.AddTag(context.Background(), "join", nil)
			catalog, err := loadCatalog(ctx, args[0])
			if err != nil {
				return err
			}
			data, err := os.ReadFile(args[1])
			if err != nil {
				return errors.Wrap(err, "reading join")
			}
			return runJoin(ctx, cmd.OutOrStdout(), cfg.statsConfig(), catalog, data)
		},
	}
}

func runJoin(
	ctx context.Context, w io.Writer, cfg stats.Config, catalog *testcat.Catalog, data []byte,
) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = opt.CatchOptimizerError(r)
		}
	}()

	var def joinDef
	if err := yaml.UnmarshalStrict(data, &def); err != nil {
		return errors.Wrap(err, "parsing join")
	}
	joinType, err := opt.ParseJoinType(def.Type)
	if err != nil {
		return err
	}
	preds, err := memo.ParsePredicates(catalog, def.Predicates)
	if err != nil {
		return err
	}

	var b stats.Builder
	b.Init(ctx, cfg, catalog)
	outer, err := scanStats(ctx, &b, catalog, def.Outer)
	if err != nil {
		return errors.Wrap(err, "outer")
	}
	inner, err := scanStats(ctx, &b, catalog, def.Inner)
	if err != nil {
		return errors.Wrap(err, "inner")
	}
	res, err := b.DeriveJoin(joinType, outer, inner, preds)
	if err != nil {
		return err
	}

	fmt.Fprintf(w, "outer %s:\n%s\n", def.Outer.Table, outer)
	fmt.Fprintf(w, "inner %s:\n%s\n", def.Inner.Table, inner)
	fmt.Fprintf(w, "%s join:\n%s", joinType, res)
	if n := outer.Rows() * inner.Rows(); n > 0 {
		fmt.Fprintf(w, "selectivity: %.4g of %s row pairs\n", res.Rows()/n, humanize.Commaf(n))
	}
	return nil
}

func scanStats(
	ctx context.Context, b *stats.Builder, catalog *testcat.Catalog, def scanDef,
) (*props.Statistics, error) {
	tab, err := catalog.ResolveTable(ctx, def.Table)
	if err != nil {
		return nil, err
	}
	if len(def.Cols) != tab.ColumnCount() {
		return nil, errors.Errorf("table %s has %d columns, %d given",
			def.Table, tab.ColumnCount(), len(def.Cols))
	}
	cols := make(opt.ColList, len(def.Cols))
	for i, c := range def.Cols {
		cols[i] = opt.ColumnID(c)
	}
	s := b.BaseTableStats(tab, cols, nil /* constraints */)
	log.VEventf(ctx, 2, "scan of %s: %s", def.Table, s)
	return s, nil
}
