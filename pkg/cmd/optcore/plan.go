// Copyright 2018 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

package main

import (
	"context"
	"fmt"
	"io"
	"math"
	"os"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/cockroachdb/logtags"
	"github.com/dustin/go-humanize"
	"github.com/olekukonko/tablewriter"
	"github.com/relplan/optcore/pkg/opt/memo"
	"github.com/relplan/optcore/pkg/opt/stats"
	"github.com/relplan/optcore/pkg/opt/testutils/testcat"
	"github.com/relplan/optcore/pkg/opt/xform"
	"github.com/spf13/cobra"
)

func makePlanCommand(cfg *rootConfig) *cobra.Command {
	var summary bool
	cmd := &cobra.Command{
		Use:   "plan <catalog> <plan>",
		Short: "Derive the physical properties of a plan",
		Long: `Derive the physical properties and statistics of a plan under the
requirement given with it, placing the enforcers the plan needs. Both
arguments are YAML files.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := logtags.AddTag(context.Background(), "plan", nil)
			catalog, err := loadCatalog(ctx, args[0])
			if err != nil {
				return err
			}
			data, err := os.ReadFile(args[1])
			if err != nil {
				return errors.Wrap(err, "reading plan")
			}
			return runPlan(ctx, cmd.OutOrStdout(), cfg.statsConfig(), catalog, data, summary)
		},
	}
	cmd.Flags().BoolVar(&summary, "summary", false, "print a table of the operators instead of the plan tree")
	return cmd
}

func runPlan(
	ctx context.Context,
	w io.Writer,
	cfg stats.Config,
	catalog *testcat.Catalog,
	data []byte,
	summary bool,
) error {
	root, required, err := memo.ParsePlan(ctx, catalog, data)
	if err != nil {
		return err
	}
	var d xform.Deriver
	d.Init(ctx, cfg, catalog)
	res, err := d.Derive(root, required)
	if err != nil {
		return err
	}
	if !summary {
		fmt.Fprint(w, res)
		return nil
	}

	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"operator", "rows", "required", "request"})
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	enforcers := 0
	var walk func(n *xform.DerivedNode, depth int)
	walk = func(n *xform.DerivedNode, depth int) {
		desc := strings.Repeat("  ", depth) + memo.Describe(n.Op)
		request := fmt.Sprint(n.ReqIdx)
		if n.Enforcer {
			enforcers++
			request = "enforcer"
		}
		table.Append([]string{desc, humanize.Commaf(math.Round(n.Stats.Rows())), n.Required.String(), request})
		for _, c := range n.Children {
			walk(c, depth+1)
		}
	}
	walk(res, 0)
	table.Render()
	fmt.Fprintf(w, "%s %s placed\n", humanize.Comma(int64(enforcers)), pluralEnforcers(enforcers))
	return nil
}

func pluralEnforcers(n int) string {
	if n == 1 {
		return "enforcer"
	}
	return "enforcers"
}
