// Copyright 2018 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

package main

import (
	"io"

	"github.com/olekukonko/tablewriter"
	"github.com/relplan/optcore/pkg/settings"
	"github.com/spf13/cobra"
)

func makeSettingsCommand(cfg *rootConfig) *cobra.Command {
	return &cobra.Command{
		Use:   "settings",
		Short: "List the optimizer settings",
		Long:  `List the optimizer settings with their default and current values.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			writeSettings(cmd.OutOrStdout(), cfg.sv)
			return nil
		},
	}
}

func writeSettings(w io.Writer, sv *settings.Values) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"setting", "type", "default", "value", "description"})
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	for _, key := range settings.Keys() {
		s, desc, _ := settings.Lookup(key)
		typ := "float"
		if s.Typ() == "b" {
			typ = "bool"
		}
		table.Append([]string{key, typ, s.DefaultString(), s.String(sv), desc})
	}
	table.Render()
}
