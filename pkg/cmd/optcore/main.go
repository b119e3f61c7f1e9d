// Copyright 2018 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

// optcore inspects the statistics and physical property derivation of the
// optimizer over YAML-described catalogs and plans.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/cockroachdb/errors"
	"github.com/relplan/optcore/pkg/opt/stats"
	"github.com/relplan/optcore/pkg/opt/testutils/testcat"
	"github.com/relplan/optcore/pkg/settings"
	"github.com/relplan/optcore/pkg/util/log"
	"github.com/spf13/cobra"
)

// rootConfig holds the flags shared by every command.
type rootConfig struct {
	settingsFile   string
	verbosity      int32
	redactableLogs bool
	sv             *settings.Values
}

func makeOptcoreCommand() *cobra.Command {
	cfg := &rootConfig{sv: settings.MakeTestingValues()}
	command := &cobra.Command{
		Use:   "optcore [command] (flags)",
		Short: "optcore derives the statistics and physical properties of query plans.",
		Long: `optcore derives the statistics and physical properties of query plans.

Catalogs, joins and plans are described in YAML files. Typical usage:
    optcore settings
        List the optimizer settings and their values.

    optcore join catalog.yaml join.yaml
        Print the statistics of a join of two tables of the catalog.

    optcore plan catalog.yaml plan.yaml
        Derive the properties of a plan, placing the enforcers it needs.
`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			log.SetVerbosity(cfg.verbosity)
			log.SetRedactable(cfg.redactableLogs)
			if cfg.settingsFile == "" {
				return nil
			}
			data, err := os.ReadFile(cfg.settingsFile)
			if err != nil {
				return errors.Wrap(err, "reading settings")
			}
			return cfg.sv.LoadYAML(data)
		},
	}
	flags := command.PersistentFlags()
	flags.StringVar(&cfg.settingsFile, "settings", "", "YAML file of setting overrides")
	flags.Int32Var(&cfg.verbosity, "v", 0, "log verbosity")
	flags.BoolVar(&cfg.redactableLogs, "redactable-logs", false, "keep redaction markers in log messages")
	settings.RegisterFlags(flags, cfg.sv)

	command.AddCommand(makeSettingsCommand(cfg))
	command.AddCommand(makeJoinCommand(cfg))
	command.AddCommand(makePlanCommand(cfg))
	return command
}

// statsConfig returns the statistics configuration after the overrides
// loaded from the settings file and the flags.
func (cfg *rootConfig) statsConfig() stats.Config {
	return stats.MakeConfig(cfg.sv)
}

// loadCatalog reads a test catalog from a YAML file.
func loadCatalog(ctx context.Context, path string) (*testcat.Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "reading catalog")
	}
	catalog := testcat.New()
	if err := catalog.Load(data); err != nil {
		return nil, errors.Wrapf(err, "loading catalog %s", path)
	}
	log.VEventf(ctx, 1, "loaded %d tables from %s", len(catalog.Tables()), path)
	return catalog, nil
}

func main() {
	defer log.Sync()
	if err := makeOptcoreCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
