package main

import (
	"github.com/spf13/cobra"

	"github.com/contactkeval/option-pricer/internal/config"
	"github.com/contactkeval/option-pricer/internal/logger"
)

// cfg is populated before any subcommand runs.
var cfg *config.Config

func newRootCmd() *cobra.Command {
	var configPath string

	root := &cobra.Command{
		Use:           "option-pricer",
		Short:         "Black-Scholes European option pricer",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			c, err := config.Load(configPath, cmd.Flags())
			if err != nil {
				return err
			}
			cfg = c
			logger.SetVerbosity(cfg.Verbosity)
			logger.Debugf("config: formula=%s format=%s precision=%d header=%t",
				cfg.Formula, cfg.Format, cfg.Precision, cfg.HasHeader)
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&configPath, "config", "", "config file (yaml, json or toml)")
	pf.Int("verbosity", 1, "log verbosity: 0=errors 1=info 2=debug 3=trace")
	pf.String("formula", "legacy", "pricing formula: legacy or canonical")

	root.AddCommand(
		newPriceCmd(),
		newBatchCmd(),
		newSelfCheckCmd(),
		newServeCmd(),
	)
	return root
}

// addReportFlags registers the output flags shared by price and batch.
func addReportFlags(cmd *cobra.Command) {
	cmd.Flags().String("format", "text", "output format: text, json or csv")
	cmd.Flags().Int("precision", -1, "decimal places in output, -1 for full precision")
}
