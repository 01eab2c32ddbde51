package main

import (
	"io"
	"os"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/contactkeval/option-pricer/internal/batch"
	"github.com/contactkeval/option-pricer/internal/data"
	"github.com/contactkeval/option-pricer/internal/logger"
	"github.com/contactkeval/option-pricer/internal/pricing"
	"github.com/contactkeval/option-pricer/internal/report"
)

func newBatchCmd() *cobra.Command {
	var out string

	cmd := &cobra.Command{
		Use:   "batch <file.csv|->",
		Short: "Price every contract in a CSV file",
		Long: `Price every contract in a CSV file of kind,spot,strike,rate,volatility,maturity,quantity rows.

The text format prints only the value of the last row unless --all is set.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := data.ReadOptions{HasHeader: cfg.HasHeader}

			var (
				cs  []pricing.Contract
				err error
			)
			if args[0] == "-" {
				cs, err = data.ReadContracts(cmd.InOrStdin(), opts)
			} else {
				cs, err = data.LoadContracts(args[0], opts)
			}
			if err != nil {
				return err
			}
			if len(cs) == 0 {
				return errors.Errorf("%s: no contracts", args[0])
			}

			e, err := cfg.Engine()
			if err != nil {
				return err
			}
			vals := batch.Evaluate(e, cs)
			logger.Infof("priced %d contracts with the %s formula", len(vals), e.Formula())

			var w io.Writer = cmd.OutOrStdout()
			if out != "" {
				f, err := os.Create(out)
				if err != nil {
					return errors.Wrap(err, "create output")
				}
				defer f.Close()
				w = f
			}

			return report.Write(w, cfg.Format, vals, report.Options{Precision: cfg.Precision, All: cfg.All})
		},
	}

	f := cmd.Flags()
	f.Bool("all", false, "print every row, not just the last")
	f.Bool("no-header", false, "the file has no header row")
	f.StringVarP(&out, "out", "o", "", "write the report to this file instead of stdout")
	addReportFlags(cmd)
	return cmd
}
