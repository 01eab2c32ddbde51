package main

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/contactkeval/option-pricer/internal/batch"
	"github.com/contactkeval/option-pricer/internal/marketdata"
	"github.com/contactkeval/option-pricer/internal/pricing"
	"github.com/contactkeval/option-pricer/internal/report"
)

func newPriceCmd() *cobra.Command {
	var (
		typ                                        string
		ticker                                     string
		spot, strike, rate, vol, maturity, quantity float64
	)

	cmd := &cobra.Command{
		Use:   "price",
		Short: "Price a single contract",
		Example: `  option-pricer price --type call --spot 1 --strike 0.9 --rate 0.015 --vol 0.2 --maturity 1
  option-pricer price --type put --ticker SPY --strike 580 --rate 0.04 --vol 0.18 --maturity 0.25`,
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := pricing.ParseOptionType(typ)
			if err != nil {
				return err
			}

			if ticker != "" && !cmd.Flags().Changed("spot") {
				spot, err = lookupSpot(cmd.Context(), ticker)
				if err != nil {
					return err
				}
			}

			c, err := pricing.NewContract(t, spot, strike, rate, vol, maturity, quantity)
			if err != nil {
				return err
			}

			e, err := cfg.Engine()
			if err != nil {
				return err
			}
			vals := batch.Evaluate(e, []pricing.Contract{c})
			return report.Write(cmd.OutOrStdout(), cfg.Format, vals, report.Options{Precision: cfg.Precision})
		},
	}

	f := cmd.Flags()
	f.StringVar(&typ, "type", "call", "option type: call or put")
	f.Float64Var(&spot, "spot", 0, "spot price of the underlying")
	f.StringVar(&ticker, "ticker", "", "look up the spot price of this ticker instead of --spot")
	f.Float64Var(&strike, "strike", 0, "strike price")
	f.Float64Var(&rate, "rate", 0, "continuously compounded risk-free rate")
	f.Float64Var(&vol, "vol", 0, "annualised volatility")
	f.Float64Var(&maturity, "maturity", 0, "time to maturity in years")
	f.Float64Var(&quantity, "quantity", 1, "number of contracts (signed)")
	f.String("massive-api-key", "", "Massive API key for --ticker lookups")
	f.String("spots-file", "", "ticker,spot CSV consulted before Massive")
	addReportFlags(cmd)

	cmd.MarkFlagsMutuallyExclusive("spot", "ticker")
	return cmd
}

func lookupSpot(ctx context.Context, ticker string) (float64, error) {
	src, err := spotSource()
	if err != nil {
		return 0, err
	}
	if src == nil {
		return 0, errors.New("--ticker needs --spots-file or a Massive API key")
	}
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	return src.Spot(ctx, ticker)
}

// spotSource layers the configured spots file over Massive. It returns
// nil when neither is configured.
func spotSource() (marketdata.SpotSource, error) {
	var primary, secondary marketdata.SpotSource
	if cfg.SpotsFile != "" {
		s, err := marketdata.LoadSpots(cfg.SpotsFile)
		if err != nil {
			return nil, err
		}
		primary = s
	}
	if cfg.MassiveAPIKey != "" {
		s, err := marketdata.NewMassiveSpotSource(cfg.MassiveAPIKey)
		if err != nil {
			return nil, err
		}
		secondary = s
	}
	return marketdata.WithSecondary(primary, secondary), nil
}
