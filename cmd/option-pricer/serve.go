package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/contactkeval/option-pricer/internal/logger"
	"github.com/contactkeval/option-pricer/internal/server"
)

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the pricing API over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := cfg.Engine()
			if err != nil {
				return err
			}

			spots, err := spotSource()
			if err != nil {
				return err
			}
			if spots == nil {
				logger.Infof("no spots file or Massive API key, ticker lookups disabled")
			}

			gin.SetMode(gin.ReleaseMode)
			if cfg.Verbosity >= int(logger.Debug) {
				gin.SetMode(gin.DebugMode)
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return server.Run(ctx, cfg.Addr, server.NewHandler(e, spots))
		},
	}

	cmd.Flags().String("addr", ":8080", "listen address")
	cmd.Flags().String("massive-api-key", "", "Massive API key for ticker lookups")
	cmd.Flags().String("spots-file", "", "ticker,spot CSV consulted before Massive")
	return cmd
}
