package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/contactkeval/option-pricer/internal/pricing"
)

func newSelfCheckCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "selfcheck",
		Short: "Verify the engine against the reference contracts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := cfg.Engine()
			if err != nil {
				return err
			}
			if err := pricing.SelfCheck(e); err != nil {
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "ok call=%v put=%v\n", pricing.RefCallValue, pricing.RefPutValue)
			return err
		},
	}
}
