package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	domain "github.com/oshokin/aid-escrow/internal/domain/escrow"
	"github.com/oshokin/aid-escrow/internal/service/common"
)

var (
	balanceCmd = &cobra.Command{
		Use:   "balance <asset> [holder]",
		Short: "Print the holdings of a holder, by default the calling identity.",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(func(ctx context.Context, c *common.Client) error {
				holder := c.Identity()
				if len(args) > 1 {
					holder = domain.Identity(args[1])
				}

				amount, err := c.Balance(ctx, domain.Asset(args[0]), holder)
				if err != nil {
					return err
				}

				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", amount, args[0])

				return nil
			})
		},
	}

	lockedCmd = &cobra.Command{
		Use:   "locked <asset>",
		Short: "Print the pool amount committed to open packages and what is still available.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			asset := domain.Asset(args[0])

			return withClient(func(ctx context.Context, c *common.Client) error {
				locked, err := c.Locked(ctx, asset)
				if err != nil {
					return err
				}

				available, err := c.Available(ctx, asset)
				if err != nil {
					return err
				}

				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "locked:    %s %s\navailable: %s %s\n", locked, asset, available, asset)

				return nil
			})
		},
	}
)

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	rootCmd.AddCommand(balanceCmd, lockedCmd)
}
