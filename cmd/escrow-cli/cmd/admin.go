package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/oshokin/aid-escrow/internal/auth"
	domain "github.com/oshokin/aid-escrow/internal/domain/escrow"
	"github.com/oshokin/aid-escrow/internal/service/common"
)

var (
	// hashCost is the bcrypt cost of hash-key.
	hashCost int

	initCmd = &cobra.Command{
		Use:   "init [admin]",
		Short: "Install the administrator, by default the calling identity.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(func(ctx context.Context, c *common.Client) error {
				admin := c.Identity()
				if len(args) > 0 {
					admin = domain.Identity(args[0])
				}

				if err := c.Init(ctx, admin); err != nil {
					return err
				}

				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "administrator set to %s\n", admin)

				return nil
			})
		},
	}

	adminCmd = &cobra.Command{
		Use:   "admin",
		Short: "Print the administrator identity.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withClient(func(ctx context.Context, c *common.Client) error {
				admin, err := c.Admin(ctx)
				if err != nil {
					return err
				}

				_, _ = fmt.Fprintln(cmd.OutOrStdout(), admin)

				return nil
			})
		},
	}

	mintCmd = &cobra.Command{
		Use:   "mint <asset> <to> <amount>",
		Short: "Issue asset units to a holder (administrator only).",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			amount, err := parseAmount(args[2])
			if err != nil {
				return err
			}

			return withClient(func(ctx context.Context, c *common.Client) error {
				if err := c.Mint(ctx, domain.Asset(args[0]), domain.Identity(args[1]), amount); err != nil {
					return err
				}

				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "minted %s %s to %s\n", amount, args[0], args[1])

				return nil
			})
		},
	}

	hashKeyCmd = &cobra.Command{
		Use:   "hash-key <key>",
		Short: "Print the bcrypt hash of an API key for the credentials setting.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			hash, err := auth.HashKey(args[0], hashCost)
			if err != nil {
				return err
			}

			_, _ = fmt.Fprintln(cmd.OutOrStdout(), hash)

			return nil
		},
	}
)

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	hashKeyCmd.Flags().IntVar(&hashCost, "cost", 0, "bcrypt cost, 0 for the default")

	rootCmd.AddCommand(initCmd, adminCmd, mintCmd, hashKeyCmd)
}
