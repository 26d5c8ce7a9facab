package cmd

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/oshokin/aid-escrow/internal/contract"
	domain "github.com/oshokin/aid-escrow/internal/domain/escrow"
	"github.com/oshokin/aid-escrow/internal/service/client"
	"github.com/oshokin/aid-escrow/internal/service/common"
)

var (
	// fundFrom is the funder of fund, the calling identity when empty.
	fundFrom string
	// expiresIn sets the expiry relative to now.
	expiresIn time.Duration
	// expiresAt sets the expiry as ledger seconds.
	expiresAt uint64
	// packageMetadata holds key=value attributes of a new package.
	packageMetadata map[string]string

	fundCmd = &cobra.Command{
		Use:   "fund <asset> <amount>",
		Short: "Deposit into the pool.",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			amount, err := parseAmount(args[1])
			if err != nil {
				return err
			}

			return withClient(func(ctx context.Context, c *common.Client) error {
				from := c.Identity()
				if fundFrom != "" {
					from = domain.Identity(fundFrom)
				}

				if err := c.Fund(ctx, domain.Asset(args[0]), from, amount); err != nil {
					return err
				}

				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "funded %s %s from %s\n", amount, args[0], from)

				return nil
			})
		},
	}

	createCmd = &cobra.Command{
		Use:   "create <id> <recipient> <amount> <asset>",
		Short: "Create an aid package (administrator only).",
		Args:  cobra.ExactArgs(4),
		RunE: func(cmd *cobra.Command, args []string) error {
			req, err := packageRequest(args, time.Now())
			if err != nil {
				return err
			}

			return withClient(func(ctx context.Context, c *common.Client) error {
				id, err := c.CreatePackage(ctx, *req)
				if err != nil {
					return err
				}

				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "package %d created\n", id)

				return nil
			})
		},
	}

	getCmd = &cobra.Command{
		Use:   "get <id>",
		Short: "Show a package.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}

			return withClient(func(ctx context.Context, c *common.Client) error {
				p, err := c.Package(ctx, id)
				if err != nil {
					return err
				}

				_, _ = fmt.Fprint(cmd.OutOrStdout(), client.FormatPackage(p))

				return nil
			})
		},
	}
)

// packageOperation builds a command running an operation on one package.
func packageOperation(use, short, done string, operation func(c *common.Client) func(context.Context, uint64) error) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <id>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}

			return withClient(func(ctx context.Context, c *common.Client) error {
				if err := operation(c)(ctx, id); err != nil {
					return err
				}

				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "package %d %s\n", id, done)

				return nil
			})
		},
	}
}

// packageRequest builds a create request from arguments and flags.
func packageRequest(args []string, now time.Time) (*contract.PackageRequest, error) {
	id, err := parseID(args[0])
	if err != nil {
		return nil, err
	}

	amount, err := parseAmount(args[2])
	if err != nil {
		return nil, err
	}

	expiry := expiresAt
	if expiresIn > 0 {
		//nolint:gosec // Unix time after 1970.
		expiry = uint64(now.Add(expiresIn).Unix())
	}

	return &contract.PackageRequest{
		ID:        id,
		Recipient: domain.Identity(args[1]),
		Amount:    amount,
		Asset:     domain.Asset(args[3]),
		ExpiresAt: expiry,
		Metadata:  packageMetadata,
	}, nil
}

// parseID parses a package id.
func parseID(raw string) (uint64, error) {
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid package id %q: %w", raw, err)
	}

	return id, nil
}

// parseAmount parses an integer amount.
func parseAmount(raw string) (decimal.Decimal, error) {
	amount, err := domain.ParseAmount(raw)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid amount %q: %w", raw, err)
	}

	return amount, nil
}

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	fundCmd.Flags().StringVar(&fundFrom, "from", "", "funder identity, defaults to the calling identity")

	createCmd.Flags().DurationVar(&expiresIn, "expires-in", 0, "expire the package after this duration")
	createCmd.Flags().Uint64Var(&expiresAt, "expires-at", 0, "expire the package after this Unix time")
	createCmd.Flags().StringToStringVar(&packageMetadata, "meta", nil, "package attributes as key=value pairs")
	createCmd.MarkFlagsMutuallyExclusive("expires-in", "expires-at")

	rootCmd.AddCommand(
		fundCmd,
		createCmd,
		getCmd,
		packageOperation("claim", "Claim a package as its recipient.", "claimed",
			func(c *common.Client) func(context.Context, uint64) error { return c.Claim }),
		packageOperation("disburse", "Pay a package to its recipient (administrator only).", "disbursed",
			func(c *common.Client) func(context.Context, uint64) error { return c.Disburse }),
		packageOperation("revoke", "Cancel a package (administrator only).", "revoked",
			func(c *common.Client) func(context.Context, uint64) error { return c.Revoke }),
		packageOperation("refund", "Refund an expired or cancelled package (administrator only).", "refunded",
			func(c *common.Client) func(context.Context, uint64) error { return c.Refund }),
	)
}
