package contract

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	domain "github.com/oshokin/aid-escrow/internal/domain/escrow"
)

// Available returns the custodial balance of asset minus its locked total.
func (c *Contract) Available(ctx context.Context, asset domain.Asset) (decimal.Decimal, error) {
	balance, err := c.token.Balance(ctx, asset, c.custody)
	if err != nil {
		return decimal.Zero, fmt.Errorf("custodial balance: %w", err)
	}

	locked, err := c.Locked(ctx, asset)
	if err != nil {
		return decimal.Zero, err
	}

	return balance.Sub(locked), nil
}

// admit fails with ErrInsufficientFunds unless amount fits the available pool.
func (c *Contract) admit(ctx context.Context, asset domain.Asset, amount decimal.Decimal) error {
	available, err := c.Available(ctx, asset)
	if err != nil {
		return err
	}

	if available.LessThan(amount) {
		return domain.ErrInsufficientFunds
	}

	return nil
}
