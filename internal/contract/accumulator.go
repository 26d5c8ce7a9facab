package contract

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/oshokin/aid-escrow/internal/codec"
	domain "github.com/oshokin/aid-escrow/internal/domain/escrow"
	"github.com/oshokin/aid-escrow/internal/repository/ledger"
)

// keyLocked is the singleton key of the per-asset locked-funds map.
const keyLocked = "locked"

// lockedAmounts loads the whole accumulator. A missing record is empty.
func (c *Contract) lockedAmounts(ctx context.Context) (map[domain.Asset]decimal.Decimal, error) {
	raw, err := c.store.Get(ctx, keyLocked)
	if errors.Is(err, ledger.ErrNotFound) {
		return make(map[domain.Asset]decimal.Decimal), nil
	}

	if err != nil {
		return nil, fmt.Errorf("load locked funds: %w", err)
	}

	s, err := codec.Unmarshal(raw)
	if err != nil {
		return nil, err
	}

	return codec.AmountsFromStruct(s)
}

// saveLocked persists the whole accumulator.
func (c *Contract) saveLocked(ctx context.Context, amounts map[domain.Asset]decimal.Decimal) error {
	raw, err := codec.Marshal(codec.AmountsToStruct(amounts))
	if err != nil {
		return err
	}

	if err = c.store.Set(ctx, keyLocked, raw); err != nil {
		return fmt.Errorf("store locked funds: %w", err)
	}

	return nil
}

// Locked returns the amount of asset committed to open packages.
func (c *Contract) Locked(ctx context.Context, asset domain.Asset) (decimal.Decimal, error) {
	amounts, err := c.lockedAmounts(ctx)
	if err != nil {
		return decimal.Zero, err
	}

	return amounts[asset], nil
}

// lock adds amount to the asset's committed total.
func (c *Contract) lock(ctx context.Context, asset domain.Asset, amount decimal.Decimal) error {
	amounts, err := c.lockedAmounts(ctx)
	if err != nil {
		return err
	}

	amounts[asset] = amounts[asset].Add(amount)

	return c.saveLocked(ctx, amounts)
}

// unlock subtracts amount from the asset's committed total, never below zero.
func (c *Contract) unlock(ctx context.Context, asset domain.Asset, amount decimal.Decimal) error {
	amounts, err := c.lockedAmounts(ctx)
	if err != nil {
		return err
	}

	amounts[asset] = domain.SaturatingSub(amounts[asset], amount)

	return c.saveLocked(ctx, amounts)
}
