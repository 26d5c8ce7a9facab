package token

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	domain "github.com/oshokin/aid-escrow/internal/domain/escrow"
	"github.com/oshokin/aid-escrow/internal/repository/ledger"
)

// balancePrefix namespaces balance keys in the ledger store.
const balancePrefix = "bal:"

var (
	// ErrInsufficientBalance is returned when the sender holds less than the amount.
	ErrInsufficientBalance = errors.New("insufficient balance")
	// ErrInvalidAmount is returned for non-positive or out-of-range amounts.
	ErrInvalidAmount = errors.New("invalid transfer amount")
)

// Bank moves asset balances between holders.
type Bank struct {
	// store holds the balances.
	store ledger.Store
}

// NewBank creates a bank over store.
func NewBank(store ledger.Store) *Bank {
	return &Bank{store: store}
}

// Balance returns the amount of asset held by holder.
func (b *Bank) Balance(ctx context.Context, asset domain.Asset, holder domain.Identity) (decimal.Decimal, error) {
	raw, err := b.store.Get(ctx, balanceKey(asset, holder))
	if errors.Is(err, ledger.ErrNotFound) {
		return decimal.Zero, nil
	}

	if err != nil {
		return decimal.Zero, fmt.Errorf("load balance: %w", err)
	}

	var amount decimal.Decimal
	if err = amount.UnmarshalText(raw); err != nil {
		return decimal.Zero, fmt.Errorf("decode balance of %s in %s: %w", holder, asset, err)
	}

	return amount, nil
}

// Transfer moves amount of asset from one holder to another.
func (b *Bank) Transfer(ctx context.Context, asset domain.Asset, from, to domain.Identity, amount decimal.Decimal) error {
	if !domain.Positive(amount) {
		return fmt.Errorf("%w: %s", ErrInvalidAmount, amount)
	}

	fromBalance, err := b.Balance(ctx, asset, from)
	if err != nil {
		return err
	}

	if fromBalance.LessThan(amount) {
		return fmt.Errorf("%w: %s holds %s %s, needs %s", ErrInsufficientBalance, from, fromBalance, asset, amount)
	}

	if from == to {
		return nil
	}

	toBalance, err := b.Balance(ctx, asset, to)
	if err != nil {
		return err
	}

	if err = b.setBalance(ctx, asset, from, fromBalance.Sub(amount)); err != nil {
		return err
	}

	return b.setBalance(ctx, asset, to, toBalance.Add(amount))
}

// Mint creates amount of asset out of thin air and credits it to holder.
func (b *Bank) Mint(ctx context.Context, asset domain.Asset, to domain.Identity, amount decimal.Decimal) error {
	if !domain.Positive(amount) {
		return fmt.Errorf("%w: %s", ErrInvalidAmount, amount)
	}

	balance, err := b.Balance(ctx, asset, to)
	if err != nil {
		return err
	}

	return b.setBalance(ctx, asset, to, balance.Add(amount))
}

// setBalance stores a holder's balance, rejecting values beyond 128 bits.
func (b *Bank) setBalance(ctx context.Context, asset domain.Asset, holder domain.Identity, amount decimal.Decimal) error {
	if err := domain.CheckAmount(amount); err != nil {
		return fmt.Errorf("balance of %s in %s: %w", holder, asset, err)
	}

	raw, err := amount.MarshalText()
	if err != nil {
		return fmt.Errorf("encode balance: %w", err)
	}

	if err = b.store.Set(ctx, balanceKey(asset, holder), raw); err != nil {
		return fmt.Errorf("store balance: %w", err)
	}

	return nil
}

// balanceKey builds the ledger key of a holder's balance.
func balanceKey(asset domain.Asset, holder domain.Identity) string {
	return balancePrefix + string(asset) + ":" + string(holder)
}
