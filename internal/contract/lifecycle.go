package contract

import (
	"context"
	"fmt"
	"maps"

	"github.com/shopspring/decimal"

	domain "github.com/oshokin/aid-escrow/internal/domain/escrow"
)

// PackageRequest describes a package to create.
type PackageRequest struct {
	// ID is the caller-assigned package identifier.
	ID uint64
	// Recipient is the beneficiary.
	Recipient domain.Identity
	// Amount is the amount to commit.
	Amount decimal.Decimal
	// Asset is the asset of the amount.
	Asset domain.Asset
	// ExpiresAt is the ledger time after which the package expires, 0 for never.
	ExpiresAt uint64
	// Metadata holds optional free-form attributes.
	Metadata map[string]string
}

// Fund deposits amount of asset from a funder into the custodial pool.
// The accumulator is left untouched; only the pool balance grows.
func (c *Contract) Fund(ctx context.Context, asset domain.Asset, from domain.Identity, amount decimal.Decimal) error {
	if !domain.Positive(amount) {
		return domain.ErrInvalidAmount
	}

	if err := c.auth.RequireAuth(ctx, from); err != nil {
		return err
	}

	if err := c.token.Transfer(ctx, asset, from, c.custody, amount); err != nil {
		return fmt.Errorf("fund transfer: %w", err)
	}

	c.emit(ctx, domain.EventFunded, 0, from, asset, amount)

	return nil
}

// CreatePackage commits part of the available pool to a new package.
// It is the single admission point for new commitments.
func (c *Contract) CreatePackage(ctx context.Context, req PackageRequest) (uint64, error) {
	if _, err := c.RequireAdmin(ctx); err != nil {
		return 0, err
	}

	if !domain.Positive(req.Amount) {
		return 0, domain.ErrInvalidAmount
	}

	exists, err := c.packageExists(ctx, req.ID)
	if err != nil {
		return 0, err
	}

	if exists {
		return 0, domain.ErrPackageIDExists
	}

	if err = c.admit(ctx, req.Asset, req.Amount); err != nil {
		return 0, err
	}

	if err = c.lock(ctx, req.Asset, req.Amount); err != nil {
		return 0, err
	}

	metadata := maps.Clone(req.Metadata)
	if metadata == nil {
		metadata = make(map[string]string)
	}

	p := &domain.Package{
		ID:        req.ID,
		Recipient: req.Recipient,
		Amount:    req.Amount,
		Asset:     req.Asset,
		Status:    domain.StatusCreated,
		CreatedAt: c.clock.Now(),
		ExpiresAt: req.ExpiresAt,
		Metadata:  metadata,
	}

	if err = c.savePackage(ctx, p); err != nil {
		return 0, err
	}

	c.emit(ctx, domain.EventPackageCreated, p.ID, p.Recipient, p.Asset, p.Amount)

	return p.ID, nil
}

// Claim pays a package out to its recipient.
// An overdue package is moved to Expired and the call fails with
// ErrPackageExpired; that transition is meant to be kept.
func (c *Contract) Claim(ctx context.Context, id uint64) error {
	p, err := c.loadPackage(ctx, id)
	if err != nil {
		return err
	}

	if p.Status != domain.StatusCreated {
		return domain.ErrPackageNotActive
	}

	if c.checkExpiry(p) == nowExpired {
		if err = c.expire(ctx, p, c.expiryAccounting == ReleaseOnExpiry); err != nil {
			return err
		}

		return domain.ErrPackageExpired
	}

	if err = c.auth.RequireAuth(ctx, p.Recipient); err != nil {
		return err
	}

	return c.settle(ctx, p, domain.EventClaimed, p.Recipient)
}

// Disburse lets the administrator force the payout of a package to its
// recipient. Expiry is not checked.
func (c *Contract) Disburse(ctx context.Context, id uint64) error {
	admin, err := c.RequireAdmin(ctx)
	if err != nil {
		return err
	}

	p, err := c.loadPackage(ctx, id)
	if err != nil {
		return err
	}

	if p.Status != domain.StatusCreated {
		return domain.ErrPackageNotActive
	}

	return c.settle(ctx, p, domain.EventDisbursed, admin)
}

// settle marks p Claimed and unlocks it before transferring the funds, so a
// reentrant call from the transfer sees a package that is no longer Created.
func (c *Contract) settle(ctx context.Context, p *domain.Package, eventType domain.EventType, actor domain.Identity) error {
	if err := c.transition(ctx, p, domain.StatusClaimed); err != nil {
		return err
	}

	if err := c.unlock(ctx, p.Asset, p.Amount); err != nil {
		return err
	}

	if err := c.token.Transfer(ctx, p.Asset, c.custody, p.Recipient, p.Amount); err != nil {
		return fmt.Errorf("payout of package %d: %w", p.ID, err)
	}

	c.emit(ctx, eventType, p.ID, actor, p.Asset, p.Amount)

	return nil
}

// Revoke cancels a Created package and returns its amount to the pool.
// No funds leave custody.
func (c *Contract) Revoke(ctx context.Context, id uint64) error {
	admin, err := c.RequireAdmin(ctx)
	if err != nil {
		return err
	}

	p, err := c.loadPackage(ctx, id)
	if err != nil {
		return err
	}

	if p.Status != domain.StatusCreated {
		return domain.ErrInvalidState
	}

	if err = c.transition(ctx, p, domain.StatusCancelled); err != nil {
		return err
	}

	if err = c.unlock(ctx, p.Asset, p.Amount); err != nil {
		return err
	}

	c.emit(ctx, domain.EventRevoked, p.ID, admin, p.Asset, p.Amount)

	return nil
}

// Refund sends the amount of an Expired or Cancelled package to the
// administrator. A Created package that is past expiry is expired first;
// one that is not must be revoked instead.
func (c *Contract) Refund(ctx context.Context, id uint64) error {
	admin, err := c.RequireAdmin(ctx)
	if err != nil {
		return err
	}

	p, err := c.loadPackage(ctx, id)
	if err != nil {
		return err
	}

	switch p.Status {
	case domain.StatusCreated:
		if c.checkExpiry(p) == stillActive {
			return domain.ErrInvalidState
		}

		// Refund's own expiry detection always releases.
		if err = c.expire(ctx, p, true); err != nil {
			return err
		}
	case domain.StatusClaimed, domain.StatusRefunded:
		return domain.ErrInvalidState
	case domain.StatusExpired, domain.StatusCancelled:
		// Already out of Created, so nothing is unlocked a second time.
	default:
		return domain.ErrInvalidState
	}

	if err = c.transition(ctx, p, domain.StatusRefunded); err != nil {
		return err
	}

	if err = c.token.Transfer(ctx, p.Asset, c.custody, admin, p.Amount); err != nil {
		return fmt.Errorf("refund of package %d: %w", p.ID, err)
	}

	c.emit(ctx, domain.EventRefunded, p.ID, admin, p.Asset, p.Amount)

	return nil
}
