package contract

import (
	"context"

	domain "github.com/oshokin/aid-escrow/internal/domain/escrow"
)

// expiryOutcome is the result of the lazy expiry check.
type expiryOutcome int

const (
	// stillActive means the package may still be settled.
	stillActive expiryOutcome = iota
	// nowExpired means the package is past its expiry and must leave Created.
	nowExpired
)

// checkExpiry classifies a Created package against the current ledger time.
func (c *Contract) checkExpiry(p *domain.Package) expiryOutcome {
	if p.PastExpiry(c.clock.Now()) {
		return nowExpired
	}

	return stillActive
}

// expire moves a Created package to Expired and, when release is set, returns
// its amount to the available pool.
func (c *Contract) expire(ctx context.Context, p *domain.Package, release bool) error {
	if err := c.transition(ctx, p, domain.StatusExpired); err != nil {
		return err
	}

	if !release {
		return nil
	}

	return c.unlock(ctx, p.Asset, p.Amount)
}
