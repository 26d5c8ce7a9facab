package contract

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	domain "github.com/oshokin/aid-escrow/internal/domain/escrow"
	"github.com/oshokin/aid-escrow/internal/repository/ledger"
)

// ExpiryAccounting selects how a transition into Expired treats locked funds.
type ExpiryAccounting int

const (
	// ReleaseOnExpiry unlocks the package amount on every transition into
	// Expired, whichever operation detects it.
	ReleaseOnExpiry ExpiryAccounting = iota
	// LegacyExpiry unlocks only when refund detects the expiry itself. A package
	// expired by a claim attempt then keeps its amount locked forever.
	LegacyExpiry
)

// Deps are the collaborators of one contract call.
type Deps struct {
	// Store holds admin, accumulator and package records.
	Store ledger.Store
	// Clock supplies ledger time.
	Clock Clock
	// Auth checks identity consent.
	Auth Authorizer
	// Token executes asset transfers and reports balances.
	Token Token
	// Events receives notifications.
	Events Emitter
	// Custody is the holder identity of the pooled funds.
	Custody domain.Identity
}

// Option tunes a Contract.
type Option func(*Contract)

// WithExpiryAccounting selects the expiry accounting mode.
func WithExpiryAccounting(mode ExpiryAccounting) Option {
	return func(c *Contract) {
		c.expiryAccounting = mode
	}
}

// Contract is the escrow engine bound to one call's collaborators.
type Contract struct {
	// store holds every record of the contract.
	store ledger.Store
	// clock supplies ledger time.
	clock Clock
	// auth checks identity consent.
	auth Authorizer
	// token moves funds in and out of custody.
	token Token
	// events receives notifications.
	events Emitter
	// custody is the pool's holder identity.
	custody domain.Identity
	// expiryAccounting selects how expiry releases locked funds.
	expiryAccounting ExpiryAccounting
}

// New binds a contract to deps.
func New(deps Deps, opts ...Option) *Contract {
	c := &Contract{
		store:   deps.Store,
		clock:   deps.Clock,
		auth:    deps.Auth,
		token:   deps.Token,
		events:  deps.Events,
		custody: deps.Custody,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// emit publishes a notification stamped with a fresh id and the ledger time.
func (c *Contract) emit(
	ctx context.Context,
	eventType domain.EventType,
	packageID uint64,
	actor domain.Identity,
	asset domain.Asset,
	amount decimal.Decimal,
) {
	if c.events == nil {
		return
	}

	c.events.Emit(ctx, domain.Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		PackageID: packageID,
		Actor:     actor,
		Asset:     asset,
		Amount:    amount,
		Timestamp: c.clock.Now(),
	})
}
