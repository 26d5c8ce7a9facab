package server

import (
	"context"
	"fmt"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/oshokin/aid-escrow/internal/contract"
	domain "github.com/oshokin/aid-escrow/internal/domain/escrow"
	"github.com/oshokin/aid-escrow/internal/events"
	"github.com/oshokin/aid-escrow/internal/logger"
	"github.com/oshokin/aid-escrow/internal/repository/ledger"
	"github.com/oshokin/aid-escrow/internal/repository/token"
)

// params are the long-lived collaborators of a service.
type params struct {
	// store persists every record.
	store ledger.Store
	// clock supplies ledger time.
	clock contract.Clock
	// auth checks identity consent.
	auth contract.Authorizer
	// sink receives events of committed calls.
	sink events.Sink
	// custody is the holder identity of the pool.
	custody domain.Identity
	// expiryAccounting is passed to every contract.
	expiryAccounting contract.ExpiryAccounting
}

// service runs every escrow operation as one serialized, all-or-nothing call.
// It is unexported to keep the transport decoupled from the implementation.
type service struct {
	params

	// mu serializes mutating calls and lets reads run together.
	mu sync.RWMutex
}

// call is one operation bound to a fresh contract and its bank.
type call func(ctx context.Context, c *contract.Contract, bank *token.Bank) error

// newService creates a service over p.
func newService(p params) *service {
	if p.sink == nil {
		p.sink = events.Log{}
	}

	return &service{params: p}
}

// bind builds a contract whose writes and events go to tx and buffer.
func (s *service) bind(tx *ledger.Tx, buffer *events.Buffer) (*contract.Contract, *token.Bank) {
	bank := token.NewBank(tx)

	c := contract.New(contract.Deps{
		Store:   tx,
		Clock:   s.clock,
		Auth:    s.auth,
		Token:   bank,
		Events:  buffer,
		Custody: s.custody,
	}, contract.WithExpiryAccounting(s.expiryAccounting))

	return c, bank
}

// invoke runs fn in a transaction. Writes are committed when fn succeeds or
// fails with an error that keeps its effects, and discarded otherwise.
// Buffered events reach the sink only after a successful commit.
func (s *service) invoke(ctx context.Context, operation string, fn call) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	ctx = logger.WithKV(ctx, "operation", operation)

	tx := ledger.Begin(s.store)
	buffer := new(events.Buffer)
	c, bank := s.bind(tx, buffer)

	callErr := fn(ctx, c, bank)
	if callErr != nil && !domain.KeepsEffects(callErr) {
		tx.Discard()
		buffer.Discard()
		logger.WarnKV(ctx, "Escrow call rejected", "error", callErr)

		return callErr
	}

	writes := tx.Pending()
	if err := tx.Commit(ctx); err != nil {
		buffer.Discard()
		logger.ErrorKV(ctx, "Failed to commit escrow call", "error", err)

		return fmt.Errorf("commit %s: %w", operation, err)
	}

	buffer.Flush(ctx, s.sink)

	if callErr != nil {
		logger.WarnKV(ctx, "Escrow call failed with kept effects", "writes", writes, "error", callErr)

		return callErr
	}

	logger.DebugKV(ctx, "Escrow call committed", "writes", writes)

	return nil
}

// view runs a read-only fn. Anything it writes is dropped.
func (s *service) view(ctx context.Context, fn call) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	tx := ledger.Begin(s.store)
	defer tx.Discard()

	c, bank := s.bind(tx, new(events.Buffer))

	return fn(ctx, c, bank)
}

// Init installs the administrator.
func (s *service) Init(ctx context.Context, admin domain.Identity) error {
	return s.invoke(ctx, "init", func(ctx context.Context, c *contract.Contract, _ *token.Bank) error {
		return c.Init(ctx, admin)
	})
}

// Admin returns the administrator identity.
func (s *service) Admin(ctx context.Context) (domain.Identity, error) {
	var admin domain.Identity

	err := s.view(ctx, func(ctx context.Context, c *contract.Contract, _ *token.Bank) error {
		var err error

		admin, err = c.Admin(ctx)

		return err
	})

	return admin, err
}

// Fund moves amount from a funder into the pool.
func (s *service) Fund(ctx context.Context, asset domain.Asset, from domain.Identity, amount decimal.Decimal) error {
	return s.invoke(ctx, "fund", func(ctx context.Context, c *contract.Contract, _ *token.Bank) error {
		return c.Fund(ctx, asset, from, amount)
	})
}

// CreatePackage commits part of the pool to a new package.
func (s *service) CreatePackage(ctx context.Context, req contract.PackageRequest) (uint64, error) {
	var id uint64

	err := s.invoke(ctx, "create_package", func(ctx context.Context, c *contract.Contract, _ *token.Bank) error {
		var err error

		id, err = c.CreatePackage(ctx, req)

		return err
	})

	return id, err
}

// Claim pays a package to its recipient.
func (s *service) Claim(ctx context.Context, id uint64) error {
	return s.invoke(ctx, "claim", func(ctx context.Context, c *contract.Contract, _ *token.Bank) error {
		return c.Claim(ctx, id)
	})
}

// Disburse pays a package to its recipient on the administrator's order.
func (s *service) Disburse(ctx context.Context, id uint64) error {
	return s.invoke(ctx, "disburse", func(ctx context.Context, c *contract.Contract, _ *token.Bank) error {
		return c.Disburse(ctx, id)
	})
}

// Revoke cancels a package.
func (s *service) Revoke(ctx context.Context, id uint64) error {
	return s.invoke(ctx, "revoke", func(ctx context.Context, c *contract.Contract, _ *token.Bank) error {
		return c.Revoke(ctx, id)
	})
}

// Refund returns an expired or cancelled package to the administrator.
func (s *service) Refund(ctx context.Context, id uint64) error {
	return s.invoke(ctx, "refund", func(ctx context.Context, c *contract.Contract, _ *token.Bank) error {
		return c.Refund(ctx, id)
	})
}

// Package returns a package without changing it.
func (s *service) Package(ctx context.Context, id uint64) (*domain.Package, error) {
	var p *domain.Package

	err := s.view(ctx, func(ctx context.Context, c *contract.Contract, _ *token.Bank) error {
		var err error

		p, err = c.Package(ctx, id)

		return err
	})

	return p, err
}

// Balance returns the holdings of holder in asset.
func (s *service) Balance(ctx context.Context, asset domain.Asset, holder domain.Identity) (decimal.Decimal, error) {
	return s.amount(ctx, func(ctx context.Context, _ *contract.Contract, bank *token.Bank) (decimal.Decimal, error) {
		return bank.Balance(ctx, asset, holder)
	})
}

// Locked returns the amount of asset committed to open packages.
func (s *service) Locked(ctx context.Context, asset domain.Asset) (decimal.Decimal, error) {
	return s.amount(ctx, func(ctx context.Context, c *contract.Contract, _ *token.Bank) (decimal.Decimal, error) {
		return c.Locked(ctx, asset)
	})
}

// Available returns the uncommitted part of the pool.
func (s *service) Available(ctx context.Context, asset domain.Asset) (decimal.Decimal, error) {
	return s.amount(ctx, func(ctx context.Context, c *contract.Contract, _ *token.Bank) (decimal.Decimal, error) {
		return c.Available(ctx, asset)
	})
}

// amount runs a read-only query returning one amount.
func (s *service) amount(
	ctx context.Context,
	fn func(ctx context.Context, c *contract.Contract, bank *token.Bank) (decimal.Decimal, error),
) (decimal.Decimal, error) {
	result := decimal.Zero

	err := s.view(ctx, func(ctx context.Context, c *contract.Contract, bank *token.Bank) error {
		var err error

		result, err = fn(ctx, c, bank)

		return err
	})

	return result, err
}

// Mint issues new units of asset to a holder. Only the administrator may mint.
func (s *service) Mint(ctx context.Context, asset domain.Asset, to domain.Identity, amount decimal.Decimal) error {
	return s.invoke(ctx, "mint", func(ctx context.Context, c *contract.Contract, bank *token.Bank) error {
		if _, err := c.RequireAdmin(ctx); err != nil {
			return err
		}

		if !domain.Positive(amount) {
			return domain.ErrInvalidAmount
		}

		return bank.Mint(ctx, asset, to, amount)
	})
}
