package contract

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/oshokin/aid-escrow/internal/codec"
	domain "github.com/oshokin/aid-escrow/internal/domain/escrow"
	"github.com/oshokin/aid-escrow/internal/repository/ledger"
)

// packagePrefix namespaces package records.
const packagePrefix = "pkg:"

// packageKey builds the ledger key of a package.
func packageKey(id uint64) string {
	return packagePrefix + strconv.FormatUint(id, 10)
}

// packageExists reports whether id was ever used.
func (c *Contract) packageExists(ctx context.Context, id uint64) (bool, error) {
	found, err := c.store.Has(ctx, packageKey(id))
	if err != nil {
		return false, fmt.Errorf("check package %d: %w", id, err)
	}

	return found, nil
}

// loadPackage reads a package record.
func (c *Contract) loadPackage(ctx context.Context, id uint64) (*domain.Package, error) {
	raw, err := c.store.Get(ctx, packageKey(id))
	if errors.Is(err, ledger.ErrNotFound) {
		return nil, domain.ErrPackageNotFound
	}

	if err != nil {
		return nil, fmt.Errorf("load package %d: %w", id, err)
	}

	s, err := codec.Unmarshal(raw)
	if err != nil {
		return nil, fmt.Errorf("package %d: %w", id, err)
	}

	p, err := codec.PackageFromStruct(s)
	if err != nil {
		return nil, fmt.Errorf("package %d: %w", id, err)
	}

	return p, nil
}

// savePackage writes a package record.
func (c *Contract) savePackage(ctx context.Context, p *domain.Package) error {
	raw, err := codec.Marshal(codec.PackageToStruct(p))
	if err != nil {
		return err
	}

	if err = c.store.Set(ctx, packageKey(p.ID), raw); err != nil {
		return fmt.Errorf("store package %d: %w", p.ID, err)
	}

	return nil
}

// transition moves p to next and persists it.
func (c *Contract) transition(ctx context.Context, p *domain.Package, next domain.Status) error {
	if !p.Status.CanTransition(next) {
		return domain.ErrInvalidState
	}

	p.Status = next

	return c.savePackage(ctx, p)
}

// Package returns a package without changing any state. In particular an
// overdue package is reported as Created until an operation expires it.
func (c *Contract) Package(ctx context.Context, id uint64) (*domain.Package, error) {
	return c.loadPackage(ctx, id)
}
