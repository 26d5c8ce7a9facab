package contract

import (
	"context"
	"errors"
	"fmt"

	domain "github.com/oshokin/aid-escrow/internal/domain/escrow"
	"github.com/oshokin/aid-escrow/internal/repository/ledger"
)

// keyAdmin is the singleton key of the administrator identity.
const keyAdmin = "admin"

// Init sets the administrator. It can only succeed once.
func (c *Contract) Init(ctx context.Context, admin domain.Identity) error {
	found, err := c.store.Has(ctx, keyAdmin)
	if err != nil {
		return fmt.Errorf("check admin: %w", err)
	}

	if found {
		return domain.ErrAlreadyInitialized
	}

	if err = c.store.Set(ctx, keyAdmin, []byte(admin)); err != nil {
		return fmt.Errorf("store admin: %w", err)
	}

	return nil
}

// Admin returns the administrator identity.
func (c *Contract) Admin(ctx context.Context) (domain.Identity, error) {
	raw, err := c.store.Get(ctx, keyAdmin)
	if errors.Is(err, ledger.ErrNotFound) {
		return "", domain.ErrNotInitialized
	}

	if err != nil {
		return "", fmt.Errorf("load admin: %w", err)
	}

	return domain.Identity(raw), nil
}

// RequireAdmin returns the administrator after checking it authorized the call.
// Operations outside the contract that are reserved to the administrator use it too.
func (c *Contract) RequireAdmin(ctx context.Context) (domain.Identity, error) {
	admin, err := c.Admin(ctx)
	if err != nil {
		return "", err
	}

	if err = c.auth.RequireAuth(ctx, admin); err != nil {
		return "", err
	}

	return admin, nil
}
