package contract

import (
	"context"

	"github.com/shopspring/decimal"

	domain "github.com/oshokin/aid-escrow/internal/domain/escrow"
)

// Clock returns the current ledger time.
type Clock interface {
	Now() uint64
}

// Authorizer fails unless id consented to the current call.
type Authorizer interface {
	RequireAuth(ctx context.Context, id domain.Identity) error
}

// Token moves value between custodial and external balances.
type Token interface {
	Transfer(ctx context.Context, asset domain.Asset, from, to domain.Identity, amount decimal.Decimal) error
	Balance(ctx context.Context, asset domain.Asset, holder domain.Identity) (decimal.Decimal, error)
}

// Emitter receives fire-and-forget notifications.
type Emitter interface {
	Emit(ctx context.Context, event domain.Event)
}
