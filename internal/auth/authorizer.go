package auth

import (
	"context"
	"slices"

	domain "github.com/oshokin/aid-escrow/internal/domain/escrow"
)

// signersKey is the private context key for proven identities.
type signersKey struct{}

// WithSigner returns a copy of ctx in which id has proven its consent.
func WithSigner(ctx context.Context, id domain.Identity) context.Context {
	signers := append(slices.Clone(Signers(ctx)), id)

	return context.WithValue(ctx, signersKey{}, signers)
}

// Signers returns every identity that proved consent in ctx.
func Signers(ctx context.Context) []domain.Identity {
	signers, _ := ctx.Value(signersKey{}).([]domain.Identity)

	return signers
}

// Signed authorizes an identity when it is among the context's signers.
type Signed struct{}

// RequireAuth fails with ErrNotAuthorized unless id signed the call.
func (Signed) RequireAuth(ctx context.Context, id domain.Identity) error {
	if slices.Contains(Signers(ctx), id) {
		return nil
	}

	return domain.ErrNotAuthorized
}

// AllowAll authorizes every identity. Use it only for tests and local tooling.
type AllowAll struct{}

// RequireAuth always succeeds.
func (AllowAll) RequireAuth(context.Context, domain.Identity) error {
	return nil
}
