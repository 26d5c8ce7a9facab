package escrow

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	"github.com/oshokin/aid-escrow/internal/auth"
	domain "github.com/oshokin/aid-escrow/internal/domain/escrow"
	"github.com/oshokin/aid-escrow/internal/logger"
)

// Metadata keys carrying the caller's credentials.
const (
	MetadataIdentity = "x-escrow-identity"
	MetadataKey      = "x-escrow-key"
)

// Verifier checks an identity's API key.
type Verifier interface {
	Verify(id domain.Identity, key string) error
}

// AuthInterceptor verifies the credentials attached to a call. A verified
// identity becomes a signer of the call; a call without credentials proceeds
// unsigned and fails later if an operation needs a signature.
func AuthInterceptor(verifier Verifier) grpc.UnaryServerInterceptor {
	return func(
		ctx context.Context,
		req any,
		info *grpc.UnaryServerInfo,
		handler grpc.UnaryHandler,
	) (any, error) {
		ctx = logger.WithKV(ctx, "method", info.FullMethod)

		identity, key, found := credentialsFrom(ctx)
		if !found {
			return handler(ctx, req)
		}

		if err := verifier.Verify(identity, key); err != nil {
			logger.WarnKV(ctx, "Rejected credentials", "identity", identity, "error", err)

			return nil, status.Error(codes.Unauthenticated, "invalid credentials")
		}

		ctx = logger.WithKV(ctx, "identity", identity)

		return handler(auth.WithSigner(ctx, identity), req)
	}
}

// credentialsFrom reads the identity and key from incoming metadata.
func credentialsFrom(ctx context.Context) (domain.Identity, string, bool) {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return "", "", false
	}

	identities := md.Get(MetadataIdentity)
	if len(identities) == 0 || identities[0] == "" {
		return "", "", false
	}

	var key string
	if keys := md.Get(MetadataKey); len(keys) > 0 {
		key = keys[0]
	}

	return domain.Identity(identities[0]), key, true
}
