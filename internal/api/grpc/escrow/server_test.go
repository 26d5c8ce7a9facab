package escrow

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/oshokin/aid-escrow/internal/codec"
	"github.com/oshokin/aid-escrow/internal/contract"
	domain "github.com/oshokin/aid-escrow/internal/domain/escrow"
)

// fakeService implements the escrow Service interface for unit testing the transport.
type fakeService struct {
	// err is returned by every operation when set.
	err error
	// created holds the last create request.
	created *contract.PackageRequest
	// claimed holds the last claimed package id.
	claimed uint64
	// funded holds the last funded amount.
	funded decimal.Decimal
	// packages are returned by Package.
	packages map[uint64]*domain.Package
}

func (f *fakeService) Init(context.Context, domain.Identity) error { return f.err }

func (f *fakeService) Admin(context.Context) (domain.Identity, error) { return "admin", f.err }

func (f *fakeService) Fund(_ context.Context, _ domain.Asset, _ domain.Identity, amount decimal.Decimal) error {
	f.funded = amount

	return f.err
}

func (f *fakeService) CreatePackage(_ context.Context, req contract.PackageRequest) (uint64, error) {
	f.created = &req

	return req.ID, f.err
}

func (f *fakeService) Claim(_ context.Context, id uint64) error {
	f.claimed = id

	return f.err
}

func (f *fakeService) Disburse(context.Context, uint64) error { return f.err }

func (f *fakeService) Revoke(context.Context, uint64) error { return f.err }

func (f *fakeService) Refund(context.Context, uint64) error { return f.err }

func (f *fakeService) Package(_ context.Context, id uint64) (*domain.Package, error) {
	if f.err != nil {
		return nil, f.err
	}

	p, ok := f.packages[id]
	if !ok {
		return nil, domain.ErrPackageNotFound
	}

	return p, nil
}

func (f *fakeService) Balance(context.Context, domain.Asset, domain.Identity) (decimal.Decimal, error) {
	return decimal.NewFromInt(42), f.err
}

func (f *fakeService) Locked(context.Context, domain.Asset) (decimal.Decimal, error) {
	return decimal.NewFromInt(7), f.err
}

func (f *fakeService) Available(context.Context, domain.Asset) (decimal.Decimal, error) {
	return decimal.NewFromInt(35), f.err
}

func (f *fakeService) Mint(context.Context, domain.Asset, domain.Identity, decimal.Decimal) error {
	return f.err
}

// request builds a Struct request from plain values.
func request(t *testing.T, fields map[string]any) *structpb.Struct {
	t.Helper()

	s, err := structpb.NewStruct(fields)
	require.NoError(t, err)

	return s
}

// TestServer_CreatePackage checks request decoding and the id response.
func TestServer_CreatePackage(t *testing.T) {
	t.Parallel()

	svc := new(fakeService)
	s := NewServer(svc)

	response, err := s.CreatePackage(context.Background(), request(t, map[string]any{
		codec.FieldID:        "101",
		codec.FieldRecipient: "alice",
		codec.FieldAmount:    "1000",
		codec.FieldAsset:     "USDC",
		codec.FieldExpiresAt: 86400,
		codec.FieldMetadata:  map[string]any{"region": "north"},
	}))
	require.NoError(t, err)
	require.Equal(t, "101", response.GetFields()[codec.FieldID].GetStringValue())

	require.NotNil(t, svc.created)
	require.Equal(t, uint64(101), svc.created.ID)
	require.Equal(t, domain.Identity("alice"), svc.created.Recipient)
	require.True(t, svc.created.Amount.Equal(decimal.NewFromInt(1000)))
	require.Equal(t, uint64(86400), svc.created.ExpiresAt)
	require.Equal(t, "north", svc.created.Metadata["region"])
}

// TestServer_Validation ensures malformed requests return InvalidArgument errors.
func TestServer_Validation(t *testing.T) {
	t.Parallel()

	s := NewServer(new(fakeService))
	ctx := context.Background()

	_, err := s.Claim(ctx, request(t, map[string]any{}))
	require.Equal(t, codes.InvalidArgument, status.Code(err))

	_, err = s.Claim(ctx, request(t, map[string]any{codec.FieldID: "-1"}))
	require.Equal(t, codes.InvalidArgument, status.Code(err))

	_, err = s.Fund(ctx, request(t, map[string]any{
		codec.FieldAsset: "USDC", codec.FieldAmount: "1.5", FieldFrom: "admin",
	}))
	require.Equal(t, codes.InvalidArgument, status.Code(err))

	_, err = s.Fund(ctx, request(t, map[string]any{codec.FieldAsset: "USDC", codec.FieldAmount: "10"}))
	require.Equal(t, codes.InvalidArgument, status.Code(err))

	_, err = s.Balance(ctx, request(t, map[string]any{codec.FieldAsset: "USDC"}))
	require.Equal(t, codes.InvalidArgument, status.Code(err))
}

// TestServer_DomainErrors maps service failures to statuses with details.
func TestServer_DomainErrors(t *testing.T) {
	t.Parallel()

	s := NewServer(&fakeService{err: domain.ErrPackageNotActive})

	_, err := s.Claim(context.Background(), request(t, map[string]any{codec.FieldID: "3"}))
	require.Equal(t, codes.FailedPrecondition, status.Code(err))
	require.ErrorIs(t, FromStatus(err), domain.ErrPackageNotActive)
}

// TestServer_Queries covers the read operations.
func TestServer_Queries(t *testing.T) {
	t.Parallel()

	svc := &fakeService{packages: map[uint64]*domain.Package{
		5: {
			ID:        5,
			Recipient: "bob",
			Amount:    decimal.NewFromInt(250),
			Asset:     "USDC",
			Status:    domain.StatusExpired,
			Metadata:  map[string]string{},
		},
	}}
	s := NewServer(svc)
	ctx := context.Background()

	response, err := s.GetPackage(ctx, request(t, map[string]any{codec.FieldID: 5}))
	require.NoError(t, err)

	p, err := codec.PackageFromStruct(response)
	require.NoError(t, err)
	require.Equal(t, domain.StatusExpired, p.Status)
	require.Equal(t, domain.Identity("bob"), p.Recipient)

	_, err = s.GetPackage(ctx, request(t, map[string]any{codec.FieldID: 6}))
	require.Equal(t, codes.NotFound, status.Code(err))

	response, err = s.Balance(ctx, request(t, map[string]any{codec.FieldAsset: "USDC", FieldHolder: "bob"}))
	require.NoError(t, err)
	require.Equal(t, "42", response.GetFields()[codec.FieldAmount].GetStringValue())

	response, err = s.Locked(ctx, request(t, map[string]any{codec.FieldAsset: "USDC"}))
	require.NoError(t, err)
	require.Equal(t, "7", response.GetFields()[codec.FieldAmount].GetStringValue())

	response, err = s.Available(ctx, request(t, map[string]any{codec.FieldAsset: "USDC"}))
	require.NoError(t, err)
	require.Equal(t, "35", response.GetFields()[codec.FieldAmount].GetStringValue())

	response, err = s.Admin(ctx, new(structpb.Struct))
	require.NoError(t, err)
	require.Equal(t, "admin", response.GetFields()[FieldAdmin].GetStringValue())
}
