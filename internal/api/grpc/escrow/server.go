package escrow

import (
	"context"
	"strconv"

	"github.com/shopspring/decimal"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/oshokin/aid-escrow/internal/codec"
	"github.com/oshokin/aid-escrow/internal/contract"
	domain "github.com/oshokin/aid-escrow/internal/domain/escrow"
)

// Service abstracts the business operations the transport layer depends on.
type Service interface {
	Init(ctx context.Context, admin domain.Identity) error
	Admin(ctx context.Context) (domain.Identity, error)
	Fund(ctx context.Context, asset domain.Asset, from domain.Identity, amount decimal.Decimal) error
	CreatePackage(ctx context.Context, req contract.PackageRequest) (uint64, error)
	Claim(ctx context.Context, id uint64) error
	Disburse(ctx context.Context, id uint64) error
	Revoke(ctx context.Context, id uint64) error
	Refund(ctx context.Context, id uint64) error
	Package(ctx context.Context, id uint64) (*domain.Package, error)
	Balance(ctx context.Context, asset domain.Asset, holder domain.Identity) (decimal.Decimal, error)
	Locked(ctx context.Context, asset domain.Asset) (decimal.Decimal, error)
	Available(ctx context.Context, asset domain.Asset) (decimal.Decimal, error)
	Mint(ctx context.Context, asset domain.Asset, to domain.Identity, amount decimal.Decimal) error
}

// Server implements the EscrowService gRPC API.
type Server struct {
	// service provides the business logic for escrow operations.
	service Service
}

// NewServer wires the provided service implementation into a gRPC handler.
func NewServer(service Service) *Server {
	return &Server{
		service: service,
	}
}

// Init installs the administrator named in the request.
func (s *Server) Init(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	admin, err := codec.String(req, FieldAdmin)
	if err != nil {
		return nil, badRequest(err)
	}

	return empty(s.service.Init(ctx, domain.Identity(admin)))
}

// Admin returns the administrator identity.
func (s *Server) Admin(ctx context.Context, _ *structpb.Struct) (*structpb.Struct, error) {
	admin, err := s.service.Admin(ctx)
	if err != nil {
		return nil, ToStatus(err)
	}

	return &structpb.Struct{Fields: map[string]*structpb.Value{
		FieldAdmin: structpb.NewStringValue(string(admin)),
	}}, nil
}

// Fund deposits into the pool.
func (s *Server) Fund(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	asset, amount, err := assetAmount(req)
	if err != nil {
		return nil, err
	}

	from, err := codec.String(req, FieldFrom)
	if err != nil {
		return nil, badRequest(err)
	}

	return empty(s.service.Fund(ctx, asset, domain.Identity(from), amount))
}

// CreatePackage commits part of the pool to a new package and returns its id.
func (s *Server) CreatePackage(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	packageRequest, err := toPackageRequest(req)
	if err != nil {
		return nil, err
	}

	id, err := s.service.CreatePackage(ctx, *packageRequest)
	if err != nil {
		return nil, ToStatus(err)
	}

	return idResponse(id), nil
}

// Claim pays a package to its recipient.
func (s *Server) Claim(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	return s.byID(ctx, req, s.service.Claim)
}

// Disburse pays a package to its recipient on the administrator's order.
func (s *Server) Disburse(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	return s.byID(ctx, req, s.service.Disburse)
}

// Revoke cancels a package.
func (s *Server) Revoke(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	return s.byID(ctx, req, s.service.Revoke)
}

// Refund returns an expired or cancelled package to the administrator.
func (s *Server) Refund(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	return s.byID(ctx, req, s.service.Refund)
}

// GetPackage returns a package record.
func (s *Server) GetPackage(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	id, err := codec.Uint64(req, codec.FieldID)
	if err != nil {
		return nil, badRequest(err)
	}

	p, err := s.service.Package(ctx, id)
	if err != nil {
		return nil, ToStatus(err)
	}

	return codec.PackageToStruct(p), nil
}

// Balance returns the holdings of a holder.
func (s *Server) Balance(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	asset, err := codec.String(req, codec.FieldAsset)
	if err != nil {
		return nil, badRequest(err)
	}

	holder, err := codec.String(req, FieldHolder)
	if err != nil {
		return nil, badRequest(err)
	}

	return amountResponse(s.service.Balance(ctx, domain.Asset(asset), domain.Identity(holder)))
}

// Locked returns the amount committed to open packages.
func (s *Server) Locked(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	asset, err := codec.String(req, codec.FieldAsset)
	if err != nil {
		return nil, badRequest(err)
	}

	return amountResponse(s.service.Locked(ctx, domain.Asset(asset)))
}

// Available returns the uncommitted part of the pool.
func (s *Server) Available(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	asset, err := codec.String(req, codec.FieldAsset)
	if err != nil {
		return nil, badRequest(err)
	}

	return amountResponse(s.service.Available(ctx, domain.Asset(asset)))
}

// Mint issues new units to a holder.
func (s *Server) Mint(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	asset, amount, err := assetAmount(req)
	if err != nil {
		return nil, err
	}

	to, err := codec.String(req, FieldTo)
	if err != nil {
		return nil, badRequest(err)
	}

	return empty(s.service.Mint(ctx, asset, domain.Identity(to), amount))
}

// byID runs an operation addressed by package id.
func (s *Server) byID(
	ctx context.Context,
	req *structpb.Struct,
	operation func(ctx context.Context, id uint64) error,
) (*structpb.Struct, error) {
	id, err := codec.Uint64(req, codec.FieldID)
	if err != nil {
		return nil, badRequest(err)
	}

	return empty(operation(ctx, id))
}

// toPackageRequest reads a create request.
func toPackageRequest(req *structpb.Struct) (*contract.PackageRequest, error) {
	id, err := codec.Uint64(req, codec.FieldID)
	if err != nil {
		return nil, badRequest(err)
	}

	recipient, err := codec.String(req, codec.FieldRecipient)
	if err != nil {
		return nil, badRequest(err)
	}

	asset, amount, err := assetAmount(req)
	if err != nil {
		return nil, err
	}

	expiresAt, err := codec.OptionalUint64(req, codec.FieldExpiresAt)
	if err != nil {
		return nil, badRequest(err)
	}

	metadata, err := codec.StringMap(req, codec.FieldMetadata)
	if err != nil {
		return nil, badRequest(err)
	}

	return &contract.PackageRequest{
		ID:        id,
		Recipient: domain.Identity(recipient),
		Amount:    amount,
		Asset:     domain.Asset(asset),
		ExpiresAt: expiresAt,
		Metadata:  metadata,
	}, nil
}

// assetAmount reads the asset and amount fields.
func assetAmount(req *structpb.Struct) (domain.Asset, decimal.Decimal, error) {
	asset, err := codec.String(req, codec.FieldAsset)
	if err != nil {
		return "", decimal.Zero, badRequest(err)
	}

	amount, err := codec.Amount(req, codec.FieldAmount)
	if err != nil {
		return "", decimal.Zero, badRequest(err)
	}

	return domain.Asset(asset), amount, nil
}

// empty converts the result of an operation without output.
func empty(err error) (*structpb.Struct, error) {
	if err != nil {
		return nil, ToStatus(err)
	}

	return new(structpb.Struct), nil
}

// idResponse wraps a package id.
func idResponse(id uint64) *structpb.Struct {
	return &structpb.Struct{Fields: map[string]*structpb.Value{
		codec.FieldID: structpb.NewStringValue(strconv.FormatUint(id, 10)),
	}}
}

// amountResponse wraps an amount result.
func amountResponse(amount decimal.Decimal, err error) (*structpb.Struct, error) {
	if err != nil {
		return nil, ToStatus(err)
	}

	return &structpb.Struct{Fields: map[string]*structpb.Value{
		codec.FieldAmount: structpb.NewStringValue(amount.String()),
	}}, nil
}

// badRequest reports a malformed request.
func badRequest(err error) error {
	return status.Error(codes.InvalidArgument, err.Error())
}
