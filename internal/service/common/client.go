//nolint:revive,nolintlint // Package name "common" is intentional for shared helpers.
package common

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/protobuf/types/known/structpb"

	api "github.com/oshokin/aid-escrow/internal/api/grpc/escrow"
	"github.com/oshokin/aid-escrow/internal/codec"
	"github.com/oshokin/aid-escrow/internal/config"
	"github.com/oshokin/aid-escrow/internal/contract"
	domain "github.com/oshokin/aid-escrow/internal/domain/escrow"
)

// Client calls the escrow service on behalf of one identity.
type Client struct {
	// conn is the underlying gRPC connection to the escrow server.
	conn *grpc.ClientConn

	// identity signs every call when set.
	identity domain.Identity
	// key is the API key proving identity.
	key string
	// callTimeout is the default timeout for individual RPC calls.
	callTimeout time.Duration
}

// Option configures client behaviour.
type Option func(*Client)

// WithCallTimeout sets a default timeout for service calls.
func WithCallTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.callTimeout = timeout
		}
	}
}

// WithCredentials signs every call as identity using key.
func WithCredentials(identity domain.Identity, key string) Option {
	return func(c *Client) {
		c.identity = identity
		c.key = key
	}
}

var (
	// errAddressRequired is returned when a required address value is missing.
	errAddressRequired = errors.New("address must be provided")
	// errNotConnected is returned when a call is made without a connection.
	errNotConnected = errors.New("client is not connected")
)

// Dial establishes a gRPC connection to the escrow server.
// Note: this uses insecure transport credentials; deploy on a trusted network
// or terminate TLS in a proxy, since API keys travel in call metadata.
func Dial(_ context.Context, address string, opts ...Option) (*Client, error) {
	if address == "" {
		return nil, errAddressRequired
	}

	conn, err := grpc.NewClient(address, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, fmt.Errorf("dial escrow server: %w", err)
	}

	client := &Client{
		conn:        conn,
		callTimeout: config.DefaultTimeout,
	}

	for _, opt := range opts {
		opt(client)
	}

	return client, nil
}

// Close releases the underlying gRPC connection.
func (c *Client) Close() error {
	if c == nil || c.conn == nil {
		return nil
	}

	return c.conn.Close()
}

// Identity returns the identity the client signs as.
func (c *Client) Identity() domain.Identity {
	return c.identity
}

// Init installs admin as the administrator.
func (c *Client) Init(ctx context.Context, admin domain.Identity) error {
	_, err := c.invoke(ctx, api.MethodInit, fields(api.FieldAdmin, string(admin)))

	return err
}

// Admin returns the administrator identity.
func (c *Client) Admin(ctx context.Context) (domain.Identity, error) {
	response, err := c.invoke(ctx, api.MethodAdmin, new(structpb.Struct))
	if err != nil {
		return "", err
	}

	admin, err := codec.String(response, api.FieldAdmin)
	if err != nil {
		return "", fmt.Errorf("admin response: %w", err)
	}

	return domain.Identity(admin), nil
}

// Fund moves amount of asset from a funder into the pool.
func (c *Client) Fund(ctx context.Context, asset domain.Asset, from domain.Identity, amount decimal.Decimal) error {
	_, err := c.invoke(ctx, api.MethodFund, fields(
		codec.FieldAsset, string(asset),
		api.FieldFrom, string(from),
		codec.FieldAmount, amount.String(),
	))

	return err
}

// CreatePackage commits part of the pool to a new package.
func (c *Client) CreatePackage(ctx context.Context, req contract.PackageRequest) (uint64, error) {
	request := fields(
		codec.FieldID, strconv.FormatUint(req.ID, 10),
		codec.FieldRecipient, string(req.Recipient),
		codec.FieldAmount, req.Amount.String(),
		codec.FieldAsset, string(req.Asset),
		codec.FieldExpiresAt, strconv.FormatUint(req.ExpiresAt, 10),
	)

	if len(req.Metadata) > 0 {
		metadataFields := make(map[string]*structpb.Value, len(req.Metadata))
		for key, value := range req.Metadata {
			metadataFields[key] = structpb.NewStringValue(value)
		}

		request.Fields[codec.FieldMetadata] = structpb.NewStructValue(&structpb.Struct{Fields: metadataFields})
	}

	response, err := c.invoke(ctx, api.MethodCreatePackage, request)
	if err != nil {
		return 0, err
	}

	id, err := codec.Uint64(response, codec.FieldID)
	if err != nil {
		return 0, fmt.Errorf("create package response: %w", err)
	}

	return id, nil
}

// Claim pays a package to its recipient. The client must sign as the recipient.
func (c *Client) Claim(ctx context.Context, id uint64) error {
	return c.byID(ctx, api.MethodClaim, id)
}

// Disburse pays a package to its recipient on the administrator's order.
func (c *Client) Disburse(ctx context.Context, id uint64) error {
	return c.byID(ctx, api.MethodDisburse, id)
}

// Revoke cancels a package.
func (c *Client) Revoke(ctx context.Context, id uint64) error {
	return c.byID(ctx, api.MethodRevoke, id)
}

// Refund returns an expired or cancelled package to the administrator.
func (c *Client) Refund(ctx context.Context, id uint64) error {
	return c.byID(ctx, api.MethodRefund, id)
}

// Package returns a package record.
func (c *Client) Package(ctx context.Context, id uint64) (*domain.Package, error) {
	response, err := c.invoke(ctx, api.MethodGetPackage, fields(codec.FieldID, strconv.FormatUint(id, 10)))
	if err != nil {
		return nil, err
	}

	p, err := codec.PackageFromStruct(response)
	if err != nil {
		return nil, fmt.Errorf("package response: %w", err)
	}

	return p, nil
}

// Balance returns the holdings of holder in asset.
func (c *Client) Balance(ctx context.Context, asset domain.Asset, holder domain.Identity) (decimal.Decimal, error) {
	return c.amount(ctx, api.MethodBalance, fields(
		codec.FieldAsset, string(asset),
		api.FieldHolder, string(holder),
	))
}

// Locked returns the amount of asset committed to open packages.
func (c *Client) Locked(ctx context.Context, asset domain.Asset) (decimal.Decimal, error) {
	return c.amount(ctx, api.MethodLocked, fields(codec.FieldAsset, string(asset)))
}

// Available returns the uncommitted part of the pool.
func (c *Client) Available(ctx context.Context, asset domain.Asset) (decimal.Decimal, error) {
	return c.amount(ctx, api.MethodAvailable, fields(codec.FieldAsset, string(asset)))
}

// Mint issues new units of asset to a holder. The client must sign as the administrator.
func (c *Client) Mint(ctx context.Context, asset domain.Asset, to domain.Identity, amount decimal.Decimal) error {
	_, err := c.invoke(ctx, api.MethodMint, fields(
		codec.FieldAsset, string(asset),
		api.FieldTo, string(to),
		codec.FieldAmount, amount.String(),
	))

	return err
}

// byID calls a method addressed by package id.
func (c *Client) byID(ctx context.Context, method string, id uint64) error {
	_, err := c.invoke(ctx, method, fields(codec.FieldID, strconv.FormatUint(id, 10)))

	return err
}

// amount calls a method returning one amount.
func (c *Client) amount(ctx context.Context, method string, request *structpb.Struct) (decimal.Decimal, error) {
	response, err := c.invoke(ctx, method, request)
	if err != nil {
		return decimal.Zero, err
	}

	amount, err := codec.Amount(response, codec.FieldAmount)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%s response: %w", method, err)
	}

	return amount, nil
}

// invoke performs a unary call and maps escrow failures back to domain errors.
func (c *Client) invoke(ctx context.Context, method string, request *structpb.Struct) (*structpb.Struct, error) {
	if c == nil || c.conn == nil {
		return nil, errNotConnected
	}

	callCtx, cancel := c.callContext(ctx)
	defer cancel()

	if c.identity != "" {
		callCtx = metadata.AppendToOutgoingContext(callCtx,
			api.MetadataIdentity, string(c.identity),
			api.MetadataKey, c.key,
		)
	}

	response := new(structpb.Struct)
	if err := c.conn.Invoke(callCtx, api.FullMethod(method), request, response); err != nil {
		return nil, fmt.Errorf("%s: %w", method, api.FromStatus(err))
	}

	return response, nil
}

// callContext returns a context with the client's call timeout if configured,
// otherwise a cancellable child context without a deadline.
func (c *Client) callContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.callTimeout <= 0 {
		return context.WithCancel(ctx)
	}

	return context.WithTimeout(ctx, c.callTimeout)
}

// fields builds a Struct of string values from key-value pairs.
func fields(kvs ...string) *structpb.Struct {
	s := &structpb.Struct{Fields: make(map[string]*structpb.Value, len(kvs)/2)}
	for i := 0; i+1 < len(kvs); i += 2 {
		s.Fields[kvs[i]] = structpb.NewStringValue(kvs[i+1])
	}

	return s
}
