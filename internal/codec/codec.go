package codec

import (
	"errors"
	"fmt"
	"maps"
	"math"
	"slices"
	"strconv"

	"github.com/shopspring/decimal"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"

	domain "github.com/oshokin/aid-escrow/internal/domain/escrow"
)

// maxUint64Float is 2^64, the first float above every uint64.
const maxUint64Float = 1 << 64

// Field names shared by stored records and RPC messages.
const (
	FieldID        = "id"
	FieldRecipient = "recipient"
	FieldAmount    = "amount"
	FieldAsset     = "asset"
	FieldStatus    = "status"
	FieldCreatedAt = "created_at"
	FieldExpiresAt = "expires_at"
	FieldMetadata  = "metadata"
)

var (
	// ErrMissingField is returned when a required field is absent.
	ErrMissingField = errors.New("missing field")
	// ErrFieldType is returned when a field has an unexpected type.
	ErrFieldType = errors.New("unexpected field type")
)

//nolint:gochecknoglobals // Stable encoding options.
var marshalOptions = protojson.MarshalOptions{EmitUnpopulated: true}

// Marshal encodes a Struct as protojson.
func Marshal(s *structpb.Struct) ([]byte, error) {
	data, err := marshalOptions.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("encode record: %w", err)
	}

	return data, nil
}

// Unmarshal decodes protojson into a Struct.
func Unmarshal(data []byte) (*structpb.Struct, error) {
	s := new(structpb.Struct)
	if err := protojson.Unmarshal(data, s); err != nil {
		return nil, fmt.Errorf("decode record: %w", err)
	}

	return s, nil
}

// PackageToStruct converts a package into its Struct form.
// 64-bit and 128-bit numbers travel as decimal strings to avoid float rounding.
func PackageToStruct(p *domain.Package) *structpb.Struct {
	metadata := make(map[string]*structpb.Value, len(p.Metadata))
	for key, value := range p.Metadata {
		metadata[key] = structpb.NewStringValue(value)
	}

	return &structpb.Struct{Fields: map[string]*structpb.Value{
		FieldID:        structpb.NewStringValue(strconv.FormatUint(p.ID, 10)),
		FieldRecipient: structpb.NewStringValue(string(p.Recipient)),
		FieldAmount:    structpb.NewStringValue(p.Amount.String()),
		FieldAsset:     structpb.NewStringValue(string(p.Asset)),
		FieldStatus:    structpb.NewStringValue(p.Status.String()),
		FieldCreatedAt: structpb.NewStringValue(strconv.FormatUint(p.CreatedAt, 10)),
		FieldExpiresAt: structpb.NewStringValue(strconv.FormatUint(p.ExpiresAt, 10)),
		FieldMetadata:  structpb.NewStructValue(&structpb.Struct{Fields: metadata}),
	}}
}

// PackageFromStruct converts a Struct back into a package.
func PackageFromStruct(s *structpb.Struct) (*domain.Package, error) {
	var (
		p   domain.Package
		err error
	)

	if p.ID, err = Uint64(s, FieldID); err != nil {
		return nil, err
	}

	recipient, err := String(s, FieldRecipient)
	if err != nil {
		return nil, err
	}

	if p.Amount, err = Amount(s, FieldAmount); err != nil {
		return nil, err
	}

	asset, err := String(s, FieldAsset)
	if err != nil {
		return nil, err
	}

	statusName, err := String(s, FieldStatus)
	if err != nil {
		return nil, err
	}

	if p.Status, err = domain.ParseStatus(statusName); err != nil {
		return nil, err
	}

	if p.CreatedAt, err = OptionalUint64(s, FieldCreatedAt); err != nil {
		return nil, err
	}

	if p.ExpiresAt, err = OptionalUint64(s, FieldExpiresAt); err != nil {
		return nil, err
	}

	if p.Metadata, err = StringMap(s, FieldMetadata); err != nil {
		return nil, err
	}

	p.Recipient = domain.Identity(recipient)
	p.Asset = domain.Asset(asset)

	return &p, nil
}

// AmountsToStruct converts a per-asset amount map into a Struct.
func AmountsToStruct(amounts map[domain.Asset]decimal.Decimal) *structpb.Struct {
	fields := make(map[string]*structpb.Value, len(amounts))
	for _, asset := range slices.Sorted(maps.Keys(amounts)) {
		fields[string(asset)] = structpb.NewStringValue(amounts[asset].String())
	}

	return &structpb.Struct{Fields: fields}
}

// AmountsFromStruct converts a Struct into a per-asset amount map.
func AmountsFromStruct(s *structpb.Struct) (map[domain.Asset]decimal.Decimal, error) {
	amounts := make(map[domain.Asset]decimal.Decimal, len(s.GetFields()))
	for key := range s.GetFields() {
		amount, err := Amount(s, key)
		if err != nil {
			return nil, err
		}

		amounts[domain.Asset(key)] = amount
	}

	return amounts, nil
}

// String reads a required string field.
func String(s *structpb.Struct, name string) (string, error) {
	value, ok := s.GetFields()[name]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrMissingField, name)
	}

	str, ok := value.GetKind().(*structpb.Value_StringValue)
	if !ok {
		return "", fmt.Errorf("%w: %s must be a string", ErrFieldType, name)
	}

	return str.StringValue, nil
}

// Uint64 reads a required unsigned integer. It accepts a decimal string or a
// whole JSON number.
func Uint64(s *structpb.Struct, name string) (uint64, error) {
	value, ok := s.GetFields()[name]
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrMissingField, name)
	}

	switch kind := value.GetKind().(type) {
	case *structpb.Value_StringValue:
		n, err := strconv.ParseUint(kind.StringValue, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("%w: %s: %w", ErrFieldType, name, err)
		}

		return n, nil
	case *structpb.Value_NumberValue:
		n := kind.NumberValue
		if n < 0 || n >= maxUint64Float || n != math.Trunc(n) {
			return 0, fmt.Errorf("%w: %s must be a whole non-negative number", ErrFieldType, name)
		}

		return uint64(n), nil
	default:
		return 0, fmt.Errorf("%w: %s must be a number", ErrFieldType, name)
	}
}

// OptionalUint64 reads an unsigned integer that defaults to zero when absent.
func OptionalUint64(s *structpb.Struct, name string) (uint64, error) {
	if _, ok := s.GetFields()[name]; !ok {
		return 0, nil
	}

	return Uint64(s, name)
}

// Amount reads a required 128-bit integer amount encoded as a decimal string.
func Amount(s *structpb.Struct, name string) (decimal.Decimal, error) {
	raw, err := String(s, name)
	if err != nil {
		return decimal.Zero, err
	}

	return domain.ParseAmount(raw)
}

// StringMap reads an optional nested Struct of string values.
func StringMap(s *structpb.Struct, name string) (map[string]string, error) {
	value, ok := s.GetFields()[name]
	if !ok {
		return map[string]string{}, nil
	}

	nested, ok := value.GetKind().(*structpb.Value_StructValue)
	if !ok {
		return nil, fmt.Errorf("%w: %s must be an object", ErrFieldType, name)
	}

	result := make(map[string]string, len(nested.StructValue.GetFields()))
	for key := range nested.StructValue.GetFields() {
		str, err := String(nested.StructValue, key)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}

		result[key] = str
	}

	return result, nil
}
