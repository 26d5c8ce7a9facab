package codec

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/types/known/structpb"

	domain "github.com/oshokin/aid-escrow/internal/domain/escrow"
)

// TestPackage_StoredForm encodes a package to bytes and reads it back.
func TestPackage_StoredForm(t *testing.T) {
	t.Parallel()

	want := &domain.Package{
		ID:        18446744073709551615,
		Recipient: "alice",
		Amount:    domain.MaxAmount,
		Asset:     "USDC",
		Status:    domain.StatusCancelled,
		CreatedAt: 1000,
		ExpiresAt: 1100,
		Metadata:  map[string]string{"campaign": "flood-relief"},
	}

	data, err := Marshal(PackageToStruct(want))
	require.NoError(t, err)

	s, err := Unmarshal(data)
	require.NoError(t, err)

	got, err := PackageFromStruct(s)
	require.NoError(t, err)
	require.Equal(t, want.ID, got.ID)
	require.True(t, want.Amount.Equal(got.Amount))
	require.Equal(t, want.Status, got.Status)
	require.Equal(t, want.Metadata, got.Metadata)
	require.Equal(t, want.ExpiresAt, got.ExpiresAt)
}

// TestUint64_AcceptsNumbers allows whole JSON numbers and rejects fractions.
func TestUint64_AcceptsNumbers(t *testing.T) {
	t.Parallel()

	s, err := structpb.NewStruct(map[string]any{"a": 42.0, "b": 1.5, "c": -1.0, "d": true})
	require.NoError(t, err)

	n, err := Uint64(s, "a")
	require.NoError(t, err)
	require.Equal(t, uint64(42), n)

	_, err = Uint64(s, "b")
	require.ErrorIs(t, err, ErrFieldType)

	_, err = Uint64(s, "c")
	require.ErrorIs(t, err, ErrFieldType)

	_, err = Uint64(s, "d")
	require.ErrorIs(t, err, ErrFieldType)

	_, err = Uint64(s, "missing")
	require.ErrorIs(t, err, ErrMissingField)

	// 2^64 is the first value that no longer fits.
	huge, err := structpb.NewStruct(map[string]any{"max": 18446744073709549568.0, "over": 18446744073709551616.0})
	require.NoError(t, err)

	n, err = Uint64(huge, "max")
	require.NoError(t, err)
	require.Equal(t, uint64(18446744073709549568), n)

	_, err = Uint64(huge, "over")
	require.ErrorIs(t, err, ErrFieldType)

	n, err = OptionalUint64(s, "missing")
	require.NoError(t, err)
	require.Zero(t, n)
}

// TestAmountsFromStruct rejects non-integer amounts.
func TestAmountsFromStruct(t *testing.T) {
	t.Parallel()

	amounts, err := AmountsFromStruct(AmountsToStruct(map[domain.Asset]decimal.Decimal{
		"USDC": decimal.NewFromInt(500),
		"XLM":  decimal.Zero,
	}))
	require.NoError(t, err)
	require.True(t, amounts["USDC"].Equal(decimal.NewFromInt(500)))
	require.True(t, amounts["XLM"].IsZero())

	bad, err := structpb.NewStruct(map[string]any{"USDC": "1.25"})
	require.NoError(t, err)

	_, err = AmountsFromStruct(bad)
	require.Error(t, err)
}
