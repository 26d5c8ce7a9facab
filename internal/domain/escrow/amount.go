package escrow

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/shopspring/decimal"
)

var (
	// MaxAmount is the largest value representable by a signed 128-bit integer.
	//nolint:gochecknoglobals // Immutable bound.
	MaxAmount = decimal.NewFromBigInt(new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 127), big.NewInt(1)), 0)
	// MinAmount is the smallest value representable by a signed 128-bit integer.
	//nolint:gochecknoglobals // Immutable bound.
	MinAmount = decimal.NewFromBigInt(new(big.Int).Neg(new(big.Int).Lsh(big.NewInt(1), 127)), 0)

	errAmountNotInteger = errors.New("amount must be an integer")
	errAmountOverflow   = errors.New("amount does not fit into 128 bits")
)

// ParseAmount parses a base-10 integer amount and checks it fits into 128 bits.
// It does not check the sign; positivity is an operation-level rule.
func ParseAmount(s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("parse amount %q: %w", s, err)
	}

	if err := CheckAmount(d); err != nil {
		return decimal.Zero, err
	}

	return d, nil
}

// CheckAmount verifies that d is integral and within the signed 128-bit range.
func CheckAmount(d decimal.Decimal) error {
	if !d.IsInteger() {
		return errAmountNotInteger
	}

	if d.GreaterThan(MaxAmount) || d.LessThan(MinAmount) {
		return errAmountOverflow
	}

	return nil
}

// Positive reports whether d is a valid amount strictly greater than zero.
func Positive(d decimal.Decimal) bool {
	return d.IsPositive() && CheckAmount(d) == nil
}

// SaturatingSub returns a-b, floored at zero.
func SaturatingSub(a, b decimal.Decimal) decimal.Decimal {
	if a.GreaterThan(b) {
		return a.Sub(b)
	}

	return decimal.Zero
}
