package money

import (
	"fmt"
	"math"

	"github.com/shopspring/decimal"

	customError "github.com/pawnshop/pawn-engine/pkg/errors"
)

// Decimal place bounds come from the currency master data: 0 (e.g. JPY, KHR)
// up to 8 for fractional-unit currencies.
const (
	MinDecimalPlace = 0
	MaxDecimalPlace = 8
)

// Round rounds an amount half-up to the currency's decimal places.
// Every monetary value persisted or returned to a caller passes through here.
func Round(amount decimal.Decimal, decimalPlace int) (decimal.Decimal, error) {
	if decimalPlace < MinDecimalPlace || decimalPlace > MaxDecimalPlace {
		return decimal.Zero, customError.WrapInvalidAmount(
			fmt.Sprintf("decimal place must be between %d and %d, got %d", MinDecimalPlace, MaxDecimalPlace, decimalPlace))
	}
	return amount.Round(int32(decimalPlace)), nil
}

// MustRound is Round for amounts whose decimal place was already validated.
// It panics on an out-of-range decimal place, which indicates a programming error.
func MustRound(amount decimal.Decimal, decimalPlace int) decimal.Decimal {
	rounded, err := Round(amount, decimalPlace)
	if err != nil {
		panic(err)
	}
	return rounded
}

// ToMinorUnits converts an amount to its smallest-unit integer representation
// (e.g. 10.50 USD -> 1050 cents). Arithmetic on minor units avoids binary
// floating-point drift at the storage boundary.
func ToMinorUnits(amount decimal.Decimal, decimalPlace int) (int64, error) {
	rounded, err := Round(amount, decimalPlace)
	if err != nil {
		return 0, err
	}

	shifted := rounded.Shift(int32(decimalPlace))
	if !shifted.IsInteger() {
		return 0, customError.WrapInvalidAmount(
			fmt.Sprintf("amount %s does not fit %d decimal places", amount.String(), decimalPlace))
	}
	if shifted.Cmp(decimal.NewFromInt(math.MaxInt64)) > 0 || shifted.Cmp(decimal.NewFromInt(math.MinInt64)) < 0 {
		return 0, customError.WrapInvalidAmount(
			fmt.Sprintf("amount %s overflows the supported range", amount.String()))
	}

	return shifted.IntPart(), nil
}

// FromMinorUnits converts a smallest-unit integer back to a display amount.
func FromMinorUnits(units int64, decimalPlace int) (decimal.Decimal, error) {
	if decimalPlace < MinDecimalPlace || decimalPlace > MaxDecimalPlace {
		return decimal.Zero, customError.WrapInvalidAmount(
			fmt.Sprintf("decimal place must be between %d and %d, got %d", MinDecimalPlace, MaxDecimalPlace, decimalPlace))
	}
	return decimal.NewFromInt(units).Shift(int32(-decimalPlace)), nil
}

// Min returns the smaller of two amounts.
func Min(a, b decimal.Decimal) decimal.Decimal {
	if a.LessThan(b) {
		return a
	}
	return b
}

// ClampZero floors an amount at zero. Outstanding balances never go negative.
func ClampZero(a decimal.Decimal) decimal.Decimal {
	if a.IsNegative() {
		return decimal.Zero
	}
	return a
}
