// Package money converts between minor-unit int64 amounts, which the
// core uses for all arithmetic, and the decimal strings shown to users
// and stored in the books files. Balance comparisons are exact integer
// equality; decimals appear only at the parse/format boundary.
package money

import (
	"fmt"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// Parse converts a decimal string like "1234.56" to minor units.
// Amounts with more than 2 decimal places are rejected rather than
// rounded; a ledger never invents fractions of a cent.
func Parse(s string) (int64, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, fmt.Errorf("parsing amount %q: %w", s, err)
	}
	scaled := d.Mul(hundred)
	if !scaled.Equal(scaled.Truncate(0)) {
		return 0, fmt.Errorf("amount %q has more than 2 decimal places", s)
	}
	return scaled.IntPart(), nil
}

// Format renders minor units as a fixed two-decimal string.
func Format(minor int64) string {
	return decimal.NewFromInt(minor).Div(hundred).StringFixed(2)
}

// Decimal returns the major-unit decimal value of a minor-unit amount,
// for ratio math in reports.
func Decimal(minor int64) decimal.Decimal {
	return decimal.NewFromInt(minor).Div(hundred)
}
