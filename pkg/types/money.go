package types

import (
	"fmt"

	"github.com/shopspring/decimal"
)

var centsFactor = decimal.NewFromInt(100)

// CentsToDecimal renders an integer cents amount as an exact two-place decimal.
func CentsToDecimal(cents int64) decimal.Decimal {
	return decimal.NewFromInt(cents).Div(centsFactor)
}

// CentsToString formats cents as a fixed two-decimal string ("20.00").
func CentsToString(cents int64) string {
	return CentsToDecimal(cents).StringFixed(2)
}

// ParsePriceToCents converts a decimal price string into integer cents.
// Prices carry at most two fractional digits; anything finer is rejected
// rather than rounded.
func ParsePriceToCents(value string) (int64, error) {
	dec, err := decimal.NewFromString(value)
	if err != nil {
		return 0, fmt.Errorf("invalid price %q: %w", value, err)
	}
	cents := dec.Mul(centsFactor)
	if !cents.IsInteger() {
		return 0, fmt.Errorf("price %q has sub-cent precision", value)
	}
	return cents.IntPart(), nil
}

// LineTotalCents multiplies a unit price by a quantity without float drift.
func LineTotalCents(unitPriceCents int64, qty int) int64 {
	return decimal.NewFromInt(unitPriceCents).
		Mul(decimal.NewFromInt(int64(qty))).
		IntPart()
}
