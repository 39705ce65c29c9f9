// Package bigdec holds the decimal helpers shared by the entity engine.
// All monetary math runs on shopspring decimals; values are rendered to six
// fractional digits only when they are written back to the store.
package bigdec

import (
	"math/big"

	"github.com/shopspring/decimal"
)

// PersistPrecision is the number of fractional digits kept at the
// persistence boundary.
const PersistPrecision = 6

// One is the multiplicative identity used by price derivation.
var One = decimal.NewFromInt(1)

// Parse reads a stored decimal string. Empty or malformed input is treated
// as zero so that freshly created entities with unset fields behave like
// zero-initialized ones.
func Parse(s string) decimal.Decimal {
	if s == "" {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}

// Fixed6 renders a decimal with exactly six fractional digits.
func Fixed6(d decimal.Decimal) string {
	return d.StringFixed(PersistPrecision)
}

// FromTokenUnits converts a raw integer token amount into its human-unit
// decimal using the token's configured decimals.
func FromTokenUnits(raw *big.Int, decimals int32) decimal.Decimal {
	if raw == nil {
		return decimal.Zero
	}
	return decimal.NewFromBigInt(raw, 0).Shift(-decimals)
}

// AddRaw and SubRaw operate on raw integer amounts kept as strings
// (reserves, LP token supply). Malformed input counts as zero.
func AddRaw(a string, b *big.Int) string {
	return new(big.Int).Add(parseRaw(a), b).String()
}

func SubRaw(a string, b *big.Int) string {
	return new(big.Int).Sub(parseRaw(a), b).String()
}

func parseRaw(s string) *big.Int {
	v, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return new(big.Int)
	}
	return v
}
