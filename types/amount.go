// Package types provides common types used across feeledger.
package types

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/holiman/uint256"
)

// Decimals is the fixed number of fractional digits of the token.
const Decimals uint8 = 18

// Amount is an unsigned 256-bit token quantity in the smallest unit.
// All arithmetic is integer-only and overflow-checked by the callers.
//
// Amounts are always handled through pointers. Functions in this module
// never mutate an *Amount they receive; they return fresh values.
type Amount = uint256.Int

// NewAmount returns an Amount holding v.
func NewAmount(v uint64) *Amount { return uint256.NewInt(v) }

// Zero returns a fresh zero Amount.
func Zero() *Amount { return new(uint256.Int) }

// MaxAmount returns the largest representable Amount (2^256 - 1).
func MaxAmount() *Amount { return new(uint256.Int).SetAllOne() }

// Clone returns a copy of a, treating nil as zero.
func Clone(a *Amount) *Amount {
	if a == nil {
		return Zero()
	}
	return new(uint256.Int).Set(a)
}

// ParseAmount parses a base-10 string of smallest units.
func ParseAmount(s string) (*Amount, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, fmt.Errorf("types: parse amount: empty string")
	}
	a, err := uint256.FromDecimal(s)
	if err != nil {
		return nil, fmt.Errorf("types: parse amount %q: %w", s, err)
	}
	return a, nil
}

// MustParseAmount is like ParseAmount but panics on error. Use for constants.
func MustParseAmount(s string) *Amount {
	a, err := ParseAmount(s)
	if err != nil {
		panic(err)
	}
	return a
}

// ScaleWhole converts a whole-token count into smallest units
// (whole * 10^decimals). The second result reports overflow.
func ScaleWhole(whole uint64, decimals uint8) (*Amount, bool) {
	unit := new(uint256.Int).Exp(uint256.NewInt(10), uint256.NewInt(uint64(decimals)))
	return new(uint256.Int).MulOverflow(uint256.NewInt(whole), unit)
}

// FormatUnits renders a in major units with the given number of decimals,
// trimming trailing fractional zeros: 1500000000000000000 -> "1.5".
func FormatUnits(a *Amount, decimals uint8) string {
	intPart, frac := splitUnits(a, decimals)
	if frac == "" {
		return intPart.String()
	}
	return intPart.String() + "." + frac
}

// Humanize is FormatUnits with thousands separators in the integer part:
// "1,234,567.5".
func Humanize(a *Amount, decimals uint8) string {
	intPart, frac := splitUnits(a, decimals)
	s := humanize.BigComma(intPart)
	if frac == "" {
		return s
	}
	return s + "." + frac
}

func splitUnits(a *Amount, decimals uint8) (*big.Int, string) {
	v := Clone(a).ToBig()
	if decimals == 0 {
		return v, ""
	}

	unit := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(decimals)), nil)
	intPart, rem := new(big.Int).QuoRem(v, unit, new(big.Int))
	if rem.Sign() == 0 {
		return intPart, ""
	}

	frac := rem.String()
	if pad := int(decimals) - len(frac); pad > 0 {
		frac = strings.Repeat("0", pad) + frac
	}
	return intPart, strings.TrimRight(frac, "0")
}

// Sum adds values, reporting overflow in the second result.
func Sum(values ...*Amount) (*Amount, bool) {
	total := Zero()
	for _, v := range values {
		if v == nil {
			continue
		}
		if _, overflow := total.AddOverflow(total, v); overflow {
			return total, true
		}
	}
	return total, false
}
