// Package core provides the ledger domain model and the statistics aggregator.
//
// This file contains amount parsing and the presentation helpers for
// decimal money values.
package core

import (
	"strings"
	"unicode"

	"github.com/shopspring/decimal"
)

// ParseAmount converts user input into a strictly positive decimal.
//
// It accepts both dot (12.34) and comma (12,34) decimal separators. The value
// keeps the scale it was entered with; rounding only happens when formatting.
// Returns ErrInvalidAmount for empty, signed, non-numeric, zero or negative input.
//
// Examples:
//
//	ParseAmount("500")    -> 500, nil
//	ParseAmount("12,50")  -> 12.50, nil
//	ParseAmount("0")      -> ErrInvalidAmount
//	ParseAmount("-3")     -> ErrInvalidAmount
func ParseAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, ErrInvalidAmount
	}
	s = strings.ReplaceAll(s, ",", ".")
	if strings.HasPrefix(s, "+") || strings.HasPrefix(s, "-") {
		return decimal.Zero, ErrInvalidAmount
	}
	if strings.Count(s, ".") > 1 {
		return decimal.Zero, ErrInvalidAmount
	}
	for _, r := range s {
		if r != '.' && !unicode.IsDigit(r) {
			return decimal.Zero, ErrInvalidAmount
		}
	}
	if s == "." {
		return decimal.Zero, ErrInvalidAmount
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, ErrInvalidAmount
	}
	if !d.IsPositive() {
		return decimal.Zero, ErrInvalidAmount
	}
	return d, nil
}

// FormatMoney rounds to two decimals and prefixes the currency symbol.
// Negative values keep their sign after the symbol ("₹-12.00").
func FormatMoney(symbol string, d decimal.Decimal) string {
	return symbol + d.StringFixed(2)
}

// FormatSigned renders an amount with the sign implied by the direction.
func FormatSigned(t Type, d decimal.Decimal) string {
	if t == In {
		return "+" + d.Abs().StringFixed(2)
	}
	return "-" + d.Abs().StringFixed(2)
}
