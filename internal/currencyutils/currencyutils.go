// Package currencyutils normalizes monetary strings from Brazilian bank
// exports into decimal values.
package currencyutils

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// ErrEmptyAmount is returned for blank amount cells.
var ErrEmptyAmount = errors.New("empty amount")

var symbolStripper = strings.NewReplacer("R$", "", "r$", "", " ", "", "\u00a0", "", "\t", "")

// StandardizeAmount converts a locale-formatted amount into a string that
// decimal.NewFromString accepts. With both separators the later one is the
// decimal point ("1.234,56" and "1,234.56" -> "1234.56"). A lone comma is
// decimal when at most two digits follow it ("123,45"), a thousands
// separator otherwise ("1,234").
func StandardizeAmount(amountStr string) string {
	s := symbolStripper.Replace(strings.TrimSpace(amountStr))

	lastDot, lastComma := strings.LastIndex(s, "."), strings.LastIndex(s, ",")
	switch {
	case lastDot >= 0 && lastComma >= 0:
		if lastDot < lastComma {
			s = strings.ReplaceAll(s, ".", "")
			s = strings.ReplaceAll(s, ",", ".")
		} else {
			s = strings.ReplaceAll(s, ",", "")
		}
	case lastComma >= 0:
		if len(s)-lastComma-1 <= 2 {
			s = strings.ReplaceAll(s, ",", ".")
		} else {
			s = strings.ReplaceAll(s, ",", "")
		}
	}
	return strings.TrimPrefix(s, "+")
}

// ParseAmount parses a signed amount. Blank or non-numeric input is an error.
func ParseAmount(amountStr string) (decimal.Decimal, error) {
	standardized := StandardizeAmount(amountStr)
	if standardized == "" {
		return decimal.Zero, ErrEmptyAmount
	}

	amount, err := decimal.NewFromString(standardized)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to parse amount '%s': %w", amountStr, err)
	}
	return amount, nil
}

// SplitSign returns the magnitude of amount and whether it was negative.
func SplitSign(amount decimal.Decimal) (decimal.Decimal, bool) {
	return amount.Abs(), amount.IsNegative()
}
