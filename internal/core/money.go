// Package core provides the trip ledger domain types and money handling
// utilities shared by storage, services, and the ledger engine.
package core

import (
	"math"
	"strconv"
	"strings"
	"unicode"
)

// SettleEpsilon is the threshold below which a residual balance is treated
// as settled. It matches the smallest representable currency step.
const SettleEpsilon = 0.01

// Round2 rounds an amount to two decimal places, half away from zero.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// Settled reports whether a balance is within SettleEpsilon of zero.
func Settled(v float64) bool {
	return math.Abs(v) < SettleEpsilon
}

// ValidateAmount rejects negative, NaN, and infinite monetary amounts.
// Zero is allowed: a free shared activity is still a valid record.
func ValidateAmount(v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return ErrInvalidAmount
	}
	if v < 0 {
		return ErrInvalidAmount
	}
	return nil
}

// ParseAmount converts a decimal string to a monetary amount.
//
// It accepts both dot (12.34) and comma (12,34) decimal separators and at
// most two fractional digits are kept after half-up rounding on the third.
// Negative values are rejected.
//
// Examples:
//
//	ParseAmount("12.34") -> 12.34, nil
//	ParseAmount("12,34") -> 12.34, nil
//	ParseAmount("12.346") -> 12.35, nil (rounds up)
func ParseAmount(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, ErrInvalidAmount
	}
	s = strings.ReplaceAll(s, ",", ".")
	if strings.HasPrefix(s, "+") || strings.HasPrefix(s, "-") {
		return 0, ErrInvalidAmount
	}
	parts := strings.Split(s, ".")
	if len(parts) > 2 {
		return 0, ErrInvalidAmount
	}
	intPart := parts[0]
	fracPart := ""
	if len(parts) == 2 {
		fracPart = parts[1]
	}
	if intPart == "" {
		intPart = "0"
	}
	for _, r := range intPart {
		if !unicode.IsDigit(r) {
			return 0, ErrInvalidAmount
		}
	}
	for _, r := range fracPart {
		if !unicode.IsDigit(r) {
			return 0, ErrInvalidAmount
		}
	}
	iv, err := strconv.ParseInt(intPart, 10, 64)
	if err != nil {
		return 0, ErrInvalidAmount
	}
	// Two fractional digits, half-up on the third.
	var cents int64
	if len(fracPart) > 0 {
		cents = int64(fracPart[0]-'0') * 10
		if len(fracPart) > 1 {
			cents += int64(fracPart[1] - '0')
			if len(fracPart) > 2 && fracPart[2] >= '5' {
				cents++
			}
		}
	}
	return float64(iv) + float64(cents)/100, nil
}

// FormatAmount renders an amount with two decimals for logs and exports.
func FormatAmount(v float64) string {
	return strconv.FormatFloat(Round2(v), 'f', 2, 64)
}
