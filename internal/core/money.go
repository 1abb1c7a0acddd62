package core

import (
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Amounts are whole rupiah. User input arrives with arbitrary separators
// ("325.000", "Rp 50,000", "100k") and is reduced to its digits.

// maxAmountDigits keeps parsed amounts inside int64. Validate applies the
// tighter MaxAmount bound.
const maxAmountDigits = 18

// ParseAmount strips every non-digit character and returns the remaining
// digits as an amount. Empty input (or input without digits) is zero.
//
// Examples:
//
//	ParseAmount("325.000")    -> 325000
//	ParseAmount("Rp 50,000")  -> 50000
//	ParseAmount("")           -> 0
func ParseAmount(s string) (Money, error) {
	digits := strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, s)
	digits = strings.TrimLeft(digits, "0")
	if digits == "" {
		return 0, nil
	}
	if len(digits) > maxAmountDigits {
		return 0, ErrInvalidAmount
	}
	v, err := strconv.ParseInt(digits, 10, 64)
	if err != nil {
		return 0, ErrInvalidAmount
	}
	return Money(v), nil
}

// ParseCount parses a small non-negative integer such as a workday count.
// Empty input returns def.
func ParseCount(s string, def int) (int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return def, nil
	}
	for _, r := range s {
		if !unicode.IsDigit(r) {
			return 0, &ValidationError{Message: "Angka tidak valid: " + s}
		}
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, &ValidationError{Message: "Angka tidak valid: " + s}
	}
	return n, nil
}

// FormatRupiah renders an amount with Indonesian digit grouping, e.g.
// "Rp325.000" or "-Rp50.000".
func FormatRupiah(m Money) string {
	p := message.NewPrinter(language.Indonesian)
	if m < 0 {
		return "-Rp" + p.Sprintf("%d", -int64(m))
	}
	return "Rp" + p.Sprintf("%d", int64(m))
}

// String returns the plain integer form used in CSV and sheet exports.
func (m Money) String() string {
	return strconv.FormatInt(int64(m), 10)
}
