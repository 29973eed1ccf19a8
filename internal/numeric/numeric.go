// Package numeric parses and formats Brazilian-Portuguese style amounts.
//
// Spreadsheets exported by the purchasing team mix real numeric cells with
// text such as "R$ 1.234,56". These helpers turn that text into a decimal
// and render decimals back with a comma separator:
//   - currency symbols, spaces and any other non-digit runes are stripped
//   - a comma, when present, is the decimal separator and periods group thousands
//   - without a comma, one period is the decimal separator and repeated
//     periods group thousands
//
// The sign is not preserved: "-" is stripped like any other symbol.
package numeric

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

// ErrUnparsable is returned when no number can be recovered from the input.
var ErrUnparsable = errors.New("not a number")

// ErrNegative is returned by callers that require an amount >= 0.
var ErrNegative = errors.New("must not be negative")

// cleanedNumber matches what is left after separators are resolved.
var cleanedNumber = regexp.MustCompile(`^(\d+(\.\d*)?|\.\d+)$`)

// ParseLocale converts a locale-formatted amount to a decimal.
func ParseLocale(s string) (decimal.Decimal, error) {
	var b strings.Builder
	for _, r := range s {
		if (r >= '0' && r <= '9') || r == ',' || r == '.' {
			b.WriteRune(r)
		}
	}
	cleaned := b.String()

	switch commas := strings.Count(cleaned, ","); {
	case commas > 1:
		return decimal.Zero, fmt.Errorf("%w: %q has more than one decimal comma", ErrUnparsable, s)
	case commas == 1:
		cleaned = strings.ReplaceAll(cleaned, ".", "")
		cleaned = strings.Replace(cleaned, ",", ".", 1)
	case strings.Count(cleaned, ".") > 1:
		cleaned = strings.ReplaceAll(cleaned, ".", "")
	}

	if !cleanedNumber.MatchString(cleaned) {
		return decimal.Zero, fmt.Errorf("%w: %q", ErrUnparsable, s)
	}

	cleaned = strings.TrimSuffix(cleaned, ".")
	if strings.HasPrefix(cleaned, ".") {
		cleaned = "0" + cleaned
	}

	d, err := decimal.NewFromString(cleaned)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %q: %v", ErrUnparsable, s, err)
	}
	return d, nil
}

// HasMinusSign reports whether a '-' comes before the first digit of s.
// ParseLocale drops the sign, so strict callers check it first.
func HasMinusSign(s string) bool {
	for _, r := range s {
		switch {
		case r == '-':
			return true
		case r >= '0' && r <= '9':
			return false
		}
	}
	return false
}

// FromFloat converts a spreadsheet number, rejecting NaN and infinities.
func FromFloat(f float64) (decimal.Decimal, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return decimal.Zero, fmt.Errorf("%w: %v", ErrUnparsable, f)
	}
	return decimal.NewFromFloat(f), nil
}

// FormatComma renders d with two decimals and a comma separator: 1234,50.
func FormatComma(d decimal.Decimal) string {
	return strings.Replace(d.StringFixed(2), ".", ",", 1)
}

// FormatBRL renders d for display: R$ 1234,50.
func FormatBRL(d decimal.Decimal) string {
	return "R$ " + FormatComma(d)
}
