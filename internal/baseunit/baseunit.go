// Package baseunit converts between human decimal amounts and integer
// base-unit ("wei") strings for tokens of arbitrary decimal precision.
// All arithmetic is digit manipulation over strings and big.Int; no value
// ever passes through a binary float, so conversions are exact and the
// output never contains scientific notation.
package baseunit

import (
	"errors"
	"fmt"
	"math/big"
	"strconv"
	"strings"
)

// Common errors
var (
	ErrEmptyAmount     = errors.New("baseunit: empty amount")
	ErrInvalidAmount   = errors.New("baseunit: invalid decimal amount")
	ErrNegativeAmount  = errors.New("baseunit: negative amount")
	ErrTooManyDecimals = errors.New("baseunit: more fractional digits than token decimals")
	ErrInvalidDecimals = errors.New("baseunit: decimals must be >= 0")
	ErrInvalidBaseUnit = errors.New("baseunit: invalid base-unit string")
)

// ToBaseUnits converts a decimal amount string to the token's integer
// base-unit representation: amount * 10^decimals. Exponent notation on
// input ("1e-7") is expanded to plain decimal form before scaling.
// The result has no leading zeros; a zero value is returned as "0".
func ToBaseUnits(amount string, decimals int) (string, error) {
	if decimals < 0 {
		return "", ErrInvalidDecimals
	}

	s := strings.TrimSpace(amount)
	if s == "" {
		return "", ErrEmptyAmount
	}
	if strings.HasPrefix(s, "+") {
		s = s[1:]
	}
	if strings.HasPrefix(s, "-") {
		return "", ErrNegativeAmount
	}

	s, err := expandExponent(s)
	if err != nil {
		return "", err
	}

	intPart, fracPart, err := splitDecimal(s)
	if err != nil {
		return "", err
	}

	// Trailing fractional zeros carry no value and must not trip the
	// precision check ("1.500000000" with decimals=6 is fine).
	fracPart = strings.TrimRight(fracPart, "0")
	if len(fracPart) > decimals {
		return "", fmt.Errorf("%w: %d > %d", ErrTooManyDecimals, len(fracPart), decimals)
	}

	digits := intPart + fracPart + strings.Repeat("0", decimals-len(fracPart))
	digits = strings.TrimLeft(digits, "0")
	if digits == "" {
		return "0", nil
	}

	// Round-trip through big.Int guards against any malformed digit
	// string slipping through the validation above.
	n, ok := new(big.Int).SetString(digits, 10)
	if !ok {
		return "", ErrInvalidAmount
	}
	return n.String(), nil
}

// FromBaseUnits converts an integer base-unit string back to a decimal
// amount string by inserting the decimal point decimals digits from the
// right. Trailing fractional zeros are stripped; the integer part is
// always preserved ("1000000" with decimals=6 yields "1", not "1.").
func FromBaseUnits(raw string, decimals int) (string, error) {
	if decimals < 0 {
		return "", ErrInvalidDecimals
	}

	s := strings.TrimSpace(raw)
	if s == "" {
		return "", ErrInvalidBaseUnit
	}
	if strings.HasPrefix(s, "-") {
		return "", ErrNegativeAmount
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return "", fmt.Errorf("%w: %q", ErrInvalidBaseUnit, raw)
		}
	}

	s = strings.TrimLeft(s, "0")
	if s == "" {
		return "0", nil
	}

	if decimals == 0 {
		return s, nil
	}

	if len(s) <= decimals {
		s = strings.Repeat("0", decimals-len(s)+1) + s
	}

	cut := len(s) - decimals
	intPart := s[:cut]
	fracPart := strings.TrimRight(s[cut:], "0")
	if fracPart == "" {
		return intPart, nil
	}
	return intPart + "." + fracPart, nil
}

// Normalize rewrites a decimal amount into its canonical form: exponent
// notation expanded, leading zeros collapsed, trailing fractional zeros
// stripped. "01.50" becomes "1.5", "1e-7" becomes "0.0000001".
func Normalize(amount string) (string, error) {
	s := strings.TrimSpace(amount)
	if s == "" {
		return "", ErrEmptyAmount
	}
	if strings.HasPrefix(s, "+") {
		s = s[1:]
	}
	if strings.HasPrefix(s, "-") {
		return "", ErrNegativeAmount
	}

	s, err := expandExponent(s)
	if err != nil {
		return "", err
	}
	intPart, fracPart, err := splitDecimal(s)
	if err != nil {
		return "", err
	}

	intPart = strings.TrimLeft(intPart, "0")
	if intPart == "" {
		intPart = "0"
	}
	fracPart = strings.TrimRight(fracPart, "0")
	if fracPart == "" {
		return intPart, nil
	}
	return intPart + "." + fracPart, nil
}

// splitDecimal splits "123.456" into validated integer and fractional
// digit runs. A missing side of the point defaults to "0"/"".
func splitDecimal(s string) (string, string, error) {
	if s == "." || s == "" {
		return "", "", fmt.Errorf("%w: %q", ErrInvalidAmount, s)
	}
	intPart := s
	fracPart := ""
	if i := strings.IndexByte(s, '.'); i >= 0 {
		intPart = s[:i]
		fracPart = s[i+1:]
		if strings.IndexByte(fracPart, '.') >= 0 {
			return "", "", fmt.Errorf("%w: %q", ErrInvalidAmount, s)
		}
	}
	if intPart == "" {
		intPart = "0"
	}
	for _, r := range intPart + fracPart {
		if r < '0' || r > '9' {
			return "", "", fmt.Errorf("%w: %q", ErrInvalidAmount, s)
		}
	}
	return intPart, fracPart, nil
}

// expandExponent rewrites exponent notation ("1e-7", "2.5E+3") to plain
// decimal form by shifting the decimal point. Plain inputs pass through.
func expandExponent(s string) (string, error) {
	idx := strings.IndexAny(s, "eE")
	if idx < 0 {
		return s, nil
	}

	mantissa := s[:idx]
	expStr := s[idx+1:]
	if mantissa == "" || expStr == "" {
		return "", fmt.Errorf("%w: %q", ErrInvalidAmount, s)
	}

	exp, err := strconv.Atoi(expStr)
	if err != nil {
		return "", fmt.Errorf("%w: %q", ErrInvalidAmount, s)
	}

	intPart, fracPart, err := splitDecimal(mantissa)
	if err != nil {
		return "", err
	}

	digits := intPart + fracPart
	point := len(intPart) + exp // digits to the left of the decimal point

	switch {
	case point <= 0:
		return "0." + strings.Repeat("0", -point) + digits, nil
	case point >= len(digits):
		return digits + strings.Repeat("0", point-len(digits)), nil
	default:
		return digits[:point] + "." + digits[point:], nil
	}
}
