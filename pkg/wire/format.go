package wire

import (
	"errors"
	"fmt"
	"math"

	"github.com/shopspring/decimal"
)

// PriceSigFigs is the number of significant figures the exchange accepts on
// a limit price.
const PriceSigFigs = 5

// MaxDecimals bounds the fractional digits any wire value may carry.
const MaxDecimals = 18

var (
	ErrNonFinite       = errors.New("value is not finite")
	ErrInvalidDecimals = errors.New("decimals out of range")
)

// FormatSize rounds value to exactly decimals fractional digits and returns
// the shortest decimal string for the result ("0.4300" -> "0.43").
func FormatSize(value float64, decimals int) (string, error) {
	d, err := fromFloat(value, decimals)
	if err != nil {
		return "", fmt.Errorf("format size: %w", err)
	}
	return normalize(d.Round(int32(decimals))), nil
}

// FormatPrice rounds value to PriceSigFigs significant figures, then to at
// most maxDecimals fractional digits.
func FormatPrice(value float64, maxDecimals int) (string, error) {
	d, err := fromFloat(value, maxDecimals)
	if err != nil {
		return "", fmt.Errorf("format price: %w", err)
	}
	if d.IsZero() {
		return "0", nil
	}

	// Sig-fig rounding first, then clamp to the asset's price precision.
	places := PriceSigFigs - 1 - magnitude(d)
	d = d.Round(int32(places))
	return normalize(d.Round(int32(maxDecimals))), nil
}

// FormatNotionalSize converts a quote-denominated amount into a base size at
// price and formats it with decimals.
func FormatNotionalSize(notional, price float64, decimals int) (string, error) {
	if price == 0 || math.IsNaN(price) || math.IsInf(price, 0) {
		return "", fmt.Errorf("format notional size: price %v: %w", price, ErrNonFinite)
	}
	return FormatSize(notional/price, decimals)
}

// magnitude returns floor(log10(|d|)) for a non-zero d, read off the decimal
// digits so exact powers of ten are not misjudged by float log10.
func magnitude(d decimal.Decimal) int {
	c := d.Coefficient()
	return len(c.Abs(c).String()) + int(d.Exponent()) - 1
}

func fromFloat(value float64, decimals int) (decimal.Decimal, error) {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return decimal.Zero, fmt.Errorf("%v: %w", value, ErrNonFinite)
	}
	if decimals < 0 || decimals > MaxDecimals {
		return decimal.Zero, fmt.Errorf("%d: %w", decimals, ErrInvalidDecimals)
	}
	return decimal.NewFromFloat(value), nil
}

// normalize drops trailing zeros and a dangling point; "-0" becomes "0".
func normalize(d decimal.Decimal) string {
	if d.IsZero() {
		return "0"
	}
	return d.String()
}
