package domain

import (
	"fmt"
	"math"
)

// Supported currency codes. All persisted amounts are integer minor units
// (cents); float USD exists only for display and rate math.
const (
	CurrencyUSD = "USD"
	CurrencyARS = "ARS"
)

// CentsToUsd converts an amount in cents to float USD.
func CentsToUsd(cents int64) float64 {
	return float64(cents) / 100
}

// UsdToCents converts a float USD amount to cents, rounding half away from zero.
func UsdToCents(usd float64) int64 {
	return int64(math.Round(usd * 100))
}

// FormatUsd renders a USD amount for display, e.g. "USD 1,260.00".
func FormatUsd(amount float64) string {
	return "USD " + formatThousands(amount)
}

// FormatAmount renders an amount with its currency code.
func FormatAmount(amount float64, currency string) string {
	return currency + " " + formatThousands(amount)
}

func formatThousands(amount float64) string {
	neg := amount < 0
	cents := int64(math.Round(math.Abs(amount) * 100))
	whole := cents / 100
	frac := cents % 100

	s := fmt.Sprintf("%d", whole)
	out := make([]byte, 0, len(s)+len(s)/3)
	for i, c := range []byte(s) {
		if i > 0 && (len(s)-i)%3 == 0 {
			out = append(out, ',')
		}
		out = append(out, c)
	}

	formatted := fmt.Sprintf("%s.%02d", out, frac)
	if neg {
		return "-" + formatted
	}
	return formatted
}
