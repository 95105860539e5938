package scraper

import (
	"strings"

	"github.com/shopspring/decimal"
)

// ParsePrice turns free-form currency text into a positive amount. It keeps
// only digits and '.', so "₹1,299.50" becomes 1299.50. Anything that does
// not leave exactly one positive number is reported as missing.
func ParsePrice(raw string) (decimal.Decimal, bool) {
	var b strings.Builder
	for _, r := range raw {
		if (r >= '0' && r <= '9') || r == '.' {
			b.WriteRune(r)
		}
	}
	// "Rs. 1,299" leaves a stray leading dot from the currency label.
	cleaned := strings.Trim(b.String(), ".")
	if cleaned == "" || strings.Count(cleaned, ".") > 1 {
		return decimal.Zero, false
	}

	d, err := decimal.NewFromString(cleaned)
	if err != nil || !d.IsPositive() {
		return decimal.Zero, false
	}
	return d, true
}
