// Package money rounds and formats monetary amounts at 2-decimal precision.
package money

import (
	"fmt"
	"math"
)

// Round rounds half away from zero to 2 decimals.
func Round(v float64) float64 {
	return math.Round(v*100) / 100
}

// Format renders an amount for documents and emails, e.g. "1029.35 EUR".
func Format(v float64) string {
	return fmt.Sprintf("%.2f EUR", Round(v))
}
