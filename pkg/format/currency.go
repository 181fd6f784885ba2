// Package format renders money and ratios for human readers.
package format

import (
	"fmt"
	"strings"

	"github.com/iwvelando/campaign-planner/pkg/currency"
)

// Currency returns a currency string with a dollar sign and thousands separators (e.g., "-$1,234.56").
func Currency(amount currency.Amount) string {
	if amount < 0 {
		return "-$" + groupDigits((-amount).String())
	}
	return "$" + groupDigits(amount.String())
}

// NumericCurrency returns a currency string without a currency symbol but with separators (e.g., "-1,234.56").
func NumericCurrency(amount currency.Amount) string {
	if amount < 0 {
		return "-" + groupDigits((-amount).String())
	}
	return groupDigits(amount.String())
}

// Count renders a whole number with thousands separators.
func Count(n int64) string {
	if n < 0 {
		return "-" + groupDigits(fmt.Sprintf("%d", -n))
	}
	return groupDigits(fmt.Sprintf("%d", n))
}

// Ratio renders a ratio such as ROAS with two decimals and an "x" suffix.
func Ratio(value float64) string {
	return fmt.Sprintf("%.2fx", value)
}

func groupDigits(formatted string) string {
	parts := strings.SplitN(formatted, ".", 2)
	intPart := parts[0]

	if len(intPart) > 3 {
		var builder strings.Builder
		for i, digit := range intPart {
			if i > 0 && (len(intPart)-i)%3 == 0 {
				builder.WriteByte(',')
			}
			builder.WriteRune(digit)
		}
		intPart = builder.String()
	}

	if len(parts) == 2 {
		return intPart + "." + parts[1]
	}
	return intPart
}
