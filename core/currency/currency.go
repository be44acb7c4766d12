// Package currency formats monetary amounts for display.
// Formatting is a presentation concern only: raw numeric values are always
// what goes over the wire, never formatted strings.
package currency

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Formatter renders amounts with a fixed symbol, two decimal places and
// thousands grouping ("£1,234.56")
type Formatter struct {
	// Symbol is prefixed to the amount
	Symbol string
}

// Default is the marketplace display convention
var Default = Formatter{Symbol: "£"}

// Format renders an amount
func (f Formatter) Format(amount decimal.Decimal) string {
	s := amount.StringFixed(2)

	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}

	intPart, fracPart, _ := strings.Cut(s, ".")

	var b strings.Builder
	if neg {
		b.WriteByte('-')
	}
	b.WriteString(f.Symbol)
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	b.WriteByte('.')
	b.WriteString(fracPart)
	return b.String()
}

// Multiplier renders an informational multiplier factor ("x1.2")
func (f Formatter) Multiplier(factor decimal.Decimal) string {
	return "x" + factor.StringFixed(1)
}

// Format renders an amount with the default convention
func Format(amount decimal.Decimal) string {
	return Default.Format(amount)
}
