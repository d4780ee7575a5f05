package service

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Round2 rounds half away from zero to two decimals for presentation.
func Round2(v float64) float64 {
	return decimal.NewFromFloat(v).Round(2).InexactFloat64()
}

// FormatINR renders an amount with Indian digit grouping, e.g. ₹12,34,567.50.
func FormatINR(v float64) string {
	d := decimal.NewFromFloat(v)
	if d.IsNegative() {
		return "-₹" + formatIndian(d.Abs(), 2)
	}
	return "₹" + formatIndian(d, 2)
}

// FormatVolume renders liters with Indian grouping. Whole numbers drop the decimals.
func FormatVolume(v float64) string {
	d := decimal.NewFromFloat(v).Round(2)
	places := int32(2)
	if d.Equal(d.Truncate(0)) {
		places = 0
	}
	return formatIndian(d, places) + " L"
}

// formatIndian groups the integer part as 3 digits then pairs: 1,23,45,678.
func formatIndian(d decimal.Decimal, places int32) string {
	neg := d.IsNegative()
	s := d.Abs().StringFixed(places)

	intPart, frac, _ := strings.Cut(s, ".")

	var b strings.Builder
	if len(intPart) > 3 {
		head := intPart[:len(intPart)-3]
		tail := intPart[len(intPart)-3:]
		if len(head)%2 == 1 {
			b.WriteString(head[:1])
			head = head[1:]
			if len(head) > 0 {
				b.WriteByte(',')
			}
		}
		for i := 0; i < len(head); i += 2 {
			b.WriteString(head[i : i+2])
			if i+2 < len(head) {
				b.WriteByte(',')
			}
		}
		b.WriteByte(',')
		b.WriteString(tail)
	} else {
		b.WriteString(intPart)
	}

	out := b.String()
	if frac != "" {
		out += "." + frac
	}
	if neg {
		out = "-" + out
	}
	return out
}
