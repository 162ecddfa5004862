package utils

import (
	"strconv"
	"strings"
)

// CurrencyPrefix is printed before every amount
const CurrencyPrefix = "TSh"

// FormatMoney renders minor units with thousands separators: 125000 -> "TSh 125,000"
func FormatMoney(amount int64) string {
	return CurrencyPrefix + " " + GroupThousands(amount)
}

// GroupThousands inserts commas every three digits
func GroupThousands(n int64) string {
	sign := ""
	if n < 0 {
		sign = "-"
		n = -n
	}
	digits := strconv.FormatInt(n, 10)
	var b strings.Builder
	pre := len(digits) % 3
	if pre > 0 {
		b.WriteString(digits[:pre])
	}
	for i := pre; i < len(digits); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(digits[i : i+3])
	}
	return sign + b.String()
}
