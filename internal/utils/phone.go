package utils

import (
	"strings"
	"unicode"
)

// MinPhoneDigits is the shortest number accepted during contact capture
const MinPhoneDigits = 9

// NormalizePhone strips the channel prefix and every non-digit except a leading +
func NormalizePhone(raw string) string {
	raw = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(raw), "whatsapp:"))
	var b strings.Builder
	for i, r := range raw {
		if r == '+' && i == 0 {
			b.WriteRune(r)
			continue
		}
		if unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// ValidPhone reports whether the number has enough digits to call back
func ValidPhone(raw string) bool {
	return len(strings.TrimPrefix(NormalizePhone(raw), "+")) >= MinPhoneDigits
}
