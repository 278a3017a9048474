package utils

import (
	"strconv"
	"strings"
)

// FormatEUR formats a whole-euro amount as a string like "€ 1.250".
// Uses dot as thousands separator (Italian convention).
func FormatEUR(amount int64) string {
	neg := amount < 0
	if neg {
		amount = -amount
	}

	s := strconv.FormatInt(amount, 10)
	prefix := "€ "
	if neg {
		prefix = "-€ "
	}
	if len(s) <= 3 {
		return prefix + s
	}

	var b strings.Builder
	b.Grow(len(prefix) + len(s) + len(s)/3)
	b.WriteString(prefix)

	// Insert separators from the left.
	rem := len(s) % 3
	if rem == 0 {
		rem = 3
	}
	b.WriteString(s[:rem])
	for i := rem; i < len(s); i += 3 {
		b.WriteByte('.')
		b.WriteString(s[i : i+3])
	}

	return b.String()
}

// FormatSavings formats a saving as "-€ 305", or "" when there is nothing saved
func FormatSavings(amount int64) string {
	if amount <= 0 {
		return ""
	}
	return "-" + FormatEUR(amount)
}
