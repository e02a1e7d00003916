package domain

import (
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// ToSignedCents converts a raw persisted amount into signed integer cents.
// It accepts integers, floats and numeric strings. Unparseable input yields
// zero cents; callers must reject zero-amount user input at the edit
// boundary, a zero here is treated as benign for display.
func ToSignedCents(raw any) int64 {
	switch v := raw.(type) {
	case nil:
		return 0
	case int:
		return int64(v)
	case int32:
		return int64(v)
	case int64:
		return v
	case float64:
		return decimal.NewFromFloat(v).Round(0).IntPart()
	case float32:
		return decimal.NewFromFloat32(v).Round(0).IntPart()
	case string:
		if n, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64); err == nil {
			return n
		}
		d, err := decimal.NewFromString(strings.TrimSpace(v))
		if err != nil {
			return 0
		}
		return d.Round(0).IntPart()
	default:
		return 0
	}
}

// FormatAccounting renders cents as an accounting-style currency string:
// $1,234.56 for non-negative amounts, ($1,234.56) for negative ones.
func FormatAccounting(cents int64) string {
	neg := cents < 0
	abs := cents
	if neg {
		abs = -abs
	}

	dollars := abs / 100
	rem := abs % 100

	var b strings.Builder
	if neg {
		b.WriteByte('(')
	}
	b.WriteByte('$')
	b.WriteString(groupThousands(dollars))
	b.WriteByte('.')
	if rem < 10 {
		b.WriteByte('0')
	}
	b.WriteString(strconv.FormatInt(rem, 10))
	if neg {
		b.WriteByte(')')
	}

	return b.String()
}

// ParseUserMoney parses a user-typed currency string into signed cents.
// It accepts an optional leading $, thousands commas, surrounding
// parentheses and a leading minus. Parentheses and a minus both denote
// negation and never compound into a double negative. Fractional digits
// beyond two are truncated, not rounded. Empty or unparseable input
// yields zero.
func ParseUserMoney(text string) int64 {
	s := strings.TrimSpace(text)
	if s == "" {
		return 0
	}

	neg := false
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") && len(s) >= 2 {
		neg = true
		s = strings.TrimSpace(s[1 : len(s)-1])
	}

	s = strings.ReplaceAll(s, "$", "")
	s = strings.ReplaceAll(s, ",", "")
	s = strings.TrimSpace(s)

	if strings.HasPrefix(s, "-") {
		neg = true
		s = strings.TrimSpace(s[1:])
	}

	if s == "" {
		return 0
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0
	}

	cents := d.Abs().Mul(decimal.New(100, 0)).Truncate(0).IntPart()
	if neg {
		cents = -cents
	}

	return cents
}

func groupThousands(n int64) string {
	s := strconv.FormatInt(n, 10)
	if len(s) <= 3 {
		return s
	}

	var b strings.Builder
	lead := len(s) % 3
	if lead > 0 {
		b.WriteString(s[:lead])
	}
	for i := lead; i < len(s); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(s[i : i+3])
	}

	return b.String()
}

func absCents(c int64) int64 {
	if c < 0 {
		return -c
	}
	return c
}
