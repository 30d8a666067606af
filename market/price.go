package market

import (
	"fmt"
	"strconv"
	"strings"
)

// Prices and cash are integers in the smallest currency unit (cents).
// Integer arithmetic keeps the ledger exact; nothing in the engine rounds.
type Price = int64

type Cash = int64

// Scale converts a decimal price string to cents, e.g. "101.50" -> 10150.
const Scale = 100

// ParsePrice parses a decimal price like "101.5" or "99" into cents.
func ParsePrice(s string) (Price, error) {
	s = strings.TrimSpace(s)
	whole, frac, _ := strings.Cut(s, ".")
	v, err := strconv.ParseInt(whole, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parse price %q: %w", s, err)
	}
	neg := strings.HasPrefix(whole, "-")
	cents := v * Scale

	switch len(frac) {
	case 0:
	case 1:
		frac += "0"
		fallthrough
	case 2:
		f, err := strconv.ParseInt(frac, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("parse price %q: %w", s, err)
		}
		if neg {
			f = -f
		}
		cents += f
	default:
		return 0, fmt.Errorf("parse price %q: more than 2 decimal places", s)
	}
	return cents, nil
}

// FormatPrice renders cents back as a decimal string.
func FormatPrice(p Price) string {
	sign := ""
	if p < 0 {
		sign = "-"
		p = -p
	}
	return fmt.Sprintf("%s%d.%02d", sign, p/Scale, p%Scale)
}
