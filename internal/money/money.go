package money

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrNoPrice is returned when no monetary value can be recovered from a
// text fragment. It is distinct from a parsed zero amount.
var ErrNoPrice = errors.New("money: no price in text")

// Amount is an exact price in centavos. Prices are kept integral to avoid
// float rounding and external decimal deps.
type Amount int64

// String renders the amount with fixed two decimals (e.g. "4249.00").
func (a Amount) String() string {
	cents := int64(a)
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	return fmt.Sprintf("%s%d.%02d", sign, cents/100, cents%100)
}

// FromCents wraps an adapter-native minor-unit price.
func FromCents(v int64) Amount { return Amount(v) }

// FromMajorUnits converts an adapter-native major-unit price (e.g. a JSON
// number like 4249.9) to centavos, rounding half away from zero.
func FromMajorUnits(v float64) Amount {
	if v >= 0 {
		return Amount(v*100 + 0.5)
	}
	return Amount(v*100 - 0.5)
}

// Parse extracts a locale-formatted currency value from arbitrary text.
// The text may carry currency symbols, grouping separators and unrelated
// words ("de R$ 4.249,00 em 10x"). Rules:
//   - everything except digits, '.' and ',' is stripped first
//   - both separators present: '.' groups thousands, ',' marks decimals
//   - a single separator followed by exactly 3 digits groups thousands;
//     followed by 1-2 digits it marks decimals
//
// All malformed input maps to ErrNoPrice; Parse never panics.
func Parse(text string) (Amount, error) {
	var b strings.Builder
	for _, r := range text {
		if (r >= '0' && r <= '9') || r == '.' || r == ',' {
			b.WriteRune(r)
		}
	}
	s := b.String()
	if s == "" {
		return 0, ErrNoPrice
	}

	hasDot := strings.Contains(s, ".")
	hasComma := strings.Contains(s, ",")
	switch {
	case hasDot && hasComma:
		s = strings.ReplaceAll(s, ".", "")
		s = strings.Replace(s, ",", ".", 1)
	case hasComma:
		s = resolveSingleSeparator(s, ",")
	case hasDot:
		s = resolveSingleSeparator(s, ".")
	}
	if strings.ContainsAny(s, ".,") {
		// separator survived resolution in an ambiguous position
		return 0, ErrNoPrice
	}

	return parsePlain(s)
}

// resolveSingleSeparator decides whether the only separator kind present is
// grouping or decimal. Multiple occurrences ("1.234.567") are always
// grouping. A single occurrence is grouping when exactly 3 digits follow,
// decimal when 1-2 digits follow; anything else is left for the caller to
// reject.
func resolveSingleSeparator(s, sep string) string {
	if strings.Count(s, sep) > 1 {
		return strings.ReplaceAll(s, sep, "")
	}
	idx := strings.Index(s, sep)
	tail := len(s) - idx - 1
	switch {
	case tail == 3:
		return strings.ReplaceAll(s, sep, "")
	case tail == 1 || tail == 2:
		return s[:idx] + "." + s[idx+1:]
	default:
		return s
	}
}

// parsePlain parses "1234" or "1234.56" into centavos without going through
// floats.
func parsePlain(s string) (Amount, error) {
	whole := s
	frac := ""
	if idx := strings.IndexByte(s, '.'); idx >= 0 {
		whole, frac = s[:idx], s[idx+1:]
	}
	if whole == "" && frac == "" {
		return 0, ErrNoPrice
	}
	if whole == "" {
		whole = "0"
	}
	switch len(frac) {
	case 0:
		frac = "00"
	case 1:
		frac += "0"
	case 2:
	default:
		return 0, ErrNoPrice
	}
	w, err := strconv.ParseInt(whole, 10, 64)
	if err != nil {
		return 0, ErrNoPrice
	}
	f, err := strconv.ParseInt(frac, 10, 64)
	if err != nil {
		return 0, ErrNoPrice
	}
	return Amount(w*100 + f), nil
}
