package forex

import (
	"regexp"
	"strconv"
	"strings"
)

// amountPattern matches the numeric part of a printed price, tolerating
// thousands separators in European and English styles ("1.234,56",
// "1,234.56", "1 234,56", "1'234.56").
var amountPattern = regexp.MustCompile(`\d+(?:[.,'\s\x{00a0}]\d+)*`)

// ParseAmount extracts a numeric amount from raw price text as printed on a
// menu ("€18.50", "18,50 €", "JPY 1,200"). Returns false when no usable
// number is present; it never fails hard, the raw text is kept either way.
func ParseAmount(text string) (float64, bool) {
	match := amountPattern.FindString(text)
	if match == "" {
		return 0, false
	}

	cleaned := strings.Map(func(r rune) rune {
		if r == ' ' || r == '\u00a0' || r == '\'' {
			return -1
		}
		return r
	}, match)

	lastDot := strings.LastIndex(cleaned, ".")
	lastComma := strings.LastIndex(cleaned, ",")

	switch {
	case lastDot >= 0 && lastComma >= 0:
		// Both present: the later one is the decimal separator.
		if lastComma > lastDot {
			cleaned = strings.ReplaceAll(cleaned, ".", "")
			cleaned = strings.Replace(cleaned, ",", ".", 1)
		} else {
			cleaned = strings.ReplaceAll(cleaned, ",", "")
		}
	case lastComma >= 0:
		cleaned = normalizeSingleSeparator(cleaned, ",")
	case lastDot >= 0:
		cleaned = normalizeSingleSeparator(cleaned, ".")
	}

	value, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0, false
	}
	return value, true
}

// normalizeSingleSeparator decides whether a lone separator is decimal or
// thousands: one occurrence followed by 1–2 digits reads as decimal,
// anything else as grouping.
func normalizeSingleSeparator(s, sep string) string {
	if strings.Count(s, sep) == 1 {
		tail := s[strings.Index(s, sep)+1:]
		if len(tail) <= 2 {
			return strings.Replace(s, sep, ".", 1)
		}
	}
	return strings.ReplaceAll(s, sep, "")
}
