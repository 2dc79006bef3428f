// Package extract provides pattern matchers that pull monetary amounts,
// dates, and merchant names out of single lines of recognized screenshot text.
package extract

import (
	"regexp"
	"strconv"
	"strings"
)

// AmountMatch is a monetary value found in a line together with the exact
// substring that produced it. Raw covers any adjacent sign characters so
// callers can strip the full match from the line.
type AmountMatch struct {
	Value float64
	Raw   string
}

// Amount patterns are tried in priority order; the first pattern that matches
// anywhere in the line wins, even if a later pattern would match more text.
var amountPatterns = []*regexp.Regexp{
	regexp.MustCompile(`\$?\d{1,3}(?:,\d{3})*\.\d{2}`), // $123.45 or 123.45
	regexp.MustCompile(`\$?\d+`),                       // $123 or 123
}

// Amount returns the first monetary value found in the line.
// Recognized forms, in priority order: decimal amounts ($123.45, 123.45),
// then bare integers ($123, 123). A '(' or '-' immediately before the match
// makes the result negative (banking apps render expenses both ways).
// Thousands separators are stripped before parsing. Returns false when the
// line contains no recognizable numeric substring.
func Amount(line string) (AmountMatch, bool) {
	for _, re := range amountPatterns {
		loc := re.FindStringIndex(line)
		if loc == nil {
			continue
		}

		start, end := loc[0], loc[1]
		negative := false

		// Sign detection: look at the character immediately preceding the
		// numeric match and fold it into the raw substring so merchant
		// extraction removes it too.
		if start > 0 {
			switch line[start-1] {
			case '(':
				negative = true
				start--
				if end < len(line) && line[end] == ')' {
					end++
				}
			case '-':
				negative = true
				start--
			}
		}

		raw := line[start:end]
		numeric := strings.TrimFunc(raw, func(r rune) bool {
			return r == '(' || r == ')' || r == '-' || r == '$'
		})
		numeric = strings.ReplaceAll(numeric, ",", "")

		value, err := strconv.ParseFloat(numeric, 64)
		if err != nil {
			// Matched substring should always parse; treat failure as no match.
			continue
		}
		if negative {
			value = -value
		}

		return AmountMatch{Value: value, Raw: raw}, true
	}

	return AmountMatch{}, false
}
