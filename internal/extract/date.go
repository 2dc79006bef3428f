package extract

import (
	"regexp"
	"strings"
	"time"
)

// dateFormat pairs a surface-form regex with the time layouts used to parse
// whatever the regex matched.
type dateFormat struct {
	re      *regexp.Regexp
	layouts []string
	hasYear bool
}

// Date formats are tried in fixed priority order and the first successful
// parse wins. MM/DD is tried before DD/MM, so ambiguous dates like 03/04/2024
// resolve as March 4th. This is an accepted limitation, not locale inference.
var dateFormats = []dateFormat{
	{
		re:      regexp.MustCompile(`\b\d{1,2}/\d{1,2}/\d{4}\b`),
		layouts: []string{"1/2/2006"}, // MM/DD/YYYY
		hasYear: true,
	},
	{
		re:      regexp.MustCompile(`\b\d{1,2}/\d{1,2}/\d{2}\b`),
		layouts: []string{"1/2/06"}, // MM/DD/YY
		hasYear: true,
	},
	{
		re:      regexp.MustCompile(`\b\d{1,2}/\d{1,2}/\d{4}\b`),
		layouts: []string{"2/1/2006"}, // DD/MM/YYYY
		hasYear: true,
	},
	{
		re:      regexp.MustCompile(`\b\d{1,2}/\d{1,2}/\d{2}\b`),
		layouts: []string{"2/1/06"}, // DD/MM/YY
		hasYear: true,
	},
	{
		re:      regexp.MustCompile(`\b\d{4}-\d{2}-\d{2}\b`),
		layouts: []string{"2006-01-02"},
		hasYear: true,
	},
	{
		re:      regexp.MustCompile(`(?i)\b(?:jan|feb|mar|apr|may|jun|jul|aug|sep|oct|nov|dec)[a-z]*\.?\s+\d{1,2},?\s+\d{4}\b`),
		layouts: []string{"Jan 2, 2006", "Jan 2 2006", "January 2, 2006", "January 2 2006"},
		hasYear: true,
	},
	{
		re:      regexp.MustCompile(`(?i)\b(?:jan|feb|mar|apr|may|jun|jul|aug|sep|oct|nov|dec)[a-z]*\.?\s+\d{1,2}\b`),
		layouts: []string{"Jan 2", "January 2"},
		hasYear: false,
	},
}

// Date returns the first date found in the given text window (typically the
// target line plus two neighbors in each direction, newline-joined).
//
// When nothing matches, the current time is returned with found=false. Every
// candidate transaction gets a usable default date at the cost of silently
// wrong dates when OCR mangled the text; callers account for this through the
// confidence score, so do not change this to an error.
func Date(window string, now time.Time) (date time.Time, found bool) {
	for _, df := range dateFormats {
		match := df.re.FindString(window)
		if match == "" {
			continue
		}

		normalized := normalizeDateText(match)
		for _, layout := range df.layouts {
			parsed, err := time.Parse(layout, normalized)
			if err != nil {
				continue
			}
			if !df.hasYear {
				parsed = time.Date(now.Year(), parsed.Month(), parsed.Day(), 0, 0, 0, 0, time.UTC)
			}
			return parsed, true
		}
	}

	return now, false
}

// StripDates removes every recognized date substring from the line. Used by
// merchant extraction so dates never leak into merchant names.
func StripDates(line string) string {
	for _, df := range dateFormats {
		line = df.re.ReplaceAllString(line, " ")
	}
	return line
}

// normalizeDateText prepares an OCR-matched date for time.Parse: collapse
// whitespace, drop abbreviation periods, and capitalize the month name.
func normalizeDateText(s string) string {
	s = strings.ReplaceAll(s, ".", "")
	s = strings.Join(strings.Fields(s), " ")
	if s == "" {
		return s
	}

	lower := strings.ToLower(s)
	if lower[0] >= 'a' && lower[0] <= 'z' {
		return strings.ToUpper(lower[:1]) + lower[1:]
	}
	return s
}
