package extract

import "strings"

// UnknownMerchant is the sentinel returned when a line contains no text
// besides its amount and date. Callers must treat it as "no merchant
// identified", never as a real merchant name; it is excluded from confidence
// bonuses and fuzzy duplicate matching.
const UnknownMerchant = "Unknown Merchant"

// Merchant extracts the merchant name from a line by removing the matched
// amount substring and any recognized date substrings, then collapsing
// whitespace. Returns UnknownMerchant when nothing remains.
func Merchant(line, amountRaw string) string {
	remainder := line
	if amountRaw != "" {
		remainder = strings.Replace(remainder, amountRaw, " ", 1)
	}
	remainder = StripDates(remainder)
	remainder = strings.Join(strings.Fields(remainder), " ")

	if remainder == "" {
		return UnknownMerchant
	}
	return remainder
}
