// Package transform provides naming helpers shared by the scanner and store:
// slugging directory names into stable account identifiers and normalizing
// merchant text for rule matching.
package transform

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var nonAlphanumeric = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify converts a display name to a URL-safe slug.
// Examples: "Everyday Checking" → "everyday-checking", "Crédit Café" → "credit-cafe"
func Slugify(name string) (string, error) {
	if name == "" {
		return "", fmt.Errorf("name cannot be empty")
	}

	// Normalize unicode so accented characters survive as their base letters.
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	normalized, _, err := transform.String(t, name)
	if err != nil {
		return "", fmt.Errorf("failed to normalize name %q: %w", name, err)
	}
	if normalized == "" {
		return "", fmt.Errorf("name %q contains only non-displayable unicode characters", name)
	}

	slug := strings.ToLower(normalized)
	slug = nonAlphanumeric.ReplaceAllString(slug, "-")
	slug = strings.Trim(slug, "-")

	if slug == "" {
		return "", fmt.Errorf("name %q contains no alphanumeric characters", name)
	}
	return slug, nil
}

// AccountID creates a deterministic account identifier from a directory name.
// Format: "acc-{slug}". Example: AccountID("Everyday Checking") → "acc-everyday-checking"
func AccountID(name string) (string, error) {
	slug, err := Slugify(name)
	if err != nil {
		return "", err
	}
	return "acc-" + slug, nil
}

// NormalizeMerchant lowercases, strips diacritics, and collapses whitespace.
// Used for rule matching, never for exact duplicate comparison.
func NormalizeMerchant(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	normalized, _, err := transform.String(t, s)
	if err != nil {
		normalized = s
	}
	return strings.Join(strings.Fields(strings.ToLower(normalized)), " ")
}
