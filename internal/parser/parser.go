// Package parser turns blocks of recognized screenshot text into scored
// candidate transactions. Parsing is a pure function of its input: no I/O, no
// shared state, safe to run in parallel across screenshots.
package parser

import (
	"math"
	"strings"
	"time"

	"github.com/alexchiri/budget-snap/internal/extract"
)

// Number of neighboring lines, in each direction, joined into the window
// handed to date extraction. Banking apps often render the date on the row
// above or below the amount.
const dateWindow = 2

// Tolerances for intra-batch deduplication: a single screenshot can produce
// repeated OCR detections of the same row.
const batchAmountTolerance = 0.01

// Candidate is a parser-produced, not-yet-persisted transaction guess.
// Immutable once produced; the caller decides persistence.
type Candidate struct {
	Date        time.Time
	DateFound   bool // False when Date is the fallback, not parsed text.
	Amount      float64
	Merchant    string
	Description string // Verbatim source line.
	Confidence  float64
	SourceText  string
	NeedsReview bool
}

// Parser orchestrates the amount/date/merchant extractors over recognized
// text blocks.
type Parser struct {
	now func() time.Time
}

// New creates a parser using the wall clock for date fallbacks.
func New() *Parser {
	return &Parser{now: time.Now}
}

// NewWithClock creates a parser with a fixed clock, for tests.
func NewWithClock(now func() time.Time) *Parser {
	return &Parser{now: now}
}

// Parse extracts candidate transactions from a block of recognized text.
//
// A line with no recognizable amount is not a transaction and is skipped;
// this is the primary rejection path, not an error. Malformed input never
// fails — worst case the result is empty.
func (p *Parser) Parse(text string) []Candidate {
	lines := strings.Split(text, "\n")
	now := p.now()

	var accepted []Candidate
	for i, line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}

		amount, ok := extract.Amount(trimmed)
		if !ok {
			continue
		}

		window := neighborWindow(lines, i)
		date, dateFound := extract.Date(window, now)
		merchant := extract.Merchant(trimmed, amount.Raw)

		candidate := Candidate{
			Date:        date,
			DateFound:   dateFound,
			Amount:      math.Abs(amount.Value),
			Merchant:    merchant,
			Description: trimmed,
			SourceText:  trimmed,
		}
		candidate.Confidence = score(dateFound, merchant)
		candidate.NeedsReview = candidate.Confidence < 0.7

		if isBatchDuplicate(accepted, candidate) {
			continue
		}
		accepted = append(accepted, candidate)
	}

	return accepted
}

// score computes the additive confidence for a candidate. Reaching this point
// implies an amount was found, which contributes the 0.4 base.
func score(dateFound bool, merchant string) float64 {
	confidence := 0.4
	if dateFound {
		confidence += 0.3
	}
	if merchant != "" && merchant != extract.UnknownMerchant {
		confidence += 0.3
		if len(merchant) > 3 && len(merchant) < 50 {
			confidence += 0.1
		}
	}
	if confidence > 1.0 {
		confidence = 1.0
	}
	return confidence
}

// neighborWindow joins the target line with up to dateWindow lines in each
// direction, newline-separated.
func neighborWindow(lines []string, i int) string {
	start := i - dateWindow
	if start < 0 {
		start = 0
	}
	end := i + dateWindow + 1
	if end > len(lines) {
		end = len(lines)
	}
	return strings.Join(lines[start:end], "\n")
}

// isBatchDuplicate reports whether an already-accepted candidate in the same
// parse call has a near-identical amount, the same merchant string, and a
// date on the same calendar day. Independent of cross-screenshot duplicate
// detection.
func isBatchDuplicate(accepted []Candidate, c Candidate) bool {
	for _, a := range accepted {
		if math.Abs(a.Amount-c.Amount) > batchAmountTolerance {
			continue
		}
		if a.Merchant != c.Merchant {
			continue
		}
		ay, am, ad := a.Date.Date()
		cy, cm, cd := c.Date.Date()
		if ay == cy && am == cm && ad == cd {
			return true
		}
	}
	return false
}
