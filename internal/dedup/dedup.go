// Package dedup decides whether a screenshot or a candidate transaction has
// already been imported, using exact matching against the store plus fuzzy
// string-distance matching for human-reviewable suggestions.
package dedup

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/alexchiri/budget-snap/internal/domain"
	"github.com/alexchiri/budget-snap/internal/similarity"
)

// Default matching tolerances. Exact duplicate rejection favors precision
// (exact merchant string, tight date window); similarity search favors recall
// and is only surfaced to a human.
const (
	TransactionDateTolerance = 24 * time.Hour
	SimilarAmountTolerance   = 0.01
	SimilarDateTolerance     = 72 * time.Hour
	MerchantDistanceLimit    = 5
)

// Query is the read-only view of stored transactions the detector needs.
// accountID scopes the search to one account when non-nil.
type Query interface {
	ByScreenshotHash(ctx context.Context, hash string, accountID *string) ([]domain.Transaction, error)
	ByExactMatch(ctx context.Context, amount float64, merchant string, from, to time.Time, accountID *string) ([]domain.Transaction, error)
	ByRange(ctx context.Context, minAmount, maxAmount float64, from, to time.Time, accountID *string) ([]domain.Transaction, error)
}

// Detector screens candidates against previously stored transactions. It is
// stateless; every check goes through the query interface.
type Detector struct {
	query Query
	log   *slog.Logger
}

// New creates a detector over the given query interface. A nil logger falls
// back to slog.Default.
func New(query Query, log *slog.Logger) *Detector {
	if log == nil {
		log = slog.Default()
	}
	return &Detector{query: query, log: log}
}

// IsScreenshotDuplicate reports whether any stored transaction carries the
// given screenshot hash, meaning the source image was already imported.
//
// A query failure is logged and answered with false: import availability is
// preferred over strict duplicate prevention. Do not change this to
// fail-closed without a product decision.
func (d *Detector) IsScreenshotDuplicate(ctx context.Context, hash string, accountID *string) bool {
	if hash == "" {
		return false
	}

	matches, err := d.query.ByScreenshotHash(ctx, hash, accountID)
	if err != nil {
		d.log.Warn("screenshot duplicate check failed, treating as not duplicate",
			"hash", hash, "error", err)
		return false
	}
	return len(matches) > 0
}

// IsTransactionDuplicate reports whether a stored transaction exists with
// exactly this amount, exactly this merchant string, and a date within
// TransactionDateTolerance of the given date. Used to reject candidate rows
// before insertion. Fail-open on query errors, same as screenshot checks.
func (d *Detector) IsTransactionDuplicate(ctx context.Context, amount float64, merchant string, date time.Time, accountID *string) bool {
	from := date.Add(-TransactionDateTolerance)
	to := date.Add(TransactionDateTolerance)

	matches, err := d.query.ByExactMatch(ctx, amount, merchant, from, to, accountID)
	if err != nil {
		d.log.Warn("transaction duplicate check failed, treating as not duplicate",
			"merchant", merchant, "amount", amount, "error", err)
		return false
	}
	return len(matches) > 0
}

// FindSimilarTransactions returns stored transactions within
// SimilarAmountTolerance and SimilarDateTolerance whose merchant is within
// MerchantDistanceLimit case-insensitive edits of the given merchant. The
// result is a suggestion list for manual review, never an automatic
// rejection. Returns nil on query failure.
func (d *Detector) FindSimilarTransactions(ctx context.Context, amount float64, merchant string, date time.Time, accountID *string) []domain.Transaction {
	from := date.Add(-SimilarDateTolerance)
	to := date.Add(SimilarDateTolerance)

	matches, err := d.query.ByRange(ctx, amount-SimilarAmountTolerance, amount+SimilarAmountTolerance, from, to, accountID)
	if err != nil {
		d.log.Warn("similarity search failed, returning no suggestions",
			"merchant", merchant, "amount", amount, "error", err)
		return nil
	}

	target := strings.ToLower(merchant)
	var similar []domain.Transaction
	for _, t := range matches {
		if similarity.Levenshtein(target, strings.ToLower(t.Merchant)) < MerchantDistanceLimit {
			similar = append(similar, t)
		}
	}
	return similar
}
