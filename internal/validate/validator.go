// Package validate checks a decrypted backup payload for integrity problems
// before it is merged into the store.
package validate

import (
	"fmt"
	"time"

	"github.com/alexchiri/budget-snap/internal/backup"
)

// Result contains all validation errors and warnings for a payload.
type Result struct {
	Errors   []Issue
	Warnings []Issue
}

// Issue describes one validation finding.
type Issue struct {
	Entity  string // "transaction", "budget", "category"
	ID      string
	Field   string
	Value   string
	Message string
}

// OK reports whether the payload has no errors. Warnings do not block a
// restore.
func (r *Result) OK() bool {
	return len(r.Errors) == 0
}

// Payload validates a decrypted backup payload: per-entity field constraints,
// duplicate identifiers, and category references. A reference to a category
// missing from the payload is a warning, not an error, because the restore
// may resolve it against categories already in the store.
func Payload(p *backup.Payload) *Result {
	result := &Result{
		Errors:   []Issue{},
		Warnings: []Issue{},
	}

	categoryIDs := make(map[string]bool)
	budgetIDs := make(map[string]bool)
	transactionIDs := make(map[string]bool)

	for _, c := range p.Categories {
		if c.ID == "" {
			result.Errors = append(result.Errors, Issue{
				Entity:  "category",
				Field:   "ID",
				Message: "category ID cannot be empty",
			})
		}
		if c.Name == "" {
			result.Errors = append(result.Errors, Issue{
				Entity:  "category",
				ID:      c.ID,
				Field:   "Name",
				Message: "category name cannot be empty",
			})
		}
		if c.ID != "" {
			if categoryIDs[c.ID] {
				result.Errors = append(result.Errors, Issue{
					Entity:  "category",
					ID:      c.ID,
					Field:   "ID",
					Value:   c.ID,
					Message: "duplicate category ID",
				})
			}
			categoryIDs[c.ID] = true
		}
	}

	for _, b := range p.Budgets {
		if b.ID == "" {
			result.Errors = append(result.Errors, Issue{
				Entity:  "budget",
				Field:   "ID",
				Message: "budget ID cannot be empty",
			})
		}
		if b.Amount <= 0 {
			result.Errors = append(result.Errors, Issue{
				Entity:  "budget",
				ID:      b.ID,
				Field:   "Amount",
				Value:   fmt.Sprintf("%f", b.Amount),
				Message: "budget amount must be positive",
			})
		}
		if _, err := time.Parse("2006-01", b.Period); err != nil {
			result.Errors = append(result.Errors, Issue{
				Entity:  "budget",
				ID:      b.ID,
				Field:   "Period",
				Value:   b.Period,
				Message: fmt.Sprintf("invalid period (expected YYYY-MM): %v", err),
			})
		}
		if b.CategoryID != nil && !categoryIDs[*b.CategoryID] {
			result.Warnings = append(result.Warnings, Issue{
				Entity:  "budget",
				ID:      b.ID,
				Field:   "CategoryID",
				Value:   *b.CategoryID,
				Message: fmt.Sprintf("references category not in payload: %s", *b.CategoryID),
			})
		}
		if b.ID != "" {
			if budgetIDs[b.ID] {
				result.Errors = append(result.Errors, Issue{
					Entity:  "budget",
					ID:      b.ID,
					Field:   "ID",
					Value:   b.ID,
					Message: "duplicate budget ID",
				})
			}
			budgetIDs[b.ID] = true
		}
	}

	for _, t := range p.Transactions {
		if t.ID == "" {
			result.Errors = append(result.Errors, Issue{
				Entity:  "transaction",
				Field:   "ID",
				Message: "transaction ID cannot be empty",
			})
		}
		if t.Amount < 0 {
			result.Errors = append(result.Errors, Issue{
				Entity:  "transaction",
				ID:      t.ID,
				Field:   "Amount",
				Value:   fmt.Sprintf("%f", t.Amount),
				Message: "transaction amount must be non-negative (direction lives in isIncome)",
			})
		}
		if t.Merchant == "" {
			result.Errors = append(result.Errors, Issue{
				Entity:  "transaction",
				ID:      t.ID,
				Field:   "Merchant",
				Message: "transaction merchant cannot be empty",
			})
		}
		if t.Date.IsZero() {
			result.Errors = append(result.Errors, Issue{
				Entity:  "transaction",
				ID:      t.ID,
				Field:   "Date",
				Message: "transaction date cannot be zero",
			})
		}
		if t.CategoryID != nil && !categoryIDs[*t.CategoryID] {
			result.Warnings = append(result.Warnings, Issue{
				Entity:  "transaction",
				ID:      t.ID,
				Field:   "CategoryID",
				Value:   *t.CategoryID,
				Message: fmt.Sprintf("references category not in payload: %s", *t.CategoryID),
			})
		}
		if t.ID != "" {
			if transactionIDs[t.ID] {
				result.Errors = append(result.Errors, Issue{
					Entity:  "transaction",
					ID:      t.ID,
					Field:   "ID",
					Value:   t.ID,
					Message: "duplicate transaction ID",
				})
			}
			transactionIDs[t.ID] = true
		}
	}

	return result
}
