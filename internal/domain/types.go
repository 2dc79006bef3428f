// Package domain defines the persisted entities of the budget dataset:
// transactions imported from screenshots, user categories, budgets, and
// accounts. Entities reference each other by identifier only; there are no
// owning pointers, which keeps the backup format a serialization-safe tree.
package domain

import (
	"fmt"
	"time"
)

// ReviewThreshold is the parser confidence below which an imported
// transaction is flagged for manual correction. The flag is derived once at
// creation time and never re-evaluated.
const ReviewThreshold = 0.7

// Transaction is a stored financial transaction. Created at import time from
// a parsed candidate, mutated only by manual user edits, deleted by user
// action.
type Transaction struct {
	ID              string     `json:"id"`
	Date            time.Time  `json:"date"`
	Amount          float64    `json:"amount"` // Always non-negative; direction lives in IsIncome.
	IsIncome        bool       `json:"isIncome"`
	Merchant        string     `json:"merchant"`
	Description     string     `json:"description"`
	CategoryID      *string    `json:"categoryId,omitempty"`
	AccountID       *string    `json:"accountId,omitempty"`
	Reviewed        bool       `json:"reviewed"`
	NeedsCorrection bool       `json:"needsCorrection"`
	OriginalText    string     `json:"originalText"`
	ScreenshotHash  string     `json:"screenshotHash"`
	CreatedAt       time.Time  `json:"createdAt"`
	ModifiedAt      time.Time  `json:"modifiedAt"`
}

// NewTransaction creates a validated transaction.
func NewTransaction(id string, date time.Time, amount float64, merchant, description string) (*Transaction, error) {
	if id == "" {
		return nil, fmt.Errorf("transaction ID cannot be empty")
	}
	if date.IsZero() {
		return nil, fmt.Errorf("transaction date cannot be zero")
	}
	if amount < 0 {
		return nil, fmt.Errorf("transaction amount must be non-negative, got %f", amount)
	}
	if merchant == "" {
		return nil, fmt.Errorf("merchant cannot be empty")
	}

	now := time.Now().UTC()
	return &Transaction{
		ID:          id,
		Date:        date,
		Amount:      amount,
		Merchant:    merchant,
		Description: description,
		CreatedAt:   now,
		ModifiedAt:  now,
	}, nil
}

// Category is a user-defined spending category.
type Category struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Color string `json:"color"`
}

// NewCategory creates a validated category.
func NewCategory(id, name, color string) (*Category, error) {
	if id == "" {
		return nil, fmt.Errorf("category ID cannot be empty")
	}
	if name == "" {
		return nil, fmt.Errorf("category name cannot be empty")
	}

	return &Category{ID: id, Name: name, Color: color}, nil
}

// Budget is a monthly spending limit, optionally scoped to one category.
type Budget struct {
	ID         string  `json:"id"`
	CategoryID *string `json:"categoryId,omitempty"`
	Amount     float64 `json:"amount"`
	Period     string  `json:"period"` // YYYY-MM
}

// NewBudget creates a validated budget.
func NewBudget(id string, amount float64, period string) (*Budget, error) {
	if id == "" {
		return nil, fmt.Errorf("budget ID cannot be empty")
	}
	if amount <= 0 {
		return nil, fmt.Errorf("budget amount must be positive, got %f", amount)
	}
	if _, err := time.Parse("2006-01", period); err != nil {
		return nil, fmt.Errorf("invalid budget period %q (expected YYYY-MM): %w", period, err)
	}

	return &Budget{ID: id, Amount: amount, Period: period}, nil
}

// Account is a bank account screenshots are imported against. Duplicate
// detection is optionally scoped to one account.
type Account struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// NewAccount creates a validated account.
func NewAccount(id, name string) (*Account, error) {
	if id == "" {
		return nil, fmt.Errorf("account ID cannot be empty")
	}
	if name == "" {
		return nil, fmt.Errorf("account name cannot be empty")
	}

	return &Account{ID: id, Name: name}, nil
}
