// Package backup serializes the full budget dataset into a versioned,
// password-encrypted container and reverses the process on import.
//
// Container layout, fixed order and fixed-length prefix fields:
//
//	salt(32) ‖ nonce(12) ‖ ciphertext(variable) ‖ tag(16)
//
// The key is derived from the password with PBKDF2-SHA256 and the per-export
// random salt; AES-256-GCM authenticates the whole payload, so any tampering
// or wrong password fails the import atomically.
package backup

import (
	"fmt"
	"time"
)

// FormatVersion identifies the payload schema. Unknown versions are rejected
// on import rather than guessed at.
const FormatVersion = "1.0"

// Payload is the plaintext document inside a backup container. Export records
// are flattened projections of the live entities: scalar fields plus
// identifier-based foreign keys, never owning references.
type Payload struct {
	FormatVersion string              `json:"formatVersion"`
	ExportedAt    time.Time           `json:"exportedAt"`
	Transactions  []TransactionExport `json:"transactions"`
	Budgets       []BudgetExport      `json:"budgets"`
	Categories    []CategoryExport    `json:"categories"`
}

// TransactionExport is the flattened form of a stored transaction.
type TransactionExport struct {
	ID              string    `json:"id"`
	Date            time.Time `json:"date"`
	Amount          float64   `json:"amount"`
	IsIncome        bool      `json:"isIncome"`
	Merchant        string    `json:"merchant"`
	Description     string    `json:"description"`
	CategoryID      *string   `json:"categoryId,omitempty"`
	AccountID       *string   `json:"accountId,omitempty"`
	Reviewed        bool      `json:"reviewed"`
	NeedsCorrection bool      `json:"needsCorrection"`
	OriginalText    string    `json:"originalText"`
	ScreenshotHash  string    `json:"screenshotHash"`
	CreatedAt       time.Time `json:"createdAt"`
	ModifiedAt      time.Time `json:"modifiedAt"`
}

// BudgetExport is the flattened form of a budget.
type BudgetExport struct {
	ID         string  `json:"id"`
	CategoryID *string `json:"categoryId,omitempty"`
	Amount     float64 `json:"amount"`
	Period     string  `json:"period"`
}

// CategoryExport is the flattened form of a category.
type CategoryExport struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Color string `json:"color"`
}

// NewPayload creates an empty payload stamped with the current format version
// and export time. Slices are initialized so the JSON encoding always carries
// all three arrays.
func NewPayload(exportedAt time.Time) *Payload {
	return &Payload{
		FormatVersion: FormatVersion,
		ExportedAt:    exportedAt,
		Transactions:  []TransactionExport{},
		Budgets:       []BudgetExport{},
		Categories:    []CategoryExport{},
	}
}

// Validate checks payload-level invariants after decoding.
func (p *Payload) Validate() error {
	if p.FormatVersion != FormatVersion {
		return fmt.Errorf("%w: got %q, supported %q", ErrUnsupportedVersion, p.FormatVersion, FormatVersion)
	}
	return nil
}
