// Package store persists the budget dataset in SQLite and implements the
// narrow query and write contracts the import pipeline depends on. Dates are
// stored as RFC 3339 UTC strings so range queries compare lexically.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/alexchiri/budget-snap/internal/domain"
)

// ErrCommitFailed marks a failed final save. It is distinct from validation
// errors so callers can offer a retry without re-parsing or re-deduplicating.
var ErrCommitFailed = errors.New("commit failed")

const schema = `
CREATE TABLE IF NOT EXISTS accounts (
	id   TEXT PRIMARY KEY,
	name TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS categories (
	id    TEXT PRIMARY KEY,
	name  TEXT NOT NULL,
	color TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS budgets (
	id          TEXT PRIMARY KEY,
	category_id TEXT REFERENCES categories(id),
	amount      REAL NOT NULL,
	period      TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS transactions (
	id               TEXT PRIMARY KEY,
	date             TEXT NOT NULL,
	amount           REAL NOT NULL,
	is_income        INTEGER NOT NULL DEFAULT 0,
	merchant         TEXT NOT NULL,
	description      TEXT NOT NULL DEFAULT '',
	category_id      TEXT REFERENCES categories(id),
	account_id       TEXT REFERENCES accounts(id),
	reviewed         INTEGER NOT NULL DEFAULT 0,
	needs_correction INTEGER NOT NULL DEFAULT 0,
	original_text    TEXT NOT NULL DEFAULT '',
	screenshot_hash  TEXT NOT NULL DEFAULT '',
	created_at       TEXT NOT NULL,
	modified_at      TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_transactions_screenshot_hash ON transactions(screenshot_hash);
CREATE INDEX IF NOT EXISTS idx_transactions_merchant_amount ON transactions(merchant, amount);
CREATE INDEX IF NOT EXISTS idx_transactions_date ON transactions(date);
`

// Store wraps the SQLite database.
type Store struct {
	db *sql.DB
}

// Open opens (creating if necessary) the database at path and ensures the
// schema exists. WAL mode with a busy timeout and a single connection avoids
// SQLite locking issues.
func Open(path string) (*Store, error) {
	dsn := fmt.Sprintf("%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(on)", path)

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database at %s: %w", path, err)
	}
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

const transactionColumns = `id, date, amount, is_income, merchant, description,
	category_id, account_id, reviewed, needs_correction, original_text,
	screenshot_hash, created_at, modified_at`

// ByScreenshotHash returns stored transactions with exactly this screenshot
// hash, optionally scoped to an account.
func (s *Store) ByScreenshotHash(ctx context.Context, hash string, accountID *string) ([]domain.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE screenshot_hash = ?`
	args := []any{hash}
	if accountID != nil {
		query += ` AND account_id = ?`
		args = append(args, *accountID)
	}
	return s.queryTransactions(ctx, query, args...)
}

// ByExactMatch returns stored transactions with exactly this amount and
// merchant inside the [from, to] date range, optionally scoped to an account.
func (s *Store) ByExactMatch(ctx context.Context, amount float64, merchant string, from, to time.Time, accountID *string) ([]domain.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions
		WHERE amount = ? AND merchant = ? AND date >= ? AND date <= ?`
	args := []any{amount, merchant, encodeTime(from), encodeTime(to)}
	if accountID != nil {
		query += ` AND account_id = ?`
		args = append(args, *accountID)
	}
	return s.queryTransactions(ctx, query, args...)
}

// ByRange returns stored transactions inside the amount and date ranges,
// optionally scoped to an account. Callers post-filter by merchant distance.
func (s *Store) ByRange(ctx context.Context, minAmount, maxAmount float64, from, to time.Time, accountID *string) ([]domain.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions
		WHERE amount >= ? AND amount <= ? AND date >= ? AND date <= ?`
	args := []any{minAmount, maxAmount, encodeTime(from), encodeTime(to)}
	if accountID != nil {
		query += ` AND account_id = ?`
		args = append(args, *accountID)
	}
	return s.queryTransactions(ctx, query, args...)
}

// ListTransactions returns every stored transaction ordered by date.
func (s *Store) ListTransactions(ctx context.Context) ([]domain.Transaction, error) {
	return s.queryTransactions(ctx, `SELECT `+transactionColumns+` FROM transactions ORDER BY date, id`)
}

// ListCategories returns every category ordered by identifier.
func (s *Store) ListCategories(ctx context.Context) ([]domain.Category, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, name, color FROM categories ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query categories: %w", err)
	}
	defer rows.Close()

	var out []domain.Category
	for rows.Next() {
		var c domain.Category
		if err := rows.Scan(&c.ID, &c.Name, &c.Color); err != nil {
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// ListBudgets returns every budget ordered by identifier.
func (s *Store) ListBudgets(ctx context.Context) ([]domain.Budget, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, category_id, amount, period FROM budgets ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query budgets: %w", err)
	}
	defer rows.Close()

	var out []domain.Budget
	for rows.Next() {
		var b domain.Budget
		var categoryID sql.NullString
		if err := rows.Scan(&b.ID, &categoryID, &b.Amount, &b.Period); err != nil {
			return nil, fmt.Errorf("failed to scan budget: %w", err)
		}
		if categoryID.Valid {
			b.CategoryID = &categoryID.String
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

// HasTransaction reports whether a transaction with this ID exists.
func (s *Store) HasTransaction(ctx context.Context, id string) (bool, error) {
	return s.exists(ctx, `SELECT 1 FROM transactions WHERE id = ?`, id)
}

// HasAccount reports whether an account with this ID exists.
func (s *Store) HasAccount(ctx context.Context, id string) (bool, error) {
	return s.exists(ctx, `SELECT 1 FROM accounts WHERE id = ?`, id)
}

// HasCategory reports whether a category with this ID exists.
func (s *Store) HasCategory(ctx context.Context, id string) (bool, error) {
	return s.exists(ctx, `SELECT 1 FROM categories WHERE id = ?`, id)
}

// HasBudget reports whether a budget with this ID exists.
func (s *Store) HasBudget(ctx context.Context, id string) (bool, error) {
	return s.exists(ctx, `SELECT 1 FROM budgets WHERE id = ?`, id)
}

// InsertCategory inserts a category directly (used by backup restore, which
// manages its own ordering and collision rules).
func (s *Store) InsertCategory(ctx context.Context, c domain.Category) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO categories (id, name, color) VALUES (?, ?, ?)`,
		c.ID, c.Name, c.Color)
	if err != nil {
		return fmt.Errorf("failed to insert category %s: %w", c.ID, err)
	}
	return nil
}

// InsertBudget inserts a budget directly.
func (s *Store) InsertBudget(ctx context.Context, b domain.Budget) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO budgets (id, category_id, amount, period) VALUES (?, ?, ?, ?)`,
		b.ID, nullable(b.CategoryID), b.Amount, b.Period)
	if err != nil {
		return fmt.Errorf("failed to insert budget %s: %w", b.ID, err)
	}
	return nil
}

// InsertTransaction inserts a transaction directly, outside any batch.
func (s *Store) InsertTransaction(ctx context.Context, t domain.Transaction) error {
	_, err := s.db.ExecContext(ctx, insertTransactionSQL, transactionArgs(t)...)
	if err != nil {
		return fmt.Errorf("failed to insert transaction %s: %w", t.ID, err)
	}
	return nil
}

// EnsureCategory creates the category if it does not already exist.
func (s *Store) EnsureCategory(ctx context.Context, c domain.Category) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO categories (id, name, color) VALUES (?, ?, ?) ON CONFLICT(id) DO NOTHING`,
		c.ID, c.Name, c.Color)
	if err != nil {
		return fmt.Errorf("failed to ensure category %s: %w", c.ID, err)
	}
	return nil
}

// EnsureAccount creates the account if it does not already exist.
func (s *Store) EnsureAccount(ctx context.Context, a domain.Account) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO accounts (id, name) VALUES (?, ?) ON CONFLICT(id) DO NOTHING`,
		a.ID, a.Name)
	if err != nil {
		return fmt.Errorf("failed to ensure account %s: %w", a.ID, err)
	}
	return nil
}

func (s *Store) exists(ctx context.Context, query string, args ...any) (bool, error) {
	var one int
	err := s.db.QueryRowContext(ctx, query, args...).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (s *Store) queryTransactions(ctx context.Context, query string, args ...any) ([]domain.Transaction, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query transactions: %w", err)
	}
	defer rows.Close()

	var out []domain.Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func scanTransaction(rows *sql.Rows) (domain.Transaction, error) {
	var t domain.Transaction
	var date, createdAt, modifiedAt string
	var categoryID, accountID sql.NullString

	err := rows.Scan(&t.ID, &date, &t.Amount, &t.IsIncome, &t.Merchant, &t.Description,
		&categoryID, &accountID, &t.Reviewed, &t.NeedsCorrection, &t.OriginalText,
		&t.ScreenshotHash, &createdAt, &modifiedAt)
	if err != nil {
		return t, fmt.Errorf("failed to scan transaction: %w", err)
	}

	if t.Date, err = decodeTime(date); err != nil {
		return t, err
	}
	if t.CreatedAt, err = decodeTime(createdAt); err != nil {
		return t, err
	}
	if t.ModifiedAt, err = decodeTime(modifiedAt); err != nil {
		return t, err
	}
	if categoryID.Valid {
		t.CategoryID = &categoryID.String
	}
	if accountID.Valid {
		t.AccountID = &accountID.String
	}
	return t, nil
}

const insertTransactionSQL = `INSERT INTO transactions
	(id, date, amount, is_income, merchant, description, category_id, account_id,
	 reviewed, needs_correction, original_text, screenshot_hash, created_at, modified_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

func transactionArgs(t domain.Transaction) []any {
	return []any{
		t.ID, encodeTime(t.Date), t.Amount, t.IsIncome, t.Merchant, t.Description,
		nullable(t.CategoryID), nullable(t.AccountID), t.Reviewed, t.NeedsCorrection,
		t.OriginalText, t.ScreenshotHash, encodeTime(t.CreatedAt), encodeTime(t.ModifiedAt),
	}
}

func nullable(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}

func encodeTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

func decodeTime(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to parse stored time %q: %w", s, err)
	}
	return t, nil
}
