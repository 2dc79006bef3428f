package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/alexchiri/budget-snap/internal/domain"
)

// Batch stages transaction inserts inside a single database transaction.
// Nothing is visible to queries until Commit succeeds; a failed batch leaves
// the store untouched, and the caller keeps the validated in-memory records
// so the save can be retried without re-parsing or re-deduplicating.
type Batch struct {
	tx     *sql.Tx
	staged int
}

// Begin starts a batch. Every InsertTransaction is staged in the database
// transaction; Commit makes them durable all-or-nothing.
func (s *Store) Begin(ctx context.Context) (*Batch, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin batch: %w", err)
	}
	return &Batch{tx: tx}, nil
}

// InsertTransaction stages one transaction into the batch.
func (b *Batch) InsertTransaction(ctx context.Context, t domain.Transaction) error {
	if _, err := b.tx.ExecContext(ctx, insertTransactionSQL, transactionArgs(t)...); err != nil {
		return fmt.Errorf("failed to stage transaction %s: %w", t.ID, err)
	}
	b.staged++
	return nil
}

// Staged returns the number of transactions staged so far.
func (b *Batch) Staged() int {
	return b.staged
}

// Commit makes the staged inserts durable. Failure is wrapped in
// ErrCommitFailed so callers can distinguish a failed save from validation
// problems and surface a retryable "save failed" state.
func (b *Batch) Commit() error {
	if err := b.tx.Commit(); err != nil {
		return fmt.Errorf("%w: %v", ErrCommitFailed, err)
	}
	return nil
}

// Rollback discards the staged inserts. Calling it after a successful Commit
// returns sql.ErrTxDone, which callers deferring a rollback ignore.
func (b *Batch) Rollback() error {
	return b.tx.Rollback()
}
