package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/alexchiri/budget-snap/internal/backup"
	"github.com/alexchiri/budget-snap/internal/domain"
	"github.com/alexchiri/budget-snap/internal/validate"
)

// RestoreStats summarizes one restore run.
type RestoreStats struct {
	CategoriesRestored   int
	CategoriesSkipped    int
	BudgetsRestored      int
	BudgetsSkipped       int
	TransactionsRestored int
	TransactionsSkipped  int
	DanglingReferences   int
}

// Export snapshots the full dataset into a backup payload.
func (im *Importer) Export(ctx context.Context) (*backup.Payload, error) {
	payload := backup.NewPayload(time.Now().UTC())

	categories, err := im.store.ListCategories(ctx)
	if err != nil {
		return nil, err
	}
	for _, c := range categories {
		payload.Categories = append(payload.Categories, backup.CategoryExport{
			ID: c.ID, Name: c.Name, Color: c.Color,
		})
	}

	budgets, err := im.store.ListBudgets(ctx)
	if err != nil {
		return nil, err
	}
	for _, b := range budgets {
		payload.Budgets = append(payload.Budgets, backup.BudgetExport{
			ID: b.ID, CategoryID: b.CategoryID, Amount: b.Amount, Period: b.Period,
		})
	}

	transactions, err := im.store.ListTransactions(ctx)
	if err != nil {
		return nil, err
	}
	for _, t := range transactions {
		payload.Transactions = append(payload.Transactions, backup.TransactionExport{
			ID:              t.ID,
			Date:            t.Date,
			Amount:          t.Amount,
			IsIncome:        t.IsIncome,
			Merchant:        t.Merchant,
			Description:     t.Description,
			CategoryID:      t.CategoryID,
			AccountID:       t.AccountID,
			Reviewed:        t.Reviewed,
			NeedsCorrection: t.NeedsCorrection,
			OriginalText:    t.OriginalText,
			ScreenshotHash:  t.ScreenshotHash,
			CreatedAt:       t.CreatedAt,
			ModifiedAt:      t.ModifiedAt,
		})
	}

	return payload, nil
}

// ExportToFile writes a password-encrypted backup container to path. The file
// lands atomically: a temporary file in the same directory is renamed over the
// target only after the full container is flushed.
func (im *Importer) ExportToFile(ctx context.Context, path, password string) error {
	payload, err := im.Export(ctx)
	if err != nil {
		return err
	}

	container, err := im.codec.Encrypt(payload, password)
	if err != nil {
		return err
	}

	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".backup-*")
	if err != nil {
		return fmt.Errorf("failed to create temporary backup file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if _, err := tmp.Write(container); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write backup: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to flush backup: %w", err)
	}
	if err := os.Chmod(tmpPath, 0o600); err != nil {
		return fmt.Errorf("failed to set backup permissions: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("failed to move backup into place: %w", err)
	}

	im.log.Info("backup exported", "path", path,
		"transactions", len(payload.Transactions),
		"categories", len(payload.Categories),
		"budgets", len(payload.Budgets))
	return nil
}

// RestoreFromFile decrypts a backup container and merges it into the store.
func (im *Importer) RestoreFromFile(ctx context.Context, path, password string) (*RestoreStats, error) {
	container, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read backup %s: %w", path, err)
	}

	payload, err := im.codec.Decrypt(container, password)
	if err != nil {
		return nil, err
	}

	return im.Restore(ctx, payload)
}

// Restore merges a decrypted payload into the store. Entities restore in
// dependency order (categories, budgets, transactions) so foreign keys resolve
// when their targets exist. Records whose ID already exists are skipped, never
// overwritten; references to entities missing from both the store and the
// payload are nulled out rather than failing the restore.
func (im *Importer) Restore(ctx context.Context, payload *backup.Payload) (*RestoreStats, error) {
	stats := &RestoreStats{}

	result := validate.Payload(payload)
	for _, w := range result.Warnings {
		im.log.Warn("backup payload warning", "entity", w.Entity, "id", w.ID, "message", w.Message)
	}
	if !result.OK() {
		first := result.Errors[0]
		return stats, fmt.Errorf("backup payload failed validation with %d errors, first: %s %s [%s]: %s",
			len(result.Errors), first.Entity, first.ID, first.Field, first.Message)
	}

	for _, c := range payload.Categories {
		exists, err := im.store.HasCategory(ctx, c.ID)
		if err != nil {
			return stats, err
		}
		if exists {
			stats.CategoriesSkipped++
			continue
		}
		if err := im.store.InsertCategory(ctx, domain.Category{ID: c.ID, Name: c.Name, Color: c.Color}); err != nil {
			return stats, err
		}
		stats.CategoriesRestored++
	}

	for _, b := range payload.Budgets {
		exists, err := im.store.HasBudget(ctx, b.ID)
		if err != nil {
			return stats, err
		}
		if exists {
			stats.BudgetsSkipped++
			continue
		}

		categoryID, err := im.resolveCategory(ctx, b.CategoryID, stats)
		if err != nil {
			return stats, err
		}
		budget := domain.Budget{ID: b.ID, CategoryID: categoryID, Amount: b.Amount, Period: b.Period}
		if err := im.store.InsertBudget(ctx, budget); err != nil {
			return stats, err
		}
		stats.BudgetsRestored++
	}

	for _, t := range payload.Transactions {
		exists, err := im.store.HasTransaction(ctx, t.ID)
		if err != nil {
			return stats, err
		}
		if exists {
			stats.TransactionsSkipped++
			continue
		}

		categoryID, err := im.resolveCategory(ctx, t.CategoryID, stats)
		if err != nil {
			return stats, err
		}
		accountID, err := im.resolveAccount(ctx, t.AccountID, stats)
		if err != nil {
			return stats, err
		}
		txn := domain.Transaction{
			ID:              t.ID,
			Date:            t.Date,
			Amount:          t.Amount,
			IsIncome:        t.IsIncome,
			Merchant:        t.Merchant,
			Description:     t.Description,
			CategoryID:      categoryID,
			AccountID:       accountID,
			Reviewed:        t.Reviewed,
			NeedsCorrection: t.NeedsCorrection,
			OriginalText:    t.OriginalText,
			ScreenshotHash:  t.ScreenshotHash,
			CreatedAt:       t.CreatedAt,
			ModifiedAt:      t.ModifiedAt,
		}
		if err := im.store.InsertTransaction(ctx, txn); err != nil {
			return stats, err
		}
		stats.TransactionsRestored++
	}

	im.log.Info("backup restored",
		"transactions", stats.TransactionsRestored,
		"categories", stats.CategoriesRestored,
		"budgets", stats.BudgetsRestored,
		"dangling_references", stats.DanglingReferences)
	return stats, nil
}

// resolveCategory nulls out category references whose target does not exist
// after the category phase of the restore.
func (im *Importer) resolveCategory(ctx context.Context, id *string, stats *RestoreStats) (*string, error) {
	if id == nil {
		return nil, nil
	}
	exists, err := im.store.HasCategory(ctx, *id)
	if err != nil {
		return nil, err
	}
	if !exists {
		im.log.Warn("dropping dangling category reference", "category_id", *id)
		stats.DanglingReferences++
		return nil, nil
	}
	return id, nil
}

// resolveAccount nulls out account references whose target account does not
// exist on this device. Accounts are device-local and never travel in the
// backup payload.
func (im *Importer) resolveAccount(ctx context.Context, id *string, stats *RestoreStats) (*string, error) {
	if id == nil {
		return nil, nil
	}
	exists, err := im.store.HasAccount(ctx, *id)
	if err != nil {
		return nil, err
	}
	if !exists {
		stats.DanglingReferences++
		return nil, nil
	}
	return id, nil
}
