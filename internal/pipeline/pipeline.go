// Package pipeline orchestrates the screenshot import flow: scan, recognize,
// parse, deduplicate, categorize, and save in one atomic batch. It also owns
// encrypted backup export and restore.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/alexchiri/budget-snap/internal/backup"
	"github.com/alexchiri/budget-snap/internal/dedup"
	"github.com/alexchiri/budget-snap/internal/domain"
	"github.com/alexchiri/budget-snap/internal/ocr"
	"github.com/alexchiri/budget-snap/internal/parser"
	"github.com/alexchiri/budget-snap/internal/rules"
	"github.com/alexchiri/budget-snap/internal/scanner"
	"github.com/alexchiri/budget-snap/internal/store"
	"github.com/alexchiri/budget-snap/internal/transform"
)

// ImportStats summarizes one import run.
type ImportStats struct {
	Screenshots          int
	RecognitionFailures  int
	DuplicateScreenshots int
	Candidates           int
	DuplicateCandidates  int
	Imported             int
	NeedsReview          int
}

// Importer wires the import collaborators together.
type Importer struct {
	store    *store.Store
	engine   ocr.Engine
	detector *dedup.Detector
	parser   *parser.Parser
	rules    *rules.Engine
	codec    *backup.Codec
	log      *slog.Logger
}

// NewImporter creates an importer. A nil logger falls back to slog.Default.
func NewImporter(st *store.Store, engine ocr.Engine, detector *dedup.Detector, p *parser.Parser, r *rules.Engine, codec *backup.Codec, log *slog.Logger) *Importer {
	if log == nil {
		log = slog.Default()
	}
	return &Importer{
		store:    st,
		engine:   engine,
		detector: detector,
		parser:   p,
		rules:    r,
		codec:    codec,
		log:      log,
	}
}

// ImportDir imports every screenshot under rootDir.
//
// The run has two phases. Phase one reads and parses everything without
// touching the write path: recognition failures and duplicate screenshots are
// skipped with a log line, never aborting the run. Phase two stages all
// accepted transactions in one database transaction and commits once, so a
// failed save leaves the store untouched and the stats let the caller retry
// the save without re-parsing.
func (im *Importer) ImportDir(ctx context.Context, rootDir string) (*ImportStats, error) {
	results, err := scanner.New(rootDir).Scan()
	if err != nil {
		return nil, fmt.Errorf("failed to scan %s: %w", rootDir, err)
	}

	stats := &ImportStats{Screenshots: len(results)}

	accepted, err := im.collect(ctx, results, stats)
	if err != nil {
		return stats, err
	}
	if len(accepted) == 0 {
		return stats, nil
	}

	if err := im.save(ctx, accepted, stats); err != nil {
		return stats, err
	}
	return stats, nil
}

// collect runs recognition, parsing, and duplicate screening for every
// screenshot and returns the transactions to persist.
func (im *Importer) collect(ctx context.Context, results []scanner.Result, stats *ImportStats) ([]domain.Transaction, error) {
	var accepted []domain.Transaction

	for _, shot := range results {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		accountID, err := im.ensureAccount(ctx, shot.AccountName)
		if err != nil {
			return nil, err
		}

		recognized, err := im.engine.ExtractText(ctx, shot.Path)
		if err != nil {
			im.log.Warn("text recognition failed, skipping screenshot", "path", shot.Path, "error", err)
			stats.RecognitionFailures++
			continue
		}

		if im.detector.IsScreenshotDuplicate(ctx, recognized.ImageHash, accountID) {
			im.log.Info("screenshot already imported, skipping", "path", shot.Path, "hash", recognized.ImageHash)
			stats.DuplicateScreenshots++
			continue
		}

		candidates := im.parser.Parse(recognized.Text)
		stats.Candidates += len(candidates)

		for _, c := range candidates {
			if im.detector.IsTransactionDuplicate(ctx, c.Amount, c.Merchant, c.Date, accountID) {
				stats.DuplicateCandidates++
				continue
			}
			if isRunDuplicate(accepted, c, accountID) {
				stats.DuplicateCandidates++
				continue
			}

			txn, err := im.buildTransaction(ctx, c, accountID, recognized.ImageHash)
			if err != nil {
				im.log.Warn("dropping unbuildable candidate", "merchant", c.Merchant, "error", err)
				continue
			}

			// A near-match is never an automatic rejection, only a review flag.
			if similar := im.detector.FindSimilarTransactions(ctx, c.Amount, c.Merchant, c.Date, accountID); len(similar) > 0 {
				im.log.Info("similar stored transactions found, flagging for review",
					"merchant", c.Merchant, "amount", c.Amount, "matches", len(similar))
				txn.NeedsCorrection = true
			}

			accepted = append(accepted, *txn)
			if txn.NeedsCorrection {
				stats.NeedsReview++
			}
		}
	}

	return accepted, nil
}

// save stages every accepted transaction in one batch and commits. A commit
// failure comes back wrapped in store.ErrCommitFailed.
func (im *Importer) save(ctx context.Context, accepted []domain.Transaction, stats *ImportStats) error {
	batch, err := im.store.Begin(ctx)
	if err != nil {
		return err
	}
	defer batch.Rollback()

	for _, txn := range accepted {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := batch.InsertTransaction(ctx, txn); err != nil {
			return err
		}
	}

	if err := batch.Commit(); err != nil {
		return err
	}
	stats.Imported = len(accepted)
	im.log.Info("import committed", "transactions", stats.Imported, "needs_review", stats.NeedsReview)
	return nil
}

// buildTransaction turns a parser candidate into a persistable transaction,
// applying categorization rules and creating the assigned category row so the
// foreign key resolves.
func (im *Importer) buildTransaction(ctx context.Context, c parser.Candidate, accountID *string, screenshotHash string) (*domain.Transaction, error) {
	txn, err := domain.NewTransaction(uuid.NewString(), c.Date, c.Amount, c.Merchant, c.Description)
	if err != nil {
		return nil, err
	}

	txn.AccountID = accountID
	txn.OriginalText = c.SourceText
	txn.ScreenshotHash = screenshotHash
	txn.NeedsCorrection = c.Confidence < domain.ReviewThreshold

	if match, ok := im.rules.Match(c.Merchant); ok {
		id, err := categoryID(match.Category)
		if err != nil {
			return nil, err
		}
		if err := im.store.EnsureCategory(ctx, domain.Category{ID: id, Name: match.Category}); err != nil {
			return nil, err
		}
		txn.CategoryID = &id
		txn.IsIncome = match.IsIncome
	}

	return txn, nil
}

// ensureAccount creates the account row for a screenshot directory and
// returns its ID, or nil when the screenshot has no account scope.
func (im *Importer) ensureAccount(ctx context.Context, name string) (*string, error) {
	if name == "" {
		return nil, nil
	}
	id, err := transform.AccountID(name)
	if err != nil {
		return nil, fmt.Errorf("failed to derive account ID for %q: %w", name, err)
	}
	if err := im.store.EnsureAccount(ctx, domain.Account{ID: id, Name: name}); err != nil {
		return nil, err
	}
	return &id, nil
}

// categoryID derives a stable identifier from a rule's category name.
func categoryID(name string) (string, error) {
	slug, err := transform.Slugify(name)
	if err != nil {
		return "", fmt.Errorf("failed to derive category ID for %q: %w", name, err)
	}
	return "cat-" + slug, nil
}

// isRunDuplicate suppresses near-identical candidates accepted earlier in the
// same run from other screenshots, which the store-backed duplicate check
// cannot see until the batch commits.
func isRunDuplicate(accepted []domain.Transaction, c parser.Candidate, accountID *string) bool {
	for _, t := range accepted {
		if !sameScope(t.AccountID, accountID) {
			continue
		}
		if math.Abs(t.Amount-c.Amount) > dedup.SimilarAmountTolerance {
			continue
		}
		if t.Merchant != c.Merchant {
			continue
		}
		if sameDay(t.Date, c.Date) {
			return true
		}
	}
	return false
}

func sameScope(a, b *string) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
