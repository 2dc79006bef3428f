package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alexchiri/budget-snap/internal/backup"
	"github.com/alexchiri/budget-snap/internal/config"
	"github.com/alexchiri/budget-snap/internal/dedup"
	"github.com/alexchiri/budget-snap/internal/ocr"
	"github.com/alexchiri/budget-snap/internal/output"
	"github.com/alexchiri/budget-snap/internal/parser"
	"github.com/alexchiri/budget-snap/internal/pipeline"
	"github.com/alexchiri/budget-snap/internal/rules"
	"github.com/alexchiri/budget-snap/internal/scanner"
	"github.com/alexchiri/budget-snap/internal/store"
	"github.com/alexchiri/budget-snap/internal/ui"
)

const version = "0.1.0"

var (
	versionFlag = flag.Bool("version", false, "Show version")

	inputDir = flag.String("input", "", "Directory of screenshots to import")
	dbPath   = flag.String("db", "", "Database path (default from BUDGETSNAP_DB_PATH)")
	dryRun   = flag.Bool("dry-run", false, "Show what would be imported without writing")
	verbose  = flag.Bool("verbose", false, "Show detailed logs")

	rulesFile  = flag.String("rules", "", "Category rules file (default: embedded rules)")
	reportFile = flag.String("report", "", "After import, write a JSON dataset snapshot to this path")

	exportFile  = flag.String("export", "", "Write an encrypted backup to this path")
	restoreFile = flag.String("restore", "", "Restore an encrypted backup from this path")
	password    = flag.String("password", "", "Backup password (or BUDGETSNAP_BACKUP_PASSWORD)")
)

func main() {
	flag.Usage = func() {
		fmt.Fprint(os.Stderr, `budgetsnap - Import banking screenshots into a local budget database

Usage:
  budgetsnap [flags]

Flags:
`)
		flag.PrintDefaults()
		fmt.Fprint(os.Stderr, `
Examples:
  # Import all screenshots under ~/Screenshots
  budgetsnap -input ~/Screenshots

  # Dry run with verbose output
  budgetsnap -input ~/Screenshots -dry-run -verbose

  # Export an encrypted backup
  budgetsnap -export budget-backup.bin -password secret

  # Restore a backup into the local database
  budgetsnap -restore budget-backup.bin -password secret

`)
	}

	flag.Parse()

	if *versionFlag {
		fmt.Printf("budgetsnap version %s\n", version)
		os.Exit(0)
	}

	modes := 0
	for _, set := range []bool{*inputDir != "", *exportFile != "", *restoreFile != ""} {
		if set {
			modes++
		}
	}
	if modes != 1 {
		fmt.Fprintf(os.Stderr, "Error: exactly one of -input, -export, or -restore is required\n\n")
		flag.Usage()
		os.Exit(1)
	}

	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg := config.Load()
	if *dbPath != "" {
		cfg.DatabasePath = *dbPath
	}
	if *verbose {
		cfg.LogLevel = "debug"
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.SlogLevel()}))
	slog.SetDefault(log)

	if *dryRun && *inputDir != "" {
		return runDryRun(*inputDir)
	}

	st, err := store.Open(cfg.DatabasePath)
	if err != nil {
		return err
	}
	defer st.Close()

	rulesPath := *rulesFile
	if rulesPath == "" {
		rulesPath = cfg.RulesPath
	}
	engine, err := loadRules(rulesPath)
	if err != nil {
		return err
	}

	importer := pipeline.NewImporter(
		st,
		ocr.NewSidecarEngine(),
		dedup.New(st, log),
		parser.New(),
		engine,
		backup.NewCodecWithIterations(cfg.KDFIterations),
		log,
	)

	switch {
	case *exportFile != "":
		return runExport(ctx, importer, *exportFile)
	case *restoreFile != "":
		return runRestore(ctx, importer, *restoreFile)
	default:
		if err := runImport(ctx, importer, *inputDir); err != nil {
			return err
		}
		if *reportFile != "" {
			return writeReport(ctx, st, *reportFile)
		}
		return nil
	}
}

func writeReport(ctx context.Context, st *store.Store, path string) error {
	transactions, err := st.ListTransactions(ctx)
	if err != nil {
		return err
	}
	categories, err := st.ListCategories(ctx)
	if err != nil {
		return err
	}
	budgets, err := st.ListBudgets(ctx)
	if err != nil {
		return err
	}

	dataset := &output.Dataset{
		GeneratedAt:  time.Now().UTC(),
		Transactions: transactions,
		Categories:   categories,
		Budgets:      budgets,
	}
	if err := output.WriteDatasetToFile(dataset, path); err != nil {
		return err
	}
	ui.Info(fmt.Sprintf("Dataset snapshot written to %s", path))
	return nil
}

func runImport(ctx context.Context, importer *pipeline.Importer, dir string) error {
	ui.Header("Importing Screenshots")

	stats, err := importer.ImportDir(ctx, dir)
	if err != nil {
		if errors.Is(err, store.ErrCommitFailed) {
			ui.Error("Saving the imported transactions failed; nothing was written.")
			ui.Info("The screenshots were parsed successfully. Run the import again to retry the save.")
		}
		return err
	}

	ui.Success(fmt.Sprintf("Imported %d transactions from %d screenshots", stats.Imported, stats.Screenshots))
	if stats.NeedsReview > 0 {
		ui.Warning(fmt.Sprintf("%d transactions flagged for review", stats.NeedsReview))
	}
	if stats.DuplicateScreenshots > 0 {
		ui.Info(fmt.Sprintf("%d screenshots already imported", stats.DuplicateScreenshots))
	}
	if stats.DuplicateCandidates > 0 {
		ui.Info(fmt.Sprintf("%d duplicate transactions skipped", stats.DuplicateCandidates))
	}
	if stats.RecognitionFailures > 0 {
		ui.Warning(fmt.Sprintf("%d screenshots could not be read", stats.RecognitionFailures))
	}
	return nil
}

func runDryRun(dir string) error {
	results, err := scanner.New(dir).Scan()
	if err != nil {
		return err
	}

	fmt.Printf("Dry run complete. Would process %d screenshots.\n", len(results))
	for _, r := range results {
		account := r.AccountName
		if account == "" {
			account = "<no account>"
		}
		fmt.Printf("  - %s (%s)\n", r.Path, account)
	}
	return nil
}

func runExport(ctx context.Context, importer *pipeline.Importer, path string) error {
	pw, err := backupPassword()
	if err != nil {
		return err
	}
	if err := importer.ExportToFile(ctx, path, pw); err != nil {
		return err
	}
	ui.Success(fmt.Sprintf("Encrypted backup written to %s", path))
	return nil
}

func runRestore(ctx context.Context, importer *pipeline.Importer, path string) error {
	pw, err := backupPassword()
	if err != nil {
		return err
	}

	stats, err := importer.RestoreFromFile(ctx, path, pw)
	if err != nil {
		return err
	}

	ui.Success(fmt.Sprintf("Restored %d transactions, %d categories, %d budgets",
		stats.TransactionsRestored, stats.CategoriesRestored, stats.BudgetsRestored))
	skipped := stats.TransactionsSkipped + stats.CategoriesSkipped + stats.BudgetsSkipped
	if skipped > 0 {
		ui.Info(fmt.Sprintf("%d records already present, skipped", skipped))
	}
	if stats.DanglingReferences > 0 {
		ui.Warning(fmt.Sprintf("%d dangling references dropped", stats.DanglingReferences))
	}
	return nil
}

func loadRules(path string) (*rules.Engine, error) {
	if path != "" {
		return rules.LoadFromFile(path)
	}
	return rules.LoadEmbedded()
}

func backupPassword() (string, error) {
	if *password != "" {
		return *password, nil
	}
	if pw := os.Getenv("BUDGETSNAP_BACKUP_PASSWORD"); pw != "" {
		return pw, nil
	}
	return "", fmt.Errorf("backup password required: pass -password or set BUDGETSNAP_BACKUP_PASSWORD")
}
