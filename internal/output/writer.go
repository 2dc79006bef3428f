// Package output writes a plaintext JSON snapshot of the dataset for
// inspection. This is a debugging surface; the durable export path is the
// encrypted backup.
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/alexchiri/budget-snap/internal/domain"
)

// Dataset is the report document: the full stored dataset plus a timestamp.
type Dataset struct {
	GeneratedAt  time.Time            `json:"generatedAt"`
	Transactions []domain.Transaction `json:"transactions"`
	Categories   []domain.Category    `json:"categories"`
	Budgets      []domain.Budget      `json:"budgets"`
}

// WriteDataset serializes the dataset to JSON with 2-space indentation.
func WriteDataset(d *Dataset, w io.Writer) error {
	if d == nil {
		return fmt.Errorf("dataset cannot be nil")
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(d); err != nil {
		return fmt.Errorf("failed to encode dataset as JSON: %w", err)
	}
	return nil
}

// WriteDatasetToFile writes the dataset to a file, or to stdout when path is
// empty.
func WriteDatasetToFile(d *Dataset, path string) (err error) {
	if path == "" {
		return WriteDataset(d, os.Stdout)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create report file %s: %w", path, err)
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("failed to close report file %s: %w", path, closeErr)
		}
	}()

	if err = WriteDataset(d, f); err != nil {
		return fmt.Errorf("failed to write report to %s: %w", path, err)
	}
	return nil
}
