package loaders

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"

	"FinSight/internal/models"
)

// CsvLoader implements the Loader interface for reading CSV files.
type CsvLoader struct{}

// NewCsvLoader creates a new CsvLoader.
func NewCsvLoader() *CsvLoader {
	return &CsvLoader{}
}

// Load reads a CSV file into a single Table with the first record as headers.
// As with spreadsheets, row data lives only in the table and the text part is
// a short summary.
func (l *CsvLoader) Load(ctx context.Context, path string) (*models.DocumentContent, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1 // ragged rows are tolerated

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse CSV %s: %w", path, err)
	}
	if len(records) == 0 {
		return &models.DocumentContent{}, nil
	}

	table := models.Table{Headers: records[0], Rows: records[1:]}
	summary := fmt.Sprintf("File %s: %d rows, %d columns\n", filepath.Base(path), len(table.Rows), len(table.Headers))

	return &models.DocumentContent{Text: summary, Tables: []models.Table{table}}, nil
}

// compile-time check to ensure CsvLoader implements the Loader interface
var _ Loader = (*CsvLoader)(nil)
