package loaders

import (
	"context"
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"FinSight/internal/models"
)

// XlsxLoader implements the Loader interface for reading Excel (.xlsx) files.
type XlsxLoader struct{}

// NewXlsxLoader creates a new XlsxLoader.
func NewXlsxLoader() *XlsxLoader {
	return &XlsxLoader{}
}

// Load reads an .xlsx file, converting each sheet into one Table with the
// first row as headers. Row data lives only in the tables; the text part is a
// short per-sheet summary so rows are not scanned twice downstream.
func (l *XlsxLoader) Load(ctx context.Context, path string) (*models.DocumentContent, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var tables []models.Table
	var summary strings.Builder

	for _, sheetName := range f.GetSheetList() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		rows, err := f.GetRows(sheetName)
		if err != nil {
			// Skip sheet if rows can't be read
			continue
		}
		if len(rows) == 0 {
			continue
		}

		table := models.Table{Headers: rows[0], Rows: rows[1:]}
		tables = append(tables, table)

		summary.WriteString(fmt.Sprintf("Sheet %s: %d rows, %d columns\n", sheetName, len(table.Rows), len(table.Headers)))
	}

	return &models.DocumentContent{Text: summary.String(), Tables: tables}, nil
}

// compile-time check to ensure XlsxLoader implements the Loader interface
var _ Loader = (*XlsxLoader)(nil)
