package loaders

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"

	"FinSight/internal/models"
)

// Loader parses one file format into plain text and tables. Loaders are
// stateless; one instance serves concurrent calls.
type Loader interface {
	Load(ctx context.Context, path string) (*models.DocumentContent, error)
}

// ForFile selects a loader by file extension, falling back to content
// sniffing when the extension is missing or unknown.
func ForFile(path string) (Loader, models.DocumentType, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".pdf":
		return NewPdfLoader(), models.DocumentPDF, nil
	case ".xlsx":
		return NewXlsxLoader(), models.DocumentXLSX, nil
	case ".csv":
		return NewCsvLoader(), models.DocumentCSV, nil
	}

	mime, err := mimetype.DetectFile(path)
	if err != nil {
		return nil, "", fmt.Errorf("cannot detect file type of %s: %w", path, err)
	}
	switch {
	case mime.Is("application/pdf"):
		return NewPdfLoader(), models.DocumentPDF, nil
	case mime.Is("application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"):
		return NewXlsxLoader(), models.DocumentXLSX, nil
	case mime.Is("text/csv"):
		return NewCsvLoader(), models.DocumentCSV, nil
	}
	return nil, "", fmt.Errorf("unsupported file type %s for %s", mime.String(), path)
}
