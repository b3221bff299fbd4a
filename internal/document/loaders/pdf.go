package loaders

import (
	"context"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"

	"FinSight/internal/models"
)

// PdfLoader implements the Loader interface for reading PDF files.
type PdfLoader struct{}

// NewPdfLoader creates a new PdfLoader.
func NewPdfLoader() *PdfLoader {
	return &PdfLoader{}
}

// Load extracts the plain text of every page. Tables in PDFs survive only as
// text lines; structured tables come from spreadsheet formats.
// Recovers from panics caused by corrupt PDFs.
func (l *PdfLoader) Load(ctx context.Context, path string) (content *models.DocumentContent, err error) {
	defer func() {
		if r := recover(); r != nil {
			content = nil
			err = fmt.Errorf("panic during PDF extraction: %v", r)
		}
	}()

	f, r, openErr := pdf.Open(path)
	if openErr != nil {
		return nil, fmt.Errorf("failed to open PDF: %w", openErr)
	}
	defer f.Close()

	var sb strings.Builder
	totalPages := r.NumPage()

	for i := 1; i <= totalPages; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}

		pageText, pageErr := page.GetPlainText(nil)
		if pageErr != nil {
			continue
		}
		sb.WriteString(pageText)
		sb.WriteString("\n")
	}

	return &models.DocumentContent{Text: sb.String()}, nil
}

// compile-time check to ensure PdfLoader implements the Loader interface
var _ Loader = (*PdfLoader)(nil)
