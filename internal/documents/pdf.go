package documents

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/ledongthuc/pdf"

	"hydroatlas/pkg/logger"
)

// PDFExtractor extracts plain text from PDF files, page by page. Each page's
// text is preceded by a marker line so chunk content retains page identity.
type PDFExtractor struct {
	log *logger.Logger
}

// NewPDFExtractor creates a PDFExtractor.
func NewPDFExtractor(log *logger.Logger) *PDFExtractor {
	return &PDFExtractor{log: log}
}

// ExtractText reads the PDF at path and returns the concatenated text of all
// pages in order. A page that fails to decode is logged and skipped; the
// remaining pages are still extracted.
func (e *PDFExtractor) ExtractText(ctx context.Context, path string) (string, error) {
	if _, err := os.Stat(path); err != nil {
		return "", fmt.Errorf("PDF file not found: %w", err)
	}

	f, reader, err := pdf.Open(path)
	if err != nil {
		return "", fmt.Errorf("open PDF: %w", err)
	}
	defer f.Close()

	var textBuilder strings.Builder
	pages := reader.NumPage()

	e.log.WithPayload(map[string]interface{}{
		"path":  path,
		"pages": pages,
	}).Info("processing PDF")

	for i := 1; i <= pages; i++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}

		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}

		fonts := make(map[string]*pdf.Font)
		pageText, err := page.GetPlainText(fonts)
		if err != nil {
			e.log.WithError(err).WithPayload(map[string]interface{}{
				"page": i,
			}).Warn("failed to extract text from page")
			continue
		}

		if strings.TrimSpace(pageText) == "" {
			continue
		}

		textBuilder.WriteString(fmt.Sprintf("--- Страница %d ---\n", i))
		textBuilder.WriteString(pageText)
		textBuilder.WriteString("\n\n")
	}

	return textBuilder.String(), nil
}
