// Package pdftext extracts the plain text layer of PDF files.
package pdftext

import (
	"context"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"

	"paperlens/internal/domain"
)

// Extractor implements port.TextExtractor on top of github.com/ledongthuc/pdf.
type Extractor struct{}

// NewExtractor creates a PDF text extractor.
func NewExtractor() *Extractor {
	return &Extractor{}
}

// ExtractText returns the text of every page of the PDF at path, concatenated in
// page order. Pages without a text layer contribute nothing. Any read or parse
// failure fails the whole file.
func (e *Extractor) ExtractText(ctx context.Context, path string) (text string, err error) {
	// The parser panics on some malformed cross-reference tables.
	defer func() {
		if r := recover(); r != nil {
			text = ""
			err = fmt.Errorf("%w: %s: %v", domain.ErrConversionFailed, path, r)
		}
	}()

	f, r, err := pdf.Open(path)
	if err != nil {
		return "", fmt.Errorf("%w: opening %s: %v", domain.ErrConversionFailed, path, err)
	}
	defer func() { _ = f.Close() }()

	var b strings.Builder
	for i := 1; i <= r.NumPage(); i++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		pageText, err := page.GetPlainText(nil)
		if err != nil {
			return "", fmt.Errorf("%w: %s page %d: %v", domain.ErrConversionFailed, path, i, err)
		}
		b.WriteString(pageText)
	}
	return b.String(), nil
}
