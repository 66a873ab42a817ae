package extract

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"

	"docrag/internal/domain"
)

// PDF extracts the plain text of every page, joined by newlines.
type PDF struct{}

// Extract parses data as a PDF document.
func (PDF) Extract(filename string, data []byte) (text string, err error) {
	// The pdf reader panics on some malformed inputs.
	defer func() {
		if r := recover(); r != nil {
			text, err = "", &domain.ExtractionError{Filename: filename, Err: fmt.Errorf("PDF extraction failed: %v", r)}
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", &domain.ExtractionError{Filename: filename, Err: fmt.Errorf("PDF extraction failed: %w", err)}
	}
	pages := make([]string, 0, reader.NumPage())
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			pages = append(pages, "")
			continue
		}
		content, err := page.GetPlainText(nil)
		if err != nil {
			return "", &domain.ExtractionError{Filename: filename, Err: fmt.Errorf("PDF extraction failed on page %d: %w", i, err)}
		}
		pages = append(pages, content)
	}
	return strings.Join(pages, "\n"), nil
}
