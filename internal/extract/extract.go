// Package extract turns uploaded file bytes into plain text.
package extract

import (
	"errors"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"docrag/internal/domain"
)

// Ensure extractors implement the interface.
var (
	_ domain.Extractor = (*PlainText)(nil)
	_ domain.Extractor = (*PDF)(nil)
	_ domain.Extractor = (*Router)(nil)
)

// PlainText accepts UTF-8 text as is.
type PlainText struct{}

// Extract returns data as a string, rejecting invalid UTF-8.
func (PlainText) Extract(filename string, data []byte) (string, error) {
	if !utf8.Valid(data) {
		return "", &domain.ExtractionError{Filename: filename, Err: errors.New("content is not valid UTF-8 text")}
	}
	return string(data), nil
}

// Router picks an extractor by file extension.
type Router struct {
	byExt    map[string]domain.Extractor
	fallback domain.Extractor
}

// NewRouter routes .pdf files to the PDF extractor and everything else to plain text.
func NewRouter() *Router {
	return &Router{
		byExt:    map[string]domain.Extractor{".pdf": &PDF{}},
		fallback: PlainText{},
	}
}

// Extract dispatches on the lower-cased extension of filename.
func (r *Router) Extract(filename string, data []byte) (string, error) {
	if ex, ok := r.byExt[strings.ToLower(filepath.Ext(filename))]; ok {
		return ex.Extract(filename, data)
	}
	return r.fallback.Extract(filename, data)
}
