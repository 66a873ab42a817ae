package domain

import "fmt"

// Document is a stored source file together with its derived chunks.
// Chunks is always Chunker(Content) and is never persisted.
type Document struct {
	ID       string
	Filename string
	Content  string
	Size     int
	Chunks   []string
}

// ChunkSource returns the human-readable label for the i-th chunk (zero based).
func (d Document) ChunkSource(i int) string {
	return fmt.Sprintf("%s (chunk %d)", d.Filename, i+1)
}

// DocumentSummary is the read-only projection returned by listings.
type DocumentSummary struct {
	DocID    string `json:"doc_id"`
	Filename string `json:"filename"`
	Size     int    `json:"size"`
	Chunks   int    `json:"chunks"`
}

// SnapshotRecord is the persisted form of a document.
type SnapshotRecord struct {
	ID       string `json:"-"`
	Filename string `json:"filename"`
	Content  string `json:"content"`
	Size     int    `json:"size"`
}

// SearchResult represents a matching chunk with a relevance score.
type SearchResult struct {
	Text       string  `json:"text"`
	Source     string  `json:"source"`
	DocID      string  `json:"doc_id"`
	ChunkIndex int     `json:"-"`
	Score      float64 `json:"score"`
}

// Answer is the outcome of a grounded query.
type Answer struct {
	Text       string   `json:"answer"`
	Sources    []string `json:"sources"`
	Confidence float64  `json:"confidence"`
}

// IngestResult reports the outcome of ingesting one file in a batch.
type IngestResult struct {
	Filename string `json:"filename"`
	DocID    string `json:"doc_id,omitempty"`
	Err      error  `json:"-"`
}

// OK reports whether the file was ingested.
func (r IngestResult) OK() bool { return r.Err == nil }
