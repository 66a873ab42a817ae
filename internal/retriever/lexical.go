// Package retriever ranks stored chunks by query term overlap.
package retriever

import (
	"sort"
	"strings"

	"docrag/internal/domain"
)

// DefaultTopK is the number of hits returned when the caller has no preference.
const DefaultTopK = 5

// Corpus is the read-only view of stored documents, in insertion order.
type Corpus interface {
	Documents() []domain.Document
}

// Lexical scores chunks by the fraction of query terms they contain as substrings.
type Lexical struct {
	corpus Corpus
}

// NewLexical creates a retriever reading from corpus.
func NewLexical(corpus Corpus) *Lexical {
	return &Lexical{corpus: corpus}
}

// Terms lower-cases and whitespace-splits a query.
func Terms(query string) []string {
	return strings.Fields(strings.ToLower(query))
}

// Search returns at most topK hits ordered by descending score. Equal scores
// keep document then chunk order.
func (r *Lexical) Search(query string, topK int) ([]domain.SearchResult, error) {
	terms := Terms(query)
	if len(terms) == 0 {
		return nil, &domain.ValidationError{Field: "query", Reason: "search term required"}
	}
	if topK < 0 {
		return nil, &domain.ValidationError{Field: "top_k", Reason: "must not be negative"}
	}

	var results []domain.SearchResult
	for _, doc := range r.corpus.Documents() {
		for i, chunk := range doc.Chunks {
			matches := matchCount(terms, strings.ToLower(chunk))
			if matches == 0 {
				continue
			}
			results = append(results, domain.SearchResult{
				Text:       chunk,
				Source:     doc.ChunkSource(i),
				DocID:      doc.ID,
				ChunkIndex: i,
				Score:      float64(matches) / float64(len(terms)),
			})
		}
	}
	sort.SliceStable(results, func(i, j int) bool { return results[i].Score > results[j].Score })
	if len(results) > topK {
		results = results[:topK]
	}
	return results, nil
}

// matchCount counts the terms found in text. A term repeated in the query
// counts once per repetition.
func matchCount(terms []string, text string) int {
	n := 0
	for _, t := range terms {
		if strings.Contains(text, t) {
			n++
		}
	}
	return n
}
