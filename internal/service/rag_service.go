// Package service composes storage, retrieval and synthesis into the
// operations exposed to the CLI, the HTTP API and the TUI.
package service

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"docrag/internal/domain"
	"docrag/internal/retriever"
	"docrag/internal/store"
	"docrag/internal/synthesizer"
)

// Searcher ranks stored chunks against a query.
type Searcher interface {
	Search(query string, topK int) ([]domain.SearchResult, error)
}

// Answerer turns hits into a grounded answer.
type Answerer interface {
	Answer(ctx context.Context, query string, hits []domain.SearchResult) (domain.Answer, error)
}

// RAGService is the engine facade.
type RAGService struct {
	store     *store.Store
	extractor domain.Extractor
	searcher  Searcher
	answerer  Answerer
	topK      int
	logger    *slog.Logger
}

// NewRAGService wires the engine. topK is the number of chunks used to answer a query.
func NewRAGService(st *store.Store, extractor domain.Extractor, searcher Searcher, answerer Answerer, topK int, logger *slog.Logger) *RAGService {
	if topK <= 0 {
		topK = retriever.DefaultTopK
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &RAGService{
		store:     st,
		extractor: extractor,
		searcher:  searcher,
		answerer:  answerer,
		topK:      topK,
		logger:    logger.With("component", "rag_service"),
	}
}

// IngestDocument reads the file at path and stores it under filename.
func (s *RAGService) IngestDocument(ctx context.Context, path, filename string) (string, error) {
	if filename == "" {
		filename = filepath.Base(path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", &domain.IngestionError{Filename: filename, Err: err}
	}
	return s.IngestBytes(ctx, filename, data)
}

// IngestBytes extracts text from data, routing on the filename extension,
// and stores it as a new document.
func (s *RAGService) IngestBytes(ctx context.Context, filename string, data []byte) (string, error) {
	text, err := s.extractor.Extract(filename, data)
	if err != nil {
		return "", &domain.IngestionError{Filename: filename, Err: err}
	}
	id, err := s.store.Ingest(ctx, text, filename)
	if err != nil {
		return "", err
	}
	s.logger.Info("document ingested", "doc_id", id, "filename", filename, "bytes", len(data))
	return id, nil
}

// IngestDocuments ingests every file matched by paths (glob patterns allowed).
// A failing file does not stop the batch.
func (s *RAGService) IngestDocuments(ctx context.Context, paths []string) []domain.IngestResult {
	var results []domain.IngestResult
	for _, p := range paths {
		matches, _ := filepath.Glob(p)
		if matches == nil {
			matches = []string{p}
		}
		for _, m := range matches {
			if info, err := os.Stat(m); err == nil && info.IsDir() {
				continue
			}
			name := filepath.Base(m)
			id, err := s.IngestDocument(ctx, m, name)
			if err != nil {
				s.logger.Warn("ingest failed", "filename", name, "error", err)
			}
			results = append(results, domain.IngestResult{Filename: name, DocID: id, Err: err})
		}
	}
	return results
}

// Query retrieves the best chunks for text and asks the model for an answer.
func (s *RAGService) Query(ctx context.Context, text string) (domain.Answer, error) {
	ans, _, err := s.QueryWithHits(ctx, text)
	return ans, err
}

// QueryWithHits is Query that also returns the chunks the answer was built from.
func (s *RAGService) QueryWithHits(ctx context.Context, text string) (domain.Answer, []domain.SearchResult, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return domain.Answer{}, nil, &domain.ValidationError{Field: "query", Reason: "query cannot be empty"}
	}
	hits, err := s.searcher.Search(text, s.topK)
	if err != nil {
		return domain.Answer{}, nil, err
	}
	s.logger.Debug("query retrieved", "hits", len(hits))
	ans, err := s.answerer.Answer(ctx, text, hits)
	if err != nil {
		return domain.Answer{}, hits, err
	}
	return ans, hits, nil
}

// Search runs lexical retrieval only, without calling the model.
func (s *RAGService) Search(term string, topK int) ([]domain.SearchResult, error) {
	term = strings.TrimSpace(term)
	if term == "" {
		return nil, &domain.ValidationError{Field: "q", Reason: "search term required"}
	}
	return s.searcher.Search(term, topK)
}

// DeleteDocument removes a document.
func (s *RAGService) DeleteDocument(ctx context.Context, id string) error {
	if err := s.store.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info("document deleted", "doc_id", id)
	return nil
}

// ListMetadata summarizes every stored document.
func (s *RAGService) ListMetadata() []domain.DocumentSummary {
	return s.store.List()
}

// Document returns a stored document.
func (s *RAGService) Document(id string) (domain.Document, error) {
	return s.store.Get(id)
}

// DocumentCount returns the number of stored documents.
func (s *RAGService) DocumentCount() int {
	return s.store.Len()
}

// DefaultTopK is the hit count used by Query.
func (s *RAGService) DefaultTopK() int {
	return s.topK
}

// Ensure the concrete components satisfy the ports.
var (
	_ Searcher = (*retriever.Lexical)(nil)
	_ Answerer = (*synthesizer.Synthesizer)(nil)
)
