// Package store owns the document records and their whole-snapshot persistence.
package store

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"unicode/utf8"

	"github.com/google/uuid"

	"docrag/internal/domain"
)

// Snapshotter persists the full set of documents. Save always replaces the
// previous snapshot; Load returns records in the order they were saved and
// an empty slice when no snapshot exists yet.
type Snapshotter interface {
	Load(ctx context.Context) ([]domain.SnapshotRecord, error)
	Save(ctx context.Context, records []domain.SnapshotRecord) error
}

// Store maps document ids to records. Mutations and their snapshot writes
// are serialized by mu, so a Store is safe to share between request handlers.
type Store struct {
	mu      sync.RWMutex
	chunker domain.Chunker
	snap    Snapshotter
	logger  *slog.Logger
	newID   func() string

	docs  map[string]*domain.Document
	order []string
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger used for load diagnostics.
func WithLogger(l *slog.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithIDGenerator overrides document id generation.
func WithIDGenerator(fn func() string) Option {
	return func(s *Store) {
		if fn != nil {
			s.newID = fn
		}
	}
}

// New creates an empty store. Call Load to restore a previous snapshot.
func New(chunker domain.Chunker, snap Snapshotter, opts ...Option) *Store {
	s := &Store{
		chunker: chunker,
		snap:    snap,
		logger:  slog.Default(),
		newID:   NewID,
		docs:    make(map[string]*domain.Document),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With("component", "document_store")
	return s
}

// NewID returns a random document id.
func NewID() string {
	return "doc_" + uuid.NewString()
}

// Load replaces the in-memory documents with the persisted snapshot and
// returns how many were restored. Any snapshot failure is logged and leaves
// the store empty; it is never returned to the caller.
func (s *Store) Load(ctx context.Context) int {
	records, err := s.snap.Load(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.docs = make(map[string]*domain.Document)
	s.order = nil
	if err != nil {
		s.logger.Error("error loading snapshot, starting with an empty store", "error", err)
		return 0
	}
	for _, rec := range records {
		if _, dup := s.docs[rec.ID]; dup {
			s.logger.Warn("duplicate document id in snapshot", "doc_id", rec.ID)
			continue
		}
		doc := s.build(rec.ID, rec.Filename, rec.Content)
		if doc.Size != rec.Size {
			s.logger.Warn("stored size disagrees with content", "doc_id", rec.ID, "stored", rec.Size, "actual", doc.Size)
		}
		s.insert(doc)
	}
	s.logger.Debug("snapshot loaded", "documents", len(s.order))
	return len(s.order)
}

// Save persists every document.
func (s *Store) Save(ctx context.Context) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.save(ctx)
}

// Ingest stores text as a new document and persists the store. The document
// is not kept if persisting fails.
func (s *Store) Ingest(ctx context.Context, text, filename string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.newID()
	for s.docs[id] != nil {
		id = s.newID()
	}
	s.insert(s.build(id, filename, text))
	if err := s.save(ctx); err != nil {
		s.remove(id)
		return "", &domain.IngestionError{Filename: filename, Err: err}
	}
	return id, nil
}

// Delete removes a document and persists the store.
func (s *Store) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, ok := s.docs[id]
	if !ok {
		return &domain.NotFoundError{ID: id}
	}
	pos := s.remove(id)
	if err := s.save(ctx); err != nil {
		s.docs[id] = doc
		s.order = append(s.order[:pos], append([]string{id}, s.order[pos:]...)...)
		return fmt.Errorf("delete %s: %w", id, err)
	}
	return nil
}

// Get returns a copy of a single document.
func (s *Store) Get(id string) (domain.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	doc, ok := s.docs[id]
	if !ok {
		return domain.Document{}, &domain.NotFoundError{ID: id}
	}
	return copyDoc(doc), nil
}

// Documents returns copies of all documents in insertion order.
func (s *Store) Documents() []domain.Document {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Document, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, copyDoc(s.docs[id]))
	}
	return out
}

// List returns document summaries in insertion order.
func (s *Store) List() []domain.DocumentSummary {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.DocumentSummary, 0, len(s.order))
	for _, id := range s.order {
		d := s.docs[id]
		out = append(out, domain.DocumentSummary{
			DocID:    d.ID,
			Filename: d.Filename,
			Size:     d.Size,
			Chunks:   len(d.Chunks),
		})
	}
	return out
}

// Len returns the number of stored documents.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.order)
}

func (s *Store) build(id, filename, content string) *domain.Document {
	return &domain.Document{
		ID:       id,
		Filename: filename,
		Content:  content,
		Size:     utf8.RuneCountInString(content),
		Chunks:   s.chunker.Chunk(content),
	}
}

func (s *Store) insert(doc *domain.Document) {
	s.docs[doc.ID] = doc
	s.order = append(s.order, doc.ID)
}

// remove deletes id and returns its former position in the order.
func (s *Store) remove(id string) int {
	delete(s.docs, id)
	for i, v := range s.order {
		if v == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			return i
		}
	}
	return len(s.order)
}

// save must be called with mu held.
func (s *Store) save(ctx context.Context) error {
	records := make([]domain.SnapshotRecord, 0, len(s.order))
	for _, id := range s.order {
		d := s.docs[id]
		records = append(records, domain.SnapshotRecord{
			ID:       d.ID,
			Filename: d.Filename,
			Content:  d.Content,
			Size:     d.Size,
		})
	}
	if err := s.snap.Save(ctx, records); err != nil {
		return fmt.Errorf("save snapshot: %w", err)
	}
	return nil
}

func copyDoc(d *domain.Document) domain.Document {
	c := *d
	c.Chunks = append([]string(nil), d.Chunks...)
	return c
}
