// Package sqlite stores the document snapshot in a SQLite database.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite" // SQLite driver

	"docrag/internal/domain"
	"docrag/internal/store"
)

// Ensure Storage implements the interface.
var _ store.Snapshotter = (*Storage)(nil)

const schema = `
CREATE TABLE IF NOT EXISTS documents (
	id       TEXT PRIMARY KEY,
	position INTEGER NOT NULL,
	filename TEXT NOT NULL,
	content  TEXT NOT NULL,
	size     INTEGER NOT NULL
)`

// Storage keeps one row per document. Every Save rewrites the table inside
// a single transaction.
type Storage struct {
	db   *sql.DB
	path string
}

// NewStorage opens (creating if needed) the database at path.
func NewStorage(path string) (*Storage, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}
	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return &Storage{db: db, path: path}, nil
}

// Close closes the database connection.
func (s *Storage) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Storage) Path() string { return s.path }

// Load returns all documents ordered by their saved position.
func (s *Storage) Load(ctx context.Context) ([]domain.SnapshotRecord, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, filename, content, size FROM documents ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("query documents: %w", err)
	}
	defer rows.Close()

	var records []domain.SnapshotRecord
	for rows.Next() {
		var rec domain.SnapshotRecord
		if err := rows.Scan(&rec.ID, &rec.Filename, &rec.Content, &rec.Size); err != nil {
			return nil, fmt.Errorf("scan document: %w", err)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// Save replaces the stored documents with records.
func (s *Storage) Save(ctx context.Context, records []domain.SnapshotRecord) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM documents`); err != nil {
		return fmt.Errorf("clear documents: %w", err)
	}
	stmt, err := tx.PrepareContext(ctx, `INSERT INTO documents (id, position, filename, content, size) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()
	for i, rec := range records {
		if _, err := stmt.ExecContext(ctx, rec.ID, i, rec.Filename, rec.Content, rec.Size); err != nil {
			return fmt.Errorf("insert %s: %w", rec.ID, err)
		}
	}
	return tx.Commit()
}
