// Package jsonfile stores the document snapshot as a single JSON object
// keyed by document id.
package jsonfile

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"docrag/internal/domain"
	"docrag/internal/store"
)

// Ensure Storage implements the interface.
var _ store.Snapshotter = (*Storage)(nil)

// DefaultPath is the snapshot file used when none is configured.
const DefaultPath = "knowledge_base.json"

// Storage reads and writes the snapshot file at path.
type Storage struct {
	path string
}

// NewStorage creates a snapshot backend for path.
func NewStorage(path string) *Storage {
	if path == "" {
		path = DefaultPath
	}
	return &Storage{path: path}
}

// Path returns the snapshot file path.
func (s *Storage) Path() string { return s.path }

// Load decodes the snapshot, keeping the key order of the file.
func (s *Storage) Load(_ context.Context) ([]domain.SnapshotRecord, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}
	return decode(data)
}

// Save writes all records to a temporary file and renames it over the snapshot.
func (s *Storage) Save(_ context.Context, records []domain.SnapshotRecord) error {
	data, err := encode(records)
	if err != nil {
		return err
	}
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), s.path)
}

// encode writes {"id": {"filename", "content", "size"}, ...} in record order.
// encoding/json sorts map keys, so the object is assembled by hand.
func encode(records []domain.SnapshotRecord) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString("{")
	for i, rec := range records {
		if i > 0 {
			buf.WriteString(",")
		}
		key, err := marshal(rec.ID, "")
		if err != nil {
			return nil, err
		}
		val, err := marshal(rec, "  ")
		if err != nil {
			return nil, err
		}
		buf.WriteString("\n  ")
		buf.Write(key)
		buf.WriteString(": ")
		buf.Write(val)
	}
	if len(records) > 0 {
		buf.WriteString("\n")
	}
	buf.WriteString("}\n")
	return buf.Bytes(), nil
}

// marshal encodes v without escaping <, > and &, indenting nested lines
// with prefix.
func marshal(v any, prefix string) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if prefix != "" {
		enc.SetIndent(prefix, "  ")
	}
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}

func decode(data []byte) ([]domain.SnapshotRecord, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil, errors.New("decode snapshot: expected a JSON object")
	}
	var records []domain.SnapshotRecord
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("decode snapshot: %w", err)
		}
		id, _ := tok.(string)
		var rec domain.SnapshotRecord
		if err := dec.Decode(&rec); err != nil {
			return nil, fmt.Errorf("decode snapshot entry %q: %w", id, err)
		}
		rec.ID = id
		records = append(records, rec)
	}
	if _, err := dec.Token(); err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}
	return records, nil
}
