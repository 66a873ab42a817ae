package jsonfile

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docrag/internal/domain"
)

func TestStorage_MissingFileIsEmpty(t *testing.T) {
	s := NewStorage(filepath.Join(t.TempDir(), "kb.json"))
	records, err := s.Load(context.Background())
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestStorage_RoundTripKeepsOrder(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "kb.json")
	s := NewStorage(path)
	in := []domain.SnapshotRecord{
		{ID: "doc_z", Filename: "z.txt", Content: "last letter", Size: 11},
		{ID: "doc_a", Filename: "a.txt", Content: "first \"quoted\" letter", Size: 21},
		{ID: "doc_m", Filename: "m.txt", Content: "", Size: 0},
	}
	require.NoError(t, s.Save(context.Background(), in))

	out, err := s.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, in, out)
}

func TestStorage_FileShape(t *testing.T) {
	path := filepath.Join(t.TempDir(), "kb.json")
	s := NewStorage(path)
	require.NoError(t, s.Save(context.Background(), []domain.SnapshotRecord{
		{ID: "doc_1", Filename: "one.txt", Content: "hello", Size: 5},
	}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var raw map[string]map[string]any
	require.NoError(t, json.Unmarshal(data, &raw))
	assert.Equal(t, map[string]map[string]any{
		"doc_1": {"filename": "one.txt", "content": "hello", "size": float64(5)},
	}, raw)
}

func TestStorage_EmptySnapshot(t *testing.T) {
	path := filepath.Join(t.TempDir(), "kb.json")
	s := NewStorage(path)
	require.NoError(t, s.Save(context.Background(), nil))

	records, err := s.Load(context.Background())
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestStorage_CorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "kb.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"doc_1": {"filename": `), 0o644))

	_, err := NewStorage(path).Load(context.Background())
	assert.Error(t, err)
}

func TestStorage_NotAnObject(t *testing.T) {
	path := filepath.Join(t.TempDir(), "kb.json")
	require.NoError(t, os.WriteFile(path, []byte(`[1, 2, 3]`), 0o644))

	_, err := NewStorage(path).Load(context.Background())
	assert.Error(t, err)
}

func TestStorage_DoesNotEscapeMarkup(t *testing.T) {
	path := filepath.Join(t.TempDir(), "kb.json")
	s := NewStorage(path)
	in := []domain.SnapshotRecord{{ID: "doc_1", Filename: "<a&b>.html", Content: "<p>fish & chips</p>", Size: 19}}
	require.NoError(t, s.Save(context.Background(), in))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"content": "<p>fish & chips</p>"`)
	assert.NotContains(t, string(data), `\u003c`)
	assert.NotContains(t, string(data), `\u0026`)

	out, err := s.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, in, out)
}
