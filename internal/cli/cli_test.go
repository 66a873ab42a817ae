package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docrag/internal/config"
	"docrag/internal/domain"
	"docrag/internal/synthesizer"
)

func init() {
	color.NoColor = true
}

// writeConfig creates a config whose snapshot lives in a temp dir and whose
// language model points at baseURL (empty means no API key is available).
func writeConfig(t *testing.T, storageType, baseURL string) string {
	t.Helper()
	dir := t.TempDir()
	ext := map[string]string{"json": "kb.json", "sqlite": "kb.db"}[storageType]
	cfg := fmt.Sprintf(`storage:
  type: %s
  path: %s
llm:
  provider: openai
  base_url: %s
  api_key_env: DOCRAG_TEST_KEY
log:
  level: error
`, storageType, filepath.Join(dir, ext), baseURL)
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(cfg), 0o644))
	if baseURL == "" {
		t.Setenv("DOCRAG_TEST_KEY", "")
	} else {
		t.Setenv("DOCRAG_TEST_KEY", "test-key")
	}
	return path
}

func run(t *testing.T, cfgPath string, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCommand()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(io.Discard)
	cmd.SetArgs(append([]string{"--config", cfgPath}, args...))
	err := cmd.ExecuteContext(context.Background())
	return buf.String(), err
}

func writeFile(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestRootCommand_HasSubcommands(t *testing.T) {
	cmd := NewRootCommand()
	var names []string
	for _, c := range cmd.Commands() {
		names = append(names, c.Name())
	}
	for _, want := range []string{"serve", "ingest", "query", "search", "list", "show", "delete", "tui", "watch"} {
		assert.Contains(t, names, want)
	}
	assert.NotNil(t, cmd.PersistentFlags().Lookup("config"))
	assert.NotNil(t, cmd.PersistentFlags().Lookup("verbose"))
}

func TestIngestListSearchDelete(t *testing.T) {
	for _, storageType := range []string{"json", "sqlite"} {
		t.Run(storageType, func(t *testing.T) {
			cfg := writeConfig(t, storageType, "")
			dir := t.TempDir()
			writeFile(t, dir, "cats.txt", "cats and dogs")
			writeFile(t, dir, "more.txt", "cats only")

			out, err := run(t, cfg, "ingest", filepath.Join(dir, "*.txt"))
			require.NoError(t, err)
			assert.Contains(t, out, "2 ingested, 0 failed, 2 documents total")

			out, err = run(t, cfg, "list", "--json")
			require.NoError(t, err)
			var listing struct {
				Total     int                      `json:"total"`
				Documents []domain.DocumentSummary `json:"documents"`
			}
			require.NoError(t, json.Unmarshal([]byte(out), &listing))
			require.Equal(t, 2, listing.Total)
			assert.Equal(t, "cats.txt", listing.Documents[0].Filename)
			assert.Equal(t, "more.txt", listing.Documents[1].Filename)

			out, err = run(t, cfg, "search", "--json", "-k", "1", "cats", "dogs")
			require.NoError(t, err)
			var search struct {
				Query   string                `json:"query"`
				Results []domain.SearchResult `json:"results"`
				Count   int                   `json:"count"`
			}
			require.NoError(t, json.Unmarshal([]byte(out), &search))
			assert.Equal(t, "cats dogs", search.Query)
			require.Equal(t, 1, search.Count)
			assert.Equal(t, "cats.txt (chunk 1)", search.Results[0].Source)

			out, err = run(t, cfg, "show", listing.Documents[1].DocID)
			require.NoError(t, err)
			assert.Contains(t, out, "cats only")

			out, err = run(t, cfg, "delete", listing.Documents[0].DocID)
			require.NoError(t, err)
			assert.Contains(t, out, "deleted successfully")

			out, err = run(t, cfg, "list")
			require.NoError(t, err)
			assert.Contains(t, out, "1 documents")
			assert.NotContains(t, out, "cats.txt")

			_, err = run(t, cfg, "delete", listing.Documents[0].DocID)
			assert.ErrorIs(t, err, domain.ErrNotFound)
		})
	}
}

func TestIngest_ReportsFailures(t *testing.T) {
	cfg := writeConfig(t, "json", "")
	dir := t.TempDir()
	good := writeFile(t, dir, "good.txt", "fine")
	bad := writeFile(t, dir, "bad.pdf", "not a pdf")

	out, err := run(t, cfg, "ingest", good, bad)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "1 of 2 files failed")
	assert.Contains(t, out, "bad.pdf")
	assert.Contains(t, out, "1 ingested, 1 failed, 1 documents total")
}

func TestSearch_NoResults(t *testing.T) {
	cfg := writeConfig(t, "json", "")
	out, err := run(t, cfg, "search", "zebra")
	require.NoError(t, err)
	assert.Contains(t, out, "No results found.")
}

func TestQuery_EmptyKnowledgeBase(t *testing.T) {
	cfg := writeConfig(t, "json", "")
	out, err := run(t, cfg, "query", "what", "is", "go?")
	require.NoError(t, err)
	assert.Contains(t, out, synthesizer.NoContextAnswer)
	assert.Contains(t, out, "confidence 0.00")
}

func TestQuery_WithoutLanguageModel(t *testing.T) {
	cfg := writeConfig(t, "json", "")
	path := writeFile(t, t.TempDir(), "go.txt", "Go has goroutines.")
	_, err := run(t, cfg, "ingest", path)
	require.NoError(t, err)

	_, err = run(t, cfg, "query", "goroutines")
	var synthErr *domain.SynthesisError
	require.ErrorAs(t, err, &synthErr)
	assert.Contains(t, err.Error(), "DOCRAG_TEST_KEY")
}

func TestQuery_WithLanguageModel(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"Go uses goroutines."}}]}`))
	}))
	defer srv.Close()

	cfg := writeConfig(t, "json", srv.URL)
	path := writeFile(t, t.TempDir(), "go.txt", "Go has goroutines.")
	_, err := run(t, cfg, "ingest", path)
	require.NoError(t, err)

	out, err := run(t, cfg, "query", "--json", "goroutines")
	require.NoError(t, err)
	var resp struct {
		Answer     string   `json:"answer"`
		Sources    []string `json:"sources"`
		Confidence float64  `json:"confidence"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "Go uses goroutines.", resp.Answer)
	assert.Equal(t, []string{"go.txt (chunk 1)"}, resp.Sources)
	assert.InDelta(t, 0.2, resp.Confidence, 1e-9)
}

func TestWatchAndIngest_SkipsOwnSnapshot(t *testing.T) {
	for _, storageType := range []string{"json", "sqlite"} {
		t.Run(storageType, func(t *testing.T) {
			dir := t.TempDir()
			cfg, err := config.Load(filepath.Join(dir, "absent.yaml"))
			require.NoError(t, err)
			cfg.Storage.Type = storageType
			cfg.Storage.Path = filepath.Join(dir, map[string]string{"json": "knowledge_base.json", "sqlite": "knowledge_base.db"}[storageType])

			app, err := Build(context.Background(), cfg, slog.New(slog.NewTextHandler(io.Discard, nil)))
			require.NoError(t, err)
			defer app.Close()

			ctx, cancel := context.WithCancel(context.Background())
			done := make(chan error, 1)
			go func() { done <- watchAndIngest(ctx, app, dir, 50*time.Millisecond, io.Discard) }()
			time.Sleep(50 * time.Millisecond)

			writeFile(t, dir, "notes.txt", "hello notes")
			assert.Eventually(t, func() bool { return app.Service.DocumentCount() >= 1 }, 2*time.Second, 20*time.Millisecond)
			// Several debounce windows, long enough for a snapshot rewrite to be re-ingested.
			time.Sleep(400 * time.Millisecond)
			cancel()
			require.NoError(t, <-done)

			docs := app.Service.ListMetadata()
			require.Len(t, docs, 1)
			assert.Equal(t, "notes.txt", docs[0].Filename)
			assert.Equal(t, 11, docs[0].Size)
		})
	}
}

func TestSnapshotFiles(t *testing.T) {
	app := &App{Config: &config.AppConfig{Storage: config.StorageConfig{Type: "sqlite", Path: "kb.db"}}}
	assert.Equal(t, []string{"kb.db", "kb.db-wal", "kb.db-shm", "kb.db-journal"}, app.SnapshotFiles())

	app.Config.Storage = config.StorageConfig{Type: "json", Path: "kb.json"}
	assert.Equal(t, []string{"kb.json"}, app.SnapshotFiles())
}

func TestBuild_UnknownStorage(t *testing.T) {
	cfg := &config.AppConfig{Storage: config.StorageConfig{Type: "redis"}}
	_, err := Build(context.Background(), cfg, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown storage type")
}

func TestSnippet(t *testing.T) {
	assert.Equal(t, "a b c", snippet("a\n b\t c", 10))
	assert.Equal(t, "héll...", snippet("héllo world", 4))
	assert.True(t, strings.HasSuffix(snippet(strings.Repeat("x", 300), 200), "..."))
}
