package watcher

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorder struct {
	mu    sync.Mutex
	paths []string
}

func (r *recorder) add(path string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.paths = append(r.paths, path)
}

func (r *recorder) snapshot() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.paths...)
}

func startWatcher(t *testing.T, dir string, debounce time.Duration) *recorder {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	rec := &recorder{}
	done := make(chan error, 1)
	go func() { done <- New(debounce, nil).Run(ctx, dir, rec.add) }()
	t.Cleanup(func() {
		cancel()
		require.NoError(t, <-done)
	})
	// Give fsnotify time to register the directory.
	time.Sleep(50 * time.Millisecond)
	return rec
}

func TestRun_DebouncesWrites(t *testing.T) {
	dir := t.TempDir()
	rec := startWatcher(t, dir, 100*time.Millisecond)

	path := filepath.Join(dir, "notes.txt")
	for i := 0; i < 3; i++ {
		require.NoError(t, os.WriteFile(path, []byte("draft"), 0o644))
		time.Sleep(10 * time.Millisecond)
	}

	assert.Eventually(t, func() bool { return len(rec.snapshot()) == 1 }, 2*time.Second, 20*time.Millisecond)
	time.Sleep(200 * time.Millisecond)
	assert.Equal(t, []string{path}, rec.snapshot())
}

func TestRun_IgnoresHiddenFilesAndDirectories(t *testing.T) {
	dir := t.TempDir()
	rec := startWatcher(t, dir, 50*time.Millisecond)

	require.NoError(t, os.WriteFile(filepath.Join(dir, ".swap"), []byte("x"), 0o644))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub"), 0o755))
	visible := filepath.Join(dir, "visible.md")
	require.NoError(t, os.WriteFile(visible, []byte("# hi"), 0o644))

	assert.Eventually(t, func() bool { return len(rec.snapshot()) == 1 }, 2*time.Second, 20*time.Millisecond)
	time.Sleep(150 * time.Millisecond)
	assert.Equal(t, []string{visible}, rec.snapshot())
}

func TestWithIgnore_MatchesRelativeAndAbsolutePaths(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	require.NoError(t, os.WriteFile("kb.json", []byte("{}"), 0o644))

	w := New(0, nil, WithIgnore("kb.json", ""))
	_, ok := w.accept(fsnotify.Event{Name: filepath.Join(dir, "kb.json"), Op: fsnotify.Create})
	assert.False(t, ok)
	_, ok = w.accept(fsnotify.Event{Name: "kb.json", Op: fsnotify.Create})
	assert.False(t, ok)
	assert.Len(t, w.ignore, 1)
}

func TestRun_MissingDirectory(t *testing.T) {
	err := New(0, nil).Run(context.Background(), filepath.Join(t.TempDir(), "absent"), func(string) {})
	require.Error(t, err)
}

func TestAccept(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "a.txt")
	require.NoError(t, os.WriteFile(file, []byte("a"), 0o644))
	hidden := filepath.Join(dir, ".a.txt")
	require.NoError(t, os.WriteFile(hidden, []byte("a"), 0o644))
	snapshot := filepath.Join(dir, "knowledge_base.json")
	require.NoError(t, os.WriteFile(snapshot, []byte("{}"), 0o644))
	partial := filepath.Join(dir, "knowledge_base.json.123.tmp")
	require.NoError(t, os.WriteFile(partial, []byte("{"), 0o644))

	w := New(0, nil, WithIgnore(snapshot))
	tests := []struct {
		name  string
		event fsnotify.Event
		want  bool
	}{
		{"create", fsnotify.Event{Name: file, Op: fsnotify.Create}, true},
		{"write", fsnotify.Event{Name: file, Op: fsnotify.Write}, true},
		{"chmod", fsnotify.Event{Name: file, Op: fsnotify.Chmod}, false},
		{"remove", fsnotify.Event{Name: filepath.Join(dir, "gone.txt"), Op: fsnotify.Remove}, false},
		{"hidden", fsnotify.Event{Name: hidden, Op: fsnotify.Create}, false},
		{"directory", fsnotify.Event{Name: dir, Op: fsnotify.Create}, false},
		{"ignored snapshot", fsnotify.Event{Name: snapshot, Op: fsnotify.Create}, false},
		{"ignored snapshot write", fsnotify.Event{Name: snapshot, Op: fsnotify.Write}, false},
		{"temporary file", fsnotify.Event{Name: partial, Op: fsnotify.Create}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, ok := w.accept(tt.event)
			assert.Equal(t, tt.want, ok)
		})
	}
}
