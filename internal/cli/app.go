package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"docrag/internal/chunker"
	"docrag/internal/config"
	"docrag/internal/domain"
	"docrag/internal/extract"
	"docrag/internal/llm"
	"docrag/internal/retriever"
	"docrag/internal/service"
	"docrag/internal/store"
	"docrag/internal/store/jsonfile"
	"docrag/internal/store/sqlite"
	"docrag/internal/synthesizer"
)

// App holds the assembled engine for one command invocation.
type App struct {
	Config  *config.AppConfig
	Logger  *slog.Logger
	Service *service.RAGService

	closers []io.Closer
}

// Close releases storage handles.
func (a *App) Close() error {
	var errs []error
	for _, c := range a.closers {
		errs = append(errs, c.Close())
	}
	return errors.Join(errs...)
}

// Build assembles the engine from cfg and loads the persisted snapshot.
// A language model that cannot be initialised (for example a missing API
// key) is not fatal: retrieval, listing and ingestion still work and only
// Query reports the failure.
func Build(ctx context.Context, cfg *config.AppConfig, logger *slog.Logger) (*App, error) {
	app := &App{Config: cfg, Logger: logger}

	var snap store.Snapshotter
	switch cfg.Storage.Type {
	case "json", "":
		snap = jsonfile.NewStorage(cfg.Storage.Path)
	case "sqlite":
		s, err := sqlite.NewStorage(cfg.Storage.Path)
		if err != nil {
			return nil, fmt.Errorf("open sqlite storage: %w", err)
		}
		snap = s
		app.closers = append(app.closers, s)
	default:
		return nil, fmt.Errorf("unknown storage type: %s", cfg.Storage.Type)
	}

	ch := chunker.NewWordChunker(cfg.Chunker.ChunkSize, cfg.Chunker.Overlap)
	st := store.New(ch, snap, store.WithLogger(logger))
	n := st.Load(ctx)
	logger.Debug("knowledge base loaded", "documents", n, "storage", cfg.Storage.Type, "path", cfg.Storage.Path)

	gen, err := llm.New(cfg.LLM)
	if err != nil {
		logger.Debug("language model unavailable", "provider", cfg.LLM.Provider, "error", err)
		gen = unavailable{err: err}
	}
	synth := synthesizer.New(gen, domain.GenerateOptions{
		MaxTokens:   cfg.LLM.MaxTokens,
		Temperature: cfg.LLM.Temperature,
	}, logger)

	app.Service = service.NewRAGService(st, extract.NewRouter(), retriever.NewLexical(st), synth, cfg.Retrieval.TopK, logger)
	return app, nil
}

// SnapshotFiles lists the files the storage backend writes, so watchers can
// leave them alone.
func (a *App) SnapshotFiles() []string {
	path := a.Config.Storage.Path
	if a.Config.Storage.Type == "sqlite" {
		return []string{path, path + "-wal", path + "-shm", path + "-journal"}
	}
	return []string{path}
}

// unavailable stands in for a generator that failed to initialise.
type unavailable struct{ err error }

func (u unavailable) Name() string { return "unavailable" }

func (u unavailable) Generate(context.Context, string, domain.GenerateOptions) (string, error) {
	return "", u.err
}
