// Package llm selects the language model used for answer synthesis.
package llm

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/time/rate"

	"docrag/internal/config"
	"docrag/internal/domain"
	"docrag/internal/llm/gemini"
	"docrag/internal/llm/ollama"
	"docrag/internal/llm/openai"
)

// New builds the generator named by cfg.Provider, rate limited when
// cfg.RequestsPerMinute is positive.
func New(cfg config.LLMConfig) (domain.Generator, error) {
	timeout := time.Duration(cfg.TimeoutSecs) * time.Second
	var (
		gen domain.Generator
		err error
	)
	switch cfg.Provider {
	case "gemini", "":
		gen, err = gemini.NewClient(gemini.Config{
			BaseURL:   cfg.BaseURL,
			APIKeyEnv: cfg.APIKeyEnv,
			Model:     cfg.Model,
			Timeout:   timeout,
		})
	case "openai":
		gen, err = openai.NewClient(openai.Config{
			BaseURL:   cfg.BaseURL,
			APIKeyEnv: cfg.APIKeyEnv,
			Model:     cfg.Model,
			Timeout:   timeout,
		})
	case "ollama":
		gen, err = ollama.NewClient(ollama.Config{
			BaseURL: cfg.BaseURL,
			Model:   cfg.Model,
			Timeout: timeout,
		})
	default:
		return nil, fmt.Errorf("unknown llm provider: %s", cfg.Provider)
	}
	if err != nil {
		return nil, fmt.Errorf("%s init failed: %w", cfg.Provider, err)
	}
	return NewRateLimited(gen, cfg.RequestsPerMinute), nil
}

// RateLimited paces calls to a generator. It never retries.
type RateLimited struct {
	next    domain.Generator
	limiter *rate.Limiter
}

// NewRateLimited wraps gen so that at most perMinute calls start per minute.
// A non-positive perMinute returns gen unchanged.
func NewRateLimited(gen domain.Generator, perMinute int) domain.Generator {
	if perMinute <= 0 {
		return gen
	}
	return &RateLimited{
		next:    gen,
		limiter: rate.NewLimiter(rate.Every(time.Minute/time.Duration(perMinute)), 1),
	}
}

// Name returns the wrapped generator's name.
func (r *RateLimited) Name() string { return r.next.Name() }

// Generate waits for a token, then delegates.
func (r *RateLimited) Generate(ctx context.Context, prompt string, opts domain.GenerateOptions) (string, error) {
	if err := r.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("rate limit wait: %w", err)
	}
	return r.next.Generate(ctx, prompt, opts)
}
