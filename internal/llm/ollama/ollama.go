// Package ollama generates answers with a local Ollama server.
package ollama

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/ollama/ollama/api"

	"docrag/internal/domain"
)

// Ensure Client implements the interface.
var _ domain.Generator = (*Client)(nil)

const (
	DefaultBaseURL = "http://localhost:11434"
	DefaultModel   = "llama3.2"
	DefaultTimeout = 120 * time.Second
)

// Config configures the Ollama client.
type Config struct {
	BaseURL string
	Model   string
	Timeout time.Duration
}

// Client wraps the Ollama API client.
type Client struct {
	api   *api.Client
	model string
}

// NewClient creates a client for the server at cfg.BaseURL.
func NewClient(cfg Config) (*Client, error) {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}
	base, err := url.Parse(strings.TrimSuffix(strings.TrimRight(cfg.BaseURL, "/"), "/api"))
	if err != nil {
		return nil, fmt.Errorf("invalid ollama url %q: %w", cfg.BaseURL, err)
	}
	return &Client{
		api:   api.NewClient(base, &http.Client{Timeout: cfg.Timeout}),
		model: cfg.Model,
	}, nil
}

// Name returns the model identifier.
func (c *Client) Name() string { return "ollama/" + c.model }

// Generate runs a non-streaming completion.
func (c *Client) Generate(ctx context.Context, prompt string, opts domain.GenerateOptions) (string, error) {
	stream := false
	req := &api.GenerateRequest{
		Model:  c.model,
		Prompt: prompt,
		Stream: &stream,
		Options: map[string]any{
			"temperature": opts.Temperature,
		},
	}
	if opts.MaxTokens > 0 {
		req.Options["num_predict"] = opts.MaxTokens
	}

	var sb strings.Builder
	err := c.api.Generate(ctx, req, func(resp api.GenerateResponse) error {
		sb.WriteString(resp.Response)
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("ollama generate: %w", err)
	}
	return sb.String(), nil
}
