// Package synthesizer turns retrieved chunks into a grounded answer.
package synthesizer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"docrag/internal/domain"
)

// NoContextAnswer is returned, without calling the model, when nothing was retrieved.
const NoContextAnswer = "No relevant documents found in the knowledge base."

const (
	// DefaultMaxTokens bounds the generated answer length.
	DefaultMaxTokens = 1024
	// DefaultTemperature is the sampling temperature for answers.
	DefaultTemperature = 0.7

	// corroboratingHits is the hit count at which confidence saturates.
	corroboratingHits = 5
)

const promptTemplate = `You are a helpful assistant that answers questions based on provided documents.

Context from knowledge base:
%s

User Question: %s

Please provide a concise, accurate answer based only on the provided context. If the answer cannot be found in the context, say so clearly.`

// Synthesizer builds the grounding prompt and delegates to a Generator.
type Synthesizer struct {
	generator domain.Generator
	opts      domain.GenerateOptions
	logger    *slog.Logger
}

// DefaultOptions returns the generation options used by the web app.
func DefaultOptions() domain.GenerateOptions {
	return domain.GenerateOptions{MaxTokens: DefaultMaxTokens, Temperature: DefaultTemperature}
}

// New creates a synthesizer. A non-positive MaxTokens falls back to
// DefaultMaxTokens; Temperature is used as given, so zero means greedy decoding.
func New(generator domain.Generator, opts domain.GenerateOptions, logger *slog.Logger) *Synthesizer {
	if opts.MaxTokens <= 0 {
		opts.MaxTokens = DefaultMaxTokens
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Synthesizer{
		generator: generator,
		opts:      opts,
		logger:    logger.With("component", "synthesizer"),
	}
}

// Answer produces the final answer for query from hits.
func (s *Synthesizer) Answer(ctx context.Context, query string, hits []domain.SearchResult) (domain.Answer, error) {
	if len(hits) == 0 {
		return domain.Answer{Text: NoContextAnswer, Sources: []string{}, Confidence: 0}, nil
	}
	if s.generator == nil {
		return domain.Answer{}, &domain.SynthesisError{Err: errors.New("no language model configured")}
	}

	prompt := BuildPrompt(query, hits)
	s.logger.Debug("generating answer", "model", s.generator.Name(), "hits", len(hits), "prompt_chars", len(prompt))
	text, err := s.generator.Generate(ctx, prompt, s.opts)
	if err != nil {
		return domain.Answer{}, &domain.SynthesisError{Err: err}
	}
	if strings.TrimSpace(text) == "" {
		return domain.Answer{}, &domain.SynthesisError{Err: errors.New("model returned no text")}
	}

	sources := make([]string, len(hits))
	for i, h := range hits {
		sources[i] = h.Source
	}
	return domain.Answer{
		Text:       text,
		Sources:    sources,
		Confidence: Confidence(len(hits)),
	}, nil
}

// BuildPrompt embeds the hits and the query into the grounding template.
func BuildPrompt(query string, hits []domain.SearchResult) string {
	blocks := make([]string, len(hits))
	for i, h := range hits {
		blocks[i] = fmt.Sprintf("Source: %s\n%s", h.Source, h.Text)
	}
	return fmt.Sprintf(promptTemplate, strings.Join(blocks, "\n\n"), query)
}

// Confidence is min(1, hits/5): a count of corroborating chunks, not a probability.
func Confidence(hits int) float64 {
	c := float64(hits) / corroboratingHits
	if c > 1 {
		return 1
	}
	return c
}
