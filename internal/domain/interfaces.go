package domain

import "context"

// Chunker splits document text into ordered chunks suitable for retrieval.
// Implementations must be pure: the same text always yields the same chunks.
type Chunker interface {
	Chunk(text string) []string
}

// Extractor turns raw file bytes into text.
type Extractor interface {
	Extract(filename string, data []byte) (string, error)
}

// GenerateOptions bounds a single language-model call.
type GenerateOptions struct {
	// MaxTokens is the maximum number of tokens to generate.
	MaxTokens int

	// Temperature controls sampling randomness.
	Temperature float64
}

// Generator is the language-model collaborator used for answer synthesis.
type Generator interface {
	Name() string
	Generate(ctx context.Context, prompt string, opts GenerateOptions) (string, error)
}
