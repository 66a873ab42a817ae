package chunker

import (
	"strings"
	"unicode/utf8"
)

const (
	// DefaultChunkSize is the joined length in characters at which a chunk is emitted.
	DefaultChunkSize = 500
	// DefaultOverlap is the overlap budget in characters, converted to words as overlap/5.
	DefaultOverlap = 50
)

// WordChunker splits text into whitespace-delimited word runs with a
// trailing-word overlap between consecutive chunks.
type WordChunker struct {
	chunkSize    int
	overlapWords int
}

// NewWordChunker creates a chunker. Non-positive chunkSize falls back to the
// default; negative overlap is treated as zero.
func NewWordChunker(chunkSize, overlap int) *WordChunker {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	if overlap < 0 {
		overlap = 0
	}
	return &WordChunker{
		chunkSize:    chunkSize,
		overlapWords: overlap / 5,
	}
}

// Chunk returns the chunks of text in document order.
func (c *WordChunker) Chunk(text string) []string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return nil
	}
	var chunks []string
	buf := make([]string, 0, 64)
	// joined is the character length of strings.Join(buf, " ").
	joined := 0
	for _, w := range words {
		if len(buf) > 0 {
			joined++
		}
		buf = append(buf, w)
		joined += utf8.RuneCountInString(w)
		if joined < c.chunkSize {
			continue
		}
		chunks = append(chunks, strings.Join(buf, " "))
		buf = c.tail(buf)
		joined = joinedLen(buf)
	}
	if len(buf) > 0 {
		chunks = append(chunks, strings.Join(buf, " "))
	}
	return chunks
}

// tail returns a fresh buffer holding the trailing overlap words of buf.
func (c *WordChunker) tail(buf []string) []string {
	keep := c.overlapWords
	if keep > len(buf) {
		keep = len(buf)
	}
	next := make([]string, keep, keep+64)
	copy(next, buf[len(buf)-keep:])
	return next
}

func joinedLen(words []string) int {
	if len(words) == 0 {
		return 0
	}
	n := len(words) - 1
	for _, w := range words {
		n += utf8.RuneCountInString(w)
	}
	return n
}
