package chunker

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewWordChunker(t *testing.T) {
	t.Run("defaults for non-positive size", func(t *testing.T) {
		c := NewWordChunker(0, DefaultOverlap)
		assert.Equal(t, DefaultChunkSize, c.chunkSize)
		assert.Equal(t, 10, c.overlapWords)
	})

	t.Run("overlap below five keeps no words", func(t *testing.T) {
		c := NewWordChunker(100, 4)
		assert.Equal(t, 0, c.overlapWords)
	})

	t.Run("negative overlap", func(t *testing.T) {
		c := NewWordChunker(100, -20)
		assert.Equal(t, 0, c.overlapWords)
	})
}

func TestWordChunker_Empty(t *testing.T) {
	c := NewWordChunker(DefaultChunkSize, DefaultOverlap)
	assert.Empty(t, c.Chunk(""))
	assert.Empty(t, c.Chunk(" \n\t  "))
}

func TestWordChunker_ShortTextIsOneNormalizedChunk(t *testing.T) {
	c := NewWordChunker(DefaultChunkSize, DefaultOverlap)
	chunks := c.Chunk("  The quick\tbrown\n\nfox   jumps ")
	require.Len(t, chunks, 1)
	assert.Equal(t, "The quick brown fox jumps", chunks[0])
}

// 21 five-letter words followed by 79 four-letter words: 100 words, 520 characters.
func scenarioWords() []string {
	words := make([]string, 0, 100)
	for i := 0; i < 21; i++ {
		words = append(words, "abcde")
	}
	for i := 0; i < 79; i++ {
		words = append(words, "wxyz")
	}
	return words
}

func TestWordChunker_DefaultScenario(t *testing.T) {
	words := scenarioWords()
	text := strings.Join(words, " ")
	require.Len(t, text, 520)

	chunks := NewWordChunker(DefaultChunkSize, DefaultOverlap).Chunk(text)
	require.Len(t, chunks, 2)

	// The first chunk closes at the word that brings the joined length to 500.
	assert.Equal(t, strings.Join(words[:96], " "), chunks[0])
	assert.Len(t, chunks[0], 500)
	// The second carries the trailing 10 words plus the remaining 4.
	assert.Equal(t, strings.Join(words[86:], " "), chunks[1])
}

func TestWordChunker_NoOverlap(t *testing.T) {
	c := NewWordChunker(9, 0)
	chunks := c.Chunk("aaaa bbbb cccc dddd e")
	assert.Equal(t, []string{"aaaa bbbb", "cccc dddd", "e"}, chunks)
}

func TestWordChunker_OverlapCarriesTrailingWords(t *testing.T) {
	c := NewWordChunker(9, 5)
	chunks := c.Chunk("aaaa bbbb cccc dddd")
	assert.Equal(t, []string{"aaaa bbbb", "bbbb cccc", "cccc dddd", "dddd"}, chunks)
}

func TestWordChunker_Deterministic(t *testing.T) {
	c := NewWordChunker(40, 10)
	text := strings.Repeat("lorem ipsum dolor sit amet consectetur ", 30)
	first := c.Chunk(text)
	second := c.Chunk(text)
	assert.Equal(t, first, second)
	assert.Greater(t, len(first), 1)
}

func TestWordChunker_CountsCharactersNotBytes(t *testing.T) {
	c := NewWordChunker(5, 0)
	// Each word is 2 characters but 4 bytes.
	chunks := c.Chunk("éé éé éé")
	assert.Equal(t, []string{"éé éé", "éé"}, chunks)
}
