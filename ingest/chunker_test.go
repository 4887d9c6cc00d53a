package ingest

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testChunkSize = 120
	testOverlap   = 40
)

func lessonText(sentences int) string {
	var parts []string
	for i := 0; i < sentences; i++ {
		parts = append(parts, fmt.Sprintf("This is sentence %02d.", i))
	}
	return strings.Join(parts, " ")
}

func TestChunkLessonRespectsSizeBudget(t *testing.T) {
	c := NewChunker(testChunkSize, testOverlap)
	chunks := c.ChunkLesson("T", 1, lessonText(12))

	require.NotEmpty(t, chunks)
	for _, chunk := range chunks {
		assert.LessOrEqual(t, len(chunk), testChunkSize)
		assert.True(t, strings.HasPrefix(chunk, "Course T Lesson 1 content: "))
	}
}

func TestChunkLessonOverlap(t *testing.T) {
	c := NewChunker(testChunkSize, testOverlap)
	chunks := c.ChunkLesson("T", 1, lessonText(12))
	require.Greater(t, len(chunks), 1)

	prefix := "Course T Lesson 1 content: "
	for i := 1; i < len(chunks); i++ {
		prev := strings.TrimPrefix(chunks[i-1], prefix)
		next := strings.TrimPrefix(chunks[i], prefix)

		shared := longestSharedBoundary(prev, next)
		assert.Greater(t, shared, 0, "adjacent chunks must overlap")
		assert.LessOrEqual(t, shared, testOverlap)
	}
}

// longestSharedBoundary returns the length of the longest suffix of
// prev that is also a prefix of next.
func longestSharedBoundary(prev, next string) int {
	max := len(prev)
	if len(next) < max {
		max = len(next)
	}
	for n := max; n > 0; n-- {
		if strings.HasSuffix(prev, next[:n]) {
			return n
		}
	}
	return 0
}

func TestChunkLessonShortLessonSingleChunk(t *testing.T) {
	c := NewChunker(testChunkSize, testOverlap)
	chunks := c.ChunkLesson("T", 3, "One short sentence.")

	require.Len(t, chunks, 1)
	assert.Equal(t, "Course T Lesson 3 content: One short sentence.", chunks[0])
}

func TestChunkLessonOversizeSentenceTruncated(t *testing.T) {
	c := NewChunker(testChunkSize, testOverlap)
	long := strings.Repeat("x", 500) // no terminator anywhere
	chunks := c.ChunkLesson("T", 1, long)

	require.Len(t, chunks, 1)
	assert.Equal(t, testChunkSize, len(chunks[0]))
}

func TestChunkLessonEmptyText(t *testing.T) {
	c := NewChunker(testChunkSize, testOverlap)
	assert.Empty(t, c.ChunkLesson("T", 1, "   \n\t  "))
}

func TestChunkLessonNormalizesWhitespace(t *testing.T) {
	c := NewChunker(testChunkSize, testOverlap)
	chunks := c.ChunkLesson("T", 1, "First   line.\nSecond\t line!")

	require.Len(t, chunks, 1)
	assert.Contains(t, chunks[0], "First line. Second line!")
}

func TestNewChunkerValidation(t *testing.T) {
	c := NewChunker(0, -5)
	assert.Equal(t, DefaultChunkSize, c.chunkSize)

	// Overlap >= size is unusable and falls back.
	c = NewChunker(100, 100)
	assert.Less(t, c.overlap, c.chunkSize)
}

func TestSplitSentences(t *testing.T) {
	got := splitSentences("First one. Second one! Third one? Trailing fragment")
	assert.Equal(t, []string{"First one.", "Second one!", "Third one?", "Trailing fragment"}, got)

	// Terminators not followed by whitespace do not split.
	got = splitSentences("Version 3.5 is out. Done.")
	assert.Equal(t, []string{"Version 3.5 is out.", "Done."}, got)
}
