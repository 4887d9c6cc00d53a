package db

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func result(score float64, chunkIndex int) SearchResult {
	return SearchResult{Chunk: ChunkModel{ChunkIndex: chunkIndex}, Score: score}
}

func TestRankResultsOrdersByScore(t *testing.T) {
	ranked := RankResults([]SearchResult{
		result(0.42, 0),
		result(0.91, 1),
		result(0.77, 2),
	}, 0)

	require.Len(t, ranked, 3)
	assert.Equal(t, 0.91, ranked[0].Score)
	assert.Equal(t, 0.77, ranked[1].Score)
	assert.Equal(t, 0.42, ranked[2].Score)
}

func TestRankResultsTiesBreakOnChunkIndex(t *testing.T) {
	ranked := RankResults([]SearchResult{
		result(0.8, 7),
		result(0.8, 2),
		result(0.8, 5),
	}, 0)

	assert.Equal(t, 2, ranked[0].Chunk.ChunkIndex)
	assert.Equal(t, 5, ranked[1].Chunk.ChunkIndex)
	assert.Equal(t, 7, ranked[2].Chunk.ChunkIndex)
}

func TestRankResultsTruncatesToLimit(t *testing.T) {
	ranked := RankResults([]SearchResult{
		result(0.1, 0),
		result(0.9, 1),
		result(0.5, 2),
		result(0.7, 3),
	}, 2)

	require.Len(t, ranked, 2)
	assert.Equal(t, 0.9, ranked[0].Score)
	assert.Equal(t, 0.7, ranked[1].Score)
}

func TestRankResultsEmpty(t *testing.T) {
	assert.Empty(t, RankResults(nil, 5))
}

func TestCourseNotFoundErrorMessage(t *testing.T) {
	err := &CourseNotFoundError{Hint: "MCP"}
	assert.Equal(t, "no course found matching 'MCP'", err.Error())
}

func TestLessonLink(t *testing.T) {
	m := &CourseCatalogModel{
		Title: "Course X",
		Lessons: []LessonModel{
			{Number: 0, Title: "Intro", Link: "https://example.com/0"},
			{Number: 3, Title: "Advanced"},
		},
	}

	assert.Equal(t, "https://example.com/0", m.LessonLink(0))
	assert.Empty(t, m.LessonLink(3))
	assert.Empty(t, m.LessonLink(9))
}
