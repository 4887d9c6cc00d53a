package db

import "fmt"

// Collection and Atlas search index names. Both collections live in the
// configured database; the vector indexes are provisioned on the
// "embedding" path of each.
const (
	CatalogCollection = "course_catalog"
	ContentCollection = "course_content"

	CatalogVectorIndex = "catalog_vector_index"
	ContentVectorIndex = "content_vector_index"
	VectorPath         = "embedding"
)

// LessonModel is one lesson entry inside a catalog record.
type LessonModel struct {
	Number int    `bson:"number" json:"number"`
	Title  string `bson:"title" json:"title"`
	Link   string `bson:"link,omitempty" json:"link,omitempty"`
}

// CourseCatalogModel is the one-per-course record used for fuzzy course
// name resolution. The course title is the identity; ingestion skips any
// title that already exists.
type CourseCatalogModel struct {
	Title      string        `bson:"_id"`
	Instructor string        `bson:"instructor,omitempty"`
	Link       string        `bson:"link,omitempty"`
	Lessons    []LessonModel `bson:"lessons"`
	Embedding  []float32     `bson:"embedding"`
}

func (m *CourseCatalogModel) Id() string { return m.Title }

// LessonLink returns the link of lesson n, or "" when the lesson has none.
func (m *CourseCatalogModel) LessonLink(n int) string {
	for _, l := range m.Lessons {
		if l.Number == n {
			return l.Link
		}
	}
	return ""
}

// ChunkModel is one searchable content chunk. ChunkIndex is the sequence
// position within the source document and doubles as the ranking
// tiebreaker, so ordering stays stable across index rebuilds.
type ChunkModel struct {
	ChunkID      string    `bson:"_id"`
	CourseTitle  string    `bson:"course_title"`
	LessonNumber int       `bson:"lesson_number"`
	ChunkIndex   int       `bson:"chunk_index"`
	Text         string    `bson:"text"`
	Embedding    []float32 `bson:"embedding,omitempty"`
}

func (m *ChunkModel) Id() string { return m.ChunkID }

// SearchResult pairs a chunk with its similarity score.
type SearchResult struct {
	Chunk ChunkModel
	Score float64
}

// SearchParams describes one content search. CourseName is a free-text
// hint resolved against the catalog before filtering; LessonNumber nil
// means no lesson filter.
type SearchParams struct {
	Query        string
	CourseName   string
	LessonNumber *int
	Limit        int
}

// CourseNotFoundError reports a course hint the catalog could not
// resolve. Search returns it instead of silently searching unfiltered;
// the retrieval tool converts it to text the model can react to.
type CourseNotFoundError struct {
	Hint string
}

func (e *CourseNotFoundError) Error() string {
	return fmt.Sprintf("no course found matching '%s'", e.Hint)
}
