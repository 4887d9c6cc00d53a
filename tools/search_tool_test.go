package tools

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sachin-patro/starting-ragchatbot-codebase/db"
)

// fakeStore serves canned search results and catalog records.
type fakeStore struct {
	results   []db.SearchResult
	searchErr error
	catalog   map[string]*db.CourseCatalogModel
	titles    map[string]string

	lastParams   db.SearchParams
	catalogCalls int
}

func (f *fakeStore) Search(_ context.Context, params db.SearchParams) ([]db.SearchResult, error) {
	f.lastParams = params
	if f.searchErr != nil {
		return nil, f.searchErr
	}
	return f.results, nil
}

func (f *fakeStore) CatalogEntry(_ context.Context, title string) (*db.CourseCatalogModel, error) {
	f.catalogCalls++
	entry, ok := f.catalog[title]
	if !ok {
		return nil, &db.CourseNotFoundError{Hint: title}
	}
	return entry, nil
}

func (f *fakeStore) ResolveCourseName(_ context.Context, hint string) (string, error) {
	return f.titles[hint], nil
}

func (f *fakeStore) UpsertCourse(context.Context, *db.CourseCatalogModel) error { return nil }
func (f *fakeStore) UpsertChunks(context.Context, []db.ChunkModel) error        { return nil }
func (f *fakeStore) ExistingCourseTitles(context.Context) ([]string, error)     { return nil, nil }
func (f *fakeStore) CourseCount(context.Context) (int64, error)                 { return 0, nil }
func (f *fakeStore) Reset(context.Context) error                                { return nil }

func mcpCatalog() map[string]*db.CourseCatalogModel {
	return map[string]*db.CourseCatalogModel{
		"Introduction to MCP Servers": {
			Title: "Introduction to MCP Servers",
			Link:  "https://example.com/mcp",
			Lessons: []db.LessonModel{
				{Number: 0, Title: "Intro", Link: "https://example.com/mcp/lesson-0"},
				{Number: 1, Title: "Transports"},
			},
		},
	}
}

func TestSearchToolFormatsResults(t *testing.T) {
	store := &fakeStore{
		results: []db.SearchResult{
			{Chunk: db.ChunkModel{CourseTitle: "Introduction to MCP Servers", LessonNumber: 0, Text: "Servers expose tools."}, Score: 0.91},
			{Chunk: db.ChunkModel{CourseTitle: "Introduction to MCP Servers", LessonNumber: 1, Text: "Stdio is one transport."}, Score: 0.85},
		},
		catalog: mcpCatalog(),
	}
	tool := NewSearchTool(store, 5)

	res, err := tool.Execute(context.Background(), map[string]any{
		"query":         "what are tools",
		"course_name":   "MCP",
		"lesson_number": float64(1),
	})
	require.NoError(t, err)

	assert.Contains(t, res.Content, "[Introduction to MCP Servers - Lesson 0]\nServers expose tools.")
	assert.Contains(t, res.Content, "[Introduction to MCP Servers - Lesson 1]\nStdio is one transport.")

	require.Len(t, res.Sources, 2)
	assert.Equal(t, "Introduction to MCP Servers - Lesson 0", res.Sources[0].Display)
	assert.Equal(t, "https://example.com/mcp/lesson-0", res.Sources[0].Link)
	assert.Empty(t, res.Sources[1].Link)

	// One catalog lookup per distinct course, not per result.
	assert.Equal(t, 1, store.catalogCalls)

	assert.Equal(t, "MCP", store.lastParams.CourseName)
	require.NotNil(t, store.lastParams.LessonNumber)
	assert.Equal(t, 1, *store.lastParams.LessonNumber)
}

func TestSearchToolNoResults(t *testing.T) {
	tool := NewSearchTool(&fakeStore{}, 5)

	res, err := tool.Execute(context.Background(), map[string]any{
		"query":         "anything",
		"course_name":   "MCP",
		"lesson_number": float64(3),
	})
	require.NoError(t, err)
	assert.Equal(t, "No relevant content found in course 'MCP' in lesson 3.", res.Content)
	assert.Empty(t, res.Sources)
}

func TestSearchToolUnresolvedCourseBecomesText(t *testing.T) {
	store := &fakeStore{searchErr: &db.CourseNotFoundError{Hint: "Nonexistent"}}
	tool := NewSearchTool(store, 5)

	res, err := tool.Execute(context.Background(), map[string]any{
		"query":       "anything",
		"course_name": "Nonexistent",
	})
	require.NoError(t, err)
	assert.Equal(t, "no course found matching 'Nonexistent'", res.Content)
}

func TestSearchToolInfrastructureErrorIsFatal(t *testing.T) {
	store := &fakeStore{searchErr: errors.New("index unavailable")}
	tool := NewSearchTool(store, 5)

	_, err := tool.Execute(context.Background(), map[string]any{"query": "anything"})
	assert.Error(t, err)
}

func TestSearchToolMissingQuery(t *testing.T) {
	tool := NewSearchTool(&fakeStore{}, 5)

	res, err := tool.Execute(context.Background(), map[string]any{})
	require.NoError(t, err)
	assert.Equal(t, "Error: query is required", res.Content)
}

func TestOutlineTool(t *testing.T) {
	store := &fakeStore{
		catalog: mcpCatalog(),
		titles:  map[string]string{"MCP": "Introduction to MCP Servers"},
	}
	tool := NewOutlineTool(store)

	res, err := tool.Execute(context.Background(), map[string]any{"course_name": "MCP"})
	require.NoError(t, err)

	assert.Contains(t, res.Content, "Course: Introduction to MCP Servers")
	assert.Contains(t, res.Content, "Link: https://example.com/mcp")
	assert.Contains(t, res.Content, "Lessons (2):")
	assert.Contains(t, res.Content, "Lesson 0: Intro")
	assert.Contains(t, res.Content, "Lesson 1: Transports")

	require.Len(t, res.Sources, 1)
	assert.Equal(t, "Introduction to MCP Servers", res.Sources[0].Display)
	assert.Equal(t, "https://example.com/mcp", res.Sources[0].Link)
}

func TestOutlineToolUnresolvedHint(t *testing.T) {
	tool := NewOutlineTool(&fakeStore{titles: map[string]string{}})

	res, err := tool.Execute(context.Background(), map[string]any{"course_name": "Nope"})
	require.NoError(t, err)
	assert.Equal(t, "no course found matching 'Nope'", res.Content)
}

func TestRegistryDispatchAndOrder(t *testing.T) {
	store := &fakeStore{catalog: mcpCatalog(), titles: map[string]string{"MCP": "Introduction to MCP Servers"}}
	reg := NewRegistry(NewSearchTool(store, 5), NewOutlineTool(store))

	defs := reg.Definitions()
	require.Len(t, defs, 2)
	assert.Equal(t, "search_course_content", defs[0].Name)
	assert.Equal(t, "get_course_outline", defs[1].Name)

	res, err := reg.Execute(context.Background(), "get_course_outline", map[string]any{"course_name": "MCP"})
	require.NoError(t, err)
	assert.Contains(t, res.Content, "Course: Introduction to MCP Servers")
}

func TestRegistryUnknownTool(t *testing.T) {
	reg := NewRegistry()

	_, err := reg.Execute(context.Background(), "missing_tool", nil)
	var unknown *UnknownToolError
	require.ErrorAs(t, err, &unknown)
	assert.Equal(t, "tool 'missing_tool' is not registered", err.Error())
}
