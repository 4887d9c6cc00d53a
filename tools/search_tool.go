package tools

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/SaiNageswarS/go-api-boot/logger"
	"go.uber.org/zap"

	"github.com/sachin-patro/starting-ragchatbot-codebase/db"
	"github.com/sachin-patro/starting-ragchatbot-codebase/llm"
	"github.com/sachin-patro/starting-ragchatbot-codebase/model"
)

// SearchTool retrieves course content by semantic similarity with
// optional course and lesson filters.
type SearchTool struct {
	store      db.Store
	maxResults int
}

func NewSearchTool(store db.Store, maxResults int) *SearchTool {
	if maxResults <= 0 {
		maxResults = 5
	}
	return &SearchTool{store: store, maxResults: maxResults}
}

func (t *SearchTool) Definition() llm.ToolDefinition {
	return llm.ToolDefinition{
		Name:        "search_course_content",
		Description: "Search course materials with smart course name matching and lesson filtering",
		InputSchema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"query": map[string]any{
					"type":        "string",
					"description": "What to search for in the course content",
				},
				"course_name": map[string]any{
					"type":        "string",
					"description": "Course title (partial matches work, e.g. 'MCP', 'Introduction')",
				},
				"lesson_number": map[string]any{
					"type":        "integer",
					"description": "Specific lesson number to search within (e.g. 1, 2, 3)",
				},
			},
			"required": []string{"query"},
		},
	}
}

// Execute runs the search and formats results as labeled snippets. An
// unresolvable course hint and an empty result set both come back as
// text, never as errors, so the model can adapt its next action.
func (t *SearchTool) Execute(ctx context.Context, args map[string]any) (*Result, error) {
	query, _ := args["query"].(string)
	if query == "" {
		return &Result{Content: "Error: query is required"}, nil
	}

	params := db.SearchParams{Query: query, Limit: t.maxResults}
	if v, ok := args["course_name"].(string); ok {
		params.CourseName = v
	}
	if v, ok := args["lesson_number"].(float64); ok {
		n := int(v)
		params.LessonNumber = &n
	}

	results, err := t.store.Search(ctx, params)
	if err != nil {
		var notFound *db.CourseNotFoundError
		if errors.As(err, &notFound) {
			return &Result{Content: notFound.Error()}, nil
		}
		return nil, err
	}

	if len(results) == 0 {
		return &Result{Content: noResultsMessage(params)}, nil
	}

	logger.Info("Search tool executed",
		zap.String("query", query),
		zap.String("course", params.CourseName),
		zap.Int("results", len(results)))
	return t.format(ctx, results), nil
}

func noResultsMessage(params db.SearchParams) string {
	msg := "No relevant content found"
	if params.CourseName != "" {
		msg += fmt.Sprintf(" in course '%s'", params.CourseName)
	}
	if params.LessonNumber != nil {
		msg += fmt.Sprintf(" in lesson %d", *params.LessonNumber)
	}
	return msg + "."
}

// format renders results as one text block for the model and collects
// the source attributions for the UI. Lesson links come from the
// catalog record, one lookup per distinct course in the result set.
func (t *SearchTool) format(ctx context.Context, results []db.SearchResult) *Result {
	catalog := make(map[string]*db.CourseCatalogModel)
	var blocks []string
	var sources []model.Source

	for _, r := range results {
		header := fmt.Sprintf("[%s - Lesson %d]", r.Chunk.CourseTitle, r.Chunk.LessonNumber)
		blocks = append(blocks, header+"\n"+r.Chunk.Text)

		source := model.Source{
			Display: fmt.Sprintf("%s - Lesson %d", r.Chunk.CourseTitle, r.Chunk.LessonNumber),
		}
		entry, ok := catalog[r.Chunk.CourseTitle]
		if !ok {
			entry, _ = t.store.CatalogEntry(ctx, r.Chunk.CourseTitle)
			catalog[r.Chunk.CourseTitle] = entry
		}
		if entry != nil {
			source.Link = entry.LessonLink(r.Chunk.LessonNumber)
		}
		sources = append(sources, source)
	}

	return &Result{Content: strings.Join(blocks, "\n\n"), Sources: sources}
}
