// Package mcp exposes the retrieval tool to external agent hosts over
// the Model Context Protocol, so editors and agents can search the
// course index without going through the chat loop.
package mcp

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/sachin-patro/starting-ragchatbot-codebase/db"
)

// Version is the MCP server version.
const Version = "0.1.0"

// SearchInput is the input schema for the course search tool.
type SearchInput struct {
	Query        string `json:"query" jsonschema:"what to search for in the course content"`
	CourseName   string `json:"course_name,omitempty" jsonschema:"course title, partial matches work"`
	LessonNumber *int   `json:"lesson_number,omitempty" jsonschema:"specific lesson number to search within"`
	Limit        int    `json:"limit,omitempty" jsonschema:"maximum number of results (default 5)"`
}

// SearchHit is a single result.
type SearchHit struct {
	CourseTitle  string  `json:"course_title"`
	LessonNumber int     `json:"lesson_number"`
	Text         string  `json:"text"`
	Score        float64 `json:"score"`
}

// SearchOutput is the output schema for the course search tool.
type SearchOutput struct {
	Results []SearchHit `json:"results"`
	Count   int         `json:"count"`
}

// Server serves the course index over MCP stdio.
type Server struct {
	store  db.Store
	server *mcp.Server
}

func NewServer(store db.Store) *Server {
	impl := &mcp.Implementation{
		Name:    "course-chatbot",
		Version: Version,
	}
	s := &Server{store: store, server: mcp.NewServer(impl, nil)}

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "search_course_content",
		Description: "Search indexed course materials with course and lesson filters",
	}, s.handleSearch)

	return s
}

// Run serves over stdio until the context is cancelled.
func (s *Server) Run(ctx context.Context) error {
	return s.server.Run(ctx, &mcp.StdioTransport{})
}

func (s *Server) handleSearch(ctx context.Context, _ *mcp.CallToolRequest, input SearchInput) (*mcp.CallToolResult, SearchOutput, error) {
	limit := input.Limit
	if limit <= 0 {
		limit = 5
	}

	results, err := s.store.Search(ctx, db.SearchParams{
		Query:        input.Query,
		CourseName:   input.CourseName,
		LessonNumber: input.LessonNumber,
		Limit:        limit,
	})
	if err != nil {
		return nil, SearchOutput{}, err
	}

	output := SearchOutput{
		Results: make([]SearchHit, len(results)),
		Count:   len(results),
	}
	for i, r := range results {
		output.Results[i] = SearchHit{
			CourseTitle:  r.Chunk.CourseTitle,
			LessonNumber: r.Chunk.LessonNumber,
			Text:         r.Chunk.Text,
			Score:        r.Score,
		}
	}
	return nil, output, nil
}
