package tools

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sachin-patro/starting-ragchatbot-codebase/db"
	"github.com/sachin-patro/starting-ragchatbot-codebase/llm"
	"github.com/sachin-patro/starting-ragchatbot-codebase/model"
)

// OutlineTool returns a course's outline (title, link, lesson list)
// from its catalog record, resolving fuzzy course hints the same way
// search does.
type OutlineTool struct {
	store db.Store
}

func NewOutlineTool(store db.Store) *OutlineTool {
	return &OutlineTool{store: store}
}

func (t *OutlineTool) Definition() llm.ToolDefinition {
	return llm.ToolDefinition{
		Name:        "get_course_outline",
		Description: "Get the full outline of a course: title, link and complete lesson list",
		InputSchema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"course_name": map[string]any{
					"type":        "string",
					"description": "Course title (partial matches work)",
				},
			},
			"required": []string{"course_name"},
		},
	}
}

func (t *OutlineTool) Execute(ctx context.Context, args map[string]any) (*Result, error) {
	hint, _ := args["course_name"].(string)
	if hint == "" {
		return &Result{Content: "Error: course_name is required"}, nil
	}

	title, err := t.store.ResolveCourseName(ctx, hint)
	if err != nil {
		return nil, err
	}
	if title == "" {
		return &Result{Content: (&db.CourseNotFoundError{Hint: hint}).Error()}, nil
	}

	entry, err := t.store.CatalogEntry(ctx, title)
	if err != nil {
		var notFound *db.CourseNotFoundError
		if errors.As(err, &notFound) {
			return &Result{Content: notFound.Error()}, nil
		}
		return nil, err
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Course: %s\n", entry.Title)
	if entry.Link != "" {
		fmt.Fprintf(&b, "Link: %s\n", entry.Link)
	}
	fmt.Fprintf(&b, "Lessons (%d):\n", len(entry.Lessons))
	for _, l := range entry.Lessons {
		fmt.Fprintf(&b, "  Lesson %d: %s\n", l.Number, l.Title)
	}

	return &Result{
		Content: b.String(),
		Sources: []model.Source{{Display: entry.Title, Link: entry.Link}},
	}, nil
}
