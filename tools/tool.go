// Package tools defines the capabilities the model may invoke during a
// query, dispatched by name through a registry.
package tools

import (
	"context"
	"fmt"

	"github.com/sachin-patro/starting-ragchatbot-codebase/llm"
	"github.com/sachin-patro/starting-ragchatbot-codebase/model"
)

// Result is the outcome of one tool invocation: text for the model to
// read plus the source attributions backing it. Attributions travel
// with the result instead of living on the tool, so one tool instance
// is safe across concurrent queries.
type Result struct {
	Content string
	Sources []model.Source
}

// Tool is one capability: a declared schema and an executable body.
// Execute returns an error only for infrastructure failures, which are
// fatal for the query; conditions the model can react to (unresolved
// course, empty results) come back as Content text.
type Tool interface {
	Definition() llm.ToolDefinition
	Execute(ctx context.Context, args map[string]any) (*Result, error)
}

// UnknownToolError reports a tool name the model requested that was
// never registered. The loop surfaces it as tool-result text so the
// model can self-correct.
type UnknownToolError struct {
	Name string
}

func (e *UnknownToolError) Error() string {
	return fmt.Sprintf("tool '%s' is not registered", e.Name)
}

// Registry maps tool names to instances, preserving registration order
// for the definitions sent to the model.
type Registry struct {
	order []string
	tools map[string]Tool
}

func NewRegistry(tools ...Tool) *Registry {
	r := &Registry{tools: make(map[string]Tool)}
	for _, t := range tools {
		r.Register(t)
	}
	return r
}

// Register adds a tool; a duplicate name replaces the earlier one.
func (r *Registry) Register(t Tool) {
	name := t.Definition().Name
	if _, ok := r.tools[name]; !ok {
		r.order = append(r.order, name)
	}
	r.tools[name] = t
}

// Definitions returns every declared schema, in registration order.
func (r *Registry) Definitions() []llm.ToolDefinition {
	defs := make([]llm.ToolDefinition, 0, len(r.order))
	for _, name := range r.order {
		defs = append(defs, r.tools[name].Definition())
	}
	return defs
}

// Execute dispatches by name.
func (r *Registry) Execute(ctx context.Context, name string, args map[string]any) (*Result, error) {
	t, ok := r.tools[name]
	if !ok {
		return nil, &UnknownToolError{Name: name}
	}
	return t.Execute(ctx, args)
}
