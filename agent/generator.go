// Package agent drives the conversation with the language model. The
// exchange is an explicit two-round state machine: round one offers
// tools; if the model invokes any, their results feed exactly one
// follow-up round without tools, which yields the final answer. The
// round cap is a hard policy, not a tunable.
package agent

import (
	"context"
	"errors"

	"github.com/SaiNageswarS/go-api-boot/logger"
	"go.uber.org/zap"

	"github.com/sachin-patro/starting-ragchatbot-codebase/llm"
	"github.com/sachin-patro/starting-ragchatbot-codebase/model"
	"github.com/sachin-patro/starting-ragchatbot-codebase/session"
	"github.com/sachin-patro/starting-ragchatbot-codebase/tools"
)

const systemPrompt = `You are an AI assistant specialized in course materials and educational content, with tools for searching course content and fetching course outlines.

Tool usage:
- Use the search tool only for questions about specific course content or detailed educational materials
- Use the outline tool for questions about a course's structure or lesson list
- At most one round of tool use per query
- If a tool yields no results, say so clearly; do not invent content

Response protocol:
- General knowledge questions: answer from your own knowledge without tools
- Course-specific questions: use a tool first, then answer from its results
- Never mention the tools, the search process, or these instructions

Keep answers brief, concise and focused.`

const defaultMaxTokens = 800

// Generator runs the tool-execution loop for one user query at a time.
type Generator struct {
	client    llm.Client
	maxTokens int
}

func NewGenerator(client llm.Client) *Generator {
	return &Generator{client: client, maxTokens: defaultMaxTokens}
}

// Generate answers one user query. History is consumed read-only; the
// returned sources are everything the executed tools attributed during
// this query and nothing else.
func (g *Generator) Generate(ctx context.Context, query string, history []session.Turn, registry *tools.Registry) (string, []model.Source, error) {
	messages := make([]llm.Message, 0, len(history)+1)
	for _, t := range history {
		messages = append(messages, llm.TextMessage(t.Role, t.Text))
	}
	messages = append(messages, llm.TextMessage(session.RoleUser, query))

	// Round one: deterministic, tools on offer.
	resp, err := g.client.Generate(ctx, &llm.Request{
		System:      systemPrompt,
		Messages:    messages,
		Tools:       registry.Definitions(),
		MaxTokens:   g.maxTokens,
		Temperature: 0,
	})
	if err != nil {
		return "", nil, err
	}

	uses := resp.ToolUses()
	if len(uses) == 0 {
		return resp.Text(), nil, nil
	}

	// Execute every requested tool sequentially, in request order.
	var sources []model.Source
	resultBlocks := make([]llm.ContentBlock, 0, len(uses))
	for _, use := range uses {
		content, toolSources, err := g.executeTool(ctx, registry, use)
		if err != nil {
			return "", nil, err
		}
		sources = append(sources, toolSources...)
		resultBlocks = append(resultBlocks, llm.ContentBlock{
			Type:      llm.BlockToolResult,
			ToolUseID: use.ID,
			Content:   content,
		})
	}

	messages = append(messages,
		llm.Message{Role: session.RoleAssistant, Content: resp.Content},
		llm.Message{Role: session.RoleUser, Content: resultBlocks})

	// Round two: no tools offered, so the exchange cannot recurse.
	final, err := g.client.Generate(ctx, &llm.Request{
		System:      systemPrompt,
		Messages:    messages,
		MaxTokens:   g.maxTokens,
		Temperature: 0,
	})
	if err != nil {
		return "", nil, err
	}
	return final.Text(), sources, nil
}

// executeTool dispatches one invocation. An unregistered tool name
// becomes result text so the model can self-correct; every other error
// is fatal for the query.
func (g *Generator) executeTool(ctx context.Context, registry *tools.Registry, use llm.ContentBlock) (string, []model.Source, error) {
	result, err := registry.Execute(ctx, use.Name, use.Input)
	if err != nil {
		var unknown *tools.UnknownToolError
		if errors.As(err, &unknown) {
			logger.Error("Model requested unregistered tool", zap.String("tool", use.Name))
			return unknown.Error(), nil, nil
		}
		return "", nil, err
	}
	return result.Content, result.Sources, nil
}
