package rag

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sachin-patro/starting-ragchatbot-codebase/agent"
	"github.com/sachin-patro/starting-ragchatbot-codebase/db"
	"github.com/sachin-patro/starting-ragchatbot-codebase/ingest"
	"github.com/sachin-patro/starting-ragchatbot-codebase/llm"
	"github.com/sachin-patro/starting-ragchatbot-codebase/session"
	"github.com/sachin-patro/starting-ragchatbot-codebase/tools"
)

type fakeStore struct {
	titles []string
}

func (f *fakeStore) UpsertCourse(context.Context, *db.CourseCatalogModel) error { return nil }
func (f *fakeStore) UpsertChunks(context.Context, []db.ChunkModel) error        { return nil }
func (f *fakeStore) ExistingCourseTitles(context.Context) ([]string, error) {
	return f.titles, nil
}
func (f *fakeStore) ResolveCourseName(context.Context, string) (string, error) { return "", nil }
func (f *fakeStore) Search(context.Context, db.SearchParams) ([]db.SearchResult, error) {
	return nil, nil
}
func (f *fakeStore) CatalogEntry(context.Context, string) (*db.CourseCatalogModel, error) {
	return nil, nil
}
func (f *fakeStore) CourseCount(context.Context) (int64, error) { return int64(len(f.titles)), nil }
func (f *fakeStore) Reset(context.Context) error                { return nil }

type scriptedClient struct {
	answers  []string
	requests []*llm.Request
}

func (c *scriptedClient) Generate(_ context.Context, req *llm.Request) (*llm.Response, error) {
	c.requests = append(c.requests, req)
	answer := c.answers[0]
	c.answers = c.answers[1:]
	return &llm.Response{
		Content:    []llm.ContentBlock{{Type: llm.BlockText, Text: answer}},
		StopReason: llm.StopEndTurn,
	}, nil
}

func newTestSystem(client llm.Client, store db.Store) *System {
	return NewSystem(
		store,
		ingest.NewIngestor(store, ingest.NewChunker(200, 40)),
		agent.NewGenerator(client),
		tools.NewRegistry(),
		session.NewManager(2),
	)
}

func TestQueryCreatesSession(t *testing.T) {
	client := &scriptedClient{answers: []string{"hello"}}
	sys := newTestSystem(client, &fakeStore{})

	resp, err := sys.Query(context.Background(), "hi", "")
	require.NoError(t, err)

	assert.Equal(t, "hello", resp.Answer)
	assert.NotEmpty(t, resp.SessionID)
	assert.NotNil(t, resp.Sources)
	assert.Empty(t, resp.Sources)
}

func TestQueryThreadsHistoryAcrossTurns(t *testing.T) {
	client := &scriptedClient{answers: []string{"first answer", "second answer"}}
	sys := newTestSystem(client, &fakeStore{})

	first, err := sys.Query(context.Background(), "first question", "")
	require.NoError(t, err)

	_, err = sys.Query(context.Background(), "second question", first.SessionID)
	require.NoError(t, err)

	// The second call sees the first exchange plus the new question,
	// and never the in-flight turn itself.
	msgs := client.requests[1].Messages
	require.Len(t, msgs, 3)
	assert.Equal(t, "first question", msgs[0].Content[0].Text)
	assert.Equal(t, "first answer", msgs[1].Content[0].Text)
	assert.Equal(t, "second question", msgs[2].Content[0].Text)
}

func TestClearSessionDropsHistory(t *testing.T) {
	client := &scriptedClient{answers: []string{"a1", "a2"}}
	sys := newTestSystem(client, &fakeStore{})

	resp, err := sys.Query(context.Background(), "q1", "")
	require.NoError(t, err)

	sys.ClearSession(resp.SessionID)

	_, err = sys.Query(context.Background(), "q2", resp.SessionID)
	require.NoError(t, err)
	require.Len(t, client.requests[1].Messages, 1)
}

func TestAnalytics(t *testing.T) {
	sys := newTestSystem(&scriptedClient{}, &fakeStore{titles: []string{"Course A", "Course B"}})

	stats, err := sys.Analytics(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, stats.TotalCourses)
	assert.Equal(t, []string{"Course A", "Course B"}, stats.CourseTitles)
}

func TestAnalyticsEmptyIndex(t *testing.T) {
	sys := newTestSystem(&scriptedClient{}, &fakeStore{})

	stats, err := sys.Analytics(context.Background())
	require.NoError(t, err)
	assert.Zero(t, stats.TotalCourses)
	assert.NotNil(t, stats.CourseTitles)
}
