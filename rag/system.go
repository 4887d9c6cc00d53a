// Package rag ties the retrieval pipeline together: ingestion into the
// dual index, the tool-execution loop per query, and corpus analytics.
package rag

import (
	"context"

	"github.com/sachin-patro/starting-ragchatbot-codebase/agent"
	"github.com/sachin-patro/starting-ragchatbot-codebase/db"
	"github.com/sachin-patro/starting-ragchatbot-codebase/ingest"
	"github.com/sachin-patro/starting-ragchatbot-codebase/model"
	"github.com/sachin-patro/starting-ragchatbot-codebase/session"
	"github.com/sachin-patro/starting-ragchatbot-codebase/tools"
)

// System is the top-level facade the transport layer calls into. Every
// user query runs one synchronous chain: loop → tools → index. The
// registry and tools are stateless, so a single System serves
// concurrent sessions.
type System struct {
	store     db.Store
	ingestor  *ingest.Ingestor
	generator *agent.Generator
	registry  *tools.Registry
	sessions  *session.Manager
}

func NewSystem(store db.Store, ingestor *ingest.Ingestor, generator *agent.Generator, registry *tools.Registry, sessions *session.Manager) *System {
	return &System{
		store:     store,
		ingestor:  ingestor,
		generator: generator,
		registry:  registry,
		sessions:  sessions,
	}
}

// Query answers one user turn. A missing session id starts a new
// session. The exchange is recorded in history only after the loop
// finishes, so the model never sees the in-flight turn twice.
func (s *System) Query(ctx context.Context, query, sessionID string) (*model.QueryResponse, error) {
	if sessionID == "" {
		sessionID = s.sessions.Create()
	}
	history := s.sessions.History(sessionID)

	answer, sources, err := s.generator.Generate(ctx, query, history, s.registry)
	if err != nil {
		return nil, err
	}
	s.sessions.AddExchange(sessionID, query, answer)

	if sources == nil {
		sources = []model.Source{}
	}
	return &model.QueryResponse{
		Answer:    answer,
		Sources:   sources,
		SessionID: sessionID,
	}, nil
}

// AddCourseFolder ingests a folder of course documents, skipping
// already-indexed titles.
func (s *System) AddCourseFolder(ctx context.Context, dir string) (int, int, error) {
	return s.ingestor.AddCourseFolder(ctx, dir)
}

// ClearSession forgets one session's history.
func (s *System) ClearSession(id string) {
	s.sessions.Clear(id)
}

// Analytics reports what is currently indexed.
func (s *System) Analytics(ctx context.Context) (*model.CourseStats, error) {
	count, err := s.store.CourseCount(ctx)
	if err != nil {
		return nil, err
	}
	titles, err := s.store.ExistingCourseTitles(ctx)
	if err != nil {
		return nil, err
	}
	if titles == nil {
		titles = []string{}
	}
	return &model.CourseStats{TotalCourses: int(count), CourseTitles: titles}, nil
}
