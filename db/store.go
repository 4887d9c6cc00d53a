package db

import (
	"context"
	"sort"

	"github.com/SaiNageswarS/go-api-boot/logger"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"go.uber.org/zap"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/sachin-patro/starting-ragchatbot-codebase/embedding"
)

const numCandidates = 100

// Store is the dual-index interface the rest of the system depends on.
// One collection resolves fuzzy course names, the other serves filtered
// passage retrieval.
type Store interface {
	UpsertCourse(ctx context.Context, course *CourseCatalogModel) error
	UpsertChunks(ctx context.Context, chunks []ChunkModel) error
	ExistingCourseTitles(ctx context.Context) ([]string, error)
	ResolveCourseName(ctx context.Context, hint string) (string, error)
	Search(ctx context.Context, params SearchParams) ([]SearchResult, error)
	CatalogEntry(ctx context.Context, title string) (*CourseCatalogModel, error)
	CourseCount(ctx context.Context) (int64, error)
	Reset(ctx context.Context) error
}

// MongoStore implements Store on two MongoDB Atlas collections with
// vector search indexes.
type MongoStore struct {
	catalog  *mongo.Collection
	content  *mongo.Collection
	embedder embedding.Embedder
}

// ProvideMongoClient connects to the configured deployment.
func ProvideMongoClient(uri string) (*mongo.Client, error) {
	client, err := mongo.Connect(options.Client().ApplyURI(uri))
	if err != nil {
		return nil, status.Errorf(codes.Internal, "mongo connect: %v", err)
	}
	return client, nil
}

// ProvideMongoStore wires the two collections of the dual index.
func ProvideMongoStore(client *mongo.Client, database string, embedder embedding.Embedder) *MongoStore {
	d := client.Database(database)
	return &MongoStore{
		catalog:  d.Collection(CatalogCollection),
		content:  d.Collection(ContentCollection),
		embedder: embedder,
	}
}

// UpsertCourse embeds and stores one catalog record. Replacing by title
// keeps the call idempotent; the ingestion-time dedup pre-check belongs
// to the caller, not here.
func (s *MongoStore) UpsertCourse(ctx context.Context, course *CourseCatalogModel) error {
	if len(course.Embedding) == 0 {
		vecs, err := s.embedder.Embed(ctx, []string{course.Title}, embedding.TaskPassage)
		if err != nil {
			return status.Errorf(codes.Internal, "embed catalog record: %v", err)
		}
		course.Embedding = vecs[0]
	}

	_, err := s.catalog.ReplaceOne(ctx,
		bson.D{{Key: "_id", Value: course.Title}},
		course,
		options.Replace().SetUpsert(true))
	if err != nil {
		return status.Errorf(codes.Internal, "upsert course: %v", err)
	}
	return nil
}

// UpsertChunks embeds and stores content chunks in batches. Chunks whose
// Embedding is already set are stored as-is.
func (s *MongoStore) UpsertChunks(ctx context.Context, chunks []ChunkModel) error {
	if len(chunks) == 0 {
		return nil
	}

	var pending []int
	var texts []string
	for i := range chunks {
		if len(chunks[i].Embedding) == 0 {
			pending = append(pending, i)
			texts = append(texts, chunks[i].Text)
		}
	}
	if len(texts) > 0 {
		vecs, err := s.embedder.Embed(ctx, texts, embedding.TaskPassage)
		if err != nil {
			return status.Errorf(codes.Internal, "embed chunks: %v", err)
		}
		for j, i := range pending {
			chunks[i].Embedding = vecs[j]
		}
	}

	docs := make([]any, len(chunks))
	for i := range chunks {
		docs[i] = chunks[i]
	}
	if _, err := s.content.InsertMany(ctx, docs); err != nil {
		return status.Errorf(codes.Internal, "insert chunks: %v", err)
	}
	return nil
}

// ExistingCourseTitles lists every catalog title, for ingestion dedup.
func (s *MongoStore) ExistingCourseTitles(ctx context.Context) ([]string, error) {
	res := s.catalog.Distinct(ctx, "_id", bson.D{})
	if err := res.Err(); err != nil {
		return nil, status.Errorf(codes.Internal, "distinct titles: %v", err)
	}
	var titles []string
	if err := res.Decode(&titles); err != nil {
		return nil, status.Errorf(codes.Internal, "decode titles: %v", err)
	}
	return titles, nil
}

// ResolveCourseName matches a free-text hint against the catalog by
// vector similarity, top-1. An empty string means no match; that is not
// an error here. No similarity floor is applied: whatever the index
// ranks first wins.
func (s *MongoStore) ResolveCourseName(ctx context.Context, hint string) (string, error) {
	vecs, err := s.embedder.Embed(ctx, []string{hint}, embedding.TaskQuery)
	if err != nil {
		return "", status.Errorf(codes.Internal, "embed course hint: %v", err)
	}

	pipeline := mongo.Pipeline{
		bson.D{{Key: "$vectorSearch", Value: bson.D{
			{Key: "index", Value: CatalogVectorIndex},
			{Key: "path", Value: VectorPath},
			{Key: "queryVector", Value: vecs[0]},
			{Key: "numCandidates", Value: numCandidates},
			{Key: "limit", Value: 1},
		}}},
		bson.D{{Key: "$project", Value: bson.D{{Key: "_id", Value: 1}}}},
	}

	cur, err := s.catalog.Aggregate(ctx, pipeline)
	if err != nil {
		return "", status.Errorf(codes.Internal, "catalog search: %v", err)
	}
	var hits []struct {
		Title string `bson:"_id"`
	}
	if err := cur.All(ctx, &hits); err != nil {
		return "", status.Errorf(codes.Internal, "decode catalog hits: %v", err)
	}
	if len(hits) == 0 {
		return "", nil
	}

	logger.Info("Resolved course name",
		zap.String("hint", hint), zap.String("title", hits[0].Title))
	return hits[0].Title, nil
}

// Search runs a filtered similarity search over the content collection.
// A course hint that does not resolve fails with CourseNotFoundError
// rather than silently searching the whole corpus.
func (s *MongoStore) Search(ctx context.Context, params SearchParams) ([]SearchResult, error) {
	limit := params.Limit
	if limit <= 0 {
		limit = 5
	}

	filter := bson.D{}
	if params.CourseName != "" {
		title, err := s.ResolveCourseName(ctx, params.CourseName)
		if err != nil {
			return nil, err
		}
		if title == "" {
			return nil, &CourseNotFoundError{Hint: params.CourseName}
		}
		filter = append(filter, bson.E{Key: "course_title", Value: title})
	}
	if params.LessonNumber != nil {
		filter = append(filter, bson.E{Key: "lesson_number", Value: *params.LessonNumber})
	}

	vecs, err := s.embedder.Embed(ctx, []string{params.Query}, embedding.TaskQuery)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "embed query: %v", err)
	}

	stage := bson.D{
		{Key: "index", Value: ContentVectorIndex},
		{Key: "path", Value: VectorPath},
		{Key: "queryVector", Value: vecs[0]},
		{Key: "numCandidates", Value: numCandidates},
		{Key: "limit", Value: limit},
	}
	if len(filter) > 0 {
		stage = append(stage, bson.E{Key: "filter", Value: filter})
	}

	pipeline := mongo.Pipeline{
		bson.D{{Key: "$vectorSearch", Value: stage}},
		bson.D{{Key: "$addFields", Value: bson.D{
			{Key: "search_score", Value: bson.D{{Key: "$meta", Value: "vectorSearchScore"}}},
		}}},
	}

	cur, err := s.content.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "content search: %v", err)
	}
	var hits []struct {
		ChunkModel `bson:",inline"`
		Score      float64 `bson:"search_score"`
	}
	if err := cur.All(ctx, &hits); err != nil {
		return nil, status.Errorf(codes.Internal, "decode content hits: %v", err)
	}

	results := make([]SearchResult, 0, len(hits))
	for _, h := range hits {
		results = append(results, SearchResult{Chunk: h.ChunkModel, Score: h.Score})
	}
	return RankResults(results, limit), nil
}

// CatalogEntry fetches one catalog record by exact title.
func (s *MongoStore) CatalogEntry(ctx context.Context, title string) (*CourseCatalogModel, error) {
	var course CourseCatalogModel
	err := s.catalog.FindOne(ctx, bson.D{{Key: "_id", Value: title}}).Decode(&course)
	if err == mongo.ErrNoDocuments {
		return nil, &CourseNotFoundError{Hint: title}
	}
	if err != nil {
		return nil, status.Errorf(codes.Internal, "catalog entry: %v", err)
	}
	return &course, nil
}

// CourseCount returns the number of catalog records.
func (s *MongoStore) CourseCount(ctx context.Context) (int64, error) {
	n, err := s.catalog.CountDocuments(ctx, bson.D{})
	if err != nil {
		return 0, status.Errorf(codes.Internal, "count courses: %v", err)
	}
	return n, nil
}

// Reset drops both collections for full re-ingestion.
func (s *MongoStore) Reset(ctx context.Context) error {
	if err := s.catalog.Drop(ctx); err != nil {
		return status.Errorf(codes.Internal, "drop catalog: %v", err)
	}
	if err := s.content.Drop(ctx); err != nil {
		return status.Errorf(codes.Internal, "drop content: %v", err)
	}
	return nil
}

// RankResults orders hits by score descending, breaking ties by chunk
// ingestion order so rankings are deterministic, and truncates to limit.
func RankResults(results []SearchResult, limit int) []SearchResult {
	sort.SliceStable(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return results[i].Chunk.ChunkIndex < results[j].Chunk.ChunkIndex
	})
	if limit > 0 && len(results) > limit {
		results = results[:limit]
	}
	return results
}
